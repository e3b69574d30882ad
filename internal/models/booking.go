package models

import (
	"strings"
	"time"
)

// Observed booking statuses. The backend does not enforce an enum, so any
// string may appear in Booking.Status.
const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCompleted = "completed"
	BookingStatusCancelled = "cancelled"
)

// Booking is a read-only mirror of a scheduled service appointment owned by
// the backend. Nullable backend fields are pointers; timestamps stay in the
// raw ISO-8601 form the backend sent.
type Booking struct {
	ID           string  `json:"id"`
	OrgID        string  `json:"orgId"`
	CustomerID   *string `json:"customerId"`
	CustomerName *string `json:"customerName"`
	ServiceName  *string `json:"serviceName"`
	Status       string  `json:"status"`
	StartTime    *string `json:"startTime"`
	EndTime      *string `json:"endTime"`
	Notes        *string `json:"notes"`
}

// DashboardStats holds the KPI tiles and the upcoming-bookings projection
// for one tenant at one instant.
type DashboardStats struct {
	TodayCount     int       `json:"todayCount"`
	WeekCount      int       `json:"weekCount"`
	MonthCount     int       `json:"monthCount"`
	TotalCustomers int       `json:"totalCustomers"`
	Upcoming       []Booking `json:"upcoming"`
}

// Organization is a tenant of the platform.
type Organization struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Slug             string   `json:"slug"`
	Timezone         string   `json:"timezone"`
	DigestRecipients []string `json:"digestRecipients"`
}

// StringPtr returns nil for an empty string and a pointer to value otherwise.
func StringPtr(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

// StringValue dereferences value, returning "" for nil.
func StringValue(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

// OrgLocation loads the organization's IANA zone. An empty name yields
// fallback; an unknown name yields fallback together with the load error.
func OrgLocation(timezone string, fallback *time.Location) (*time.Location, error) {
	if fallback == nil {
		fallback = time.UTC
	}
	timezone = strings.TrimSpace(timezone)
	if timezone == "" {
		return fallback, nil
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return fallback, err
	}
	return loc, nil
}
