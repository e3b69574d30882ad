// Package stats turns a tenant's bookings into dashboard KPIs.
package stats

import (
	"sort"
	"time"

	"github.com/codr1/Glansen/internal/models"
)

// Clock supplies the reference instant for aggregation.
type Clock interface {
	Now() time.Time
}

// SystemClock implements Clock using the system time.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// customerNamePrefix keys customers that only have a display name. Two
// customers sharing a name without a customer ID collapse into one.
const customerNamePrefix = "name:"

type upcomingEntry struct {
	booking models.Booking
	start   time.Time
}

// Aggregate computes the dashboard KPIs for bookings as seen at now.
// Day, week and month boundaries are taken in now's location; weeks start on
// Monday. Bookings with a missing or unparseable start time still count
// towards TotalCustomers but are left out of every date bucket and Upcoming.
// Upcoming is sorted by start time and is not truncated.
func Aggregate(bookings []models.Booking, now time.Time) models.DashboardStats {
	loc := now.Location()
	today := StartOfDay(now)
	weekStart, weekEnd := WeekBounds(now)

	var result models.DashboardStats
	customers := make(map[string]struct{})
	upcoming := make([]upcomingEntry, 0)

	for _, booking := range bookings {
		if key, ok := customerKey(booking); ok {
			customers[key] = struct{}{}
		}

		if booking.StartTime == nil {
			continue
		}
		start, ok := models.ParseTimestamp(*booking.StartTime, loc)
		if !ok {
			continue
		}
		startDay := StartOfDay(start.In(loc))

		if startDay.Equal(today) {
			result.TodayCount++
		}
		if !startDay.Before(weekStart) && !startDay.After(weekEnd) {
			result.WeekCount++
		}
		if startDay.Year() == today.Year() && startDay.Month() == today.Month() {
			result.MonthCount++
		}
		if !start.Before(now) {
			upcoming = append(upcoming, upcomingEntry{booking: booking, start: start})
		}
	}

	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].start.Before(upcoming[j].start)
	})

	result.TotalCustomers = len(customers)
	result.Upcoming = make([]models.Booking, 0, len(upcoming))
	for _, entry := range upcoming {
		result.Upcoming = append(result.Upcoming, entry.booking)
	}
	return result
}

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// WeekBounds returns the Monday and Sunday, both at midnight, of the week
// containing now.
func WeekBounds(now time.Time) (time.Time, time.Time) {
	today := StartOfDay(now)
	offset := (int(today.Weekday()) + 6) % 7
	weekStart := today.AddDate(0, 0, -offset)
	return weekStart, weekStart.AddDate(0, 0, 6)
}

// TopUpcoming returns at most limit bookings from the front of s.Upcoming.
// A non-positive limit returns every upcoming booking.
func TopUpcoming(s models.DashboardStats, limit int) []models.Booking {
	if limit <= 0 || limit >= len(s.Upcoming) {
		return s.Upcoming
	}
	return s.Upcoming[:limit]
}

func customerKey(booking models.Booking) (string, bool) {
	if booking.CustomerID != nil && *booking.CustomerID != "" {
		return *booking.CustomerID, true
	}
	if booking.CustomerName != nil && *booking.CustomerName != "" {
		return customerNamePrefix + *booking.CustomerName, true
	}
	return "", false
}
