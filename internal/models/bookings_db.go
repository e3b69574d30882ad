package models

import (
	"context"
	"database/sql"
	"strings"

	dbgen "github.com/codr1/Glansen/internal/db/generated"
)

type BookingQueries interface {
	ListBookingsByOrg(ctx context.Context, orgID string) ([]dbgen.Booking, error)
}

type OrganizationQueries interface {
	GetOrganizationByID(ctx context.Context, id string) (dbgen.Organization, error)
	ListOrganizations(ctx context.Context) ([]dbgen.Organization, error)
}

// ListOrgBookings returns the mirrored bookings of one organization.
func ListOrgBookings(ctx context.Context, queries BookingQueries, orgID string) ([]Booking, error) {
	rows, err := queries.ListBookingsByOrg(ctx, orgID)
	if err != nil {
		return nil, err
	}
	bookings := make([]Booking, 0, len(rows))
	for _, row := range rows {
		bookings = append(bookings, BookingFromDB(row))
	}
	return bookings, nil
}

func BookingFromDB(row dbgen.Booking) Booking {
	return Booking{
		ID:           row.ID,
		OrgID:        row.OrgID,
		CustomerID:   fromNullString(row.CustomerID),
		CustomerName: fromNullString(row.CustomerName),
		ServiceName:  fromNullString(row.ServiceName),
		Status:       row.Status,
		StartTime:    fromNullString(row.StartTime),
		EndTime:      fromNullString(row.EndTime),
		Notes:        fromNullString(row.Notes),
	}
}

func OrganizationFromDB(row dbgen.Organization) Organization {
	return Organization{
		ID:               row.ID,
		Name:             row.Name,
		Slug:             row.Slug,
		Timezone:         row.Timezone,
		DigestRecipients: SplitRecipients(row.DigestRecipients),
	}
}

// ToNullString keeps the distinction between a null and an empty backend value.
func ToNullString(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}

func fromNullString(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	s := value.String
	return &s
}

// JoinRecipients and SplitRecipients convert digest recipients to and from
// their comma-separated column form.
func JoinRecipients(recipients []string) string {
	cleaned := make([]string, 0, len(recipients))
	for _, recipient := range recipients {
		recipient = strings.TrimSpace(recipient)
		if recipient != "" {
			cleaned = append(cleaned, recipient)
		}
	}
	return strings.Join(cleaned, ",")
}

func SplitRecipients(value string) []string {
	parts := strings.Split(value, ",")
	recipients := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			recipients = append(recipients, part)
		}
	}
	return recipients
}
