package backend

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/codr1/Glansen/internal/models"
)

// ParseError describes a response that does not match the expected schema.
// Index is the offending record, or -1 when the payload itself is malformed.
type ParseError struct {
	Index  int
	Field  string
	Reason string
}

func (e *ParseError) Error() string {
	switch {
	case e.Index < 0:
		return fmt.Sprintf("invalid response: %s", e.Reason)
	case e.Field == "":
		return fmt.Sprintf("invalid record %d: %s", e.Index, e.Reason)
	default:
		return fmt.Sprintf("invalid record %d: %s %s", e.Index, e.Field, e.Reason)
	}
}

type record map[string]json.RawMessage

// DecodeBookings validates a bookings response for orgID. Timestamps are kept
// as raw strings; only the JSON types are checked here.
func DecodeBookings(body []byte, orgID string) ([]models.Booking, error) {
	records, err := decodeRecords(body)
	if err != nil {
		return nil, err
	}

	bookings := make([]models.Booking, 0, len(records))
	for i, rec := range records {
		id, err := rec.requiredString(i, "id")
		if err != nil {
			return nil, err
		}
		recordOrg, err := rec.requiredString(i, "org_id")
		if err != nil {
			return nil, err
		}
		if recordOrg != orgID {
			return nil, &ParseError{Index: i, Field: "org_id", Reason: fmt.Sprintf("is %q, expected %q", recordOrg, orgID)}
		}

		booking := models.Booking{ID: id, OrgID: recordOrg}
		optional := []struct {
			field string
			dst   **string
		}{
			{"customer_id", &booking.CustomerID},
			{"customer_name", &booking.CustomerName},
			{"service_name", &booking.ServiceName},
			{"start_time", &booking.StartTime},
			{"end_time", &booking.EndTime},
			{"notes", &booking.Notes},
		}
		for _, opt := range optional {
			value, err := rec.optionalString(i, opt.field)
			if err != nil {
				return nil, err
			}
			*opt.dst = value
		}

		status, err := rec.optionalString(i, "status")
		if err != nil {
			return nil, err
		}
		booking.Status = models.StringValue(status)

		bookings = append(bookings, booking)
	}
	return bookings, nil
}

// DecodeOrganizations validates an organizations response.
func DecodeOrganizations(body []byte) ([]models.Organization, error) {
	records, err := decodeRecords(body)
	if err != nil {
		return nil, err
	}

	orgs := make([]models.Organization, 0, len(records))
	for i, rec := range records {
		id, err := rec.requiredString(i, "id")
		if err != nil {
			return nil, err
		}
		name, err := rec.requiredString(i, "name")
		if err != nil {
			return nil, err
		}
		slug, err := rec.requiredString(i, "slug")
		if err != nil {
			return nil, err
		}
		timezone, err := rec.optionalString(i, "timezone")
		if err != nil {
			return nil, err
		}
		recipients, err := rec.optionalStrings(i, "digest_emails")
		if err != nil {
			return nil, err
		}

		orgs = append(orgs, models.Organization{
			ID:               id,
			Name:             name,
			Slug:             strings.ToLower(slug),
			Timezone:         models.StringValue(timezone),
			DigestRecipients: recipients,
		})
	}
	return orgs, nil
}

func decodeRecords(body []byte) ([]record, error) {
	var records []record
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, &ParseError{Index: -1, Reason: "expected a JSON array of objects"}
	}
	if records == nil {
		return nil, &ParseError{Index: -1, Reason: "expected a JSON array, got null"}
	}
	for i, rec := range records {
		if rec == nil {
			return nil, &ParseError{Index: i, Reason: "must be an object"}
		}
	}
	return records, nil
}

func (r record) requiredString(index int, field string) (string, error) {
	value, err := r.optionalString(index, field)
	if err != nil {
		return "", err
	}
	if value == nil || strings.TrimSpace(*value) == "" {
		return "", &ParseError{Index: index, Field: field, Reason: "is required"}
	}
	return *value, nil
}

func (r record) optionalString(index int, field string) (*string, error) {
	raw, ok := r[field]
	if !ok {
		return nil, nil
	}
	var value *string
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, &ParseError{Index: index, Field: field, Reason: "must be a string or null"}
	}
	return value, nil
}

func (r record) optionalStrings(index int, field string) ([]string, error) {
	raw, ok := r[field]
	if !ok {
		return nil, nil
	}
	var values []string
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, &ParseError{Index: index, Field: field, Reason: "must be an array of strings or null"}
	}
	return values, nil
}
