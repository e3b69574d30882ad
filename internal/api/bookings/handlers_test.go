package bookings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/codr1/Glansen/internal/api/authz"
	"github.com/codr1/Glansen/internal/backend"
	bookingsync "github.com/codr1/Glansen/internal/bookings"
	dbgen "github.com/codr1/Glansen/internal/db/generated"
	"github.com/codr1/Glansen/internal/models"
	"github.com/codr1/Glansen/internal/testutil"
)

type fakeSyncer struct {
	result bookingsync.Result
	err    error
	orgIDs []string
}

func (f *fakeSyncer) SyncOrganization(ctx context.Context, orgID string) (bookingsync.Result, error) {
	f.orgIDs = append(f.orgIDs, orgID)
	return f.result, f.err
}

// setupBookingsTest resets package state; tests must not run in parallel.
func setupBookingsTest(t *testing.T, s OrganizationSyncer) {
	t.Helper()

	database := testutil.NewTestDB(t)
	testutil.SeedOrganization(t, database, "org-1", "blank-bil", "")
	testutil.SeedOrganization(t, database, "org-2", "vask", "")

	for i, orgID := range []string{"org-1", "org-1", "org-2"} {
		err := database.Queries.UpsertBooking(context.Background(), dbgen.UpsertBookingParams{
			ID:        fmt.Sprintf("b%d", i+1),
			OrgID:     orgID,
			Status:    models.BookingStatusConfirmed,
			StartTime: models.ToNullString(models.StringPtr(fmt.Sprintf("2024-06-1%dT08:00:00Z", 4-i))),
			SyncedAt:  time.Now(),
		})
		if err != nil {
			t.Fatalf("seed booking: %v", err)
		}
	}

	prevQueries, prevSyncer := queries, syncer
	queries = database.Queries
	syncer = s
	t.Cleanup(func() {
		queries, syncer = prevQueries, prevSyncer
	})
}

func orgRequest(method, target, principalOrg string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	ctx := authz.ContextWithOrganization(req.Context(), &authz.Organization{ID: "org-1", Name: "Blank Bil", Slug: "blank-bil"})
	if principalOrg != "" {
		ctx = authz.ContextWithPrincipal(ctx, &authz.Principal{TokenID: 1, OrgID: principalOrg})
	}
	return req.WithContext(ctx)
}

func TestHandleBookingsList(t *testing.T) {
	setupBookingsTest(t, nil)

	recorder := httptest.NewRecorder()
	HandleBookingsList(recorder, orgRequest(http.MethodGet, "/api/v1/bookings", "org-1"))
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", recorder.Code, recorder.Body.String())
	}

	var body listResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.OrgID != "org-1" || body.Count != 2 || len(body.Bookings) != 2 {
		t.Fatalf("unexpected body: %+v", body)
	}
	// Ordered by start time: b2 (13th) before b1 (14th).
	if body.Bookings[0].ID != "b2" || body.Bookings[1].ID != "b1" {
		t.Fatalf("unexpected order: %s, %s", body.Bookings[0].ID, body.Bookings[1].ID)
	}
}

func TestHandleBookingsListAccess(t *testing.T) {
	setupBookingsTest(t, nil)

	tests := []struct {
		name       string
		method     string
		principal  string
		wantStatus int
	}{
		{name: "unauthenticated", method: http.MethodGet, wantStatus: http.StatusUnauthorized},
		{name: "other_org", method: http.MethodGet, principal: "org-2", wantStatus: http.StatusForbidden},
		{name: "wrong_method", method: http.MethodPost, principal: "org-1", wantStatus: http.StatusMethodNotAllowed},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			HandleBookingsList(recorder, orgRequest(test.method, "/api/v1/bookings", test.principal))
			if recorder.Code != test.wantStatus {
				t.Fatalf("status = %d, want %d", recorder.Code, test.wantStatus)
			}
		})
	}
}

func TestHandleBookingsSync(t *testing.T) {
	fake := &fakeSyncer{result: bookingsync.Result{OrgID: "org-1", SyncRunID: 4, BookingCount: 12, Removed: 1}}
	setupBookingsTest(t, fake)

	recorder := httptest.NewRecorder()
	HandleBookingsSync(recorder, orgRequest(http.MethodPost, "/api/v1/bookings/sync", "org-1"))
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", recorder.Code, recorder.Body.String())
	}
	if len(fake.orgIDs) != 1 || fake.orgIDs[0] != "org-1" {
		t.Fatalf("synced orgs = %v", fake.orgIDs)
	}

	var body bookingsync.Result
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.SyncRunID != 4 || body.BookingCount != 12 || body.Removed != 1 {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestHandleBookingsSyncErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		principal  string
		method     string
		wantStatus int
		wantCalls  int
	}{
		{name: "backend_status", err: fmt.Errorf("sync org org-1: %w", &backend.StatusError{StatusCode: 503}), principal: "org-1", method: http.MethodPost, wantStatus: http.StatusBadGateway, wantCalls: 1},
		{name: "backend_schema", err: &backend.ParseError{Index: 0, Field: "id", Reason: "is required"}, principal: "org-1", method: http.MethodPost, wantStatus: http.StatusBadGateway, wantCalls: 1},
		{name: "timeout", err: context.DeadlineExceeded, principal: "org-1", method: http.MethodPost, wantStatus: http.StatusGatewayTimeout, wantCalls: 1},
		{name: "storage", err: errors.New("disk full"), principal: "org-1", method: http.MethodPost, wantStatus: http.StatusInternalServerError, wantCalls: 1},
		{name: "forbidden", principal: "org-2", method: http.MethodPost, wantStatus: http.StatusForbidden},
		{name: "get_not_allowed", principal: "org-1", method: http.MethodGet, wantStatus: http.StatusMethodNotAllowed},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			fake := &fakeSyncer{err: test.err}
			setupBookingsTest(t, fake)

			recorder := httptest.NewRecorder()
			HandleBookingsSync(recorder, orgRequest(test.method, "/api/v1/bookings/sync", test.principal))
			if recorder.Code != test.wantStatus {
				t.Fatalf("status = %d, want %d", recorder.Code, test.wantStatus)
			}
			if len(fake.orgIDs) != test.wantCalls {
				t.Fatalf("calls = %d, want %d", len(fake.orgIDs), test.wantCalls)
			}
		})
	}
}
