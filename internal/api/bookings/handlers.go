// internal/api/bookings/handlers.go
package bookings

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Glansen/internal/api/apiutil"
	"github.com/codr1/Glansen/internal/backend"
	bookingsync "github.com/codr1/Glansen/internal/bookings"
	appdb "github.com/codr1/Glansen/internal/db"
	dbgen "github.com/codr1/Glansen/internal/db/generated"
	"github.com/codr1/Glansen/internal/models"
)

const (
	listQueryTimeout = 5 * time.Second
	syncTimeout      = 60 * time.Second
)

// OrganizationSyncer refreshes one organization's mirror.
type OrganizationSyncer interface {
	SyncOrganization(ctx context.Context, orgID string) (bookingsync.Result, error)
}

var (
	queries     *dbgen.Queries
	syncer      OrganizationSyncer
	queriesOnce sync.Once
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(database *appdb.DB, orgSyncer OrganizationSyncer) {
	if database == nil {
		log.Warn().Msg("InitHandlers called with nil database; booking handlers will be unavailable")
		return
	}
	queriesOnce.Do(func() {
		queries = database.Queries
		syncer = orgSyncer
	})
}

type listResponse struct {
	OrgID    string           `json:"orgId"`
	Count    int              `json:"count"`
	Bookings []models.Booking `json:"bookings"`
}

// HandleBookingsList returns the mirrored bookings for GET /api/v1/bookings.
func HandleBookingsList(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	org, ok := apiutil.RequireOrganization(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), listQueryTimeout)
	defer cancel()

	rows, err := models.ListOrgBookings(ctx, q, org.ID)
	if err != nil {
		logger.Error().Err(err).Str("org_id", org.ID).Msg("Failed to list bookings")
		http.Error(w, "Failed to load bookings", http.StatusInternalServerError)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, listResponse{
		OrgID:    org.ID,
		Count:    len(rows),
		Bookings: rows,
	}); err != nil {
		logger.Error().Err(err).Str("org_id", org.ID).Msg("Failed to write bookings response")
	}
}

// HandleBookingsSync re-syncs the organization for POST /api/v1/bookings/sync.
func HandleBookingsSync(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s := loadSyncer()
	if s == nil {
		logger.Error().Msg("Booking syncer not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	org, ok := apiutil.RequireOrganization(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), syncTimeout)
	defer cancel()

	result, err := s.SyncOrganization(ctx, org.ID)
	if err != nil {
		apiutil.WriteHandlerError(w, r, syncError(err))
		return
	}

	logger.Info().
		Str("org_id", org.ID).
		Int("bookings", result.BookingCount).
		Int64("removed", result.Removed).
		Msg("Bookings synced on request")
	if err := apiutil.WriteJSON(w, http.StatusOK, result); err != nil {
		logger.Error().Err(err).Str("org_id", org.ID).Msg("Failed to write sync response")
	}
}

// syncError maps backend failures to 502 and everything else to 500.
func syncError(err error) apiutil.HandlerError {
	var statusErr *backend.StatusError
	var parseErr *backend.ParseError
	switch {
	case errors.As(err, &statusErr), errors.As(err, &parseErr):
		return apiutil.HandlerError{Status: http.StatusBadGateway, Message: "Backend returned an invalid response", Err: err}
	case errors.Is(err, context.DeadlineExceeded):
		return apiutil.HandlerError{Status: http.StatusGatewayTimeout, Message: "Backend sync timed out", Err: err}
	default:
		return apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "Failed to sync bookings", Err: err}
	}
}

func loadQueries() *dbgen.Queries {
	return queries
}

func loadSyncer() OrganizationSyncer {
	return syncer
}
