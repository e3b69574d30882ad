// internal/api/dashboard/handlers.go
package dashboard

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/codr1/Glansen/internal/api/apiutil"
	"github.com/codr1/Glansen/internal/api/authz"
	"github.com/codr1/Glansen/internal/api/htmx"
	"github.com/codr1/Glansen/internal/bookings"
	appdb "github.com/codr1/Glansen/internal/db"
	dbgen "github.com/codr1/Glansen/internal/db/generated"
	"github.com/codr1/Glansen/internal/models"
	"github.com/codr1/Glansen/internal/stats"
	dashboardtempl "github.com/codr1/Glansen/internal/templates/components/dashboard"
	"github.com/codr1/Glansen/internal/templates/layouts"
)

const (
	dashboardQueryTimeout = 5 * time.Second
	maxUpcomingLimit      = 50
	startLabelLayout      = "Mon 02.01 15:04"
	generatedLabelLayout  = "02.01.2006 15:04"
)

// Options configures the dashboard handlers.
type Options struct {
	Clock           stats.Clock
	DefaultLocation *time.Location
	UpcomingLimit   int
}

var (
	queries     *dbgen.Queries
	queriesOnce sync.Once
	options     = Options{Clock: stats.SystemClock{}, DefaultLocation: time.UTC, UpcomingLimit: 8}
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(database *appdb.DB, opts Options) {
	if database == nil {
		log.Warn().Msg("InitHandlers called with nil database; dashboard handlers will be unavailable")
		return
	}
	queriesOnce.Do(func() {
		queries = database.Queries
		options = normalizeOptions(opts)
	})
}

type statsResponse struct {
	OrgID          string           `json:"orgId"`
	GeneratedAt    time.Time        `json:"generatedAt"`
	Timezone       string           `json:"timezone"`
	TodayCount     int              `json:"todayCount"`
	WeekCount      int              `json:"weekCount"`
	MonthCount     int              `json:"monthCount"`
	TotalCustomers int              `json:"totalCustomers"`
	Upcoming       []models.Booking `json:"upcoming"`
	UpcomingTotal  int              `json:"upcomingTotal"`
	LastSyncAt     *time.Time       `json:"lastSyncAt"`
}

type snapshot struct {
	now        time.Time
	loc        *time.Location
	stats      models.DashboardStats
	lastSyncAt *time.Time
}

// HandleDashboardStats returns the KPIs as JSON for GET /api/v1/dashboard/stats.
func HandleDashboardStats(w http.ResponseWriter, r *http.Request) {
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

	opts := loadOptions()
	limit, err := apiutil.ParseLimitField(r.URL.Query().Get("limit"), "limit", opts.UpcomingLimit, maxUpcomingLimit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	snap, err := buildSnapshot(r.Context(), q, org, opts)
	if err != nil {
		logger.Error().Err(err).Str("org_id", org.ID).Msg("Failed to build dashboard stats")
		http.Error(w, "Failed to load dashboard stats", http.StatusInternalServerError)
		return
	}

	resp := statsResponse{
		OrgID:          org.ID,
		GeneratedAt:    snap.now,
		Timezone:       snap.loc.String(),
		TodayCount:     snap.stats.TodayCount,
		WeekCount:      snap.stats.WeekCount,
		MonthCount:     snap.stats.MonthCount,
		TotalCustomers: snap.stats.TotalCustomers,
		Upcoming:       stats.TopUpcoming(snap.stats, limit),
		UpcomingTotal:  len(snap.stats.Upcoming),
		LastSyncAt:     snap.lastSyncAt,
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, resp); err != nil {
		logger.Error().Err(err).Str("org_id", org.ID).Msg("Failed to write dashboard stats response")
	}
}

// HandleDashboardPage renders the dashboard page for GET /admin/dashboard.
func HandleDashboardPage(w http.ResponseWriter, r *http.Request) {
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

	opts := loadOptions()
	snap, err := buildSnapshot(r.Context(), q, org, opts)
	if err != nil {
		logger.Error().Err(err).Str("org_id", org.ID).Msg("Failed to build dashboard data")
		http.Error(w, "Failed to load dashboard", http.StatusInternalServerError)
		return
	}

	data := buildDashboardData(org, snap, opts.UpcomingLimit)
	content := dashboardtempl.DashboardLayout(data)

	// Periodic refreshes swap only the dashboard body.
	if htmx.IsRequest(r) {
		apiutil.RenderHTMLComponent(r.Context(), w, content, nil, "Failed to render dashboard", "Failed to render dashboard")
		return
	}

	page := layouts.Base(org.Name+" · Glansen", content)
	apiutil.RenderHTMLComponent(r.Context(), w, page, nil, "Failed to render dashboard page", "Failed to render page")
}

func buildSnapshot(ctx context.Context, q *dbgen.Queries, org *authz.Organization, opts Options) (snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, dashboardQueryTimeout)
	defer cancel()

	loc := loadOrgLocation(log.Ctx(ctx), org.Timezone, opts.DefaultLocation)
	now := opts.Clock.Now().In(loc)

	rows, err := models.ListOrgBookings(ctx, q, org.ID)
	if err != nil {
		return snapshot{}, err
	}

	snap := snapshot{
		now:   now,
		loc:   loc,
		stats: stats.Aggregate(rows, now),
	}

	lastSync, ok, err := bookings.LastSyncedAt(ctx, q, org.ID)
	if err != nil {
		return snapshot{}, err
	}
	if ok {
		synced := lastSync.In(loc)
		snap.lastSyncAt = &synced
	}
	return snap, nil
}

func buildDashboardData(org *authz.Organization, snap snapshot, limit int) dashboardtempl.DashboardData {
	data := dashboardtempl.DashboardData{
		OrgName:     org.Name,
		Timezone:    snap.loc.String(),
		GeneratedAt: snap.now.Format(generatedLabelLayout),
		Tiles: []dashboardtempl.KPITile{
			{Label: "I dag", Value: snap.stats.TodayCount},
			{Label: "Denne uken", Value: snap.stats.WeekCount},
			{Label: "Denne måneden", Value: snap.stats.MonthCount},
			{Label: "Kunder", Value: snap.stats.TotalCustomers},
		},
		UpcomingTotal: len(snap.stats.Upcoming),
	}
	if snap.lastSyncAt != nil {
		data.LastSyncAt = snap.lastSyncAt.Format(generatedLabelLayout)
	}

	upcoming := stats.TopUpcoming(snap.stats, limit)
	data.Upcoming = make([]dashboardtempl.UpcomingBooking, 0, len(upcoming))
	for _, booking := range upcoming {
		entry := dashboardtempl.UpcomingBooking{
			ID:           booking.ID,
			CustomerName: models.StringValue(booking.CustomerName),
			ServiceName:  models.StringValue(booking.ServiceName),
			Status:       booking.Status,
		}
		if start, ok := models.ParseTimestamp(models.StringValue(booking.StartTime), snap.loc); ok {
			entry.StartLabel = start.In(snap.loc).Format(startLabelLayout)
		}
		data.Upcoming = append(data.Upcoming, entry)
	}
	return data
}

func loadOrgLocation(logger *zerolog.Logger, timezone string, fallback *time.Location) *time.Location {
	loc, err := models.OrgLocation(timezone, fallback)
	if err != nil {
		logger.Error().Err(err).Str("timezone", timezone).Msg("Failed to load organization timezone")
	}
	return loc
}

func normalizeOptions(opts Options) Options {
	if opts.Clock == nil {
		opts.Clock = stats.SystemClock{}
	}
	if opts.DefaultLocation == nil {
		opts.DefaultLocation = time.UTC
	}
	if opts.UpcomingLimit <= 0 {
		opts.UpcomingLimit = 8
	}
	if opts.UpcomingLimit > maxUpcomingLimit {
		opts.UpcomingLimit = maxUpcomingLimit
	}
	return opts
}

func loadQueries() *dbgen.Queries {
	return queries
}

func loadOptions() Options {
	return options
}
