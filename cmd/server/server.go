// cmd/server/server.go
package main

import (
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Glansen/internal/api"
	apibookings "github.com/codr1/Glansen/internal/api/bookings"
	"github.com/codr1/Glansen/internal/api/dashboard"
	"github.com/codr1/Glansen/internal/config"
	"github.com/codr1/Glansen/internal/db"
	"github.com/codr1/Glansen/internal/ratelimit"
	"github.com/codr1/Glansen/internal/stats"
)

type serverDeps struct {
	database   *db.DB
	syncer     apibookings.OrganizationSyncer
	limiter    *ratelimit.Limiter
	defaultLoc *time.Location
}

func newServer(cfg *config.Config, deps serverDeps) *http.Server {
	router := http.NewServeMux()

	dashboard.InitHandlers(deps.database, dashboard.Options{
		Clock:           stats.SystemClock{},
		DefaultLocation: deps.defaultLoc,
		UpcomingLimit:   cfg.Dashboard.UpcomingLimit,
	})
	apibookings.InitHandlers(deps.database, deps.syncer)

	// Listed innermost first: requests pass request ID, recovery, logging,
	// organization, auth, then rate limit.
	handler := api.ChainMiddleware(
		router,
		api.WithRateLimit(deps.limiter, cfg.App.TrustProxy),
		api.WithAuth(deps.database.Queries),
		api.WithOrganization(deps.database.Queries, cfg.App.BaseDomain),
		api.WithLogging,
		api.WithRecovery,
		api.WithRequestID,
	)

	registerRoutes(router)

	return &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.App.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 75 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, "/admin/dashboard", http.StatusFound)
	})

	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Dashboard routes
	mux.HandleFunc("/admin/dashboard", dashboard.HandleDashboardPage)
	mux.HandleFunc("/api/v1/dashboard/stats", dashboard.HandleDashboardStats)

	// Booking mirror routes
	mux.HandleFunc("/api/v1/bookings", apibookings.HandleBookingsList)
	mux.HandleFunc("/api/v1/bookings/sync", apibookings.HandleBookingsSync)

	staticDir := os.Getenv("STATIC_DIR")
	if staticDir == "" {
		staticDir = "static"
	}
	fs := http.FileServer(http.Dir(staticDir))

	mux.Handle("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Debug().
			Str("path", r.URL.Path).
			Str("static_dir", staticDir).
			Msg("Static file request")
		http.StripPrefix("/static/", fs).ServeHTTP(w, r)
	}))
}
