// cmd/server/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/codr1/Glansen/internal/backend"
	"github.com/codr1/Glansen/internal/bookings"
	"github.com/codr1/Glansen/internal/config"
	"github.com/codr1/Glansen/internal/db"
	"github.com/codr1/Glansen/internal/email"
	"github.com/codr1/Glansen/internal/ratelimit"
	"github.com/codr1/Glansen/internal/scheduler"
	"github.com/codr1/Glansen/internal/stats"
)

const defaultConfigPath = "config/app.yaml"

func resolveConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if value, ok := os.LookupEnv("CONFIG_PATH"); ok && value != "" {
		return value
	}
	return defaultConfigPath
}

func setupLogger(environment string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		return
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

// newEmailSender returns nil when SES is not configured so jobs can skip
// cleanly.
func newEmailSender(cfg config.EmailConfig) email.EmailSender {
	if !cfg.Configured() {
		log.Info().Msg("Email not configured; digest emails disabled")
		return nil
	}
	client, err := email.NewSESClient(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.Region, cfg.Sender)
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize SES client; digest emails disabled")
		return nil
	}
	return client
}

func startScheduler(cfg *config.Config, database *db.DB, syncer *bookings.Syncer, sender email.EmailSender, defaultLoc *time.Location) error {
	if err := scheduler.Init(); err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	if err := scheduler.RegisterSyncJob(syncer, cfg.Sync.Cron); err != nil {
		return err
	}
	if cfg.Digest.Enabled {
		if err := scheduler.RegisterDigestJob(database, sender, stats.SystemClock{}, cfg.Digest.Cron, defaultLoc); err != nil {
			return err
		}
	}
	return scheduler.Start()
}

func main() {
	configFlag := flag.String("config", "", "Path to the YAML config file (defaults to $CONFIG_PATH or "+defaultConfigPath+")")
	flag.Parse()

	cfg, err := config.Load(resolveConfigPath(*configFlag))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	setupLogger(cfg.App.Environment)

	defaultLoc, err := time.LoadLocation(cfg.App.DefaultTimezone)
	if err != nil {
		log.Fatal().Err(err).Str("timezone", cfg.App.DefaultTimezone).Msg("Failed to load default timezone")
	}

	database, err := db.NewFromConfig(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer database.Close()

	client, err := backend.NewClient(backend.Config{
		BaseURL: cfg.Backend.BaseURL,
		APIKey:  cfg.Backend.APIKey,
		Timeout: cfg.Backend.Timeout(),
	}, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create backend client")
	}

	syncer, err := bookings.NewSyncer(client, database, cfg.Sync.Concurrency)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create booking syncer")
	}

	limiter := ratelimit.New(&ratelimit.Config{
		TokenMaxPerWindow: cfg.RateLimit.PerTokenPerHour,
		IPMaxPerWindow:    cfg.RateLimit.PerIPPerHour,
		Window:            time.Hour,
	})
	defer limiter.Close()

	server := newServer(cfg, serverDeps{
		database:   database,
		syncer:     syncer,
		limiter:    limiter,
		defaultLoc: defaultLoc,
	})

	if err := startScheduler(cfg, database, syncer, newEmailSender(cfg.Email), defaultLoc); err != nil {
		log.Fatal().Err(err).Msg("Failed to start scheduler")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Int("port", cfg.App.Port).Str("environment", cfg.App.Environment).Msg("Starting server")
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.App.ShutdownTimeoutSeconds)*time.Second)
		defer cancel()

		log.Info().Msg("Shutting down server")
		if err := scheduler.Stop(); err != nil {
			log.Error().Err(err).Msg("Failed to stop scheduler")
		}
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server terminated with error")
		os.Exit(1)
	}
}
