package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"

	"github.com/codr1/Glansen/internal/bookings"
)

const (
	syncJobName    = "booking_sync"
	syncJobTimeout = 5 * time.Minute
)

// OrganizationsSyncer refreshes the mirror for every organization.
type OrganizationsSyncer interface {
	SyncOrganizations(ctx context.Context) ([]bookings.Result, error)
}

// RegisterSyncJob registers the periodic booking sync.
func RegisterSyncJob(syncer OrganizationsSyncer, cronExpr string) error {
	if syncer == nil {
		return fmt.Errorf("sync job requires a syncer")
	}

	_, err := AddJob(syncJobName, cronExpr, syncJobTimeout, func(ctx context.Context) {
		runSync(ctx, syncer)
	}, gocron.WithSingletonMode(gocron.LimitModeReschedule))
	if err != nil {
		return fmt.Errorf("add booking sync job: %w", err)
	}
	return nil
}

// runSync syncs every organization and returns how many succeeded.
func runSync(ctx context.Context, syncer OrganizationsSyncer) int {
	logger := log.Ctx(ctx)
	results, err := syncer.SyncOrganizations(ctx)
	if err != nil {
		logger.Error().Err(err).Int("synced", len(results)).Msg("Booking sync finished with errors")
		return len(results)
	}

	total := 0
	for _, result := range results {
		total += result.BookingCount
	}
	logger.Info().
		Int("organizations", len(results)).
		Int("bookings", total).
		Msg("Booking sync completed")
	return len(results)
}
