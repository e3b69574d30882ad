// Package bookings mirrors tenant bookings from the backend into the local store.
package bookings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	appdb "github.com/codr1/Glansen/internal/db"
	dbgen "github.com/codr1/Glansen/internal/db/generated"
	"github.com/codr1/Glansen/internal/models"
)

const defaultConcurrency = 4

// Source is the backend the mirror is refreshed from.
type Source interface {
	ListOrganizations(ctx context.Context) ([]models.Organization, error)
	ListBookings(ctx context.Context, orgID string) ([]models.Booking, error)
}

// Result summarizes one organization's sync.
type Result struct {
	OrgID        string    `json:"orgId"`
	SyncRunID    int64     `json:"syncRunId"`
	BookingCount int       `json:"bookingCount"`
	Removed      int64     `json:"removed"`
	StartedAt    time.Time `json:"startedAt"`
	FinishedAt   time.Time `json:"finishedAt"`
}

type Syncer struct {
	source      Source
	database    *appdb.DB
	concurrency int
	now         func() time.Time
	locks       orgLocks
}

// orgLocks serializes syncs of the same organization. Each lock is a
// one-slot channel so waiting honours context cancellation.
type orgLocks struct {
	mu    sync.Mutex
	byOrg map[string]chan struct{}
}

func (l *orgLocks) acquire(ctx context.Context, orgID string) (func(), error) {
	l.mu.Lock()
	if l.byOrg == nil {
		l.byOrg = make(map[string]chan struct{})
	}
	lock, ok := l.byOrg[orgID]
	if !ok {
		lock = make(chan struct{}, 1)
		l.byOrg[orgID] = lock
	}
	l.mu.Unlock()

	select {
	case lock <- struct{}{}:
		return func() { <-lock }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func NewSyncer(source Source, database *appdb.DB, concurrency int) (*Syncer, error) {
	if source == nil {
		return nil, fmt.Errorf("sync requires a booking source")
	}
	if database == nil {
		return nil, fmt.Errorf("sync requires database")
	}
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Syncer{
		source:      source,
		database:    database,
		concurrency: concurrency,
		now:         func() time.Time { return time.Now().UTC() },
	}, nil
}

// SyncOrganizations refreshes the organization list and then every
// organization's bookings. A failing organization is logged and recorded in
// sync_runs; the others still sync. The returned error joins every failure.
func (s *Syncer) SyncOrganizations(ctx context.Context) ([]Result, error) {
	logger := log.Ctx(ctx)

	orgs, err := s.source.ListOrganizations(ctx)
	if err != nil {
		return nil, fmt.Errorf("load organizations: %w", err)
	}
	for _, org := range orgs {
		if err := s.database.Queries.UpsertOrganization(ctx, dbgen.UpsertOrganizationParams{
			ID:               org.ID,
			Name:             org.Name,
			Slug:             org.Slug,
			Timezone:         org.Timezone,
			DigestRecipients: models.JoinRecipients(org.DigestRecipients),
		}); err != nil {
			return nil, fmt.Errorf("store organization %s: %w", org.ID, err)
		}
	}

	results := make([]Result, len(orgs))
	errs := make([]error, len(orgs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, org := range orgs {
		i, org := i, org
		g.Go(func() error {
			result, err := s.SyncOrganization(gctx, org.ID)
			if err != nil {
				logger.Error().Err(err).Str("org_id", org.ID).Msg("Failed to sync organization bookings")
				errs[i] = err
				return nil
			}
			results[i] = result
			return nil
		})
	}
	_ = g.Wait()

	synced := make([]Result, 0, len(orgs))
	for i := range orgs {
		if errs[i] == nil {
			synced = append(synced, results[i])
		}
	}
	logger.Info().
		Int("organizations", len(orgs)).
		Int("synced", len(synced)).
		Msg("Booking sync finished")

	return synced, errors.Join(errs...)
}

// SyncOrganization replaces the mirrored bookings of orgID with the backend's
// current set in a single transaction. Concurrent calls for the same
// organization run one after another, so a later fetch is never overwritten
// by an earlier one.
func (s *Syncer) SyncOrganization(ctx context.Context, orgID string) (Result, error) {
	release, err := s.locks.acquire(ctx, orgID)
	if err != nil {
		return Result{}, fmt.Errorf("wait for sync of org %s: %w", orgID, err)
	}
	defer release()

	logger := log.Ctx(ctx).With().Str("org_id", orgID).Logger()
	result := Result{OrgID: orgID, StartedAt: s.now()}

	runID, err := s.database.Queries.CreateSyncRun(ctx, dbgen.CreateSyncRunParams{
		OrgID:     orgID,
		StartedAt: result.StartedAt,
	})
	if err != nil {
		return Result{}, fmt.Errorf("create sync run: %w", err)
	}
	result.SyncRunID = runID

	bookings, syncErr := s.source.ListBookings(ctx, orgID)
	if syncErr == nil {
		syncErr = s.database.RunInTx(ctx, func(tx *appdb.DB) error {
			syncedAt := s.now()
			for _, booking := range bookings {
				if err := tx.Queries.UpsertBooking(ctx, upsertParams(booking, runID, syncedAt)); err != nil {
					return fmt.Errorf("store booking %s: %w", booking.ID, err)
				}
			}
			removed, err := tx.Queries.DeleteStaleBookings(ctx, dbgen.DeleteStaleBookingsParams{
				OrgID:     orgID,
				SyncRunID: runID,
			})
			if err != nil {
				return fmt.Errorf("remove stale bookings: %w", err)
			}
			result.Removed = removed
			return nil
		})
	}

	result.FinishedAt = s.now()
	finish := dbgen.FinishSyncRunParams{
		FinishedAt: sql.NullTime{Time: result.FinishedAt, Valid: true},
		ID:         runID,
	}
	if syncErr != nil {
		finish.Error = sql.NullString{String: syncErr.Error(), Valid: true}
	} else {
		result.BookingCount = len(bookings)
		finish.BookingCount = int64(len(bookings))
	}
	// The run must be closed even when ctx was cancelled mid-sync.
	finishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.database.Queries.FinishSyncRun(finishCtx, finish); err != nil {
		logger.Error().Err(err).Int64("sync_run_id", runID).Msg("Failed to record sync run")
	}

	if syncErr != nil {
		return Result{}, fmt.Errorf("sync org %s: %w", orgID, syncErr)
	}

	logger.Debug().
		Int64("sync_run_id", runID).
		Int("bookings", result.BookingCount).
		Int64("removed", result.Removed).
		Msg("Organization bookings synced")
	return result, nil
}

// LastSyncedAt returns when orgID last finished a successful sync.
func LastSyncedAt(ctx context.Context, q *dbgen.Queries, orgID string) (time.Time, bool, error) {
	run, err := q.GetLatestSuccessfulSyncRun(ctx, orgID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}
	if !run.FinishedAt.Valid {
		return time.Time{}, false, nil
	}
	return run.FinishedAt.Time, true, nil
}

func upsertParams(booking models.Booking, runID int64, syncedAt time.Time) dbgen.UpsertBookingParams {
	return dbgen.UpsertBookingParams{
		ID:           booking.ID,
		OrgID:        booking.OrgID,
		CustomerID:   models.ToNullString(booking.CustomerID),
		CustomerName: models.ToNullString(booking.CustomerName),
		ServiceName:  models.ToNullString(booking.ServiceName),
		Status:       booking.Status,
		StartTime:    models.ToNullString(booking.StartTime),
		EndTime:      models.ToNullString(booking.EndTime),
		Notes:        models.ToNullString(booking.Notes),
		SyncRunID:    runID,
		SyncedAt:     syncedAt,
	}
}
