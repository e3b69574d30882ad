package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"

	"github.com/codr1/Glansen/internal/db"
	"github.com/codr1/Glansen/internal/email"
	"github.com/codr1/Glansen/internal/models"
	"github.com/codr1/Glansen/internal/stats"
)

const (
	digestJobName    = "daily_digest"
	digestJobTimeout = 5 * time.Minute
)

type digestQueries interface {
	models.BookingQueries
	models.OrganizationQueries
}

// RegisterDigestJob registers the daily KPI digest. Organizations without a
// timezone are reported in fallback.
func RegisterDigestJob(database *db.DB, sender email.EmailSender, clock stats.Clock, cronExpr string, fallback *time.Location) error {
	if database == nil {
		return fmt.Errorf("digest job requires database")
	}
	if clock == nil {
		clock = stats.SystemClock{}
	}

	_, err := AddJob(digestJobName, cronExpr, digestJobTimeout, func(ctx context.Context) {
		logger := log.Ctx(ctx)
		if sender == nil {
			logger.Debug().Msg("Digest job skipped: email client not configured")
			return
		}
		if _, err := runDigest(ctx, database.Queries, sender, clock, fallback); err != nil {
			logger.Error().Err(err).Msg("Digest job failed")
		}
	}, gocron.WithSingletonMode(gocron.LimitModeWait))
	if err != nil {
		return fmt.Errorf("add digest job: %w", err)
	}
	return nil
}

// runDigest mails every organization with recipients its KPIs at the
// organization-local now. It returns the number of emails sent.
func runDigest(ctx context.Context, q digestQueries, sender email.EmailSender, clock stats.Clock, fallback *time.Location) (int, error) {
	logger := log.Ctx(ctx)

	orgs, err := q.ListOrganizations(ctx)
	if err != nil {
		return 0, fmt.Errorf("load organizations: %w", err)
	}

	sent := 0
	for _, row := range orgs {
		org := models.OrganizationFromDB(row)
		if len(org.DigestRecipients) == 0 {
			continue
		}
		orgLogger := logger.With().Str("org_id", org.ID).Logger()

		loc, err := models.OrgLocation(org.Timezone, fallback)
		if err != nil {
			orgLogger.Error().Err(err).Str("timezone", org.Timezone).Msg("Failed to load organization timezone for digest")
		}
		now := clock.Now().In(loc)

		rows, err := models.ListOrgBookings(ctx, q, org.ID)
		if err != nil {
			orgLogger.Error().Err(err).Msg("Failed to load bookings for digest")
			continue
		}

		message := email.BuildDigestMessage(org.Name, stats.Aggregate(rows, now), now)
		delivered := email.SendDigest(ctx, sender, org.DigestRecipients, message, &orgLogger)
		sent += delivered
		orgLogger.Info().
			Int("recipients", len(org.DigestRecipients)).
			Int("sent", delivered).
			Msg("Digest sent")
	}
	return sent, nil
}
