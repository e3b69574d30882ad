package email

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/codr1/Glansen/internal/models"
	"github.com/codr1/Glansen/internal/stats"
)

const (
	digestUpcomingLimit = 8
	digestSendTimeout   = 10 * time.Second
	digestDateLayout    = "02.01.2006"
	digestStampLayout   = "02.01.2006 15:04"
	digestStartLayout   = "Mon 02.01 15:04"
)

// DigestEmail is a rendered plain-text digest.
type DigestEmail struct {
	Subject string
	Body    string
}

// BuildDigestMessage renders the daily KPI digest for one organization.
// Start times are shown in now's location.
func BuildDigestMessage(orgName string, s models.DashboardStats, now time.Time) DigestEmail {
	loc := now.Location()
	name := strings.TrimSpace(orgName)
	if name == "" {
		name = "Glansen"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Daglig oversikt for %s\n", name)
	fmt.Fprintf(&b, "Generert %s (%s)\n\n", now.Format(digestStampLayout), loc.String())
	fmt.Fprintf(&b, "I dag: %d\n", s.TodayCount)
	fmt.Fprintf(&b, "Denne uken: %d\n", s.WeekCount)
	fmt.Fprintf(&b, "Denne måneden: %d\n", s.MonthCount)
	fmt.Fprintf(&b, "Kunder: %d\n\n", s.TotalCustomers)

	upcoming := stats.TopUpcoming(s, digestUpcomingLimit)
	if len(upcoming) == 0 {
		b.WriteString("Ingen kommende jobber.\n")
	} else {
		fmt.Fprintf(&b, "Kommende jobber (%d):\n", len(s.Upcoming))
		for _, booking := range upcoming {
			b.WriteString("- ")
			b.WriteString(digestLine(booking, loc))
			b.WriteString("\n")
		}
		if rest := len(s.Upcoming) - len(upcoming); rest > 0 {
			fmt.Fprintf(&b, "... og %d til\n", rest)
		}
	}

	return DigestEmail{
		Subject: fmt.Sprintf("Daglig oversikt for %s - %s", name, now.Format(digestDateLayout)),
		Body:    b.String(),
	}
}

func digestLine(booking models.Booking, loc *time.Location) string {
	parts := make([]string, 0, 4)
	if start, ok := models.ParseTimestamp(models.StringValue(booking.StartTime), loc); ok {
		parts = append(parts, start.In(loc).Format(digestStartLayout))
	}
	customer := strings.TrimSpace(models.StringValue(booking.CustomerName))
	if customer == "" {
		customer = "Ukjent kunde"
	}
	parts = append(parts, customer)
	if service := strings.TrimSpace(models.StringValue(booking.ServiceName)); service != "" {
		parts = append(parts, service)
	}
	if booking.Status != "" {
		parts = append(parts, "["+booking.Status+"]")
	}
	return strings.Join(parts, "  ")
}

// SendDigest mails message to every recipient and returns how many sends
// succeeded. Failures are logged per recipient.
func SendDigest(ctx context.Context, client EmailSender, recipients []string, message DigestEmail, logger *zerolog.Logger) int {
	if client == nil || message.Subject == "" || message.Body == "" {
		return 0
	}

	sent := 0
	for _, recipient := range recipients {
		recipient = strings.TrimSpace(recipient)
		if recipient == "" {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		sendCtx, cancel := newEmailContext(ctx, digestSendTimeout)
		err := client.Send(sendCtx, recipient, message.Subject, message.Body)
		cancel()
		if err != nil {
			if logger != nil {
				logger.Error().Err(err).Str("recipient", recipient).Msg("Failed to send digest email")
			}
			continue
		}
		sent++
	}
	return sent
}
