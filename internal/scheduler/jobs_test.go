package scheduler

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/codr1/Glansen/internal/bookings"
	dbgen "github.com/codr1/Glansen/internal/db/generated"
	"github.com/codr1/Glansen/internal/models"
	"github.com/codr1/Glansen/internal/testutil"
)

type fakeSyncer struct {
	results []bookings.Result
	err     error
	calls   int
}

func (f *fakeSyncer) SyncOrganizations(ctx context.Context) ([]bookings.Result, error) {
	f.calls++
	return f.results, f.err
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

type sentEmail struct {
	recipient string
	subject   string
	body      string
}

type fakeEmailSender struct {
	mu   sync.Mutex
	sent []sentEmail
}

func (f *fakeEmailSender) Send(ctx context.Context, recipient, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentEmail{recipient: recipient, subject: subject, body: body})
	return nil
}

func (f *fakeEmailSender) SendFrom(ctx context.Context, recipient, subject, body, sender string) error {
	return f.Send(ctx, recipient, subject, body)
}

func TestRunSync(t *testing.T) {
	ctx := zerolog.Nop().WithContext(context.Background())

	ok := &fakeSyncer{results: []bookings.Result{{OrgID: "org-1", BookingCount: 3}, {OrgID: "org-2", BookingCount: 4}}}
	if got := runSync(ctx, ok); got != 2 {
		t.Fatalf("synced = %d, want 2", got)
	}

	partial := &fakeSyncer{results: []bookings.Result{{OrgID: "org-1"}}, err: errors.New("org-2 failed")}
	if got := runSync(ctx, partial); got != 1 {
		t.Fatalf("synced = %d, want 1", got)
	}
	if partial.calls != 1 {
		t.Fatalf("calls = %d", partial.calls)
	}
}

func TestRunDigest(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()

	for _, org := range []dbgen.UpsertOrganizationParams{
		{ID: "org-1", Name: "Blank Bil", Slug: "blank-bil", Timezone: "Europe/Oslo", DigestRecipients: "ops@blank.no, eier@blank.no"},
		{ID: "org-2", Name: "Vask", Slug: "vask"},
	} {
		if err := database.Queries.UpsertOrganization(ctx, org); err != nil {
			t.Fatalf("seed organization: %v", err)
		}
	}
	for _, booking := range []dbgen.UpsertBookingParams{
		{ID: "b1", OrgID: "org-1", Status: models.BookingStatusConfirmed, CustomerName: models.ToNullString(models.StringPtr("Kari")), StartTime: models.ToNullString(models.StringPtr("2024-06-12T14:00:00+02:00")), SyncedAt: time.Now()},
		{ID: "b2", OrgID: "org-2", Status: models.BookingStatusConfirmed, StartTime: models.ToNullString(models.StringPtr("2024-06-12T09:00:00Z")), SyncedAt: time.Now()},
	} {
		if err := database.Queries.UpsertBooking(ctx, booking); err != nil {
			t.Fatalf("seed booking: %v", err)
		}
	}

	sender := &fakeEmailSender{}
	clock := fixedClock{now: time.Date(2024, 6, 12, 4, 0, 0, 0, time.UTC)}

	sent, err := runDigest(ctx, database.Queries, sender, clock, time.UTC)
	if err != nil {
		t.Fatalf("run digest: %v", err)
	}
	if sent != 2 || len(sender.sent) != 2 {
		t.Fatalf("sent = %d (%d recorded), want 2", sent, len(sender.sent))
	}
	if sender.sent[0].recipient != "ops@blank.no" || sender.sent[1].recipient != "eier@blank.no" {
		t.Fatalf("recipients = %+v", sender.sent)
	}

	message := sender.sent[0]
	if message.subject != "Daglig oversikt for Blank Bil - 12.06.2024" {
		t.Fatalf("subject = %q", message.subject)
	}
	for _, want := range []string{"Generert 12.06.2024 06:00 (Europe/Oslo)", "I dag: 1", "Kari"} {
		if !strings.Contains(message.body, want) {
			t.Fatalf("body missing %q:\n%s", want, message.body)
		}
	}
}
