package dashboard

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestDashboardLayoutRenders(t *testing.T) {
	data := DashboardData{
		OrgName:     "Blank & Bil",
		Timezone:    "Europe/Oslo",
		GeneratedAt: "12.06.2024 10:00",
		Tiles: []KPITile{
			{Label: "I dag", Value: 3},
			{Label: "Denne uken", Value: 9},
		},
		Upcoming: []UpcomingBooking{
			{ID: "b1", CustomerName: "<script>", ServiceName: "Polering", StartLabel: "13.06 08:00", Status: "confirmed"},
			{ID: "b2", StartLabel: "14.06 09:00"},
		},
		UpcomingTotal: 5,
	}

	var buf bytes.Buffer
	if err := DashboardLayout(data).Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	html := buf.String()

	for _, want := range []string{
		"Blank &amp; Bil",
		"<p class=\"text-3xl font-bold\">9</p>",
		"(5)",
		"data-booking-id=\"b1\"",
		"&lt;script&gt;",
		"Ukjent kunde",
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("rendered html missing %q:\n%s", want, html)
		}
	}
	if strings.Contains(html, "<script>") {
		t.Fatal("customer name was not escaped")
	}
	if strings.Contains(html, "sist synkronisert") {
		t.Fatal("unexpected last sync label")
	}
}

func TestUpcomingListEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := UpcomingList(nil, 0).Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "Ingen kommende jobber") {
		t.Fatalf("unexpected html: %s", buf.String())
	}
}
