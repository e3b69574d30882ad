package dashboard

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// DashboardLayout renders the KPI tiles and the upcoming jobs list.
func DashboardLayout(data DashboardData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w,
			`<main id="dashboard" class="mx-auto max-w-5xl p-6" hx-get="/admin/dashboard" hx-trigger="every 60s" hx-swap="outerHTML"><header class="mb-6"><h1 class="text-2xl font-semibold">%s</h1><p class="text-sm text-gray-500">Oppdatert %s (%s)`,
			templ.EscapeString(data.OrgName),
			templ.EscapeString(data.GeneratedAt),
			templ.EscapeString(data.Timezone),
		); err != nil {
			return err
		}
		if data.LastSyncAt != "" {
			if _, err := fmt.Fprintf(w, ` · sist synkronisert %s`, templ.EscapeString(data.LastSyncAt)); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `</p></header>`); err != nil {
			return err
		}
		if err := KPITiles(data.Tiles).Render(ctx, w); err != nil {
			return err
		}
		if err := UpcomingList(data.Upcoming, data.UpcomingTotal).Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</main>`)
		return err
	})
}

func KPITiles(tiles []KPITile) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<section id="dashboard-kpis" class="grid grid-cols-2 gap-4 md:grid-cols-4">`); err != nil {
			return err
		}
		for _, tile := range tiles {
			if _, err := fmt.Fprintf(w,
				`<div class="rounded-lg bg-white p-4 shadow"><p class="text-sm text-gray-500">%s</p><p class="text-3xl font-bold">%d</p></div>`,
				templ.EscapeString(tile.Label),
				tile.Value,
			); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</section>`)
		return err
	})
}

func UpcomingList(upcoming []UpcomingBooking, total int) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w,
			`<section id="dashboard-upcoming" class="mt-8"><h2 class="mb-3 text-lg font-semibold">Kommende jobber <span class="text-gray-500">(%d)</span></h2>`,
			total,
		); err != nil {
			return err
		}
		if len(upcoming) == 0 {
			if _, err := io.WriteString(w, `<p class="text-gray-500">Ingen kommende jobber.</p></section>`); err != nil {
				return err
			}
			return nil
		}

		if _, err := io.WriteString(w, `<ul class="divide-y rounded-lg bg-white shadow">`); err != nil {
			return err
		}
		for _, booking := range upcoming {
			customer := booking.CustomerName
			if customer == "" {
				customer = "Ukjent kunde"
			}
			if _, err := fmt.Fprintf(w,
				`<li class="flex justify-between p-3" data-booking-id="%s"><div><p class="font-medium">%s</p><p class="text-sm text-gray-500">%s</p></div><div class="text-right"><p>%s</p><p class="text-xs uppercase text-gray-500">%s</p></div></li>`,
				templ.EscapeString(booking.ID),
				templ.EscapeString(customer),
				templ.EscapeString(booking.ServiceName),
				templ.EscapeString(booking.StartLabel),
				templ.EscapeString(booking.Status),
			); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</ul></section>`)
		return err
	})
}
