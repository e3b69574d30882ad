package layouts

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

const brandCSSVars = ":root{--brand-primary:#0f4c81;--brand-accent:#f2a900;--brand-muted:#6b7280;}"

// Base wraps body in the admin page shell.
func Base(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if title == "" {
			title = "Glansen"
		}
		if _, err := fmt.Fprintf(w,
			`<!DOCTYPE html><html lang="nb"><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><title>%s</title><style>%s</style><link rel="stylesheet" href="/static/css/main.css"><script src="https://unpkg.com/htmx.org@1.9.12" defer></script></head><body class="min-h-screen bg-gray-50">`,
			templ.EscapeString(title),
			brandCSSVars,
		); err != nil {
			return err
		}
		if body != nil {
			if err := body.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</body></html>`)
		return err
	})
}
