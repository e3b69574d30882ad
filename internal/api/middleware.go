// internal/api/middleware.go
package api

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/codr1/Glansen/internal/api/auth"
	"github.com/codr1/Glansen/internal/api/authz"
	dbgen "github.com/codr1/Glansen/internal/db/generated"
	"github.com/codr1/Glansen/internal/ratelimit"
	"github.com/codr1/Glansen/internal/request"
)

type Middleware func(http.Handler) http.Handler

type requestIDContextKey struct{}

// OrganizationLookup resolves subdomain slugs.
type OrganizationLookup interface {
	GetOrganizationBySlug(ctx context.Context, slug string) (dbgen.Organization, error)
}

func ChainMiddleware(h http.Handler, middleware ...Middleware) http.Handler {
	for _, m := range middleware {
		h = m(h)
	}
	return h
}

// RequestIDFromContext returns the request ID set by WithRequestID, or "".
func RequestIDFromContext(ctx context.Context) string {
	requestID, _ := ctx.Value(requestIDContextKey{}).(string)
	return requestID
}

func WithLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create response wrapper to capture status code
		wrapped := wrapResponseWriter(w)

		next.ServeHTTP(wrapped, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", wrapped.status).
			Dur("duration", time.Since(start)).
			Str("request_id", RequestIDFromContext(r.Context())).
			Msg("Request completed")
	})
}

func WithRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				logger := log.Ctx(r.Context())
				// Log the full stack trace
				stack := debug.Stack()
				logger.Error().
					Interface("error", err).
					Str("stack", string(stack)).
					Msg("Panic recovered")

				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func WithRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()

		// Create a logger with the request ID
		logger := log.With().Str("request_id", requestID).Logger()

		// Add both the request ID and logger to context
		ctx := context.WithValue(r.Context(), requestIDContextKey{}, requestID)
		ctx = logger.WithContext(ctx)

		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// WithAuth resolves an API token from the Authorization header or the token
// cookie. Requests without a token pass through unauthenticated; a presented
// but invalid token is rejected.
func WithAuth(store auth.TokenStore) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := auth.TokenFromRequest(r)
			if raw == "" || isPublicPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			logger := log.Ctx(r.Context())
			principal, err := auth.Authenticate(r.Context(), store, raw, time.Now().UTC())
			if err != nil {
				if errors.Is(err, auth.ErrInvalidToken) {
					logger.Warn().Msg("Rejected invalid API token")
					http.Error(w, "Unauthorized", http.StatusUnauthorized)
					return
				}
				logger.Error().Err(err).Msg("Failed to authenticate API token")
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}

			ctx := authz.ContextWithPrincipal(r.Context(), principal)
			l := logger.With().Int64("token_id", principal.TokenID).Logger()
			ctx = l.WithContext(ctx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithRateLimit enforces per-token and per-IP request windows.
func WithRateLimit(limiter *ratelimit.Limiter, trustProxy bool) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil || isPublicPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			tokenKey := ""
			if principal := authz.PrincipalFromContext(r.Context()); principal != nil {
				tokenKey = strconv.FormatInt(principal.TokenID, 10)
			}
			ip := ratelimit.GetClientIP(r, trustProxy)

			result := limiter.Allow(tokenKey, ip)
			if !result.Allowed {
				ratelimit.LogRateLimitExceeded(r.Context(), tokenKey, ip, result.Reason)
				retryAfter := int(math.Ceil(result.RetryAfter.Seconds()))
				if retryAfter < 1 {
					retryAfter = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// responseWriter wrapper to capture status code
type responseWriter struct {
	http.ResponseWriter
	status int
}

func wrapResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, status: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// WithOrganization extracts the organization from the subdomain and adds it to context.
// Subdomain format: {org-slug}.{base_domain} (e.g., blank-bil.localhost)
func WithOrganization(queries OrganizationLookup, baseDomain string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublicPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			logger := log.Ctx(r.Context())

			slug, ok := request.OrgSlugFromHost(r.Host, baseDomain)
			if !ok {
				// Not a subdomain request - could be direct IP or different domain
				next.ServeHTTP(w, r)
				return
			}
			if slug == "" {
				logger.Debug().Str("host", r.Host).Msg("No organization subdomain")
				http.Error(w, "Organization not specified. Use {org-slug}."+baseDomain, http.StatusNotFound)
				return
			}

			// Look up organization by slug (timeout only applies to this DB query)
			queryCtx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
			defer cancel()

			org, err := queries.GetOrganizationBySlug(queryCtx, slug)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					logger.Warn().Str("slug", slug).Msg("Organization not found")
					http.Error(w, "Organization not found", http.StatusNotFound)
					return
				}
				logger.Error().Err(err).Str("slug", slug).Msg("Failed to look up organization")
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}

			authzOrg := &authz.Organization{
				ID:       org.ID,
				Name:     org.Name,
				Slug:     org.Slug,
				Timezone: org.Timezone,
			}
			ctx := authz.ContextWithOrganization(r.Context(), authzOrg)
			l := logger.With().Str("org_id", org.ID).Logger()
			ctx = l.WithContext(ctx)

			logger.Debug().Str("org_id", org.ID).Str("org_slug", org.Slug).Msg("Organization resolved from subdomain")
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func isPublicPath(path string) bool {
	return strings.HasPrefix(path, "/static/") || path == "/health" || path == "/favicon.ico"
}
