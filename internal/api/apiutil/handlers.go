package apiutil

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/a-h/templ"
	"github.com/rs/zerolog/log"

	"github.com/codr1/Glansen/internal/api/authz"
)

type HandlerError struct {
	Status  int
	Message string
	Err     error
}

func (e HandlerError) Error() string {
	return e.Message
}

func (e HandlerError) Unwrap() error {
	return e.Err
}

// WriteHandlerError writes err as a plain-text response. HandlerError keeps
// its status and message; anything else becomes a 500 without details.
func WriteHandlerError(w http.ResponseWriter, r *http.Request, err error) {
	var handlerErr HandlerError
	if errors.As(err, &handlerErr) {
		if handlerErr.Status >= http.StatusInternalServerError {
			log.Ctx(r.Context()).Error().Err(handlerErr.Err).Msg(handlerErr.Message)
		}
		http.Error(w, handlerErr.Message, handlerErr.Status)
		return
	}
	log.Ctx(r.Context()).Error().Err(err).Msg("Unhandled request error")
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	if err := encoder.Encode(payload); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err := w.Write(buf.Bytes())
	return err
}

// RenderHTMLComponent renders component into a buffer and writes it with the
// given extra headers. On failure it logs logMsg and responds with userMsg.
func RenderHTMLComponent(ctx context.Context, w http.ResponseWriter, component templ.Component, headers map[string]string, logMsg, userMsg string) bool {
	var buf bytes.Buffer
	if err := component.Render(ctx, &buf); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg(logMsg)
		http.Error(w, userMsg, http.StatusInternalServerError)
		return false
	}

	for key, value := range headers {
		w.Header().Set(key, value)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Failed to write response")
		return false
	}
	return true
}

// RequireOrganization returns the routed organization when the request's
// token belongs to it, and writes 401/403/404 otherwise.
func RequireOrganization(w http.ResponseWriter, r *http.Request) (*authz.Organization, bool) {
	logger := log.Ctx(r.Context())
	principal := authz.PrincipalFromContext(r.Context())
	routed := authz.OrganizationFromContext(r.Context())

	org, err := authz.CurrentOrganization(r.Context())
	if err == nil {
		return org, true
	}

	switch {
	case errors.Is(err, authz.ErrUnauthenticated):
		logEvent := logger.Warn()
		if routed != nil {
			logEvent = logEvent.Str("org_id", routed.ID)
		}
		logEvent.Msg("Organization access denied: unauthenticated")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	case errors.Is(err, authz.ErrForbidden) && routed == nil:
		logger.Debug().Msg("No organization resolved for request")
		http.Error(w, "Organization not specified", http.StatusNotFound)
	case errors.Is(err, authz.ErrForbidden):
		logEvent := logger.Warn().Str("org_id", routed.ID)
		if principal != nil {
			logEvent = logEvent.Int64("token_id", principal.TokenID).Str("token_org_id", principal.OrgID)
		}
		logEvent.Msg("Organization access denied: forbidden")
		http.Error(w, "Forbidden", http.StatusForbidden)
	default:
		logger.Error().Err(err).Msg("Organization access denied: error")
		http.Error(w, "Failed to authorize request", http.StatusInternalServerError)
	}
	return nil, false
}
