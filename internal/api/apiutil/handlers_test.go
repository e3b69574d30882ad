package apiutil

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/a-h/templ"

	"github.com/codr1/Glansen/internal/api/authz"
)

func TestParseLimitField(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{raw: "", want: 8},
		{raw: " 3 ", want: 3},
		{raw: "50", want: 50},
		{raw: "51", want: 50},
		{raw: "0", wantErr: true},
		{raw: "-2", wantErr: true},
		{raw: "ten", wantErr: true},
	}

	for _, test := range tests {
		t.Run(test.raw, func(t *testing.T) {
			got, err := ParseLimitField(test.raw, "limit", 8, 50)
			if test.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", test.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != test.want {
				t.Fatalf("ParseLimitField(%q) = %d, want %d", test.raw, got, test.want)
			}
		})
	}
}

func TestWriteJSON(t *testing.T) {
	recorder := httptest.NewRecorder()
	if err := WriteJSON(recorder, http.StatusCreated, map[string]int{"count": 2}); err != nil {
		t.Fatalf("write json: %v", err)
	}
	if recorder.Code != http.StatusCreated {
		t.Fatalf("status = %d", recorder.Code)
	}
	if got := recorder.Header().Get("Content-Type"); got != "application/json" {
		t.Fatalf("content type = %q", got)
	}
	if got := strings.TrimSpace(recorder.Body.String()); got != `{"count":2}` {
		t.Fatalf("body = %q", got)
	}
}

func TestWriteHandlerError(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	recorder := httptest.NewRecorder()
	WriteHandlerError(recorder, req, HandlerError{Status: http.StatusBadGateway, Message: "Backend unavailable", Err: errors.New("dial tcp")})
	if recorder.Code != http.StatusBadGateway || !strings.Contains(recorder.Body.String(), "Backend unavailable") {
		t.Fatalf("unexpected response: %d %q", recorder.Code, recorder.Body.String())
	}

	recorder = httptest.NewRecorder()
	WriteHandlerError(recorder, req, errors.New("secret detail"))
	if recorder.Code != http.StatusInternalServerError || strings.Contains(recorder.Body.String(), "secret detail") {
		t.Fatalf("unexpected response: %d %q", recorder.Code, recorder.Body.String())
	}
}

func TestRenderHTMLComponent(t *testing.T) {
	ok := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, "<p>hei</p>")
		return err
	})
	recorder := httptest.NewRecorder()
	if !RenderHTMLComponent(context.Background(), recorder, ok, map[string]string{"Cache-Control": "no-store"}, "log", "user") {
		t.Fatal("expected render to succeed")
	}
	if recorder.Body.String() != "<p>hei</p>" || recorder.Header().Get("Cache-Control") != "no-store" {
		t.Fatalf("unexpected response: %q %v", recorder.Body.String(), recorder.Header())
	}

	failing := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, _ = io.WriteString(w, "partial")
		return errors.New("boom")
	})
	recorder = httptest.NewRecorder()
	if RenderHTMLComponent(context.Background(), recorder, failing, nil, "log", "Failed to render") {
		t.Fatal("expected render to fail")
	}
	if recorder.Code != http.StatusInternalServerError || strings.Contains(recorder.Body.String(), "partial") {
		t.Fatalf("unexpected response: %d %q", recorder.Code, recorder.Body.String())
	}
}

func TestRequireOrganization(t *testing.T) {
	org := &authz.Organization{ID: "org-1", Slug: "blank-bil"}

	tests := []struct {
		name       string
		principal  *authz.Principal
		org        *authz.Organization
		wantStatus int
	}{
		{name: "unauthenticated", org: org, wantStatus: http.StatusUnauthorized},
		{name: "no_org", principal: &authz.Principal{OrgID: "org-1"}, wantStatus: http.StatusNotFound},
		{name: "other_org", principal: &authz.Principal{OrgID: "org-2"}, org: org, wantStatus: http.StatusForbidden},
		{name: "allowed", principal: &authz.Principal{OrgID: "org-1"}, org: org, wantStatus: http.StatusOK},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			ctx := req.Context()
			if test.principal != nil {
				ctx = authz.ContextWithPrincipal(ctx, test.principal)
			}
			if test.org != nil {
				ctx = authz.ContextWithOrganization(ctx, test.org)
			}
			recorder := httptest.NewRecorder()

			got, ok := RequireOrganization(recorder, req.WithContext(ctx))
			if recorder.Code != test.wantStatus {
				t.Fatalf("status = %d, want %d", recorder.Code, test.wantStatus)
			}
			if ok != (test.wantStatus == http.StatusOK) {
				t.Fatalf("ok = %t", ok)
			}
			if ok && got != org {
				t.Fatalf("org = %+v", got)
			}
		})
	}
}
