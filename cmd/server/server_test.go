package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/codr1/Glansen/internal/config"
	"github.com/codr1/Glansen/internal/ratelimit"
	"github.com/codr1/Glansen/internal/testutil"
)

func TestResolveConfigPath(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	if got := resolveConfigPath(""); got != defaultConfigPath {
		t.Fatalf("default path = %q", got)
	}

	t.Setenv("CONFIG_PATH", "/etc/glansen/app.yaml")
	if got := resolveConfigPath(""); got != "/etc/glansen/app.yaml" {
		t.Fatalf("env path = %q", got)
	}
	if got := resolveConfigPath("custom.yaml"); got != "custom.yaml" {
		t.Fatalf("flag path = %q", got)
	}
}

func TestNewServerRoutes(t *testing.T) {
	database := testutil.NewTestDB(t)
	testutil.SeedOrganization(t, database, "org-1", "blank-bil", "Europe/Oslo")

	cfg, err := config.Parse([]byte("app:\n  name: Glansen\n  port: 8080\n  base_domain: localhost\n"))
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}

	limiter := ratelimit.New(nil)
	t.Cleanup(limiter.Close)

	server := newServer(cfg, serverDeps{database: database, limiter: limiter, defaultLoc: time.UTC})
	if server.Addr != ":8080" {
		t.Fatalf("addr = %q", server.Addr)
	}

	tests := []struct {
		name       string
		host       string
		path       string
		wantStatus int
	}{
		{name: "health", host: "localhost", path: "/health", wantStatus: http.StatusOK},
		{name: "root_redirects", host: "blank-bil.localhost", path: "/", wantStatus: http.StatusFound},
		{name: "unknown_org", host: "nope.localhost", path: "/api/v1/dashboard/stats", wantStatus: http.StatusNotFound},
		{name: "missing_org", host: "localhost", path: "/api/v1/dashboard/stats", wantStatus: http.StatusNotFound},
		{name: "anonymous_stats", host: "blank-bil.localhost", path: "/api/v1/dashboard/stats", wantStatus: http.StatusUnauthorized},
		{name: "invalid_token", host: "blank-bil.localhost", path: "/api/v1/bookings", wantStatus: http.StatusUnauthorized},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, test.path, nil)
			req.Host = test.host
			if test.name == "invalid_token" {
				req.Header.Set("Authorization", "Bearer glsn_nothex_secret")
			}
			recorder := httptest.NewRecorder()
			server.Handler.ServeHTTP(recorder, req)
			if recorder.Code != test.wantStatus {
				t.Fatalf("status = %d, want %d (body %q)", recorder.Code, test.wantStatus, recorder.Body.String())
			}
			if recorder.Header().Get("X-Request-ID") == "" {
				t.Fatal("expected X-Request-ID header")
			}
		})
	}
}
