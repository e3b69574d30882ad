package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/codr1/Glansen/internal/testutil"
)

func TestGenerateAndParseToken(t *testing.T) {
	token, prefix, secret, err := GenerateToken()
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	if !strings.HasPrefix(token, "glsn_"+prefix+"_") {
		t.Fatalf("token %q does not carry prefix %q", token, prefix)
	}

	gotPrefix, gotSecret, err := ParseToken(token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if gotPrefix != prefix || gotSecret != secret {
		t.Fatalf("parsed %q/%q, want %q/%q", gotPrefix, gotSecret, prefix, secret)
	}
}

func TestParseTokenRejects(t *testing.T) {
	tests := []string{
		"",
		"glsn",
		"glsn_abc",
		"pat_0123456789ab_secret",
		"glsn_0123456789ab_",
		"glsn_short_secret",
		"glsn_zzzzzzzzzzzz_secret",
	}

	for _, raw := range tests {
		if _, _, err := ParseToken(raw); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("ParseToken(%q) = %v, want ErrInvalidToken", raw, err)
		}
	}
}

func TestAuthenticate(t *testing.T) {
	database := testutil.NewTestDB(t)
	testutil.SeedOrganization(t, database, "org-1", "blank-bil", "")
	ctx := context.Background()

	token, row, err := IssueToken(ctx, database.Queries, "org-1", "dashboard")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	if row.TokenHash == "" || strings.Contains(token, row.TokenHash) {
		t.Fatalf("unexpected token row: %+v", row)
	}

	now := time.Date(2024, 6, 12, 10, 0, 0, 0, time.UTC)
	principal, err := Authenticate(ctx, database.Queries, token, now)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if principal.OrgID != "org-1" || principal.TokenID != row.ID || principal.Name != "dashboard" {
		t.Fatalf("unexpected principal: %+v", principal)
	}

	stored, err := database.Queries.GetAPITokenByPrefix(ctx, row.TokenPrefix)
	if err != nil {
		t.Fatalf("load token: %v", err)
	}
	if !stored.LastUsedAt.Valid || !stored.LastUsedAt.Time.Equal(now) {
		t.Fatalf("last_used_at = %+v, want %v", stored.LastUsedAt, now)
	}

	prefix, _, _ := ParseToken(token)
	if _, err := Authenticate(ctx, database.Queries, "glsn_"+prefix+"_wrong-secret", now); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for wrong secret, got %v", err)
	}

	other, _, _, err := GenerateToken()
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	if _, err := Authenticate(ctx, database.Queries, other, now); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for unknown token, got %v", err)
	}
}

func TestIssueTokenRequiresOrganization(t *testing.T) {
	database := testutil.NewTestDB(t)
	if _, _, err := IssueToken(context.Background(), database.Queries, " ", "x"); err == nil {
		t.Fatal("expected error for empty organization id")
	}
}

func TestTokenFromRequest(t *testing.T) {
	tests := []struct {
		name   string
		header string
		cookie string
		want   string
	}{
		{name: "bearer", header: "Bearer glsn_a_b", want: "glsn_a_b"},
		{name: "bearer_lowercase", header: "bearer  glsn_a_b ", want: "glsn_a_b"},
		{name: "basic_ignored", header: "Basic dXNlcjpwYXNz", cookie: "glsn_c_d", want: ""},
		{name: "cookie", cookie: "glsn_c_d", want: "glsn_c_d"},
		{name: "none", want: ""},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if test.header != "" {
				req.Header.Set("Authorization", test.header)
			}
			if test.cookie != "" {
				req.AddCookie(&http.Cookie{Name: TokenCookieName, Value: test.cookie})
			}
			if got := TokenFromRequest(req); got != test.want {
				t.Fatalf("TokenFromRequest = %q, want %q", got, test.want)
			}
		})
	}
}
