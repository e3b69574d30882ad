package auth

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/codr1/Glansen/internal/api/authz"
	dbgen "github.com/codr1/Glansen/internal/db/generated"
)

const (
	TokenCookieName = "glansen_token"
	tokenScheme     = "glsn"
	prefixBytes     = 6
	secretBytes     = 32
	// last_used_at is refreshed at most this often per token.
	touchInterval = time.Minute
)

var ErrInvalidToken = errors.New("invalid api token")

// TokenStore is the subset of generated queries token auth needs.
type TokenStore interface {
	GetAPITokenByPrefix(ctx context.Context, tokenPrefix string) (dbgen.ApiToken, error)
	TouchAPIToken(ctx context.Context, arg dbgen.TouchAPITokenParams) error
}

// TokenCreator persists a new token row.
type TokenCreator interface {
	CreateAPIToken(ctx context.Context, arg dbgen.CreateAPITokenParams) (dbgen.ApiToken, error)
}

// GenerateToken returns a new token in the form glsn_<prefix>_<secret>
// together with its lookup prefix and secret part.
func GenerateToken() (token, prefix, secret string, err error) {
	prefixRaw := make([]byte, prefixBytes)
	if _, err := rand.Read(prefixRaw); err != nil {
		return "", "", "", err
	}
	secretRaw := make([]byte, secretBytes)
	if _, err := rand.Read(secretRaw); err != nil {
		return "", "", "", err
	}

	prefix = hex.EncodeToString(prefixRaw)
	secret = base64.RawURLEncoding.EncodeToString(secretRaw)
	return tokenScheme + "_" + prefix + "_" + secret, prefix, secret, nil
}

// ParseToken splits a raw token into prefix and secret.
func ParseToken(raw string) (prefix, secret string, err error) {
	parts := strings.SplitN(strings.TrimSpace(raw), "_", 3)
	if len(parts) != 3 || parts[0] != tokenScheme {
		return "", "", ErrInvalidToken
	}
	prefix, secret = parts[1], parts[2]
	if len(prefix) != prefixBytes*2 || secret == "" {
		return "", "", ErrInvalidToken
	}
	if _, err := hex.DecodeString(prefix); err != nil {
		return "", "", ErrInvalidToken
	}
	return prefix, secret, nil
}

// IssueToken creates and stores a token for orgID. The plaintext token is
// only available from the return value.
func IssueToken(ctx context.Context, store TokenCreator, orgID, name string) (string, dbgen.ApiToken, error) {
	if strings.TrimSpace(orgID) == "" {
		return "", dbgen.ApiToken{}, errors.New("token requires organization id")
	}
	token, prefix, secret, err := GenerateToken()
	if err != nil {
		return "", dbgen.ApiToken{}, fmt.Errorf("generate token: %w", err)
	}
	hash, err := HashSecret(secret)
	if err != nil {
		return "", dbgen.ApiToken{}, fmt.Errorf("hash token: %w", err)
	}

	row, err := store.CreateAPIToken(ctx, dbgen.CreateAPITokenParams{
		OrgID:       orgID,
		Name:        name,
		TokenPrefix: prefix,
		TokenHash:   hash,
	})
	if err != nil {
		return "", dbgen.ApiToken{}, fmt.Errorf("store token: %w", err)
	}
	return token, row, nil
}

// Authenticate resolves a raw token to its Principal. Unknown or mismatched
// tokens return ErrInvalidToken.
func Authenticate(ctx context.Context, store TokenStore, raw string, now time.Time) (*authz.Principal, error) {
	prefix, secret, err := ParseToken(raw)
	if err != nil {
		return nil, err
	}

	row, err := store.GetAPITokenByPrefix(ctx, prefix)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("load token: %w", err)
	}
	if !VerifySecret(row.TokenHash, secret) {
		return nil, ErrInvalidToken
	}

	if !row.LastUsedAt.Valid || now.Sub(row.LastUsedAt.Time) >= touchInterval {
		if err := store.TouchAPIToken(ctx, dbgen.TouchAPITokenParams{
			LastUsedAt: sql.NullTime{Time: now, Valid: true},
			ID:         row.ID,
		}); err != nil {
			return nil, fmt.Errorf("touch token: %w", err)
		}
	}

	return &authz.Principal{
		TokenID: row.ID,
		OrgID:   row.OrgID,
		Name:    row.Name,
	}, nil
}

// TokenFromRequest returns the bearer token or the token cookie, or "".
func TokenFromRequest(r *http.Request) string {
	if r == nil {
		return ""
	}
	if header := strings.TrimSpace(r.Header.Get("Authorization")); header != "" {
		scheme, value, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(value)
		}
		return ""
	}
	cookie, err := r.Cookie(TokenCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
