// Package backend reads tenant data from the platform's REST API.
package backend

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Glansen/internal/models"
)

const (
	defaultTimeout   = 15 * time.Second
	maxResponseBytes = 32 << 20
	maxErrorBody     = 512
)

// Config is resolved once at startup and handed to NewClient.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("backend returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Body)
}

// Client talks to a PostgREST-style backend.
type Client struct {
	baseURL    *url.URL
	apiKey     string
	httpClient *http.Client
}

// NewClient validates cfg and returns a Client. A nil httpClient gets a
// default client using cfg.Timeout.
func NewClient(cfg Config, httpClient *http.Client) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		return nil, fmt.Errorf("backend base URL is required")
	}
	baseURL, err := url.Parse(strings.TrimSuffix(raw, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse backend base URL: %w", err)
	}
	if baseURL.Scheme == "" || baseURL.Host == "" {
		return nil, fmt.Errorf("backend base URL must be absolute")
	}

	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
	}, nil
}

// ListBookings fetches every booking of orgID ordered by start time.
func (c *Client) ListBookings(ctx context.Context, orgID string) ([]models.Booking, error) {
	orgID = strings.TrimSpace(orgID)
	if orgID == "" {
		return nil, fmt.Errorf("org id is required")
	}

	query := url.Values{}
	query.Set("org_id", "eq."+orgID)
	query.Set("order", "start_time.asc")

	body, err := c.get(ctx, "bookings", query)
	if err != nil {
		return nil, fmt.Errorf("list bookings for org %s: %w", orgID, err)
	}

	bookings, err := DecodeBookings(body, orgID)
	if err != nil {
		return nil, fmt.Errorf("list bookings for org %s: %w", orgID, err)
	}
	return bookings, nil
}

// ListOrganizations fetches every organization visible to the API key.
func (c *Client) ListOrganizations(ctx context.Context) ([]models.Organization, error) {
	query := url.Values{}
	query.Set("order", "name.asc")

	body, err := c.get(ctx, "organizations", query)
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}

	orgs, err := DecodeOrganizations(body)
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}
	return orgs, nil
}

func (c *Client) get(ctx context.Context, resource string, query url.Values) ([]byte, error) {
	endpoint := c.baseURL.JoinPath(resource)
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", resource, err)
	}
	defer resp.Body.Close()

	log.Ctx(ctx).Debug().
		Str("resource", resource).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("Backend request completed")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", resource, err)
	}
	if len(body) > maxResponseBytes {
		return nil, fmt.Errorf("%s response exceeds %d bytes", resource, maxResponseBytes)
	}
	return body, nil
}
