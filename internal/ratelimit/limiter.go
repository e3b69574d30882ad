// Package ratelimit provides fixed-window rate limiting for API requests.
package ratelimit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Clock interface for testing time-dependent behavior.
type Clock interface {
	Now() time.Time
}

// realClock implements Clock using the system time.
type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Config holds rate limit configuration.
type Config struct {
	TokenMaxPerWindow int           // Max requests per API token per window (default: 600)
	IPMaxPerWindow    int           // Max requests per client IP per window (default: 1200)
	Window            time.Duration // Window length (default: 1h)

	// Clock for testing (nil uses real time)
	Clock Clock
}

// DefaultConfig returns production-ready defaults.
func DefaultConfig() *Config {
	return &Config{
		TokenMaxPerWindow: 600,
		IPMaxPerWindow:    1200,
		Window:            time.Hour,
	}
}

// LimitResult contains the result of a rate limit check.
type LimitResult struct {
	Allowed    bool
	RetryAfter time.Duration
	Reason     string // For logging
}

// entry tracks request counts for one window.
type entry struct {
	count   int
	firstAt time.Time // First request in window
	lastAt  time.Time
}

// Limiter counts requests per token and per IP in fixed windows.
type Limiter struct {
	config *Config
	clock  Clock
	mu     sync.RWMutex
	// Keyed by hash of token prefix or IP
	byToken map[string]*entry
	byIP    map[string]*entry

	// Cleanup goroutine management
	cleanupCtx    context.Context
	cleanupCancel context.CancelFunc
	cleanupOnce   sync.Once
	cleanupWg     sync.WaitGroup
}

// New creates a new rate limiter with the given config.
func New(cfg *Config) *Limiter {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Hour
	}
	clock := cfg.Clock
	if clock == nil {
		clock = realClock{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Limiter{
		config:        cfg,
		clock:         clock,
		byToken:       make(map[string]*entry),
		byIP:          make(map[string]*entry),
		cleanupCtx:    ctx,
		cleanupCancel: cancel,
	}
}

// Close stops the cleanup goroutine and releases resources.
func (l *Limiter) Close() {
	l.cleanupCancel()
	l.cleanupWg.Wait()
}

// Allow checks and, when allowed, records the request under one lock.
func (l *Limiter) Allow(tokenKey, ip string) LimitResult {
	l.startCleanup()
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	result := l.check(tokenKey, ip, now)
	if result.Allowed {
		l.record(tokenKey, ip, now)
	}
	return result
}

func (l *Limiter) check(tokenKey, ip string, now time.Time) LimitResult {
	window := l.config.Window

	if tokenKey != "" && l.config.TokenMaxPerWindow > 0 {
		if e := l.byToken[l.hashKey("token:", tokenKey)]; e != nil {
			if now.Sub(e.firstAt) < window && e.count >= l.config.TokenMaxPerWindow {
				return LimitResult{
					Allowed:    false,
					RetryAfter: window - now.Sub(e.firstAt),
					Reason:     "token_limit",
				}
			}
		}
	}

	if l.config.IPMaxPerWindow > 0 {
		if e := l.byIP[l.hashKey("ip:", ip)]; e != nil {
			if now.Sub(e.firstAt) < window && e.count >= l.config.IPMaxPerWindow {
				return LimitResult{
					Allowed:    false,
					RetryAfter: window - now.Sub(e.firstAt),
					Reason:     "ip_limit",
				}
			}
		}
	}

	return LimitResult{Allowed: true}
}

func (l *Limiter) record(tokenKey, ip string, now time.Time) {
	if tokenKey != "" {
		bump(l.byToken, l.hashKey("token:", tokenKey), now, l.config.Window)
	}
	bump(l.byIP, l.hashKey("ip:", ip), now, l.config.Window)
}

func bump(entries map[string]*entry, key string, now time.Time, window time.Duration) {
	e := entries[key]
	if e == nil || now.Sub(e.firstAt) >= window {
		entries[key] = &entry{count: 1, firstAt: now, lastAt: now}
		return
	}
	e.count++
	e.lastAt = now
}

func (l *Limiter) hashKey(prefix, value string) string {
	hash := sha256.Sum256([]byte(value))
	return prefix + hex.EncodeToString(hash[:8])
}

func (l *Limiter) startCleanup() {
	l.cleanupOnce.Do(func() {
		l.cleanupWg.Add(1)
		go func() {
			defer l.cleanupWg.Done()
			ticker := time.NewTicker(5 * time.Minute)
			defer ticker.Stop()
			for {
				select {
				case <-l.cleanupCtx.Done():
					return
				case <-ticker.C:
					l.cleanup()
				}
			}
		}()
	})
}

func (l *Limiter) cleanup() {
	now := l.clock.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	for k, e := range l.byToken {
		if now.Sub(e.firstAt) >= l.config.Window {
			delete(l.byToken, k)
		}
	}
	for k, e := range l.byIP {
		if now.Sub(e.firstAt) >= l.config.Window {
			delete(l.byIP, k)
		}
	}
}

// GetClientIP extracts the client IP from a request.
// When trustProxy is true, uses the rightmost IP from X-Forwarded-For (added by your proxy).
// When trustProxy is false, ignores X-Forwarded-For entirely (prevents spoofing).
func GetClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			// Use RIGHTMOST IP - this is the one your proxy added, not user-supplied
			parts := strings.Split(xff, ",")
			for i := len(parts) - 1; i >= 0; i-- {
				ip := strings.TrimSpace(parts[i])
				// Skip private/internal IPs to find the real client
				if ip != "" && !isPrivateIP(ip) {
					return ip
				}
			}
			// All IPs are private, use the last one
			return strings.TrimSpace(parts[len(parts)-1])
		}

		// Check X-Real-IP (set by nginx)
		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			return strings.TrimSpace(xri)
		}
	}

	// Fall back to RemoteAddr (direct connection or untrusted proxy)
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr might not have a port (e.g., Unix socket or malformed)
		// Try to parse as IP directly, otherwise return as-is
		if parsed := net.ParseIP(r.RemoteAddr); parsed != nil {
			return r.RemoteAddr
		}
		// Last resort: strip anything after last colon that looks like a port
		if idx := strings.LastIndex(r.RemoteAddr, ":"); idx != -1 {
			candidate := r.RemoteAddr[:idx]
			if net.ParseIP(candidate) != nil {
				return candidate
			}
		}
		return r.RemoteAddr
	}
	return ip
}

// privateNetworks holds parsed CIDR ranges for private/reserved IPs.
// Parsed once at package init for efficiency.
var privateNetworks []*net.IPNet

func init() {
	privateRanges := []string{
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"127.0.0.0/8",
		"::1/128",
		"fc00::/7",
		"fe80::/10", // Link-local
	}
	for _, cidr := range privateRanges {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			panic("invalid private CIDR: " + cidr)
		}
		privateNetworks = append(privateNetworks, network)
	}
}

// isPrivateIP checks if an IP is in a private/reserved range.
// Handles both IPv4 and IPv4-mapped IPv6 addresses (e.g., ::ffff:192.168.1.1).
func isPrivateIP(ipStr string) bool {
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return false
	}

	// Convert IPv4-mapped IPv6 to IPv4 for consistent matching
	// e.g., ::ffff:192.168.1.1 -> 192.168.1.1
	if ipv4 := ip.To4(); ipv4 != nil {
		ip = ipv4
	}

	for _, network := range privateNetworks {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// SanitizeKey masks a token key for logging.
func SanitizeKey(key string) string {
	key = strings.TrimSpace(key)
	if len(key) > 4 {
		return key[:4] + "***"
	}
	if key == "" {
		return ""
	}
	return "***"
}

// LogRateLimitExceeded logs a rate limit event with a sanitized token key.
func LogRateLimitExceeded(ctx context.Context, tokenKey, ip, reason string) {
	log.Ctx(ctx).Warn().
		Str("event", "rate_limit_exceeded").
		Str("token", SanitizeKey(tokenKey)).
		Str("ip", ip).
		Str("reason", reason).
		Msg("API rate limit exceeded")
}
