package request

import (
	"net"
	"strings"
)

// OrgSlugFromHost extracts the organization slug from a {slug}.{baseDomain}
// host. The port is ignored and matching is case-insensitive. ok is false for
// hosts outside baseDomain; an empty slug with ok true means the bare domain.
func OrgSlugFromHost(host, baseDomain string) (slug string, ok bool) {
	host = strings.ToLower(strings.TrimSpace(host))
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.TrimSuffix(host, ".")
	baseDomain = strings.ToLower(strings.TrimSpace(baseDomain))
	if baseDomain == "" {
		return "", false
	}

	if host == baseDomain {
		return "", true
	}
	if !strings.HasSuffix(host, "."+baseDomain) {
		return "", false
	}

	slug = strings.TrimSuffix(host, "."+baseDomain)
	// Nested subdomains are not organizations.
	if slug == "" || strings.Contains(slug, ".") {
		return "", true
	}
	return slug, true
}
