// Package uri provides parsing and validation for Zendesk API base URLs.
//
// URL format: https://{subdomain}.zendesk.com/api/v2
//
// Examples:
//
//	https://acme.zendesk.com/api/v2     (hosted account)
//	https://acme.zendesk.com            (path defaults to /api/v2)
//	http://localhost:8080/api/v2        (local stub; requires allow_http)
//
// Hosted accounts expose their subdomain; self-hosted or proxied endpoints
// are accepted with an empty Subdomain.
package uri

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

const (
	hostedDomain = "zendesk.com"
	apiPath      = "/api/v2"
)

// ErrForeignOrigin is returned by Resolve for absolute URLs outside the base.
var ErrForeignOrigin = errors.New("URL is outside the API origin")

// URI represents a parsed API base URL.
type URI struct {
	Scheme    string // "https" or "http"
	Host      string // e.g. "acme.zendesk.com" or "localhost:8080" (url.Host)
	Subdomain string // e.g. "acme"; empty for hosts outside zendesk.com
	Path      string // API root: "/api/v2", possibly behind a proxy prefix
}

// Parse parses an API base URL string.
//
// A missing path is normalized to /api/v2 and a trailing slash is dropped.
// Any other path must end in /api/v2; a proxy prefix such as
// /zendesk/api/v2 is kept.
func Parse(raw string) (*URI, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	if u.Scheme != "https" && u.Scheme != "http" {
		return nil, fmt.Errorf("unsupported scheme %q: expected \"https\"", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("missing host in URL %q", raw)
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return nil, fmt.Errorf("URL %q must not carry a query or fragment", raw)
	}

	path := strings.TrimRight(u.Path, "/")
	switch {
	case path == "":
		path = apiPath
	case !strings.HasSuffix(path, apiPath):
		return nil, fmt.Errorf("URL path %q must be empty or end in %s", u.Path, apiPath)
	}

	return &URI{
		Scheme:    u.Scheme,
		Host:      u.Host,
		Subdomain: subdomainOf(u.Hostname()),
		Path:      path,
	}, nil
}

// FromSubdomain builds the hosted API URL for an account subdomain.
func FromSubdomain(subdomain string) (*URI, error) {
	if err := validateSubdomain(subdomain); err != nil {
		return nil, err
	}
	return &URI{
		Scheme:    "https",
		Host:      subdomain + "." + hostedDomain,
		Subdomain: subdomain,
		Path:      apiPath,
	}, nil
}

// String returns the canonical base URL without a trailing slash.
func (u *URI) String() string {
	return fmt.Sprintf("%s://%s%s", u.Scheme, u.Host, u.Path)
}

// Secure reports whether the URL uses TLS.
func (u *URI) Secure() bool { return u.Scheme == "https" }

// Resolve joins an API-relative path (e.g. "tickets.json") onto the base.
// Absolute URLs, such as next_page links, are returned as-is only when they
// share the base's scheme and host; anything else fails with ErrForeignOrigin
// so credentials are never sent elsewhere.
func (u *URI) Resolve(rel string) (string, error) {
	ref, err := url.Parse(rel)
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", rel, err)
	}
	if ref.IsAbs() {
		if ref.Scheme != u.Scheme || !strings.EqualFold(ref.Host, u.Host) {
			return "", fmt.Errorf("%w: %s://%s", ErrForeignOrigin, ref.Scheme, ref.Host)
		}
		return rel, nil
	}
	return u.String() + "/" + strings.TrimLeft(rel, "/"), nil
}

// MustParse parses a URL and panics on error. Useful in tests and init blocks.
func MustParse(raw string) *URI {
	u, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return u
}

func subdomainOf(hostname string) string {
	suffix := "." + hostedDomain
	if !strings.HasSuffix(hostname, suffix) {
		return ""
	}
	sub := strings.TrimSuffix(hostname, suffix)
	if strings.Contains(sub, ".") {
		return ""
	}
	return sub
}

// validateSubdomain checks that a subdomain is a single DNS label.
func validateSubdomain(sub string) error {
	if sub == "" {
		return fmt.Errorf("subdomain must not be empty")
	}
	if strings.ContainsAny(sub, " ./\\?#:") {
		return fmt.Errorf("subdomain %q contains invalid characters", sub)
	}
	if strings.HasPrefix(sub, "-") || strings.HasSuffix(sub, "-") {
		return fmt.Errorf("subdomain %q must not start or end with a hyphen", sub)
	}
	return nil
}
