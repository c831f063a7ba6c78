package security

import (
	"fmt"
	"net/http"
	"strings"
)

// Directive is one Content-Security-Policy directive and its sources.
type Directive struct {
	Name    string
	Sources []string
}

// Policy is an ordered Content-Security-Policy.
type Policy []Directive

func (p Policy) String() string {
	parts := make([]string, 0, len(p))
	for _, d := range p {
		if len(d.Sources) == 0 {
			parts = append(parts, d.Name)
			continue
		}
		parts = append(parts, d.Name+" "+strings.Join(d.Sources, " "))
	}
	return strings.Join(parts, "; ")
}

// HeadersConfig holds security headers configuration
type HeadersConfig struct {
	// PagePolicy applies to HTML pages and static assets.
	PagePolicy Policy
	// APIPolicy applies under APIPrefix, where nothing is ever rendered.
	APIPolicy Policy
	APIPrefix string

	HSTSMaxAge            int
	HSTSIncludeSubdomains bool
	HSTSPreload           bool

	Static map[string]string
}

// DefaultHeadersConfig returns the policy for the dashboard page: scripts from
// the Chart.js and htmx CDNs, the logo from the rental operator's site.
func DefaultHeadersConfig() HeadersConfig {
	return HeadersConfig{
		PagePolicy: Policy{
			{"default-src", []string{"'self'"}},
			{"script-src", []string{"'self'", "https://cdn.jsdelivr.net", "https://unpkg.com"}},
			{"style-src", []string{"'self'", "'unsafe-inline'"}},
			{"img-src", []string{"'self'", "data:", "https://joyride.city"}},
			{"connect-src", []string{"'self'"}},
			{"font-src", []string{"'self'"}},
			{"object-src", []string{"'none'"}},
			{"frame-ancestors", []string{"'none'"}},
			{"base-uri", []string{"'self'"}},
			{"form-action", []string{"'self'"}},
		},
		APIPolicy: Policy{
			{"default-src", []string{"'none'"}},
			{"frame-ancestors", []string{"'none'"}},
		},
		APIPrefix: "/api/",

		HSTSMaxAge:            31536000,
		HSTSIncludeSubdomains: true,
		HSTSPreload:           true,

		Static: map[string]string{
			"X-Content-Type-Options":       "nosniff",
			"X-Frame-Options":              "DENY",
			"Referrer-Policy":              "strict-origin-when-cross-origin",
			"Permissions-Policy":           "geolocation=(), microphone=(), camera=(), payment=()",
			"Cross-Origin-Opener-Policy":   "same-origin",
			"Cross-Origin-Resource-Policy": "same-origin",
		},
	}
}

// HeadersMiddleware applies security headers to responses
type HeadersMiddleware struct {
	config  HeadersConfig
	pageCSP string
	apiCSP  string
	hsts    string
}

// NewHeadersMiddleware creates a new security headers middleware
func NewHeadersMiddleware(config HeadersConfig) *HeadersMiddleware {
	h := &HeadersMiddleware{
		config:  config,
		pageCSP: config.PagePolicy.String(),
		apiCSP:  config.APIPolicy.String(),
	}
	if config.HSTSMaxAge > 0 {
		h.hsts = fmt.Sprintf("max-age=%d", config.HSTSMaxAge)
		if config.HSTSIncludeSubdomains {
			h.hsts += "; includeSubDomains"
		}
		if config.HSTSPreload {
			h.hsts += "; preload"
		}
	}
	return h
}

// Middleware returns the HTTP middleware function
func (h *HeadersMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.applyHeaders(w.Header(), r)
		next.ServeHTTP(w, r)
	})
}

func (h *HeadersMiddleware) applyHeaders(headers http.Header, r *http.Request) {
	for name, value := range h.config.Static {
		headers.Set(name, value)
	}

	csp := h.pageCSP
	if h.config.APIPrefix != "" && h.apiCSP != "" && strings.HasPrefix(r.URL.Path, h.config.APIPrefix) {
		csp = h.apiCSP
	}
	if csp != "" {
		headers.Set("Content-Security-Policy", csp)
	}

	// HSTS only over TLS
	if r.TLS != nil && h.hsts != "" {
		headers.Set("Strict-Transport-Security", h.hsts)
	}
}

// StaticAssetMiddleware adds caching headers for static assets
func StaticAssetMiddleware(maxAge int) func(http.Handler) http.Handler {
	value := fmt.Sprintf("public, max-age=%d", maxAge)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if maxAge > 0 {
				w.Header().Set("Cache-Control", value)
			}
			next.ServeHTTP(w, r)
		})
	}
}
