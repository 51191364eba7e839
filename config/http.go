package config

import (
	"fmt"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// Addr is the address to bind the HTTP server to.
	Addr string `env:"HTTP_ADDR" envDefault:":8080"`

	// CookieDomain is the domain for session cookies.
	// Leave empty to use the request domain.
	CookieDomain string `env:"APP_COOKIE_DOMAIN" envDefault:""`

	// CompressionEnabled enables gzip compression for text-based responses.
	CompressionEnabled bool `env:"HTTP_COMPRESSION_ENABLED" envDefault:"false"`

	// CompressionLevel is the gzip compression level (1-9).
	// Default is 6 (standard gzip default).
	CompressionLevel int `env:"HTTP_COMPRESSION_LEVEL" envDefault:"6"`
}

// Sanitize applies guardrails to HTTP configuration values.
func (h *HTTPConfig) Sanitize() {
	h.CookieDomain = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(h.CookieDomain)), ".")

	// Clamp compression level to valid gzip range (1-9)
	if h.CompressionLevel < 1 {
		h.CompressionLevel = 1
	}
	if h.CompressionLevel > 9 {
		h.CompressionLevel = 9
	}
}

// Validate rejects a cookie domain that browsers would refuse, such as "com" or "co.uk".
func (h HTTPConfig) Validate() error {
	if h.CookieDomain == "" || h.CookieDomain == "localhost" {
		return nil
	}
	suffix, icann := publicsuffix.PublicSuffix(h.CookieDomain)
	if icann && suffix == h.CookieDomain {
		return fmt.Errorf("APP_COOKIE_DOMAIN %q is a public suffix", h.CookieDomain)
	}
	return nil
}
