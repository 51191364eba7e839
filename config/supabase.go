package config

import "strings"

// SupabaseConfig holds the hosted backend endpoint and keys.
// Both URL and AnonKey may be empty; nothing fails at startup because of it.
type SupabaseConfig struct {
	// URL is the project endpoint, e.g. https://xyzcompany.supabase.co.
	URL string `env:"URL"`

	// AnonKey is the public anonymous API key sent as the apikey header.
	AnonKey string `env:"ANON_KEY"`

	// JWTSecret enables local HS256 verification of access tokens when set.
	JWTSecret string `env:"JWT_SECRET"`
}

// Sanitize trims whitespace and trailing slashes.
func (s *SupabaseConfig) Sanitize() {
	s.URL = strings.TrimRight(strings.TrimSpace(s.URL), "/")
	s.AnonKey = strings.TrimSpace(s.AnonKey)
	s.JWTSecret = strings.TrimSpace(s.JWTSecret)
}

// URLSet reports whether a project URL is configured.
func (s SupabaseConfig) URLSet() bool { return s.URL != "" }

// KeySet reports whether an anon key is configured.
func (s SupabaseConfig) KeySet() bool { return s.AnonKey != "" }
