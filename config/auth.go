package config

import (
	"fmt"
	"strings"
	"time"
)

// AuthMode represents the authentication mode for the application.
type AuthMode string

const (
	// AuthModeSupabase signs users in with email and password against hosted auth.
	AuthModeSupabase AuthMode = "supabase"
	// AuthModeOAuth uses OAuth/OIDC for authentication.
	AuthModeOAuth AuthMode = "oauth"
	// AuthModeMock uses mock/dev authentication (for development only).
	AuthModeMock AuthMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "supabase", "oauth", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: supabase, oauth, mock)", v)
	}
}

// IsPassword reports whether the mode signs in with an email/password form.
func (a AuthMode) IsPassword() bool { return a == AuthModeSupabase }

// SessionStoreMode selects where sessions are persisted.
type SessionStoreMode string

const (
	// SessionStoreRedis persists sessions in Redis.
	SessionStoreRedis SessionStoreMode = "redis"
	// SessionStoreMemory keeps sessions in process memory (single instance only).
	SessionStoreMemory SessionStoreMode = "memory"
)

// UnmarshalText implements encoding.TextUnmarshaler for SessionStoreMode.
func (m *SessionStoreMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "redis", "memory":
		*m = SessionStoreMode(v)
		return nil
	default:
		return fmt.Errorf("invalid SessionStoreMode: %q (valid options: redis, memory)", v)
	}
}

// OAuthConfig contains OAuth/OIDC configuration.
type OAuthConfig struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	RedirectURL  string `env:"REDIRECT_URL"  envDefault:"http://localhost:8080/auth/callback"`
	Scope        string `env:"SCOPE"         envDefault:"openid profile email"`
	DiscoveryURL string `env:"DISCOVERY_URL"`
}

// DevAuthConfig controls mock/dev authentication identity.
// Used when AUTH_MODE=mock for development and testing.
type DevAuthConfig struct {
	UserID string `env:"USER_ID" envDefault:"00000000-0000-4000-8000-000000000001"`
	Email  string `env:"EMAIL"   envDefault:"dev@example.com"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which authentication provider to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"supabase"`

	// OAuth configuration (used when Mode=oauth).
	OAuth OAuthConfig `envPrefix:"OAUTH_"`

	// DevAuth configuration (used when Mode=mock).
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`

	// SessionStore selects the session backend.
	SessionStore SessionStoreMode `env:"SESSION_STORE" envDefault:"redis"`

	// SessionTTL caps session lifetime when the provider does not supply an expiry.
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"1h"`
}

// Sanitize applies defaults to non-positive durations.
func (a *AuthConfig) Sanitize() {
	if a.SessionTTL <= 0 {
		a.SessionTTL = time.Hour
	}
}
