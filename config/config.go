package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - supabase.go: Hosted backend endpoint and keys
//   - auth.go: Authentication and session configuration
//   - database.go: Meal store, database and Redis configuration
//   - http.go: HTTP server configuration
//   - meals.go: Meal view and diagnostic probe configuration
type AppConfig struct {
	// IsDev controls development mode behavior (template reloading, caching, etc.)
	// Set DEV=true or NODE_ENV=development for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	// Supabase holds the hosted backend endpoint and keys.
	Supabase SupabaseConfig `envPrefix:"SUPABASE_"`

	// Authentication configuration
	Auth AuthConfig

	// Meal store configuration
	Store    StoreConfig
	Postgres DBConfig    `envPrefix:"DB_"`
	Redis    RedisConfig `envPrefix:"REDIS_"`

	// HTTP server configuration
	HTTP HTTPConfig

	// Meal view configuration
	Meals MealsConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.Supabase.Sanitize()
	c.Auth.Sanitize()
	c.Postgres.Sanitize()
	c.HTTP.Sanitize()
	c.Meals.Sanitize()

	// Check NODE_ENV for dev mode
	c.detectDevMode()
}

// Validate reports combinations of settings the application cannot run with.
// The Supabase URL and anon key are intentionally not checked here; their absence
// is reported by the diagnostic page.
func (c *AppConfig) Validate() error {
	var errs []error
	if err := c.HTTP.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Store.Mode == StoreModeREST && c.Auth.Mode != AuthModeSupabase {
		errs = append(errs, fmt.Errorf(
			"STORE_MODE=rest requires AUTH_MODE=supabase (got %q): the REST store needs a hosted-auth access token",
			c.Auth.Mode,
		))
	}
	return errors.Join(errs...)
}

// Sanitized returns a copy of the configuration with secrets masked, suitable for logging.
func (c AppConfig) Sanitized() AppConfig {
	out := c
	out.Supabase.AnonKey = mask(c.Supabase.AnonKey)
	out.Supabase.JWTSecret = mask(c.Supabase.JWTSecret)
	out.Auth.OAuth.ClientSecret = mask(c.Auth.OAuth.ClientSecret)
	out.Postgres.Password = mask(c.Postgres.Password)
	out.Redis.Password = mask(c.Redis.Password)
	out.Redis.SentinelPassword = mask(c.Redis.SentinelPassword)
	return out
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "****"
}

// detectDevMode checks both DEV and NODE_ENV environment variables.
// This is called by Sanitize() to ensure IsDev is set correctly.
// NODE_ENV is checked as a fallback (common in frontend tooling).
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}
