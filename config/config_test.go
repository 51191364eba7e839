package config

import (
	"reflect"
	"strings"
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
)

func TestAppConfig_Defaults(t *testing.T) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.Sanitize()

	if cfg.Auth.Mode != AuthModeSupabase {
		t.Fatalf("expected default auth mode supabase, got %q", cfg.Auth.Mode)
	}
	if cfg.Store.Mode != StoreModeREST {
		t.Fatalf("expected default store mode rest, got %q", cfg.Store.Mode)
	}
	if cfg.Meals.MutationTimeout != 10*time.Second {
		t.Fatalf("unexpected mutation timeout %v", cfg.Meals.MutationTimeout)
	}
	if cfg.Supabase.URLSet() || cfg.Supabase.KeySet() {
		t.Fatalf("expected supabase URL and key to be unset by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
}

func TestAppConfig_ParseSupabaseEnv(t *testing.T) {
	t.Setenv("SUPABASE_URL", " https://demo.supabase.co/ ")
	t.Setenv("SUPABASE_ANON_KEY", "anon-key")
	t.Setenv("SUPABASE_JWT_SECRET", "jwt-secret")

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.Sanitize()

	expected := SupabaseConfig{
		URL:       "https://demo.supabase.co",
		AnonKey:   "anon-key",
		JWTSecret: "jwt-secret",
	}
	if !reflect.DeepEqual(cfg.Supabase, expected) {
		t.Fatalf("unexpected supabase configuration:\nexpected: %#v\ngot:      %#v", expected, cfg.Supabase)
	}
}

func TestAppConfig_ParseAuthEnv(t *testing.T) {
	t.Setenv("AUTH_MODE", "oauth")
	t.Setenv("OAUTH_CLIENT_ID", "app-client")
	t.Setenv("OAUTH_CLIENT_SECRET", "super-secret")
	t.Setenv("OAUTH_REDIRECT_URL", "https://app.example.com/auth/callback")
	t.Setenv("OAUTH_DISCOVERY_URL", "https://login.example.com/.well-known/openid-configuration")
	t.Setenv("OAUTH_SCOPE", "openid email")
	t.Setenv("DEV_AUTH_USER_ID", "dev-user")
	t.Setenv("DEV_AUTH_EMAIL", "dev@example.com")
	t.Setenv("SESSION_STORE", "memory")
	t.Setenv("SESSION_TTL", "2h")

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}

	expected := AuthConfig{
		Mode: AuthModeOAuth,
		OAuth: OAuthConfig{
			ClientID:     "app-client",
			ClientSecret: "super-secret",
			RedirectURL:  "https://app.example.com/auth/callback",
			Scope:        "openid email",
			DiscoveryURL: "https://login.example.com/.well-known/openid-configuration",
		},
		DevAuth: DevAuthConfig{
			UserID: "dev-user",
			Email:  "dev@example.com",
		},
		SessionStore: SessionStoreMemory,
		SessionTTL:   2 * time.Hour,
	}

	if !reflect.DeepEqual(cfg.Auth, expected) {
		t.Fatalf("unexpected auth configuration:\nexpected: %#v\ngot:      %#v", expected, cfg.Auth)
	}
}

func TestAuthMode_UnmarshalText(t *testing.T) {
	var m AuthMode
	if err := m.UnmarshalText([]byte("MOCK")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m != AuthModeMock {
		t.Fatalf("expected mock, got %q", m)
	}
	if err := m.UnmarshalText([]byte("saml")); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

func TestStoreMode_InvalidEnv(t *testing.T) {
	t.Setenv("STORE_MODE", "sqlite")

	var cfg AppConfig
	if err := env.Parse(&cfg); err == nil {
		t.Fatalf("expected parse error for invalid STORE_MODE")
	}
}

func TestAppConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *AppConfig)
		wantErr string
	}{
		{
			name: "rest store requires supabase auth",
			mutate: func(c *AppConfig) {
				c.Auth.Mode = AuthModeMock
				c.Store.Mode = StoreModeREST
			},
			wantErr: "STORE_MODE=rest requires AUTH_MODE=supabase",
		},
		{
			name: "postgres store works with mock auth",
			mutate: func(c *AppConfig) {
				c.Auth.Mode = AuthModeMock
				c.Store.Mode = StoreModePostgres
			},
		},
		{
			name: "public suffix cookie domain rejected",
			mutate: func(c *AppConfig) {
				c.HTTP.CookieDomain = "co.uk"
			},
			wantErr: "public suffix",
		},
		{
			name: "registrable cookie domain accepted",
			mutate: func(c *AppConfig) {
				c.HTTP.CookieDomain = ".Example.com"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := AppConfig{
				Auth:  AuthConfig{Mode: AuthModeSupabase},
				Store: StoreConfig{Mode: StoreModeREST},
			}
			tt.mutate(&cfg)
			cfg.Sanitize()

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestMealsConfig_Sanitize(t *testing.T) {
	cfg := MealsConfig{MutationTimeout: -1, IdleTTL: 0, Capacity: -5, ProbeTimeout: 0}
	cfg.Sanitize()

	if cfg.MutationTimeout != 10*time.Second {
		t.Fatalf("expected default mutation timeout, got %v", cfg.MutationTimeout)
	}
	if cfg.IdleTTL != 30*time.Minute {
		t.Fatalf("expected default idle ttl, got %v", cfg.IdleTTL)
	}
	if cfg.Capacity != 1024 {
		t.Fatalf("expected default capacity, got %d", cfg.Capacity)
	}
	if cfg.ProbeTimeout != 5*time.Second {
		t.Fatalf("expected default probe timeout, got %v", cfg.ProbeTimeout)
	}
}

func TestDBConfig_DSN(t *testing.T) {
	cfg := DBConfig{Host: "db", Port: 5433, User: "app", Password: "p@ss", Name: "meals", SSLMode: "require"}
	got := cfg.DSN()
	want := "postgres://app:p%40ss@db:5433/meals?sslmode=require"
	if got != want {
		t.Fatalf("DSN() = %q, want %q", got, want)
	}
}

func TestAppConfig_Sanitized(t *testing.T) {
	cfg := AppConfig{
		Supabase: SupabaseConfig{URL: "https://x.supabase.co", AnonKey: "anon"},
		Postgres: DBConfig{Password: "secret"},
	}
	out := cfg.Sanitized()
	if out.Supabase.AnonKey != "****" || out.Postgres.Password != "****" {
		t.Fatalf("expected secrets masked, got %#v", out)
	}
	if out.Supabase.URL != "https://x.supabase.co" {
		t.Fatalf("expected URL preserved, got %q", out.Supabase.URL)
	}
	if cfg.Supabase.AnonKey != "anon" {
		t.Fatalf("Sanitized must not mutate the receiver")
	}
}
