package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/target/calorie-tracker/config"
	"github.com/target/calorie-tracker/internal/adapters/devauth"
	memoryadapter "github.com/target/calorie-tracker/internal/adapters/memory"
	"github.com/target/calorie-tracker/internal/adapters/oidc"
	redisadapter "github.com/target/calorie-tracker/internal/adapters/redis"
	"github.com/target/calorie-tracker/internal/adapters/supabase"
	"github.com/target/calorie-tracker/internal/ports"
	"github.com/target/calorie-tracker/internal/service"
)

// memorySessionCapacity bounds the in-process session store.
const memorySessionCapacity = 10000

// AuthConfig contains configuration for auth service.
type AuthConfig struct {
	Auth     config.AuthConfig
	Supabase config.SupabaseConfig
	Store    config.StoreConfig
	// RedisClient is required when Auth.SessionStore is redis.
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// BuildAuthService creates an auth service for the configured auth mode and session store.
func BuildAuthService(cfg AuthConfig) (*service.AuthService, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	sessions, err := buildSessionStore(cfg)
	if err != nil {
		return nil, err
	}

	providers, err := buildAuthProviders(cfg, logger)
	if err != nil {
		return nil, err
	}

	return service.NewAuthService(service.AuthServiceOptions{
		Providers:  providers,
		Sessions:   sessions,
		SessionTTL: cfg.Auth.SessionTTL,
		Logger:     logger,
	}), nil
}

//nolint:ireturn // the store backend is chosen at runtime.
func buildSessionStore(cfg AuthConfig) (ports.SessionStore, error) {
	switch cfg.Auth.SessionStore {
	case config.SessionStoreMemory:
		return memoryadapter.NewSessionStore(memoryadapter.SessionStoreOptions{Capacity: memorySessionCapacity}), nil
	default:
		if cfg.RedisClient == nil {
			return nil, errors.New("SESSION_STORE=redis requires a redis client")
		}
		return redisadapter.NewSessionStore(cfg.RedisClient), nil
	}
}

func buildAuthProviders(cfg AuthConfig, logger *slog.Logger) (service.AuthProviders, error) {
	switch cfg.Auth.Mode {
	case config.AuthModeMock:
		return buildDevAuthProviders(cfg)
	case config.AuthModeOAuth:
		return buildOAuthProviders(cfg)
	default:
		return buildSupabaseProviders(cfg, logger)
	}
}

func buildSupabaseProviders(cfg AuthConfig, logger *slog.Logger) (service.AuthProviders, error) {
	if !cfg.Supabase.URLSet() {
		// Sign-in fails per request; only the diagnostic page reports the missing URL.
		logger.Warn("SUPABASE_URL is not set; sign-in will fail until it is configured")
		return service.AuthProviders{Password: unconfiguredAuth{}}, nil
	}

	authn, err := supabase.NewAuthenticator(supabaseConfig(cfg.Supabase, cfg.Store))
	if err != nil {
		return service.AuthProviders{}, fmt.Errorf("create supabase authenticator: %w", err)
	}
	return service.AuthProviders{Password: authn, Revoker: authn}, nil
}

func buildDevAuthProviders(cfg AuthConfig) (service.AuthProviders, error) {
	prov, err := devauth.NewProvider(devauth.Config{
		UserID:          cfg.Auth.DevAuth.UserID,
		Email:           cfg.Auth.DevAuth.Email,
		SessionDuration: cfg.Auth.SessionTTL,
	})
	if err != nil {
		return service.AuthProviders{}, fmt.Errorf("create dev auth provider: %w", err)
	}
	return service.AuthProviders{Redirect: prov}, nil
}

func buildOAuthProviders(cfg AuthConfig) (service.AuthProviders, error) {
	oauth := cfg.Auth.OAuth
	if oauth.DiscoveryURL == "" || oauth.ClientID == "" || oauth.ClientSecret == "" {
		return service.AuthProviders{}, fmt.Errorf(
			"AUTH_MODE=oauth requires OAUTH_DISCOVERY_URL, OAUTH_CLIENT_ID and OAUTH_CLIENT_SECRET "+
				"(discovery_url_empty=%t client_id_empty=%t client_secret_empty=%t)",
			oauth.DiscoveryURL == "", oauth.ClientID == "", oauth.ClientSecret == "",
		)
	}

	prov, err := oidc.NewProvider(oidc.ProviderConfig{
		ClientID:     oauth.ClientID,
		ClientSecret: oauth.ClientSecret,
		RedirectURL:  oauth.RedirectURL,
		Scope:        oauth.Scope,
		DiscoveryURL: oauth.DiscoveryURL,
	})
	if err != nil {
		return service.AuthProviders{}, fmt.Errorf("create OIDC provider: %w", err)
	}
	return service.AuthProviders{Redirect: prov}, nil
}

func supabaseConfig(sb config.SupabaseConfig, store config.StoreConfig) supabase.Config {
	return supabase.Config{
		URL:       sb.URL,
		AnonKey:   sb.AnonKey,
		JWTSecret: sb.JWTSecret,
		Timeout:   store.RequestTimeout,
	}
}
