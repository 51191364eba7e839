package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/target/calorie-tracker/config"
)

// InitLogger initializes the structured logger.
func InitLogger() *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)
	return logger
}

// LoadConfig loads configuration from environment variables and validates it.
func LoadConfig() (config.AppConfig, error) {
	// Load .env file if it exists (development)
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return config.AppConfig{}, fmt.Errorf("load .env file: %w", err)
		}
	}

	return parseConfig()
}

func parseConfig() (config.AppConfig, error) {
	var cfg config.AppConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	cfg.Sanitize()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LogStartup records the effective configuration with secrets masked.
func LogStartup(logger *slog.Logger, cfg config.AppConfig) {
	safe := cfg.Sanitized()
	logger.Info("starting calorie tracker",
		"addr", safe.HTTP.Addr,
		"dev", safe.IsDev,
		"auth_mode", safe.Auth.Mode,
		"session_store", safe.Auth.SessionStore,
		"store_mode", safe.Store.Mode,
		"supabase_url_set", safe.Supabase.URLSet(),
		"supabase_key_set", safe.Supabase.KeySet(),
	)
}
