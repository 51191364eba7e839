package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/target/calorie-tracker/config"
	httpx "github.com/target/calorie-tracker/internal/http"
)

// shutdownTimeout bounds graceful HTTP shutdown.
const shutdownTimeout = 10 * time.Second

// HTTPServerConfig contains configuration for HTTP server.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

// NewHTTPServer builds the router and wraps it in a configured *http.Server.
// It does not start listening.
func NewHTTPServer(cfg *HTTPServerConfig) (*http.Server, error) {
	if cfg == nil {
		return nil, errors.New("http server config is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	if appCfg.HTTP.CompressionEnabled {
		logger.Info("HTTP compression enabled", "level", appCfg.HTTP.CompressionLevel)
	}

	var clock func() time.Time
	if cfg.Services.Meals != nil {
		clock = cfg.Services.Meals.Today
	}

	handler, err := httpx.NewRouter(httpx.RouterServices{
		Auth:               cfg.Services.Auth,
		Views:              cfg.Services.Views,
		Diagnostics:        cfg.Services.Diagnostics,
		Query:              cfg.Services.Query,
		Clock:              clock,
		CookieDomain:       appCfg.HTTP.CookieDomain,
		CompressionEnabled: appCfg.HTTP.CompressionEnabled,
		CompressionLevel:   appCfg.HTTP.CompressionLevel,
		IsDev:              appCfg.IsDev,
		Logger:             logger.With("component", "http"),
	})
	if err != nil {
		return nil, fmt.Errorf("build router: %w", err)
	}

	return newServer(handler, appCfg.HTTP.Addr), nil
}

func newServer(handler http.Handler, addr string) *http.Server {
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = ":8080"
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// ShutdownConfig contains dependencies for serving and shutting down the HTTP server.
type ShutdownConfig struct {
	Server *http.Server
	Logger *slog.Logger
}

// ServeHTTP listens until ctx is done, then shuts the server down gracefully.
// A listener failure is returned without waiting for ctx.
func ServeHTTP(ctx context.Context, cfg ShutdownConfig) error {
	if cfg.Server == nil {
		return errors.New("http server is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting HTTP server", "addr", cfg.Server.Addr)
		if err := cfg.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			logger.Error("HTTP server failed", "error", err)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	return ShutdownHTTPServer(context.WithoutCancel(ctx), cfg)
}

// ShutdownHTTPServer gracefully shuts down the HTTP server.
func ShutdownHTTPServer(ctx context.Context, cfg ShutdownConfig) error {
	if cfg.Server == nil {
		return nil
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("shutting down HTTP server")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := cfg.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("HTTP server stopped")
	}

	return nil
}
