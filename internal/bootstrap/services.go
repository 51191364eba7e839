package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/target/calorie-tracker/config"
	"github.com/target/calorie-tracker/internal/adapters/postgres"
	"github.com/target/calorie-tracker/internal/mealview"
	"github.com/target/calorie-tracker/internal/service"
	"golang.org/x/sync/errgroup"
)

// janitorInterval is how often idle meal views are swept.
const janitorInterval = time.Minute

// ServiceContainer holds all initialized services.
type ServiceContainer struct {
	Auth        *service.AuthService
	Meals       *service.MealService
	Views       *mealview.Registry
	Query       *service.MealQuery
	Diagnostics *service.DiagnosticService
}

// ServiceDeps contains dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          postgres.Querier      // nil unless STORE_MODE=postgres
	RedisClient redis.UniversalClient // nil unless SESSION_STORE=redis
	Logger      *slog.Logger
}

// NewServices wires the store adapters, the auth flow and the meal view registry.
func NewServices(deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return ServiceContainer{}, errors.New("service deps require an AppConfig")
	}
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	auth, err := BuildAuthService(AuthConfig{
		Auth:        cfg.Auth,
		Supabase:    cfg.Supabase,
		Store:       cfg.Store,
		RedisClient: deps.RedisClient,
		Logger:      logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("build auth service: %w", err)
	}

	store, err := BuildStoreAdapters(StoreConfig{
		Supabase: cfg.Supabase,
		Store:    cfg.Store,
		DB:       deps.DB,
		Logger:   logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("build meal store: %w", err)
	}

	meals := service.NewMealService(service.MealServiceOptions{Repo: store.Meals, Logger: logger})

	views := mealview.NewRegistry(mealview.RegistryOptions{
		View: mealview.ViewOptions{
			Store:   meals,
			Timeout: cfg.Meals.MutationTimeout,
			Logger:  logger,
		},
		IdleTTL:  cfg.Meals.IdleTTL,
		Capacity: cfg.Meals.Capacity,
	})

	return ServiceContainer{
		Auth:  auth,
		Meals: meals,
		Views: views,
		Query: service.NewMealQuery(nil),
		Diagnostics: service.NewDiagnosticService(service.DiagnosticServiceOptions{
			Prober:  store.Prober,
			Target:  diagnosticTarget(cfg),
			Timeout: cfg.Meals.ProbeTimeout,
		}),
	}, nil
}

func diagnosticTarget(cfg *config.AppConfig) service.DiagnosticTarget {
	if cfg.Store.Mode == config.StoreModePostgres {
		return service.DiagnosticTarget{
			URL:    fmt.Sprintf("postgres://%s:%d/%s", cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.Name),
			KeySet: cfg.Supabase.KeySet(),
		}
	}
	return service.DiagnosticTarget{URL: cfg.Supabase.URL, KeySet: cfg.Supabase.KeySet()}
}

// ServiceOrchestrationConfig contains what RunServices needs.
type ServiceOrchestrationConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

// RunServices serves HTTP and sweeps idle meal views until ctx is canceled
// or either goroutine fails. The server is then shut down gracefully.
func RunServices(ctx context.Context, cfg *ServiceOrchestrationConfig) error {
	if cfg == nil || cfg.Config == nil {
		return errors.New("service orchestration config missing AppConfig")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	server, err := NewHTTPServer(&HTTPServerConfig{
		Config:   cfg.Config,
		Services: cfg.Services,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return ServeHTTP(gctx, ShutdownConfig{Server: server, Logger: logger})
	})
	g.Go(func() error {
		return cfg.Services.Views.RunJanitor(gctx, janitorInterval)
	})
	return g.Wait()
}
