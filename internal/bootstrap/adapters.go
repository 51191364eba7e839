package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/target/calorie-tracker/config"
	"github.com/target/calorie-tracker/internal/adapters/postgres"
	"github.com/target/calorie-tracker/internal/adapters/supabase"
	domainauth "github.com/target/calorie-tracker/internal/domain/auth"
	"github.com/target/calorie-tracker/internal/domain/model"
	apperrors "github.com/target/calorie-tracker/internal/errors"
	"github.com/target/calorie-tracker/internal/ports"
	"github.com/target/calorie-tracker/internal/service"
)

// StoreConfig contains what is needed to build the meal store adapters.
type StoreConfig struct {
	Supabase config.SupabaseConfig
	Store    config.StoreConfig
	// DB is required when Store.Mode is postgres.
	DB     postgres.Querier
	Logger *slog.Logger
}

// StoreAdapters are the meal repository and its connectivity probe.
type StoreAdapters struct {
	Meals  ports.MealRepository
	Prober ports.ConnectivityProber // nil when the store is not configured
}

// BuildStoreAdapters selects the REST gateway or direct Postgres adapters.
func BuildStoreAdapters(cfg StoreConfig) (StoreAdapters, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.Store.Mode == config.StoreModePostgres {
		if cfg.DB == nil {
			return StoreAdapters{}, errors.New("STORE_MODE=postgres requires a database connection")
		}
		return StoreAdapters{
			Meals:  postgres.NewMealRepository(cfg.DB),
			Prober: postgres.NewProber(cfg.DB),
		}, nil
	}

	if !cfg.Supabase.URLSet() {
		logger.Warn("SUPABASE_URL is not set; meal operations will fail until it is configured")
		return StoreAdapters{Meals: unconfiguredStore{}}, nil
	}

	sbCfg := supabaseConfig(cfg.Supabase, cfg.Store)
	meals, err := supabase.NewMealRepository(sbCfg)
	if err != nil {
		return StoreAdapters{}, fmt.Errorf("create supabase meal repository: %w", err)
	}
	prober, err := supabase.NewProber(sbCfg)
	if err != nil {
		return StoreAdapters{}, fmt.Errorf("create supabase prober: %w", err)
	}
	return StoreAdapters{Meals: meals, Prober: prober}, nil
}

// unconfiguredStore answers every call with a store error naming the missing URL.
type unconfiguredStore struct{}

var _ ports.MealRepository = unconfiguredStore{}

func (unconfiguredStore) List(context.Context, ports.Owner) ([]model.Meal, error) {
	return nil, apperrors.Store(service.ErrStoreNotConfigured, "Failed to load meals.")
}

func (unconfiguredStore) Create(context.Context, ports.Owner, model.CreateMealRequest) (model.Meal, error) {
	return model.Meal{}, apperrors.Store(service.ErrStoreNotConfigured, "Failed to add meal.")
}

func (unconfiguredStore) Delete(context.Context, ports.Owner, string) error {
	return apperrors.Store(service.ErrStoreNotConfigured, "Failed to delete meal.")
}

// unconfiguredAuth rejects credentials until hosted auth has a URL.
type unconfiguredAuth struct{}

var _ ports.PasswordAuthenticator = unconfiguredAuth{}

func (unconfiguredAuth) SignIn(context.Context, ports.Credentials) (domainauth.Identity, error) {
	return domainauth.Identity{}, service.ErrStoreNotConfigured
}

func (unconfiguredAuth) SignUp(context.Context, ports.Credentials) (domainauth.Identity, bool, error) {
	return domainauth.Identity{}, false, service.ErrStoreNotConfigured
}
