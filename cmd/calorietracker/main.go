package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/target/calorie-tracker/config"
	"github.com/target/calorie-tracker/internal/bootstrap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := bootstrap.InitLogger()
	if err := run(ctx, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		stop()
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}
	bootstrap.LogStartup(logger, cfg)

	infra, err := initInfrastructure(ctx, &cfg, logger)
	if err != nil {
		return err
	}
	defer infra.close(ctx, logger)

	deps := &bootstrap.ServiceDeps{Config: &cfg, Logger: logger}
	if infra.pool != nil {
		deps.DB = infra.pool
	}
	if infra.redis != nil {
		deps.RedisClient = infra.redis
	}

	services, err := bootstrap.NewServices(deps)
	if err != nil {
		return err
	}

	err = bootstrap.RunServices(ctx, &bootstrap.ServiceOrchestrationConfig{
		Config:   &cfg,
		Services: services,
		Logger:   logger,
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.InfoContext(ctx, "calorie tracker stopped")
	return nil
}

// infrastructure holds the connections opened for the configured backends.
type infrastructure struct {
	pool  *pgxpool.Pool
	redis redis.UniversalClient
}

// initInfrastructure connects only what the configuration selects: Postgres
// for STORE_MODE=postgres and Redis for SESSION_STORE=redis.
func initInfrastructure(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (*infrastructure, error) {
	infra := &infrastructure{}
	dbCfg := bootstrap.DatabaseConfig{
		DBConfig:    cfg.Postgres,
		RedisConfig: cfg.Redis,
		Logger:      logger,
	}

	if cfg.Store.Mode == config.StoreModePostgres {
		pool, err := bootstrap.ConnectPostgres(ctx, dbCfg)
		if err != nil {
			return nil, fmt.Errorf("connect db: %w", err)
		}
		infra.pool = pool
	}

	if cfg.Auth.SessionStore == config.SessionStoreRedis {
		client, err := bootstrap.ConnectRedis(ctx, dbCfg)
		if err != nil {
			infra.close(ctx, logger)
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		infra.redis = client
	}

	return infra, nil
}

func (i *infrastructure) close(ctx context.Context, logger *slog.Logger) {
	if i.redis != nil {
		if err := i.redis.Close(); err != nil {
			logger.ErrorContext(ctx, "close redis failed", "error", err)
		}
	}
	if i.pool != nil {
		i.pool.Close()
	}
}
