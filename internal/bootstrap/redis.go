package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/target/calorie-tracker/config"
)

// ConnectRedis opens the Redis client used by SESSION_STORE=redis and pings it.
//
//nolint:ireturn // direct, sentinel and cluster clients share redis.UniversalClient.
func ConnectRedis(ctx context.Context, cfg DatabaseConfig) (redis.UniversalClient, error) {
	opts, topology, err := redisOptions(cfg.RedisConfig)
	if err != nil {
		return nil, err
	}
	var client redis.UniversalClient
	if topology == "cluster" {
		// A single seed address would otherwise get a plain client.
		client = redis.NewClusterClient(opts.Cluster())
	} else {
		client = redis.NewUniversalClient(opts)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, errors.Join(fmt.Errorf("ping redis: %w", err), client.Close())
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("redis connected",
			"topology", topology,
			"addrs", strings.Join(opts.Addrs, ","),
		)
	}
	return client, nil
}

// redisOptions maps RedisConfig onto universal client options. The returned
// topology is "cluster", "sentinel" or "direct". Addresses never carry credentials.
func redisOptions(cfg config.RedisConfig) (*redis.UniversalOptions, string, error) {
	switch {
	case cfg.UseCluster:
		opts := &redis.UniversalOptions{
			Addrs:    trimAddrs(cfg.ClusterNodes),
			Password: cfg.Password,
		}
		if len(opts.Addrs) == 0 {
			// A single seed node may be given through the URI instead.
			if err := applyURI(opts, cfg.URI); err != nil {
				return nil, "", err
			}
		}
		if len(opts.Addrs) == 0 {
			return nil, "", errors.New("REDIS_USE_CLUSTER requires REDIS_CLUSTER_NODES or REDIS_URI")
		}
		return opts, "cluster", nil

	case cfg.UseSentinel:
		addrs := trimAddrs(cfg.SentinelNodes)
		if len(addrs) == 0 {
			return nil, "", errors.New("REDIS_USE_SENTINEL requires REDIS_SENTINEL_NODES")
		}
		if cfg.SentinelMasterName == "" {
			return nil, "", errors.New("REDIS_USE_SENTINEL requires REDIS_SENTINEL_MASTER_NAME")
		}
		return &redis.UniversalOptions{
			Addrs:            addrs,
			MasterName:       cfg.SentinelMasterName,
			Password:         cfg.Password,
			SentinelPassword: cfg.SentinelPassword,
		}, "sentinel", nil

	default:
		opts := &redis.UniversalOptions{Password: cfg.Password}
		if err := applyURI(opts, cfg.URI); err != nil {
			return nil, "", err
		}
		if len(opts.Addrs) == 0 {
			return nil, "", errors.New("REDIS_URI is required")
		}
		return opts, "direct", nil
	}
}

// applyURI accepts either a bare host:port or a redis:// or rediss:// URL.
// Credentials in a URL override the configured password.
func applyURI(opts *redis.UniversalOptions, raw string) error {
	uri := strings.TrimSpace(raw)
	if uri == "" {
		return nil
	}
	if !strings.HasPrefix(uri, "redis://") && !strings.HasPrefix(uri, "rediss://") {
		opts.Addrs = []string{uri}
		return nil
	}

	parsed, err := redis.ParseURL(uri)
	if err != nil {
		return fmt.Errorf("parse REDIS_URI: %w", err)
	}
	opts.Addrs = []string{parsed.Addr}
	opts.DB = parsed.DB
	opts.TLSConfig = parsed.TLSConfig
	if parsed.Username != "" {
		opts.Username = parsed.Username
	}
	if parsed.Password != "" {
		opts.Password = parsed.Password
	}
	return nil
}

func trimAddrs(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, a := range raw {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}
