package testutil

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultRedisAddr = "localhost:6379"
	// Session tests flush their DB, so they stay off DB 0.
	defaultRedisDB = 15
	redisDialWait  = 2 * time.Second
)

// SetupTestRedis connects to the Redis named by TEST_REDIS_ADDR (or REDIS_ADDR) and
// returns a client on an emptied test DB. The test is skipped when Redis is not
// reachable unless TEST_REQUIRE_REDIS is set, in which case it fails.
func SetupTestRedis(t testing.TB) *redis.Client {
	t.Helper()

	addr := firstEnv(defaultRedisAddr, "TEST_REDIS_ADDR", "REDIS_ADDR")
	db := defaultRedisDB
	if v := os.Getenv("TEST_REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			t.Fatalf("TEST_REDIS_DB=%q is not a database index", v)
		}
		db = n
	}

	client := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), redisDialWait)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		if required, _ := strconv.ParseBool(os.Getenv("TEST_REQUIRE_REDIS")); required {
			t.Fatalf("redis at %s: %v", addr, err)
		}
		t.Skipf("redis not available at %s: %v", addr, err)
	}
	if err := client.FlushDB(ctx).Err(); err != nil {
		_ = client.Close()
		t.Fatalf("flush redis db %d: %v", db, err)
	}

	t.Cleanup(func() {
		if err := client.Close(); err != nil {
			t.Logf("close redis client: %v", err)
		}
	})
	return client
}

func firstEnv(fallback string, keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return fallback
}
