package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// StoreMode selects how the meals table is reached.
type StoreMode string

const (
	// StoreModeREST talks to the hosted REST gateway as the signed-in user.
	StoreModeREST StoreMode = "rest"
	// StoreModePostgres connects to Postgres directly and scopes queries by owner.
	StoreModePostgres StoreMode = "postgres"
)

// UnmarshalText implements encoding.TextUnmarshaler for StoreMode.
func (m *StoreMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "rest", "postgres":
		*m = StoreMode(v)
		return nil
	default:
		return fmt.Errorf("invalid StoreMode: %q (valid options: rest, postgres)", v)
	}
}

// StoreConfig selects the meal store backend.
type StoreConfig struct {
	Mode StoreMode `env:"STORE_MODE" envDefault:"rest"`

	// RequestTimeout bounds HTTP calls made to the hosted REST gateway.
	RequestTimeout time.Duration `env:"STORE_REQUEST_TIMEOUT" envDefault:"15s"`
}

// DBConfig contains PostgreSQL database configuration (used when STORE_MODE=postgres).
type DBConfig struct {
	Host     string `env:"HOST"      envDefault:"localhost"`
	Port     int    `env:"PORT"      envDefault:"5432"`
	User     string `env:"USER"      envDefault:"postgres"`
	Password string `env:"PASSWORD"  envDefault:"postgres"`
	Name     string `env:"NAME"      envDefault:"postgres"`
	SSLMode  string `env:"SSL_MODE"  envDefault:"disable"` // Use 'disable' for local dev, 'require' for production
	MaxConns int32  `env:"MAX_CONNS" envDefault:"10"`
}

// Sanitize clamps the pool size to a sane range.
func (d *DBConfig) Sanitize() {
	if d.MaxConns < 1 {
		d.MaxConns = 1
	}
	if d.MaxConns > 100 {
		d.MaxConns = 100
	}
}

// DSN builds a postgres:// connection string.
func (d DBConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + url.QueryEscape(d.SSLMode),
	}
	return u.String()
}

// RedisConfig contains Redis configuration.
type RedisConfig struct {
	URI                string   `env:"URI"                  envDefault:"localhost:6379"`
	Password           string   `env:"PASSWORD"             envDefault:""`
	SentinelNodes      []string `env:"SENTINEL_NODES"       envDefault:"localhost:26379"`
	SentinelMasterName string   `env:"SENTINEL_MASTER_NAME" envDefault:"mymaster"`
	SentinelPassword   string   `env:"SENTINEL_PASSWORD"    envDefault:""`
	UseSentinel        bool     `env:"USE_SENTINEL"         envDefault:"false"`
	ClusterNodes       []string `env:"CLUSTER_NODES"        envDefault:""`
	UseCluster         bool     `env:"USE_CLUSTER"          envDefault:"false"`
}
