// Package config assembles the process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/ovaphlow/pitchfork/service-identity-go/pkg/database"
	"github.com/ovaphlow/pitchfork/service-identity-go/pkg/utilities"
)

// DefaultJWTSecret is used when JWT_SECRET is unset. It is only suitable
// for local development.
const DefaultJWTSecret = "my_secret_key"

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type HTTP struct {
	Address string `env:"ADDRESS" envDefault:"127.0.0.1"`
	Port    int    `env:"PORT" envDefault:"8000"`
}

// Addr is the listen address in host:port form.
func (h HTTP) Addr() string {
	return net.JoinHostPort(h.Address, strconv.Itoa(h.Port))
}

type Auth struct {
	JWTSecret              string `env:"JWT_SECRET"`
	SessionDurationMinutes int64  `env:"SESSION_DURATION_MINUTES" envDefault:"60"`
	// HashWorkers bounds concurrent Argon2 computations; 0 means GOMAXPROCS.
	HashWorkers int `env:"HASH_WORKERS" envDefault:"0"`

	// SecretDefaulted is set by Load when JWT_SECRET was empty.
	SecretDefaulted bool
}

type Config struct {
	HTTP          HTTP
	Auth          Auth
	Database      database.Config
	Log           utilities.LogConfig
	SnowflakeNode int64  `env:"SNOWFLAKE_NODE" envDefault:"1"`
	StoreDriver   string `env:"STORE_DRIVER" envDefault:"postgres"`
	// MigrateOnStart runs the embedded migrations before serving.
	MigrateOnStart bool `env:"MIGRATE_ON_START" envDefault:"false"`
}

var (
	ErrUnknownStore   = errors.New("unknown store driver")
	ErrBadSessionTime = errors.New("session duration must be positive")
)

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over .env.
func Load(files ...string) (Config, error) {
	// best-effort: a missing .env is normal outside development
	_ = godotenv.Load(files...)

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = DefaultJWTSecret
		cfg.Auth.SecretDefaulted = true
	}
	if cfg.Auth.SessionDurationMinutes <= 0 {
		return Config{}, ErrBadSessionTime
	}
	switch cfg.StoreDriver {
	case StorePostgres, StoreMemory:
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrUnknownStore, cfg.StoreDriver)
	}
	return cfg, nil
}
