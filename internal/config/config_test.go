package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate clears every variable Load reads so the host environment cannot leak in.
func isolate(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"ADDRESS", "PORT", "JWT_SECRET", "SESSION_DURATION_MINUTES", "HASH_WORKERS",
		"DATABASE_URL", "DATABASE_MAX_CONNS", "DATABASE_TIMEOUT", "DATABASE_TIMEZONE",
		"DATABASE_CLIENT_ENCODING", "LOG_LEVEL", "LOG_DEV", "LOG_FILE", "LOG_MAX_AGE_DAYS",
		"SNOWFLAKE_NODE", "STORE_DRIVER", "MIGRATE_ON_START",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8000", cfg.HTTP.Addr())
	assert.Equal(t, DefaultJWTSecret, cfg.Auth.JWTSecret)
	assert.True(t, cfg.Auth.SecretDefaulted)
	assert.Equal(t, int64(60), cfg.Auth.SessionDurationMinutes)
	assert.Equal(t, 5, cfg.Database.MaxConns)
	assert.Equal(t, 5*time.Second, cfg.Database.Timeout)
	assert.Equal(t, int64(1), cfg.SnowflakeNode)
	assert.Equal(t, StorePostgres, cfg.StoreDriver)
	assert.Equal(t, 7, cfg.Log.MaxAgeDays)
}

func TestLoad_FromEnv(t *testing.T) {
	isolate(t)
	t.Setenv("ADDRESS", "0.0.0.0")
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("SESSION_DURATION_MINUTES", "15")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("HASH_WORKERS", "3")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9090", cfg.HTTP.Addr())
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.False(t, cfg.Auth.SecretDefaulted)
	assert.Equal(t, int64(15), cfg.Auth.SessionDurationMinutes)
	assert.Equal(t, 3, cfg.Auth.HashWorkers)
	assert.Equal(t, StoreMemory, cfg.StoreDriver)
}

func TestLoad_DotEnvDoesNotOverride(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PORT=7000\nJWT_SECRET=from-file\n"), 0o600))
	t.Setenv("PORT", "7100")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7100, cfg.HTTP.Port)
	assert.Equal(t, "from-file", cfg.Auth.JWTSecret)
}

func TestLoad_Invalid(t *testing.T) {
	isolate(t)
	t.Setenv("STORE_DRIVER", "mongo")
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.ErrorIs(t, err, ErrUnknownStore)

	isolate(t)
	t.Setenv("SESSION_DURATION_MINUTES", "0")
	_, err = Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.ErrorIs(t, err, ErrBadSessionTime)

	isolate(t)
	t.Setenv("PORT", "not-a-number")
	_, err = Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}
