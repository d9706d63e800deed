package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mwm/app/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV", "ADDRESS", "PORT", "BASE_URL", "COOKIE_SECRET", "DATABASE_URL",
		"REDIS_URL", "SENTRY_DSN", "RESEND_API_KEY", "MAIL_FROM", "MAIL_FROM_NAME",
		"S3_BUCKET", "S3_REGION", "S3_ENDPOINT", "S3_ACCESS_KEY", "S3_SECRET_KEY",
		"S3_PUBLIC_URL", "S3_PATH_STYLE", "ARGON2_MEMORY", "ARGON2_TIME",
		"SESSION_MAX_AGE", "CONFIG_FILE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad(t *testing.T) {
	t.Run("defaults with env", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("DATABASE_URL", "postgres://localhost/mwm")
		t.Setenv("PORT", "3000")

		cfg, err := config.Load()
		require.NoError(t, err)
		assert.Equal(t, config.EnvDevelopment, cfg.Env)
		assert.Equal(t, ":3000", cfg.Address)
		assert.Equal(t, uint32(64*1024), cfg.Password.Memory)
		assert.Equal(t, uint32(2), cfg.Password.Time)
		assert.Equal(t, 30*24*time.Hour, cfg.SessionMaxAge)
		assert.False(t, cfg.Storage.Enabled())
		assert.False(t, cfg.Mail.Enabled())
	})

	t.Run("yaml file with env override", func(t *testing.T) {
		clearEnv(t)
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
env: production
address: ":9000"
cookie_secret: "0123456789abcdef0123456789abcdef"
database_url: postgres://file/mwm
session_max_age: 12h
storage:
  bucket: avatars
  access_key: key
  secret_key: secret
password:
  memory: 32768
  time: 3
`), 0o600))
		t.Setenv("CONFIG_FILE", path)
		t.Setenv("DATABASE_URL", "postgres://env/mwm")
		t.Setenv("ARGON2_TIME", "4")

		cfg, err := config.Load()
		require.NoError(t, err)
		assert.True(t, cfg.IsProduction())
		assert.Equal(t, ":9000", cfg.Address)
		assert.Equal(t, "postgres://env/mwm", cfg.DatabaseURL)
		assert.Equal(t, 12*time.Hour, cfg.SessionMaxAge)
		assert.Equal(t, uint32(32768), cfg.Password.Memory)
		assert.Equal(t, uint32(4), cfg.Password.Time)
		assert.True(t, cfg.Storage.Enabled())
	})

	t.Run("prefixed names win", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("DATABASE_URL", "postgres://plain/mwm")
		t.Setenv("MWM_DATABASE_URL", "postgres://prefixed/mwm")
		t.Setenv("MWM_MAIL_FROM", "team@example.com")
		t.Setenv("S3_PATH_STYLE", "true")

		cfg, err := config.Load()
		require.NoError(t, err)
		assert.Equal(t, "postgres://prefixed/mwm", cfg.DatabaseURL)
		assert.Equal(t, "team@example.com", cfg.Mail.From)
		assert.Equal(t, "mwm", cfg.Mail.FromName)
		assert.True(t, cfg.Storage.PathStyle)
	})

	t.Run("missing database url", func(t *testing.T) {
		clearEnv(t)
		_, err := config.Load()
		require.ErrorIs(t, err, config.ErrInvalid)
		assert.Contains(t, err.Error(), "DATABASE_URL is required")
	})

	t.Run("short cookie secret in production", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("APP_ENV", config.EnvProduction)
		t.Setenv("DATABASE_URL", "postgres://localhost/mwm")
		t.Setenv("COOKIE_SECRET", "short")
		_, err := config.Load()
		require.ErrorIs(t, err, config.ErrInvalid)
		assert.Contains(t, err.Error(), "COOKIE_SECRET")
	})

	t.Run("malformed values", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("DATABASE_URL", "postgres://localhost/mwm")
		t.Setenv("SESSION_MAX_AGE", "forever")
		_, err := config.Load()
		require.ErrorIs(t, err, config.ErrInvalid)
	})

	t.Run("missing config file", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))
		_, err := config.Load()
		require.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.DatabaseURL = "postgres://localhost/mwm"
	require.NoError(t, cfg.Validate())

	cfg.Env = "staging"
	require.ErrorIs(t, cfg.Validate(), config.ErrInvalid)
}
