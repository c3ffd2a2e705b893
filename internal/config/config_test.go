package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailcraft/internal/config"
)

func setRequired(t *testing.T) {
	t.Helper()

	t.Setenv("DATABASE_URL", "postgres://localhost/mailcraft")
	t.Setenv("AUTH_JWT_SECRET", "secret")
	t.Setenv("BEEFREE_CLIENT_ID", "client")
	t.Setenv("BEEFREE_CLIENT_SECRET", "client-secret")
	t.Setenv("BEEFREE_TEMPLATE_URL", "https://example.com/template.json")
}

// unset removes key for the duration of the test.
func unset(t *testing.T, key string) {
	t.Helper()

	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 30*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.True(t, cfg.Templates.EnforceOwnership)
	assert.Equal(t, 168*time.Hour, cfg.Templates.AutosaveRetention)
	assert.Equal(t, "0 3 * * *", cfg.Templates.PurgeSchedule)
	assert.Equal(t, 3, cfg.Jobs.MaxAttempts)
	assert.Equal(t, 10, cfg.Jobs.EmailWorkers)
	assert.Equal(t, 2, cfg.Jobs.DefaultWorkers)
	assert.Equal(t, "https://auth.getbee.io/loginV2", cfg.Editor.AuthURL)
	assert.Equal(t, 168*time.Hour, cfg.Editor.TemplateTTL)
	assert.Equal(t, "postgres://localhost/mailcraft", cfg.Database.ConnectionString)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Redis.Enabled())
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("TEMPLATES_ENFORCE_OWNERSHIP", "false")
	t.Setenv("JOB_EMAIL_WORKERS", "4")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.test,https://b.test")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.False(t, cfg.Templates.EnforceOwnership)
	assert.Equal(t, 4, cfg.Jobs.EmailWorkers)
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, cfg.HTTP.CORSOrigins)
	assert.True(t, cfg.Redis.Enabled())
}

func TestLoad_EnvFile(t *testing.T) {
	setRequired(t)
	unset(t, "HTTP_ADDR")
	t.Setenv("MAIL_FROM_NAME", "From Env")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("HTTP_ADDR=:9090\nMAIL_FROM_NAME=From File\n"), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, "From Env", cfg.Mail.FromName)
}

func TestLoad_MissingRequired(t *testing.T) {
	setRequired(t)
	unset(t, "AUTH_JWT_SECRET")

	_, err := config.Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
	assert.ErrorContains(t, err, "AUTH_JWT_SECRET")
}

func TestLoad_InvalidValues(t *testing.T) {
	setRequired(t)
	t.Setenv("JOB_MAX_ATTEMPTS", "0")
	t.Setenv("JOB_EMAIL_WORKERS", "0")
	t.Setenv("JOB_DEFAULT_WORKERS", "0")

	_, err := config.Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
	assert.ErrorContains(t, err, "JOB_MAX_ATTEMPTS")
	assert.ErrorContains(t, err, "JOB_EMAIL_WORKERS")
	assert.ErrorContains(t, err, "JOB_DEFAULT_WORKERS")
}
