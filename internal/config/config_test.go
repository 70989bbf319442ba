package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("DONASI_CONFIG", "")
	t.Setenv("DONASI_URL_SERVER", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:3000", cfg.ServerURL)
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "file", cfg.Session.Backend)
	assert.Equal(t, "file", cfg.Outbox.Backend)
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("DONASI_CONFIG", "")
	t.Setenv("DONASI_URL_SERVER", "https://api.donasi.test")
	t.Setenv("DONASI_HTTP_TIMEOUT", "3s")
	t.Setenv("DONASI_REDIS_ENABLED", "true")
	t.Setenv("REDIS_DB", "4")
	t.Setenv("DONASI_OUTBOX_BACKEND", "postgres")
	t.Setenv("DB_NAME", "ledger")
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_123")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.donasi.test", cfg.ServerURL)
	assert.Equal(t, 3*time.Second, cfg.HTTPTimeout)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 4, cfg.Redis.DB)
	assert.Equal(t, "postgres", cfg.Outbox.Backend)
	assert.Equal(t, "ledger", cfg.Outbox.DB.Name)
	assert.Equal(t, "sk_test_123", cfg.Stripe.SecretKey)
}

func TestLoadConfig_YAMLFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "donasi.yaml")
	content := `
url_server: https://yaml.donasi.test
log:
  level: debug
  pretty: true
session:
  backend: redis
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("DONASI_CONFIG", path)
	t.Setenv("DONASI_URL_SERVER", "")
	t.Setenv("DONASI_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://yaml.donasi.test", cfg.ServerURL)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.True(t, cfg.Log.Pretty)
	assert.Equal(t, "redis", cfg.Session.Backend)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	t.Setenv("DONASI_CONFIG", filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := Load()
	assert.Error(t, err)
}

func TestDBConfig_DSN(t *testing.T) {
	c := DBConfig{Host: "db", Port: "5433", User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	assert.Equal(t, "host=db user=u password=p dbname=n port=5433 sslmode=disable", c.DSN())
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("DONASI_TEST_INT", "not-a-number")
	t.Setenv("DONASI_TEST_BOOL", "1")

	assert.Equal(t, 7, GetIntEnv("DONASI_TEST_INT", 7))
	assert.True(t, GetBoolEnv("DONASI_TEST_BOOL", false))
	assert.Equal(t, "fallback", GetEnv("DONASI_TEST_UNSET", "fallback"))
}
