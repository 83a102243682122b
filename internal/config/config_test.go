package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://ledger@localhost/ledger")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:6379", cfg.RedisAddr)
	assert.Equal(t, ":8080", cfg.ServerAddr)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAIModel)
	assert.Equal(t, 15*time.Minute, cfg.PendingTTL)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 60, cfg.RateLimitPerMinute)
	assert.False(t, cfg.AIEnabled())
	assert.False(t, cfg.IsProduction())
}

func TestLoad_EnvFileDoesNotOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("DATABASE_URL=postgres://from-file\nSERVER_ADDR=:9999\n"), 0o600))

	t.Setenv("DATABASE_URL", "postgres://from-env")
	t.Setenv("SERVER_ADDR", "")
	require.NoError(t, os.Unsetenv("SERVER_ADDR"))

	cfg, err := Load(envFile)
	require.NoError(t, err)
	assert.Equal(t, "postgres://from-env", cfg.DatabaseURL)
	assert.Equal(t, ":9999", cfg.ServerAddr)
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	require.NoError(t, os.Unsetenv("DATABASE_URL"))

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Config{DatabaseURL: "postgres://x", RateLimitPerMinute: 0, PendingTTL: time.Minute}
	assert.Error(t, cfg.Validate())

	cfg.RateLimitPerMinute = 10
	assert.NoError(t, cfg.Validate())

	cfg.PendingTTL = 0
	assert.Error(t, cfg.Validate())
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&Config{LogFormat: "json"}, &buf)
	logger.Info("payment registered", "payment_id", 7)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "payment registered", line["msg"])
	assert.EqualValues(t, 7, line["payment_id"])
}
