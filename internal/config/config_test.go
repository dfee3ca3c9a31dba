package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdirTemp moves into a fresh temp dir so no config.yaml is found.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "credit-engine.db", cfg.Store.Path)
	assert.True(t, cfg.Model.Enabled)
	assert.Equal(t, "models/credit_score_gbrt.gob", cfg.Model.Path)
	assert.Empty(t, cfg.Model.ServeURL)
	assert.Equal(t, 30, cfg.Model.TimeoutSecs)
	assert.InDelta(t, 10, cfg.Model.RateLimitRPS, 0.001)
	assert.Equal(t, 5, cfg.Batch.Concurrency)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadEnvOverrides(t *testing.T) {
	chdirTemp(t)
	t.Setenv("CREDIT_STORE_DRIVER", "postgres")
	t.Setenv("CREDIT_STORE_DATABASE_URL", "postgres://localhost/credit")
	t.Setenv("CREDIT_MODEL_ENABLED", "false")
	t.Setenv("CREDIT_MODEL_SERVE_URL", "http://models.internal:9000")
	t.Setenv("CREDIT_RULES_WEIGHTS_FILE", "weights.yaml")
	t.Setenv("CREDIT_SERVER_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/credit", cfg.Store.DatabaseURL)
	assert.False(t, cfg.Model.Enabled)
	assert.Equal(t, "http://models.internal:9000", cfg.Model.ServeURL)
	assert.Equal(t, "weights.yaml", cfg.Rules.WeightsFile)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestLoadConfigFile(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(`
model:
  enabled: false
  serve_url: http://models.internal:9000
rules:
  weights_file: weights.yaml
server:
  port: 3000
`), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.Model.Enabled)
	assert.Equal(t, "http://models.internal:9000", cfg.Model.ServeURL)
	assert.Equal(t, "weights.yaml", cfg.Rules.WeightsFile)
	assert.Equal(t, 3000, cfg.Server.Port)
	// Defaults still fill unset keys.
	assert.Equal(t, "sqlite", cfg.Store.Driver)
}

func TestInitLogger(t *testing.T) {
	assert.Error(t, InitLogger(LogConfig{Level: "shout", Format: "json"}))
	assert.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
}
