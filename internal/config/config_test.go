package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seam.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "app", cfg.App.Root)
	assert.Equal(t, "server.js", cfg.App.ServerEntry)
	assert.Equal(t, "client.js", cfg.App.ClientEntry)
	assert.Equal(t, "dist", cfg.Build.OutDir)
	assert.Equal(t, 4, cfg.Build.Parallelism)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.False(t, cfg.Server.Dev)
	assert.Equal(t, "info", cfg.Logging.Level)

	require.NoError(t, cfg.Validate())
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
app:
  root: web
  server_entry: entry.server.js
build:
  parallelism: 8
server:
  port: 8080
  dev: true
logging:
  level: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "web", cfg.App.Root)
	assert.Equal(t, "entry.server.js", cfg.App.ServerEntry)
	// Unset keys keep their defaults.
	assert.Equal(t, "client.js", cfg.App.ClientEntry)
	assert.Equal(t, 8, cfg.Build.Parallelism)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.True(t, cfg.Server.Dev)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadSubstitutesEnvVars(t *testing.T) {
	t.Setenv("SEAM_TEST_ROOT", "/srv/app")
	t.Setenv("SEAM_TEST_REDIS", "redis.internal:6379")

	path := writeConfig(t, `
app:
  root: ${SEAM_TEST_ROOT}
server:
  cache:
    enabled: true
    redis_addr: ${SEAM_TEST_REDIS}
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/app", cfg.App.Root)
	assert.Equal(t, "redis.internal:6379", cfg.Server.Cache.RedisAddr)
}

func TestLoadKeepsUnresolvedEnvVars(t *testing.T) {
	path := writeConfig(t, `
app:
  root: ${SEAM_DEFINITELY_UNSET_VAR}
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "${SEAM_DEFINITELY_UNSET_VAR}", cfg.App.Root)
}

func TestValidateCollectsAllProblems(t *testing.T) {
	cfg := DefaultConfig()
	cfg.App.Root = ""
	cfg.Build.Parallelism = 0
	cfg.Server.Port = 0
	cfg.Logging.Level = "chatty"

	err := cfg.Validate()
	require.Error(t, err)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Problems, 4)
	assert.Contains(t, err.Error(), "app.root is required")
	assert.Contains(t, err.Error(), "parallelism")
	assert.Contains(t, err.Error(), "port")
	assert.Contains(t, err.Error(), "logging.level")
}

func TestValidateCacheRequiresRedisAddr(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.Cache.Enabled = true

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis_addr")

	cfg.Server.Cache.RedisAddr = "localhost:6379"
	require.NoError(t, cfg.Validate())
}
