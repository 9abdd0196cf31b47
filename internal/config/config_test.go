package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(New())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, int32(10), cfg.DBMaxConns)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "http://localhost:8080", cfg.ServerURL)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_URL", "sqlite:/tmp/todo.db")
	t.Setenv("SERVER_URL", "http://example.test:9090/")
	t.Setenv("REQUEST_TIMEOUT", "3s")

	cfg, err := Load(New())
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "sqlite:/tmp/todo.db", cfg.DatabaseURL)
	assert.Equal(t, "http://example.test:9090", cfg.ServerURL)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todomvc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: \"7070\"\nlog_level: debug\n"), 0o644))
	t.Setenv("TODOMVC_CONFIG", path)
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load(New())
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Port)
	assert.Equal(t, "warn", cfg.LogLevel, "env overrides file")
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("TODOMVC_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load(New())
	assert.Error(t, err)
}
