package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, ThemeLight, cfg.Display.Theme)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.SeedOnFirstRun)
}

func TestSaveThenLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := defaultAppConfig()
	cfg.Storage.Backend = BackendFile
	cfg.Storage.Path = "/tmp/twodo.json"
	cfg.Display.Theme = ThemeDark
	cfg.SeedOnFirstRun = false
	require.NoError(t, SaveConfig(path, cfg))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, BackendFile, loaded.Storage.Backend)
	assert.Equal(t, "/tmp/twodo.json", loaded.Storage.Path)
	assert.Equal(t, ThemeDark, loaded.Display.Theme)
	assert.False(t, loaded.SeedOnFirstRun)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("TWODO_STORAGE_BACKEND", "file")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, BackendFile, cfg.Storage.Backend)
}

func TestLoadConfigRejectsUnknownBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage:\n  backend: postgres\n"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestStoragePathDefaults(t *testing.T) {
	assert.Equal(t, "todos.db", filepath.Base(StorageConfig{Backend: BackendSQLite}.StoragePath()))
	assert.Equal(t, "todos.json", filepath.Base(StorageConfig{Backend: BackendFile}.StoragePath()))
	assert.Equal(t, "/x.db", StorageConfig{Path: "/x.db"}.StoragePath())
}
