package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/twodo/internal/model"
)

// useConfig points the global flags at a fresh config whose data and
// log files live in a temp directory.
func useConfig(t *testing.T, backend string) string {
	t.Helper()
	dir := t.TempDir()

	name := "todos.db"
	if backend == model.BackendFile {
		name = "todos.json"
	}
	cfg := &model.AppConfig{
		Storage: model.StorageConfig{Backend: backend, Path: filepath.Join(dir, name)},
		Display: model.DisplayConfig{Theme: model.ThemeLight},
		Logging: model.LoggingConfig{Level: "info", File: filepath.Join(dir, "twodo.log")},
	}
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, model.SaveConfig(path, cfg))

	configPath = path
	verbose = false
	resetForce = false
	return dir
}

func run(t *testing.T, fn func(*cobra.Command, []string) error, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	require.NoError(t, fn(cmd, args))
	return out.String()
}

func TestSeedThenExport(t *testing.T) {
	for _, backend := range []string{model.BackendSQLite, model.BackendFile} {
		t.Run(backend, func(t *testing.T) {
			dir := useConfig(t, backend)

			out := run(t, runSeed)
			assert.Contains(t, out, "Sample data loaded")

			out = run(t, runSeed)
			assert.Contains(t, out, "nothing seeded")

			file := filepath.Join(dir, "export.json")
			run(t, runExport, file)

			data, err := os.ReadFile(file)
			require.NoError(t, err)
			var doc map[string]any
			require.NoError(t, json.Unmarshal(data, &doc))
			assert.Contains(t, string(data), "Buy groceries")
			assert.Contains(t, string(data), "Hardware")
		})
	}
}

func TestResetForce(t *testing.T) {
	useConfig(t, model.BackendFile)
	run(t, runSeed)

	resetForce = true
	out := run(t, runReset)
	assert.Contains(t, out, "All data deleted")

	out = run(t, runExport)
	assert.NotContains(t, out, "Buy groceries")
}

func TestVersion(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	versionCmd.Run(versionCmd, nil)
	assert.Equal(t, "twodo dev\n", out.String())
}

func TestDataDir(t *testing.T) {
	assert.Equal(t, "/data", dataDir(model.StorageConfig{Path: "/data/todos.db"}))
	assert.Equal(t, model.DefaultDataDir(), dataDir(model.StorageConfig{Path: ":memory:"}))
}
