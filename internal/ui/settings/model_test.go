package settings

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/twodo/internal/keys"
	"github.com/nhle/twodo/internal/model"
	"github.com/nhle/twodo/internal/store"
	"github.com/nhle/twodo/internal/theme"
	"github.com/nhle/twodo/tests/testutil"
)

func setup(t *testing.T) (Model, *store.Store, Options) {
	t.Helper()
	s, clock := testutil.NewTestStore(t)
	dir := t.TempDir()
	opts := Options{
		Config:     &model.AppConfig{Display: model.DisplayConfig{Theme: model.ThemeLight}},
		ConfigPath: filepath.Join(dir, "config.yaml"),
		Storage:    "memory",
		ExportDir:  filepath.Join(dir, "exports"),
		Now:        clock.Now,
	}
	m := New(s, keys.DefaultKeyMap(), opts, 100, 30)
	return m, s, opts
}

func TestLoadShowsCounts(t *testing.T) {
	m, s, _ := setup(t)
	require.True(t, s.Seed())

	m, _ = m.Update(m.Load()())
	view := m.View()
	assert.Contains(t, view, "Todos:      3")
	assert.Contains(t, view, "Shopping:   2 lists, 0 items")
	assert.Contains(t, view, "Categories: 4")
}

func TestExportWritesJSON(t *testing.T) {
	m, s, opts := setup(t)
	_, err := s.AddTodo(model.Todo{Title: "Call mom"})
	require.NoError(t, err)

	res := m.Export()().(resultMsg)
	require.NoError(t, res.err)

	path := filepath.Join(opts.ExportDir, "twodo-export-20240301-090000.json")
	assert.Contains(t, res.notice, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Contains(t, string(data), "Call mom")
}

func TestToggleThemeSavesConfig(t *testing.T) {
	m, _, opts := setup(t)
	theme.Use(model.ThemeLight)
	t.Cleanup(func() { theme.Use(model.ThemeLight) })

	res := m.ToggleTheme()().(resultMsg)
	require.NoError(t, res.err)
	assert.Equal(t, model.ThemeDark, res.theme)

	// The command only writes the file; styles and the shared config
	// change when Update sees the result.
	assert.Equal(t, model.ThemeLight, theme.Current())
	assert.Equal(t, model.ThemeLight, opts.Config.Display.Theme)

	loaded, err := model.LoadConfig(opts.ConfigPath)
	require.NoError(t, err)
	assert.Equal(t, model.ThemeDark, loaded.Display.Theme)

	m, cmd := m.Update(res)
	require.NotNil(t, cmd)
	assert.Equal(t, model.ThemeDark, theme.Current())
	assert.Equal(t, model.ThemeDark, opts.Config.Display.Theme)
	assert.Contains(t, m.View(), "(dark)")
}

func TestToggleThemeCommandLeavesStylesAlone(t *testing.T) {
	m, _, _ := setup(t)
	theme.Use(model.ThemeLight)
	t.Cleanup(func() { theme.Use(model.ThemeLight) })
	before := theme.ColorBlue

	done := make(chan tea.Msg)
	go func() { done <- m.ToggleTheme()() }()
	for i := 0; i < 50; i++ {
		_ = m.View()
	}
	res := (<-done).(resultMsg)

	assert.Equal(t, model.ThemeDark, res.theme)
	assert.Equal(t, before, theme.ColorBlue)
}

func TestClearRequiresConfirmation(t *testing.T) {
	m, s, _ := setup(t)
	require.True(t, s.Seed())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("X")})
	assert.True(t, m.Capturing())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.Capturing())
	assert.False(t, s.IsEmpty())

	res := m.clear()().(resultMsg)
	require.NoError(t, res.err)
	assert.True(t, s.IsEmpty())
}

func TestSeedOnlyIntoEmptyStore(t *testing.T) {
	m, s, _ := setup(t)

	res := m.seed()().(resultMsg)
	assert.Equal(t, "Sample data loaded", res.notice)
	assert.False(t, s.IsEmpty())

	res = m.seed()().(resultMsg)
	assert.Contains(t, res.notice, "empty store")
}
