package app

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/twodo/internal/model"
	"github.com/nhle/twodo/internal/store"
	appsync "github.com/nhle/twodo/internal/sync"
	"github.com/nhle/twodo/internal/ui"
	"github.com/nhle/twodo/internal/ui/command"
	"github.com/nhle/twodo/tests/testutil"
)

func press(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

func newModel(t *testing.T) (Model, *store.Store) {
	t.Helper()
	s, _ := testutil.NewTestStore(t)
	m := New(Deps{Store: s, Storage: "memory", DataDir: t.TempDir()})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, s
}

func TestTabNavigation(t *testing.T) {
	m, _ := newModel(t)
	assert.Equal(t, TabTodos, m.tab)

	m, _ = update(t, m, press("l"))
	assert.Equal(t, TabShopping, m.tab)

	m, _ = update(t, m, press("h"))
	m, _ = update(t, m, press("h"))
	assert.Equal(t, TabSettings, m.tab)
	assert.Contains(t, m.View(), "Storage")
}

func TestQuitKey(t *testing.T) {
	m, _ := newModel(t)

	_, cmd := update(t, m, press("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestGlobalKeysIgnoredWhileCapturing(t *testing.T) {
	m, _ := newModel(t)

	m, _ = update(t, m, press("/"))
	require.True(t, m.capturing())

	m, _ = update(t, m, press("q"))
	m, _ = update(t, m, press("l"))
	assert.Equal(t, TabTodos, m.tab)
	assert.Equal(t, OverlayNone, m.overlay)
	assert.Equal(t, `search: "ql"`, m.todos.FilterSummary())
}

func TestHelpOverlay(t *testing.T) {
	m, _ := newModel(t)

	m, _ = update(t, m, press("?"))
	assert.Equal(t, OverlayHelp, m.overlay)
	assert.Contains(t, m.View(), "Keyboard Shortcuts")

	m, _ = update(t, m, press("?"))
	assert.Equal(t, OverlayNone, m.overlay)
}

func TestCommands(t *testing.T) {
	m, _ := newModel(t)

	m, _ = update(t, m, press(":"))
	assert.Equal(t, OverlayCommand, m.overlay)

	m, _ = update(t, m, command.CommandMsg("notes"))
	assert.Equal(t, OverlayNone, m.overlay)
	assert.Equal(t, TabNotes, m.tab)

	m, _ = update(t, m, command.CommandMsg("overdue"))
	assert.Equal(t, TabTodos, m.tab)
	assert.Contains(t, m.todos.FilterSummary(), "due: overdue")

	_, cmd := update(t, m, command.CommandMsg("fly"))
	require.NotNil(t, cmd)
	alert, ok := cmd().(ui.AlertMsg)
	require.True(t, ok)
	assert.Contains(t, alert.Err.Error(), `unknown command "fly"`)
}

func TestAlertAndNoticeInStatusBar(t *testing.T) {
	m, _ := newModel(t)

	m, _ = update(t, m, ui.AlertMsg{Err: errors.New("disk full")})
	assert.Contains(t, m.View(), "Error: disk full")

	m, _ = update(t, m, ui.NoticeMsg{Text: "Saved"})
	assert.Empty(t, m.alert)
	assert.Contains(t, m.View(), "Saved")

	m, _ = update(t, m, press("j"))
	assert.Empty(t, m.notice)
}

func TestStoreChangeReloadsScreens(t *testing.T) {
	s, _ := testutil.NewTestStore(t)
	w := appsync.New(s)
	t.Cleanup(w.Stop)

	m := New(Deps{Store: s, Watcher: w, Storage: "memory", DataDir: t.TempDir()})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})

	_, err := s.AddTodo(model.Todo{Title: "Water plants"})
	require.NoError(t, err)

	msg := w.WaitForChange()()
	require.IsType(t, appsync.ChangedMsg{}, msg)
	_, cmd := update(t, m, msg)
	assert.NotNil(t, cmd)

	// Deliver the reloaded todo snapshot directly.
	m, _ = update(t, m, m.todos.Load()())
	assert.Contains(t, m.View(), "Water plants")
}

func TestStorageErrorShowsAlert(t *testing.T) {
	s, _ := testutil.NewTestStore(t)
	w := appsync.New(s)
	t.Cleanup(w.Stop)

	m := New(Deps{Store: s, Watcher: w, Storage: "memory", DataDir: t.TempDir()})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})

	w.ReportError(errors.New("database is locked"))
	m, _ = update(t, m, w.WaitForError()())
	assert.Contains(t, m.alert, "database is locked")
	assert.Contains(t, m.View(), "not saved")

	m, _ = update(t, m, press("j"))
	assert.Empty(t, m.alert)
	assert.Equal(t, appsync.StateChanged, w.Status().State)
}
