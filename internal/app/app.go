package app

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nhle/twodo/internal/keys"
	"github.com/nhle/twodo/internal/model"
	"github.com/nhle/twodo/internal/query"
	"github.com/nhle/twodo/internal/store"
	appsync "github.com/nhle/twodo/internal/sync"
	"github.com/nhle/twodo/internal/theme"
	"github.com/nhle/twodo/internal/ui"
	"github.com/nhle/twodo/internal/ui/categories"
	"github.com/nhle/twodo/internal/ui/command"
	helpview "github.com/nhle/twodo/internal/ui/help"
	"github.com/nhle/twodo/internal/ui/notes"
	"github.com/nhle/twodo/internal/ui/settings"
	"github.com/nhle/twodo/internal/ui/shopping"
	"github.com/nhle/twodo/internal/ui/todolist"
)

// Tab identifies one of the top-level screens.
type Tab int

const (
	TabTodos Tab = iota
	TabShopping
	TabNotes
	TabCategories
	TabSettings
)

var tabNames = []string{"Todos", "Shopping", "Notes", "Categories", "Settings"}

// Overlay is a view drawn in place of the active tab.
type Overlay int

const (
	OverlayNone Overlay = iota
	OverlayHelp
	OverlayCommand
)

// Deps are the long-lived services the UI works with.
type Deps struct {
	Store      *store.Store
	Watcher    *appsync.Watcher
	Logger     *zap.Logger
	Config     *model.AppConfig
	ConfigPath string
	// Storage describes the persister for display.
	Storage string
	// DataDir holds exports and shared notes.
	DataDir string
}

// Model is the root Bubble Tea model. It owns the tab bar, the overlays
// and the status bar, and routes input to the active screen.
type Model struct {
	deps    Deps
	log     *zap.Logger
	keys    *keys.KeyMap
	layout  ui.Layout
	ready   bool
	tab     Tab
	overlay Overlay

	todos      todolist.Model
	shopping   shopping.Model
	notes      notes.Model
	categories categories.Model
	settings   settings.Model
	help       helpview.Model
	command    command.Model

	alert  string
	notice string
}

// New creates the root model.
func New(d Deps) Model {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.DataDir == "" {
		d.DataDir = model.DefaultDataDir()
	}
	k := keys.DefaultKeyMap()

	return Model{
		deps:       d,
		log:        d.Logger.Named("ui"),
		keys:       k,
		todos:      todolist.New(d.Store, k, 80, 24),
		shopping:   shopping.New(d.Store, k, 80, 24),
		notes:      notes.New(d.Store, k, filepath.Join(d.DataDir, "shared"), 80, 24),
		categories: categories.New(d.Store, k, 80, 24),
		settings: settings.New(d.Store, k, settings.Options{
			Config:     d.Config,
			ConfigPath: d.ConfigPath,
			Storage:    d.Storage,
			ExportDir:  filepath.Join(d.DataDir, "exports"),
		}, 80, 24),
		help:    helpview.New(k, 80, 24),
		command: command.New(80, 24),
	}
}

// Init loads every screen and starts watching the store.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.reloadAll()}
	if m.deps.Watcher != nil {
		cmds = append(cmds, m.deps.Watcher.Start())
	}
	return tea.Batch(cmds...)
}

func (m Model) reloadAll() tea.Cmd {
	return tea.Batch(
		m.todos.Load(),
		m.shopping.Load(),
		m.notes.Load(),
		m.categories.Load(),
		m.settings.Load(),
	)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
		m.todos.SetSize(w, h)
		m.shopping.SetSize(w, h)
		m.notes.SetSize(w, h)
		m.categories.SetSize(w, h)
		m.settings.SetSize(w, h)
		m.help.SetSize(w, h)
		m.command.SetSize(w, h)
		return m.broadcast(msg)

	case appsync.ChangedMsg:
		return m, tea.Batch(m.reloadAll(), m.deps.Watcher.WaitForChange())

	case appsync.ErrorMsg:
		m.log.Warn("storage error", zap.Error(msg.Err))
		m.alert = "Storage error: " + msg.Err.Error()
		m.notice = ""
		return m, m.deps.Watcher.WaitForError()

	case ui.AlertMsg:
		m.log.Debug("alert", zap.Error(msg.Err))
		m.alert = ui.ErrorText(msg.Err)
		m.notice = ""
		return m, nil

	case ui.NoticeMsg:
		m.notice = msg.Text
		m.alert = ""
		return m, nil

	case ui.CloseMsg:
		m.closeOverlay()
		return m, nil

	case command.CommandMsg:
		m.closeOverlay()
		return m, m.executeCommand(string(msg))

	case settings.ThemeChangedMsg:
		m.log.Info("theme changed", zap.String("theme", msg.Theme))
		return m, m.reloadAll()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.broadcast(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Any key acknowledges the last alert or notice.
	if m.alert != "" && m.deps.Watcher != nil {
		m.deps.Watcher.ClearError()
	}
	m.alert = ""
	m.notice = ""

	if msg.String() == "ctrl+c" {
		return m, m.quit()
	}

	switch m.overlay {
	case OverlayCommand:
		var cmd tea.Cmd
		m.command, cmd = m.command.Update(msg)
		return m, cmd
	case OverlayHelp:
		if key.Matches(msg, m.keys.Help) || key.Matches(msg, m.keys.Quit) {
			m.closeOverlay()
			return m, nil
		}
		var cmd tea.Cmd
		m.help, cmd = m.help.Update(msg)
		return m, cmd
	}

	if !m.capturing() {
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, m.quit()
		case key.Matches(msg, m.keys.Help):
			m.overlay = OverlayHelp
			return m, nil
		case key.Matches(msg, m.keys.Command):
			m.overlay = OverlayCommand
			return m, m.command.Focus()
		case key.Matches(msg, m.keys.NextTab):
			m.tab = (m.tab + 1) % Tab(len(tabNames))
			return m, nil
		case key.Matches(msg, m.keys.PrevTab):
			m.tab = (m.tab + Tab(len(tabNames)) - 1) % Tab(len(tabNames))
			return m, nil
		case key.Matches(msg, m.keys.ToggleTheme):
			return m, m.settings.ToggleTheme()
		}
	}

	return m.updateActive(msg)
}

// capturing reports whether the active screen owns raw key input.
func (m Model) capturing() bool {
	switch m.tab {
	case TabTodos:
		return m.todos.Capturing()
	case TabShopping:
		return m.shopping.Capturing()
	case TabNotes:
		return m.notes.Capturing()
	case TabCategories:
		return m.categories.Capturing()
	case TabSettings:
		return m.settings.Capturing()
	}
	return false
}

// updateActive sends msg to the active screen only.
func (m Model) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.tab {
	case TabTodos:
		m.todos, cmd = m.todos.Update(msg)
	case TabShopping:
		m.shopping, cmd = m.shopping.Update(msg)
	case TabNotes:
		m.notes, cmd = m.notes.Update(msg)
	case TabCategories:
		m.categories, cmd = m.categories.Update(msg)
	case TabSettings:
		m.settings, cmd = m.settings.Update(msg)
	}
	return m, cmd
}

// broadcast sends msg to every screen. Loaded snapshots and results are
// private to the screen that asked for them, so the others ignore them.
func (m Model) broadcast(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmds := make([]tea.Cmd, 0, 6)
	var cmd tea.Cmd

	m.todos, cmd = m.todos.Update(msg)
	cmds = append(cmds, cmd)
	m.shopping, cmd = m.shopping.Update(msg)
	cmds = append(cmds, cmd)
	m.notes, cmd = m.notes.Update(msg)
	cmds = append(cmds, cmd)
	m.categories, cmd = m.categories.Update(msg)
	cmds = append(cmds, cmd)
	m.settings, cmd = m.settings.Update(msg)
	cmds = append(cmds, cmd)
	if m.overlay == OverlayCommand {
		m.command, cmd = m.command.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) closeOverlay() {
	if m.overlay == OverlayCommand {
		m.command.Blur()
	}
	m.overlay = OverlayNone
}

func (m Model) quit() tea.Cmd {
	if m.deps.Watcher != nil {
		m.deps.Watcher.Stop()
	}
	return tea.Quit
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader(tabNames, int(m.tab), m.storageStatus())
	statusBar := m.layout.RenderStatusBar(m.statusText(), m.alert)
	return m.layout.RenderWithFrame(header, m.renderContent(), statusBar)
}

func (m Model) renderContent() string {
	switch m.overlay {
	case OverlayHelp:
		return m.help.View()
	case OverlayCommand:
		return m.command.View()
	}

	switch m.tab {
	case TabTodos:
		return m.todos.View()
	case TabShopping:
		return m.shopping.View()
	case TabNotes:
		return m.notes.View()
	case TabCategories:
		return m.categories.View()
	case TabSettings:
		return m.settings.View()
	}
	return ""
}

// storageStatus summarizes the watcher state for the header.
func (m Model) storageStatus() string {
	if m.deps.Watcher == nil {
		return m.deps.Storage
	}
	st := m.deps.Watcher.Status()
	switch st.State {
	case appsync.StateError:
		return "⚠ not saved"
	case appsync.StateChanged:
		return fmt.Sprintf("%s · %d changes", m.deps.Storage, st.Changes)
	default:
		return m.deps.Storage
	}
}

// statusText returns the notice or keyboard hints for the status bar.
func (m Model) statusText() string {
	hints := m.hints()
	if m.notice != "" {
		return theme.NoticeStyle.Render(m.notice) + "  " + hints
	}
	return hints
}

func (m Model) hints() string {
	switch m.overlay {
	case OverlayHelp:
		return "? close help | esc back"
	case OverlayCommand:
		return "enter execute | tab complete | esc back"
	}

	var hints string
	switch m.tab {
	case TabTodos:
		hints = m.todos.Hints()
	case TabShopping:
		hints = m.shopping.Hints()
	case TabNotes:
		hints = m.notes.Hints()
	case TabCategories:
		hints = m.categories.Hints()
	case TabSettings:
		hints = m.settings.Hints()
	}
	if m.capturing() {
		return hints
	}
	return hints + " | h/l tabs | ? help | q quit"
}

// executeCommand handles a command string from the command palette.
func (m *Model) executeCommand(cmd string) tea.Cmd {
	m.log.Debug("command", zap.String("command", cmd))

	switch cmd {
	case "todos", "todo":
		m.tab = TabTodos
	case "shopping", "shop":
		m.tab = TabShopping
	case "notes", "note":
		m.tab = TabNotes
	case "categories", "cats":
		m.tab = TabCategories
	case "settings", "config":
		m.tab = TabSettings
	case "new":
		return m.startCreate()
	case "today":
		m.tab = TabTodos
		return m.todos.SetDueFilter(query.DueToday)
	case "upcoming":
		m.tab = TabTodos
		return m.todos.SetDueFilter(query.DueUpcoming)
	case "overdue":
		m.tab = TabTodos
		return m.todos.SetDueFilter(query.DueOverdue)
	case "clear", "clear filters":
		return m.todos.ClearFilters()
	case "theme":
		return m.settings.ToggleTheme()
	case "export":
		return m.settings.Export()
	case "help":
		m.overlay = OverlayHelp
	case "quit", "q":
		return m.quit()
	default:
		return ui.Alert(fmt.Errorf("unknown command %q", cmd))
	}
	return nil
}

// startCreate opens the create form of the active screen.
func (m *Model) startCreate() tea.Cmd {
	switch m.tab {
	case TabShopping:
		return m.shopping.StartCreate()
	case TabNotes:
		return m.notes.StartCreate()
	case TabCategories:
		return m.categories.StartCreate()
	default:
		m.tab = TabTodos
		return m.todos.StartCreate()
	}
}
