// Package settings is the screen for display preferences, storage details
// and whole-store actions such as export and clear.
package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/twodo/internal/keys"
	"github.com/nhle/twodo/internal/model"
	"github.com/nhle/twodo/internal/persist"
	"github.com/nhle/twodo/internal/store"
	"github.com/nhle/twodo/internal/theme"
	"github.com/nhle/twodo/internal/ui"
)

type mode int

const (
	modeMenu mode = iota
	modeConfirmClear
	modeWorking
)

type action int

const (
	actionTheme action = iota
	actionExport
	actionSeed
	actionClear
)

var actions = []struct {
	id    action
	label string
}{
	{actionTheme, "Toggle light/dark theme"},
	{actionExport, "Export data as JSON"},
	{actionSeed, "Load sample data"},
	{actionClear, "Clear all data"},
}

// ThemeChangedMsg is sent after the theme was switched and saved.
type ThemeChangedMsg struct {
	Theme string
}

// Options carries what the screen needs to know about the running app.
type Options struct {
	Config     *model.AppConfig
	ConfigPath string
	// Storage describes the active persister, e.g. "sqlite: /path/todos.db".
	Storage string
	// ExportDir is where exports are written.
	ExportDir string
	Now       func() time.Time
}

type counts struct {
	todos, lists, items, notes, categories int
}

type loadedMsg struct {
	counts counts
}

type resultMsg struct {
	err    error
	notice string
	theme  string
}

// Model is the Bubble Tea model for the settings screen.
type Model struct {
	mode        mode
	store       *store.Store
	keys        *keys.KeyMap
	opts        Options
	counts      counts
	selectedIdx int
	confirm     *bool
	form        *huh.Form
	spinner     spinner.Model
	width       int
	height      int
}

// New creates the settings screen.
func New(s *store.Store, k *keys.KeyMap, opts Options, width, height int) Model {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return Model{
		store:   s,
		keys:    k,
		opts:    opts,
		confirm: new(bool),
		spinner: sp,
		width:   width,
		height:  height,
	}
}

// Init loads the store counts.
func (m Model) Init() tea.Cmd {
	return m.Load()
}

// Load returns a command that counts the store content.
func (m Model) Load() tea.Cmd {
	s := m.store
	return func() tea.Msg {
		return loadedMsg{counts: counts{
			todos:      len(s.Todos()),
			lists:      len(s.ShoppingLists()),
			items:      len(s.ShoppingItems()),
			notes:      len(s.Notes()),
			categories: len(s.Categories()),
		}}
	}
}

// Capturing reports whether the confirm dialog has keyboard focus.
func (m Model) Capturing() bool {
	return m.mode == modeConfirmClear
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		m.counts = msg.counts
		return m, nil

	case resultMsg:
		m.mode = modeMenu
		var cmds []tea.Cmd
		if msg.theme != "" {
			// Styles are package state read by View, so switch them here.
			theme.Use(msg.theme)
			if m.opts.Config != nil {
				m.opts.Config.Display.Theme = msg.theme
			}
			t := msg.theme
			cmds = append(cmds, func() tea.Msg { return ThemeChangedMsg{Theme: t} })
		}
		if msg.err != nil {
			cmds = append(cmds, ui.Alert(msg.err))
		} else {
			cmds = append(cmds, ui.Notice("%s", msg.notice))
		}
		return m, tea.Batch(cmds...)

	case spinner.TickMsg:
		if m.mode != modeWorking {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch m.mode {
		case modeMenu:
			return m.handleMenuKey(msg)
		case modeWorking:
			return m, nil
		}
	}

	if m.mode == modeConfirmClear {
		return m.updateConfirm(msg)
	}
	return m, nil
}

func (m Model) handleMenuKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Down):
		m.selectedIdx = (m.selectedIdx + 1) % len(actions)
	case key.Matches(msg, m.keys.Up):
		m.selectedIdx = (m.selectedIdx - 1 + len(actions)) % len(actions)
	case key.Matches(msg, m.keys.Select):
		return m.run(actions[m.selectedIdx].id)
	case key.Matches(msg, m.keys.Export):
		return m.run(actionExport)
	case key.Matches(msg, m.keys.ClearAll):
		return m.run(actionClear)
	}
	return m, nil
}

func (m Model) run(a action) (Model, tea.Cmd) {
	switch a {
	case actionTheme:
		return m, m.ToggleTheme()
	case actionExport:
		m.mode = modeWorking
		return m, tea.Batch(m.spinner.Tick, m.Export())
	case actionSeed:
		return m, m.seed()
	case actionClear:
		return m, m.StartClear()
	}
	return m, nil
}

// StartClear opens the clear-all confirmation.
func (m *Model) StartClear() tea.Cmd {
	*m.confirm = false
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Clear all data?").
				Description("Every todo, shopping list, note and category will be deleted.").
				Affirmative("Yes, clear").
				Negative("Cancel").
				Value(m.confirm),
		),
	).
		WithTheme(theme.Form()).
		WithKeyMap(ui.FormKeyMap()).
		WithWidth(ui.FormWidth(m.width))
	m.mode = modeConfirmClear
	return m.form.Init()
}

func (m Model) updateConfirm(msg tea.Msg) (Model, tea.Cmd) {
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}
	switch m.form.State {
	case huh.StateCompleted:
		m.mode = modeMenu
		m.form = nil
		if *m.confirm {
			return m, m.clear()
		}
		return m, nil
	case huh.StateAborted:
		m.mode = modeMenu
		m.form = nil
		return m, nil
	}
	return m, cmd
}

// ToggleTheme saves the opposite of the current theme to the config
// file. The styles switch once the result reaches Update.
func (m Model) ToggleTheme() tea.Cmd {
	name := theme.Next()
	path := m.opts.ConfigPath
	var cfg *model.AppConfig
	if m.opts.Config != nil {
		c := *m.opts.Config
		c.Display.Theme = name
		cfg = &c
	}
	return func() tea.Msg {
		if cfg != nil && path != "" {
			if err := model.SaveConfig(path, cfg); err != nil {
				return resultMsg{err: err, theme: name}
			}
		}
		return resultMsg{notice: "Theme: " + name, theme: name}
	}
}

// Export writes the whole store as a JSON document into the export
// directory.
func (m Model) Export() tea.Cmd {
	s := m.store
	dir := m.opts.ExportDir
	name := "twodo-export-" + m.opts.Now().Format("20060102-150405") + ".json"
	return func() tea.Msg {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return resultMsg{err: fmt.Errorf("creating export directory: %w", err)}
		}
		path := filepath.Join(dir, name)
		f, err := os.Create(path)
		if err != nil {
			return resultMsg{err: fmt.Errorf("creating export file: %w", err)}
		}
		if err := persist.ExportJSON(f, s.Tables()); err != nil {
			_ = f.Close()
			return resultMsg{err: err}
		}
		if err := f.Close(); err != nil {
			return resultMsg{err: err}
		}
		return resultMsg{notice: "Exported to " + path}
	}
}

func (m Model) seed() tea.Cmd {
	s := m.store
	return func() tea.Msg {
		if !s.Seed() {
			return resultMsg{notice: "Sample data is only loaded into an empty store"}
		}
		return resultMsg{notice: "Sample data loaded"}
	}
}

func (m Model) clear() tea.Cmd {
	s := m.store
	return func() tea.Msg {
		s.ClearAll()
		return resultMsg{notice: "All data cleared"}
	}
}

// Hints returns the status bar hints.
func (m Model) Hints() string {
	if m.mode == modeConfirmClear {
		return "y/n confirm | esc cancel"
	}
	return "enter run | E export | X clear all | T theme"
}

// View renders the settings screen.
func (m Model) View() string {
	if m.mode == modeConfirmClear && m.form != nil {
		return lipgloss.NewStyle().Padding(1, 2).Render(m.form.View())
	}

	var b strings.Builder
	b.WriteString(theme.TitleStyle.Render("Settings"))
	b.WriteString("\n\n")

	for i, a := range actions {
		label := a.label
		if a.id == actionTheme {
			label = fmt.Sprintf("%s (%s)", label, theme.Current())
		}
		if i == m.selectedIdx {
			b.WriteString(theme.SelectedItemStyle.Render(label))
		} else {
			b.WriteString(theme.ListItemStyle.Render(label))
		}
		b.WriteString("\n")
	}
	if m.mode == modeWorking {
		b.WriteString("\n" + m.spinner.View() + " Working...\n")
	}

	b.WriteString("\n")
	b.WriteString(theme.SubtitleStyle.Render("Storage"))
	b.WriteString("\n")
	info := []string{
		"Backend:    " + m.opts.Storage,
		"Exports:    " + m.opts.ExportDir,
	}
	if m.opts.ConfigPath != "" {
		info = append(info, "Config:     "+m.opts.ConfigPath)
	}
	info = append(info,
		fmt.Sprintf("Todos:      %d", m.counts.todos),
		fmt.Sprintf("Shopping:   %d lists, %d items", m.counts.lists, m.counts.items),
		fmt.Sprintf("Notes:      %d", m.counts.notes),
		fmt.Sprintf("Categories: %d", m.counts.categories),
	)
	for _, line := range info {
		b.WriteString(theme.DimmedStyle.Render(line))
		b.WriteString("\n")
	}

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Render(b.String())
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
