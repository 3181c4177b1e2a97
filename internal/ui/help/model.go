package help

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/twodo/internal/keys"
	"github.com/nhle/twodo/internal/theme"
	"github.com/nhle/twodo/internal/ui"
)

// Model is the help overlay view.
type Model struct {
	keys   *keys.KeyMap
	help   help.Model
	width  int
	height int
}

// New creates a new help view model.
func New(keys *keys.KeyMap, width, height int) Model {
	h := help.New()
	h.Width = width
	h.ShowAll = true
	return Model{
		keys:   keys,
		help:   h,
		width:  width,
		height: height,
	}
}

// Update handles messages for the help view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && key.Matches(msg, m.keys.Back) {
		return m, ui.Close
	}
	return m, nil
}

// View renders the help overlay with every binding and the palette
// commands.
func (m Model) View() string {
	title := theme.TitleStyle.Render("Keyboard Shortcuts")

	m.help.Width = m.width - 4
	m.help.Styles.FullKey = lipgloss.NewStyle().Foreground(theme.ColorBlue)
	m.help.Styles.FullDesc = lipgloss.NewStyle().Foreground(theme.ColorGray)
	helpText := m.help.View(m.keys)

	commands := theme.HelpStyle.Render(
		"Commands (:): todos, shopping, notes, categories, settings, new, " +
			"today, upcoming, overdue, clear, theme, export, quit",
	)

	content := lipgloss.JoinVertical(lipgloss.Left, title, helpText, "", commands)

	return theme.DetailPanelStyle.
		Width(max(m.width-4, 0)).
		Height(max(m.height-4, 0)).
		Render(content)
}

// SetSize updates the help view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width - 4
}
