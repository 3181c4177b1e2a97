package command

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/twodo/internal/theme"
	"github.com/nhle/twodo/internal/ui"
)

// CommandMsg is emitted when the user executes a command.
type CommandMsg string

// Commands understood by the root model. They double as completion
// suggestions.
var Commands = []string{
	"todos",
	"shopping",
	"notes",
	"categories",
	"settings",
	"new",
	"today",
	"upcoming",
	"overdue",
	"clear",
	"theme",
	"export",
	"help",
	"quit",
}

// Model is the command palette view.
type Model struct {
	input  textinput.Model
	width  int
	height int
}

// New creates a new command palette model.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "type a command..."
	ti.Prompt = ": "
	ti.ShowSuggestions = true
	ti.SetSuggestions(Commands)
	ti.Width = width - 6

	return Model{
		input:  ti,
		width:  width,
		height: height,
	}
}

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "enter":
			cmd := strings.ToLower(strings.TrimSpace(m.input.Value()))
			m.input.Reset()
			if cmd == "" {
				return m, nil
			}
			return m, func() tea.Msg {
				return CommandMsg(cmd)
			}
		case "esc":
			m.input.Reset()
			return m, ui.Close
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the command palette.
func (m Model) View() string {
	title := theme.TitleStyle.Render("Command Palette")
	hint := theme.HelpStyle.Render("tab completes, enter runs, esc closes")

	content := lipgloss.JoinVertical(lipgloss.Left, title, m.input.View(), "", hint)

	return theme.DetailPanelStyle.
		Width(max(m.width-4, 0)).
		Render(content)
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Focus clears the input and gives it keyboard focus.
func (m *Model) Focus() tea.Cmd {
	m.input.Reset()
	return m.input.Focus()
}

// Blur releases keyboard focus.
func (m *Model) Blur() {
	m.input.Blur()
}
