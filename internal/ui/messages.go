// Package ui holds the layout and the messages shared by every screen.
package ui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/nhle/twodo/internal/store"
	"github.com/nhle/twodo/internal/validate"
)

// AlertMsg asks the root model to show an error in the status bar.
type AlertMsg struct {
	Err error
}

// NoticeMsg asks the root model to show an informational message.
type NoticeMsg struct {
	Text string
}

// CloseMsg asks the root model to return to the previous view.
type CloseMsg struct{}

// Alert returns a command emitting AlertMsg, or nil when err is nil.
func Alert(err error) tea.Cmd {
	if err == nil {
		return nil
	}
	return func() tea.Msg { return AlertMsg{Err: err} }
}

// Notice returns a command emitting a NoticeMsg.
func Notice(format string, args ...any) tea.Cmd {
	text := fmt.Sprintf(format, args...)
	return func() tea.Msg { return NoticeMsg{Text: text} }
}

// Close returns a command emitting CloseMsg.
func Close() tea.Msg {
	return CloseMsg{}
}

// ErrorText formats err for the status bar. Field errors are shown as
// their messages; a missing record gets a friendly sentence.
func ErrorText(err error) string {
	var fe validate.FieldErrors
	switch {
	case errors.As(err, &fe):
		return fe.Error()
	case errors.Is(err, store.ErrNotFound):
		return "That item no longer exists"
	default:
		return "Error: " + err.Error()
	}
}

// FormWidth clamps a form width to a readable range.
func FormWidth(width int) int {
	return min(max(width-4, 40), 100)
}

// FormKeyMap is huh's default key map with esc added to abort.
func FormKeyMap() *huh.KeyMap {
	km := huh.NewDefaultKeyMap()
	km.Quit = key.NewBinding(key.WithKeys("esc", "ctrl+c"))
	return km
}

// FormHeight leaves room for the form title.
func FormHeight(height int) int {
	return max(height-4, 10)
}
