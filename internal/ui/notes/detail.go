package notes

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/twodo/internal/htmltext"
	"github.com/nhle/twodo/internal/model"
	"github.com/nhle/twodo/internal/theme"
)

const (
	kindLink  = "link"
	kindImage = "image"
)

// attachment is a link or image shown under the note body.
type attachment struct {
	kind  string
	value string
}

func attachments(n model.Note) []attachment {
	out := make([]attachment, 0, len(n.Links)+len(n.Images))
	for _, l := range n.Links {
		out = append(out, attachment{kind: kindLink, value: l})
	}
	for _, img := range n.Images {
		out = append(out, attachment{kind: kindImage, value: img})
	}
	return out
}

func (m Model) handleDetailKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	n, ok := m.openNote()
	if !ok {
		m.mode = modeList
		return m, nil
	}
	atts := attachments(n)

	switch {
	case key.Matches(msg, m.keys.Back):
		m.mode = modeList
		m.openID = ""
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if len(atts) > 0 {
			m.attachIdx = wrap(m.attachIdx+1, len(atts))
			m.refreshViewport()
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if len(atts) > 0 {
			m.attachIdx = wrap(m.attachIdx-1, len(atts))
			m.refreshViewport()
		}
		return m, nil

	case key.Matches(msg, m.keys.Edit):
		return m, m.startEdit(n)

	case key.Matches(msg, m.keys.Share):
		return m, m.share(n)

	case key.Matches(msg, m.keys.Delete):
		if m.attachIdx < len(atts) {
			return m, m.detach(n.ID, atts[m.attachIdx])
		}
		return m, nil

	case msg.String() == "a":
		return m, m.startAttach(n, kindLink)

	case msg.String() == "i":
		return m, m.startAttach(n, kindImage)
	}

	// pgup/pgdn and mouse scrolling
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) startAttach(n model.Note, kind string) tea.Cmd {
	m.editing = n
	m.fb.attachKind = kind
	m.fb.attachValue = ""
	return m.startForm(modeAttachForm, m.buildAttachForm(kind))
}

// refreshViewport re-renders the open note into the viewport.
func (m *Model) refreshViewport() {
	n, ok := m.openNote()
	if !ok {
		return
	}
	m.viewport.SetContent(m.renderDetail(n))
}

func (m Model) renderDetail(n model.Note) string {
	width := max(m.width-4, 20)
	var b strings.Builder

	b.WriteString(theme.TitleStyle.Render(n.Title))
	b.WriteString("\n")

	var meta []string
	if c, ok := m.categories[n.CategoryID]; ok {
		meta = append(meta, theme.CategoryStyle(c.Color).Render("● "+c.Name))
	}
	if len(n.Tags) > 0 {
		meta = append(meta, theme.TagStyle.Render("#"+strings.Join(n.Tags, " #")))
	}
	meta = append(meta, theme.HelpStyle.Render("updated "+n.UpdatedAt.Local().Format("Jan 02 2006 15:04")))
	b.WriteString(strings.Join(meta, "  "))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.NewStyle().Width(width).Render(htmltext.ToText(n.Content)))
	b.WriteString("\n")

	// Anchors in the body that were not attached explicitly.
	var inline []string
	for _, href := range htmltext.Links(n.Content) {
		if !contains(n.Links, href) {
			inline = append(inline, href)
		}
	}
	if len(inline) > 0 {
		b.WriteString("\n")
		b.WriteString(theme.SubtitleStyle.Render("Links in text"))
		b.WriteString("\n")
		for _, href := range inline {
			b.WriteString(theme.ListItemStyle.Render("↗ " + href))
			b.WriteString("\n")
		}
	}

	atts := attachments(n)
	b.WriteString("\n")
	b.WriteString(theme.SubtitleStyle.Render(fmt.Sprintf("Attachments (%d)", len(atts))))
	b.WriteString("\n")
	if len(atts) == 0 {
		b.WriteString(theme.EmptyStyle.Render("Press 'a' to add a link or 'i' to add an image."))
	}
	for i, a := range atts {
		icon := "🔗"
		if a.kind == kindImage {
			icon = "🖼"
		}
		line := icon + " " + a.value
		if i == m.attachIdx {
			b.WriteString(theme.SelectedItemStyle.Render(line))
		} else {
			b.WriteString(theme.ListItemStyle.Render(line))
		}
		b.WriteString("\n")
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func (m Model) attach(noteID, kind, value string) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		var err error
		if kind == kindImage {
			err = s.AddImageToNote(noteID, value)
		} else {
			err = s.AddLinkToNote(noteID, value)
		}
		if err != nil {
			return resultMsg{err: err}
		}
		return resultMsg{notice: fmt.Sprintf("Added %s", kind)}
	}
}

func (m Model) detach(noteID string, a attachment) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		var err error
		if a.kind == kindImage {
			err = s.RemoveImageFromNote(noteID, a.value)
		} else {
			err = s.RemoveLinkFromNote(noteID, a.value)
		}
		if err != nil {
			return resultMsg{err: err}
		}
		return resultMsg{notice: fmt.Sprintf("Removed %s", a.kind)}
	}
}
