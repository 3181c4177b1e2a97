package notes

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/twodo/internal/htmltext"
	"github.com/nhle/twodo/internal/keys"
	"github.com/nhle/twodo/internal/model"
	"github.com/nhle/twodo/internal/query"
	"github.com/nhle/twodo/internal/share"
	"github.com/nhle/twodo/internal/store"
	"github.com/nhle/twodo/internal/theme"
	"github.com/nhle/twodo/internal/ui"
)

type mode int

const (
	modeList mode = iota
	modeSearch
	modeDetail
	modeNoteForm
	modeAttachForm
	modeConfirmDelete
)

type loadedMsg struct {
	notes      []model.Note
	categories []model.Category
}

type resultMsg struct {
	err    error
	notice string
}

// Model is the notes screen.
type Model struct {
	mode        mode
	store       *store.Store
	keys        *keys.KeyMap
	shareDir    string
	notes       []model.Note
	categories  map[string]model.Category
	catList     []model.Category
	visible     []model.Note
	selectedIdx int
	search      textinput.Model
	query       string

	// detail
	openID    string
	attachIdx int
	viewport  viewport.Model

	form     *huh.Form
	fb       *formBindings
	editing  model.Note
	attachTo string

	width  int
	height int
}

// New creates the notes screen. Shared notes are written to shareDir.
func New(s *store.Store, k *keys.KeyMap, shareDir string, width, height int) Model {
	si := textinput.New()
	si.Placeholder = "search notes, #tag for tags..."
	si.Prompt = "/ "
	si.Width = width - 4

	return Model{
		store:      s,
		keys:       k,
		shareDir:   shareDir,
		categories: map[string]model.Category{},
		search:     si,
		viewport:   viewport.New(width, max(height-2, 1)),
		fb:         &formBindings{},
		width:      width,
		height:     height,
	}
}

// Init loads the initial snapshot.
func (m Model) Init() tea.Cmd {
	return m.Load()
}

// Load returns a command that reads notes and categories from the store.
func (m Model) Load() tea.Cmd {
	s := m.store
	return func() tea.Msg {
		return loadedMsg{notes: s.Notes(), categories: s.Categories()}
	}
}

// Capturing reports whether the screen is consuming raw key input.
func (m Model) Capturing() bool {
	return m.mode != modeList && m.mode != modeDetail
}

// InDetail reports whether a note is open.
func (m Model) InDetail() bool {
	return m.mode == modeDetail
}

// Update handles messages for the notes screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		m.notes = msg.notes
		m.catList = msg.categories
		m.categories = make(map[string]model.Category, len(msg.categories))
		for _, c := range msg.categories {
			m.categories[c.ID] = c
		}
		m.applySearch()
		if m.mode == modeDetail {
			if _, ok := m.openNote(); !ok {
				m.mode = modeList
				m.openID = ""
				return m, ui.Notice("The note was deleted")
			}
			m.refreshViewport()
		}
		return m, nil

	case resultMsg:
		if msg.err != nil {
			return m, ui.Alert(msg.err)
		}
		if msg.notice != "" {
			return m, ui.Notice("%s", msg.notice)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeSearch:
			return m.handleSearchKeys(msg)
		case modeDetail:
			return m.handleDetailKeys(msg)
		case modeNoteForm, modeAttachForm, modeConfirmDelete:
			return m.updateForm(msg)
		}
		return m.handleListKeys(msg)
	}

	switch m.mode {
	case modeNoteForm, modeAttachForm, modeConfirmDelete:
		return m.updateForm(msg)
	case modeDetail:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	case modeSearch:
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleListKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Down):
		m.selectedIdx = wrap(m.selectedIdx+1, len(m.visible))
	case key.Matches(msg, m.keys.Up):
		m.selectedIdx = wrap(m.selectedIdx-1, len(m.visible))

	case key.Matches(msg, m.keys.Select):
		if n, ok := m.selected(); ok {
			m.mode = modeDetail
			m.openID = n.ID
			m.attachIdx = 0
			m.refreshViewport()
			m.viewport.GotoTop()
		}

	case key.Matches(msg, m.keys.Search):
		m.mode = modeSearch
		m.search.SetValue(m.query)
		return m, m.search.Focus()

	case key.Matches(msg, m.keys.New):
		return m, m.StartCreate()

	case key.Matches(msg, m.keys.Edit):
		if n, ok := m.selected(); ok {
			return m, m.startEdit(n)
		}

	case key.Matches(msg, m.keys.Delete):
		if n, ok := m.selected(); ok {
			return m, m.startDelete(n)
		}

	case key.Matches(msg, m.keys.Share):
		if n, ok := m.selected(); ok {
			return m, m.share(n)
		}

	case key.Matches(msg, m.keys.ClearFilters):
		m.query = ""
		m.search.Reset()
		m.applySearch()
	}
	return m, nil
}

func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.mode = modeList
		m.search.Blur()
		return m, nil
	case "esc":
		m.mode = modeList
		m.search.Reset()
		m.search.Blur()
		m.query = ""
		m.applySearch()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.query = m.search.Value()
	m.applySearch()
	return m, cmd
}

// StartCreate opens the form for a new note.
func (m *Model) StartCreate() tea.Cmd {
	m.editing = model.Note{}
	m.fb.reset()
	return m.startForm(modeNoteForm, m.buildNoteForm())
}

func (m *Model) startEdit(n model.Note) tea.Cmd {
	m.editing = n
	m.fb.fromNote(n)
	return m.startForm(modeNoteForm, m.buildNoteForm())
}

func (m *Model) startDelete(n model.Note) tea.Cmd {
	m.editing = n
	m.fb.confirm = false
	return m.startForm(modeConfirmDelete, m.buildConfirmForm(fmt.Sprintf("Delete note %q?", n.Title)))
}

func (m *Model) startForm(md mode, f *huh.Form) tea.Cmd {
	m.mode = md
	m.form = f
	return f.Init()
}

// closeForm returns to the detail view when a note is open.
func (m *Model) closeForm() {
	m.form = nil
	if _, ok := m.openNote(); ok && m.openID != "" {
		m.mode = modeDetail
		m.refreshViewport()
		return
	}
	m.mode = modeList
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		m.closeForm()
		return m, nil
	}
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		md := m.mode
		m.closeForm()
		return m, m.submit(md)
	case huh.StateAborted:
		m.closeForm()
		return m, nil
	}
	return m, cmd
}

func (m Model) submit(md mode) tea.Cmd {
	switch md {
	case modeNoteForm:
		return m.saveNote(m.fb.toNote(m.editing))
	case modeAttachForm:
		return m.attach(m.openID, m.fb.attachKind, m.fb.attachValue)
	case modeConfirmDelete:
		if m.fb.confirm {
			return m.deleteNote(m.editing)
		}
	}
	return nil
}

// Hints returns the status bar hints for the current mode.
func (m Model) Hints() string {
	switch m.mode {
	case modeSearch:
		return "enter keep | esc clear"
	case modeDetail:
		return "esc back | e edit | a add link | i add image | j/k select | d remove | s share"
	case modeNoteForm, modeAttachForm, modeConfirmDelete:
		return "tab next | esc cancel"
	}
	return "enter open | n new | e edit | d delete | s share | / search"
}

// View renders the notes screen.
func (m Model) View() string {
	switch m.mode {
	case modeNoteForm, modeAttachForm, modeConfirmDelete:
		if m.form == nil {
			return ""
		}
		return lipgloss.NewStyle().Padding(1, 2).Render(m.formTitle() + "\n" + m.form.View())
	case modeDetail:
		return m.viewport.View()
	}
	return m.viewList()
}

func (m Model) formTitle() string {
	switch m.mode {
	case modeNoteForm:
		if m.editing.ID != "" {
			return theme.TitleStyle.Render("Edit Note")
		}
		return theme.TitleStyle.Render("New Note")
	case modeAttachForm:
		return theme.TitleStyle.Render("Attach to " + m.editing.Title)
	}
	return ""
}

func (m Model) viewList() string {
	var b strings.Builder

	if m.mode == modeSearch {
		b.WriteString(m.search.View())
		b.WriteString("\n\n")
	} else {
		b.WriteString(theme.TitleStyle.Render("Notes"))
		b.WriteString("\n")
	}

	if len(m.visible) == 0 {
		if len(m.notes) == 0 {
			b.WriteString(theme.EmptyStyle.Render("No notes yet. Press 'n' to write one."))
		} else {
			b.WriteString(theme.EmptyStyle.Render("No notes match your search."))
		}
	}

	summaryWidth := max(m.width-30, 20)
	for i, n := range m.visible {
		line := n.Title
		if c, ok := m.categories[n.CategoryID]; ok {
			line += " " + theme.CategoryStyle(c.Color).Render("● "+c.Name)
		}
		if len(n.Tags) > 0 {
			line += " " + theme.TagStyle.Render("#"+strings.Join(n.Tags, " #"))
		}
		line += "\n  " + theme.HelpStyle.Render(htmltext.Summary(n.Content, summaryWidth)+"  · "+relativeTime(n.UpdatedAt))

		if i == m.selectedIdx {
			b.WriteString(theme.SelectedItemStyle.Render(line))
		} else {
			b.WriteString(theme.ListItemStyle.Render(line))
		}
		b.WriteString("\n")
	}

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Render(b.String())
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.search.Width = width - 4
	m.viewport.Width = width
	m.viewport.Height = max(height, 1)
	if m.form != nil {
		m.form = m.form.WithWidth(ui.FormWidth(width)).WithHeight(ui.FormHeight(height))
	}
	m.refreshViewport()
}

// applySearch recomputes the visible notes. A query starting with '#'
// matches tags exactly.
func (m *Model) applySearch() {
	q := strings.TrimSpace(m.query)
	if tag, ok := strings.CutPrefix(q, "#"); ok && tag != "" {
		m.visible = query.NotesByTag(m.notes, tag)
	} else {
		m.visible = query.SearchNotes(m.notes, q)
	}
	m.selectedIdx = min(m.selectedIdx, max(len(m.visible)-1, 0))
}

func (m Model) selected() (model.Note, bool) {
	if m.selectedIdx < 0 || m.selectedIdx >= len(m.visible) {
		return model.Note{}, false
	}
	return m.visible[m.selectedIdx], true
}

func (m Model) openNote() (model.Note, bool) {
	for _, n := range m.notes {
		if n.ID == m.openID {
			return n, true
		}
	}
	return model.Note{}, false
}

func wrap(i, n int) int {
	if n == 0 {
		return 0
	}
	return (i%n + n) % n
}

// relativeTime returns a short human-friendly age.
func relativeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Format("Jan 02 2006")
	}
}

func (m Model) saveNote(n model.Note) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		if n.ID == "" {
			added, err := s.AddNote(n)
			if err != nil {
				return resultMsg{err: err}
			}
			return resultMsg{notice: fmt.Sprintf("Saved %q", added.Title)}
		}
		_, err := s.UpdateNote(n)
		return resultMsg{err: err}
	}
}

func (m Model) deleteNote(n model.Note) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		if err := s.DeleteNote(n.ID); err != nil {
			return resultMsg{err: err}
		}
		return resultMsg{notice: fmt.Sprintf("Deleted %q", n.Title)}
	}
}

func (m Model) share(n model.Note) tea.Cmd {
	dir := m.shareDir
	return func() tea.Msg {
		path, err := share.WriteNoteFile(dir, n, share.Options{})
		if err != nil {
			return resultMsg{err: err}
		}
		return resultMsg{notice: "Shared to " + path}
	}
}
