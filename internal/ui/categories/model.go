package categories

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/twodo/internal/keys"
	"github.com/nhle/twodo/internal/model"
	"github.com/nhle/twodo/internal/query"
	"github.com/nhle/twodo/internal/store"
	"github.com/nhle/twodo/internal/theme"
	"github.com/nhle/twodo/internal/ui"
	"github.com/nhle/twodo/internal/validate"
)

// DefaultColor is offered for new categories.
const DefaultColor = "#4CAF50"

type mode int

const (
	modeList mode = iota
	modeForm
	modeConfirmDelete
)

type formBindings struct {
	name    string
	color   string
	confirm bool
}

// usage counts the todos and notes filed under a category.
type usage struct {
	todos int
	notes int
}

type loadedMsg struct {
	categories []model.Category
	usage      map[string]usage
}

type resultMsg struct {
	err    error
	notice string
}

// Model is the Bubble Tea model for category management.
type Model struct {
	mode        mode
	store       *store.Store
	keys        *keys.KeyMap
	categories  []model.Category
	usage       map[string]usage
	selectedIdx int
	editingID   string
	form        *huh.Form
	fb          *formBindings
	width       int
	height      int
}

// New creates a new category manager model.
func New(s *store.Store, k *keys.KeyMap, width, height int) Model {
	return Model{
		store:  s,
		keys:   k,
		fb:     &formBindings{},
		usage:  map[string]usage{},
		width:  width,
		height: height,
	}
}

// Init loads categories from the store.
func (m Model) Init() tea.Cmd {
	return m.Load()
}

// Load returns a command that reads categories and their usage.
func (m Model) Load() tea.Cmd {
	s := m.store
	return func() tea.Msg {
		cats := s.Categories()
		todos := s.Todos()
		notes := s.Notes()

		u := make(map[string]usage, len(cats))
		for _, c := range cats {
			u[c.ID] = usage{
				todos: len(query.TodosByCategory(todos, c.ID)),
				notes: len(query.NotesByCategory(notes, c.ID)),
			}
		}
		return loadedMsg{categories: cats, usage: u}
	}
}

// Capturing reports whether a form has keyboard focus.
func (m Model) Capturing() bool {
	return m.mode != modeList
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		m.categories = msg.categories
		m.usage = msg.usage
		if m.selectedIdx >= len(m.categories) && m.selectedIdx > 0 {
			m.selectedIdx = len(m.categories) - 1
		}
		return m, nil

	case resultMsg:
		if msg.err != nil {
			return m, ui.Alert(msg.err)
		}
		return m, ui.Notice("%s", msg.notice)

	case tea.KeyMsg:
		if m.mode == modeList {
			return m.handleListKey(msg)
		}
	}

	if m.mode != modeList {
		return m.updateForm(msg)
	}
	return m, nil
}

func (m Model) handleListKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Down):
		if len(m.categories) > 0 {
			m.selectedIdx = (m.selectedIdx + 1) % len(m.categories)
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if len(m.categories) > 0 {
			m.selectedIdx--
			if m.selectedIdx < 0 {
				m.selectedIdx = len(m.categories) - 1
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.New):
		return m, m.StartCreate()

	case key.Matches(msg, m.keys.Edit), key.Matches(msg, m.keys.Select):
		c, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.editingID = c.ID
		m.fb.name = c.Name
		m.fb.color = c.Color
		m.form = m.buildForm()
		m.mode = modeForm
		return m, m.form.Init()

	case key.Matches(msg, m.keys.Delete):
		c, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.fb.confirm = false
		m.form = m.buildConfirmForm(c)
		m.mode = modeConfirmDelete
		return m, m.form.Init()
	}
	return m, nil
}

// StartCreate opens the form for a new category.
func (m *Model) StartCreate() tea.Cmd {
	m.editingID = ""
	m.fb.name = ""
	m.fb.color = DefaultColor
	m.form = m.buildForm()
	m.mode = modeForm
	return m.form.Init()
}

func (m Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Placeholder("Category name").
				Value(&m.fb.name).
				Validate(validate.Required("Name")),
			huh.NewInput().
				Title("Color").
				Placeholder(DefaultColor).
				Value(&m.fb.color).
				Validate(validate.OptionalColor),
		),
	).
		WithTheme(theme.Form()).
		WithKeyMap(ui.FormKeyMap()).
		WithWidth(ui.FormWidth(m.width)).
		WithHeight(ui.FormHeight(m.height))
}

func (m Model) buildConfirmForm(c model.Category) *huh.Form {
	u := m.usage[c.ID]
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete category %q?", c.Name)).
				Description(fmt.Sprintf("%d todo(s) and %d note(s) will become uncategorized.", u.todos, u.notes)).
				Affirmative("Yes, delete").
				Negative("Cancel").
				Value(&m.fb.confirm),
		),
	).
		WithTheme(theme.Form()).
		WithKeyMap(ui.FormKeyMap()).
		WithWidth(ui.FormWidth(m.width))
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		m.mode = modeList
		return m, nil
	}
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		md := m.mode
		m.mode = modeList
		m.form = nil
		if md == modeConfirmDelete {
			if c, ok := m.selected(); ok && m.fb.confirm {
				return m, m.deleteCategory(c)
			}
			return m, nil
		}
		return m, m.saveCategory()
	case huh.StateAborted:
		m.mode = modeList
		m.form = nil
		return m, nil
	}
	return m, cmd
}

// Hints returns the status bar hints.
func (m Model) Hints() string {
	if m.mode != modeList {
		return "enter next | esc cancel"
	}
	return "n new | e edit | d delete"
}

// View renders the category manager.
func (m Model) View() string {
	if m.mode != modeList && m.form != nil {
		return lipgloss.NewStyle().Padding(1, 2).Render(m.form.View())
	}
	return m.viewList()
}

func (m Model) viewList() string {
	var b strings.Builder

	b.WriteString(theme.TitleStyle.Render("Categories"))
	b.WriteString("\n")

	if len(m.categories) == 0 {
		b.WriteString(theme.EmptyStyle.Render("No categories yet. Press 'n' to create one."))
	}
	for i, c := range m.categories {
		u := m.usage[c.ID]
		label := fmt.Sprintf("%s %s  %s",
			theme.CategoryStyle(c.Color).Render("●"),
			c.Name,
			theme.HelpStyle.Render(fmt.Sprintf("%d todos, %d notes", u.todos, u.notes)),
		)

		if i == m.selectedIdx {
			b.WriteString(theme.SelectedItemStyle.Render(label))
		} else {
			b.WriteString(theme.ListItemStyle.Render(label))
		}
		b.WriteString("\n")
	}

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Render(b.String())
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) selected() (model.Category, bool) {
	if m.selectedIdx < 0 || m.selectedIdx >= len(m.categories) {
		return model.Category{}, false
	}
	return m.categories[m.selectedIdx], true
}

func (m Model) saveCategory() tea.Cmd {
	s := m.store
	c := model.Category{ID: m.editingID, Name: m.fb.name, Color: m.fb.color}
	return func() tea.Msg {
		if c.ID == "" {
			added, err := s.AddCategory(c)
			if err != nil {
				return resultMsg{err: err}
			}
			return resultMsg{notice: fmt.Sprintf("Created %q", added.Name)}
		}
		if _, err := s.UpdateCategory(c); err != nil {
			return resultMsg{err: err}
		}
		return resultMsg{notice: "Category saved"}
	}
}

func (m Model) deleteCategory(c model.Category) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		if err := s.DeleteCategory(c.ID); err != nil {
			return resultMsg{err: err}
		}
		return resultMsg{notice: fmt.Sprintf("Deleted %q", c.Name)}
	}
}
