package todolist

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/twodo/internal/keys"
	"github.com/nhle/twodo/internal/model"
	"github.com/nhle/twodo/internal/query"
	"github.com/nhle/twodo/internal/store"
	"github.com/nhle/twodo/internal/theme"
	"github.com/nhle/twodo/internal/ui"
	"github.com/nhle/twodo/internal/ui/todoform"
)

// loadedMsg carries a fresh snapshot of todos and categories.
type loadedMsg struct {
	todos      []model.Todo
	categories []model.Category
}

// resultMsg is sent after a mutation.
type resultMsg struct {
	err    error
	notice string
}

type mode int

const (
	modeList mode = iota
	modeSearch
	modeForm
	modeConfirmDelete
)

// Model is the todo list screen.
type Model struct {
	mode        mode
	list        list.Model
	store       *store.Store
	keys        *keys.KeyMap
	ctx         *renderContext
	todos       []model.Todo
	categories  []model.Category
	filter      query.TodoFilter
	sortIndex   int
	searchInput textinput.Model
	form        todoform.Model
	confirmForm *huh.Form
	confirm     *bool
	deleting    model.Todo
	width       int
	height      int
}

// New creates the todo list screen.
func New(s *store.Store, k *keys.KeyMap, width, height int) Model {
	ctx := &renderContext{
		categories: map[string]model.Category{},
		now:        time.Now,
	}

	l := list.New([]list.Item{}, itemDelegate{ctx: ctx}, width, height-2)
	l.Title = "Todos"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle
	l.SetStatusBarItemName("todo", "todos")

	si := textinput.New()
	si.Placeholder = "search todos..."
	si.Prompt = "/ "
	si.Width = width - 4

	return Model{
		list:  l,
		store: s,
		keys:  k,
		ctx:   ctx,
		filter: query.TodoFilter{
			SortBy:   query.SortKeys[0],
			SortDesc: true,
		},
		searchInput: si,
		form:        todoform.New(width, height),
		confirm:     new(bool),
		width:       width,
		height:      height,
	}
}

// Init loads the initial snapshot.
func (m Model) Init() tea.Cmd {
	return m.Load()
}

// Load returns a command that reads todos and categories from the store.
func (m Model) Load() tea.Cmd {
	s := m.store
	return func() tea.Msg {
		return loadedMsg{todos: s.Todos(), categories: s.Categories()}
	}
}

// Capturing reports whether the screen is consuming raw key input, in
// which case global shortcuts must not fire.
func (m Model) Capturing() bool {
	return m.mode != modeList
}

// Update handles messages for the todo list screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		m.todos = msg.todos
		m.categories = msg.categories
		m.ctx.categories = make(map[string]model.Category, len(msg.categories))
		for _, c := range msg.categories {
			m.ctx.categories[c.ID] = c
		}
		m.form.SetCategories(msg.categories)
		return m, m.refreshItems()

	case resultMsg:
		if msg.err != nil {
			return m, ui.Alert(msg.err)
		}
		if msg.notice != "" {
			return m, ui.Notice("%s", msg.notice)
		}
		return m, nil

	case todoform.SubmittedMsg:
		m.mode = modeList
		return m, m.save(msg.Todo)

	case todoform.CancelMsg:
		m.mode = modeList
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeSearch:
			return m.handleSearchKeys(msg)
		case modeForm:
			return m.updateForm(msg)
		case modeConfirmDelete:
			return m.updateConfirm(msg)
		}
		return m.handleNormalKeys(msg)
	}

	switch m.mode {
	case modeForm:
		return m.updateForm(msg)
	case modeConfirmDelete:
		return m.updateConfirm(msg)
	case modeSearch:
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleSearchKeys processes key input while in search mode. The filter
// follows the input as the user types.
func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.mode = modeList
		m.searchInput.Blur()
		return m, nil

	case "esc":
		m.mode = modeList
		m.searchInput.Reset()
		m.searchInput.Blur()
		m.filter.Query = ""
		return m, m.refreshItems()
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.filter.Query = strings.TrimSpace(m.searchInput.Value())
	return m, tea.Batch(cmd, m.refreshItems())
}

// handleNormalKeys processes key input in normal (non-search) mode.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.New):
		return m, m.StartCreate()

	case key.Matches(msg, m.keys.Edit), key.Matches(msg, m.keys.Select):
		todo, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.mode = modeForm
		return m, m.form.StartEdit(todo)

	case key.Matches(msg, m.keys.Toggle):
		todo, ok := m.selected()
		if !ok {
			return m, nil
		}
		return m, m.toggle(todo.ID)

	case key.Matches(msg, m.keys.Delete):
		todo, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.deleting = todo
		*m.confirm = false
		m.confirmForm = m.buildConfirmForm(todo)
		m.mode = modeConfirmDelete
		return m, m.confirmForm.Init()

	case key.Matches(msg, m.keys.Search):
		m.mode = modeSearch
		m.searchInput.SetValue(m.filter.Query)
		return m, m.searchInput.Focus()

	case key.Matches(msg, m.keys.FilterHigh):
		return m, m.setPriority(model.PriorityHigh)

	case key.Matches(msg, m.keys.FilterMedium):
		return m, m.setPriority(model.PriorityMedium)

	case key.Matches(msg, m.keys.FilterLow):
		return m, m.setPriority(model.PriorityLow)

	case key.Matches(msg, m.keys.OverdueOnly):
		if m.filter.Due == query.DueOverdue {
			return m, m.SetDueFilter("")
		}
		return m, m.SetDueFilter(query.DueOverdue)

	case key.Matches(msg, m.keys.HideCompleted):
		if m.filter.Completed == nil {
			open := false
			m.filter.Completed = &open
		} else {
			m.filter.Completed = nil
		}
		return m, m.refreshItems()

	case key.Matches(msg, m.keys.ClearFilters):
		return m, m.ClearFilters()

	case key.Matches(msg, m.keys.CycleSort):
		m.sortIndex = (m.sortIndex + 1) % len(query.SortKeys)
		m.filter.SortBy = query.SortKeys[m.sortIndex]
		return m, m.refreshItems()

	case key.Matches(msg, m.keys.ReverseSort):
		m.filter.SortDesc = !m.filter.SortDesc
		return m, m.refreshItems()
	}

	// Delegate to the list for navigation keys (up/down/pgup/pgdn)
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// setPriority toggles the priority filter.
func (m *Model) setPriority(p model.Priority) tea.Cmd {
	if m.filter.Priority != nil && *m.filter.Priority == p {
		m.filter.Priority = nil
	} else {
		m.filter.Priority = &p
	}
	return m.refreshItems()
}

// StartCreate opens the form for a new todo.
func (m *Model) StartCreate() tea.Cmd {
	m.mode = modeForm
	return m.form.StartCreate()
}

// SetDueFilter restricts the list to a due bucket; "" removes it.
func (m *Model) SetDueFilter(bucket string) tea.Cmd {
	m.filter.Due = bucket
	return m.refreshItems()
}

// ClearFilters removes every filter but keeps the sort order.
func (m *Model) ClearFilters() tea.Cmd {
	m.filter = query.TodoFilter{SortBy: m.filter.SortBy, SortDesc: m.filter.SortDesc}
	m.searchInput.Reset()
	return m.refreshItems()
}

// FilterSummary describes the active filters for the status bar.
func (m Model) FilterSummary() string {
	var parts []string
	if m.filter.Priority != nil {
		parts = append(parts, "priority: "+string(*m.filter.Priority))
	}
	if m.filter.Due != "" {
		parts = append(parts, "due: "+m.filter.Due)
	}
	if m.filter.Completed != nil {
		parts = append(parts, "open only")
	}
	if m.filter.Query != "" {
		parts = append(parts, fmt.Sprintf("search: %q", m.filter.Query))
	}
	return strings.Join(parts, " | ")
}

// Hints returns the status bar hints for the current mode.
func (m Model) Hints() string {
	switch m.mode {
	case modeSearch:
		return "enter keep | esc clear"
	case modeForm:
		return "enter next | esc cancel"
	case modeConfirmDelete:
		return "←/→ choose | enter confirm"
	}
	if summary := m.FilterSummary(); summary != "" {
		return summary + " | 0 clear"
	}
	dir := "↑"
	if m.filter.SortDesc {
		dir = "↓"
	}
	return fmt.Sprintf("n new | x done | d delete | / search | 1-3 priority | o overdue | tab sort: %s%s", m.filter.SortBy, dir)
}

// View renders the todo list screen.
func (m Model) View() string {
	switch m.mode {
	case modeForm:
		return m.form.View()
	case modeConfirmDelete:
		return lipgloss.NewStyle().Padding(1, 2).Render(m.confirmForm.View())
	}

	header := m.renderCounts()
	if m.mode == modeSearch {
		header = lipgloss.NewStyle().Padding(0, 1).Render(m.searchInput.View())
	}

	if len(m.list.Items()) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, header, m.renderEmptyState())
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, m.list.View())
}

func (m Model) renderCounts() string {
	c := query.CountTodos(m.todos, m.ctx.now())
	text := fmt.Sprintf("%d todos, %d done", c.Total, c.Completed)
	if c.Overdue > 0 {
		text += ", " + theme.OverdueStyle.Render(fmt.Sprintf("%d overdue", c.Overdue))
	}
	return theme.HelpStyle.Padding(0, 1).Render(text)
}

// renderEmptyState shows guidance text when no todos are visible.
func (m Model) renderEmptyState() string {
	style := theme.EmptyStyle.
		Width(m.width).
		Height(max(m.height-1, 1)).
		Align(lipgloss.Center, lipgloss.Center)

	if len(m.todos) > 0 {
		return style.Render("No matching todos.\nPress 0 to clear filters.")
	}
	return style.Render("No todos yet.\n\nPress n to add one.")
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-1)
	m.searchInput.Width = width - 4
	m.form.SetSize(width, height)
}

// refreshItems re-applies the filter to the current snapshot.
func (m *Model) refreshItems() tea.Cmd {
	m.list.Styles.Title = theme.HeaderStyle
	visible := query.FilterTodos(m.todos, m.filter, m.ctx.now())
	items := make([]list.Item, len(visible))
	for i, todo := range visible {
		items[i] = todoItem{todo: todo}
	}
	return m.list.SetItems(items)
}

func (m Model) selected() (model.Todo, bool) {
	it, ok := m.list.SelectedItem().(todoItem)
	if !ok {
		return model.Todo{}, false
	}
	return it.todo, true
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.form, cmd = m.form.Update(msg)
	return m, cmd
}

func (m Model) buildConfirmForm(todo model.Todo) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %q?", todo.Title)).
				Affirmative("Delete").
				Negative("Cancel").
				Value(m.confirm),
		),
	).WithTheme(theme.Form()).WithKeyMap(ui.FormKeyMap()).WithWidth(ui.FormWidth(m.width))
}

func (m Model) updateConfirm(msg tea.Msg) (Model, tea.Cmd) {
	if m.confirmForm == nil {
		m.mode = modeList
		return m, nil
	}
	mdl, cmd := m.confirmForm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.confirmForm = f
	}
	switch m.confirmForm.State {
	case huh.StateCompleted:
		m.mode = modeList
		if *m.confirm {
			return m, m.delete(m.deleting)
		}
		return m, nil
	case huh.StateAborted:
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

func (m Model) save(todo model.Todo) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		if todo.ID == "" {
			added, err := s.AddTodo(todo)
			if err != nil {
				return resultMsg{err: err}
			}
			return resultMsg{notice: fmt.Sprintf("Added %q", added.Title)}
		}
		if _, err := s.UpdateTodo(todo); err != nil {
			return resultMsg{err: err}
		}
		return resultMsg{notice: "Todo saved"}
	}
}

func (m Model) toggle(id string) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		_, err := s.ToggleTodo(id)
		return resultMsg{err: err}
	}
}

func (m Model) delete(todo model.Todo) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		if err := s.DeleteTodo(todo.ID); err != nil {
			return resultMsg{err: err}
		}
		return resultMsg{notice: fmt.Sprintf("Deleted %q", todo.Title)}
	}
}
