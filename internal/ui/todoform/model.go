package todoform

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/twodo/internal/model"
	"github.com/nhle/twodo/internal/theme"
	"github.com/nhle/twodo/internal/ui"
	"github.com/nhle/twodo/internal/validate"
)

// SubmittedMsg is dispatched when the form is completed. Todo.ID is empty
// for a new todo.
type SubmittedMsg struct {
	Todo model.Todo
}

// CancelMsg is dispatched when the user cancels the form.
type CancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	title       string
	description string
	priority    model.Priority
	dueDate     string
	categoryID  string
}

// Model is the Bubble Tea model for the todo create/edit form.
type Model struct {
	form       *huh.Form
	fb         *formBindings
	editing    model.Todo
	editMode   bool
	categories []model.Category
	width      int
	height     int
}

// New creates a new todo form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{priority: model.PriorityMedium},
		width:  width,
		height: height,
	}
}

// SetCategories sets the options for the category selector.
func (m *Model) SetCategories(categories []model.Category) {
	m.categories = categories
}

// Active reports whether a form is being shown.
func (m Model) Active() bool {
	return m.form != nil
}

// StartCreate initializes the form for creating a new todo.
func (m *Model) StartCreate() tea.Cmd {
	m.editMode = false
	m.editing = model.Todo{}
	*m.fb = formBindings{priority: model.PriorityMedium}
	m.form = m.buildForm()
	return m.form.Init()
}

// StartEdit initializes the form for editing an existing todo.
func (m *Model) StartEdit(todo model.Todo) tea.Cmd {
	m.editMode = true
	m.editing = todo
	*m.fb = formBindings{
		title:       todo.Title,
		description: todo.Description,
		priority:    todo.Priority,
		categoryID:  todo.CategoryID,
	}
	if todo.DueDate != nil {
		m.fb.dueDate = todo.DueDate.Local().Format(validate.DateLayout)
	}
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the todo form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.form = nil
		return m, m.handleSubmit()
	case huh.StateAborted:
		m.form = nil
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the todo form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleText := "New Todo"
	if m.editMode {
		titleText = "Edit Todo"
	}

	content := theme.TitleStyle.Render(titleText) + "\n" + m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	if m.form != nil {
		m.form = m.form.WithWidth(ui.FormWidth(width)).WithHeight(ui.FormHeight(height))
	}
}

func (m *Model) buildForm() *huh.Form {
	fields := []huh.Field{
		huh.NewInput().
			Title("Title").
			Placeholder("What needs to be done?").
			Value(&m.fb.title).
			Validate(validate.Required("Title")),
		huh.NewText().
			Title("Description").
			Placeholder("Optional details...").
			Value(&m.fb.description),
		huh.NewSelect[model.Priority]().
			Title("Priority").
			Options(
				huh.NewOption("High", model.PriorityHigh),
				huh.NewOption("Medium", model.PriorityMedium),
				huh.NewOption("Low", model.PriorityLow),
			).
			Value(&m.fb.priority),
		huh.NewInput().
			Title("Due Date").
			Placeholder("YYYY-MM-DD (optional)").
			Value(&m.fb.dueDate).
			Validate(validate.OptionalDate),
	}
	if field := m.categoryField(); field != nil {
		fields = append(fields, field)
	}

	return huh.NewForm(
		huh.NewGroup(fields...),
	).
		WithTheme(theme.Form()).
		WithKeyMap(ui.FormKeyMap()).
		WithWidth(ui.FormWidth(m.width)).
		WithHeight(ui.FormHeight(m.height))
}

func (m *Model) categoryField() huh.Field {
	if len(m.categories) == 0 {
		return nil
	}
	opts := []huh.Option[string]{
		huh.NewOption("None", ""),
	}
	for _, c := range m.categories {
		opts = append(opts, huh.NewOption(c.Name, c.ID))
	}
	return huh.NewSelect[string]().
		Title("Category").
		Options(opts...).
		Value(&m.fb.categoryID)
}

// handleSubmit builds the todo from the bindings. Fields the form does
// not show are carried over from the todo being edited.
func (m Model) handleSubmit() tea.Cmd {
	todo := m.editing
	todo.Title = m.fb.title
	todo.Description = m.fb.description
	todo.Priority = m.fb.priority
	todo.CategoryID = m.fb.categoryID

	due, err := validate.ParseDueDate(m.fb.dueDate)
	if err != nil {
		return ui.Alert(err)
	}
	todo.DueDate = due

	return func() tea.Msg { return SubmittedMsg{Todo: todo} }
}
