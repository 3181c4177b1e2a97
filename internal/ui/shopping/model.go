package shopping

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
)

type level int

const (
	levelLists level = iota
	levelItems
)

type mode int

const (
	modeBrowse mode = iota
	modeListForm
	modeItemForm
	modeConfirmDelete
)

type loadedMsg struct {
	lists []model.ShoppingList
	items []model.ShoppingItem
}

type resultMsg struct {
	err    error
	notice string
}

// Model is the shopping screen: lists with totals, and the items of the
// opened list.
type Model struct {
	level  level
	mode   mode
	store  *store.Store
	keys   *keys.KeyMap
	lists  []model.ShoppingList
	items  []model.ShoppingItem
	totals map[string]query.ListTotals

	listIdx int
	itemIdx int
	openID  string

	form        *huh.Form
	fb          *formBindings
	editingList string
	editingItem model.ShoppingItem
	deleting    model.ShoppingList

	width  int
	height int
}

// New creates the shopping screen.
func New(s *store.Store, k *keys.KeyMap, width, height int) Model {
	return Model{
		store:  s,
		keys:   k,
		fb:     &formBindings{},
		totals: map[string]query.ListTotals{},
		width:  width,
		height: height,
	}
}

// Init loads the initial snapshot.
func (m Model) Init() tea.Cmd {
	return m.Load()
}

// Load returns a command that reads lists and items from the store.
func (m Model) Load() tea.Cmd {
	s := m.store
	return func() tea.Msg {
		return loadedMsg{lists: s.ShoppingLists(), items: s.ShoppingItems()}
	}
}

// Capturing reports whether a form has keyboard focus.
func (m Model) Capturing() bool {
	return m.mode != modeBrowse
}

// Update handles messages for the shopping screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		m.lists = msg.lists
		m.items = msg.items
		m.totals = query.TotalsByList(msg.items)
		m.clampSelection()
		if m.level == levelItems && !m.hasList(m.openID) {
			// The open list was deleted elsewhere.
			m.level = levelLists
			m.openID = ""
			return m, ui.Notice("The list was deleted")
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
		if m.mode != modeBrowse {
			return m.updateForm(msg)
		}
		if m.level == levelItems {
			return m.handleItemKeys(msg)
		}
		return m.handleListKeys(msg)
	}

	if m.mode != modeBrowse {
		return m.updateForm(msg)
	}
	return m, nil
}

func (m Model) handleListKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Down):
		m.listIdx = wrap(m.listIdx+1, len(m.lists))
	case key.Matches(msg, m.keys.Up):
		m.listIdx = wrap(m.listIdx-1, len(m.lists))

	case key.Matches(msg, m.keys.Select):
		if list, ok := m.selectedList(); ok {
			m.level = levelItems
			m.openID = list.ID
			m.itemIdx = 0
		}

	case key.Matches(msg, m.keys.New):
		return m, m.StartCreate()

	case key.Matches(msg, m.keys.Edit):
		if list, ok := m.selectedList(); ok {
			m.editingList = list.ID
			m.fb.reset()
			m.fb.name = list.Name
			return m, m.startForm(modeListForm, m.buildListForm())
		}

	case key.Matches(msg, m.keys.Delete):
		if list, ok := m.selectedList(); ok {
			n := m.totals[list.ID].Items
			title := fmt.Sprintf("Delete list %q?", list.Name)
			desc := fmt.Sprintf("Its %d item(s) will be deleted too.", n)
			m.fb.confirm = false
			m.deleting = list
			return m, m.startForm(modeConfirmDelete, m.buildConfirmForm(title, desc))
		}
	}
	return m, nil
}

func (m Model) handleItemKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	items := m.openItems()
	switch {
	case key.Matches(msg, m.keys.Back):
		m.level = levelLists
		m.openID = ""

	case key.Matches(msg, m.keys.Down):
		m.itemIdx = wrap(m.itemIdx+1, len(items))
	case key.Matches(msg, m.keys.Up):
		m.itemIdx = wrap(m.itemIdx-1, len(items))

	case key.Matches(msg, m.keys.New):
		return m, m.StartCreate()

	case key.Matches(msg, m.keys.Edit), key.Matches(msg, m.keys.Select):
		if it, ok := m.selectedItem(); ok {
			m.editingItem = it
			m.fb.fromItem(it)
			return m, m.startForm(modeItemForm, m.buildItemForm())
		}

	case key.Matches(msg, m.keys.Toggle):
		if it, ok := m.selectedItem(); ok {
			return m, m.togglePurchased(it.ID)
		}

	case key.Matches(msg, m.keys.Delete):
		if it, ok := m.selectedItem(); ok {
			return m, m.deleteItem(it)
		}
	}
	return m, nil
}

// StartCreate opens the form for a new list, or a new item when a list
// is open.
func (m *Model) StartCreate() tea.Cmd {
	m.fb.reset()
	if m.level == levelItems {
		m.editingItem = model.ShoppingItem{ListID: m.openID}
		return m.startForm(modeItemForm, m.buildItemForm())
	}
	m.editingList = ""
	return m.startForm(modeListForm, m.buildListForm())
}

func (m *Model) startForm(md mode, f *huh.Form) tea.Cmd {
	m.mode = md
	m.form = f
	return f.Init()
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		m.mode = modeBrowse
		return m, nil
	}
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		md := m.mode
		m.mode = modeBrowse
		m.form = nil
		return m, m.submit(md)
	case huh.StateAborted:
		m.mode = modeBrowse
		m.form = nil
		return m, nil
	}
	return m, cmd
}

func (m Model) submit(md mode) tea.Cmd {
	switch md {
	case modeListForm:
		return m.saveList(m.editingList, m.fb.name)
	case modeItemForm:
		item, err := m.fb.toItem(m.editingItem)
		if err != nil {
			return ui.Alert(err)
		}
		return m.saveItem(item)
	case modeConfirmDelete:
		if !m.fb.confirm {
			return nil
		}
		if m.deleting.ID != "" {
			return m.deleteList(m.deleting)
		}
	}
	return nil
}

// Hints returns the status bar hints for the current state.
func (m Model) Hints() string {
	if m.mode != modeBrowse {
		return "enter next | esc cancel"
	}
	if m.level == levelItems {
		return "n add item | e edit | x purchased | d delete | esc lists"
	}
	return "enter open | n new list | e rename | d delete"
}

// View renders the shopping screen.
func (m Model) View() string {
	if m.mode != modeBrowse && m.form != nil {
		return lipgloss.NewStyle().Padding(1, 2).Render(m.formTitle() + "\n" + m.form.View())
	}
	if m.level == levelItems {
		return m.viewItems()
	}
	return m.viewLists()
}

func (m Model) formTitle() string {
	switch m.mode {
	case modeListForm:
		if m.editingList != "" {
			return theme.TitleStyle.Render("Rename List")
		}
		return theme.TitleStyle.Render("New Shopping List")
	case modeItemForm:
		if m.editingItem.ID != "" {
			return theme.TitleStyle.Render("Edit Item")
		}
		return theme.TitleStyle.Render("Add Item")
	}
	return ""
}

func (m Model) viewLists() string {
	var b strings.Builder
	b.WriteString(theme.TitleStyle.Render("Shopping Lists"))
	b.WriteString("\n")

	if len(m.lists) == 0 {
		b.WriteString(theme.EmptyStyle.Render("No shopping lists yet. Press 'n' to create one."))
	}
	for i, l := range m.lists {
		t := m.totals[l.ID]
		summary := fmt.Sprintf("%d/%d purchased", t.Purchased, t.Items)
		if t.Total > 0 {
			summary += "  " + theme.PriceStyle.Render(formatPrice(t.Total))
			if t.Remaining > 0 && t.Remaining < t.Total {
				summary += theme.HelpStyle.Render(" (" + formatPrice(t.Remaining) + " left)")
			}
		}
		line := fmt.Sprintf("🛒 %s  %s", l.Name, theme.HelpStyle.Render(summary))
		b.WriteString(renderRow(line, i == m.listIdx))
		b.WriteString("\n")
	}

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Render(b.String())
}

func (m Model) viewItems() string {
	list, _ := m.findList(m.openID)
	items := m.openItems()
	t := m.totals[m.openID]

	var b strings.Builder
	b.WriteString(theme.TitleStyle.Render(list.Name))
	b.WriteString("\n")

	if len(items) == 0 {
		b.WriteString(theme.EmptyStyle.Render("This list is empty. Press 'n' to add an item."))
		b.WriteString("\n")
	}
	for i, it := range items {
		b.WriteString(renderRow(itemLine(it), i == m.itemIdx))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(theme.SubtitleStyle.Render(
		fmt.Sprintf("Total %s, %d of %d purchased", formatPrice(t.Total), t.Purchased, t.Items),
	))

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Render(b.String())
}

func itemLine(it model.ShoppingItem) string {
	box := "☐"
	if it.Purchased {
		box = "☑"
	}
	qty := formatQuantity(it.Quantity)
	if it.Unit != "" {
		qty += " " + it.Unit
	}
	line := fmt.Sprintf("%s %s  %s", box, it.Name, theme.HelpStyle.Render(qty))
	if it.Price != nil {
		line += "  " + theme.PriceStyle.Render(formatPrice(it.LineTotal()))
	}
	if it.Purchased {
		line = theme.DimmedStyle.Render(line)
	}
	return line
}

func renderRow(line string, selected bool) string {
	if selected {
		return theme.SelectedItemStyle.Render(line)
	}
	return theme.ListItemStyle.Render(line)
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	if m.form != nil {
		m.form = m.form.WithWidth(ui.FormWidth(width)).WithHeight(ui.FormHeight(height))
	}
}

func (m Model) openItems() []model.ShoppingItem {
	return query.ItemsByList(m.items, m.openID)
}

func (m Model) selectedList() (model.ShoppingList, bool) {
	if m.listIdx < 0 || m.listIdx >= len(m.lists) {
		return model.ShoppingList{}, false
	}
	return m.lists[m.listIdx], true
}

func (m Model) selectedItem() (model.ShoppingItem, bool) {
	items := m.openItems()
	if m.itemIdx < 0 || m.itemIdx >= len(items) {
		return model.ShoppingItem{}, false
	}
	return items[m.itemIdx], true
}

func (m Model) findList(id string) (model.ShoppingList, bool) {
	for _, l := range m.lists {
		if l.ID == id {
			return l, true
		}
	}
	return model.ShoppingList{}, false
}

func (m Model) hasList(id string) bool {
	_, ok := m.findList(id)
	return ok
}

func (m *Model) clampSelection() {
	m.listIdx = min(m.listIdx, max(len(m.lists)-1, 0))
	m.itemIdx = min(m.itemIdx, max(len(m.openItems())-1, 0))
}

func wrap(i, n int) int {
	if n == 0 {
		return 0
	}
	return (i%n + n) % n
}

func (m Model) saveList(id, name string) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		if id == "" {
			list, err := s.AddShoppingList(name)
			if err != nil {
				return resultMsg{err: err}
			}
			return resultMsg{notice: fmt.Sprintf("Created list %q", list.Name)}
		}
		return resultMsg{err: s.RenameShoppingList(id, name)}
	}
}

func (m Model) deleteList(list model.ShoppingList) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		if err := s.DeleteShoppingList(list.ID); err != nil {
			return resultMsg{err: err}
		}
		return resultMsg{notice: fmt.Sprintf("Deleted list %q", list.Name)}
	}
}

func (m Model) saveItem(item model.ShoppingItem) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		var err error
		if item.ID == "" {
			_, err = s.AddShoppingItem(item)
		} else {
			_, err = s.UpdateShoppingItem(item)
		}
		return resultMsg{err: err}
	}
}

func (m Model) togglePurchased(id string) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		_, err := s.ToggleItemPurchased(id)
		return resultMsg{err: err}
	}
}

func (m Model) deleteItem(it model.ShoppingItem) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		if err := s.DeleteShoppingItem(it.ID); err != nil {
			return resultMsg{err: err}
		}
		return resultMsg{notice: fmt.Sprintf("Removed %q", it.Name)}
	}
}
