package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global keybindings for the application.
type KeyMap struct {
	// Navigation
	Down key.Binding
	Up   key.Binding

	// Tabs
	NextTab key.Binding
	PrevTab key.Binding

	// Selection
	Select key.Binding

	// Back / Quit
	Back key.Binding
	Quit key.Binding

	// Search
	Search key.Binding

	// Command palette
	Command key.Binding

	// Help toggle
	Help key.Binding

	// Item actions
	New    key.Binding
	Edit   key.Binding
	Delete key.Binding
	Toggle key.Binding
	Share  key.Binding

	// Todo filters
	FilterHigh    key.Binding
	FilterMedium  key.Binding
	FilterLow     key.Binding
	ClearFilters  key.Binding
	OverdueOnly   key.Binding
	HideCompleted key.Binding

	// Sort
	CycleSort   key.Binding
	ReverseSort key.Binding

	// Settings
	ToggleTheme key.Binding
	Export      key.Binding
	ClearAll    key.Binding
}

// DefaultKeyMap returns the default set of keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("l/→", "next tab"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("h/←", "prev tab"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Command: key.NewBinding(
			key.WithKeys(":"),
			key.WithHelp(":", "command palette"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("x", " "),
			key.WithHelp("x/space", "toggle done"),
		),
		Share: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "share note"),
		),
		FilterHigh: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "high priority"),
		),
		FilterMedium: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "medium priority"),
		),
		FilterLow: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "low priority"),
		),
		ClearFilters: key.NewBinding(
			key.WithKeys("0"),
			key.WithHelp("0", "clear filters"),
		),
		OverdueOnly: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "overdue only"),
		),
		HideCompleted: key.NewBinding(
			key.WithKeys("H"),
			key.WithHelp("H", "hide completed"),
		),
		CycleSort: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "cycle sort"),
		),
		ReverseSort: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "reverse sort"),
		),
		ToggleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "toggle theme"),
		),
		Export: key.NewBinding(
			key.WithKeys("E"),
			key.WithHelp("E", "export JSON"),
		),
		ClearAll: key.NewBinding(
			key.WithKeys("X"),
			key.WithHelp("X", "clear all data"),
		),
	}
}

// ShortHelp returns the most essential keybindings for the compact help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Up, k.Down, k.NextTab, k.New,
		k.Quit, k.Help, k.Search,
	}
}

// FullHelp returns all keybindings grouped by category for the expanded
// help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PrevTab, k.NextTab, k.Select, k.Back, k.Quit},
		{k.New, k.Edit, k.Delete, k.Toggle, k.Share},
		{k.Search, k.Command, k.Help, k.CycleSort, k.ReverseSort},
		{k.FilterHigh, k.FilterMedium, k.FilterLow, k.ClearFilters, k.OverdueOnly, k.HideCompleted},
		{k.ToggleTheme, k.Export, k.ClearAll},
	}
}
