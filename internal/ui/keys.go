package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keybindings for nav mode.
type KeyMap struct {
	Up          key.Binding
	Down        key.Binding
	NextColumn  key.Binding
	PrevColumn  key.Binding
	CycleSort   key.Binding
	SortAsc     key.Binding
	SortDesc    key.Binding
	HideColumn  key.Binding
	ShowColumns key.Binding
	Search      key.Binding
	ClearSearch key.Binding
	NextPage    key.Binding
	PrevPage    key.Binding
	FirstPage   key.Binding
	LastPage    key.Binding
	JumpPage    key.Binding
	LongerPage  key.Binding
	ShorterPage key.Binding
	NextTable   key.Binding
	PrevTable   key.Binding
	Help        key.Binding
	Quit        key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		NextColumn: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next col"),
		),
		PrevColumn: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev col"),
		),
		CycleSort: key.NewBinding(
			key.WithKeys("enter", "o"),
			key.WithHelp("enter/o", "cycle sort"),
		),
		SortAsc: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sort asc"),
		),
		SortDesc: key.NewBinding(
			key.WithKeys("S"),
			key.WithHelp("S", "sort desc"),
		),
		HideColumn: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "hide col"),
		),
		ShowColumns: key.NewBinding(
			key.WithKeys("C"),
			key.WithHelp("C", "show cols"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		ClearSearch: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "clear search"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("n", "right", "pgdown"),
			key.WithHelp("n/→", "next page"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("p", "left", "pgup"),
			key.WithHelp("p/←", "prev page"),
		),
		FirstPage: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "first page"),
		),
		LastPage: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "last page"),
		),
		JumpPage: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
			key.WithHelp("1-9", "go to page"),
		),
		LongerPage: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+/-", "page length"),
		),
		ShorterPage: key.NewBinding(
			key.WithKeys("-", "_"),
			key.WithHelp("-", "shorter pages"),
		),
		NextTable: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t/T", "switch table"),
		),
		PrevTable: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "prev table"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap for the footer.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Down, k.NextColumn, k.CycleSort, k.Search, k.NextPage, k.PrevPage, k.LongerPage, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap for the help screen.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextColumn, k.PrevColumn},
		{k.CycleSort, k.SortAsc, k.SortDesc, k.HideColumn, k.ShowColumns},
		{k.Search, k.ClearSearch, k.NextTable},
		{k.NextPage, k.PrevPage, k.FirstPage, k.LastPage, k.JumpPage, k.LongerPage},
		{k.Help, k.Quit},
	}
}

// SearchKeyMap defines keybindings while the search box has focus.
type SearchKeyMap struct {
	Apply  key.Binding
	Cancel key.Binding
	Clear  key.Binding
}

// DefaultSearchKeyMap returns the default search keybindings.
func DefaultSearchKeyMap() SearchKeyMap {
	return SearchKeyMap{
		Apply: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "done"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
		Clear: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "clear"),
		),
	}
}
