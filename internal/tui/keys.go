package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up          key.Binding
	Down        key.Binding
	Add         key.Binding
	Submit      key.Binding
	Cancel      key.Binding
	Toggle      key.Binding
	ToggleAll   key.Binding
	Edit        key.Binding
	Remove      key.Binding
	Clear       key.Binding
	All         key.Binding
	Active      key.Binding
	Completed   key.Binding
	NextFilter  key.Binding
	Refresh     key.Binding
	Quit        key.Binding
	ShowAllKeys key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Add:         key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		Submit:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
		Cancel:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Toggle:      key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle")),
		ToggleAll:   key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "toggle all")),
		Edit:        key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Remove:      key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "remove")),
		Clear:       key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear completed")),
		All:         key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "all")),
		Active:      key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "active")),
		Completed:   key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "completed")),
		NextFilter:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next filter")),
		Refresh:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		ShowAllKeys: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Add, k.Toggle, k.Edit, k.Remove, k.NextFilter, k.Quit, k.ShowAllKeys}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Add, k.Submit, k.Cancel},
		{k.Toggle, k.ToggleAll, k.Edit, k.Remove, k.Clear},
		{k.All, k.Active, k.Completed, k.NextFilter},
		{k.Refresh, k.Quit, k.ShowAllKeys},
	}
}
