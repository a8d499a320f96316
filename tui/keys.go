package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up             key.Binding
	Down           key.Binding
	Focus          key.Binding
	Toggle         key.Binding
	Edit           key.Binding
	Remove         key.Binding
	ToggleAll      key.Binding
	ClearCompleted key.Binding
	CycleFilter    key.Binding
	FilterAll      key.Binding
	FilterActive   key.Binding
	FilterDone     key.Binding
	Copy           key.Binding
	Help           key.Binding
	Quit           key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:             key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("↑/k", "up")),
		Down:           key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("↓/j", "down")),
		Focus:          key.NewBinding(key.WithKeys("tab", "i"), key.WithHelp("tab/i", "new todo")),
		Toggle:         key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space/x", "complete")),
		Edit:           key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e/enter", "edit")),
		Remove:         key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "remove")),
		ToggleAll:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "toggle all")),
		ClearCompleted: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear completed")),
		CycleFilter:    key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "next filter")),
		FilterAll:      key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "all")),
		FilterActive:   key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "active")),
		FilterDone:     key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "completed")),
		Copy:           key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy visible")),
		Help:           key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:           key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Focus, k.Toggle, k.Edit, k.Remove, k.CycleFilter, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Focus, k.Copy},
		{k.Toggle, k.Edit, k.Remove},
		{k.ToggleAll, k.ClearCompleted},
		{k.CycleFilter, k.FilterAll, k.FilterActive, k.FilterDone},
		{k.Help, k.Quit},
	}
}
