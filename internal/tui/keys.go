package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the board key bindings.
type keyMap struct {
	Add         key.Binding
	ToggleDone  key.Binding
	Search      key.Binding
	ResetView   key.Binding
	ZoomIn      key.Binding
	ZoomOut     key.Binding
	Deleted     key.Binding
	Back        key.Binding
	ConfirmWipe key.Binding
	Quit        key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Add: key.NewBinding(
			key.WithKeys("a", "n"),
			key.WithHelp("a", "add task"),
		),
		ToggleDone: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "completed view"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		ResetView: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reset view"),
		),
		ZoomIn: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "zoom in"),
		),
		ZoomOut: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "zoom out"),
		),
		Deleted: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "deleted tasks"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		ConfirmWipe: key.NewBinding(
			key.WithKeys("X"),
			key.WithHelp("X", "wipe board"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}
