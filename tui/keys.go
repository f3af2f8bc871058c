package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the viewer's keyboard shortcuts
type KeyMap struct {
	Quit     key.Binding
	Recenter key.Binding
	Fit      key.Binding
	Labels   key.Binding
}

var DefaultKeyMap = KeyMap{
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c", "q"),
		key.WithHelp("q", "quit"),
	),
	Recenter: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "release all"),
	),
	Fit: key.NewBinding(
		key.WithKeys("f"),
		key.WithHelp("f", "fit"),
	),
	Labels: key.NewBinding(
		key.WithKeys("l"),
		key.WithHelp("l", "labels"),
	),
}

func (k KeyMap) help() []key.Binding {
	return []key.Binding{k.Quit, k.Recenter, k.Fit, k.Labels}
}
