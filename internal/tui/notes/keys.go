package notes

import "github.com/charmbracelet/bubbles/key"

type browserKeyMap struct {
	openNote    key.Binding
	toggleFocus key.Binding
	quit        key.Binding
}

func newBrowserKeyMap() *browserKeyMap {
	return &browserKeyMap{
		openNote: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open note"),
		),
		toggleFocus: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "focus preview"),
		),
		quit: key.NewBinding(
			key.WithKeys("esc", "ctrl+c"),
			key.WithHelp("esc", "quit"),
		),
	}
}
