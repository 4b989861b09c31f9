package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the browse-mode bindings.
type keyMap struct {
	Next    key.Binding
	Prev    key.Binding
	Press   key.Binding
	Back    key.Binding
	Command key.Binding
	Dismiss key.Binding
	Quit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Next: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "move"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab", "back"),
		),
		Press: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "press"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close/command"),
		),
		Command: key.NewBinding(
			key.WithKeys(":"),
			key.WithHelp(":", "command"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("enter", "esc", " "),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// helpBindings are shown in the footer, in order.
func (k keyMap) helpBindings() []key.Binding {
	return []key.Binding{k.Next, k.Press, k.Back, k.Quit}
}
