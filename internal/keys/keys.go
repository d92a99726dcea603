// Package keys contains keybinding definitions for the terminal picker.
package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the picker keybindings.
type KeyMap struct {
	// Navigation
	Up   key.Binding
	Down key.Binding

	// Actions
	Choose      key.Binding
	ChooseQuery key.Binding
	Complete    key.Binding

	// General
	Cancel key.Binding
}

// DefaultKeyMap returns the default keybindings. Letters are left to the
// filter input, so navigation uses arrows and emacs-style control keys.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "ctrl+p"),
			key.WithHelp("↑/ctrl+p", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "ctrl+n"),
			key.WithHelp("↓/ctrl+n", "move down"),
		),
		Choose: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "choose"),
		),
		ChooseQuery: key.NewBinding(
			key.WithKeys("alt+enter"),
			key.WithHelp("alt+enter", "use typed text"),
		),
		Complete: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "complete"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc", "ctrl+c"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// ShortHelp returns the bindings shown in the picker footer.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Choose, k.ChooseQuery, k.Complete, k.Cancel}
}

// FullHelp returns every binding, grouped.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Choose, k.ChooseQuery, k.Complete},
		{k.Cancel},
	}
}
