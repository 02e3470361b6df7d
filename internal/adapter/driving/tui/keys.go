package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the panel's key bindings.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Generate key.Binding
	Encrypt  key.Binding
	Copy     key.Binding
	Paste    key.Binding
	Sanitize key.Binding
	Quit     key.Binding

	// Bindings of the length prompt.
	Confirm key.Binding
	Cancel  key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Generate: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "generate"),
		),
		Encrypt: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "encrypt"),
		),
		Copy: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "copy envelope"),
		),
		Paste: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "import from clipboard"),
		),
		Sanitize: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sanitize clipboard"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// ShortHelp returns the bindings shown in the footer.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Generate, k.Encrypt, k.Copy, k.Paste, k.Sanitize, k.Quit}
}

// FullHelp returns the bindings grouped by purpose.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Generate, k.Encrypt, k.Copy, k.Paste},
		{k.Sanitize, k.Quit},
	}
}
