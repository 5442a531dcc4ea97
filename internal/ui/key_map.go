package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the wizard's [key.Binding] set. ShortHelp and FullHelp make it
// a help.KeyMap so the services screen footer can expand on "?".
type keyMap struct {
	up      key.Binding
	down    key.Binding
	enter   key.Binding
	back    key.Binding
	finish  key.Binding
	restart key.Binding
	more    key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		finish:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "finish setup")),
		restart: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "restart")),
		more:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
		quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp is the collapsed services screen footer.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.enter, k.finish, k.more, k.quit}
}

// FullHelp lists every binding once the footer is expanded.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter},
		{k.back, k.finish, k.restart},
		{k.more, k.quit},
	}
}
