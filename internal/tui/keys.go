package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	First     key.Binding
	Last      key.Binding
	Copy      key.Binding
	Quit      key.Binding
	PreviewUp key.Binding
	PreviewDn key.Binding
	PageUp    key.Binding
	PageDown  key.Binding
}

func binding(help, desc string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(help, desc))
}

var keys = keyMap{
	Up:        binding("up/C-k", "navigate", "up", "ctrl+k"),
	Down:      binding("dn/C-j", "navigate", "down", "ctrl+j"),
	First:     binding("home", "first", "home"),
	Last:      binding("end", "last", "end"),
	Copy:      binding("enter", "copy", "enter"),
	Quit:      binding("esc", "quit", "esc", "ctrl+c"),
	PreviewUp: binding("C-u", "preview", "ctrl+u"),
	PreviewDn: binding("C-d", "preview", "ctrl+d"),
	PageUp:    binding("pgup", "preview", "pgup"),
	PageDown:  binding("pgdn", "preview", "pgdown"),
}

// shortHelp renders the bindings shown in the status bar, merging those
// that share a description.
func (k keyMap) shortHelp() string {
	groups := [][]key.Binding{
		{k.Up, k.Down},
		{k.PreviewUp, k.PreviewDn},
		{k.Copy},
		{k.Quit},
	}
	parts := make([]string, 0, len(groups))
	for _, g := range groups {
		helps := make([]string, 0, len(g))
		for _, b := range g {
			helps = append(helps, b.Help().Key)
		}
		parts = append(parts, strings.Join(helps, "/")+" "+g[0].Help().Desc)
	}
	return strings.Join(parts, " | ")
}
