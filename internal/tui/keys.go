package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap lists the gallery bindings. It implements help.KeyMap.
type keyMap struct {
	Up         key.Binding
	Down       key.Binding
	Prev       key.Binding
	Next       key.Binding
	Home       key.Binding
	End        key.Binding
	ZoomIn     key.Binding
	ZoomOut    key.Binding
	Orient     key.Binding
	Convergent key.Binding
	Filter     key.Binding
	Activate   key.Binding
	Copy       key.Binding
	Help       key.Binding
	Quit       key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "scroll back"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "scroll on"),
	),
	Prev: key.NewBinding(
		key.WithKeys("left", "h", "shift+tab"),
		key.WithHelp("←/h", "previous image"),
	),
	Next: key.NewBinding(
		key.WithKeys("right", "l", "tab"),
		key.WithHelp("→/l", "next image"),
	),
	Home: key.NewBinding(
		key.WithKeys("home", "g"),
		key.WithHelp("g", "start"),
	),
	End: key.NewBinding(
		key.WithKeys("end", "G"),
		key.WithHelp("G", "end"),
	),
	ZoomIn: key.NewBinding(
		key.WithKeys("+", "="),
		key.WithHelp("+", "zoom in"),
	),
	ZoomOut: key.NewBinding(
		key.WithKeys("-", "_"),
		key.WithHelp("-", "zoom out"),
	),
	Orient: key.NewBinding(
		key.WithKeys("o"),
		key.WithHelp("o", "rows/columns"),
	),
	Convergent: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "convergent scroll"),
	),
	Filter: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "filter"),
	),
	Activate: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "select"),
	),
	Copy: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "copy path"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "keys"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// ShortHelp returns the bindings shown in the one-line help.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Down, k.ZoomIn, k.ZoomOut, k.Filter, k.Help, k.Quit}
}

// FullHelp returns the bindings shown when help is expanded.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Home, k.End},
		{k.Prev, k.Next, k.Activate, k.Copy},
		{k.ZoomIn, k.ZoomOut, k.Orient, k.Convergent},
		{k.Filter, k.Help, k.Quit},
	}
}
