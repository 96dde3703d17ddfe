package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the browser's key bindings. The help text of each binding
// feeds the help popup.
type keyMap struct {
	Up, Down        key.Binding
	Tab             key.Binding
	Enter           key.Binding
	Filter          key.Binding
	Layer           key.Binding
	Reveal          key.Binding
	Copy            key.Binding
	Add, Edit       key.Binding
	Delete          key.Binding
	Reload          key.Binding
	Help            key.Binding
	Escape          key.Binding
	Quit, ForceQuit key.Binding
}

func bind(help, desc string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(help, desc))
}

var keys = keyMap{
	Up:        bind("j/k or ↑/↓", "Navigate within current pane", "up", "k"),
	Down:      bind("", "", "down", "j"),
	Tab:       bind("Tab", "Switch focus between profiles and properties", "tab"),
	Enter:     bind("Enter", "View property detail", "enter"),
	Filter:    bind("/", "Filter properties by name or value", "/"),
	Layer:     bind("l", "Choose the layer edits are written to", "l"),
	Reveal:    bind("s", "Show or hide secure values", "s"),
	Copy:      bind("c", "Copy property value to clipboard", "c"),
	Add:       bind("a", "Add property to the selected profile", "a"),
	Edit:      bind("r", "Edit selected property", "r"),
	Delete:    bind("d", "Delete selected property (with confirmation)", "d"),
	Reload:    bind("Ctrl+R", "Reload all layers from disk", "ctrl+r"),
	Help:      bind("?", "Toggle this help", "?"),
	Escape:    bind("Esc", "Close popup / exit filter mode", "esc"),
	Quit:      bind("q / Ctrl+C", "Quit", "q"),
	ForceQuit: bind("", "", "ctrl+c"),
}

// helpBindings returns the bindings listed in the help popup, in display
// order. Bindings without help text are left out.
func (k keyMap) helpBindings() []key.Binding {
	all := []key.Binding{
		k.Up, k.Down, k.Tab, k.Layer, k.Filter, k.Enter, k.Reveal, k.Copy,
		k.Add, k.Edit, k.Delete, k.Reload, k.Help, k.Escape, k.Quit, k.ForceQuit,
	}
	shown := all[:0]
	for _, b := range all {
		if b.Help().Key != "" {
			shown = append(shown, b)
		}
	}
	return shown
}
