package tui

import "github.com/charmbracelet/bubbles/key"

type (
	navKeyMap struct{}

	inputKeyMap struct{}

	confirmKeyMap struct{}

	runningKeyMap struct{}
)

var keys = struct {
	up        key.Binding
	down      key.Binding
	enter     key.Binding
	finish    key.Binding
	tick      key.Binding
	yes       key.Binding
	no        key.Binding
	scroll    key.Binding
	openLog   key.Binding
	help      key.Binding
	quit      key.Binding
	forceQuit key.Binding
}{
	up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "move up"),
	),
	down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "move down"),
	),
	enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("↵", "edit/toggle/submit"),
	),
	finish: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("↵", "finish input"),
	),
	tick: key.NewBinding(
		key.WithKeys("x", " "),
		key.WithHelp("x", "tick/untick"),
	),
	yes: key.NewBinding(
		key.WithKeys("y", "Y"),
		key.WithHelp("y", "create"),
	),
	no: key.NewBinding(
		key.WithKeys("n", "N", "esc"),
		key.WithHelp("n", "cancel"),
	),
	scroll: key.NewBinding(
		key.WithKeys("pgup", "pgdown"),
		key.WithHelp("pgup/pgdn", "scroll log"),
	),
	openLog: key.NewBinding(
		key.WithKeys("o"),
		key.WithHelp("o", "open log file"),
	),
	help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "toggle help"),
	),
	quit: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "quit"),
	),
	forceQuit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
}

func (navKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{keys.help, keys.quit}
}

func (navKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{keys.up, keys.down, keys.enter, keys.tick},
		{keys.scroll, keys.openLog, keys.help, keys.quit},
	}
}

func (inputKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{keys.finish, keys.forceQuit}
}

func (inputKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{keys.finish, keys.forceQuit}}
}

func (confirmKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{keys.yes, keys.no}
}

func (confirmKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{keys.yes, keys.no}}
}

func (runningKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{keys.scroll, keys.forceQuit}
}

func (runningKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{keys.scroll, keys.forceQuit}}
}
