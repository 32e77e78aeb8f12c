// Package keymap holds the TUI key bindings. The chat view takes free text,
// so no binding uses a bare letter that could be part of a question.
package keymap

import (
	"slices"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
)

var _ help.KeyMap = (*KeyMap)(nil)

type KeyMap struct {
	Quit    key.Binding
	Help    key.Binding
	Back    key.Binding
	Send    key.Binding
	Up      key.Binding
	Down    key.Binding
	Select  key.Binding
	Sources key.Binding // show or hide the passages behind the last answer
	Clear   key.Binding // drop the transcript
	Reload  key.Binding // documents list only
	PageUp  key.Binding
	PageDn  key.Binding
}

func bind(desc string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(keys[0], desc))
}

func DefaultKeyMap() *KeyMap {
	km := &KeyMap{
		Quit:    bind("quit", "ctrl+c"),
		Help:    bind("help", "?"),
		Back:    bind("back", "esc"),
		Send:    bind("send", "enter"),
		Up:      bind("up", "up", "k"),
		Down:    bind("down", "down", "j"),
		Select:  bind("select", "enter"),
		Sources: bind("sources", "ctrl+s"),
		Clear:   bind("clear", "ctrl+l"),
		Reload:  bind("reload", "r"),
		PageUp:  bind("page up", "pgup", "ctrl+u"),
		PageDn:  bind("page down", "pgdown", "ctrl+d"),
	}
	km.Up.SetHelp("↑/k", "up")
	km.Down.SetHelp("↓/j", "down")
	return km
}

// ShortHelp is shown in the status bar before the first answer.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Send, k.Back, k.Quit}
}

// ChatHelp replaces ShortHelp once there is an answer to inspect.
func (k *KeyMap) ChatHelp() []key.Binding {
	return []key.Binding{k.Send, k.Sources, k.Clear, k.Back}
}

// FullHelp is the help screen, one column per group: lists, chat, global.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select, k.Reload},
		{k.Send, k.Sources, k.Clear, k.PageDn},
		{k.Back, k.Help, k.Quit, k.PageUp},
	}
}

// Matches reports whether keyStr is one of binding's keys.
func Matches(keyStr string, binding key.Binding) bool {
	return slices.Contains(binding.Keys(), keyStr)
}
