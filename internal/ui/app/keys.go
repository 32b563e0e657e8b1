// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap holds the shell's own bindings. Screen bindings are appended to
// the help view at render time.
type KeyMap struct {
	Chats   key.Binding
	Tutors  key.Binding
	Modules key.Binding
	Usage   key.Binding
	SignOut key.Binding
	Help    key.Binding
	Quit    key.Binding

	screen []key.Binding
}

// DefaultKeyMap returns the shell bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Chats: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "chats"),
		),
		Tutors: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "tutors"),
		),
		Modules: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "modules"),
		),
		Usage: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "usage"),
		),
		SignOut: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("ctrl+o", "sign out"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return append(append([]key.Binding{}, k.screen...), k.Help, k.Quit)
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Chats, k.Tutors, k.Modules, k.Usage},
		k.screen,
		{k.SignOut, k.Help, k.Quit},
	}
}
