// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/ptutor-tui/internal/ui/styles"
)

func answerOf(t *testing.T, cmd tea.Cmd) ConfirmResultMsg {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	res, ok := cmd().(ConfirmResultMsg)
	if !ok {
		t.Fatalf("command produced %T", cmd())
	}
	return res
}

func TestConfirmDialog_HiddenIgnoresKeys(t *testing.T) {
	d := NewConfirmDialog(styles.NewTheme("dark"))
	cmd, consumed := d.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil || consumed {
		t.Error("hidden dialog should not consume keys")
	}
	if d.View() != "" {
		t.Error("hidden dialog should render nothing")
	}
}

func TestConfirmDialog_EnterDefaultsToCancel(t *testing.T) {
	d := NewConfirmDialog(styles.NewTheme("dark"))
	d.Show("signout", "Sign Out", "Are you sure you want to sign out?", "")

	if !strings.Contains(d.View(), "Continue") {
		t.Error("default confirm label should be Continue")
	}
	cmd, consumed := d.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !consumed {
		t.Error("visible dialog should consume keys")
	}
	res := answerOf(t, cmd)
	if res.Confirmed || res.ID != "signout" {
		t.Errorf("result = %+v, want cancelled signout", res)
	}
	if d.IsVisible() {
		t.Error("dialog should close after answering")
	}
}

func TestConfirmDialog_TabThenEnterConfirms(t *testing.T) {
	d := NewConfirmDialog(styles.NewTheme("dark"))
	d.Show("del", "Delete Module", "Are you sure?", "Delete")

	d.Update(tea.KeyMsg{Type: tea.KeyTab})
	cmd, _ := d.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if res := answerOf(t, cmd); !res.Confirmed {
		t.Error("expected confirmation")
	}
}

func TestConfirmDialog_Shortcuts(t *testing.T) {
	d := NewConfirmDialog(styles.NewTheme("dark"))

	d.Show("a", "T", "M", "")
	cmd, _ := d.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'y'}})
	if !answerOf(t, cmd).Confirmed {
		t.Error("y should confirm")
	}

	d.Show("b", "T", "M", "")
	cmd, _ = d.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if answerOf(t, cmd).Confirmed {
		t.Error("esc should cancel")
	}
}
