// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/ptutor-tui/internal/model"
	"github.com/jeranaias/ptutor-tui/internal/ui/styles"
)

func TestChatViewport_AuthorsAndThinking(t *testing.T) {
	cv := NewChatViewport(styles.NewTheme("dark"), nil)
	cv.SetSize(80, 30)

	at := time.Date(2024, 1, 1, 9, 0, 0, 0, time.Local)
	cv.SetMessages([]model.Message{
		model.NewTextMessage("1", model.RoleUser, "What is a vector?", at),
		model.NewTextMessage("2", model.RoleAssistant, "A quantity with direction.", at.Add(time.Minute)),
	}, "Physics 101")

	view := cv.View()
	for _, want := range []string{"You", "Physics 101", "What is a vector?", "direction."} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
	if strings.Contains(view, ThinkingText) {
		t.Error("placeholder shown before sending")
	}

	cv.SetThinking(true)
	if !strings.Contains(cv.View(), ThinkingText) {
		t.Error("placeholder missing")
	}
	cv.SetThinking(false)
	if strings.Contains(cv.View(), ThinkingText) {
		t.Error("placeholder not removed")
	}
}

func TestChatViewport_StaysAtBottom(t *testing.T) {
	cv := NewChatViewport(styles.NewTheme("dark"), nil)
	cv.SetSize(60, 6)

	var msgs []model.Message
	for i := 0; i < 20; i++ {
		msgs = append(msgs, model.NewTextMessage("", model.RoleUser, "line", time.Time{}))
	}
	cv.SetMessages(msgs, "M")
	if !cv.AtBottom() {
		t.Fatal("new thread should show the newest message")
	}

	cv.Update(tea.KeyMsg{Type: tea.KeyPgUp})
	if cv.AtBottom() {
		t.Fatal("pgup should scroll away from the bottom")
	}
	cv.SetMessages(append(msgs, model.NewTextMessage("", model.RoleUser, "new", time.Time{})), "M")
	if cv.AtBottom() {
		t.Error("refresh should not yank a reader back to the bottom")
	}
	cv.ScrollToBottom()
	if !cv.AtBottom() {
		t.Error("ScrollToBottom did not")
	}
}

func TestInputArea_Take(t *testing.T) {
	in := NewInputArea(styles.NewTheme("dark"))
	in.SetValue("   ")
	if got := in.Take(); got != "" {
		t.Errorf("Take() = %q for blank input", got)
	}

	in.SetValue("  cafe\u0301 ")
	if got := in.Take(); got != "caf\u00e9" {
		t.Errorf("Take() = %q, want NFC-normalized trimmed text", got)
	}
	if in.Value() != "" {
		t.Error("Take should clear the input")
	}
}
