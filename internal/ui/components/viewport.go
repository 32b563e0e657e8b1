// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/ptutor-tui/internal/model"
	"github.com/jeranaias/ptutor-tui/internal/ui/styles"
)

// =============================================================================
// CHAT VIEWPORT COMPONENT - Scrollable thread with indicators
// =============================================================================

// ChatViewport shows a module's thread oldest first, optionally followed
// by the thinking placeholder. It sticks to the bottom until the user
// scrolls up.
type ChatViewport struct {
	viewport   viewport.Model
	messages   []model.Message
	moduleName string
	thinking   bool
	width      int
	height     int
	autoScroll bool
	theme      *styles.Theme
	md         *Markdown
}

// NewChatViewport creates an empty viewport.
func NewChatViewport(theme *styles.Theme, md *Markdown) *ChatViewport {
	vp := viewport.New(80, 20)
	vp.Style = lipgloss.NewStyle()
	return &ChatViewport{
		viewport:   vp,
		width:      80,
		height:     20,
		autoScroll: true,
		theme:      theme,
		md:         md,
	}
}

// SetSize updates the viewport dimensions.
func (cv *ChatViewport) SetSize(width, height int) {
	cv.width = width
	cv.height = height
	cv.viewport.Width = width
	cv.viewport.Height = max(height-1, 1) // one line for the indicator
	cv.refresh()
}

// SetMessages replaces the thread. moduleName labels the replies.
func (cv *ChatViewport) SetMessages(messages []model.Message, moduleName string) {
	cv.messages = messages
	cv.moduleName = moduleName
	cv.refresh()
}

// Messages returns the thread currently shown.
func (cv *ChatViewport) Messages() []model.Message { return cv.messages }

// SetThinking shows or hides the placeholder at the end of the thread.
func (cv *ChatViewport) SetThinking(on bool) {
	cv.thinking = on
	cv.refresh()
}

// Thinking reports whether the placeholder is shown.
func (cv *ChatViewport) Thinking() bool { return cv.thinking }

func (cv *ChatViewport) refresh() {
	parts := make([]string, 0, len(cv.messages)+1)
	for _, m := range cv.messages {
		b := NewMessageBubble(cv.theme, cv.md, m, cv.moduleName)
		b.SetWidth(cv.width)
		parts = append(parts, b.View())
	}
	if cv.thinking {
		b := NewThinkingBubble(cv.theme, cv.moduleName)
		b.SetWidth(cv.width)
		parts = append(parts, b.View())
	}
	cv.viewport.SetContent(strings.Join(parts, "\n\n"))
	if cv.autoScroll {
		cv.viewport.GotoBottom()
	}
}

// ScrollToBottom jumps to the newest message and re-enables sticking.
func (cv *ChatViewport) ScrollToBottom() {
	cv.viewport.GotoBottom()
	cv.autoScroll = true
}

// AtBottom reports whether the newest message is visible.
func (cv *ChatViewport) AtBottom() bool { return cv.viewport.AtBottom() }

// AtTop reports whether the oldest message is visible.
func (cv *ChatViewport) AtTop() bool { return cv.viewport.AtTop() }

// Update handles scrolling keys and the mouse wheel.
func (cv *ChatViewport) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "ctrl+p":
			cv.viewport.LineUp(1)
		case "down", "ctrl+n":
			cv.viewport.LineDown(1)
		case "pgup":
			cv.viewport.HalfViewUp()
		case "pgdown":
			cv.viewport.HalfViewDown()
		case "home":
			cv.viewport.GotoTop()
		case "end":
			cv.viewport.GotoBottom()
		default:
			return nil
		}
		cv.autoScroll = cv.viewport.AtBottom()
		return nil
	case tea.MouseMsg:
		var cmd tea.Cmd
		cv.viewport, cmd = cv.viewport.Update(msg)
		cv.autoScroll = cv.viewport.AtBottom()
		return cmd
	}
	return nil
}

// View renders the thread with a scroll hint below it.
func (cv *ChatViewport) View() string {
	hint := ""
	if !cv.viewport.AtBottom() {
		hint = cv.theme.Muted.Render("v more below (end to jump)")
	} else if !cv.viewport.AtTop() {
		hint = cv.theme.Muted.Render("^ scroll up for earlier messages")
	}
	return cv.viewport.View() + "\n" + lipgloss.PlaceHorizontal(cv.width, lipgloss.Center, hint)
}
