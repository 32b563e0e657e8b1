// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/ptutor-tui/internal/model"
	"github.com/jeranaias/ptutor-tui/internal/ui/styles"
)

// =============================================================================
// MESSAGE BUBBLE COMPONENT
// =============================================================================

// ThinkingText is the placeholder shown while waiting for a reply.
const ThinkingText = "Thinking..."

// MessageBubble renders one message of a thread: author and timestamp on
// top, the text in a bordered box below. User messages hug the right edge.
type MessageBubble struct {
	Message  model.Message
	Author   string
	Width    int
	Thinking bool
	theme    *styles.Theme
	md       *Markdown
	now      func() time.Time
}

// NewMessageBubble creates a bubble for msg. moduleName labels replies.
// md may be nil, in which case replies render as plain text.
func NewMessageBubble(theme *styles.Theme, md *Markdown, msg model.Message, moduleName string) *MessageBubble {
	return &MessageBubble{
		Message: msg,
		Author:  msg.Role.Author(moduleName),
		Width:   80,
		theme:   theme,
		md:      md,
		now:     time.Now,
	}
}

// NewThinkingBubble creates the placeholder attributed to the module.
func NewThinkingBubble(theme *styles.Theme, moduleName string) *MessageBubble {
	b := NewMessageBubble(theme, nil, model.Message{Role: model.RoleAssistant}, moduleName)
	b.Thinking = true
	return b
}

// SetWidth sets the bubble width.
func (b *MessageBubble) SetWidth(width int) {
	b.Width = width
}

func (b *MessageBubble) contentWidth() int {
	return max(b.Width*3/4, 20)
}

// View renders the bubble.
func (b *MessageBubble) View() string {
	user := b.Message.Role == model.RoleUser

	var body string
	switch {
	case b.Thinking:
		body = b.theme.Thinking.Render(ThinkingText)
	case user:
		body = wordWrap(b.Message.Text(), b.contentWidth()-4)
	default:
		body = b.md.Render(b.Message.Text(), b.contentWidth()-4)
		if b.md == nil {
			body = wordWrap(body, b.contentWidth()-4)
		}
	}
	if strings.TrimSpace(body) == "" {
		body = "..."
	}

	box := b.theme.AssistantBubble
	authorStyle := b.theme.Author.Foreground(styles.AssistantBubbleBorder)
	if user {
		box = b.theme.UserBubble
		authorStyle = b.theme.Author.Foreground(styles.UserBubbleBorder)
	}
	bubble := box.Render(body)

	meta := authorStyle.Render(b.Author)
	if ts := FormatTime(b.Message.CreatedAt(), b.now()); ts != "" {
		meta += "  " + b.theme.Timestamp.Render(ts)
	}

	block := lipgloss.JoinVertical(lipgloss.Left, meta, bubble)
	if user {
		block = lipgloss.JoinVertical(lipgloss.Right, meta, bubble)
		return lipgloss.PlaceHorizontal(b.Width, lipgloss.Right, block)
	}
	return block
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// wordWrap wraps text to width display cells, keeping existing newlines.
func wordWrap(text string, width int) string {
	if width <= 0 {
		return text
	}

	var result strings.Builder
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			result.WriteString("\n")
		}
		words := strings.Fields(line)
		if len(words) == 0 {
			continue
		}

		current := words[0]
		for _, word := range words[1:] {
			if runewidth.StringWidth(current)+1+runewidth.StringWidth(word) <= width {
				current += " " + word
				continue
			}
			result.WriteString(current)
			result.WriteString("\n")
			current = word
		}
		result.WriteString(current)
	}
	return result.String()
}
