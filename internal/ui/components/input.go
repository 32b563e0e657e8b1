// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/unicode/norm"

	"github.com/jeranaias/ptutor-tui/internal/ui/styles"
)

// =============================================================================
// INPUT AREA COMPONENT - Chat composer with character counter
// =============================================================================

// MaxMessageChars limits a single chat message.
const MaxMessageChars = 4096

// InputArea is the chat composer.
type InputArea struct {
	input    textinput.Model
	maxChars int
	width    int
	focused  bool
	theme    *styles.Theme
}

// NewInputArea creates a composer.
func NewInputArea(theme *styles.Theme) *InputArea {
	ti := textinput.New()
	ti.Placeholder = "Type your message..."
	ti.CharLimit = MaxMessageChars
	ti.Width = 70
	ti.Prompt = "> "
	ti.PromptStyle = lipgloss.NewStyle().Foreground(styles.Indigo).Bold(true)
	ti.TextStyle = lipgloss.NewStyle().Foreground(styles.TextPrimary)
	ti.PlaceholderStyle = lipgloss.NewStyle().Foreground(styles.TextMuted).Italic(true)
	ti.Cursor.Style = lipgloss.NewStyle().Foreground(styles.Indigo)

	return &InputArea{
		input:    ti,
		maxChars: MaxMessageChars,
		width:    80,
		theme:    theme,
	}
}

// Focus focuses the input.
func (i *InputArea) Focus() tea.Cmd {
	i.focused = true
	return i.input.Focus()
}

// Blur removes focus from the input.
func (i *InputArea) Blur() {
	i.focused = false
	i.input.Blur()
}

// Focused returns whether the input is focused.
func (i *InputArea) Focused() bool { return i.focused }

// SetWidth sets the composer width.
func (i *InputArea) SetWidth(width int) {
	i.width = width
	i.input.Width = max(width-10, 20)
}

// SetPlaceholder sets the placeholder text.
func (i *InputArea) SetPlaceholder(placeholder string) {
	i.input.Placeholder = placeholder
}

// Placeholder returns the placeholder text.
func (i *InputArea) Placeholder() string { return i.input.Placeholder }

// Value returns the current input value.
func (i *InputArea) Value() string { return i.input.Value() }

// SetValue sets the input value.
func (i *InputArea) SetValue(value string) { i.input.SetValue(value) }

// Reset clears the input.
func (i *InputArea) Reset() { i.input.Reset() }

// Take returns the trimmed, NFC-normalized text and clears the input.
// It returns "" and leaves the input alone when there is nothing to send.
func (i *InputArea) Take() string {
	text := strings.TrimSpace(norm.NFC.String(i.input.Value()))
	if text == "" {
		return ""
	}
	i.input.Reset()
	return text
}

// Update handles input updates.
func (i *InputArea) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	i.input, cmd = i.input.Update(msg)
	return cmd
}

// View renders the composer with the counter below it.
func (i *InputArea) View() string {
	border := styles.Overlay
	if i.focused {
		border = styles.Indigo
	}
	box := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Width(max(i.width-2, 10)).
		Render(i.input.View())

	counter := lipgloss.NewStyle().
		Width(max(i.width-2, 10)).
		Align(lipgloss.Right).
		Render(i.renderCharCounter(utf8.RuneCountInString(i.input.Value())))

	return lipgloss.JoinVertical(lipgloss.Left, box, counter)
}

// renderCharCounter renders "n / max chars", colored as the limit nears.
func (i *InputArea) renderCharCounter(count int) string {
	percent := 0.0
	if i.maxChars > 0 {
		percent = float64(count) / float64(i.maxChars) * 100
	}
	text := fmtNumber(count) + " / " + fmtNumber(i.maxChars) + " chars"

	switch {
	case percent >= 90:
		return lipgloss.NewStyle().Foreground(styles.Rose).Bold(true).Render(text + " [!]")
	case percent >= 75:
		return lipgloss.NewStyle().Foreground(styles.Amber).Render(text)
	default:
		return i.theme.Muted.Render(text)
	}
}
