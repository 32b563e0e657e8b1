// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/ptutor-tui/internal/ui/styles"
)

// ErrorTitle heads every error scaffold.
const ErrorTitle = "Something went wrong!"

// RetryHint tells the user how to re-run a failed fetch.
const RetryHint = "[r] Try again"

// NoData is shown by an empty table.
const NoData = "No data available"

// RenderErrorScaffold renders the failed-fetch view with a retry hint.
func RenderErrorScaffold(theme *styles.Theme, message string, width int) string {
	lines := []string{
		theme.Error.Bold(true).Render(styles.StatusIndicators.Error + " " + ErrorTitle),
	}
	if message != "" {
		lines = append(lines, theme.Muted.Render(wrapText(message, max(width-4, 20))))
	}
	lines = append(lines, "", theme.Key.Render(RetryHint))
	return center(strings.Join(lines, "\n"), width)
}

// RenderEmptyState renders a title, body and calls to action such as
// "[m] Create Module".
func RenderEmptyState(theme *styles.Theme, title, body string, width int, actions ...string) string {
	lines := []string{theme.PageTitle.Render(title)}
	if body != "" {
		lines = append(lines, theme.Muted.Render(body))
	}
	if len(actions) > 0 {
		keys := make([]string, len(actions))
		for i, a := range actions {
			keys[i] = theme.Key.Render(a)
		}
		lines = append(lines, "", strings.Join(keys, "   "))
	}
	return center(strings.Join(lines, "\n"), width)
}

func center(block string, width int) string {
	if width <= 0 {
		return block
	}
	return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Padding(1, 0).Render(block)
}
