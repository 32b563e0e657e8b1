// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/ptutor-tui/internal/ui/components"
	"github.com/jeranaias/ptutor-tui/internal/ui/styles"
)

// =============================================================================
// LAYOUT
// =============================================================================

func (m *Model) narrow() bool {
	return m.deps.Theme.GetLayoutMode() == styles.LayoutNarrow
}

// footer renders the toast stack and the help line.
func (m *Model) footer() string {
	var parts []string
	if t := m.toasts.Toasts(); len(t) > 0 {
		parts = append(parts, components.RenderToastStack(t, m.width, 0))
	}
	if m.route.Dashboard() {
		m.keys.screen = m.screen.Keys()
		m.help.ShowAll = m.showHelp
		m.help.Width = m.width
		parts = append(parts, m.deps.Theme.Help.Render(m.help.View(m.keys)))
	}
	if len(parts) == 0 {
		return ""
	}
	return lipgloss.JoinVertical(lipgloss.Right, parts...)
}

// bodySize is the area left for the screen.
func (m *Model) bodySize() (int, int) {
	w, h := m.width, m.height
	if f := m.footer(); f != "" {
		h -= lipgloss.Height(f)
	}
	if !m.route.Dashboard() {
		return w, max(h, 1)
	}
	h -= lipgloss.Height(m.header.View())
	if m.narrow() {
		h -= lipgloss.Height(m.sidebar.ViewCompact(m.active))
	} else {
		w -= m.sidebar.Width()
	}
	return max(w, 1), max(h, 1)
}

// layout resizes the header and the screen to the current terminal.
func (m *Model) layout() {
	m.header.SetWidth(m.width)
	w, h := m.bodySize()
	m.screen.SetSize(w, h)
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the shell around the active screen.
func (m *Model) View() string {
	w, h := m.bodySize()

	body := m.screen.View()
	if m.confirm.IsVisible() {
		body = lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, m.confirm.View())
	}
	body = lipgloss.NewStyle().Width(w).Height(h).MaxHeight(h).Render(body)

	footer := m.footer()
	if !m.route.Dashboard() {
		if footer == "" {
			return body
		}
		return lipgloss.JoinVertical(lipgloss.Left, body, footer)
	}

	var main string
	if m.narrow() {
		main = lipgloss.JoinVertical(lipgloss.Left, m.sidebar.ViewCompact(m.active), body)
	} else {
		main = lipgloss.JoinHorizontal(lipgloss.Top, m.sidebar.View(m.active, h), body)
	}

	rows := []string{m.header.View(), main}
	if footer != "" {
		rows = append(rows, lipgloss.PlaceHorizontal(m.width, lipgloss.Right, footer))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
