// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/ptutor-tui/internal/ui/styles"
)

// NavItem is one sidebar entry.
type NavItem struct {
	Label  string
	Key    string // shortcut shown next to the label
	Danger bool   // rendered in the danger color, e.g. sign out
}

// Sidebar renders the navigation list. It holds no selection of its own;
// the active index is passed in on every render.
type Sidebar struct {
	Items []NavItem
	theme *styles.Theme
}

// NewSidebar creates a sidebar over the given items.
func NewSidebar(theme *styles.Theme, items []NavItem) *Sidebar {
	return &Sidebar{Items: items, theme: theme}
}

// Width returns the rendered width of the widest entry plus borders.
func (s *Sidebar) Width() int {
	w := 0
	for _, it := range s.Items {
		w = max(w, lipgloss.Width(s.item(it, false)))
	}
	return w + s.theme.Sidebar.GetHorizontalFrameSize()
}

func (s *Sidebar) item(it NavItem, active bool) string {
	label := it.Label
	if it.Key != "" {
		label = it.Key + "  " + label
	}
	switch {
	case active:
		return s.theme.SidebarActive.Render(label)
	case it.Danger:
		return s.theme.SidebarDanger.Render(label)
	default:
		return s.theme.SidebarItem.Render(label)
	}
}

// View renders the sidebar at the given height with active highlighted.
func (s *Sidebar) View(active, height int) string {
	lines := make([]string, 0, len(s.Items)+1)
	for i, it := range s.Items {
		if it.Danger {
			lines = append(lines, "")
		}
		lines = append(lines, s.item(it, i == active))
	}
	st := s.theme.Sidebar
	if height > 0 {
		st = st.Height(max(height-st.GetVerticalFrameSize(), 0))
	}
	return st.Render(strings.Join(lines, "\n"))
}

// ViewCompact renders the items on one line for narrow terminals.
func (s *Sidebar) ViewCompact(active int) string {
	parts := make([]string, len(s.Items))
	for i, it := range s.Items {
		parts[i] = s.item(it, i == active)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}
