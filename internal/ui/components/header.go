// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/ptutor-tui/internal/ui/styles"
	"github.com/jeranaias/ptutor-tui/internal/util"
)

// =============================================================================
// HEADER COMPONENT
// =============================================================================

// ProductTitle is shown at the left of the header.
const ProductTitle = "Personal Tutor"

// NoName stands in for a user without a display name.
const NoName = "No name"

// Header is the title bar: product name on the left, the signed-in user
// on the right.
type Header struct {
	Title string
	Name  string
	Email string
	Width int
	theme *styles.Theme
}

// NewHeader creates a header with no user.
func NewHeader(theme *styles.Theme) *Header {
	return &Header{
		Title: ProductTitle,
		Width: 80,
		theme: theme,
	}
}

// SetWidth updates the header width.
func (h *Header) SetWidth(width int) {
	h.Width = width
}

// SetUser updates the identity shown on the right. Pass empty strings
// when signed out.
func (h *Header) SetUser(name, email string) {
	h.Name = name
	h.Email = email
}

// DisplayName returns the name to show, falling back to NoName.
func (h *Header) DisplayName() string {
	return util.FirstNonEmpty(h.Name, NoName)
}

// View renders the header on one line.
func (h *Header) View() string {
	width := max(h.Width, 20)
	inner := width - 2

	title := h.theme.HeaderTitle.Render(h.Title)

	var user string
	if h.Email != "" {
		user = h.DisplayName() + "  " + h.Email
		if h.theme.GetLayoutMode() == styles.LayoutNarrow {
			user = h.DisplayName()
		}
	}
	room := inner - lipgloss.Width(title) - 2
	if room < 1 {
		user = ""
	} else if runewidth.StringWidth(user) > room {
		user = runewidth.Truncate(user, room, "…")
	}
	user = h.theme.HeaderUser.Render(user)

	gap := max(inner-lipgloss.Width(title)-lipgloss.Width(user), 1)
	return h.theme.Header.Width(width).Render(title + strings.Repeat(" ", gap) + user)
}
