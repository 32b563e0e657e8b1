// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/ptutor-tui/internal/ui/styles"
)

// =============================================================================
// CONFIRMATION DIALOG
// =============================================================================

// ConfirmResultMsg reports the user's answer. ID is the value passed to
// Show, so one screen can tell its dialogs apart.
type ConfirmResultMsg struct {
	ID        string
	Confirmed bool
}

const (
	confirmCancel = iota
	confirmAccept
)

// ConfirmDialog is a yes/no gate in front of a destructive action.
// Cancel has focus when it opens.
type ConfirmDialog struct {
	theme *styles.Theme

	id           string
	title        string
	message      string
	confirmLabel string

	visible  bool
	selected int
	width    int
}

// NewConfirmDialog creates a hidden dialog.
func NewConfirmDialog(theme *styles.Theme) *ConfirmDialog {
	return &ConfirmDialog{theme: theme}
}

// Show opens the dialog. An empty confirmLabel reads "Continue".
func (d *ConfirmDialog) Show(id, title, message, confirmLabel string) {
	if confirmLabel == "" {
		confirmLabel = "Continue"
	}
	d.id = id
	d.title = title
	d.message = message
	d.confirmLabel = confirmLabel
	d.visible = true
	d.selected = confirmCancel
}

// Hide closes the dialog without answering.
func (d *ConfirmDialog) Hide() {
	d.visible = false
}

// IsVisible reports whether the dialog is open.
func (d *ConfirmDialog) IsVisible() bool {
	return d.visible
}

// ID returns the id of the open (or last) dialog.
func (d *ConfirmDialog) ID() string {
	return d.id
}

// SetWidth sets the available width.
func (d *ConfirmDialog) SetWidth(width int) {
	d.width = width
}

// Update handles keys while visible. The bool reports whether the key
// was consumed.
func (d *ConfirmDialog) Update(msg tea.Msg) (tea.Cmd, bool) {
	if !d.visible {
		return nil, false
	}
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil, false
	}

	switch key.String() {
	case "left", "right", "h", "l", "tab", "shift+tab":
		d.selected = 1 - d.selected
		return nil, true
	case "enter", " ":
		return d.answer(d.selected == confirmAccept), true
	case "esc", "n":
		return d.answer(false), true
	case "y":
		return d.answer(true), true
	}
	return nil, true
}

func (d *ConfirmDialog) answer(confirmed bool) tea.Cmd {
	id := d.id
	d.Hide()
	return func() tea.Msg {
		return ConfirmResultMsg{ID: id, Confirmed: confirmed}
	}
}

// View renders the dialog box, or "" when hidden.
func (d *ConfirmDialog) View() string {
	if !d.visible {
		return ""
	}
	width := 50
	if d.width > 0 && d.width-4 < width {
		width = max(d.width-4, 24)
	}

	cancel := d.theme.Button.Render("Cancel")
	if d.selected == confirmCancel {
		cancel = d.theme.ButtonFocused.Render("Cancel")
	}
	accept := d.theme.Button.Foreground(styles.Rose).Render(d.confirmLabel)
	if d.selected == confirmAccept {
		accept = d.theme.ButtonDanger.Render(d.confirmLabel)
	}
	buttons := lipgloss.JoinHorizontal(lipgloss.Center, cancel, accept)

	body := lipgloss.JoinVertical(lipgloss.Left,
		d.theme.DialogTitle.Render(d.title),
		wrapText(d.message, width-6),
		"",
		lipgloss.PlaceHorizontal(width-6, lipgloss.Right, buttons),
	)
	return d.theme.Dialog.BorderForeground(styles.Rose).Width(width).Render(body)
}
