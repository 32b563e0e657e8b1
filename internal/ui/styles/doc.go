// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the colors and lipgloss styles of the ptutor TUI.

All colors are lipgloss AdaptiveColor values, so one palette serves light
and dark terminals. The background is detected with termenv unless the
ui.theme setting forces "dark" or "light".

# Palette (colors.go)

  - Indigo - brand, focus, active navigation
  - Emerald - success, top-ups
  - Rose - errors, destructive actions, debits
  - Amber - warnings, the "Thinking..." placeholder
  - Cyan - information

Every status color has an ASCII marker ([OK], [X], [!], [i]) so status is
readable without color.

# Theme (theme.go)

Theme groups the styles for the shell (header, sidebar), pages, tables,
dialogs and chat bubbles:

	theme := styles.NewTheme(cfg.UI.Theme)
	theme.SetSize(msg.Width, msg.Height)
	title := theme.PageTitle.Render("Personal Tutors")
*/
package styles
