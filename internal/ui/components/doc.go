// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides the reusable pieces the dashboard screens are
built from.

Each component takes a *styles.Theme so colours follow the terminal
background, and the interactive ones follow the Bubble Tea
Init/Update/View shape.

# Layout

Header (header.go) - Product title and the signed-in user.
Sidebar (sidebar.go) - Page navigation with the active entry marked.

# Data

Table (table.go) - Generic list over model.Dated rows, always newest first,
with loading, error and empty states.
BarChart, PieChart (chart.go) - Credit summary renditions.
RenderErrorScaffold, RenderEmptyState (scaffold.go) - Full-page fallbacks.

# Chat

ChatViewport (viewport.go) - Scrollable thread.
MessageBubble (message.go) - One message; assistant text goes through
Markdown (glamour) and code through Highlight (chroma).
InputArea (input.go) - Composer with a character counter.
Loader (loader.go) - Indeterminate progress and the "Thinking..." spinner.

# Dialogs and feedback

TutorForm, ModuleForm, CreditForm (forms.go) - Entity modals. Save stays
disabled until the payload passes validation.
ConfirmDialog (confirm.go) - Yes/no confirmation for destructive actions.
ToastManager (toast.go) - Transient success and error notices.

# Example

	theme := styles.NewTheme("auto")
	table := components.NewTable(theme, columns)
	table.SetRows(tutors)
	view := table.View()
*/
package components
