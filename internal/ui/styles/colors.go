// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// ACCENT COLORS
// =============================================================================

// Indigo is the brand color: active navigation, primary buttons, focus.
var Indigo = lipgloss.AdaptiveColor{Light: "#4F46E5", Dark: "#818CF8"}

// IndigoDeep backs selected rows and the active sidebar entry.
var IndigoDeep = lipgloss.AdaptiveColor{Light: "#E0E7FF", Dark: "#312E81"}

// Cyan marks informational toasts and links.
var Cyan = lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#22D3EE"}

// =============================================================================
// SEMANTIC COLORS
// =============================================================================

// Emerald - success toasts, top-ups
var Emerald = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}

// Rose - errors, destructive actions, debits
var Rose = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}

// Amber - warnings and the "Thinking..." placeholder
var Amber = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

// =============================================================================
// SURFACE & TEXT
// =============================================================================

var (
	Surface       = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1E1E2E"}
	SurfaceDim    = lipgloss.AdaptiveColor{Light: "#F5F5F5", Dark: "#181825"}
	SurfaceBright = lipgloss.AdaptiveColor{Light: "#FAFAFA", Dark: "#313244"}
	Overlay       = lipgloss.AdaptiveColor{Light: "#E5E5E5", Dark: "#45475A"}

	TextPrimary   = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#CDD6F4"}
	TextSecondary = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#A6ADC8"}
	TextMuted     = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6C7086"}
	TextInverse   = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1E1E2E"}
)

// Chat bubbles: the student on the right in blue, the tutor on the left in violet.
var (
	UserBubbleFg          = lipgloss.AdaptiveColor{Light: "#1E40AF", Dark: "#E0F2FE"}
	UserBubbleBorder      = lipgloss.AdaptiveColor{Light: "#3B82F6", Dark: "#3B82F6"}
	AssistantBubbleFg     = lipgloss.AdaptiveColor{Light: "#5B4B8A", Dark: "#E9E4F5"}
	AssistantBubbleBorder = lipgloss.AdaptiveColor{Light: "#C4B5FD", Dark: "#A78BFA"}
)

// ChartPalette colors successive chart series.
var ChartPalette = []lipgloss.AdaptiveColor{
	Indigo,
	Emerald,
	Amber,
	Cyan,
	Rose,
	{Light: "#7C3AED", Dark: "#A78BFA"},
	{Light: "#DB2777", Dark: "#F472B6"},
}

// SeriesColor returns the chart color for series i.
func SeriesColor(i int) lipgloss.AdaptiveColor {
	return ChartPalette[i%len(ChartPalette)]
}

// =============================================================================
// STATUS INDICATORS
// =============================================================================

// StatusIndicators pair every status color with an ASCII shape so status
// reads without color.
var StatusIndicators = struct {
	Success string
	Error   string
	Warning string
	Info    string
}{
	Success: "[OK]",
	Error:   "[X]",
	Warning: "[!]",
	Info:    "[i]",
}
