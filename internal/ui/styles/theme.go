// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds the styles every screen renders with. It is built once for
// the detected (or configured) background and color profile.
type Theme struct {
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	Width  int
	Height int

	// Shell
	App           lipgloss.Style
	Header        lipgloss.Style
	HeaderTitle   lipgloss.Style
	HeaderUser    lipgloss.Style
	Sidebar       lipgloss.Style
	SidebarItem   lipgloss.Style
	SidebarActive lipgloss.Style
	SidebarDanger lipgloss.Style
	Content       lipgloss.Style
	Help          lipgloss.Style

	// Page
	PageTitle    lipgloss.Style
	PageSubtitle lipgloss.Style
	Muted        lipgloss.Style
	Error        lipgloss.Style
	Success      lipgloss.Style
	Warning      lipgloss.Style
	Key          lipgloss.Style

	// Table
	TableHeader   lipgloss.Style
	TableCell     lipgloss.Style
	TableSelected lipgloss.Style

	// Dialogs and forms
	Dialog         lipgloss.Style
	DialogTitle    lipgloss.Style
	Label          lipgloss.Style
	Field          lipgloss.Style
	FieldFocused   lipgloss.Style
	Button         lipgloss.Style
	ButtonFocused  lipgloss.Style
	ButtonDisabled lipgloss.Style
	ButtonDanger   lipgloss.Style

	// Chat
	UserBubble      lipgloss.Style
	AssistantBubble lipgloss.Style
	Author          lipgloss.Style
	Timestamp       lipgloss.Style
	Thinking        lipgloss.Style
}

// NewTheme creates a theme. mode is "auto", "dark" or "light"; auto asks
// the terminal for its background.
func NewTheme(mode string) *Theme {
	profile := termenv.ColorProfile()

	var isDark bool
	switch strings.ToLower(mode) {
	case "dark":
		isDark = true
	case "light":
		isDark = false
	default:
		isDark = termenv.HasDarkBackground()
	}
	lipgloss.SetHasDarkBackground(isDark)

	t := &Theme{
		IsDark:       isDark,
		HasTrueColor: profile == termenv.TrueColor,
		ColorProfile: profile,
	}
	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	t.App = lipgloss.NewStyle()

	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		Padding(0, 1)
	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Indigo)
	t.HeaderUser = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.Sidebar = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		BorderForeground(Overlay).
		Padding(1, 1)
	t.SidebarItem = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Padding(0, 1)
	t.SidebarActive = lipgloss.NewStyle().
		Bold(true).
		Foreground(Indigo).
		Background(IndigoDeep).
		Padding(0, 1)
	t.SidebarDanger = lipgloss.NewStyle().
		Foreground(Rose).
		Padding(0, 1)
	t.Content = lipgloss.NewStyle().Padding(1, 2)
	t.Help = lipgloss.NewStyle().Foreground(TextMuted)

	t.PageTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextPrimary)
	t.PageSubtitle = lipgloss.NewStyle().
		Foreground(TextSecondary).
		MarginBottom(1)
	t.Muted = lipgloss.NewStyle().Foreground(TextMuted)
	t.Error = lipgloss.NewStyle().Foreground(Rose)
	t.Success = lipgloss.NewStyle().Foreground(Emerald)
	t.Warning = lipgloss.NewStyle().Foreground(Amber)
	t.Key = lipgloss.NewStyle().Bold(true).Foreground(Indigo)

	t.TableHeader = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextSecondary).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(Overlay)
	t.TableCell = lipgloss.NewStyle().Foreground(TextPrimary)
	t.TableSelected = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextPrimary).
		Background(IndigoDeep)

	t.Dialog = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Indigo).
		Padding(1, 2)
	t.DialogTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextPrimary).
		MarginBottom(1)
	t.Label = lipgloss.NewStyle().
		Foreground(TextSecondary)
	t.Field = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.FieldFocused = t.Field.BorderForeground(Indigo)

	button := lipgloss.NewStyle().Padding(0, 2).MarginRight(1)
	t.Button = button.
		Foreground(TextPrimary).
		Background(SurfaceBright)
	t.ButtonFocused = button.
		Bold(true).
		Foreground(TextInverse).
		Background(Indigo)
	t.ButtonDisabled = button.
		Foreground(TextMuted).
		Background(SurfaceDim)
	t.ButtonDanger = button.
		Bold(true).
		Foreground(TextInverse).
		Background(Rose)

	t.UserBubble = lipgloss.NewStyle().
		Foreground(UserBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(UserBubbleBorder).
		Padding(0, 1)
	t.AssistantBubble = lipgloss.NewStyle().
		Foreground(AssistantBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(AssistantBubbleBorder).
		Padding(0, 1)
	t.Author = lipgloss.NewStyle().Bold(true)
	t.Timestamp = lipgloss.NewStyle().Foreground(TextMuted)
	t.Thinking = lipgloss.NewStyle().Italic(true).Foreground(Amber)
}

// SetSize updates the dimensions used for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// GetLayoutMode returns the layout for the current width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 70 {
		return LayoutNarrow
	}
	return LayoutWide
}

// LayoutMode represents the responsive layout.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // sidebar collapses into the header
	LayoutWide
)
