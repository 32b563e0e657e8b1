// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestNewTheme_ForcedMode(t *testing.T) {
	if theme := NewTheme("dark"); !theme.IsDark {
		t.Error("NewTheme(dark) should be dark")
	}
	if theme := NewTheme("light"); theme.IsDark {
		t.Error("NewTheme(light) should not be dark")
	}
}

func TestThemeStylesRender(t *testing.T) {
	theme := NewTheme("dark")

	styles := []struct {
		name  string
		style lipgloss.Style
	}{
		{"Header", theme.Header},
		{"Sidebar", theme.Sidebar},
		{"SidebarActive", theme.SidebarActive},
		{"TableHeader", theme.TableHeader},
		{"Dialog", theme.Dialog},
		{"ButtonFocused", theme.ButtonFocused},
		{"UserBubble", theme.UserBubble},
		{"AssistantBubble", theme.AssistantBubble},
	}
	for _, s := range styles {
		if !strings.Contains(s.style.Render("test"), "test") {
			t.Errorf("%s style lost its content", s.name)
		}
	}
}

func TestLayoutMode(t *testing.T) {
	theme := NewTheme("light")

	theme.SetSize(50, 20)
	if theme.GetLayoutMode() != LayoutNarrow {
		t.Error("50 columns should be narrow")
	}
	theme.SetSize(120, 40)
	if theme.GetLayoutMode() != LayoutWide {
		t.Error("120 columns should be wide")
	}
}

func TestSeriesColorWraps(t *testing.T) {
	if SeriesColor(0) != SeriesColor(len(ChartPalette)) {
		t.Error("series colors should cycle through the palette")
	}
}
