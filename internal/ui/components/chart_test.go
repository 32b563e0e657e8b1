// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/ptutor-tui/internal/model"
	"github.com/jeranaias/ptutor-tui/internal/ui/styles"
)

func TestBarChart(t *testing.T) {
	theme := styles.NewTheme("dark")
	points := model.CreditSummary{"Top up": 50, "Message usage": 4, "Assistant usage": 2}.Series()

	out := BarChart(theme, points, "$", 60)
	if !strings.Contains(out, "Message usage") || !strings.Contains(out, "$4.00") {
		t.Errorf("BarChart missing category or value:\n%s", out)
	}
	if strings.Contains(out, "Top up") {
		t.Error("BarChart should leave out top-ups")
	}
	for i, line := range strings.Split(out, "\n") {
		if w := lipgloss.Width(line); w > 60 {
			t.Errorf("line %d is %d cells wide, want <= 60", i, w)
		}
	}
}

func TestBarChart_Empty(t *testing.T) {
	theme := styles.NewTheme("dark")
	if out := BarChart(theme, nil, "$", 60); !strings.Contains(out, NoData) {
		t.Errorf("BarChart(nil) = %q", out)
	}
}

func TestPieChart(t *testing.T) {
	theme := styles.NewTheme("dark")
	points := []model.SummaryPoint{{Name: "a", Amount: 1}, {Name: "b", Amount: 3}}

	out := PieChart(theme, points, 40)
	if !strings.Contains(out, "25.0%") || !strings.Contains(out, "75.0%") {
		t.Errorf("PieChart shares wrong:\n%s", out)
	}
	strip := strings.Split(out, "\n")[0]
	if w := lipgloss.Width(strip); w != 38 {
		t.Errorf("strip width = %d, want 38", w)
	}
}

func TestPieChart_ZeroTotal(t *testing.T) {
	theme := styles.NewTheme("dark")
	out := PieChart(theme, []model.SummaryPoint{{Name: "a", Amount: 0}}, 40)
	if !strings.Contains(out, NoData) {
		t.Errorf("PieChart(zero) = %q", out)
	}
}
