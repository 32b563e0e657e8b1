// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/ptutor-tui/internal/model"
	"github.com/jeranaias/ptutor-tui/internal/ui/styles"
)

// =============================================================================
// CREDIT SUMMARY CHARTS
// =============================================================================

// BarChart renders one horizontal bar per spend category, scaled to the
// largest category.
func BarChart(theme *styles.Theme, points []model.SummaryPoint, currency string, width int) string {
	if len(points) == 0 {
		return theme.Muted.Render(NoData)
	}

	labelW := 0
	peak := 0.0
	for _, p := range points {
		labelW = max(labelW, runewidth.StringWidth(p.Name))
		peak = max(peak, p.Amount)
	}
	labelW = min(labelW, 18)

	valueW := 0
	values := make([]string, len(points))
	for i, p := range points {
		values[i] = FormatAmount(currency, p.Amount)
		valueW = max(valueW, runewidth.StringWidth(values[i]))
	}
	barW := max(width-labelW-valueW-4, 10)

	lines := make([]string, len(points))
	for i, p := range points {
		bar := progress.New(
			progress.WithSolidFill(hex(styles.SeriesColor(i), theme.IsDark)),
			progress.WithoutPercentage(),
			progress.WithWidth(barW),
		)
		ratio := 0.0
		if peak > 0 {
			ratio = p.Amount / peak
		}
		label := runewidth.FillRight(runewidth.Truncate(p.Name, labelW, "…"), labelW)
		lines[i] = label + "  " + bar.ViewAs(ratio) + "  " + runewidth.FillLeft(values[i], valueW)
	}
	return strings.Join(lines, "\n")
}

// PieChart renders the share of each spend category as one segmented
// strip plus a legend with percentages.
func PieChart(theme *styles.Theme, points []model.SummaryPoint, width int) string {
	total := 0.0
	for _, p := range points {
		total += p.Amount
	}
	if len(points) == 0 || total <= 0 {
		return theme.Muted.Render(NoData)
	}

	stripW := max(width-2, 10)
	var strip strings.Builder
	used := 0
	legend := make([]string, len(points))
	for i, p := range points {
		share := p.Amount / total
		cells := int(share*float64(stripW) + 0.5)
		if i == len(points)-1 {
			cells = stripW - used
		}
		cells = max(min(cells, stripW-used), 0)
		used += cells

		color := styles.SeriesColor(i)
		strip.WriteString(lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", cells)))
		legend[i] = lipgloss.NewStyle().Foreground(color).Render("■") + " " +
			p.Name + " " + theme.Muted.Render(fmtPercent(share*100))
	}

	return strip.String() + "\n" + strings.Join(legend, "   ")
}

func hex(c lipgloss.AdaptiveColor, dark bool) string {
	if dark {
		return c.Dark
	}
	return c.Light
}
