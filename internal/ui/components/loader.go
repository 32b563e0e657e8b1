// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/ptutor-tui/internal/ui/styles"
)

// =============================================================================
// INDETERMINATE PROGRESS
// =============================================================================

// Loader is an indeterminate progress bar shown while a fetch is
// outstanding. It animates through bubbles' spinner tick.
type Loader struct {
	spinner spinner.Model
	width   int
}

// NewLoader creates a loader width columns wide.
func NewLoader(width int) Loader {
	l := Loader{spinner: spinner.New()}
	l.SetWidth(width)
	return l
}

// SetWidth rebuilds the animation frames for a new width.
func (l *Loader) SetWidth(width int) {
	if width < 8 {
		width = 8
	}
	if width == l.width {
		return
	}
	l.width = width
	l.spinner.Spinner = spinner.Spinner{
		Frames: barFrames(width),
		FPS:    time.Second / 20,
	}
}

// barFrames returns frames of a block sliding across a track.
func barFrames(width int) []string {
	block := width / 4
	track := lipgloss.NewStyle().Foreground(styles.Overlay)
	fill := lipgloss.NewStyle().Foreground(styles.Indigo)

	frames := make([]string, 0, width+block)
	for pos := -block; pos < width; pos++ {
		var b strings.Builder
		for i := 0; i < width; i++ {
			if i >= pos && i < pos+block {
				b.WriteString(fill.Render("━"))
			} else {
				b.WriteString(track.Render("─"))
			}
		}
		frames = append(frames, b.String())
	}
	return frames
}

// Tick starts the animation.
func (l Loader) Tick() tea.Msg {
	return l.spinner.Tick()
}

// Update advances the animation.
func (l Loader) Update(msg tea.Msg) (Loader, tea.Cmd) {
	var cmd tea.Cmd
	l.spinner, cmd = l.spinner.Update(msg)
	return l, cmd
}

// View renders the current frame.
func (l Loader) View() string {
	return l.spinner.View()
}

// =============================================================================
// THINKING INDICATOR
// =============================================================================

// NewThinking returns the dots spinner shown next to "Thinking...".
func NewThinking() spinner.Model {
	return spinner.New(
		spinner.WithSpinner(spinner.Spinner{
			Frames: []string{".  ", ".. ", "...", " ..", "  .", "   "},
			FPS:    time.Second / 6,
		}),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(styles.Amber)),
	)
}
