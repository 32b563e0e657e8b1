// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/ptutor-tui/internal/ui/styles"
)

// =============================================================================
// TOAST TYPES
// =============================================================================

// ToastKind selects a toast's color and marker.
type ToastKind int

const (
	ToastInfo ToastKind = iota
	ToastSuccess
	ToastWarning
	ToastError
)

// DefaultToastDuration is how long success and info toasts stay up.
const DefaultToastDuration = 3 * time.Second

// ErrorToastDuration is longer so the server's detail can be read.
const ErrorToastDuration = 6 * time.Second

// maxToasts is how many toasts are visible at once.
const maxToasts = 4

// Toast is a transient notification in the bottom-right corner.
type Toast struct {
	ID        int
	Kind      ToastKind
	Title     string
	Detail    string
	CreatedAt time.Time
	Duration  time.Duration
}

// Text is the line shown to the user: "title: detail", or just the title.
func (t Toast) Text() string {
	if t.Detail == "" || t.Detail == t.Title {
		return t.Title
	}
	return t.Title + ": " + t.Detail
}

// ExpiredAt reports whether the toast should be gone at now.
func (t Toast) ExpiredAt(now time.Time) bool {
	return now.Sub(t.CreatedAt) >= t.Duration
}

// =============================================================================
// TOAST MANAGER
// =============================================================================

// ToastManager keeps the visible toasts, newest first. It is safe for
// concurrent use.
type ToastManager struct {
	mu     sync.Mutex
	toasts []Toast
	nextID int
	now    func() time.Time
}

// NewToastManager creates an empty manager.
func NewToastManager() *ToastManager {
	return &ToastManager{nextID: 1, now: time.Now}
}

// Add shows a toast and returns its id.
func (m *ToastManager) Add(kind ToastKind, title, detail string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	d := DefaultToastDuration
	if kind == ToastError || kind == ToastWarning {
		d = ErrorToastDuration
	}
	t := Toast{
		ID:        m.nextID,
		Kind:      kind,
		Title:     title,
		Detail:    detail,
		CreatedAt: m.now(),
		Duration:  d,
	}
	m.nextID++

	m.toasts = append([]Toast{t}, m.toasts...)
	if len(m.toasts) > maxToasts {
		m.toasts = m.toasts[:maxToasts]
	}
	return t.ID
}

// Success shows a success toast.
func (m *ToastManager) Success(title string) int { return m.Add(ToastSuccess, title, "") }

// Error shows an error toast with an optional detail.
func (m *ToastManager) Error(title, detail string) int { return m.Add(ToastError, title, detail) }

// Remove dismisses a toast.
func (m *ToastManager) Remove(id int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, t := range m.toasts {
		if t.ID == id {
			m.toasts = append(m.toasts[:i], m.toasts[i+1:]...)
			return
		}
	}
}

// Tick drops expired toasts and returns the rest.
func (m *ToastManager) Tick() []Toast {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	active := m.toasts[:0]
	for _, t := range m.toasts {
		if !t.ExpiredAt(now) {
			active = append(active, t)
		}
	}
	m.toasts = active
	return append([]Toast(nil), m.toasts...)
}

// Toasts returns a copy of the visible toasts.
func (m *ToastManager) Toasts() []Toast {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Toast(nil), m.toasts...)
}

// HasToasts reports whether any toast is visible.
func (m *ToastManager) HasToasts() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.toasts) > 0
}

// Clear removes every toast.
func (m *ToastManager) Clear() {
	m.mu.Lock()
	m.toasts = nil
	m.mu.Unlock()
}

// =============================================================================
// TOAST MESSAGES
// =============================================================================

// ToastMsg asks the root model to show a toast.
type ToastMsg struct {
	Kind   ToastKind
	Title  string
	Detail string
}

// ShowToast returns a command emitting a ToastMsg.
func ShowToast(kind ToastKind, title, detail string) tea.Cmd {
	return func() tea.Msg { return ToastMsg{Kind: kind, Title: title, Detail: detail} }
}

// ToastTickMsg drives expiry.
type ToastTickMsg struct {
	Time time.Time
}

// ToastTickCmd ticks toasts every 250ms.
func ToastTickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return ToastTickMsg{Time: t}
	})
}

// =============================================================================
// TOAST RENDERING
// =============================================================================

// RenderToast renders one toast box.
func RenderToast(t Toast, width int) string {
	maxWidth := 56
	if width > 0 && width-8 < maxWidth {
		maxWidth = width - 8
	}
	if maxWidth < 24 {
		maxWidth = 24
	}

	var color lipgloss.AdaptiveColor
	var icon string
	switch t.Kind {
	case ToastError:
		color, icon = styles.Rose, styles.StatusIndicators.Error
	case ToastWarning:
		color, icon = styles.Amber, styles.StatusIndicators.Warning
	case ToastSuccess:
		color, icon = styles.Emerald, styles.StatusIndicators.Success
	default:
		color, icon = styles.Cyan, styles.StatusIndicators.Info
	}

	// border and padding take six columns
	inner := maxWidth - 6
	title := lipgloss.NewStyle().Foreground(color).Bold(true).
		Render(wrapText(icon+" "+t.Title, inner))
	content := title
	if t.Detail != "" && t.Detail != t.Title {
		detail := lipgloss.NewStyle().Foreground(styles.TextPrimary).
			Render(wrapText(t.Detail, inner))
		content += "\n" + detail
	}

	return lipgloss.NewStyle().
		Background(styles.SurfaceDim).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Padding(0, 2).
		MaxWidth(maxWidth).
		Render(content)
}

// RenderToastStack stacks toasts in the bottom-right corner of a
// width x height area.
func RenderToastStack(toasts []Toast, width, height int) string {
	if len(toasts) == 0 {
		return ""
	}

	rendered := make([]string, 0, len(toasts))
	for i := len(toasts) - 1; i >= 0; i-- {
		rendered = append(rendered, RenderToast(toasts[i], width))
	}
	stack := lipgloss.NewStyle().MarginRight(2).
		Render(lipgloss.JoinVertical(lipgloss.Right, rendered...))

	if width > 0 && height > 0 {
		return lipgloss.Place(width, height, lipgloss.Right, lipgloss.Bottom, stack)
	}
	return stack
}

// wrapText word-wraps text to maxWidth display columns.
func wrapText(text string, maxWidth int) string {
	if maxWidth <= 0 {
		return text
	}
	words := strings.Fields(text)
	var lines []string
	var line strings.Builder
	for _, w := range words {
		switch {
		case line.Len() == 0:
			line.WriteString(w)
		case runewidth.StringWidth(line.String())+1+runewidth.StringWidth(w) <= maxWidth:
			line.WriteString(" " + w)
		default:
			lines = append(lines, line.String())
			line.Reset()
			line.WriteString(w)
		}
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}
