// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

// Markdown renders assistant replies. Renderers are built lazily per wrap
// width and reused; glamour renderers are expensive to construct.
type Markdown struct {
	mu        sync.Mutex
	style     string
	renderers map[int]*glamour.TermRenderer
}

// NewMarkdown creates a renderer set for a dark or light background. The
// style is fixed up front so rendering never queries the terminal while
// the TUI owns it.
func NewMarkdown(dark bool) *Markdown {
	style := "dark"
	if !dark {
		style = "light"
	}
	return &Markdown{style: style, renderers: make(map[int]*glamour.TermRenderer)}
}

func (m *Markdown) renderer(width int) *glamour.TermRenderer {
	m.mu.Lock()
	defer m.mu.Unlock()

	if r, ok := m.renderers[width]; ok {
		return r
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(m.style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		r = nil
	}
	m.renderers[width] = r
	return r
}

// Render renders content wrapped at width. It returns the content as-is
// if rendering fails.
func (m *Markdown) Render(content string, width int) string {
	if m == nil || strings.TrimSpace(content) == "" {
		return content
	}
	width = max(width, 20)
	r := m.renderer(width)
	if r == nil {
		return content
	}
	out, err := r.Render(content)
	if err != nil {
		return content
	}
	return strings.Trim(out, "\n")
}
