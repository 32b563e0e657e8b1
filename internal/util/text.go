// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Ellipsis is appended by Truncate when text is cut.
const Ellipsis = "..."

// Truncate shortens s to at most width display columns, appending an
// ellipsis when anything was cut. Double-width runes count as two columns.
// Newlines are flattened to spaces so a cell never spans rows.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = strings.Join(strings.Fields(s), " ")
	if runewidth.StringWidth(s) <= width {
		return s
	}
	if width <= len(Ellipsis) {
		return runewidth.Truncate(s, width, "")
	}
	return runewidth.Truncate(s, width, Ellipsis)
}

// PadRight pads s with spaces to exactly width display columns, truncating
// first if it is too wide.
func PadRight(s string, width int) string {
	return runewidth.FillRight(Truncate(s, width), width)
}

// FirstNonEmpty returns the first value that is not blank, or "".
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
