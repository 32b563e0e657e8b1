// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"sort"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/ptutor-tui/internal/model"
	"github.com/jeranaias/ptutor-tui/internal/ui/styles"
	"github.com/jeranaias/ptutor-tui/internal/util"
)

// =============================================================================
// COLUMNS
// =============================================================================

// Column describes one table column. Width 0 shares the leftover space
// with the other flexible columns.
type Column[T any] struct {
	Header string
	Width  int
	Render func(T) string
}

// TableState is what the table currently shows. States are checked in
// declaration order: loading wins over error, error over empty.
type TableState int

const (
	TableLoading TableState = iota
	TableError
	TableEmpty
	TableReady
)

// SortNewestFirst returns a copy of rows ordered by CreatedAt descending.
// Rows with equal timestamps keep their input order.
func SortNewestFirst[T model.Dated](rows []T) []T {
	sorted := make([]T, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt().After(sorted[j].CreatedAt())
	})
	return sorted
}

// =============================================================================
// TABLE
// =============================================================================

// Table renders dated rows newest first over bubbles/table, with loading,
// error and empty states. Row actions are left to the owning screen,
// which reads Selected.
type Table[T model.Dated] struct {
	theme   *styles.Theme
	columns []Column[T]
	rows    []T
	tbl     table.Model
	loader  Loader

	loading bool
	errMsg  string

	// OnRetry is run when r is pressed in the error state.
	OnRetry func() tea.Cmd

	width  int
	height int
}

// NewTable creates a table in the loading state.
func NewTable[T model.Dated](theme *styles.Theme, columns []Column[T]) *Table[T] {
	t := &Table[T]{
		theme:   theme,
		columns: columns,
		loading: true,
		loader:  NewLoader(40),
		width:   80,
		height:  10,
	}
	t.tbl = table.New(table.WithFocused(true))
	t.tbl.SetStyles(table.Styles{
		Header:   theme.TableHeader.Padding(0, 1),
		Cell:     theme.TableCell.Padding(0, 1),
		Selected: theme.TableSelected,
	})
	t.layout()
	return t
}

// State reports what the table shows.
func (t *Table[T]) State() TableState {
	switch {
	case t.loading:
		return TableLoading
	case t.errMsg != "":
		return TableError
	case len(t.rows) == 0:
		return TableEmpty
	default:
		return TableReady
	}
}

// SetLoading shows the progress bar and returns the command animating it.
func (t *Table[T]) SetLoading() tea.Cmd {
	t.loading = true
	return t.loader.Tick
}

// SetError shows the error scaffold with message.
func (t *Table[T]) SetError(message string) {
	t.loading = false
	t.errMsg = message
	if t.errMsg == "" {
		t.errMsg = ErrorTitle
	}
}

// SetRows replaces the data. The caller's slice is not reordered.
func (t *Table[T]) SetRows(rows []T) {
	t.loading = false
	t.errMsg = ""
	t.rows = SortNewestFirst(rows)

	cursor := t.tbl.Cursor()
	t.refresh()
	if cursor >= len(t.rows) {
		cursor = len(t.rows) - 1
	}
	if cursor < 0 {
		cursor = 0
	}
	t.tbl.SetCursor(cursor)
}

// Rows returns the rows in display order.
func (t *Table[T]) Rows() []T {
	return t.rows
}

// Selected returns the row under the cursor.
func (t *Table[T]) Selected() (T, bool) {
	var zero T
	if t.State() != TableReady {
		return zero, false
	}
	i := t.tbl.Cursor()
	if i < 0 || i >= len(t.rows) {
		return zero, false
	}
	return t.rows[i], true
}

// SetSize fits the table into width x height cells.
func (t *Table[T]) SetSize(width, height int) {
	t.width, t.height = width, height
	t.loader.SetWidth(width)
	t.layout()
}

// Height returns the height given to the last SetSize.
func (t *Table[T]) Height() int { return t.height }

// widths resolves flexible column widths.
func (t *Table[T]) widths() []int {
	widths := make([]int, len(t.columns))
	fixed, flex := 0, 0
	for i, c := range t.columns {
		widths[i] = c.Width
		if c.Width > 0 {
			fixed += c.Width
		} else {
			flex++
		}
	}
	// two columns of cell padding per column
	spare := t.width - fixed - 2*len(t.columns)
	for i, c := range t.columns {
		if c.Width == 0 {
			widths[i] = max(spare/max(flex, 1), 8)
		}
	}
	return widths
}

func (t *Table[T]) layout() {
	widths := t.widths()
	cols := make([]table.Column, len(t.columns))
	for i, c := range t.columns {
		cols[i] = table.Column{Title: c.Header, Width: widths[i]}
	}
	t.tbl.SetColumns(cols)
	t.tbl.SetHeight(max(t.height-2, 3))
	t.refresh()
}

func (t *Table[T]) refresh() {
	widths := t.widths()
	rows := make([]table.Row, len(t.rows))
	for r, item := range t.rows {
		row := make(table.Row, len(t.columns))
		for i, c := range t.columns {
			row[i] = util.Truncate(c.Render(item), widths[i])
		}
		rows[r] = row
	}
	t.tbl.SetRows(rows)
}

// Update handles cursor movement, retry and loader animation.
func (t *Table[T]) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch t.State() {
		case TableError:
			if msg.String() == "r" && t.OnRetry != nil {
				return t.OnRetry()
			}
			return nil
		case TableReady:
			var cmd tea.Cmd
			t.tbl, cmd = t.tbl.Update(msg)
			return cmd
		}
		return nil
	default:
		if !t.loading {
			return nil
		}
		var cmd tea.Cmd
		t.loader, cmd = t.loader.Update(msg)
		return cmd
	}
}

// View renders the current state.
func (t *Table[T]) View() string {
	switch t.State() {
	case TableLoading:
		return t.loader.View()
	case TableError:
		return RenderErrorScaffold(t.theme, t.errMsg, t.width)
	case TableEmpty:
		return t.headerOnly() + "\n" + center(t.theme.Muted.Render(NoData), t.width)
	default:
		return t.tbl.View()
	}
}

func (t *Table[T]) headerOnly() string {
	widths := t.widths()
	cells := make([]string, len(t.columns))
	for i, c := range t.columns {
		cells[i] = t.theme.TableHeader.Padding(0, 1).Render(util.PadRight(c.Header, widths[i]))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}
