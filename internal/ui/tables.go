package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Table creates a formatted table for output
type Table struct {
	headers  []string
	rows     [][]string
	maxWidth int // Maximum total table width
}

// NewTable creates a new table
func NewTable(headers ...string) *Table {
	return &Table{
		headers:  headers,
		maxWidth: 120, // Default max width
	}
}

// SetMaxWidth sets the maximum table width
func (t *Table) SetMaxWidth(width int) {
	t.maxWidth = width
}

// AddRow adds a row to the table
func (t *Table) AddRow(values ...string) {
	row := make([]string, len(t.headers))
	copy(row, values)
	t.rows = append(t.rows, row)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Fprint writes the table to w. Cells may contain styled text; widths
// are measured on the visible characters.
func (t *Table) Fprint(w io.Writer) {
	if len(t.headers) == 0 {
		return
	}

	widths := t.columnWidths()

	line := func(left, mid, right string) {
		fmt.Fprint(w, left)
		for i, cw := range widths {
			fmt.Fprint(w, strings.Repeat("─", cw+2))
			if i < len(widths)-1 {
				fmt.Fprint(w, mid)
			}
		}
		fmt.Fprintln(w, right)
	}
	row := func(cells []string) {
		fmt.Fprint(w, "│")
		for i, cw := range widths {
			cell := truncate(cells[i], cw)
			fmt.Fprint(w, " "+cell+strings.Repeat(" ", cw-lipgloss.Width(cell))+" │")
		}
		fmt.Fprintln(w)
	}

	line("┌", "┬", "┐")
	row(t.headers)
	line("├", "┼", "┤")
	for _, r := range t.rows {
		row(r)
	}
	line("└", "┴", "┘")
}

func (t *Table) columnWidths() []int {
	widths := make([]int, len(t.headers))
	total := 1
	for i, h := range t.headers {
		widths[i] = lipgloss.Width(h)
		for _, row := range t.rows {
			if w := lipgloss.Width(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
		total += widths[i] + 3
	}

	// Reduce largest columns first
	for total > t.maxWidth {
		maxIdx := 0
		for i := 1; i < len(widths); i++ {
			if widths[i] > widths[maxIdx] {
				maxIdx = i
			}
		}
		if widths[maxIdx] <= 8 {
			break
		}
		widths[maxIdx]--
		total--
	}
	return widths
}

// truncate shortens s to maxLen visible characters with an ellipsis.
// Styled text that needs truncating loses its styling.
func truncate(s string, maxLen int) string {
	if lipgloss.Width(s) <= maxLen {
		return s
	}
	runes := []rune(stripANSI(s))
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

func stripANSI(s string) string {
	var b strings.Builder
	inEscape := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEscape = true
		case inEscape:
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEscape = false
			}
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
