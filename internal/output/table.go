package output

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Table renders rows of columns with padded alignment.
type Table struct {
	formatter *Formatter
	headers   []string
	rows      [][]string
}

// Table creates a new table bound to this formatter's writer and theme.
func (f *Formatter) Table() *Table {
	return &Table{formatter: f}
}

// Headers sets the column headers.
func (t *Table) Headers(headers ...string) *Table {
	t.headers = headers
	return t
}

// Row appends a data row.
func (t *Table) Row(columns ...string) *Table {
	t.rows = append(t.rows, columns)
	return t
}

// Print writes the table to the formatter's writer.
func (t *Table) Print() {
	widths := t.columnWidths()
	f := t.formatter

	if len(t.headers) > 0 {
		fmt.Fprintln(f.writer, f.colorize(t.formatRow(t.headers, widths), f.theme.Secondary, StyleBold))
		fmt.Fprintln(f.writer, f.colorize(t.separator(widths), f.theme.Border, StyleDim))
	}

	for _, row := range t.rows {
		fmt.Fprintln(f.writer, t.formatRow(row, widths))
	}
}

func (t *Table) columnWidths() []int {
	var widths []int

	measure := func(row []string) {
		for i, col := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			if w := runewidth.StringWidth(col); w > widths[i] {
				widths[i] = w
			}
		}
	}

	measure(t.headers)
	for _, row := range t.rows {
		measure(row)
	}

	return widths
}

func (t *Table) formatRow(row []string, widths []int) string {
	cols := make([]string, len(row))
	for i, col := range row {
		pad := widths[i] - runewidth.StringWidth(col)
		cols[i] = col + strings.Repeat(" ", pad)
	}
	return strings.TrimRight(strings.Join(cols, "  "), " ")
}

func (t *Table) separator(widths []int) string {
	cols := make([]string, len(widths))
	for i, w := range widths {
		cols[i] = strings.Repeat("─", w)
	}
	return strings.Join(cols, "  ")
}
