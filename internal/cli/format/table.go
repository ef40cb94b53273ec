package format

import (
	"io"
	"strings"

	"golang.org/x/text/width"
)

// Width returns the display width of s in terminal cells. East Asian wide
// and fullwidth runes occupy two cells.
func Width(s string) int {
	n := 0
	for _, r := range s {
		n += runeWidth(r)
	}
	return n
}

func runeWidth(r rune) int {
	if r < 0x20 || r == 0x7f {
		return 0
	}
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	default:
		return 1
	}
}

// Truncate shortens s to at most max cells, ending with "…" when cut.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if Width(s) <= max {
		return s
	}
	var b strings.Builder
	used := 0
	for _, r := range s {
		w := runeWidth(r)
		if used+w > max-1 {
			break
		}
		b.WriteRune(r)
		used += w
	}
	b.WriteString("…")
	return b.String()
}

// Pad right-pads s with spaces to n cells.
func Pad(s string, n int) string {
	if w := Width(s); w < n {
		return s + strings.Repeat(" ", n-w)
	}
	return s
}

// Table writes rows as left-aligned columns separated by two spaces.
// Cells wider than maxCell are truncated; zero disables truncation.
type Table struct {
	Headers []string
	Rows    [][]string
	MaxCell int
}

// Render writes the table to w.
func (t *Table) Render(w io.Writer) error {
	rows := make([][]string, 0, len(t.Rows)+1)
	if len(t.Headers) > 0 {
		rows = append(rows, append([]string(nil), t.Headers...))
	}
	for _, row := range t.Rows {
		rows = append(rows, append([]string(nil), row...))
	}

	var widths []int
	for _, row := range rows {
		for i, cell := range row {
			if t.MaxCell > 0 {
				cell = Truncate(cell, t.MaxCell)
				row[i] = cell
			}
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			if cw := Width(cell); cw > widths[i] {
				widths[i] = cw
			}
		}
	}

	for _, row := range rows {
		var b strings.Builder
		for i, cell := range row {
			if i == len(row)-1 {
				b.WriteString(cell)
				break
			}
			b.WriteString(Pad(cell, widths[i]))
			b.WriteString("  ")
		}
		b.WriteString("\n")
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
	}
	return nil
}
