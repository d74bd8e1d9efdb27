package tui

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

const (
	indexHeader = "  INDEX  "
	columnGap   = "  "
)

// RenderList writes rows as a 1-based indexed list:
//
//	  INDEX  NAME     AUTHOR
//	> 1      Sodium   jellysquid3
//
// Columns are padded to the widest cell. The last column is not padded.
func RenderList(w io.Writer, headers []string, rows [][]string) {
	theme := NewTheme(w)
	widths := columnWidths(headers, rows)

	_, _ = fmt.Fprintln(w, theme.TableHeader.Render(indexHeader+joinPadded(headers, widths)))

	for i, row := range rows {
		index := fmt.Sprintf("%-2d", i+1)
		_, _ = fmt.Fprintf(w, "> %s     %s\n", theme.Index.Render(index), joinPadded(row, widths))
	}
}

func columnWidths(headers []string, rows [][]string) []int {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				break
			}
			if n := utf8.RuneCountInString(cell); n > widths[i] {
				widths[i] = n
			}
		}
	}
	return widths
}

func joinPadded(cells []string, widths []int) string {
	var b strings.Builder
	for i, cell := range cells {
		if i >= len(widths) {
			break
		}
		if i > 0 {
			b.WriteString(columnGap)
		}
		b.WriteString(cell)
		if i < len(widths)-1 {
			b.WriteString(strings.Repeat(" ", widths[i]-utf8.RuneCountInString(cell)))
		}
	}
	return b.String()
}
