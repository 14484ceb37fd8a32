package export

import (
	"bufio"
	"strings"

	"github.com/rivo/uniseg"
)

// minRuleWidth is the shortest separator Markdown renderers accept.
const minRuleWidth = 3

var markdownEscaper = strings.NewReplacer(
	`|`, `\|`,
	"\r\n", "<br>",
	"\n", "<br>",
	"\r", "",
)

// writeMarkdown writes a pipe table. Row 0 is the header and every other row
// is cut or padded to the header's cell count. Columns are padded to their
// widest cell in terminal display width so the source reads as a table.
func writeMarkdown(w *bufio.Writer, src RowSource) error {
	rows := src.RowCount()
	if rows == 0 {
		return nil
	}

	header := src.RowCells(0)
	cols := len(header)
	grid := make([][]string, rows)
	widths := make([]int, cols)
	for c := range widths {
		widths[c] = minRuleWidth
	}

	for r := range rows {
		cells := header
		if r > 0 {
			cells = src.RowCells(r)
		}
		line := make([]string, cols)
		for c := 0; c < cols && c < len(cells); c++ {
			line[c] = markdownEscaper.Replace(cells[c])
			widths[c] = max(widths[c], uniseg.StringWidth(line[c]))
		}
		grid[r] = line
	}

	writeMarkdownRow(w, grid[0], widths)
	w.WriteByte('|')
	for _, width := range widths {
		w.WriteByte(' ')
		w.WriteString(strings.Repeat("-", width))
		w.WriteString(" |")
	}
	w.WriteByte('\n')
	for _, line := range grid[1:] {
		writeMarkdownRow(w, line, widths)
	}
	return nil
}

func writeMarkdownRow(w *bufio.Writer, line []string, widths []int) {
	w.WriteByte('|')
	for c, cell := range line {
		w.WriteByte(' ')
		w.WriteString(cell)
		w.WriteString(strings.Repeat(" ", widths[c]-uniseg.StringWidth(cell)))
		w.WriteString(" |")
	}
	w.WriteByte('\n')
}
