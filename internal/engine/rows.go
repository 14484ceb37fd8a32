package engine

import (
	"strings"

	"github.com/dshills/gridstorm/internal/engine/cells"
	"github.com/dshills/gridstorm/internal/engine/codec"
)

// RowRaw returns the bytes of row i without its line terminator, or nil when
// i is out of range.
func (d *Document) RowRaw(i int) []byte {
	if i < 0 || i >= len(d.rows) {
		return nil
	}
	raw := d.table.Bytes(d.rows[i], d.rowEnd(i))
	return stripTerminator(raw, d.encoding)
}

// rowText returns the decoded text of row i without terminator or BOM.
func (d *Document) rowText(i int) string {
	raw := d.table.Bytes(d.contentStart(i), d.rowEnd(i))
	text := codec.Decode(d.encoding, stripTerminator(raw, d.encoding))
	if i == 0 {
		text = strings.TrimPrefix(text, "\uFEFF")
	}
	return text
}

// RowCells returns the parsed cells of row i. A row in range always has at
// least one cell; an out-of-range row has none.
func (d *Document) RowCells(i int) []string {
	if i < 0 || i >= len(d.rows) {
		return nil
	}
	return cells.Parse(d.rowText(i), d.delimiter)
}

// MaxColumnCount returns the widest row's cell count. Documents with more
// rows than the sample threshold are estimated from their leading rows.
// A document with no rows reports DefaultColumnCount.
func (d *Document) MaxColumnCount() int {
	n := len(d.rows)
	if n > d.sampleThreshold {
		n = min(n, DefaultSampleRows)
	}

	widest := 0
	for i := range n {
		widest = max(widest, len(d.RowCells(i)))
	}
	if widest == 0 {
		return DefaultColumnCount
	}
	return widest
}

// RangeAsText returns the rectangle from (r0, c0) to (r1, c1) inclusive as
// tab-separated text with CRLF between rows. Rows past the end are skipped
// and missing cells are empty.
func (d *Document) RangeAsText(r0, c0, r1, c1 int) string {
	r0, c0 = max(r0, 0), max(c0, 0)
	r1 = min(r1, len(d.rows)-1)
	if r0 > r1 || c0 > c1 {
		return ""
	}

	grid := make([][]string, 0, r1-r0+1)
	for r := r0; r <= r1; r++ {
		row := d.RowCells(r)
		out := make([]string, c1-c0+1)
		for c := c0; c <= c1 && c < len(row); c++ {
			out[c-c0] = row[c]
		}
		grid = append(grid, out)
	}
	return cells.FormatRange(grid)
}
