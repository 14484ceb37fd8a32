package engine

import (
	"slices"

	"github.com/dshills/gridstorm/internal/engine/cells"
	"github.com/dshills/gridstorm/internal/engine/codec"
	"github.com/dshills/gridstorm/internal/engine/history"
)

// snapshot records the current state as one undo step. Inside a group the
// group's opening snapshot stands for the whole call.
func (d *Document) snapshot(label string) {
	d.hist.Push(label, d.table.Pieces())
	d.modified = true
	d.logger.Debug("edit", "op", label, "group", d.hist.GroupName())
}

// group opens an undo group whose single snapshot covers every mutation made
// until End is called.
func (d *Document) group(label string) *history.GroupScope {
	d.modified = true
	d.logger.Debug("edit", "op", label)
	return d.hist.GroupScope(label, d.table.Pieces())
}

// encodeRow serializes cells as one terminated row in the document encoding.
func (d *Document) encodeRow(values []string) []byte {
	return codec.Encode(d.encoding, cells.Format(values, d.delimiter)+d.lineEnding.Sequence())
}

// endsWithLineFeed reports whether the last code unit is a line feed.
func (d *Document) endsWithLineFeed() bool {
	w := int64(codec.UnitSize(d.encoding))
	size := d.table.Len()
	if size < w {
		return false
	}
	tail := d.table.Bytes(size-w, size)
	last := uint16(tail[len(tail)-1])
	if w == 2 {
		last = codec.Unit(d.encoding, tail[0], tail[1])
	}
	return last == '\n'
}

// setRow replaces the cells of row i, which must be in range.
func (d *Document) setRow(i int, values []string) {
	start := d.contentStart(i)
	d.table.Replace(start, d.rowEnd(i)-start, d.encodeRow(values))
	d.RebuildRowIndex(nil)
}

// insertRows inserts rows before row index, or appends them when index is
// past the end. Appending to content that lacks a final terminator adds one
// first so the previous last row stays intact.
func (d *Document) insertRows(index int, rows [][]string) {
	var buf []byte
	var at int64
	switch {
	case index < len(d.rows):
		at = d.contentStart(max(index, 0))
	default:
		at = d.table.Len()
		if at > d.bomLen() && !d.endsWithLineFeed() {
			buf = append(buf, codec.Terminator(d.encoding, d.lineEnding)...)
		}
	}
	for _, r := range rows {
		buf = append(buf, d.encodeRow(r)...)
	}
	d.table.Insert(at, buf)
	d.RebuildRowIndex(nil)
}

// rewriteRows passes the cells of every row to fn and writes back the rows
// fn reports as changed. One snapshot is taken before the first write and the
// index is rebuilt once at the end. It returns the number of rows written.
func (d *Document) rewriteRows(label string, fn func(row int, values []string) ([]string, bool)) int {
	n := len(d.rows)
	starts := make([]int64, n)
	ends := make([]int64, n)
	for i := range n {
		starts[i] = d.contentStart(i)
		ends[i] = d.rowEnd(i)
	}

	var shift int64
	written := 0
	for i := range n {
		start, end := starts[i]+shift, ends[i]+shift
		raw := stripTerminator(d.table.Bytes(start, end), d.encoding)
		text := codec.Decode(d.encoding, raw)
		out, ok := fn(i, cells.Parse(text, d.delimiter))
		if !ok {
			continue
		}
		if written == 0 {
			d.snapshot(label)
		}
		data := d.encodeRow(out)
		d.table.Replace(start, end-start, data)
		shift += int64(len(data)) - (end - start)
		written++
	}

	if written > 0 {
		d.RebuildRowIndex(nil)
	}
	return written
}

// UpdateCell sets the cell at (row, col), padding the row with empty cells
// when col is past its end. Out-of-range rows are ignored.
func (d *Document) UpdateCell(row, col int, value string) {
	if row < 0 || row >= len(d.rows) || col < 0 {
		return
	}
	values := d.RowCells(row)
	for len(values) <= col {
		values = append(values, "")
	}
	values[col] = value

	d.snapshot("update cell")
	d.setRow(row, values)
}

// InsertRow inserts a row before index. An index at or past the row count
// appends.
func (d *Document) InsertRow(index int, values []string) {
	d.snapshot("insert row")
	d.insertRows(index, [][]string{values})
}

// DeleteRow removes row index together with its terminator. Out-of-range
// indexes are ignored.
func (d *Document) DeleteRow(index int) {
	if index < 0 || index >= len(d.rows) {
		return
	}
	d.snapshot("delete row")
	start := d.contentStart(index)
	d.table.Delete(start, d.rowEnd(index)-start)
	d.RebuildRowIndex(nil)
}

// InsertColumn inserts a cell holding def at col in every row. Rows shorter
// than col are padded with empty cells first.
func (d *Document) InsertColumn(col int, def string) {
	col = max(col, 0)
	d.rewriteRows("insert column", func(_ int, values []string) ([]string, bool) {
		for len(values) < col {
			values = append(values, "")
		}
		return slices.Insert(values, col, def), true
	})
}

// DeleteColumn removes the cell at col from every row that has one.
func (d *Document) DeleteColumn(col int) {
	if col < 0 {
		return
	}
	d.rewriteRows("delete column", func(_ int, values []string) ([]string, bool) {
		if col >= len(values) {
			return nil, false
		}
		return slices.Delete(values, col, col+1), true
	})
}

// PasteCells writes a block of clipboard text with its top-left cell at
// (row, col). The text's delimiter is tab if present, else comma, else the
// document delimiter. Rows past the end are appended. The whole paste is one
// undo step.
func (d *Document) PasteCells(row, col int, text string) {
	if text == "" || row < 0 || col < 0 {
		return
	}
	grid := cells.ParseGrid(text, cells.PickDelimiter(text, d.delimiter))
	if len(grid) == 0 {
		return
	}

	g := d.group("paste")
	defer g.End()

	for i, vals := range grid {
		r := row + i
		if r >= len(d.rows) {
			values := make([]string, col, col+len(vals))
			d.InsertRow(r, append(values, vals...))
			continue
		}
		values := d.RowCells(r)
		for len(values) < col+len(vals) {
			values = append(values, "")
		}
		copy(values[col:], vals)
		d.setRow(r, values)
	}
}
