package engine

import (
	"bytes"

	"github.com/dshills/gridstorm/internal/engine/cells"
	"github.com/dshills/gridstorm/internal/engine/codec"
)

// RebuildRowIndex rescans the whole document and records the start offset
// of every row. A line feed inside a quoted field does not end a row.
//
// progress, if non-nil, is called roughly once per progress interval of
// scanned bytes and once with 1 at the end.
func (d *Document) RebuildRowIndex(progress ProgressFunc) {
	d.rows = d.rows[:0]
	size := d.table.Len()
	if size == 0 {
		report(progress, 1)
		return
	}

	s := rowScanner{
		rows:     append(d.rows, 0),
		enc:      d.encoding,
		size:     size,
		interval: d.progressInterval,
		next:     d.progressInterval,
		progress: progress,
	}
	if codec.UnitSize(d.encoding) == 2 {
		s.scanWide(d)
	} else {
		s.scanBytes(d)
	}

	// A final terminator does not open another row.
	if n := len(s.rows); n > 1 && s.rows[n-1] == size {
		s.rows = s.rows[:n-1]
	}
	d.rows = s.rows
	report(progress, 1)
}

type rowScanner struct {
	rows     []int64
	enc      codec.Encoding
	quoted   bool
	size     int64
	interval int64
	next     int64
	progress ProgressFunc
}

// tick reports progress once pos passes the next interval boundary.
func (s *rowScanner) tick(pos int64) {
	if s.progress == nil || pos < s.next {
		return
	}
	report(s.progress, float64(pos)/float64(s.size))
	for s.next <= pos {
		s.next += s.interval
	}
}

// scanBytes handles single-byte code units. Neither the quote nor the line
// feed can occur inside a multi-byte UTF-8 sequence, so a byte search is
// exact.
func (s *rowScanner) scanBytes(d *Document) {
	it := d.table.Chunks()
	for it.Next() {
		chunk := it.Chunk()
		base := it.Offset()
		for start := 0; start < len(chunk); {
			end := min(start+int(s.interval), len(chunk))
			seg := chunk[start:end]
			for j := 0; j < len(seg); j++ {
				k := bytes.IndexAny(seg[j:], "\"\n")
				if k < 0 {
					break
				}
				j += k
				if seg[j] == cells.Quote {
					s.quoted = !s.quoted
				} else if !s.quoted {
					s.rows = append(s.rows, base+int64(start+j)+1)
				}
			}
			start = end
			s.tick(base + int64(end))
		}
	}
}

// scanWide handles UTF-16. Code units start at even offsets; a unit split
// across two chunks is carried over.
func (s *rowScanner) scanWide(d *Document) {
	var carry byte
	hasCarry := false

	it := d.table.Chunks()
	for it.Next() {
		chunk := it.Chunk()
		base := it.Offset()
		i := 0
		if hasCarry && len(chunk) > 0 {
			s.unit(codec.Unit(s.enc, carry, chunk[0]), base+1)
			hasCarry = false
			i = 1
		}
		for ; i+1 < len(chunk); i += 2 {
			s.unit(codec.Unit(s.enc, chunk[i], chunk[i+1]), base+int64(i)+2)
		}
		if i < len(chunk) {
			carry = chunk[i]
			hasCarry = true
		}
		s.tick(base + int64(len(chunk)))
	}
}

// unit processes one code unit ending at offset end.
func (s *rowScanner) unit(u uint16, end int64) {
	switch u {
	case cells.Quote:
		s.quoted = !s.quoted
	case '\n':
		if !s.quoted {
			s.rows = append(s.rows, end)
		}
	}
}

func report(progress ProgressFunc, fraction float64) {
	if progress != nil {
		progress(min(fraction, 1))
	}
}

// RowCount returns the number of rows. An empty document has none.
func (d *Document) RowCount() int {
	return len(d.rows)
}

// RowStartOffset returns the byte offset at which row i starts, or the
// content length when i is past the last row.
func (d *Document) RowStartOffset(i int) int64 {
	if i < 0 {
		return 0
	}
	if i >= len(d.rows) {
		return d.table.Len()
	}
	return d.rows[i]
}

// rowEnd returns the offset one past row i, terminator included.
func (d *Document) rowEnd(i int) int64 {
	if i+1 < len(d.rows) {
		return d.rows[i+1]
	}
	return d.table.Len()
}

// bomLen returns the length of the byte-order mark at the start of the
// content, if the content starts with the mark of the document encoding.
func (d *Document) bomLen() int64 {
	bom := codec.BOM(d.encoding)
	if len(bom) == 0 || d.table.Len() < int64(len(bom)) {
		return 0
	}
	for i, b := range bom {
		if c, _ := d.table.At(int64(i)); c != b {
			return 0
		}
	}
	return int64(len(bom))
}

// contentStart returns where the cells of row i begin: the row start,
// skipping the byte-order mark on row 0.
func (d *Document) contentStart(i int) int64 {
	if i == 0 {
		return d.bomLen()
	}
	return d.RowStartOffset(i)
}

// stripTerminator removes a trailing LF and then a trailing CR, reading whole
// code units in the given encoding.
func stripTerminator(raw []byte, e codec.Encoding) []byte {
	w := codec.UnitSize(e)
	for _, u := range []uint16{'\n', '\r'} {
		n := len(raw)
		if n < w {
			break
		}
		last := uint16(raw[n-1])
		if w == 2 {
			last = codec.Unit(e, raw[n-2], raw[n-1])
		}
		if last == u {
			raw = raw[:n-w]
		}
	}
	return raw
}
