package piece

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/dshills/gridstorm/internal/engine/mmap"
)

// MaxWriteChunk is the largest slice handed to a single Write call when
// streaming pieces out.
const MaxWriteChunk = 1 << 30

// ErrCorrupt indicates the piece list no longer partitions the content.
var ErrCorrupt = errors.New("piece table corrupt")

// Table is a piece table over a mapped file and an edit buffer.
// A Table is not safe for concurrent use.
type Table struct {
	file   *mmap.File
	add    []byte
	pieces []Piece
	size   int64
}

// New creates an empty table with no backing file.
func New() *Table {
	return &Table{}
}

// LoadFromFile maps path and resets the table to a single original piece
// spanning the file, or to no pieces if the file is empty. Any previously
// loaded file is released and the edit buffer is discarded.
func (t *Table) LoadFromFile(path string) error {
	f, err := mmap.Open(path)
	if err != nil {
		return err
	}

	if err := t.Close(); err != nil {
		f.Close()
		return err
	}

	t.file = f
	t.add = nil
	t.pieces = nil
	t.size = f.Len()
	if t.size > 0 {
		t.pieces = []Piece{{Source: Original, Offset: 0, Length: t.size}}
	}
	return nil
}

// Close releases the mapped file. The table is left empty.
func (t *Table) Close() error {
	var err error
	if t.file != nil {
		err = t.file.Close()
		t.file = nil
	}
	t.add = nil
	t.pieces = nil
	t.size = 0
	return err
}

// Len returns the logical size of the content in bytes.
func (t *Table) Len() int64 {
	return t.size
}

// AddedLen returns the size of the edit buffer. It never shrinks.
func (t *Table) AddedLen() int64 {
	return int64(len(t.add))
}

// Pieces returns a copy of the current piece list.
func (t *Table) Pieces() []Piece {
	return Clone(t.pieces)
}

// PieceCount returns the number of pieces.
func (t *Table) PieceCount() int {
	return len(t.pieces)
}

// SetPieces replaces the piece list with a copy of pieces.
// The pieces must reference data that is still present in the backing stores,
// which holds for any list previously returned by Pieces.
func (t *Table) SetPieces(pieces []Piece) {
	t.pieces = Clone(pieces)
	t.size = TotalLen(t.pieces)
}

// data returns the bytes a piece references.
func (t *Table) data(p Piece) []byte {
	if p.Source == Original {
		return t.file.Data()[p.Offset:p.End()]
	}
	return t.add[p.Offset:p.End()]
}

// find locates the piece containing offset and the offset relative to its start.
func (t *Table) find(offset int64) (int, int64, bool) {
	if offset < 0 || offset >= t.size {
		return 0, 0, false
	}
	var pos int64
	for i, p := range t.pieces {
		if offset < pos+p.Length {
			return i, offset - pos, true
		}
		pos += p.Length
	}
	return 0, 0, false
}

// extendable reports whether piece i ends exactly where freshly appended edit
// buffer bytes begin, so the new bytes can be absorbed without a new piece.
func (t *Table) extendable(i int, addOffset int64) bool {
	if i < 0 || i >= len(t.pieces) {
		return false
	}
	p := t.pieces[i]
	return p.Source == Added && p.End() == addOffset
}

// Insert places data at offset. An offset at or past the end appends.
func (t *Table) Insert(offset int64, data []byte) {
	if len(data) == 0 {
		return
	}
	if offset < 0 {
		offset = 0
	}

	addOffset := int64(len(t.add))
	t.add = append(t.add, data...)
	n := int64(len(data))
	np := Piece{Source: Added, Offset: addOffset, Length: n}

	if offset >= t.size {
		last := len(t.pieces) - 1
		if t.extendable(last, addOffset) {
			t.pieces[last].Length += n
		} else {
			t.pieces = append(t.pieces, np)
		}
		t.size += n
		return
	}

	idx, rel, _ := t.find(offset)
	switch {
	case rel == 0 && t.extendable(idx-1, addOffset):
		t.pieces[idx-1].Length += n
	case rel == 0:
		t.pieces = slices.Insert(t.pieces, idx, np)
	default:
		left := t.pieces[idx]
		right := left
		right.Offset += rel
		right.Length -= rel
		left.Length = rel
		t.pieces[idx] = left
		t.pieces = slices.Insert(t.pieces, idx+1, np, right)
	}
	t.size += n
}

// Delete removes length bytes starting at offset. The range is clamped to
// the content; an empty range is a no-op.
func (t *Table) Delete(offset, length int64) {
	if offset < 0 {
		length += offset
		offset = 0
	}
	if length <= 0 || offset >= t.size {
		return
	}
	end := min(offset+length, t.size)

	out := make([]Piece, 0, len(t.pieces)+1)
	var pos int64
	for _, p := range t.pieces {
		start := pos
		pos += p.Length
		if pos <= offset || start >= end {
			out = append(out, p)
			continue
		}
		if start < offset {
			left := p
			left.Length = offset - start
			out = append(out, left)
		}
		if pos > end {
			right := p
			cut := end - start
			right.Offset += cut
			right.Length -= cut
			out = append(out, right)
		}
	}

	t.pieces = out
	t.size -= end - offset
}

// Replace deletes length bytes at offset and inserts data in their place.
func (t *Table) Replace(offset, length int64, data []byte) {
	t.Delete(offset, length)
	t.Insert(offset, data)
}

// At returns the byte at index. It scans the piece list linearly and is
// meant for small bounded reads only.
func (t *Table) At(index int64) (byte, bool) {
	idx, rel, ok := t.find(index)
	if !ok {
		return 0, false
	}
	return t.data(t.pieces[idx])[rel], true
}

// Bytes returns a copy of the content in [start, end), clamped to the content.
func (t *Table) Bytes(start, end int64) []byte {
	start = max(start, 0)
	end = min(end, t.size)
	if end <= start {
		return nil
	}

	out := make([]byte, 0, end-start)
	var pos int64
	for _, p := range t.pieces {
		pStart := pos
		pos += p.Length
		if pos <= start {
			continue
		}
		if pStart >= end {
			break
		}
		d := t.data(p)
		lo := max(start-pStart, 0)
		hi := min(end-pStart, p.Length)
		out = append(out, d[lo:hi]...)
	}
	return out
}

// String returns the full content. For large tables prefer Chunks.
func (t *Table) String() string {
	return string(t.Bytes(0, t.size))
}

// WriteTo streams every piece to w in order, splitting very large pieces
// into MaxWriteChunk sized writes.
func (t *Table) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, p := range t.pieces {
		d := t.data(p)
		for len(d) > 0 {
			chunk := d[:min(len(d), MaxWriteChunk)]
			n, err := w.Write(chunk)
			total += int64(n)
			if err != nil {
				return total, err
			}
			if n < len(chunk) {
				return total, io.ErrShortWrite
			}
			d = d[n:]
		}
	}
	return total, nil
}

// Save writes the content to path. The data is written to a temporary file
// in the destination directory and renamed into place, so saving over the
// currently mapped file is safe.
func (t *Table) Save(path string) (err error) {
	tmp, err := createTemp(path)
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = t.WriteTo(tmp); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("syncing %s: %w", path, err)
	}

	// An existing file keeps its mode; a new one gets 0666 less the umask
	// from createTemp.
	if info, statErr := os.Stat(path); statErr == nil {
		if err = tmp.Chmod(info.Mode().Perm()); err != nil {
			return fmt.Errorf("chmod %s: %w", path, err)
		}
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("renaming into %s: %w", path, err)
	}
	return nil
}

// createTemp creates an empty file next to path. Unlike os.CreateTemp it
// opens with mode 0666 so the process umask decides the permissions.
func createTemp(path string) (*os.File, error) {
	dir, base := filepath.Split(path)
	for range 100 {
		name := filepath.Join(dir, "."+base+"."+strconv.FormatUint(uint64(rand.Uint32()), 36)+".tmp")
		f, err := os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o666)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		return f, err
	}
	return nil, fmt.Errorf("no unused temp name for %s", path)
}

// Check verifies the piece list invariants: every piece is non-empty, lies
// within its backing store, and the lengths sum to Len.
func (t *Table) Check() error {
	var sum int64
	for i, p := range t.pieces {
		if p.Length <= 0 {
			return fmt.Errorf("%w: piece %d has length %d", ErrCorrupt, i, p.Length)
		}
		limit := int64(len(t.add))
		if p.Source == Original {
			limit = t.file.Len()
		}
		if p.Offset < 0 || p.End() > limit {
			return fmt.Errorf("%w: piece %d %s outside store of %d bytes", ErrCorrupt, i, p, limit)
		}
		sum += p.Length
	}
	if sum != t.size {
		return fmt.Errorf("%w: pieces sum to %d, size is %d", ErrCorrupt, sum, t.size)
	}
	return nil
}
