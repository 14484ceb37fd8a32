package piece

// ChunkIterator iterates over the piece payloads of a table in order.
// The table must not be modified during iteration.
type ChunkIterator struct {
	t      *Table
	idx    int
	offset int64
	chunk  []byte
}

// Chunks returns an iterator over all piece payloads.
func (t *Table) Chunks() *ChunkIterator {
	return &ChunkIterator{t: t, idx: -1}
}

// Next advances to the next chunk.
// Returns true if there is a chunk, false if iteration is complete.
func (it *ChunkIterator) Next() bool {
	if it.idx >= 0 && it.idx < len(it.t.pieces) {
		it.offset += it.t.pieces[it.idx].Length
	}
	it.idx++
	if it.idx >= len(it.t.pieces) {
		it.chunk = nil
		return false
	}
	it.chunk = it.t.data(it.t.pieces[it.idx])
	return true
}

// Chunk returns the current chunk. The slice aliases the backing store and
// must not be modified.
func (it *ChunkIterator) Chunk() []byte {
	return it.chunk
}

// Offset returns the logical offset of the start of the current chunk.
func (it *ChunkIterator) Offset() int64 {
	return it.offset
}
