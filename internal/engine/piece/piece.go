package piece

import "fmt"

// Source identifies which backing store a piece references.
type Source uint8

const (
	Original Source = iota // The memory-mapped file as opened
	Added                  // The append-only edit buffer
)

// String returns the string representation of the source.
func (s Source) String() string {
	switch s {
	case Original:
		return "original"
	case Added:
		return "added"
	default:
		return "unknown"
	}
}

// Piece is a contiguous span of one backing store.
type Piece struct {
	Source Source
	Offset int64 // Start within the backing store
	Length int64
}

// String returns a human-readable representation of the piece.
func (p Piece) String() string {
	return fmt.Sprintf("%s[%d:%d]", p.Source, p.Offset, p.Offset+p.Length)
}

// End returns the offset just past the piece within its backing store.
func (p Piece) End() int64 {
	return p.Offset + p.Length
}

// Clone returns a copy of a piece list.
func Clone(pieces []Piece) []Piece {
	if pieces == nil {
		return nil
	}
	out := make([]Piece, len(pieces))
	copy(out, pieces)
	return out
}

// TotalLen returns the sum of the piece lengths.
func TotalLen(pieces []Piece) int64 {
	var n int64
	for _, p := range pieces {
		n += p.Length
	}
	return n
}
