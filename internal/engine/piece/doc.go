// Package piece implements a piece table: an editable byte sequence built from
// an immutable original file and an append-only edit buffer.
//
// The logical content is the in-order concatenation of a list of pieces. Each
// piece references a span of either the memory-mapped original file or the
// edit buffer. Inserts append to the edit buffer and split at most one piece;
// deletes trim or drop pieces. Neither copies unaffected data, so editing a
// multi-gigabyte file costs time proportional to the number of pieces rather
// than to the file size.
//
// # Snapshots
//
// Pieces are plain values. Pieces returns a copy of the list and SetPieces
// installs one; because the edit buffer only grows, any previously captured
// list remains valid and can be reinstalled to restore earlier content. This is
// the mechanism undo and redo are built on.
//
// # Bulk Access
//
// At is a linear-scan accessor intended for small bounded reads such as BOM
// sniffing. Bulk readers should use Chunks, Bytes or WriteTo.
package piece
