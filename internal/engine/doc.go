// Package engine provides the tabular document engine for Gridstorm.
//
// A Document presents a delimited text file (CSV, TSV and friends) as a grid
// of rows and cells without ever copying the file into memory. The original
// bytes are memory mapped and edits are recorded in a piece table, so opening
// a multi-gigabyte file costs one scan to build the row index.
//
// # Architecture
//
// The engine is built on several sub-packages:
//
//   - mmap: read-only memory mapping of the source file
//   - piece: piece table over the mapped file and an append-only edit buffer
//   - codec: BOM and line-ending detection, encoding and decoding of text
//   - cells: RFC 4180 style cell parsing and serialization
//   - history: snapshot based undo/redo with grouping
//
// # Rows
//
// The row index holds the byte offset at which every row starts. It is built
// by a single pass over the document that toggles a quoted state on every
// quote character and starts a new row after each line feed seen outside
// quotes. Cell parsing applies the same toggling rule, so a quoted field may
// contain line feeds without splitting the row.
//
// The index is rebuilt in full after each mutation.
//
// # Undo
//
// Every public mutator records exactly one snapshot of the piece list before
// it changes anything. Composite operations such as PasteCells, Import and
// ReplaceAll group their inner edits so that a single Undo reverts the whole
// call.
//
// # Basic Usage
//
//	doc := engine.New()
//	if err := doc.Load("people.csv", nil); err != nil {
//		return err
//	}
//	defer doc.Close()
//
//	doc.UpdateCell(1, 2, "Berlin")
//	doc.InsertRow(doc.RowCount(), []string{"Ada", "36", "London"})
//
//	if err := doc.Save("people.csv"); err != nil {
//		return err
//	}
//
// # Thread Safety
//
// A Document is not safe for concurrent use. Callers that share one across
// goroutines must serialize access themselves.
package engine
