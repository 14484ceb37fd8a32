package engine

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dshills/gridstorm/internal/engine/codec"
	"github.com/dshills/gridstorm/internal/engine/history"
	"github.com/dshills/gridstorm/internal/engine/piece"
	"github.com/dshills/gridstorm/internal/export"
)

// ProgressFunc receives the fraction of the document scanned so far, in
// [0, 1]. A final call with 1 is always made.
type ProgressFunc func(fraction float64)

// Document is a tabular view over a piece table.
//
// A Document is not safe for concurrent use.
type Document struct {
	id     uuid.UUID
	path   string
	table  *piece.Table
	rows   []int64
	hist   *history.History
	logger *slog.Logger

	delimiter  rune
	encoding   codec.Encoding
	lineEnding codec.LineEnding
	modified   bool

	// Configuration
	defaultEncoding   codec.Encoding
	defaultLineEnding codec.LineEnding
	maxUndoEntries    int
	sampleThreshold   int
	progressInterval  int64
}

// New creates an empty Document with the given options.
func New(opts ...Option) *Document {
	d := &Document{
		id:               uuid.New(),
		table:            piece.New(),
		logger:           slog.Default(),
		delimiter:        DefaultDelimiter,
		maxUndoEntries:   DefaultMaxUndoEntries,
		sampleThreshold:  DefaultSampleThreshold,
		progressInterval: DefaultProgressInterval,
	}

	for _, opt := range opts {
		opt(d)
	}

	d.hist = history.New(d.maxUndoEntries)
	d.logger = d.logger.With("doc_id", d.id.String())
	return d
}

// ID returns the document's session identifier.
func (d *Document) ID() uuid.UUID {
	return d.id
}

// Load replaces the document content with the file at path. Encoding and
// line ending are detected from the leading bytes, the row index is rebuilt
// and undo history is cleared.
//
// On error the previous content is left untouched.
func (d *Document) Load(path string, progress ProgressFunc) error {
	if err := d.table.LoadFromFile(path); err != nil {
		d.logger.Warn("load failed", "path", path, "error", err)
		return fmt.Errorf("load %s: %w", path, err)
	}

	d.path = path
	d.hist.Clear()
	d.detect()
	d.RebuildRowIndex(progress)
	d.modified = false

	d.logger.Info("document loaded",
		"path", path,
		"bytes", d.table.Len(),
		"rows", len(d.rows),
		"encoding", d.encoding.String(),
		"line_ending", d.lineEnding.String(),
	)
	return nil
}

// Reload loads the document again from its path.
func (d *Document) Reload(progress ProgressFunc) error {
	if d.path == "" {
		return ErrNoPath
	}
	return d.Load(d.path, progress)
}

// detect sniffs encoding and line ending from the head of the content.
func (d *Document) detect() {
	head := d.head(codec.LineSniffSize)

	d.encoding = d.defaultEncoding
	e := codec.DetectEncoding(head)
	if bom := codec.BOM(e); len(bom) > 0 && bytes.HasPrefix(head, bom) {
		d.encoding = e
	}

	d.lineEnding = d.defaultLineEnding
	if le, ok := codec.DetectLineEnding(head, d.encoding); ok {
		d.lineEnding = le
	}
}

// head returns up to n leading bytes of the content.
func (d *Document) head(n int64) []byte {
	return d.table.Bytes(0, min(n, d.table.Len()))
}

// Import reads the file at path with its own encoding detection and appends
// its rows to the end of the document as a single undoable action.
func (d *Document) Import(path string) error {
	src := New(
		WithDelimiter(d.delimiter),
		WithEncoding(d.defaultEncoding),
		WithLineEnding(d.defaultLineEnding),
		WithLogger(d.logger),
	)
	if err := src.Load(path, nil); err != nil {
		return fmt.Errorf("import: %w", err)
	}
	defer src.Close()

	n := src.RowCount()
	if n == 0 {
		return nil
	}

	rows := make([][]string, n)
	for i := range n {
		rows[i] = src.RowCells(i)
	}

	d.snapshot("import")
	d.insertRows(d.RowCount(), rows)

	d.logger.Info("rows imported", "path", path, "rows", n)
	return nil
}

// Save writes the current content to path and makes it the document path.
func (d *Document) Save(path string) error {
	if err := d.table.Save(path); err != nil {
		d.logger.Warn("save failed", "path", path, "error", err)
		return fmt.Errorf("save %s: %w", path, err)
	}
	d.path = path
	d.modified = false
	d.logger.Info("document saved", "path", path, "bytes", d.table.Len(), "edit_bytes", d.table.AddedLen())
	return nil
}

// Export writes the grid to path in the given format.
func (d *Document) Export(path string, f export.Format) error {
	if !f.Valid() {
		return fmt.Errorf("%w: %v", ErrUnsupportedFormat, f)
	}
	if err := export.WriteFile(path, d, f); err != nil {
		d.logger.Warn("export failed", "path", path, "format", f.String(), "error", err)
		return err
	}
	d.logger.Info("document exported", "path", path, "format", f.String(), "rows", len(d.rows))
	return nil
}

// Close releases the mapped file. The document is empty afterwards.
func (d *Document) Close() error {
	d.rows = nil
	d.hist.Clear()
	return d.table.Close()
}

// Path returns the file the document was loaded from or last saved to.
func (d *Document) Path() string {
	return d.path
}

// Len returns the content length in bytes.
func (d *Document) Len() int64 {
	return d.table.Len()
}

// Modified reports whether the document changed since it was loaded or saved.
func (d *Document) Modified() bool {
	return d.modified
}

// Delimiter returns the cell delimiter.
func (d *Document) Delimiter() rune {
	return d.delimiter
}

// SetDelimiter changes the cell delimiter. Row boundaries do not depend on
// the delimiter, so the index is kept.
func (d *Document) SetDelimiter(r rune) {
	if r != 0 {
		d.delimiter = r
	}
}

// Encoding returns the document encoding.
func (d *Document) Encoding() codec.Encoding {
	return d.encoding
}

// SetEncoding reinterprets the document bytes in a different encoding and
// rebuilds the row index.
func (d *Document) SetEncoding(e codec.Encoding) {
	if e == d.encoding {
		return
	}
	d.encoding = e
	d.RebuildRowIndex(nil)
	d.logger.Debug("encoding changed", "encoding", e.String(), "rows", len(d.rows))
}

// LineEnding returns the line ending used for rows the document writes.
func (d *Document) LineEnding() codec.LineEnding {
	return d.lineEnding
}

// SetLineEnding changes the line ending used for rows written from now on.
func (d *Document) SetLineEnding(le codec.LineEnding) {
	d.lineEnding = le
}
