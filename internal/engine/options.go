package engine

import (
	"log/slog"

	"github.com/dshills/gridstorm/internal/engine/codec"
	"github.com/dshills/gridstorm/internal/engine/history"
)

// Default configuration values.
const (
	DefaultDelimiter        = ','
	DefaultMaxUndoEntries   = history.DefaultMaxEntries
	DefaultSampleThreshold  = 1000
	DefaultSampleRows       = 100
	DefaultColumnCount      = 26
	DefaultProgressInterval = 1 << 20
)

// Option configures a Document during creation.
type Option func(*Document)

// WithDelimiter sets the cell delimiter.
func WithDelimiter(r rune) Option {
	return func(d *Document) {
		if r != 0 {
			d.delimiter = r
		}
	}
}

// WithEncoding sets the encoding assumed for files that carry no byte-order
// mark, and the encoding of a document created without a file.
func WithEncoding(e codec.Encoding) Option {
	return func(d *Document) {
		d.defaultEncoding = e
		d.encoding = e
	}
}

// WithLineEnding sets the line ending used when a file contains no line
// feed to detect one from.
func WithLineEnding(le codec.LineEnding) Option {
	return func(d *Document) {
		d.defaultLineEnding = le
		d.lineEnding = le
	}
}

// WithMaxUndoEntries sets the maximum number of undo snapshots.
func WithMaxUndoEntries(max int) Option {
	return func(d *Document) {
		if max > 0 {
			d.maxUndoEntries = max
		}
	}
}

// WithSampleThreshold sets the row count above which MaxColumnCount samples
// only the leading rows instead of scanning the whole document.
func WithSampleThreshold(rows int) Option {
	return func(d *Document) {
		if rows > 0 {
			d.sampleThreshold = rows
		}
	}
}

// WithProgressInterval sets how many bytes the row index scans between
// progress reports.
func WithProgressInterval(bytes int64) Option {
	return func(d *Document) {
		if bytes > 0 {
			d.progressInterval = bytes
		}
	}
}

// WithLogger sets the logger. The document adds its own doc_id attribute.
func WithLogger(l *slog.Logger) Option {
	return func(d *Document) {
		if l != nil {
			d.logger = l
		}
	}
}
