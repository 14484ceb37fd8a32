package engine

import "errors"

// Errors returned by document operations.
var (
	// ErrNoPath indicates the document has no file path to reload from.
	ErrNoPath = errors.New("document has no path")

	// ErrUnsupportedFormat indicates an export format the engine cannot write.
	ErrUnsupportedFormat = errors.New("unsupported export format")
)
