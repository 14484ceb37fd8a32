// Package export renders a grid of cells in document formats other than
// delimited text: HTML tables, Markdown tables and JSON.
package export

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnknownFormat is returned for a format name or value the package does
// not know.
var ErrUnknownFormat = errors.New("unknown export format")

// Format selects an output format.
type Format uint8

const (
	HTML Format = iota
	Markdown
	JSON
	formatCount
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case HTML:
		return "html"
	case Markdown:
		return "markdown"
	case JSON:
		return "json"
	default:
		return fmt.Sprintf("format(%d)", uint8(f))
	}
}

// Extension returns the conventional file extension, with the dot.
func (f Format) Extension() string {
	switch f {
	case HTML:
		return ".html"
	case Markdown:
		return ".md"
	case JSON:
		return ".json"
	default:
		return ""
	}
}

// Valid reports whether f is a known format.
func (f Format) Valid() bool {
	return f < formatCount
}

// ParseFormat parses a format name or file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "html", "htm":
		return HTML, nil
	case "markdown", "md":
		return Markdown, nil
	case "json":
		return JSON, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// FormatForPath infers the format from a file name's extension.
func FormatForPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// RowSource is the grid being exported.
type RowSource interface {
	RowCount() int
	RowCells(row int) []string
}

// Write renders src to w in format f.
func Write(w io.Writer, src RowSource, f Format) error {
	bw := bufio.NewWriter(w)
	var err error
	switch f {
	case HTML:
		err = writeHTML(bw, src)
	case Markdown:
		err = writeMarkdown(bw, src)
	case JSON:
		err = writeJSON(bw, src)
	default:
		return fmt.Errorf("%w: %v", ErrUnknownFormat, f)
	}
	if err != nil {
		return err
	}
	return bw.Flush()
}

// WriteFile renders src into the file at path, replacing it.
func WriteFile(path string, src RowSource, f Format) (err error) {
	if !f.Valid() {
		return fmt.Errorf("%w: %v", ErrUnknownFormat, f)
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	defer func() {
		err = errors.Join(err, out.Close())
	}()

	if err := Write(out, src, f); err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	return nil
}
