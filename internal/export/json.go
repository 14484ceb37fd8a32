package export

import (
	"bufio"
	"slices"
	"strconv"
	"strings"

	"github.com/tidwall/sjson"
)

// writeJSON writes an array with one object per data row, keyed by the
// header row. Blank or repeated header cells, and cells beyond the header,
// are keyed colN by their 1-based column number.
func writeJSON(w *bufio.Writer, src RowSource) error {
	rows := src.RowCount()
	if rows <= 1 {
		_, err := w.WriteString("[]\n")
		return err
	}

	keys := headerKeys(src.RowCells(0))
	w.WriteString("[\n")
	for r := 1; r < rows; r++ {
		cells := src.RowCells(r)
		for len(keys) < len(cells) {
			keys = append(keys, uniqueKey(keys, columnKey(len(keys))))
		}

		obj := []byte("{}")
		for c, key := range keys {
			value := ""
			if c < len(cells) {
				value = cells[c]
			}
			var err error
			if obj, err = sjson.SetBytes(obj, jsonPath(key), value); err != nil {
				return err
			}
		}

		w.WriteString("  ")
		w.Write(obj)
		if r < rows-1 {
			w.WriteByte(',')
		}
		w.WriteByte('\n')
	}
	_, err := w.WriteString("]\n")
	return err
}

func columnKey(c int) string {
	return "col" + strconv.Itoa(c+1)
}

// headerKeys names each column after its header cell, falling back to colN.
func headerKeys(header []string) []string {
	keys := make([]string, 0, len(header))
	for c, h := range header {
		h = strings.TrimSpace(h)
		if h == "" || slices.Contains(keys, h) {
			h = columnKey(c)
		}
		keys = append(keys, uniqueKey(keys, h))
	}
	return keys
}

func uniqueKey(keys []string, key string) string {
	candidate := key
	for n := 2; slices.Contains(keys, candidate); n++ {
		candidate = key + "_" + strconv.Itoa(n)
	}
	return candidate
}

// jsonPath escapes a key for use as a single sjson path component.
func jsonPath(key string) string {
	var sb strings.Builder
	if key != "" && strings.Trim(key, "0123456789") == "" {
		sb.WriteByte(':')
	}
	for _, r := range key {
		switch r {
		case '.', '*', '?', '|', '#', '@', '\\', ':':
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
