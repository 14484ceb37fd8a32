package cells

import (
	"strings"
	"unicode/utf8"
)

// PickDelimiter chooses the field delimiter for pasted text: tab if the
// text contains one, otherwise comma if it contains one, otherwise fallback.
func PickDelimiter(text string, fallback rune) rune {
	switch {
	case strings.ContainsRune(text, '\t'):
		return '\t'
	case strings.ContainsRune(text, ','):
		return ','
	default:
		return fallback
	}
}

// ParseGrid parses multi-row text into a grid of cells using the same quoted
// field grammar as Parse. An unquoted line feed ends a row and carriage
// returns outside quotes are ignored. A trailing line feed does not produce
// an extra empty row. Rows may have differing lengths.
func ParseGrid(text string, delim rune) [][]string {
	var grid [][]string
	var row []string
	var cur strings.Builder
	inQuotes := false

	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		i += size

		if inQuotes {
			if r != Quote {
				cur.WriteRune(r)
				continue
			}
			if i < len(text) && text[i] == Quote {
				cur.WriteByte(Quote)
				i++
				continue
			}
			inQuotes = false
			continue
		}

		switch r {
		case Quote:
			inQuotes = true
		case delim:
			row = append(row, cur.String())
			cur.Reset()
		case '\n':
			row = append(row, cur.String())
			cur.Reset()
			grid = append(grid, row)
			row = nil
		case '\r':
		default:
			cur.WriteRune(r)
		}
	}

	if cur.Len() > 0 || len(row) > 0 {
		grid = append(grid, append(row, cur.String()))
	}
	return grid
}

// FormatRange renders a grid as tab-separated text with CRLF between rows,
// the layout spreadsheet applications put on the clipboard. Cells containing
// a tab, quote or newline are quoted.
func FormatRange(rows [][]string) string {
	var sb strings.Builder
	for r, row := range rows {
		if r > 0 {
			sb.WriteString("\r\n")
		}
		for c, cell := range row {
			if c > 0 {
				sb.WriteByte('\t')
			}
			if NeedsQuote(cell, '\t') {
				sb.WriteString(QuoteCell(cell))
			} else {
				sb.WriteString(cell)
			}
		}
	}
	return sb.String()
}
