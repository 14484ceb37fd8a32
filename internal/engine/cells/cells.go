// Package cells implements the quoted-field grammar used for rows: parsing a
// row into cells, serializing cells back with minimal quoting, and the
// tab-separated interchange format used for clipboard copy and paste.
//
// The grammar is RFC 4180 style with a configurable single-rune delimiter.
// A double quote opens a quoted span, a doubled quote inside the span is a
// literal quote, and a lone quote closes the span. Delimiters and newlines
// inside a quoted span are data.
package cells

import (
	"strings"
	"unicode/utf8"
)

// Quote is the quoting character.
const Quote = '"'

// Parse splits one row of text into cells. The row's own terminator is
// expected to be stripped already; carriage returns and line feeds outside
// quotes are dropped. The result always has at least one cell.
func Parse(text string, delim rune) []string {
	cells := make([]string, 0, 8)
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
			cells = append(cells, cur.String())
			cur.Reset()
		case '\r', '\n':
		default:
			cur.WriteRune(r)
		}
	}

	return append(cells, cur.String())
}

// NeedsQuote reports whether cell must be quoted to survive a round trip.
func NeedsQuote(cell string, delim rune) bool {
	return strings.ContainsRune(cell, delim) || strings.ContainsAny(cell, "\"\r\n")
}

// QuoteCell wraps cell in quotes, doubling embedded quotes.
func QuoteCell(cell string) string {
	return `"` + strings.ReplaceAll(cell, `"`, `""`) + `"`
}

// Format serializes cells into one row, quoting only the cells that need it.
// No terminator is appended.
func Format(cells []string, delim rune) string {
	var sb strings.Builder
	for i, c := range cells {
		if i > 0 {
			sb.WriteRune(delim)
		}
		if NeedsQuote(c, delim) {
			sb.WriteString(QuoteCell(c))
		} else {
			sb.WriteString(c)
		}
	}
	return sb.String()
}
