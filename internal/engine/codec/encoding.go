// Package codec handles the byte-level text encodings a tabular file may use:
// byte-order-mark detection, line-ending detection and conversion between
// encoded bytes and Go strings.
package codec

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Encoding identifies the encoding of a document's bytes.
type Encoding uint8

const (
	UTF8    Encoding = iota // UTF-8, with or without BOM
	UTF16LE                 // UTF-16 little endian
	UTF16BE                 // UTF-16 big endian
	Legacy                  // Single-byte code page (Windows-1252)
)

// String returns the canonical name of the encoding.
func (e Encoding) String() string {
	switch e {
	case UTF8:
		return "utf-8"
	case UTF16LE:
		return "utf-16le"
	case UTF16BE:
		return "utf-16be"
	case Legacy:
		return "windows-1252"
	default:
		return "unknown"
	}
}

// ParseEncoding parses an encoding name as produced by String.
// A few common aliases are accepted.
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "utf-8", "utf8", "":
		return UTF8, nil
	case "utf-16le", "utf16le", "utf-16", "utf16":
		return UTF16LE, nil
	case "utf-16be", "utf16be":
		return UTF16BE, nil
	case "windows-1252", "cp1252", "ansi", "legacy", "latin1", "iso-8859-1":
		return Legacy, nil
	default:
		return UTF8, fmt.Errorf("unknown encoding %q", s)
	}
}

// BOM byte sequences.
var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// DetectEncoding inspects the leading bytes of content for a byte-order mark.
// Content without a recognized BOM is assumed to be UTF-8.
func DetectEncoding(head []byte) Encoding {
	switch {
	case bytes.HasPrefix(head, bomUTF8):
		return UTF8
	case bytes.HasPrefix(head, bomUTF16LE):
		return UTF16LE
	case bytes.HasPrefix(head, bomUTF16BE):
		return UTF16BE
	default:
		return UTF8
	}
}

// BOM returns the byte-order mark for the encoding, or nil for Legacy.
func BOM(e Encoding) []byte {
	switch e {
	case UTF8:
		return bomUTF8
	case UTF16LE:
		return bomUTF16LE
	case UTF16BE:
		return bomUTF16BE
	default:
		return nil
	}
}

// UnitSize returns the width in bytes of one code unit.
func UnitSize(e Encoding) int {
	if e == UTF16LE || e == UTF16BE {
		return 2
	}
	return 1
}

// Unit assembles one 16-bit code unit from two bytes in the byte order of e.
// For single-byte encodings only b0 is used.
func Unit(e Encoding, b0, b1 byte) uint16 {
	switch e {
	case UTF16LE:
		return uint16(b0) | uint16(b1)<<8
	case UTF16BE:
		return uint16(b0)<<8 | uint16(b1)
	default:
		return uint16(b0)
	}
}

func textEncoding(e Encoding) encoding.Encoding {
	switch e {
	case UTF16LE:
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	case UTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	case Legacy:
		return charmap.Windows1252
	default:
		return unicode.UTF8
	}
}

// Decode converts encoded bytes to a string. Malformed sequences decode to
// U+FFFD; a dangling odd byte in UTF-16 input is dropped.
func Decode(e Encoding, b []byte) string {
	if len(b) == 0 {
		return ""
	}
	if UnitSize(e) == 2 && len(b)%2 != 0 {
		b = b[:len(b)-1]
	}
	out, err := textEncoding(e).NewDecoder().Bytes(b)
	if err != nil {
		return strings.ToValidUTF8(string(b), "\uFFFD")
	}
	return string(out)
}

// Encode converts a string to bytes in encoding e. Runes the encoding
// cannot represent are replaced with the encoding's substitute character.
func Encode(e Encoding, s string) []byte {
	if s == "" {
		return nil
	}
	if e == UTF8 {
		return []byte(s)
	}
	out, err := encoding.ReplaceUnsupported(textEncoding(e).NewEncoder()).Bytes([]byte(s))
	if err != nil {
		return []byte(s)
	}
	return out
}
