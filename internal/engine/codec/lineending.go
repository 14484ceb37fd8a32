package codec

import "strings"

// LineSniffSize is how many leading bytes DetectLineEnding inspects.
const LineSniffSize = 4096

// LineEnding specifies the row terminator style.
type LineEnding uint8

const (
	LF   LineEnding = iota // Unix: \n
	CRLF                   // Windows: \r\n
)

// String returns the name of the line ending.
func (le LineEnding) String() string {
	if le == CRLF {
		return "crlf"
	}
	return "lf"
}

// Sequence returns the actual line ending characters.
func (le LineEnding) Sequence() string {
	if le == CRLF {
		return "\r\n"
	}
	return "\n"
}

// ParseLineEnding parses "lf" or "crlf".
func ParseLineEnding(s string) (LineEnding, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lf", "\\n", "unix":
		return LF, true
	case "crlf", "\\r\\n", "windows", "dos":
		return CRLF, true
	default:
		return LF, false
	}
}

// Terminator returns the encoded bytes of the line ending in encoding e.
func Terminator(e Encoding, le LineEnding) []byte {
	return Encode(e, le.Sequence())
}

// DetectLineEnding counts line feeds in head, reading whole code units for
// UTF-16, and reports CRLF only when every line feed is preceded by a
// carriage return. The second result is false when head holds no line feed
// at all, in which case LF is returned. At most LineSniffSize bytes are read.
func DetectLineEnding(head []byte, e Encoding) (LineEnding, bool) {
	if len(head) > LineSniffSize {
		head = head[:LineSniffSize]
	}

	var lf, crlf int
	step := UnitSize(e)
	var prev uint16
	for i := 0; i+step <= len(head); i += step {
		var u uint16
		if step == 2 {
			u = Unit(e, head[i], head[i+1])
		} else {
			u = uint16(head[i])
		}
		if u == '\n' {
			lf++
			if i > 0 && prev == '\r' {
				crlf++
			}
		}
		prev = u
	}

	if lf > 0 && crlf == lf {
		return CRLF, true
	}
	return LF, lf > 0
}
