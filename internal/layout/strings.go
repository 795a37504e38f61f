package layout

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// Fixed string field widths, terminator included.
const (
	NameLen = 128
	UnitLen = 16
)

// decodeString reads a fixed-width, NUL-terminated field encoded in the
// producer's single-byte ANSI code page (Windows-1252).
func decodeString(field []byte) (string, error) {
	if i := bytes.IndexByte(field, 0); i >= 0 {
		field = field[:i]
	}
	if isASCII(field) {
		return string(field), nil
	}
	return charmap.Windows1252.NewDecoder().String(string(field))
}

// encodeString writes s into field as Windows-1252, truncated so at least
// one terminating NUL remains. Runes outside the code page become '?'.
func encodeString(field []byte, s string) {
	clear(field)
	if len(field) == 0 {
		return
	}
	raw := []byte(s)
	if !isASCII(raw) {
		enc := encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder())
		if out, err := enc.Bytes(raw); err == nil {
			raw = out
		}
	}
	copy(field[:len(field)-1], raw)
}

func isASCII(b []byte) bool {
	for _, c := range b {
		if c >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
