package backend

import (
	"fmt"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// Escape encodes script so that it can sit inside a single-quoted JavaScript
// string literal and be restored with the global unescape() function.
//
// ASCII letters, digits and "_.-/" pass through unchanged, every other ASCII
// byte becomes %XX and every non-ASCII code point becomes one or two %uXXXX
// UTF-16 units. Invalid UTF-8 bytes are encoded as U+FFFD.
func Escape(script string) string {
	var b strings.Builder
	b.Grow(len(script))

	for _, r := range script {
		switch {
		case isSafe(r):
			b.WriteRune(r)
		case r < utf8.RuneSelf:
			fmt.Fprintf(&b, "%%%02X", r)
		case r > 0xFFFF:
			hi, lo := utf16.EncodeRune(r)
			fmt.Fprintf(&b, "%%u%04X%%u%04X", hi, lo)
		default:
			fmt.Fprintf(&b, "%%u%04X", r)
		}
	}
	return b.String()
}

func isSafe(r rune) bool {
	switch {
	case 'a' <= r && r <= 'z', 'A' <= r && r <= 'Z', '0' <= r && r <= '9':
		return true
	case r == '_', r == '.', r == '-', r == '/':
		return true
	}
	return false
}
