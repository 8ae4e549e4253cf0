package engine

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// normalize returns script as UTF-8 text without a byte order mark. Bytes
// that are not valid UTF-8 are read as ISO-8859-1.
func normalize(script []byte) string {
	script = bytes.TrimPrefix(script, utf8BOM)
	if utf8.Valid(script) {
		return string(script)
	}
	text, err := charmap.ISO8859_1.NewDecoder().Bytes(script)
	if err != nil {
		return string(bytes.ToValidUTF8(script, []byte("�")))
	}
	return string(text)
}
