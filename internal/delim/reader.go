package delim

import (
	"bufio"
	"bytes"
	"strings"
	"unicode/utf8"
)

// Lines longer than this abort the scan.
const maxLineBytes = 4 * 1024 * 1024

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// skipBOM discards a UTF-8 byte order mark at the start of br, if present.
func skipBOM(br *bufio.Reader) {
	lead, err := br.Peek(len(utf8BOM))
	if err == nil && bytes.Equal(lead, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
}

// sanitizeLine replaces invalid UTF-8 sequences with U+FFFD.
func sanitizeLine(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	return strings.ToValidUTF8(s, string(utf8.RuneError))
}
