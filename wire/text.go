package wire

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

// DecodeLossy converts raw bytes to UTF-8 text. Invalid sequences are
// replaced with U+FFFD.
func DecodeLossy(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	out, err := unicode.UTF8.NewDecoder().Bytes(b)
	if err != nil {
		return strings.ToValidUTF8(string(b), "\uFFFD")
	}
	return string(out)
}

// DecodeCharset decodes b from the named character set. Empty, UTF-8 and
// unknown names fall back to DecodeLossy.
func DecodeCharset(b []byte, charset string) string {
	charset = strings.TrimSpace(charset)
	if charset == "" {
		return DecodeLossy(b)
	}
	enc, err := htmlindex.Get(charset)
	if err != nil || enc == unicode.UTF8 {
		return DecodeLossy(b)
	}
	out, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return DecodeLossy(b)
	}
	return DecodeLossy(out)
}
