package memory

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"

	"github.com/wippyai/wasm-dom/errors"
)

// Bytes returns a live window over n bytes at addr. Writes through the
// returned slice land in guest memory.
func (v *View) Bytes(addr, n uint32) ([]byte, error) {
	return v.span(errors.PhaseLoad, "bytes", addr, int(n))
}

// String decodes n bytes at addr as UTF-8. Malformed sequences decode to
// U+FFFD instead of failing.
func (v *View) String(addr, n uint32) (string, error) {
	b, err := v.span(errors.PhaseLoad, "string", addr, int(n))
	if err != nil {
		return "", err
	}
	return decodeUTF8(b), nil
}

// CString reads the pointer stored at addr and decodes the null-terminated
// bytes it points to. ok is false when the pointer is 0.
func (v *View) CString(addr uint32) (s string, ok bool, err error) {
	ptr, err := v.LoadPtr(addr)
	if err != nil {
		return "", false, err
	}
	if ptr == 0 {
		return "", false, nil
	}
	if uint64(ptr) >= uint64(len(v.buf)) {
		return "", false, errors.OutOfBounds(errors.PhaseLoad, "cstring", uint64(ptr), 1, len(v.buf))
	}
	n := bytes.IndexByte(v.buf[ptr:], 0)
	if n < 0 {
		return "", false, errors.New(errors.PhaseLoad, errors.KindOutOfBounds).
			Type("cstring").
			Value(ptr).
			Detail("no terminator between %d and end of memory (%d bytes)", ptr, len(v.buf)).
			Build()
	}
	return decodeUTF8(v.buf[ptr : int(ptr)+n]), true, nil
}

// StoreString writes s as UTF-8 at addr and returns the number of bytes
// written, which differs from the rune count for non-ASCII text. The whole
// encoding must fit the buffer.
func (v *View) StoreString(addr uint32, s string) (int, error) {
	b, err := v.span(errors.PhaseStore, "string", addr, len(s))
	if err != nil {
		return 0, err
	}
	return copy(b, s), nil
}

// StoreStringN writes at most capacity bytes of s at addr. Truncation never
// splits a multi-byte character. Returns the number of bytes written.
func (v *View) StoreStringN(addr uint32, s string, capacity uint32) (int, error) {
	b, err := v.span(errors.PhaseStore, "string", addr, int(capacity))
	if err != nil {
		return 0, err
	}
	return copy(b, TruncateString(s, int(capacity))), nil
}

func decodeUTF8(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	out, err := unicode.UTF8.NewDecoder().Bytes(b)
	if err != nil {
		return strings.ToValidUTF8(string(b), "\uFFFD")
	}
	return string(out)
}

// TruncateString shortens s to at most n bytes without splitting a
// multi-byte character.
func TruncateString(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
