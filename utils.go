package streamgate

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxKeyLength is the longest object key accepted, in bytes.
const MaxKeyLength = 1024

// IsValidKey validates that a string can be used as an object key.
// It checks that the key:
//   - is not empty or whitespace-only
//   - is at most MaxKeyLength bytes
//   - is valid UTF-8
//   - does not contain null bytes, control characters (< 0x20) or DEL (0x7f)
//
// Keys are otherwise opaque: "..", "//" and leading or trailing slashes are
// allowed and passed to the backend untouched.
func IsValidKey(key string) bool {
	if strings.TrimFunc(key, unicode.IsSpace) == "" {
		return false
	}

	if len(key) > MaxKeyLength {
		return false
	}

	if !utf8.ValidString(key) {
		return false
	}

	for _, r := range key {
		if r < 0x20 || r == 0x7f {
			return false
		}
	}

	return true
}
