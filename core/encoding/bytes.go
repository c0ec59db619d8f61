package encoding

import (
	"encoding/hex"
	"unicode/utf8"
)

// StrToByteArray converts s to one byte per character, keeping the low
// eight bits of each code point. Bytes that are not valid UTF-8 are copied
// unchanged. This is the legacy conversion Raffia keys are built with, not a
// text encoding: for ASCII input it equals []byte(s).
func StrToByteArray(s string) []byte {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			out = append(out, s[i])
		} else {
			out = append(out, byte(r))
		}
		i += size
	}
	return out
}

// CharLen returns the number of characters in s, counting each invalid
// UTF-8 byte as one character. It matches len(StrToByteArray(s)).
func CharLen(s string) int {
	return utf8.RuneCountInString(s)
}

// ToHex encodes b as lowercase hex, two digits per byte, with no separator or prefix.
func ToHex(b []byte) string {
	return hex.EncodeToString(b)
}
