// Package encoding provides the text helpers the query builders depend on:
// backslash-escape resolution, one-byte-per-character encoding and hex output.
package encoding

import (
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/alecthomas/participle/v2/lexer"

	apperrors "github.com/FocuswithJustin/anchorleak/core/errors"
)

// escapeLexer splits text into literal runs and backslash sequences.
// Rules are tried in order, so the well-formed escapes come before Invalid.
var escapeLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "UnicodeBraced", Pattern: `\\u\{[0-9a-fA-F]{1,6}\}`},
	{Name: "Unicode", Pattern: `\\u[0-9a-fA-F]{4}`},
	{Name: "Hex", Pattern: `\\x[0-9a-fA-F]{2}`},
	{Name: "Octal", Pattern: `\\(?:[0-3][0-7]{2}|[0-7]{1,2})`},
	{Name: "Simple", Pattern: `\\[abtnvfr"'\\]`},
	{Name: "Invalid", Pattern: `\\(?:x[0-9a-fA-F]?|u\{[0-9a-fA-F]*\}?|u[0-9a-fA-F]{0,3}|[\s\S])?`},
	{Name: "Literal", Pattern: `[^\\]+`},
})

var escapeSymbols = lexer.SymbolsByRune(escapeLexer)

var simpleEscapes = map[byte]rune{
	'a':  0x07,
	'b':  '\b',
	't':  '\t',
	'n':  '\n',
	'v':  '\v',
	'f':  '\f',
	'r':  '\r',
	'"':  '"',
	'\'': '\'',
	'\\': '\\',
}

// ParseEscapedChars resolves backslash escape sequences in s.
//
// Supported sequences:
//   - \a \b \t \n \v \f \r \" \' \\
//   - octal \0 to \377 (three digits only when the first is 0-3)
//   - \xNN (exactly two hex digits)
//   - \uNNNN, with UTF-16 surrogate pairs combined
//   - \u{N} to \u{NNNNNN}
//
// Each resolved sequence is one character. Any other backslash sequence
// fails with an *errors.EscapeError.
func ParseEscapedChars(s string) (string, error) {
	if !strings.Contains(s, `\`) {
		return s, nil
	}

	lex, err := escapeLexer.LexString("", s)
	if err != nil {
		return "", apperrors.NewEscape(0, s, err.Error())
	}

	var sb strings.Builder
	sb.Grow(len(s))

	// pendingHigh holds a \uD800-\uDBFF escape waiting for its low half.
	var pendingHigh *lexer.Token
	flushHigh := func() error {
		if pendingHigh == nil {
			return nil
		}
		tok := pendingHigh
		pendingHigh = nil
		return apperrors.NewEscape(tok.Pos.Offset, tok.Value, "unpaired surrogate")
	}

	for {
		tok, err := lex.Next()
		if err != nil {
			return "", apperrors.NewEscape(tok.Pos.Offset, tok.Value, err.Error())
		}
		if tok.EOF() {
			break
		}

		name := escapeSymbols[tok.Type]
		if name != "Unicode" {
			if err := flushHigh(); err != nil {
				return "", err
			}
		}

		switch name {
		case "Literal":
			sb.WriteString(tok.Value)

		case "Simple":
			sb.WriteRune(simpleEscapes[tok.Value[1]])

		case "Octal":
			sb.WriteRune(mustParseRune(tok.Value[1:], 8))

		case "Hex":
			sb.WriteRune(mustParseRune(tok.Value[2:], 16))

		case "Unicode":
			r := mustParseRune(tok.Value[2:], 16)
			switch {
			case utf16.IsSurrogate(r) && r < 0xDC00:
				if err := flushHigh(); err != nil {
					return "", err
				}
				t := tok
				pendingHigh = &t
			case utf16.IsSurrogate(r):
				if pendingHigh == nil {
					return "", apperrors.NewEscape(tok.Pos.Offset, tok.Value, "unpaired surrogate")
				}
				high := mustParseRune(pendingHigh.Value[2:], 16)
				pendingHigh = nil
				sb.WriteRune(utf16.DecodeRune(high, r))
			default:
				if err := flushHigh(); err != nil {
					return "", err
				}
				sb.WriteRune(r)
			}

		case "UnicodeBraced":
			r := mustParseRune(tok.Value[3:len(tok.Value)-1], 16)
			if r > utf8.MaxRune || utf16.IsSurrogate(r) {
				return "", apperrors.NewEscape(tok.Pos.Offset, tok.Value, "code point out of range")
			}
			sb.WriteRune(r)

		default:
			return "", apperrors.NewEscape(tok.Pos.Offset, tok.Value, invalidReason(tok.Value))
		}
	}

	if err := flushHigh(); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// mustParseRune parses digits already constrained by the lexer patterns.
func mustParseRune(digits string, base int) rune {
	v, err := strconv.ParseUint(digits, base, 32)
	if err != nil {
		panic("encoding: lexer accepted bad digits " + strconv.Quote(digits))
	}
	return rune(v)
}

func invalidReason(seq string) string {
	switch {
	case seq == `\`:
		return "trailing backslash"
	case strings.HasPrefix(seq, `\x`):
		return `\x needs exactly two hex digits`
	case strings.HasPrefix(seq, `\u{`):
		return `\u{...} needs one to six hex digits`
	case strings.HasPrefix(seq, `\u`):
		return `\u needs exactly four hex digits`
	default:
		return "unknown escape"
	}
}
