// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package tokenizer

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Kind classifies a token by the characters it holds
type Kind int

const (
	Word   Kind = iota // letters only, may hold inner hyphens or apostrophes
	Number             // digits, optional leading '+', inner '.', ',' or '-' between digits
	Mixed              // letters and digits, e.g. "Ww8470" or "5000NGN"
	Symbol             // a single currency symbol
)

func (k Kind) String() string {
	switch k {
	case Word:
		return "word"
	case Number:
		return "number"
	case Mixed:
		return "mixed"
	case Symbol:
		return "symbol"
	}
	return "unknown"
}

// Token is one word-level unit of the input
type Token struct {
	Text  string
	Kind  Kind
	Line  int // zero-based line index
	Index int // order across the whole text
}

// Digits returns the ASCII digits of the token
func (t Token) Digits() string {
	var b strings.Builder
	for _, r := range t.Text {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Line is the token sequence of one input line
type Line struct {
	Index  int
	Tokens []Token
}

// Normalize folds compatibility forms, fullwidth characters and non-ASCII
// decimal digits to their plain forms and drops invisible format characters.
func Normalize(text string) string {
	t := transform.Chain(
		norm.NFKC,
		width.Fold,
		runes.Remove(runes.In(unicode.Cf)),
		runes.Map(foldDigit),
	)
	out, _, err := transform.String(t, text)
	if err != nil {
		return text
	}
	return strings.ReplaceAll(out, "\r\n", "\n")
}

// Tokenize splits text into lines, then words.
// Whitespace is always a boundary. A '.' or ',' stays inside a token only
// between two digits, so "kaya.5.000" yields "kaya" and "5.000". A '-' or
// apostrophe stays between two letters; a '-' stays between two digits.
// A '+' is kept only when it starts a number. Currency symbols become their
// own tokens; all other punctuation is dropped as a boundary.
func Tokenize(text string) []Line {
	text = Normalize(text)
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var lines []Line
	index := 0
	for i, raw := range strings.Split(text, "\n") {
		line := Line{Index: i}
		for _, tok := range splitLine([]rune(raw)) {
			tok.Line = i
			tok.Index = index
			index++
			line.Tokens = append(line.Tokens, tok)
		}
		lines = append(lines, line)
	}
	return lines
}

func splitLine(rs []rune) []Token {
	var tokens []Token
	var buf []rune

	flush := func() {
		if len(buf) > 0 {
			tokens = append(tokens, Token{Text: string(buf), Kind: classify(buf)})
			buf = buf[:0]
		}
	}
	at := func(i int) rune {
		if i < 0 || i >= len(rs) {
			return 0
		}
		return rs[i]
	}
	last := func() rune {
		if len(buf) == 0 {
			return 0
		}
		return buf[len(buf)-1]
	}

	for i, r := range rs {
		switch {
		case unicode.IsSpace(r):
			flush()
		case unicode.IsLetter(r), isDigit(r):
			buf = append(buf, r)
		case unicode.Is(unicode.Mn, r) && len(buf) > 0:
			buf = append(buf, r)
		case r == '+':
			flush()
			if isDigit(at(i + 1)) {
				buf = append(buf, r)
			}
		case r == '.' || r == ',':
			if isDigit(last()) && isDigit(at(i+1)) {
				buf = append(buf, r)
			} else {
				flush()
			}
		case r == '-' || r == '\'' || r == '’':
			prev, next := last(), at(i+1)
			switch {
			case unicode.IsLetter(prev) && unicode.IsLetter(next):
				buf = append(buf, r)
			case r == '-' && isDigit(prev) && isDigit(next):
				buf = append(buf, r)
			default:
				flush()
			}
		case unicode.Is(unicode.Sc, r):
			flush()
			tokens = append(tokens, Token{Text: string(r), Kind: Symbol})
		default:
			flush()
		}
	}
	flush()
	return tokens
}

func classify(rs []rune) Kind {
	var letters, digits bool
	for _, r := range rs {
		switch {
		case isDigit(r):
			digits = true
		case unicode.IsLetter(r):
			letters = true
		}
	}
	switch {
	case letters && digits:
		return Mixed
	case digits:
		return Number
	}
	return Word
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// zero code points of decimal digit blocks seen in pasted messages
var digitZeros = []rune{
	0x0660, // Arabic-Indic
	0x06F0, // Extended Arabic-Indic
	0x07C0, // NKo
	0x0966, // Devanagari
	0x09E6, // Bengali
	0x0E50, // Thai
	0x1040, // Myanmar
	0xFF10, // Fullwidth
}

func foldDigit(r rune) rune {
	if r < 0x0660 {
		return r
	}
	for _, zero := range digitZeros {
		if r >= zero && r <= zero+9 {
			return '0' + (r - zero)
		}
	}
	return r
}
