// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode"

	"payee-scan/internal/observability"
	"payee-scan/internal/rules"
	"payee-scan/internal/tokenizer"
)

const (
	// MinNumericDigits is the shortest digit run emitted as NUMERIC
	MinNumericDigits = 6

	maxIBANLength    = 34
	minIBANLength    = 15
	maxE164Digits    = 15
	maxIBANGroupSize = 4
)

var ibanStart = regexp.MustCompile(`^[A-Z]{2}[0-9]{2}[A-Z0-9]*$`)

// Scanner turns raw text into typed candidates. It holds only read-only
// keyword tables and is safe for concurrent use.
type Scanner struct {
	brands     [][]string
	generic    map[string]bool
	currencies map[string]bool
	codes      map[string]bool
	labels     map[string]bool

	observer *observability.StandardObserver
}

// NewScanner creates a scanner for the given keyword lists
func NewScanner(k Keywords) *Scanner {
	s := &Scanner{
		generic:    toSet(k.GenericBanks),
		currencies: toSet(k.Currencies),
		codes:      toSet(k.Codes),
		labels:     toSet(k.Labels),
	}
	for _, b := range k.Banks {
		if words := strings.Fields(strings.ToLower(b)); len(words) > 0 {
			s.brands = append(s.brands, words)
		}
	}
	return s
}

// SetObserver sets the observability component
func (s *Scanner) SetObserver(observer *observability.StandardObserver) {
	s.observer = observer
}

// WithObserver returns a copy of the scanner that reports to observer. The
// keyword tables are shared.
func (s *Scanner) WithObserver(observer *observability.StandardObserver) *Scanner {
	c := *s
	c.observer = observer
	return &c
}

// GetComponentName returns the component identifier
func (s *Scanner) GetComponentName() string {
	return "candidate_scanner"
}

// Scan returns the candidates of text in order of first appearance
func (s *Scanner) Scan(text string) []Candidate {
	var finishTiming func(bool, map[string]interface{})
	if s.observer != nil {
		finishTiming = s.observer.StartTiming(s.GetComponentName(), "scan", "")
	}

	var out []Candidate
	emit := func(c Candidate) {
		c.Position = len(out)
		out = append(out, c)
	}

	for _, line := range tokenizer.Tokenize(text) {
		toks := line.Tokens
		for i := 0; i < len(toks); {
			tok := toks[i]
			switch tok.Kind {
			case tokenizer.Word:
				if s.isBreaker(tok) {
					i++
					continue
				}
				j := i
				for j < len(toks) && toks[j].Kind == tokenizer.Word && !s.isBreaker(toks[j]) {
					j++
				}
				for _, c := range s.phraseCandidates(wordTexts(toks[i:j]), line.Index, s.fillsLine(toks, i, j)) {
					emit(c)
				}
				i = j
			case tokenizer.Number:
				c, next, ok := s.numberCandidate(toks, i)
				if ok {
					emit(c)
				}
				i = next
			case tokenizer.Mixed:
				c, next := s.mixedCandidate(toks, i)
				emit(c)
				i = next
			default:
				i++
			}
		}
	}

	if finishTiming != nil {
		finishTiming(true, map[string]interface{}{
			"candidates": len(out),
			"numeric":    len(Filter(out, KindNumeric)),
		})
	}
	return out
}

// numberCandidate classifies the digit run starting at toks[i]. ok is false
// when the run is too short to be anything but noise.
func (s *Scanner) numberCandidate(toks []tokenizer.Token, i int) (Candidate, int, bool) {
	tok := toks[i]
	c := Candidate{Text: tok.Text, Line: tok.Line}
	end := i + 1

	if strings.ContainsAny(tok.Text, ".,") {
		c.Kind = KindCurrencyAmount
		c.Context = s.context(toks, i, end, "")
		return c, end, true
	}

	digits := tok.Digits()
	if strings.HasPrefix(tok.Text, "+") || strings.HasPrefix(digits, "00") {
		limit := maxE164Digits
		if !strings.HasPrefix(tok.Text, "+") {
			limit += 2
		}
		intl := digits
		if !strings.HasPrefix(tok.Text, "+") {
			intl = strings.TrimPrefix(digits, "00")
		}
		parts := []string{tok.Text}
		for end < len(toks) && isDigitGroup(toks[end]) &&
			len(digits)+len(toks[end].Digits()) <= limit &&
			!s.isCurrency(neighbour(toks, end+1)) &&
			!numberComplete(toks, end, intl) {
			parts = append(parts, toks[end].Text)
			digits += toks[end].Digits()
			intl += toks[end].Digits()
			end++
		}
		c.Text = strings.Join(parts, " ")
	}

	before, after := neighbour(toks, i-1), neighbour(toks, end)
	switch {
	case s.isCurrency(before):
		c.Kind = KindCurrencyAmount
		c.Context = s.context(toks, i, end, before.Text)
	case s.isCurrency(after):
		c.Kind = KindCurrencyAmount
		c.Context = s.context(toks, i, end, after.Text)
	case len(digits) < MinNumericDigits:
		kw := ""
		if s.isCode(before) {
			kw = before.Text
		} else if s.isCode(after) {
			kw = after.Text
		}
		if kw == "" {
			return c, end, false
		}
		c.Kind = KindCodeLike
		c.Context = s.context(toks, i, end, kw)
	default:
		c.Kind = KindNumeric
		c.Context = s.context(toks, i, end, "")
	}

	if c.Kind != KindNumeric && isDebugMode() {
		fmt.Fprintf(os.Stderr, "[DEBUG] Candidate scanner: %q rejected as %s (keyword %q)\n",
			c.Text, c.Kind, c.Context.Keyword)
	}
	return c, end, true
}

// mixedCandidate handles letter+digit tokens: amounts with a currency
// suffix or prefix, IBANs written in groups, and other codes
func (s *Scanner) mixedCandidate(toks []tokenizer.Token, i int) (Candidate, int) {
	tok := toks[i]
	c := Candidate{Text: tok.Text, Line: tok.Line, Kind: KindCodeLike}
	end := i + 1

	letters := strings.ToLower(strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) {
			return r
		}
		return -1
	}, tok.Text))
	if s.currencies[letters] {
		c.Kind = KindCurrencyAmount
		c.Context = s.context(toks, i, end, letters)
		return c, end
	}

	if ibanStart.MatchString(strings.ToUpper(tok.Text)) {
		parts := []string{tok.Text}
		length := len(tok.Text)
		for end < len(toks) && isIBANGroup(toks[end], end == i+1) && length+len(toks[end].Text) <= maxIBANLength {
			parts = append(parts, toks[end].Text)
			length += len(toks[end].Text)
			end++
		}
		if length >= minIBANLength {
			c.Text = strings.Join(parts, " ")
		} else {
			end = i + 1
		}
	}
	c.Context = s.context(toks, i, end, "")
	return c, end
}

// phraseCandidates splits a run of words into NAME and BANK candidates.
// A brand keyword binds its own words plus any generic keywords that follow
// it; the words around it stay NAME phrases. Without a brand, a generic
// keyword binds the whole run.
func (s *Scanner) phraseCandidates(words []string, line int, fullLine bool) []Candidate {
	if len(words) == 0 {
		return nil
	}
	lower := make([]string, len(words))
	for i, w := range words {
		lower[i] = strings.ToLower(w)
	}

	for k := range lower {
		n := s.brandAt(lower, k)
		if n == 0 {
			continue
		}
		end := k + n
		for end < len(lower) && s.generic[lower[end]] {
			end++
		}
		var out []Candidate
		if k > 0 {
			out = append(out, nameCandidate(words[:k], line, false))
		}
		out = append(out, Candidate{
			Text:  strings.Join(words[k:end], " "),
			Kind:  KindBank,
			Line:  line,
			Words: end - k,
		})
		return append(out, s.phraseCandidates(words[end:], line, false)...)
	}

	for _, w := range lower {
		if s.generic[w] {
			return []Candidate{{
				Text:  strings.Join(words, " "),
				Kind:  KindBank,
				Line:  line,
				Words: len(words),
			}}
		}
	}
	return []Candidate{nameCandidate(words, line, fullLine)}
}

// brandAt returns how many words of a brand keyword match at lower[k:]
func (s *Scanner) brandAt(lower []string, k int) int {
	for _, brand := range s.brands {
		if k+len(brand) > len(lower) {
			continue
		}
		match := true
		for j, w := range brand {
			if lower[k+j] != w {
				match = false
				break
			}
		}
		if match {
			return len(brand)
		}
	}
	// single words such as "Sonibank" or "Ecobank"
	if w := lower[k]; len(w) > len("bank") && strings.HasSuffix(w, "bank") {
		return 1
	}
	return 0
}

func nameCandidate(words []string, line int, fullLine bool) Candidate {
	return Candidate{
		Text:     strings.Join(words, " "),
		Kind:     KindName,
		Line:     line,
		Words:    len(words),
		FullLine: fullLine,
	}
}

// fillsLine reports whether toks[i:j] is all the line holds besides labels
func (s *Scanner) fillsLine(toks []tokenizer.Token, i, j int) bool {
	for k, tok := range toks {
		if k >= i && k < j {
			continue
		}
		if tok.Kind != tokenizer.Word || !s.labels[strings.ToLower(tok.Text)] {
			return false
		}
	}
	return true
}

func (s *Scanner) context(toks []tokenizer.Token, i, end int, keyword string) ContextInfo {
	return ContextInfo{
		BeforeText: neighbour(toks, i-1).Text,
		AfterText:  neighbour(toks, end).Text,
		Keyword:    keyword,
	}
}

// isBreaker reports whether a word ends a phrase rather than joining it
func (s *Scanner) isBreaker(tok tokenizer.Token) bool {
	w := strings.ToLower(tok.Text)
	return s.labels[w] || s.currencies[w] || s.codes[w]
}

func (s *Scanner) isCurrency(tok tokenizer.Token) bool {
	switch tok.Kind {
	case tokenizer.Symbol:
		return true
	case tokenizer.Word:
		return s.currencies[strings.ToLower(tok.Text)]
	}
	return false
}

func (s *Scanner) isCode(tok tokenizer.Token) bool {
	return tok.Kind == tokenizer.Word && s.codes[strings.ToLower(tok.Text)]
}

// neighbour returns toks[i] or a zero token when i is out of range
func neighbour(toks []tokenizer.Token, i int) tokenizer.Token {
	if i < 0 || i >= len(toks) {
		return tokenizer.Token{Kind: -1}
	}
	return toks[i]
}

func isDigitGroup(tok tokenizer.Token) bool {
	return tok.Kind == tokenizer.Number && !strings.ContainsAny(tok.Text, ".,+")
}

// isIBANGroup reports whether tok can continue a grouped IBAN. Only the
// group right after the country and check digits (the bank code) may be
// letters alone, so trailing words are never absorbed.
func isIBANGroup(tok tokenizer.Token, bankCode bool) bool {
	if len(tok.Text) > maxIBANGroupSize {
		return false
	}
	hasDigit := false
	for _, r := range strings.ToUpper(tok.Text) {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
		case r >= 'A' && r <= 'Z':
		default:
			return false
		}
	}
	return hasDigit || bankCode
}

// numberComplete reports whether the international digits intl already
// form a possible number that joining toks[j] would spoil: the join makes
// the number impossible, or toks[j] opens an amount such as "70 000".
func numberComplete(toks []tokenizer.Token, j int, intl string) bool {
	if !rules.IsPossibleInternational(intl) {
		return false
	}
	if !rules.IsPossibleInternational(intl + toks[j].Digits()) {
		return true
	}
	return opensThousands(toks, j)
}

// opensThousands reports whether toks[j] is a 1-3 digit group followed by
// a 3 digit group
func opensThousands(toks []tokenizer.Token, j int) bool {
	next := neighbour(toks, j+1)
	return len(toks[j].Digits()) <= 3 && isDigitGroup(next) && len(next.Text) == 3
}

func wordTexts(toks []tokenizer.Token) []string {
	out := make([]string, len(toks))
	for i, tok := range toks {
		out[i] = tok.Text
	}
	return out
}

func toSet(words []string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[strings.ToLower(strings.TrimSpace(w))] = true
	}
	return set
}

// isDebugMode checks if debug logging is enabled
func isDebugMode() bool {
	return os.Getenv("PAYEE_DEBUG") != ""
}
