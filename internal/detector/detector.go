// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector

import (
	"strings"
	"unicode"
)

// Kind is the provisional classification of a scanned span
type Kind string

const (
	KindName           Kind = "NAME"
	KindNumeric        Kind = "NUMERIC"
	KindCurrencyAmount Kind = "CURRENCY_AMOUNT"
	KindCodeLike       Kind = "CODE_LIKE"
	KindBank           Kind = "BANK"
)

// ContextInfo stores the neighbourhood a candidate was classified in
type ContextInfo struct {
	// Tokens immediately before and after the candidate on the same line
	BeforeText string
	AfterText  string

	// Keyword that caused a reclassification, e.g. "NGN" or "code"
	Keyword string
}

// Candidate is a span of text provisionally classified as a name, number,
// amount, code or bank
type Candidate struct {
	Text     string
	Kind     Kind
	Position int // order of first appearance
	Line     int

	// Words is the word count of NAME and BANK candidates
	Words int
	// FullLine is set when a NAME is the only content of its line, ignoring labels
	FullLine bool

	Context ContextInfo
}

// Digits returns the ASCII digits of the candidate text
func (c Candidate) Digits() string {
	var b strings.Builder
	for _, r := range c.Text {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Compact returns the candidate's letters and digits with everything else removed
func (c Candidate) Compact() string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, c.Text)
}

// HasLetters reports whether the candidate holds any letter
func (c Candidate) HasLetters() bool {
	return strings.IndexFunc(c.Text, unicode.IsLetter) >= 0
}

// Filter returns the candidates of the given kind, keeping their order
func Filter(candidates []Candidate, kind Kind) []Candidate {
	var out []Candidate
	for _, c := range candidates {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// Keywords configures the word lists the scanner classifies with
type Keywords struct {
	// Banks are brand names; a match binds only its own words
	Banks []string `yaml:"bank_keywords"`
	// GenericBanks are institution words; a match binds the whole phrase
	GenericBanks []string `yaml:"generic_bank_keywords"`
	// Currencies reject adjacent digit runs as amounts
	Currencies []string `yaml:"currency_tokens"`
	// Codes mark short adjacent digit runs as one-time codes
	Codes []string `yaml:"code_keywords"`
	// Labels are dropped from phrases, e.g. "name" in "name: Halima"
	Labels []string `yaml:"label_words"`
}

// DefaultKeywords returns the built-in word lists
func DefaultKeywords() Keywords {
	return Keywords{
		Banks: []string{
			"palmpay", "opay", "moniepoint", "kuda", "gtbank", "gtb", "zenith",
			"access", "uba", "first bank", "firstbank", "ecobank", "wema", "fidelity",
			"sterling", "polaris", "fcmb", "stanbic", "keystone", "jaiz", "providus",
			"sonibank", "orabank", "coris", "bank of africa", "wahda", "jumhouria",
			"مصرف الجمهورية", "مصرف الوحدة",
		},
		GenericBanks: []string{
			"bank", "banque", "banco", "microfinance", "mfb", "مصرف", "بنك",
		},
		Currencies: []string{
			"lyd", "ngn", "usd", "eur", "gbp", "xof", "cfa", "fcfa", "aed", "egp",
			"sar", "tnd", "tl", "nera", "naira", "dinar", "dinars", "dollar",
			"dollars", "euro", "euros", "riyal", "dirham", "دينار", "جنيه",
			"$", "€", "₦", "£",
		},
		Codes: []string{"code", "otp", "pin", "passcode", "كود", "رمز"},
		Labels: []string{
			"name", "nom", "account", "acct", "acc", "number", "num", "no", "numero",
			"phone", "tel", "telephone", "mobile", "whatsapp", "compte", "city",
			"ville", "amount", "montant", "iban", "rib", "send", "sent", "transfer",
			"please", "pls", "thanks", "thank", "merci", "envoi", "envoyer",
		},
	}
}

// Merge appends other's entries to k
func (k Keywords) Merge(other Keywords) Keywords {
	return Keywords{
		Banks:        append(append([]string{}, k.Banks...), other.Banks...),
		GenericBanks: append(append([]string{}, k.GenericBanks...), other.GenericBanks...),
		Currencies:   append(append([]string{}, k.Currencies...), other.Currencies...),
		Codes:        append(append([]string{}, k.Codes...), other.Codes...),
		Labels:       append(append([]string{}, k.Labels...), other.Labels...),
	}
}
