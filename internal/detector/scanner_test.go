// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type want struct {
	text string
	kind Kind
}

func summarize(cands []Candidate) []want {
	out := make([]want, 0, len(cands))
	for _, c := range cands {
		out = append(out, want{c.Text, c.Kind})
	}
	return out
}

func TestScanScenarios(t *testing.T) {
	s := NewScanner(DefaultKeywords())

	tests := []struct {
		name  string
		input string
		want  []want
	}{
		{
			name:  "code, phone, name phrase, small numbers",
			input: "Ww8470\n86632243 Adamou baboul gorangobachi 70 000",
			want: []want{
				{"Ww8470", KindCodeLike},
				{"86632243", KindNumeric},
				{"Adamou baboul gorangobachi", KindName},
			},
		},
		{
			name:  "name, account, brand bank, amount",
			input: "HALIMA SULAIMAN\n9035941238\nPALMPAY\nNERA 5000",
			want: []want{
				{"HALIMA SULAIMAN", KindName},
				{"9035941238", KindNumeric},
				{"PALMPAY", KindBank},
				{"5000", KindCurrencyAmount},
			},
		},
		{
			name:  "dot-joined words with amount",
			input: "Aboubakar.damagaram.ta.kaya.5.000\n96316152",
			want: []want{
				{"Aboubakar damagaram ta kaya", KindName},
				{"5.000", KindCurrencyAmount},
				{"96316152", KindNumeric},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, summarize(s.Scan(tt.input)))
		})
	}
}

func TestScanPositionsFollowAppearance(t *testing.T) {
	s := NewScanner(DefaultKeywords())
	cands := s.Scan("Musa Ali 0803123456\n0909876543")
	for i, c := range cands {
		assert.Equal(t, i, c.Position)
	}
	numeric := Filter(cands, KindNumeric)
	require.Len(t, numeric, 2)
	assert.Equal(t, "0803123456", numeric[0].Text)
	assert.Equal(t, "0909876543", numeric[1].Text)
}

func TestShortDigitsNextToCodeKeyword(t *testing.T) {
	s := NewScanner(DefaultKeywords())

	for _, input := range []string{"code 12345", "your OTP: 12345", "PIN 12345 thanks"} {
		t.Run(input, func(t *testing.T) {
			cands := s.Scan(input)
			assert.Empty(t, Filter(cands, KindNumeric))
			codes := Filter(cands, KindCodeLike)
			require.Len(t, codes, 1)
			assert.Equal(t, "12345", codes[0].Text)
			assert.NotEmpty(t, codes[0].Context.Keyword)
		})
	}

	// short runs without a code keyword are not emitted at all
	assert.Empty(t, s.Scan("12345"))
}

func TestAmountsAreNeverNumeric(t *testing.T) {
	s := NewScanner(DefaultKeywords())

	inputs := []string{
		"5,000",
		"12.50",
		"send 250000 NGN",
		"LYD 1500000",
		"₦750000",
		"$ 1200000",
		"1,500,000.00",
		"750000NGN",
	}
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			cands := s.Scan(input)
			assert.Empty(t, Filter(cands, KindNumeric))
			assert.NotEmpty(t, Filter(cands, KindCurrencyAmount))
		})
	}
}

func TestInternationalGroupsAreJoined(t *testing.T) {
	s := NewScanner(DefaultKeywords())

	cands := Filter(s.Scan("Moussa +227 96 31 61 52"), KindNumeric)
	require.Len(t, cands, 1)
	assert.Equal(t, "+227 96 31 61 52", cands[0].Text)
	assert.Equal(t, "22796316152", cands[0].Digits())

	cands = Filter(s.Scan("00218 91 234 5678 500 LYD"), KindNumeric)
	require.Len(t, cands, 1)
	assert.Equal(t, "00218912345678", cands[0].Digits())
}

func TestInternationalJoinStopsAtCompleteNumber(t *testing.T) {
	s := NewScanner(DefaultKeywords())

	tests := []struct {
		name   string
		input  string
		digits string
	}{
		{"amount after contiguous number", "Adamou Issa\n+22796316152 70 000", "22796316152"},
		{"amount after grouped number", "Adamou Issa +227 96 31 61 52 5 000", "22796316152"},
		{"double zero prefix", "0022796316152 70 000", "0022796316152"},
		{"three three four grouping", "Ali +234 803 123 4567", "2348031234567"},
		{"thousands after grouped number", "Ali +234 803 123 4567 70 000", "2348031234567"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cands := Filter(s.Scan(tt.input), KindNumeric)
			require.NotEmpty(t, cands)
			assert.Equal(t, tt.digits, cands[0].Digits())
		})
	}
}

func TestLowercaseIBANGroupsAreJoined(t *testing.T) {
	s := NewScanner(DefaultKeywords())

	cands := Filter(s.Scan("John Smith\ngb82 west 1234 5698 7654 32"), KindCodeLike)
	require.Len(t, cands, 1)
	assert.Equal(t, "GB82WEST12345698765432", strings.ToUpper(cands[0].Compact()))

	// words after a short code are not taken as IBAN groups
	cands = Filter(s.Scan("ab12 from the bank road"), KindCodeLike)
	require.Len(t, cands, 1)
	assert.Equal(t, "ab12", cands[0].Text)
}

func TestIBANGroupsAreJoined(t *testing.T) {
	s := NewScanner(DefaultKeywords())

	cands := Filter(s.Scan("Omar Said\nGB82 WEST 1234 5698 7654 32\nLondon"), KindCodeLike)
	require.Len(t, cands, 1)
	assert.Equal(t, "GB82WEST12345698765432", cands[0].Compact())

	// a short code that merely looks like a country prefix stays alone
	cands = Filter(s.Scan("AB12 CD"), KindCodeLike)
	require.Len(t, cands, 1)
	assert.Equal(t, "AB12", cands[0].Text)
}

func TestBankPhrases(t *testing.T) {
	s := NewScanner(DefaultKeywords())

	tests := []struct {
		input string
		want  []want
	}{
		{"Halima Sulaiman Zenith Bank", []want{{"Halima Sulaiman", KindName}, {"Zenith Bank", KindBank}}},
		{"Bank of Africa", []want{{"Bank of Africa", KindBank}}},
		{"Ali Musa First Bank Kano", []want{{"Ali Musa", KindName}, {"First Bank", KindBank}, {"Kano", KindName}}},
		{"Sonibank Niamey", []want{{"Sonibank", KindBank}, {"Niamey", KindName}}},
		{"مصرف الجمهورية", []want{{"مصرف الجمهورية", KindBank}}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, summarize(s.Scan(tt.input)))
		})
	}
}

func TestFullLineIgnoresLabels(t *testing.T) {
	s := NewScanner(DefaultKeywords())

	names := Filter(s.Scan("Name: Halima Sulaiman\nKano 0803123456"), KindName)
	require.Len(t, names, 2)
	assert.True(t, names[0].FullLine)
	assert.Equal(t, "Halima Sulaiman", names[0].Text)
	assert.False(t, names[1].FullLine)
}

func TestCustomKeywords(t *testing.T) {
	s := NewScanner(DefaultKeywords().Merge(Keywords{Banks: []string{"taamiouli"}, Currencies: []string{"cedi"}}))

	cands := s.Scan("Issa Taamiouli\n250000 cedi")
	assert.Equal(t, []want{{"Issa", KindName}, {"Taamiouli", KindBank}, {"250000", KindCurrencyAmount}}, summarize(cands))
}

func TestScanEmpty(t *testing.T) {
	s := NewScanner(DefaultKeywords())
	assert.Empty(t, s.Scan(""))
	assert.Empty(t, s.Scan("\n\n"))
}

func TestCandidateHelpers(t *testing.T) {
	c := Candidate{Text: "+227 96-31"}
	assert.Equal(t, "2279631", c.Digits())
	assert.Equal(t, "2279631", c.Compact())
	assert.False(t, c.HasLetters())
	assert.True(t, Candidate{Text: "Ww8470"}.HasLetters())
}
