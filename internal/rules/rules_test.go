// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package rules

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)

	for _, code := range []string{"NE", "NG", "LY", "US", "AE", "EG", "SA", "TN", "FR", "DE", "GB", "TR"} {
		assert.True(t, reg.Supports(code), "expected %s to be registered", code)
	}
	assert.Equal(t, reg.Len(), len(reg.Codes()))
	assert.IsIncreasing(t, reg.Codes())
}

func TestLookupPhoneRule(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)

	tests := []struct {
		code        string
		callingCode string
		lengths     []int
		leadingZero bool
	}{
		{"NE", "227", []int{8}, true},
		{"ng", "234", []int{10}, true},
		{" LY ", "218", []int{9}, true},
		{"US", "1", []int{10}, false},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			rule, err := reg.LookupPhoneRule(tt.code)
			require.NoError(t, err)
			assert.Equal(t, tt.callingCode, rule.CallingCode)
			assert.Equal(t, tt.lengths, rule.NSNLengths)
			assert.Equal(t, tt.leadingZero, rule.AllowLeadingZero)
		})
	}
}

func TestLookupAccountRule(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)

	ng, err := reg.LookupAccountRule("NG")
	require.NoError(t, err)
	assert.Equal(t, KindNUBAN, ng.Kind)
	assert.Equal(t, ChecksumNUBANMod10, ng.Checksum)
	assert.True(t, ng.AllowsLength(10))

	gb, err := reg.LookupAccountRule("GB")
	require.NoError(t, err)
	assert.Equal(t, KindIBAN, gb.Kind)
	assert.Equal(t, CharsetAlnum, gb.Charset)
	assert.Equal(t, []int{22}, gb.Lengths())
}

func TestLookupUnsupportedCountry(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)

	for _, code := range []string{"XX", "", "NIGERIA"} {
		_, err := reg.LookupPhoneRule(code)
		assert.True(t, errors.Is(err, ErrUnsupportedCountry), "phone %q", code)
		_, err = reg.LookupAccountRule(code)
		assert.True(t, errors.Is(err, ErrUnsupportedCountry), "account %q", code)
	}
}

func TestLookupReturnsCopies(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)

	rule, err := reg.LookupPhoneRule("NE")
	require.NoError(t, err)
	rule.NSNLengths[0] = 99

	again, err := reg.LookupPhoneRule("NE")
	require.NoError(t, err)
	assert.Equal(t, []int{8}, again.NSNLengths)
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	content := `
countries:
  NE:
    name: Niger
    phone:
      nsn_lengths: [8, 9]
      allow_leading_zero: true
  GH:
    name: Ghana
    phone:
      nsn_lengths: [9]
      allow_leading_zero: true
    account:
      kind: LOCAL
      length_set: [13, 16]
      charset: DIGITS
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	reg, err := Load(path)
	require.NoError(t, err)

	ne, err := reg.LookupPhoneRule("NE")
	require.NoError(t, err)
	assert.Equal(t, "227", ne.CallingCode, "calling code derived from region")
	assert.Equal(t, []int{8, 9}, ne.NSNLengths)
	assert.Nil(t, ne.LocalPattern)

	_, err = reg.LookupAccountRule("NE")
	assert.ErrorIs(t, err, ErrUnsupportedCountry, "override replaces the whole country entry")

	gh, err := reg.LookupAccountRule("GH")
	require.NoError(t, err)
	assert.Equal(t, ChecksumNone, gh.Checksum)
	assert.True(t, gh.AllowsLength(16))
	assert.False(t, gh.AllowsLength(14))

	assert.True(t, reg.Supports("NG"), "built-in countries are kept")
}

func TestParseRejectsBadRules(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad code", "countries:\n  NGA:\n    phone: {calling_code: '234', nsn_lengths: [10]}\n"},
		{"wrong calling code", "countries:\n  NG:\n    phone: {calling_code: '227', nsn_lengths: [10]}\n"},
		{"no lengths", "countries:\n  NG:\n    phone: {calling_code: '234'}\n"},
		{"bad pattern", "countries:\n  NG:\n    phone: {nsn_lengths: [10], local_pattern: '^[0-'}\n"},
		{"unknown kind", "countries:\n  NG:\n    account: {kind: SWIFT, length: 10, charset: DIGITS}\n"},
		{"iban digits", "countries:\n  GB:\n    account: {kind: IBAN, length: 22, charset: DIGITS, checksum: IBAN_MOD97}\n"},
		{"nuban length", "countries:\n  NG:\n    account: {kind: NUBAN, length: 11, charset: DIGITS, checksum: NUBAN_MOD10}\n"},
		{"empty entry", "countries:\n  NG:\n    name: Nigeria\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/rules.yaml")
	assert.Error(t, err)
}

func TestSplitCallingCode(t *testing.T) {
	tests := []struct {
		digits string
		code   string
		rest   string
		ok     bool
	}{
		{"22796316152", "227", "96316152", true},
		{"12025550123", "1", "2025550123", true},
		{"971501234567", "971", "501234567", true},
		{"2348031234567", "234", "8031234567", true},
		{"0123", "", "0123", false},
	}
	for _, tt := range tests {
		t.Run(tt.digits, func(t *testing.T) {
			code, rest, ok := SplitCallingCode(tt.digits)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.rest, rest)
		})
	}
}

func TestIsPossibleInternational(t *testing.T) {
	tests := []struct {
		digits string
		want   bool
	}{
		{"22796316152", true},
		{"2279631615270", false},
		{"227963161", false},
		{"2348031234567", true},
		{"0022796316152", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.digits, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPossibleInternational(tt.digits))
		})
	}
}

func TestMinNSNLength(t *testing.T) {
	assert.Equal(t, 10, PhoneRule{NSNLengths: []int{11, 10}}.MinNSNLength())
	assert.Equal(t, 0, PhoneRule{}.MinNSNLength())
}
