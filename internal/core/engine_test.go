// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payee-scan/internal/config"
	"payee-scan/internal/observability"
)

func newEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := BuildEngine(nil)
	require.NoError(t, err)
	return e
}

func TestExtractScenarios(t *testing.T) {
	e := newEngine(t)

	tests := []struct {
		name string
		req  Request
		want Result
	}{
		{
			name: "phone with name and city",
			req:  Request{Text: "Ww8470\n86632243 Adamou baboul gorangobachi 70 000", CountryCode: "NE", Mode: ModePhone},
			want: Result{
				FullName:           "Adamou",
				PhoneNumber:        "086632243",
				City:               "baboul gorangobachi",
				AccountNumberValid: No,
				PhoneNumberValid:   Yes,
			},
		},
		{
			name: "nuban account with bank",
			req:  Request{Text: "HALIMA SULAIMAN\n9035941238\nPALMPAY\nNERA 5000", CountryCode: "NG", Mode: ModeAccount},
			want: Result{
				FullName:           "HALIMA SULAIMAN",
				BankName:           "PALMPAY",
				AccountNumber:      "9035941238",
				AccountNumberValid: Yes,
				PhoneNumberValid:   No,
			},
		},
		{
			name: "dot-joined words",
			req:  Request{Text: "Aboubakar.damagaram.ta.kaya.5.000\n96316152", CountryCode: "NE", Mode: ModePhone},
			want: Result{
				FullName:           "Aboubakar",
				PhoneNumber:        "096316152",
				City:               "damagaram ta kaya",
				AccountNumberValid: No,
				PhoneNumberValid:   Yes,
			},
		},
		{
			name: "foreign calling code",
			req:  Request{Text: "Salem Ali\n+971 50 123 4567", CountryCode: "LY", Mode: ModePhone},
			want: Result{
				FullName:           "Salem Ali",
				PhoneNumber:        "00971501234567",
				AccountNumberValid: No,
				PhoneNumberValid:   No,
				ValidationError:    "calling code +971 ≠ +218",
			},
		},
		{
			name: "iban account",
			req:  Request{Text: "Omar Said\nGB82 WEST 1234 5698 7654 32\nLondon", CountryCode: "GB", Mode: ModeAccount},
			want: Result{
				FullName:           "Omar Said",
				City:               "London",
				AccountNumber:      "GB82WEST12345698765432",
				AccountNumberValid: Yes,
				PhoneNumberValid:   No,
			},
		},
		{
			name: "bad nuban checksum",
			req:  Request{Text: "Ali Musa 0123456789 Opay", CountryCode: "ng", Mode: ModeAccount},
			want: Result{
				FullName:           "Ali Musa",
				BankName:           "Opay",
				AccountNumber:      "0123456789",
				AccountNumberValid: No,
				PhoneNumberValid:   No,
				ValidationError:    "bad checksum",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Extract(tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractIgnoresAmountsAndCodes(t *testing.T) {
	e := newEngine(t)

	res, err := e.Extract(Request{Text: "Moussa 750000 NGN code 12345\n96316152", CountryCode: "NE", Mode: ModePhone})
	require.NoError(t, err)
	assert.Equal(t, "096316152", res.PhoneNumber)
	assert.Equal(t, Yes, res.PhoneNumberValid)

	res, err = e.Extract(Request{Text: "send 1,500,000.00 to 9035941238", CountryCode: "NG", Mode: ModeAccount})
	require.NoError(t, err)
	assert.Equal(t, "9035941238", res.AccountNumber)
	assert.Equal(t, Yes, res.AccountNumberValid)
}

func TestExtractPhoneFollowedByAmount(t *testing.T) {
	e := newEngine(t)

	for _, text := range []string{
		"Adamou Issa\n+22796316152 70 000",
		"Adamou Issa +227 96 31 61 52 5 000",
	} {
		t.Run(text, func(t *testing.T) {
			res, err := e.Extract(Request{Text: text, CountryCode: "NE", Mode: ModePhone})
			require.NoError(t, err)
			assert.Equal(t, "0022796316152", res.PhoneNumber)
			assert.Equal(t, Yes, res.PhoneNumberValid)
			assert.Empty(t, res.ValidationError)
		})
	}
}

func TestExtractLowercaseGroupedIBAN(t *testing.T) {
	e := newEngine(t)

	res, err := e.Extract(Request{Text: "John Smith\ngb82 west 1234 5698 7654 32", CountryCode: "GB", Mode: ModeAccount})
	require.NoError(t, err)
	assert.Equal(t, "GB82WEST12345698765432", res.AccountNumber)
	assert.Equal(t, Yes, res.AccountNumberValid)
	assert.Empty(t, res.ValidationError)
}

func TestWithObserverLeavesEngineUnchanged(t *testing.T) {
	e := newEngine(t)
	var trace bytes.Buffer
	scoped := e.WithObserver(observability.New(true, &trace).WithRequestID("req-one"))

	_, err := scoped.Extract(Request{Text: "Moussa 96316152", CountryCode: "NE", Mode: ModePhone})
	require.NoError(t, err)
	assert.Contains(t, trace.String(), `"component":"candidate_scanner"`)
	assert.Contains(t, trace.String(), `"component":"extraction_engine"`)
	for _, line := range strings.Split(strings.TrimSpace(trace.String()), "\n") {
		if strings.HasPrefix(line, "{") {
			assert.Contains(t, line, `"request_id":"req-one"`)
		}
	}

	trace.Reset()
	_, err = e.Extract(Request{Text: "Moussa 96316152", CountryCode: "NE", Mode: ModePhone})
	require.NoError(t, err)
	assert.Empty(t, trace.String())
}

func TestExtractUnsupportedCountry(t *testing.T) {
	e := newEngine(t)

	res, err := e.Extract(Request{Text: "Moussa +227 96 31 61 52", CountryCode: "ZZ", Mode: ModePhone})
	require.NoError(t, err)
	assert.Equal(t, "Moussa", res.FullName)
	assert.Equal(t, "0022796316152", res.PhoneNumber)
	assert.Equal(t, No, res.PhoneNumberValid)
	assert.Equal(t, No, res.AccountNumberValid)
	assert.Equal(t, ErrTextUnsupportedCountry, res.ValidationError)

	res, err = e.Extract(Request{Text: "Moussa 9035941238", CountryCode: "XX", Mode: ModeAccount})
	require.NoError(t, err)
	assert.Equal(t, "9035941238", res.AccountNumber)
	assert.Equal(t, No, res.AccountNumberValid)
	assert.Equal(t, ErrTextUnsupportedCountry, res.ValidationError)
}

func TestExtractEmptyAndMissing(t *testing.T) {
	e := newEngine(t)

	for _, text := range []string{"", "   \n\t"} {
		for _, mode := range []Mode{ModePhone, ModeAccount} {
			res, err := e.Extract(Request{Text: text, CountryCode: "NE", Mode: mode})
			require.NoError(t, err)
			assert.Equal(t, Result{AccountNumberValid: No, PhoneNumberValid: No}, res)
		}
	}

	res, err := e.Extract(Request{Text: "Moussa Issoufou Zinder", CountryCode: "NE", Mode: ModePhone})
	require.NoError(t, err)
	assert.Equal(t, ErrTextNoPhone, res.ValidationError)

	res, err = e.Extract(Request{Text: "Moussa Issoufou Zinder", CountryCode: "NE", Mode: ModeAccount})
	require.NoError(t, err)
	assert.Equal(t, ErrTextNoAccount, res.ValidationError)
}

func TestExtractRejectsBadMode(t *testing.T) {
	e := newEngine(t)

	_, err := e.Extract(Request{Text: "Moussa 96316152", CountryCode: "NE", Mode: "email"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedInput))

	var mie *MalformedInputError
	require.ErrorAs(t, err, &mie)
	assert.Equal(t, "mode", mie.Field)
	assert.Equal(t, "email", mie.Value)
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode(" Phone ")
	require.NoError(t, err)
	assert.Equal(t, ModePhone, m)

	m, err = ParseMode("ACCOUNT")
	require.NoError(t, err)
	assert.Equal(t, ModeAccount, m)

	_, err = ParseMode("iban")
	assert.ErrorIs(t, err, ErrMalformedInput)
}

func TestResultAlwaysHasEveryField(t *testing.T) {
	data, err := json.Marshal(Result{})
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &fields))
	assert.Len(t, fields, 8)
	for _, key := range []string{
		"full_name", "phone_number", "bank_name", "city", "account_number",
		"account_number_valid", "phone_number_valid", "validation_error",
	} {
		v, ok := fields[key]
		assert.True(t, ok, key)
		assert.IsType(t, "", v, key)
	}
}

func TestResultInvariantsOnGeneratedText(t *testing.T) {
	e := newEngine(t)
	rng := rand.New(rand.NewSource(1))

	pieces := []string{
		"Moussa", "Ali Musa", "Kano", "Zinder", "Opay", "Zenith Bank", "96316152",
		"+227 96 31 61 52", "5.000", "70 000", "NGN", "code 1234", "Ww8470",
		"GB82 WEST 1234 5698 7654 32", "9035941238", "\n", ".", "₦", "0803-123-4567",
		"بنك", "٠٩٦٣١٦١٥٢", "name:", "---",
	}
	countries := []string{"NE", "NG", "LY", "US", "GB", "ZZ", ""}

	for i := 0; i < 500; i++ {
		n := 1 + rng.Intn(8)
		parts := make([]string, n)
		for j := range parts {
			parts[j] = pieces[rng.Intn(len(pieces))]
		}
		text := strings.Join(parts, " ")
		country := countries[rng.Intn(len(countries))]

		for _, mode := range []Mode{ModePhone, ModeAccount} {
			res, err := e.Extract(Request{Text: text, CountryCode: country, Mode: mode})
			require.NoError(t, err)

			assert.False(t, res.BankName != "" && res.City != "", "bank and city both set for %q", text)
			assert.Contains(t, []string{Yes, No}, res.PhoneNumberValid)
			assert.Contains(t, []string{Yes, No}, res.AccountNumberValid)

			switch mode {
			case ModePhone:
				assert.Empty(t, res.AccountNumber)
				assert.Equal(t, No, res.AccountNumberValid)
				if res.PhoneNumberValid == Yes {
					assert.Empty(t, res.ValidationError)
				}
			case ModeAccount:
				assert.Empty(t, res.PhoneNumber)
				assert.Equal(t, No, res.PhoneNumberValid)
				if res.AccountNumberValid == Yes {
					assert.Empty(t, res.ValidationError)
				}
			}
		}
	}
}

func TestBuildEngineWithConfig(t *testing.T) {
	dir := t.TempDir()
	rulesPath := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(rulesPath, []byte(`
countries:
  GH:
    name: Ghana
    phone:
      nsn_lengths: [9]
      allow_leading_zero: true
    account:
      kind: LOCAL
      length_set: [13, 16]
      charset: DIGITS
`), 0600))

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	cfg.RulesFile = rulesPath
	cfg.Scanner.BankKeywords = []string{"taamiouli"}

	e, err := BuildEngine(cfg)
	require.NoError(t, err)
	assert.True(t, e.Registry().Supports("GH"))

	res, err := e.Extract(Request{Text: "Kwame Mensah\n0241234567\nTaamiouli", CountryCode: "GH", Mode: ModePhone})
	require.NoError(t, err)
	assert.Equal(t, "Taamiouli", res.BankName)
	assert.Equal(t, "0241234567", res.PhoneNumber)
	assert.Equal(t, Yes, res.PhoneNumberValid)

	cfg.RulesFile = filepath.Join(dir, "missing.yaml")
	_, err = BuildEngine(cfg)
	assert.Error(t, err)
}

func TestExtractDebugTrace(t *testing.T) {
	e := newEngine(t)
	var buf bytes.Buffer
	e.SetObserver(observability.New(true, &buf))

	_, err := e.Extract(Request{Text: "Moussa 96316152", CountryCode: "NE", Mode: ModePhone})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "extraction_engine")
	assert.Contains(t, buf.String(), "phone candidate 96316152")
}
