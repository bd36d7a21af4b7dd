// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package formatters_test

import (
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"payee-scan/internal/core"
	"payee-scan/internal/formatters"
	_ "payee-scan/internal/formatters/csv"
	_ "payee-scan/internal/formatters/json"
	_ "payee-scan/internal/formatters/text"
	_ "payee-scan/internal/formatters/yaml"
)

var phoneEntry = formatters.Entry{
	Index:   0,
	Country: "NE",
	Mode:    core.ModePhone,
	Result: core.Result{
		FullName:           "Adamou",
		PhoneNumber:        "086632243",
		City:               "baboul gorangobachi",
		AccountNumberValid: core.No,
		PhoneNumberValid:   core.Yes,
	},
}

var accountEntry = formatters.Entry{
	Index:   1,
	Country: "NG",
	Mode:    core.ModeAccount,
	Result: core.Result{
		FullName:           "HALIMA SULAIMAN",
		BankName:           "PALMPAY",
		AccountNumber:      "0123456789",
		AccountNumberValid: core.No,
		PhoneNumberValid:   core.No,
		ValidationError:    "bad checksum",
	},
}

func TestRegistryListsAllFormats(t *testing.T) {
	assert.Equal(t, []string{"csv", "json", "text", "yaml"}, formatters.List())

	_, err := formatters.Export("sarif", nil, formatters.FormatterOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Available formats: csv, json, text, yaml")
}

func TestFormatInfo(t *testing.T) {
	assert.Equal(t, "application/json", formatters.GetFormatInfo("json").MimeType)
	assert.Equal(t, "text/csv", formatters.GetFormatInfo("csv").MimeType)
	assert.Equal(t, ".yaml", formatters.GetFormatInfo("yaml").Extension)
	assert.Equal(t, formatters.FormatInfo{}, formatters.GetFormatInfo("nope"))
}

func TestJSONSingleIsFlatObject(t *testing.T) {
	out, err := formatters.Export("json", []formatters.Entry{phoneEntry}, formatters.FormatterOptions{})
	require.NoError(t, err)

	var got map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Len(t, got, 8)
	assert.Equal(t, "086632243", got["phone_number"])
	assert.Equal(t, "yes", got["phone_number_valid"])
	assert.Equal(t, "", got["bank_name"])
}

func TestJSONBatchIsArray(t *testing.T) {
	out, err := formatters.Export("json", []formatters.Entry{phoneEntry, accountEntry}, formatters.FormatterOptions{Compact: true})
	require.NoError(t, err)
	assert.NotContains(t, out, "\n")

	var got []core.Result
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 2)
	assert.Equal(t, accountEntry.Result, got[1])
}

func TestYAMLUsesRecordKeys(t *testing.T) {
	out, err := formatters.Export("yaml", []formatters.Entry{accountEntry}, formatters.FormatterOptions{})
	require.NoError(t, err)
	assert.Contains(t, out, "validation_error: bad checksum")

	var got core.Result
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	assert.Equal(t, accountEntry.Result, got)
}

func TestCSVRows(t *testing.T) {
	out, err := formatters.Export("csv", []formatters.Entry{phoneEntry, accountEntry}, formatters.FormatterOptions{})
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "full_name", records[0][3])
	assert.Equal(t, []string{"0", "NE", "phone", "Adamou", "086632243", "", "baboul gorangobachi", "", "no", "yes", ""}, records[1])
	assert.Equal(t, "bad checksum", records[2][10])
}

func TestTextOutput(t *testing.T) {
	out, err := formatters.Export("text", []formatters.Entry{accountEntry}, formatters.FormatterOptions{NoColor: true})
	require.NoError(t, err)
	assert.Contains(t, out, "Name:          HALIMA SULAIMAN")
	assert.Contains(t, out, "Bank:          PALMPAY")
	assert.Contains(t, out, "Account valid: NO")
	assert.Contains(t, out, "Reason:        bad checksum")
	assert.NotContains(t, out, "City:")
	assert.NotContains(t, out, "Message")

	out, err = formatters.Export("text", []formatters.Entry{phoneEntry, accountEntry}, formatters.FormatterOptions{NoColor: true, Verbose: true})
	require.NoError(t, err)
	assert.Contains(t, out, "Message 1 [NE, phone]")
	assert.Contains(t, out, "Message 2 [NG, account]")
	assert.Contains(t, out, "Phone:         086632243")

	out, err = formatters.Export("text", nil, formatters.FormatterOptions{NoColor: true})
	require.NoError(t, err)
	assert.Equal(t, "No messages processed.", out)
}
