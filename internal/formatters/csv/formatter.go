// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package csv

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"payee-scan/internal/formatters"
)

var headers = []string{
	"index", "country", "mode",
	"full_name", "phone_number", "bank_name", "city", "account_number",
	"account_number_valid", "phone_number_valid", "validation_error",
}

// Formatter implements CSV output formatting
type Formatter struct{}

// NewFormatter creates a new CSV formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "csv"
}

func (f *Formatter) Description() string {
	return "Comma-separated values for spreadsheet import, one row per message"
}

func (f *Formatter) FileExtension() string {
	return ".csv"
}

func (f *Formatter) Format(entries []formatters.Entry, options formatters.FormatterOptions) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	if err := w.Write(headers); err != nil {
		return "", fmt.Errorf("error writing CSV header: %w", err)
	}
	for _, e := range entries {
		r := e.Result
		row := []string{
			strconv.Itoa(e.Index), e.Country, string(e.Mode),
			r.FullName, r.PhoneNumber, r.BankName, r.City, r.AccountNumber,
			r.AccountNumberValid, r.PhoneNumberValid, r.ValidationError,
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("error writing CSV row %d: %w", e.Index, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("error formatting CSV: %w", err)
	}
	return sb.String(), nil
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
