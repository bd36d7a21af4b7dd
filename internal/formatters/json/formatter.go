// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package json

import (
	"encoding/json"
	"fmt"

	"payee-scan/internal/formatters"
)

// Formatter implements JSON output formatting
type Formatter struct{}

// NewFormatter creates a new JSON formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "json"
}

func (f *Formatter) Description() string {
	return "The flat result record as JSON; an array when there are several"
}

func (f *Formatter) FileExtension() string {
	return ".json"
}

// Format emits a single object for one entry and an array otherwise
func (f *Formatter) Format(entries []formatters.Entry, options formatters.FormatterOptions) (string, error) {
	var payload interface{}
	if len(entries) == 1 {
		payload = entries[0].Result
	} else {
		payload = formatters.Results(entries)
	}

	var data []byte
	var err error
	if options.Compact {
		data, err = json.Marshal(payload)
	} else {
		data, err = json.MarshalIndent(payload, "", "  ")
	}
	if err != nil {
		return "", fmt.Errorf("error formatting JSON: %w", err)
	}
	return string(data), nil
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
