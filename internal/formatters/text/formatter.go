// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package text

import (
	"fmt"
	"strings"

	"payee-scan/internal/core"
	"payee-scan/internal/formatters"

	"github.com/fatih/color"
)

// Formatter implements text-based output formatting
type Formatter struct {
	colors map[string]*color.Color
}

// NewFormatter creates a new text formatter
func NewFormatter() *Formatter {
	return &Formatter{
		colors: map[string]*color.Color{
			"green":   color.New(color.FgGreen),
			"red":     color.New(color.FgRed),
			"cyan":    color.New(color.FgCyan),
			"magenta": color.New(color.FgMagenta),
			"white":   color.New(color.FgWhite, color.Bold),
		},
	}
}

func (f *Formatter) Name() string {
	return "text"
}

func (f *Formatter) Description() string {
	return "Human-readable field listing with colored validity flags"
}

func (f *Formatter) FileExtension() string {
	return ".txt"
}

func (f *Formatter) Format(entries []formatters.Entry, options formatters.FormatterOptions) (string, error) {
	if options.NoColor {
		color.NoColor = true
	}
	if len(entries) == 0 {
		return "No messages processed.", nil
	}

	var builder strings.Builder
	for i, e := range entries {
		if i > 0 {
			builder.WriteString("\n")
		}
		if len(entries) > 1 || options.Verbose {
			f.appendHeader(&builder, e, options)
		}
		f.appendResult(&builder, e, options)
	}
	return strings.TrimRight(builder.String(), "\n"), nil
}

func (f *Formatter) appendHeader(builder *strings.Builder, e formatters.Entry, options formatters.FormatterOptions) {
	header := fmt.Sprintf("Message %d", e.Index+1)
	if options.Verbose {
		header += fmt.Sprintf(" [%s, %s]", e.Country, e.Mode)
		if e.Source != "" {
			header += " from " + e.Source
		}
	}
	builder.WriteString(f.paint("white", header, options) + "\n")
}

func (f *Formatter) appendResult(builder *strings.Builder, e formatters.Entry, options formatters.FormatterOptions) {
	r := e.Result

	f.appendField(builder, "Name", r.FullName, options)
	if r.BankName != "" {
		f.appendField(builder, "Bank", r.BankName, options)
	} else {
		f.appendField(builder, "City", r.City, options)
	}

	switch e.Mode {
	case core.ModeAccount:
		f.appendField(builder, "Account", r.AccountNumber, options)
		f.appendFlag(builder, "Account valid", r.AccountNumberValid, options)
	default:
		f.appendField(builder, "Phone", r.PhoneNumber, options)
		f.appendFlag(builder, "Phone valid", r.PhoneNumberValid, options)
	}

	if r.ValidationError != "" {
		fmt.Fprintf(builder, "  %-14s %s\n", "Reason:", f.paint("red", r.ValidationError, options))
	}
}

func (f *Formatter) appendField(builder *strings.Builder, label, value string, options formatters.FormatterOptions) {
	if value == "" {
		value = "-"
	}
	fmt.Fprintf(builder, "  %-14s %s\n", label+":", f.paint("cyan", value, options))
}

func (f *Formatter) appendFlag(builder *strings.Builder, label, value string, options formatters.FormatterOptions) {
	colorName := "red"
	if value == core.Yes {
		colorName = "green"
	}
	fmt.Fprintf(builder, "  %-14s %s\n", label+":", f.paint(colorName, strings.ToUpper(value), options))
}

func (f *Formatter) paint(name, s string, options formatters.FormatterOptions) string {
	if options.NoColor {
		return s
	}
	return f.colors[name].Sprint(s)
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
