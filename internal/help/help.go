// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package help

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"payee-scan/internal/rules"
)

// CheckInfo contains standardized information about a check
type CheckInfo struct {
	Name                string      // Name of the check (e.g., "PHONE")
	ShortDescription    string      // Short description for the checks list
	DetailedDescription string      // Detailed description of what the check does
	Patterns            []string    // Input shapes the check accepts
	SupportedFormats    []string    // Formats or kinds supported by the check
	Steps               []CheckStep // Validation steps in the order they run
	ConfigurationInfo   string      // Information about how to configure the check
	Examples            []string    // Usage examples
}

// CheckStep is one validation step and the reason reported when it fails
type CheckStep struct {
	Name    string
	Failure string
}

// Provider defines the interface for help content providers
type Provider interface {
	GetCheckInfo() CheckInfo
}

// System manages help content for the application
type System struct {
	providers map[string]Provider
	out       io.Writer
	noColor   bool
	colors    map[string]*color.Color
}

// NewSystem creates a new help system writing to stdout
func NewSystem(noColor bool) *System {
	return NewSystemWithWriter(noColor, os.Stdout)
}

// NewSystemWithWriter creates a help system writing to out
func NewSystemWithWriter(noColor bool, out io.Writer) *System {
	if noColor {
		color.NoColor = true
	}

	return &System{
		providers: make(map[string]Provider),
		out:       out,
		noColor:   noColor,
		colors: map[string]*color.Color{
			"title":    color.New(color.FgWhite, color.Bold),
			"header":   color.New(color.FgBlue, color.Bold),
			"item":     color.New(color.FgCyan),
			"emphasis": color.New(color.FgWhite, color.Bold),
			"negative": color.New(color.FgRed),
			"example":  color.New(color.FgMagenta),
		},
	}
}

// RegisterProvider adds a help provider to the system
func (h *System) RegisterProvider(provider Provider) {
	info := provider.GetCheckInfo()
	h.providers[strings.ToLower(info.Name)] = provider
}

// ShowGeneralHelp displays general help information
func (h *System) ShowGeneralHelp() {
	h.colors["title"].Fprintln(h.out, "Payee Scan - Clipboard Payee Extraction Tool")
	fmt.Fprintln(h.out, "============================================")
	fmt.Fprintln(h.out)
	h.colors["header"].Fprintln(h.out, "USAGE:")
	fmt.Fprintln(h.out, "  payee-scan --country <code> [--mode phone|account] [--text <message> | --file <path>] [options]")
	fmt.Fprintln(h.out, "  echo '<message>' | payee-scan --country <code>")
	fmt.Fprintln(h.out, "  payee-scan --web [--port <port>]  # Web server mode")
	fmt.Fprintln(h.out)

	h.colors["header"].Fprintln(h.out, "OPTIONS:")

	w := tabwriter.NewWriter(h.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  --text\t<message>\tMessage text to parse")
	fmt.Fprintln(w, "  --file\t<path>\tRead the message from a text or PDF file")
	fmt.Fprintln(w, "  --country\t<code>\tISO 3166-1 alpha-2 country of the receiver (e.g. NE, NG, LY)")
	fmt.Fprintln(w, "  --mode\t<mode>\tIdentifier to extract: phone or account (default: phone)")
	fmt.Fprintln(w, "  --format\t<format>\tOutput format: text, json, yaml, csv (default: text)")
	fmt.Fprintln(w, "  --config\t<path>\tPath to configuration file (YAML)")
	fmt.Fprintln(w, "  --profile\t<name>\tProfile name to use from config file")
	fmt.Fprintln(w, "  --list-profiles\t\tList available profiles in config file")
	fmt.Fprintln(w, "  --rules\t<path>\tCountry rule overrides (YAML)")
	fmt.Fprintln(w, "  --batch\t\tTreat input as several messages separated by '---' lines")
	fmt.Fprintln(w, "  --workers\t<n>\tWorkers used in batch mode (default: 4)")
	fmt.Fprintln(w, "  --list-countries\t\tList the supported countries and exit")
	fmt.Fprintln(w, "  --verbose\t\tPrefix each record with its message number, country and mode")
	fmt.Fprintln(w, "  --debug\t\tEnable debug logging of scanning and validation")
	fmt.Fprintln(w, "  --no-color\t\tDisable colored output")
	fmt.Fprintln(w, "  --web\t\tStart web server mode")
	fmt.Fprintln(w, "  --port\t<port>\tPort for web server (default: 8080, only used with --web)")
	fmt.Fprintln(w, "  --version\t\tShow version information")
	fmt.Fprintln(w, "  --help\t\tShow this help message")
	fmt.Fprintln(w, "  --help countries\t\tList supported countries")
	fmt.Fprintln(w, "  --help <check>\t\tShow detailed help for a check (phone, account)")
	w.Flush()

	fmt.Fprintln(h.out)
	h.colors["header"].Fprintln(h.out, "EXAMPLES:")
	h.colors["example"].Fprintln(h.out, "  payee-scan --country NE --text \"Adamou 86632243\"")
	h.colors["example"].Fprintln(h.out, "  payee-scan --country NG --mode account --file message.txt --format json")
	h.colors["example"].Fprintln(h.out, "  payee-scan --country LY --batch --file messages.txt --format csv")
	h.colors["example"].Fprintln(h.out, "  payee-scan --web --port 9000")

	fmt.Fprintln(h.out)
	h.colors["header"].Fprintln(h.out, "CONFIGURATION:")
	fmt.Fprintln(h.out, "  Project config: payee-scan.yaml or .payee-scan.yaml (in current directory)")
	fmt.Fprintln(h.out, "  User config: $XDG_CONFIG_HOME/payee-scan/config.yaml or ~/.payee-scan.yaml")
	fmt.Fprintln(h.out, "  Environment: PAYEE_DEBUG - Enable debug logging")
}

// ShowChecksHelp displays information about all available checks
func (h *System) ShowChecksHelp() {
	h.colors["title"].Fprintln(h.out, "Available Checks")
	fmt.Fprintln(h.out, "================")
	fmt.Fprintln(h.out)

	names := make([]string, 0, len(h.providers))
	for name := range h.providers {
		names = append(names, name)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(h.out, 0, 0, 2, ' ', 0)
	h.colors["header"].Fprintln(w, "  CHECK\tDESCRIPTION")
	for _, name := range names {
		info := h.providers[name].GetCheckInfo()
		fmt.Fprintf(w, "  ")
		h.colors["emphasis"].Fprintf(w, "%s", info.Name)
		fmt.Fprintf(w, "\t%s\n", info.ShortDescription)
	}
	w.Flush()

	fmt.Fprintln(h.out)
	fmt.Fprintln(h.out, "For detailed information about a specific check, use:")
	h.colors["example"].Fprintln(h.out, "  payee-scan --help <check>")
}

// ShowCheckHelp displays detailed help for a specific check
func (h *System) ShowCheckHelp(checkName string) bool {
	provider, exists := h.providers[strings.ToLower(checkName)]
	if !exists {
		h.colors["negative"].Fprintf(h.out, "Error: Check '%s' not found.\n", checkName)
		fmt.Fprintln(h.out, "Use 'payee-scan --help checks' to see a list of available checks.")
		return false
	}

	info := provider.GetCheckInfo()

	h.colors["title"].Fprintf(h.out, "%s Check\n", info.Name)
	fmt.Fprintln(h.out, strings.Repeat("=", len(info.Name)+6))
	fmt.Fprintln(h.out)
	fmt.Fprintln(h.out, info.DetailedDescription)
	fmt.Fprintln(h.out)

	h.list("ACCEPTED INPUT:", info.Patterns)
	h.list("SUPPORTED FORMATS:", info.SupportedFormats)

	if len(info.Steps) > 0 {
		h.colors["header"].Fprintln(h.out, "VALIDATION STEPS:")
		for i, step := range info.Steps {
			fmt.Fprintf(h.out, "  %d. ", i+1)
			h.colors["item"].Fprint(h.out, step.Name)
			fmt.Fprintf(h.out, " (fails with %q)\n", step.Failure)
		}
		fmt.Fprintln(h.out)
	}

	if info.ConfigurationInfo != "" {
		h.colors["header"].Fprintln(h.out, "CONFIGURATION:")
		fmt.Fprintln(h.out, info.ConfigurationInfo)
		fmt.Fprintln(h.out)
	}

	if len(info.Examples) > 0 {
		h.colors["header"].Fprintln(h.out, "EXAMPLES:")
		for _, example := range info.Examples {
			fmt.Fprint(h.out, "  ")
			h.colors["example"].Fprintln(h.out, example)
		}
	}

	return true
}

// ShowCountriesHelp lists every country in the registry with its phone and
// account rules
func (h *System) ShowCountriesHelp(reg *rules.Registry) {
	h.colors["title"].Fprintln(h.out, "Supported Countries")
	fmt.Fprintln(h.out, "===================")
	fmt.Fprintln(h.out)

	w := tabwriter.NewWriter(h.out, 0, 0, 2, ' ', 0)
	h.colors["header"].Fprintln(w, "  CODE\tNAME\tPHONE\tACCOUNT")
	for _, c := range reg.Countries() {
		fmt.Fprintf(w, "  ")
		h.colors["emphasis"].Fprintf(w, "%s", c.Code)
		fmt.Fprintf(w, "\t%s\t%s\t%s\n", c.Name, describePhone(c.Phone), describeAccount(c.Account))
	}
	w.Flush()
}

func (h *System) list(title string, items []string) {
	if len(items) == 0 {
		return
	}
	h.colors["header"].Fprintln(h.out, title)
	for _, item := range items {
		fmt.Fprint(h.out, "  - ")
		h.colors["item"].Fprintln(h.out, item)
	}
	fmt.Fprintln(h.out)
}

func describePhone(p *rules.PhoneRule) string {
	if p == nil {
		return "-"
	}
	lengths := make([]string, len(p.NSNLengths))
	for i, n := range p.NSNLengths {
		lengths[i] = fmt.Sprint(n)
	}
	s := fmt.Sprintf("+%s, %s digits", p.CallingCode, strings.Join(lengths, "/"))
	if p.AllowLeadingZero {
		s += ", trunk 0"
	}
	return s
}

func describeAccount(a *rules.AccountRule) string {
	if a == nil {
		return "-"
	}
	lengths := make([]string, 0, len(a.Lengths()))
	for _, n := range a.Lengths() {
		lengths = append(lengths, fmt.Sprint(n))
	}
	s := fmt.Sprintf("%s, %s %s", a.Kind, strings.Join(lengths, "/"), strings.ToLower(string(a.Charset)))
	if a.Checksum != rules.ChecksumNone {
		s += ", " + string(a.Checksum)
	}
	return s
}
