// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package rules

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"sort"
	"strings"
)

// ErrUnsupportedCountry is returned by lookups for country codes that have no rule.
var ErrUnsupportedCountry = errors.New("unsupported country")

// AccountKind identifies the national account numbering scheme
type AccountKind string

const (
	KindIBAN  AccountKind = "IBAN"
	KindNUBAN AccountKind = "NUBAN"
	KindABA   AccountKind = "ABA"
	KindLocal AccountKind = "LOCAL"
)

// Charset restricts the characters an account number may contain
type Charset string

const (
	CharsetDigits Charset = "DIGITS"
	CharsetAlnum  Charset = "ALNUM"
)

// Checksum names the check-digit algorithm applied to an account number
type Checksum string

const (
	ChecksumNone       Checksum = "NONE"
	ChecksumIBANMod97  Checksum = "IBAN_MOD97"
	ChecksumNUBANMod10 Checksum = "NUBAN_MOD10"
	ChecksumABAMod10   Checksum = "ABA_MOD10"
)

// PhoneRule describes a country's numbering plan
type PhoneRule struct {
	CallingCode      string
	NSNLengths       []int
	AllowLeadingZero bool
	LocalPattern     *regexp.Regexp // nil when the country has no pattern
}

// MinNSNLength returns the shortest allowed national significant number
func (r PhoneRule) MinNSNLength() int {
	if len(r.NSNLengths) == 0 {
		return 0
	}
	return slices.Min(r.NSNLengths)
}

// AllowsLength reports whether n is one of the allowed NSN lengths
func (r PhoneRule) AllowsLength(n int) bool {
	return slices.Contains(r.NSNLengths, n)
}

// AccountRule describes a country's bank account format
type AccountRule struct {
	Kind      AccountKind
	Length    int   // exact length, 0 when LengthSet is used
	LengthSet []int // alternative lengths
	Charset   Charset
	Checksum  Checksum
}

// AllowsLength reports whether n matches Length or one of LengthSet
func (r AccountRule) AllowsLength(n int) bool {
	if r.Length > 0 && n == r.Length {
		return true
	}
	return slices.Contains(r.LengthSet, n)
}

// Lengths returns every accepted length in ascending order
func (r AccountRule) Lengths() []int {
	out := slices.Clone(r.LengthSet)
	if r.Length > 0 && !slices.Contains(out, r.Length) {
		out = append(out, r.Length)
	}
	sort.Ints(out)
	return out
}

// Country bundles the rules known for one ISO-3166 alpha-2 code
type Country struct {
	Code    string
	Name    string
	Phone   *PhoneRule
	Account *AccountRule
}

// Registry is an immutable, code-keyed table of country rules.
// It is safe for concurrent use.
type Registry struct {
	countries map[string]Country
}

// NewRegistry builds a registry from the given countries. Later entries
// with the same code replace earlier ones.
func NewRegistry(countries ...Country) *Registry {
	r := &Registry{countries: make(map[string]Country, len(countries))}
	for _, c := range countries {
		c.Code = NormalizeCode(c.Code)
		r.countries[c.Code] = c
	}
	return r
}

// NormalizeCode upper-cases and trims a country code
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// LookupPhoneRule returns the phone rule for countryCode or ErrUnsupportedCountry
func (r *Registry) LookupPhoneRule(countryCode string) (PhoneRule, error) {
	code := NormalizeCode(countryCode)
	c, ok := r.countries[code]
	if !ok || c.Phone == nil {
		return PhoneRule{}, fmt.Errorf("%w: %q", ErrUnsupportedCountry, countryCode)
	}
	rule := *c.Phone
	rule.NSNLengths = slices.Clone(rule.NSNLengths)
	return rule, nil
}

// LookupAccountRule returns the account rule for countryCode or ErrUnsupportedCountry
func (r *Registry) LookupAccountRule(countryCode string) (AccountRule, error) {
	code := NormalizeCode(countryCode)
	c, ok := r.countries[code]
	if !ok || c.Account == nil {
		return AccountRule{}, fmt.Errorf("%w: %q", ErrUnsupportedCountry, countryCode)
	}
	rule := *c.Account
	rule.LengthSet = slices.Clone(rule.LengthSet)
	return rule, nil
}

// Supports reports whether countryCode has at least one rule
func (r *Registry) Supports(countryCode string) bool {
	_, ok := r.countries[NormalizeCode(countryCode)]
	return ok
}

// Codes returns the registered country codes sorted alphabetically
func (r *Registry) Codes() []string {
	codes := make([]string, 0, len(r.countries))
	for code := range r.countries {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Countries returns the registered countries sorted by code
func (r *Registry) Countries() []Country {
	out := make([]Country, 0, len(r.countries))
	for _, code := range r.Codes() {
		out = append(out, r.countries[code])
	}
	return out
}

// Len returns the number of registered countries
func (r *Registry) Len() int {
	return len(r.countries)
}
