// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package rules

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed default_rules.yaml
var defaultRulesYAML []byte

// ruleFile is the on-disk YAML layout
type ruleFile struct {
	Countries map[string]ruleFileCountry `yaml:"countries"`
}

type ruleFileCountry struct {
	Name    string           `yaml:"name"`
	Phone   *ruleFilePhone   `yaml:"phone"`
	Account *ruleFileAccount `yaml:"account"`
}

type ruleFilePhone struct {
	CallingCode      string `yaml:"calling_code"`
	NSNLengths       []int  `yaml:"nsn_lengths"`
	AllowLeadingZero bool   `yaml:"allow_leading_zero"`
	LocalPattern     string `yaml:"local_pattern"`
}

type ruleFileAccount struct {
	Kind      string `yaml:"kind"`
	Length    int    `yaml:"length"`
	LengthSet []int  `yaml:"length_set"`
	Charset   string `yaml:"charset"`
	Checksum  string `yaml:"checksum"`
}

// Default returns a registry holding only the built-in rules
func Default() (*Registry, error) {
	countries, err := Parse(defaultRulesYAML)
	if err != nil {
		return nil, fmt.Errorf("built-in rules: %w", err)
	}
	return NewRegistry(countries...), nil
}

// Load returns the built-in rules with the file at path applied on top.
// An empty path yields the built-in rules.
func Load(path string) (*Registry, error) {
	countries, err := Parse(defaultRulesYAML)
	if err != nil {
		return nil, fmt.Errorf("built-in rules: %w", err)
	}
	if path == "" {
		return NewRegistry(countries...), nil
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("error reading rules file: %w", err)
	}
	overrides, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("error parsing rules file %s: %w", path, err)
	}
	return NewRegistry(append(countries, overrides...)...), nil
}

// Parse decodes and validates a YAML rule document
func Parse(data []byte) ([]Country, error) {
	var doc ruleFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	countries := make([]Country, 0, len(doc.Countries))
	for rawCode, entry := range doc.Countries {
		code := NormalizeCode(rawCode)
		if len(code) != 2 {
			return nil, fmt.Errorf("country %q: code must be ISO-3166 alpha-2", rawCode)
		}
		country := Country{Code: code, Name: entry.Name}
		if entry.Phone != nil {
			rule, err := buildPhoneRule(code, entry.Phone)
			if err != nil {
				return nil, fmt.Errorf("country %s phone: %w", code, err)
			}
			country.Phone = rule
		}
		if entry.Account != nil {
			rule, err := buildAccountRule(entry.Account)
			if err != nil {
				return nil, fmt.Errorf("country %s account: %w", code, err)
			}
			country.Account = rule
		}
		if country.Phone == nil && country.Account == nil {
			return nil, fmt.Errorf("country %s: no phone or account rule", code)
		}
		countries = append(countries, country)
	}
	return countries, nil
}

func buildPhoneRule(code string, p *ruleFilePhone) (*PhoneRule, error) {
	callingCode, err := resolveCallingCode(code, p.CallingCode)
	if err != nil {
		return nil, err
	}
	if len(p.NSNLengths) == 0 {
		return nil, fmt.Errorf("nsn_lengths must not be empty")
	}
	for _, n := range p.NSNLengths {
		if n <= 0 || n > 15 {
			return nil, fmt.Errorf("nsn length %d out of range", n)
		}
	}

	rule := &PhoneRule{
		CallingCode:      callingCode,
		NSNLengths:       p.NSNLengths,
		AllowLeadingZero: p.AllowLeadingZero,
	}
	if p.LocalPattern != "" {
		re, err := regexp.Compile(p.LocalPattern)
		if err != nil {
			return nil, fmt.Errorf("local_pattern: %w", err)
		}
		rule.LocalPattern = re
	}
	return rule, nil
}

func buildAccountRule(a *ruleFileAccount) (*AccountRule, error) {
	rule := &AccountRule{
		Kind:      AccountKind(a.Kind),
		Length:    a.Length,
		LengthSet: a.LengthSet,
		Charset:   Charset(a.Charset),
		Checksum:  Checksum(a.Checksum),
	}
	if rule.Checksum == "" {
		rule.Checksum = ChecksumNone
	}

	switch rule.Kind {
	case KindIBAN, KindNUBAN, KindABA, KindLocal:
	default:
		return nil, fmt.Errorf("unknown kind %q", a.Kind)
	}
	switch rule.Charset {
	case CharsetDigits, CharsetAlnum:
	default:
		return nil, fmt.Errorf("unknown charset %q", a.Charset)
	}
	if rule.Length <= 0 && len(rule.LengthSet) == 0 {
		return nil, fmt.Errorf("length or length_set is required")
	}

	switch rule.Checksum {
	case ChecksumNone:
	case ChecksumIBANMod97:
		if rule.Charset != CharsetAlnum {
			return nil, fmt.Errorf("IBAN_MOD97 requires ALNUM charset")
		}
	case ChecksumNUBANMod10:
		if !rule.AllowsLength(10) {
			return nil, fmt.Errorf("NUBAN_MOD10 requires length 10")
		}
	case ChecksumABAMod10:
		if !rule.AllowsLength(9) {
			return nil, fmt.Errorf("ABA_MOD10 requires length 9")
		}
	default:
		return nil, fmt.Errorf("unknown checksum %q", a.Checksum)
	}
	return rule, nil
}

// resolveCallingCode fills in or cross-checks a calling code against the
// numbering-plan metadata for the region
func resolveCallingCode(region, declared string) (string, error) {
	known := CallingCodeForRegion(region)
	if declared == "" {
		if known == "" {
			return "", fmt.Errorf("calling_code is required for %s", region)
		}
		return known, nil
	}
	if _, err := strconv.Atoi(declared); err != nil || len(declared) > 3 {
		return "", fmt.Errorf("calling_code %q is not 1-3 digits", declared)
	}
	if known != "" && known != declared {
		return "", fmt.Errorf("calling_code %s does not match +%s for %s", declared, known, region)
	}
	return declared, nil
}
