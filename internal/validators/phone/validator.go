// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package phone

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"payee-scan/internal/observability"
	"payee-scan/internal/rules"
)

// Validator normalizes phone numbers to a country's numbering plan and
// checks them against it
type Validator struct {
	observer *observability.StandardObserver
}

// Normalized is a phone number rewritten to its canonical form
type Normalized struct {
	// Number is "00<calling code><nsn>" for international input, otherwise
	// the local digits with a single trunk zero when the plan uses one
	Number        string
	NSN           string
	CallingCode   string
	International bool
}

// Outcome is the result of validating one number
type Outcome struct {
	Normalized
	Valid  bool
	Reason string
}

// NewValidator creates and returns a new Validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// SetObserver sets the observability component
func (v *Validator) SetObserver(observer *observability.StandardObserver) {
	v.observer = observer
}

// GetComponentName returns the component identifier
func (v *Validator) GetComponentName() string {
	return "phone_validator"
}

// Clean keeps the digits of raw and a single leading '+'
func Clean(raw string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && b.Len() == 0:
			b.WriteRune(r)
		}
	}
	if b.String() == "+" {
		return ""
	}
	return b.String()
}

// Normalize rewrites raw for the given plan. A '+' or "00" prefix marks an
// international number and is always rendered as "00". Digits that start
// with the plan's own calling code and leave an allowed NSN length are read
// as international too. Normalizing an already normalized number returns it
// unchanged.
func Normalize(raw string, rule rules.PhoneRule) Normalized {
	s := Clean(raw)
	digits := strings.TrimPrefix(s, "+")
	if digits == "" {
		return Normalized{}
	}

	switch {
	case strings.HasPrefix(s, "+"):
		return international(digits, rule)
	case strings.HasPrefix(digits, "00"):
		return international(digits[2:], rule)
	case rule.CallingCode != "" && strings.HasPrefix(digits, rule.CallingCode) &&
		rule.AllowsLength(len(digits)-len(rule.CallingCode)):
		return international(digits, rule)
	}

	if strings.HasPrefix(digits, "0") {
		return Normalized{Number: digits, NSN: digits[1:]}
	}
	if rule.AllowLeadingZero {
		return Normalized{Number: "0" + digits, NSN: digits}
	}
	return Normalized{Number: digits, NSN: digits}
}

func international(digits string, rule rules.PhoneRule) Normalized {
	n := Normalized{International: true}

	switch {
	case rule.CallingCode != "" && strings.HasPrefix(digits, rule.CallingCode):
		n.CallingCode = rule.CallingCode
		n.NSN = digits[len(rule.CallingCode):]
		// "+227 (0)96..." carries the trunk zero after the calling code
		if rule.AllowLeadingZero {
			n.NSN = strings.TrimLeft(n.NSN, "0")
		}
	default:
		if cc, rest, ok := rules.SplitCallingCode(digits); ok {
			n.CallingCode, n.NSN = cc, rest
		} else {
			n.NSN = digits
		}
	}

	n.Number = "00" + n.CallingCode + n.NSN
	return n
}

// Validate normalizes raw and checks, in order: the calling code, the NSN
// length, the local pattern and the 0/00 prefix. Reason names the first
// failing check.
func (v *Validator) Validate(raw string, rule rules.PhoneRule) Outcome {
	var finishTiming func(bool, map[string]interface{})
	if v.observer != nil {
		finishTiming = v.observer.StartTiming(v.GetComponentName(), "validate", rule.CallingCode)
	}

	out := Outcome{Normalized: Normalize(raw, rule)}
	out.Reason = check(out.Normalized, rule)
	out.Valid = out.Reason == ""

	if !out.Valid {
		v.logFailure(raw, out)
	}
	if finishTiming != nil {
		finishTiming(out.Valid, map[string]interface{}{
			"international": out.International,
			"nsn_length":    len(out.NSN),
			"reason":        out.Reason,
		})
	}
	return out
}

func check(n Normalized, rule rules.PhoneRule) string {
	if n.Number == "" {
		return "empty phone number"
	}
	if n.International {
		if n.CallingCode == "" {
			return "unknown calling code"
		}
		if n.CallingCode != rule.CallingCode {
			return fmt.Sprintf("calling code +%s ≠ +%s", n.CallingCode, rule.CallingCode)
		}
	}
	if !rule.AllowsLength(len(n.NSN)) {
		return fmt.Sprintf("length %d not in {%s}", len(n.NSN), joinInts(rule.NSNLengths))
	}
	if rule.LocalPattern != nil && !rule.LocalPattern.MatchString(n.NSN) {
		return fmt.Sprintf("number %s does not match local pattern", n.NSN)
	}
	if !strings.HasPrefix(n.Number, "0") {
		return "missing 0 or 00 prefix"
	}
	return ""
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

func (v *Validator) logFailure(raw string, out Outcome) {
	if !v.isDebugEnabled() {
		return
	}

	fmt.Fprintf(os.Stderr, "[DEBUG] Phone Validator: check failed\n")
	fmt.Fprintf(os.Stderr, "[DEBUG]   - Input: %s -> %s\n", raw, out.Number)
	fmt.Fprintf(os.Stderr, "[DEBUG]   - Reason: %s\n", out.Reason)
}

func (v *Validator) isDebugEnabled() bool {
	return os.Getenv("PAYEE_DEBUG") != ""
}
