// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package account

import (
	"fmt"
	"os"
	"strings"
	"unicode"

	"payee-scan/internal/observability"
	"payee-scan/internal/rules"
)

// Failure reasons reported by Validate
const (
	ReasonBadLength    = "bad length"
	ReasonInvalidChars = "invalid charset"
	ReasonBadPrefix    = "bad country prefix"
	ReasonBadChecksum  = "bad checksum"
	ReasonEmptyAccount = "empty account number"
)

var (
	nubanWeights = []int{3, 7, 3, 3, 7, 3, 3, 7, 3}
	abaWeights   = []int{3, 7, 1, 3, 7, 1, 3, 7, 1}
)

// Validator validates bank account numbers against a country account rule
type Validator struct {
	observer *observability.StandardObserver
}

// Outcome is the result of validating one account number
type Outcome struct {
	Number string
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
	return "account_validator"
}

// Normalize upper-cases raw and removes whitespace. Other separators are
// kept so that the charset check can reject them.
func Normalize(raw string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToUpper(r)
	}, raw)
}

// Validate normalizes raw and checks, in order: the length, the charset,
// the IBAN country prefix and the checksum.
func (v *Validator) Validate(raw, country string, rule rules.AccountRule) Outcome {
	var finishTiming func(bool, map[string]interface{})
	if v.observer != nil {
		finishTiming = v.observer.StartTiming(v.GetComponentName(), "validate", country)
	}

	out := Outcome{Number: Normalize(raw)}
	out.Reason = check(out.Number, rules.NormalizeCode(country), rule)
	out.Valid = out.Reason == ""

	if !out.Valid {
		v.logFailure(raw, rule, out)
	}
	if finishTiming != nil {
		finishTiming(out.Valid, map[string]interface{}{
			"kind":   string(rule.Kind),
			"length": len(out.Number),
			"reason": out.Reason,
		})
	}
	return out
}

func check(number, country string, rule rules.AccountRule) string {
	if number == "" {
		return ReasonEmptyAccount
	}
	if !rule.AllowsLength(len(number)) {
		return ReasonBadLength
	}
	if !matchesCharset(number, rule.Charset) {
		return ReasonInvalidChars
	}
	if rule.Kind == rules.KindIBAN && !strings.HasPrefix(number, country) {
		return ReasonBadPrefix
	}

	var ok bool
	switch rule.Checksum {
	case rules.ChecksumIBANMod97:
		ok = ibanCheck(number)
	case rules.ChecksumNUBANMod10:
		ok = nubanCheck(number)
	case rules.ChecksumABAMod10:
		ok = abaCheck(number)
	default:
		ok = true
	}
	if !ok {
		return ReasonBadChecksum
	}
	return ""
}

func matchesCharset(number string, charset rules.Charset) bool {
	for _, r := range number {
		switch {
		case r >= '0' && r <= '9':
		case charset == rules.CharsetAlnum && r >= 'A' && r <= 'Z':
		default:
			return false
		}
	}
	return true
}

// ibanCheck implements ISO 13616 MOD-97-10: the first four characters move
// to the end, letters become 10..35, and the number mod 97 must be 1.
func ibanCheck(iban string) bool {
	if len(iban) < 5 {
		return false
	}
	rearranged := iban[4:] + iban[:4]

	remainder := 0
	for _, r := range rearranged {
		switch {
		case r >= '0' && r <= '9':
			remainder = (remainder*10 + int(r-'0')) % 97
		case r >= 'A' && r <= 'Z':
			remainder = (remainder*100 + int(r-'A') + 10) % 97
		default:
			return false
		}
	}
	return remainder == 1
}

// nubanCheck validates a 10-digit NUBAN: the first nine digits are weighted
// 3,7,3 and the tenth digit is (10 - sum mod 10) mod 10.
func nubanCheck(number string) bool {
	if len(number) != 10 {
		return false
	}
	sum := 0
	for i, w := range nubanWeights {
		sum += int(number[i]-'0') * w
	}
	return int(number[9]-'0') == (10-sum%10)%10
}

// abaCheck validates a 9-digit ABA routing number with weights 3,7,1.
func abaCheck(number string) bool {
	if len(number) != 9 {
		return false
	}
	sum := 0
	for i, w := range abaWeights {
		sum += int(number[i]-'0') * w
	}
	return sum%10 == 0
}

func (v *Validator) logFailure(raw string, rule rules.AccountRule, out Outcome) {
	if !v.isDebugEnabled() {
		return
	}

	fmt.Fprintf(os.Stderr, "[DEBUG] Account Validator: %s check failed\n", rule.Kind)
	fmt.Fprintf(os.Stderr, "[DEBUG]   - Input: %s -> %s (length %d)\n", raw, out.Number, len(out.Number))
	fmt.Fprintf(os.Stderr, "[DEBUG]   - Expected lengths: %v, charset %s, checksum %s\n", rule.Lengths(), rule.Charset, rule.Checksum)
	fmt.Fprintf(os.Stderr, "[DEBUG]   - Reason: %s\n", out.Reason)
}

func (v *Validator) isDebugEnabled() bool {
	return os.Getenv("PAYEE_DEBUG") != ""
}
