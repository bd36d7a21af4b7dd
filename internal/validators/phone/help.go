// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package phone

import "payee-scan/internal/help"

// GetCheckInfo returns standardized information about the phone check
func (v *Validator) GetCheckInfo() help.CheckInfo {
	return help.CheckInfo{
		Name:             "PHONE",
		ShortDescription: "Normalizes and validates phone numbers against a country numbering plan",
		DetailedDescription: `The Phone check takes the phone candidate picked from a message and rewrites it to the receiving country's canonical form.

A '+' prefix is rewritten as "00". Digits that start with the country's own calling code are read as an international number when the rest has an allowed national length. Local numbers get a single trunk "0" when the country dials one.

The number is valid when its calling code belongs to the country, the national significant number has an allowed length and matches the country's mobile pattern, and the final form starts with "0" or "00".`,

		Patterns: []string{
			"Local: 86632243, 096316152",
			"International: +227 96 31 61 52, 0022796316152",
			"Own calling code without prefix: 2348031234567",
			"Trunk zero after the calling code: +234 (0)803 123 4567",
		},

		SupportedFormats: []string{
			"00<calling code><national number> for international input",
			"0<national number> for countries with a trunk prefix",
			"Arabic-Indic, Persian and fullwidth digits",
		},

		Steps: []help.CheckStep{
			{Name: "Calling code", Failure: "calling code +971 ≠ +218"},
			{Name: "National number length", Failure: "length 8 not in {9}"},
			{Name: "Local pattern", Failure: "number 812345678 does not match local pattern"},
			{Name: "0 or 00 prefix", Failure: "missing 0 or 00 prefix"},
		},

		ConfigurationInfo: `Phone rules live under countries.<CODE>.phone in a rules file:
  calling_code, nsn_lengths, allow_leading_zero, local_pattern`,

		Examples: []string{
			"payee-scan --country NE --text \"Adamou 86632243\"",
			"payee-scan --country LY --mode phone --file message.txt --format json",
		},
	}
}
