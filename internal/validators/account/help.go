// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package account

import "payee-scan/internal/help"

// GetCheckInfo returns standardized information about the account check
func (v *Validator) GetCheckInfo() help.CheckInfo {
	return help.CheckInfo{
		Name:             "ACCOUNT",
		ShortDescription: "Validates bank account numbers (IBAN, NUBAN, ABA and local formats)",
		DetailedDescription: `The Account check validates the account candidate picked from a message against the receiving country's account rule.

The number is upper-cased and whitespace is removed. Any other separator is left in place and fails the charset check. The longest numeric candidate in the message is used. For countries whose accounts may contain letters, IBAN-shaped codes compete as well.`,

		Patterns: []string{
			"NUBAN (Nigeria): 9035941238",
			"IBAN: GB82 WEST 1234 5698 7654 32",
			"ABA routing number (United States): 021000021",
			"Local formats with a fixed length and charset",
		},

		SupportedFormats: []string{
			"IBAN with ISO 13616 MOD-97-10 check digits",
			"NUBAN with the CBN 3-7-3 check digit",
			"ABA routing numbers with the 3-7-1 checksum",
			"Local accounts validated by length and charset only",
		},

		Steps: []help.CheckStep{
			{Name: "Length", Failure: ReasonBadLength},
			{Name: "Charset", Failure: ReasonInvalidChars},
			{Name: "IBAN country prefix", Failure: ReasonBadPrefix},
			{Name: "Checksum", Failure: ReasonBadChecksum},
		},

		ConfigurationInfo: `Account rules live under countries.<CODE>.account in a rules file:
  kind (IBAN, NUBAN, ABA, LOCAL), length or length_set, charset (DIGITS, ALNUM),
  checksum (IBAN_MOD97, NUBAN_MOD10, ABA_MOD10, NONE)`,

		Examples: []string{
			"payee-scan --country NG --mode account --text \"HALIMA SULAIMAN 9035941238 PALMPAY\"",
			"payee-scan --country GB --mode account --file transfer.pdf --format yaml",
		},
	}
}
