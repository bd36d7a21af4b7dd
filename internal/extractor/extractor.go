// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package extractor

import (
	"strings"

	"payee-scan/internal/detector"
)

// Party holds the non-identifier fields picked from a message.
// At most one of BankName and City is set.
type Party struct {
	FullName string
	BankName string
	City     string
}

// SelectParty picks the name and the bank or city from scanned candidates.
//
// The name is the first multi-word phrase that fills its own line. Failing
// that it is the first phrase, except that a lone multi-word phrase with no
// bank in the message is split: its first word is the name and the rest is
// the city. A city is only reported when no bank was found.
func SelectParty(candidates []detector.Candidate) Party {
	var party Party

	banks := detector.Filter(candidates, detector.KindBank)
	if len(banks) > 0 {
		party.BankName = banks[0].Text
	}
	phrases := detector.Filter(candidates, detector.KindName)
	if len(phrases) == 0 {
		return party
	}

	nameIdx := -1
	for i, p := range phrases {
		if p.FullLine && p.Words >= 2 {
			nameIdx = i
			break
		}
	}

	if nameIdx < 0 {
		first := phrases[0]
		if first.Words >= 2 && len(phrases) == 1 && party.BankName == "" {
			words := strings.Fields(first.Text)
			party.FullName = words[0]
			party.City = strings.Join(words[1:], " ")
			return party
		}
		nameIdx = 0
	}

	party.FullName = phrases[nameIdx].Text
	if party.BankName == "" {
		for i, p := range phrases {
			if i != nameIdx {
				party.City = p.Text
				break
			}
		}
	}
	return party
}

// SelectPhone returns the first NUMERIC candidate with at least minDigits
// digits, ignoring a leading '+'. If none is long enough the first NUMERIC
// candidate is returned so that validation can report why it fails.
func SelectPhone(candidates []detector.Candidate, minDigits int) (detector.Candidate, bool) {
	numeric := detector.Filter(candidates, detector.KindNumeric)
	if len(numeric) == 0 {
		return detector.Candidate{}, false
	}
	for _, c := range numeric {
		if len(c.Digits()) >= minDigits {
			return c, true
		}
	}
	return numeric[0], true
}

// SelectAccount returns the longest NUMERIC candidate, ties going to the
// first. When alnum is set, CODE_LIKE candidates holding letters (IBANs)
// compete as well, measured by their letters and digits.
func SelectAccount(candidates []detector.Candidate, alnum bool) (detector.Candidate, bool) {
	var best detector.Candidate
	bestLen := 0
	for _, c := range candidates {
		var n int
		switch {
		case c.Kind == detector.KindNumeric:
			n = len(c.Digits())
		case alnum && c.Kind == detector.KindCodeLike && c.HasLetters():
			n = len(c.Compact())
		default:
			continue
		}
		if n > bestLen {
			best, bestLen = c, n
		}
	}
	return best, bestLen > 0
}
