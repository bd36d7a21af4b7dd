// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package rules

import (
	"strconv"

	"github.com/nyaruka/phonenumbers"
)

const unknownRegion = "ZZ"

// CallingCodeForRegion returns the ITU calling code for an alpha-2 region,
// or "" when the region is unknown
func CallingCodeForRegion(region string) string {
	cc := phonenumbers.GetCountryCodeForRegion(NormalizeCode(region))
	if cc == 0 {
		return ""
	}
	return strconv.Itoa(cc)
}

// SplitCallingCode separates an assigned calling code from the front of an
// international digit string. Calling codes are prefix-free, so at most one
// of the 1-3 digit prefixes is assigned.
func SplitCallingCode(digits string) (code, rest string, ok bool) {
	if digits == "" || digits[0] == '0' {
		return "", digits, false
	}
	for n := 1; n <= 3 && n < len(digits); n++ {
		cc, err := strconv.Atoi(digits[:n])
		if err != nil {
			return "", digits, false
		}
		if phonenumbers.GetRegionCodeForCountryCode(cc) != unknownRegion {
			return digits[:n], digits[n:], true
		}
	}
	return "", digits, false
}

// IsPossibleInternational reports whether digits, written without any
// international prefix, start with an assigned calling code followed by a
// national number of a possible length for it
func IsPossibleInternational(digits string) bool {
	if _, _, ok := SplitCallingCode(digits); !ok {
		return false
	}
	num, err := phonenumbers.Parse("+"+digits, unknownRegion)
	if err != nil {
		return false
	}
	return phonenumbers.IsPossibleNumber(num)
}
