// Package phone canonicalizes free-form phone input into the 10-digit
// domestic form used for booking-form entry.
package phone

import (
	"fmt"
	"strings"
)

// Normalize strips non-digit characters and reduces the result to the
// 10-digit domestic form: an 11-digit value with a leading country-code "1"
// loses that digit, longer values keep their rightmost 10 digits, and inputs
// with fewer than 10 digits pass through undisturbed so callers can detect
// them downstream. Never fails; the result may be empty.
func Normalize(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	if len(digits) == 11 && digits[0] == '1' {
		return digits[1:]
	}
	if len(digits) >= 10 {
		return digits[len(digits)-10:]
	}
	return digits
}

// Format renders raw as "(AAA) BBB-CCCC" when it normalizes to exactly ten
// digits; anything else comes back verbatim rather than as an error.
func Format(raw string) string {
	digits := Normalize(raw)
	if len(digits) != 10 {
		return raw
	}
	return fmt.Sprintf("(%s) %s-%s", digits[:3], digits[3:6], digits[6:])
}
