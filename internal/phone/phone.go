// Package phone normalises and validates Philippine mobile numbers.
package phone

import (
	"errors"
	"strings"
	"unicode"
)

// CountryPrefix is the international prefix every accepted number carries.
const CountryPrefix = "+63"

// Validation errors, in the order they are checked.
var (
	ErrMissingPrefix    = errors.New("Phone number must start with +63")
	ErrWrongLength      = errors.New("Phone number must have 10 digits after +63")
	ErrNotMobile        = errors.New("Mobile number must start with 9 after +63")
	ErrInvalidCharacter = errors.New("Phone number contains invalid characters")
)

// Clean removes all whitespace and keeps everything else, including a
// leading "+".
func Clean(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// PathSegment returns the form used in backend URL paths: whitespace
// stripped, then a single leading "+" removed.
func PathSegment(s string) string {
	return strings.TrimPrefix(Clean(s), "+")
}

// Validate checks s is a Philippine mobile number (+63 followed by ten
// digits starting with 9). Characters other than digits and "+" are
// ignored, so formatted input such as "+63 917 123 4567" is accepted.
func Validate(s string) error {
	cleaned := strings.Map(func(r rune) rune {
		if r == '+' || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, s)

	if !strings.HasPrefix(cleaned, CountryPrefix) {
		return ErrMissingPrefix
	}

	rest := cleaned[len(CountryPrefix):]
	if len(rest) != 10 {
		return ErrWrongLength
	}
	if rest[0] != '9' {
		return ErrNotMobile
	}
	for _, r := range rest {
		if r < '0' || r > '9' {
			return ErrInvalidCharacter
		}
	}
	return nil
}

// FormatAsTyped reformats partial input the way the sign-in field shows it:
// the +63 prefix is forced, at most ten digits are kept, and the result is
// grouped as "+63 9XX XXX XXXX".
func FormatAsTyped(s string) string {
	if !strings.HasPrefix(s, CountryPrefix) {
		return CountryPrefix
	}

	digits := digitsOnly(s[len(CountryPrefix):])
	if len(digits) > 10 {
		digits = digits[:10]
	}

	switch {
	case len(digits) <= 3:
		return CountryPrefix + digits
	case len(digits) <= 6:
		return CountryPrefix + " " + digits[:3] + " " + digits[3:]
	default:
		return CountryPrefix + " " + digits[:3] + " " + digits[3:6] + " " + digits[6:]
	}
}

// FormatDisplay renders a stored number as "+63 XXX XXX XXXX". Numbers
// outside the 63 country code are returned unchanged.
func FormatDisplay(s string) string {
	digits := digitsOnly(s)
	if !strings.HasPrefix(digits, "63") || len(digits) < 8 {
		return s
	}
	return "+" + digits[:2] + " " + digits[2:5] + " " + digits[5:8] + " " + digits[8:]
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
