// Package phone validates and formats international mobile numbers:
// country code (2 digits) + area code (2 digits) + local number (8-9 digits),
// e.g. 5511966113170.
package phone

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmpty  = errors.New("phone is empty")
	ErrLength = errors.New("phone must have 12 or 13 digits (country code + area code + number)")
)

// Sanitize strips everything except digits.
func Sanitize(raw string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, raw)
}

// IsValid reports whether raw sanitizes to a 12 or 13 digit number.
func IsValid(raw string) bool {
	n := len(Sanitize(raw))
	return n >= 12 && n <= 13
}

// Validate returns the normalized digit-only number, or an error describing
// why raw is not acceptable. No store mutation should be attempted on error.
func Validate(raw string) (string, error) {
	digits := Sanitize(raw)
	if digits == "" {
		return "", ErrEmpty
	}
	if len(digits) < 12 || len(digits) > 13 {
		return "", ErrLength
	}
	return digits, nil
}

// FormatDisplay renders a normalized number for display, e.g.
// "5511966113170" -> "+55 (11) 96611-3170". Unexpected lengths are returned
// unchanged.
func FormatDisplay(p string) string {
	d := Sanitize(p)
	switch len(d) {
	case 13:
		return fmt.Sprintf("+%s (%s) %s-%s", d[:2], d[2:4], d[4:9], d[9:])
	case 12:
		return fmt.Sprintf("+%s (%s) %s-%s", d[:2], d[2:4], d[4:8], d[8:])
	}
	return p
}
