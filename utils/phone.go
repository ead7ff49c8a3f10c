package utils

import (
	"regexp"
	"strings"
)

var nonDigits = regexp.MustCompile(`\D`)

// NormalizePhoneNumber strips formatting characters and leading zeros so the
// same number always stores identically.
func NormalizePhoneNumber(phoneNumber string) string {
	digits := nonDigits.ReplaceAllString(phoneNumber, "")
	return strings.TrimLeft(digits, "0")
}

// ValidatePhoneNumber accepts international numbers of 8 to 15 digits,
// optionally prefixed with +.
func ValidatePhoneNumber(phoneNumber string) bool {
	cleaned := nonDigits.ReplaceAllString(phoneNumber, "")
	return len(cleaned) >= 8 && len(cleaned) <= 15
}
