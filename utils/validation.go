// utils/validation.go
package utils

import (
	"regexp"
	"strings"
)

var phonePattern = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)

// ValidatePhone checks if a phone number is in E.164-like international format.
// A "whatsapp:" prefix is accepted.
func ValidatePhone(phone string) bool {
	cleaned := strings.TrimPrefix(strings.TrimSpace(phone), "whatsapp:")
	cleaned = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(cleaned)
	return phonePattern.MatchString(cleaned)
}

// NormalizeName trims a display name and collapses inner whitespace.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}
