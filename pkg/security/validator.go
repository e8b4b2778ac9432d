package security

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// MaxProfileTextLength defines the maximum allowed length for short profile fields
	MaxProfileTextLength = 100
	// MaxAddressLength defines the maximum allowed length for the address field
	MaxAddressLength = 500
)

var (
	ErrTextTooLong       = errors.New("value too long")
	ErrInvalidCharacters = errors.New("value contains invalid characters")
	ErrInvalidPhone      = errors.New("phone number is invalid")
)

// dangerousPatterns contains markup and statement fragments never expected in profile data
var dangerousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(<script|</script|javascript:|vbscript:|onload=|onerror=)`),
	regexp.MustCompile(`(?i)(--|/\*|\*/)`),
	regexp.MustCompile(`(?i);\s*(drop|delete|insert|update|alter)\s`),
}

var phonePattern = regexp.MustCompile(`^\+?[0-9 ()\-]{5,20}$`)

// ValidateProfileText trims value and rejects control characters, markup
// and statement fragments. maxLen counts runes.
func ValidateProfileText(value string, maxLen int) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}

	if utf8.RuneCountInString(value) > maxLen {
		return "", ErrTextTooLong
	}

	for _, pattern := range dangerousPatterns {
		if pattern.MatchString(value) {
			return "", ErrInvalidCharacters
		}
	}

	for _, char := range value {
		if unicode.IsControl(char) && char != '\n' && char != '\t' {
			return "", ErrInvalidCharacters
		}
	}

	return value, nil
}

// ValidatePhoneNumber accepts digits, spaces, dashes, parentheses and a leading +
func ValidatePhoneNumber(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}
	if !phonePattern.MatchString(value) {
		return "", ErrInvalidPhone
	}
	return value, nil
}

// NormalizeEmail lowercases and trims an address so lookups are case-insensitive
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
