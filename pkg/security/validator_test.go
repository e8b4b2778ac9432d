package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateProfileText(t *testing.T) {
	tests := []struct {
		name        string
		value       string
		maxLen      int
		expectError error
		expected    string
	}{
		{name: "empty", value: "", maxLen: 10, expected: ""},
		{name: "whitespace only", value: "   ", maxLen: 10, expected: ""},
		{name: "simple", value: "Engineering", maxLen: 100, expected: "Engineering"},
		{name: "trimmed", value: "  Jane Doe ", maxLen: 100, expected: "Jane Doe"},
		{name: "unicode counted as runes", value: "Zürich Straße", maxLen: 13, expected: "Zürich Straße"},
		{name: "multi-line address", value: "1 Main St\nSpringfield", maxLen: 500, expected: "1 Main St\nSpringfield"},
		{name: "too long", value: strings.Repeat("a", 11), maxLen: 10, expectError: ErrTextTooLong},
		{name: "script tag", value: "<script>alert(1)</script>", maxLen: 100, expectError: ErrInvalidCharacters},
		{name: "javascript url", value: "javascript:void(0)", maxLen: 100, expectError: ErrInvalidCharacters},
		{name: "sql comment", value: "Sales --", maxLen: 100, expectError: ErrInvalidCharacters},
		{name: "stacked statement", value: "x; DROP TABLE users", maxLen: 100, expectError: ErrInvalidCharacters},
		{name: "control character", value: "abc\x00def", maxLen: 100, expectError: ErrInvalidCharacters},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateProfileText(tt.value, tt.maxLen)
			if tt.expectError != nil {
				require.ErrorIs(t, err, tt.expectError)
				assert.Empty(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestValidatePhoneNumber(t *testing.T) {
	tests := []struct {
		name        string
		value       string
		expectError bool
		expected    string
	}{
		{name: "empty", value: "", expected: ""},
		{name: "international", value: "+234 803 123 4567", expected: "+234 803 123 4567"},
		{name: "dashes and parens", value: "(555) 123-4567", expected: "(555) 123-4567"},
		{name: "letters", value: "call me", expectError: true},
		{name: "too short", value: "123", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidatePhoneNumber(tt.value)
			if tt.expectError {
				require.ErrorIs(t, err, ErrInvalidPhone)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "a@x.com", NormalizeEmail("  A@X.com "))
}
