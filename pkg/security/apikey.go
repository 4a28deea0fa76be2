// Package security handles API key hygiene: sanitizing user-supplied keys and
// masking them before they reach a log line.
package security

import (
	"regexp"
	"strings"
)

var (
	validPattern  = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	unsafePattern = regexp.MustCompile(`[^a-zA-Z0-9_-]`)
	hexPattern    = regexp.MustCompile(`^[a-fA-F0-9]+$`)
)

// APIKeyValidator provides validation and handling of API keys
type APIKeyValidator struct {
	minLength int
	maxLength int
}

// NewAPIKeyValidator creates a new API key validator with reasonable defaults
func NewAPIKeyValidator() *APIKeyValidator {
	return &APIKeyValidator{
		minLength: 8,
		maxLength: 128,
	}
}

// ValidateAPIKey validates API key format and length
func (v *APIKeyValidator) ValidateAPIKey(apiKey string) bool {
	if apiKey == "" {
		return false
	}

	if len(apiKey) < v.minLength || len(apiKey) > v.maxLength {
		return false
	}

	return validPattern.MatchString(apiKey)
}

// SanitizeAPIKey trims whitespace and drops characters that could break out
// of a query string.
func (v *APIKeyValidator) SanitizeAPIKey(apiKey string) string {
	apiKey = strings.TrimSpace(apiKey)
	return unsafePattern.ReplaceAllString(apiKey, "")
}

// MaskAPIKey creates a masked version for logging (shows only first/last few chars)
func (v *APIKeyValidator) MaskAPIKey(apiKey string) string {
	if len(apiKey) == 0 {
		return "[empty]"
	}

	if len(apiKey) <= 8 {
		return "[***]"
	}

	return apiKey[:3] + "..." + apiKey[len(apiKey)-3:]
}

// IsValidOMDbKey reports whether apiKey looks like an OMDb key: eight
// hexadecimal characters.
func (v *APIKeyValidator) IsValidOMDbKey(apiKey string) bool {
	if !v.ValidateAPIKey(apiKey) {
		return false
	}

	return len(apiKey) == 8 && hexPattern.MatchString(apiKey)
}

// MaskInText replaces every occurrence of apiKey in text with its masked form.
// Cache keys embed the API key, so they go through here before logging.
func (v *APIKeyValidator) MaskInText(text, apiKey string) string {
	if apiKey == "" {
		return text
	}
	return strings.ReplaceAll(text, apiKey, v.MaskAPIKey(apiKey))
}
