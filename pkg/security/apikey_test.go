package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAPIKeyValidator(t *testing.T) {
	v := NewAPIKeyValidator()

	tests := []struct {
		name  string
		key   string
		valid bool
		omdb  bool
	}{
		{"omdb key", "a1b2c3d4", true, true},
		{"too short", "abc", false, false},
		{"long token", "abcdef0123456789", true, false},
		{"not hex", "zzzzzzzz", true, false},
		{"unsafe characters", "a1b2&c3d4", false, false},
		{"empty", "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, v.ValidateAPIKey(tt.key))
			assert.Equal(t, tt.omdb, v.IsValidOMDbKey(tt.key))
		})
	}
}

func TestSanitizeAndMask(t *testing.T) {
	v := NewAPIKeyValidator()

	assert.Equal(t, "a1b2c3d4", v.SanitizeAPIKey("  a1b2&c3d4\n"))
	assert.Equal(t, "[empty]", v.MaskAPIKey(""))
	assert.Equal(t, "[***]", v.MaskAPIKey("a1b2c3d4"))
	assert.Equal(t, "abc...789", v.MaskAPIKey("abcdef0123456789"))
}

func TestMaskInText(t *testing.T) {
	v := NewAPIKeyValidator()

	text := "http://www.omdbapi.com/_apikey=a1b2c3d4_t=Up"
	assert.Equal(t, "http://www.omdbapi.com/_apikey=[***]_t=Up", v.MaskInText(text, "a1b2c3d4"))
	assert.Equal(t, text, v.MaskInText(text, ""))
}
