package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		valid    bool
	}{
		{"TooShort", "1234", false},
		{"OnlyLowercase", "abcdefgh", false},
		{"MissingSymbol", "Abcdefg1", false},
		{"MissingDigit", "Abcdefg!", false},
		{"MissingUpper", "abcdefg1!", false},
		{"MissingLower", "ABCDEFG1!", false},
		{"AllClasses", "QWERTy90!", true},
		{"SymbolVariants", "Sup3r#secret", true},
		{"Empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrWeakPassword)
			}
		})
	}
}

func TestGeneratePassword(t *testing.T) {
	t.Run("SatisfiesPolicy", func(t *testing.T) {
		for i := 0; i < 20; i++ {
			password, err := GeneratePassword(16)
			require.NoError(t, err)
			assert.Len(t, password, 16)
			assert.NoError(t, ValidatePassword(password))
		}
	})

	t.Run("MinimumLength", func(t *testing.T) {
		password, err := GeneratePassword(8)
		require.NoError(t, err)
		assert.Len(t, password, 8)
		assert.NoError(t, ValidatePassword(password))
	})

	t.Run("Unique", func(t *testing.T) {
		a, err := GeneratePassword(16)
		require.NoError(t, err)
		b, err := GeneratePassword(16)
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})
}
