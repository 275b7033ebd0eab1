package util

import (
	"errors"
	"strings"
	"unicode"
)

// ErrWeakPassword is returned when a password fails the policy:
// at least 8 characters with at least one uppercase letter, one lowercase
// letter, one digit and one symbol.
var ErrWeakPassword = errors.New(
	"password must contain at least 8 characters, " +
		"one uppercase letter, one lowercase letter, one digit and one symbol",
)

// ValidatePassword checks the password policy. Implemented as a character
// class scan: Go's regexp has no lookaheads.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return ErrWeakPassword
	}

	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r) || strings.ContainsRune(symbolChars, r):
			hasSymbol = true
		}
	}

	if !hasUpper || !hasLower || !hasDigit || !hasSymbol {
		return ErrWeakPassword
	}
	return nil
}
