package auth

import (
	"errors"
	"strings"
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation"
)

// PasswordSymbols is the fixed punctuation set a password may (and must,
// at least once) draw from.
const PasswordSymbols = "@$!%*?&"

// PasswordMinLength is the minimum accepted password length.
const PasswordMinLength = 8

// ValidatePassword applies the complexity policy: at least 8 characters with
// one lowercase, one uppercase, one digit, and one symbol from
// PasswordSymbols, and nothing outside those classes. Returns ErrWeakPassword
// on any violation.
func ValidatePassword(password string) error {
	err := validation.Validate(password,
		validation.Required,
		validation.Length(PasswordMinLength, 0),
		validation.By(passwordComplexity),
	)
	if err != nil {
		return ErrWeakPassword
	}
	return nil
}

// passwordComplexity decomposes the policy into per-class scans. Go's RE2
// regexp has no lookaheads, so the whole-string rule cannot be a single
// expression.
func passwordComplexity(value any) error {
	password, _ := value.(string)

	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r) && r <= unicode.MaxASCII:
			hasLower = true
		case unicode.IsUpper(r) && r <= unicode.MaxASCII:
			hasUpper = true
		case unicode.IsDigit(r) && r <= unicode.MaxASCII:
			hasDigit = true
		case strings.ContainsRune(PasswordSymbols, r):
			hasSymbol = true
		default:
			return errors.New("password contains characters outside the allowed set")
		}
	}

	if !hasLower || !hasUpper || !hasDigit || !hasSymbol {
		return errors.New("password must mix lowercase, uppercase, digits and symbols")
	}
	return nil
}
