package auth

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	textCodeTokenExpired       = "TOKEN_EXPIRED"
	textCodeTokenMalformed     = "TOKEN_MALFORMED"
	textCodeTokenInvalid       = "TOKEN_INVALID"
	textCodeEmailTaken         = "EMAIL_TAKEN"
	textCodeWeakPassword       = "PASSWORD_COMPLEXITY"
	textCodePasswordReuse      = "PASSWORD_REUSE"
	textCodeInvalidCredentials = "INVALID_CREDENTIALS"
	textCodeNoPasswordHash     = "NO_PASSWORD_HASH"
	textCodeAccountNotFound    = "ACCOUNT_NOT_FOUND"
)

// ErrEmailTaken is returned when a sign up collides with an existing account.
var ErrEmailTaken = goerrors.New("account with this email already exists", goerrors.CategoryValidation).
	WithTextCode(textCodeEmailTaken).
	WithCode(goerrors.CodeBadRequest)

// ErrWeakPassword is returned when a password fails the complexity policy.
var ErrWeakPassword = goerrors.New("password does not meet complexity requirements", goerrors.CategoryValidation).
	WithTextCode(textCodeWeakPassword).
	WithCode(goerrors.CodeBadRequest)

// ErrPasswordReuse is returned when a reset reuses the previous password.
var ErrPasswordReuse = goerrors.New("new password cannot be the same as the old password", goerrors.CategoryValidation).
	WithTextCode(textCodePasswordReuse).
	WithCode(goerrors.CodeBadRequest)

// ErrInvalidCredentials covers both unknown identifiers and password
// mismatches so callers cannot probe which emails are registered.
var ErrInvalidCredentials = goerrors.New("invalid credentials", goerrors.CategoryAuth).
	WithTextCode(textCodeInvalidCredentials).
	WithCode(goerrors.CodeUnauthorized)

// ErrNoPasswordHash is returned when verifying against an account that only
// has an external identity.
var ErrNoPasswordHash = goerrors.New("account does not have a password", goerrors.CategoryAuth).
	WithTextCode(textCodeNoPasswordHash).
	WithCode(goerrors.CodeUnauthorized)

// ErrAccountNotFound is returned when a referenced account does not exist.
var ErrAccountNotFound = goerrors.New("account not found", goerrors.CategoryNotFound).
	WithTextCode(textCodeAccountNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrTokenExpired is returned for tokens past their expiry.
var ErrTokenExpired = goerrors.New("token is expired", goerrors.CategoryAuth).
	WithTextCode(textCodeTokenExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenMalformed is returned for tokens we cannot decode.
var ErrTokenMalformed = goerrors.New("token is malformed", goerrors.CategoryAuth).
	WithTextCode(textCodeTokenMalformed).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenInvalid covers signature mismatches, algorithm confusion, missing
// claims, and key retrieval failures. Network errors during external token
// validation normalize to this value, never to raw transport errors.
var ErrTokenInvalid = goerrors.New("invalid token", goerrors.CategoryAuth).
	WithTextCode(textCodeTokenInvalid).
	WithCode(goerrors.CodeUnauthorized)

// IsTokenExpiredError will check for expired tokens. Errors from this package
// carry a text code; raw jwt library errors that never passed through our own
// values fall back to a message check.
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		return rich.TextCode == textCodeTokenExpired
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		return rich.TextCode == textCodeTokenMalformed
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
