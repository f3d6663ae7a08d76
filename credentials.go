package auth

import (
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// CreateWithEmailAndPassword builds an unverified account with a hashed
// password. Persistence is the caller's responsibility.
func CreateWithEmailAndPassword(email, password string) (*Account, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, goerrors.New("email is required", goerrors.CategoryValidation).
			WithCode(goerrors.CodeBadRequest)
	}
	if password == "" {
		return nil, goerrors.New("password is required", goerrors.CategoryValidation).
			WithCode(goerrors.CodeBadRequest)
	}

	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	return &Account{
		Email:         email,
		PasswordHash:  hash,
		EmailVerified: false,
		SignUpAt:      time.Now(),
	}, nil
}

// VerifyPassword reports whether the cleartext matches the account's hash.
// It errors only when the account has no password hash set; a mismatch is a
// plain false so callers decide how to surface it.
func VerifyPassword(account *Account, password string) (bool, error) {
	if account.PasswordHash == "" {
		return false, ErrNoPasswordHash
	}

	if err := ComparePasswordAndHash(password, account.PasswordHash); err != nil {
		return false, nil
	}
	return true, nil
}

// ResetPassword swaps the account hash after checking the old password.
// The hash is replaced in one assignment so concurrent readers of the
// account never observe a partial value.
func ResetPassword(account *Account, oldPassword, newPassword string) error {
	if newPassword == oldPassword {
		return ErrPasswordReuse
	}

	if err := ValidatePassword(newPassword); err != nil {
		return err
	}

	ok, err := VerifyPassword(account, oldPassword)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidCredentials
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	account.PasswordHash = hash
	return nil
}
