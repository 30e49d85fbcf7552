package service

import (
	"errors"

	"github.com/Payphone-Digital/auth-service/internal/constants"
	apperrors "github.com/Payphone-Digital/auth-service/internal/errors"
	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher hashes and checks credentials.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	// Verify reports whether plaintext matches hash. Malformed arguments are
	// an error, never a plain false.
	Verify(plaintext, hash string) (bool, error)
}

type BcryptHasher struct {
	cost int
}

var _ PasswordHasher = (*BcryptHasher)(nil)

func NewBcryptHasher() *BcryptHasher {
	return &BcryptHasher{cost: constants.BcryptCost}
}

func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", apperrors.WrapError(apperrors.ErrHashing, errors.New("plaintext must be a non-empty string"))
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", apperrors.WrapError(apperrors.ErrHashing, err)
	}
	return string(hashed), nil
}

func (h *BcryptHasher) Verify(plaintext, hash string) (bool, error) {
	if plaintext == "" || hash == "" {
		return false, apperrors.WrapError(apperrors.ErrInvalidInput, errors.New("plaintext and hash are required"))
	}

	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, apperrors.WrapError(apperrors.ErrInvalidInput, err)
	}
}
