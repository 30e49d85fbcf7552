package service

import (
	"errors"
	"strings"
	"testing"

	apperrors "github.com/Payphone-Digital/auth-service/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasherRoundTrip(t *testing.T) {
	h := NewBcryptHasher()

	for _, password := range []string{"holaquetal", "password123", "ñandú-πß", "a"} {
		t.Run(password, func(t *testing.T) {
			hash, err := h.Hash(password)
			require.NoError(t, err)
			assert.NotEqual(t, password, hash)

			ok, err := h.Verify(password, hash)
			require.NoError(t, err)
			assert.True(t, ok)

			ok, err = h.Verify(password+"x", hash)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestBcryptHasherUsesFixedCost(t *testing.T) {
	hash, err := NewBcryptHasher().Hash("holaquetal")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, 10, cost)
}

func TestBcryptHasherSaltsEachHash(t *testing.T) {
	h := NewBcryptHasher()
	a, err := h.Hash("same")
	require.NoError(t, err)
	b, err := h.Hash("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestBcryptHasherRejectsEmptyPlaintext(t *testing.T) {
	_, err := NewBcryptHasher().Hash("")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrHashing))
}

func TestBcryptHasherRejectsOverlongPlaintext(t *testing.T) {
	_, err := NewBcryptHasher().Hash(strings.Repeat("x", 80))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrHashing))
}

func TestBcryptHasherVerifyMalformedInput(t *testing.T) {
	h := NewBcryptHasher()

	tests := []struct {
		name      string
		plaintext string
		hash      string
	}{
		{name: "missing plaintext", plaintext: "", hash: "$2a$10$abcdefghijklmnopqrstuv"},
		{name: "missing hash", plaintext: "secret", hash: ""},
		{name: "not a bcrypt hash", plaintext: "secret", hash: "plaintext-password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := h.Verify(tt.plaintext, tt.hash)
			assert.False(t, ok)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
		})
	}
}
