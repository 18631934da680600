package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifyPassword(t *testing.T) {
	h := testHasher()

	hash, err := h.Hash("Password123!")
	require.NoError(t, err)
	assert.NotEqual(t, "Password123!", hash)
	assert.True(t, h.Verify("Password123!", hash))
	assert.False(t, h.Verify("Password123?", hash))
	assert.False(t, h.Verify("password123!", hash), "verification is case sensitive")
}

func TestHashPassword_UniqueSalts(t *testing.T) {
	h := testHasher()

	a, err := h.Hash("same-password")
	require.NoError(t, err)
	b, err := h.Hash("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, h.Verify("same-password", a))
	assert.True(t, h.Verify("same-password", b))
}

func TestHashPassword_EmptyPassword(t *testing.T) {
	h := testHasher()

	hash, err := h.Hash("")
	require.NoError(t, err)
	assert.True(t, h.Verify("", hash))
	assert.False(t, h.Verify(" ", hash))
}

func TestHashPassword_TooLong(t *testing.T) {
	_, err := testHasher().Hash(strings.Repeat("a", 73))
	assert.Error(t, err)
}

func TestVerifyPassword_InvalidHash(t *testing.T) {
	h := testHasher()
	tests := []struct {
		name string
		hash string
	}{
		{"empty", ""},
		{"garbage", "not-a-hash"},
		{"truncated", "$2a$10$abc"},
		{"other scheme", "$argon2id$v=19$m=65536,t=3,p=4$c2FsdA$aGFzaA"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.False(t, h.Verify("password", tt.hash))
			})
		})
	}
}

func TestNewPasswordHasher_Cost(t *testing.T) {
	hash, err := NewPasswordHasher(DefaultBcryptCost).Hash("x")
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, DefaultBcryptCost, cost)

	assert.Equal(t, DefaultBcryptCost, NewPasswordHasher(0).cost)
	assert.Equal(t, DefaultBcryptCost, NewPasswordHasher(99).cost)
}
