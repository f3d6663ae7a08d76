package auth_test

import (
	"strings"
	"testing"

	auth "github.com/bryanshihpeng/AhaAI-exam-backend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := auth.HashPassword("Sup3rSecret&")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$2a$10$"), "expected a cost 10 bcrypt hash, got %q", hash)
	assert.NotEqual(t, "Sup3rSecret&", hash)

	other, err := auth.HashPassword("Sup3rSecret&")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other, "salted hashes should differ between calls")
}

func TestHashPasswordEmpty(t *testing.T) {
	_, err := auth.HashPassword("")
	assert.Error(t, err)
}

func TestComparePasswordAndHash(t *testing.T) {
	hash, err := auth.HashPassword("Sup3rSecret&")
	require.NoError(t, err)

	assert.NoError(t, auth.ComparePasswordAndHash("Sup3rSecret&", hash))
	assert.Equal(t, auth.ErrInvalidCredentials, auth.ComparePasswordAndHash("wrong-password", hash))
}
