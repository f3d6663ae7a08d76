package auth_test

import (
	"encoding/json"
	"testing"

	auth "github.com/bryanshihpeng/AhaAI-exam-backend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountHasCredentials(t *testing.T) {
	assert.False(t, (&auth.Account{}).HasCredentials())
	assert.True(t, (&auth.Account{PasswordHash: "hash"}).HasCredentials())
	assert.True(t, (&auth.Account{FirebaseUID: "uid"}).HasCredentials())
}

func TestAccountMarkEmailVerified(t *testing.T) {
	account := &auth.Account{}
	account.MarkEmailVerified()
	assert.True(t, account.EmailVerified)

	// the flag never reverts
	account.MarkEmailVerified()
	assert.True(t, account.EmailVerified)
}

func TestAccountJSONOmitsPasswordHash(t *testing.T) {
	account := &auth.Account{
		Email:        "user@example.com",
		PasswordHash: "$2a$10$secret",
	}

	data, err := json.Marshal(account)
	require.NoError(t, err)

	assert.NotContains(t, string(data), "secret")
	assert.NotContains(t, string(data), "password")
}
