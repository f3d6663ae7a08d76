package auth_test

import (
	"context"
	"testing"

	auth "github.com/bryanshihpeng/AhaAI-exam-backend"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountContextRoundTrip(t *testing.T) {
	account := &auth.Account{ID: uuid.New(), Email: "user@example.com"}

	ctx := auth.WithContext(context.Background(), account)

	got, ok := auth.FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, account, got)
}

func TestAccountContextMissing(t *testing.T) {
	_, ok := auth.FromContext(context.Background())
	assert.False(t, ok)
}
