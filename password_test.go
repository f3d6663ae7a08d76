package auth_test

import (
	"testing"

	auth "github.com/bryanshihpeng/AhaAI-exam-backend"
	"github.com/stretchr/testify/assert"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		valid    bool
	}{
		{"all four classes", "Abcdef1!", true},
		{"longer valid password", "Sup3rSecret&Pass", true},
		{"every allowed symbol", "aA1@$!%*?&", true},
		{"too short", "Abc1!", false},
		{"empty", "", false},
		{"no uppercase", "abcdef1!", false},
		{"no lowercase", "ABCDEF1!", false},
		{"no digit", "Abcdefg!", false},
		{"no symbol", "Abcdefg1", false},
		{"symbol outside the set", "Abcdef1#", false},
		{"contains space", "Abcd ef1!", false},
		{"non ascii letters", "Ábcdef1!", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := auth.ValidatePassword(tc.password)
			if tc.valid {
				assert.NoError(t, err)
			} else {
				assert.Equal(t, auth.ErrWeakPassword, err)
			}
		})
	}
}
