package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	user := NewUser("user-123", "ada@example.com", "hashed")

	require.NotNil(t, user)
	assert.Equal(t, "user-123", user.ID)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, "hashed", user.PasswordHash)
	assert.False(t, user.CreatedAt.IsZero())
	assert.Equal(t, user.CreatedAt, user.UpdatedAt)
}

func TestUser_Sanitized(t *testing.T) {
	user := NewUser("user-123", "ada@example.com", "hashed")
	user.DisplayName = "Ada"

	clean := user.Sanitized()
	assert.Empty(t, clean.PasswordHash)
	assert.Equal(t, "ada@example.com", clean.Email)
	assert.Equal(t, "Ada", clean.DisplayName)

	// Original is untouched.
	assert.Equal(t, "hashed", user.PasswordHash)
}
