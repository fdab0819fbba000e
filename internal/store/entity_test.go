package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citybreaker/citybreaker-server/internal/domain"
	"github.com/citybreaker/citybreaker-server/internal/store"
)

func testUser(id, email string) *domain.User {
	return domain.NewUser(id, email, "argon2id$not-a-real-hash")
}

func TestUsers_CreateAndGet(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	user := testUser("user-1", "ada@example.com")
	user.DisplayName = "Ada"

	require.NoError(t, s.Users.Create(ctx, user.ID, user))

	got, err := s.Users.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", got.Email)
	assert.Equal(t, "Ada", got.DisplayName)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestUsers_Get_NotFound(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := s.Users.Get(context.Background(), "user-missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUsers_Create_DuplicateEmail(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, s.Users.Create(ctx, "user-1", testUser("user-1", "ada@example.com")))

	err := s.Users.Create(ctx, "user-2", testUser("user-2", "ada@example.com"))
	assert.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestUsers_EmailIndex_CaseInsensitive(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, s.Users.Create(ctx, "user-1", testUser("user-1", "Ada@Example.com")))

	got, err := s.Users.GetByIndex(ctx, "email", "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.ID)

	got, err = s.Users.GetByIndex(ctx, "email", "ADA@EXAMPLE.COM")
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.ID)
}

func TestUsers_Update_MovesIndex(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	user := testUser("user-1", "old@example.com")
	require.NoError(t, s.Users.Create(ctx, user.ID, user))

	user.Email = "new@example.com"
	require.NoError(t, s.Users.Update(ctx, user.ID, user))

	_, err := s.Users.GetByIndex(ctx, "email", "old@example.com")
	assert.ErrorIs(t, err, store.ErrNotFound)

	got, err := s.Users.GetByIndex(ctx, "email", "new@example.com")
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.ID)
}

func TestUsers_Delete_RemovesIndex(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, s.Users.Create(ctx, "user-1", testUser("user-1", "ada@example.com")))
	require.NoError(t, s.Users.Delete(ctx, "user-1"))

	_, err := s.Users.Get(ctx, "user-1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.Users.GetByIndex(ctx, "email", "ada@example.com")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUsers_List(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, s.Users.Create(ctx, "user-1", testUser("user-1", "a@example.com")))
	require.NoError(t, s.Users.Create(ctx, "user-2", testUser("user-2", "b@example.com")))

	emails := make(map[string]bool)
	for user, err := range s.Users.List(ctx) {
		require.NoError(t, err)
		emails[user.Email] = true
	}
	assert.Equal(t, map[string]bool{"a@example.com": true, "b@example.com": true}, emails)
}

func TestSessions_TokenIndex(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	session := &domain.Session{
		ID:               "sess-1",
		UserID:           "user-1",
		RefreshTokenHash: "hash-abc",
		CreatedAt:        time.Now(),
		ExpiresAt:        time.Now().Add(time.Hour),
	}
	require.NoError(t, s.Sessions.Create(ctx, session.ID, session))

	got, err := s.Sessions.GetByIndex(ctx, "token", "hash-abc")
	require.NoError(t, err)
	assert.Equal(t, "sess-1", got.ID)
	assert.Equal(t, "user-1", got.UserID)

	// Rotation moves the index to the new hash.
	got.RefreshTokenHash = "hash-def"
	require.NoError(t, s.Sessions.Update(ctx, got.ID, got))

	_, err = s.Sessions.GetByIndex(ctx, "token", "hash-abc")
	assert.ErrorIs(t, err, store.ErrNotFound)

	got, err = s.Sessions.GetByIndex(ctx, "token", "hash-def")
	require.NoError(t, err)
	assert.Equal(t, "sess-1", got.ID)
}
