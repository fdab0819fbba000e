package store_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citybreaker/citybreaker-server/internal/domain"
	"github.com/citybreaker/citybreaker-server/internal/store"
)

func setupTestStore(t *testing.T) (*store.Store, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "store-test-*")
	require.NoError(t, err)

	dbPath := filepath.Join(tmpDir, "test.db")
	s, err := store.New(dbPath, nil)
	require.NoError(t, err)

	cleanup := func() {
		_ = s.Close()
		_ = os.RemoveAll(tmpDir)
	}

	return s, cleanup
}

func TestGetPreferences_AbsentReadsAsEmpty(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	profile, err := s.GetPreferences(ctx, "user-nobody")
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, "user-nobody", profile.UserID)
	assert.Equal(t, 0, profile.Score(domain.CategoryArchitecture, "gothic"))
	assert.Empty(t, profile.ActiveTags())
}

func TestIncrementPreference_Accumulates(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	score, err := s.IncrementPreference(ctx, "user-1", domain.CategoryArchitecture, "gothic", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, score)

	score, err = s.IncrementPreference(ctx, "user-1", domain.CategoryArchitecture, "gothic", 2)
	require.NoError(t, err)
	assert.Equal(t, 3, score)

	profile, err := s.GetPreferences(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 3, profile.Score(domain.CategoryArchitecture, "gothic"))
}

func TestIncrementPreference_ClampsPerCall(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	// Clamp applies to each call: -1, -1, +2 on an absent tag gives 0, 0, 2.
	deltas := []int{-1, -1, 2}
	expected := []int{0, 0, 2}

	for i, delta := range deltas {
		score, err := s.IncrementPreference(ctx, "user-1", domain.CategoryVibe, "serene", delta)
		require.NoError(t, err)
		assert.Equal(t, expected[i], score, "after delta %d", delta)
	}
}

func TestIncrementPreference_NeverNegative(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	_, err := s.IncrementPreference(ctx, "user-1", domain.CategoryArchitecture, "gothic", 1)
	require.NoError(t, err)

	score, err := s.IncrementPreference(ctx, "user-1", domain.CategoryArchitecture, "gothic", -3)
	require.NoError(t, err)
	assert.Equal(t, 0, score)
}

func TestIncrementPreference_IndependentTags(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	_, err := s.IncrementPreference(ctx, "user-1", domain.CategoryArchitecture, "gothic", 2)
	require.NoError(t, err)
	_, err = s.IncrementPreference(ctx, "user-1", domain.CategoryVibe, "majestic", 1)
	require.NoError(t, err)

	profile, err := s.GetPreferences(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, profile.Score(domain.CategoryArchitecture, "gothic"))
	assert.Equal(t, 1, profile.Score(domain.CategoryVibe, "majestic"))
	assert.Equal(t, 0, profile.Score(domain.CategoryVibe, "gothic"), "same tag name in other category stays untouched")
}

func TestIncrementPreference_IndependentUsers(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	_, err := s.IncrementPreference(ctx, "user-1", domain.CategoryArchitecture, "gothic", 2)
	require.NoError(t, err)

	profile, err := s.GetPreferences(ctx, "user-2")
	require.NoError(t, err)
	assert.Equal(t, 0, profile.Score(domain.CategoryArchitecture, "gothic"))
}

func TestIncrementPreference_ConcurrentSameUser(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	// Multiple devices reacting at once must serialize cleanly.
	const workers = 8
	const perWorker = 5

	var wg sync.WaitGroup
	errs := make(chan error, workers*perWorker)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				if _, err := s.IncrementPreference(ctx, "user-1", domain.CategoryArchitecture, "gothic", 1); err != nil {
					errs <- err
				}
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	profile, err := s.GetPreferences(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, workers*perWorker, profile.Score(domain.CategoryArchitecture, "gothic"))
}

func TestDeletePreferences(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	_, err := s.IncrementPreference(ctx, "user-1", domain.CategoryArchitecture, "gothic", 2)
	require.NoError(t, err)

	err = s.DeletePreferences(ctx, "user-1")
	require.NoError(t, err)

	profile, err := s.GetPreferences(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 0, profile.Score(domain.CategoryArchitecture, "gothic"))
}
