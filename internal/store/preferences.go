package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/citybreaker/citybreaker-server/internal/domain"
)

const preferencesPrefix = "prefs:"

// incrementMaxRetries bounds the optimistic retry loop when concurrent
// feedback commits for the same user conflict. Attempts are cheap (one key
// read, one write), so the bound is generous.
const incrementMaxRetries = 50

// ErrPreferenceConflict is returned when an increment keeps conflicting with
// concurrent writes after exhausting retries.
var ErrPreferenceConflict = errors.New("preference increment conflicted repeatedly")

// GetPreferences retrieves a user's preference profile.
// A user with no profile yet reads as an empty profile, not an error: every
// score is implicitly zero until feedback arrives.
func (s *Store) GetPreferences(ctx context.Context, userID string) (*domain.PreferenceProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := buildKey(preferencesPrefix, userID)
	defer releaseKey(key)

	var profile domain.PreferenceProfile

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil // Absent profile reads as empty
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &profile)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("get preferences: %w", err)
	}

	if profile.Scores == nil {
		return domain.NewPreferenceProfile(userID), nil
	}
	profile.UserID = userID
	return &profile, nil
}

// IncrementPreference applies a single score delta to one (category, tag)
// pair inside a Badger transaction. A missing entry is treated as zero and
// the result is clamped at zero, so the clamp applies per call: the sequence
// -1, -1, +2 on an absent tag yields 0, 0, 2.
//
// Concurrent increments for the same user (multiple devices) are serialized
// by Badger's conflict detection; conflicting transactions are retried.
// Returns the score after the increment.
func (s *Store) IncrementPreference(ctx context.Context, userID string, cat domain.Category, tag string, delta int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	key := preferencesPrefix + userID

	var newScore int
	for attempt := 0; attempt < incrementMaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		err := s.db.Update(func(txn *badger.Txn) error {
			profile := domain.NewPreferenceProfile(userID)

			item, err := txn.Get([]byte(key))
			if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
			if err == nil {
				if err := item.Value(func(val []byte) error {
					return json.Unmarshal(val, profile)
				}); err != nil {
					return fmt.Errorf("unmarshal profile: %w", err)
				}
				if profile.Scores == nil {
					profile.Scores = make(map[domain.Category]map[string]int)
				}
			}

			catScores := profile.Scores[cat]
			if catScores == nil {
				catScores = make(map[string]int)
				profile.Scores[cat] = catScores
			}

			next := catScores[tag] + delta
			if next < 0 {
				next = 0 // Scores never go negative
			}
			catScores[tag] = next
			newScore = next

			profile.UserID = userID
			profile.UpdatedAt = time.Now()

			data, err := json.Marshal(profile)
			if err != nil {
				return fmt.Errorf("marshal profile: %w", err)
			}
			return txn.Set([]byte(key), data)
		})

		if errors.Is(err, badger.ErrConflict) {
			continue // Another device committed first, re-read and retry
		}
		if err != nil {
			return 0, fmt.Errorf("increment preference: %w", err)
		}
		return newScore, nil
	}

	return 0, ErrPreferenceConflict
}

// DeletePreferences removes a user's preference profile.
func (s *Store) DeletePreferences(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := buildKey(preferencesPrefix, userID)
	defer releaseKey(key)

	return s.delete(key)
}
