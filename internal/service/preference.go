package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/citybreaker/citybreaker-server/internal/domain"
	domainerrors "github.com/citybreaker/citybreaker-server/internal/errors"
	"github.com/citybreaker/citybreaker-server/internal/store"
)

// PreferenceService maintains per-user taxonomy preference scores and turns
// scan feedback into score updates.
type PreferenceService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewPreferenceService creates a new preference service.
func NewPreferenceService(store *store.Store, logger *slog.Logger) *PreferenceService {
	return &PreferenceService{
		store:  store,
		logger: logger,
	}
}

// FeedbackRequest contains a reaction to a scan or an explicit tag set.
// When ScanID is set the scan's tags are used; otherwise Tags must be given.
type FeedbackRequest struct {
	ScanID   string              `json:"scan_id,omitempty"`
	Tags     map[string][]string `json:"tags,omitempty"`
	Reaction domain.Reaction     `json:"reaction" validate:"required"`
}

// FeedbackResponse reports what the feedback changed.
type FeedbackResponse struct {
	Delta   int `json:"delta"`
	Applied int `json:"applied"` // Number of (category, tag) pairs updated
}

// GetProfile returns the user's preference profile.
// A user with no recorded feedback gets an empty profile, never an error.
func (s *PreferenceService) GetProfile(ctx context.Context, userID string) (*domain.PreferenceProfile, error) {
	return s.store.GetPreferences(ctx, userID)
}

// ApplyFeedback resolves the target tag set and applies the reaction's delta
// to every (category, tag) pair. Each increment is awaited and applied
// exactly once; an unknown reaction is a no-op, not an error.
func (s *PreferenceService) ApplyFeedback(ctx context.Context, userID string, req FeedbackRequest) (*FeedbackResponse, error) {
	if req.Reaction == "" {
		return nil, domainerrors.Validation("reaction is required")
	}

	tags, err := s.resolveTags(ctx, userID, req)
	if err != nil {
		return nil, err
	}
	if tags.IsEmpty() {
		return nil, domainerrors.Validation("feedback target has no tags")
	}

	delta := req.Reaction.Delta()
	if delta == 0 {
		// Unknown or neutral reaction: nothing to write.
		if s.logger != nil {
			s.logger.Debug("Feedback reaction is a no-op",
				"user_id", userID,
				"reaction", req.Reaction,
			)
		}
		return &FeedbackResponse{Delta: 0, Applied: 0}, nil
	}

	applied := 0
	for _, cat := range domain.Categories() {
		for _, tag := range tags[cat] {
			if _, err := s.store.IncrementPreference(ctx, userID, cat, tag, delta); err != nil {
				return nil, fmt.Errorf("increment %s/%s: %w", cat, tag, err)
			}
			applied++
		}
	}

	if s.logger != nil {
		s.logger.Info("Applied feedback",
			"user_id", userID,
			"reaction", req.Reaction,
			"delta", delta,
			"tags", applied,
		)
	}

	return &FeedbackResponse{Delta: delta, Applied: applied}, nil
}

// resolveTags picks the tag set the feedback applies to: the referenced
// scan's tags, or an explicit tag set validated against the taxonomy.
func (s *PreferenceService) resolveTags(ctx context.Context, userID string, req FeedbackRequest) (domain.TagSet, error) {
	if req.ScanID != "" {
		scan, err := s.store.GetScan(ctx, req.ScanID)
		if err == nil {
			return scan.Tags, nil
		}
		if !errors.Is(err, store.ErrScanNotFound) {
			return nil, fmt.Errorf("get scan: %w", err)
		}
		// Not in the pool; the user may be reacting to one of their own
		// private scans.
		scan, err = s.store.GetPrivateScan(ctx, userID, req.ScanID)
		if err != nil {
			if errors.Is(err, store.ErrScanNotFound) {
				return nil, domainerrors.NotFound("scan not found")
			}
			return nil, fmt.Errorf("get private scan: %w", err)
		}
		return scan.Tags, nil
	}

	if len(req.Tags) == 0 {
		return nil, domainerrors.Validation("either scan_id or tags is required")
	}

	tags, rejected := domain.NormalizeTagSet(req.Tags)
	if len(rejected) > 0 {
		return nil, domainerrors.ValidationWithDetails("unknown tags", map[string]string{
			"tags": fmt.Sprintf("not in taxonomy: %v", rejected),
		})
	}
	return tags, nil
}
