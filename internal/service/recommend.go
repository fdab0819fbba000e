package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/citybreaker/citybreaker-server/internal/domain"
	domainerrors "github.com/citybreaker/citybreaker-server/internal/errors"
	"github.com/citybreaker/citybreaker-server/internal/geo"
	"github.com/citybreaker/citybreaker-server/internal/places"
	"github.com/citybreaker/citybreaker-server/internal/store"
)

// experiencesKeyword is the fixed search bias for the experiences tab.
const experiencesKeyword = "escape room club bowling experience"

// experiencesRadiusMeters keeps experience results walkable.
const experiencesRadiusMeters = 1000

// PlacesFinder is the external place search surface used by recommendations.
// Satisfied by *places.Client.
type PlacesFinder interface {
	Geocode(ctx context.Context, query string) (geo.Coordinate, error)
	NearbySearch(ctx context.Context, p places.SearchParams) ([]domain.Place, error)
}

// RecommendService ranks the public scan pool against a user's preference
// profile and blends in external place search.
type RecommendService struct {
	store  *store.Store
	prefs  *PreferenceService
	places PlacesFinder
	logger *slog.Logger
}

// NewRecommendService creates a new recommendation service.
func NewRecommendService(
	store *store.Store,
	prefs *PreferenceService,
	placesFinder PlacesFinder,
	logger *slog.Logger,
) *RecommendService {
	return &RecommendService{
		store:  store,
		prefs:  prefs,
		places: placesFinder,
		logger: logger,
	}
}

// Rank scores the public scan pool for one user.
//
// The algorithm:
//  1. Load the profile and collect active tags (score > 0).
//  2. Load the user's own public scan IDs as an exclusion set.
//  3. Walk the pool, skipping own scans, unrankable records, and records
//     outside the radius (radius <= 0 means unlimited).
//  4. Score each record as the sum of the user's scores over its tags;
//     records scoring <= 0 are dropped.
//  5. Sort by score descending; equal scores keep pool order.
func (s *RecommendService) Rank(ctx context.Context, userID string, origin geo.Coordinate, radiusMeters float64) ([]domain.Candidate, error) {
	profile, err := s.prefs.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	ownScans, err := s.store.GetPublicScanIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load own scan ids: %w", err)
	}

	var candidates []domain.Candidate
	for scan := range s.store.ListGlobalScans(ctx) {
		if ownScans[scan.ID] {
			continue
		}
		if !scan.Rankable() {
			continue
		}
		if !geo.WithinRadius(origin, scan.Location, radiusMeters) {
			continue
		}

		score := profile.ScoreTagSet(scan.Tags)
		if score <= 0 {
			continue
		}

		candidates = append(candidates, domain.Candidate{
			ID:          scan.ID,
			Name:        scan.Name,
			Location:    scan.Location,
			Description: scan.Description,
			Tags:        scan.Tags,
			Rating:      scan.Rating,
			BlurHash:    scan.BlurHash,
			CapturedAt:  scan.CapturedAt,
			MatchScore:  score,
			Source:      domain.CandidateSourceScan,
		})
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stable keeps pool order for equal scores.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].MatchScore > candidates[j].MatchScore
	})

	return candidates, nil
}

// Recommend ranks internal candidates and appends external landmark search
// results. External failure degrades gracefully to internal-only results.
func (s *RecommendService) Recommend(ctx context.Context, userID string, origin geo.Coordinate, radiusMeters float64) ([]domain.Candidate, error) {
	internal, err := s.Rank(ctx, userID, origin, radiusMeters)
	if err != nil {
		return nil, err
	}

	external, err := s.searchExternalLandmarks(ctx, userID, origin, radiusMeters)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("External landmark search failed, serving internal results only",
				"user_id", userID,
				"error", err,
			)
		}
		return internal, nil
	}

	return mergeCandidates(internal, external), nil
}

// searchExternalLandmarks queries place search biased by the user's active
// preference tags.
func (s *RecommendService) searchExternalLandmarks(ctx context.Context, userID string, origin geo.Coordinate, radiusMeters float64) ([]domain.Candidate, error) {
	profile, err := s.prefs.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	keyword := "landmarks"
	if active := profile.ActiveTags(); len(active) > 0 {
		keyword = strings.Join(active, " ") + " landmarks"
	}

	results, err := s.places.NearbySearch(ctx, places.SearchParams{
		Location:     origin,
		RadiusMeters: int(radiusMeters),
		Keyword:      keyword,
	})
	if err != nil {
		return nil, err
	}

	return placesToCandidates(results), nil
}

// NearbyLandmarks finds landmarks around the origin via external place
// search, biased by the user's active preference tags.
func (s *RecommendService) NearbyLandmarks(ctx context.Context, userID string, origin geo.Coordinate, radiusMeters float64) ([]domain.Candidate, error) {
	candidates, err := s.searchExternalLandmarks(ctx, userID, origin, radiusMeters)
	if err != nil {
		return nil, s.mapPlacesError(err)
	}
	return candidates, nil
}

// NearbyRestaurants finds restaurants around the origin.
func (s *RecommendService) NearbyRestaurants(ctx context.Context, origin geo.Coordinate, radiusMeters float64) ([]domain.Place, error) {
	results, err := s.places.NearbySearch(ctx, places.SearchParams{
		Location:     origin,
		RadiusMeters: int(radiusMeters),
		Type:         "restaurant",
	})
	if err != nil {
		return nil, s.mapPlacesError(err)
	}
	return results, nil
}

// NearbyExperiences geocodes a free-form location and finds activity venues
// within walking distance.
func (s *RecommendService) NearbyExperiences(ctx context.Context, location string) ([]domain.Place, error) {
	if strings.TrimSpace(location) == "" {
		return nil, domainerrors.Validation("location is required")
	}

	origin, err := s.places.Geocode(ctx, location)
	if err != nil {
		return nil, s.mapPlacesError(err)
	}

	results, err := s.places.NearbySearch(ctx, places.SearchParams{
		Location:     origin,
		RadiusMeters: experiencesRadiusMeters,
		Keyword:      experiencesKeyword,
	})
	if err != nil {
		return nil, s.mapPlacesError(err)
	}
	return results, nil
}

// mapPlacesError converts place client sentinels to domain errors.
func (s *RecommendService) mapPlacesError(err error) error {
	switch {
	case errors.Is(err, places.ErrLocationNotFound):
		return domainerrors.LocationNotFound("location could not be resolved")
	case errors.Is(err, places.ErrRateLimited), errors.Is(err, places.ErrServer):
		return domainerrors.Upstream("place search unavailable").WithCause(err)
	default:
		return domainerrors.Upstream("place search failed").WithCause(err)
	}
}

// mergeCandidates appends external results after internal ones,
// de-duplicating by case-folded name. Internal candidates win ties; they
// carry scores and scan detail the external results lack.
func mergeCandidates(internal, external []domain.Candidate) []domain.Candidate {
	seen := make(map[string]bool, len(internal))
	for _, c := range internal {
		seen[strings.ToLower(strings.TrimSpace(c.Name))] = true
	}

	merged := internal
	for _, c := range external {
		key := strings.ToLower(strings.TrimSpace(c.Name))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		merged = append(merged, c)
	}
	return merged
}

// placesToCandidates converts external places to zero-score candidates.
func placesToCandidates(results []domain.Place) []domain.Candidate {
	candidates := make([]domain.Candidate, 0, len(results))
	for _, p := range results {
		candidates = append(candidates, domain.Candidate{
			ID:         p.PlaceID,
			Name:       p.Name,
			Location:   p.Location,
			MatchScore: 0,
			Source:     domain.CandidateSourceExternal,
		})
	}
	return candidates
}
