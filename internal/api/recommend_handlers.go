package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/citybreaker/citybreaker-server/internal/domain"
	"github.com/citybreaker/citybreaker-server/internal/geo"
)

func (s *Server) registerRecommendationRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-recommendations",
		Method:      http.MethodGet,
		Path:        "/api/v1/recommendations",
		Summary:     "Get recommendations",
		Description: "Ranks public scans against the user's preference profile and blends in external landmark search",
		Tags:        []string{"Recommendations"},
		Security:    bearerSecurity,
	}, s.handleGetRecommendations)

	huma.Register(s.api, huma.Operation{
		OperationID: "nearby-landmarks",
		Method:      http.MethodGet,
		Path:        "/api/v1/nearby/landmarks",
		Summary:     "Nearby landmarks",
		Description: "Finds landmarks around a point via external place search, biased by the user's preference tags",
		Tags:        []string{"Nearby"},
		Security:    bearerSecurity,
	}, s.handleNearbyLandmarks)

	huma.Register(s.api, huma.Operation{
		OperationID: "nearby-restaurants",
		Method:      http.MethodGet,
		Path:        "/api/v1/nearby/restaurants",
		Summary:     "Nearby restaurants",
		Description: "Finds restaurants around a point",
		Tags:        []string{"Nearby"},
		Security:    bearerSecurity,
	}, s.handleNearbyRestaurants)

	huma.Register(s.api, huma.Operation{
		OperationID: "nearby-experiences",
		Method:      http.MethodGet,
		Path:        "/api/v1/nearby/experiences",
		Summary:     "Nearby experiences",
		Description: "Geocodes a free-form location and finds activity venues within walking distance",
		Tags:        []string{"Nearby"},
		Security:    bearerSecurity,
	}, s.handleNearbyExperiences)
}

// === DTOs ===

// GeoQueryInput carries the origin and search radius for location queries.
type GeoQueryInput struct {
	Lat    float64 `query:"lat" minimum:"-90" maximum:"90" doc:"Origin latitude"`
	Lng    float64 `query:"lng" minimum:"-180" maximum:"180" doc:"Origin longitude"`
	Radius float64 `query:"radius" minimum:"1000" maximum:"50000" doc:"Search radius in meters; server default when omitted"`
}

// searchRadius resolves the effective radius for a location query.
func (s *Server) searchRadius(input *GeoQueryInput) float64 {
	if input.Radius > 0 {
		return input.Radius
	}
	return s.defaultRadiusMeters
}

// CandidateResponse is a single ranked recommendation.
type CandidateResponse struct {
	ID          string              `json:"id,omitempty" doc:"Scan ID or external place ID"`
	Name        string              `json:"name" doc:"Landmark name"`
	Location    CoordinateResponse  `json:"location" doc:"Landmark location"`
	Description string              `json:"description,omitempty" doc:"Description when sourced from a scan"`
	Tags        map[string][]string `json:"tags,omitempty" doc:"Taxonomy tags keyed by category"`
	Rating      int                 `json:"rating,omitempty" doc:"Scan rating, 0 = unrated"`
	BlurHash    string              `json:"blur_hash,omitempty" doc:"Blurhash placeholder"`
	CapturedAt  time.Time           `json:"captured_at,omitzero" doc:"Capture timestamp"`
	MatchScore  int                 `json:"match_score" doc:"Preference match score, 0 for external results"`
	Source      string              `json:"source" doc:"Candidate source: scan or external"`
}

// CandidateListResponse contains ranked candidates.
type CandidateListResponse struct {
	Candidates []CandidateResponse `json:"candidates" doc:"Ranked candidates, best match first"`
	Total      int                 `json:"total" doc:"Number of candidates"`
}

// CandidateListOutput wraps the candidate list for Huma.
type CandidateListOutput struct {
	Body CandidateListResponse
}

// PlaceResponse is a point of interest from external nearby search.
type PlaceResponse struct {
	PlaceID  string             `json:"place_id" doc:"External place ID"`
	Name     string             `json:"name" doc:"Place name"`
	Address  string             `json:"address,omitempty" doc:"Formatted address"`
	Location CoordinateResponse `json:"location" doc:"Place location"`
	Rating   float64            `json:"rating,omitempty" doc:"External rating"`
	Types    []string           `json:"types,omitempty" doc:"Place type tags"`
	OpenNow  *bool              `json:"open_now,omitempty" doc:"Whether the place is open now, if known"`
}

// PlaceListResponse contains external places.
type PlaceListResponse struct {
	Places []PlaceResponse `json:"places" doc:"Places found"`
	Total  int             `json:"total" doc:"Number of places"`
}

// PlaceListOutput wraps the place list for Huma.
type PlaceListOutput struct {
	Body PlaceListResponse
}

// ExperiencesInput carries the free-form location for experience search.
type ExperiencesInput struct {
	Location string `query:"location" minLength:"1" maxLength:"200" doc:"Free-form location, e.g. a city or address"`
}

// === Handlers ===

func (s *Server) handleGetRecommendations(ctx context.Context, input *GeoQueryInput) (*CandidateListOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	origin := geo.Coordinate{Lat: input.Lat, Lng: input.Lng}
	candidates, err := s.services.Recommend.Recommend(ctx, userID, origin, s.searchRadius(input))
	if err != nil {
		return nil, err
	}

	return &CandidateListOutput{Body: mapCandidateList(candidates)}, nil
}

func (s *Server) handleNearbyLandmarks(ctx context.Context, input *GeoQueryInput) (*CandidateListOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	origin := geo.Coordinate{Lat: input.Lat, Lng: input.Lng}
	candidates, err := s.services.Recommend.NearbyLandmarks(ctx, userID, origin, s.searchRadius(input))
	if err != nil {
		return nil, err
	}

	return &CandidateListOutput{Body: mapCandidateList(candidates)}, nil
}

func (s *Server) handleNearbyRestaurants(ctx context.Context, input *GeoQueryInput) (*PlaceListOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	origin := geo.Coordinate{Lat: input.Lat, Lng: input.Lng}
	results, err := s.services.Recommend.NearbyRestaurants(ctx, origin, s.searchRadius(input))
	if err != nil {
		return nil, err
	}

	return &PlaceListOutput{Body: mapPlaceList(results)}, nil
}

func (s *Server) handleNearbyExperiences(ctx context.Context, input *ExperiencesInput) (*PlaceListOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	results, err := s.services.Recommend.NearbyExperiences(ctx, input.Location)
	if err != nil {
		return nil, err
	}

	return &PlaceListOutput{Body: mapPlaceList(results)}, nil
}

// === Helpers ===

func mapCandidateList(candidates []domain.Candidate) CandidateListResponse {
	resp := CandidateListResponse{
		Candidates: make([]CandidateResponse, 0, len(candidates)),
		Total:      len(candidates),
	}
	for _, c := range candidates {
		resp.Candidates = append(resp.Candidates, CandidateResponse{
			ID:          c.ID,
			Name:        c.Name,
			Location:    CoordinateResponse{Lat: c.Location.Lat, Lng: c.Location.Lng},
			Description: c.Description,
			Tags:        tagsToRaw(c.Tags),
			Rating:      c.Rating,
			BlurHash:    c.BlurHash,
			CapturedAt:  c.CapturedAt,
			MatchScore:  c.MatchScore,
			Source:      string(c.Source),
		})
	}
	return resp
}

func mapPlaceList(results []domain.Place) PlaceListResponse {
	resp := PlaceListResponse{
		Places: make([]PlaceResponse, 0, len(results)),
		Total:  len(results),
	}
	for _, p := range results {
		resp.Places = append(resp.Places, PlaceResponse{
			PlaceID:  p.PlaceID,
			Name:     p.Name,
			Address:  p.Address,
			Location: CoordinateResponse{Lat: p.Location.Lat, Lng: p.Location.Lng},
			Rating:   p.Rating,
			Types:    p.Types,
			OpenNow:  p.OpenNow,
		})
	}
	return resp
}
