package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/citybreaker/citybreaker-server/internal/domain"
)

func (s *Server) registerUserRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-me",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/me",
		Summary:     "Get current user",
		Description: "Returns the authenticated user's profile",
		Tags:        []string{"Users"},
		Security:    bearerSecurity,
	}, s.handleGetMe)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-my-preferences",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/me/preferences",
		Summary:     "Get preference profile",
		Description: "Returns the authenticated user's accumulated taste scores per taxonomy category",
		Tags:        []string{"Users"},
		Security:    bearerSecurity,
	}, s.handleGetMyPreferences)
}

// === DTOs ===

// UserOutput wraps a user response for Huma.
type UserOutput struct {
	Body UserResponse
}

// PreferenceProfileResponse is a user's taste scores keyed by category then tag.
type PreferenceProfileResponse struct {
	UserID    string                    `json:"user_id" doc:"User ID"`
	Scores    map[string]map[string]int `json:"scores" doc:"Scores keyed by category then tag"`
	UpdatedAt time.Time                 `json:"updated_at,omitzero" doc:"Last feedback timestamp"`
}

// PreferenceProfileOutput wraps the preference profile for Huma.
type PreferenceProfileOutput struct {
	Body PreferenceProfileResponse
}

// === Handlers ===

func (s *Server) handleGetMe(ctx context.Context, _ *struct{}) (*UserOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.services.Auth.GetMe(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &UserOutput{Body: mapUserResponse(user)}, nil
}

func (s *Server) handleGetMyPreferences(ctx context.Context, _ *struct{}) (*PreferenceProfileOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	profile, err := s.services.Preference.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &PreferenceProfileOutput{Body: mapProfileResponse(profile)}, nil
}

// === Helpers ===

func mapProfileResponse(profile *domain.PreferenceProfile) PreferenceProfileResponse {
	scores := make(map[string]map[string]int, len(profile.Scores))
	for cat, tags := range profile.Scores {
		catScores := make(map[string]int, len(tags))
		for tag, score := range tags {
			catScores[tag] = score
		}
		scores[string(cat)] = catScores
	}
	return PreferenceProfileResponse{
		UserID:    profile.UserID,
		Scores:    scores,
		UpdatedAt: profile.UpdatedAt,
	}
}
