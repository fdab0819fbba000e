package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/citybreaker/citybreaker-server/internal/domain"
	"github.com/citybreaker/citybreaker-server/internal/service"
)

func (s *Server) registerFeedbackRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "submit-feedback",
		Method:      http.MethodPost,
		Path:        "/api/v1/feedback",
		Summary:     "Submit feedback",
		Description: "Applies a reaction to a scan's tags or an explicit tag set, updating the user's preference scores",
		Tags:        []string{"Feedback"},
		Security:    bearerSecurity,
	}, s.handleSubmitFeedback)
}

// === DTOs ===

// FeedbackInput contains the reaction and its target.
// Exactly one of scan_id or tags identifies the target.
type FeedbackInput struct {
	Body struct {
		ScanID   string              `json:"scan_id,omitempty" doc:"Scan whose tags the reaction applies to"`
		Tags     map[string][]string `json:"tags,omitempty" doc:"Explicit taxonomy tags keyed by category"`
		Reaction string              `json:"reaction" doc:"Reaction: negative, positive, or strong_positive"`
	}
}

// FeedbackResponse reports what the feedback changed.
type FeedbackResponse struct {
	Delta   int `json:"delta" doc:"Score change per tag"`
	Applied int `json:"applied" doc:"Number of (category, tag) pairs updated"`
}

// FeedbackOutput wraps the feedback response for Huma.
type FeedbackOutput struct {
	Body FeedbackResponse
}

// === Handlers ===

func (s *Server) handleSubmitFeedback(ctx context.Context, input *FeedbackInput) (*FeedbackOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := s.services.Preference.ApplyFeedback(ctx, userID, service.FeedbackRequest{
		ScanID:   input.Body.ScanID,
		Tags:     input.Body.Tags,
		Reaction: domain.Reaction(input.Body.Reaction),
	})
	if err != nil {
		return nil, err
	}

	return &FeedbackOutput{Body: FeedbackResponse{
		Delta:   resp.Delta,
		Applied: resp.Applied,
	}}, nil
}
