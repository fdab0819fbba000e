package api

import (
	"github.com/citybreaker/citybreaker-server/internal/service"
)

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Auth       *service.AuthService
	Session    *service.SessionService
	Preference *service.PreferenceService
	Scan       *service.ScanService
	Recommend  *service.RecommendService
	Search     *service.SearchService
}
