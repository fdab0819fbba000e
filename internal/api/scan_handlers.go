package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/citybreaker/citybreaker-server/internal/domain"
	"github.com/citybreaker/citybreaker-server/internal/geo"
	"github.com/citybreaker/citybreaker-server/internal/service"
)

func (s *Server) registerScanRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "identify-scan",
		Method:      http.MethodPost,
		Path:        "/api/v1/scans/identify",
		Summary:     "Identify a landmark photo",
		Description: "Runs landmark detection and description on an uploaded photo. Returns a draft; nothing is persisted until the draft is committed.",
		Tags:        []string{"Scans"},
		Security:    bearerSecurity,
	}, s.handleIdentifyScan)

	huma.Register(s.api, huma.Operation{
		OperationID: "commit-scan",
		Method:      http.MethodPost,
		Path:        "/api/v1/scans",
		Summary:     "Commit a scan",
		Description: "Persists a confirmed scan draft with the chosen visibility and optional rating",
		Tags:        []string{"Scans"},
		Security:    bearerSecurity,
	}, s.handleCommitScan)

	huma.Register(s.api, huma.Operation{
		OperationID: "list-my-scans",
		Method:      http.MethodGet,
		Path:        "/api/v1/scans",
		Summary:     "List my scans",
		Description: "Returns all of the authenticated user's scans, public and private",
		Tags:        []string{"Scans"},
		Security:    bearerSecurity,
	}, s.handleListMyScans)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-scan",
		Method:      http.MethodGet,
		Path:        "/api/v1/scans/{id}",
		Summary:     "Get a scan",
		Description: "Returns a public scan, or one of the authenticated user's private scans",
		Tags:        []string{"Scans"},
		Security:    bearerSecurity,
	}, s.handleGetScan)

	huma.Register(s.api, huma.Operation{
		OperationID: "delete-scan",
		Method:      http.MethodDelete,
		Path:        "/api/v1/scans/{id}",
		Summary:     "Delete a scan",
		Description: "Removes one of the authenticated user's scans",
		Tags:        []string{"Scans"},
		Security:    bearerSecurity,
	}, s.handleDeleteScan)
}

// === DTOs ===

// IdentifyScanInput contains the raw photo upload.
type IdentifyScanInput struct {
	ContentType string `header:"Content-Type" doc:"Image content type"`
	RawBody     []byte
}

// CoordinateResponse is a latitude/longitude pair.
type CoordinateResponse struct {
	Lat float64 `json:"lat" doc:"Latitude"`
	Lng float64 `json:"lng" doc:"Longitude"`
}

// ScanDraftResponse is the identify pipeline output held by the client until commit.
type ScanDraftResponse struct {
	Name        string              `json:"name" doc:"Landmark name"`
	Location    CoordinateResponse  `json:"location" doc:"Landmark location"`
	Description string              `json:"description" doc:"Generated description"`
	Tags        map[string][]string `json:"tags" doc:"Taxonomy tags keyed by category"`
	PhotoHash   string              `json:"photo_hash,omitempty" doc:"SHA-256 of the photo"`
	BlurHash    string              `json:"blur_hash,omitempty" doc:"Blurhash placeholder"`
	CapturedAt  time.Time           `json:"captured_at" doc:"Capture timestamp"`
}

// ScanDraftOutput wraps a scan draft for Huma.
type ScanDraftOutput struct {
	Body ScanDraftResponse
}

// CommitScanInput contains the confirmed draft plus the user's choices.
type CommitScanInput struct {
	Body struct {
		Draft      ScanDraftResponse `json:"draft" doc:"Draft returned by identify"`
		Visibility string            `json:"visibility" enum:"public,private" doc:"Scan visibility"`
		Rating     int               `json:"rating,omitempty" minimum:"0" maximum:"5" doc:"Optional 1-5 rating, 0 = unrated"`
	}
}

// ScanResponse is a committed scan in API responses.
type ScanResponse struct {
	ID          string              `json:"id" doc:"Scan ID"`
	OwnerID     string              `json:"owner_id" doc:"Owner user ID"`
	Name        string              `json:"name" doc:"Landmark name"`
	Location    CoordinateResponse  `json:"location" doc:"Landmark location"`
	Description string              `json:"description" doc:"Generated description"`
	Tags        map[string][]string `json:"tags" doc:"Taxonomy tags keyed by category"`
	Rating      int                 `json:"rating,omitempty" doc:"1-5 rating, 0 = unrated"`
	PhotoHash   string              `json:"photo_hash,omitempty" doc:"SHA-256 of the photo"`
	BlurHash    string              `json:"blur_hash,omitempty" doc:"Blurhash placeholder"`
	Visibility  string              `json:"visibility" doc:"Scan visibility"`
	CapturedAt  time.Time           `json:"captured_at" doc:"Capture timestamp"`
	CreatedAt   time.Time           `json:"created_at" doc:"Commit timestamp"`
}

// ScanOutput wraps a single scan for Huma.
type ScanOutput struct {
	Body ScanResponse
}

// ScanListResponse contains the user's scans.
type ScanListResponse struct {
	Scans []ScanResponse `json:"scans" doc:"Committed scans"`
	Total int            `json:"total" doc:"Number of scans"`
}

// ScanListOutput wraps the scan list for Huma.
type ScanListOutput struct {
	Body ScanListResponse
}

// ScanIDInput identifies a scan by path parameter.
type ScanIDInput struct {
	ID string `path:"id" doc:"Scan ID"`
}

// === Handlers ===

func (s *Server) handleIdentifyScan(ctx context.Context, input *IdentifyScanInput) (*ScanDraftOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	if !isValidImageType(input.ContentType) {
		return nil, huma.Error400BadRequest(
			fmt.Sprintf("invalid image type %q, must be image/jpeg, image/png, or image/webp", input.ContentType),
		)
	}

	draft, err := s.services.Scan.Identify(ctx, input.RawBody)
	if err != nil {
		return nil, err
	}

	return &ScanDraftOutput{Body: mapDraftResponse(draft)}, nil
}

func (s *Server) handleCommitScan(ctx context.Context, input *CommitScanInput) (*ScanOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	scan, err := s.services.Scan.CommitScan(ctx, userID, service.CommitScanRequest{
		Draft:      draftFromRequest(input.Body.Draft),
		Visibility: domain.Visibility(input.Body.Visibility),
		Rating:     input.Body.Rating,
	})
	if err != nil {
		return nil, err
	}

	return &ScanOutput{Body: mapScanResponse(scan)}, nil
}

func (s *Server) handleListMyScans(ctx context.Context, _ *struct{}) (*ScanListOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	scans, err := s.services.Scan.ListUserScans(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := ScanListResponse{
		Scans: make([]ScanResponse, 0, len(scans)),
		Total: len(scans),
	}
	for _, scan := range scans {
		resp.Scans = append(resp.Scans, mapScanResponse(scan))
	}

	return &ScanListOutput{Body: resp}, nil
}

func (s *Server) handleGetScan(ctx context.Context, input *ScanIDInput) (*ScanOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	scan, err := s.services.Scan.GetScan(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	return &ScanOutput{Body: mapScanResponse(scan)}, nil
}

func (s *Server) handleDeleteScan(ctx context.Context, input *ScanIDInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Scan.DeleteScan(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Scan deleted"}}, nil
}

// === Helpers ===

func mapDraftResponse(draft *domain.ScanDraft) ScanDraftResponse {
	return ScanDraftResponse{
		Name:        draft.Name,
		Location:    CoordinateResponse{Lat: draft.Location.Lat, Lng: draft.Location.Lng},
		Description: draft.Description,
		Tags:        tagsToRaw(draft.Tags),
		PhotoHash:   draft.PhotoHash,
		BlurHash:    draft.BlurHash,
		CapturedAt:  draft.CapturedAt,
	}
}

func draftFromRequest(req ScanDraftResponse) domain.ScanDraft {
	return domain.ScanDraft{
		Name:        req.Name,
		Location:    geo.Coordinate{Lat: req.Location.Lat, Lng: req.Location.Lng},
		Description: req.Description,
		Tags:        rawToTags(req.Tags),
		PhotoHash:   req.PhotoHash,
		BlurHash:    req.BlurHash,
		CapturedAt:  req.CapturedAt,
	}
}

func mapScanResponse(scan *domain.ScanRecord) ScanResponse {
	return ScanResponse{
		ID:          scan.ID,
		OwnerID:     scan.OwnerID,
		Name:        scan.Name,
		Location:    CoordinateResponse{Lat: scan.Location.Lat, Lng: scan.Location.Lng},
		Description: scan.Description,
		Tags:        tagsToRaw(scan.Tags),
		Rating:      scan.Rating,
		PhotoHash:   scan.PhotoHash,
		BlurHash:    scan.BlurHash,
		Visibility:  string(scan.Visibility),
		CapturedAt:  scan.CapturedAt,
		CreatedAt:   scan.CreatedAt,
	}
}

func tagsToRaw(tags domain.TagSet) map[string][]string {
	raw := make(map[string][]string, len(tags))
	for cat, values := range tags {
		raw[string(cat)] = values
	}
	return raw
}

func rawToTags(raw map[string][]string) domain.TagSet {
	tags := make(domain.TagSet, len(raw))
	for cat, values := range raw {
		tags[domain.Category(cat)] = values
	}
	return tags
}

// isValidImageType checks the upload content type, ignoring parameters
// such as "image/jpeg; charset=utf-8".
func isValidImageType(contentType string) bool {
	mediaType := contentType
	if before, _, ok := strings.Cut(contentType, ";"); ok {
		mediaType = strings.TrimSpace(before)
	}

	switch mediaType {
	case "image/jpeg", "image/png", "image/webp":
		return true
	}
	return false
}
