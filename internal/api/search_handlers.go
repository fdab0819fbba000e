package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/citybreaker/citybreaker-server/internal/search"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "search-scans",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search scans",
		Description: "Full-text search over the public scan pool with tag and rating filters",
		Tags:        []string{"Search"},
		Security:    bearerSecurity,
	}, s.handleSearchScans)
}

// === DTOs ===

// SearchScansInput contains the search query and filters.
type SearchScansInput struct {
	Query      string   `query:"q" maxLength:"200" doc:"Search query; empty matches everything"`
	Tags       []string `query:"tags" doc:"Filter by exact taxonomy tag slugs"`
	MinRating  int      `query:"min_rating" minimum:"0" maximum:"5" doc:"Minimum scan rating"`
	Limit      int      `query:"limit" default:"20" minimum:"1" maximum:"100" doc:"Page size"`
	Offset     int      `query:"offset" minimum:"0" doc:"Page offset"`
	SortBy     string   `query:"sort_by" default:"relevance" enum:"relevance,name,recent,rating" doc:"Sort key"`
	SortOrder  string   `query:"sort_order" default:"desc" enum:"asc,desc" doc:"Sort direction"`
	ExcludeOwn bool     `query:"exclude_own" doc:"Drop the user's own scans from results"`
}

// SearchHitResponse is a single search result with its resolved scan.
type SearchHitResponse struct {
	Score      float64           `json:"score" doc:"Relevance score"`
	Highlights map[string]string `json:"highlights,omitempty" doc:"Highlighted matches per field"`
	Scan       ScanResponse      `json:"scan" doc:"Resolved scan record"`
}

// FacetCount represents a facet value and its count.
type FacetCount struct {
	Value string `json:"value" doc:"Facet value"`
	Count int    `json:"count" doc:"Number of matches"`
}

// SearchResponse contains search results.
type SearchResponse struct {
	Query  string              `json:"query" doc:"Original search query"`
	Total  uint64              `json:"total" doc:"Total matches"`
	TookMs int64               `json:"took_ms" doc:"Search duration in milliseconds"`
	Hits   []SearchHitResponse `json:"hits" doc:"Search results"`
	Facets []FacetCount        `json:"facets,omitempty" doc:"Tag facet counts"`
}

// SearchOutput wraps the search response for Huma.
type SearchOutput struct {
	Body SearchResponse
}

// === Handlers ===

func (s *Server) handleSearchScans(ctx context.Context, input *SearchScansInput) (*SearchOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	params := search.DefaultSearchParams()
	params.Query = input.Query
	params.Tags = input.Tags
	params.MinRating = input.MinRating
	params.Limit = input.Limit
	params.Offset = input.Offset
	params.SortBy = input.SortBy
	params.SortOrder = input.SortOrder
	if input.ExcludeOwn {
		params.ExcludeOwner = userID
	}

	result, records, err := s.services.Search.SearchScans(ctx, params)
	if err != nil {
		return nil, err
	}

	resp := SearchResponse{
		Query:  result.Query,
		Total:  result.Total,
		TookMs: result.TookMs,
		Hits:   make([]SearchHitResponse, 0, len(records)),
	}

	// Hits whose pool record vanished were dropped from records; match the
	// survivors back to their hits by ID.
	hitsByID := make(map[string]search.SearchHit, len(result.Hits))
	for _, hit := range result.Hits {
		hitsByID[hit.ID] = hit
	}
	for _, scan := range records {
		hit := hitsByID[scan.ID]
		resp.Hits = append(resp.Hits, SearchHitResponse{
			Score:      hit.Score,
			Highlights: hit.Highlights,
			Scan:       mapScanResponse(scan),
		})
	}

	for _, facet := range result.Facets.Tags {
		resp.Facets = append(resp.Facets, FacetCount{
			Value: facet.Value,
			Count: facet.Count,
		})
	}

	return &SearchOutput{Body: resp}, nil
}
