package domain

import (
	"time"

	"github.com/citybreaker/citybreaker-server/internal/geo"
)

// CandidateSource identifies where a recommendation candidate came from.
type CandidateSource string

const (
	// CandidateSourceScan means the candidate is another user's public scan.
	CandidateSourceScan CandidateSource = "scan"
	// CandidateSourceExternal means the candidate came from external place
	// search and carries no preference match score.
	CandidateSourceExternal CandidateSource = "external"
)

// Candidate is a single ranked recommendation.
type Candidate struct {
	ID          string          `json:"id,omitempty"`
	Name        string          `json:"name"`
	Location    geo.Coordinate  `json:"location"`
	Description string          `json:"description,omitempty"`
	Tags        TagSet          `json:"tags,omitempty"`
	Rating      int             `json:"rating,omitempty"`
	BlurHash    string          `json:"blur_hash,omitempty"`
	CapturedAt  time.Time       `json:"captured_at,omitzero"`
	MatchScore  int             `json:"match_score"`
	Source      CandidateSource `json:"source"`
}

// Place is a point of interest returned by external nearby search.
type Place struct {
	PlaceID  string         `json:"place_id"`
	Name     string         `json:"name"`
	Address  string         `json:"address,omitempty"`
	Location geo.Coordinate `json:"location"`
	Rating   float64        `json:"rating,omitempty"`
	Types    []string       `json:"types,omitempty"`
	OpenNow  *bool          `json:"open_now,omitempty"`
}
