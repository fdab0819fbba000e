package domain

import (
	"time"

	"github.com/citybreaker/citybreaker-server/internal/geo"
)

// Visibility controls where a committed scan is stored.
type Visibility string

const (
	// VisibilityPublic puts the scan in the global pool (shared with other
	// users' recommendations) plus a pointer under the owner's branch.
	VisibilityPublic Visibility = "public"
	// VisibilityPrivate stores the full record only under the owner's
	// branch. Private scans never enter the global pool.
	VisibilityPrivate Visibility = "private"
)

// IsValid reports whether v is a known visibility.
func (v Visibility) IsValid() bool {
	return v == VisibilityPublic || v == VisibilityPrivate
}

// ScanRecord is a committed landmark scan.
//
// The photo itself stays on the client; the server keeps a content hash for
// dedup plus a blurhash so clients can render a placeholder before the image
// loads from local storage.
type ScanRecord struct {
	ID          string         `json:"id"`
	OwnerID     string         `json:"owner_id"`
	Name        string         `json:"name"`
	Location    geo.Coordinate `json:"location"`
	Description string         `json:"description"`
	Tags        TagSet         `json:"tags"`
	Rating      int            `json:"rating,omitempty"` // 1-5, 0 = unrated
	PhotoHash   string         `json:"photo_hash,omitempty"`
	BlurHash    string         `json:"blur_hash,omitempty"`
	Visibility  Visibility     `json:"visibility"`
	CapturedAt  time.Time      `json:"captured_at"`
	CreatedAt   time.Time      `json:"created_at"`
}

// Rankable reports whether the record carries enough information to be
// scored: a landmark name and at least one tag. The global pool tolerates
// partial records (older app versions wrote them), the ranker just skips
// them.
func (s *ScanRecord) Rankable() bool {
	return s.Name != "" && !s.Tags.IsEmpty()
}

// ScanRef is the pointer entry written under users/{uid}/publicScans.
// It references the full record in the global pool.
type ScanRef struct {
	ID string `json:"id"`
}

// ScanDraft is the output of the identify pipeline, held by the client until
// the user confirms the scan. Nothing is persisted until an explicit commit.
type ScanDraft struct {
	Name        string         `json:"name"`
	Location    geo.Coordinate `json:"location"`
	Description string         `json:"description"`
	Tags        TagSet         `json:"tags"`
	PhotoHash   string         `json:"photo_hash,omitempty"`
	BlurHash    string         `json:"blur_hash,omitempty"`
	CapturedAt  time.Time      `json:"captured_at"`
}
