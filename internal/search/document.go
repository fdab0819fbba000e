// Package search provides full-text search over the public scan pool using
// Bleve, with fuzzy matching and tag faceting.
package search

import (
	"github.com/citybreaker/citybreaker-server/internal/domain"
)

// ScanDocument is the document structure for the Bleve index.
// Only public scans are indexed; private scans never leave their owner's
// branch of the store.
type ScanDocument struct {
	// Identity
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"`

	// Primary searchable text
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	// Taxonomy tag slugs, flattened across categories for exact filtering
	// and faceting (e.g. "gothic", "art_deco").
	Tags []string `json:"tags,omitempty"`

	// Numeric fields for range queries and sorting
	Rating int `json:"rating,omitempty"` // 1-5, 0 when unrated

	// Timestamps for sorting
	CreatedAt int64 `json:"created_at"` // Unix millis
}

// ToMap converts the document to a map with lowercase field names.
// This ensures field names match the Bleve index mapping.
// Bleve by default uses Go struct field names (capitalized), but our
// mapping uses lowercase names, so we convert explicitly.
func (d *ScanDocument) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":         d.ID,
		"owner_id":   d.OwnerID,
		"name":       d.Name,
		"created_at": d.CreatedAt,
	}

	// Optional fields - only add if non-empty
	if d.Description != "" {
		m["description"] = d.Description
	}
	if len(d.Tags) > 0 {
		m["tags"] = d.Tags
	}
	if d.Rating > 0 {
		m["rating"] = d.Rating
	}

	return m
}

// ScanToDocument converts a scan record to its index document.
func ScanToDocument(scan *domain.ScanRecord) *ScanDocument {
	return &ScanDocument{
		ID:          scan.ID,
		OwnerID:     scan.OwnerID,
		Name:        scan.Name,
		Description: scan.Description,
		Tags:        scan.Tags.Flatten(),
		Rating:      scan.Rating,
		CreatedAt:   scan.CreatedAt.UnixMilli(),
	}
}
