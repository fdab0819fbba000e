// Package util provides common utility functions.
package util

import (
	"regexp"
	"strings"
)

var (
	// Matches spaces, dashes, and slashes (for replacement with underscores).
	wordSeparatorRe = regexp.MustCompile(`[\s\-/]+`)
	// Matches non-alphanumeric characters (except underscores).
	nonAlphanumericRe = regexp.MustCompile(`[^a-z0-9_]`)
	// Matches multiple consecutive underscores.
	multipleUnderscoreRe = regexp.MustCompile(`_+`)
)

// NormalizeTagSlug converts free-form tag text to a canonical tag slug.
// The slug is the source of truth for tag identity: preference scores,
// scan records, and taxonomy validation all operate on slugs.
//
// Normalization rules:
//  1. Trim whitespace and lowercase
//  2. Replace spaces, dashes, and slashes with underscores
//  3. Remove non-alphanumeric characters (except underscores)
//  4. Collapse multiple underscores
//  5. Trim leading/trailing underscores
//
// Examples:
//
//	"Art Deco"      → "art_deco"
//	"art-deco"      → "art_deco"
//	"GOTHIC"        → "gothic"
//	"  hidden gems " → "hidden_gems"
//	"__guided__"    → "guided"
func NormalizeTagSlug(input string) string {
	// 1. Trim and lowercase
	s := strings.ToLower(strings.TrimSpace(input))

	// 2. Replace word separators (spaces, dashes, slashes) with underscores
	s = wordSeparatorRe.ReplaceAllString(s, "_")

	// 3. Remove non-alphanumeric (except underscores)
	s = nonAlphanumericRe.ReplaceAllString(s, "")

	// 4. Collapse multiple underscores
	s = multipleUnderscoreRe.ReplaceAllString(s, "_")

	// 5. Trim leading/trailing underscores
	s = strings.Trim(s, "_")

	return s
}
