package domain

import (
	"github.com/citybreaker/citybreaker-server/internal/util"
)

// Category is one of the closed set of tag categories a landmark can be
// described with. The taxonomy is versioned with the server: the description
// model is prompted with it, and anything it emits outside the taxonomy is
// rejected before it reaches storage or preference scores.
type Category string

const (
	CategoryArchitecture    Category = "architecture"
	CategoryHistoricalEra   Category = "historical_era"
	CategoryCultural        Category = "cultural"
	CategoryLandmarkType    Category = "landmark_type"
	CategoryVibe            Category = "vibe"
	CategoryExperienceStyle Category = "experience_style"
)

// tagsByCategory is the closed vocabulary. Canonical form is lower-case
// underscore slugs (see util.NormalizeTagSlug).
var tagsByCategory = map[Category][]string{
	CategoryArchitecture: {
		"classical", "gothic", "baroque", "renaissance", "modernist",
		"brutalist", "art_deco", "art_nouveau", "neoclassical", "byzantine",
		"romanesque", "moorish",
	},
	CategoryHistoricalEra: {
		"ancient", "medieval", "early_modern", "industrial", "modern",
		"contemporary",
	},
	CategoryCultural: {
		"religious", "royal", "governmental", "artistic", "literary",
		"musical", "military", "maritime", "academic", "industrial_heritage",
	},
	CategoryLandmarkType: {
		"museum", "monument", "palace", "castle", "cathedral", "church",
		"bridge", "tower", "square", "park", "theater", "library", "market",
		"ruins", "statue",
	},
	CategoryVibe: {
		"romantic", "majestic", "peaceful", "bustling", "mysterious",
		"melancholic", "vibrant", "serene", "imposing", "quaint",
	},
	CategoryExperienceStyle: {
		"guided_tours", "self_guided", "photography", "nightlife",
		"family_friendly", "hidden_gems", "popular_spots", "scenic_views",
	},
}

// tagIndex provides O(1) membership checks, built once at init.
var tagIndex = func() map[Category]map[string]bool {
	idx := make(map[Category]map[string]bool, len(tagsByCategory))
	for cat, tags := range tagsByCategory {
		set := make(map[string]bool, len(tags))
		for _, t := range tags {
			set[t] = true
		}
		idx[cat] = set
	}
	return idx
}()

// Categories returns all taxonomy categories in a stable order.
func Categories() []Category {
	return []Category{
		CategoryArchitecture,
		CategoryHistoricalEra,
		CategoryCultural,
		CategoryLandmarkType,
		CategoryVibe,
		CategoryExperienceStyle,
	}
}

// TagsFor returns the allowed tags for a category, or nil for an unknown
// category. The returned slice must not be modified.
func TagsFor(cat Category) []string {
	return tagsByCategory[cat]
}

// IsValidCategory reports whether cat is part of the taxonomy.
func IsValidCategory(cat Category) bool {
	_, ok := tagsByCategory[cat]
	return ok
}

// IsValidTag reports whether tag (in canonical form) belongs to cat.
func IsValidTag(cat Category, tag string) bool {
	return tagIndex[cat][tag]
}

// TagSet maps categories to the canonical tags assigned to a landmark.
type TagSet map[Category][]string

// IsEmpty reports whether the set contains no tags at all.
func (ts TagSet) IsEmpty() bool {
	for _, tags := range ts {
		if len(tags) > 0 {
			return false
		}
	}
	return true
}

// Flatten returns all tags across categories in stable category order.
func (ts TagSet) Flatten() []string {
	var out []string
	for _, cat := range Categories() {
		out = append(out, ts[cat]...)
	}
	return out
}

// NormalizeTagSet validates raw category/tag pairs against the taxonomy.
// Category names and tags are normalized to canonical slugs first, so
// "ARCHITECTURE"/"Art Deco" and "architecture"/"art_deco" are the same
// input. Unknown categories and unknown tags are collected into rejected
// rather than failing the whole set; duplicates are dropped.
func NormalizeTagSet(raw map[string][]string) (ts TagSet, rejected []string) {
	ts = make(TagSet)

	for rawCat, rawTags := range raw {
		cat := Category(util.NormalizeTagSlug(rawCat))
		if !IsValidCategory(cat) {
			for _, t := range rawTags {
				rejected = append(rejected, rawCat+"/"+t)
			}
			continue
		}

		seen := make(map[string]bool, len(rawTags))
		for _, rawTag := range rawTags {
			tag := util.NormalizeTagSlug(rawTag)
			if !IsValidTag(cat, tag) {
				rejected = append(rejected, string(cat)+"/"+rawTag)
				continue
			}
			if seen[tag] {
				continue
			}
			seen[tag] = true
			ts[cat] = append(ts[cat], tag)
		}
	}

	return ts, rejected
}
