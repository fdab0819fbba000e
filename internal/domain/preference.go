package domain

import "time"

// Reaction is the feedback a user gives on a recommended or scanned landmark.
type Reaction string

const (
	ReactionNegative       Reaction = "negative"
	ReactionPositive       Reaction = "positive"
	ReactionStrongPositive Reaction = "strong_positive"
)

// Delta returns the score change a reaction applies to each tag of the
// landmark. Unknown reactions map to zero, which callers treat as a no-op
// rather than an error so older clients with new reaction values degrade
// quietly.
func (r Reaction) Delta() int {
	switch r {
	case ReactionNegative:
		return -1
	case ReactionPositive:
		return 1
	case ReactionStrongPositive:
		return 2
	default:
		return 0
	}
}

// PreferenceProfile holds a user's accumulated taste scores.
// Scores are non-negative integers per canonical tag; a missing entry
// means zero. The zero value is a valid empty profile.
type PreferenceProfile struct {
	UserID    string                      `json:"user_id"`
	Scores    map[Category]map[string]int `json:"scores"`
	UpdatedAt time.Time                   `json:"updated_at"`
}

// NewPreferenceProfile creates an empty profile for a user.
func NewPreferenceProfile(userID string) *PreferenceProfile {
	return &PreferenceProfile{
		UserID: userID,
		Scores: make(map[Category]map[string]int),
	}
}

// Score returns the score for a tag, treating missing entries as zero.
func (p *PreferenceProfile) Score(cat Category, tag string) int {
	if p == nil || p.Scores == nil {
		return 0
	}
	return p.Scores[cat][tag]
}

// ScoreTagSet sums the user's scores over every tag in the set.
// This is the match score used by the candidate ranker.
func (p *PreferenceProfile) ScoreTagSet(ts TagSet) int {
	total := 0
	for cat, tags := range ts {
		for _, tag := range tags {
			total += p.Score(cat, tag)
		}
	}
	return total
}

// ActiveTags returns every tag with a score above zero, in stable category
// order and taxonomy order within each category. These are the preference
// keywords fed to external landmark search.
func (p *PreferenceProfile) ActiveTags() []string {
	if p == nil || p.Scores == nil {
		return nil
	}

	var out []string
	for _, cat := range Categories() {
		catScores := p.Scores[cat]
		if len(catScores) == 0 {
			continue
		}
		// Iterate taxonomy order, not map order, for deterministic output.
		for _, tag := range TagsFor(cat) {
			if catScores[tag] > 0 {
				out = append(out, tag)
			}
		}
	}
	return out
}
