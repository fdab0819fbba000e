package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReaction_Delta(t *testing.T) {
	tests := []struct {
		name     string
		reaction Reaction
		expected int
	}{
		{"negative", ReactionNegative, -1},
		{"positive", ReactionPositive, 1},
		{"strong positive", ReactionStrongPositive, 2},
		{"unknown reaction is a no-op", Reaction("meh"), 0},
		{"empty reaction is a no-op", Reaction(""), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.reaction.Delta())
		})
	}
}

func TestPreferenceProfile_Score(t *testing.T) {
	p := NewPreferenceProfile("user-1")
	p.Scores[CategoryArchitecture] = map[string]int{"gothic": 3}

	assert.Equal(t, 3, p.Score(CategoryArchitecture, "gothic"))
	assert.Equal(t, 0, p.Score(CategoryArchitecture, "baroque"), "absent tag reads as zero")
	assert.Equal(t, 0, p.Score(CategoryVibe, "serene"), "absent category reads as zero")

	var empty *PreferenceProfile
	assert.Equal(t, 0, empty.Score(CategoryArchitecture, "gothic"), "nil profile reads as zero")
}

func TestPreferenceProfile_ScoreTagSet(t *testing.T) {
	p := NewPreferenceProfile("user-1")
	p.Scores[CategoryArchitecture] = map[string]int{"gothic": 3}
	p.Scores[CategoryVibe] = map[string]int{"majestic": 1}

	tests := []struct {
		name     string
		tags     TagSet
		expected int
	}{
		{
			name:     "single matching tag",
			tags:     TagSet{CategoryArchitecture: {"gothic"}},
			expected: 3,
		},
		{
			name: "sums across categories",
			tags: TagSet{
				CategoryArchitecture: {"gothic"},
				CategoryVibe:         {"majestic"},
			},
			expected: 4,
		},
		{
			name:     "unmatched tags score zero",
			tags:     TagSet{CategoryArchitecture: {"baroque"}, CategoryVibe: {"serene"}},
			expected: 0,
		},
		{
			name:     "empty set",
			tags:     TagSet{},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, p.ScoreTagSet(tt.tags))
		})
	}
}

func TestPreferenceProfile_ActiveTags(t *testing.T) {
	p := NewPreferenceProfile("user-1")
	p.Scores[CategoryVibe] = map[string]int{"romantic": 2, "serene": 0}
	p.Scores[CategoryArchitecture] = map[string]int{"gothic": 1, "baroque": 0}

	// Only tags with score > 0, in stable category then taxonomy order.
	assert.Equal(t, []string{"gothic", "romantic"}, p.ActiveTags())
}

func TestPreferenceProfile_ActiveTags_Empty(t *testing.T) {
	assert.Empty(t, NewPreferenceProfile("user-1").ActiveTags())

	var nilProfile *PreferenceProfile
	assert.Empty(t, nilProfile.ActiveTags())
}

func TestVisibility_IsValid(t *testing.T) {
	assert.True(t, VisibilityPublic.IsValid())
	assert.True(t, VisibilityPrivate.IsValid())
	assert.False(t, Visibility("friends").IsValid())
}

func TestScanRecord_Rankable(t *testing.T) {
	rec := &ScanRecord{Name: "Notre-Dame", Tags: TagSet{CategoryArchitecture: {"gothic"}}}
	assert.True(t, rec.Rankable())

	assert.False(t, (&ScanRecord{Tags: TagSet{CategoryArchitecture: {"gothic"}}}).Rankable(), "missing name")
	assert.False(t, (&ScanRecord{Name: "Notre-Dame"}).Rankable(), "missing tags")
}
