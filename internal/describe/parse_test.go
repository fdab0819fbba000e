package describe

import (
	"testing"
)

func TestExtractOutput(t *testing.T) {
	tests := []struct {
		name            string
		raw             string
		wantDescription string
		wantTagCount    int
	}{
		{
			name:            "bare json",
			raw:             `{"description": "A gothic cathedral.", "tags": {"architecture": ["gothic"]}}`,
			wantDescription: "A gothic cathedral.",
			wantTagCount:    1,
		},
		{
			name: "fenced json block",
			raw: "Here is the result:\n```json\n" +
				`{"description": "A gothic cathedral.", "tags": {"architecture": ["gothic"]}}` +
				"\n```\nLet me know if you need anything else.",
			wantDescription: "A gothic cathedral.",
			wantTagCount:    1,
		},
		{
			name: "fence without language tag",
			raw: "```\n" +
				`{"description": "A gothic cathedral.", "tags": {}}` +
				"\n```",
			wantDescription: "A gothic cathedral.",
			wantTagCount:    0,
		},
		{
			name:            "json embedded in prose without fences",
			raw:             `Sure! {"description": "A gothic cathedral.", "tags": {"architecture": ["gothic"]}} Hope that helps.`,
			wantDescription: "A gothic cathedral.",
			wantTagCount:    1,
		},
		{
			name:            "control characters inside json",
			raw:             "{\"description\": \"A gothic\x01 cathedral.\", \"tags\": {}}",
			wantDescription: "A gothic cathedral.",
			wantTagCount:    0,
		},
		{
			name:            "plain text fallback",
			raw:             "A beautiful gothic cathedral built in the 12th century.",
			wantDescription: "A beautiful gothic cathedral built in the 12th century.",
			wantTagCount:    0,
		},
		{
			name:            "malformed json fallback keeps raw text",
			raw:             `{"description": "unterminated`,
			wantDescription: `{"description": "unterminated`,
			wantTagCount:    0,
		},
		{
			name:            "missing tags key gets empty map",
			raw:             `{"description": "A gothic cathedral."}`,
			wantDescription: "A gothic cathedral.",
			wantTagCount:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := extractOutput(tt.raw)

			if out.Description != tt.wantDescription {
				t.Errorf("description = %q, want %q", out.Description, tt.wantDescription)
			}
			if out.Tags == nil {
				t.Fatal("tags must never be nil")
			}
			if len(out.Tags) != tt.wantTagCount {
				t.Errorf("got %d tag categories, want %d", len(out.Tags), tt.wantTagCount)
			}
		})
	}
}

func TestStripControlChars(t *testing.T) {
	got := stripControlChars("a\x00b\x1fc\x7fd\ne\tf")
	want := "abcdef"
	if got != want {
		t.Errorf("stripControlChars = %q, want %q", got, want)
	}
}
