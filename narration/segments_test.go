package narration

import "testing"

// TestArticleSegments tests how an article is turned into speech text.
func TestArticleSegments(t *testing.T) {
	tests := []struct {
		name        string
		title       string
		description string
		content     string
		expected    string
	}{
		{
			name:        "title and description",
			title:       "Markets rally",
			description: "Stocks rose sharply.",
			expected:    "Markets rally. Stocks rose sharply.",
		},
		{
			name:     "content when description is missing",
			title:    "Markets rally",
			content:  "Stocks rose sharply on Monday... [+2140 chars]",
			expected: "Markets rally. Stocks rose sharply on Monday...",
		},
		{
			name:     "title only",
			title:    "Markets rally",
			expected: "Markets rally",
		},
		{
			name:        "markup is stripped",
			title:       "**Breaking**: [Mars](https://example.com) landing",
			description: "The <b>rover</b> touched down.",
			expected:    "Breaking: Mars landing. The rover touched down.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segs := ArticleSegments(tt.title, tt.description, tt.content, "en-US")
			if len(segs) != 1 {
				t.Fatalf("ArticleSegments() returned %d segments, want 1", len(segs))
			}
			if segs[0].Text != tt.expected {
				t.Errorf("Text = %q, want %q", segs[0].Text, tt.expected)
			}
			if segs[0].Lang != "en-US" {
				t.Errorf("Lang = %q, want en-US", segs[0].Lang)
			}
			if segs[0].ID == "" {
				t.Error("ID is empty")
			}
		})
	}

	if segs := ArticleSegments("", "", "", "en"); segs != nil {
		t.Errorf("ArticleSegments() of empty article = %v, want nil", segs)
	}
}

// TestHeadlineSegments tests the intro and headline ordering.
func TestHeadlineSegments(t *testing.T) {
	segs := HeadlineSegments([]string{"First", "  ", "Second"}, HeadlinesLang)
	if len(segs) != 3 {
		t.Fatalf("HeadlineSegments() returned %d segments, want 3", len(segs))
	}

	want := []string{HeadlinesIntro, "First", "Second"}
	seen := map[string]bool{}
	for i, seg := range segs {
		if seg.Text != want[i] {
			t.Errorf("segment %d = %q, want %q", i, seg.Text, want[i])
		}
		if seg.Lang != HeadlinesLang {
			t.Errorf("segment %d lang = %q, want %q", i, seg.Lang, HeadlinesLang)
		}
		if seen[seg.ID] {
			t.Errorf("segment %d reuses ID %q", i, seg.ID)
		}
		seen[seg.ID] = true
	}

	if segs := HeadlineSegments(nil, "en"); segs != nil {
		t.Errorf("HeadlineSegments(nil) = %v, want nil", segs)
	}
}

// TestPlainText tests markdown stripping.
func TestPlainText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "Just text", "Just text"},
		{"emphasis", "*very* _important_", "very important"},
		{"heading", "# Title", "Title"},
		{"soft line breaks", "one\ntwo", "one two"},
		{"image alt text", "![a cat](cat.png) sits", "a cat sits"},
		{"blank", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PlainText(tt.input); got != tt.expected {
				t.Errorf("PlainText(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
