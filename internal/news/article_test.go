package news

import (
	"slices"
	"testing"
	"time"
)

// TestHeadlines tests that placeholders are not read as headlines
func TestHeadlines(t *testing.T) {
	articles := []Article{
		{Title: "First"},
		Placeholder("en"),
		{Title: "Second"},
	}
	got := Headlines(articles)
	want := []string{"First", "Second"}
	if !slices.Equal(got, want) {
		t.Errorf("Headlines() = %v, want %v", got, want)
	}

	if got := Headlines(nil); len(got) != 0 {
		t.Errorf("Headlines(nil) = %v, want empty", got)
	}
}

// TestPlaceholder tests the placeholder article per language
func TestPlaceholder(t *testing.T) {
	tests := []struct {
		lang  string
		title string
	}{
		{"en", "English News Service"},
		{"ta", "தமிழ் செய்திகள் சேவை"},
		{"fr", "English News Service"},
	}
	for _, tt := range tests {
		a := Placeholder(tt.lang)
		if a.Title != tt.title {
			t.Errorf("Placeholder(%q).Title = %q, want %q", tt.lang, a.Title, tt.title)
		}
		if !IsPlaceholder(a) {
			t.Errorf("IsPlaceholder(Placeholder(%q)) = false, want true", tt.lang)
		}
		if a.Linkable() {
			t.Errorf("Placeholder(%q).Linkable() = true, want false", tt.lang)
		}
	}
}

// TestPublished tests the accepted timestamp layouts
func TestPublished(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"2024-03-01T10:00:00Z", time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), true},
		{"2024-03-01 10:00:00", time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), true},
		{"2024-03-01", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), true},
		{"yesterday", time.Time{}, false},
	}
	for _, tt := range tests {
		got, ok := Article{PublishedAt: tt.in}.Published()
		if ok != tt.ok || !got.Equal(tt.want) {
			t.Errorf("Published(%q) = %v, %v, want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

// TestNarrationTag tests language codes mapped to voice tags
func TestNarrationTag(t *testing.T) {
	tests := map[string]string{
		"en": "en-US",
		"ta": "ta-IN",
		"fr": "fr-FR",
		"xx": "xx",
	}
	for in, want := range tests {
		if got := NarrationTag(in); got != want {
			t.Errorf("NarrationTag(%q) = %q, want %q", in, got, want)
		}
	}
}
