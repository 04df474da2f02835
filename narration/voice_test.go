package narration

import "testing"

// TestSelectVoice tests the tiered selection.
func TestSelectVoice(t *testing.T) {
	tests := []struct {
		name    string
		catalog []VoiceProfile
		lang    string
		want    string
		wantOK  bool
	}{
		{
			name:    "premium match",
			catalog: []VoiceProfile{{Name: "Google US English", Lang: "en-US"}},
			lang:    "en-US",
			want:    "Google US English",
			wantOK:  true,
		},
		{
			name:    "empty catalog",
			catalog: nil,
			lang:    "en-US",
			wantOK:  false,
		},
		{
			name: "premium prefers feminine marker",
			catalog: []VoiceProfile{
				{Name: "Google UK English Male", Lang: "en-GB"},
				{Name: "Samantha (Enhanced)", Lang: "en-US"},
			},
			lang:   "en-US",
			want:   "Samantha (Enhanced)",
			wantOK: true,
		},
		{
			name: "premium beats exact match",
			catalog: []VoiceProfile{
				{Name: "Alex", Lang: "en-US"},
				{Name: "Daniel Neural", Lang: "en-GB"},
			},
			lang:   "en-US",
			want:   "Daniel Neural",
			wantOK: true,
		},
		{
			name: "native skips denied vendor",
			catalog: []VoiceProfile{
				{Name: "Microsoft Zira", Lang: "en-US"},
				{Name: "Alex", Lang: "en-US"},
			},
			lang:   "en-US",
			want:   "Alex",
			wantOK: true,
		},
		{
			name: "native prefers voices not marked male",
			catalog: []VoiceProfile{
				{Name: "Fred Male", Lang: "en-US"},
				{Name: "Karen", Lang: "en-US"},
			},
			lang:   "en-US",
			want:   "Karen",
			wantOK: true,
		},
		{
			name: "native falls back to first",
			catalog: []VoiceProfile{
				{Name: "Fred Male", Lang: "en-US"},
				{Name: "Tom Male", Lang: "en-US"},
			},
			lang:   "en-US",
			want:   "Fred Male",
			wantOK: true,
		},
		{
			name:    "denied vendor still matches by base language",
			catalog: []VoiceProfile{{Name: "Microsoft Zira", Lang: "en-US"}},
			lang:    "en-US",
			want:    "Microsoft Zira",
			wantOK:  true,
		},
		{
			name: "base language in catalog order",
			catalog: []VoiceProfile{
				{Name: "Daniel", Lang: "en-GB"},
				{Name: "Moira", Lang: "en-IE"},
			},
			lang:   "en-US",
			want:   "Daniel",
			wantOK: true,
		},
		{
			name: "base language prefers feminine marker",
			catalog: []VoiceProfile{
				{Name: "Daniel", Lang: "en-GB"},
				{Name: "Samantha", Lang: "en-AU"},
			},
			lang:   "en-US",
			want:   "Samantha",
			wantOK: true,
		},
		{
			name:    "case and separator insensitive",
			catalog: []VoiceProfile{{Name: "Karen", Lang: "EN_us"}},
			lang:    "en-US",
			want:    "Karen",
			wantOK:  true,
		},
		{
			name:    "no voice for language",
			catalog: []VoiceProfile{{Name: "Thomas", Lang: "fr-FR"}},
			lang:    "en-US",
			wantOK:  false,
		},
		{
			name:    "empty language",
			catalog: []VoiceProfile{{Name: "Thomas", Lang: ""}},
			lang:    "",
			wantOK:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SelectVoice(tt.catalog, tt.lang)
			if ok != tt.wantOK {
				t.Fatalf("SelectVoice() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got.Name != tt.want {
				t.Errorf("SelectVoice() = %q, want %q", got.Name, tt.want)
			}
		})
	}
}

// TestSelectVoiceDeterministic tests that repeated selection agrees.
func TestSelectVoiceDeterministic(t *testing.T) {
	catalog := []VoiceProfile{
		{Name: "Daniel", Lang: "en-GB"},
		{Name: "Google UK English Female", Lang: "en-GB"},
		{Name: "Google UK English Male", Lang: "en-GB"},
	}
	first, _ := SelectVoice(catalog, "en-GB")
	for i := 0; i < 10; i++ {
		got, _ := SelectVoice(catalog, "en-GB")
		if got != first {
			t.Fatalf("SelectVoice() = %v, want %v", got, first)
		}
	}
	if first.Name != "Google UK English Female" {
		t.Errorf("SelectVoice() = %q, want Google UK English Female", first.Name)
	}
}

// TestBaseLanguage tests tag parsing.
func TestBaseLanguage(t *testing.T) {
	tests := []struct {
		tag      string
		expected string
	}{
		{"en-US", "en"},
		{"EN_gb", "en"},
		{"ta-IN", "ta"},
		{"fr", "fr"},
		{"en-gb-x-rp", "en"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			if got := BaseLanguage(tt.tag); got != tt.expected {
				t.Errorf("BaseLanguage(%q) = %q, want %q", tt.tag, got, tt.expected)
			}
		})
	}
}
