package subprocess

import (
	"reflect"
	"testing"

	"github.com/dgnsrekt/newsreel/narration"
)

// TestEspeakArgs checks voice, rate, pitch and volume mapping.
func TestEspeakArgs(t *testing.T) {
	tests := []struct {
		name string
		u    narration.Utterance
		want []string
	}{
		{
			name: "defaults",
			u:    narration.Utterance{Text: "hi", Lang: "en_US", Rate: 1, Pitch: 1, Volume: 1},
			want: []string{"--stdin", "-v", "en-us", "-s", "175", "-p", "50", "-a", "100"},
		},
		{
			name: "voice wins over language",
			u: narration.Utterance{
				Lang: "en-US", Rate: 0.9, Pitch: 1.05, Volume: 0.5,
				Voice: &narration.VoiceProfile{Name: "English", Lang: "en-GB"},
			},
			want: []string{"--stdin", "-v", "en-gb", "-s", "158", "-p", "53", "-a", "50"},
		},
		{
			name: "zero values fall back to unit factors",
			u:    narration.Utterance{},
			want: []string{"--stdin", "-s", "175", "-p", "50", "-a", "100"},
		},
		{
			name: "pitch is clamped",
			u:    narration.Utterance{Rate: 1, Pitch: 2, Volume: 1},
			want: []string{"--stdin", "-s", "175", "-p", "99", "-a", "100"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := espeakArgs(tt.u); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("espeakArgs() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestSay checks say arguments and the embedded volume command.
func TestSay(t *testing.T) {
	u := narration.Utterance{
		Text: "Hello", Rate: 1.2, Volume: 0.5,
		Voice: &narration.VoiceProfile{Name: "Samantha", Lang: "en-US"},
	}
	want := []string{"-f", "-", "-v", "Samantha", "-r", "210"}
	if got := sayArgs(u); !reflect.DeepEqual(got, want) {
		t.Errorf("sayArgs() = %v, want %v", got, want)
	}
	if got := sayInput(u); got != "[[volm 0.50]] Hello" {
		t.Errorf("sayInput() = %q, want %q", got, "[[volm 0.50]] Hello")
	}
	u.Volume = 1
	if got := sayInput(u); got != "Hello" {
		t.Errorf("sayInput() = %q, want %q", got, "Hello")
	}
}

// TestParseEspeakVoices parses a trimmed espeak-ng --voices listing.
func TestParseEspeakVoices(t *testing.T) {
	out := []byte(`Pty Language       Age/Gender VoiceName          File                 Other Languages
 5  de              --/M      German             gmw/de
 2  en-gb           --/M      English_(Great_Britain) gmw/en            (en 2)
 5  en-us           --/F      English_(America)  gmw/en-US            (en 3)
garbage line
`)
	want := []narration.VoiceProfile{
		{Name: "German", Lang: "de"},
		{Name: "English (Great Britain)", Lang: "en-gb"},
		{Name: "English (America) Female", Lang: "en-us"},
	}
	if got := ParseEspeakVoices(out); !reflect.DeepEqual(got, want) {
		t.Errorf("ParseEspeakVoices() = %v, want %v", got, want)
	}
}

// TestParseSayVoices parses a trimmed say -v ? listing.
func TestParseSayVoices(t *testing.T) {
	out := []byte(`Alex                en_US    # Most people recognize me by my voice.
Daniel (Enhanced)   en_GB    # Hello, my name is Daniel.
Lekha               hi_IN    # नमस्कार, मेरा नाम लेखा है।

`)
	want := []narration.VoiceProfile{
		{Name: "Alex", Lang: "en-US"},
		{Name: "Daniel (Enhanced)", Lang: "en-GB"},
		{Name: "Lekha", Lang: "hi-IN"},
	}
	if got := ParseSayVoices(out); !reflect.DeepEqual(got, want) {
		t.Errorf("ParseSayVoices() = %v, want %v", got, want)
	}
}
