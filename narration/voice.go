package narration

import (
	"strings"

	"golang.org/x/text/language"
)

// VoiceSelector picks the best catalog voice for a language. Selection is
// tiered and the first non-empty tier wins:
//
//  1. same base language and a premium marker in the name
//  2. exactly the same tag and not from a denied vendor
//  3. same base language
//
// Within a tier a voice with a feminine marker is preferred, otherwise the
// first candidate in catalog order is used. When nothing matches the engine
// default voice is used.
type VoiceSelector struct {
	PremiumMarkers []string
	DeniedVendors  []string
	FemaleMarkers  []string
}

// DefaultVoiceSelector returns the selector used by the scheduler.
func DefaultVoiceSelector() VoiceSelector {
	return VoiceSelector{
		PremiumMarkers: []string{"Premium", "Enhanced", "Neural", "Google", "Natural"},
		DeniedVendors:  []string{"Microsoft"},
		FemaleMarkers:  []string{"Female", "Lisa", "Samantha", "Siri"},
	}
}

// SelectVoice selects a voice with the default selector.
func SelectVoice(catalog []VoiceProfile, lang string) (VoiceProfile, bool) {
	return DefaultVoiceSelector().Select(catalog, lang)
}

// Select returns the chosen voice, or false if the engine default should be
// used.
func (s VoiceSelector) Select(catalog []VoiceProfile, lang string) (VoiceProfile, bool) {
	if len(catalog) == 0 {
		return VoiceProfile{}, false
	}
	base := BaseLanguage(lang)
	if base == "" {
		return VoiceProfile{}, false
	}
	tag := normalizeTag(lang)

	var premium, native, matching []VoiceProfile
	for _, v := range catalog {
		if BaseLanguage(v.Lang) != base {
			continue
		}
		matching = append(matching, v)
		if containsAny(v.Name, s.PremiumMarkers) {
			premium = append(premium, v)
		}
		if normalizeTag(v.Lang) == tag && !containsAny(v.Name, s.DeniedVendors) {
			native = append(native, v)
		}
	}

	if len(premium) > 0 {
		return s.preferFemale(premium, s.isFemale), true
	}
	if len(native) > 0 {
		// A nameless "not Male" voice is as good as a female one here.
		return s.preferFemale(native, func(name string) bool {
			return strings.Contains(name, "Female") || !strings.Contains(name, "Male")
		}), true
	}
	if len(matching) > 0 {
		return s.preferFemale(matching, s.isFemale), true
	}
	return VoiceProfile{}, false
}

func (s VoiceSelector) isFemale(name string) bool {
	return containsAny(name, s.FemaleMarkers)
}

func (s VoiceSelector) preferFemale(candidates []VoiceProfile, female func(string) bool) VoiceProfile {
	for _, v := range candidates {
		if female(v.Name) {
			return v
		}
	}
	return candidates[0]
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if m != "" && strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// BaseLanguage returns the lowercase ISO 639 code of a language tag, such as
// "en" for "en-US" or "EN_gb". Tags the language package does not know fall
// back to their first subtag.
func BaseLanguage(tag string) string {
	norm := normalizeTag(tag)
	if norm == "" {
		return ""
	}
	if t, err := language.Parse(norm); err == nil {
		if b, conf := t.Base(); conf != language.No {
			return b.String()
		}
	}
	first, _, _ := strings.Cut(norm, "-")
	return first
}
