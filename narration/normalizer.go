package narration

import (
	"regexp"
	"strings"
)

// Patterns applied by Normalize, in order. \b is ASCII-only.
var (
	ordinalRe    = regexp.MustCompile(`\b(\d+)(st|nd|rd|th)\b`)
	yearRe       = regexp.MustCompile(`\b(\d{4})\b`)
	acronymRe    = regexp.MustCompile(`\b([A-Z]{2,})\b`)
	sentenceRe   = regexp.MustCompile(`([.!?])\s+`)
	clauseRe     = regexp.MustCompile(`([,:;])\s+`)
	newlineRe    = regexp.MustCompile(`\n+`)
	whitespaceRe = regexp.MustCompile(`\s{2,}`)
)

// Normalize rewrites raw text so speech engines read it naturally. The steps
// run in a fixed order and the result is not idempotent: running it twice
// compounds the pause markers.
func Normalize(raw string) string {
	s := raw
	// "21st" -> "21 st"
	s = ordinalRe.ReplaceAllString(s, "$1 $2")
	// "2023" -> "2023 "
	s = yearRe.ReplaceAllString(s, "$1 ")
	// "USA" -> "U S A"
	s = acronymRe.ReplaceAllStringFunc(s, spellOut)
	// sentence end: ". " -> ". . "
	s = sentenceRe.ReplaceAllString(s, "$1. ")
	// clause separators keep a single space
	s = clauseRe.ReplaceAllString(s, "$1 ")
	s = newlineRe.ReplaceAllString(s, ". ")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return s
}

func spellOut(word string) string {
	return strings.Join(strings.Split(word, ""), " ")
}
