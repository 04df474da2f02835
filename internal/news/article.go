package news

import (
	"strings"
	"time"
)

// Article is one news item in the GNews JSON shape.
type Article struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	URL         string `json:"url"`
	Image       string `json:"image"`
	PublishedAt string `json:"publishedAt"`
	Source      Source `json:"source"`

	// Category is only present in offline files.
	Category string `json:"category,omitempty"`
}

// Source names the publisher of an article.
type Source struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Page is the response body shared by GNews, the backend and offline files.
type Page struct {
	TotalArticles int       `json:"totalArticles"`
	Articles      []Article `json:"articles"`
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.999999", // no zone
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Published parses PublishedAt.
func (a Article) Published() (time.Time, bool) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, a.PublishedAt); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Linkable reports whether the article has a real URL.
func (a Article) Linkable() bool {
	return strings.HasPrefix(a.URL, "http://") || strings.HasPrefix(a.URL, "https://")
}

// FilterValue is used by the list filter.
func (a Article) FilterValue() string {
	return a.Title + " " + a.Source.Name
}

// Headlines returns the titles of articles in order, skipping placeholders.
func Headlines(articles []Article) []string {
	out := make([]string, 0, len(articles))
	for _, a := range articles {
		if !IsPlaceholder(a) {
			out = append(out, a.Title)
		}
	}
	return out
}

// Categories supported by GNews top headlines.
var Categories = []string{
	"general",
	"world",
	"nation",
	"business",
	"technology",
	"entertainment",
	"sports",
	"science",
	"health",
}

// Languages maps supported language codes to display names.
var Languages = []Language{
	{"en", "English"},
	{"ta", "Tamil"},
	{"hi", "Hindi"},
	{"fr", "French"},
	{"de", "German"},
	{"es", "Spanish"},
}

// Language is a selectable news language.
type Language struct {
	Code string
	Name string
}

// LanguageName returns the display name for code, or code itself.
func LanguageName(code string) string {
	for _, l := range Languages {
		if l.Code == code {
			return l.Name
		}
	}
	return code
}

// NarrationTag returns the BCP 47 tag used to narrate news in code.
func NarrationTag(code string) string {
	switch code {
	case "en":
		return "en-US"
	case "ta":
		return "ta-IN"
	case "hi":
		return "hi-IN"
	case "fr":
		return "fr-FR"
	case "de":
		return "de-DE"
	case "es":
		return "es-ES"
	default:
		return code
	}
}

// Cycle returns the element of list delta steps away from current,
// wrapping at both ends. An unknown current starts from the first element.
func Cycle(list []string, current string, delta int) string {
	if len(list) == 0 {
		return current
	}
	i := 0
	for j, v := range list {
		if v == current {
			i = j
			break
		}
	}
	n := len(list)
	return list[((i+delta)%n+n)%n]
}

// LanguageCodes returns the codes of Languages in order.
func LanguageCodes() []string {
	codes := make([]string, len(Languages))
	for i, l := range Languages {
		codes[i] = l.Code
	}
	return codes
}

// ValidCategory reports whether c is a known category.
func ValidCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}
