package news

import "time"

type notice struct {
	title       string
	description string
}

var notices = map[string]notice{
	"en": {
		title:       "English News Service",
		description: "Welcome to our English news service. We provide the latest news articles from around the world.",
	},
	"ta": {
		title:       "தமிழ் செய்திகள் சேவை",
		description: "வரவேற்கிறோம்! தமிழ் செய்திகள் சுருக்கமாக தற்போது கிடைக்கும். தமிழ் செய்தி சேவை பதிப்பு 2.0.",
	},
}

// PlaceholderSource names the source of placeholder articles.
const PlaceholderSource = "News System"

// Placeholder returns the article shown when nothing could be fetched or
// cached. Languages without a message use English.
func Placeholder(lang string) Article {
	n, ok := notices[lang]
	if !ok {
		n = notices["en"]
	}
	return Article{
		Title:       n.title,
		Description: n.description,
		Content:     n.description,
		URL:         "#",
		PublishedAt: time.Now().UTC().Format(time.RFC3339),
		Source:      Source{Name: PlaceholderSource, URL: "#"},
	}
}

// IsPlaceholder reports whether a was produced by Placeholder.
func IsPlaceholder(a Article) bool {
	return a.Source.Name == PlaceholderSource && a.URL == "#"
}
