// Package telemetry records reader activity to a newsreel backend. No
// telemetry failure is ever returned to the caller.
package telemetry

import (
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Click is recorded when an article link is opened or copied.
type Click struct {
	URL      string `json:"url"`
	Title    string `json:"title"`
	Language string `json:"language"`
}

// ReadAloud is recorded when narration of an article or the headlines starts.
type ReadAloud struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	ImageURL    string `json:"image_url"`
	Category    string `json:"category"`
	Language    string `json:"language"`
}

// HeadlinesDescription is the description sent when a run of headlines is
// read aloud.
const HeadlinesDescription = "Multiple headlines read via Read Aloud feature"

// HeadlinesReadAloud returns the record for reading a run of headlines. It
// carries the link and image of the first headline read.
func HeadlinesReadAloud(firstTitle, url, imageURL, category, language string) ReadAloud {
	return ReadAloud{
		Title:       "Headlines Summary: " + firstTitle,
		Description: HeadlinesDescription,
		URL:         url,
		ImageURL:    imageURL,
		Category:    category,
		Language:    language,
	}
}

// VoiceSearch is recorded for each search query.
type VoiceSearch struct {
	Query    string `json:"query"`
	Language string `json:"language"`
}

// Sink receives activity records.
type Sink interface {
	RecordClick(Click)
	RecordReadAloud(ReadAloud)
	RecordVoiceSearch(VoiceSearch)
}

// Nop discards every record.
type Nop struct{}

func (Nop) RecordClick(Click)             {}
func (Nop) RecordReadAloud(ReadAloud)     {}
func (Nop) RecordVoiceSearch(VoiceSearch) {}

// Config holds the "telemetry" config section.
type Config struct {
	Endpoint string        `mapstructure:"endpoint"`
	Buffer   int           `mapstructure:"buffer"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// DefaultConfig returns telemetry settings with no endpoint.
func DefaultConfig() Config {
	return Config{Buffer: 64, Timeout: 5 * time.Second}
}

// New returns an asynchronous HTTP sink for cfg, or Nop when no endpoint is
// configured. The returned close function drains pending records.
func New(cfg Config, logger *log.Logger) (Sink, func()) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return Nop{}, func() {}
	}
	a := NewAsync(NewHTTPSink(cfg.Endpoint, cfg.Timeout, logger), cfg.Buffer, logger)
	return a, a.Close
}
