package narration

import (
	"fmt"
	"time"
)

// HeadlinesIntro is spoken before a headlines run.
const HeadlinesIntro = "Here are the latest headlines:"

// Config contains the scheduler's timing and prosody options.
type Config struct {
	// Delay is inserted between a successful utterance and the next one.
	Delay time.Duration `mapstructure:"delay"`
	// ErrorDelay is inserted after an utterance failed.
	ErrorDelay time.Duration `mapstructure:"error_delay"`
	// CatalogTimeout bounds how long a submission waits for an empty voice
	// catalog to populate before falling back to the engine default.
	CatalogTimeout time.Duration `mapstructure:"catalog_timeout"`

	Lang    string  `mapstructure:"language"`
	Prosody Prosody `mapstructure:"prosody"`
	// LangRates overrides the rate per base language.
	LangRates map[string]float64 `mapstructure:"language_rates"`
	// DisabledLanguages lists base languages that cannot be narrated.
	DisabledLanguages []string `mapstructure:"disabled_languages"`
}

// DefaultConfig returns a Config with the reader's defaults.
func DefaultConfig() Config {
	return Config{
		Delay:          100 * time.Millisecond,
		ErrorDelay:     500 * time.Millisecond,
		CatalogTimeout: 3 * time.Second,
		Lang:           "en-US",
		Prosody:        DefaultProsody(),
		LangRates: map[string]float64{
			"ta": 0.9,
		},
		DisabledLanguages: []string{"ta"},
	}
}

// DefaultProsody is used for reading single articles.
func DefaultProsody() Prosody {
	return Prosody{Rate: 0.95, Pitch: 1.0, Volume: 1.0}
}

// HeadlinesProsody is used for reading all headlines.
func HeadlinesProsody() Prosody {
	return Prosody{Rate: 0.92, Pitch: 1.05, Volume: 1.0}
}

// HeadlinesLang is the language headlines are read in.
const HeadlinesLang = "en-GB"

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Delay < 0 {
		return fmt.Errorf("delay must not be negative, got %v", c.Delay)
	}
	if c.ErrorDelay < 0 {
		return fmt.Errorf("error_delay must not be negative, got %v", c.ErrorDelay)
	}
	if c.CatalogTimeout < 0 {
		return fmt.Errorf("catalog_timeout must not be negative, got %v", c.CatalogTimeout)
	}
	if err := c.Prosody.Validate(); err != nil {
		return fmt.Errorf("prosody: %w", err)
	}
	for lang, rate := range c.LangRates {
		if rate < 0.1 || rate > 10 {
			return fmt.Errorf("language_rates[%s] must be between 0.1 and 10, got %.2f", lang, rate)
		}
	}
	return nil
}

// Validate checks the ranges accepted by speech engines.
func (p Prosody) Validate() error {
	if p.Rate < 0.1 || p.Rate > 10 {
		return fmt.Errorf("rate must be between 0.1 and 10, got %.2f", p.Rate)
	}
	if p.Pitch < 0 || p.Pitch > 2 {
		return fmt.Errorf("pitch must be between 0 and 2, got %.2f", p.Pitch)
	}
	if p.Volume < 0 || p.Volume > 1 {
		return fmt.Errorf("volume must be between 0 and 1, got %.2f", p.Volume)
	}
	return nil
}

// languageDisabled reports whether lang's base language is disabled.
func (c *Config) languageDisabled(lang string) bool {
	base := BaseLanguage(lang)
	for _, l := range c.DisabledLanguages {
		if BaseLanguage(l) == base {
			return true
		}
	}
	return false
}

// prosodyFor applies the per-language rate override to p.
func (c *Config) prosodyFor(lang string, p Prosody) Prosody {
	if rate, ok := c.LangRates[BaseLanguage(lang)]; ok {
		p.Rate = rate
	}
	return p
}
