package narration

import (
	"strings"

	"github.com/google/uuid"
)

// Engine is the speech capability the scheduler drives. Implementations are
// single-instance: a new Speak is only issued after the previous one reported
// its terminal notification.
type Engine interface {
	// Name returns a short identifier such as "espeak" or "piper".
	Name() string

	// Available returns nil when the engine can be used on this host.
	Available() error

	// Speak starts speaking the utterance and returns immediately. The engine
	// calls OnStart (optional) and then exactly one of OnEnd or OnError, from
	// any goroutine. A non-nil return means the submission was rejected and no
	// callback will follow.
	Speak(u Utterance, cb Callbacks) error

	// CancelAll stops the in-flight utterance and drops anything queued. A
	// trailing notification for the cancelled utterance may still arrive.
	CancelAll()

	// Voices returns the current catalog. It may be empty until the engine
	// has finished discovering voices.
	Voices() []VoiceProfile

	// OnVoicesChanged registers fn to be called whenever the catalog changes.
	OnVoicesChanged(fn func())
}

// Callbacks receive the notifications for one submitted utterance.
type Callbacks struct {
	OnStart func()
	OnEnd   func()
	OnError func(err error)
}

// Start calls OnStart if set.
func (c Callbacks) Start() {
	if c.OnStart != nil {
		c.OnStart()
	}
}

// End calls OnEnd if set.
func (c Callbacks) End() {
	if c.OnEnd != nil {
		c.OnEnd()
	}
}

// Error calls OnError if set.
func (c Callbacks) Error(err error) {
	if c.OnError != nil {
		c.OnError(err)
	}
}

// TextSegment is one fragment of text queued for narration. Segments are
// immutable once handed to the scheduler.
type TextSegment struct {
	ID   string
	Text string
	Lang string // BCP 47 tag, empty means the session language
}

// NewSegment returns a segment with a fresh ID.
func NewSegment(text, lang string) TextSegment {
	return TextSegment{
		ID:   uuid.NewString(),
		Text: text,
		Lang: lang,
	}
}

// Utterance is one unit submitted to the engine.
type Utterance struct {
	Text   string
	Lang   string
	Rate   float64 // 1.0 is the engine's normal speed
	Pitch  float64 // 1.0 is the engine's normal pitch
	Volume float64 // 0.0 to 1.0
	Voice  *VoiceProfile
}

// VoiceProfile is a read-only catalog entry supplied by an engine.
type VoiceProfile struct {
	Name    string
	Lang    string
	Default bool
}

// String returns the voice name and language.
func (v VoiceProfile) String() string {
	if v.Lang == "" {
		return v.Name
	}
	return v.Name + " (" + v.Lang + ")"
}

// Prosody holds the speaking parameters applied to every utterance of a
// session.
type Prosody struct {
	Rate   float64 `mapstructure:"rate"`
	Pitch  float64 `mapstructure:"pitch"`
	Volume float64 `mapstructure:"volume"`
}

// Handle identifies a narration session by its generation.
type Handle struct {
	Generation uint64
}

// Valid reports whether the handle refers to a session at all.
func (h Handle) Valid() bool {
	return h.Generation != 0
}

// normalizeTag lowercases a language tag and uses hyphens as separators, so
// "en_US" and "EN-us" compare equal.
func normalizeTag(tag string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(tag), "_", "-"))
}
