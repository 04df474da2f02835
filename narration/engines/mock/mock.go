// Package mock provides a scriptable speech engine for tests and demos.
package mock

import (
	"sync"
	"time"

	"github.com/dgnsrekt/newsreel/narration"
)

// MockEngine implements narration.Engine without producing sound. Every
// utterance "speaks" for a fixed delay, or for an estimated duration when a
// words-per-minute rate is set.
type MockEngine struct {
	mu sync.Mutex

	// Configuration
	delay          time.Duration // Simulated speaking time
	wordsPerMinute int

	// Control for testing
	available      bool
	unavailableErr error
	failAll        error
	failures       map[int]error // by submission number, 0-based
	reject         error
	trailing       bool // emit OnEnd after CancelAll

	// State
	voices    []narration.VoiceProfile
	listeners []func()
	spoken    []narration.Utterance
	cancels   int
	current   *flight
}

type flight struct {
	stop chan struct{}
	once sync.Once
}

func (f *flight) halt() {
	f.once.Do(func() { close(f.stop) })
}

// New creates a new mock engine with a small English catalog.
func New() *MockEngine {
	return &MockEngine{
		delay:     100 * time.Millisecond,
		available: true,
		failures:  make(map[int]error),
		voices: []narration.VoiceProfile{
			{Name: "Mock Voice 1", Lang: "en-US", Default: true},
			{Name: "Mock Female Voice", Lang: "en-GB"},
			{Name: "Mock Natural Voice", Lang: "en-US"},
		},
	}
}

// Name returns "mock".
func (e *MockEngine) Name() string {
	return "mock"
}

// Available returns nil unless the engine was marked unavailable.
func (e *MockEngine) Available() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.available {
		return nil
	}
	if e.unavailableErr != nil {
		return e.unavailableErr
	}
	return narration.ErrEngineUnavailable
}

// Speak records the utterance and answers asynchronously.
func (e *MockEngine) Speak(u narration.Utterance, cb narration.Callbacks) error {
	e.mu.Lock()
	n := len(e.spoken)
	e.spoken = append(e.spoken, u)
	if e.reject != nil {
		err := e.reject
		e.mu.Unlock()
		return err
	}

	failure := e.failures[n]
	if e.failAll != nil {
		failure = e.failAll
	}
	if e.current != nil {
		e.current.halt()
	}
	f := &flight{stop: make(chan struct{})}
	e.current = f
	d := e.speakingTime(u)
	trailing := e.trailing
	e.mu.Unlock()

	go func() {
		cb.Start()
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-f.stop:
			if trailing {
				cb.End()
			}
			return
		}

		e.mu.Lock()
		if e.current == f {
			e.current = nil
		}
		e.mu.Unlock()

		if failure != nil {
			cb.Error(failure)
			return
		}
		cb.End()
	}()
	return nil
}

// CancelAll stops the in-flight utterance.
func (e *MockEngine) CancelAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancels++
	if e.current != nil {
		e.current.halt()
		e.current = nil
	}
}

// Voices returns a copy of the catalog.
func (e *MockEngine) Voices() []narration.VoiceProfile {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]narration.VoiceProfile, len(e.voices))
	copy(out, e.voices)
	return out
}

// OnVoicesChanged registers a catalog listener.
func (e *MockEngine) OnVoicesChanged(fn func()) {
	if fn == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, fn)
}

// Test control methods

// SetVoices replaces the catalog and notifies listeners.
func (e *MockEngine) SetVoices(voices []narration.VoiceProfile) {
	e.mu.Lock()
	e.voices = append([]narration.VoiceProfile(nil), voices...)
	listeners := append([]func(){}, e.listeners...)
	e.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

// SetDelay sets the simulated speaking time.
func (e *MockEngine) SetDelay(delay time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.delay = delay
}

// SetWordsPerMinute makes speaking time depend on text length. Zero restores
// the fixed delay.
func (e *MockEngine) SetWordsPerMinute(wpm int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.wordsPerMinute = wpm
}

// SetAvailable marks the engine available or not. err is returned by
// Available when the engine is unavailable.
func (e *MockEngine) SetAvailable(available bool, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.available = available
	e.unavailableErr = err
}

// SetFailure makes every utterance fail with err.
func (e *MockEngine) SetFailure(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failAll = err
}

// FailAt makes the n-th submission (0-based) fail with err.
func (e *MockEngine) FailAt(n int, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failures[n] = err
}

// SetRejection makes Speak return err synchronously.
func (e *MockEngine) SetRejection(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reject = err
}

// ClearFailure resets the engine to normal operation.
func (e *MockEngine) ClearFailure() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failAll = nil
	e.reject = nil
	e.failures = make(map[int]error)
}

// SetTrailingNotification makes a cancelled utterance still report OnEnd,
// like engines that finish their current word before stopping.
func (e *MockEngine) SetTrailingNotification(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.trailing = enabled
}

// Spoken returns every utterance submitted so far.
func (e *MockEngine) Spoken() []narration.Utterance {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]narration.Utterance, len(e.spoken))
	copy(out, e.spoken)
	return out
}

// GetCallCount returns the number of Speak calls.
func (e *MockEngine) GetCallCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.spoken)
}

// CancelCount returns the number of CancelAll calls.
func (e *MockEngine) CancelCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cancels
}

// speakingTime must be called with e.mu held.
func (e *MockEngine) speakingTime(u narration.Utterance) time.Duration {
	if e.wordsPerMinute <= 0 {
		return e.delay
	}
	return estimateDuration(u.Text, e.wordsPerMinute, u.Rate)
}

// estimateDuration estimates speaking duration for text.
func estimateDuration(text string, wpm int, rate float64) time.Duration {
	words := len(text) / 5 // Rough estimate: 5 chars per word
	if words < 1 {
		words = 1
	}
	if rate <= 0 {
		rate = 1
	}
	seconds := float64(words) * 60.0 / float64(wpm) / rate
	return time.Duration(seconds * float64(time.Second))
}
