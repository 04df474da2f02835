package narration_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dgnsrekt/newsreel/narration"
	"github.com/dgnsrekt/newsreel/narration/engines/mock"
)

func testConfig() narration.Config {
	cfg := narration.DefaultConfig()
	cfg.Delay = time.Millisecond
	cfg.ErrorDelay = 2 * time.Millisecond
	cfg.CatalogTimeout = 0
	return cfg
}

func newTestScheduler(t *testing.T, engine narration.Engine, cfg narration.Config) *narration.Scheduler {
	t.Helper()
	s, err := narration.NewScheduler(engine, cfg)
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func segments(texts ...string) []narration.TextSegment {
	segs := make([]narration.TextSegment, len(texts))
	for i, text := range texts {
		segs[i] = narration.NewSegment(text, "")
	}
	return segs
}

// waitFinished collects events until the session identified by h finishes.
func waitFinished(t *testing.T, s *narration.Scheduler, h narration.Handle) []narration.Event {
	t.Helper()
	var got []narration.Event
	timeout := time.After(3 * time.Second)
	for {
		select {
		case ev, ok := <-s.Events():
			if !ok {
				t.Fatalf("events channel closed before session %d finished", h.Generation)
			}
			got = append(got, ev)
			if ev.Kind == narration.EventFinished && ev.Handle == h {
				return got
			}
		case <-timeout:
			t.Fatalf("timed out waiting for session %d to finish, events: %v", h.Generation, got)
			return nil
		}
	}
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

// drain returns the events that arrive within d.
func drain(s *narration.Scheduler, d time.Duration) []narration.Event {
	var got []narration.Event
	timeout := time.After(d)
	for {
		select {
		case ev, ok := <-s.Events():
			if !ok {
				return got
			}
			got = append(got, ev)
		case <-timeout:
			return got
		}
	}
}

func countKind(events []narration.Event, kind narration.EventKind) int {
	n := 0
	for _, ev := range events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

// TestSchedulerCompletes tests that every segment is submitted once and the
// completion event fires exactly once.
func TestSchedulerCompletes(t *testing.T) {
	engine := mock.New()
	engine.SetDelay(time.Millisecond)
	s := newTestScheduler(t, engine, testConfig())

	h, err := s.Start(segments("one", "two", "three"), "en-US")
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !h.Valid() {
		t.Fatal("Start() returned an invalid handle")
	}

	events := waitFinished(t, s, h)
	events = append(events, drain(s, 50*time.Millisecond)...)

	if got := engine.GetCallCount(); got != 3 {
		t.Errorf("Speak calls = %d, want 3", got)
	}
	if got := countKind(events, narration.EventFinished); got != 1 {
		t.Errorf("finished events = %d, want 1", got)
	}
	if got := countKind(events, narration.EventProgress); got != 3 {
		t.Errorf("progress events = %d, want 3", got)
	}
	for i := 0; i < 3 && i < len(events); i++ {
		ev := events[i]
		if ev.Kind != narration.EventProgress || ev.Index != i || ev.Total != 3 {
			t.Errorf("event %d = %v, want progress %d of 3", i, ev, i+1)
		}
	}

	snap := s.Snapshot()
	if snap.Status != narration.StatusCompleted {
		t.Errorf("Status = %v, want %v", snap.Status, narration.StatusCompleted)
	}
	if snap.Cursor != 3 || snap.Total != 3 {
		t.Errorf("Cursor = %d/%d, want 3/3", snap.Cursor, snap.Total)
	}
}

// TestSchedulerCursorBounds samples the session while it runs.
func TestSchedulerCursorBounds(t *testing.T) {
	engine := mock.New()
	engine.SetDelay(2 * time.Millisecond)
	s := newTestScheduler(t, engine, testConfig())

	h, err := s.Start(segments("a", "b", "c", "d", "e"), "en-US")
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	last := 0
	for i := 0; i < 200; i++ {
		snap := s.Snapshot()
		if snap.Cursor < 0 || snap.Cursor > snap.Total {
			t.Fatalf("Cursor = %d outside [0, %d]", snap.Cursor, snap.Total)
		}
		if snap.Cursor < last {
			t.Fatalf("Cursor went back from %d to %d", last, snap.Cursor)
		}
		last = snap.Cursor
		if snap.Status.Terminal() {
			break
		}
		time.Sleep(time.Millisecond)
	}
	waitFinished(t, s, h)
}

// TestSchedulerContinuesAfterError tests best-effort continuation.
func TestSchedulerContinuesAfterError(t *testing.T) {
	engine := mock.New()
	engine.SetDelay(time.Millisecond)
	engine.FailAt(1, errors.New("synthesis-failed"))
	s := newTestScheduler(t, engine, testConfig())

	h, err := s.Start(segments("one", "two", "three"), "en-US")
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	events := waitFinished(t, s, h)

	if got := engine.GetCallCount(); got != 3 {
		t.Errorf("Speak calls = %d, want 3", got)
	}
	if got := s.Snapshot().Status; got != narration.StatusCompleted {
		t.Errorf("Status = %v, want %v", got, narration.StatusCompleted)
	}

	var failed []narration.Event
	for _, ev := range events {
		if ev.Kind == narration.EventSegmentFailed {
			failed = append(failed, ev)
		}
	}
	if len(failed) != 1 {
		t.Fatalf("failed events = %d, want 1", len(failed))
	}
	if failed[0].Index != 1 {
		t.Errorf("failed index = %d, want 1", failed[0].Index)
	}
	if !errors.Is(failed[0].Err, narration.ErrUtteranceFailed) {
		t.Errorf("failed error = %v, want ErrUtteranceFailed", failed[0].Err)
	}
	if !strings.Contains(failed[0].Err.Error(), "synthesis-failed") {
		t.Errorf("failed error = %q, want engine cause", failed[0].Err)
	}
}

// TestSchedulerRejectedSubmission tests that synchronous Speak errors are
// treated like OnError.
func TestSchedulerRejectedSubmission(t *testing.T) {
	engine := mock.New()
	engine.SetRejection(errors.New("busy"))
	s := newTestScheduler(t, engine, testConfig())

	h, err := s.Start(segments("one", "two"), "en-US")
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	events := waitFinished(t, s, h)

	if got := countKind(events, narration.EventSegmentFailed); got != 2 {
		t.Errorf("failed events = %d, want 2", got)
	}
	if got := s.Snapshot().Status; got != narration.StatusCompleted {
		t.Errorf("Status = %v, want %v", got, narration.StatusCompleted)
	}
}

// TestSchedulerCancel tests that a cancelled session is inert even when the
// engine reports a trailing notification.
func TestSchedulerCancel(t *testing.T) {
	engine := mock.New()
	engine.SetDelay(time.Hour)
	engine.SetTrailingNotification(true)
	s := newTestScheduler(t, engine, testConfig())

	h, err := s.Start(segments("one", "two", "three"), "en-US")
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	waitFor(t, "first submission", func() bool { return engine.GetCallCount() == 1 })

	if !s.Cancel(h) {
		t.Fatal("Cancel() = false, want true")
	}
	if got := s.Snapshot().Status; got != narration.StatusCancelled {
		t.Errorf("Status right after Cancel() = %v, want %v", got, narration.StatusCancelled)
	}
	if s.Cancel(h) {
		t.Error("second Cancel() = true, want false")
	}

	events := waitFinished(t, s, h)
	events = append(events, drain(s, 50*time.Millisecond)...)

	if got := engine.GetCallCount(); got != 1 {
		t.Errorf("Speak calls = %d, want 1", got)
	}
	if got := engine.CancelCount(); got != 1 {
		t.Errorf("CancelAll calls = %d, want 1", got)
	}
	snap := s.Snapshot()
	if snap.Status != narration.StatusCancelled || snap.Cursor != 1 {
		t.Errorf("Snapshot = %+v, want cancelled at cursor 1", snap)
	}
	if got := countKind(events, narration.EventFinished); got != 1 {
		t.Errorf("finished events = %d, want 1", got)
	}
	for _, ev := range events {
		if ev.Kind == narration.EventFinished && ev.Status != narration.StatusCancelled {
			t.Errorf("finished status = %v, want %v", ev.Status, narration.StatusCancelled)
		}
	}
}

// TestSchedulerCancelStaleHandle tests that an old handle cannot cancel a
// newer session.
func TestSchedulerCancelStaleHandle(t *testing.T) {
	engine := mock.New()
	engine.SetDelay(time.Hour)
	s := newTestScheduler(t, engine, testConfig())

	first, err := s.Start(segments("one"), "en-US")
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	second, err := s.Start(segments("two"), "en-US")
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if s.Cancel(first) {
		t.Error("Cancel(first) = true, want false")
	}
	snap := s.Snapshot()
	if snap.Handle != second || snap.Status != narration.StatusSpeaking {
		t.Errorf("Snapshot = %+v, want second session speaking", snap)
	}
}

// TestSchedulerStartSupersedes tests that starting a new session cancels the
// speaking one first.
func TestSchedulerStartSupersedes(t *testing.T) {
	engine := mock.New()
	engine.SetDelay(time.Hour)
	engine.SetTrailingNotification(true)
	s := newTestScheduler(t, engine, testConfig())

	first, err := s.Start(segments("a1", "a2", "a3"), "en-US")
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	waitFor(t, "first submission", func() bool { return engine.GetCallCount() == 1 })

	second, err := s.Start(segments("b1", "b2"), "en-US")
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if second.Generation <= first.Generation {
		t.Errorf("second generation = %d, want > %d", second.Generation, first.Generation)
	}

	waitFinished(t, s, first)
	drain(s, 50*time.Millisecond)

	snap := s.Snapshot()
	if snap.Handle != second {
		t.Errorf("current handle = %v, want %v", snap.Handle, second)
	}
	if snap.Status != narration.StatusSpeaking {
		t.Errorf("Status = %v, want %v", snap.Status, narration.StatusSpeaking)
	}
	// The first session's trailing OnEnd must not advance the second.
	if snap.Cursor != 1 {
		t.Errorf("Cursor = %d, want 1", snap.Cursor)
	}
	spoken := engine.Spoken()
	if len(spoken) != 2 {
		t.Fatalf("Speak calls = %d, want 2", len(spoken))
	}
	if spoken[1].Text != "b1" {
		t.Errorf("second utterance = %q, want %q", spoken[1].Text, "b1")
	}
}

// TestSchedulerStartErrors tests requests that create no session.
func TestSchedulerStartErrors(t *testing.T) {
	tests := []struct {
		name     string
		segments []narration.TextSegment
		lang     string
		want     error
	}{
		{
			name: "no segments",
			lang: "en-US",
			want: narration.ErrNoSegments,
		},
		{
			name:     "disabled language",
			segments: segments("வணக்கம்"),
			lang:     "ta-IN",
			want:     narration.ErrLanguageDisabled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := mock.New()
			s := newTestScheduler(t, engine, testConfig())

			h, err := s.Start(tt.segments, tt.lang)
			if !errors.Is(err, tt.want) {
				t.Errorf("Start() error = %v, want %v", err, tt.want)
			}
			if h.Valid() {
				t.Errorf("Start() handle = %v, want zero", h)
			}
			if got := s.Snapshot().Status; got != narration.StatusIdle {
				t.Errorf("Status = %v, want %v", got, narration.StatusIdle)
			}
			if got := engine.GetCallCount(); got != 0 {
				t.Errorf("Speak calls = %d, want 0", got)
			}
		})
	}
}

// TestSchedulerLanguageDisabled tests the disabled language check
func TestSchedulerLanguageDisabled(t *testing.T) {
	s := newTestScheduler(t, mock.New(), testConfig())

	tests := map[string]bool{
		"ta":    true,
		"ta-IN": true,
		"TA-in": true,
		"en-GB": false,
		"fr-FR": false,
	}
	for lang, want := range tests {
		if got := s.LanguageDisabled(lang); got != want {
			t.Errorf("LanguageDisabled(%q) = %v, want %v", lang, got, want)
		}
	}
}

// TestNewSchedulerUnavailable tests the one-time startup report.
func TestNewSchedulerUnavailable(t *testing.T) {
	engine := mock.New()
	engine.SetAvailable(false, errors.New("no audio device"))

	_, err := narration.NewScheduler(engine, testConfig())
	if !errors.Is(err, narration.ErrEngineUnavailable) {
		t.Errorf("NewScheduler() error = %v, want ErrEngineUnavailable", err)
	}
	if narration.IsRecoverableError(err) {
		t.Error("IsRecoverableError() = true, want false")
	}

	_, err = narration.NewScheduler(nil, testConfig())
	if !errors.Is(err, narration.ErrEngineUnavailable) {
		t.Errorf("NewScheduler(nil) error = %v, want ErrEngineUnavailable", err)
	}
}

// TestSchedulerWaitsForCatalog tests that the first submission is deferred
// until the voice catalog arrives.
func TestSchedulerWaitsForCatalog(t *testing.T) {
	engine := mock.New()
	engine.SetDelay(time.Millisecond)
	engine.SetVoices(nil)

	cfg := testConfig()
	cfg.CatalogTimeout = time.Hour
	s := newTestScheduler(t, engine, cfg)

	h, err := s.Start(segments("hello"), "en-US")
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	time.Sleep(30 * time.Millisecond)
	if got := engine.GetCallCount(); got != 0 {
		t.Fatalf("Speak calls before catalog = %d, want 0", got)
	}

	engine.SetVoices([]narration.VoiceProfile{
		{Name: "Microsoft David", Lang: "en-US"},
		{Name: "Google US English", Lang: "en-US"},
	})
	waitFinished(t, s, h)

	spoken := engine.Spoken()
	if len(spoken) != 1 {
		t.Fatalf("Speak calls = %d, want 1", len(spoken))
	}
	if spoken[0].Voice == nil || spoken[0].Voice.Name != "Google US English" {
		t.Errorf("voice = %v, want Google US English", spoken[0].Voice)
	}
}

// TestSchedulerCatalogTimeout tests the fallback to the engine default voice.
func TestSchedulerCatalogTimeout(t *testing.T) {
	engine := mock.New()
	engine.SetDelay(time.Millisecond)
	engine.SetVoices(nil)

	cfg := testConfig()
	cfg.CatalogTimeout = 10 * time.Millisecond
	s := newTestScheduler(t, engine, cfg)

	h, err := s.Start(segments("one", "two"), "en-US")
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	waitFinished(t, s, h)

	spoken := engine.Spoken()
	if len(spoken) != 2 {
		t.Fatalf("Speak calls = %d, want 2", len(spoken))
	}
	for i, u := range spoken {
		if u.Voice != nil {
			t.Errorf("utterance %d voice = %v, want engine default", i, u.Voice)
		}
	}
}

// TestSchedulerUtterances tests normalization and prosody of submissions.
func TestSchedulerUtterances(t *testing.T) {
	tests := []struct {
		name      string
		opts      []narration.StartOption
		lang      string
		wantRate  float64
		wantPitch float64
		wantLang  string
	}{
		{
			name:      "article defaults",
			lang:      "en-US",
			wantRate:  0.95,
			wantPitch: 1.0,
			wantLang:  "en-US",
		},
		{
			name:      "headlines prosody",
			opts:      []narration.StartOption{narration.WithProsody(narration.HeadlinesProsody())},
			lang:      narration.HeadlinesLang,
			wantRate:  0.92,
			wantPitch: 1.05,
			wantLang:  "en-GB",
		},
		{
			name:      "session language fallback",
			wantRate:  0.95,
			wantPitch: 1.0,
			wantLang:  "en-US",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := mock.New()
			engine.SetDelay(time.Millisecond)
			s := newTestScheduler(t, engine, testConfig())

			h, err := s.Start(segments("USA won 2023"), tt.lang, tt.opts...)
			if err != nil {
				t.Fatalf("Start() error = %v", err)
			}
			waitFinished(t, s, h)

			spoken := engine.Spoken()
			if len(spoken) != 1 {
				t.Fatalf("Speak calls = %d, want 1", len(spoken))
			}
			u := spoken[0]
			if !strings.Contains(u.Text, "U S A") {
				t.Errorf("Text = %q, want normalized acronym", u.Text)
			}
			if u.Rate != tt.wantRate || u.Pitch != tt.wantPitch || u.Volume != 1.0 {
				t.Errorf("prosody = %v/%v/%v, want %v/%v/1", u.Rate, u.Pitch, u.Volume, tt.wantRate, tt.wantPitch)
			}
			if u.Lang != tt.wantLang {
				t.Errorf("Lang = %q, want %q", u.Lang, tt.wantLang)
			}
			if u.Voice == nil {
				t.Error("Voice = nil, want a catalog voice")
			}
		})
	}
}

// TestSchedulerClose tests that Close cancels and closes the events channel.
func TestSchedulerClose(t *testing.T) {
	engine := mock.New()
	engine.SetDelay(time.Hour)
	s, err := narration.NewScheduler(engine, testConfig())
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}
	if _, err := s.Start(segments("one"), "en-US"); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	waitFor(t, "first submission", func() bool { return engine.GetCallCount() == 1 })

	s.Close()
	s.Close()

	if got := engine.CancelCount(); got != 1 {
		t.Errorf("CancelAll calls = %d, want 1", got)
	}
	if _, err := s.Start(segments("two"), "en-US"); !errors.Is(err, narration.ErrSchedulerClosed) {
		t.Errorf("Start() after Close error = %v, want ErrSchedulerClosed", err)
	}

	for range s.Events() {
	}
}
