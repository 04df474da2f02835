// Package narration reads queues of text segments aloud through an external
// speech engine, one utterance at a time.
package narration

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Scheduler drives a speech engine through narration sessions. A single
// goroutine owns every session transition and every engine call; engine
// callbacks and timers only post notifications to it. At most one session is
// speaking at a time.
type Scheduler struct {
	engine   Engine
	cfg      Config
	selector VoiceSelector
	logger   *log.Logger

	cmds   chan func()
	inbox  *mailbox[notification]
	outbox *mailbox[Event]
	events chan Event

	quit      chan struct{}
	done      chan struct{}
	pumpDone  chan struct{}
	closeOnce sync.Once

	// Owned by the loop goroutine.
	generation    uint64
	session       *Session
	catalogGaveUp bool
	delayTimer    *time.Timer
	catalogTimer  *time.Timer
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger used by the scheduler.
func WithLogger(l *log.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithVoiceSelector replaces the default voice selection heuristics.
func WithVoiceSelector(v VoiceSelector) Option {
	return func(s *Scheduler) {
		s.selector = v
	}
}

// WithEventBuffer sets the capacity of the Events channel.
func WithEventBuffer(n int) Option {
	return func(s *Scheduler) {
		if n >= 0 {
			s.events = make(chan Event, n)
		}
	}
}

// StartOption configures a single session.
type StartOption func(*startOptions)

type startOptions struct {
	prosody  Prosody
	explicit bool
}

// WithProsody sets the rate, pitch and volume for every utterance of the
// session, bypassing the per-language rate overrides.
func WithProsody(p Prosody) StartOption {
	return func(o *startOptions) {
		o.prosody = p
		o.explicit = true
	}
}

// NewScheduler creates a scheduler for engine. It returns an error wrapping
// ErrEngineUnavailable when the engine cannot be used on this host.
func NewScheduler(engine Engine, cfg Config, opts ...Option) (*Scheduler, error) {
	if engine == nil {
		return nil, NewNarrationError(ErrEngineUnavailable, "scheduler", "init")
	}
	if err := engine.Available(); err != nil {
		if !errors.Is(err, ErrEngineUnavailable) {
			err = fmt.Errorf("%w: %w", ErrEngineUnavailable, err)
		}
		return nil, NewNarrationError(err, "scheduler", "init").WithContext("engine", engine.Name())
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid narration config: %w", err)
	}

	s := &Scheduler{
		engine:   engine,
		cfg:      cfg,
		selector: DefaultVoiceSelector(),
		logger:   log.Default(),
		cmds:     make(chan func()),
		inbox:    newMailbox[notification](),
		outbox:   newMailbox[Event](),
		events:   make(chan Event, 32),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
		pumpDone: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	engine.OnVoicesChanged(func() {
		s.inbox.post(notification{kind: noteCatalogChanged})
	})

	go s.run()
	go s.pump()

	s.logger.Info("Narration ready", "engine", engine.Name(), "voices", len(engine.Voices()))
	return s, nil
}

// Events returns the channel on which progress, failure and completion
// events are delivered. It is closed by Close.
func (s *Scheduler) Events() <-chan Event {
	return s.events
}

// Start begins narrating segments, cancelling any session that is still
// speaking. An empty segment list creates no session and returns
// ErrNoSegments.
func (s *Scheduler) Start(segments []TextSegment, lang string, opts ...StartOption) (Handle, error) {
	if len(segments) == 0 {
		return Handle{}, ErrNoSegments
	}
	if lang == "" {
		lang = s.cfg.Lang
	}
	if s.cfg.languageDisabled(lang) {
		return Handle{}, NewNarrationError(ErrLanguageDisabled, "scheduler", "start").
			WithSeverity(SeverityInfo).
			WithContext("language", lang)
	}

	o := startOptions{prosody: s.cfg.Prosody}
	for _, opt := range opts {
		opt(&o)
	}
	prosody := o.prosody
	if !o.explicit {
		prosody = s.cfg.prosodyFor(lang, prosody)
	}

	var h Handle
	err := s.do(func() {
		s.cancelCurrent("superseded")

		s.generation++
		h = Handle{Generation: s.generation}
		sess := newSession(h, segments, lang, prosody)
		sess.transition(StatusSpeaking)
		s.session = sess

		s.logger.Info("Narration started",
			"generation", h.Generation,
			"segments", len(segments),
			"language", lang,
		)
		s.advance()
	})
	if err != nil {
		return Handle{}, err
	}
	return h, nil
}

// Cancel stops the session identified by h. It returns false if h is not the
// current session or the session already finished.
func (s *Scheduler) Cancel(h Handle) bool {
	var ok bool
	_ = s.do(func() {
		if s.session == nil || s.session.handle != h {
			return
		}
		ok = s.cancelCurrent("cancelled")
	})
	return ok
}

// Stop cancels whatever session is currently speaking.
func (s *Scheduler) Stop() bool {
	var ok bool
	_ = s.do(func() {
		ok = s.cancelCurrent("stopped")
	})
	return ok
}

// LanguageDisabled reports whether Start would refuse lang because
// narration is disabled for its base language.
func (s *Scheduler) LanguageDisabled(lang string) bool {
	return s.cfg.languageDisabled(lang)
}

// Snapshot returns the state of the most recent session, or an idle
// snapshot if none was started.
func (s *Scheduler) Snapshot() Snapshot {
	snap := Snapshot{Status: StatusIdle}
	_ = s.do(func() {
		if s.session != nil {
			snap = s.session.snapshot()
		}
	})
	return snap
}

// Close cancels the current session and stops the scheduler. Events is
// closed once pending events have been flushed.
func (s *Scheduler) Close() {
	s.closeOnce.Do(func() {
		close(s.quit)
		<-s.done
		<-s.pumpDone
	})
}

// do runs fn on the loop goroutine and waits for it to finish.
func (s *Scheduler) do(fn func()) error {
	ack := make(chan struct{})
	select {
	case s.cmds <- func() { fn(); close(ack) }:
	case <-s.quit:
		return ErrSchedulerClosed
	}
	<-ack
	return nil
}

func (s *Scheduler) run() {
	defer close(s.done)
	for {
		select {
		case <-s.quit:
			s.cancelCurrent("closed")
			return
		case fn := <-s.cmds:
			fn()
		case <-s.inbox.ready:
			for _, n := range s.inbox.drain() {
				s.handle(n)
			}
		}
	}
}

// pump forwards events from the outbox to the Events channel so a slow
// reader never stalls the loop.
func (s *Scheduler) pump() {
	defer close(s.pumpDone)
	defer close(s.events)
	for {
		select {
		case <-s.outbox.ready:
			batch := s.outbox.drain()
			for i, ev := range batch {
				select {
				case s.events <- ev:
				case <-s.quit:
					s.flush(batch[i:])
					return
				}
			}
		case <-s.quit:
			s.flush(nil)
			return
		}
	}
}

// flush hands over what is left after Close without blocking, starting with
// the undelivered part of the batch the pump was sending.
func (s *Scheduler) flush(pending []Event) {
	<-s.done
	for _, ev := range append(pending, s.outbox.drain()...) {
		select {
		case s.events <- ev:
		default:
			s.logger.Debug("Dropping narration event after close", "event", ev.Kind)
		}
	}
}

func (s *Scheduler) emit(ev Event) {
	s.outbox.post(ev)
}

func (s *Scheduler) handle(n notification) {
	if n.kind == noteCatalogChanged {
		s.onCatalogChanged()
		return
	}

	sess := s.session
	if sess == nil || n.gen != sess.handle.Generation || sess.status != StatusSpeaking {
		s.logger.Debug("Discarding stale notification", "kind", n.kind, "generation", n.gen, "index", n.index)
		return
	}

	switch n.kind {
	case noteStarted:
		s.logger.Debug("Utterance started", "generation", n.gen, "index", n.index)

	case noteEnded, noteFailed:
		if !sess.inFlight || n.index != sess.cursor-1 {
			s.logger.Debug("Discarding unexpected terminal notification",
				"kind", n.kind, "generation", n.gen, "index", n.index)
			return
		}
		sess.inFlight = false
		delay := s.cfg.Delay
		if n.kind == noteFailed {
			delay = s.cfg.ErrorDelay
			err := utteranceFailure(n.err, n.index)
			s.logger.Warn("Utterance failed, continuing", "generation", n.gen, "index", n.index, "err", n.err)
			s.emit(Event{
				Kind:    EventSegmentFailed,
				Handle:  sess.handle,
				Index:   n.index,
				Total:   len(sess.segments),
				Segment: sess.segments[n.index],
				Err:     err,
			})
		}
		s.scheduleAdvance(sess, delay)

	case noteDelayElapsed:
		s.advance()

	case noteCatalogTimeout:
		if !sess.awaitingCatalog {
			return
		}
		s.catalogGaveUp = true
		s.logger.Warn("Voice catalog unavailable, using engine default voice",
			"engine", s.engine.Name(), "err", ErrCatalogUnavailable)
		sess.awaitingCatalog = false
		s.advance()
	}
}

func (s *Scheduler) onCatalogChanged() {
	voices := s.engine.Voices()
	s.logger.Debug("Voice catalog changed", "voices", len(voices))
	if len(voices) == 0 {
		return
	}
	s.catalogGaveUp = false
	sess := s.session
	if sess == nil || sess.status != StatusSpeaking || !sess.awaitingCatalog {
		return
	}
	sess.awaitingCatalog = false
	stopTimer(s.catalogTimer)
	s.advance()
}

func (s *Scheduler) scheduleAdvance(sess *Session, d time.Duration) {
	gen := sess.handle.Generation
	stopTimer(s.delayTimer)
	s.delayTimer = time.AfterFunc(d, func() {
		s.inbox.post(notification{kind: noteDelayElapsed, gen: gen})
	})
}

// advance submits the next segment of the current session, or completes it
// when the queue is exhausted.
func (s *Scheduler) advance() {
	sess := s.session
	if sess == nil || sess.status != StatusSpeaking || sess.inFlight || sess.awaitingCatalog {
		return
	}

	if sess.exhausted() {
		sess.transition(StatusCompleted)
		s.logger.Info("Narration completed", "generation", sess.handle.Generation, "segments", len(sess.segments))
		s.finish(sess)
		return
	}

	if s.waitForCatalog(sess) {
		return
	}

	index := sess.cursor
	seg := sess.segments[index]
	u := s.utterance(sess, seg)
	sess.transition(StatusSpeaking)
	sess.cursor++
	sess.inFlight = true

	s.emit(Event{
		Kind:    EventProgress,
		Handle:  sess.handle,
		Index:   index,
		Total:   len(sess.segments),
		Segment: seg,
	})

	gen := sess.handle.Generation
	post := func(kind notificationKind, err error) {
		s.inbox.post(notification{kind: kind, gen: gen, index: index, err: err})
	}
	voice := ""
	if u.Voice != nil {
		voice = u.Voice.Name
	}
	s.logger.Debug("Submitting utterance",
		"generation", gen,
		"index", index,
		"voice", voice,
		"lang", u.Lang,
		"rate", u.Rate,
	)

	err := s.engine.Speak(u, Callbacks{
		OnStart: func() { post(noteStarted, nil) },
		OnEnd:   func() { post(noteEnded, nil) },
		OnError: func(err error) { post(noteFailed, err) },
	})
	if err != nil {
		post(noteFailed, err)
	}
}

// waitForCatalog defers the submission while the engine has no voices yet.
// It returns true if the caller should stop and wait.
func (s *Scheduler) waitForCatalog(sess *Session) bool {
	if s.catalogGaveUp || s.cfg.CatalogTimeout <= 0 || len(s.engine.Voices()) > 0 {
		return false
	}
	sess.awaitingCatalog = true
	gen := sess.handle.Generation
	stopTimer(s.catalogTimer)
	s.catalogTimer = time.AfterFunc(s.cfg.CatalogTimeout, func() {
		s.inbox.post(notification{kind: noteCatalogTimeout, gen: gen})
	})
	s.logger.Debug("Waiting for voice catalog", "timeout", s.cfg.CatalogTimeout)
	return true
}

func (s *Scheduler) utterance(sess *Session, seg TextSegment) Utterance {
	lang := seg.Lang
	if lang == "" {
		lang = sess.lang
	}
	u := Utterance{
		Text:   Normalize(seg.Text),
		Lang:   lang,
		Rate:   sess.prosody.Rate,
		Pitch:  sess.prosody.Pitch,
		Volume: sess.prosody.Volume,
	}
	if v, ok := s.selector.Select(s.engine.Voices(), lang); ok {
		u.Voice = &v
	}
	return u
}

// cancelCurrent cancels the speaking session, if any. It returns true if a
// session was cancelled.
func (s *Scheduler) cancelCurrent(reason string) bool {
	sess := s.session
	if sess == nil || !sess.transition(StatusCancelled) {
		return false
	}
	stopTimer(s.delayTimer)
	stopTimer(s.catalogTimer)
	sess.awaitingCatalog = false
	sess.inFlight = false
	s.engine.CancelAll()

	s.logger.Info("Narration cancelled",
		"generation", sess.handle.Generation,
		"reason", reason,
		"cursor", sess.cursor,
		"segments", len(sess.segments),
	)
	s.finish(sess)
	return true
}

func (s *Scheduler) finish(sess *Session) {
	if sess.reported {
		return
	}
	sess.reported = true
	stopTimer(s.delayTimer)
	stopTimer(s.catalogTimer)
	s.emit(Event{
		Kind:   EventFinished,
		Handle: sess.handle,
		Index:  sess.cursor - 1,
		Total:  len(sess.segments),
		Status: sess.status,
	})
}

func stopTimer(t *time.Timer) {
	if t != nil {
		t.Stop()
	}
}
