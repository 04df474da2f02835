// Package subprocess speaks through command line speech tools such as
// espeak-ng and macOS say.
package subprocess

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/newsreel/narration"
)

// Engine runs one child process per utterance. Cancelling interrupts the
// process; its exit is then reported as a trailing OnError.
type Engine struct {
	dialect Dialect
	logger  *log.Logger

	// timeout bounds a single utterance
	timeout time.Duration
	// gracePeriod is how long an interrupted process may take to exit
	gracePeriod time.Duration

	mu        sync.Mutex
	cancel    context.CancelFunc
	run       uint64
	voices    []narration.VoiceProfile
	listeners []func()
	loaded    chan struct{}
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithBinary overrides the dialect's binary.
func WithBinary(path string) Option {
	return func(e *Engine) {
		if path != "" {
			e.dialect.Binary = path
		}
	}
}

// WithTimeout sets the maximum speaking time of one utterance.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// New creates an engine for the dialect and starts discovering voices in the
// background. The catalog is empty until discovery finishes.
func New(d Dialect, opts ...Option) *Engine {
	e := &Engine{
		dialect:     d,
		logger:      log.Default(),
		timeout:     2 * time.Minute,
		gracePeriod: 500 * time.Millisecond,
		loaded:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.Available() == nil && len(d.ListArgs) > 0 && d.ParseVoices != nil {
		go e.loadVoices()
	} else {
		close(e.loaded)
	}
	return e
}

// Name returns the dialect name.
func (e *Engine) Name() string {
	return e.dialect.Name
}

// Available checks the operating system and that the binary exists.
func (e *Engine) Available() error {
	if e.dialect.GOOS != "" && e.dialect.GOOS != runtime.GOOS {
		return fmt.Errorf("%w: %s requires %s", narration.ErrEngineUnavailable, e.dialect.Name, e.dialect.GOOS)
	}
	if err := CheckBinary(e.dialect.Binary); err != nil {
		return fmt.Errorf("%w: %w", narration.ErrEngineUnavailable, err)
	}
	return nil
}

// Speak starts the process for u and reports its outcome through cb.
func (e *Engine) Speak(u narration.Utterance, cb narration.Callbacks) error {
	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)

	input := u.Text
	if e.dialect.Input != nil {
		input = e.dialect.Input(u)
	}
	args := e.dialect.Args(u)

	cmd := exec.CommandContext(ctx, e.dialect.Binary, args...)
	// stdin must be set before the process starts
	cmd.Stdin = strings.NewReader(input)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	interruptible(cmd, e.gracePeriod)

	start := time.Now()
	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("failed to start %s: %w", e.dialect.Binary, err)
	}

	e.mu.Lock()
	if e.cancel != nil {
		e.cancel()
	}
	e.cancel = cancel
	e.run++
	run := e.run
	e.mu.Unlock()

	go func() {
		defer cancel()
		cb.Start()
		err := cmd.Wait()
		e.clearCancel(run)

		e.logger.Debug("Speech process finished",
			"engine", e.dialect.Name,
			"args", args,
			"duration", time.Since(start),
			"err", err,
		)

		switch {
		case errors.Is(ctx.Err(), context.Canceled):
			cb.Error(narration.ErrCancelled)
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			cb.Error(fmt.Errorf("%s timed out after %v", e.dialect.Binary, e.timeout))
		case err != nil:
			if s := strings.TrimSpace(stderr.String()); s != "" {
				cb.Error(fmt.Errorf("%s failed: %w\nstderr: %s", e.dialect.Binary, err, s))
				return
			}
			cb.Error(fmt.Errorf("%s failed: %w", e.dialect.Binary, err))
		default:
			cb.End()
		}
	}()
	return nil
}

func (e *Engine) clearCancel(run uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.run == run {
		e.cancel = nil
	}
}

// CancelAll interrupts the running process, if any.
func (e *Engine) CancelAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
}

// Voices returns the discovered catalog.
func (e *Engine) Voices() []narration.VoiceProfile {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]narration.VoiceProfile, len(e.voices))
	copy(out, e.voices)
	return out
}

// OnVoicesChanged registers fn to run when discovery finishes.
func (e *Engine) OnVoicesChanged(fn func()) {
	if fn == nil {
		return
	}
	e.mu.Lock()
	e.listeners = append(e.listeners, fn)
	e.mu.Unlock()
}

// WaitVoices blocks until voice discovery has finished or ctx is done.
func (e *Engine) WaitVoices(ctx context.Context) error {
	select {
	case <-e.loaded:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Engine) loadVoices() {
	defer close(e.loaded)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	out, err := exec.CommandContext(ctx, e.dialect.Binary, e.dialect.ListArgs...).Output()
	if err != nil {
		e.logger.Warn("Could not list voices", "engine", e.dialect.Name, "err", err)
		return
	}
	voices := e.dialect.ParseVoices(out)
	e.logger.Debug("Voices discovered", "engine", e.dialect.Name, "count", len(voices))

	e.mu.Lock()
	e.voices = voices
	listeners := append([]func(){}, e.listeners...)
	e.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

// CheckBinary returns an error if name cannot be found or executed.
func CheckBinary(name string) error {
	if name == "" {
		return errors.New("no binary configured")
	}
	if _, err := exec.LookPath(name); err != nil {
		return fmt.Errorf("%s not found in PATH: %w", name, err)
	}
	return nil
}
