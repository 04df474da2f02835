// Package piper speaks with the piper neural TTS, playing its raw PCM output
// through the system audio device.
package piper

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/newsreel/narration"
	"github.com/fsnotify/fsnotify"
	"github.com/mitchellh/go-homedir"
)

// DefaultVoicesDir is where models are looked for unless configured.
const DefaultVoicesDir = "~/.local/share/piper-voices"

// Engine implements narration.Engine on top of the piper binary.
type Engine struct {
	binary  string
	dir     string
	player  Player
	logger  *log.Logger
	timeout time.Duration

	playerErr error

	mu        sync.Mutex
	models    []Model
	listeners []func()
	cancel    context.CancelFunc
	run       uint64
}

// Option configures an Engine.
type Option func(*Engine)

// WithBinary sets the piper executable.
func WithBinary(path string) Option {
	return func(e *Engine) {
		if path != "" {
			e.binary = path
		}
	}
}

// WithVoicesDir sets the model directory. A leading ~ is expanded.
func WithVoicesDir(dir string) Option {
	return func(e *Engine) {
		if dir != "" {
			e.dir = dir
		}
	}
}

// WithPlayer replaces the audio output.
func WithPlayer(p Player) Option {
	return func(e *Engine) {
		if p != nil {
			e.player = p
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates a piper engine and scans the model directory.
func New(opts ...Option) *Engine {
	e := &Engine{
		binary:  "piper",
		dir:     DefaultVoicesDir,
		logger:  log.Default(),
		timeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(e)
	}

	if dir, err := homedir.Expand(e.dir); err == nil {
		e.dir = dir
	}
	if e.player == nil {
		p, err := NewPlayer()
		if err != nil {
			e.playerErr = err
		} else {
			e.player = p
		}
	}
	if err := e.Rescan(); err != nil {
		e.logger.Debug("No piper voices", "dir", e.dir, "err", err)
	}
	return e
}

// Name returns "piper".
func (e *Engine) Name() string {
	return "piper"
}

// Available requires the binary, at least one model and working audio.
func (e *Engine) Available() error {
	if _, err := exec.LookPath(e.binary); err != nil {
		return fmt.Errorf("%w: piper binary not found: %w", narration.ErrEngineUnavailable, err)
	}
	if e.playerErr != nil {
		return fmt.Errorf("%w: %w", narration.ErrEngineUnavailable, e.playerErr)
	}
	e.mu.Lock()
	n := len(e.models)
	e.mu.Unlock()
	if n == 0 {
		return fmt.Errorf("%w: no .onnx voice models in %s", narration.ErrEngineUnavailable, e.dir)
	}
	return nil
}

// Rescan reloads the model directory and notifies listeners.
func (e *Engine) Rescan() error {
	models, err := Scan(e.dir)

	e.mu.Lock()
	e.models = models
	listeners := append([]func(){}, e.listeners...)
	e.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
	return err
}

// Watch rescans whenever a model is added or removed, until ctx is done.
func (e *Engine) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close() //nolint:errcheck

	if err := w.Add(e.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", e.dir, err)
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !strings.HasSuffix(ev.Name, ".onnx") {
				continue
			}
			if ev.Has(fsnotify.Create) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
				e.logger.Debug("Piper voices changed", "file", filepath.Base(ev.Name))
				_ = e.Rescan()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			e.logger.Warn("Voice watcher error", "err", err)
		}
	}
}

// Speak synthesizes u and plays it in the background.
func (e *Engine) Speak(u narration.Utterance, cb narration.Callbacks) error {
	model, ok := e.model(u)
	if !ok {
		return fmt.Errorf("%w: no piper voice for %q", narration.ErrUtteranceFailed, u.Lang)
	}

	ctx, cancel := context.WithCancel(context.Background())
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
		defer e.clearCancel(run)

		cb.Start()
		err := e.say(ctx, model, u)
		switch {
		case ctx.Err() != nil:
			cb.Error(narration.ErrCancelled)
		case err != nil:
			cb.Error(err)
		default:
			cb.End()
		}
	}()
	return nil
}

func (e *Engine) say(ctx context.Context, model Model, u narration.Utterance) error {
	start := time.Now()
	pcm, err := e.synthesize(ctx, model, u)
	if err != nil {
		return err
	}
	pcm = applyVolume(pcm, u.Volume)
	e.logger.Debug("Synthesized",
		"voice", model.Name,
		"bytes", len(pcm),
		"audio", Duration(pcm),
		"took", time.Since(start),
	)
	return e.player.Play(ctx, pcm)
}

func (e *Engine) synthesize(ctx context.Context, model Model, u narration.Utterance) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, e.binary, Args(model, u.Rate)...)
	// stdin must be set before the process starts
	cmd.Stdin = strings.NewReader(u.Text)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("piper timed out after %v", e.timeout)
		}
		if s := strings.TrimSpace(stderr.String()); s != "" {
			return nil, fmt.Errorf("piper failed: %w\nstderr: %s", err, s)
		}
		return nil, fmt.Errorf("piper failed: %w", err)
	}
	if stdout.Len() == 0 {
		return nil, errors.New("piper produced no audio")
	}
	return align(stdout.Bytes()), nil
}

// Args returns the piper arguments for speaking with model at rate.
func Args(model Model, rate float64) []string {
	args := []string{"--model", model.Path, "--output-raw"}
	if model.Config != "" {
		args = append(args, "--config", model.Config)
	}
	if rate > 0 && rate != 1 {
		args = append(args, "--length_scale", strconv.FormatFloat(1/rate, 'f', 2, 64))
	}
	return args
}

// applyVolume scales 16-bit little endian samples in place.
func applyVolume(pcm []byte, volume float64) []byte {
	if volume <= 0 || volume >= 1 {
		return pcm
	}
	for i := 0; i+1 < len(pcm); i += BytesPerSample {
		s := int16(binary.LittleEndian.Uint16(pcm[i:]))
		binary.LittleEndian.PutUint16(pcm[i:], uint16(int16(float64(s)*volume)))
	}
	return pcm
}

// model picks the requested voice, else the first voice for the language,
// else the default.
func (e *Engine) model(u narration.Utterance) (Model, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.models) == 0 {
		return Model{}, false
	}
	if u.Voice != nil {
		for _, m := range e.models {
			if m.Name == u.Voice.Name {
				return m, true
			}
		}
	}
	base := narration.BaseLanguage(u.Lang)
	for _, m := range e.models {
		if narration.BaseLanguage(m.Lang) == base {
			return m, true
		}
	}
	return e.models[0], true
}

func (e *Engine) clearCancel(run uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.run == run {
		e.cancel = nil
	}
}

// CancelAll stops synthesis or playback in progress.
func (e *Engine) CancelAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
}

// Voices returns one profile per installed model.
func (e *Engine) Voices() []narration.VoiceProfile {
	e.mu.Lock()
	defer e.mu.Unlock()
	return profiles(e.models)
}

// OnVoicesChanged registers fn to run after each rescan.
func (e *Engine) OnVoicesChanged(fn func()) {
	if fn == nil {
		return
	}
	e.mu.Lock()
	e.listeners = append(e.listeners, fn)
	e.mu.Unlock()
}

// VoicesDir returns the expanded model directory.
func (e *Engine) VoicesDir() string {
	return e.dir
}

var _ narration.Engine = (*Engine)(nil)
