// Package engines builds a speech engine by name.
package engines

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/newsreel/narration"
	"github.com/dgnsrekt/newsreel/narration/engines/mock"
	"github.com/dgnsrekt/newsreel/narration/engines/piper"
	"github.com/dgnsrekt/newsreel/narration/engines/subprocess"
)

// Engine names accepted by New.
const (
	Auto   = "auto"
	Mock   = "mock"
	Espeak = "espeak"
	Say    = "say"
	Piper  = "piper"
)

// Names lists every accepted engine name.
var Names = []string{Auto, Mock, Espeak, Say, Piper}

// autoOrder is the preference order for Auto.
var autoOrder = []string{Piper, Espeak, Say}

// Options configures the engine New builds.
type Options struct {
	Logger    *log.Logger
	Binary    string        `mapstructure:"binary"`
	VoicesDir string        `mapstructure:"voices_dir"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// New returns the engine called name. For Auto it returns the first
// available engine. The returned engine is always available.
func New(name string, opts Options) (narration.Engine, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = Auto
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	if name != Auto {
		e, err := build(name, opts)
		if err != nil {
			return nil, err
		}
		if err := e.Available(); err != nil {
			return nil, err
		}
		return e, nil
	}

	var errs []error
	for _, n := range autoOrder {
		// a binary override only applies to an explicitly named engine
		o := opts
		o.Binary = ""
		e, _ := build(n, o)
		err := e.Available()
		if err == nil {
			opts.Logger.Debug("Selected speech engine", "engine", n)
			return e, nil
		}
		errs = append(errs, err)
	}
	return nil, fmt.Errorf("%w: no speech engine found (tried %s): %w",
		narration.ErrEngineUnavailable, strings.Join(autoOrder, ", "), errors.Join(errs...))
}

func build(name string, opts Options) (narration.Engine, error) {
	switch name {
	case Mock:
		return mock.New(), nil
	case Espeak:
		return subprocess.New(subprocess.Espeak(),
			subprocess.WithLogger(opts.Logger),
			subprocess.WithBinary(opts.Binary),
			subprocess.WithTimeout(opts.Timeout),
		), nil
	case Say:
		return subprocess.New(subprocess.Say(),
			subprocess.WithLogger(opts.Logger),
			subprocess.WithBinary(opts.Binary),
			subprocess.WithTimeout(opts.Timeout),
		), nil
	case Piper:
		return piper.New(
			piper.WithLogger(opts.Logger),
			piper.WithBinary(opts.Binary),
			piper.WithVoicesDir(opts.VoicesDir),
		), nil
	default:
		return nil, fmt.Errorf("unknown engine %q, want one of %s", name, strings.Join(Names, ", "))
	}
}
