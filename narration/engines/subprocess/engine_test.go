package subprocess

import (
	"context"
	"errors"
	"io"
	"os/exec"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/newsreel/narration"
)

// shell returns a dialect that runs script through sh with the text on
// stdin.
func shell(t *testing.T, script string) Dialect {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not found")
	}
	return Dialect{
		Name:   "sh",
		Binary: "sh",
		Args:   func(narration.Utterance) []string { return []string{"-c", script} },
	}
}

type outcome struct {
	started bool
	err     error
}

func speak(t *testing.T, e *Engine, text string) <-chan outcome {
	t.Helper()
	done := make(chan outcome, 1)
	var started bool
	err := e.Speak(narration.Utterance{Text: text}, narration.Callbacks{
		OnStart: func() { started = true },
		OnEnd:   func() { done <- outcome{started: started} },
		OnError: func(err error) { done <- outcome{started: started, err: err} },
	})
	if err != nil {
		t.Fatalf("Speak() error = %v", err)
	}
	return done
}

func wait(t *testing.T, done <-chan outcome) outcome {
	t.Helper()
	select {
	case o := <-done:
		return o
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the utterance")
		return outcome{}
	}
}

// TestEngineSpeak covers success and failure of the child process.
func TestEngineSpeak(t *testing.T) {
	tests := []struct {
		name    string
		script  string
		wantErr string
	}{
		{name: "reads stdin", script: `read line; test "$line" = "hello"`},
		{name: "non-zero exit", script: `echo broken >&2; exit 3`, wantErr: "broken"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(shell(t, tt.script), WithLogger(log.New(io.Discard)))
			o := wait(t, speak(t, e, "hello"))

			if !o.started {
				t.Error("OnStart was not called")
			}
			if tt.wantErr == "" {
				if o.err != nil {
					t.Errorf("Speak() reported %v, want success", o.err)
				}
				return
			}
			if o.err == nil || !strings.Contains(o.err.Error(), tt.wantErr) {
				t.Errorf("Speak() reported %v, want error containing %q", o.err, tt.wantErr)
			}
		})
	}
}

// TestEngineCancelAll interrupts a long running process.
func TestEngineCancelAll(t *testing.T) {
	e := New(shell(t, "sleep 10"), WithLogger(log.New(io.Discard)))
	done := speak(t, e, "long")

	time.Sleep(50 * time.Millisecond)
	e.CancelAll()

	o := wait(t, done)
	if !errors.Is(o.err, narration.ErrCancelled) {
		t.Errorf("Speak() reported %v, want %v", o.err, narration.ErrCancelled)
	}
}

// TestEngineAvailable checks binary and platform detection.
func TestEngineAvailable(t *testing.T) {
	missing := New(Dialect{Name: "missing", Binary: "definitely-not-a-speech-tool"})
	if err := missing.Available(); !errors.Is(err, narration.ErrEngineUnavailable) {
		t.Errorf("Available() = %v, want %v", err, narration.ErrEngineUnavailable)
	}

	other := "plan9"
	if runtime.GOOS == other {
		other = "linux"
	}
	wrongOS := New(Dialect{Name: "x", Binary: "sh", GOOS: other})
	if err := wrongOS.Available(); !errors.Is(err, narration.ErrEngineUnavailable) {
		t.Errorf("Available() = %v, want %v", err, narration.ErrEngineUnavailable)
	}
}

// TestEngineVoices loads the catalog in the background and notifies.
func TestEngineVoices(t *testing.T) {
	d := shell(t, "")
	d.ListArgs = []string{"-c", `echo "Alex                en_US    # hi"`}
	d.ParseVoices = ParseSayVoices

	e := New(d, WithLogger(log.New(io.Discard)))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.WaitVoices(ctx); err != nil {
		t.Fatalf("WaitVoices() error = %v", err)
	}

	voices := e.Voices()
	if len(voices) != 1 || voices[0].Name != "Alex" || voices[0].Lang != "en-US" {
		t.Errorf("Voices() = %v, want [Alex en-US]", voices)
	}
}
