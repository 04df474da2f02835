package engines

import (
	"errors"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/newsreel/narration"
)

// TestNew covers explicit names and unknown names.
func TestNew(t *testing.T) {
	opts := Options{Logger: log.New(io.Discard)}

	tests := []struct {
		name     string
		engine   string
		wantName string
		wantErr  bool
	}{
		{name: "mock", engine: "mock", wantName: "mock"},
		{name: "case insensitive", engine: " MOCK ", wantName: "mock"},
		{name: "unknown", engine: "festival", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := New(tt.engine, opts)
			if tt.wantErr {
				if err == nil {
					t.Errorf("New(%q) error = nil, want error", tt.engine)
				}
				return
			}
			if err != nil {
				t.Fatalf("New(%q) error = %v", tt.engine, err)
			}
			if e.Name() != tt.wantName {
				t.Errorf("New(%q).Name() = %s, want %s", tt.engine, e.Name(), tt.wantName)
			}
		})
	}
}

// TestNewMissingBinary reports an unavailable explicit engine.
func TestNewMissingBinary(t *testing.T) {
	_, err := New(Espeak, Options{Logger: log.New(io.Discard), Binary: "no-such-espeak-binary"})
	if !errors.Is(err, narration.ErrEngineUnavailable) {
		t.Errorf("New() error = %v, want %v", err, narration.ErrEngineUnavailable)
	}
}
