package piper

import (
	"context"
	"errors"
	"time"
)

// Raw PCM format written by piper --output-raw.
const (
	SampleRate     = 22050
	Channels       = 1
	BitDepth       = 16
	BytesPerSample = BitDepth / 8
)

// ErrNoAudio is returned when the binary was built without audio output.
var ErrNoAudio = errors.New("audio output not available in this build")

// Player plays raw PCM. Play blocks until playback finishes or ctx is done.
type Player interface {
	Play(ctx context.Context, pcm []byte) error
}

// Duration returns how long pcm takes to play.
func Duration(pcm []byte) time.Duration {
	samples := len(pcm) / (BytesPerSample * Channels)
	return time.Duration(samples) * time.Second / SampleRate
}

// align pads pcm to a whole number of samples.
func align(pcm []byte) []byte {
	if r := len(pcm) % BytesPerSample; r != 0 {
		pcm = append(pcm, make([]byte, BytesPerSample-r)...)
	}
	return pcm
}
