//go:build !nocgo

package piper

import (
	"bytes"
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

var (
	otoOnce sync.Once
	otoCtx  *oto.Context
	otoErr  error
)

// audioContext returns the process-wide oto context. oto allows only one.
func audioContext() (*oto.Context, error) {
	otoOnce.Do(func() {
		options := &oto.NewContextOptions{
			SampleRate:   SampleRate,
			ChannelCount: Channels,
			Format:       oto.FormatSignedInt16LE,
			BufferSize:   50 * time.Millisecond,
		}
		if runtime.GOOS == "darwin" {
			options.BufferSize = 100 * time.Millisecond
		}

		var ready chan struct{}
		otoCtx, ready, otoErr = oto.NewContext(options)
		if otoErr != nil {
			otoErr = fmt.Errorf("failed to create audio context: %w", otoErr)
			return
		}
		<-ready
	})
	return otoCtx, otoErr
}

// OtoPlayer plays through the system audio device.
type OtoPlayer struct {
	// poll is how often playback completion is checked
	poll time.Duration
}

// NewPlayer returns a player backed by oto.
func NewPlayer() (*OtoPlayer, error) {
	if _, err := audioContext(); err != nil {
		return nil, err
	}
	return &OtoPlayer{poll: 20 * time.Millisecond}, nil
}

// Play implements Player.
func (p *OtoPlayer) Play(ctx context.Context, pcm []byte) error {
	octx, err := audioContext()
	if err != nil {
		return err
	}

	player := octx.NewPlayer(bytes.NewReader(align(pcm)))
	defer player.Close()
	player.Play()

	ticker := time.NewTicker(p.poll)
	defer ticker.Stop()
	for player.IsPlaying() {
		select {
		case <-ctx.Done():
			player.Pause()
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return player.Err()
}
