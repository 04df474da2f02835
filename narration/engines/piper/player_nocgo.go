//go:build nocgo

package piper

import "context"

// OtoPlayer is unavailable without cgo.
type OtoPlayer struct{}

// NewPlayer always fails in nocgo builds.
func NewPlayer() (*OtoPlayer, error) {
	return nil, ErrNoAudio
}

// Play implements Player.
func (p *OtoPlayer) Play(ctx context.Context, pcm []byte) error {
	return ErrNoAudio
}
