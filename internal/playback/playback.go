// Package playback plays decoded samples on the default audio device.
package playback

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/stillpine/needledrop/internal/pcm"
)

// Play renders samples aloud at the given rate and returns once the
// audio finishes or ctx is canceled. The underlying audio context is
// process wide, so Play suits one-shot command line use.
func Play(ctx context.Context, samples []float32, sampleRate int) (err error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	}
	otoCtx, ready, err := oto.NewContext(op)
	if err != nil {
		return fmt.Errorf("opening audio device: %w", err)
	}
	select {
	case <-ready:
	case <-ctx.Done():
		return ctx.Err()
	}

	player := otoCtx.NewPlayer(bytes.NewReader(pcm.Bytes(samples)))
	defer func() {
		err = errors.Join(err, player.Close())
	}()
	player.Play()

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for player.IsPlaying() {
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
