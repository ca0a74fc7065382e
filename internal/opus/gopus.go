package opus

import (
	"fmt"

	"github.com/thesyncim/gopus"
)

// NewDecoder returns the pure Go engine. This is the default everywhere
// because it needs no system libraries.
func NewDecoder(sampleRate, channels int) (Decoder, error) {
	dec, err := gopus.NewDecoder(gopus.DecoderConfig{SampleRate: sampleRate, Channels: channels})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecoderFailure, err)
	}
	return &gopusDecoder{dec: dec}, nil
}

type gopusDecoder struct {
	dec *gopus.Decoder
}

func (d *gopusDecoder) Decode(frame []byte, pcm []float32) (int, error) {
	if d.dec == nil {
		return 0, fmt.Errorf("%w: decoder is closed", ErrDecoderFailure)
	}
	n, err := d.dec.Decode(frame, pcm)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDecoderFailure, err)
	}
	return n, nil
}

func (d *gopusDecoder) Close() error {
	d.dec = nil
	return nil
}

var _ Decoder = (*gopusDecoder)(nil)
