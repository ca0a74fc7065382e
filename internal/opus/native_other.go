//go:build !darwin && !linux

package opus

import "fmt"

// NewNativeDecoder needs dlopen, which purego only provides on darwin and
// linux. Other platforms use the pure Go engine.
func NewNativeDecoder(sampleRate, channels int) (Decoder, error) {
	return nil, fmt.Errorf("%w: native engine is not supported on this platform", ErrDecoderFailure)
}
