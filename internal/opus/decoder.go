package opus

import (
	"errors"
	"fmt"
)

// ErrDecoderFailure indicates that an engine could not be created or could
// not decode a frame. Every error returned by an engine wraps it.
var ErrDecoderFailure = errors.New("opus decoder failure")

// Decoder decodes compressed Opus frames into interleaved float32 PCM.
// Implementations are not safe for concurrent use; each decode job owns its
// own Decoder and must Close it when done.
type Decoder interface {
	// Decode decodes one frame into pcm and returns the number of samples
	// written per channel.
	Decode(frame []byte, pcm []float32) (int, error)

	// Close releases the engine resources.
	Close() error
}

// Factory creates a Decoder for a sample rate and channel count. It lets
// callers of the decode pipeline pick an engine, and tests substitute stubs.
type Factory func(sampleRate, channels int) (Decoder, error)

// FactoryFor maps a configured engine name to its Factory.
func FactoryFor(engine string) (Factory, error) {
	switch engine {
	case "gopus":
		return NewDecoder, nil
	case "native":
		return NewNativeDecoder, nil
	default:
		return nil, fmt.Errorf("unknown decoder engine %q", engine)
	}
}
