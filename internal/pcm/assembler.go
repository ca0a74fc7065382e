// Package pcm assembles decoded audio frames into a single
// fixed-capacity buffer of 48kHz mono float32 samples.
package pcm

import (
	"errors"
	"fmt"
	"math"

	"github.com/stillpine/needledrop/internal/opus"
)

// ErrBufferOverflow is returned when a decoded frame would write past
// the end of the assembly buffer.
var ErrBufferOverflow = errors.New("pcm buffer overflow")

// frameScratch is the per-frame decode scratch capacity in samples.
const frameScratch = 4096

// Assembler accumulates decoded mono samples into a buffer sized from
// the stream duration plus 120ms of headroom. The write cursor may sit
// below zero, in which case incoming samples are dropped until it
// reaches the start of the buffer.
type Assembler struct {
	dec     opus.Decoder
	buf     []float32
	scratch []float32
	cursor  int
}

// NewAssembler allocates a buffer for durationMs of 48kHz mono audio
// plus headroom and takes ownership of dec.
func NewAssembler(durationMs float64, dec opus.Decoder) *Assembler {
	size := int(math.Round((durationMs + 120.0) * 48.0))
	if size < 0 {
		size = 0
	}
	return &Assembler{
		dec:     dec,
		buf:     make([]float32, size),
		scratch: make([]float32, frameScratch),
	}
}

// DiscardLeading positions the write cursor so the next count decoded
// samples are dropped before any audio reaches the buffer.
func (a *Assembler) DiscardLeading(count int) {
	a.cursor = -count
}

// DiscardTrailing rewinds the write cursor by count samples, dropping
// the tail of the most recently written audio. A following frame
// overwrites the rewound region.
func (a *Assembler) DiscardTrailing(count int) {
	a.cursor -= count
}

// SubmitFrame decodes one Opus frame and appends its samples at the
// current cursor.
func (a *Assembler) SubmitFrame(frame []byte) error {
	n, err := a.dec.Decode(frame, a.scratch)
	if err != nil {
		return fmt.Errorf("decoding frame: %w", err)
	}
	return a.write(a.scratch[:n])
}

func (a *Assembler) write(samples []float32) error {
	if a.cursor < 0 {
		skip := min(-a.cursor, len(samples))
		samples = samples[skip:]
		a.cursor += skip
		if a.cursor < 0 {
			return nil
		}
	}
	if a.cursor+len(samples) > len(a.buf) {
		return fmt.Errorf(
			"%w: %d samples at offset %d exceed capacity %d",
			ErrBufferOverflow, len(samples), a.cursor, len(a.buf),
		)
	}
	copy(a.buf[a.cursor:], samples)
	a.cursor += len(samples)
	return nil
}

// Finalize returns the samples assembled so far. A trailing discard
// larger than the written audio yields an empty result.
func (a *Assembler) Finalize() []float32 {
	if a.cursor < 0 {
		return a.buf[:0]
	}
	return a.buf[:a.cursor]
}

// Close releases the decoder owned by the assembler. It is safe to
// call more than once.
func (a *Assembler) Close() error {
	if a.dec == nil {
		return nil
	}
	err := a.dec.Close()
	a.dec = nil
	return err
}
