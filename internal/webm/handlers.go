package webm

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/stillpine/needledrop/internal/pcm"
)

// codecOpus is the Matroska codec identifier for Opus audio tracks.
var codecOpus = []byte("A_OPUS")

// maxDurationMs bounds the output buffer a stream can demand. One
// hour of 48kHz mono float32 is around 700MB; anything longer is a
// hostile header, not a clip.
const maxDurationMs = 60 * 60 * 1000

// nsToSamples converts a nanosecond count to 48kHz samples, truncating
// toward zero.
func nsToSamples(ns uint64) int {
	return int(float64(ns) * 0.000048)
}

// handleDuration sizes the output buffer and builds the job's decoder.
// The segment's TimestampScale is assumed to hold its default of one
// millisecond, so the raw float is read as milliseconds. The first
// duration wins; a later one cannot resize the buffer mid-stream.
func (j *job) handleDuration(payload []byte) error {
	var ms float64
	switch len(payload) {
	case 4:
		ms = float64(math.Float32frombits(binary.BigEndian.Uint32(payload)))
	case 8:
		ms = math.Float64frombits(binary.BigEndian.Uint64(payload))
	default:
		return fmt.Errorf("%w: duration must be a 4 or 8 byte float, got %d bytes", ErrInvalidFieldSize, len(payload))
	}
	if math.IsNaN(ms) || ms < 0 || ms > maxDurationMs {
		return fmt.Errorf("%w: %gms", ErrDurationOutOfRange, ms)
	}
	if j.asm != nil {
		return nil
	}

	dec, err := j.newDecoder(48000, 1)
	if err != nil {
		return err
	}
	j.asm = pcm.NewAssembler(ms, dec)
	if j.pendingDelay > 0 {
		j.asm.DiscardLeading(j.pendingDelay)
	}
	return nil
}

// handleCodecDelay trims the decoder preroll off the front of the
// output. The value is stored as a length-marked varint, the same
// shape as an element size, not as a plain unsigned integer.
func (j *job) handleCodecDelay(payload []byte) error {
	ns, _, err := readSize(payload)
	if err != nil {
		return err
	}
	delay := nsToSamples(ns)
	if j.asm == nil {
		// Tracks can precede Info, so hold the delay until the
		// duration builds the assembler.
		j.pendingDelay = delay
		return nil
	}
	j.asm.DiscardLeading(delay)
	return nil
}

// handleDiscardPadding drops samples from the tail of the preceding
// block. Negative padding would trim from the front instead, which no
// stream we accept uses.
func (j *job) handleDiscardPadding(payload []byte) error {
	var ns int64
	switch len(payload) {
	case 1:
		ns = int64(int8(payload[0]))
	case 2:
		ns = int64(int16(binary.BigEndian.Uint16(payload)))
	case 3:
		v := int64(payload[0])<<16 | int64(payload[1])<<8 | int64(payload[2])
		if v&0x800000 != 0 {
			v -= 1 << 24
		}
		ns = v
	case 4:
		ns = int64(int32(binary.BigEndian.Uint32(payload)))
	default:
		return fmt.Errorf("%w: discard padding must be 1 to 4 bytes, got %d", ErrInvalidFieldSize, len(payload))
	}

	if ns < 0 {
		return fmt.Errorf("%w: padding %dns", ErrLeadingDiscard, ns)
	}
	if j.asm == nil {
		return fmt.Errorf("%w: discard padding arrived before it", ErrMissingDuration)
	}
	j.asm.DiscardTrailing(nsToSamples(uint64(ns)))
	return nil
}

func (j *job) handleCodecID(payload []byte) error {
	if len(payload) < len(codecOpus) || !bytes.Equal(payload[:len(codecOpus)], codecOpus) {
		return fmt.Errorf("%w: %q", ErrCodecMismatch, payload)
	}
	return nil
}

// handleBlock feeds one block's frame to the assembler. The header is
// a track number varint, a 2-byte relative timestamp, and a flags
// byte; everything after it is a single Opus frame. Lacing packs
// several frames into one block and is rejected outright.
func (j *job) handleBlock(payload []byte) error {
	if j.asm == nil {
		return fmt.Errorf("%w: block arrived before it", ErrMissingDuration)
	}

	_, n, err := readSize(payload)
	if err != nil {
		return fmt.Errorf("track number: %w", err)
	}
	header := n + 3
	if len(payload) < header {
		return fmt.Errorf("%w: block header needs %d bytes, got %d", ErrTruncated, header, len(payload))
	}
	if flags := payload[header-1]; flags&0x06 != 0 {
		return fmt.Errorf("%w: flags 0x%02X", ErrLacingUnsupported, flags)
	}
	return j.asm.SubmitFrame(payload[header:])
}
