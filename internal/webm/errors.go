package webm

import "errors"

// Every fault below aborts the whole decode. Callers branch on these
// with errors.Is; anything wrapped around them is context only.
var (
	// ErrMalformedVarInt is returned when a variable-length integer
	// has no length marker in its first byte.
	ErrMalformedVarInt = errors.New("malformed variable-length integer")

	// ErrTruncated is returned when an element or block header claims
	// more bytes than the stream holds.
	ErrTruncated = errors.New("truncated element")

	// ErrLacingUnsupported is returned for blocks that pack several
	// frames together. Opus WebM streams are expected to carry one
	// frame per block.
	ErrLacingUnsupported = errors.New("block lacing is not supported")

	// ErrCodecMismatch is returned when a track declares a codec other
	// than Opus.
	ErrCodecMismatch = errors.New("track codec is not opus")

	// ErrInvalidFieldSize is returned when a fixed-width field carries
	// an unexpected number of bytes.
	ErrInvalidFieldSize = errors.New("invalid field size")

	// ErrLeadingDiscard is returned for negative discard padding,
	// which would trim audio from the front of a block.
	ErrLeadingDiscard = errors.New("unsupported discard direction")

	// ErrMissingDuration is returned when audio arrives before a
	// segment duration, or when the stream never declares one.
	ErrMissingDuration = errors.New("no segment duration")

	// ErrDurationOutOfRange is returned for durations that are
	// negative, not finite, or too long to buffer in memory.
	ErrDurationOutOfRange = errors.New("segment duration out of range")
)
