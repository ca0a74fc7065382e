// Package webm walks a WebM container held in memory, decodes its
// mono Opus track, and assembles the result into a trimmed 48kHz
// float32 sample buffer. Any fault in the container, the codec
// declaration, or the decode aborts the job.
package webm

import (
	"errors"
	"fmt"

	"github.com/stillpine/needledrop/internal/opus"
	"github.com/stillpine/needledrop/internal/pcm"
)

// ebmlHeaderID opens every Matroska and WebM file.
const ebmlHeaderID = 0x1A45DFA3

// job carries the state of one decode pass so concurrent decodes never
// share anything. The assembler exists only after a segment duration
// has sized the output buffer.
type job struct {
	newDecoder   opus.Factory
	asm          *pcm.Assembler
	pendingDelay int
}

// Decode extracts and decodes the Opus track of the WebM stream in
// data. The job's decoder is built with newDecoder once the segment
// duration is known.
func Decode(data []byte, newDecoder opus.Factory) (samples []float32, err error) {
	j := &job{newDecoder: newDecoder}
	defer func() {
		if j.asm != nil {
			err = errors.Join(err, j.asm.Close())
		}
	}()

	if err := walk(data, j); err != nil {
		return nil, err
	}
	if j.asm == nil {
		return nil, fmt.Errorf("%w: stream never declared one", ErrMissingDuration)
	}
	return j.asm.Finalize(), nil
}

// walk dispatches every element in data, recursing into masters.
func walk(data []byte, j *job) error {
	for off := 0; off < len(data); {
		id, n, err := readID(data[off:])
		if err != nil {
			return fmt.Errorf("element id at offset %d: %w", off, err)
		}
		off += n

		size, n, err := readSize(data[off:])
		if err != nil {
			return fmt.Errorf("element size at offset %d: %w", off, err)
		}
		off += n

		if size > uint64(len(data)-off) {
			return fmt.Errorf(
				"%w: element 0x%X claims %d bytes with %d left",
				ErrTruncated, id, size, len(data)-off,
			)
		}
		payload := data[off : off+int(size)]
		off += int(size)

		el, ok := elements[id]
		switch {
		case !ok:
			continue
		case el.master:
			if err := walk(payload, j); err != nil {
				return err
			}
		default:
			if err := el.handle(j, payload); err != nil {
				return fmt.Errorf("%s element: %w", el.name, err)
			}
		}
	}
	return nil
}

// Match reports whether data begins with an EBML header, marking it as
// a Matroska or WebM container.
func Match(data []byte) bool {
	id, _, err := readID(data)
	return err == nil && id == ebmlHeaderID
}
