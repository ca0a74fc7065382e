// Package wav renders decoded samples as 16-bit PCM WAV, the artifact
// format most audio tools can open directly.
package wav

import (
	"fmt"
	"io"

	"github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
)

// seekBuffer is an in-memory io.WriteSeeker. The wav encoder needs to
// seek back and patch the RIFF header once the data length is known.
type seekBuffer struct {
	buf []byte
	pos int
}

func (b *seekBuffer) Write(p []byte) (int, error) {
	if grow := b.pos + len(p) - len(b.buf); grow > 0 {
		b.buf = append(b.buf, make([]byte, grow)...)
	}
	copy(b.buf[b.pos:], p)
	b.pos += len(p)
	return len(p), nil
}

func (b *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	var pos int64
	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = int64(b.pos) + offset
	case io.SeekEnd:
		pos = int64(len(b.buf)) + offset
	default:
		return 0, fmt.Errorf("unknown whence %d", whence)
	}
	if pos < 0 {
		return 0, fmt.Errorf("negative seek position %d", pos)
	}
	b.pos = int(pos)
	return pos, nil
}

// EncodeTo renders mono float32 samples as a 16-bit PCM WAV stream,
// clipping anything outside the [-1, 1] range. The writer must seek so
// the RIFF header can be patched with the final data length.
func EncodeTo(w io.WriteSeeker, samples []float32, sampleRate int) error {
	enc := gowav.NewEncoder(w, sampleRate, 16, 1, 1)

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		SourceBitDepth: 16,
		Data:           make([]int, len(samples)),
	}
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		buf.Data[i] = int(s * 32767)
	}

	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("writing wav data: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalizing wav header: %w", err)
	}
	return nil
}

// Encode is EncodeTo into a fresh in-memory buffer, for callers that
// upload the artifact instead of writing a file.
func Encode(samples []float32, sampleRate int) ([]byte, error) {
	var out seekBuffer
	if err := EncodeTo(&out, samples, sampleRate); err != nil {
		return nil, err
	}
	return out.buf, nil
}
