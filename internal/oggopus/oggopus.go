// Package oggopus decodes ogg-encapsulated Opus audio into a trimmed
// 48kHz float32 sample buffer, mirroring what the webm package does
// for Matroska containers.
package oggopus

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/jonas747/ogg"

	"github.com/stillpine/needledrop/internal/opus"
	"github.com/stillpine/needledrop/internal/pcm"
)

var (
	// ErrNotOpus is returned when the stream does not open with a
	// valid OpusHead packet.
	ErrNotOpus = errors.New("ogg stream is not opus")

	// ErrChannelCount is returned for streams with more than one
	// channel.
	ErrChannelCount = errors.New("only mono opus streams are supported")

	// ErrBadPacket is returned for audio packets whose TOC byte
	// cannot be read.
	ErrBadPacket = errors.New("malformed opus packet")
)

var (
	capturePattern = []byte("OggS")
	headMagic      = []byte("OpusHead")
)

// Match reports whether data begins with an ogg page boundary.
func Match(data []byte) bool {
	return bytes.HasPrefix(data, capturePattern)
}

// Decode extracts and decodes the Opus packets of the ogg stream in
// data. The stream's preskip is trimmed off the front of the output,
// so the result lines up with the recorded audio.
func Decode(data []byte, newDecoder opus.Factory) (samples []float32, err error) {
	decoder := ogg.NewPacketDecoder(ogg.NewDecoder(bytes.NewReader(data)))

	head, _, err := decoder.Decode()
	if err != nil {
		return nil, fmt.Errorf("reading opus head: %w", err)
	}
	preSkip, err := parseHead(head)
	if err != nil {
		return nil, err
	}

	// OpusTags always follows the head and carries nothing we need.
	if _, _, err := decoder.Decode(); err != nil {
		return nil, fmt.Errorf("reading opus tags: %w", err)
	}

	// Tally the packet durations first so the buffer can be sized
	// before any decoding starts.
	var packets [][]byte
	total := 0
	for {
		packet, _, err := decoder.Decode()
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading audio packet: %w", err)
		}
		n, err := packetSamples(packet)
		if err != nil {
			return nil, err
		}
		total += n
		packets = append(packets, packet)
	}

	dec, err := newDecoder(48000, 1)
	if err != nil {
		return nil, err
	}
	asm := pcm.NewAssembler(float64(total)/48.0, dec)
	defer func() {
		err = errors.Join(err, asm.Close())
	}()

	asm.DiscardLeading(preSkip)
	for _, packet := range packets {
		if err := asm.SubmitFrame(packet); err != nil {
			return nil, err
		}
	}
	return asm.Finalize(), nil
}

// parseHead validates an OpusHead packet and returns its preskip in
// 48kHz samples.
func parseHead(packet []byte) (int, error) {
	if len(packet) < 19 || !bytes.Equal(packet[:8], headMagic) {
		return 0, fmt.Errorf("%w: no opus head", ErrNotOpus)
	}
	if v := packet[8]; v != 1 {
		return 0, fmt.Errorf("%w: head version %d", ErrNotOpus, v)
	}
	if ch := packet[9]; ch != 1 {
		return 0, fmt.Errorf("%w: stream has %d channels", ErrChannelCount, ch)
	}
	return int(binary.LittleEndian.Uint16(packet[10:12])), nil
}
