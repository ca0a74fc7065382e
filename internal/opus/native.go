//go:build darwin || linux

package opus

import (
	"fmt"
	"os"
	"runtime"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
)

var (
	libopusOnce sync.Once
	libopusErr  error

	opusDecoderCreate  func(sampleRate, channels int32, status uintptr) uintptr
	opusDecodeFloat    func(decoder, data uintptr, dataLen int32, pcm uintptr, frameSize, decodeFEC int32) int32
	opusDecoderDestroy func(decoder uintptr)
	opusStrerror       func(status int32) string
)

// loadLibopus resolves the shared library once per process. The handle is
// never closed; decoders come and go, the library stays resident.
func loadLibopus() error {
	libopusOnce.Do(func() {
		libopusErr = dlopenLibopus()
	})
	return libopusErr
}

func dlopenLibopus() error {
	var names []string
	if path := os.Getenv("LIBOPUS_PATH"); path != "" {
		names = append(names, path)
	}
	if runtime.GOOS == "darwin" {
		names = append(names,
			"libopus.dylib",
			"/usr/local/lib/libopus.dylib",
			"/opt/homebrew/lib/libopus.dylib",
		)
	} else {
		names = append(names, "libopus.so.0", "libopus.so")
	}

	var lastErr error
	for _, name := range names {
		handle, err := purego.Dlopen(name, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err != nil {
			lastErr = err
			continue
		}
		purego.RegisterLibFunc(&opusDecoderCreate, handle, "opus_decoder_create")
		purego.RegisterLibFunc(&opusDecodeFloat, handle, "opus_decode_float")
		purego.RegisterLibFunc(&opusDecoderDestroy, handle, "opus_decoder_destroy")
		purego.RegisterLibFunc(&opusStrerror, handle, "opus_strerror")
		return nil
	}
	return fmt.Errorf("failed to load libopus: %w", lastErr)
}

// NewNativeDecoder returns an engine backed by the system libopus.
func NewNativeDecoder(sampleRate, channels int) (Decoder, error) {
	if err := loadLibopus(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecoderFailure, err)
	}

	var status int32
	handle := opusDecoderCreate(int32(sampleRate), int32(channels), uintptr(unsafe.Pointer(&status)))
	if handle == 0 || status != 0 {
		return nil, fmt.Errorf("%w: opus_decoder_create: %s", ErrDecoderFailure, opusStrerror(status))
	}
	return &nativeDecoder{handle: handle}, nil
}

type nativeDecoder struct {
	handle uintptr
}

func (d *nativeDecoder) Decode(frame []byte, pcm []float32) (int, error) {
	if d.handle == 0 {
		return 0, fmt.Errorf("%w: decoder is closed", ErrDecoderFailure)
	}
	if len(pcm) == 0 {
		return 0, fmt.Errorf("%w: empty output buffer", ErrDecoderFailure)
	}

	// A nil data pointer asks libopus for packet loss concealment, the same
	// behavior libopus applies to lost frames.
	var data uintptr
	if len(frame) > 0 {
		data = uintptr(unsafe.Pointer(&frame[0]))
	}

	n := opusDecodeFloat(d.handle, data, int32(len(frame)), uintptr(unsafe.Pointer(&pcm[0])), int32(len(pcm)), 0)
	if n <= 0 {
		return 0, fmt.Errorf("%w: opus_decode_float: %s", ErrDecoderFailure, opusStrerror(n))
	}
	return int(n), nil
}

func (d *nativeDecoder) Close() error {
	if d.handle != 0 {
		opusDecoderDestroy(d.handle)
		d.handle = 0
	}
	return nil
}

var _ Decoder = (*nativeDecoder)(nil)
