package pcm_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/stillpine/needledrop/internal/pcm"
)

// rampDecoder emits frames of ascending sample values so tests can
// tell exactly which samples survived trimming.
type rampDecoder struct {
	samplesPerFrame int
	err             error
	closed          int
}

func (d *rampDecoder) Decode(frame []byte, out []float32) (int, error) {
	if d.err != nil {
		return 0, d.err
	}
	for i := 0; i < d.samplesPerFrame; i++ {
		out[i] = float32(i)
	}
	return d.samplesPerFrame, nil
}

func (d *rampDecoder) Close() error {
	d.closed++
	return nil
}

func TestAssemblerTrimsLeadingDelay(t *testing.T) {
	dec := &rampDecoder{samplesPerFrame: 960}
	asm := pcm.NewAssembler(40, dec)
	defer asm.Close()

	asm.DiscardLeading(120)
	if err := asm.SubmitFrame([]byte{0xFC}); err != nil {
		t.Fatalf("SubmitFrame returned error: %v", err)
	}

	want := make([]float32, 840)
	for i := range want {
		want[i] = float32(i + 120)
	}
	if diff := cmp.Diff(want, asm.Finalize()); diff != "" {
		t.Errorf("Finalize mismatch (-want +got):\n%s", diff)
	}
}

func TestAssemblerLeadingDelaySpansFrames(t *testing.T) {
	dec := &rampDecoder{samplesPerFrame: 960}
	asm := pcm.NewAssembler(40, dec)
	defer asm.Close()

	asm.DiscardLeading(1000)
	for i := 0; i < 2; i++ {
		if err := asm.SubmitFrame([]byte{0xFC}); err != nil {
			t.Fatalf("SubmitFrame %d returned error: %v", i, err)
		}
	}

	got := asm.Finalize()
	if len(got) != 920 {
		t.Fatalf("Finalize returned %d samples, want 920", len(got))
	}
	if got[0] != 40 {
		t.Errorf("first surviving sample = %v, want 40", got[0])
	}
}

func TestAssemblerTrailingDiscard(t *testing.T) {
	dec := &rampDecoder{samplesPerFrame: 960}
	asm := pcm.NewAssembler(40, dec)
	defer asm.Close()

	if err := asm.SubmitFrame([]byte{0xFC}); err != nil {
		t.Fatalf("SubmitFrame returned error: %v", err)
	}
	asm.DiscardTrailing(100)

	if got := asm.Finalize(); len(got) != 860 {
		t.Errorf("Finalize returned %d samples, want 860", len(got))
	}
}

func TestAssemblerTrailingDiscardBelowZero(t *testing.T) {
	asm := pcm.NewAssembler(40, &rampDecoder{samplesPerFrame: 960})
	defer asm.Close()

	asm.DiscardTrailing(50)

	if got := asm.Finalize(); len(got) != 0 {
		t.Errorf("Finalize returned %d samples, want 0", len(got))
	}
}

func TestAssemblerOverflow(t *testing.T) {
	dec := &rampDecoder{samplesPerFrame: 960}
	// A zero-millisecond duration leaves only the 120ms headroom,
	// which fits exactly six 960-sample frames.
	asm := pcm.NewAssembler(0, dec)
	defer asm.Close()

	for i := 0; i < 6; i++ {
		if err := asm.SubmitFrame([]byte{0xFC}); err != nil {
			t.Fatalf("SubmitFrame %d returned error: %v", i, err)
		}
	}
	if err := asm.SubmitFrame([]byte{0xFC}); !errors.Is(err, pcm.ErrBufferOverflow) {
		t.Errorf("SubmitFrame error = %v, want ErrBufferOverflow", err)
	}

	got := asm.Finalize()
	if len(got) != 5760 {
		t.Fatalf("Finalize returned %d samples after overflow, want 5760", len(got))
	}
	if got[len(got)-1] != 959 {
		t.Errorf("last written sample = %v, want 959", got[len(got)-1])
	}
}

func TestAssemblerDecodeError(t *testing.T) {
	wantErr := errors.New("bad frame")
	asm := pcm.NewAssembler(40, &rampDecoder{err: wantErr})
	defer asm.Close()

	if err := asm.SubmitFrame([]byte{0xFC}); !errors.Is(err, wantErr) {
		t.Errorf("SubmitFrame error = %v, want %v", err, wantErr)
	}
}

func TestAssemblerCloseReleasesDecoder(t *testing.T) {
	dec := &rampDecoder{samplesPerFrame: 960}
	asm := pcm.NewAssembler(40, dec)

	if err := asm.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if err := asm.Close(); err != nil {
		t.Fatalf("second Close returned error: %v", err)
	}
	if dec.closed != 1 {
		t.Errorf("decoder closed %d times, want 1", dec.closed)
	}
}

func TestBytesSamplesRoundTrip(t *testing.T) {
	samples := []float32{0, -1, 0.5, 12345.678}

	got, err := pcm.Samples(pcm.Bytes(samples))
	if err != nil {
		t.Fatalf("Samples returned error: %v", err)
	}
	if diff := cmp.Diff(samples, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestSamplesRejectsRaggedInput(t *testing.T) {
	if _, err := pcm.Samples(make([]byte, 7)); err == nil {
		t.Error("Samples accepted a 7-byte input, want error")
	}
}
