package worker_test

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stillpine/needledrop/internal/datalayer"
	"github.com/stillpine/needledrop/internal/opus"
	"github.com/stillpine/needledrop/internal/webm"
	"github.com/stillpine/needledrop/internal/worker"
)

// elem serializes one element from its raw ID bytes.
func elem(id []byte, parts ...[]byte) []byte {
	var body []byte
	for _, p := range parts {
		body = append(body, p...)
	}
	out := append(append([]byte{}, id...), sizeBytes(len(body))...)
	return append(out, body...)
}

func sizeBytes(n int) []byte {
	if n < 0x7F {
		return []byte{0x80 | byte(n)}
	}
	return []byte{0x40 | byte(n>>8), byte(n)}
}

// buildWebM assembles a minimal container: the EBML header, a duration,
// an Opus track, and one block per frame requested.
func buildWebM(durationMs float64, blockFlags byte, frames int) []byte {
	dur := make([]byte, 8)
	binary.BigEndian.PutUint64(dur, math.Float64bits(durationMs))

	var cluster []byte
	for range frames {
		block := elem([]byte{0xA3}, []byte{0x81, 0x00, 0x00, blockFlags}, []byte{0xFC})
		cluster = append(cluster, block...)
	}

	header := elem([]byte{0x1A, 0x45, 0xDF, 0xA3})
	segment := elem([]byte{0x18, 0x53, 0x80, 0x67},
		elem([]byte{0x15, 0x49, 0xA9, 0x66}, elem([]byte{0x44, 0x89}, dur)),
		elem([]byte{0x16, 0x54, 0xAE, 0x6B}, elem([]byte{0xAE},
			elem([]byte{0x86}, []byte("A_OPUS")))),
		elem([]byte{0x1F, 0x43, 0xB6, 0x75}, cluster),
	)
	return append(header, segment...)
}

type rampDecoder struct {
	samplesPerFrame int
}

func (d *rampDecoder) Decode(frame []byte, out []float32) (int, error) {
	for i := 0; i < d.samplesPerFrame; i++ {
		out[i] = float32(i)
	}
	return d.samplesPerFrame, nil
}

func (d *rampDecoder) Close() error { return nil }

func rampFactory(sampleRate, channels int) (opus.Decoder, error) {
	return &rampDecoder{samplesPerFrame: 960}, nil
}

type fakeRecorder struct {
	decodedID   string
	sampleCount int64
	pcmKey      string
	wavKey      string
	failedID    string
	failReason  string
}

func (r *fakeRecorder) MarkDecoded(ctx context.Context, id string, sampleCount int64, pcmKey, wavKey string) error {
	r.decodedID = id
	r.sampleCount = sampleCount
	r.pcmKey = pcmKey
	r.wavKey = wavKey
	return nil
}

func (r *fakeRecorder) MarkFailed(ctx context.Context, id, reason string) error {
	r.failedID = id
	r.failReason = reason
	return nil
}

func TestPipelineProcess(t *testing.T) {
	ctx := context.Background()
	storage := datalayer.NewMemoryBlobStorage()
	clip := buildWebM(40, 0x00, 1)
	err := storage.Put(ctx, "ingest/talk.webm", bytes.NewReader(clip), datalayer.PutOptions{Size: int64(len(clip))})
	if err != nil {
		t.Fatalf("seeding storage: %v", err)
	}

	recorder := &fakeRecorder{}
	quarantine := worker.NewMemoryQuarantine()
	pipeline := &worker.Pipeline{
		Storage:    storage,
		Recorder:   recorder,
		Quarantine: quarantine,
		NewDecoder: rampFactory,
	}

	job := worker.DecodeJob{ClipID: "clip-1", ObjectKey: "ingest/talk.webm"}
	if err := pipeline.Process(ctx, job); err != nil {
		t.Fatalf("Process returned error: %v", err)
	}

	if recorder.decodedID != "clip-1" || recorder.sampleCount != 960 {
		t.Errorf("recorded decode = (%q, %d), want (clip-1, 960)", recorder.decodedID, recorder.sampleCount)
	}
	if recorder.pcmKey != "pcm/clip-1.f32le" || recorder.wavKey != "wav/clip-1.wav" {
		t.Errorf("artifact keys = (%q, %q)", recorder.pcmKey, recorder.wavKey)
	}

	raw, err := storage.Get(ctx, "pcm/clip-1.f32le")
	if err != nil {
		t.Fatalf("pcm artifact missing: %v", err)
	}
	if len(raw) != 960*4 {
		t.Errorf("pcm artifact is %d bytes, want %d", len(raw), 960*4)
	}

	wavData, err := storage.Get(ctx, "wav/clip-1.wav")
	if err != nil {
		t.Fatalf("wav artifact missing: %v", err)
	}
	if len(wavData) == 0 {
		t.Error("wav artifact is empty")
	}

	quarantined, err := quarantine.Contains(ctx, "ingest/talk.webm")
	if err != nil {
		t.Fatalf("Contains returned error: %v", err)
	}
	if quarantined {
		t.Error("healthy clip ended up in quarantine")
	}
}

func TestPipelineProcessQuarantinesDecodeFaults(t *testing.T) {
	tests := []struct {
		name       string
		object     []byte
		wantReason string
	}{
		{
			name:       "laced block",
			object:     buildWebM(40, 0x06, 1),
			wantReason: "lacing",
		},
		{
			name:       "unknown container",
			object:     []byte("ID3\x04 this is no opus stream"),
			wantReason: "unknown audio container",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			storage := datalayer.NewMemoryBlobStorage()
			err := storage.Put(ctx, "ingest/bad.bin", bytes.NewReader(tt.object), datalayer.PutOptions{Size: int64(len(tt.object))})
			if err != nil {
				t.Fatalf("seeding storage: %v", err)
			}

			recorder := &fakeRecorder{}
			quarantine := worker.NewMemoryQuarantine()
			pipeline := &worker.Pipeline{
				Storage:    storage,
				Recorder:   recorder,
				Quarantine: quarantine,
				NewDecoder: rampFactory,
			}

			job := worker.DecodeJob{ClipID: "clip-9", ObjectKey: "ingest/bad.bin"}
			if err := pipeline.Process(ctx, job); err != nil {
				t.Fatalf("Process returned error for a decode fault: %v", err)
			}

			if recorder.failedID != "clip-9" {
				t.Errorf("failed clip = %q, want clip-9", recorder.failedID)
			}
			if !strings.Contains(recorder.failReason, tt.wantReason) {
				t.Errorf("failure reason %q does not mention %q", recorder.failReason, tt.wantReason)
			}
			if recorder.decodedID != "" {
				t.Errorf("decode recorded for a failed clip: %q", recorder.decodedID)
			}

			quarantined, err := quarantine.Contains(ctx, "ingest/bad.bin")
			if err != nil {
				t.Fatalf("Contains returned error: %v", err)
			}
			if !quarantined {
				t.Error("failed clip was not quarantined")
			}
		})
	}
}

func TestPipelineProcessFetchErrorLeavesJobRetryable(t *testing.T) {
	ctx := context.Background()
	recorder := &fakeRecorder{}
	quarantine := worker.NewMemoryQuarantine()
	pipeline := &worker.Pipeline{
		Storage:    datalayer.NewMemoryBlobStorage(),
		Recorder:   recorder,
		Quarantine: quarantine,
		NewDecoder: rampFactory,
	}

	job := worker.DecodeJob{ClipID: "clip-1", ObjectKey: "ingest/gone.webm"}
	if err := pipeline.Process(ctx, job); err == nil {
		t.Fatal("Process succeeded with no object to fetch")
	}

	if recorder.failedID != "" {
		t.Errorf("fetch error marked the clip failed: %q", recorder.failedID)
	}
	quarantined, err := quarantine.Contains(ctx, "ingest/gone.webm")
	if err != nil {
		t.Fatalf("Contains returned error: %v", err)
	}
	if quarantined {
		t.Error("fetch error quarantined the object")
	}
}

func TestDecodeClipSniffsContainer(t *testing.T) {
	container, samples, err := worker.DecodeClip(buildWebM(40, 0x00, 1), rampFactory)
	if err != nil {
		t.Fatalf("DecodeClip returned error: %v", err)
	}
	if container != "webm" {
		t.Errorf("DecodeClip matched container %q, want webm", container)
	}
	if len(samples) != 960 {
		t.Errorf("DecodeClip returned %d samples, want 960", len(samples))
	}

	if _, _, err := worker.DecodeClip([]byte("neither container"), rampFactory); !errors.Is(err, worker.ErrUnknownContainer) {
		t.Errorf("DecodeClip error = %v, want ErrUnknownContainer", err)
	}
}

func TestDecodeClipPropagatesContainerFaults(t *testing.T) {
	_, _, err := worker.DecodeClip(buildWebM(40, 0x06, 1), rampFactory)
	if !errors.Is(err, webm.ErrLacingUnsupported) {
		t.Errorf("DecodeClip error = %v, want ErrLacingUnsupported", err)
	}
}
