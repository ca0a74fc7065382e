package worker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/stillpine/needledrop/internal/datalayer"
	"github.com/stillpine/needledrop/internal/oggopus"
	"github.com/stillpine/needledrop/internal/opus"
	"github.com/stillpine/needledrop/internal/pcm"
	"github.com/stillpine/needledrop/internal/util"
	"github.com/stillpine/needledrop/internal/wav"
	"github.com/stillpine/needledrop/internal/webm"
)

// ErrUnknownContainer is returned when an ingest object matches no
// supported audio container.
var ErrUnknownContainer = errors.New("unknown audio container")

// containerDecoder pairs a container sniffer with its decode entry
// point.
type containerDecoder struct {
	name   string
	match  func([]byte) bool
	decode func([]byte, opus.Factory) ([]float32, error)
}

var containerDecoders = []containerDecoder{
	{name: "webm", match: webm.Match, decode: webm.Decode},
	{name: "ogg", match: oggopus.Match, decode: oggopus.Decode},
}

// DecodeClip sniffs the container held in data and decodes its Opus
// track into 48kHz mono samples. It reports which container kind it
// matched alongside the samples.
func DecodeClip(data []byte, newDecoder opus.Factory) (string, []float32, error) {
	dec, ok := util.FindFirst(containerDecoders, func(d containerDecoder) bool {
		return d.match(data)
	})
	if !ok {
		return "", nil, ErrUnknownContainer
	}

	samples, err := dec.decode(data, newDecoder)
	if err != nil {
		return dec.name, nil, fmt.Errorf("decoding %s clip: %w", dec.name, err)
	}
	return dec.name, samples, nil
}

// ClipRecorder is the slice of the catalog the pipeline writes to.
type ClipRecorder interface {
	MarkDecoded(ctx context.Context, id string, sampleCount int64, pcmKey, wavKey string) error
	MarkFailed(ctx context.Context, id, reason string) error
}

// Pipeline turns one ingest object into decoded artifacts and records
// the outcome in the catalog.
type Pipeline struct {
	Storage    datalayer.BlobStorage
	Recorder   ClipRecorder
	Quarantine Quarantine
	NewDecoder opus.Factory
}

func pcmKeyFor(clipID string) string { return "pcm/" + clipID + ".f32le" }
func wavKeyFor(clipID string) string { return "wav/" + clipID + ".wav" }

// Process handles one decode job end to end. A decode fault
// quarantines the object and records the failure; only infrastructure
// errors come back to the caller, leaving the job unacked for
// redelivery.
func (p *Pipeline) Process(ctx context.Context, job DecodeJob) error {
	data, err := p.Storage.Get(ctx, job.ObjectKey)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", job.ObjectKey, err)
	}

	container, samples, err := DecodeClip(data, p.NewDecoder)
	if err != nil {
		return p.fail(ctx, job, err)
	}

	pcmKey := pcmKeyFor(job.ClipID)
	raw := pcm.Bytes(samples)
	err = p.Storage.Put(ctx, pcmKey, bytes.NewReader(raw), datalayer.PutOptions{
		Size:        int64(len(raw)),
		ContentType: "application/octet-stream",
	})
	if err != nil {
		return fmt.Errorf("storing pcm artifact: %w", err)
	}

	wavKey := wavKeyFor(job.ClipID)
	wavData, err := wav.Encode(samples, 48000)
	if err != nil {
		return fmt.Errorf("encoding wav artifact: %w", err)
	}
	err = p.Storage.Put(ctx, wavKey, bytes.NewReader(wavData), datalayer.PutOptions{
		Size:        int64(len(wavData)),
		ContentType: "audio/wav",
	})
	if err != nil {
		return fmt.Errorf("storing wav artifact: %w", err)
	}

	if err := p.Recorder.MarkDecoded(ctx, job.ClipID, int64(len(samples)), pcmKey, wavKey); err != nil {
		return fmt.Errorf("recording decode: %w", err)
	}

	slog.InfoContext(
		ctx,
		"Decoded clip",
		slog.String("clipID", job.ClipID),
		slog.String("container", container),
		slog.Int("samples", len(samples)),
	)
	return nil
}

// fail quarantines the object and records why its decode failed.
func (p *Pipeline) fail(ctx context.Context, job DecodeJob, cause error) error {
	slog.WarnContext(
		ctx,
		"Decode failed",
		slog.String("clipID", job.ClipID),
		slog.String("objectKey", job.ObjectKey),
		slog.Any("error", cause),
	)

	if err := p.Quarantine.Add(ctx, job.ObjectKey); err != nil {
		return fmt.Errorf("quarantining %s: %w", job.ObjectKey, err)
	}
	if err := p.Recorder.MarkFailed(ctx, job.ClipID, cause.Error()); err != nil {
		return fmt.Errorf("recording failure: %w", err)
	}
	return nil
}
