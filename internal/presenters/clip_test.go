package presenters_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stillpine/needledrop/internal/presenters"
	"github.com/stillpine/needledrop/internal/repository"
)

func TestFormatClip(t *testing.T) {
	tests := []struct {
		name  string
		input repository.Clip
		want  string
	}{
		{
			name: "decoded clip",
			input: repository.Clip{
				ID:          "clip-1",
				ObjectKey:   "ingest/a.webm",
				Status:      repository.StatusDecoded,
				SampleCount: 40320,
				PCMKey:      "pcm/clip-1.f32le",
				WAVKey:      "wav/clip-1.wav",
				CreatedAt:   time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC),
			},
			want: "ID:        clip-1\n" +
				"Object:    ingest/a.webm\n" +
				"Status:    decoded\n" +
				"Samples:   40320 (0.84s)\n" +
				"PCM:       pcm/clip-1.f32le\n" +
				"WAV:       wav/clip-1.wav\n" +
				"Created:   2025-03-14T09:30:00Z",
		},
		{
			name: "failed clip",
			input: repository.Clip{
				ID:        "clip-2",
				ObjectKey: "ingest/b.webm",
				Status:    repository.StatusFailed,
				Failure:   "block lacing is not supported",
				CreatedAt: time.Date(2025, 3, 14, 9, 31, 0, 0, time.UTC),
			},
			want: "ID:        clip-2\n" +
				"Object:    ingest/b.webm\n" +
				"Status:    failed\n" +
				"Samples:   0 (0.00s)\n" +
				"Failure:   block lacing is not supported\n" +
				"Created:   2025-03-14T09:31:00Z",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := presenters.FormatClip(tt.input)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("FormatClip() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFormatReport(t *testing.T) {
	got := presenters.FormatReport("webm", 840, 3360, 1724)
	want := "Container: webm\n" +
		"Samples:   840 (0.02s)\n" +
		"PCM:       3360 bytes\n" +
		"WAV:       1724 bytes"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FormatReport() mismatch (-want +got):\n%s", diff)
	}
}

func TestFormatClipList(t *testing.T) {
	tests := []struct {
		name  string
		input []repository.Clip
		want  string
	}{
		{
			name:  "no clips",
			input: nil,
			want:  "No clips found",
		},
		{
			name: "aligned columns",
			input: []repository.Clip{
				{ID: "clip-1", ObjectKey: "ingest/a.webm", Status: repository.StatusDecoded, SampleCount: 40320},
				{ID: "clip-2", ObjectKey: "ingest/b.webm", Status: repository.StatusFailed},
			},
			want: "ID      STATUS   LENGTH  OBJECT\n" +
				"clip-1  decoded  0.84s   ingest/a.webm\n" +
				"clip-2  failed   0.00s   ingest/b.webm",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := presenters.FormatClipList(tt.input)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("FormatClipList() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
