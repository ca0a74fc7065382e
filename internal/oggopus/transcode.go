package oggopus

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
)

// Transcode runs FFmpeg to turn any audio input into a mono 48kHz ogg
// opus stream suitable for Decode. FFmpeg must be on the PATH.
func Transcode(ctx context.Context, r io.Reader) ([]byte, error) {
	ffmpeg := exec.CommandContext(ctx, "ffmpeg",
		"-i", "pipe:0",
		"-vn",
		"-map", "0:a",
		"-acodec", "libopus",
		"-f", "ogg",
		"-vbr", "on",
		"-compression_level", "10",
		"-ar", "48000",
		"-ac", "1",
		"-b:a", "64000",
		"-application", "audio",
		"-frame_duration", "20",
		"-threads", "0",
		"pipe:1",
	)
	ffmpeg.Stdin = r

	var out, stderr bytes.Buffer
	ffmpeg.Stdout = &out
	ffmpeg.Stderr = &stderr

	if err := ffmpeg.Run(); err != nil {
		return nil, fmt.Errorf("running ffmpeg: %w: %s", err, stderr.String())
	}
	return out.Bytes(), nil
}
