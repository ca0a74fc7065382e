package presenters

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/stillpine/needledrop/internal/repository"
)

const noClipsFound = "No clips found"

// seconds renders a sample count as wall time at 48kHz.
func seconds(sampleCount int64) string {
	return fmt.Sprintf("%.2fs", float64(sampleCount)/48000.0)
}

// FormatClip renders a single clip for the probe command.
func FormatClip(c repository.Clip) string {
	var b strings.Builder
	fmt.Fprintf(&b, "ID:        %s\n", c.ID)
	fmt.Fprintf(&b, "Object:    %s\n", c.ObjectKey)
	fmt.Fprintf(&b, "Status:    %s\n", c.Status)
	fmt.Fprintf(&b, "Samples:   %d (%s)\n", c.SampleCount, seconds(c.SampleCount))
	if c.PCMKey != "" {
		fmt.Fprintf(&b, "PCM:       %s\n", c.PCMKey)
	}
	if c.WAVKey != "" {
		fmt.Fprintf(&b, "WAV:       %s\n", c.WAVKey)
	}
	if c.Failure != "" {
		fmt.Fprintf(&b, "Failure:   %s\n", c.Failure)
	}
	fmt.Fprintf(&b, "Created:   %s", c.CreatedAt.Format(time.RFC3339))
	return b.String()
}

// FormatReport renders the outcome of a local decode for the probe
// command.
func FormatReport(container string, sampleCount, pcmBytes, wavBytes int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Container: %s\n", container)
	fmt.Fprintf(&b, "Samples:   %d (%s)\n", sampleCount, seconds(int64(sampleCount)))
	fmt.Fprintf(&b, "PCM:       %d bytes\n", pcmBytes)
	fmt.Fprintf(&b, "WAV:       %d bytes", wavBytes)
	return b.String()
}

// FormatClipList renders clips as an aligned table for the list command.
func FormatClipList(clips []repository.Clip) string {
	if len(clips) == 0 {
		return noClipsFound
	}

	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tLENGTH\tOBJECT")
	for _, c := range clips {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.ID, c.Status, seconds(c.SampleCount), c.ObjectKey)
	}
	w.Flush()
	return strings.TrimRight(b.String(), "\n")
}
