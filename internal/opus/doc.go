// Package opus decodes compressed Opus frames into 48kHz float32 PCM.
//
// Two engines implement the Decoder interface: a pure Go engine backed by
// github.com/thesyncim/gopus (the default, no system dependencies), and a
// native engine that loads the system libopus at runtime through purego.
// Both decode one frame per call into a caller-provided sample buffer and
// report the number of samples produced.
package opus
