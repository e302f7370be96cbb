package audio

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"verdict-service/internal/verdicterr"
)

// Transcoder re-encodes audio into the canonical upload format and probes
// its duration.
type Transcoder interface {
	// ToPCM re-encodes src into single-channel PCM WAV at dst.
	ToPCM(ctx context.Context, src, dst string) error

	// Duration reports the duration of the media file at path.
	Duration(ctx context.Context, path string) (time.Duration, error)
}

// FFmpegTranscoder drives the ffmpeg and ffprobe binaries.
type FFmpegTranscoder struct {
	ffmpegPath   string
	ffprobePath  string
	sampleRateHz int
}

// NewFFmpegTranscoder creates a transcoder using the given binary paths.
func NewFFmpegTranscoder(ffmpegPath, ffprobePath string, sampleRateHz int) *FFmpegTranscoder {
	return &FFmpegTranscoder{
		ffmpegPath:   ffmpegPath,
		ffprobePath:  ffprobePath,
		sampleRateHz: sampleRateHz,
	}
}

// ToPCM re-encodes src to 16-bit single-channel PCM WAV at the configured
// sample rate. A non-zero exit is an audio processing failure.
func (t *FFmpegTranscoder) ToPCM(ctx context.Context, src, dst string) error {
	cmd := exec.CommandContext(ctx, t.ffmpegPath,
		"-y",
		"-i", src,
		"-ar", strconv.Itoa(t.sampleRateHz),
		"-ac", "1",
		"-c:a", "pcm_s16le",
		dst,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: format conversion: %v: %s", verdicterr.ErrAudioProcessing, err, lastLine(stderr.String()))
	}
	return nil
}

// Duration probes the container duration via ffprobe.
func (t *FFmpegTranscoder) Duration(ctx context.Context, path string) (time.Duration, error) {
	cmd := exec.CommandContext(ctx, t.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("%w: duration probe: %v", verdicterr.ErrAudioProcessing, err)
	}

	seconds, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: duration probe returned %q", verdicterr.ErrAudioProcessing, strings.TrimSpace(string(out)))
	}
	return time.Duration(seconds * float64(time.Second)), nil
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) == 0 {
		return ""
	}
	return lines[len(lines)-1]
}
