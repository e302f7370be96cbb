// Package audio provides the transcription pipeline: it turns a base64
// audio payload into a serialized transcription result by decoding to a
// temporary file, re-encoding to canonical PCM, gating on duration, and
// uploading to the configured STT provider with bounded retry.
package audio

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"verdict-service/internal/logging"
	"verdict-service/internal/models"
	"verdict-service/internal/observability/metrics"
	"verdict-service/internal/service/retry"
	"verdict-service/internal/service/stt"
	"verdict-service/internal/verdicterr"
)

// Config holds pipeline settings.
type Config struct {
	MinDuration time.Duration
	MaxAttempts int
	BaseDelay   time.Duration
}

// DefaultConfig returns sensible pipeline defaults.
func DefaultConfig() Config {
	return Config{
		MinDuration: 100 * time.Millisecond,
		MaxAttempts: 3,
		BaseDelay:   time.Second,
	}
}

// Pipeline runs the transcription steps for one audio payload at a time.
// Both temp files it creates are removed on every exit path.
type Pipeline struct {
	transcriber stt.Transcriber
	transcoder  Transcoder
	cfg         Config
	metrics     *metrics.Metrics
}

// NewPipeline creates a transcription pipeline.
func NewPipeline(transcriber stt.Transcriber, transcoder Transcoder, cfg Config) *Pipeline {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &Pipeline{
		transcriber: transcriber,
		transcoder:  transcoder,
		cfg:         cfg,
		metrics:     metrics.DefaultMetrics,
	}
}

// Transcribe converts a base64 audio payload into a JSON-serialized
// TranscriptionResult.
func (p *Pipeline) Transcribe(ctx context.Context, audioBase64 string) (string, error) {
	logger := logging.WithProvider(p.transcriber.Provider())
	start := time.Now()

	result, err := p.run(ctx, audioBase64)
	p.metrics.RecordTranscription(p.transcriber.Provider(), err, time.Since(start).Seconds())
	if err != nil {
		logger.Error().Err(err).Msg("Transcription failed")
		return "", err
	}

	serialized, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("serialize transcription result: %w", err)
	}

	logger.Info().
		Int("segments", len(result.Segments)).
		Int("textLen", len(result.Text)).
		Dur("duration", time.Since(start)).
		Msg("Transcription completed")
	return string(serialized), nil
}

func (p *Pipeline) run(ctx context.Context, audioBase64 string) (result *models.TranscriptionResult, err error) {
	if audioBase64 == "" {
		return nil, verdicterr.ErrEmptyInput
	}

	decoded, err := base64.StdEncoding.DecodeString(audioBase64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64 audio: %v", verdicterr.ErrInvalidInput, err)
	}
	if len(decoded) == 0 {
		return nil, verdicterr.ErrEmptyAudio
	}
	p.metrics.RecordAudioDecoded(len(decoded))

	rawFile, err := os.CreateTemp("", "verdict-raw-*.audio")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(rawFile.Name())

	if _, err := rawFile.Write(decoded); err != nil {
		rawFile.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := rawFile.Close(); err != nil {
		return nil, fmt.Errorf("close temp file: %w", err)
	}

	wavFile, err := os.CreateTemp("", "verdict-pcm-*.wav")
	if err != nil {
		return nil, fmt.Errorf("create temp wav file: %w", err)
	}
	wavPath := wavFile.Name()
	wavFile.Close()
	defer os.Remove(wavPath)

	if err := p.transcoder.ToPCM(ctx, rawFile.Name(), wavPath); err != nil {
		return nil, err
	}

	duration, err := p.transcoder.Duration(ctx, wavPath)
	if err != nil {
		return nil, err
	}
	if duration < p.cfg.MinDuration {
		return nil, fmt.Errorf("%w: %v is under the %v minimum", verdicterr.ErrTooShort, duration, p.cfg.MinDuration)
	}

	policy := retry.Policy{
		MaxAttempts: p.cfg.MaxAttempts,
		BaseDelay:   p.cfg.BaseDelay,
		IsRetryable: verdicterr.Retryable,
		OnRetry: func(attempt int, err error) {
			p.metrics.RecordTranscriptionRetry()
			logger := logging.WithProvider(p.transcriber.Provider())
			logger.Warn().
				Err(err).
				Int("attempt", attempt).
				Msg("Retrying transcription upload")
		},
	}

	err = policy.Do(ctx, func(ctx context.Context) error {
		r, uploadErr := p.transcriber.Transcribe(ctx, wavPath)
		if uploadErr != nil {
			return uploadErr
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
