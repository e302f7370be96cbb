package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"verdict-service/internal/logging"
	"verdict-service/internal/models"
	"verdict-service/internal/observability/metrics"
	"verdict-service/internal/verdicterr"
)

// Temperature policy: judgment-style modes get a lower temperature,
// mediation a higher one. Two-valued, not user-configurable.
const (
	judgmentTemperature  = 0.3
	mediationTemperature = 0.7
)

// TemperatureFor returns the sampling temperature for a mode.
func TemperatureFor(mode models.Mode) float64 {
	if mode == models.ModeCounselor {
		return mediationTemperature
	}
	return judgmentTemperature
}

// Completer is the streaming completion dependency of the Service.
type Completer interface {
	StreamCompletion(ctx context.Context, systemPrompt, userPrompt string, temperature float64) (string, int, error)
}

// Callback receives the serialized analysis result exactly once, after a
// successful accumulation. Its own failure is not caught here.
type Callback func(serialized string) error

// Service runs prompts against the text-generation endpoint.
type Service struct {
	completer Completer
	metrics   *metrics.Metrics
	now       func() time.Time
}

// NewService creates an analysis service.
func NewService(completer Completer) *Service {
	return &Service{
		completer: completer,
		metrics:   metrics.DefaultMetrics,
		now:       time.Now,
	}
}

// Analyze streams a completion for the prompt pair and returns the
// serialized AnalysisResult. Failures other than the empty-response case are
// folded into the generic analysis-failed error; the original cause is
// logged, not exposed.
func (s *Service) Analyze(ctx context.Context, systemPrompt, userPrompt string, temperature float64) (string, error) {
	logger := logging.WithComponent("analysis")
	start := s.now()

	fullText, chunks, err := s.completer.StreamCompletion(ctx, systemPrompt, userPrompt, temperature)
	if err != nil {
		logger.Error().Err(err).Msg("Completion stream failed")
		s.metrics.RecordAnalysisError("stream")
		return "", verdicterr.ErrAnalysisFailed
	}
	if fullText == "" {
		logger.Error().Msg("Completion stream yielded no content")
		s.metrics.RecordAnalysisError("empty_response")
		return "", fmt.Errorf("%w: %w", verdicterr.ErrAnalysisFailed, verdicterr.ErrEmptyResponse)
	}

	s.metrics.RecordAnalysis(chunks, s.now().Sub(start).Seconds())

	result := models.AnalysisResult{
		Verdict:   fullText,
		Timestamp: s.now().UTC().Format(time.RFC3339),
	}
	serialized, err := json.Marshal(result)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to serialize analysis result")
		return "", verdicterr.ErrAnalysisFailed
	}

	logger.Info().
		Int("chunks", chunks).
		Int("verdictLen", len(fullText)).
		Msg("Analysis completed")
	return string(serialized), nil
}

// AnalyzeWithCallback runs Analyze and, on success, invokes cb once with
// the serialized result. Callback errors propagate to the caller.
func (s *Service) AnalyzeWithCallback(ctx context.Context, systemPrompt, userPrompt string, temperature float64, cb Callback) (string, error) {
	serialized, err := s.Analyze(ctx, systemPrompt, userPrompt, temperature)
	if err != nil {
		return "", err
	}
	if cb != nil {
		if err := cb(serialized); err != nil {
			return "", err
		}
	}
	return serialized, nil
}

// IsEmptyResponse reports whether err is the empty-response failure class.
func IsEmptyResponse(err error) bool {
	return errors.Is(err, verdicterr.ErrEmptyResponse)
}
