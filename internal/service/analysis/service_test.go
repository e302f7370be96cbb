package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"verdict-service/internal/models"
	"verdict-service/internal/verdicterr"
)

// fakeCompleter implements Completer with a fixed outcome.
type fakeCompleter struct {
	text    string
	chunks  int
	err     error
	calls   int
	lastSys string
	lastTmp float64
}

func (f *fakeCompleter) StreamCompletion(ctx context.Context, systemPrompt, userPrompt string, temperature float64) (string, int, error) {
	f.calls++
	f.lastSys = systemPrompt
	f.lastTmp = temperature
	return f.text, f.chunks, f.err
}

func TestTemperatureFor(t *testing.T) {
	if got := TemperatureFor(models.ModeCounselor); got != 0.7 {
		t.Errorf("counselor temperature = %v, want 0.7", got)
	}
	for _, mode := range []models.Mode{models.ModeJudge, models.ModeDinner, models.ModeEntertainment} {
		if got := TemperatureFor(mode); got != 0.3 {
			t.Errorf("%s temperature = %v, want 0.3", mode, got)
		}
	}
}

func TestAnalyze_WrapsResultWithTimestamp(t *testing.T) {
	s := NewService(&fakeCompleter{text: "VERDICT: go Thai", chunks: 4})
	s.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }

	serialized, err := s.Analyze(context.Background(), "sys", "user", 0.3)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	var result models.AnalysisResult
	if err := json.Unmarshal([]byte(serialized), &result); err != nil {
		t.Fatalf("result is not valid JSON: %v", err)
	}
	if result.Verdict != "VERDICT: go Thai" {
		t.Errorf("verdict = %q", result.Verdict)
	}
	if result.Timestamp != "2025-06-01T12:00:00Z" {
		t.Errorf("timestamp = %q, want RFC3339 of the fixed clock", result.Timestamp)
	}
}

func TestAnalyze_EmptyStreamIsFailure(t *testing.T) {
	s := NewService(&fakeCompleter{text: "", chunks: 0})

	_, err := s.Analyze(context.Background(), "sys", "user", 0.3)
	if err == nil {
		t.Fatal("expected failure for an empty stream")
	}
	if !IsEmptyResponse(err) {
		t.Errorf("expected empty-response class, got %v", err)
	}
	if !errors.Is(err, verdicterr.ErrAnalysisFailed) {
		t.Errorf("empty response should still be an analysis failure, got %v", err)
	}
}

func TestAnalyze_StreamErrorFoldedToGeneric(t *testing.T) {
	cause := errors.New("socket reset by pod eviction")
	s := NewService(&fakeCompleter{err: cause})

	_, err := s.Analyze(context.Background(), "sys", "user", 0.3)
	if !errors.Is(err, verdicterr.ErrAnalysisFailed) {
		t.Fatalf("expected analysis-failed, got %v", err)
	}
	// The original cause is logged, not exposed.
	if errors.Is(err, cause) {
		t.Error("underlying cause should not be wrapped into the boundary error")
	}
}

func TestAnalyzeWithCallback_InvokedOnceOnSuccess(t *testing.T) {
	s := NewService(&fakeCompleter{text: "verdict", chunks: 1})

	calls := 0
	var got string
	serialized, err := s.AnalyzeWithCallback(context.Background(), "sys", "user", 0.3, func(res string) error {
		calls++
		got = res
		return nil
	})
	if err != nil {
		t.Fatalf("AnalyzeWithCallback: %v", err)
	}
	if calls != 1 {
		t.Errorf("callback called %d times, want 1", calls)
	}
	if got != serialized {
		t.Error("callback should receive the serialized result")
	}
}

func TestAnalyzeWithCallback_NotInvokedOnFailure(t *testing.T) {
	s := NewService(&fakeCompleter{text: ""})

	calls := 0
	_, err := s.AnalyzeWithCallback(context.Background(), "sys", "user", 0.3, func(string) error {
		calls++
		return nil
	})
	if err == nil {
		t.Fatal("expected failure")
	}
	if calls != 0 {
		t.Errorf("callback called %d times on failure, want 0", calls)
	}
}

func TestAnalyzeWithCallback_CallbackErrorPropagates(t *testing.T) {
	s := NewService(&fakeCompleter{text: "verdict", chunks: 1})

	want := errors.New("store unavailable")
	_, err := s.AnalyzeWithCallback(context.Background(), "sys", "user", 0.3, func(string) error {
		return want
	})
	if !errors.Is(err, want) {
		t.Fatalf("callback error should propagate uncaught, got %v", err)
	}
}
