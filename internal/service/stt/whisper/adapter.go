// Package whisper provides a Whisper-compatible HTTP transcription adapter.
// It submits audio as multipart form data to an OpenAI-style
// /audio/transcriptions endpoint.
package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"verdict-service/internal/models"
	"verdict-service/internal/verdicterr"
)

// Config holds whisper adapter configuration.
type Config struct {
	Endpoint string
	APIKey   string
	Model    string
	Timeout  time.Duration
}

// Adapter implements stt.Transcriber against a Whisper-compatible endpoint.
type Adapter struct {
	endpoint   string
	apiKey     string
	model      string
	httpClient *http.Client
}

// New creates a new whisper adapter.
func New(cfg Config) (*Adapter, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: whisper API key is not set", verdicterr.ErrConfiguration)
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 2 * time.Minute
	}
	model := cfg.Model
	if model == "" {
		model = "whisper-1"
	}
	return &Adapter{
		endpoint:   cfg.Endpoint,
		apiKey:     cfg.APIKey,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Provider returns the provider name.
func (a *Adapter) Provider() string { return "whisper" }

// verboseResponse mirrors the endpoint's verbose_json response shape.
type verboseResponse struct {
	Text     string `json:"text"`
	Segments []struct {
		Text  string   `json:"text"`
		Start *float64 `json:"start"`
		End   *float64 `json:"end"`
	} `json:"segments"`
	Words []struct {
		Word  string   `json:"word"`
		Start *float64 `json:"start"`
		End   *float64 `json:"end"`
	} `json:"words"`
}

// Transcribe uploads the audio file and parses the transcript.
func (a *Adapter) Transcribe(ctx context.Context, path string) (*models.TranscriptionResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open audio file: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("copy audio into form: %w", err)
	}
	if err := mw.WriteField("model", a.model); err != nil {
		return nil, fmt.Errorf("write model field: %w", err)
	}
	if err := mw.WriteField("response_format", "verbose_json"); err != nil {
		return nil, fmt.Errorf("write response_format field: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, &body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+a.apiKey)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", verdicterr.ErrUpstreamTransient, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", verdicterr.ErrUpstreamTransient, err)
	}

	if resp.StatusCode != http.StatusOK {
		if isQuotaFailure(resp.StatusCode, respBody) {
			return nil, fmt.Errorf("%w: %s", verdicterr.ErrQuotaExceeded, strings.TrimSpace(string(respBody)))
		}
		return nil, fmt.Errorf("%w: status %d: %s", verdicterr.ErrUpstreamTransient, resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var parsed verboseResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", verdicterr.ErrUpstreamTransient, err)
	}

	result := &models.TranscriptionResult{
		Text:     strings.TrimSpace(parsed.Text),
		Segments: make([]models.TranscriptSegment, 0, len(parsed.Segments)),
	}
	for _, s := range parsed.Segments {
		result.Segments = append(result.Segments, models.TranscriptSegment{
			Text:  strings.TrimSpace(s.Text),
			Start: s.Start,
			End:   s.End,
		})
	}
	for _, w := range parsed.Words {
		result.Words = append(result.Words, models.TranscriptWord{
			Word:  w.Word,
			Start: w.Start,
			End:   w.End,
		})
	}
	return result, nil
}

// isQuotaFailure distinguishes terminal quota exhaustion from rate limiting
// and other provider failures. 429 alone is retryable; an explicit quota
// signal in the body is not.
func isQuotaFailure(status int, body []byte) bool {
	if status != http.StatusTooManyRequests && status != http.StatusForbidden {
		return false
	}
	b := strings.ToLower(string(body))
	return strings.Contains(b, "insufficient_quota") || strings.Contains(b, "quota")
}
