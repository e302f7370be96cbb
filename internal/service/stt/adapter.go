// Package stt defines the interface for Speech-to-Text adapters.
package stt

import (
	"context"

	"verdict-service/internal/models"
)

// Transcriber converts a prepared audio file (16kHz mono PCM WAV) into a
// transcription result.
//
// Implementations classify failures into the verdicterr categories: quota
// exhaustion must surface as verdicterr.ErrQuotaExceeded (terminal, never
// retried) and other provider failures as verdicterr.ErrUpstreamTransient.
type Transcriber interface {
	// Transcribe submits the audio file at path and returns the result.
	Transcribe(ctx context.Context, path string) (*models.TranscriptionResult, error)

	// Provider returns a short provider name for logs and metrics.
	Provider() string
}
