// Package mock provides a mock STT adapter for running the service without
// cloud credentials. It returns canned transcripts in round-robin order.
package mock

import (
	"context"
	"sync"

	"verdict-service/internal/models"
)

// DefaultStatements provides sample transcripts for simulation.
var DefaultStatements = []string{
	"I like Italian food and I think we should go to the place on Fifth",
	"I prefer Thai food because we had Italian twice last week",
	"You never listen when I explain why the dishes pile up",
	"I do listen I just need you to say it before nine at night",
}

// Adapter implements stt.Transcriber with canned responses.
type Adapter struct {
	mu         sync.Mutex
	statements []string
	next       int

	// Err, when set, is returned from every Transcribe call.
	Err error
}

// New creates a mock adapter using DefaultStatements.
func New() *Adapter {
	return &Adapter{statements: DefaultStatements}
}

// NewWithStatements creates a mock adapter with custom transcripts.
func NewWithStatements(statements []string) *Adapter {
	return &Adapter{statements: statements}
}

// Provider returns the provider name.
func (a *Adapter) Provider() string { return "mock" }

// Transcribe returns the next canned transcript as a single full-length
// segment.
func (a *Adapter) Transcribe(ctx context.Context, path string) (*models.TranscriptionResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.Err != nil {
		return nil, a.Err
	}
	if len(a.statements) == 0 {
		return &models.TranscriptionResult{Segments: []models.TranscriptSegment{}}, nil
	}

	text := a.statements[a.next%len(a.statements)]
	a.next++

	start := 0.0
	end := float64(len(text)) / 15.0 // rough speaking pace
	return &models.TranscriptionResult{
		Text: text,
		Segments: []models.TranscriptSegment{
			{Text: text, Start: &start, End: &end},
		},
	}, nil
}
