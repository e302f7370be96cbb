// Package google provides a Google Cloud Speech-to-Text adapter.
package google

import (
	"context"
	"fmt"
	"os"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	speechpb "google.golang.org/genproto/googleapis/cloud/speech/v1"

	"verdict-service/internal/models"
	"verdict-service/internal/verdicterr"
)

// Adapter implements stt.Transcriber using Google Cloud Speech-to-Text
// batch recognition.
type Adapter struct {
	client       *speech.Client
	languageCode string
	sampleRateHz int32
}

// New creates a new Google STT adapter.
// Requires GOOGLE_APPLICATION_CREDENTIALS environment variable to be set.
func New(ctx context.Context, languageCode string, sampleRateHz int) (*Adapter, error) {
	c, err := speech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create speech client: %v", verdicterr.ErrConfiguration, err)
	}
	return &Adapter{
		client:       c,
		languageCode: languageCode,
		sampleRateHz: int32(sampleRateHz),
	}, nil
}

// Provider returns the provider name.
func (a *Adapter) Provider() string { return "google" }

// Transcribe runs batch recognition on the audio file and maps the response
// into a TranscriptionResult. Each recognition result becomes one segment.
func (a *Adapter) Transcribe(ctx context.Context, path string) (*models.TranscriptionResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read audio file: %w", err)
	}

	resp, err := a.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:              speechpb.RecognitionConfig_LINEAR16,
			SampleRateHertz:       a.sampleRateHz,
			LanguageCode:          a.languageCode,
			EnableWordTimeOffsets: true,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: data},
		},
	})
	if err != nil {
		return nil, classify(err)
	}

	result := &models.TranscriptionResult{
		Segments: make([]models.TranscriptSegment, 0, len(resp.Results)),
	}
	var parts []string
	for _, r := range resp.Results {
		if len(r.Alternatives) == 0 {
			continue
		}
		alt := r.Alternatives[0]
		parts = append(parts, alt.Transcript)

		seg := models.TranscriptSegment{Text: strings.TrimSpace(alt.Transcript)}
		if len(alt.Words) > 0 {
			start := alt.Words[0].StartTime.AsDuration().Seconds()
			end := alt.Words[len(alt.Words)-1].EndTime.AsDuration().Seconds()
			seg.Start = &start
			seg.End = &end
		}
		result.Segments = append(result.Segments, seg)

		for _, w := range alt.Words {
			ws := w.StartTime.AsDuration().Seconds()
			we := w.EndTime.AsDuration().Seconds()
			result.Words = append(result.Words, models.TranscriptWord{
				Word:  w.Word,
				Start: &ws,
				End:   &we,
			})
		}
	}
	result.Text = strings.TrimSpace(strings.Join(parts, " "))
	return result, nil
}

// Close releases the underlying client.
func (a *Adapter) Close() error {
	return a.client.Close()
}

// classify maps provider failures into the shared taxonomy. Quota
// exhaustion surfaces as ResourceExhausted from the API.
func classify(err error) error {
	msg := err.Error()
	if strings.Contains(msg, "ResourceExhausted") || strings.Contains(strings.ToLower(msg), "quota") {
		return fmt.Errorf("%w: %v", verdicterr.ErrQuotaExceeded, err)
	}
	return fmt.Errorf("%w: %v", verdicterr.ErrUpstreamTransient, err)
}
