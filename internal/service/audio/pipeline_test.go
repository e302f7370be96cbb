package audio

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"verdict-service/internal/models"
	"verdict-service/internal/verdicterr"
)

// fakeTranscoder implements Transcoder without invoking ffmpeg.
type fakeTranscoder struct {
	duration    time.Duration
	toPCMErr    error
	durationErr error
	toPCMCalls  int
	probeCalls  int
	lastSrc     string
	lastDst     string
}

func (f *fakeTranscoder) ToPCM(ctx context.Context, src, dst string) error {
	f.toPCMCalls++
	f.lastSrc = src
	f.lastDst = dst
	if f.toPCMErr != nil {
		return f.toPCMErr
	}
	// Materialize the destination so upload has something to read.
	return os.WriteFile(dst, []byte("RIFF-fake-wav"), 0o600)
}

func (f *fakeTranscoder) Duration(ctx context.Context, path string) (time.Duration, error) {
	f.probeCalls++
	if f.durationErr != nil {
		return 0, f.durationErr
	}
	return f.duration, nil
}

// fakeTranscriber implements stt.Transcriber, counting upload attempts.
type fakeTranscriber struct {
	calls  int
	errs   []error // error per attempt; nil entry means success
	result *models.TranscriptionResult
	paths  []string
}

func (f *fakeTranscriber) Provider() string { return "fake" }

func (f *fakeTranscriber) Transcribe(ctx context.Context, path string) (*models.TranscriptionResult, error) {
	f.paths = append(f.paths, path)
	idx := f.calls
	f.calls++
	if idx < len(f.errs) && f.errs[idx] != nil {
		return nil, f.errs[idx]
	}
	if f.result != nil {
		return f.result, nil
	}
	return &models.TranscriptionResult{Text: "hello", Segments: []models.TranscriptSegment{{Text: "hello"}}}, nil
}

func testConfig() Config {
	return Config{
		MinDuration: 100 * time.Millisecond,
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
	}
}

func encode(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

func TestTranscribe_EmptyInputRejectedImmediately(t *testing.T) {
	tc := &fakeTranscoder{duration: time.Second}
	tr := &fakeTranscriber{}
	p := NewPipeline(tr, tc, testConfig())

	_, err := p.Transcribe(context.Background(), "")
	if !errors.Is(err, verdicterr.ErrInvalidInput) {
		t.Fatalf("expected invalid input error, got %v", err)
	}
	if tc.toPCMCalls != 0 || tr.calls != 0 {
		t.Error("no transcoding or upload should happen for empty input")
	}
}

func TestTranscribe_ZeroByteAudioFailsFast(t *testing.T) {
	tc := &fakeTranscoder{duration: time.Second}
	tr := &fakeTranscriber{}
	p := NewPipeline(tr, tc, testConfig())

	_, err := p.Transcribe(context.Background(), encode(nil))
	if !errors.Is(err, verdicterr.ErrAudioProcessing) {
		t.Fatalf("expected audio processing error, got %v", err)
	}
	if tc.toPCMCalls != 0 {
		t.Error("zero-byte audio should fail before transcoding")
	}
}

func TestTranscribe_ConversionFailureWrapped(t *testing.T) {
	tc := &fakeTranscoder{toPCMErr: fmt.Errorf("%w: format conversion: exit status 1", verdicterr.ErrAudioProcessing)}
	tr := &fakeTranscriber{}
	p := NewPipeline(tr, tc, testConfig())

	_, err := p.Transcribe(context.Background(), encode([]byte("audio")))
	if !errors.Is(err, verdicterr.ErrAudioProcessing) {
		t.Fatalf("expected audio processing error, got %v", err)
	}
	if tr.calls != 0 {
		t.Error("no upload should happen after a conversion failure")
	}
}

func TestTranscribe_TooShortRejectedBeforeUpload(t *testing.T) {
	tc := &fakeTranscoder{duration: 50 * time.Millisecond}
	tr := &fakeTranscriber{}
	p := NewPipeline(tr, tc, testConfig())

	_, err := p.Transcribe(context.Background(), encode([]byte("audio")))
	if !errors.Is(err, verdicterr.ErrTooShort) {
		t.Fatalf("expected too-short error, got %v", err)
	}
	if tr.calls != 0 {
		t.Errorf("expected zero upload attempts for a too-short clip, got %d", tr.calls)
	}
}

func TestTranscribe_QuotaNotRetried(t *testing.T) {
	tc := &fakeTranscoder{duration: time.Second}
	tr := &fakeTranscriber{errs: []error{
		fmt.Errorf("%w: insufficient_quota", verdicterr.ErrQuotaExceeded),
	}}
	p := NewPipeline(tr, tc, testConfig())

	_, err := p.Transcribe(context.Background(), encode([]byte("audio")))
	if !errors.Is(err, verdicterr.ErrQuotaExceeded) {
		t.Fatalf("expected quota error, got %v", err)
	}
	if tr.calls != 1 {
		t.Errorf("expected exactly 1 upload attempt on quota exhaustion, got %d", tr.calls)
	}
}

func TestTranscribe_TransientRetriedToCap(t *testing.T) {
	transient := fmt.Errorf("%w: status 502", verdicterr.ErrUpstreamTransient)
	tc := &fakeTranscoder{duration: time.Second}
	tr := &fakeTranscriber{errs: []error{transient, transient, transient}}
	p := NewPipeline(tr, tc, testConfig())

	_, err := p.Transcribe(context.Background(), encode([]byte("audio")))
	if !errors.Is(err, verdicterr.ErrUpstreamTransient) {
		t.Fatalf("expected transient error after exhausting retries, got %v", err)
	}
	if tr.calls != 3 {
		t.Errorf("expected 3 upload attempts, got %d", tr.calls)
	}
}

func TestTranscribe_TransientRecovers(t *testing.T) {
	transient := fmt.Errorf("%w: status 502", verdicterr.ErrUpstreamTransient)
	tc := &fakeTranscoder{duration: time.Second}
	tr := &fakeTranscriber{errs: []error{transient, nil}}
	p := NewPipeline(tr, tc, testConfig())

	out, err := p.Transcribe(context.Background(), encode([]byte("audio")))
	if err != nil {
		t.Fatalf("expected recovery on second attempt, got %v", err)
	}
	if tr.calls != 2 {
		t.Errorf("expected 2 upload attempts, got %d", tr.calls)
	}

	var result models.TranscriptionResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("output is not a serialized TranscriptionResult: %v", err)
	}
	if result.Text != "hello" {
		t.Errorf("unexpected transcript %q", result.Text)
	}
}

func TestTranscribe_TempFilesCleanedUp(t *testing.T) {
	tc := &fakeTranscoder{duration: time.Second}
	tr := &fakeTranscriber{}
	p := NewPipeline(tr, tc, testConfig())

	if _, err := p.Transcribe(context.Background(), encode([]byte("audio"))); err != nil {
		t.Fatalf("Transcribe: %v", err)
	}

	for _, path := range []string{tc.lastSrc, tc.lastDst} {
		if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("expected temp file %s to be removed, stat err = %v", path, err)
		}
	}
}

func TestTranscribe_TempFilesCleanedUpOnFailure(t *testing.T) {
	tc := &fakeTranscoder{duration: time.Second}
	tr := &fakeTranscriber{errs: []error{fmt.Errorf("%w: boom", verdicterr.ErrQuotaExceeded)}}
	p := NewPipeline(tr, tc, testConfig())

	if _, err := p.Transcribe(context.Background(), encode([]byte("audio"))); err == nil {
		t.Fatal("expected failure")
	}

	for _, path := range []string{tc.lastSrc, tc.lastDst} {
		if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("expected temp file %s to be removed, stat err = %v", path, err)
		}
	}
}

// Guards against the raw payload being handed to the transcriber instead of
// the converted file.
func TestTranscribe_UploadsConvertedFile(t *testing.T) {
	tc := &fakeTranscoder{duration: time.Second}
	tr := &fakeTranscriber{}
	p := NewPipeline(tr, tc, testConfig())

	if _, err := p.Transcribe(context.Background(), encode([]byte("audio"))); err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if len(tr.paths) != 1 || tr.paths[0] != tc.lastDst {
		t.Errorf("expected upload of converted file %s, got %v", tc.lastDst, tr.paths)
	}
}
