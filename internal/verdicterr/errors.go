// Package verdicterr defines the error taxonomy shared by the adapters and
// the HTTP surface. Adapters classify only the conditions they can
// meaningfully distinguish; everything else folds into ErrAnalysisFailed at
// the boundary the caller sees.
package verdicterr

import (
	"errors"
	"fmt"
)

// Category sentinels. Wrap with fmt.Errorf("%w: ...") and test with
// errors.Is.
var (
	// ErrConfiguration is a missing required credential or setting.
	// Fatal at startup, never per-call.
	ErrConfiguration = errors.New("configuration error")

	// ErrInvalidInput is a missing or malformed request field.
	ErrInvalidInput = errors.New("invalid input")

	// ErrAudioProcessing is a transcoding, probing, or duration failure.
	ErrAudioProcessing = errors.New("audio processing failed")

	// ErrQuotaExceeded is a terminal quota-exhaustion signal from an
	// upstream provider. Never retried.
	ErrQuotaExceeded = errors.New("upstream quota exceeded")

	// ErrUpstreamTransient is a retryable upstream failure.
	ErrUpstreamTransient = errors.New("transient upstream failure")

	// ErrEmptyResponse is an upstream call that "succeeded" but yielded
	// no content. Treated as failure, not a zero-length answer.
	ErrEmptyResponse = errors.New("empty response from upstream")

	// ErrNotFound is an unknown session id.
	ErrNotFound = errors.New("not found")

	// ErrSubscriptionRequired gates access to analysis work.
	ErrSubscriptionRequired = errors.New("active subscription required")

	// ErrAnalysisFailed is the generic boundary error: the original cause
	// is logged, not exposed.
	ErrAnalysisFailed = errors.New("analysis failed")
)

// Specific conditions, pre-wrapped in their category.
var (
	ErrEmptyInput = fmt.Errorf("%w: no audio data provided", ErrInvalidInput)
	ErrEmptyAudio = fmt.Errorf("%w: decoded audio has zero bytes", ErrAudioProcessing)
	ErrTooShort   = fmt.Errorf("%w: recording is below the minimum duration", ErrAudioProcessing)
)

// Retryable reports whether err should be retried by the transcription
// upload loop: transient upstream failures are, quota exhaustion is not.
func Retryable(err error) bool {
	if errors.Is(err, ErrQuotaExceeded) {
		return false
	}
	return errors.Is(err, ErrUpstreamTransient)
}
