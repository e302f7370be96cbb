package google

import (
	"errors"
	"testing"

	"verdict-service/internal/verdicterr"
)

func TestClassify_Quota(t *testing.T) {
	err := classify(errors.New("rpc error: code = ResourceExhausted desc = Quota exceeded"))
	if !errors.Is(err, verdicterr.ErrQuotaExceeded) {
		t.Fatalf("expected quota error, got %v", err)
	}
	if verdicterr.Retryable(err) {
		t.Error("quota errors must not be retryable")
	}
}

func TestClassify_Transient(t *testing.T) {
	err := classify(errors.New("rpc error: code = Unavailable desc = connection reset"))
	if !errors.Is(err, verdicterr.ErrUpstreamTransient) {
		t.Fatalf("expected transient error, got %v", err)
	}
	if !verdicterr.Retryable(err) {
		t.Error("transient errors should be retryable")
	}
}
