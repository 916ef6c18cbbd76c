package voice

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestWithRetryStopsOnSuccess(t *testing.T) {
	calls := 0
	data, err := withRetry(context.Background(), synthRetries, func(context.Context) ([]byte, error) {
		calls++
		if calls < 2 {
			return nil, &transientError{err: errors.New("connection reset")}
		}
		return []byte("ok"), nil
	})
	if err != nil {
		t.Fatalf("withRetry: %v", err)
	}
	if string(data) != "ok" {
		t.Errorf("data = %q, want ok", data)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestWithRetryExhaustsTransientBudget(t *testing.T) {
	calls := 0
	_, err := withRetry(context.Background(), synthRetries, func(context.Context) ([]byte, error) {
		calls++
		return nil, &transientError{err: errors.New("timeout")}
	})
	if err == nil {
		t.Fatal("withRetry succeeded after persistent transient failures")
	}
	if calls != synthRetries {
		t.Errorf("calls = %d, want %d", calls, synthRetries)
	}
}

func TestWithRetryPermanentFailureIsImmediate(t *testing.T) {
	calls := 0
	_, err := withRetry(context.Background(), synthRetries, func(context.Context) ([]byte, error) {
		calls++
		return nil, fmt.Errorf("synthesis API error 401: bad key")
	})
	if err == nil {
		t.Fatal("withRetry swallowed a permanent failure")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry on permanent failure)", calls)
	}
}

func TestWithRetryHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, err := withRetry(ctx, synthRetries, func(context.Context) ([]byte, error) {
		calls++
		return nil, &transientError{err: errors.New("x")}
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if calls != 0 {
		t.Errorf("calls = %d, want 0 after cancellation", calls)
	}
}

func TestIsTransient(t *testing.T) {
	if !isTransient(&transientError{err: errors.New("x")}) {
		t.Error("transientError not classified as transient")
	}
	if !isTransient(fmt.Errorf("wrapped: %w", &transientError{err: errors.New("x")})) {
		t.Error("wrapped transientError not classified as transient")
	}
	if isTransient(errors.New("permanent")) {
		t.Error("plain error classified as transient")
	}
}

func TestKindSynthesized(t *testing.T) {
	if !KindElevenLabs.Synthesized() || !KindHume.Synthesized() {
		t.Error("synthesis kinds not marked synthesized")
	}
	if KindRecorded.Synthesized() {
		t.Error("recorded kind marked synthesized")
	}
}
