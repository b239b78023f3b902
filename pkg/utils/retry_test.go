package utils

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWithRetrySucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), time.Second, 3, func(_ context.Context) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestWithRetryRecoversAfterFailure(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), time.Second, 3, func(_ context.Context) error {
		calls++
		if calls < 2 {
			return errors.New("connection refused")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}

func TestWithRetryExhaustsBudget(t *testing.T) {
	opErr := errors.New("connection refused")
	calls := 0
	err := WithRetry(context.Background(), time.Second, 2, func(_ context.Context) error {
		calls++
		return opErr
	})
	if !errors.Is(err, opErr) {
		t.Fatalf("expected the operation error, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls for 2 retries, got %d", calls)
	}
}

func TestWithRetryCancellationKeepsOperationError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	opErr := errors.New("request aborted mid-flight")

	err := WithRetry(ctx, time.Second, 3, func(_ context.Context) error {
		cancel()
		return opErr
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if !errors.Is(err, opErr) {
		t.Fatalf("cancellation must keep the operation error attached, got %v", err)
	}
}
