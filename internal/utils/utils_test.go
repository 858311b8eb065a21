package utils

import (
	"context"
	"errors"
	"testing"
	"time"
)

func stubSleep(t *testing.T) {
	t.Helper()
	original := sleep
	sleep = func(time.Duration) {}
	t.Cleanup(func() { sleep = original })
}

func TestWaitForReturnsAfterDelay(t *testing.T) {
	stubSleep(t)

	if err := WaitFor(context.Background(), time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWaitForZeroDurationReturnsImmediately(t *testing.T) {
	if err := WaitFor(context.Background(), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWaitForCanceledContext(t *testing.T) {
	release := make(chan struct{})
	original := sleep
	sleep = func(time.Duration) { <-release }
	t.Cleanup(func() {
		close(release)
		sleep = original
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := WaitFor(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
