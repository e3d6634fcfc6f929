package utils

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWaitForElapses(t *testing.T) {
	if err := WaitFor(context.Background(), time.Millisecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWaitForCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := WaitFor(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if err := WaitFor(ctx, 0); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled for zero wait, got %v", err)
	}
}

func TestBackoff(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		base    time.Duration
		attempt int
		limit   time.Duration
		expect  time.Duration
	}{
		{name: "first attempt", base: time.Second, attempt: 0, limit: 10 * time.Second, expect: time.Second},
		{name: "doubles", base: time.Second, attempt: 2, limit: 10 * time.Second, expect: 4 * time.Second},
		{name: "capped", base: time.Second, attempt: 8, limit: 10 * time.Second, expect: 10 * time.Second},
		{name: "no limit", base: time.Second, attempt: 3, expect: 8 * time.Second},
		{name: "zero base", base: 0, attempt: 3, limit: time.Second, expect: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Backoff(tt.base, tt.attempt, tt.limit); got != tt.expect {
				t.Fatalf("expected %v, got %v", tt.expect, got)
			}
		})
	}
}
