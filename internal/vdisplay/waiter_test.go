package vdisplay

import (
	"context"
	"testing"
	"time"
)

func TestAwaitDetectionCountsAttempts(t *testing.T) {
	enum := &fakeEnumerator{script: [][]string{
		{},
		{},
		{},
		{},
		{"card1-Virtual-1"},
	}}

	waiter := NewWaiter(enum, time.Millisecond, 50, testLogger())
	attempts, err := waiter.AwaitDetection(context.Background())
	if err != nil {
		t.Fatalf("AwaitDetection() error = %v", err)
	}
	if attempts != 5 {
		t.Errorf("AwaitDetection() attempts = %d, want 5", attempts)
	}
	if enum.calls != 5 {
		t.Errorf("enumerator polled %d times, want 5", enum.calls)
	}
}

func TestAwaitDetectionImmediate(t *testing.T) {
	enum := &fakeEnumerator{script: [][]string{{"card0-HDMI-A-1", "card1-Virtual-1"}}}

	waiter := NewWaiter(enum, time.Millisecond, 50, testLogger())
	attempts, err := waiter.AwaitDetection(context.Background())
	if err != nil {
		t.Fatalf("AwaitDetection() error = %v", err)
	}
	if attempts != 1 {
		t.Errorf("AwaitDetection() attempts = %d, want 1", attempts)
	}
}

func TestAwaitDetectionExhaustsBudget(t *testing.T) {
	enum := &fakeEnumerator{script: [][]string{{"card0-HDMI-A-1"}}}

	waiter := NewWaiter(enum, time.Millisecond, 3, testLogger())
	attempts, err := waiter.AwaitDetection(context.Background())
	if err == nil {
		t.Fatal("AwaitDetection() expected timeout error")
	}
	if got := ErrorCode(err); got != ErrCodeDetectionTimeout {
		t.Errorf("ErrorCode = %q, want %q", got, ErrCodeDetectionTimeout)
	}
	if attempts != 3 {
		t.Errorf("AwaitDetection() attempts = %d, want 3", attempts)
	}
}

func TestAwaitDetectionCancellation(t *testing.T) {
	enum := &fakeEnumerator{script: [][]string{{}}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	waiter := NewWaiter(enum, time.Hour, 50, testLogger())
	_, err := waiter.AwaitDetection(ctx)
	if err != context.Canceled {
		t.Errorf("AwaitDetection() error = %v, want context.Canceled", err)
	}
}
