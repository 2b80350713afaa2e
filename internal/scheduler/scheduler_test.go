package scheduler

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRun_ImmediateThenTicks(t *testing.T) {
	var runs atomic.Int32
	s := New("@every 1s", func(ctx context.Context) { runs.Add(1) }, discardLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 1500*time.Millisecond)
	defer cancel()

	if err := s.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := runs.Load(); got < 2 {
		t.Errorf("expected an immediate run and at least one tick, got %d runs", got)
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	var runs atomic.Int32
	s := New("@every 1h", func(ctx context.Context) { runs.Add(1) }, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
	if got := runs.Load(); got != 1 {
		t.Errorf("expected exactly the immediate run, got %d", got)
	}
}

func TestRun_InvalidSpec(t *testing.T) {
	s := New("whenever", func(ctx context.Context) {}, discardLogger())
	if err := s.Run(context.Background()); err == nil {
		t.Fatal("expected error for invalid spec")
	}
}
