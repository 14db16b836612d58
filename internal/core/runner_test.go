package core

import (
	"context"
	"errors"
	"testing"
)

// mockActor is a simple actor for testing
type mockActor struct {
	iterate func(ctx context.Context, rep Reporter) error
	calls   int
}

func (m *mockActor) Iterate(ctx context.Context, rep Reporter) error {
	m.calls++
	if m.iterate != nil {
		return m.iterate(ctx, rep)
	}
	return nil
}

// mockReporter collects events for testing
type mockReporter struct {
	events []Event
}

func (m *mockReporter) Report(e Event) {
	m.events = append(m.events, e)
}

func reportingActor() *mockActor {
	return &mockActor{iterate: func(ctx context.Context, rep Reporter) error {
		rep.Report(Event{Step: "mock", Success: true})
		return nil
	}}
}

func drain(t *testing.T, runner *Runner) {
	t.Helper()
	for {
		err := runner.RunIteration(context.Background())
		if errors.Is(err, ErrMaxIterationsReached) {
			return
		}
		if err != nil {
			t.Fatal(err)
		}
	}
}

func TestRunner_MaxIterations(t *testing.T) {
	actor := reportingActor()
	reporter := &mockReporter{}
	runner := NewRunner(actor, reporter, RunnerConfig{MaxIterations: 3})

	drain(t, runner)

	if runner.Iteration() != 3 {
		t.Errorf("expected 3 iterations, got %d", runner.Iteration())
	}
	if actor.calls != 3 {
		t.Errorf("expected 3 calls, got %d", actor.calls)
	}
	if len(reporter.events) != 3 {
		t.Errorf("expected 3 events, got %d", len(reporter.events))
	}
}

func TestRunner_WarmupExcludesMetrics(t *testing.T) {
	reporter := &mockReporter{}
	runner := NewRunner(reportingActor(), reporter, RunnerConfig{
		MaxIterations: 5,
		WarmupIters:   2,
	})

	drain(t, runner)

	if runner.Iteration() != 5 {
		t.Errorf("expected 5 iterations, got %d", runner.Iteration())
	}
	if len(reporter.events) != 3 {
		t.Errorf("expected 3 events (excluding warmup), got %d", len(reporter.events))
	}
}

func TestRunner_IsWarmup(t *testing.T) {
	runner := NewRunner(&mockActor{}, &mockReporter{}, RunnerConfig{
		MaxIterations: 5,
		WarmupIters:   2,
	})
	ctx := context.Background()

	if !runner.IsWarmup() {
		t.Error("expected IsWarmup() to be true before warmup completes")
	}
	runner.RunIteration(ctx)
	if !runner.IsWarmup() {
		t.Error("expected IsWarmup() to be true during warmup (iteration 1)")
	}
	runner.RunIteration(ctx)
	if runner.IsWarmup() {
		t.Error("expected IsWarmup() to be false after warmup completes (iteration 2)")
	}
}

func TestRunner_UnlimitedIterations(t *testing.T) {
	actor := &mockActor{}
	runner := NewRunner(actor, &mockReporter{}, RunnerConfig{})

	for i := 0; i < 100; i++ {
		if err := runner.RunIteration(context.Background()); err != nil {
			t.Fatalf("unexpected error at iteration %d: %v", i, err)
		}
	}
	if actor.calls != 100 {
		t.Errorf("expected 100 calls, got %d", actor.calls)
	}
}

func TestRunner_ActorError(t *testing.T) {
	expectedErr := errors.New("actor error")
	actor := &mockActor{iterate: func(ctx context.Context, rep Reporter) error {
		return expectedErr
	}}
	runner := NewRunner(actor, &mockReporter{}, RunnerConfig{MaxIterations: 5})

	err := runner.RunIteration(context.Background())
	if !errors.Is(err, expectedErr) {
		t.Errorf("expected actor error, got %v", err)
	}
	// Iteration should still increment even on error
	if runner.Iteration() != 1 {
		t.Errorf("expected iteration 1 after error, got %d", runner.Iteration())
	}
}

func TestRunner_ContextCancellation(t *testing.T) {
	actor := &mockActor{iterate: func(ctx context.Context, rep Reporter) error {
		return ctx.Err()
	}}
	runner := NewRunner(actor, &mockReporter{}, RunnerConfig{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := runner.RunIteration(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRunnerConfig_Limited(t *testing.T) {
	tests := []struct {
		cfg  RunnerConfig
		want bool
	}{
		{RunnerConfig{}, false},
		{RunnerConfig{MaxIterations: 1}, true},
		{RunnerConfig{WarmupIters: 2}, true},
	}
	for _, tt := range tests {
		if got := tt.cfg.Limited(); got != tt.want {
			t.Errorf("%+v.Limited() = %v, want %v", tt.cfg, got, tt.want)
		}
	}
}

func TestNullReporter(t *testing.T) {
	NullReporter.Report(Event{Step: "test", Success: true})
}
