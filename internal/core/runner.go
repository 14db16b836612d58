package core

import (
	"context"
	"errors"
)

// ErrMaxIterationsReached indicates the runner hit its iteration limit.
var ErrMaxIterationsReached = errors.New("max iterations reached")

// NullReporter discards all events (used during warmup).
var NullReporter Reporter = nullReporter{}

type nullReporter struct{}

func (nullReporter) Report(Event) {}

// RunnerConfig controls execution behavior.
type RunnerConfig struct {
	MaxIterations int // 0 = unlimited
	WarmupIters   int // iterations before metrics count (per-actor)
}

// Limited reports whether the config changes anything over a plain loop.
func (c RunnerConfig) Limited() bool {
	return c.MaxIterations > 0 || c.WarmupIters > 0
}

// Runner controls iteration-level execution of one actor.
// A Runner is NOT safe for concurrent use; each actor goroutine must have its own Runner.
type Runner struct {
	actor     Actor
	reporter  Reporter
	config    RunnerConfig
	iteration int
}

// NewRunner creates a Runner for a single actor.
func NewRunner(actor Actor, reporter Reporter, config RunnerConfig) *Runner {
	return &Runner{
		actor:    actor,
		reporter: reporter,
		config:   config,
	}
}

// RunIteration executes one task cycle.
// Returns nil on success, ErrMaxIterationsReached when limit hit, or the actor's error.
func (r *Runner) RunIteration(ctx context.Context) error {
	if r.config.MaxIterations > 0 && r.iteration >= r.config.MaxIterations {
		return ErrMaxIterationsReached
	}

	rep := r.reporter
	if r.iteration < r.config.WarmupIters {
		rep = NullReporter
	}

	err := r.actor.Iterate(ctx, rep)
	r.iteration++
	return err
}

// Iteration returns the number of completed iterations.
func (r *Runner) Iteration() int {
	return r.iteration
}

// IsWarmup returns true if still in warmup phase.
func (r *Runner) IsWarmup() bool {
	return r.iteration < r.config.WarmupIters
}
