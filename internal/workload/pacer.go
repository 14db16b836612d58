package workload

import (
	"context"
	"math/rand"
	"time"

	"trainload/internal/core"
)

// Pacer is the think time between an actor's tasks.
type Pacer struct {
	Min, Max time.Duration
	Clock    core.Clock
}

// Next draws a duration uniformly from [Min, Max].
func (p Pacer) Next(rng *rand.Rand) time.Duration {
	if p.Max <= p.Min {
		return p.Min
	}
	return p.Min + time.Duration(rng.Int63n(int64(p.Max-p.Min)+1))
}

// Wait sleeps for Next(rng) or until ctx is done.
func (p Pacer) Wait(ctx context.Context, rng *rand.Rand) error {
	d := p.Next(rng)
	if d <= 0 {
		return ctx.Err()
	}
	clock := p.Clock
	if clock == nil {
		clock = core.RealClock{}
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-clock.After(d):
		return nil
	}
}
