// Package coordinator manages actor lifecycle and orchestration.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"trainload/internal/config"
	"trainload/internal/core"
	"trainload/internal/progress"
	"trainload/internal/ratelimit"
)

// phaseTickInterval is how often phase transitions and actor counts are
// re-evaluated during a load profile.
const phaseTickInterval = 100 * time.Millisecond

// StartFailedStep names the event reported when an actor cannot start.
const StartFailedStep = "actor_start"

// Coordinator spawns actors of one scenario and stops them.
type Coordinator struct {
	scenario core.Scenario
	reporter core.Reporter
	config   core.RunnerConfig
	log      *zap.Logger

	nextID      atomic.Int64
	wg          sync.WaitGroup
	activeCount atomic.Int32
	stopMu      sync.Mutex
	handles     []handle // running actors not yet asked to stop, oldest first
}

type handle struct {
	id   int
	stop context.CancelFunc
}

// NewCoordinator creates a Coordinator. A nil logger discards diagnostics.
func NewCoordinator(scenario core.Scenario, reporter core.Reporter, config core.RunnerConfig, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		scenario: scenario,
		reporter: reporter,
		config:   config,
		log:      logger,
	}
}

// Spawn starts count actors that run until ctx is done or their iteration
// limit is reached.
func (c *Coordinator) Spawn(ctx context.Context, count int) {
	for i := 0; i < count; i++ {
		c.spawn(ctx)
	}
}

// Wait blocks until every spawned actor has exited.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

// ActiveActors returns the number of running actors.
func (c *Coordinator) ActiveActors() int {
	return int(c.activeCount.Load())
}

func (c *Coordinator) spawn(ctx context.Context) {
	actorCtx, stop := context.WithCancel(ctx)
	id := int(c.nextID.Add(1))

	c.stopMu.Lock()
	c.handles = append(c.handles, handle{id: id, stop: stop})
	c.stopMu.Unlock()

	c.activeCount.Add(1)
	c.wg.Add(1)
	go func() {
		defer func() {
			c.release(id)
			stop()
			c.activeCount.Add(-1)
			c.wg.Done()
		}()
		defer c.recoverPanic(id)
		c.runActor(core.ContextWithActorID(actorCtx, id), id)
	}()
}

func (c *Coordinator) runActor(ctx context.Context, id int) {
	log := c.log.With(zap.Int("actor", id))

	actor, err := c.scenario.NewActor(ctx, id)
	if err != nil {
		log.Error("actor failed to start", zap.Error(err))
		c.reporter.Report(core.Event{
			ActorID:   id,
			Timestamp: time.Now(),
			Step:      StartFailedStep,
			Kind:      "actor_failed",
			Error:     err.Error(),
		})
		return
	}

	runner := core.NewRunner(actor, c.reporter, c.config)
	for ctx.Err() == nil {
		warming := runner.IsWarmup()
		err := runner.RunIteration(ctx)
		if warming && !runner.IsWarmup() {
			log.Debug("warmup complete", zap.Int("iterations", runner.Iteration()))
		}
		switch {
		case err == nil:
		case errors.Is(err, core.ErrMaxIterationsReached):
			log.Debug("actor finished", zap.Int("iterations", runner.Iteration()))
			return
		case ctx.Err() != nil:
			return
		default:
			log.Error("actor stopped", zap.Error(err), zap.Int("iterations", runner.Iteration()))
			return
		}
	}
}

// recoverPanic recovers from panics in actor goroutines and reports them as failed events.
func (c *Coordinator) recoverPanic(actorID int) {
	if r := recover(); r != nil {
		c.log.Error("actor panicked", zap.Int("actor", actorID), zap.Any("panic", r))
		c.reporter.Report(core.Event{
			ActorID:   actorID,
			Timestamp: time.Now(),
			Step:      "panic",
			Success:   false,
			Error:     fmt.Sprintf("panic: %v", r),
		})
	}
}

// release forgets an actor that exited on its own.
func (c *Coordinator) release(id int) {
	c.stopMu.Lock()
	defer c.stopMu.Unlock()
	for i, h := range c.handles {
		if h.id == id {
			c.handles = append(c.handles[:i], c.handles[i+1:]...)
			return
		}
	}
}

// running counts actors that have not been asked to stop.
func (c *Coordinator) running() int {
	c.stopMu.Lock()
	defer c.stopMu.Unlock()
	return len(c.handles)
}

// stopActors cancels the n oldest actors.
func (c *Coordinator) stopActors(n int) {
	c.stopMu.Lock()
	defer c.stopMu.Unlock()
	n = min(n, len(c.handles))
	for _, h := range c.handles[:n] {
		h.stop()
	}
	c.handles = c.handles[n:]
}

func (c *Coordinator) stopAllActors() {
	c.stopMu.Lock()
	n := len(c.handles)
	c.stopMu.Unlock()
	c.stopActors(n)
}

// RunProfile drives the phases of profile: it keeps the actor count on the
// phase target and retunes rateLimiter, which may be nil. It returns once
// the profile is complete or ctx is done; actors are stopped but not awaited.
func (c *Coordinator) RunProfile(ctx context.Context, profile *config.LoadProfile, rateLimiter *ratelimit.RateLimiter, prog *progress.Progress) {
	c.runProfile(ctx, ratelimit.NewPhaseManager(profile.Phases), profile, rateLimiter, prog, phaseTickInterval)
}

func (c *Coordinator) runProfile(ctx context.Context, pm *ratelimit.PhaseManager, profile *config.LoadProfile, rateLimiter *ratelimit.RateLimiter, prog *progress.Progress, tick time.Duration) {
	announce := func(format string, args ...any) {
		if prog != nil {
			prog.Printf(format, args...)
			return
		}
		c.log.Info(fmt.Sprintf(format, args...))
	}

	announce("Starting load profile with %d phases, total duration: %v",
		len(profile.Phases), profile.TotalDuration())

	currentPhase := -1
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		s := pm.Snapshot()
		if s.Complete() {
			c.stopAllActors()
			return
		}

		if s.Index != currentPhase {
			currentPhase = s.Index
			if s.RPS > 0 {
				announce("Phase: %s (duration: %v, target actors: %d, rps: %d)",
					s.Phase.Name, s.Phase.Duration, s.TargetActors, s.RPS)
			} else {
				announce("Phase: %s (duration: %v, target actors: %d)",
					s.Phase.Name, s.Phase.Duration, s.TargetActors)
			}
		}

		if current := c.running(); current < s.TargetActors {
			for i := current; i < s.TargetActors; i++ {
				c.spawn(ctx)
			}
		} else if current > s.TargetActors {
			c.stopActors(current - s.TargetActors)
		}
		if rateLimiter != nil {
			rateLimiter.SetRate(s.RPS)
		}

		select {
		case <-ctx.Done():
			c.stopAllActors()
			return
		case <-ticker.C:
		}
	}
}
