package workload

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"go.uber.org/zap"

	"trainload/internal/config"
	"trainload/internal/core"
	transport "trainload/internal/http"
	"trainload/internal/outcome"
	"trainload/internal/recorder"
	"trainload/internal/synth"
)

// Limiter gates each request. *ratelimit.RateLimiter satisfies it.
type Limiter interface {
	Wait(ctx context.Context) error
}

// Env is what every actor of a run shares. Only Log is mutable and it
// serialises its own writes.
type Env struct {
	Sender  *transport.Sender
	Logger  *zap.Logger
	Limiter Limiter
	Clock   core.Clock
	// Log receives one row per successful training list response. Nil
	// disables recording.
	Log *recorder.Log
	// Dump receives pretty-printed list responses when enabled in config.
	Dump io.Writer
}

func (e *Env) logger() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

func (e *Env) clock() core.Clock {
	if e.Clock == nil {
		return core.RealClock{}
	}
	return e.Clock
}

// New returns the scenario named by cfg.Scenario.
func New(cfg *config.Config, env *Env) (core.Scenario, error) {
	switch cfg.Scenario {
	case config.ScenarioPost:
		return NewPostScenario(cfg, env), nil
	case config.ScenarioRegistration:
		return NewRegistrationScenario(cfg, env)
	case config.ScenarioTrainingList:
		return NewTrainingListScenario(cfg, env), nil
	default:
		return nil, fmt.Errorf("unknown scenario %q", cfg.Scenario)
	}
}

// actorBase is the state every actor owns.
type actorBase struct {
	id      int
	env     *Env
	builder *synth.Builder
	pacer   Pacer
	rng     *rand.Rand
	log     *zap.Logger
	seq     int64
}

func newActorBase(cfg *config.Config, env *Env, id int) actorBase {
	return actorBase{
		id:  id,
		env: env,
		builder: &synth.Builder{
			BaseURL: cfg.Target.Host,
			Token:   cfg.Target.Token,
			Headers: cfg.Target.Headers,
		},
		pacer: Pacer{Min: cfg.WaitBounds().Min, Max: cfg.WaitBounds().Max, Clock: env.clock()},
		rng:   newRand(cfg.Execution.Seed, id),
		log:   env.logger().With(zap.Int("actor", id)),
	}
}

// newRand seeds deterministically from seed+actorID when seed is set.
func newRand(seed int64, actorID int) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewSource(time.Now().UnixNano() + int64(actorID)))
	}
	return rand.New(rand.NewSource(seed + int64(actorID)))
}

// wait runs the think time and then the shared limiter.
func (a *actorBase) wait(ctx context.Context) error {
	if err := a.pacer.Wait(ctx, a.rng); err != nil {
		return err
	}
	if a.env.Limiter != nil {
		if err := a.env.Limiter.Wait(ctx); err != nil {
			return err
		}
	}
	return nil
}

// next allocates the sequence number of the request about to be built.
func (a *actorBase) next() int64 {
	a.seq++
	return a.seq
}

// exchange sends req, classifies the result, logs the diagnostic line and
// reports the event. Requests aborted by ctx are not reported.
func (a *actorBase) exchange(ctx context.Context, rep core.Reporter, seq int64, target string, policy outcome.Policy, req *http.Request) (transport.Response, outcome.Outcome) {
	start := a.env.clock().Now()
	resp := a.env.Sender.Send(core.ContextWithActorID(ctx, a.id), target, req)

	out := outcome.Classify(policy, resp.StatusCode, resp.Body)
	if resp.StatusCode == 0 && ctx.Err() != nil {
		// Cut off by the end of the run, not by the service.
		a.log.Debug("request cancelled", zap.Int64("seq", seq), zap.String("target", target))
		return resp, out
	}

	fields := []zap.Field{
		zap.Int64("seq", seq),
		zap.String("target", target),
		zap.String("kind", out.Kind.String()),
		zap.Int("status", out.StatusCode),
		zap.Duration("latency", resp.Latency),
	}
	if out.OK() {
		a.log.Info("request succeeded", fields...)
	} else {
		fields = append(fields, zap.String("reason", out.Reason))
		if resp.Err != nil {
			fields = append(fields, zap.Error(resp.Err))
		}
		a.log.Warn("request failed", fields...)
	}

	rep.Report(core.Event{
		ActorID:    a.id,
		Sequence:   seq,
		Timestamp:  start,
		Step:       target,
		Protocol:   "http",
		Duration:   resp.Latency,
		Success:    out.OK(),
		Kind:       out.Kind.String(),
		Error:      out.Reason,
		StatusCode: out.StatusCode,
		BytesSent:  resp.BytesSent,
		BytesRecv:  int64(len(resp.Body)),
	})
	return resp, out
}
