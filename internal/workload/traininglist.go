package workload

import (
	"context"
	"errors"

	"github.com/tidwall/pretty"
	"go.uber.org/zap"

	"trainload/internal/config"
	"trainload/internal/core"
	"trainload/internal/outcome"
	"trainload/internal/recorder"
	"trainload/internal/synth"
)

// TrainingListTarget names the list request in events and diagnostics.
const TrainingListTarget = "GetTrainingList"

// TrainingListScenario polls the training list and records each successful
// response.
type TrainingListScenario struct {
	cfg   *config.Config
	env   *Env
	query synth.ListQuery
}

func NewTrainingListScenario(cfg *config.Config, env *Env) *TrainingListScenario {
	tl := cfg.TrainingList
	return &TrainingListScenario{
		cfg: cfg,
		env: env,
		query: synth.ListQuery{
			Page:      tl.Page,
			Limit:     tl.Limit,
			FromDate:  tl.FromDate,
			ToDate:    tl.ToDate,
			DateField: tl.DateField,
			Select:    tl.Select,
		},
	}
}

func (s *TrainingListScenario) Name() string { return config.ScenarioTrainingList }

func (s *TrainingListScenario) NewActor(ctx context.Context, actorID int) (core.Actor, error) {
	return &trainingListActor{
		actorBase: newActorBase(s.cfg, s.env, actorID),
		sc:        s,
	}, nil
}

type trainingListActor struct {
	actorBase
	sc *TrainingListScenario
}

func (a *trainingListActor) Iterate(ctx context.Context, rep core.Reporter) error {
	if err := a.wait(ctx); err != nil {
		return err
	}

	seq := a.next()
	req, err := a.builder.TrainingList(ctx, a.sc.query)
	if err != nil {
		return err
	}

	ts := a.env.clock().Now()
	resp, out := a.exchange(ctx, rep, seq, TrainingListTarget, outcome.TrainingListPolicy, req)
	if !out.OK() {
		return nil
	}

	if a.sc.cfg.TrainingList.DumpResponse && a.env.Dump != nil {
		_, _ = a.env.Dump.Write(pretty.Pretty(resp.Body))
	}

	if a.env.Log == nil {
		return nil
	}
	rec := recorder.TrainingListRecord{
		Sequence:   seq,
		Timestamp:  ts,
		StatusCode: out.StatusCode,
		Latency:    resp.Latency,
		Summary:    recorder.SummarizeTrainingList(out.Body),
	}
	if err := a.env.Log.Append(rec.Row()); err != nil {
		if errors.Is(err, recorder.ErrClosed) {
			a.log.Debug("response log closed, row dropped", zap.Int64("seq", seq))
		} else {
			a.log.Error("writing response log", zap.Int64("seq", seq), zap.Error(err))
		}
	}
	return nil
}
