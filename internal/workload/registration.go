package workload

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"trainload/internal/config"
	"trainload/internal/core"
	"trainload/internal/data"
	"trainload/internal/outcome"
	"trainload/internal/synth"
)

// MainTarget names registrations for the main training.
const MainTarget = "MainTraining"

type taskKind int

const (
	taskMain taskKind = iota
	taskAlternative
	taskRandom
)

// RegistrationScenario registers actors for trainings of the catalog,
// weighting main/alternative/random tasks as configured.
type RegistrationScenario struct {
	cfg   *config.Config
	env   *Env
	tasks *Weighted[taskKind]
	main  config.TrainingEntry
	alts  []config.TrainingEntry
	meta  synth.Meta
}

func NewRegistrationScenario(cfg *config.Config, env *Env) (*RegistrationScenario, error) {
	r := cfg.Registration
	tasks, err := NewWeighted(
		Choice[taskKind]{Weight: r.Weights.Main, Value: taskMain},
		Choice[taskKind]{Weight: r.Weights.Alternative, Value: taskAlternative},
		Choice[taskKind]{Weight: r.Weights.Random, Value: taskRandom},
	)
	if err != nil {
		return nil, fmt.Errorf("registration weights: %w", err)
	}
	main, ok := r.Lookup(r.MainTraining)
	if !ok {
		return nil, fmt.Errorf("main training %q is not in the catalog", r.MainTraining)
	}
	alts := r.Alternatives()
	if r.Weights.Alternative > 0 && len(alts) == 0 {
		return nil, errors.New("alternative registrations are weighted but the catalog has only the main training")
	}
	return &RegistrationScenario{
		cfg:   cfg,
		env:   env,
		tasks: tasks,
		main:  main,
		alts:  alts,
		meta:  synth.Meta{Designation: r.Designation, LastEducation: r.LastEducation},
	}, nil
}

func (s *RegistrationScenario) Name() string { return config.ScenarioRegistration }

// NewActor binds one random user of the dataset. Without a usable dataset the
// actor keeps running but its tasks send nothing.
func (s *RegistrationScenario) NewActor(ctx context.Context, actorID int) (core.Actor, error) {
	a := &registrationActor{
		actorBase: newActorBase(s.cfg, s.env, actorID),
		sc:        s,
	}

	users, err := data.LoadUsers(s.cfg.Fixtures.Users)
	if err != nil {
		a.log.Warn("user fixture unavailable, registrations disabled for actor", zap.Error(err))
		return a, nil
	}
	user := users.Pick(a.rng)
	a.user = &user
	a.log.Debug("user assigned", zap.String("email", user.Email), zap.Int("users", users.Len()))
	return a, nil
}

type registrationActor struct {
	actorBase
	sc   *RegistrationScenario
	user *data.UserFixture
}

// Degraded reports whether the actor has no user fixture.
func (a *registrationActor) Degraded() bool {
	return a.user == nil
}

func (a *registrationActor) Iterate(ctx context.Context, rep core.Reporter) error {
	entry, target := a.pick()

	if err := a.wait(ctx); err != nil {
		return err
	}
	if a.user == nil {
		a.log.Warn("no user data available for registration", zap.String("target", target))
		return nil
	}

	seq := a.next()
	reg := synth.NewRegistration(*a.user, seq, entry.ID, a.sc.meta)
	a.log.Debug("registering",
		zap.Int64("seq", seq),
		zap.String("email", reg.Email),
		zap.String("training", entry.Name))

	req, err := a.builder.Registration(ctx, reg)
	if err != nil {
		return err
	}

	_, out := a.exchange(ctx, rep, seq, target, outcome.RegistrationPolicy, req)
	if out.OK() {
		id := out.Body.Get("response._id").String()
		if id == "" {
			id = "Unknown"
		}
		a.log.Debug("registered",
			zap.Int64("seq", seq),
			zap.String("email", reg.Email),
			zap.String("registration_id", id))
	}
	return nil
}

// pick draws the task and the training it targets.
func (a *registrationActor) pick() (config.TrainingEntry, string) {
	catalog := a.sc.cfg.Registration.Catalog
	switch a.sc.tasks.Pick(a.rng) {
	case taskAlternative:
		e := a.sc.alts[a.rng.Intn(len(a.sc.alts))]
		return e, "AltTraining-" + e.Name
	case taskRandom:
		e := catalog[a.rng.Intn(len(catalog))]
		return e, "RandomTraining-" + e.Name
	default:
		return a.sc.main, MainTarget
	}
}
