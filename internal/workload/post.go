package workload

import (
	"context"
	"fmt"

	"trainload/internal/config"
	"trainload/internal/core"
	"trainload/internal/data"
	"trainload/internal/outcome"
	"trainload/internal/synth"
)

// PostTarget names the post-create request in events and diagnostics.
const PostTarget = "Create Post Fast"

// PostScenario creates posts with an image attachment as fast as the pacing
// allows.
type PostScenario struct {
	cfg *config.Config
	env *Env
}

func NewPostScenario(cfg *config.Config, env *Env) *PostScenario {
	return &PostScenario{cfg: cfg, env: env}
}

func (s *PostScenario) Name() string { return config.ScenarioPost }

// NewActor reads the upload fixture. The post body cannot be built without
// it, so a read failure stops this actor.
func (s *PostScenario) NewActor(ctx context.Context, actorID int) (core.Actor, error) {
	upload, err := data.LoadUpload(s.cfg.Fixtures.Upload)
	if err != nil {
		return nil, fmt.Errorf("actor %d: %w", actorID, err)
	}
	return &postActor{
		actorBase: newActorBase(s.cfg, s.env, actorID),
		post:      s.cfg.Post,
		upload:    upload,
	}, nil
}

type postActor struct {
	actorBase
	post   config.PostConfig
	upload *data.Upload
}

func (a *postActor) Iterate(ctx context.Context, rep core.Reporter) error {
	if err := a.wait(ctx); err != nil {
		return err
	}

	seq := a.next()
	req, err := a.builder.PostCreate(ctx, synth.PostForm{
		Content:     synth.PostContent(a.post.ContentPrefix, a.rng, a.post.MaxSuffix),
		FileName:    a.post.FileName,
		ContentType: a.post.ContentType,
		File:        a.upload.Content,
	})
	if err != nil {
		return err
	}

	a.exchange(ctx, rep, seq, PostTarget, outcome.PostCreatePolicy, req)
	return nil
}
