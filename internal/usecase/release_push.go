package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/runoshun/tpaws/internal/domain"
)

// PushReleaseInput contains the parameters for deploying HEAD.
type PushReleaseInput struct {
	Profile string
	Target  domain.PushTarget
	DryRun  bool
}

// PushedEnvironment is an environment branch that was force-pushed.
type PushedEnvironment struct {
	Environment domain.PushTarget
	Branch      string
}

// PushReleaseOutput contains the pushed branches and, when a pipeline is
// configured, its stages.
type PushReleaseOutput struct {
	Pushed   []PushedEnvironment
	Pipeline string
	Stages   []domain.PipelineStage
}

// PushRelease is the use case for force-pushing HEAD to environment
// branches.
type PushRelease struct {
	git      domain.Git
	aws      domain.CodeCommit
	projects domain.ProjectConfigStore
	prompter domain.Prompter
	progress domain.Progress
	logger   *slog.Logger
}

// NewPushRelease creates a new PushRelease use case.
func NewPushRelease(
	git domain.Git,
	aws domain.CodeCommit,
	projects domain.ProjectConfigStore,
	prompter domain.Prompter,
	progress domain.Progress,
	logger *slog.Logger,
) *PushRelease {
	return &PushRelease{
		git:      git,
		aws:      aws,
		projects: projects,
		prompter: prompter,
		progress: progress,
		logger:   discardLogger(logger),
	}
}

// Execute confirms, then force-pushes HEAD to the branch of every target
// environment, staging first. Pipeline state is informational: failing to
// read it is logged, not returned.
func (uc *PushRelease) Execute(ctx context.Context, in PushReleaseInput) (*PushReleaseOutput, error) {
	project := loadProjectConfig(uc.projects, uc.logger)
	envs := in.Target.Environments()

	branches := make([]string, len(envs))
	for i, env := range envs {
		branches[i] = project.EnvironmentBranch(env)
	}
	ok, err := uc.prompter.Confirm(fmt.Sprintf("Force push HEAD to %v?", branches), false)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrAborted
	}

	out := &PushReleaseOutput{}
	if in.DryRun {
		for i, env := range envs {
			out.Pushed = append(out.Pushed, PushedEnvironment{Environment: env, Branch: branches[i]})
		}
		return out, nil
	}
	for i, env := range envs {
		task := uc.progress.Start(fmt.Sprintf("Pushing to %s", env))
		if err := uc.git.Push(ctx, domain.DefaultRemote, "HEAD:"+branches[i], true); err != nil {
			task.Fail(fmt.Sprintf("Failed %s push", env))
			return nil, fmt.Errorf("push %s: %w", env, err)
		}
		task.Done("")
		out.Pushed = append(out.Pushed, PushedEnvironment{Environment: env, Branch: branches[i]})
	}

	if project == nil || project.Pipeline == "" {
		return out, nil
	}
	out.Pipeline = project.Pipeline
	stages, err := uc.aws.PipelineState(ctx, in.Profile, project.Pipeline)
	if err != nil {
		uc.logger.Warn("pipeline state not loaded", "pipeline", project.Pipeline, "error", err)
		return out, nil
	}
	out.Stages = stages
	return out, nil
}
