package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/runoshun/tpaws/internal/domain"
)

// FinishReleaseInput contains the parameters for finishing a release.
type FinishReleaseInput struct {
	DryRun bool
}

// FinishReleaseOutput contains the released version.
type FinishReleaseOutput struct {
	Version string
	Branch  string
}

// FinishRelease is the use case for closing a git-flow release.
type FinishRelease struct {
	git      domain.Git
	manifest domain.ManifestStore
	progress domain.Progress
}

// NewFinishRelease creates a new FinishRelease use case.
func NewFinishRelease(git domain.Git, manifest domain.ManifestStore, progress domain.Progress) *FinishRelease {
	return &FinishRelease{git: git, manifest: manifest, progress: progress}
}

// Execute finishes the release, pushes master, develop and tags, and
// deletes the remote release branch. The version comes from the current
// release/ branch, or from the manifest.
func (uc *FinishRelease) Execute(ctx context.Context, in FinishReleaseInput) (*FinishReleaseOutput, error) {
	version, err := uc.version()
	if err != nil {
		return nil, err
	}
	out := &FinishReleaseOutput{Version: version, Branch: domain.ReleaseBranch(version)}
	if in.DryRun {
		return out, nil
	}

	if err := uc.git.ReleaseFinish(ctx, version); err != nil {
		return nil, fmt.Errorf("failed to finish release: %w", err)
	}

	steps := []struct {
		message string
		run     func() error
	}{
		{"Pushing " + domain.DefaultMainBranch, func() error {
			return uc.git.Push(ctx, domain.DefaultRemote, domain.DefaultMainBranch, false)
		}},
		{"Pushing " + domain.DefaultBaseBranch, func() error {
			return uc.git.Push(ctx, domain.DefaultRemote, domain.DefaultBaseBranch, false)
		}},
		{"Pushing tags", func() error {
			return uc.git.PushTags(ctx, domain.DefaultRemote)
		}},
		{"Deleting " + out.Branch, func() error {
			return uc.git.DeleteRemoteBranch(ctx, domain.DefaultRemote, out.Branch)
		}},
	}
	for _, step := range steps {
		task := uc.progress.Start(step.message)
		if err := step.run(); err != nil {
			task.Fail(step.message)
			return nil, fmt.Errorf("%s: %w", strings.ToLower(step.message), err)
		}
		task.Done("")
	}
	return out, nil
}

func (uc *FinishRelease) version() (string, error) {
	if branch, err := uc.git.CurrentBranch(); err == nil {
		if v, ok := strings.CutPrefix(branch, domain.ReleaseBranch("")); ok && domain.IsValidVersion(v) {
			return v, nil
		}
	}
	v, _, err := uc.manifest.ReadVersion()
	if err != nil {
		return "", fmt.Errorf("read version: %w", err)
	}
	return v.String(), nil
}
