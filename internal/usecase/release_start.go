package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/tpaws/internal/domain"
)

// StartReleaseInput contains the parameters for starting a release.
type StartReleaseInput struct {
	Kind   domain.ReleaseKind
	DryRun bool
}

// StartReleaseOutput contains the version change.
type StartReleaseOutput struct {
	Manifest string
	Previous domain.Version
	Next     domain.Version
}

// StartRelease is the use case for opening a git-flow release branch with
// a bumped version.
type StartRelease struct {
	git      domain.Git
	manifest domain.ManifestStore
}

// NewStartRelease creates a new StartRelease use case.
func NewStartRelease(git domain.Git, manifest domain.ManifestStore) *StartRelease {
	return &StartRelease{git: git, manifest: manifest}
}

// Execute bumps the manifest version, starts release/<version> and commits
// the bump on it.
func (uc *StartRelease) Execute(ctx context.Context, in StartReleaseInput) (*StartReleaseOutput, error) {
	prev, file, err := uc.manifest.ReadVersion()
	if err != nil {
		return nil, fmt.Errorf("read version: %w", err)
	}
	out := &StartReleaseOutput{Manifest: file, Previous: prev, Next: prev.Bump(in.Kind)}
	if in.DryRun {
		return out, nil
	}

	version := out.Next.String()
	if err := uc.git.ReleaseStart(ctx, version); err != nil {
		return nil, fmt.Errorf("start release: %w", err)
	}
	if err := uc.manifest.WriteVersion(out.Next); err != nil {
		return nil, fmt.Errorf("write version: %w", err)
	}
	if err := uc.git.CommitFiles(ctx, version, file); err != nil {
		return nil, fmt.Errorf("commit version: %w", err)
	}
	return out, nil
}
