package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/tpaws/internal/domain"
)

// EnsureAuthInput contains the parameters for refreshing AWS credentials.
type EnsureAuthInput struct {
	Profile string // AWS profile
}

// EnsureAuthOutput contains the result of the auth check.
type EnsureAuthOutput struct {
	Config    *domain.Config
	Refreshed bool
}

// EnsureAuth logs in through AWS SSO when the recorded session expired.
type EnsureAuth struct {
	configs domain.ConfigStore
	aws     domain.CodeCommit
	clock   domain.Clock
}

// NewEnsureAuth creates a new EnsureAuth use case.
func NewEnsureAuth(configs domain.ConfigStore, aws domain.CodeCommit, clock domain.Clock) *EnsureAuth {
	return &EnsureAuth{configs: configs, aws: aws, clock: clock}
}

// Execute refreshes the session if older than domain.AuthTTL and records
// the caller ARN in the config.
func (uc *EnsureAuth) Execute(ctx context.Context, in EnsureAuthInput) (*EnsureAuthOutput, error) {
	cfg, err := uc.configs.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	now := uc.clock.Now()
	if !cfg.IsAuthExpired(now) {
		return &EnsureAuthOutput{Config: cfg}, nil
	}

	if err := uc.aws.Login(ctx, in.Profile); err != nil {
		return nil, fmt.Errorf("aws sso login: %w", err)
	}
	identity, err := uc.aws.CallerIdentity(ctx, in.Profile)
	if err != nil {
		return nil, fmt.Errorf("get caller identity: %w", err)
	}

	cfg.UpdateAuth(identity.ARN, now)
	if err := uc.configs.Save(cfg); err != nil {
		return nil, fmt.Errorf("save config: %w", err)
	}
	return &EnsureAuthOutput{Config: cfg, Refreshed: true}, nil
}
