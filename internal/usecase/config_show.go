package usecase

import (
	"fmt"

	"github.com/runoshun/tpaws/internal/domain"
)

// ShowConfigOutput contains the masked config and where it lives.
type ShowConfigOutput struct {
	Config domain.Config
	Path   string
}

// ShowConfig is the use case for printing the global config.
type ShowConfig struct {
	configs domain.ConfigStore
}

// NewShowConfig creates a new ShowConfig use case.
func NewShowConfig(configs domain.ConfigStore) *ShowConfig {
	return &ShowConfig{configs: configs}
}

// Execute loads the config with secrets masked.
func (uc *ShowConfig) Execute() (*ShowConfigOutput, error) {
	cfg, err := uc.configs.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &ShowConfigOutput{Config: cfg.Masked(), Path: uc.configs.Path()}, nil
}
