package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/runoshun/tpaws/internal/domain"
)

// Ensure ProjectStore implements domain.ProjectConfigStore.
var _ domain.ProjectConfigStore = (*ProjectStore)(nil)

// ProjectStore reads and writes tpaws.json in the repository root.
type ProjectStore struct {
	root string
}

// NewProjectStore creates a ProjectStore for a repository root.
func NewProjectStore(root string) *ProjectStore {
	return &ProjectStore{root: root}
}

// Path returns the project config location.
func (s *ProjectStore) Path() string {
	return filepath.Join(s.root, domain.ProjectConfigFile)
}

// Exists reports whether tpaws.json exists.
func (s *ProjectStore) Exists() bool {
	if s.root == "" {
		return false
	}
	_, err := os.Stat(s.Path())
	return err == nil
}

// Load reads tpaws.json. Returns ErrConfigNotFound if missing.
func (s *ProjectStore) Load() (*domain.ProjectConfig, error) {
	if s.root == "" {
		return nil, domain.ErrConfigNotFound
	}
	data, err := os.ReadFile(s.Path())
	if errors.Is(err, os.ErrNotExist) {
		return nil, domain.ErrConfigNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read project config: %w", err)
	}
	var cfg domain.ProjectConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.Path(), err)
	}
	return &cfg, nil
}

// Save writes tpaws.json.
func (s *ProjectStore) Save(cfg *domain.ProjectConfig) error {
	if s.root == "" {
		return domain.ErrNotGitRepository
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode project config: %w", err)
	}
	return os.WriteFile(s.Path(), append(data, '\n'), 0644)
}
