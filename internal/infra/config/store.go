// Package config persists the global and per-project configuration.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/runoshun/tpaws/internal/domain"
	"github.com/runoshun/tpaws/internal/infra/ai"
	"github.com/runoshun/tpaws/internal/infra/logging"
	"github.com/runoshun/tpaws/internal/infra/slack"
	"github.com/runoshun/tpaws/internal/infra/targetprocess"
)

// FileName is the global config file name.
const FileName = "config.json"

// AppDirName is the directory created under the user config dir.
const AppDirName = "tpaws"

// Ensure Store implements domain.ConfigStore.
var _ domain.ConfigStore = (*Store)(nil)

// Store reads and writes <dir>/config.json.
type Store struct {
	getenv func(string) string
	dir    string
}

// NewStore creates a Store rooted at dir. Environment overrides are read
// with os.Getenv.
func NewStore(dir string) *Store {
	return &Store{dir: dir, getenv: os.Getenv}
}

// NewStoreWithEnv creates a Store with a custom environment lookup.
// This is useful for testing.
func NewStoreWithEnv(dir string, getenv func(string) string) *Store {
	return &Store{dir: dir, getenv: getenv}
}

// DefaultDir returns <config home>/tpaws, honoring XDG_CONFIG_HOME.
func DefaultDir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		var err error
		configHome, err = os.UserConfigDir()
		if err != nil {
			return ""
		}
	}
	return filepath.Join(configHome, AppDirName)
}

// LogsDir returns the logs directory under a config dir.
func LogsDir(dir string) string {
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "logs")
}

// Path returns the config file location.
func (s *Store) Path() string {
	return filepath.Join(s.dir, FileName)
}

// Exists reports whether the config file has been written.
func (s *Store) Exists() bool {
	if s.dir == "" {
		return false
	}
	_, err := os.Stat(s.Path())
	return err == nil
}

// Load reads the config file and applies environment overrides.
func (s *Store) Load() (*domain.Config, error) {
	data, err := os.ReadFile(s.Path())
	if errors.Is(err, os.ErrNotExist) {
		return nil, domain.ErrConfigNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg domain.Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", s.Path(), err)
	}
	s.applyEnv(&cfg)
	return &cfg, nil
}

// Defaults returns an empty config with environment overrides applied.
func (s *Store) Defaults() *domain.Config {
	var cfg domain.Config
	s.applyEnv(&cfg)
	return &cfg
}

// Save writes the config file, creating the directory if needed.
// Values that only came from the environment are not written: a field
// equal to its environment override keeps the value already on disk.
func (s *Store) Save(cfg *domain.Config) error {
	if s.dir == "" {
		return errors.New("config directory not available")
	}
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	out := *cfg
	s.stripEnv(&out, s.readFile())
	data, err := json.MarshalIndent(&out, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(s.Path(), append(data, '\n'), 0600)
}

// readFile returns the config on disk without environment overrides,
// or an empty config when it cannot be read.
func (s *Store) readFile() *domain.Config {
	var cfg domain.Config
	data, err := os.ReadFile(s.Path())
	if err != nil {
		return &cfg
	}
	_ = json.Unmarshal(data, &cfg)
	return &cfg
}

// envField binds a config field to the variable overriding it.
type envField struct {
	field func(*domain.Config) *string
	key   string
}

var envFields = []envField{
	{func(c *domain.Config) *string { return &c.TPURL }, targetprocess.BaseURLEnv},
	{func(c *domain.Config) *string { return &c.TPToken }, targetprocess.TokenEnv},
	{func(c *domain.Config) *string { return &c.SlackUserID }, slack.UserIDEnv},
	{func(c *domain.Config) *string { return &c.SlackWebhookURL }, slack.WebhookURLEnv},
}

func aiKeyEnv(cfg *domain.Config) string {
	if cfg.AIProviderOrDefault() == ai.ProviderAnthropic {
		return ai.AnthropicAPIKeyEnv
	}
	return ai.GroqAPIKeyEnv
}

// applyEnv overlays non-empty environment variables on cfg. The AI key
// from the environment only fills an empty key.
func (s *Store) applyEnv(cfg *domain.Config) {
	for _, f := range envFields {
		if v := s.getenv(f.key); v != "" {
			*f.field(cfg) = v
		}
	}
	if cfg.AIAPIKey == "" {
		cfg.AIAPIKey = s.getenv(aiKeyEnv(cfg))
	}
	if logging.ParseBool(s.getenv(logging.DebugEnv)) {
		cfg.Debug = true
	}
}

// stripEnv reverts fields holding their environment value to the
// persisted ones.
func (s *Store) stripEnv(cfg, persisted *domain.Config) {
	for _, f := range envFields {
		if v := s.getenv(f.key); v != "" && *f.field(cfg) == v {
			*f.field(cfg) = *f.field(persisted)
		}
	}
	if v := s.getenv(aiKeyEnv(cfg)); v != "" && cfg.AIAPIKey == v {
		cfg.AIAPIKey = persisted.AIAPIKey
	}
}
