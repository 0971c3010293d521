package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/runoshun/tpaws/internal/domain"
)

// ResetConfigOutput contains the saved config.
type ResetConfigOutput struct {
	Config *domain.Config
	User   *domain.User
	Path   string
}

// ResetConfig is the use case for the interactive configuration wizard.
type ResetConfig struct {
	git        domain.Git
	configs    domain.ConfigStore
	prompter   domain.Prompter
	newTickets domain.TicketServiceFactory
}

// NewResetConfig creates a new ResetConfig use case.
func NewResetConfig(
	git domain.Git,
	configs domain.ConfigStore,
	prompter domain.Prompter,
	newTickets domain.TicketServiceFactory,
) *ResetConfig {
	return &ResetConfig{git: git, configs: configs, prompter: prompter, newTickets: newTickets}
}

// Execute walks through every setting, using the current TargetProcess user
// and git identity as defaults, and saves the result. The AWS session is
// cleared so the next pr command logs in again.
func (uc *ResetConfig) Execute(ctx context.Context) (*ResetConfigOutput, error) {
	cfg, err := uc.configs.Load()
	if errors.Is(err, domain.ErrConfigNotFound) {
		cfg = uc.configs.Defaults()
	} else if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	askedTP := false
	if !cfg.HasTargetProcess() {
		fix, err := uc.prompter.Confirm("Invalid configuration detected. Do you want to fix this now?", true)
		if err != nil {
			return nil, err
		}
		if !fix {
			return nil, fmt.Errorf("please make sure to have the correct configuration before continuing: %w", domain.ErrTargetProcessNotConfigured)
		}
		if err := uc.askTargetProcess(cfg); err != nil {
			return nil, err
		}
		askedTP = true
	}

	me, err := uc.newTickets(cfg.TPURL, cfg.TPToken).CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("get current user: %w", err)
	}

	name := uc.gitConfig("user.name", me.FullName())
	email := uc.gitConfig("user.email", me.Email)

	if cfg.PRName, err = uc.ask("Your full name:", name); err != nil {
		return nil, err
	}
	if cfg.PREmail, err = uc.ask("Your email:", email); err != nil {
		return nil, err
	}

	username := me.Login
	if cfg.PRName != "" {
		username = strings.ToLower(strings.Join(strings.Fields(cfg.PRName), "."))
	}
	if cfg.Username, err = uc.ask("TP Username:", username); err != nil {
		return nil, err
	}

	keyTitle := "Groq API Key:"
	if cfg.AIProviderOrDefault() == "anthropic" {
		keyTitle = "Anthropic API Key:"
	}
	if cfg.AIAPIKey, err = uc.ask(keyTitle, cfg.AIAPIKey); err != nil {
		return nil, err
	}
	if cfg.AIModel, err = uc.ask("AI Model:", cfg.AIModelOrDefault()); err != nil {
		return nil, err
	}

	if !askedTP {
		if err := uc.askTargetProcess(cfg); err != nil {
			return nil, err
		}
	}

	cfg.UserID = me.ID
	cfg.ARN = ""
	cfg.LastAuth = nil
	if err := uc.configs.Save(cfg); err != nil {
		return nil, fmt.Errorf("save config: %w", err)
	}
	return &ResetConfigOutput{Config: cfg, User: me, Path: uc.configs.Path()}, nil
}

func (uc *ResetConfig) askTargetProcess(cfg *domain.Config) error {
	url, err := uc.prompter.Input("Target Process base url:", cfg.TPURL, "https://my-company.tpondemand.com")
	if err != nil {
		return err
	}
	token, err := uc.prompter.Input("Target Process access token:", cfg.TPToken, "")
	if err != nil {
		return err
	}
	cfg.TPURL = strings.TrimRight(strings.TrimSpace(url), "/")
	cfg.TPToken = strings.TrimSpace(token)
	if !cfg.HasTargetProcess() {
		return domain.ErrTargetProcessNotConfigured
	}
	return nil
}

// ask returns the answer, or def when the answer is blank.
func (uc *ResetConfig) ask(title, def string) (string, error) {
	v, err := uc.prompter.Input(title, def, "")
	if err != nil {
		return "", err
	}
	if v = strings.TrimSpace(v); v == "" {
		return def, nil
	}
	return v, nil
}

func (uc *ResetConfig) gitConfig(key, fallback string) string {
	if uc.git == nil {
		return fallback
	}
	v, err := uc.git.ConfigValue(key)
	if err != nil || v == "" {
		return fallback
	}
	return v
}
