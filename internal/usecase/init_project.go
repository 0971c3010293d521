package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/tpaws/internal/domain"
)

// projectPageSize is the page size used when listing TargetProcess projects.
const projectPageSize = 200

// InitProjectInput contains the parameters for writing tpaws.json.
type InitProjectInput struct {
	Project string // Project name; skips the picker
	Force   bool   // Overwrite an existing tpaws.json
	DryRun  bool   // Return the config without writing it
}

// InitProjectOutput contains the result of the init.
type InitProjectOutput struct {
	Config             *domain.ProjectConfig
	AlreadyInitialized bool
	Saved              bool
}

// InitProject is the use case for binding a repository to a TargetProcess
// project.
type InitProject struct {
	tickets  domain.TicketService
	projects domain.ProjectConfigStore
	prompter domain.Prompter
}

// NewInitProject creates a new InitProject use case.
func NewInitProject(tickets domain.TicketService, projects domain.ProjectConfigStore, prompter domain.Prompter) *InitProject {
	return &InitProject{tickets: tickets, projects: projects, prompter: prompter}
}

// Execute picks a project and writes tpaws.json. Without TargetProcess the
// project name is asked for directly.
func (uc *InitProject) Execute(ctx context.Context, in InitProjectInput) (*InitProjectOutput, error) {
	if uc.projects.Exists() && !in.Force {
		return &InitProjectOutput{AlreadyInitialized: true}, nil
	}

	cfg := &domain.ProjectConfig{Name: in.Project}
	if existing, err := uc.projects.Load(); err == nil {
		copied := *existing
		copied.Name = in.Project
		cfg = &copied
	}

	if cfg.Name == "" {
		ref, err := uc.pick(ctx)
		if err != nil {
			return nil, err
		}
		cfg.Name = ref.Name
		cfg.ProjectID = ref.ID
	}
	if cfg.Name == "" {
		return nil, domain.ErrProjectNotResolved
	}

	out := &InitProjectOutput{Config: cfg}
	if in.DryRun {
		return out, nil
	}
	if err := uc.projects.Save(cfg); err != nil {
		return nil, fmt.Errorf("save project config: %w", err)
	}
	out.Saved = true
	return out, nil
}

func (uc *InitProject) pick(ctx context.Context) (domain.ProjectRef, error) {
	if uc.tickets == nil {
		name, err := uc.prompter.Input("Project name:", "", "")
		if err != nil {
			return domain.ProjectRef{}, err
		}
		return domain.ProjectRef{Name: name}, nil
	}

	var all []domain.ProjectRef
	for skip := 0; ; skip += projectPageSize {
		page, err := uc.tickets.Projects(ctx, skip, projectPageSize)
		if err != nil {
			return domain.ProjectRef{}, fmt.Errorf("list projects: %w", err)
		}
		all = append(all, page...)
		if len(page) < projectPageSize {
			break
		}
	}
	if len(all) == 0 {
		return domain.ProjectRef{}, domain.ErrProjectNotResolved
	}

	byLabel := make(map[string]domain.ProjectRef, len(all))
	labels := make([]string, 0, len(all))
	for _, p := range all {
		label := p.Display()
		if _, dup := byLabel[label]; dup {
			continue
		}
		byLabel[label] = p
		labels = append(labels, label)
	}

	picked, err := uc.prompter.Select("Pick a project from the list:", labels)
	if err != nil {
		return domain.ProjectRef{}, err
	}
	return byLabel[picked], nil
}
