package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/runoshun/tpaws/internal/domain"
)

// StartTicketInput contains the parameters for starting work on a ticket.
type StartTicketInput struct {
	IDOrURL  string // Ticket id or URL; empty shows a picker
	Branch   string // Feature name override
	Project  string // Project used when tpaws.json has none
	NoGit    bool   // Skip git flow feature start
	NoAssign bool   // Skip assignment and state change
	DryRun   bool   // Resolve everything but change nothing
}

// StartTicketOutput contains the result of starting a ticket.
type StartTicketOutput struct {
	Ticket    *domain.Ticket
	Branch    string // Feature name passed to git flow
	NoTickets bool   // The picker had nothing to offer
	Assigned  bool
	Started   bool // Feature branch created
}

// StartTicket is the use case for picking up a ticket.
type StartTicket struct {
	git      domain.Git
	tickets  domain.TicketService
	configs  domain.ConfigStore
	projects domain.ProjectConfigStore
	prompter domain.Prompter
	logger   *slog.Logger
}

// NewStartTicket creates a new StartTicket use case.
func NewStartTicket(
	git domain.Git,
	tickets domain.TicketService,
	configs domain.ConfigStore,
	projects domain.ProjectConfigStore,
	prompter domain.Prompter,
	logger *slog.Logger,
) *StartTicket {
	return &StartTicket{
		git:      git,
		tickets:  tickets,
		configs:  configs,
		projects: projects,
		prompter: prompter,
		logger:   discardLogger(logger),
	}
}

// Execute runs the start sequence:
// 1. Resolve the project (tpaws.json, then the flag)
// 2. Without an id, list the sprint's open tickets and ask for one
// 3. Fetch the ticket
// 4. Assign it and move user stories to In Progress
// 5. Start the git-flow feature branch
//
// When the picker list is empty nothing else is called.
func (uc *StartTicket) Execute(ctx context.Context, in StartTicketInput) (*StartTicketOutput, error) {
	if uc.tickets == nil {
		return nil, domain.ErrTargetProcessNotConfigured
	}

	project := loadProjectName(uc.projects, in.Project)
	if project == "" {
		return nil, domain.ErrProjectNotResolved
	}

	var id int
	if in.IDOrURL == "" {
		picked, ok, err := uc.pick(ctx, project)
		if err != nil {
			return nil, err
		}
		if !ok {
			return &StartTicketOutput{NoTickets: true}, nil
		}
		id = picked
	} else {
		resolved, ok := domain.ResolveTicketID(in.IDOrURL)
		if !ok {
			return nil, fmt.Errorf("%w from %q", domain.ErrTicketIDNotFound, in.IDOrURL)
		}
		id = resolved
	}

	ticket, err := fetchTicket(ctx, uc.tickets, id)
	if err != nil {
		return nil, err
	}
	out := &StartTicketOutput{Ticket: ticket, Branch: in.Branch}
	if out.Branch == "" {
		out.Branch = ticket.BranchName()
	}

	if in.DryRun {
		return out, nil
	}

	if !in.NoAssign {
		cfg, err := uc.configs.Load()
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		if err := uc.tickets.Assign(ctx, ticket.ID, cfg.UserID); err != nil {
			return nil, fmt.Errorf("assign ticket: %w", err)
		}
		if ticket.IsUserStory() {
			if err := uc.tickets.UpdateState(ctx, ticket.ID, domain.EntityStateInProgress); err != nil {
				return nil, fmt.Errorf("update ticket state: %w", err)
			}
		}
		out.Assigned = true
		uc.logger.Info("ticket assigned", "ticket", ticket.ID, "user", cfg.UserID)
	}

	if !in.NoGit {
		if err := uc.git.FeatureStart(ctx, out.Branch); err != nil {
			return nil, fmt.Errorf("start feature: %w", err)
		}
		out.Started = true
	}
	return out, nil
}

// pick lists the pickable sprint tickets and asks for one. Returns false
// when there is nothing to pick.
func (uc *StartTicket) pick(ctx context.Context, project string) (int, bool, error) {
	all, err := uc.tickets.CurrentSprintTickets(ctx, project)
	if err != nil {
		return 0, false, fmt.Errorf("list sprint tickets: %w", err)
	}

	byLabel := make(map[string]int)
	var labels []string
	for i := range all {
		t := &all[i]
		state, err := t.State()
		if err != nil || !state.IsPickable() || t.Label() == "" {
			continue
		}
		if _, dup := byLabel[t.Label()]; dup {
			continue
		}
		byLabel[t.Label()] = t.ID
		labels = append(labels, t.Label())
	}
	if len(labels) == 0 {
		uc.logger.Debug("no pickable tickets", "project", project, "fetched", len(all))
		return 0, false, nil
	}

	picked, err := uc.prompter.Select("Pick a user story from the list:", labels)
	if err != nil {
		return 0, false, err
	}
	id, ok := byLabel[picked]
	if !ok {
		return 0, false, fmt.Errorf("%w from %q", domain.ErrTicketIDNotFound, picked)
	}
	return id, true, nil
}
