package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/runoshun/tpaws/internal/domain"
)

// FinishTicketInput contains the parameters for finishing a ticket.
type FinishTicketInput struct {
	IDOrURL  string // Ticket id or URL; empty means the current branch
	NoGit    bool   // Skip git flow feature finish
	NoStatus bool   // Skip the state change
	DryRun   bool
}

// FinishTicketOutput contains the result of finishing a ticket.
type FinishTicketOutput struct {
	Ticket      *domain.Ticket
	Feature     string // Feature name passed to git flow
	Finished    bool
	StateUpdate string // Warning when the state change failed; empty on success
	Staged      bool   // Ticket moved to In Staging
}

// FinishTicket is the use case for closing the feature branch of a ticket.
type FinishTicket struct {
	git     domain.Git
	tickets domain.TicketService
	logger  *slog.Logger
}

// NewFinishTicket creates a new FinishTicket use case.
func NewFinishTicket(git domain.Git, tickets domain.TicketService, logger *slog.Logger) *FinishTicket {
	return &FinishTicket{git: git, tickets: tickets, logger: discardLogger(logger)}
}

// Execute finishes the git-flow feature and moves user stories to
// In Staging. The state change is best-effort: a failure is reported in
// the output, not as an error.
func (uc *FinishTicket) Execute(ctx context.Context, in FinishTicketInput) (*FinishTicketOutput, error) {
	id, err := resolveTicketID(uc.git, in.IDOrURL)
	if err != nil {
		return nil, err
	}
	ticket, err := fetchTicket(ctx, uc.tickets, id)
	if err != nil {
		return nil, err
	}

	out := &FinishTicketOutput{Ticket: ticket, Feature: ticket.BranchName()}
	if in.IDOrURL == "" {
		branch, err := uc.git.CurrentBranch()
		if err != nil {
			return nil, fmt.Errorf("get current branch: %w", err)
		}
		if name, ok := strings.CutPrefix(branch, domain.FeatureBranch("")); ok {
			out.Feature = name
		}
	}

	if in.DryRun {
		return out, nil
	}

	if !in.NoGit {
		if err := uc.git.FeatureFinish(ctx, out.Feature); err != nil {
			return nil, fmt.Errorf("finish feature: %w", err)
		}
		out.Finished = true
	}

	if in.NoStatus || !ticket.IsUserStory() {
		return out, nil
	}
	if err := uc.tickets.UpdateState(ctx, ticket.ID, domain.EntityStateInStaging); err != nil {
		uc.logger.Warn("ticket state not updated", "ticket", ticket.ID, "error", err)
		out.StateUpdate = err.Error()
		return out, nil
	}
	out.Staged = true
	return out, nil
}
