package usecase

import (
	"context"
	"strconv"

	"github.com/runoshun/tpaws/internal/domain"
)

// TicketField selects what LookupTicket returns.
type TicketField int

// Lookup fields.
const (
	TicketFieldID TicketField = iota
	TicketFieldLink
	TicketFieldBranch
	TicketFieldProject
)

// LookupTicketInput contains the parameters for a single-value lookup.
type LookupTicketInput struct {
	IDOrURL string // Ticket id, URL or branch; empty means the current branch
	Field   TicketField
}

// LookupTicketOutput contains the value to print.
type LookupTicketOutput struct {
	Value string
}

// LookupTicket backs the link, get-id, get-branch and get-project commands.
type LookupTicket struct {
	git      domain.Git
	tickets  domain.TicketService
	projects domain.ProjectConfigStore
}

// NewLookupTicket creates a new LookupTicket use case.
func NewLookupTicket(git domain.Git, tickets domain.TicketService, projects domain.ProjectConfigStore) *LookupTicket {
	return &LookupTicket{git: git, tickets: tickets, projects: projects}
}

// Execute resolves the ticket id and, when the field needs it, the ticket.
// The id and link never hit the network.
func (uc *LookupTicket) Execute(ctx context.Context, in LookupTicketInput) (*LookupTicketOutput, error) {
	id, err := resolveTicketID(uc.git, in.IDOrURL)
	if err != nil {
		return nil, err
	}

	switch in.Field {
	case TicketFieldID:
		return &LookupTicketOutput{Value: strconv.Itoa(id)}, nil
	case TicketFieldLink:
		if uc.tickets == nil {
			return nil, domain.ErrTargetProcessNotConfigured
		}
		return &LookupTicketOutput{Value: domain.TicketLink(uc.tickets.BaseURL(), id)}, nil
	}

	ticket, err := fetchTicket(ctx, uc.tickets, id)
	if err != nil {
		return nil, err
	}
	if in.Field == TicketFieldBranch {
		return &LookupTicketOutput{Value: ticket.BranchName()}, nil
	}

	if ticket.Project != nil && ticket.Project.Name != "" {
		return &LookupTicketOutput{Value: ticket.Project.Name}, nil
	}
	project := loadProjectName(uc.projects, "")
	if project == "" {
		return nil, domain.ErrProjectNotResolved
	}
	return &LookupTicketOutput{Value: project}, nil
}
