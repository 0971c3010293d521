package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/tpaws/internal/domain"
)

// ViewTicketInput contains the parameters for showing a ticket.
type ViewTicketInput struct {
	IDOrURL string // Ticket id, URL or branch; empty means the current branch
	Web     bool   // Open the ticket in the browser instead
}

// ViewTicketOutput contains the ticket to display.
type ViewTicketOutput struct {
	Ticket *domain.Ticket
	Link   string
	Opened bool
}

// ViewTicket is the use case for showing a ticket.
type ViewTicket struct {
	git     domain.Git
	tickets domain.TicketService
	browser domain.Browser
}

// NewViewTicket creates a new ViewTicket use case.
func NewViewTicket(git domain.Git, tickets domain.TicketService, browser domain.Browser) *ViewTicket {
	return &ViewTicket{git: git, tickets: tickets, browser: browser}
}

// Execute fetches the ticket and optionally opens it in the browser.
func (uc *ViewTicket) Execute(ctx context.Context, in ViewTicketInput) (*ViewTicketOutput, error) {
	id, err := resolveTicketID(uc.git, in.IDOrURL)
	if err != nil {
		return nil, err
	}
	ticket, err := fetchTicket(ctx, uc.tickets, id)
	if err != nil {
		return nil, err
	}

	out := &ViewTicketOutput{
		Ticket: ticket,
		Link:   domain.TicketLink(uc.tickets.BaseURL(), ticket.ID),
	}
	if in.Web {
		if err := uc.browser.Open(out.Link); err != nil {
			return nil, fmt.Errorf("open ticket: %w", err)
		}
		out.Opened = true
	}
	return out, nil
}
