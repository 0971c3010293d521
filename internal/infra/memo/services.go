package memo

import (
	"context"
	"strings"

	"github.com/runoshun/tpaws/internal/domain"
)

// TicketService memoizes ticket and current-user lookups.
// Mutations pass through untouched.
type TicketService struct {
	domain.TicketService
	tickets *Cache[int, *domain.Ticket]
	me      *Cache[struct{}, *domain.User]
}

var _ domain.TicketService = (*TicketService)(nil)

// NewTicketService wraps inner with a process-scoped cache.
func NewTicketService(inner domain.TicketService) *TicketService {
	return &TicketService{
		TicketService: inner,
		tickets:       NewCache[int, *domain.Ticket](),
		me:            NewCache[struct{}, *domain.User](),
	}
}

// GetTicket returns the cached ticket for id.
func (s *TicketService) GetTicket(ctx context.Context, id int) (*domain.Ticket, error) {
	return s.tickets.Get(id, func() (*domain.Ticket, error) {
		return s.TicketService.GetTicket(ctx, id)
	})
}

// CurrentUser returns the cached current user.
func (s *TicketService) CurrentUser(ctx context.Context) (*domain.User, error) {
	return s.me.Get(struct{}{}, func() (*domain.User, error) {
		return s.TicketService.CurrentUser(ctx)
	})
}

type listKey struct {
	profile    string
	repository string
	status     domain.PullRequestStatus
	author     string
}

type prKey struct {
	profile string
	id      string
}

// CodeCommit memoizes region lookups and pull request reads.
type CodeCommit struct {
	domain.CodeCommit
	regions *Cache[string, string]
	lists   *Cache[listKey, []string]
	prs     *Cache[prKey, *domain.PullRequest]
}

var _ domain.CodeCommit = (*CodeCommit)(nil)

// NewCodeCommit wraps inner with a process-scoped cache.
func NewCodeCommit(inner domain.CodeCommit) *CodeCommit {
	return &CodeCommit{
		CodeCommit: inner,
		regions:    NewCache[string, string](),
		lists:      NewCache[listKey, []string](),
		prs:        NewCache[prKey, *domain.PullRequest](),
	}
}

// Region returns the cached region of a profile.
func (c *CodeCommit) Region(ctx context.Context, profile string) (string, error) {
	return c.regions.Get(profile, func() (string, error) {
		return c.CodeCommit.Region(ctx, profile)
	})
}

// ListPullRequests returns the cached pull request ids.
func (c *CodeCommit) ListPullRequests(ctx context.Context, profile, repository string, status domain.PullRequestStatus, authorARN string) ([]string, error) {
	key := listKey{profile: profile, repository: repository, status: status, author: authorARN}
	return c.lists.Get(key, func() ([]string, error) {
		return c.CodeCommit.ListPullRequests(ctx, profile, repository, status, authorARN)
	})
}

// GetPullRequest returns the cached pull request.
func (c *CodeCommit) GetPullRequest(ctx context.Context, profile, id string) (*domain.PullRequest, error) {
	key := prKey{profile: profile, id: strings.TrimSpace(id)}
	return c.prs.Get(key, func() (*domain.PullRequest, error) {
		return c.CodeCommit.GetPullRequest(ctx, profile, id)
	})
}
