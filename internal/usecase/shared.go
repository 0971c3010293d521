package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/runoshun/tpaws/internal/domain"
)

// resolveTicketID returns the ticket id from an id, URL or branch argument,
// falling back to the current branch when the argument is empty.
func resolveTicketID(git domain.Git, idOrURL string) (int, error) {
	if idOrURL != "" {
		if id, ok := domain.ResolveTicketID(idOrURL); ok {
			return id, nil
		}
		return 0, fmt.Errorf("%w from %q", domain.ErrTicketIDNotFound, idOrURL)
	}

	branch, err := git.CurrentBranch()
	if err != nil {
		return 0, fmt.Errorf("get current branch: %w", err)
	}
	if id, ok := domain.TicketIDFromBranch(branch); ok {
		return id, nil
	}
	return 0, fmt.Errorf("%w from branch %q", domain.ErrTicketIDNotFound, branch)
}

// fetchTicket loads a ticket, failing when TargetProcess is not configured.
func fetchTicket(ctx context.Context, tickets domain.TicketService, id int) (*domain.Ticket, error) {
	if tickets == nil {
		return nil, domain.ErrTargetProcessNotConfigured
	}
	ticket, err := tickets.GetTicket(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get ticket %d: %w", id, err)
	}
	if ticket == nil {
		return nil, domain.ErrTicketNotFound
	}
	return ticket, nil
}

// repositoryName returns the CodeCommit repository behind origin.
func repositoryName(git domain.Git) (string, error) {
	remote, err := git.RemoteURL(domain.DefaultRemote)
	if err != nil {
		return "", fmt.Errorf("get origin url: %w", err)
	}
	repo := domain.RepositoryFromRemote(remote)
	if repo == "" {
		return "", fmt.Errorf("unable to extract repository from origin %q", remote)
	}
	return repo, nil
}

// pullRequestLink builds the console link, preferring the repository the
// pull request targets over the local one.
func pullRequestLink(region, repository, id string, targets []domain.Target) string {
	if len(targets) > 0 && targets[0].Repository != "" {
		repository = targets[0].Repository
	}
	return domain.PullRequestLink(region, repository, id)
}

// GrabTitle resolves a pull request title. An explicit title is returned
// as-is without any lookup. Otherwise the ticket name is used when
// TargetProcess is configured and the branch carries a ticket id, and the
// branch-derived title in every other case.
func GrabTitle(ctx context.Context, tickets domain.TicketService, title, branch string) (string, error) {
	if title != "" {
		return title, nil
	}
	if tickets == nil {
		return domain.BranchToTitle(branch), nil
	}
	id, ok := domain.TicketIDFromBranch(branch)
	if !ok {
		return domain.BranchToTitle(branch), nil
	}
	ticket, err := fetchTicket(ctx, tickets, id)
	if err != nil {
		return "", err
	}
	return ticket.Name, nil
}

// findPullRequest returns the PR with the given id, or the open PR whose
// source is branch.
func findPullRequest(ctx context.Context, cc domain.CodeCommit, profile, repository, branch, id string) (*domain.PullRequest, error) {
	if id != "" {
		pr, err := cc.GetPullRequest(ctx, profile, id)
		if err != nil {
			return nil, fmt.Errorf("get pull request %s: %w", id, err)
		}
		return pr, nil
	}

	ids, err := cc.ListPullRequests(ctx, profile, repository, domain.PullRequestOpen, "")
	if err != nil {
		return nil, fmt.Errorf("list pull requests: %w", err)
	}
	for _, prID := range ids {
		pr, err := cc.GetPullRequest(ctx, profile, prID)
		if err != nil {
			return nil, fmt.Errorf("get pull request %s: %w", prID, err)
		}
		if pr.HasSource(branch) {
			return pr, nil
		}
	}
	return nil, fmt.Errorf("%w for branch %q", domain.ErrPullRequestNotFound, branch)
}

// loadProjectName returns the project from tpaws.json, then fallback.
func loadProjectName(projects domain.ProjectConfigStore, fallback string) string {
	if projects != nil {
		if cfg, err := projects.Load(); err == nil && cfg.Name != "" {
			return cfg.Name
		}
	}
	return fallback
}

// loadProjectConfig returns tpaws.json, or nil when missing or unreadable.
func loadProjectConfig(projects domain.ProjectConfigStore, logger *slog.Logger) *domain.ProjectConfig {
	if projects == nil {
		return nil
	}
	cfg, err := projects.Load()
	if err != nil {
		if logger != nil {
			logger.Debug("project config not loaded", "error", err)
		}
		return nil
	}
	return cfg
}

func discardLogger(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.New(slog.DiscardHandler)
	}
	return l
}
