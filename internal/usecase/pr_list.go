package usecase

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/runoshun/tpaws/internal/domain"
)

// pullRequestFetchLimit bounds concurrent pull request lookups.
const pullRequestFetchLimit = 8

// ListPullRequestsInput contains the parameters for listing pull requests.
type ListPullRequestsInput struct {
	Profile string
	Status  domain.PullRequestStatus // Defaults to OPEN
}

// PullRequestItem is a pull request with its console link.
type PullRequestItem struct {
	PullRequest *domain.PullRequest
	Link        string
}

// ListPullRequestsOutput contains the pull requests in listing order.
type ListPullRequestsOutput struct {
	Items []PullRequestItem
}

// ListPullRequests is the use case for listing the caller's pull requests.
type ListPullRequests struct {
	deps PullRequestDeps
}

// NewListPullRequests creates a new ListPullRequests use case.
func NewListPullRequests(deps PullRequestDeps) *ListPullRequests {
	deps.Logger = discardLogger(deps.Logger)
	return &ListPullRequests{deps: deps}
}

// Execute lists the pull requests authored by the authenticated ARN in the
// repository and fetches their details concurrently. Items keep the order
// CodeCommit listed them in. Pull requests that fail to load are skipped.
func (uc *ListPullRequests) Execute(ctx context.Context, in ListPullRequestsInput) (*ListPullRequestsOutput, error) {
	cfg, err := uc.deps.Configs.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	repository, err := repositoryName(uc.deps.Git)
	if err != nil {
		return nil, err
	}
	status := in.Status
	if status == "" {
		status = domain.PullRequestOpen
	}

	ids, err := uc.deps.AWS.ListPullRequests(ctx, in.Profile, repository, status, cfg.ARN)
	if err != nil {
		return nil, fmt.Errorf("list pull requests: %w", err)
	}
	if len(ids) == 0 {
		return &ListPullRequestsOutput{}, nil
	}
	region, err := uc.deps.AWS.Region(ctx, in.Profile)
	if err != nil {
		return nil, fmt.Errorf("get region: %w", err)
	}

	prs := make([]*domain.PullRequest, len(ids))
	var g errgroup.Group
	g.SetLimit(pullRequestFetchLimit)
	for i, id := range ids {
		g.Go(func() error {
			pr, err := uc.deps.AWS.GetPullRequest(ctx, in.Profile, id)
			if err != nil {
				uc.deps.Logger.Warn("pull request not loaded", "id", id, "error", err)
				return nil
			}
			prs[i] = pr
			return nil
		})
	}
	_ = g.Wait()

	out := &ListPullRequestsOutput{Items: make([]PullRequestItem, 0, len(prs))}
	for _, pr := range prs {
		if pr == nil {
			continue
		}
		out.Items = append(out.Items, PullRequestItem{
			PullRequest: pr,
			Link:        pullRequestLink(region, repository, pr.ID, pr.Targets),
		})
	}
	return out, nil
}
