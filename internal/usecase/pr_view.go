package usecase

import (
	"context"
	"fmt"
)

// ViewPullRequestInput contains the parameters for showing a pull request.
type ViewPullRequestInput struct {
	Profile  string
	ID       string // Pull request id; empty means the PR of the current branch
	Web      bool   // Open in the browser
	Copy     bool   // Copy the link to the clipboard
	Markdown bool   // Copy a markdown link instead of the bare URL
}

// ViewPullRequestOutput contains what the CLI prints.
type ViewPullRequestOutput struct {
	ID     string
	Title  string
	Status string
	Link   string
	Copied string // Text written to the clipboard
	Opened bool
}

// ViewPullRequest is the use case for showing a pull request.
type ViewPullRequest struct {
	deps PullRequestDeps
}

// NewViewPullRequest creates a new ViewPullRequest use case.
func NewViewPullRequest(deps PullRequestDeps) *ViewPullRequest {
	return &ViewPullRequest{deps: deps}
}

// Execute finds the pull request and optionally copies or opens its link.
// Copy takes precedence over Web.
func (uc *ViewPullRequest) Execute(ctx context.Context, in ViewPullRequestInput) (*ViewPullRequestOutput, error) {
	branch, err := uc.deps.Git.CurrentBranch()
	if err != nil {
		return nil, fmt.Errorf("get current branch: %w", err)
	}
	repository, err := repositoryName(uc.deps.Git)
	if err != nil {
		return nil, err
	}
	pr, err := findPullRequest(ctx, uc.deps.AWS, in.Profile, repository, branch, in.ID)
	if err != nil {
		return nil, err
	}
	region, err := uc.deps.AWS.Region(ctx, in.Profile)
	if err != nil {
		return nil, fmt.Errorf("get region: %w", err)
	}

	out := &ViewPullRequestOutput{
		ID:     pr.ID,
		Title:  pr.Title,
		Status: string(pr.Status),
		Link:   pullRequestLink(region, repository, pr.ID, pr.Targets),
	}

	switch {
	case in.Copy:
		text := out.Link
		if in.Markdown {
			text = pr.MarkdownLink(out.Link)
		}
		if err := uc.deps.Browser.Copy(text); err != nil {
			return nil, err
		}
		out.Copied = text
	case in.Web:
		if err := uc.deps.Browser.Open(out.Link); err != nil {
			return nil, fmt.Errorf("open pull request: %w", err)
		}
		out.Opened = true
	}
	return out, nil
}
