package usecase

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/runoshun/tpaws/internal/domain"
)

// MergePullRequestInput contains the parameters for squash-merging.
type MergePullRequestInput struct {
	Profile       string
	ID            string // Pull request id; empty means the PR of the current branch
	AuthorName    string // Fallback when git config has no user.name
	AuthorEmail   string // Fallback when git config has no user.email
	CommitMessage string // Default commit message; the PR description otherwise
	DryRun        bool
}

// MergePullRequestOutput contains the result of the merge.
type MergePullRequestOutput struct {
	PullRequest   *domain.PullRequest
	BranchDeleted bool
	TicketStatus  string // done, skipped or failed
}

// Ticket status outcomes after a merge.
const (
	TicketStatusUpdated = "done"
	TicketStatusSkipped = "skipped"
	TicketStatusFailed  = "failed"
)

// MergePullRequest is the use case for squash-merging a pull request.
type MergePullRequest struct {
	deps   PullRequestDeps
	stdout io.Writer
}

// NewMergePullRequest creates a new MergePullRequest use case.
func NewMergePullRequest(deps PullRequestDeps, stdout io.Writer) *MergePullRequest {
	deps.Logger = discardLogger(deps.Logger)
	return &MergePullRequest{deps: deps, stdout: stdout}
}

// Execute runs the merge sequence:
// 1. Find the pull request and print its details
// 2. Confirm them, then ask for author and commit message
// 3. Squash-merge after a final confirmation
// 4. Optionally delete the source branch and prune
// 5. Move the ticket of a user story branch to In Staging
//
// Declining either confirmation returns domain.ErrAborted.
func (uc *MergePullRequest) Execute(ctx context.Context, in MergePullRequestInput) (*MergePullRequestOutput, error) {
	cfg, err := uc.deps.Configs.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
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

	w := uc.stdout
	_, _ = fmt.Fprintln(w, "Found 1 matching PR")
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "[%s] %s\n", pr.ID, pr.Title)
	_, _ = fmt.Fprintln(w, pr.Description)
	_, _ = fmt.Fprintln(w, pullRequestLink(region, repository, pr.ID, pr.Targets))
	_, _ = fmt.Fprintln(w)
	for _, t := range pr.Targets {
		_, _ = fmt.Fprintf(w, "From: %s\n", t.SourceBranch())
		_, _ = fmt.Fprintf(w, "To:   %s\n", t.DestinationBranch())
		_, _ = fmt.Fprintln(w)
	}

	if err := uc.confirm("Are the info above correct?", false); err != nil {
		return nil, err
	}

	name, err := uc.deps.Prompter.Input("Author Name", uc.author("user.name", in.AuthorName, cfg.PRName), "")
	if err != nil {
		return nil, err
	}
	email, err := uc.deps.Prompter.Input("Author Email", uc.author("user.email", in.AuthorEmail, cfg.PREmail), "")
	if err != nil {
		return nil, err
	}
	message := in.CommitMessage
	if message == "" {
		message = pr.Description
	}
	if message, err = uc.deps.Prompter.Input("Commit Message", message, ""); err != nil {
		return nil, err
	}

	if err := uc.confirm("Confirm?", false); err != nil {
		return nil, err
	}
	if in.DryRun {
		return &MergePullRequestOutput{PullRequest: pr}, nil
	}

	task := uc.deps.Progress.Start(fmt.Sprintf("Squashing %s...", pr.ID))
	merged, err := uc.deps.AWS.MergePullRequestBySquash(ctx, in.Profile, domain.MergeInput{
		PullRequestID: pr.ID,
		Repository:    repository,
		CommitMessage: message,
		AuthorName:    strings.TrimSpace(name),
		AuthorEmail:   strings.TrimSpace(email),
	})
	if err != nil {
		task.Fail("Merge failed")
		return nil, fmt.Errorf("merge pull request %s: %w", pr.ID, err)
	}
	task.Done("")
	out := &MergePullRequestOutput{PullRequest: merged}

	source := pr.SourceBranch()
	if source == "" {
		source = branch
	}
	del, err := uc.deps.Prompter.Confirm("Delete remote branch?", true)
	if err != nil {
		return nil, err
	}
	if del {
		task := uc.deps.Progress.Start("Deleting branch...")
		if err := uc.deps.Git.DeleteRemoteBranch(ctx, domain.DefaultRemote, source); err != nil {
			task.Fail("Branch not deleted")
			return nil, fmt.Errorf("delete remote branch: %w", err)
		}
		if err := uc.deps.Git.Fetch(ctx, true); err != nil {
			task.Fail("Fetch failed")
			return nil, fmt.Errorf("fetch: %w", err)
		}
		task.Done("")
		out.BranchDeleted = true
	}

	out.TicketStatus = uc.updateTicket(ctx, source)
	return out, nil
}

func (uc *MergePullRequest) confirm(title string, def bool) error {
	ok, err := uc.deps.Prompter.Confirm(title, def)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrAborted
	}
	return nil
}

// author prefers git config, then the flag, then the saved config.
func (uc *MergePullRequest) author(key, flag, saved string) string {
	if v, err := uc.deps.Git.ConfigValue(key); err == nil && v != "" {
		return v
	}
	if flag != "" {
		return flag
	}
	return saved
}

// updateTicket is best-effort: the merge already happened.
func (uc *MergePullRequest) updateTicket(ctx context.Context, branch string) string {
	task := uc.deps.Progress.Start("Updating ticket status..")
	id, ok := domain.TicketIDFromBranch(branch)
	if !ok || uc.deps.Tickets == nil {
		task.Fail("Failed to update ticket status")
		return TicketStatusFailed
	}
	ticket, err := fetchTicket(ctx, uc.deps.Tickets, id)
	if err != nil {
		uc.deps.Logger.Warn("ticket not fetched", "ticket", id, "error", err)
		task.Fail("Failed to update ticket status")
		return TicketStatusFailed
	}
	if !ticket.IsUserStory() {
		task.Skip("Skipped")
		return TicketStatusSkipped
	}
	if err := uc.deps.Tickets.UpdateState(ctx, ticket.ID, domain.EntityStateInStaging); err != nil {
		uc.deps.Logger.Warn("ticket state not updated", "ticket", id, "error", err)
		task.Fail("Failed to update ticket status")
		return TicketStatusFailed
	}
	task.Done("")
	return TicketStatusUpdated
}
