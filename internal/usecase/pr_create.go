package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/runoshun/tpaws/internal/domain"
)

const prSystemPrompt = `You write pull request descriptions for a development team.
Given ID, title and content of a ticket write a short markdown description
of the change: one summary sentence followed by a bullet list of the main
points. Return only the description, without any heading.`

// CreatePullRequestInput contains the parameters for opening a pull request.
type CreatePullRequestInput struct {
	Profile     string // AWS profile
	Title       string // Explicit title; skips the ticket lookup
	Description string // Explicit description
	Base        string // Destination branch; defaults to develop
	AIModel     string // Overrides the configured model
	Slack       bool   // Notify a reviewer
	Copy        bool   // Copy the link to the clipboard
	AI          bool   // Draft the description with AI
	DryRun      bool
}

// CreatePullRequestOutput contains the result of opening a pull request.
type CreatePullRequestOutput struct {
	PullRequest *domain.PullRequest
	Reviewer    *domain.Reviewer
	Link        string
	Copied      bool
}

// CreatePullRequest is the use case for opening a CodeCommit pull request
// from the current branch.
type CreatePullRequest struct {
	git      domain.Git
	aws      domain.CodeCommit
	tickets  domain.TicketService
	configs  domain.ConfigStore
	prompter domain.Prompter
	progress domain.Progress
	browser  domain.Browser
	notifier domain.Notifier
	newAI    domain.TextGeneratorFactory
	stdout   io.Writer
	logger   *slog.Logger
}

// PullRequestDeps groups the collaborators of the pull request use cases.
type PullRequestDeps struct {
	Git      domain.Git
	AWS      domain.CodeCommit
	Tickets  domain.TicketService
	Configs  domain.ConfigStore
	Projects domain.ProjectConfigStore
	Prompter domain.Prompter
	Progress domain.Progress
	Browser  domain.Browser
	Notifier domain.Notifier
	NewAI    domain.TextGeneratorFactory
	Logger   *slog.Logger
}

// NewCreatePullRequest creates a new CreatePullRequest use case.
func NewCreatePullRequest(deps PullRequestDeps, stdout io.Writer) *CreatePullRequest {
	return &CreatePullRequest{
		git:      deps.Git,
		aws:      deps.AWS,
		tickets:  deps.Tickets,
		configs:  deps.Configs,
		prompter: deps.Prompter,
		progress: deps.Progress,
		browser:  deps.Browser,
		notifier: deps.Notifier,
		newAI:    deps.NewAI,
		stdout:   stdout,
		logger:   discardLogger(deps.Logger),
	}
}

// Execute resolves title and description, shows a recap, and creates the
// pull request once confirmed. Returns domain.ErrAborted when the recap is
// declined.
func (uc *CreatePullRequest) Execute(ctx context.Context, in CreatePullRequestInput) (*CreatePullRequestOutput, error) {
	cfg, err := uc.configs.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if in.Slack {
		if cfg.SlackUserID == "" || cfg.SlackWebhookURL == "" {
			return nil, domain.ErrSlackNotConfigured
		}
		if len(cfg.Reviewers) == 0 {
			return nil, domain.ErrNoReviewers
		}
	}

	branch, err := uc.git.CurrentBranch()
	if err != nil {
		return nil, fmt.Errorf("get current branch: %w", err)
	}
	repository, err := repositoryName(uc.git)
	if err != nil {
		return nil, err
	}
	base := in.Base
	if base == "" {
		base = domain.DefaultBaseBranch
	}

	title, err := uc.title(ctx, in.Title, branch)
	if err != nil {
		return nil, err
	}
	description, err := uc.description(ctx, cfg, in, branch)
	if err != nil {
		return nil, err
	}

	w := uc.stdout
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "Check if the details below before proceding:")
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "Title: %s\n", title)
	_, _ = fmt.Fprintf(w, "Description: %s\n", strings.TrimSpace(description))
	_, _ = fmt.Fprintf(w, "Source Branch: %s\n", branch)
	_, _ = fmt.Fprintf(w, "Target Branch: %s\n", base)
	_, _ = fmt.Fprintf(w, "Repository: %s\n", repository)
	_, _ = fmt.Fprintln(w)

	ok, err := uc.prompter.Confirm("Do you confirm?", false)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrAborted
	}
	if in.DryRun {
		return &CreatePullRequestOutput{}, nil
	}

	task := uc.progress.Start("Creating PR ...")
	pr, err := uc.aws.CreatePullRequest(ctx, in.Profile, domain.CreatePullRequestInput{
		Repository:  repository,
		Title:       title,
		Description: description,
		Source:      branch,
		Destination: base,
	})
	if err != nil {
		task.Fail("Unable to create PR")
		return nil, fmt.Errorf("create pull request: %w", err)
	}
	region, err := uc.aws.Region(ctx, in.Profile)
	if err != nil {
		task.Fail("Unable to resolve region")
		return nil, fmt.Errorf("get region: %w", err)
	}
	out := &CreatePullRequestOutput{
		PullRequest: pr,
		Link:        domain.PullRequestLink(region, repository, pr.ID),
	}
	task.Done("PR Available at: " + out.Link)

	if in.Copy {
		if err := uc.browser.Copy(out.Link); err != nil {
			uc.logger.Warn("link not copied", "error", err)
		} else {
			out.Copied = true
		}
	}

	if !in.Slack {
		return out, nil
	}
	reviewer, err := uc.notify(ctx, cfg, out, repository, title, branch)
	if err != nil {
		return nil, err
	}
	out.Reviewer = reviewer
	return out, nil
}

func (uc *CreatePullRequest) title(ctx context.Context, title, branch string) (string, error) {
	t, err := GrabTitle(ctx, uc.tickets, title, branch)
	if err != nil {
		uc.logger.Warn("ticket title not loaded", "branch", branch, "error", err)
		_, _ = fmt.Fprintf(uc.stdout, "Warning: unable to load the ticket title: %v\n", err)
		t = domain.BranchToTitle(branch)
	}
	if t != "" {
		return t, nil
	}
	t, err = uc.prompter.Input("Title:", "", "Your PR Title")
	if err != nil {
		return "", err
	}
	if t = strings.TrimSpace(t); t == "" {
		return "", domain.ErrEmptyTitle
	}
	return t, nil
}

func (uc *CreatePullRequest) description(ctx context.Context, cfg *domain.Config, in CreatePullRequestInput, branch string) (string, error) {
	if in.Description != "" {
		return in.Description, nil
	}

	id, isTicket := domain.TicketIDFromBranch(branch)
	if in.AI {
		if !isTicket {
			return "", fmt.Errorf("%w from branch %q", domain.ErrTicketIDNotFound, branch)
		}
		return uc.draft(ctx, cfg, in.AIModel, id)
	}
	if isTicket && uc.tickets != nil {
		return "See: " + domain.TicketLink(uc.tickets.BaseURL(), id), nil
	}
	return uc.prompter.Input("Description:", "", "")
}

func (uc *CreatePullRequest) draft(ctx context.Context, cfg *domain.Config, model string, id int) (string, error) {
	if err := ensureAPIKey(cfg, uc.configs, uc.prompter); err != nil {
		return "", err
	}
	ticket, err := fetchTicket(ctx, uc.tickets, id)
	if err != nil {
		return "", err
	}
	gen, err := uc.newAI(cfg.AIProviderOrDefault(), cfg.AIAPIKey)
	if err != nil {
		return "", err
	}
	if model == "" {
		model = cfg.AIModelOrDefault()
	}

	task := uc.progress.Start("Generating description")
	text, err := gen.Complete(ctx, domain.CompletionRequest{
		Model:  model,
		System: prSystemPrompt,
		Prompt: commitPrompt(ticket),
	})
	if err != nil {
		task.Fail("Unable to generate description")
		return "", fmt.Errorf("generate description: %w", err)
	}
	task.Done("Description generated")

	link := domain.TicketLink(uc.tickets.BaseURL(), id)
	return strings.TrimSpace(text) + "\n\nSee: " + link, nil
}

func (uc *CreatePullRequest) notify(ctx context.Context, cfg *domain.Config, out *CreatePullRequestOutput, repository, title, branch string) (*domain.Reviewer, error) {
	name, err := uc.prompter.Select("Who is your reviewer?", cfg.ReviewerNames())
	if err != nil {
		return nil, err
	}
	reviewer, ok := cfg.FindReviewer(name)
	if !ok {
		return nil, fmt.Errorf("invalid reviewer %q", name)
	}
	_, _ = fmt.Fprintf(uc.stdout, "Reviewer: %s\n", reviewer.Name)

	n := domain.PullRequestNotification{
		AuthorSlackID:   cfg.SlackUserID,
		ReviewerSlackID: reviewer.SlackID,
		Repository:      repository,
		PullRequestID:   out.PullRequest.ID,
		Title:           title,
		PullRequestLink: out.Link,
	}
	if id, ok := domain.TicketIDFromBranch(branch); ok && uc.tickets != nil {
		n.TicketLink = domain.TicketLink(uc.tickets.BaseURL(), id)
	}

	task := uc.progress.Start("Sending slack message")
	if err := uc.notifier.NotifyPullRequest(ctx, cfg.SlackWebhookURL, n); err != nil {
		task.Fail("Slack message not sent")
		return nil, fmt.Errorf("notify reviewer: %w", err)
	}
	task.Done("Slack message sent")
	return &reviewer, nil
}

