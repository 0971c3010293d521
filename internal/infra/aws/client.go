// Package aws wraps the aws CLI commands used for authentication, pull
// requests and pipelines.
package aws

import (
	"context"
	"fmt"

	"github.com/runoshun/tpaws/internal/domain"
	"github.com/runoshun/tpaws/internal/infra/executor"
)

// InstallURL documents how to install the aws CLI.
const InstallURL = "https://docs.aws.amazon.com/cli/latest/userguide/getting-started-install.html"

// Client runs aws CLI commands.
type Client struct {
	exec domain.CommandExecutor
}

// Ensure Client implements domain.CodeCommit interface.
var _ domain.CodeCommit = (*Client)(nil)

// NewClient creates a new aws CLI client.
func NewClient(exec domain.CommandExecutor) *Client {
	return &Client{exec: exec}
}

type pullRequestResponse struct {
	PullRequest domain.PullRequest `json:"pullRequest"`
}

type listPullRequestsResponse struct {
	PullRequestIDs []string `json:"pullRequestIds"`
}

type pipelineStateResponse struct {
	StageStates []struct {
		LatestExecution *struct {
			Status string `json:"status"`
		} `json:"latestExecution"`
		StageName string `json:"stageName"`
	} `json:"stageStates"`
}

// IsInstalled reports whether the aws binary is available.
func (c *Client) IsInstalled() bool {
	return c.exec.LookPath("aws")
}

// CallerIdentity runs aws sts get-caller-identity.
func (c *Client) CallerIdentity(ctx context.Context, profile string) (*domain.CallerIdentity, error) {
	var id domain.CallerIdentity
	if err := c.json(ctx, profile, &id, "sts", "get-caller-identity"); err != nil {
		return nil, fmt.Errorf("get caller identity: %w", err)
	}
	return &id, nil
}

// Login runs aws sso login attached to the terminal.
func (c *Client) Login(ctx context.Context, profile string) error {
	cmd := domain.NewCommand("aws", "sso", "login", "--profile", profile)
	if err := c.exec.ExecuteInteractive(ctx, cmd); err != nil {
		return fmt.Errorf("sso login: %w", err)
	}
	return nil
}

// Region returns the configured region of a profile.
func (c *Client) Region(ctx context.Context, profile string) (string, error) {
	out, err := c.exec.Execute(ctx, domain.NewCommand("aws", "configure", "get", "region", "--profile", profile))
	if err != nil {
		return "", fmt.Errorf("get region: %w", err)
	}
	region := string(out)
	if region == "" {
		return "", fmt.Errorf("get region: no region configured for profile %q", profile)
	}
	return region, nil
}

// CreatePullRequest runs aws codecommit create-pull-request.
func (c *Client) CreatePullRequest(ctx context.Context, profile string, in domain.CreatePullRequestInput) (*domain.PullRequest, error) {
	targets := fmt.Sprintf("repositoryName=%s,sourceReference=%s,destinationReference=%s",
		in.Repository, in.Source, in.Destination)
	args := []string{"codecommit", "create-pull-request", "--title", in.Title}
	if in.Description != "" {
		args = append(args, "--description", in.Description)
	}
	args = append(args, "--targets", targets)

	var resp pullRequestResponse
	if err := c.json(ctx, profile, &resp, args...); err != nil {
		return nil, fmt.Errorf("create pull request: %w", err)
	}
	return &resp.PullRequest, nil
}

// GetPullRequest runs aws codecommit get-pull-request.
func (c *Client) GetPullRequest(ctx context.Context, profile, id string) (*domain.PullRequest, error) {
	var resp pullRequestResponse
	if err := c.json(ctx, profile, &resp, "codecommit", "get-pull-request", "--pull-request-id", id); err != nil {
		return nil, fmt.Errorf("get pull request %s: %w", id, err)
	}
	return &resp.PullRequest, nil
}

// ListPullRequests runs aws codecommit list-pull-requests.
func (c *Client) ListPullRequests(ctx context.Context, profile, repository string, status domain.PullRequestStatus, authorARN string) ([]string, error) {
	args := []string{"codecommit", "list-pull-requests",
		"--repository-name", repository,
		"--pull-request-status", string(status),
	}
	if authorARN != "" {
		args = append(args, "--author-arn", authorARN)
	}

	var resp listPullRequestsResponse
	if err := c.json(ctx, profile, &resp, args...); err != nil {
		return nil, fmt.Errorf("list pull requests: %w", err)
	}
	return resp.PullRequestIDs, nil
}

// MergePullRequestBySquash runs aws codecommit merge-pull-request-by-squash.
func (c *Client) MergePullRequestBySquash(ctx context.Context, profile string, in domain.MergeInput) (*domain.PullRequest, error) {
	args := []string{"codecommit", "merge-pull-request-by-squash",
		"--pull-request-id", in.PullRequestID,
		"--repository-name", in.Repository,
	}
	if in.CommitMessage != "" {
		args = append(args, "--commit-message", in.CommitMessage)
	}
	if in.AuthorName != "" {
		args = append(args, "--author-name", in.AuthorName)
	}
	if in.AuthorEmail != "" {
		args = append(args, "--email", in.AuthorEmail)
	}

	var resp pullRequestResponse
	if err := c.json(ctx, profile, &resp, args...); err != nil {
		return nil, fmt.Errorf("merge pull request %s: %w", in.PullRequestID, err)
	}
	return &resp.PullRequest, nil
}

// PipelineState runs aws codepipeline get-pipeline-state.
func (c *Client) PipelineState(ctx context.Context, profile, pipeline string) ([]domain.PipelineStage, error) {
	var resp pipelineStateResponse
	if err := c.json(ctx, profile, &resp, "codepipeline", "get-pipeline-state", "--name", pipeline); err != nil {
		return nil, fmt.Errorf("get pipeline state: %w", err)
	}

	stages := make([]domain.PipelineStage, 0, len(resp.StageStates))
	for _, s := range resp.StageStates {
		status := "Unknown"
		if s.LatestExecution != nil {
			status = s.LatestExecution.Status
		}
		stages = append(stages, domain.PipelineStage{Name: s.StageName, Status: status})
	}
	return stages, nil
}

func (c *Client) json(ctx context.Context, profile string, v any, args ...string) error {
	args = append(args, "--output", "json")
	if profile != "" {
		args = append(args, "--profile", profile)
	}
	return executor.ExecuteJSON(ctx, c.exec, domain.NewCommand("aws", args...), v)
}
