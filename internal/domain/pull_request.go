package domain

import (
	"fmt"
	"strings"
)

// PullRequestStatus is the CodeCommit pull request status.
type PullRequestStatus string

const (
	PullRequestOpen   PullRequestStatus = "OPEN"
	PullRequestClosed PullRequestStatus = "CLOSED"
)

// ParsePullRequestStatus parses a status case-insensitively.
func ParsePullRequestStatus(s string) (PullRequestStatus, error) {
	switch PullRequestStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case PullRequestOpen:
		return PullRequestOpen, nil
	case PullRequestClosed:
		return PullRequestClosed, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPullRequestStatus, s)
}

// PullRequest is a CodeCommit pull request.
type PullRequest struct {
	ID          string            `json:"pullRequestId"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	Status      PullRequestStatus `json:"pullRequestStatus"`
	AuthorARN   string            `json:"authorArn,omitempty"`
	Targets     []Target          `json:"pullRequestTargets"`
}

// Target is a source/destination pair of a pull request.
type Target struct {
	Repository  string `json:"repositoryName"`
	Source      string `json:"sourceReference"`
	Destination string `json:"destinationReference"`
	MergeBase   string `json:"mergeBase,omitempty"`
}

const refsHeadsPrefix = "refs/heads/"

// SourceBranch returns the source reference without refs/heads/.
func (t Target) SourceBranch() string {
	return strings.TrimPrefix(t.Source, refsHeadsPrefix)
}

// DestinationBranch returns the destination reference without refs/heads/.
func (t Target) DestinationBranch() string {
	return strings.TrimPrefix(t.Destination, refsHeadsPrefix)
}

// HasSource returns true if any target originates from the given branch.
func (pr *PullRequest) HasSource(branch string) bool {
	for _, t := range pr.Targets {
		if t.SourceBranch() == branch {
			return true
		}
	}
	return false
}

// SourceBranch returns the source branch of the first target.
func (pr *PullRequest) SourceBranch() string {
	if len(pr.Targets) == 0 {
		return ""
	}
	return pr.Targets[0].SourceBranch()
}

// MarkdownLink formats the pull request as a markdown link.
func (pr *PullRequest) MarkdownLink(link string) string {
	return fmt.Sprintf("[%s: %s](%s)", pr.ID, pr.Title, link)
}

// CreatePullRequestInput holds the fields of a new pull request.
type CreatePullRequestInput struct {
	Repository  string
	Title       string
	Description string
	Source      string
	Destination string
}

// MergeInput holds the fields of a squash merge.
type MergeInput struct {
	PullRequestID string
	Repository    string
	CommitMessage string
	AuthorName    string
	AuthorEmail   string
}

// CallerIdentity is the result of aws sts get-caller-identity.
type CallerIdentity struct {
	UserID  string `json:"UserId"`
	Account string `json:"Account"`
	ARN     string `json:"Arn"`
}

// PipelineStage is the latest state of one CodePipeline stage.
type PipelineStage struct {
	Name   string
	Status string
}
