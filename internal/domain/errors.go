package domain

import "errors"

// Domain errors.
var (
	ErrTicketIDNotFound           = errors.New("unable to extract ticket id")
	ErrTicketNotFound             = errors.New("ticket not found")
	ErrPullRequestNotFound        = errors.New("unable to extract pull request id")
	ErrProjectNotResolved         = errors.New("unable to extract project")
	ErrUnknownEntityState         = errors.New("unknown entity state")
	ErrInvalidVersion             = errors.New("invalid version")
	ErrInvalidReleaseKind         = errors.New("invalid release kind (expected patch, minor or major)")
	ErrInvalidPushTarget          = errors.New("invalid push target (expected staging, prod or all)")
	ErrInvalidPullRequestStatus   = errors.New("invalid pull request status")
	ErrTargetProcessNotConfigured = errors.New("target process is not configured (run 'tpaws config reset')")
	ErrConfigNotFound             = errors.New("config file not found")
	ErrProjectAlreadyInitialized  = errors.New("project already initialized")
	ErrMissingAPIKey              = errors.New("missing ai api key")
	ErrEmptyAIResponse            = errors.New("invalid ai response: no choices returned")
	ErrManifestNotFound           = errors.New("no version manifest found")
	ErrNotGitRepository           = errors.New("not a git repository (or any of the parent directories)")
	ErrNoReviewers                = errors.New("no reviewers configured")
	ErrSlackNotConfigured         = errors.New("slack is not configured (set SLACK_USER_ID and SLACK_WEBHOOK_URL)")
	ErrEmptyTitle                 = errors.New("title cannot be empty")
	ErrAborted                    = errors.New("operation aborted")
)
