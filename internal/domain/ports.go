package domain

import (
	"context"
	"time"
)

// CommandExecutor runs external programs.
type CommandExecutor interface {
	// Execute runs the command and returns its trimmed stdout.
	// A non-zero exit is reported as an error carrying stderr.
	Execute(ctx context.Context, cmd *ExecCommand) ([]byte, error)

	// ExecuteInteractive runs the command attached to the terminal.
	ExecuteInteractive(ctx context.Context, cmd *ExecCommand) error

	// LookPath reports whether the program is installed.
	LookPath(program string) bool
}

// Git provides the git and git-flow operations used by the workflow.
type Git interface {
	// CurrentBranch returns the name of the checked out branch.
	CurrentBranch() (string, error)

	// RemoteURL returns the fetch URL of a remote.
	RemoteURL(remote string) (string, error)

	// ConfigValue returns a git config value, or "" if unset.
	ConfigValue(key string) (string, error)

	// Fetch fetches from the default remote.
	Fetch(ctx context.Context, prune bool) error

	// Push pushes a refspec to a remote.
	Push(ctx context.Context, remote, refspec string, force bool) error

	// PushTags pushes all tags to a remote.
	PushTags(ctx context.Context, remote string) error

	// DeleteRemoteBranch removes a branch on a remote.
	DeleteRemoteBranch(ctx context.Context, remote, branch string) error

	// CommitSubjects returns commit subjects in the range from..to.
	CommitSubjects(ctx context.Context, from, to string) ([]string, error)

	// CommitFiles commits the given tracked paths.
	CommitFiles(ctx context.Context, message string, paths ...string) error

	// FeatureStart runs git flow feature start.
	FeatureStart(ctx context.Context, name string) error

	// FeatureFinish runs git flow feature finish.
	FeatureFinish(ctx context.Context, name string) error

	// ReleaseStart runs git flow release start.
	ReleaseStart(ctx context.Context, version string) error

	// ReleaseFinish runs git flow release finish.
	ReleaseFinish(ctx context.Context, version string) error
}

// CodeCommit wraps the AWS CLI commands used for pull requests.
type CodeCommit interface {
	CallerIdentity(ctx context.Context, profile string) (*CallerIdentity, error)
	Login(ctx context.Context, profile string) error
	Region(ctx context.Context, profile string) (string, error)
	CreatePullRequest(ctx context.Context, profile string, in CreatePullRequestInput) (*PullRequest, error)
	GetPullRequest(ctx context.Context, profile, id string) (*PullRequest, error)
	ListPullRequests(ctx context.Context, profile, repository string, status PullRequestStatus, authorARN string) ([]string, error)
	MergePullRequestBySquash(ctx context.Context, profile string, in MergeInput) (*PullRequest, error)
	PipelineState(ctx context.Context, profile, pipeline string) ([]PipelineStage, error)
	IsInstalled() bool
}

// TicketService is the TargetProcess API.
type TicketService interface {
	// GetTicket fetches an assignable by id.
	GetTicket(ctx context.Context, id int) (*Ticket, error)

	// CurrentUser returns the user owning the access token.
	CurrentUser(ctx context.Context) (*User, error)

	// CurrentSprintTickets returns initial-state tickets of the current or
	// previous iteration (and all open bugs) of a project.
	CurrentSprintTickets(ctx context.Context, project string) ([]Ticket, error)

	// Projects returns a page of projects.
	Projects(ctx context.Context, skip, take int) ([]ProjectRef, error)

	// Assign assigns the ticket to a user as developer.
	Assign(ctx context.Context, ticketID, userID int) error

	// UpdateState moves the ticket to another workflow state.
	UpdateState(ctx context.Context, ticketID int, state EntityState) error

	// BaseURL returns the web URL of the TargetProcess instance.
	BaseURL() string
}

// TicketServiceFactory builds a TicketService for the given credentials.
type TicketServiceFactory func(baseURL, token string) TicketService

// PullRequestNotification is posted to Slack when a pull request is opened.
type PullRequestNotification struct {
	AuthorSlackID   string
	ReviewerSlackID string
	Repository      string
	PullRequestID   string
	Title           string
	PullRequestLink string
	TicketLink      string
}

// Notifier sends chat notifications.
type Notifier interface {
	NotifyPullRequest(ctx context.Context, webhookURL string, n PullRequestNotification) error
}

// CompletionRequest is a single-turn prompt for a text generator.
type CompletionRequest struct {
	Model  string
	System string
	Prompt string
}

// TextGenerator drafts text with a language model.
type TextGenerator interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// TextGeneratorFactory builds a TextGenerator for a provider and key.
type TextGeneratorFactory func(provider, apiKey string) (TextGenerator, error)

// ConfigStore persists the global configuration.
type ConfigStore interface {
	// Exists reports whether a config file has been written.
	Exists() bool
	// Load reads the config. Returns ErrConfigNotFound if missing.
	Load() (*Config, error)
	// Defaults returns a new config holding only environment values.
	Defaults() *Config
	// Save overwrites the config file.
	Save(cfg *Config) error
	// Path returns the config file location.
	Path() string
}

// ProjectConfigStore persists the per-repository configuration.
type ProjectConfigStore interface {
	Exists() bool
	Load() (*ProjectConfig, error)
	Save(cfg *ProjectConfig) error
}

// ManifestStore reads and writes the project version.
type ManifestStore interface {
	// ReadVersion returns the version and the manifest file it came from.
	ReadVersion() (Version, string, error)
	// WriteVersion replaces the version in the manifest.
	WriteVersion(v Version) error
}

// Prompter asks the user for input.
type Prompter interface {
	Confirm(title string, def bool) (bool, error)
	Select(title string, options []string) (string, error)
	Input(title, def, placeholder string) (string, error)
}

// Progress shows feedback for long-running steps.
type Progress interface {
	Start(message string) ProgressTask
}

// ProgressTask is a running step started by Progress.
type ProgressTask interface {
	Done(message string)
	Skip(message string)
	Fail(message string)
}

// Browser opens links and writes to the clipboard.
type Browser interface {
	Open(url string) error
	Copy(text string) error
}

// Clock provides time operations for testability.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// RealClock implements Clock using the system clock.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time {
	return time.Now()
}
