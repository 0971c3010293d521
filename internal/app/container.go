// Package app provides the dependency injection container for the application.
package app

import (
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/runoshun/tpaws/internal/domain"
	"github.com/runoshun/tpaws/internal/infra/ai"
	"github.com/runoshun/tpaws/internal/infra/aws"
	"github.com/runoshun/tpaws/internal/infra/browser"
	"github.com/runoshun/tpaws/internal/infra/config"
	"github.com/runoshun/tpaws/internal/infra/executor"
	"github.com/runoshun/tpaws/internal/infra/git"
	"github.com/runoshun/tpaws/internal/infra/logging"
	"github.com/runoshun/tpaws/internal/infra/manifest"
	"github.com/runoshun/tpaws/internal/infra/memo"
	"github.com/runoshun/tpaws/internal/infra/prompt"
	"github.com/runoshun/tpaws/internal/infra/slack"
	"github.com/runoshun/tpaws/internal/infra/spinner"
	"github.com/runoshun/tpaws/internal/infra/targetprocess"
	"github.com/runoshun/tpaws/internal/usecase"
)

// httpTimeout bounds every TargetProcess, Slack and Groq request.
const httpTimeout = 30 * time.Second

// Options holds the global flags shared by every command.
type Options struct {
	Profile string // AWS profile passed to the aws CLI
	Quiet   bool   // Disable interactive prompts
	Debug   bool   // Mirror debug logs to stderr
	DryRun  bool   // Skip side effects
}

// Config holds the application paths.
type Config struct {
	WorkDir   string // Directory the command was started from
	RepoRoot  string // Root of the git repository; WorkDir outside a repository
	ConfigDir string // Directory holding config.json
	LogsDir   string // Directory holding tpaws.log
}

// Container provides dependency injection for the application.
// It holds all port implementations and provides factory methods for use cases.
type Container struct {
	// Ports (interfaces bound to implementations)
	Executor   domain.CommandExecutor
	Git        domain.Git
	AWS        domain.CodeCommit
	Tickets    domain.TicketService // nil until TargetProcess is configured
	NewTickets domain.TicketServiceFactory
	Notifier   domain.Notifier
	NewAI      domain.TextGeneratorFactory
	Configs    domain.ConfigStore
	Projects   domain.ProjectConfigStore
	Manifest   domain.ManifestStore
	Prompter   domain.Prompter
	Progress   domain.Progress
	Browser    domain.Browser
	Clock      domain.Clock

	// Pointer fields
	Logger *slog.Logger

	// RepoErr is set when the working directory is not inside a git repository.
	RepoErr error

	Options Options
	Config  Config

	closer io.Closer
}

// New creates a new Container for the given working directory.
// Being outside a git repository is not an error here: commands that need
// one call RequireRepo.
func New(dir string, opts Options) (*Container, error) {
	cfgDir := config.DefaultDir()
	logs := config.LogsDir(cfgDir)
	logger := logging.New(logging.Options{
		Dir:   logs,
		Level: slog.LevelInfo,
		Debug: opts.Debug || logging.DebugFromEnv(),
	})

	exec := executor.NewClient(logger.Logger)
	httpClient := &http.Client{Timeout: httpTimeout}

	paths := Config{WorkDir: dir, RepoRoot: dir, ConfigDir: cfgDir, LogsDir: logs}
	var gitPort domain.Git
	gitClient, repoErr := git.NewClient(dir, exec)
	if repoErr == nil {
		gitPort = gitClient
		paths.RepoRoot = gitClient.RepoRoot()
	} else {
		logger.Debug("no git repository", "dir", dir, "error", repoErr)
	}

	c := &Container{
		Executor: exec,
		Git:      gitPort,
		AWS:      memo.NewCodeCommit(aws.NewClient(exec)),
		NewTickets: func(baseURL, token string) domain.TicketService {
			return memo.NewTicketService(targetprocess.NewClient(baseURL, token,
				targetprocess.WithHTTPClient(httpClient),
				targetprocess.WithLogger(logger.Logger),
			))
		},
		Notifier: slack.NewClient(httpClient),
		NewAI:    ai.NewGenerator,
		Configs:  config.NewStore(cfgDir),
		Projects: config.NewProjectStore(paths.RepoRoot),
		Manifest: manifest.NewStore(paths.RepoRoot),
		Prompter: prompt.New(opts.Quiet),
		Progress: spinner.New(os.Stderr),
		Browser:  browser.New(exec),
		Clock:    domain.RealClock{},
		Logger:   logger.Logger,
		RepoErr:  repoErr,
		Options:  opts,
		Config:   paths,
		closer:   logger,
	}
	c.ReloadTickets()
	return c, nil
}

// NewWithDeps creates a new Container with custom dependencies for testing.
// Zero-valued ports stay nil.
func NewWithDeps(c Container) *Container {
	if c.Clock == nil {
		c.Clock = domain.RealClock{}
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
	return &c
}

// ReloadTickets rebuilds the TargetProcess client from the saved config.
// Tickets stays nil while the base url or the token is missing.
func (c *Container) ReloadTickets() {
	if c.NewTickets == nil {
		return
	}
	c.Tickets = nil
	cfg, err := c.Configs.Load()
	if err != nil {
		c.Logger.Debug("config not loaded", "error", err)
		return
	}
	if cfg.HasTargetProcess() {
		c.Tickets = c.NewTickets(cfg.TPURL, cfg.TPToken)
	}
}

// ApplyOptions records the parsed global flags. Debug only takes effect
// when passed to New, since the logger is built there.
func (c *Container) ApplyOptions(opts Options) {
	opts.Debug = opts.Debug || c.Options.Debug
	c.Options = opts
	if q, ok := c.Prompter.(interface{ SetQuiet(bool) }); ok {
		q.SetQuiet(opts.Quiet)
	}
}

// RequireRepo reports whether the container was created inside a git repository.
func (c *Container) RequireRepo() error {
	return c.RepoErr
}

// Close releases the log file.
func (c *Container) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer.Close()
}

// UseCase factory methods

// EnsureAuthUseCase returns a new EnsureAuth use case.
func (c *Container) EnsureAuthUseCase() *usecase.EnsureAuth {
	return usecase.NewEnsureAuth(c.Configs, c.AWS, c.Clock)
}

// ViewTicketUseCase returns a new ViewTicket use case.
func (c *Container) ViewTicketUseCase() *usecase.ViewTicket {
	return usecase.NewViewTicket(c.Git, c.Tickets, c.Browser)
}

// StartTicketUseCase returns a new StartTicket use case.
func (c *Container) StartTicketUseCase() *usecase.StartTicket {
	return usecase.NewStartTicket(c.Git, c.Tickets, c.Configs, c.Projects, c.Prompter, c.Logger)
}

// FinishTicketUseCase returns a new FinishTicket use case.
func (c *Container) FinishTicketUseCase() *usecase.FinishTicket {
	return usecase.NewFinishTicket(c.Git, c.Tickets, c.Logger)
}

// LookupTicketUseCase returns a new LookupTicket use case.
func (c *Container) LookupTicketUseCase() *usecase.LookupTicket {
	return usecase.NewLookupTicket(c.Git, c.Tickets, c.Projects)
}

// GenerateCommitUseCase returns a new GenerateCommit use case.
func (c *Container) GenerateCommitUseCase() *usecase.GenerateCommit {
	return usecase.NewGenerateCommit(c.Git, c.Tickets, c.Configs, c.Prompter, c.NewAI)
}

// GenerateChangelogUseCase returns a new GenerateChangelog use case.
func (c *Container) GenerateChangelogUseCase() *usecase.GenerateChangelog {
	return usecase.NewGenerateChangelog(c.Git, c.Tickets, c.Projects, c.Logger)
}

// InitProjectUseCase returns a new InitProject use case.
func (c *Container) InitProjectUseCase() *usecase.InitProject {
	return usecase.NewInitProject(c.Tickets, c.Projects, c.Prompter)
}

// PullRequestDeps bundles the ports shared by the pr use cases.
func (c *Container) PullRequestDeps() usecase.PullRequestDeps {
	return usecase.PullRequestDeps{
		Git:      c.Git,
		AWS:      c.AWS,
		Tickets:  c.Tickets,
		Configs:  c.Configs,
		Projects: c.Projects,
		Prompter: c.Prompter,
		Progress: c.Progress,
		Browser:  c.Browser,
		Notifier: c.Notifier,
		NewAI:    c.NewAI,
		Logger:   c.Logger,
	}
}

// CreatePullRequestUseCase returns a new CreatePullRequest use case.
func (c *Container) CreatePullRequestUseCase(stdout io.Writer) *usecase.CreatePullRequest {
	return usecase.NewCreatePullRequest(c.PullRequestDeps(), stdout)
}

// ViewPullRequestUseCase returns a new ViewPullRequest use case.
func (c *Container) ViewPullRequestUseCase() *usecase.ViewPullRequest {
	return usecase.NewViewPullRequest(c.PullRequestDeps())
}

// MergePullRequestUseCase returns a new MergePullRequest use case.
func (c *Container) MergePullRequestUseCase(stdout io.Writer) *usecase.MergePullRequest {
	return usecase.NewMergePullRequest(c.PullRequestDeps(), stdout)
}

// ListPullRequestsUseCase returns a new ListPullRequests use case.
func (c *Container) ListPullRequestsUseCase() *usecase.ListPullRequests {
	return usecase.NewListPullRequests(c.PullRequestDeps())
}

// StartReleaseUseCase returns a new StartRelease use case.
func (c *Container) StartReleaseUseCase() *usecase.StartRelease {
	return usecase.NewStartRelease(c.Git, c.Manifest)
}

// PushReleaseUseCase returns a new PushRelease use case.
func (c *Container) PushReleaseUseCase() *usecase.PushRelease {
	return usecase.NewPushRelease(c.Git, c.AWS, c.Projects, c.Prompter, c.Progress, c.Logger)
}

// FinishReleaseUseCase returns a new FinishRelease use case.
func (c *Container) FinishReleaseUseCase() *usecase.FinishRelease {
	return usecase.NewFinishRelease(c.Git, c.Manifest, c.Progress)
}

// ResetConfigUseCase returns a new ResetConfig use case.
func (c *Container) ResetConfigUseCase() *usecase.ResetConfig {
	return usecase.NewResetConfig(c.Git, c.Configs, c.Prompter, c.NewTickets)
}

// ShowConfigUseCase returns a new ShowConfig use case.
func (c *Container) ShowConfigUseCase() *usecase.ShowConfig {
	return usecase.NewShowConfig(c.Configs)
}
