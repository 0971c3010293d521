// Package testutil provides shared test utilities and mock implementations.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/runoshun/tpaws/internal/domain"
)

// MockClock is a test double for domain.Clock.
type MockClock struct {
	NowTime time.Time
}

// Now returns the configured time.
func (m *MockClock) Now() time.Time {
	return m.NowTime
}

// MockGit is a test double for domain.Git.
// Every mutating call is appended to Calls as a short command line.
type MockGit struct {
	Remotes      map[string]string
	ConfigValues map[string]string
	BranchErr    error
	PushErr      error
	FeatureErr   error
	ReleaseErr   error
	CommitLogErr error
	Branch       string
	Calls        []string
	Subjects     []string
	mu           sync.Mutex
}

// NewMockGit creates a MockGit on the given branch with an origin remote.
func NewMockGit(branch string) *MockGit {
	return &MockGit{
		Branch:       branch,
		Remotes:      map[string]string{"origin": "ssh://git-codecommit.eu-west-1.amazonaws.com/v1/repos/api"},
		ConfigValues: map[string]string{},
	}
}

func (m *MockGit) record(format string, args ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, fmt.Sprintf(format, args...))
}

// CurrentBranch returns Branch.
func (m *MockGit) CurrentBranch() (string, error) {
	if m.BranchErr != nil {
		return "", m.BranchErr
	}
	return m.Branch, nil
}

// RemoteURL returns the configured remote URL.
func (m *MockGit) RemoteURL(remote string) (string, error) {
	url, ok := m.Remotes[remote]
	if !ok {
		return "", fmt.Errorf("remote %q not found", remote)
	}
	return url, nil
}

// ConfigValue returns the configured git config value.
func (m *MockGit) ConfigValue(key string) (string, error) {
	return m.ConfigValues[key], nil
}

// Fetch records the call.
func (m *MockGit) Fetch(_ context.Context, prune bool) error {
	if prune {
		m.record("fetch --prune")
	} else {
		m.record("fetch")
	}
	return nil
}

// Push records the call.
func (m *MockGit) Push(_ context.Context, remote, refspec string, force bool) error {
	if m.PushErr != nil {
		return m.PushErr
	}
	if force {
		m.record("push --force %s %s", remote, refspec)
	} else {
		m.record("push %s %s", remote, refspec)
	}
	return nil
}

// PushTags records the call.
func (m *MockGit) PushTags(_ context.Context, remote string) error {
	if m.PushErr != nil {
		return m.PushErr
	}
	m.record("push %s --tags", remote)
	return nil
}

// DeleteRemoteBranch records the call.
func (m *MockGit) DeleteRemoteBranch(_ context.Context, remote, branch string) error {
	if m.PushErr != nil {
		return m.PushErr
	}
	m.record("push %s --delete %s", remote, branch)
	return nil
}

// CommitSubjects returns Subjects.
func (m *MockGit) CommitSubjects(_ context.Context, from, to string) ([]string, error) {
	if m.CommitLogErr != nil {
		return nil, m.CommitLogErr
	}
	m.record("log %s..%s", from, to)
	return m.Subjects, nil
}

// CommitFiles records the call.
func (m *MockGit) CommitFiles(_ context.Context, message string, paths ...string) error {
	m.record("commit -m %s -- %s", message, strings.Join(paths, " "))
	return nil
}

// FeatureStart records the call.
func (m *MockGit) FeatureStart(_ context.Context, name string) error {
	if m.FeatureErr != nil {
		return m.FeatureErr
	}
	m.record("flow feature start %s", name)
	return nil
}

// FeatureFinish records the call.
func (m *MockGit) FeatureFinish(_ context.Context, name string) error {
	if m.FeatureErr != nil {
		return m.FeatureErr
	}
	m.record("flow feature finish %s", name)
	return nil
}

// ReleaseStart records the call.
func (m *MockGit) ReleaseStart(_ context.Context, version string) error {
	if m.ReleaseErr != nil {
		return m.ReleaseErr
	}
	m.record("flow release start %s", version)
	return nil
}

// ReleaseFinish records the call.
func (m *MockGit) ReleaseFinish(_ context.Context, version string) error {
	if m.ReleaseErr != nil {
		return m.ReleaseErr
	}
	m.record("flow release finish %s", version)
	return nil
}

// MockCodeCommit is a test double for domain.CodeCommit.
type MockCodeCommit struct {
	PullRequests map[string]*domain.PullRequest
	Identity     *domain.CallerIdentity
	Created      *domain.CreatePullRequestInput
	Merged       *domain.MergeInput
	GetErr       error
	ListErr      error
	CreateErr    error
	MergeErr     error
	LoginErr     error
	RegionName   string
	ListIDs      []string
	Stages       []domain.PipelineStage
	ListCalls    []string
	GetCalls     []string
	LoginCalled  bool
	NotInstalled bool
	mu           sync.Mutex
}

// NewMockCodeCommit creates a MockCodeCommit in eu-west-1.
func NewMockCodeCommit() *MockCodeCommit {
	return &MockCodeCommit{
		PullRequests: make(map[string]*domain.PullRequest),
		RegionName:   "eu-west-1",
		Identity: &domain.CallerIdentity{
			UserID:  "AIDA",
			Account: "123456789012",
			ARN:     "arn:aws:sts::123456789012:assumed-role/dev/jane",
		},
	}
}

// AddPullRequest stores a PR and lists its id.
func (m *MockCodeCommit) AddPullRequest(pr *domain.PullRequest) {
	m.PullRequests[pr.ID] = pr
	m.ListIDs = append(m.ListIDs, pr.ID)
}

// IsInstalled reports !NotInstalled.
func (m *MockCodeCommit) IsInstalled() bool {
	return !m.NotInstalled
}

// CallerIdentity returns Identity.
func (m *MockCodeCommit) CallerIdentity(_ context.Context, _ string) (*domain.CallerIdentity, error) {
	return m.Identity, nil
}

// Login records the call.
func (m *MockCodeCommit) Login(_ context.Context, _ string) error {
	m.LoginCalled = true
	return m.LoginErr
}

// Region returns RegionName.
func (m *MockCodeCommit) Region(_ context.Context, _ string) (string, error) {
	return m.RegionName, nil
}

// CreatePullRequest records the input and returns a new PR with id "100".
func (m *MockCodeCommit) CreatePullRequest(_ context.Context, _ string, in domain.CreatePullRequestInput) (*domain.PullRequest, error) {
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	m.Created = &in
	return &domain.PullRequest{
		ID:          "100",
		Title:       in.Title,
		Description: in.Description,
		Status:      domain.PullRequestOpen,
		Targets: []domain.Target{{
			Repository:  in.Repository,
			Source:      "refs/heads/" + in.Source,
			Destination: "refs/heads/" + in.Destination,
		}},
	}, nil
}

// GetPullRequest returns a stored PR.
func (m *MockCodeCommit) GetPullRequest(_ context.Context, _, id string) (*domain.PullRequest, error) {
	m.mu.Lock()
	m.GetCalls = append(m.GetCalls, id)
	m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	pr, ok := m.PullRequests[id]
	if !ok {
		return nil, domain.ErrPullRequestNotFound
	}
	return pr, nil
}

// ListPullRequests returns ListIDs, filtered by status and author when set.
func (m *MockCodeCommit) ListPullRequests(_ context.Context, _, repository string, status domain.PullRequestStatus, authorARN string) ([]string, error) {
	m.mu.Lock()
	m.ListCalls = append(m.ListCalls, fmt.Sprintf("%s %s %s", repository, status, authorARN))
	m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	var ids []string
	for _, id := range m.ListIDs {
		pr := m.PullRequests[id]
		if pr != nil && status != "" && pr.Status != status {
			continue
		}
		if pr != nil && authorARN != "" && pr.AuthorARN != "" && pr.AuthorARN != authorARN {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// MergePullRequestBySquash records the input and closes the PR.
func (m *MockCodeCommit) MergePullRequestBySquash(_ context.Context, _ string, in domain.MergeInput) (*domain.PullRequest, error) {
	if m.MergeErr != nil {
		return nil, m.MergeErr
	}
	m.Merged = &in
	pr, ok := m.PullRequests[in.PullRequestID]
	if !ok {
		return nil, domain.ErrPullRequestNotFound
	}
	merged := *pr
	merged.Status = domain.PullRequestClosed
	return &merged, nil
}

// PipelineState returns Stages.
func (m *MockCodeCommit) PipelineState(_ context.Context, _, _ string) ([]domain.PipelineStage, error) {
	return m.Stages, nil
}

// MockTicketService is a test double for domain.TicketService.
type MockTicketService struct {
	Tickets     map[int]*domain.Ticket
	States      map[int]domain.EntityState
	Me          *domain.User
	GetErr      error
	GetErrs     map[int]error
	AssignErr   error
	StateErr    error
	SprintErr   error
	URL         string
	Sprint      []domain.Ticket
	ProjectList []domain.ProjectRef
	Assigned    [][2]int
	GetCalls    int
	SprintCalls int
	mu          sync.Mutex
}

// NewMockTicketService creates a MockTicketService.
func NewMockTicketService() *MockTicketService {
	return &MockTicketService{
		Tickets: make(map[int]*domain.Ticket),
		States:  make(map[int]domain.EntityState),
		URL:     "https://acme.tpondemand.com",
		Me:      &domain.User{ID: 7, FirstName: "Jane", LastName: "Doe", Login: "jane.doe", Email: "jane@acme.io"},
	}
}

// AddTicket stores a ticket.
func (m *MockTicketService) AddTicket(t *domain.Ticket) {
	m.Tickets[t.ID] = t
}

// GetTicket returns a stored ticket.
func (m *MockTicketService) GetTicket(_ context.Context, id int) (*domain.Ticket, error) {
	m.mu.Lock()
	m.GetCalls++
	m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	if err := m.GetErrs[id]; err != nil {
		return nil, err
	}
	t, ok := m.Tickets[id]
	if !ok {
		return nil, domain.ErrTicketNotFound
	}
	return t, nil
}

// CurrentUser returns Me.
func (m *MockTicketService) CurrentUser(_ context.Context) (*domain.User, error) {
	return m.Me, nil
}

// CurrentSprintTickets returns Sprint.
func (m *MockTicketService) CurrentSprintTickets(_ context.Context, _ string) ([]domain.Ticket, error) {
	m.SprintCalls++
	return m.Sprint, m.SprintErr
}

// Projects returns a page of ProjectList.
func (m *MockTicketService) Projects(_ context.Context, skip, take int) ([]domain.ProjectRef, error) {
	if skip >= len(m.ProjectList) {
		return nil, nil
	}
	end := min(skip+take, len(m.ProjectList))
	return m.ProjectList[skip:end], nil
}

// Assign records the assignment.
func (m *MockTicketService) Assign(_ context.Context, ticketID, userID int) error {
	if m.AssignErr != nil {
		return m.AssignErr
	}
	m.Assigned = append(m.Assigned, [2]int{ticketID, userID})
	return nil
}

// UpdateState records the new state.
func (m *MockTicketService) UpdateState(_ context.Context, ticketID int, state domain.EntityState) error {
	if m.StateErr != nil {
		return m.StateErr
	}
	m.States[ticketID] = state
	return nil
}

// BaseURL returns URL.
func (m *MockTicketService) BaseURL() string {
	return m.URL
}

// MockNotifier is a test double for domain.Notifier.
type MockNotifier struct {
	Err     error
	Sent    []domain.PullRequestNotification
	Webhook string
}

// NotifyPullRequest records the notification.
func (m *MockNotifier) NotifyPullRequest(_ context.Context, webhookURL string, n domain.PullRequestNotification) error {
	if m.Err != nil {
		return m.Err
	}
	m.Webhook = webhookURL
	m.Sent = append(m.Sent, n)
	return nil
}

// MockTextGenerator is a test double for domain.TextGenerator.
type MockTextGenerator struct {
	Err      error
	Response string
	Requests []domain.CompletionRequest
}

// Complete records the request and returns Response.
func (m *MockTextGenerator) Complete(_ context.Context, req domain.CompletionRequest) (string, error) {
	m.Requests = append(m.Requests, req)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

// Factory returns a domain.TextGeneratorFactory yielding m and recording
// the provider and key it was asked for.
func (m *MockTextGenerator) Factory(gotProvider, gotKey *string) domain.TextGeneratorFactory {
	return func(provider, apiKey string) (domain.TextGenerator, error) {
		if gotProvider != nil {
			*gotProvider = provider
		}
		if gotKey != nil {
			*gotKey = apiKey
		}
		if apiKey == "" {
			return nil, domain.ErrMissingAPIKey
		}
		return m, nil
	}
}

// MockConfigStore is a test double for domain.ConfigStore.
type MockConfigStore struct {
	Config    *domain.Config
	Env       *domain.Config
	SaveErr   error
	Saved     *domain.Config
	SaveCount int
}

// Exists reports whether Config is set.
func (m *MockConfigStore) Exists() bool {
	return m.Config != nil
}

// Load returns a copy of Config.
func (m *MockConfigStore) Load() (*domain.Config, error) {
	if m.Config == nil {
		return nil, domain.ErrConfigNotFound
	}
	cfg := *m.Config
	return &cfg, nil
}

// Defaults returns Env, or an empty config.
func (m *MockConfigStore) Defaults() *domain.Config {
	if m.Env == nil {
		return &domain.Config{}
	}
	cfg := *m.Env
	return &cfg
}

// Save records the config.
func (m *MockConfigStore) Save(cfg *domain.Config) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	saved := *cfg
	m.Saved = &saved
	m.Config = &saved
	m.SaveCount++
	return nil
}

// Path returns a fixed path.
func (m *MockConfigStore) Path() string {
	return "/home/test/.config/tpaws/config.json"
}

// MockProjectConfigStore is a test double for domain.ProjectConfigStore.
type MockProjectConfigStore struct {
	Config *domain.ProjectConfig
	Saved  *domain.ProjectConfig
}

// Exists reports whether Config is set.
func (m *MockProjectConfigStore) Exists() bool {
	return m.Config != nil
}

// Load returns Config.
func (m *MockProjectConfigStore) Load() (*domain.ProjectConfig, error) {
	if m.Config == nil {
		return nil, domain.ErrConfigNotFound
	}
	return m.Config, nil
}

// Save records the config.
func (m *MockProjectConfigStore) Save(cfg *domain.ProjectConfig) error {
	m.Saved = cfg
	m.Config = cfg
	return nil
}

// MockManifestStore is a test double for domain.ManifestStore.
type MockManifestStore struct {
	Written *domain.Version
	ReadErr error
	File    string
	Version domain.Version
}

// ReadVersion returns Version.
func (m *MockManifestStore) ReadVersion() (domain.Version, string, error) {
	if m.ReadErr != nil {
		return domain.Version{}, "", m.ReadErr
	}
	return m.Version, m.File, nil
}

// WriteVersion records the version.
func (m *MockManifestStore) WriteVersion(v domain.Version) error {
	m.Written = &v
	m.Version = v
	return nil
}

// MockPrompter is a test double for domain.Prompter. Answers are looked
// up by question title; unanswered questions take their default (or the
// first option for Select).
type MockPrompter struct {
	Confirms  map[string]bool
	Selects   map[string]string
	Inputs    map[string]string
	SelectErr error
	Asked     []string
	Options   map[string][]string
}

// NewMockPrompter creates a MockPrompter with empty answer maps.
func NewMockPrompter() *MockPrompter {
	return &MockPrompter{
		Confirms: map[string]bool{},
		Selects:  map[string]string{},
		Inputs:   map[string]string{},
		Options:  map[string][]string{},
	}
}

// Confirm answers from Confirms or returns def.
func (m *MockPrompter) Confirm(title string, def bool) (bool, error) {
	m.Asked = append(m.Asked, title)
	if v, ok := m.Confirms[title]; ok {
		return v, nil
	}
	return def, nil
}

// Select answers from Selects or returns the first option.
func (m *MockPrompter) Select(title string, options []string) (string, error) {
	m.Asked = append(m.Asked, title)
	m.Options[title] = options
	if m.SelectErr != nil {
		return "", m.SelectErr
	}
	if v, ok := m.Selects[title]; ok {
		return v, nil
	}
	if len(options) == 0 {
		return "", fmt.Errorf("%s: no options", title)
	}
	return options[0], nil
}

// Input answers from Inputs or returns def.
func (m *MockPrompter) Input(title, def, _ string) (string, error) {
	m.Asked = append(m.Asked, title)
	if v, ok := m.Inputs[title]; ok {
		return v, nil
	}
	return def, nil
}

// WasAsked reports whether a question with the title was shown.
func (m *MockPrompter) WasAsked(title string) bool {
	for _, a := range m.Asked {
		if a == title {
			return true
		}
	}
	return false
}

// MockProgress is a test double for domain.Progress. Each finished step is
// recorded as "<status>: <message>".
type MockProgress struct {
	Started []string
	Results []string
}

// Start records the step.
func (m *MockProgress) Start(message string) domain.ProgressTask {
	m.Started = append(m.Started, message)
	return &mockTask{progress: m}
}

type mockTask struct {
	progress *MockProgress
}

func (t *mockTask) Done(msg string) { t.progress.Results = append(t.progress.Results, "done: "+msg) }
func (t *mockTask) Skip(msg string) { t.progress.Results = append(t.progress.Results, "skip: "+msg) }
func (t *mockTask) Fail(msg string) { t.progress.Results = append(t.progress.Results, "fail: "+msg) }

// MockBrowser is a test double for domain.Browser.
type MockBrowser struct {
	Opened []string
	Copied []string
}

// Open records the URL.
func (m *MockBrowser) Open(url string) error {
	m.Opened = append(m.Opened, url)
	return nil
}

// Copy records the text.
func (m *MockBrowser) Copy(text string) error {
	m.Copied = append(m.Copied, text)
	return nil
}

// MockExecutor is a test double for domain.CommandExecutor. Outputs are
// looked up by the command line; unknown commands return empty output.
type MockExecutor struct {
	Outputs  map[string]string
	Errors   map[string]error
	Commands []string
	Missing  map[string]bool
	mu       sync.Mutex
}

// NewMockExecutor creates a MockExecutor.
func NewMockExecutor() *MockExecutor {
	return &MockExecutor{
		Outputs: map[string]string{},
		Errors:  map[string]error{},
		Missing: map[string]bool{},
	}
}

// Execute records the command and returns the configured output.
func (m *MockExecutor) Execute(_ context.Context, cmd *domain.ExecCommand) ([]byte, error) {
	line := cmd.String()
	m.mu.Lock()
	m.Commands = append(m.Commands, line)
	m.mu.Unlock()
	if err, ok := m.Errors[line]; ok {
		return nil, err
	}
	return []byte(strings.TrimSpace(m.Outputs[line])), nil
}

// ExecuteInteractive records the command.
func (m *MockExecutor) ExecuteInteractive(ctx context.Context, cmd *domain.ExecCommand) error {
	_, err := m.Execute(ctx, cmd)
	return err
}

// LookPath reports whether the program is not marked missing.
func (m *MockExecutor) LookPath(program string) bool {
	return !m.Missing[program]
}

var (
	_ domain.Git                = (*MockGit)(nil)
	_ domain.CodeCommit         = (*MockCodeCommit)(nil)
	_ domain.TicketService      = (*MockTicketService)(nil)
	_ domain.Notifier           = (*MockNotifier)(nil)
	_ domain.TextGenerator      = (*MockTextGenerator)(nil)
	_ domain.ConfigStore        = (*MockConfigStore)(nil)
	_ domain.ProjectConfigStore = (*MockProjectConfigStore)(nil)
	_ domain.ManifestStore      = (*MockManifestStore)(nil)
	_ domain.Prompter           = (*MockPrompter)(nil)
	_ domain.Progress           = (*MockProgress)(nil)
	_ domain.Browser            = (*MockBrowser)(nil)
	_ domain.CommandExecutor    = (*MockExecutor)(nil)
	_ domain.Clock              = (*MockClock)(nil)
)
