package domain

import (
	"strings"
	"time"
)

// AuthTTL is how long an AWS SSO session is considered valid.
const AuthTTL = 8 * time.Hour

// Default values used when the config does not set them.
const (
	DefaultAIProvider = "groq"
	DefaultAIModel    = "llama3-8b-8192"
	DefaultBaseBranch = "develop"
	DefaultProfile    = "default"
	DefaultRemote     = "origin"
	DefaultMainBranch = "master"
)

// Config is the global user configuration.
// Fields are ordered to minimize memory padding.
type Config struct {
	LastAuth        *time.Time `json:"last_auth,omitempty"`
	Username        string     `json:"username,omitempty"`
	PRName          string     `json:"pr_name,omitempty"`
	PREmail         string     `json:"pr_email,omitempty"`
	ARN             string     `json:"arn,omitempty"`
	AIProvider      string     `json:"ai_provider,omitempty"`
	AIAPIKey        string     `json:"ai_api_key,omitempty"`
	AIModel         string     `json:"ai_model,omitempty"`
	TPURL           string     `json:"tp_url,omitempty"`
	TPToken         string     `json:"tp_token,omitempty"`
	SlackUserID     string     `json:"slack_user_id,omitempty"`
	SlackWebhookURL string     `json:"slack_webhook_url,omitempty"`
	Reviewers       []Reviewer `json:"reviewers,omitempty"`
	UserID          int        `json:"user_id,omitempty"`
	Debug           bool       `json:"-"`
}

// Reviewer is a Slack user that can be pinged about a pull request.
type Reviewer struct {
	Name    string `json:"name"`
	SlackID string `json:"slack_id"`
}

// IsAuthExpired returns true when the AWS session must be refreshed.
func (c *Config) IsAuthExpired(now time.Time) bool {
	if c.LastAuth == nil || c.ARN == "" {
		return true
	}
	return now.Sub(*c.LastAuth) > AuthTTL
}

// UpdateAuth records a successful authentication.
func (c *Config) UpdateAuth(arn string, now time.Time) {
	c.ARN = arn
	c.LastAuth = &now
}

// HasTargetProcess returns true when the TargetProcess URL and token are set.
func (c *Config) HasTargetProcess() bool {
	return c.TPURL != "" && c.TPToken != ""
}

// AIProviderOrDefault returns the configured AI provider.
func (c *Config) AIProviderOrDefault() string {
	if c.AIProvider == "" {
		return DefaultAIProvider
	}
	return strings.ToLower(c.AIProvider)
}

// AIModelOrDefault returns the configured AI model.
func (c *Config) AIModelOrDefault() string {
	if c.AIModel == "" {
		return DefaultAIModel
	}
	return c.AIModel
}

// ReviewerNames returns the names of configured reviewers.
func (c *Config) ReviewerNames() []string {
	names := make([]string, 0, len(c.Reviewers))
	for _, r := range c.Reviewers {
		names = append(names, r.Name)
	}
	return names
}

// FindReviewer returns the reviewer with the given name.
func (c *Config) FindReviewer(name string) (Reviewer, bool) {
	for _, r := range c.Reviewers {
		if r.Name == name {
			return r, true
		}
	}
	return Reviewer{}, false
}

// Masked returns a copy of the config with secrets hidden.
func (c Config) Masked() Config {
	c.AIAPIKey = maskSecret(c.AIAPIKey)
	c.TPToken = maskSecret(c.TPToken)
	c.SlackWebhookURL = maskSecret(c.SlackWebhookURL)
	return c
}

func maskSecret(s string) string {
	if len(s) <= 4 {
		if s == "" {
			return ""
		}
		return "****"
	}
	return s[:4] + strings.Repeat("*", 8)
}

// ProjectConfig is the per-repository configuration stored in tpaws.json.
type ProjectConfig struct {
	Name          string `json:"name,omitempty"`
	Pipeline      string `json:"pipeline,omitempty"`
	StagingBranch string `json:"staging_branch,omitempty"`
	ProdBranch    string `json:"prod_branch,omitempty"`
	ProjectID     int    `json:"project_id,omitempty"`
}

// ProjectConfigFile is the name of the project config file.
const ProjectConfigFile = "tpaws.json"

// EnvironmentBranch returns the remote branch an environment is pushed to.
func (p *ProjectConfig) EnvironmentBranch(env PushTarget) string {
	switch env {
	case PushStaging:
		if p != nil && p.StagingBranch != "" {
			return p.StagingBranch
		}
	case PushProd:
		if p != nil && p.ProdBranch != "" {
			return p.ProdBranch
		}
	}
	return string(env)
}
