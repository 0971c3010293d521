package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/runoshun/tpaws/internal/domain"
)

const commitSystemPrompt = `You're an ai specialist, you should know how to generate a commit message.
Given ID, title and content of a User Story generate a commit message for it.

The format should follow conventional commits.
    - "feat(<id>): <message>" -> user stories
    - "fix(<id>): <message>" -> bugs

Return the commit message as response. Just that, no other information is needed.
On a new line, add a longer description for the commit message if needed.

The commit message must be lowercased and in present tense.
Don't just copy the title, but provide a meaningful message.

Return a JSON object with the following structure:
{
    "message": "feat(123): add new feature",
    "description": "This feature will allow users to do X and Y" // optional
}`

// CommitMessage is the AI-drafted commit.
type CommitMessage struct {
	Message     string `json:"message"`
	Description string `json:"description,omitempty"`
}

// GenerateCommitInput contains the parameters for drafting a commit.
type GenerateCommitInput struct {
	IDOrURL string // Ticket id or URL; empty means the current branch
	Model   string // Overrides the configured model
}

// GenerateCommitOutput contains the drafted commit.
type GenerateCommitOutput struct {
	Commit CommitMessage
	Ticket *domain.Ticket
}

// GenerateCommit is the use case for drafting a conventional commit
// message from a ticket.
type GenerateCommit struct {
	git      domain.Git
	tickets  domain.TicketService
	configs  domain.ConfigStore
	prompter domain.Prompter
	newAI    domain.TextGeneratorFactory
}

// NewGenerateCommit creates a new GenerateCommit use case.
func NewGenerateCommit(
	git domain.Git,
	tickets domain.TicketService,
	configs domain.ConfigStore,
	prompter domain.Prompter,
	newAI domain.TextGeneratorFactory,
) *GenerateCommit {
	return &GenerateCommit{git: git, tickets: tickets, configs: configs, prompter: prompter, newAI: newAI}
}

// Execute asks the configured AI provider for a commit message. A missing
// API key is prompted for and saved.
func (uc *GenerateCommit) Execute(ctx context.Context, in GenerateCommitInput) (*GenerateCommitOutput, error) {
	cfg, err := uc.configs.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := ensureAPIKey(cfg, uc.configs, uc.prompter); err != nil {
		return nil, err
	}

	id, err := resolveTicketID(uc.git, in.IDOrURL)
	if err != nil {
		return nil, err
	}
	ticket, err := fetchTicket(ctx, uc.tickets, id)
	if err != nil {
		return nil, err
	}

	gen, err := uc.newAI(cfg.AIProviderOrDefault(), cfg.AIAPIKey)
	if err != nil {
		return nil, err
	}
	model := in.Model
	if model == "" {
		model = cfg.AIModelOrDefault()
	}
	content, err := gen.Complete(ctx, domain.CompletionRequest{
		Model:  model,
		System: commitSystemPrompt,
		Prompt: commitPrompt(ticket),
	})
	if err != nil {
		return nil, fmt.Errorf("generate commit: %w", err)
	}

	commit, err := parseCommitMessage(content)
	if err != nil {
		return nil, err
	}
	return &GenerateCommitOutput{Commit: commit, Ticket: ticket}, nil
}

func commitPrompt(t *domain.Ticket) string {
	desc := strings.TrimSpace(t.Description)
	if desc == "" {
		desc = "No description provided"
	}
	return fmt.Sprintf("ID: %d\nTitle: %s\nType: %s\nDescription:\n%s", t.ID, t.Name, t.EntityType.Name, desc)
}

// parseCommitMessage decodes the JSON object in an AI answer, tolerating
// code fences and text around it.
func parseCommitMessage(content string) (CommitMessage, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end < start {
		return CommitMessage{}, fmt.Errorf("%w: %q", domain.ErrEmptyAIResponse, content)
	}
	var msg CommitMessage
	if err := json.Unmarshal([]byte(content[start:end+1]), &msg); err != nil {
		return CommitMessage{}, fmt.Errorf("decode ai commit message: %w", err)
	}
	if msg.Message == "" {
		return CommitMessage{}, fmt.Errorf("%w: missing message", domain.ErrEmptyAIResponse)
	}
	return msg, nil
}

// ensureAPIKey prompts for a missing AI key and stores it.
func ensureAPIKey(cfg *domain.Config, configs domain.ConfigStore, prompter domain.Prompter) error {
	if cfg.AIAPIKey != "" {
		return nil
	}
	title, placeholder := "Enter your Groq API key:", "gsk_XX"
	if cfg.AIProviderOrDefault() == "anthropic" {
		title, placeholder = "Enter your Anthropic API key:", "sk-ant-XX"
	}
	key, err := prompter.Input(title, "", placeholder)
	if err != nil {
		return err
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return domain.ErrMissingAPIKey
	}
	cfg.AIAPIKey = key
	if err := configs.Save(cfg); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}
