package ai

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/runoshun/tpaws/internal/domain"
)

const anthropicMaxTokens = 1024

// Anthropic calls the Anthropic Messages API.
type Anthropic struct {
	client anthropic.Client
}

// Ensure Anthropic implements domain.TextGenerator interface.
var _ domain.TextGenerator = (*Anthropic)(nil)

// NewAnthropic creates a Messages API client. Extra options (base URL,
// http client) are passed through to the SDK. SDK retries are disabled.
func NewAnthropic(apiKey string, opts ...option.RequestOption) *Anthropic {
	all := append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}, opts...)
	return &Anthropic{client: anthropic.NewClient(all...)}
}

// Complete sends a single-turn message and returns the first text block.
func (a *Anthropic) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		MaxTokens: anthropicMaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	message, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic message: %w", err)
	}
	for _, block := range message.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", domain.ErrEmptyAIResponse
}
