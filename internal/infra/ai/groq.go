// Package ai provides text generators used to draft commit messages and
// pull request descriptions.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/runoshun/tpaws/internal/domain"
)

// Provider names accepted in the config.
const (
	ProviderGroq      = "groq"
	ProviderAnthropic = "anthropic"
)

// API key environment variables per provider.
const (
	GroqAPIKeyEnv      = "GROQ_API_KEY"
	AnthropicAPIKeyEnv = "ANTHROPIC_API_KEY"
)

// DefaultGroqURL is the Groq OpenAI-compatible chat completions endpoint.
const DefaultGroqURL = "https://api.groq.com/openai/v1/chat/completions"

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatPayload struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
		Index   int         `json:"index"`
	} `json:"choices"`
}

// Groq calls an OpenAI-compatible chat completions endpoint.
type Groq struct {
	http   *http.Client
	url    string
	apiKey string
}

// Ensure Groq implements domain.TextGenerator interface.
var _ domain.TextGenerator = (*Groq)(nil)

// NewGroq creates a Groq client. An empty url uses DefaultGroqURL.
func NewGroq(apiKey, url string, h *http.Client) *Groq {
	if url == "" {
		url = DefaultGroqURL
	}
	if h == nil {
		h = &http.Client{Timeout: 60 * time.Second}
	}
	return &Groq{http: h, url: url, apiKey: apiKey}
}

// Complete sends the system and user prompt and returns the first choice.
func (g *Groq) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	payload := chatPayload{Model: req.Model}
	if req.System != "" {
		payload.Messages = append(payload.Messages, chatMessage{Role: "system", Content: req.System})
	}
	payload.Messages = append(payload.Messages, chatMessage{Role: "user", Content: req.Prompt})

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode chat payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read chat response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("chat completion: %d %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var out chatResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", domain.ErrEmptyAIResponse
	}
	return out.Choices[0].Message.Content, nil
}
