package ai

import (
	"fmt"
	"os"
	"strings"

	"github.com/runoshun/tpaws/internal/domain"
)

// NewGenerator returns the text generator for a provider.
func NewGenerator(provider, apiKey string) (domain.TextGenerator, error) {
	if apiKey == "" {
		return nil, domain.ErrMissingAPIKey
	}
	switch strings.ToLower(provider) {
	case "", ProviderGroq:
		return NewGroq(apiKey, "", nil), nil
	case ProviderAnthropic:
		return NewAnthropic(apiKey), nil
	}
	return nil, fmt.Errorf("unknown ai provider %q", provider)
}

// Ensure NewGenerator satisfies domain.TextGeneratorFactory.
var _ domain.TextGeneratorFactory = NewGenerator

// APIKeyFromEnv returns the provider's API key from the environment.
func APIKeyFromEnv(provider string) string {
	if strings.EqualFold(provider, ProviderAnthropic) {
		return os.Getenv(AnthropicAPIKeyEnv)
	}
	return os.Getenv(GroqAPIKeyEnv)
}
