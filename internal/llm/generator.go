package llm

import (
	"context"

	"github.com/ppiankov/memodraft/internal/model"
)

// Generator produces memo text from a prompt. Implementations may return
// empty or malformed text; callers post-process the result.
type Generator interface {
	// Name returns the provider name
	Name() string

	// Generate returns the model's completion for prompt
	Generate(ctx context.Context, prompt string) (string, error)

	// Ping reports whether the provider is configured and reachable
	Ping(ctx context.Context) error
}

// systemPrompt is sent as the system message by chat-style providers
const systemPrompt = "You write real corporate email memos in English. Follow the requested layout exactly and use only the facts you are given."

// Config holds generator configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", "offline" or ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama, OpenAI-compatible gateways)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "offline",
		Timeout:   60,
		MaxTokens: 800,
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config
func ConfigFromModel(modelConfig model.LLMConfig) Config {
	return Config{
		Provider:   modelConfig.Provider,
		Model:      modelConfig.Model,
		APIKey:     modelConfig.APIKey,
		BaseURL:    modelConfig.BaseURL,
		Timeout:    modelConfig.Timeout,
		MaxTokens:  modelConfig.MaxTokens,
		HTTPProxy:  modelConfig.HTTPProxy,
		HTTPSProxy: modelConfig.HTTPSProxy,
		NoProxy:    modelConfig.NoProxy,
	}
}

func maxTokensOrDefault(n int) int {
	if n <= 0 {
		return 800
	}
	return n
}
