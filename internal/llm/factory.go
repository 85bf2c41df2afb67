package llm

import (
	"fmt"
	"strings"
)

// NewGenerator creates a generator based on configuration
func NewGenerator(config Config) (Generator, error) {
	provider := strings.ToLower(config.Provider)

	switch provider {
	case "openai", "deepseek":
		return NewOpenAIGenerator(config)

	case "anthropic", "claude":
		return NewAnthropicGenerator(config)

	case "ollama":
		return NewOllamaGenerator(config)

	case "offline", "":
		// No remote model: assemble the memo locally from the prompt
		return NewOfflineGenerator(), nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, anthropic, ollama, offline)", config.Provider)
	}
}

// APIKeyEnv returns the environment variable holding the provider's API key
func APIKeyEnv(provider string) string {
	switch strings.ToLower(provider) {
	case "openai":
		return "OPENAI_API_KEY"
	case "deepseek":
		return "DEEPSEEK_API_KEY"
	case "anthropic", "claude":
		return "ANTHROPIC_API_KEY"
	default:
		return ""
	}
}
