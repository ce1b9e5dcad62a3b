package ai

import "context"

// CompletionRequest is a single system + user prompt exchange
type CompletionRequest struct {
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// Completer is the interface every LLM provider implements.
// Implement this interface to add new AI providers (LiteLLM, Ollama, Gemini, etc.)
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// ProviderType represents the AI provider type
type ProviderType string

const (
	ProviderLiteLLM ProviderType = "litellm"
	ProviderGemini  ProviderType = "gemini"
	ProviderOllama  ProviderType = "ollama"
	ProviderAuto    ProviderType = "auto"
)
