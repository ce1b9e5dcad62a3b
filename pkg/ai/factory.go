package ai

import (
	"context"
	"fmt"

	"devtodo-backend/pkg/gemini"
)

// Config holds AI provider configuration
type Config struct {
	Provider ProviderType // "litellm", "gemini", "ollama" or "auto"

	// LiteLLM config
	LiteLLMURL    string
	LiteLLMAPIKey string
	LiteLLMModel  string

	// Gemini config
	GeminiAPIKey string

	// Ollama config. The getters, when set, win over the static values so the
	// settings API can repoint Ollama at runtime.
	OllamaBaseURL   string
	OllamaModel     string
	OllamaBaseURLFn func() string
	OllamaModelFn   func() string
}

// geminiCompleter adapts the Gemini REST client to Completer
type geminiCompleter struct {
	svc *gemini.GeminiService
}

func (g geminiCompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	return g.svc.Generate(ctx, req.System, req.Prompt, req.Temperature, req.MaxTokens)
}

// NewCompleter creates a Completer based on the config.
// This is the factory function - switch AI provider by changing config.Provider
func NewCompleter(cfg Config) (Completer, error) {
	switch cfg.Provider {
	case ProviderLiteLLM:
		if cfg.LiteLLMURL == "" {
			return nil, fmt.Errorf("LITELLM_URL is required for LiteLLM provider")
		}
		return NewLiteLLMService(cfg.LiteLLMURL, cfg.LiteLLMAPIKey, cfg.LiteLLMModel), nil

	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required for Gemini provider")
		}
		return geminiCompleter{svc: gemini.NewGeminiService(cfg.GeminiAPIKey)}, nil

	case ProviderOllama:
		return newOllama(cfg), nil

	case ProviderAuto, "":
		// LiteLLM first, then Gemini if a key is available, otherwise Ollama
		var primary Completer
		primaryName := ""
		if cfg.LiteLLMURL != "" {
			primary = NewLiteLLMService(cfg.LiteLLMURL, cfg.LiteLLMAPIKey, cfg.LiteLLMModel)
			primaryName = "LiteLLM"
		}

		var secondary Completer = newOllama(cfg)
		secondaryName := "Ollama"
		if cfg.GeminiAPIKey != "" {
			secondary = geminiCompleter{svc: gemini.NewGeminiService(cfg.GeminiAPIKey)}
			secondaryName = "Gemini"
		}

		if primary == nil {
			return secondary, nil
		}
		return NewFallbackService(primaryName, primary, secondaryName, secondary), nil

	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}
}

func newOllama(cfg Config) *OllamaService {
	if cfg.OllamaBaseURLFn != nil && cfg.OllamaModelFn != nil {
		return NewOllamaServiceWithGetters(cfg.OllamaBaseURLFn, cfg.OllamaModelFn)
	}
	return NewOllamaService(cfg.OllamaBaseURL, cfg.OllamaModel)
}
