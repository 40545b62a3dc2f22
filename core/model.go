package core

import (
	"context"
	"fmt"

	"github.com/TonyQJH/ADK-AgentTesting/anthropicmodel"
	"github.com/TonyQJH/ADK-AgentTesting/openaimodel"

	"google.golang.org/adk/model"
	"google.golang.org/adk/model/gemini"
	"google.golang.org/genai"
)

const (
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
)

// CreateModel builds an LLM client for provider.
func CreateModel(ctx context.Context, cfg *Config, provider string) (model.LLM, error) {
	switch provider {
	case ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY is required when provider is anthropic")
		}
		return anthropicmodel.New(anthropicmodel.Config{
			Model:   cfg.AnthropicModel,
			BaseURL: cfg.AnthropicBaseURL,
			APIKey:  cfg.AnthropicAPIKey,
		}), nil

	case ProviderOllama:
		return openaimodel.New(openaimodel.Config{
			Model:   cfg.OllamaModel,
			BaseURL: cfg.OllamaBaseURL,
			APIKey:  cfg.OllamaAPIKey,
		}), nil

	case ProviderGemini, "":
		if cfg.GoogleAPIKey == "" {
			return nil, fmt.Errorf("GOOGLE_API_KEY is required when provider is gemini")
		}
		return gemini.NewModel(ctx, cfg.GeminiModel, &genai.ClientConfig{
			APIKey: cfg.GoogleAPIKey,
		})

	default:
		return nil, fmt.Errorf("unknown model provider %q", provider)
	}
}
