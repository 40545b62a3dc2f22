package core

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(context.Background(), envconfig.MapLookuper(map[string]string{}))
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.PipelineModelProvider())
	assert.Equal(t, "ollama", cfg.AssistantModelProvider())
	assert.Equal(t, "gemini-2.0-flash-exp", cfg.GeminiModel)
	assert.Equal(t, "llama3.2:3b", cfg.OllamaModel)
	assert.Equal(t, "http://localhost:11434/v1", cfg.OllamaBaseURL)
	assert.Equal(t, "http://api.weatherapi.com/v1", cfg.WeatherBaseURL)
	assert.Equal(t, 10*time.Second, cfg.WeatherTimeout)
	assert.Equal(t, 1.0, cfg.WeatherRate)
	assert.Equal(t, 5, cfg.WeatherBurst)
	assert.Empty(t, cfg.WeatherAPIKey)
	assert.Equal(t, filepath.Join(".", "data", "sessions.db"), cfg.SessionsDBPath())
}

func TestLoadConfigOverrides(t *testing.T) {
	cfg, err := loadConfig(context.Background(), envconfig.MapLookuper(map[string]string{
		"AGENTDEMO_ROOT":          "/srv/agents",
		"PIPELINE_MODEL_PROVIDER": "anthropic",
		"WEATHER_TIMEOUT":         "3s",
		"WEATHER_RATE_PER_SEC":    "0.5",
		"WEATHER_API_KEY":         "k",
	}))
	require.NoError(t, err)

	assert.Equal(t, "anthropic", cfg.PipelineModelProvider())
	assert.Equal(t, "ollama", cfg.AssistantModelProvider())
	assert.Equal(t, 3*time.Second, cfg.WeatherTimeout)
	assert.Equal(t, 0.5, cfg.WeatherRate)
	assert.Equal(t, "k", cfg.WeatherAPIKey)
	assert.Equal(t, "/srv/agents/data/sessions.db", cfg.SessionsDBPath())

	cfg.SessionsDB = "/tmp/s.db"
	assert.Equal(t, "/tmp/s.db", cfg.SessionsDBPath())
}

func TestModelProviderFallback(t *testing.T) {
	cfg, err := loadConfig(context.Background(), envconfig.MapLookuper(map[string]string{
		"MODEL_PROVIDER":           "anthropic",
		"ASSISTANT_MODEL_PROVIDER": "ollama",
	}))
	require.NoError(t, err)

	assert.Equal(t, "anthropic", cfg.PipelineModelProvider())
	assert.Equal(t, "ollama", cfg.AssistantModelProvider())
}

func TestCreateModel(t *testing.T) {
	ctx := context.Background()
	cfg, err := loadConfig(ctx, envconfig.MapLookuper(map[string]string{}))
	require.NoError(t, err)

	llm, err := CreateModel(ctx, cfg, ProviderOllama)
	require.NoError(t, err)
	assert.Equal(t, "llama3.2:3b", llm.Name())

	_, err = CreateModel(ctx, cfg, ProviderAnthropic)
	assert.ErrorContains(t, err, "ANTHROPIC_API_KEY")

	cfg.AnthropicAPIKey = "sk-test"
	llm, err = CreateModel(ctx, cfg, ProviderAnthropic)
	require.NoError(t, err)
	assert.Equal(t, "claude-sonnet-4-5", llm.Name())

	_, err = CreateModel(ctx, cfg, ProviderGemini)
	assert.ErrorContains(t, err, "GOOGLE_API_KEY")

	_, err = CreateModel(ctx, cfg, "lite")
	assert.ErrorContains(t, err, "unknown model provider")
}
