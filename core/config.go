package core

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config is read from the environment (and a .env file, loaded by the binaries).
type Config struct {
	Root        string `env:"AGENTDEMO_ROOT,default=."`
	SessionsDB  string `env:"SESSIONS_DB"`
	MetricsAddr string `env:"METRICS_ADDR"`

	// Provider per app: gemini, anthropic or ollama. MODEL_PROVIDER applies
	// to both unless the per-app key is set.
	ModelProvider     string `env:"MODEL_PROVIDER"`
	PipelineProvider  string `env:"PIPELINE_MODEL_PROVIDER"`
	AssistantProvider string `env:"ASSISTANT_MODEL_PROVIDER"`

	GoogleAPIKey string `env:"GOOGLE_API_KEY"`
	GeminiModel  string `env:"GEMINI_MODEL,default=gemini-2.0-flash-exp"`

	AnthropicAPIKey  string `env:"ANTHROPIC_API_KEY"`
	AnthropicBaseURL string `env:"ANTHROPIC_API_BASE"`
	AnthropicModel   string `env:"ANTHROPIC_MODEL,default=claude-sonnet-4-5"`

	OllamaBaseURL string `env:"OLLAMA_API_BASE,default=http://localhost:11434/v1"`
	OllamaModel   string `env:"OLLAMA_MODEL,default=llama3.2:3b"`
	OllamaAPIKey  string `env:"OLLAMA_API_KEY,default=ollama"`

	WeatherAPIKey  string        `env:"WEATHER_API_KEY"`
	WeatherBaseURL string        `env:"WEATHER_API_BASE,default=http://api.weatherapi.com/v1"`
	WeatherTimeout time.Duration `env:"WEATHER_TIMEOUT,default=10s"`
	WeatherRate    float64       `env:"WEATHER_RATE_PER_SEC,default=1"`
	WeatherBurst   int           `env:"WEATHER_BURST,default=5"`
	CityTableFile  string        `env:"CITY_TABLE_FILE"`
}

// LoadConfig reads Config from the process environment.
func LoadConfig(ctx context.Context) (*Config, error) {
	return loadConfig(ctx, envconfig.OsLookuper())
}

func loadConfig(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("process config: %w", err)
	}
	return &cfg, nil
}

// PipelineModelProvider is the provider for the code pipeline (gemini by default).
func (c *Config) PipelineModelProvider() string {
	return firstNonEmpty(c.PipelineProvider, c.ModelProvider, ProviderGemini)
}

// AssistantModelProvider is the provider for the weather and helpful agents
// (ollama by default).
func (c *Config) AssistantModelProvider() string {
	return firstNonEmpty(c.AssistantProvider, c.ModelProvider, ProviderOllama)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// SessionsDBPath is where sessions and archived pipeline runs live.
func (c *Config) SessionsDBPath() string {
	if c.SessionsDB != "" {
		return c.SessionsDB
	}
	return filepath.Join(c.Root, "data", "sessions.db")
}
