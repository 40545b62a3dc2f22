package core

import (
	"context"
	"fmt"

	"github.com/TonyQJH/ADK-AgentTesting/core/store"
	"github.com/TonyQJH/ADK-AgentTesting/core/tools"

	"github.com/chainguard-dev/clog"
	"google.golang.org/adk/agent"
	"google.golang.org/adk/runner"
	"google.golang.org/adk/session"
)

// App names used when driving the agents directly (cmd/ask).
const (
	AppCodePipeline = "code_pipeline_app"
	AppWeather      = "weather_time_app"
	AppHelpful      = "helpful_app"

	DefaultUserID    = "dev_user_01"
	DefaultSessionID = "pipeline_session_01"
)

// Apps holds every demo agent and the services they share.
type Apps struct {
	CodeAssistant agent.Agent
	Weather       agent.Agent
	Helpful       agent.Agent

	Sessions session.Service
	Archive  *store.Store
}

// BuildApps wires models, tools, persistence and the three agents from cfg.
// Call Cleanup when done.
func BuildApps(ctx context.Context, cfg *Config) (*Apps, error) {
	dbPath := cfg.SessionsDBPath()
	archive, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("archive: %w", err)
	}
	sessions, err := archive.SessionService()
	if err != nil {
		archive.Close()
		return nil, fmt.Errorf("sessions: %w", err)
	}
	clog.InfoContextf(ctx, "session persistence: %s", dbPath)

	apps, err := buildAgents(ctx, cfg, archive)
	if err != nil {
		archive.Close()
		return nil, err
	}
	apps.Sessions = sessions
	apps.Archive = archive
	return apps, nil
}

func buildAgents(ctx context.Context, cfg *Config, archive Archiver) (*Apps, error) {
	pipelineLLM, err := CreateModel(ctx, cfg, cfg.PipelineModelProvider())
	if err != nil {
		return nil, fmt.Errorf("pipeline model: %w", err)
	}
	assistantLLM, err := CreateModel(ctx, cfg, cfg.AssistantModelProvider())
	if err != nil {
		return nil, fmt.Errorf("assistant model: %w", err)
	}
	clog.InfoContextf(ctx, "models: pipeline=%s assistant=%s", pipelineLLM.Name(), assistantLLM.Name())

	root, err := BuildCodeAssistant(PipelineConfig{LLM: pipelineLLM, Archive: archive})
	if err != nil {
		return nil, err
	}

	cities, err := tools.LoadCityTable(cfg.CityTableFile)
	if err != nil {
		return nil, fmt.Errorf("city table: %w", err)
	}
	if cfg.WeatherAPIKey == "" {
		clog.WarnContextf(ctx, "WEATHER_API_KEY is not set; weather lookups will report an error")
	}
	weather, err := BuildWeatherAgent(assistantLLM, tools.NewWeatherClient(tools.WeatherConfig{
		BaseURL:       cfg.WeatherBaseURL,
		APIKey:        cfg.WeatherAPIKey,
		Timeout:       cfg.WeatherTimeout,
		RatePerSecond: cfg.WeatherRate,
		Burst:         cfg.WeatherBurst,
		Cities:        cities,
	}))
	if err != nil {
		return nil, err
	}

	helpful, err := BuildHelpfulAgent(assistantLLM)
	if err != nil {
		return nil, err
	}

	return &Apps{CodeAssistant: root, Weather: weather, Helpful: helpful}, nil
}

// Loader exposes all agents to the launcher, CodeAssistant first.
func (a *Apps) Loader() (agent.Loader, error) {
	return agent.NewMultiLoader(a.CodeAssistant, a.Weather, a.Helpful)
}

// Agent returns the root agent for an app name.
func (a *Apps) Agent(app string) (agent.Agent, error) {
	switch app {
	case AppCodePipeline, a.CodeAssistant.Name():
		return a.CodeAssistant, nil
	case AppWeather, a.Weather.Name():
		return a.Weather, nil
	case AppHelpful, a.Helpful.Name():
		return a.Helpful, nil
	}
	return nil, fmt.Errorf("unknown app %q", app)
}

// Runner creates a runner for app on the shared session service.
func (a *Apps) Runner(app string) (*runner.Runner, error) {
	root, err := a.Agent(app)
	if err != nil {
		return nil, err
	}
	r, err := runner.New(runner.Config{
		AppName:        app,
		Agent:          root,
		SessionService: a.Sessions,
	})
	if err != nil {
		return nil, fmt.Errorf("runner: %w", err)
	}
	return r, nil
}

// Cleanup closes the database behind both Sessions and Archive.
func (a *Apps) Cleanup() {
	if a.Archive != nil {
		a.Archive.Close()
	}
}
