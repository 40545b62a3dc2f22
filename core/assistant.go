package core

import (
	"fmt"

	"github.com/TonyQJH/ADK-AgentTesting/core/agents"
	"github.com/TonyQJH/ADK-AgentTesting/core/tools"

	"google.golang.org/adk/agent"
	"google.golang.org/adk/model"
)

// BuildWeatherAgent creates weather_time_agent with its three lookup tools.
func BuildWeatherAgent(llm model.LLM, client *tools.WeatherClient) (agent.Agent, error) {
	weatherTools, err := tools.NewWeatherTools(client)
	if err != nil {
		return nil, fmt.Errorf("weather tools: %w", err)
	}
	a, err := agents.NewWeatherTimeAgent(llm, weatherTools)
	if err != nil {
		return nil, fmt.Errorf("weather agent: %w", err)
	}
	return a, nil
}

// BuildHelpfulAgent creates the tool-less helpful_agent.
func BuildHelpfulAgent(llm model.LLM) (agent.Agent, error) {
	a, err := agents.NewHelpfulAgent(llm)
	if err != nil {
		return nil, fmt.Errorf("helpful agent: %w", err)
	}
	return a, nil
}
