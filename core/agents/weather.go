package agents

import (
	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/model"
	"google.golang.org/adk/tool"
)

// NewWeatherTimeAgent creates the weather/time assistant. tools must provide
// get_weather, get_current_time and intro.
func NewWeatherTimeAgent(llm model.LLM, tools []tool.Tool) (agent.Agent, error) {
	return llmagent.New(llmagent.Config{
		Name:        "weather_time_agent",
		Description: "Assistant that answers questions about the weather and time in cities.",
		Instruction: `I am an assistant that provides weather and time information for cities.
When the user asks about the weather in a city, use the get_weather tool to fetch current weather data.
When the user asks about the current time in a city, use the get_current_time tool to get the exact time.
When the user asks what this agent can do, use the intro tool.
Answer in a friendly way and give the complete weather or time information.
I understand Chinese city names and they are converted to English names automatically.`,
		Model: llm,
		Tools: tools,
	})
}
