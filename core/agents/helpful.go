package agents

import (
	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/model"
)

// NewHelpfulAgent creates a plain chat agent with no tools.
func NewHelpfulAgent(llm model.LLM) (agent.Agent, error) {
	return llmagent.New(llmagent.Config{
		Name:        "helpful_agent",
		Description: "a helpful assistant.",
		Instruction: "You are a helpful assistant",
		Model:       llm,
	})
}
