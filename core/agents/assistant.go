package agents

import (
	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/model"
)

// NewCodeAssistantAgent creates the root dispatcher. pipeline is its only
// sub-agent; delegation happens through agent transfer.
func NewCodeAssistantAgent(llm model.LLM, pipeline agent.Agent) (agent.Agent, error) {
	return llmagent.New(llmagent.Config{
		Name:        "CodeAssistant",
		Description: "Improves code through a write, review and refactor pipeline.",
		Instruction: `You are a code assistant AI.
You help users improve code through a three-step pipeline:
1. Write initial code from the specification
2. Review the code for problems and improvements
3. Refactor the code based on the review feedback

When the user asks for help with code, transfer to ` + pipeline.Name() + ` to handle the request.
Present the final, refactored code to the user as your response.`,
		Model:     llm,
		SubAgents: []agent.Agent{pipeline},
	})
}
