package agents

import (
	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/model"
)

// NewCodeWriterAgent creates the first pipeline stage.
func NewCodeWriterAgent(llm model.LLM) (agent.Agent, error) {
	return llmagent.New(llmagent.Config{
		Name:        "CodeWriterAgent",
		Description: "Writes initial code from a specification.",
		Instruction: `You are a code-writing AI.
Based on the user's request, write the initial Python code.
Output only the raw code block.`,
		Model:     llm,
		OutputKey: KeyGeneratedCode,
	})
}
