package agents

import (
	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/model"
)

// NewCodeReviewerAgent creates the second pipeline stage. It only sees the
// writer's output.
func NewCodeReviewerAgent(llm model.LLM) (agent.Agent, error) {
	return llmagent.New(llmagent.Config{
		Name:        "CodeReviewerAgent",
		Description: "Reviews code and provides feedback.",
		Instruction: `You are a code-review AI.
Review the Python code below.
Give constructive feedback on potential bugs, style issues, or improvements.
Focus on clarity and correctness.
Output only the review comments.

Code to review:
{generated_code}`,
		Model:     llm,
		OutputKey: KeyReviewComments,
	})
}
