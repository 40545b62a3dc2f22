package agents

import (
	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/model"
)

// NewCodeRefactorerAgent creates the last pipeline stage.
func NewCodeRefactorerAgent(llm model.LLM) (agent.Agent, error) {
	return llmagent.New(llmagent.Config{
		Name:        "CodeRefactorerAgent",
		Description: "Refactors code based on review comments.",
		Instruction: `You are a code-refactoring AI.
Take the original Python code and the review comments below.
Refactor the original code to address the feedback and improve its quality.
Output only the final, refactored code block.

Original code:
{generated_code}

Review comments:
{review_comments}`,
		Model:     llm,
		OutputKey: KeyRefactoredCode,
	})
}
