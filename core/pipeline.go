package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/TonyQJH/ADK-AgentTesting/core/agents"
	"github.com/TonyQJH/ADK-AgentTesting/core/store"

	"github.com/chainguard-dev/clog"
	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/workflowagents/sequentialagent"
	"google.golang.org/adk/model"
	"google.golang.org/adk/session"
	"google.golang.org/genai"
)

// Archiver records completed pipeline runs. *store.Store satisfies it.
type Archiver interface {
	Save(ctx context.Context, run *store.PipelineRun) error
}

// PipelineConfig configures the code pipeline and its dispatcher.
type PipelineConfig struct {
	LLM model.LLM

	// Archive is optional.
	Archive Archiver
}

// BuildCodePipeline creates CodePipelineAgent: writer, reviewer and
// refactorer, always run in that order.
func BuildCodePipeline(cfg PipelineConfig) (agent.Agent, error) {
	writer, err := agents.NewCodeWriterAgent(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("writer agent: %w", err)
	}
	reviewer, err := agents.NewCodeReviewerAgent(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("reviewer agent: %w", err)
	}
	refactorer, err := agents.NewCodeRefactorerAgent(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("refactorer agent: %w", err)
	}

	var after []agent.AfterAgentCallback
	if cfg.Archive != nil {
		after = append(after, archiveRun(cfg.Archive))
	}

	pipeline, err := sequentialagent.New(sequentialagent.Config{
		AgentConfig: agent.Config{
			Name:                "CodePipelineAgent",
			Description:         "Runs the write, review and refactor stages in order.",
			SubAgents:           []agent.Agent{writer, reviewer, refactorer},
			AfterAgentCallbacks: after,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("pipeline agent: %w", err)
	}
	return pipeline, nil
}

// BuildCodeAssistant creates the CodeAssistant root with the pipeline as
// its only sub-agent.
func BuildCodeAssistant(cfg PipelineConfig) (agent.Agent, error) {
	pipeline, err := BuildCodePipeline(cfg)
	if err != nil {
		return nil, err
	}
	root, err := agents.NewCodeAssistantAgent(cfg.LLM, pipeline)
	if err != nil {
		return nil, fmt.Errorf("code assistant: %w", err)
	}
	return root, nil
}

// archiveRun stores the three slots once the last stage has written.
// It never changes the pipeline's output and never fails the run.
func archiveRun(a Archiver) agent.AfterAgentCallback {
	return func(ctx agent.CallbackContext) (*genai.Content, error) {
		log := clog.FromContext(ctx).With("session", ctx.SessionID())

		slots := make(map[string]string, 3)
		for _, key := range []string{agents.KeyGeneratedCode, agents.KeyReviewComments, agents.KeyRefactoredCode} {
			v, err := ctx.State().Get(key)
			if err != nil {
				log.Warnf("archive: pipeline incomplete, %s missing", key)
				return nil, nil
			}
			slots[key] = stateString(v)
		}

		run := &store.PipelineRun{
			AppName:        ctx.AppName(),
			UserID:         ctx.UserID(),
			SessionID:      ctx.SessionID(),
			Request:        contentText(ctx.UserContent()),
			GeneratedCode:  slots[agents.KeyGeneratedCode],
			ReviewComments: slots[agents.KeyReviewComments],
			RefactoredCode: slots[agents.KeyRefactoredCode],
		}
		if err := a.Save(ctx, run); err != nil {
			log.Warnf("archive: %v", err)
			return nil, nil
		}
		log.Debugf("archive: stored run %d", run.ID)
		return nil, nil
	}
}

func stateString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func contentText(c *genai.Content) string {
	if c == nil {
		return ""
	}
	var parts []string
	for _, p := range c.Parts {
		if p.Text != "" {
			parts = append(parts, p.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// StateSlots reads the pipeline slots from a session. Missing slots are
// left out.
func StateSlots(sess session.Session) map[string]string {
	out := make(map[string]string, 3)
	for _, key := range []string{agents.KeyGeneratedCode, agents.KeyReviewComments, agents.KeyRefactoredCode} {
		if v, err := sess.State().Get(key); err == nil {
			out[key] = stateString(v)
		}
	}
	return out
}
