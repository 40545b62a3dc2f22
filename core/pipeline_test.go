package core

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/TonyQJH/ADK-AgentTesting/core/agents"
	"github.com/TonyQJH/ADK-AgentTesting/core/llmtest"
	"github.com/TonyQJH/ADK-AgentTesting/core/store"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/adk/agent"
	"google.golang.org/adk/runner"
	"google.golang.org/adk/session"
)

const (
	writerPrompt     = "code-writing AI"
	reviewerPrompt   = "code-review AI"
	refactorerPrompt = "code-refactoring AI"
	assistantPrompt  = "code assistant AI"

	writtenCode    = "def add(a, b):\n    return a + b"
	reviewText     = "- Add type hints.\n- Add a docstring."
	refactoredCode = "def add(a: int, b: int) -> int:\n    \"\"\"Return a + b.\"\"\"\n    return a + b"
)

type memArchive struct {
	mu   sync.Mutex
	runs []store.PipelineRun
	err  error
}

func (m *memArchive) Save(_ context.Context, run *store.PipelineRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.runs = append(m.runs, *run)
	return nil
}

func (m *memArchive) Runs() []store.PipelineRun {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]store.PipelineRun(nil), m.runs...)
}

func scriptedPipeline() *llmtest.Model {
	return llmtest.New("fake").
		Reply(writerPrompt, writtenCode).
		Reply(reviewerPrompt, reviewText).
		Reply(refactorerPrompt, refactoredCode)
}

func newRunner(t *testing.T, root agent.Agent) (*runner.Runner, session.Service) {
	t.Helper()
	svc := session.InMemoryService()
	_, err := EnsureSession(context.Background(), svc, AppCodePipeline, DefaultUserID, DefaultSessionID)
	require.NoError(t, err)
	r, err := runner.New(runner.Config{AppName: AppCodePipeline, Agent: root, SessionService: svc})
	require.NoError(t, err)
	return r, svc
}

func sessionSlots(t *testing.T, svc session.Service) map[string]string {
	t.Helper()
	resp, err := svc.Get(context.Background(), &session.GetRequest{
		AppName: AppCodePipeline, UserID: DefaultUserID, SessionID: DefaultSessionID,
	})
	require.NoError(t, err)
	return StateSlots(resp.Session)
}

func TestPipelineRunsStagesInOrder(t *testing.T) {
	ctx := context.Background()
	llm := scriptedPipeline()
	archive := &memArchive{}

	pipeline, err := BuildCodePipeline(PipelineConfig{LLM: llm, Archive: archive})
	require.NoError(t, err)
	assert.Equal(t, "CodePipelineAgent", pipeline.Name())
	var names []string
	for _, sub := range pipeline.SubAgents() {
		names = append(names, sub.Name())
	}
	assert.Equal(t, []string{"CodeWriterAgent", "CodeReviewerAgent", "CodeRefactorerAgent"}, names)

	r, svc := newRunner(t, pipeline)
	final, err := CallAgent(ctx, r, DefaultUserID, DefaultSessionID, "add two numbers")
	require.NoError(t, err)
	assert.Equal(t, refactoredCode, final)

	all := llm.Requests("")
	require.Len(t, all, 3)
	assert.Contains(t, all[0].System, writerPrompt)
	assert.Contains(t, all[1].System, reviewerPrompt)
	assert.Contains(t, all[2].System, refactorerPrompt)

	// Each stage only sees what earlier stages wrote.
	assert.NotContains(t, all[0].System, writtenCode)
	assert.Contains(t, all[1].System, writtenCode)
	assert.NotContains(t, all[1].System, reviewText)
	assert.Contains(t, all[2].System, writtenCode)
	assert.Contains(t, all[2].System, reviewText)

	want := map[string]string{
		agents.KeyGeneratedCode:  writtenCode,
		agents.KeyReviewComments: reviewText,
		agents.KeyRefactoredCode: refactoredCode,
	}
	if diff := cmp.Diff(want, sessionSlots(t, svc)); diff != "" {
		t.Errorf("session state (-want +got):\n%s", diff)
	}

	runs := archive.Runs()
	require.Len(t, runs, 1)
	assert.Equal(t, "add two numbers", runs[0].Request)
	assert.Equal(t, DefaultSessionID, runs[0].SessionID)
	assert.Equal(t, DefaultUserID, runs[0].UserID)
	assert.Equal(t, writtenCode, runs[0].GeneratedCode)
	assert.Equal(t, reviewText, runs[0].ReviewComments)
	assert.Equal(t, refactoredCode, runs[0].RefactoredCode)
}

func TestPipelineRerunInSameSession(t *testing.T) {
	ctx := context.Background()
	llm := llmtest.New("fake").
		Reply(writerPrompt, "def first(): pass", "def second(): pass").
		Reply(reviewerPrompt, "first review", "second review").
		Reply(refactorerPrompt, "def first_refactored(): pass", "def second_refactored(): pass")
	archive := &memArchive{}

	pipeline, err := BuildCodePipeline(PipelineConfig{LLM: llm, Archive: archive})
	require.NoError(t, err)
	r, svc := newRunner(t, pipeline)

	final, err := CallAgent(ctx, r, DefaultUserID, DefaultSessionID, "first request")
	require.NoError(t, err)
	assert.Equal(t, "def first_refactored(): pass", final)
	final, err = CallAgent(ctx, r, DefaultUserID, DefaultSessionID, "second request")
	require.NoError(t, err)
	assert.Equal(t, "def second_refactored(): pass", final)

	reviews := llm.Requests(reviewerPrompt)
	require.Len(t, reviews, 2)
	assert.Contains(t, reviews[1].System, "def second(): pass")
	assert.NotContains(t, reviews[1].System, "def first(): pass")

	refactors := llm.Requests(refactorerPrompt)
	require.Len(t, refactors, 2)
	assert.Contains(t, refactors[1].System, "def second(): pass")
	assert.Contains(t, refactors[1].System, "second review")
	assert.NotContains(t, refactors[1].System, "first review")

	want := map[string]string{
		agents.KeyGeneratedCode:  "def second(): pass",
		agents.KeyReviewComments: "second review",
		agents.KeyRefactoredCode: "def second_refactored(): pass",
	}
	if diff := cmp.Diff(want, sessionSlots(t, svc)); diff != "" {
		t.Errorf("session state (-want +got):\n%s", diff)
	}

	runs := archive.Runs()
	require.Len(t, runs, 2)
	assert.Equal(t, "first request", runs[0].Request)
	assert.Equal(t, "def first_refactored(): pass", runs[0].RefactoredCode)
	assert.Equal(t, "second request", runs[1].Request)
	assert.Equal(t, "def second(): pass", runs[1].GeneratedCode)
	assert.Equal(t, "second review", runs[1].ReviewComments)
	assert.Equal(t, "def second_refactored(): pass", runs[1].RefactoredCode)
}

func TestCodeAssistantDelegatesToPipeline(t *testing.T) {
	ctx := context.Background()
	llm := scriptedPipeline().On(assistantPrompt,
		llmtest.Call("transfer_to_agent", map[string]any{"agent_name": "CodePipelineAgent"}),
		llmtest.Text("Here is the refactored code."),
	)
	archive := &memArchive{}

	root, err := BuildCodeAssistant(PipelineConfig{LLM: llm, Archive: archive})
	require.NoError(t, err)
	assert.Equal(t, "CodeAssistant", root.Name())
	require.Len(t, root.SubAgents(), 1)
	assert.Equal(t, "CodePipelineAgent", root.SubAgents()[0].Name())

	r, svc := newRunner(t, root)
	_, err = CallAgent(ctx, r, DefaultUserID, DefaultSessionID, "perform math addition")
	require.NoError(t, err)

	require.NotEmpty(t, llm.Requests(assistantPrompt))
	assert.Contains(t, llm.Requests(assistantPrompt)[0].Tools, "transfer_to_agent")
	assert.Len(t, llm.Requests(writerPrompt), 1)
	assert.Len(t, llm.Requests(reviewerPrompt), 1)
	assert.Len(t, llm.Requests(refactorerPrompt), 1)

	slots := sessionSlots(t, svc)
	assert.Equal(t, refactoredCode, slots[agents.KeyRefactoredCode])
	require.Len(t, archive.Runs(), 1)
	assert.Equal(t, "perform math addition", archive.Runs()[0].Request)
}

func TestPipelineStageFailureStopsRun(t *testing.T) {
	ctx := context.Background()
	llm := llmtest.New("fake").
		Reply(writerPrompt, writtenCode).
		Fail(reviewerPrompt, errors.New("model unavailable"))
	archive := &memArchive{}

	pipeline, err := BuildCodePipeline(PipelineConfig{LLM: llm, Archive: archive})
	require.NoError(t, err)

	r, svc := newRunner(t, pipeline)
	_, err = CallAgent(ctx, r, DefaultUserID, DefaultSessionID, "add two numbers")
	require.ErrorContains(t, err, "model unavailable")

	assert.Empty(t, llm.Requests(refactorerPrompt))
	assert.Empty(t, archive.Runs())
	assert.Equal(t, map[string]string{agents.KeyGeneratedCode: writtenCode}, sessionSlots(t, svc))
}

func TestPipelineArchiveFailureIsIgnored(t *testing.T) {
	ctx := context.Background()
	pipeline, err := BuildCodePipeline(PipelineConfig{
		LLM:     scriptedPipeline(),
		Archive: &memArchive{err: errors.New("disk full")},
	})
	require.NoError(t, err)

	r, _ := newRunner(t, pipeline)
	final, err := CallAgent(ctx, r, DefaultUserID, DefaultSessionID, "add two numbers")
	require.NoError(t, err)
	assert.Equal(t, refactoredCode, final)
}

func TestPipelineWithoutArchive(t *testing.T) {
	pipeline, err := BuildCodePipeline(PipelineConfig{LLM: scriptedPipeline()})
	require.NoError(t, err)

	r, svc := newRunner(t, pipeline)
	_, err = CallAgent(context.Background(), r, DefaultUserID, DefaultSessionID, "add two numbers")
	require.NoError(t, err)
	assert.Len(t, sessionSlots(t, svc), 3)
}

func TestPipelineArchivesToStore(t *testing.T) {
	ctx := context.Background()
	st, err := store.Open(t.TempDir() + "/runs.db")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	pipeline, err := BuildCodePipeline(PipelineConfig{LLM: scriptedPipeline(), Archive: st})
	require.NoError(t, err)

	r, _ := newRunner(t, pipeline)
	_, err = CallAgent(ctx, r, DefaultUserID, DefaultSessionID, "add two numbers")
	require.NoError(t, err)

	runs, err := st.Recent(ctx, 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, refactoredCode, runs[0].RefactoredCode)
}

func TestEnsureSession(t *testing.T) {
	ctx := context.Background()
	svc := session.InMemoryService()

	first, err := EnsureSession(ctx, svc, AppWeather, DefaultUserID, "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", first.ID())

	again, err := EnsureSession(ctx, svc, AppWeather, DefaultUserID, "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", again.ID())

	fresh, err := EnsureSession(ctx, svc, AppWeather, DefaultUserID, "")
	require.NoError(t, err)
	assert.Len(t, fresh.ID(), 36)
	assert.NotEqual(t, "s1", fresh.ID())
}
