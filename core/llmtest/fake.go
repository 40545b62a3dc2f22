// Package llmtest provides a scripted model.LLM for driving agents in tests.
package llmtest

import (
	"context"
	"fmt"
	"iter"
	"strings"
	"sync"

	"google.golang.org/adk/model"
	"google.golang.org/genai"
)

// Model answers each request by matching a substring of the system
// instruction against its rules, in the order they were added.
type Model struct {
	name string

	mu       sync.Mutex
	rules    []*rule
	requests []Request
}

// Request is a recorded call.
type Request struct {
	System   string
	Contents []*genai.Content
	Tools    []string
}

type rule struct {
	match     string
	responses []*model.LLMResponse
	err       error
}

func New(name string) *Model {
	return &Model{name: name}
}

func (m *Model) Name() string { return m.name }

// Reply queues text answers for requests whose system instruction contains
// match. The last answer repeats once the queue is drained.
func (m *Model) Reply(match string, texts ...string) *Model {
	resps := make([]*model.LLMResponse, 0, len(texts))
	for _, t := range texts {
		resps = append(resps, Text(t))
	}
	return m.On(match, resps...)
}

// On queues arbitrary responses for match.
func (m *Model) On(match string, resps ...*model.LLMResponse) *Model {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules = append(m.rules, &rule{match: match, responses: resps})
	return m
}

// Fail makes requests matching match return err.
func (m *Model) Fail(match string, err error) *Model {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules = append(m.rules, &rule{match: match, err: err})
	return m
}

// Requests returns the recorded requests whose system instruction contains
// match, oldest first. An empty match returns all of them.
func (m *Model) Requests(match string) []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Request
	for _, r := range m.requests {
		if strings.Contains(r.System, match) {
			out = append(out, r)
		}
	}
	return out
}

func (m *Model) GenerateContent(ctx context.Context, req *model.LLMRequest, stream bool) iter.Seq2[*model.LLMResponse, error] {
	return func(yield func(*model.LLMResponse, error) bool) {
		yield(m.next(req))
	}
}

func (m *Model) next(req *model.LLMRequest) (*model.LLMResponse, error) {
	rec := Request{Contents: req.Contents}
	if cfg := req.Config; cfg != nil {
		if cfg.SystemInstruction != nil {
			for _, p := range cfg.SystemInstruction.Parts {
				rec.System += p.Text
			}
		}
		for _, t := range cfg.Tools {
			for _, fd := range t.FunctionDeclarations {
				rec.Tools = append(rec.Tools, fd.Name)
			}
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, rec)

	for _, r := range m.rules {
		if !strings.Contains(rec.System, r.match) {
			continue
		}
		if r.err != nil {
			return nil, r.err
		}
		if len(r.responses) == 0 {
			break
		}
		resp := r.responses[0]
		if len(r.responses) > 1 {
			r.responses = r.responses[1:]
		}
		return clone(resp), nil
	}
	return nil, fmt.Errorf("llmtest: no rule matches system instruction %q", truncate(rec.System, 80))
}

// Text is a complete text answer.
func Text(s string) *model.LLMResponse {
	return &model.LLMResponse{
		Content:      genai.NewContentFromText(s, genai.RoleModel),
		TurnComplete: true,
		FinishReason: genai.FinishReasonStop,
	}
}

// Call is a single function call answer.
func Call(name string, args map[string]any) *model.LLMResponse {
	return &model.LLMResponse{
		Content: &genai.Content{
			Role:  genai.RoleModel,
			Parts: []*genai.Part{{FunctionCall: &genai.FunctionCall{Name: name, Args: args}}},
		},
		FinishReason: genai.FinishReasonStop,
	}
}

// clone copies resp down to its parts so callers may mutate the result.
func clone(resp *model.LLMResponse) *model.LLMResponse {
	out := *resp
	if resp.Content != nil {
		c := *resp.Content
		c.Parts = make([]*genai.Part, len(resp.Content.Parts))
		for i, p := range resp.Content.Parts {
			cp := *p
			if p.FunctionCall != nil {
				fc := *p.FunctionCall
				cp.FunctionCall = &fc
			}
			c.Parts[i] = &cp
		}
		out.Content = &c
	}
	return &out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
