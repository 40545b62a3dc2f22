// Package anthropicmodel adapts the Anthropic Messages API to model.LLM.
package anthropicmodel

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"google.golang.org/adk/model"
	"google.golang.org/genai"
)

const defaultMaxTokens = 8192

// Model implements model.LLM for Anthropic-compatible endpoints.
type Model struct {
	name   string
	client anthropic.Client
}

// Config for creating an Anthropic model.
type Config struct {
	Model   string // e.g. "claude-sonnet-4-5"
	BaseURL string // empty uses the SDK default
	APIKey  string
	Options []option.RequestOption
}

func New(cfg Config) *Model {
	// A failed call surfaces to the runner as is.
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey), option.WithMaxRetries(0)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	opts = append(opts, cfg.Options...)
	return &Model{
		name:   cfg.Model,
		client: anthropic.NewClient(opts...),
	}
}

func (m *Model) Name() string { return m.name }

// GenerateContent always answers with a single, complete response.
func (m *Model) GenerateContent(ctx context.Context, req *model.LLMRequest, stream bool) iter.Seq2[*model.LLMResponse, error] {
	return func(yield func(*model.LLMResponse, error) bool) {
		yield(m.generate(ctx, req))
	}
}

func (m *Model) generate(ctx context.Context, req *model.LLMRequest) (*model.LLMResponse, error) {
	params, err := m.convertRequest(req)
	if err != nil {
		return nil, err
	}
	msg, err := m.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic messages: %w", err)
	}
	return convertResponse(msg)
}

func (m *Model) convertRequest(req *model.LLMRequest) (anthropic.MessageNewParams, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(m.name),
		MaxTokens: defaultMaxTokens,
	}

	if cfg := req.Config; cfg != nil {
		if cfg.MaxOutputTokens > 0 {
			params.MaxTokens = int64(cfg.MaxOutputTokens)
		}
		if sys := joinText(cfg.SystemInstruction); sys != "" {
			params.System = []anthropic.TextBlockParam{{Text: sys}}
		}
		for _, t := range cfg.Tools {
			for _, fd := range t.FunctionDeclarations {
				tp, err := convertTool(fd)
				if err != nil {
					return params, err
				}
				params.Tools = append(params.Tools, anthropic.ToolUnionParam{OfTool: tp})
			}
		}
	}

	var msgs []anthropic.MessageParam
	for _, c := range req.Contents {
		msg, err := convertContent(c)
		if err != nil {
			return params, err
		}
		if msg != nil {
			msgs = append(msgs, *msg)
		}
	}

	// The API rejects conversations that open with the assistant.
	if len(msgs) > 0 && msgs[0].Role != anthropic.MessageParamRoleUser {
		msgs = append([]anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock("Continue."))}, msgs...)
	}
	params.Messages = mergeConsecutive(msgs)
	return params, nil
}

func joinText(c *genai.Content) string {
	if c == nil {
		return ""
	}
	var s string
	for _, p := range c.Parts {
		s += p.Text
	}
	return s
}

func convertTool(fd *genai.FunctionDeclaration) (*anthropic.ToolParam, error) {
	var schema any
	switch {
	case fd.ParametersJsonSchema != nil:
		schema = fd.ParametersJsonSchema
	case fd.Parameters != nil:
		schema = fd.Parameters
	}

	var parsed struct {
		Properties map[string]any `json:"properties"`
		Required   []string       `json:"required"`
	}
	if schema != nil {
		b, err := json.Marshal(schema)
		if err != nil {
			return nil, fmt.Errorf("marshal schema for %s: %w", fd.Name, err)
		}
		if err := json.Unmarshal(b, &parsed); err != nil {
			return nil, fmt.Errorf("parse schema for %s: %w", fd.Name, err)
		}
	}
	if parsed.Properties == nil {
		parsed.Properties = map[string]any{}
	}

	tp := &anthropic.ToolParam{
		Name: fd.Name,
		InputSchema: anthropic.ToolInputSchemaParam{
			Properties: parsed.Properties,
			Required:   parsed.Required,
		},
	}
	if fd.Description != "" {
		tp.Description = anthropic.String(fd.Description)
	}
	return tp, nil
}

func convertContent(c *genai.Content) (*anthropic.MessageParam, error) {
	if c == nil {
		return nil, nil
	}
	var blocks []anthropic.ContentBlockParamUnion
	for _, p := range c.Parts {
		if p.Thought {
			continue
		}
		if p.Text != "" {
			blocks = append(blocks, anthropic.NewTextBlock(p.Text))
		}
		if fc := p.FunctionCall; fc != nil {
			args := fc.Args
			if args == nil {
				args = map[string]any{}
			}
			blocks = append(blocks, anthropic.NewToolUseBlock(fc.ID, args, fc.Name))
		}
		if fr := p.FunctionResponse; fr != nil {
			b, err := json.Marshal(fr.Response)
			if err != nil {
				return nil, fmt.Errorf("marshal tool result for %s: %w", fr.Name, err)
			}
			blocks = append(blocks, anthropic.NewToolResultBlock(fr.ID, string(b), false))
		}
	}
	if len(blocks) == 0 {
		return nil, nil
	}
	if c.Role == genai.RoleModel {
		msg := anthropic.NewAssistantMessage(blocks...)
		return &msg, nil
	}
	msg := anthropic.NewUserMessage(blocks...)
	return &msg, nil
}

// mergeConsecutive folds same-role neighbours so roles alternate.
func mergeConsecutive(msgs []anthropic.MessageParam) []anthropic.MessageParam {
	var out []anthropic.MessageParam
	for _, msg := range msgs {
		if n := len(out); n > 0 && out[n-1].Role == msg.Role {
			out[n-1].Content = append(out[n-1].Content, msg.Content...)
			continue
		}
		out = append(out, msg)
	}
	return out
}

func convertResponse(msg *anthropic.Message) (*model.LLMResponse, error) {
	var parts []*genai.Part
	for _, block := range msg.Content {
		switch block.Type {
		case "text":
			parts = append(parts, genai.NewPartFromText(block.Text))
		case "tool_use":
			var args map[string]any
			if len(block.Input) > 0 {
				if err := json.Unmarshal(block.Input, &args); err != nil {
					return nil, fmt.Errorf("decode tool input for %s: %w", block.Name, err)
				}
			}
			parts = append(parts, &genai.Part{FunctionCall: &genai.FunctionCall{
				ID:   block.ID,
				Name: block.Name,
				Args: args,
			}})
		}
	}

	resp := &model.LLMResponse{
		Content:      &genai.Content{Role: genai.RoleModel, Parts: parts},
		TurnComplete: true,
	}
	switch string(msg.StopReason) {
	case "end_turn", "stop_sequence":
		resp.FinishReason = genai.FinishReasonStop
	case "tool_use":
		resp.FinishReason = genai.FinishReasonStop
		resp.TurnComplete = false
	case "max_tokens":
		resp.FinishReason = genai.FinishReasonMaxTokens
	}
	resp.UsageMetadata = &genai.GenerateContentResponseUsageMetadata{
		PromptTokenCount:     int32(msg.Usage.InputTokens),
		CandidatesTokenCount: int32(msg.Usage.OutputTokens),
		TotalTokenCount:      int32(msg.Usage.InputTokens + msg.Usage.OutputTokens),
	}
	return resp, nil
}
