// Package openaimodel adapts OpenAI-compatible chat completion endpoints
// (OpenAI, Ollama, LiteLLM) to model.LLM.
package openaimodel

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"google.golang.org/adk/model"
	"google.golang.org/genai"
)

type Model struct {
	name   string
	client openai.Client
}

type Config struct {
	Model   string // e.g. "llama3.2:3b"
	BaseURL string // e.g. "http://localhost:11434/v1"
	APIKey  string // Ollama ignores it but the SDK requires one
	Options []option.RequestOption
}

func New(cfg Config) *Model {
	opts := []option.RequestOption{option.WithMaxRetries(0)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	opts = append(opts, cfg.Options...)
	return &Model{
		name:   cfg.Model,
		client: openai.NewClient(opts...),
	}
}

func (m *Model) Name() string { return m.name }

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
	resp, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion: no choices returned")
	}
	return convertResponse(resp)
}

func (m *Model) convertRequest(req *model.LLMRequest) (openai.ChatCompletionNewParams, error) {
	params := openai.ChatCompletionNewParams{Model: openai.ChatModel(m.name)}

	if cfg := req.Config; cfg != nil {
		if cfg.MaxOutputTokens > 0 {
			params.MaxTokens = openai.Int(int64(cfg.MaxOutputTokens))
		}
		if sys := joinText(cfg.SystemInstruction); sys != "" {
			params.Messages = append(params.Messages, openai.SystemMessage(sys))
		}
		for _, t := range cfg.Tools {
			for _, fd := range t.FunctionDeclarations {
				tp, err := convertTool(fd)
				if err != nil {
					return params, err
				}
				params.Tools = append(params.Tools, tp)
			}
		}
	}

	for _, c := range req.Contents {
		msgs, err := convertContent(c)
		if err != nil {
			return params, err
		}
		params.Messages = append(params.Messages, msgs...)
	}
	return params, nil
}

func joinText(c *genai.Content) string {
	if c == nil {
		return ""
	}
	var sb strings.Builder
	for _, p := range c.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String()
}

func convertTool(fd *genai.FunctionDeclaration) (openai.ChatCompletionToolParam, error) {
	params := openai.FunctionParameters{"type": "object", "properties": map[string]any{}}
	var schema any
	switch {
	case fd.ParametersJsonSchema != nil:
		schema = fd.ParametersJsonSchema
	case fd.Parameters != nil:
		schema = fd.Parameters
	}
	if schema != nil {
		b, err := json.Marshal(schema)
		if err != nil {
			return openai.ChatCompletionToolParam{}, fmt.Errorf("marshal schema for %s: %w", fd.Name, err)
		}
		params = openai.FunctionParameters{}
		if err := json.Unmarshal(b, &params); err != nil {
			return openai.ChatCompletionToolParam{}, fmt.Errorf("parse schema for %s: %w", fd.Name, err)
		}
	}

	def := openai.FunctionDefinitionParam{Name: fd.Name, Parameters: params}
	if fd.Description != "" {
		def.Description = openai.String(fd.Description)
	}
	return openai.ChatCompletionToolParam{Function: def}, nil
}

// convertContent maps one genai turn onto chat messages. Tool results
// become one tool message each; model turns carry text and tool calls together.
func convertContent(c *genai.Content) ([]openai.ChatCompletionMessageParamUnion, error) {
	if c == nil {
		return nil, nil
	}

	var text strings.Builder
	var calls []openai.ChatCompletionMessageToolCallParam
	var out []openai.ChatCompletionMessageParamUnion
	for _, p := range c.Parts {
		if p.Thought {
			continue
		}
		text.WriteString(p.Text)
		if fc := p.FunctionCall; fc != nil {
			args, err := json.Marshal(fc.Args)
			if err != nil {
				return nil, fmt.Errorf("marshal tool call args for %s: %w", fc.Name, err)
			}
			calls = append(calls, openai.ChatCompletionMessageToolCallParam{
				ID: fc.ID,
				Function: openai.ChatCompletionMessageToolCallFunctionParam{
					Name:      fc.Name,
					Arguments: string(args),
				},
			})
		}
		if fr := p.FunctionResponse; fr != nil {
			b, err := json.Marshal(fr.Response)
			if err != nil {
				return nil, fmt.Errorf("marshal tool result for %s: %w", fr.Name, err)
			}
			out = append(out, openai.ToolMessage(string(b), fr.ID))
		}
	}

	if c.Role == genai.RoleModel {
		if text.Len() == 0 && len(calls) == 0 {
			return out, nil
		}
		asst := openai.ChatCompletionAssistantMessageParam{ToolCalls: calls}
		if text.Len() > 0 {
			asst.Content.OfString = openai.String(text.String())
		}
		return append(out, openai.ChatCompletionMessageParamUnion{OfAssistant: &asst}), nil
	}
	if text.Len() > 0 {
		out = append(out, openai.UserMessage(text.String()))
	}
	return out, nil
}

func convertResponse(resp *openai.ChatCompletion) (*model.LLMResponse, error) {
	choice := resp.Choices[0]
	var parts []*genai.Part
	if choice.Message.Content != "" {
		parts = append(parts, genai.NewPartFromText(choice.Message.Content))
	}
	for _, tc := range choice.Message.ToolCalls {
		var args map[string]any
		if tc.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
				return nil, fmt.Errorf("decode tool call args for %s: %w", tc.Function.Name, err)
			}
		}
		parts = append(parts, &genai.Part{FunctionCall: &genai.FunctionCall{
			ID:   tc.ID,
			Name: tc.Function.Name,
			Args: args,
		}})
	}

	out := &model.LLMResponse{
		Content:      &genai.Content{Role: genai.RoleModel, Parts: parts},
		TurnComplete: true,
	}
	switch choice.FinishReason {
	case "stop":
		out.FinishReason = genai.FinishReasonStop
	case "tool_calls":
		out.FinishReason = genai.FinishReasonStop
		out.TurnComplete = false
	case "length":
		out.FinishReason = genai.FinishReasonMaxTokens
	}
	out.UsageMetadata = &genai.GenerateContentResponseUsageMetadata{
		PromptTokenCount:     int32(resp.Usage.PromptTokens),
		CandidatesTokenCount: int32(resp.Usage.CompletionTokens),
		TotalTokenCount:      int32(resp.Usage.TotalTokens),
	}
	return out, nil
}
