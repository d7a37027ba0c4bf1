package provider

import (
	"fmt"

	"github.com/howard-nolan/llmgateway/internal/capabilities"
	"github.com/howard-nolan/llmgateway/internal/semantic"
	"github.com/howard-nolan/llmgateway/internal/uir"
)

// OpenAIChatAdapter implements the OpenAI Chat Completions dialect.
// Grounded on the teacher's anthropic.go/google.go adapter shape
// (Format/DisplayName-style constants) generalized to UIR parse/render.
type OpenAIChatAdapter struct{}

func NewOpenAIChatAdapter() *OpenAIChatAdapter { return &OpenAIChatAdapter{} }

func (a *OpenAIChatAdapter) Format() capabilities.ProviderFormat { return capabilities.FormatOpenAIChat }
func (a *OpenAIChatAdapter) DirectoryName() string                { return "openai" }
func (a *OpenAIChatAdapter) DisplayName() string                  { return "OpenAI Chat Completions" }

func (a *OpenAIChatAdapter) DetectRequest(v map[string]any) bool {
	format, ok := capabilities.Detect(v)
	return ok && format == capabilities.FormatOpenAIChat
}

func (a *OpenAIChatAdapter) DetectResponse(v map[string]any) bool {
	if _, ok := v["object"]; ok {
		if s := asString(v["object"]); s == "chat.completion" {
			return true
		}
	}
	_, hasChoices := asSlice(v["choices"])
	return hasChoices
}

func (a *OpenAIChatAdapter) DetectStreamResponse(v map[string]any) bool {
	if s := asString(v["object"]); s == "chat.completion.chunk" {
		return true
	}
	choices, ok := asSlice(v["choices"])
	if !ok {
		return false
	}
	for _, c := range choices {
		if cm, ok := asMap(c); ok {
			if _, ok := cm["delta"]; ok {
				return true
			}
		}
	}
	return false
}

func (a *OpenAIChatAdapter) ApplyDefaults(r *uir.Request) {}

// --- request ---

func (a *OpenAIChatAdapter) RequestToUniversal(v map[string]any) (*uir.Request, error) {
	req := &uir.Request{Model: asString(v["model"])}

	rawMessages, _ := asSlice(v["messages"])
	for _, rm := range rawMessages {
		mm, ok := asMap(rm)
		if !ok {
			continue
		}
		msg, err := openAIMessageToUniversal(mm)
		if err != nil {
			return nil, err
		}
		req.Messages = append(req.Messages, msg)
	}

	if stream, ok := asBool(v["stream"]); ok {
		req.Stream = stream
	}
	if mt, ok := asInt(v["max_tokens"]); ok {
		req.Params.MaxTokens = intPtr(mt)
	}
	if mt, ok := asInt(v["max_completion_tokens"]); ok && req.Params.MaxTokens == nil {
		req.Params.MaxTokens = intPtr(mt)
	}
	if t, ok := asFloat64(v["temperature"]); ok {
		req.Params.Temperature = floatPtr(t)
	}
	if tp, ok := asFloat64(v["top_p"]); ok {
		req.Params.TopP = floatPtr(tp)
	}
	if stop, ok := v["stop"].(string); ok {
		req.Params.StopSequences = []string{stop}
	} else if stopArr, ok := asSlice(v["stop"]); ok {
		for _, s := range stopArr {
			req.Params.StopSequences = append(req.Params.StopSequences, asString(s))
		}
	}
	if tc, ok := v["tool_choice"]; ok {
		req.Params.ToolChoice = semantic.ToolChoiceFromOpenAIChat(tc)
	}
	if pc, ok := asBool(v["parallel_tool_calls"]); ok {
		req.Params.ParallelToolCalls = boolPtr(pc)
	}
	if rf, ok := asMap(v["response_format"]); ok {
		req.Params.ResponseFormat = semantic.ResponseFormatFromProvider(rf, false)
	}

	toolsRaw, _ := asSlice(v["tools"])
	for _, t := range toolsRaw {
		tm, ok := asMap(t)
		if !ok {
			continue
		}
		fn, _ := asMap(tm["function"])
		req.Tools = append(req.Tools, uir.ClientTool{
			Name:        asString(fn["name"]),
			Description: asString(fn["description"]),
			InputSchema: mapOrNil(fn["parameters"]),
		})
	}

	return req, nil
}

func openAIMessageToUniversal(mm map[string]any) (uir.Message, error) {
	role := asString(mm["role"])
	switch role {
	case "system", "developer":
		content := contentFromOpenAI(mm["content"])
		if err := validateUserContent(content, "openai"); err != nil {
			return nil, err
		}
		return uir.SystemMessage{Content: content}, nil
	case "user":
		content := contentFromOpenAI(mm["content"])
		if err := validateUserContent(content, "openai"); err != nil {
			return nil, err
		}
		return uir.UserMessage{Content: content}, nil
	case "assistant":
		var parts uir.AssistantContent
		if content := asString(mm["content"]); content != "" {
			parts = append(parts, uir.TextPart{Text: content})
		}
		toolCalls, _ := asSlice(mm["tool_calls"])
		for _, tc := range toolCalls {
			tcm, ok := asMap(tc)
			if !ok {
				continue
			}
			fn, _ := asMap(tcm["function"])
			parts = append(parts, uir.ToolCallPart{
				ToolCallID: asString(tcm["id"]),
				ToolName:   asString(fn["name"]),
				Arguments:  uir.NewToolCallArguments(asString(fn["arguments"])),
			})
		}
		if err := validateAssistantContent(parts, "openai"); err != nil {
			return nil, err
		}
		return uir.AssistantMessage{Content: parts}, nil
	case "tool":
		return uir.ToolMessage{Results: []uir.ToolResultPart{{
			ToolCallID: asString(mm["tool_call_id"]),
			Output:     mm["content"],
		}}}, nil
	default:
		return nil, fmt.Errorf("openai chat: unknown message role %q", role)
	}
}

func contentFromOpenAI(v any) uir.UserContent {
	if s, ok := v.(string); ok {
		return uir.UserContent{uir.TextPart{Text: s}}
	}
	parts, ok := asSlice(v)
	if !ok {
		return nil
	}
	var out uir.UserContent
	for _, p := range parts {
		pm, ok := asMap(p)
		if !ok {
			continue
		}
		switch asString(pm["type"]) {
		case "text":
			out = append(out, uir.TextPart{Text: asString(pm["text"])})
		case "image_url":
			iu, _ := asMap(pm["image_url"])
			out = append(out, uir.ImagePart{Data: asString(iu["url"])})
		}
	}
	return out
}

func (a *OpenAIChatAdapter) RequestFromUniversal(r *uir.Request) (map[string]any, error) {
	out := map[string]any{"model": r.Model}
	if r.Stream {
		out["stream"] = true
	}

	var messages []any
	for _, m := range r.Messages {
		messages = append(messages, openAIMessageFromUniversal(m)...)
	}
	out["messages"] = messages

	if r.Params.MaxTokens != nil {
		out["max_tokens"] = *r.Params.MaxTokens
	}
	if r.Params.Temperature != nil {
		out["temperature"] = *r.Params.Temperature
	}
	if r.Params.TopP != nil {
		out["top_p"] = *r.Params.TopP
	}
	if len(r.Params.StopSequences) > 0 {
		out["stop"] = r.Params.StopSequences
	}
	if r.Params.ToolChoice != nil {
		out["tool_choice"] = semantic.ToolChoiceToOpenAIChat(r.Params.ToolChoice)
	}
	if r.Params.ParallelToolCalls != nil {
		out["parallel_tool_calls"] = *r.Params.ParallelToolCalls
	}
	if r.Params.ResponseFormat != nil {
		out["response_format"] = semantic.ResponseFormatToChatShape(r.Params.ResponseFormat)
	}

	var tools []any
	for _, t := range r.Tools {
		ct, ok := t.(uir.ClientTool)
		if !ok {
			continue
		}
		tools = append(tools, map[string]any{
			"type": "function",
			"function": map[string]any{
				"name":        ct.Name,
				"description": ct.Description,
				"parameters":  ct.InputSchema,
			},
		})
	}
	if tools != nil {
		out["tools"] = tools
	}

	return out, nil
}

func openAIMessageFromUniversal(m uir.Message) []any {
	switch msg := m.(type) {
	case uir.SystemMessage:
		return []any{map[string]any{"role": "system", "content": userContentToOpenAI(msg.Content)}}
	case uir.UserMessage:
		return []any{map[string]any{"role": "user", "content": userContentToOpenAI(msg.Content)}}
	case uir.AssistantMessage:
		out := map[string]any{"role": "assistant"}
		var text string
		var toolCalls []any
		for _, p := range msg.Content {
			switch part := p.(type) {
			case uir.TextPart:
				text += part.Text
			case uir.ToolCallPart:
				args, _ := part.Arguments.JSON()
				toolCalls = append(toolCalls, map[string]any{
					"id":   part.ToolCallID,
					"type": "function",
					"function": map[string]any{
						"name":      part.ToolName,
						"arguments": args,
					},
				})
			}
		}
		if text != "" {
			out["content"] = text
		} else {
			out["content"] = nil
		}
		if toolCalls != nil {
			out["tool_calls"] = toolCalls
		}
		return []any{out}
	case uir.ToolMessage:
		var out []any
		for _, res := range msg.Results {
			out = append(out, map[string]any{
				"role":         "tool",
				"tool_call_id": res.ToolCallID,
				"content":      res.Output,
			})
		}
		return out
	default:
		return nil
	}
}

func userContentToOpenAI(c uir.UserContent) any {
	if len(c) == 1 {
		if t, ok := c[0].(uir.TextPart); ok {
			return t.Text
		}
	}
	var parts []any
	for _, p := range c {
		switch part := p.(type) {
		case uir.TextPart:
			parts = append(parts, map[string]any{"type": "text", "text": part.Text})
		case uir.ImagePart:
			parts = append(parts, map[string]any{"type": "image_url", "image_url": map[string]any{"url": part.Data}})
		}
	}
	return parts
}

// --- response ---

func (a *OpenAIChatAdapter) ResponseToUniversal(v map[string]any) (*uir.Response, error) {
	resp := &uir.Response{Model: asString(v["model"])}

	choices, _ := asSlice(v["choices"])
	if len(choices) > 0 {
		cm, _ := asMap(choices[0])
		msgRaw, _ := asMap(cm["message"])
		msg, err := openAIMessageToUniversal(mergeRole(msgRaw, "assistant"))
		if err != nil {
			return nil, err
		}
		resp.Messages = append(resp.Messages, msg)
		if fr := asString(cm["finish_reason"]); fr != "" {
			v := semantic.FinishReasonFromProviderString(fr, capabilities.FormatOpenAIChat)
			resp.FinishReason = &v
		}
	}

	if usage := semantic.UsageFromProviderValue(mapOrNil(v["usage"]), capabilities.FormatOpenAIChat); usage != nil {
		resp.Usage = usage
	}

	return resp, nil
}

func mergeRole(m map[string]any, role string) map[string]any {
	if m == nil {
		m = map[string]any{}
	}
	if _, ok := m["role"]; !ok {
		m["role"] = role
	}
	return m
}

func (a *OpenAIChatAdapter) ResponseFromUniversal(r *uir.Response) (map[string]any, error) {
	out := map[string]any{
		"object": "chat.completion",
		"model":  r.Model,
	}
	if len(r.Messages) > 0 {
		msgs := openAIMessageFromUniversal(r.Messages[0])
		choice := map[string]any{"index": 0}
		if len(msgs) > 0 {
			choice["message"] = msgs[0]
		}
		if r.FinishReason != nil {
			choice["finish_reason"] = semantic.FinishReasonToProviderString(*r.FinishReason, capabilities.FormatOpenAIChat)
		}
		out["choices"] = []any{choice}
	}
	if r.Usage != nil {
		out["usage"] = semantic.UsageToProviderValue(r.Usage, capabilities.FormatOpenAIChat)
	}
	return out, nil
}

// --- stream ---

func (a *OpenAIChatAdapter) StreamToUniversal(v map[string]any) (*uir.StreamChunk, error) {
	chunk := &uir.StreamChunk{}

	choices, _ := asSlice(v["choices"])
	if len(choices) > 0 {
		cm, _ := asMap(choices[0])
		delta, _ := asMap(cm["delta"])
		if role := asString(delta["role"]); role != "" {
			r := uir.Role(role)
			chunk.Role = &r
		}
		if content := asString(delta["content"]); content != "" {
			chunk.DeltaText = &content
		}
		toolCalls, _ := asSlice(delta["tool_calls"])
		if len(toolCalls) > 0 {
			tcm, _ := asMap(toolCalls[0])
			fn, _ := asMap(tcm["function"])
			idx, _ := asInt(tcm["index"])
			chunk.DeltaToolCall = &uir.ToolCallDelta{
				Index:             idx,
				ToolCallID:        asString(tcm["id"]),
				ToolName:          asString(fn["name"]),
				ArgumentsFragment: asString(fn["arguments"]),
			}
		}
		if fr := asString(cm["finish_reason"]); fr != "" {
			v := semantic.FinishReasonFromProviderString(fr, capabilities.FormatOpenAIChat)
			chunk.FinishReason = &v
		}
	} else {
		chunk.IsKeepAlive = true
	}

	if usage := semantic.UsageFromProviderValue(mapOrNil(v["usage"]), capabilities.FormatOpenAIChat); usage != nil {
		chunk.Usage = usage
	}

	return chunk, nil
}

func (a *OpenAIChatAdapter) StreamFromUniversal(c *uir.StreamChunk) (map[string]any, error) {
	delta := map[string]any{}
	if c.Role != nil {
		delta["role"] = string(*c.Role)
	}
	if c.DeltaText != nil {
		delta["content"] = *c.DeltaText
	}
	if c.DeltaToolCall != nil {
		delta["tool_calls"] = []any{map[string]any{
			"index": c.DeltaToolCall.Index,
			"id":    c.DeltaToolCall.ToolCallID,
			"type":  "function",
			"function": map[string]any{
				"name":      c.DeltaToolCall.ToolName,
				"arguments": c.DeltaToolCall.ArgumentsFragment,
			},
		}}
	}

	choice := map[string]any{"index": 0, "delta": delta}
	if c.FinishReason != nil {
		choice["finish_reason"] = semantic.FinishReasonToProviderString(*c.FinishReason, capabilities.FormatOpenAIChat)
	} else {
		choice["finish_reason"] = nil
	}

	out := map[string]any{
		"object":  "chat.completion.chunk",
		"choices": []any{choice},
	}
	if c.Usage != nil {
		out["usage"] = semantic.UsageToProviderValue(c.Usage, capabilities.FormatOpenAIChat)
	}
	return out, nil
}

func mapOrNil(v any) map[string]any {
	m, _ := asMap(v)
	return m
}
