package provider

import (
	"encoding/json"

	"github.com/howard-nolan/llmgateway/internal/capabilities"
	"github.com/howard-nolan/llmgateway/internal/semantic"
	"github.com/howard-nolan/llmgateway/internal/uir"
)

// anthropicDefaultMaxTokens is injected by ApplyDefaults when the caller
// never set max_tokens — Anthropic's /v1/messages rejects requests
// without it (spec §6.3 scenario 2).
const anthropicDefaultMaxTokens = 4096

// AnthropicAdapter implements Anthropic's Messages dialect. It is also
// embedded by BedrockAnthropicAdapter and VertexAnthropicAdapter, which
// delegate all conversion here after stripping their own envelope
// (spec §4.2).
type AnthropicAdapter struct{}

func NewAnthropicAdapter() *AnthropicAdapter { return &AnthropicAdapter{} }

func (a *AnthropicAdapter) Format() capabilities.ProviderFormat { return capabilities.FormatAnthropic }
func (a *AnthropicAdapter) DirectoryName() string               { return "anthropic" }
func (a *AnthropicAdapter) DisplayName() string                 { return "Anthropic Messages" }

func (a *AnthropicAdapter) DetectRequest(v map[string]any) bool {
	format, ok := capabilities.Detect(v)
	return ok && format == capabilities.FormatAnthropic
}

func (a *AnthropicAdapter) DetectResponse(v map[string]any) bool {
	if asString(v["type"]) == "message" {
		return true
	}
	_, hasContent := asSlice(v["content"])
	_, hasStopReason := v["stop_reason"]
	return hasContent && hasStopReason
}

func (a *AnthropicAdapter) DetectStreamResponse(v map[string]any) bool {
	switch asString(v["type"]) {
	case "message_start", "content_block_start", "content_block_delta",
		"content_block_stop", "message_delta", "message_stop", "ping":
		return true
	default:
		return false
	}
}

// ApplyDefaults injects max_tokens=4096 when the caller never set it —
// Anthropic requires the field on every request.
func (a *AnthropicAdapter) ApplyDefaults(r *uir.Request) {
	if r.Params.MaxTokens == nil {
		r.Params.MaxTokens = intPtr(anthropicDefaultMaxTokens)
	}
}

// --- request ---

func (a *AnthropicAdapter) RequestToUniversal(v map[string]any) (*uir.Request, error) {
	req := &uir.Request{Model: asString(v["model"])}

	if mt, ok := asInt(v["max_tokens"]); ok {
		req.Params.MaxTokens = intPtr(mt)
	}
	if stream, ok := asBool(v["stream"]); ok {
		req.Stream = stream
	}
	if t, ok := asFloat64(v["temperature"]); ok {
		req.Params.Temperature = floatPtr(t)
	}
	if tp, ok := asFloat64(v["top_p"]); ok {
		req.Params.TopP = floatPtr(tp)
	}
	if stopArr, ok := asSlice(v["stop_sequences"]); ok {
		for _, s := range stopArr {
			req.Params.StopSequences = append(req.Params.StopSequences, asString(s))
		}
	}
	if tc, ok := asMap(v["tool_choice"]); ok {
		req.Params.ToolChoice = semantic.ToolChoiceFromAnthropic(tc)
	}
	if thinking, ok := asMap(v["thinking"]); ok && asString(thinking["type"]) == "enabled" {
		cfg := &uir.ReasoningConfig{}
		if bt, ok := asInt(thinking["budget_tokens"]); ok {
			b := int64(bt)
			cfg.BudgetTokens = &b
		}
		req.Params.Reasoning = cfg
	}

	if sys := v["system"]; sys != nil {
		sysContent := anthropicSystemToUniversal(sys)
		if err := validateUserContent(sysContent, "anthropic"); err != nil {
			return nil, err
		}
		req.Messages = append(req.Messages, uir.SystemMessage{Content: sysContent})
	}

	rawMessages, _ := asSlice(v["messages"])
	for _, rm := range rawMessages {
		mm, ok := asMap(rm)
		if !ok {
			continue
		}
		msgs, err := anthropicMessageToUniversal(mm)
		if err != nil {
			return nil, err
		}
		req.Messages = append(req.Messages, msgs...)
	}

	toolsRaw, _ := asSlice(v["tools"])
	for _, t := range toolsRaw {
		tm, ok := asMap(t)
		if !ok {
			continue
		}
		if typ := asString(tm["type"]); typ != "" && typ != "custom" {
			req.Tools = append(req.Tools, uir.ProviderTool{ToolType: typ, Name: asString(tm["name"])})
			continue
		}
		req.Tools = append(req.Tools, uir.ClientTool{
			Name:        asString(tm["name"]),
			Description: asString(tm["description"]),
			InputSchema: mapOrNil(tm["input_schema"]),
		})
	}

	return req, nil
}

func anthropicSystemToUniversal(v any) uir.UserContent {
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
		if asString(pm["type"]) == "text" {
			out = append(out, uir.TextPart{Text: asString(pm["text"])})
		}
	}
	return out
}

func anthropicMessageToUniversal(mm map[string]any) ([]uir.Message, error) {
	role := asString(mm["role"])
	content := mm["content"]

	switch role {
	case "user":
		// A user turn's content array may interleave plain content parts
		// with tool_result blocks; the latter become a separate
		// ToolMessage per §3.1's closed-variant shape.
		userParts, toolResults := anthropicUserContentSplit(content)
		var out []uir.Message
		if len(toolResults) > 0 {
			out = append(out, uir.ToolMessage{Results: toolResults})
		}
		if len(userParts) > 0 {
			out = append(out, uir.UserMessage{Content: userParts})
		}
		if len(out) == 0 {
			out = append(out, uir.UserMessage{Content: uir.UserContent{uir.TextPart{}}})
		}
		return out, nil
	case "assistant":
		parts, err := anthropicAssistantContentToUniversal(content)
		if err != nil {
			return nil, err
		}
		if err := validateAssistantContent(parts, "anthropic"); err != nil {
			return nil, err
		}
		return []uir.Message{uir.AssistantMessage{Content: parts}}, nil
	default:
		return nil, errUnknownRole("anthropic", role)
	}
}

func anthropicUserContentSplit(v any) (uir.UserContent, []uir.ToolResultPart) {
	if s, ok := v.(string); ok {
		return uir.UserContent{uir.TextPart{Text: s}}, nil
	}
	parts, ok := asSlice(v)
	if !ok {
		return nil, nil
	}
	var content uir.UserContent
	var results []uir.ToolResultPart
	for _, p := range parts {
		pm, ok := asMap(p)
		if !ok {
			continue
		}
		switch asString(pm["type"]) {
		case "text":
			content = append(content, uir.TextPart{Text: asString(pm["text"])})
		case "image":
			src, _ := asMap(pm["source"])
			content = append(content, uir.ImagePart{Data: anthropicImageSourceData(src), MediaType: asString(src["media_type"])})
		case "tool_result":
			out := anthropicToolResultOutput(pm["content"])
			results = append(results, uir.ToolResultPart{ToolCallID: asString(pm["tool_use_id"]), Output: out})
		}
	}
	return content, results
}

func anthropicImageSourceData(src map[string]any) string {
	if u := asString(src["url"]); u != "" {
		return u
	}
	return asString(src["data"])
}

func anthropicToolResultOutput(v any) any {
	if s, ok := v.(string); ok {
		return s
	}
	parts, ok := asSlice(v)
	if !ok {
		return v
	}
	var text string
	for _, p := range parts {
		pm, ok := asMap(p)
		if !ok {
			continue
		}
		if asString(pm["type"]) == "text" {
			text += asString(pm["text"])
		}
	}
	return text
}

func anthropicAssistantContentToUniversal(v any) (uir.AssistantContent, error) {
	if s, ok := v.(string); ok {
		return uir.AssistantContent{uir.TextPart{Text: s}}, nil
	}
	parts, ok := asSlice(v)
	if !ok {
		return nil, nil
	}
	var out uir.AssistantContent
	for _, p := range parts {
		pm, ok := asMap(p)
		if !ok {
			continue
		}
		switch asString(pm["type"]) {
		case "thinking":
			out = append(out, uir.ReasoningPart{Text: asString(pm["thinking"]), EncryptedContent: asString(pm["signature"])})
		case "text":
			out = append(out, uir.TextPart{Text: asString(pm["text"])})
		case "tool_use":
			raw, err := json.Marshal(mapOrNil(pm["input"]))
			if err != nil {
				return nil, err
			}
			out = append(out, uir.ToolCallPart{
				ToolCallID: asString(pm["id"]),
				ToolName:   asString(pm["name"]),
				Arguments:  uir.NewToolCallArguments(string(raw)),
			})
		}
	}
	return out, nil
}

func (a *AnthropicAdapter) RequestFromUniversal(r *uir.Request) (map[string]any, error) {
	out := map[string]any{"model": r.Model}

	maxTokens := anthropicDefaultMaxTokens
	if r.Params.MaxTokens != nil {
		maxTokens = *r.Params.MaxTokens
	}
	out["max_tokens"] = maxTokens

	if r.Stream {
		out["stream"] = true
	}

	var systemText string
	var messages []any
	for _, m := range r.Messages {
		switch msg := m.(type) {
		case uir.SystemMessage:
			systemText += textOf(msg.Content)
		case uir.UserMessage:
			messages = append(messages, map[string]any{"role": "user", "content": anthropicUserContentFromUniversal(msg.Content)})
		case uir.AssistantMessage:
			messages = append(messages, map[string]any{"role": "assistant", "content": anthropicContentFromAssistant(msg.Content)})
		case uir.ToolMessage:
			var blocks []any
			for _, res := range msg.Results {
				blocks = append(blocks, map[string]any{
					"type":        "tool_result",
					"tool_use_id": res.ToolCallID,
					"content":     anthropicToolResultContent(res.Output),
				})
			}
			messages = append(messages, map[string]any{"role": "user", "content": blocks})
		}
	}

	if r.Params.ResponseFormat != nil {
		systemText += semantic.ResponseFormatAnthropicSystemSuffix(r.Params.ResponseFormat)
	}
	if systemText != "" {
		out["system"] = systemText
	}
	out["messages"] = messages

	if r.Params.Temperature != nil {
		out["temperature"] = *r.Params.Temperature
	}
	if r.Params.TopP != nil {
		out["top_p"] = *r.Params.TopP
	}
	if len(r.Params.StopSequences) > 0 {
		out["stop_sequences"] = r.Params.StopSequences
	}
	if r.Params.ToolChoice != nil {
		out["tool_choice"] = semantic.ToolChoiceToAnthropic(r.Params.ToolChoice, r.Params.ParallelToolCalls)
	}
	if r.Params.Reasoning != nil {
		budget := r.Params.Reasoning.BudgetTokens
		if budget == nil && r.Params.Reasoning.Effort != nil {
			b := semantic.NewReasoningConverter().EffortToBudget(*r.Params.Reasoning.Effort, int64PtrOf(r.Params.MaxTokens))
			budget = &b
		}
		if budget != nil {
			out["thinking"] = map[string]any{"type": "enabled", "budget_tokens": *budget}
		}
	}

	var tools []any
	for _, t := range r.Tools {
		switch tool := t.(type) {
		case uir.ClientTool:
			tools = append(tools, map[string]any{
				"name":         tool.Name,
				"description":  tool.Description,
				"input_schema": tool.InputSchema,
			})
		case uir.ProviderTool:
			pm := map[string]any{"type": tool.ToolType}
			if tool.Name != "" {
				pm["name"] = tool.Name
			}
			for k, v := range tool.Config {
				pm[k] = v
			}
			tools = append(tools, pm)
		}
	}
	if tools != nil {
		out["tools"] = tools
	}

	return out, nil
}

func anthropicUserContentFromUniversal(c uir.UserContent) any {
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
			parts = append(parts, map[string]any{"type": "image", "source": map[string]any{
				"type":       "base64",
				"media_type": part.MediaType,
				"data":       part.Data,
			}})
		case uir.FilePart:
			parts = append(parts, map[string]any{"type": "text", "text": part.Data})
		}
	}
	return parts
}

// anthropicContentFromAssistant renders an assistant turn's parts in the
// order they appear in c; parts are not reordered, so invariant §3.3 #1
// holds in the output whenever it holds in c.
func anthropicContentFromAssistant(c uir.AssistantContent) []any {
	var out []any
	for _, p := range c {
		switch part := p.(type) {
		case uir.ReasoningPart:
			block := map[string]any{"type": "thinking", "thinking": part.Text}
			if part.EncryptedContent != "" {
				block["signature"] = part.EncryptedContent
			}
			out = append(out, block)
		case uir.TextPart:
			out = append(out, map[string]any{"type": "text", "text": part.Text})
		case uir.ToolCallPart:
			out = append(out, map[string]any{
				"type":  "tool_use",
				"id":    part.ToolCallID,
				"name":  part.ToolName,
				"input": part.Arguments.Map,
			})
		}
	}
	return out
}

func anthropicToolResultContent(output any) any {
	if s, ok := output.(string); ok {
		return s
	}
	b, err := json.Marshal(output)
	if err != nil {
		return ""
	}
	return string(b)
}

// --- response ---

func (a *AnthropicAdapter) ResponseToUniversal(v map[string]any) (*uir.Response, error) {
	resp := &uir.Response{Model: asString(v["model"])}

	contentRaw, _ := asSlice(v["content"])
	parts, err := anthropicAssistantContentToUniversal(contentRaw)
	if err != nil {
		return nil, err
	}
	if len(parts) > 0 {
		resp.Messages = append(resp.Messages, uir.AssistantMessage{Content: parts, ID: asString(v["id"])})
	}

	if sr := asString(v["stop_reason"]); sr != "" {
		fr := semantic.FinishReasonFromProviderString(sr, capabilities.FormatAnthropic)
		resp.FinishReason = &fr
	}
	if usage := semantic.UsageFromProviderValue(mapOrNil(v["usage"]), capabilities.FormatAnthropic); usage != nil {
		resp.Usage = usage
	}

	return resp, nil
}

func (a *AnthropicAdapter) ResponseFromUniversal(r *uir.Response) (map[string]any, error) {
	out := map[string]any{"type": "message", "role": "assistant", "model": r.Model}

	if len(r.Messages) > 0 {
		if am, ok := r.Messages[0].(uir.AssistantMessage); ok {
			out["content"] = anthropicContentFromAssistant(am.Content)
			if am.ID != "" {
				out["id"] = am.ID
			}
		}
	}
	if r.FinishReason != nil {
		out["stop_reason"] = semantic.FinishReasonToProviderString(*r.FinishReason, capabilities.FormatAnthropic)
	}
	if r.Usage != nil {
		out["usage"] = semantic.UsageToProviderValue(r.Usage, capabilities.FormatAnthropic)
	}

	return out, nil
}

// --- stream ---

func (a *AnthropicAdapter) StreamToUniversal(v map[string]any) (*uir.StreamChunk, error) {
	switch asString(v["type"]) {
	case "message_start":
		msg, _ := asMap(v["message"])
		chunk := &uir.StreamChunk{}
		role := uir.RoleAssistant
		chunk.Role = &role
		if usage := semantic.UsageFromProviderValue(mapOrNil(msg["usage"]), capabilities.FormatAnthropic); usage != nil {
			chunk.Usage = usage
		}
		return chunk, nil

	case "content_block_start":
		block, _ := asMap(v["content_block"])
		if asString(block["type"]) != "tool_use" {
			return nil, nil
		}
		idx, _ := asInt(v["index"])
		return &uir.StreamChunk{DeltaToolCall: &uir.ToolCallDelta{
			Index:      idx,
			ToolCallID: asString(block["id"]),
			ToolName:   asString(block["name"]),
		}}, nil

	case "content_block_delta":
		delta, _ := asMap(v["delta"])
		idx, _ := asInt(v["index"])
		switch asString(delta["type"]) {
		case "text_delta":
			text := asString(delta["text"])
			return &uir.StreamChunk{DeltaText: &text}, nil
		case "thinking_delta":
			text := asString(delta["thinking"])
			return &uir.StreamChunk{DeltaReasoning: &text}, nil
		case "input_json_delta":
			return &uir.StreamChunk{DeltaToolCall: &uir.ToolCallDelta{Index: idx, ArgumentsFragment: asString(delta["partial_json"])}}, nil
		default:
			return nil, nil
		}

	case "message_delta":
		chunk := &uir.StreamChunk{}
		delta, _ := asMap(v["delta"])
		if sr := asString(delta["stop_reason"]); sr != "" {
			fr := semantic.FinishReasonFromProviderString(sr, capabilities.FormatAnthropic)
			chunk.FinishReason = &fr
		}
		if usage := semantic.UsageFromProviderValue(mapOrNil(v["usage"]), capabilities.FormatAnthropic); usage != nil {
			chunk.Usage = usage
		}
		return chunk, nil

	case "message_stop":
		return nil, nil

	default:
		return &uir.StreamChunk{IsKeepAlive: true}, nil
	}
}

func (a *AnthropicAdapter) StreamFromUniversal(c *uir.StreamChunk) (map[string]any, error) {
	if c.Role != nil {
		out := map[string]any{"type": "message_start", "message": map[string]any{"role": string(*c.Role)}}
		if c.Usage != nil {
			out["message"].(map[string]any)["usage"] = semantic.UsageToProviderValue(c.Usage, capabilities.FormatAnthropic)
		}
		return out, nil
	}
	if c.DeltaText != nil {
		return map[string]any{"type": "content_block_delta", "delta": map[string]any{"type": "text_delta", "text": *c.DeltaText}}, nil
	}
	if c.DeltaReasoning != nil {
		return map[string]any{"type": "content_block_delta", "delta": map[string]any{"type": "thinking_delta", "thinking": *c.DeltaReasoning}}, nil
	}
	if c.DeltaToolCall != nil {
		if c.DeltaToolCall.ToolCallID != "" {
			return map[string]any{"type": "content_block_start", "index": c.DeltaToolCall.Index, "content_block": map[string]any{
				"type": "tool_use", "id": c.DeltaToolCall.ToolCallID, "name": c.DeltaToolCall.ToolName,
			}}, nil
		}
		return map[string]any{"type": "content_block_delta", "index": c.DeltaToolCall.Index, "delta": map[string]any{
			"type": "input_json_delta", "partial_json": c.DeltaToolCall.ArgumentsFragment,
		}}, nil
	}
	if c.FinishReason != nil {
		out := map[string]any{"type": "message_delta", "delta": map[string]any{
			"stop_reason": semantic.FinishReasonToProviderString(*c.FinishReason, capabilities.FormatAnthropic),
		}}
		if c.Usage != nil {
			out["usage"] = semantic.UsageToProviderValue(c.Usage, capabilities.FormatAnthropic)
		}
		return out, nil
	}
	return map[string]any{}, nil
}

func int64PtrOf(p *int) *int64 {
	if p == nil {
		return nil
	}
	v := int64(*p)
	return &v
}
