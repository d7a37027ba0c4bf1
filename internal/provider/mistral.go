package provider

import (
	"github.com/howard-nolan/llmgateway/internal/capabilities"
	"github.com/howard-nolan/llmgateway/internal/semantic"
	"github.com/howard-nolan/llmgateway/internal/uir"
)

// MistralAdapter implements Mistral's chat/completions dialect. It is
// wire-compatible with OpenAI Chat Completions for the parts UIR cares
// about, so most conversion delegates to the openaichat.go helpers;
// this file only handles the fields where Mistral diverges (no
// "developer" role, "safe_prompt"/"random_seed" extras, no
// parallel_tool_calls).
type MistralAdapter struct{}

func NewMistralAdapter() *MistralAdapter { return &MistralAdapter{} }

func (a *MistralAdapter) Format() capabilities.ProviderFormat { return capabilities.FormatMistral }
func (a *MistralAdapter) DirectoryName() string               { return "mistral" }
func (a *MistralAdapter) DisplayName() string                 { return "Mistral Chat Completions" }

func (a *MistralAdapter) DetectRequest(v map[string]any) bool {
	format, ok := capabilities.Detect(v)
	return ok && format == capabilities.FormatMistral
}

func (a *MistralAdapter) DetectResponse(v map[string]any) bool {
	if s := asString(v["object"]); s == "chat.completion" {
		return true
	}
	_, hasChoices := asSlice(v["choices"])
	return hasChoices
}

func (a *MistralAdapter) DetectStreamResponse(v map[string]any) bool {
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

func (a *MistralAdapter) ApplyDefaults(r *uir.Request) {}

// --- request ---

func (a *MistralAdapter) RequestToUniversal(v map[string]any) (*uir.Request, error) {
	req := &uir.Request{Model: asString(v["model"])}

	rawMessages, _ := asSlice(v["messages"])
	for _, rm := range rawMessages {
		mm, ok := asMap(rm)
		if !ok {
			continue
		}
		msg, err := mistralMessageToUniversal(mm)
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
	if rf, ok := asMap(v["response_format"]); ok {
		req.Params.ResponseFormat = semantic.ResponseFormatFromProvider(rf, false)
	}
	if sp, ok := asBool(v["safe_prompt"]); ok {
		req.Extras = mapWithExtra(req.Extras, "safe_prompt", sp)
	}
	if seed, ok := asInt(v["random_seed"]); ok {
		req.Extras = mapWithExtra(req.Extras, "random_seed", seed)
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

func mapWithExtra(m map[string]any, key string, v any) map[string]any {
	if m == nil {
		m = map[string]any{}
	}
	m[key] = v
	return m
}

// mistralMessageToUniversal mirrors openAIMessageToUniversal but rejects
// the "developer" role Mistral doesn't speak.
func mistralMessageToUniversal(mm map[string]any) (uir.Message, error) {
	role := asString(mm["role"])
	switch role {
	case "system":
		content := contentFromOpenAI(mm["content"])
		if err := validateUserContent(content, "mistral"); err != nil {
			return nil, err
		}
		return uir.SystemMessage{Content: content}, nil
	case "user":
		content := contentFromOpenAI(mm["content"])
		if err := validateUserContent(content, "mistral"); err != nil {
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
		if err := validateAssistantContent(parts, "mistral"); err != nil {
			return nil, err
		}
		return uir.AssistantMessage{Content: parts}, nil
	case "tool":
		return uir.ToolMessage{Results: []uir.ToolResultPart{{
			ToolCallID: asString(mm["tool_call_id"]),
			Output:     mm["content"],
		}}}, nil
	default:
		return nil, errUnknownRole("mistral", role)
	}
}

func (a *MistralAdapter) RequestFromUniversal(r *uir.Request) (map[string]any, error) {
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
	if r.Params.ResponseFormat != nil {
		out["response_format"] = semantic.ResponseFormatToChatShape(r.Params.ResponseFormat)
	}
	if sp, ok := r.Extras["safe_prompt"]; ok {
		out["safe_prompt"] = sp
	}
	if seed, ok := r.Extras["random_seed"]; ok {
		out["random_seed"] = seed
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

// --- response ---

func (a *MistralAdapter) ResponseToUniversal(v map[string]any) (*uir.Response, error) {
	resp := &uir.Response{Model: asString(v["model"])}

	choices, _ := asSlice(v["choices"])
	if len(choices) > 0 {
		cm, _ := asMap(choices[0])
		msgRaw, _ := asMap(cm["message"])
		msg, err := mistralMessageToUniversal(mergeRole(msgRaw, "assistant"))
		if err != nil {
			return nil, err
		}
		resp.Messages = append(resp.Messages, msg)
		if fr := asString(cm["finish_reason"]); fr != "" {
			v := semantic.FinishReasonFromProviderString(fr, capabilities.FormatMistral)
			resp.FinishReason = &v
		}
	}

	if usage := semantic.UsageFromProviderValue(mapOrNil(v["usage"]), capabilities.FormatMistral); usage != nil {
		resp.Usage = usage
	}

	return resp, nil
}

func (a *MistralAdapter) ResponseFromUniversal(r *uir.Response) (map[string]any, error) {
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
			choice["finish_reason"] = semantic.FinishReasonToProviderString(*r.FinishReason, capabilities.FormatMistral)
		}
		out["choices"] = []any{choice}
	}
	if r.Usage != nil {
		out["usage"] = semantic.UsageToProviderValue(r.Usage, capabilities.FormatMistral)
	}
	return out, nil
}

// --- stream ---

func (a *MistralAdapter) StreamToUniversal(v map[string]any) (*uir.StreamChunk, error) {
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
			v := semantic.FinishReasonFromProviderString(fr, capabilities.FormatMistral)
			chunk.FinishReason = &v
		}
	} else {
		chunk.IsKeepAlive = true
	}

	if usage := semantic.UsageFromProviderValue(mapOrNil(v["usage"]), capabilities.FormatMistral); usage != nil {
		chunk.Usage = usage
	}

	return chunk, nil
}

func (a *MistralAdapter) StreamFromUniversal(c *uir.StreamChunk) (map[string]any, error) {
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
		choice["finish_reason"] = semantic.FinishReasonToProviderString(*c.FinishReason, capabilities.FormatMistral)
	} else {
		choice["finish_reason"] = nil
	}

	out := map[string]any{"choices": []any{choice}}
	if c.Usage != nil {
		out["usage"] = semantic.UsageToProviderValue(c.Usage, capabilities.FormatMistral)
	}
	return out, nil
}
