package provider

import (
	"github.com/howard-nolan/llmgateway/internal/capabilities"
	"github.com/howard-nolan/llmgateway/internal/semantic"
	"github.com/howard-nolan/llmgateway/internal/uir"
)

// OpenAIResponsesAdapter implements OpenAI's Responses API dialect: a
// flat "input" array instead of "messages", an "output" array of typed
// items instead of "choices", and event-typed streaming instead of
// delta-shaped chunks.
type OpenAIResponsesAdapter struct{}

func NewOpenAIResponsesAdapter() *OpenAIResponsesAdapter { return &OpenAIResponsesAdapter{} }

func (a *OpenAIResponsesAdapter) Format() capabilities.ProviderFormat {
	return capabilities.FormatOpenAIResponses
}
func (a *OpenAIResponsesAdapter) DirectoryName() string { return "openai-responses" }
func (a *OpenAIResponsesAdapter) DisplayName() string   { return "OpenAI Responses" }

func (a *OpenAIResponsesAdapter) DetectRequest(v map[string]any) bool {
	format, ok := capabilities.Detect(v)
	return ok && format == capabilities.FormatOpenAIResponses
}

func (a *OpenAIResponsesAdapter) DetectResponse(v map[string]any) bool {
	if asString(v["object"]) == "response" {
		return true
	}
	_, hasOutput := asSlice(v["output"])
	return hasOutput
}

func (a *OpenAIResponsesAdapter) DetectStreamResponse(v map[string]any) bool {
	typ := asString(v["type"])
	return typ == "response.output_text.delta" ||
		typ == "response.completed" ||
		typ == "response.output_item.added" ||
		typ == "response.function_call_arguments.delta"
}

func (a *OpenAIResponsesAdapter) ApplyDefaults(r *uir.Request) {}

// --- request ---

func (a *OpenAIResponsesAdapter) RequestToUniversal(v map[string]any) (*uir.Request, error) {
	req := &uir.Request{Model: asString(v["model"])}

	input, _ := asSlice(v["input"])
	for _, item := range input {
		im, ok := asMap(item)
		if !ok {
			continue
		}
		switch asString(im["type"]) {
		case "function_call":
			req.Messages = append(req.Messages, uir.AssistantMessage{Content: uir.AssistantContent{uir.ToolCallPart{
				ToolCallID: asString(im["call_id"]),
				ToolName:   asString(im["name"]),
				Arguments:  uir.NewToolCallArguments(asString(im["arguments"])),
			}}})
		case "function_call_output":
			req.Messages = append(req.Messages, uir.ToolMessage{Results: []uir.ToolResultPart{{
				ToolCallID: asString(im["call_id"]),
				Output:     im["output"],
			}}})
		default:
			msg, err := responsesMessageToUniversal(im)
			if err != nil {
				return nil, err
			}
			req.Messages = append(req.Messages, msg)
		}
	}

	if instructions := asString(v["instructions"]); instructions != "" {
		req.Messages = append([]uir.Message{uir.SystemMessage{Content: uir.UserContent{uir.TextPart{Text: instructions}}}}, req.Messages...)
	}

	if stream, ok := asBool(v["stream"]); ok {
		req.Stream = stream
	}
	if mt, ok := asInt(v["max_output_tokens"]); ok {
		req.Params.MaxTokens = intPtr(mt)
	}
	if t, ok := asFloat64(v["temperature"]); ok {
		req.Params.Temperature = floatPtr(t)
	}
	if tp, ok := asFloat64(v["top_p"]); ok {
		req.Params.TopP = floatPtr(tp)
	}
	if tc, ok := v["tool_choice"]; ok {
		req.Params.ToolChoice = semantic.ToolChoiceFromOpenAIResponses(tc)
	}
	if rf, ok := asMap(v); ok {
		if cfg := semantic.ResponseFormatFromProvider(rf, true); cfg != nil {
			req.Params.ResponseFormat = cfg
		}
	}
	if reasoning, ok := asMap(v["reasoning"]); ok {
		cfg := &uir.ReasoningConfig{}
		if effort := asString(reasoning["effort"]); effort != "" {
			e := uir.ReasoningEffort(effort)
			cfg.Effort = &e
		}
		if summary := asString(reasoning["summary"]); summary != "" {
			sm := uir.SummaryMode(summary)
			cfg.SummaryMode = &sm
		}
		req.Params.Reasoning = cfg
	}

	toolsRaw, _ := asSlice(v["tools"])
	for _, t := range toolsRaw {
		tm, ok := asMap(t)
		if !ok {
			continue
		}
		if asString(tm["type"]) != "function" {
			continue
		}
		req.Tools = append(req.Tools, uir.ClientTool{
			Name:        asString(tm["name"]),
			Description: asString(tm["description"]),
			InputSchema: mapOrNil(tm["parameters"]),
		})
	}

	return req, nil
}

func responsesMessageToUniversal(im map[string]any) (uir.Message, error) {
	role := asString(im["role"])
	content := responsesContentToUserContent(im["content"])
	switch role {
	case "system", "developer":
		if err := validateUserContent(content, "openai-responses"); err != nil {
			return nil, err
		}
		return uir.SystemMessage{Content: content}, nil
	case "assistant":
		var parts uir.AssistantContent
		for _, p := range content {
			parts = append(parts, p.(uir.AssistantContentPart))
		}
		if err := validateAssistantContent(parts, "openai-responses"); err != nil {
			return nil, err
		}
		return uir.AssistantMessage{Content: parts}, nil
	default:
		if err := validateUserContent(content, "openai-responses"); err != nil {
			return nil, err
		}
		return uir.UserMessage{Content: content}, nil
	}
}

func responsesContentToUserContent(v any) uir.UserContent {
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
		case "input_text", "output_text", "text":
			out = append(out, uir.TextPart{Text: asString(pm["text"])})
		case "input_image":
			out = append(out, uir.ImagePart{Data: asString(pm["image_url"])})
		}
	}
	return out
}

func (a *OpenAIResponsesAdapter) RequestFromUniversal(r *uir.Request) (map[string]any, error) {
	out := map[string]any{"model": r.Model}
	if r.Stream {
		out["stream"] = true
	}

	var input []any
	for _, m := range r.Messages {
		switch msg := m.(type) {
		case uir.SystemMessage:
			out["instructions"] = textOf(msg.Content)
		case uir.UserMessage:
			input = append(input, map[string]any{"role": "user", "content": responsesContentFromUser(msg.Content)})
		case uir.AssistantMessage:
			for _, p := range msg.Content {
				if tc, ok := p.(uir.ToolCallPart); ok {
					args, _ := tc.Arguments.JSON()
					input = append(input, map[string]any{
						"type":      "function_call",
						"call_id":   tc.ToolCallID,
						"name":      tc.ToolName,
						"arguments": args,
					})
				}
			}
			if text := assistantTextOf(msg.Content); text != "" {
				input = append(input, map[string]any{"role": "assistant", "content": []any{
					map[string]any{"type": "output_text", "text": text},
				}})
			}
		case uir.ToolMessage:
			for _, res := range msg.Results {
				input = append(input, map[string]any{
					"type":    "function_call_output",
					"call_id": res.ToolCallID,
					"output":  res.Output,
				})
			}
		}
	}
	out["input"] = input

	if r.Params.MaxTokens != nil {
		out["max_output_tokens"] = *r.Params.MaxTokens
	}
	if r.Params.Temperature != nil {
		out["temperature"] = *r.Params.Temperature
	}
	if r.Params.TopP != nil {
		out["top_p"] = *r.Params.TopP
	}
	if r.Params.ToolChoice != nil {
		out["tool_choice"] = semantic.ToolChoiceToOpenAIResponses(r.Params.ToolChoice)
	}
	if r.Params.ResponseFormat != nil {
		for k, v := range semantic.ResponseFormatToResponsesShape(r.Params.ResponseFormat) {
			out[k] = v
		}
	}
	if r.Params.Reasoning != nil {
		reasoning := map[string]any{}
		if r.Params.Reasoning.Effort != nil {
			reasoning["effort"] = string(*r.Params.Reasoning.Effort)
		}
		if r.Params.Reasoning.SummaryMode != nil {
			reasoning["summary"] = string(*r.Params.Reasoning.SummaryMode)
		}
		out["reasoning"] = reasoning
	}

	var tools []any
	for _, t := range r.Tools {
		ct, ok := t.(uir.ClientTool)
		if !ok {
			continue
		}
		tools = append(tools, map[string]any{
			"type":        "function",
			"name":        ct.Name,
			"description": ct.Description,
			"parameters":  ct.InputSchema,
		})
	}
	if tools != nil {
		out["tools"] = tools
	}

	return out, nil
}

func textOf(c uir.UserContent) string {
	var s string
	for _, p := range c {
		if t, ok := p.(uir.TextPart); ok {
			s += t.Text
		}
	}
	return s
}

func assistantTextOf(c uir.AssistantContent) string {
	var s string
	for _, p := range c {
		if t, ok := p.(uir.TextPart); ok {
			s += t.Text
		}
	}
	return s
}

func responsesContentFromUser(c uir.UserContent) []any {
	var out []any
	for _, p := range c {
		switch part := p.(type) {
		case uir.TextPart:
			out = append(out, map[string]any{"type": "input_text", "text": part.Text})
		case uir.ImagePart:
			out = append(out, map[string]any{"type": "input_image", "image_url": part.Data})
		}
	}
	return out
}

// --- response ---

func (a *OpenAIResponsesAdapter) ResponseToUniversal(v map[string]any) (*uir.Response, error) {
	resp := &uir.Response{Model: asString(v["model"])}

	output, _ := asSlice(v["output"])
	var parts uir.AssistantContent
	for _, item := range output {
		im, ok := asMap(item)
		if !ok {
			continue
		}
		switch asString(im["type"]) {
		case "message":
			content, _ := asSlice(im["content"])
			for _, c := range content {
				cm, _ := asMap(c)
				if asString(cm["type"]) == "output_text" {
					parts = append(parts, uir.TextPart{Text: asString(cm["text"])})
				}
			}
		case "function_call":
			parts = append(parts, uir.ToolCallPart{
				ToolCallID: asString(im["call_id"]),
				ToolName:   asString(im["name"]),
				Arguments:  uir.NewToolCallArguments(asString(im["arguments"])),
			})
		case "reasoning":
			summary, _ := asSlice(im["summary"])
			var text string
			for _, s := range summary {
				sm, _ := asMap(s)
				text += asString(sm["text"])
			}
			parts = append(parts, uir.ReasoningPart{Text: text})
		}
	}
	if len(parts) > 0 {
		resp.Messages = append(resp.Messages, uir.AssistantMessage{Content: parts})
	}

	if status := asString(v["status"]); status != "" {
		fr := semantic.FinishReasonFromProviderString(status, capabilities.FormatOpenAIResponses)
		resp.FinishReason = &fr
	}

	if usage := semantic.UsageFromProviderValue(mapOrNil(v["usage"]), capabilities.FormatOpenAIResponses); usage != nil {
		resp.Usage = usage
	}

	return resp, nil
}

func (a *OpenAIResponsesAdapter) ResponseFromUniversal(r *uir.Response) (map[string]any, error) {
	out := map[string]any{"object": "response", "model": r.Model}

	var output []any
	if len(r.Messages) > 0 {
		if am, ok := r.Messages[0].(uir.AssistantMessage); ok {
			var content []any
			for _, p := range am.Content {
				switch part := p.(type) {
				case uir.TextPart:
					content = append(content, map[string]any{"type": "output_text", "text": part.Text})
				case uir.ToolCallPart:
					args, _ := part.Arguments.JSON()
					output = append(output, map[string]any{
						"type":      "function_call",
						"call_id":   part.ToolCallID,
						"name":      part.ToolName,
						"arguments": args,
					})
				}
			}
			if content != nil {
				output = append([]any{map[string]any{"type": "message", "role": "assistant", "content": content}}, output...)
			}
		}
	}
	out["output"] = output

	if r.FinishReason != nil {
		out["status"] = semantic.FinishReasonToProviderString(*r.FinishReason, capabilities.FormatOpenAIResponses)
	}
	if r.Usage != nil {
		out["usage"] = semantic.UsageToProviderValue(r.Usage, capabilities.FormatOpenAIResponses)
	}

	return out, nil
}

// --- stream ---

func (a *OpenAIResponsesAdapter) StreamToUniversal(v map[string]any) (*uir.StreamChunk, error) {
	chunk := &uir.StreamChunk{}
	switch asString(v["type"]) {
	case "response.output_text.delta":
		if delta := asString(v["delta"]); delta != "" {
			chunk.DeltaText = &delta
		}
	case "response.reasoning_summary_text.delta":
		if delta := asString(v["delta"]); delta != "" {
			chunk.DeltaReasoning = &delta
		}
	case "response.function_call_arguments.delta":
		chunk.DeltaToolCall = &uir.ToolCallDelta{ArgumentsFragment: asString(v["delta"])}
	case "response.completed":
		resp, _ := asMap(v["response"])
		if usage := semantic.UsageFromProviderValue(mapOrNil(resp["usage"]), capabilities.FormatOpenAIResponses); usage != nil {
			chunk.Usage = usage
		}
		fr := semantic.FinishReasonFromProviderString("completed", capabilities.FormatOpenAIResponses)
		chunk.FinishReason = &fr
	default:
		chunk.IsKeepAlive = true
	}
	return chunk, nil
}

func (a *OpenAIResponsesAdapter) StreamFromUniversal(c *uir.StreamChunk) (map[string]any, error) {
	if c.DeltaText != nil {
		return map[string]any{"type": "response.output_text.delta", "delta": *c.DeltaText}, nil
	}
	if c.DeltaReasoning != nil {
		return map[string]any{"type": "response.reasoning_summary_text.delta", "delta": *c.DeltaReasoning}, nil
	}
	if c.DeltaToolCall != nil {
		return map[string]any{"type": "response.function_call_arguments.delta", "delta": c.DeltaToolCall.ArgumentsFragment}, nil
	}
	if c.FinishReason != nil {
		out := map[string]any{"type": "response.completed"}
		if c.Usage != nil {
			out["response"] = map[string]any{"usage": semantic.UsageToProviderValue(c.Usage, capabilities.FormatOpenAIResponses)}
		}
		return out, nil
	}
	return map[string]any{}, nil
}
