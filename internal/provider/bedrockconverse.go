package provider

import (
	"encoding/json"

	"github.com/howard-nolan/llmgateway/internal/capabilities"
	"github.com/howard-nolan/llmgateway/internal/semantic"
	"github.com/howard-nolan/llmgateway/internal/uir"
)

// BedrockConverseAdapter implements AWS Bedrock's Converse/ConverseStream
// dialect (the shape documented in AWS's bedrock-runtime API, grounded on
// the envoyproxy ai-gateway translator's awsbedrock package): a flat
// "messages"/"system"/"inferenceConfig"/"toolConfig" body, content blocks
// keyed by "text"/"image"/"toolUse"/"toolResult", and stream events
// decoded from the AWS binary event-stream framing upstream of this
// adapter (internal/streamcodec.AWSEventDecoder already produced the
// per-event JSON map handed to StreamToUniversal).
type BedrockConverseAdapter struct{}

func NewBedrockConverseAdapter() *BedrockConverseAdapter { return &BedrockConverseAdapter{} }

func (a *BedrockConverseAdapter) Format() capabilities.ProviderFormat {
	return capabilities.FormatBedrockConverse
}
func (a *BedrockConverseAdapter) DirectoryName() string { return "bedrock-converse" }
func (a *BedrockConverseAdapter) DisplayName() string   { return "AWS Bedrock Converse" }

func (a *BedrockConverseAdapter) DetectRequest(v map[string]any) bool {
	format, ok := capabilities.Detect(v)
	return ok && format == capabilities.FormatBedrockConverse
}

func (a *BedrockConverseAdapter) DetectResponse(v map[string]any) bool {
	output, ok := asMap(v["output"])
	if !ok {
		return false
	}
	_, hasMessage := output["message"]
	return hasMessage
}

func (a *BedrockConverseAdapter) DetectStreamResponse(v map[string]any) bool {
	switch {
	case v["messageStart"] != nil, v["contentBlockStart"] != nil, v["contentBlockDelta"] != nil,
		v["contentBlockStop"] != nil, v["messageStop"] != nil, v["metadata"] != nil:
		return true
	default:
		return false
	}
}

func (a *BedrockConverseAdapter) ApplyDefaults(r *uir.Request) {}

// --- request ---

func (a *BedrockConverseAdapter) RequestToUniversal(v map[string]any) (*uir.Request, error) {
	req := &uir.Request{Model: asString(v["modelId"])}

	if ic, ok := asMap(v["inferenceConfig"]); ok {
		if mt, ok := asInt(ic["maxTokens"]); ok {
			req.Params.MaxTokens = intPtr(mt)
		}
		if t, ok := asFloat64(ic["temperature"]); ok {
			req.Params.Temperature = floatPtr(t)
		}
		if tp, ok := asFloat64(ic["topP"]); ok {
			req.Params.TopP = floatPtr(tp)
		}
		if stop, ok := asSlice(ic["stopSequences"]); ok {
			for _, s := range stop {
				req.Params.StopSequences = append(req.Params.StopSequences, asString(s))
			}
		}
	}

	if system, ok := asSlice(v["system"]); ok {
		var content uir.UserContent
		for _, s := range system {
			sm, ok := asMap(s)
			if !ok {
				continue
			}
			content = append(content, uir.TextPart{Text: asString(sm["text"])})
		}
		if len(content) > 0 {
			req.Messages = append(req.Messages, uir.SystemMessage{Content: content})
		}
	}

	rawMessages, _ := asSlice(v["messages"])
	for _, rm := range rawMessages {
		mm, ok := asMap(rm)
		if !ok {
			continue
		}
		msgs, err := converseMessageToUniversal(mm)
		if err != nil {
			return nil, err
		}
		req.Messages = append(req.Messages, msgs...)
	}

	if tc, ok := asMap(v["toolConfig"]); ok {
		toolsRaw, _ := asSlice(tc["tools"])
		for _, t := range toolsRaw {
			tm, ok := asMap(t)
			if !ok {
				continue
			}
			spec, ok := asMap(tm["toolSpec"])
			if !ok {
				continue
			}
			schema, _ := asMap(spec["inputSchema"])
			req.Tools = append(req.Tools, uir.ClientTool{
				Name:        asString(spec["name"]),
				Description: asString(spec["description"]),
				InputSchema: mapOrNil(schema["json"]),
			})
		}
		if choice, ok := asMap(tc["toolChoice"]); ok {
			req.Params.ToolChoice = converseToolChoiceToUniversal(choice)
		}
	}

	return req, nil
}

func converseToolChoiceToUniversal(choice map[string]any) *uir.ToolChoiceConfig {
	if _, ok := choice["auto"]; ok {
		return &uir.ToolChoiceConfig{Mode: uir.ToolChoiceAuto}
	}
	if _, ok := choice["any"]; ok {
		return &uir.ToolChoiceConfig{Mode: uir.ToolChoiceRequired}
	}
	if tool, ok := asMap(choice["tool"]); ok {
		return &uir.ToolChoiceConfig{Mode: uir.ToolChoiceTool, ToolName: asString(tool["name"])}
	}
	return nil
}

func converseMessageToUniversal(mm map[string]any) ([]uir.Message, error) {
	role := asString(mm["role"])
	content, _ := asSlice(mm["content"])

	switch role {
	case "user":
		var userParts uir.UserContent
		var results []uir.ToolResultPart
		for _, c := range content {
			cm, ok := asMap(c)
			if !ok {
				continue
			}
			switch {
			case cm["text"] != nil:
				userParts = append(userParts, uir.TextPart{Text: asString(cm["text"])})
			case cm["image"] != nil:
				img, _ := asMap(cm["image"])
				src, _ := asMap(img["source"])
				userParts = append(userParts, uir.ImagePart{
					Data:      converseImageBytes(src["bytes"]),
					MediaType: "image/" + asString(img["format"]),
				})
			case cm["toolResult"] != nil:
				tr, _ := asMap(cm["toolResult"])
				results = append(results, uir.ToolResultPart{
					ToolCallID: asString(tr["toolUseId"]),
					Output:     converseToolResultContent(tr["content"]),
				})
			}
		}
		var out []uir.Message
		if len(results) > 0 {
			out = append(out, uir.ToolMessage{Results: results})
		}
		if len(userParts) > 0 {
			out = append(out, uir.UserMessage{Content: userParts})
		}
		if len(out) == 0 {
			out = append(out, uir.UserMessage{Content: uir.UserContent{uir.TextPart{}}})
		}
		return out, nil
	case "assistant":
		parts, err := converseContentToAssistant(content)
		if err != nil {
			return nil, err
		}
		if err := validateAssistantContent(parts, "bedrock-converse"); err != nil {
			return nil, err
		}
		return []uir.Message{uir.AssistantMessage{Content: parts}}, nil
	default:
		return nil, errUnknownRole("bedrock-converse", role)
	}
}

func converseImageBytes(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func converseToolResultContent(v any) any {
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
		if pm["text"] != nil {
			text += asString(pm["text"])
		}
	}
	return text
}

func converseContentToAssistant(content []any) (uir.AssistantContent, error) {
	var out uir.AssistantContent
	for _, c := range content {
		cm, ok := asMap(c)
		if !ok {
			continue
		}
		switch {
		case cm["text"] != nil:
			out = append(out, uir.TextPart{Text: asString(cm["text"])})
		case cm["reasoningContent"] != nil:
			rc, _ := asMap(cm["reasoningContent"])
			reasoningText, _ := asMap(rc["reasoningText"])
			out = append(out, uir.ReasoningPart{Text: asString(reasoningText["text"])})
		case cm["toolUse"] != nil:
			tu, _ := asMap(cm["toolUse"])
			raw, err := json.Marshal(mapOrNil(tu["input"]))
			if err != nil {
				return nil, err
			}
			out = append(out, uir.ToolCallPart{
				ToolCallID: asString(tu["toolUseId"]),
				ToolName:   asString(tu["name"]),
				Arguments:  uir.NewToolCallArguments(string(raw)),
			})
		}
	}
	return out, nil
}

func (a *BedrockConverseAdapter) RequestFromUniversal(r *uir.Request) (map[string]any, error) {
	out := map[string]any{"modelId": r.Model}

	ic := map[string]any{}
	if r.Params.MaxTokens != nil {
		ic["maxTokens"] = *r.Params.MaxTokens
	}
	if r.Params.Temperature != nil {
		ic["temperature"] = *r.Params.Temperature
	}
	if r.Params.TopP != nil {
		ic["topP"] = *r.Params.TopP
	}
	if len(r.Params.StopSequences) > 0 {
		ic["stopSequences"] = r.Params.StopSequences
	}
	if len(ic) > 0 {
		out["inferenceConfig"] = ic
	}

	var system []any
	var messages []any
	for _, m := range r.Messages {
		switch msg := m.(type) {
		case uir.SystemMessage:
			for _, p := range msg.Content {
				if t, ok := p.(uir.TextPart); ok {
					system = append(system, map[string]any{"text": t.Text})
				}
			}
		case uir.UserMessage:
			messages = append(messages, map[string]any{"role": "user", "content": userContentToConverse(msg.Content)})
		case uir.AssistantMessage:
			messages = append(messages, map[string]any{"role": "assistant", "content": assistantContentToConverse(msg.Content)})
		case uir.ToolMessage:
			var blocks []any
			for _, res := range msg.Results {
				blocks = append(blocks, map[string]any{"toolResult": map[string]any{
					"toolUseId": res.ToolCallID,
					"content":   []any{map[string]any{"text": anthropicToolResultContent(res.Output)}},
				}})
			}
			messages = append(messages, map[string]any{"role": "user", "content": blocks})
		}
	}
	if len(system) > 0 {
		out["system"] = system
	}
	out["messages"] = messages

	if r.Params.ToolChoice != nil || len(r.Tools) > 0 {
		tc := map[string]any{}
		var tools []any
		for _, t := range r.Tools {
			ct, ok := t.(uir.ClientTool)
			if !ok {
				continue
			}
			tools = append(tools, map[string]any{"toolSpec": map[string]any{
				"name":        ct.Name,
				"description": ct.Description,
				"inputSchema": map[string]any{"json": ct.InputSchema},
			}})
		}
		if tools != nil {
			tc["tools"] = tools
		}
		if r.Params.ToolChoice != nil {
			tc["toolChoice"] = converseToolChoiceFromUniversal(r.Params.ToolChoice)
		}
		out["toolConfig"] = tc
	}

	return out, nil
}

func converseToolChoiceFromUniversal(cfg *uir.ToolChoiceConfig) map[string]any {
	switch cfg.Mode {
	case uir.ToolChoiceRequired:
		return map[string]any{"any": map[string]any{}}
	case uir.ToolChoiceTool:
		return map[string]any{"tool": map[string]any{"name": cfg.ToolName}}
	default:
		return map[string]any{"auto": map[string]any{}}
	}
}

func userContentToConverse(c uir.UserContent) []any {
	var out []any
	for _, p := range c {
		switch part := p.(type) {
		case uir.TextPart:
			out = append(out, map[string]any{"text": part.Text})
		case uir.ImagePart:
			format := part.MediaType
			if len(format) > 6 && format[:6] == "image/" {
				format = format[6:]
			}
			out = append(out, map[string]any{"image": map[string]any{
				"format": format,
				"source": map[string]any{"bytes": part.Data},
			}})
		case uir.FilePart:
			out = append(out, map[string]any{"text": part.Data})
		}
	}
	return out
}

func assistantContentToConverse(c uir.AssistantContent) []any {
	var out []any
	for _, p := range c {
		switch part := p.(type) {
		case uir.ReasoningPart:
			out = append(out, map[string]any{"reasoningContent": map[string]any{
				"reasoningText": map[string]any{"text": part.Text},
			}})
		case uir.TextPart:
			out = append(out, map[string]any{"text": part.Text})
		case uir.ToolCallPart:
			out = append(out, map[string]any{"toolUse": map[string]any{
				"toolUseId": part.ToolCallID,
				"name":      part.ToolName,
				"input":     part.Arguments.Map,
			}})
		}
	}
	return out
}

// --- response ---

func (a *BedrockConverseAdapter) ResponseToUniversal(v map[string]any) (*uir.Response, error) {
	resp := &uir.Response{}

	output, _ := asMap(v["output"])
	message, _ := asMap(output["message"])
	if message != nil {
		content, _ := asSlice(message["content"])
		parts, err := converseContentToAssistant(content)
		if err != nil {
			return nil, err
		}
		if err := validateAssistantContent(parts, "bedrock-converse"); err != nil {
			return nil, err
		}
		resp.Messages = append(resp.Messages, uir.AssistantMessage{Content: parts})
	}

	if sr := asString(v["stopReason"]); sr != "" {
		fr := semantic.FinishReasonFromProviderString(sr, capabilities.FormatBedrockConverse)
		resp.FinishReason = &fr
	}
	if usage := semantic.UsageFromProviderValue(mapOrNil(v["usage"]), capabilities.FormatBedrockConverse); usage != nil {
		resp.Usage = usage
	}

	return resp, nil
}

func (a *BedrockConverseAdapter) ResponseFromUniversal(r *uir.Response) (map[string]any, error) {
	out := map[string]any{}

	if len(r.Messages) > 0 {
		if am, ok := r.Messages[0].(uir.AssistantMessage); ok {
			out["output"] = map[string]any{"message": map[string]any{
				"role":    "assistant",
				"content": assistantContentToConverse(am.Content),
			}}
		}
	}
	if r.FinishReason != nil {
		out["stopReason"] = semantic.FinishReasonToProviderString(*r.FinishReason, capabilities.FormatBedrockConverse)
	}
	if r.Usage != nil {
		out["usage"] = semantic.UsageToProviderValue(r.Usage, capabilities.FormatBedrockConverse)
	}

	return out, nil
}

// --- stream ---

func (a *BedrockConverseAdapter) StreamToUniversal(v map[string]any) (*uir.StreamChunk, error) {
	if ms, ok := asMap(v["messageStart"]); ok {
		role := uir.Role(asString(ms["role"]))
		return &uir.StreamChunk{Role: &role}, nil
	}

	if cbs, ok := asMap(v["contentBlockStart"]); ok {
		start, _ := asMap(cbs["start"])
		tu, ok := asMap(start["toolUse"])
		if !ok {
			return nil, nil
		}
		idx, _ := asInt(cbs["contentBlockIndex"])
		return &uir.StreamChunk{DeltaToolCall: &uir.ToolCallDelta{
			Index:      idx,
			ToolCallID: asString(tu["toolUseId"]),
			ToolName:   asString(tu["name"]),
		}}, nil
	}

	if cbd, ok := asMap(v["contentBlockDelta"]); ok {
		delta, _ := asMap(cbd["delta"])
		idx, _ := asInt(cbd["contentBlockIndex"])
		switch {
		case delta["text"] != nil:
			text := asString(delta["text"])
			return &uir.StreamChunk{DeltaText: &text}, nil
		case delta["reasoningContent"] != nil:
			rc, _ := asMap(delta["reasoningContent"])
			text := asString(rc["text"])
			return &uir.StreamChunk{DeltaReasoning: &text}, nil
		case delta["toolUse"] != nil:
			tu, _ := asMap(delta["toolUse"])
			return &uir.StreamChunk{DeltaToolCall: &uir.ToolCallDelta{Index: idx, ArgumentsFragment: asString(tu["input"])}}, nil
		default:
			return nil, nil
		}
	}

	if _, ok := v["contentBlockStop"]; ok {
		return nil, nil
	}

	if ms, ok := asMap(v["messageStop"]); ok {
		chunk := &uir.StreamChunk{}
		if sr := asString(ms["stopReason"]); sr != "" {
			fr := semantic.FinishReasonFromProviderString(sr, capabilities.FormatBedrockConverse)
			chunk.FinishReason = &fr
		}
		return chunk, nil
	}

	if md, ok := asMap(v["metadata"]); ok {
		if usage := semantic.UsageFromProviderValue(mapOrNil(md["usage"]), capabilities.FormatBedrockConverse); usage != nil {
			return &uir.StreamChunk{Usage: usage}, nil
		}
		return nil, nil
	}

	return &uir.StreamChunk{IsKeepAlive: true}, nil
}

func (a *BedrockConverseAdapter) StreamFromUniversal(c *uir.StreamChunk) (map[string]any, error) {
	if c.Role != nil {
		return map[string]any{"messageStart": map[string]any{"role": string(*c.Role)}}, nil
	}
	if c.DeltaText != nil {
		return map[string]any{"contentBlockDelta": map[string]any{"delta": map[string]any{"text": *c.DeltaText}}}, nil
	}
	if c.DeltaReasoning != nil {
		return map[string]any{"contentBlockDelta": map[string]any{"delta": map[string]any{
			"reasoningContent": map[string]any{"text": *c.DeltaReasoning},
		}}}, nil
	}
	if c.DeltaToolCall != nil {
		if c.DeltaToolCall.ToolCallID != "" {
			return map[string]any{"contentBlockStart": map[string]any{
				"contentBlockIndex": c.DeltaToolCall.Index,
				"start": map[string]any{"toolUse": map[string]any{
					"toolUseId": c.DeltaToolCall.ToolCallID, "name": c.DeltaToolCall.ToolName,
				}},
			}}, nil
		}
		return map[string]any{"contentBlockDelta": map[string]any{
			"contentBlockIndex": c.DeltaToolCall.Index,
			"delta":             map[string]any{"toolUse": map[string]any{"input": c.DeltaToolCall.ArgumentsFragment}},
		}}, nil
	}
	if c.FinishReason != nil {
		return map[string]any{"messageStop": map[string]any{
			"stopReason": semantic.FinishReasonToProviderString(*c.FinishReason, capabilities.FormatBedrockConverse),
		}}, nil
	}
	if c.Usage != nil {
		return map[string]any{"metadata": map[string]any{"usage": semantic.UsageToProviderValue(c.Usage, capabilities.FormatBedrockConverse)}}, nil
	}
	return map[string]any{}, nil
}
