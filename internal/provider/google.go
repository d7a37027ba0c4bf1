package provider

import (
	"encoding/json"

	"github.com/howard-nolan/llmgateway/internal/capabilities"
	"github.com/howard-nolan/llmgateway/internal/semantic"
	"github.com/howard-nolan/llmgateway/internal/uir"
)

// GoogleAdapter implements Google's Gemini generateContent/
// streamGenerateContent dialect: "contents[].parts" instead of messages,
// camelCase field names, and role "model" instead of "assistant".
type GoogleAdapter struct{}

func NewGoogleAdapter() *GoogleAdapter { return &GoogleAdapter{} }

func (a *GoogleAdapter) Format() capabilities.ProviderFormat { return capabilities.FormatGoogle }
func (a *GoogleAdapter) DirectoryName() string               { return "google" }
func (a *GoogleAdapter) DisplayName() string                 { return "Google Gemini" }

func (a *GoogleAdapter) DetectRequest(v map[string]any) bool {
	format, ok := capabilities.Detect(v)
	return ok && format == capabilities.FormatGoogle
}

func (a *GoogleAdapter) DetectResponse(v map[string]any) bool {
	candidates, ok := asSlice(v["candidates"])
	return ok && len(candidates) > 0
}

func (a *GoogleAdapter) DetectStreamResponse(v map[string]any) bool {
	_, hasCandidates := v["candidates"]
	_, hasUsage := v["usageMetadata"]
	return hasCandidates || hasUsage
}

func (a *GoogleAdapter) ApplyDefaults(r *uir.Request) {}

// --- request ---

func (a *GoogleAdapter) RequestToUniversal(v map[string]any) (*uir.Request, error) {
	req := &uir.Request{Model: asString(v["model"])}

	if sys, ok := asMap(v["systemInstruction"]); ok {
		sysContent := googlePartsToUserContent(sys["parts"])
		if err := validateUserContent(sysContent, "google"); err != nil {
			return nil, err
		}
		req.Messages = append(req.Messages, uir.SystemMessage{Content: sysContent})
	}

	contents, _ := asSlice(v["contents"])
	for _, c := range contents {
		cm, ok := asMap(c)
		if !ok {
			continue
		}
		msgs, err := googleContentToUniversal(cm)
		if err != nil {
			return nil, err
		}
		req.Messages = append(req.Messages, msgs...)
	}

	if gc, ok := asMap(v["generationConfig"]); ok {
		if mt, ok := asInt(gc["maxOutputTokens"]); ok {
			req.Params.MaxTokens = intPtr(mt)
		}
		if t, ok := asFloat64(gc["temperature"]); ok {
			req.Params.Temperature = floatPtr(t)
		}
		if tp, ok := asFloat64(gc["topP"]); ok {
			req.Params.TopP = floatPtr(tp)
		}
		if stop, ok := asSlice(gc["stopSequences"]); ok {
			for _, s := range stop {
				req.Params.StopSequences = append(req.Params.StopSequences, asString(s))
			}
		}
		if mt := asString(gc["responseMimeType"]); mt != "" {
			req.Params.ResponseFormat = semantic.ResponseFormatFromGoogle(mt, mapOrNil(gc["responseSchema"]))
		}
		if tc, ok := asMap(gc["thinkingConfig"]); ok {
			cfg := &uir.ReasoningConfig{}
			if bt, ok := asInt(tc["thinkingBudget"]); ok {
				b := int64(bt)
				cfg.BudgetTokens = &b
			}
			req.Params.Reasoning = cfg
		}
	}

	if tc, ok := asMap(v["toolConfig"]); ok {
		req.Params.ToolChoice = googleToolChoiceToUniversal(tc)
	}

	toolsRaw, _ := asSlice(v["tools"])
	for _, t := range toolsRaw {
		tm, ok := asMap(t)
		if !ok {
			continue
		}
		fns, _ := asSlice(tm["functionDeclarations"])
		for _, fn := range fns {
			fnm, ok := asMap(fn)
			if !ok {
				continue
			}
			req.Tools = append(req.Tools, uir.ClientTool{
				Name:        asString(fnm["name"]),
				Description: asString(fnm["description"]),
				InputSchema: mapOrNil(fnm["parameters"]),
			})
		}
		if _, ok := tm["googleSearch"]; ok {
			req.Tools = append(req.Tools, uir.ProviderTool{ToolType: "web_search"})
		}
		if _, ok := tm["codeExecution"]; ok {
			req.Tools = append(req.Tools, uir.ProviderTool{ToolType: "code_execution"})
		}
	}

	return req, nil
}

func googleToolChoiceToUniversal(tc map[string]any) *uir.ToolChoiceConfig {
	fcc, ok := asMap(tc["functionCallingConfig"])
	if !ok {
		return nil
	}
	switch asString(fcc["mode"]) {
	case "AUTO":
		return &uir.ToolChoiceConfig{Mode: uir.ToolChoiceAuto}
	case "NONE":
		return &uir.ToolChoiceConfig{Mode: uir.ToolChoiceNone}
	case "ANY":
		names, _ := asSlice(fcc["allowedFunctionNames"])
		if len(names) == 1 {
			return &uir.ToolChoiceConfig{Mode: uir.ToolChoiceTool, ToolName: asString(names[0])}
		}
		return &uir.ToolChoiceConfig{Mode: uir.ToolChoiceRequired}
	default:
		return nil
	}
}

func googlePartsToUserContent(v any) uir.UserContent {
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
		if text := asString(pm["text"]); text != "" || pm["text"] != nil {
			out = append(out, uir.TextPart{Text: text})
			continue
		}
		if id, ok := asMap(pm["inlineData"]); ok {
			out = append(out, uir.ImagePart{Data: asString(id["data"]), MediaType: asString(id["mimeType"])})
		}
	}
	return out
}

func googleContentToUniversal(cm map[string]any) ([]uir.Message, error) {
	role := asString(cm["role"])
	parts, _ := asSlice(cm["parts"])

	switch role {
	case "user":
		var content uir.UserContent
		var results []uir.ToolResultPart
		for _, p := range parts {
			pm, ok := asMap(p)
			if !ok {
				continue
			}
			switch {
			case pm["text"] != nil:
				content = append(content, uir.TextPart{Text: asString(pm["text"])})
			case pm["inlineData"] != nil:
				id, _ := asMap(pm["inlineData"])
				content = append(content, uir.ImagePart{Data: asString(id["data"]), MediaType: asString(id["mimeType"])})
			case pm["functionResponse"] != nil:
				fr, _ := asMap(pm["functionResponse"])
				results = append(results, uir.ToolResultPart{ToolName: asString(fr["name"]), ToolCallID: asString(fr["id"]), Output: fr["response"]})
			}
		}
		var out []uir.Message
		if len(results) > 0 {
			out = append(out, uir.ToolMessage{Results: results})
		}
		if len(content) > 0 {
			out = append(out, uir.UserMessage{Content: content})
		}
		if len(out) == 0 {
			out = append(out, uir.UserMessage{Content: uir.UserContent{uir.TextPart{}}})
		}
		return out, nil
	case "model":
		var assistant uir.AssistantContent
		for _, p := range parts {
			pm, ok := asMap(p)
			if !ok {
				continue
			}
			switch {
			case asBoolOr(pm["thought"]):
				assistant = append(assistant, uir.ReasoningPart{Text: asString(pm["text"])})
			case pm["text"] != nil:
				assistant = append(assistant, uir.TextPart{Text: asString(pm["text"])})
			case pm["functionCall"] != nil:
				fc, _ := asMap(pm["functionCall"])
				raw, err := json.Marshal(mapOrNil(fc["args"]))
				if err != nil {
					return nil, err
				}
				assistant = append(assistant, uir.ToolCallPart{
					ToolCallID: asString(fc["id"]),
					ToolName:   asString(fc["name"]),
					Arguments:  uir.NewToolCallArguments(string(raw)),
				})
			}
		}
		if err := validateAssistantContent(assistant, "google"); err != nil {
			return nil, err
		}
		return []uir.Message{uir.AssistantMessage{Content: assistant}}, nil
	default:
		return nil, errUnknownRole("google", role)
	}
}

func asBoolOr(v any) bool {
	b, _ := asBool(v)
	return b
}

func (a *GoogleAdapter) RequestFromUniversal(r *uir.Request) (map[string]any, error) {
	out := map[string]any{}

	var contents []any
	for _, m := range r.Messages {
		switch msg := m.(type) {
		case uir.SystemMessage:
			out["systemInstruction"] = map[string]any{"parts": userContentToGoogleParts(msg.Content)}
		case uir.UserMessage:
			contents = append(contents, map[string]any{"role": "user", "parts": userContentToGoogleParts(msg.Content)})
		case uir.AssistantMessage:
			contents = append(contents, map[string]any{"role": "model", "parts": assistantContentToGoogleParts(msg.Content)})
		case uir.ToolMessage:
			var parts []any
			for _, res := range msg.Results {
				parts = append(parts, map[string]any{"functionResponse": map[string]any{
					"name": res.ToolName, "id": res.ToolCallID, "response": googleFunctionResponseValue(res.Output),
				}})
			}
			contents = append(contents, map[string]any{"role": "user", "parts": parts})
		}
	}
	out["contents"] = contents

	genConfig := map[string]any{}
	if r.Params.MaxTokens != nil {
		genConfig["maxOutputTokens"] = *r.Params.MaxTokens
	}
	if r.Params.Temperature != nil {
		genConfig["temperature"] = *r.Params.Temperature
	}
	if r.Params.TopP != nil {
		genConfig["topP"] = *r.Params.TopP
	}
	if len(r.Params.StopSequences) > 0 {
		genConfig["stopSequences"] = r.Params.StopSequences
	}
	if r.Params.ResponseFormat != nil {
		mimeType, schema := semantic.ResponseFormatToGoogle(r.Params.ResponseFormat)
		genConfig["responseMimeType"] = mimeType
		if schema != nil {
			genConfig["responseSchema"] = schema
		}
	}
	if r.Params.Reasoning != nil {
		budget := r.Params.Reasoning.BudgetTokens
		if budget == nil && r.Params.Reasoning.Effort != nil {
			b := semantic.NewReasoningConverter().EffortToBudget(*r.Params.Reasoning.Effort, int64PtrOf(r.Params.MaxTokens))
			budget = &b
		}
		if budget != nil {
			genConfig["thinkingConfig"] = map[string]any{"thinkingBudget": *budget}
		}
	}
	if len(genConfig) > 0 {
		out["generationConfig"] = genConfig
	}

	if r.Params.ToolChoice != nil {
		out["toolConfig"] = googleToolChoiceFromUniversal(r.Params.ToolChoice)
	}

	var functions []any
	var providerTools []any
	for _, t := range r.Tools {
		switch tool := t.(type) {
		case uir.ClientTool:
			functions = append(functions, map[string]any{
				"name": tool.Name, "description": tool.Description, "parameters": tool.InputSchema,
			})
		case uir.ProviderTool:
			switch tool.ToolType {
			case "web_search":
				providerTools = append(providerTools, map[string]any{"googleSearch": map[string]any{}})
			case "code_execution":
				providerTools = append(providerTools, map[string]any{"codeExecution": map[string]any{}})
			}
		}
	}
	var tools []any
	if functions != nil {
		tools = append(tools, map[string]any{"functionDeclarations": functions})
	}
	tools = append(tools, providerTools...)
	if tools != nil {
		out["tools"] = tools
	}

	return out, nil
}

func googleFunctionResponseValue(output any) map[string]any {
	if m, ok := output.(map[string]any); ok {
		return m
	}
	return map[string]any{"result": output}
}

func googleToolChoiceFromUniversal(cfg *uir.ToolChoiceConfig) map[string]any {
	fcc := map[string]any{}
	switch cfg.Mode {
	case uir.ToolChoiceAuto:
		fcc["mode"] = "AUTO"
	case uir.ToolChoiceNone:
		fcc["mode"] = "NONE"
	case uir.ToolChoiceRequired:
		fcc["mode"] = "ANY"
	case uir.ToolChoiceTool:
		fcc["mode"] = "ANY"
		fcc["allowedFunctionNames"] = []any{cfg.ToolName}
	}
	return map[string]any{"functionCallingConfig": fcc}
}

func userContentToGoogleParts(c uir.UserContent) []any {
	var out []any
	for _, p := range c {
		switch part := p.(type) {
		case uir.TextPart:
			out = append(out, map[string]any{"text": part.Text})
		case uir.ImagePart:
			out = append(out, map[string]any{"inlineData": map[string]any{"mimeType": part.MediaType, "data": part.Data}})
		case uir.FilePart:
			out = append(out, map[string]any{"text": part.Data})
		}
	}
	return out
}

func assistantContentToGoogleParts(c uir.AssistantContent) []any {
	var out []any
	for _, p := range c {
		switch part := p.(type) {
		case uir.ReasoningPart:
			out = append(out, map[string]any{"text": part.Text, "thought": true})
		case uir.TextPart:
			out = append(out, map[string]any{"text": part.Text})
		case uir.ToolCallPart:
			out = append(out, map[string]any{"functionCall": map[string]any{
				"id": part.ToolCallID, "name": part.ToolName, "args": part.Arguments.Map,
			}})
		}
	}
	return out
}

// --- response ---

func (a *GoogleAdapter) ResponseToUniversal(v map[string]any) (*uir.Response, error) {
	resp := &uir.Response{Model: asString(v["modelVersion"])}

	candidates, _ := asSlice(v["candidates"])
	if len(candidates) > 0 {
		cm, _ := asMap(candidates[0])
		content, _ := asMap(cm["content"])
		msgs, err := googleContentToUniversal(mergeRole(content, "model"))
		if err != nil {
			return nil, err
		}
		resp.Messages = append(resp.Messages, msgs...)
		if fr := asString(cm["finishReason"]); fr != "" {
			v := semantic.FinishReasonFromProviderString(fr, capabilities.FormatGoogle)
			resp.FinishReason = &v
		}
	}

	if usage := semantic.UsageExtractFromResponse(v, capabilities.FormatGoogle); usage != nil {
		resp.Usage = usage
	}

	return resp, nil
}

func (a *GoogleAdapter) ResponseFromUniversal(r *uir.Response) (map[string]any, error) {
	out := map[string]any{"modelVersion": r.Model}

	if len(r.Messages) > 0 {
		if am, ok := r.Messages[0].(uir.AssistantMessage); ok {
			candidate := map[string]any{
				"content": map[string]any{"role": "model", "parts": assistantContentToGoogleParts(am.Content)},
			}
			if r.FinishReason != nil {
				candidate["finishReason"] = semantic.FinishReasonToProviderString(*r.FinishReason, capabilities.FormatGoogle)
			}
			out["candidates"] = []any{candidate}
		}
	}
	if r.Usage != nil {
		out["usageMetadata"] = semantic.UsageToProviderValue(r.Usage, capabilities.FormatGoogle)
	}

	return out, nil
}

// --- stream ---

func (a *GoogleAdapter) StreamToUniversal(v map[string]any) (*uir.StreamChunk, error) {
	chunk := &uir.StreamChunk{}

	candidates, _ := asSlice(v["candidates"])
	if len(candidates) > 0 {
		cm, _ := asMap(candidates[0])
		content, _ := asMap(cm["content"])
		parts, _ := asSlice(content["parts"])
		role := uir.RoleAssistant
		chunk.Role = &role
		for _, p := range parts {
			pm, ok := asMap(p)
			if !ok {
				continue
			}
			switch {
			case asBoolOr(pm["thought"]):
				text := asString(pm["text"])
				chunk.DeltaReasoning = &text
			case pm["text"] != nil:
				text := asString(pm["text"])
				chunk.DeltaText = &text
			case pm["functionCall"] != nil:
				fc, _ := asMap(pm["functionCall"])
				raw, _ := json.Marshal(mapOrNil(fc["args"]))
				chunk.DeltaToolCall = &uir.ToolCallDelta{
					ToolCallID:        asString(fc["id"]),
					ToolName:          asString(fc["name"]),
					ArgumentsFragment: string(raw),
				}
			}
		}
		if fr := asString(cm["finishReason"]); fr != "" {
			v := semantic.FinishReasonFromProviderString(fr, capabilities.FormatGoogle)
			chunk.FinishReason = &v
		}
	} else {
		chunk.IsKeepAlive = true
	}

	if usage := semantic.UsageExtractFromResponse(v, capabilities.FormatGoogle); usage != nil {
		chunk.Usage = usage
	}

	return chunk, nil
}

func (a *GoogleAdapter) StreamFromUniversal(c *uir.StreamChunk) (map[string]any, error) {
	var parts []any
	if c.DeltaReasoning != nil {
		parts = append(parts, map[string]any{"text": *c.DeltaReasoning, "thought": true})
	}
	if c.DeltaText != nil {
		parts = append(parts, map[string]any{"text": *c.DeltaText})
	}
	if c.DeltaToolCall != nil {
		var args map[string]any
		_ = json.Unmarshal([]byte(c.DeltaToolCall.ArgumentsFragment), &args)
		parts = append(parts, map[string]any{"functionCall": map[string]any{
			"id": c.DeltaToolCall.ToolCallID, "name": c.DeltaToolCall.ToolName, "args": args,
		}})
	}

	candidate := map[string]any{"content": map[string]any{"role": "model", "parts": parts}}
	if c.FinishReason != nil {
		candidate["finishReason"] = semantic.FinishReasonToProviderString(*c.FinishReason, capabilities.FormatGoogle)
	}
	out := map[string]any{"candidates": []any{candidate}}
	if c.Usage != nil {
		out["usageMetadata"] = semantic.UsageToProviderValue(c.Usage, capabilities.FormatGoogle)
	}
	return out, nil
}
