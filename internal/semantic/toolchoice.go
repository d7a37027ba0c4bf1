package semantic

import "github.com/howard-nolan/llmgateway/internal/uir"

// ToolChoiceFromOpenAIChat parses OpenAI Chat's tool_choice value, which
// is either the bare string "auto"|"none"|"required" or
// {type:"function", function:{name}}.
func ToolChoiceFromOpenAIChat(v any) *uir.ToolChoiceConfig {
	switch t := v.(type) {
	case string:
		switch t {
		case "auto":
			return &uir.ToolChoiceConfig{Mode: uir.ToolChoiceAuto}
		case "none":
			return &uir.ToolChoiceConfig{Mode: uir.ToolChoiceNone}
		case "required":
			return &uir.ToolChoiceConfig{Mode: uir.ToolChoiceRequired}
		}
	case map[string]any:
		if fn, ok := t["function"].(map[string]any); ok {
			name, _ := fn["name"].(string)
			return &uir.ToolChoiceConfig{Mode: uir.ToolChoiceTool, ToolName: name}
		}
	}
	return nil
}

// ToolChoiceFromOpenAIResponses parses the Responses API's tool_choice,
// "auto" or {type:"function", name}.
func ToolChoiceFromOpenAIResponses(v any) *uir.ToolChoiceConfig {
	switch t := v.(type) {
	case string:
		if t == "auto" {
			return &uir.ToolChoiceConfig{Mode: uir.ToolChoiceAuto}
		}
	case map[string]any:
		if typ, _ := t["type"].(string); typ == "function" {
			name, _ := t["name"].(string)
			return &uir.ToolChoiceConfig{Mode: uir.ToolChoiceTool, ToolName: name}
		}
	}
	return nil
}

// ToolChoiceFromAnthropic parses Anthropic's
// {type:"auto"|"any"|"none"|"tool", name?, disable_parallel_tool_use?}.
func ToolChoiceFromAnthropic(v map[string]any) *uir.ToolChoiceConfig {
	typ, _ := v["type"].(string)
	cfg := &uir.ToolChoiceConfig{}
	switch typ {
	case "auto":
		cfg.Mode = uir.ToolChoiceAuto
	case "any":
		cfg.Mode = uir.ToolChoiceRequired
	case "none":
		cfg.Mode = uir.ToolChoiceNone
	case "tool":
		cfg.Mode = uir.ToolChoiceTool
		cfg.ToolName, _ = v["name"].(string)
	default:
		return nil
	}
	if dp, ok := v["disable_parallel_tool_use"].(bool); ok {
		cfg.DisableParallel = &dp
	}
	return cfg
}

// ToolChoiceToOpenAIChat renders the canonical config as OpenAI Chat's
// tool_choice value.
func ToolChoiceToOpenAIChat(cfg *uir.ToolChoiceConfig) any {
	switch cfg.Mode {
	case uir.ToolChoiceAuto:
		return "auto"
	case uir.ToolChoiceNone:
		return "none"
	case uir.ToolChoiceRequired:
		return "required"
	case uir.ToolChoiceTool:
		return map[string]any{"type": "function", "function": map[string]any{"name": cfg.ToolName}}
	default:
		return "auto"
	}
}

// ToolChoiceToOpenAIResponses renders the canonical config as the
// Responses API's tool_choice value.
func ToolChoiceToOpenAIResponses(cfg *uir.ToolChoiceConfig) any {
	if cfg.Mode == uir.ToolChoiceTool {
		return map[string]any{"type": "function", "name": cfg.ToolName}
	}
	return "auto"
}

// ToolChoiceToAnthropic renders the canonical config as Anthropic's
// tool_choice object. parallelOverride, when non-nil, overrides
// cfg.DisableParallel (spec.md's transform.rs example:
// "parallel_tool_calls: Some(false) disables parallel calls; None uses
// config.disable_parallel").
func ToolChoiceToAnthropic(cfg *uir.ToolChoiceConfig, parallelOverride *bool) map[string]any {
	m := map[string]any{}
	switch cfg.Mode {
	case uir.ToolChoiceAuto:
		m["type"] = "auto"
	case uir.ToolChoiceNone:
		m["type"] = "none"
	case uir.ToolChoiceRequired:
		m["type"] = "any"
	case uir.ToolChoiceTool:
		m["type"] = "tool"
		m["name"] = cfg.ToolName
	default:
		m["type"] = "auto"
	}
	disable := cfg.DisableParallel
	if parallelOverride != nil {
		v := !*parallelOverride
		disable = &v
	}
	if disable != nil && *disable {
		m["disable_parallel_tool_use"] = true
	}
	return m
}
