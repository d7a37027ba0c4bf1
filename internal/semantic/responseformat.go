package semantic

import "github.com/howard-nolan/llmgateway/internal/uir"

// ResponseFormatFromProvider parses a dialect's native response-format
// value into the canonical uir.ResponseFormatConfig (spec §4.3).
func ResponseFormatFromProvider(v map[string]any, isResponsesAPI bool) *uir.ResponseFormatConfig {
	if isResponsesAPI {
		text, _ := v["text"].(map[string]any)
		if text == nil {
			return nil
		}
		format, _ := text["format"].(map[string]any)
		if format == nil {
			return nil
		}
		return responseFormatFromChatShape(format)
	}
	return responseFormatFromChatShape(v)
}

func responseFormatFromChatShape(v map[string]any) *uir.ResponseFormatConfig {
	typ, _ := v["type"].(string)
	switch typ {
	case "json_object":
		return &uir.ResponseFormatConfig{FormatType: uir.ResponseFormatJSONObject}
	case "json_schema":
		js, _ := v["json_schema"].(map[string]any)
		if js == nil {
			js = v // Responses API flattens schema fields at this level
		}
		cfg := &uir.JSONSchemaConfig{}
		cfg.Name, _ = js["name"].(string)
		cfg.Description, _ = js["description"].(string)
		cfg.Schema, _ = js["schema"].(map[string]any)
		if strict, ok := js["strict"].(bool); ok {
			cfg.Strict = &strict
		}
		return &uir.ResponseFormatConfig{FormatType: uir.ResponseFormatJSONSchema, JSONSchema: cfg}
	case "text", "":
		return &uir.ResponseFormatConfig{FormatType: uir.ResponseFormatText}
	default:
		return &uir.ResponseFormatConfig{FormatType: uir.ResponseFormatText}
	}
}

// ResponseFormatFromGoogle parses Google's responseMimeType +
// responseSchema pair.
func ResponseFormatFromGoogle(mimeType string, schema map[string]any) *uir.ResponseFormatConfig {
	switch mimeType {
	case "application/json":
		if schema != nil {
			return &uir.ResponseFormatConfig{
				FormatType: uir.ResponseFormatJSONSchema,
				JSONSchema: &uir.JSONSchemaConfig{Schema: schema},
			}
		}
		return &uir.ResponseFormatConfig{FormatType: uir.ResponseFormatJSONObject}
	default:
		return &uir.ResponseFormatConfig{FormatType: uir.ResponseFormatText}
	}
}

// ResponseFormatToChatShape renders the canonical config as OpenAI Chat's
// {type, json_schema?} object.
func ResponseFormatToChatShape(cfg *uir.ResponseFormatConfig) map[string]any {
	switch cfg.FormatType {
	case uir.ResponseFormatJSONObject:
		return map[string]any{"type": "json_object"}
	case uir.ResponseFormatJSONSchema:
		js := map[string]any{"schema": cfg.JSONSchema.Schema}
		if cfg.JSONSchema.Name != "" {
			js["name"] = cfg.JSONSchema.Name
		}
		if cfg.JSONSchema.Description != "" {
			js["description"] = cfg.JSONSchema.Description
		}
		if cfg.JSONSchema.Strict != nil {
			js["strict"] = *cfg.JSONSchema.Strict
		}
		return map[string]any{"type": "json_schema", "json_schema": js}
	default:
		return map[string]any{"type": "text"}
	}
}

// ResponseFormatToResponsesShape renders the canonical config nested
// under the Responses API's text.format.
func ResponseFormatToResponsesShape(cfg *uir.ResponseFormatConfig) map[string]any {
	return map[string]any{"text": map[string]any{"format": ResponseFormatToChatShape(cfg)}}
}

// ResponseFormatToGoogle renders the canonical config as Google's
// response_mime_type + response_schema pair.
func ResponseFormatToGoogle(cfg *uir.ResponseFormatConfig) (mimeType string, schema map[string]any) {
	switch cfg.FormatType {
	case uir.ResponseFormatJSONObject:
		return "application/json", nil
	case uir.ResponseFormatJSONSchema:
		return "application/json", cfg.JSONSchema.Schema
	default:
		return "text/plain", nil
	}
}

// ResponseFormatAnthropicSystemSuffix builds the system-message suffix
// injected when a JSON-schema response format is requested against
// Anthropic, which has no native response-format field (spec §4.3).
func ResponseFormatAnthropicSystemSuffix(cfg *uir.ResponseFormatConfig) string {
	if cfg == nil || cfg.FormatType != uir.ResponseFormatJSONSchema || cfg.JSONSchema == nil {
		return ""
	}
	return "\n\nRespond only with JSON matching this schema, with no other text."
}
