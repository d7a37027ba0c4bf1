package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/howard-nolan/llmgateway/internal/uir"
)

func TestResponseFormatFromProviderChatShape(t *testing.T) {
	cfg := ResponseFormatFromProvider(map[string]any{"type": "json_object"}, false)
	require.NotNil(t, cfg)
	assert.Equal(t, uir.ResponseFormatJSONObject, cfg.FormatType)

	cfg = ResponseFormatFromProvider(map[string]any{
		"type": "json_schema",
		"json_schema": map[string]any{
			"name":   "weather",
			"strict": true,
			"schema": map[string]any{"type": "object"},
		},
	}, false)
	require.NotNil(t, cfg)
	require.NotNil(t, cfg.JSONSchema)
	assert.Equal(t, uir.ResponseFormatJSONSchema, cfg.FormatType)
	assert.Equal(t, "weather", cfg.JSONSchema.Name)
	require.NotNil(t, cfg.JSONSchema.Strict)
	assert.True(t, *cfg.JSONSchema.Strict)

	cfg = ResponseFormatFromProvider(map[string]any{"type": "text"}, false)
	require.NotNil(t, cfg)
	assert.Equal(t, uir.ResponseFormatText, cfg.FormatType)
}

func TestResponseFormatFromProviderResponsesAPIShape(t *testing.T) {
	v := map[string]any{
		"text": map[string]any{
			"format": map[string]any{"type": "json_object"},
		},
	}
	cfg := ResponseFormatFromProvider(v, true)
	require.NotNil(t, cfg)
	assert.Equal(t, uir.ResponseFormatJSONObject, cfg.FormatType)

	assert.Nil(t, ResponseFormatFromProvider(map[string]any{}, true), "no text.format should parse to nil")
}

func TestResponseFormatFromGoogle(t *testing.T) {
	cfg := ResponseFormatFromGoogle("application/json", map[string]any{"type": "object"})
	require.NotNil(t, cfg)
	assert.Equal(t, uir.ResponseFormatJSONSchema, cfg.FormatType)

	cfg = ResponseFormatFromGoogle("application/json", nil)
	require.NotNil(t, cfg)
	assert.Equal(t, uir.ResponseFormatJSONObject, cfg.FormatType)

	cfg = ResponseFormatFromGoogle("text/plain", nil)
	require.NotNil(t, cfg)
	assert.Equal(t, uir.ResponseFormatText, cfg.FormatType)
}

func TestResponseFormatToChatShapeRoundTrip(t *testing.T) {
	cfg := &uir.ResponseFormatConfig{
		FormatType: uir.ResponseFormatJSONSchema,
		JSONSchema: &uir.JSONSchemaConfig{Name: "weather", Schema: map[string]any{"type": "object"}},
	}
	out := ResponseFormatToChatShape(cfg)
	assert.Equal(t, "json_schema", out["type"])

	back := responseFormatFromChatShape(out)
	require.NotNil(t, back.JSONSchema)
	assert.Equal(t, "weather", back.JSONSchema.Name)
}

func TestResponseFormatToResponsesShape(t *testing.T) {
	cfg := &uir.ResponseFormatConfig{FormatType: uir.ResponseFormatJSONObject}
	out := ResponseFormatToResponsesShape(cfg)
	text, ok := out["text"].(map[string]any)
	require.True(t, ok)
	format, ok := text["format"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "json_object", format["type"])
}

func TestResponseFormatToGoogle(t *testing.T) {
	mime, schema := ResponseFormatToGoogle(&uir.ResponseFormatConfig{FormatType: uir.ResponseFormatJSONSchema, JSONSchema: &uir.JSONSchemaConfig{Schema: map[string]any{"a": 1}}})
	assert.Equal(t, "application/json", mime)
	assert.Equal(t, map[string]any{"a": 1}, schema)

	mime, schema = ResponseFormatToGoogle(&uir.ResponseFormatConfig{FormatType: uir.ResponseFormatText})
	assert.Equal(t, "text/plain", mime)
	assert.Nil(t, schema)
}

func TestResponseFormatAnthropicSystemSuffix(t *testing.T) {
	assert.Empty(t, ResponseFormatAnthropicSystemSuffix(nil))
	assert.Empty(t, ResponseFormatAnthropicSystemSuffix(&uir.ResponseFormatConfig{FormatType: uir.ResponseFormatText}))

	suffix := ResponseFormatAnthropicSystemSuffix(&uir.ResponseFormatConfig{
		FormatType: uir.ResponseFormatJSONSchema,
		JSONSchema: &uir.JSONSchemaConfig{Schema: map[string]any{}},
	})
	assert.Contains(t, suffix, "JSON")
}
