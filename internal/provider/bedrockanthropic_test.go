package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/howard-nolan/llmgateway/internal/capabilities"
)

func TestBedrockAnthropicFormat(t *testing.T) {
	a := NewBedrockAnthropicAdapter(NewAnthropicAdapter())
	assert.Equal(t, capabilities.FormatBedrockAnthropic, a.Format())
}

func TestBedrockAnthropicRequestRoundTrip(t *testing.T) {
	a := NewBedrockAnthropicAdapter(NewAnthropicAdapter())

	in := map[string]any{
		"modelId": "anthropic.claude-3-sonnet",
		"body": map[string]any{
			"anthropic_version": bedrockAnthropicVersion,
			"max_tokens":        float64(256),
			"messages": []any{
				map[string]any{"role": "user", "content": "say hi"},
			},
		},
	}

	req, err := a.RequestToUniversal(in)
	require.NoError(t, err)
	assert.Equal(t, "anthropic.claude-3-sonnet", req.Model)
	require.Len(t, req.Messages, 1)

	out, err := a.RequestFromUniversal(req)
	require.NoError(t, err)
	assert.Equal(t, "anthropic.claude-3-sonnet", out["modelId"])
	body, ok := out["body"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, bedrockAnthropicVersion, body["anthropic_version"])
	_, hasModel := body["model"]
	assert.False(t, hasModel, "inner body should never carry model")
}

func TestBedrockAnthropicResponseRoundTrip(t *testing.T) {
	a := NewBedrockAnthropicAdapter(NewAnthropicAdapter())

	in := map[string]any{
		"type":  "message",
		"model": "anthropic.claude-3-sonnet",
		"content": []any{
			map[string]any{"type": "text", "text": "hello"},
		},
		"stop_reason": "end_turn",
	}

	resp, err := a.ResponseToUniversal(in)
	require.NoError(t, err)
	require.Len(t, resp.Messages, 1)

	out, err := a.ResponseFromUniversal(resp)
	require.NoError(t, err)
	assert.Equal(t, "message", out["type"])
}

func TestBedrockAnthropicEmptyContentRejectedTransitively(t *testing.T) {
	a := NewBedrockAnthropicAdapter(NewAnthropicAdapter())
	in := map[string]any{
		"modelId": "anthropic.claude-3-sonnet",
		"body": map[string]any{
			"max_tokens": float64(256),
			"messages": []any{
				map[string]any{"role": "assistant", "content": []any{map[string]any{"type": "unknown"}}},
			},
		},
	}
	_, err := a.RequestToUniversal(in)
	assert.Error(t, err, "the embedded AnthropicAdapter's zero-part validation should surface through the envelope")
}
