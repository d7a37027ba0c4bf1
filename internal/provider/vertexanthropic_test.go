package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/howard-nolan/llmgateway/internal/capabilities"
)

func TestVertexAnthropicFormat(t *testing.T) {
	a := NewVertexAnthropicAdapter(NewAnthropicAdapter())
	assert.Equal(t, capabilities.FormatVertexAnthropic, a.Format())
}

func TestVertexAnthropicRequestRoundTrip(t *testing.T) {
	a := NewVertexAnthropicAdapter(NewAnthropicAdapter())

	in := map[string]any{
		"anthropic_version": vertexAnthropicVersion,
		"max_tokens":        float64(256),
		"messages": []any{
			map[string]any{"role": "user", "content": "say hi"},
		},
	}

	req, err := a.RequestToUniversal(in)
	require.NoError(t, err)
	require.Len(t, req.Messages, 1)

	out, err := a.RequestFromUniversal(req)
	require.NoError(t, err)
	assert.Equal(t, vertexAnthropicVersion, out["anthropic_version"])
	_, hasModel := out["model"]
	assert.False(t, hasModel, "Vertex's flat envelope drops model: URL path selects it")
	_, hasStream := out["stream"]
	assert.False(t, hasStream, "Vertex selects streaming by endpoint, not a body field")
}

func TestVertexAnthropicResponseRoundTrip(t *testing.T) {
	a := NewVertexAnthropicAdapter(NewAnthropicAdapter())

	in := map[string]any{
		"type": "message",
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
