package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/howard-nolan/llmgateway/internal/capabilities"
	"github.com/howard-nolan/llmgateway/internal/gwerrors"
)

func TestMistralFormat(t *testing.T) {
	a := NewMistralAdapter()
	assert.Equal(t, capabilities.FormatMistral, a.Format())
}

func TestMistralRequestRoundTrip(t *testing.T) {
	a := NewMistralAdapter()

	in := map[string]any{
		"model": "mistral-large-latest",
		"messages": []any{
			map[string]any{"role": "system", "content": "be terse"},
			map[string]any{"role": "user", "content": "say hi"},
		},
		"temperature": 0.3,
	}

	req, err := a.RequestToUniversal(in)
	require.NoError(t, err)
	require.Len(t, req.Messages, 2)

	out, err := a.RequestFromUniversal(req)
	require.NoError(t, err)
	msgs, ok := out["messages"].([]any)
	require.True(t, ok)
	assert.Len(t, msgs, 2)
}

func TestMistralRequestRejectsDeveloperRole(t *testing.T) {
	_, err := mistralMessageToUniversal(map[string]any{"role": "developer", "content": "x"})
	assert.Error(t, err)
}

func TestMistralResponseRoundTrip(t *testing.T) {
	a := NewMistralAdapter()

	in := map[string]any{
		"object": "chat.completion",
		"model":  "mistral-large-latest",
		"choices": []any{
			map[string]any{
				"index":         float64(0),
				"message":       map[string]any{"role": "assistant", "content": "hello"},
				"finish_reason": "stop",
			},
		},
		"usage": map[string]any{"prompt_tokens": float64(4), "completion_tokens": float64(2)},
	}

	resp, err := a.ResponseToUniversal(in)
	require.NoError(t, err)
	require.Len(t, resp.Messages, 1)

	out, err := a.ResponseFromUniversal(resp)
	require.NoError(t, err)
	assert.Equal(t, "chat.completion", out["object"])
}

func TestMistralEmptyUserContentRejected(t *testing.T) {
	_, err := mistralMessageToUniversal(map[string]any{"role": "user", "content": nil})
	require.Error(t, err)
	var te *gwerrors.TransformError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, gwerrors.TransformValidationFailed, te.Kind)
}
