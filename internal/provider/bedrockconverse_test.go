package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/howard-nolan/llmgateway/internal/capabilities"
	"github.com/howard-nolan/llmgateway/internal/gwerrors"
)

func TestBedrockConverseFormat(t *testing.T) {
	a := NewBedrockConverseAdapter()
	assert.Equal(t, capabilities.FormatBedrockConverse, a.Format())
}

func TestBedrockConverseRequestRoundTrip(t *testing.T) {
	a := NewBedrockConverseAdapter()

	in := map[string]any{
		"modelId": "anthropic.claude-3-sonnet",
		"system":  []any{map[string]any{"text": "be terse"}},
		"messages": []any{
			map[string]any{"role": "user", "content": []any{map[string]any{"text": "say hi"}}},
		},
		"inferenceConfig": map[string]any{"maxTokens": float64(256)},
	}

	req, err := a.RequestToUniversal(in)
	require.NoError(t, err)
	require.Len(t, req.Messages, 2, "system message plus user message")
	require.NotNil(t, req.Params.MaxTokens)
	assert.Equal(t, 256, *req.Params.MaxTokens)

	out, err := a.RequestFromUniversal(req)
	require.NoError(t, err)
	assert.Equal(t, "anthropic.claude-3-sonnet", out["modelId"])
}

func TestBedrockConverseResponseRoundTrip(t *testing.T) {
	a := NewBedrockConverseAdapter()

	in := map[string]any{
		"output": map[string]any{
			"message": map[string]any{
				"role":    "assistant",
				"content": []any{map[string]any{"text": "hello"}},
			},
		},
		"stopReason": "end_turn",
		"usage":      map[string]any{"inputTokens": float64(6), "outputTokens": float64(2)},
	}

	resp, err := a.ResponseToUniversal(in)
	require.NoError(t, err)
	require.Len(t, resp.Messages, 1)
	require.NotNil(t, resp.Usage.PromptTokens)
	assert.EqualValues(t, 6, *resp.Usage.PromptTokens)

	out, err := a.ResponseFromUniversal(resp)
	require.NoError(t, err)
	_, ok := out["output"]
	require.True(t, ok)
}

func TestBedrockConverseEmptyAssistantContentRejected(t *testing.T) {
	_, err := converseMessageToUniversal(map[string]any{
		"role":    "assistant",
		"content": []any{map[string]any{"unknownField": true}},
	})
	require.Error(t, err)
	var te *gwerrors.TransformError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, gwerrors.TransformValidationFailed, te.Kind)
}

func TestBedrockConverseResponseEmptyContentRejected(t *testing.T) {
	a := NewBedrockConverseAdapter()
	_, err := a.ResponseToUniversal(map[string]any{
		"output": map[string]any{
			"message": map[string]any{"content": []any{map[string]any{"unknownField": true}}},
		},
	})
	require.Error(t, err)
}
