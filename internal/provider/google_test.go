package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/howard-nolan/llmgateway/internal/capabilities"
	"github.com/howard-nolan/llmgateway/internal/gwerrors"
)

func TestGoogleFormat(t *testing.T) {
	a := NewGoogleAdapter()
	assert.Equal(t, capabilities.FormatGoogle, a.Format())
}

func TestGoogleRequestRoundTrip(t *testing.T) {
	a := NewGoogleAdapter()

	in := map[string]any{
		"model": "gemini-1.5-pro",
		"systemInstruction": map[string]any{
			"parts": []any{map[string]any{"text": "be terse"}},
		},
		"contents": []any{
			map[string]any{"role": "user", "parts": []any{map[string]any{"text": "say hi"}}},
		},
		"generationConfig": map[string]any{"maxOutputTokens": float64(256)},
	}

	req, err := a.RequestToUniversal(in)
	require.NoError(t, err)
	require.Len(t, req.Messages, 2, "system message plus user message")

	out, err := a.RequestFromUniversal(req)
	require.NoError(t, err)
	contents, ok := out["contents"].([]any)
	require.True(t, ok)
	assert.Len(t, contents, 1)
}

func TestGoogleResponseRoundTrip(t *testing.T) {
	a := NewGoogleAdapter()

	in := map[string]any{
		"modelVersion": "gemini-1.5-pro",
		"candidates": []any{
			map[string]any{
				"content":      map[string]any{"role": "model", "parts": []any{map[string]any{"text": "hello"}}},
				"finishReason": "STOP",
			},
		},
		"usageMetadata": map[string]any{"promptTokenCount": float64(8), "candidatesTokenCount": float64(3)},
	}

	resp, err := a.ResponseToUniversal(in)
	require.NoError(t, err)
	require.Len(t, resp.Messages, 1)
	require.NotNil(t, resp.FinishReason)
	require.NotNil(t, resp.Usage.PromptTokens)
	assert.EqualValues(t, 8, *resp.Usage.PromptTokens)

	out, err := a.ResponseFromUniversal(resp)
	require.NoError(t, err)
	_, ok := out["candidates"].([]any)
	require.True(t, ok)
}

func TestGoogleEmptyAssistantContentRejected(t *testing.T) {
	_, err := googleContentToUniversal(map[string]any{
		"role":  "model",
		"parts": []any{map[string]any{"unknownField": true}},
	})
	require.Error(t, err)
	var te *gwerrors.TransformError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, gwerrors.TransformValidationFailed, te.Kind)
}

func TestGoogleDetectStreamResponse(t *testing.T) {
	a := NewGoogleAdapter()
	assert.True(t, a.DetectStreamResponse(map[string]any{"usageMetadata": map[string]any{"totalTokenCount": float64(1)}}))
}
