package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/howard-nolan/llmgateway/internal/capabilities"
	"github.com/howard-nolan/llmgateway/internal/gwerrors"
	"github.com/howard-nolan/llmgateway/internal/uir"
)

func TestAnthropicFormat(t *testing.T) {
	a := NewAnthropicAdapter()
	assert.Equal(t, capabilities.FormatAnthropic, a.Format())
}

func TestAnthropicDetectRequest(t *testing.T) {
	a := NewAnthropicAdapter()
	assert.True(t, a.DetectRequest(map[string]any{
		"model":      "claude-3-opus",
		"max_tokens": float64(256),
		"messages":   []any{map[string]any{"role": "user", "content": "hi"}},
	}))
	assert.False(t, a.DetectRequest(map[string]any{"model": "gpt-4o", "messages": []any{}}))
}

func TestAnthropicRequestRoundTrip(t *testing.T) {
	a := NewAnthropicAdapter()

	in := map[string]any{
		"model":      "claude-3-opus",
		"max_tokens": float64(512),
		"system":     "be terse",
		"messages": []any{
			map[string]any{"role": "user", "content": "say hi"},
		},
	}

	req, err := a.RequestToUniversal(in)
	require.NoError(t, err)
	assert.Equal(t, "claude-3-opus", req.Model)
	require.Len(t, req.Messages, 2, "system message plus user message")
	require.NotNil(t, req.Params.MaxTokens)
	assert.Equal(t, 512, *req.Params.MaxTokens)

	out, err := a.RequestFromUniversal(req)
	require.NoError(t, err)
	assert.Equal(t, "claude-3-opus", out["model"])
	assert.Equal(t, "be terse", out["system"])
}

func TestAnthropicRequestDefaultsMaxTokens(t *testing.T) {
	a := NewAnthropicAdapter()
	req := &uir.Request{Model: "claude-3-opus", Messages: []uir.Message{
		uir.UserMessage{Content: uir.UserContent{uir.TextPart{Text: "hi"}}},
	}}
	out, err := a.RequestFromUniversal(req)
	require.NoError(t, err)
	assert.Equal(t, anthropicDefaultMaxTokens, out["max_tokens"])
}

func TestAnthropicResponseRoundTrip(t *testing.T) {
	a := NewAnthropicAdapter()

	in := map[string]any{
		"id":    "msg_1",
		"type":  "message",
		"model": "claude-3-opus",
		"content": []any{
			map[string]any{"type": "text", "text": "hello there"},
		},
		"stop_reason": "end_turn",
		"usage":       map[string]any{"input_tokens": float64(10), "output_tokens": float64(5)},
	}

	resp, err := a.ResponseToUniversal(in)
	require.NoError(t, err)
	require.Len(t, resp.Messages, 1)
	require.NotNil(t, resp.FinishReason)
	assert.Equal(t, uir.FinishStop, resp.FinishReason.Kind)
	require.NotNil(t, resp.Usage.PromptTokens)
	assert.EqualValues(t, 10, *resp.Usage.PromptTokens)

	out, err := a.ResponseFromUniversal(resp)
	require.NoError(t, err)
	assert.Equal(t, "message", out["type"])
}

func TestAnthropicEmptyAssistantContentRejected(t *testing.T) {
	_, err := anthropicMessageToUniversal(map[string]any{
		"role":    "assistant",
		"content": []any{map[string]any{"type": "unknown_block"}},
	})
	require.Error(t, err)
	var te *gwerrors.TransformError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, gwerrors.TransformValidationFailed, te.Kind)
}

func TestAnthropicStreamDetect(t *testing.T) {
	a := NewAnthropicAdapter()
	assert.True(t, a.DetectStreamResponse(map[string]any{"type": "content_block_delta"}))
}
