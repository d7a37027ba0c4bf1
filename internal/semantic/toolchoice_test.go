package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/howard-nolan/llmgateway/internal/uir"
)

func TestToolChoiceFromOpenAIChat(t *testing.T) {
	assert.Equal(t, &uir.ToolChoiceConfig{Mode: uir.ToolChoiceAuto}, ToolChoiceFromOpenAIChat("auto"))
	assert.Equal(t, &uir.ToolChoiceConfig{Mode: uir.ToolChoiceNone}, ToolChoiceFromOpenAIChat("none"))
	assert.Equal(t, &uir.ToolChoiceConfig{Mode: uir.ToolChoiceRequired}, ToolChoiceFromOpenAIChat("required"))

	cfg := ToolChoiceFromOpenAIChat(map[string]any{
		"type":     "function",
		"function": map[string]any{"name": "get_weather"},
	})
	require.NotNil(t, cfg)
	assert.Equal(t, uir.ToolChoiceTool, cfg.Mode)
	assert.Equal(t, "get_weather", cfg.ToolName)

	assert.Nil(t, ToolChoiceFromOpenAIChat("bogus"))
}

func TestToolChoiceFromOpenAIResponses(t *testing.T) {
	assert.Equal(t, &uir.ToolChoiceConfig{Mode: uir.ToolChoiceAuto}, ToolChoiceFromOpenAIResponses("auto"))

	cfg := ToolChoiceFromOpenAIResponses(map[string]any{"type": "function", "name": "get_weather"})
	require.NotNil(t, cfg)
	assert.Equal(t, uir.ToolChoiceTool, cfg.Mode)
	assert.Equal(t, "get_weather", cfg.ToolName)

	assert.Nil(t, ToolChoiceFromOpenAIResponses("bogus"))
}

func TestToolChoiceFromAnthropic(t *testing.T) {
	cfg := ToolChoiceFromAnthropic(map[string]any{"type": "tool", "name": "get_weather", "disable_parallel_tool_use": true})
	require.NotNil(t, cfg)
	assert.Equal(t, uir.ToolChoiceTool, cfg.Mode)
	assert.Equal(t, "get_weather", cfg.ToolName)
	require.NotNil(t, cfg.DisableParallel)
	assert.True(t, *cfg.DisableParallel)

	assert.Equal(t, &uir.ToolChoiceConfig{Mode: uir.ToolChoiceRequired}, ToolChoiceFromAnthropic(map[string]any{"type": "any"}))
	assert.Nil(t, ToolChoiceFromAnthropic(map[string]any{"type": "bogus"}))
}

func TestToolChoiceToOpenAIChatRoundTrip(t *testing.T) {
	cfg := &uir.ToolChoiceConfig{Mode: uir.ToolChoiceTool, ToolName: "get_weather"}
	out := ToolChoiceToOpenAIChat(cfg)
	back := ToolChoiceFromOpenAIChat(out)
	assert.Equal(t, cfg, back)

	assert.Equal(t, "auto", ToolChoiceToOpenAIChat(&uir.ToolChoiceConfig{Mode: uir.ToolChoiceAuto}))
	assert.Equal(t, "none", ToolChoiceToOpenAIChat(&uir.ToolChoiceConfig{Mode: uir.ToolChoiceNone}))
	assert.Equal(t, "required", ToolChoiceToOpenAIChat(&uir.ToolChoiceConfig{Mode: uir.ToolChoiceRequired}))
}

func TestToolChoiceToOpenAIResponses(t *testing.T) {
	cfg := &uir.ToolChoiceConfig{Mode: uir.ToolChoiceTool, ToolName: "get_weather"}
	out, ok := ToolChoiceToOpenAIResponses(cfg).(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "get_weather", out["name"])

	assert.Equal(t, "auto", ToolChoiceToOpenAIResponses(&uir.ToolChoiceConfig{Mode: uir.ToolChoiceAuto}))
}

func TestToolChoiceToAnthropicParallelOverride(t *testing.T) {
	cfg := &uir.ToolChoiceConfig{Mode: uir.ToolChoiceAuto}

	out := ToolChoiceToAnthropic(cfg, nil)
	assert.Equal(t, "auto", out["type"])
	assert.Nil(t, out["disable_parallel_tool_use"])

	falseVal := false
	out = ToolChoiceToAnthropic(cfg, &falseVal)
	assert.Equal(t, true, out["disable_parallel_tool_use"])

	trueVal := true
	out = ToolChoiceToAnthropic(cfg, &trueVal)
	assert.Nil(t, out["disable_parallel_tool_use"])
}

func TestToolChoiceToAnthropicToolMode(t *testing.T) {
	cfg := &uir.ToolChoiceConfig{Mode: uir.ToolChoiceTool, ToolName: "get_weather"}
	out := ToolChoiceToAnthropic(cfg, nil)
	assert.Equal(t, "tool", out["type"])
	assert.Equal(t, "get_weather", out["name"])
}
