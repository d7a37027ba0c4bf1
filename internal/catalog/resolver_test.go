package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/howard-nolan/llmgateway/internal/capabilities"
)

func chatSpec(format capabilities.ProviderFormat) ModelSpec {
	return ModelSpec{Format: format, Flavor: FlavorChat, SupportsStreaming: true}
}

func TestResolverDefaultAlias(t *testing.T) {
	c := Empty()
	c.Insert("model", chatSpec(capabilities.FormatOpenAIChat))
	r := NewResolver(c)

	_, format, alias, err := r.Resolve("model")
	require.NoError(t, err)
	assert.Equal(t, capabilities.FormatOpenAIChat, format)
	assert.Equal(t, "openai", alias)
}

func TestResolverCustomAlias(t *testing.T) {
	c := Empty()
	c.Insert("model", chatSpec(capabilities.FormatAnthropic))
	r := NewResolver(c).WithAliases(map[string]string{"model": "custom"})

	_, format, alias, err := r.Resolve("model")
	require.NoError(t, err)
	assert.Equal(t, capabilities.FormatAnthropic, format)
	assert.Equal(t, "custom", alias)
}

func TestResolverUnknownModel(t *testing.T) {
	r := NewResolver(Empty())
	_, _, _, err := r.Resolve("missing")
	require.ErrorIs(t, err, ErrUnknownModel)
}

func TestResolverBedrockAnthropicRoutesToBedrock(t *testing.T) {
	model := "us.anthropic.claude-haiku-4-5-20251001-v1:0"
	c := Empty()
	c.Insert(model, chatSpec(capabilities.FormatAnthropic))
	r := NewResolver(c)

	_, format, alias, err := r.Resolve(model)
	require.NoError(t, err)
	assert.Equal(t, capabilities.FormatBedrockAnthropic, format)
	assert.Equal(t, "bedrock", alias)
}

func TestResolverNonBedrockAnthropicStaysAnthropic(t *testing.T) {
	model := "claude-sonnet-4-20250514"
	c := Empty()
	c.Insert(model, chatSpec(capabilities.FormatAnthropic))
	r := NewResolver(c)

	_, format, alias, err := r.Resolve(model)
	require.NoError(t, err)
	assert.Equal(t, capabilities.FormatAnthropic, format)
	assert.Equal(t, "anthropic", alias)
}

func TestResolveFormatWithPrefixMatchesVersionedModel(t *testing.T) {
	c := Empty()
	c.Insert("gpt-4o", chatSpec(capabilities.FormatOpenAIChat))

	format, ok := c.ResolveFormatWithPrefix("gpt-4o-2024-08-06")
	require.True(t, ok)
	assert.Equal(t, capabilities.FormatOpenAIChat, format)

	_, ok = c.ResolveFormatWithPrefix("gpt-4ox")
	assert.False(t, ok, "prefix must be followed by '-' or '/'")
}

func TestModelRequiresResponsesAPI(t *testing.T) {
	required := []string{"o1-pro", "o3-pro", "gpt-5-pro", "gpt-5-pro-2025-10-06", "gpt-5-codex", "gpt-5.1-codex", "gpt-5.1-codex-mini"}
	for _, m := range required {
		assert.Truef(t, ModelRequiresResponsesAPI(m), "expected Responses-required model: %s", m)
	}
	notRequired := []string{"gpt-5-mini", "gpt-5", "gpt-4o", "claude-sonnet-4"}
	for _, m := range notRequired {
		assert.Falsef(t, ModelRequiresResponsesAPI(m), "expected non-Responses model: %s", m)
	}
}

func TestModelSpecRequiresResponsesAPIAllowsFlavorOverride(t *testing.T) {
	spec := ModelSpec{Model: "custom-model", Format: capabilities.FormatOpenAIChat, Flavor: FlavorResponses, SupportsStreaming: true}
	assert.True(t, spec.RequiresResponsesAPI())
}

func TestDefaultCatalogLoads(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	assert.Greater(t, c.Len(), 0)
	spec, ok := c.Get("gpt-4o")
	require.True(t, ok)
	assert.Equal(t, capabilities.FormatOpenAIChat, spec.Format)
}
