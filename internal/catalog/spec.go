// Package catalog implements the model catalog: a mapping from model name
// to ModelSpec, with exact/longest-prefix resolution and the
// Bedrock-Anthropic override heuristic (spec §4.8).
package catalog

import (
	"strings"

	"github.com/howard-nolan/llmgateway/internal/capabilities"
)

// ModelFlavor is the API flavor/style a model uses.
type ModelFlavor string

const (
	FlavorChat       ModelFlavor = "chat"
	FlavorCompletion ModelFlavor = "completion"
	FlavorEmbedding  ModelFlavor = "embedding"
	FlavorResponses  ModelFlavor = "responses"
)

// ModelSpec describes one catalog entry.
type ModelSpec struct {
	Model                          string                 `json:"model"`
	Format                         capabilities.ProviderFormat `json:"format"`
	Flavor                         ModelFlavor            `json:"flavor"`
	DisplayName                    string                 `json:"displayName,omitempty"`
	Parent                         string                 `json:"parent,omitempty"`
	InputCostPerMilTokens          *float64               `json:"input_cost_per_mil_tokens,omitempty"`
	OutputCostPerMilTokens         *float64               `json:"output_cost_per_mil_tokens,omitempty"`
	InputCacheReadCostPerMilTokens *float64               `json:"input_cache_read_cost_per_mil_tokens,omitempty"`
	Multimodal                     *bool                  `json:"multimodal,omitempty"`
	Reasoning                      *bool                  `json:"reasoning,omitempty"`
	MaxInputTokens                 *int                   `json:"max_input_tokens,omitempty"`
	MaxOutputTokens                *int                   `json:"max_output_tokens,omitempty"`
	SupportsStreaming              bool                   `json:"supports_streaming"`
	Extra                          map[string]any         `json:"extra,omitempty"`
}

// ModelRequiresResponsesAPI implements the family-name heuristic from
// catalog/spec.rs's model_requires_responses_api: o1-pro*, o3-pro*,
// gpt-5-pro*, or gpt-5*-codex*.
func ModelRequiresResponsesAPI(model string) bool {
	lower := strings.ToLower(model)
	if strings.HasPrefix(lower, "o1-pro") || strings.HasPrefix(lower, "o3-pro") || strings.HasPrefix(lower, "gpt-5-pro") {
		return true
	}
	return strings.HasPrefix(lower, "gpt-5") && strings.Contains(lower, "-codex")
}

// RequiresResponsesAPI reports whether this spec's requests must go
// through the OpenAI Responses dialect rather than Chat Completions.
func (s *ModelSpec) RequiresResponsesAPI() bool {
	return s.Flavor == FlavorResponses || ModelRequiresResponsesAPI(s.Model)
}

// IsBedrockAnthropicModel heuristically recognizes Bedrock's Anthropic
// model-id naming convention, e.g.
// "us.anthropic.claude-haiku-4-5-20251001-v1:0". The equivalent Rust
// helper (lingua::is_bedrock_anthropic_model) is referenced by
// catalog/resolver.rs but its body sits outside the retrieved source
// slice; this heuristic — substring "anthropic." plus a ':' (as in a
// Bedrock-style ":<version>" suffix) — is a judgment call rather than a
// verbatim port.
func IsBedrockAnthropicModel(model string) bool {
	return strings.Contains(model, "anthropic.") && strings.Contains(model, ":")
}
