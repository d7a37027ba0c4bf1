package semantic

import (
	"encoding/json"

	"github.com/howard-nolan/llmgateway/internal/capabilities"
	"github.com/howard-nolan/llmgateway/internal/uir"
)

// UsageFromProviderValue reads a provider's raw usage object into the
// canonical uir.Usage, using the exact per-provider field-name table from
// response.rs's UniversalUsage::from_provider_value.
func UsageFromProviderValue(usage map[string]any, provider capabilities.ProviderFormat) *uir.Usage {
	switch provider {
	case capabilities.FormatOpenAIChat, capabilities.FormatMistral:
		return &uir.Usage{
			PromptTokens:              asInt64(usage["prompt_tokens"]),
			CompletionTokens:          asInt64(usage["completion_tokens"]),
			PromptCachedTokens:        nestedInt64(usage, "prompt_tokens_details", "cached_tokens"),
			CompletionReasoningTokens: nestedInt64(usage, "completion_tokens_details", "reasoning_tokens"),
		}
	case capabilities.FormatOpenAIResponses:
		return &uir.Usage{
			PromptTokens:              asInt64(usage["input_tokens"]),
			CompletionTokens:          asInt64(usage["output_tokens"]),
			PromptCachedTokens:        nestedInt64(usage, "input_tokens_details", "cached_tokens"),
			CompletionReasoningTokens: nestedInt64(usage, "output_tokens_details", "reasoning_tokens"),
		}
	case capabilities.FormatAnthropic, capabilities.FormatBedrockAnthropic:
		return &uir.Usage{
			PromptTokens:              asInt64(usage["input_tokens"]),
			CompletionTokens:          asInt64(usage["output_tokens"]),
			PromptCachedTokens:        asInt64(usage["cache_read_input_tokens"]),
			PromptCacheCreationTokens: asInt64(usage["cache_creation_input_tokens"]),
		}
	case capabilities.FormatBedrockConverse:
		return &uir.Usage{
			PromptTokens:              asInt64(usage["inputTokens"]),
			CompletionTokens:          asInt64(usage["outputTokens"]),
			PromptCachedTokens:        asInt64(usage["cacheReadInputTokens"]),
			PromptCacheCreationTokens: asInt64(usage["cacheWriteInputTokens"]),
		}
	case capabilities.FormatGoogle:
		return &uir.Usage{
			PromptTokens:              asInt64(usage["promptTokenCount"]),
			CompletionTokens:          asInt64(usage["candidatesTokenCount"]),
			PromptCachedTokens:        asInt64(usage["cachedContentTokenCount"]),
			CompletionReasoningTokens: asInt64(usage["thoughtsTokenCount"]),
		}
	default:
		return &uir.Usage{
			PromptTokens:     asInt64(usage["prompt_tokens"]),
			CompletionTokens: asInt64(usage["completion_tokens"]),
		}
	}
}

// UsageExtractFromResponse finds and parses the usage object embedded in a
// full response payload — most dialects key it "usage"; Google keys it
// "usageMetadata".
func UsageExtractFromResponse(payload map[string]any, provider capabilities.ProviderFormat) *uir.Usage {
	key := "usage"
	if provider == capabilities.FormatGoogle {
		key = "usageMetadata"
	}
	raw, ok := payload[key].(map[string]any)
	if !ok {
		return nil
	}
	return UsageFromProviderValue(raw, provider)
}

// UsageToProviderValue renders the canonical usage back to a dialect's
// native field names, mirroring to_provider_value.
func UsageToProviderValue(u *uir.Usage, provider capabilities.ProviderFormat) map[string]any {
	prompt := int64ValOr(u.PromptTokens, 0)
	completion := int64ValOr(u.CompletionTokens, 0)

	switch provider {
	case capabilities.FormatOpenAIChat, capabilities.FormatMistral:
		m := map[string]any{
			"prompt_tokens":     prompt,
			"completion_tokens": completion,
			"total_tokens":      prompt + completion,
		}
		if u.PromptCachedTokens != nil {
			m["prompt_tokens_details"] = map[string]any{"cached_tokens": *u.PromptCachedTokens}
		}
		if u.CompletionReasoningTokens != nil {
			m["completion_tokens_details"] = map[string]any{"reasoning_tokens": *u.CompletionReasoningTokens}
		}
		return m
	case capabilities.FormatOpenAIResponses:
		m := map[string]any{
			"input_tokens":  prompt,
			"output_tokens": completion,
			"total_tokens":  prompt + completion,
		}
		if u.PromptCachedTokens != nil {
			m["input_tokens_details"] = map[string]any{"cached_tokens": *u.PromptCachedTokens}
		}
		if u.CompletionReasoningTokens != nil {
			m["output_tokens_details"] = map[string]any{"reasoning_tokens": *u.CompletionReasoningTokens}
		}
		return m
	case capabilities.FormatAnthropic, capabilities.FormatBedrockAnthropic:
		m := map[string]any{}
		if u.PromptTokens != nil {
			m["input_tokens"] = *u.PromptTokens
		}
		if u.CompletionTokens != nil {
			m["output_tokens"] = *u.CompletionTokens
		}
		if u.PromptCacheCreationTokens != nil {
			m["cache_creation_input_tokens"] = *u.PromptCacheCreationTokens
		}
		if u.PromptCachedTokens != nil {
			m["cache_read_input_tokens"] = *u.PromptCachedTokens
		}
		return m
	case capabilities.FormatBedrockConverse:
		return map[string]any{"inputTokens": prompt, "outputTokens": completion}
	case capabilities.FormatGoogle:
		return map[string]any{
			"promptTokenCount":     prompt,
			"candidatesTokenCount": completion,
			"totalTokenCount":      prompt + completion,
		}
	default:
		return map[string]any{"prompt_tokens": prompt, "completion_tokens": completion}
	}
}

func asInt64(v any) *int64 {
	switch n := v.(type) {
	case float64:
		i := int64(n)
		return &i
	case int64:
		return &n
	case int:
		i := int64(n)
		return &i
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return nil
		}
		return &i
	default:
		return nil
	}
}

func nestedInt64(m map[string]any, outer, inner string) *int64 {
	sub, ok := m[outer].(map[string]any)
	if !ok {
		return nil
	}
	return asInt64(sub[inner])
}

func int64ValOr(p *int64, def int64) int64 {
	if p == nil {
		return def
	}
	return *p
}
