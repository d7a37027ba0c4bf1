// Package semantic implements the C2 bidirectional converters for
// parameters that do not map 1:1 across dialects: reasoning effort <->
// budget tokens, response format, tool choice, finish reason, and usage
// counters (spec §4.3).
package semantic

import (
	"strings"

	"github.com/howard-nolan/llmgateway/internal/capabilities"
	"github.com/howard-nolan/llmgateway/internal/uir"
)

// FinishReasonFromProviderString parses a provider-specific finish/stop
// reason string into the canonical uir.FinishReason, using the exact
// per-provider table from response.rs's from_provider_string.
func FinishReasonFromProviderString(s string, provider capabilities.ProviderFormat) uir.FinishReason {
	isAnthropicLike := provider == capabilities.FormatAnthropic ||
		provider == capabilities.FormatBedrockAnthropic ||
		provider == capabilities.FormatBedrockConverse

	switch {
	case (s == "end_turn" || s == "stop_sequence") && isAnthropicLike:
		return uir.FinishReason{Kind: uir.FinishStop}
	case s == "STOP" && provider == capabilities.FormatGoogle:
		return uir.FinishReason{Kind: uir.FinishStop}
	case s == "completed" && provider == capabilities.FormatOpenAIResponses:
		return uir.FinishReason{Kind: uir.FinishStop}
	case s == "stop":
		return uir.FinishReason{Kind: uir.FinishStop}

	case s == "max_tokens" && isAnthropicLike:
		return uir.FinishReason{Kind: uir.FinishLength}
	case s == "MAX_TOKENS" && provider == capabilities.FormatGoogle:
		return uir.FinishReason{Kind: uir.FinishLength}
	case s == "incomplete" && provider == capabilities.FormatOpenAIResponses:
		return uir.FinishReason{Kind: uir.FinishLength}
	case s == "length":
		return uir.FinishReason{Kind: uir.FinishLength}

	case s == "tool_use" && isAnthropicLike:
		return uir.FinishReason{Kind: uir.FinishToolCalls}
	case s == "TOOL_CALLS" && provider == capabilities.FormatGoogle:
		return uir.FinishReason{Kind: uir.FinishToolCalls}
	case s == "tool_calls":
		return uir.FinishReason{Kind: uir.FinishToolCalls}

	case s == "content_filtered" && provider == capabilities.FormatBedrockConverse:
		return uir.FinishReason{Kind: uir.FinishContentFilter}
	case (s == "SAFETY" || s == "RECITATION" || s == "OTHER") && provider == capabilities.FormatGoogle:
		return uir.FinishReason{Kind: uir.FinishContentFilter}
	case s == "content_filter":
		return uir.FinishReason{Kind: uir.FinishContentFilter}

	default:
		return uir.FinishReason{Kind: uir.FinishReasonOther, Other: s}
	}
}

// FinishReasonToProviderString is the inverse of
// FinishReasonFromProviderString: it renders the canonical reason as the
// string a given dialect expects.
func FinishReasonToProviderString(f uir.FinishReason, provider capabilities.ProviderFormat) string {
	isAnthropicLike := provider == capabilities.FormatAnthropic ||
		provider == capabilities.FormatBedrockAnthropic ||
		provider == capabilities.FormatBedrockConverse

	switch f.Kind {
	case uir.FinishStop:
		switch {
		case isAnthropicLike:
			return "end_turn"
		case provider == capabilities.FormatGoogle:
			return "STOP"
		case provider == capabilities.FormatOpenAIResponses:
			return "completed"
		default:
			return "stop"
		}
	case uir.FinishLength:
		switch {
		case provider == capabilities.FormatOpenAIResponses:
			return "incomplete"
		case provider == capabilities.FormatGoogle:
			return "MAX_TOKENS"
		case isAnthropicLike:
			return "max_tokens"
		default:
			return "length"
		}
	case uir.FinishToolCalls:
		switch {
		case isAnthropicLike:
			return "tool_use"
		case provider == capabilities.FormatGoogle:
			return "TOOL_CALLS"
		case provider == capabilities.FormatOpenAIResponses:
			return "completed"
		default:
			return "tool_calls"
		}
	case uir.FinishContentFilter:
		switch {
		case provider == capabilities.FormatBedrockConverse:
			return "content_filtered"
		case provider == capabilities.FormatGoogle:
			return "SAFETY"
		case provider == capabilities.FormatOpenAIResponses:
			return "incomplete"
		default:
			return "content_filter"
		}
	default:
		return f.Other
	}
}

// finishReasonFromStringLoose is the FromStr fallback used when no
// provider context is available (matches response.rs's impl FromStr).
func finishReasonFromStringLoose(s string) uir.FinishReason {
	switch strings.ToLower(s) {
	case "stop", "end_turn", "completed":
		return uir.FinishReason{Kind: uir.FinishStop}
	case "length", "max_tokens", "max_output_tokens", "incomplete":
		return uir.FinishReason{Kind: uir.FinishLength}
	case "tool_calls", "tool_use":
		return uir.FinishReason{Kind: uir.FinishToolCalls}
	case "content_filter", "content_filtered", "safety":
		return uir.FinishReason{Kind: uir.FinishContentFilter}
	default:
		return uir.FinishReason{Kind: uir.FinishReasonOther, Other: s}
	}
}
