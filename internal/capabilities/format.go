// Package capabilities defines the set of supported wire dialects and the
// heuristic used to detect which dialect an arbitrary JSON payload speaks
// (spec §4.2's detection table).
package capabilities

import "strings"

// ProviderFormat identifies one supported wire dialect.
type ProviderFormat string

const (
	FormatOpenAIChat        ProviderFormat = "openai"
	FormatOpenAIResponses   ProviderFormat = "responses"
	FormatAnthropic         ProviderFormat = "anthropic"
	FormatGoogle            ProviderFormat = "google"
	FormatMistral           ProviderFormat = "mistral"
	FormatBedrockConverse   ProviderFormat = "converse"
	FormatBedrockAnthropic  ProviderFormat = "bedrock-anthropic"
	FormatVertexAnthropic   ProviderFormat = "vertex-anthropic"
)

// All enumerates every supported dialect, in no particular order.
var All = []ProviderFormat{
	FormatOpenAIChat,
	FormatOpenAIResponses,
	FormatAnthropic,
	FormatGoogle,
	FormatMistral,
	FormatBedrockConverse,
	FormatBedrockAnthropic,
	FormatVertexAnthropic,
}

// candidate pairs a format with its detection priority and the function
// that tests for it. Higher Priority is tried first.
type candidate struct {
	Format   ProviderFormat
	Priority int
	Matches  func(v map[string]any) bool
}

var candidates = []candidate{
	{FormatBedrockConverse, 95, detectBedrockConverse},
	{FormatBedrockAnthropic, 92, detectBedrockAnthropic},
	{FormatVertexAnthropic, 92, detectVertexAnthropic},
	{FormatGoogle, 90, detectGoogle},
	{FormatAnthropic, 85, detectAnthropic},
	{FormatMistral, 70, detectMistral},
	{FormatOpenAIResponses, 60, detectOpenAIResponses},
	{FormatOpenAIChat, 50, detectOpenAIChat},
}

func init() {
	for i := 0; i < len(candidates)-1; i++ {
		if candidates[i].Priority < candidates[i+1].Priority {
			panic("capabilities: candidates must be sorted by descending priority")
		}
	}
}

// Detect runs the priority-ordered heuristic over v and returns the first
// matching dialect. The caller (normally the model catalog or the
// transform façade) is responsible for falling through to
// UnableToDetectFormat when ok is false.
func Detect(v map[string]any) (ProviderFormat, bool) {
	for _, c := range candidates {
		if c.Matches(v) {
			return c.Format, true
		}
	}
	return "", false
}

func asMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

func asSlice(v any) ([]any, bool) {
	s, ok := v.([]any)
	return s, ok
}

func detectBedrockConverse(v map[string]any) bool {
	if _, ok := v["modelId"]; ok {
		if _, hasBody := v["body"]; !hasBody {
			return true
		}
	}
	if _, ok := v["inferenceConfig"]; ok {
		return true
	}
	return hasMessageContentKey(v, "messages", "toolUse", "toolResult")
}

func detectBedrockAnthropic(v map[string]any) bool {
	modelID, hasModelID := v["modelId"].(string)
	body, hasBody := asMap(v["body"])
	if !hasBody {
		return false
	}
	_ = modelID
	_ = hasModelID
	return detectAnthropic(body)
}

func detectVertexAnthropic(v map[string]any) bool {
	if _, hasModel := v["model"]; hasModel {
		return false
	}
	av, ok := v["anthropic_version"].(string)
	if !ok || !containsFold(av, "vertex") {
		return false
	}
	_, hasMessages := v["messages"]
	return hasMessages
}

func detectGoogle(v map[string]any) bool {
	if contents, ok := asSlice(v["contents"]); ok {
		for _, c := range contents {
			if cm, ok := asMap(c); ok {
				if _, ok := cm["parts"]; ok {
					return true
				}
				if role, _ := cm["role"].(string); role == "model" {
					return true
				}
			}
		}
	}
	if _, ok := v["generationConfig"]; ok {
		return true
	}
	return false
}

func detectAnthropic(v map[string]any) bool {
	if _, ok := v["max_tokens"]; !ok {
		return false
	}
	messages, ok := asSlice(v["messages"])
	if !ok {
		return false
	}
	for _, m := range messages {
		mm, ok := asMap(m)
		if !ok {
			return false
		}
		role, _ := mm["role"].(string)
		if role != "user" && role != "assistant" {
			return false
		}
	}
	return true
}

func detectMistral(v map[string]any) bool {
	if _, ok := v["safe_prompt"]; ok {
		return true
	}
	model, _ := v["model"].(string)
	for _, prefix := range []string{"mistral-", "codestral-", "pixtral-", "ministral-"} {
		if strings.HasPrefix(model, prefix) {
			return true
		}
	}
	return false
}

func detectOpenAIResponses(v map[string]any) bool {
	if _, ok := v["input"].([]any); ok {
		if _, hasMessages := v["messages"]; !hasMessages {
			return true
		}
	}
	if _, ok := v["reasoning"]; ok {
		return true
	}
	if text, ok := asMap(v["text"]); ok {
		if _, ok := text["format"]; ok {
			return true
		}
	}
	return false
}

func detectOpenAIChat(v map[string]any) bool {
	if _, ok := v["model"]; !ok {
		return false
	}
	messages, ok := asSlice(v["messages"])
	if !ok || len(messages) == 0 {
		return false
	}
	for _, m := range messages {
		mm, ok := asMap(m)
		if !ok {
			return false
		}
		if _, ok := mm["role"]; !ok {
			return false
		}
		_, hasContent := mm["content"]
		_, hasToolCalls := mm["tool_calls"]
		if !hasContent && !hasToolCalls {
			return false
		}
	}
	return true
}

func hasMessageContentKey(v map[string]any, messagesKey string, keys ...string) bool {
	messages, ok := asSlice(v[messagesKey])
	if !ok {
		return false
	}
	for _, m := range messages {
		mm, ok := asMap(m)
		if !ok {
			continue
		}
		content, ok := asSlice(mm["content"])
		if !ok {
			continue
		}
		for _, part := range content {
			pm, ok := asMap(part)
			if !ok {
				continue
			}
			for _, k := range keys {
				if _, ok := pm[k]; ok {
					return true
				}
			}
		}
	}
	return false
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
