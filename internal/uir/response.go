package uir

// FinishReason is the canonical completion-reason set (§3.2). Other(s) is
// the escape hatch for any provider-specific reason with no canonical
// analog; canonical reasons never collide with it (§3.3 invariant 6).
type FinishReason struct {
	Kind  FinishReasonKind
	Other string // populated only when Kind == FinishReasonOther
}

type FinishReasonKind string

const (
	FinishStop           FinishReasonKind = "stop"
	FinishLength         FinishReasonKind = "length"
	FinishToolCalls      FinishReasonKind = "tool_calls"
	FinishContentFilter  FinishReasonKind = "content_filter"
	FinishReasonOther    FinishReasonKind = "other"
)

func (f FinishReason) String() string {
	if f.Kind == FinishReasonOther {
		return f.Other
	}
	return string(f.Kind)
}

// Usage is the canonical token-accounting struct (§3.2). Every field is
// optional because no single provider reports all of them.
type Usage struct {
	PromptTokens                *int64
	CompletionTokens            *int64
	PromptCachedTokens          *int64
	PromptCacheCreationTokens   *int64
	CompletionReasoningTokens   *int64
}

// Response is the canonical non-streaming chat-completion response.
type Response struct {
	Model        string
	Messages     []Message
	Usage        *Usage
	FinishReason *FinishReason
}

// StreamChunk is one canonical piece of a streaming response.
type StreamChunk struct {
	Role            *Role
	DeltaText       *string
	DeltaReasoning  *string
	DeltaToolCall   *ToolCallDelta
	Usage           *Usage
	FinishReason    *FinishReason
	IsKeepAlive     bool
}

// ToolCallDelta is an incremental fragment of a tool call being streamed.
// Providers differ in whether arguments arrive whole or char-by-char;
// Index disambiguates concurrent tool calls in a single turn (OpenAI's
// convention, adopted canonically since it is a strict superset of the
// single-tool-call-at-a-time case).
type ToolCallDelta struct {
	Index            int
	ToolCallID       string
	ToolName         string
	ArgumentsFragment string
}
