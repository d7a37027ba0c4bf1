package uir

// Request is the canonical chat-completion request every adapter parses
// into and renders out of.
type Request struct {
	Model    string // optional; required only when the target dialect carries it in-body
	Messages []Message
	Params   GenerationParams
	Tools    []Tool
	Stream   bool

	// Extras holds provider-specific fields with no UIR analog. They are
	// preserved verbatim for same-dialect round-trips (§3.3 invariant 4)
	// and dropped on cross-dialect translation; no record of the dropped
	// fields is returned.
	Extras map[string]any
}

// GenerationParams are the common generation knobs shared across dialects.
type GenerationParams struct {
	MaxTokens        *int
	Temperature      *float64
	TopP             *float64
	StopSequences    []string
	Reasoning        *ReasoningConfig
	ResponseFormat   *ResponseFormatConfig
	ToolChoice       *ToolChoiceConfig
	ParallelToolCalls *bool
}

// ReasoningEffort is the coarse-grained reasoning knob OpenAI's Chat and
// Responses APIs expose; Anthropic and Google only ever speak in token
// budgets, so the converter in internal/semantic bridges the two.
type ReasoningEffort string

const (
	ReasoningLow    ReasoningEffort = "low"
	ReasoningMedium ReasoningEffort = "medium"
	ReasoningHigh   ReasoningEffort = "high"
)

// SummaryMode controls whether/how a reasoning summary is requested
// (OpenAI Responses' reasoning.summary field).
type SummaryMode string

const (
	SummaryNone     SummaryMode = "none"
	SummaryAuto     SummaryMode = "auto"
	SummaryDetailed SummaryMode = "detailed"
)

// ReasoningConfig is the canonical reasoning/thinking configuration
// (§3.4). BudgetTokens is the single canonical field; Effort is kept
// alongside it because some dialects (OpenAI) only ever speak in effort
// levels and round-tripping through a budget and back would lose
// precision the caller never asked to lose.
type ReasoningConfig struct {
	Effort       *ReasoningEffort
	BudgetTokens *int64
	SummaryMode  *SummaryMode
}

// ResponseFormatType is the canonical output-shape selector (§3.4).
type ResponseFormatType string

const (
	ResponseFormatText       ResponseFormatType = "text"
	ResponseFormatJSONObject ResponseFormatType = "json_object"
	ResponseFormatJSONSchema ResponseFormatType = "json_schema"
)

// JSONSchemaConfig describes a requested JSON Schema output shape.
type JSONSchemaConfig struct {
	Name        string
	Description string
	Schema      map[string]any
	Strict      *bool
}

// ResponseFormatConfig is the canonical output-format configuration.
type ResponseFormatConfig struct {
	FormatType ResponseFormatType
	JSONSchema *JSONSchemaConfig
}
