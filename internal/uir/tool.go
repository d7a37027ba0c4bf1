package uir

// Tool is either a ClientTool (executed by the caller) or a ProviderTool
// (executed by the provider's own infrastructure, e.g. web search).
type Tool interface {
	isTool()
}

// ClientTool is a function the caller implements; the provider only
// decides when and with what arguments to call it.
type ClientTool struct {
	Name            string
	Description     string
	InputSchema     map[string]any
	ProviderOptions map[string]any
}

func (ClientTool) isTool() {}

// ProviderTool is a capability built into the provider, identified by a
// versioned tag like "web_search_20250305" or "bash_20250124".
type ProviderTool struct {
	ToolType string
	Name     string // optional name override; omitted on emit when empty
	Config   map[string]any
}

func (ProviderTool) isTool() {}

// ToolChoiceMode is the canonical tool-choice selector (§3.4).
type ToolChoiceMode string

const (
	ToolChoiceAuto     ToolChoiceMode = "auto"
	ToolChoiceNone     ToolChoiceMode = "none"
	ToolChoiceRequired ToolChoiceMode = "required"
	ToolChoiceTool     ToolChoiceMode = "tool"
)

// ToolChoiceConfig is the canonical tool-choice configuration every dialect
// round-trips through.
type ToolChoiceConfig struct {
	Mode            ToolChoiceMode
	ToolName        string // set only when Mode == ToolChoiceTool
	DisableParallel *bool
}
