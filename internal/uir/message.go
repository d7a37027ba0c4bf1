// Package uir defines the Universal Intermediate Representation: the
// canonical request, response, message, content-part, tool, and
// streaming-chunk types that every provider adapter translates to and
// from. Nothing in this package knows about any particular wire dialect.
package uir

import (
	"encoding/json"
	"fmt"
)

// Role identifies which participant produced a Message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one turn in a conversation. Exactly one of the typed variants
// below is the concrete value behind this interface — Go's substitute for
// a closed sum type, matching the teacher's comment that "Go interfaces
// are implicit."
type Message interface {
	isMessage()
	Role() Role
}

// SystemMessage carries system/instruction content.
type SystemMessage struct {
	Content UserContent
}

func (SystemMessage) isMessage()    {}
func (SystemMessage) Role() Role    { return RoleSystem }

// UserMessage carries content authored by the caller.
type UserMessage struct {
	Content UserContent
}

func (UserMessage) isMessage() {}
func (UserMessage) Role() Role { return RoleUser }

// AssistantMessage carries content produced by the model. ID is an
// optional provider-assigned identifier for the turn (used by some
// providers to support reasoning continuation).
type AssistantMessage struct {
	Content AssistantContent
	ID      string
}

func (AssistantMessage) isMessage() {}
func (AssistantMessage) Role() Role { return RoleAssistant }

// ToolMessage answers one or more outstanding tool calls.
type ToolMessage struct {
	Results []ToolResultPart
}

func (ToolMessage) isMessage() {}
func (ToolMessage) Role() Role { return RoleTool }

// ---------------------------------------------------------------------------
// Content containers
// ---------------------------------------------------------------------------

// UserContent is an ordered list of UserContentPart. A bare JSON string is
// canonicalized on parse into a one-element list containing a Text part
// with no provider options (§3.1); the reverse canonicalization (rendering
// a singleton Text-only list as a bare string) is a per-adapter choice at
// emission time, not something UIR itself does.
type UserContentPart interface {
	isUserContentPart()
}

type UserContent []UserContentPart

// TextPart is shared between user and assistant content.
type TextPart struct {
	Text             string
	ProviderOptions  map[string]any
}

func (TextPart) isUserContentPart()      {}
func (TextPart) isAssistantContentPart() {}

// ImagePart carries inline bytes or a URL; user content only.
type ImagePart struct {
	Data            string // inline base64 data or URL, verbatim
	MediaType       string
	ProviderOptions map[string]any
}

func (ImagePart) isUserContentPart() {}

// FilePart carries an arbitrary file attachment.
type FilePart struct {
	Data            string
	Filename        string
	MediaType       string
	ProviderOptions map[string]any
}

func (FilePart) isUserContentPart()      {}
func (FilePart) isAssistantContentPart() {}

// AssistantContent is an ordered list of AssistantContentPart. Invariant
// (§3.3 #1): any Reasoning parts must precede all Text parts.
type AssistantContentPart interface {
	isAssistantContentPart()
}

type AssistantContent []AssistantContentPart

// ReasoningPart carries chain-of-thought text some providers expose.
// EncryptedContent is an opaque continuation token some providers return
// instead of (or alongside) plaintext reasoning.
type ReasoningPart struct {
	Text             string
	EncryptedContent string
}

func (ReasoningPart) isAssistantContentPart() {}

// ToolCallPart is a model-issued call to a tool.
type ToolCallPart struct {
	ToolCallID       string
	ToolName         string
	Arguments        ToolCallArguments
	ProviderOptions  map[string]any
	ProviderExecuted bool
}

func (ToolCallPart) isAssistantContentPart() {}

// ToolCallArguments is Valid(object) | Invalid(string) — the arguments
// string is always preserved; it is promoted to a parsed object only when
// it actually parses as a JSON object, per §4.1's "never lost" edge case.
type ToolCallArguments struct {
	Valid bool
	Map   map[string]any
	Raw   string
}

// NewToolCallArguments attempts to parse raw as a JSON object; on success
// returns a Valid arguments value, otherwise an Invalid one carrying raw
// verbatim. Mirrors lingua's `impl From<String> for ToolCallArguments`.
func NewToolCallArguments(raw string) ToolCallArguments {
	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err == nil {
		return ToolCallArguments{Valid: true, Map: m, Raw: raw}
	}
	return ToolCallArguments{Valid: false, Raw: raw}
}

// JSON renders the arguments back to their canonical string form: the
// original raw string when Invalid, or a re-marshal of Map when Valid and
// Map was constructed programmatically (Raw empty).
func (a ToolCallArguments) JSON() (string, error) {
	if !a.Valid {
		return a.Raw, nil
	}
	if a.Raw != "" {
		return a.Raw, nil
	}
	b, err := json.Marshal(a.Map)
	if err != nil {
		return "", fmt.Errorf("marshal tool call arguments: %w", err)
	}
	return string(b), nil
}

// ToolResultPart answers one ToolCallPart by ToolCallID.
type ToolResultPart struct {
	ToolCallID string
	ToolName   string
	Output     any
}

// ---------------------------------------------------------------------------
// String-or-array JSON canonicalization
// ---------------------------------------------------------------------------

// genericPart (below) is the wire shape for a content part used only inside
// the content types' custom UnmarshalJSON. Real parsing into the typed parts
// above happens in the adapters, which already hold a dialect-specific
// view of "what a part looks like on the wire." UIR's own JSON
// representation (used for diagnostics, not for any dialect) canonicalizes
// exactly the way §3.1 describes: bare string -> one Text part.
func (c UserContent) MarshalJSON() ([]byte, error) {
	if len(c) == 1 {
		if t, ok := c[0].(TextPart); ok && len(t.ProviderOptions) == 0 {
			return json.Marshal(t.Text)
		}
	}
	return json.Marshal([]UserContentPart(c))
}

func (c *UserContent) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*c = UserContent{TextPart{Text: s}}
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("content is neither a string nor an array: %w", err)
	}
	parts := make(UserContent, 0, len(raw))
	for _, r := range raw {
		p, err := decodeUserContentPart(r)
		if err != nil {
			return err
		}
		parts = append(parts, p)
	}
	if len(parts) == 0 {
		return fmt.Errorf("content array has zero parts")
	}
	*c = parts
	return nil
}

type genericPart struct {
	Type            string          `json:"type"`
	Text            string          `json:"text,omitempty"`
	Data            string          `json:"data,omitempty"`
	Filename        string          `json:"filename,omitempty"`
	MediaType       string          `json:"media_type,omitempty"`
	ProviderOptions map[string]any  `json:"provider_options,omitempty"`
}

func decodeUserContentPart(r json.RawMessage) (UserContentPart, error) {
	var g genericPart
	if err := json.Unmarshal(r, &g); err != nil {
		return nil, fmt.Errorf("decode content part: %w", err)
	}
	switch g.Type {
	case "text", "":
		return TextPart{Text: g.Text, ProviderOptions: g.ProviderOptions}, nil
	case "image":
		return ImagePart{Data: g.Data, MediaType: g.MediaType, ProviderOptions: g.ProviderOptions}, nil
	case "file":
		return FilePart{Data: g.Data, Filename: g.Filename, MediaType: g.MediaType, ProviderOptions: g.ProviderOptions}, nil
	default:
		return nil, fmt.Errorf("unknown content part kind %q", g.Type)
	}
}

func (c AssistantContent) MarshalJSON() ([]byte, error) {
	if len(c) == 1 {
		if t, ok := c[0].(TextPart); ok && len(t.ProviderOptions) == 0 {
			return json.Marshal(t.Text)
		}
	}
	return json.Marshal([]AssistantContentPart(c))
}

func (c *AssistantContent) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*c = AssistantContent{TextPart{Text: s}}
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("content is neither a string nor an array: %w", err)
	}
	parts := make(AssistantContent, 0, len(raw))
	for _, r := range raw {
		p, err := decodeAssistantContentPart(r)
		if err != nil {
			return err
		}
		parts = append(parts, p)
	}
	if len(parts) == 0 {
		return fmt.Errorf("content array has zero parts")
	}
	*c = parts
	return nil
}

func decodeAssistantContentPart(r json.RawMessage) (AssistantContentPart, error) {
	var g struct {
		genericPart
		ToolCallID       string         `json:"tool_call_id,omitempty"`
		ToolName         string         `json:"tool_name,omitempty"`
		Arguments        string         `json:"arguments,omitempty"`
		ProviderExecuted bool           `json:"provider_executed,omitempty"`
		EncryptedContent string         `json:"encrypted_content,omitempty"`
	}
	if err := json.Unmarshal(r, &g); err != nil {
		return nil, fmt.Errorf("decode content part: %w", err)
	}
	switch g.Type {
	case "text", "":
		return TextPart{Text: g.Text, ProviderOptions: g.ProviderOptions}, nil
	case "file":
		return FilePart{Data: g.Data, Filename: g.Filename, MediaType: g.MediaType, ProviderOptions: g.ProviderOptions}, nil
	case "reasoning":
		return ReasoningPart{Text: g.Text, EncryptedContent: g.EncryptedContent}, nil
	case "tool_call":
		return ToolCallPart{
			ToolCallID:       g.ToolCallID,
			ToolName:         g.ToolName,
			Arguments:        NewToolCallArguments(g.Arguments),
			ProviderOptions:  g.ProviderOptions,
			ProviderExecuted: g.ProviderExecuted,
		}, nil
	default:
		return nil, fmt.Errorf("unknown content part kind %q", g.Type)
	}
}
