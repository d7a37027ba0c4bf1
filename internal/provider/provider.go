// Package provider defines the dialect Adapter contract (spec §4.2/C3)
// and the eight concrete adapters that implement it. An Adapter is pure
// parse/render: detecting whether an arbitrary JSON payload speaks its
// dialect, and converting between that dialect and the UIR. No adapter
// performs network I/O — that lives in internal/router, grounded in the
// teacher's ChatCompletionStream goroutine+channel transport.
package provider

import (
	"fmt"

	"github.com/howard-nolan/llmgateway/internal/capabilities"
	"github.com/howard-nolan/llmgateway/internal/gwerrors"
	"github.com/howard-nolan/llmgateway/internal/uir"
)

// Adapter is the dialect contract every provider format implements.
// Go interfaces are implicit, so each concrete adapter below satisfies
// this simply by defining the methods — no "implements" declaration.
type Adapter interface {
	Format() capabilities.ProviderFormat
	DirectoryName() string
	DisplayName() string

	DetectRequest(v map[string]any) bool
	RequestToUniversal(v map[string]any) (*uir.Request, error)
	RequestFromUniversal(r *uir.Request) (map[string]any, error)

	DetectResponse(v map[string]any) bool
	ResponseToUniversal(v map[string]any) (*uir.Response, error)
	ResponseFromUniversal(r *uir.Response) (map[string]any, error)

	DetectStreamResponse(v map[string]any) bool
	StreamToUniversal(v map[string]any) (*uir.StreamChunk, error)
	StreamFromUniversal(c *uir.StreamChunk) (map[string]any, error)

	ApplyDefaults(r *uir.Request)
}

// Registry looks up an Adapter by the dialect it implements.
type Registry struct {
	byFormat map[capabilities.ProviderFormat]Adapter
}

// NewRegistry builds a Registry holding exactly the adapters passed in;
// Default() builds the one populated with every adapter this package
// ships. Callers needing only a subset (e.g. to disable a provider
// family) pass just those adapters here.
func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{byFormat: make(map[capabilities.ProviderFormat]Adapter, len(adapters))}
	for _, a := range adapters {
		r.byFormat[a.Format()] = a
	}
	return r
}

// Default returns a Registry with all eight built-in adapters.
func Default() *Registry {
	anthropicAdapter := NewAnthropicAdapter()
	return NewRegistry(
		NewOpenAIChatAdapter(),
		NewOpenAIResponsesAdapter(),
		anthropicAdapter,
		NewGoogleAdapter(),
		NewMistralAdapter(),
		NewBedrockConverseAdapter(),
		NewBedrockAnthropicAdapter(anthropicAdapter),
		NewVertexAnthropicAdapter(anthropicAdapter),
	)
}

// Get returns the adapter registered for format, or an error if none is
// registered (spec §4.11's NoProvider).
func (r *Registry) Get(format capabilities.ProviderFormat) (Adapter, error) {
	a, ok := r.byFormat[format]
	if !ok {
		return nil, fmt.Errorf("no adapter registered for format %q", format)
	}
	return a, nil
}

// Detect runs capabilities.Detect and resolves straight to the matching
// Adapter, for callers that don't need the intermediate format value.
func (r *Registry) Detect(v map[string]any) (Adapter, bool) {
	format, ok := capabilities.Detect(v)
	if !ok {
		return nil, false
	}
	a, err := r.Get(format)
	if err != nil {
		return nil, false
	}
	return a, true
}

// asMap/asSlice/asString are small shared helpers every adapter file
// below uses to navigate decoded JSON (map[string]any) without repeating
// type assertions.
func asMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

func asSlice(v any) ([]any, bool) {
	s, ok := v.([]any)
	return s, ok
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asBool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

func asFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func asInt(v any) (int, bool) {
	f, ok := asFloat64(v)
	if !ok {
		return 0, false
	}
	return int(f), true
}

func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }
func boolPtr(b bool) *bool        { return &b }

// errUnknownRole builds a consistent "unknown message role" error across
// adapters.
func errUnknownRole(dialect, role string) error {
	return fmt.Errorf("%s: unknown message role %q", dialect, role)
}

// validateUserContent and validateAssistantContent enforce spec §3.3
// invariant 3 ("UserContent and AssistantContent with zero parts are
// rejected on parse") at the one place every adapter actually builds a
// Message from wire JSON — uir.UserContent/AssistantContent's own
// UnmarshalJSON enforces the same rule, but adapters never go through
// that path; they build the typed slices directly.
func validateUserContent(c uir.UserContent, dialect string) error {
	if len(c) == 0 {
		return &gwerrors.TransformError{
			Kind:   gwerrors.TransformValidationFailed,
			Reason: fmt.Sprintf("%s: user/system content has zero parts", dialect),
		}
	}
	return nil
}

func validateAssistantContent(c uir.AssistantContent, dialect string) error {
	if len(c) == 0 {
		return &gwerrors.TransformError{
			Kind:   gwerrors.TransformValidationFailed,
			Reason: fmt.Sprintf("%s: assistant content has zero parts", dialect),
		}
	}
	return nil
}
