// Package transform implements the C10 transform façade: the thin layer
// that decides whether a payload needs parsing through the UIR at all,
// and when it does, drives the source/target Adapter pair to do it.
// Grounded on the teacher's ChatCompletion<->Anthropic translation path,
// generalized from a single fixed pair to any two adapters in the
// registry plus the pass-through fast path spec §4.10 requires.
package transform

import (
	"encoding/json"

	"github.com/howard-nolan/llmgateway/internal/capabilities"
	"github.com/howard-nolan/llmgateway/internal/gwerrors"
	"github.com/howard-nolan/llmgateway/internal/provider"
)

// Result is the outcome of a transform call. Bytes holds the untouched
// input when IsPassThrough is true, and the re-rendered target payload
// otherwise.
type Result struct {
	Bytes         []byte
	SourceFormat  capabilities.ProviderFormat
	IsPassThrough bool
}

// Transformer holds the adapter registry every transform call consults
// to detect source dialects and fetch target adapters.
type Transformer struct {
	registry *provider.Registry
}

func New(registry *provider.Registry) *Transformer {
	return &Transformer{registry: registry}
}

// decode parses bytes into a JSON object, wrapping failures as a
// TransformError the caller can classify as client-side.
func decode(bytes []byte) (map[string]any, error) {
	var v map[string]any
	if err := json.Unmarshal(bytes, &v); err != nil {
		return nil, &gwerrors.TransformError{
			Kind:   gwerrors.TransformDeserializationFailed,
			Reason: err.Error(),
		}
	}
	return v, nil
}

// TransformRequest implements transform_request(bytes, target, model?):
// detect the source dialect, pass through untouched if it already
// matches target, else round-trip bytes -> UIR -> target dialect.
func (t *Transformer) TransformRequest(body []byte, target capabilities.ProviderFormat) (*Result, error) {
	v, err := decode(body)
	if err != nil {
		return nil, err
	}

	source, ok := capabilities.Detect(v)
	if !ok {
		return nil, &gwerrors.TransformError{
			Kind:   gwerrors.TransformUnableToDetectFormat,
			Target: target,
			Reason: "could not detect source request dialect",
		}
	}
	if source == target {
		return &Result{Bytes: body, SourceFormat: source, IsPassThrough: true}, nil
	}

	sourceAdapter, err := t.registry.Get(source)
	if err != nil {
		return nil, &gwerrors.TransformError{Kind: gwerrors.TransformUnsupportedSourceFmt, Target: target, Reason: err.Error()}
	}
	targetAdapter, err := t.registry.Get(target)
	if err != nil {
		return nil, &gwerrors.TransformError{Kind: gwerrors.TransformUnsupportedTargetFmt, Target: target, Reason: err.Error()}
	}

	req, err := sourceAdapter.RequestToUniversal(v)
	if err != nil {
		return nil, &gwerrors.TransformError{Kind: gwerrors.TransformToUniversalFailed, Target: target, Reason: err.Error()}
	}
	targetAdapter.ApplyDefaults(req)

	out, err := targetAdapter.RequestFromUniversal(req)
	if err != nil {
		return nil, &gwerrors.TransformError{Kind: gwerrors.TransformFromUniversalFailed, Target: target, Reason: err.Error()}
	}

	rendered, err := json.Marshal(out)
	if err != nil {
		return nil, &gwerrors.TransformError{Kind: gwerrors.TransformSerializationFailed, Target: target, Reason: err.Error()}
	}

	return &Result{Bytes: rendered, SourceFormat: source, IsPassThrough: false}, nil
}

// TransformResponse implements transform_response(bytes, target):
// symmetric to TransformRequest but for a completed response body.
func (t *Transformer) TransformResponse(body []byte, target capabilities.ProviderFormat) (*Result, error) {
	v, err := decode(body)
	if err != nil {
		return nil, err
	}

	source, ok := t.detectResponseFormat(v)
	if !ok {
		return nil, &gwerrors.TransformError{
			Kind:   gwerrors.TransformUnableToDetectFormat,
			Target: target,
			Reason: "could not detect source response dialect",
		}
	}
	if source == target {
		return &Result{Bytes: body, SourceFormat: source, IsPassThrough: true}, nil
	}

	sourceAdapter, err := t.registry.Get(source)
	if err != nil {
		return nil, &gwerrors.TransformError{Kind: gwerrors.TransformUnsupportedSourceFmt, Target: target, Reason: err.Error()}
	}
	targetAdapter, err := t.registry.Get(target)
	if err != nil {
		return nil, &gwerrors.TransformError{Kind: gwerrors.TransformUnsupportedTargetFmt, Target: target, Reason: err.Error()}
	}

	resp, err := sourceAdapter.ResponseToUniversal(v)
	if err != nil {
		return nil, &gwerrors.TransformError{Kind: gwerrors.TransformToUniversalFailed, Target: target, Reason: err.Error()}
	}

	out, err := targetAdapter.ResponseFromUniversal(resp)
	if err != nil {
		return nil, &gwerrors.TransformError{Kind: gwerrors.TransformFromUniversalFailed, Target: target, Reason: err.Error()}
	}

	rendered, err := json.Marshal(out)
	if err != nil {
		return nil, &gwerrors.TransformError{Kind: gwerrors.TransformSerializationFailed, Target: target, Reason: err.Error()}
	}

	return &Result{Bytes: rendered, SourceFormat: source, IsPassThrough: false}, nil
}

// TransformStreamChunk implements transform_stream_chunk(bytes, target)
// per spec §4.4's per-chunk pipeline: whitespace-only bytes pass
// through as a keep-alive, a chunk that can't be detected passes
// through unchanged (streaming payloads are often too sparse to
// classify, e.g. a lone usage object), a nil UniversalStreamChunk is
// swallowed, and an empty rendered object is swallowed too.
func (t *Transformer) TransformStreamChunk(body []byte, target capabilities.ProviderFormat) (*Result, error) {
	if isWhitespaceOnly(body) {
		return &Result{Bytes: body, SourceFormat: target, IsPassThrough: true}, nil
	}

	v, err := decode(body)
	if err != nil {
		return &Result{Bytes: body, SourceFormat: target, IsPassThrough: true}, nil
	}

	source, ok := t.detectStreamFormat(v)
	if !ok {
		return &Result{Bytes: body, SourceFormat: target, IsPassThrough: true}, nil
	}
	if source == target {
		return &Result{Bytes: body, SourceFormat: source, IsPassThrough: true}, nil
	}

	sourceAdapter, err := t.registry.Get(source)
	if err != nil {
		return nil, &gwerrors.TransformError{Kind: gwerrors.TransformUnsupportedSourceFmt, Target: target, Reason: err.Error()}
	}
	targetAdapter, err := t.registry.Get(target)
	if err != nil {
		return nil, &gwerrors.TransformError{Kind: gwerrors.TransformUnsupportedTargetFmt, Target: target, Reason: err.Error()}
	}

	chunk, err := sourceAdapter.StreamToUniversal(v)
	if err != nil {
		return nil, &gwerrors.TransformError{Kind: gwerrors.TransformToUniversalFailed, Target: target, Reason: err.Error()}
	}
	if chunk == nil {
		return &Result{Bytes: nil, SourceFormat: source, IsPassThrough: false}, nil
	}
	if chunk.IsKeepAlive {
		return &Result{Bytes: []byte{}, SourceFormat: source, IsPassThrough: false}, nil
	}

	out, err := targetAdapter.StreamFromUniversal(chunk)
	if err != nil {
		return nil, &gwerrors.TransformError{Kind: gwerrors.TransformFromUniversalFailed, Target: target, Reason: err.Error()}
	}
	if len(out) == 0 {
		return &Result{Bytes: nil, SourceFormat: source, IsPassThrough: false}, nil
	}

	rendered, err := json.Marshal(out)
	if err != nil {
		return nil, &gwerrors.TransformError{Kind: gwerrors.TransformSerializationFailed, Target: target, Reason: err.Error()}
	}

	return &Result{Bytes: rendered, SourceFormat: source, IsPassThrough: false}, nil
}

// detectResponseFormat and detectStreamFormat fall back to probing every
// registered adapter's Detect{Response,StreamResponse} since
// capabilities.Detect is tuned for request-shaped payloads.
func (t *Transformer) detectResponseFormat(v map[string]any) (capabilities.ProviderFormat, bool) {
	for _, format := range capabilities.All {
		a, err := t.registry.Get(format)
		if err != nil {
			continue
		}
		if a.DetectResponse(v) {
			return format, true
		}
	}
	return "", false
}

func (t *Transformer) detectStreamFormat(v map[string]any) (capabilities.ProviderFormat, bool) {
	for _, format := range capabilities.All {
		a, err := t.registry.Get(format)
		if err != nil {
			continue
		}
		if a.DetectStreamResponse(v) {
			return format, true
		}
	}
	return "", false
}

func isWhitespaceOnly(b []byte) bool {
	for _, c := range b {
		switch c {
		case ' ', '\t', '\n', '\r':
			continue
		default:
			return false
		}
	}
	return true
}
