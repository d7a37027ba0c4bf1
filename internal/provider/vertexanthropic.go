package provider

import (
	"github.com/howard-nolan/llmgateway/internal/capabilities"
	"github.com/howard-nolan/llmgateway/internal/uir"
)

// vertexAnthropicVersion is the fixed anthropic_version Vertex AI's
// rawPredict/streamRawPredict endpoints expect inside the flat request
// body (distinct from Bedrock's "bedrock-2023-05-31").
const vertexAnthropicVersion = "vertex-2023-10-16"

// VertexAnthropicAdapter implements Vertex AI's flat Anthropic envelope:
// the Anthropic Messages body with "model" dropped (the model is chosen
// by the URL path's publisher/model segment) and "anthropic_version"
// pinned to the Vertex value instead of Bedrock's. Streaming is selected
// by which endpoint is called (rawPredict vs streamRawPredict) rather
// than a "stream" body field, so that field is dropped on render per the
// documented Open Question decision.
type VertexAnthropicAdapter struct {
	anthropic *AnthropicAdapter
}

func NewVertexAnthropicAdapter(anthropic *AnthropicAdapter) *VertexAnthropicAdapter {
	return &VertexAnthropicAdapter{anthropic: anthropic}
}

func (a *VertexAnthropicAdapter) Format() capabilities.ProviderFormat {
	return capabilities.FormatVertexAnthropic
}
func (a *VertexAnthropicAdapter) DirectoryName() string { return "vertex-anthropic" }
func (a *VertexAnthropicAdapter) DisplayName() string   { return "Vertex AI Anthropic" }

func (a *VertexAnthropicAdapter) DetectRequest(v map[string]any) bool {
	format, ok := capabilities.Detect(v)
	return ok && format == capabilities.FormatVertexAnthropic
}

func (a *VertexAnthropicAdapter) DetectResponse(v map[string]any) bool {
	return a.anthropic.DetectResponse(v)
}

func (a *VertexAnthropicAdapter) DetectStreamResponse(v map[string]any) bool {
	return a.anthropic.DetectStreamResponse(v)
}

func (a *VertexAnthropicAdapter) ApplyDefaults(r *uir.Request) { a.anthropic.ApplyDefaults(r) }

func (a *VertexAnthropicAdapter) RequestToUniversal(v map[string]any) (*uir.Request, error) {
	return a.anthropic.RequestToUniversal(v)
}

func (a *VertexAnthropicAdapter) RequestFromUniversal(r *uir.Request) (map[string]any, error) {
	body, err := a.anthropic.RequestFromUniversal(r)
	if err != nil {
		return nil, err
	}
	delete(body, "model")
	delete(body, "stream")
	body["anthropic_version"] = vertexAnthropicVersion
	return body, nil
}

func (a *VertexAnthropicAdapter) ResponseToUniversal(v map[string]any) (*uir.Response, error) {
	return a.anthropic.ResponseToUniversal(v)
}

func (a *VertexAnthropicAdapter) ResponseFromUniversal(r *uir.Response) (map[string]any, error) {
	return a.anthropic.ResponseFromUniversal(r)
}

func (a *VertexAnthropicAdapter) StreamToUniversal(v map[string]any) (*uir.StreamChunk, error) {
	return a.anthropic.StreamToUniversal(v)
}

func (a *VertexAnthropicAdapter) StreamFromUniversal(c *uir.StreamChunk) (map[string]any, error) {
	return a.anthropic.StreamFromUniversal(c)
}
