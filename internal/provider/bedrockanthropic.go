package provider

import (
	"github.com/howard-nolan/llmgateway/internal/capabilities"
	"github.com/howard-nolan/llmgateway/internal/uir"
)

// bedrockAnthropicVersion is the fixed anthropic_version Bedrock's
// InvokeModel API expects inside the request body (spec §4.2 scenario 3).
const bedrockAnthropicVersion = "bedrock-2023-05-31"

// BedrockAnthropicAdapter implements Bedrock's InvokeModel envelope around
// an Anthropic Messages body: {"modelId": ..., "body": {...}}. All
// message/content/tool conversion is delegated to the embedded
// AnthropicAdapter after unwrapping the envelope; this file only handles
// the envelope itself and the fields Bedrock's InvokeModel strips from
// the inner body (model, stream, stream_options never appear there since
// routing/streaming is selected by which endpoint is called, not a body
// field).
type BedrockAnthropicAdapter struct {
	anthropic *AnthropicAdapter
}

func NewBedrockAnthropicAdapter(anthropic *AnthropicAdapter) *BedrockAnthropicAdapter {
	return &BedrockAnthropicAdapter{anthropic: anthropic}
}

func (a *BedrockAnthropicAdapter) Format() capabilities.ProviderFormat {
	return capabilities.FormatBedrockAnthropic
}
func (a *BedrockAnthropicAdapter) DirectoryName() string { return "bedrock-anthropic" }
func (a *BedrockAnthropicAdapter) DisplayName() string   { return "AWS Bedrock Anthropic" }

func (a *BedrockAnthropicAdapter) DetectRequest(v map[string]any) bool {
	format, ok := capabilities.Detect(v)
	return ok && format == capabilities.FormatBedrockAnthropic
}

func (a *BedrockAnthropicAdapter) DetectResponse(v map[string]any) bool {
	return a.anthropic.DetectResponse(v)
}

func (a *BedrockAnthropicAdapter) DetectStreamResponse(v map[string]any) bool {
	return a.anthropic.DetectStreamResponse(v)
}

func (a *BedrockAnthropicAdapter) ApplyDefaults(r *uir.Request) { a.anthropic.ApplyDefaults(r) }

func (a *BedrockAnthropicAdapter) RequestToUniversal(v map[string]any) (*uir.Request, error) {
	body, _ := asMap(v["body"])
	req, err := a.anthropic.RequestToUniversal(body)
	if err != nil {
		return nil, err
	}
	if req.Model == "" {
		req.Model = asString(v["modelId"])
	}
	return req, nil
}

func (a *BedrockAnthropicAdapter) RequestFromUniversal(r *uir.Request) (map[string]any, error) {
	body, err := a.anthropic.RequestFromUniversal(r)
	if err != nil {
		return nil, err
	}
	modelID := asString(body["model"])
	delete(body, "model")
	delete(body, "stream")
	body["anthropic_version"] = bedrockAnthropicVersion
	return map[string]any{"modelId": modelID, "body": body}, nil
}

func (a *BedrockAnthropicAdapter) ResponseToUniversal(v map[string]any) (*uir.Response, error) {
	return a.anthropic.ResponseToUniversal(v)
}

func (a *BedrockAnthropicAdapter) ResponseFromUniversal(r *uir.Response) (map[string]any, error) {
	return a.anthropic.ResponseFromUniversal(r)
}

func (a *BedrockAnthropicAdapter) StreamToUniversal(v map[string]any) (*uir.StreamChunk, error) {
	return a.anthropic.StreamToUniversal(v)
}

func (a *BedrockAnthropicAdapter) StreamFromUniversal(c *uir.StreamChunk) (map[string]any, error) {
	return a.anthropic.StreamFromUniversal(c)
}
