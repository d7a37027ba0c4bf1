package router

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"

	"github.com/howard-nolan/llmgateway/internal/auth"
	"github.com/howard-nolan/llmgateway/internal/capabilities"
)

// Endpoint describes how to reach one provider's HTTP API: its base URL
// and how to build the request path for a given model/stream combination.
// Each dialect has its own URL shape (Converse embeds the model in the
// path, Vertex embeds model+method, Chat Completions-style dialects use
// a single fixed path), grounded on the teacher's per-provider BaseURL
// field generalized from two hardcoded providers to all eight dialects.
type Endpoint struct {
	ID      string
	Format  capabilities.ProviderFormat
	BaseURL string

	// Path builds the request path (joined with BaseURL) for model/stream.
	Path func(model string, stream bool) string

	// SigV4Region/SigV4Service are set for Bedrock endpoints, which sign
	// the request with AWS SigV4 instead of (or in addition to) a static
	// Authorization header.
	SigV4Region  string
	SigV4Service string
}

// FixedPath covers dialects with a single unvarying request path
// (Chat Completions, Responses, Mistral, plain Anthropic).
func FixedPath(path string) func(string, bool) string {
	return func(string, bool) string { return path }
}

// ConversePath builds Bedrock's Converse/ConverseStream path.
func ConversePath() func(string, bool) string {
	return func(model string, stream bool) string {
		if stream {
			return fmt.Sprintf("/model/%s/converse-stream", model)
		}
		return fmt.Sprintf("/model/%s/converse", model)
	}
}

// InvokeModelPath builds Bedrock's InvokeModel path used by the
// Bedrock-Anthropic dialect's envelope.
func InvokeModelPath() func(string, bool) string {
	return func(model string, stream bool) string {
		if stream {
			return fmt.Sprintf("/model/%s/invoke-with-response-stream", model)
		}
		return fmt.Sprintf("/model/%s/invoke", model)
	}
}

// GoogleGenerateContentPath builds Gemini's generateContent/
// streamGenerateContent path, keyed off the bare model id. The streaming
// path already carries the ?alt=sse query string; the API key is not part
// of the path (the auth config sends it as a header).
func GoogleGenerateContentPath() func(string, bool) string {
	return func(model string, stream bool) string {
		if stream {
			return fmt.Sprintf("/v1beta/models/%s:streamGenerateContent?alt=sse", model)
		}
		return fmt.Sprintf("/v1beta/models/%s:generateContent", model)
	}
}

// VertexRawPredictPath builds Vertex AI's rawPredict/streamRawPredict
// path, keyed off the model's publisher-qualified resource name.
func VertexRawPredictPath() func(string, bool) string {
	return func(model string, stream bool) string {
		if stream {
			return fmt.Sprintf("/v1/%s:streamRawPredict", model)
		}
		return fmt.Sprintf("/v1/%s:rawPredict", model)
	}
}

// signSigV4 signs req in place using the credentials carried by cfg,
// via aws-sdk-go-v2's signer/v4.Signer rather than hand-rolling the
// canonical request the way a from-scratch HTTP client would have to.
func signSigV4(ctx context.Context, cfg *auth.Config, ep *Endpoint, body []byte, req *http.Request) error {
	if cfg.Type != auth.TypeAWSSignatureV4 {
		return nil
	}
	creds := awssdk.Credentials{
		AccessKeyID:     cfg.AWSSignatureV4.AccessKey,
		SecretAccessKey: cfg.AWSSignatureV4.SecretKey,
		SessionToken:    cfg.AWSSignatureV4.SessionToken,
	}

	region := ep.SigV4Region
	if cfg.AWSSignatureV4.Region != "" {
		region = cfg.AWSSignatureV4.Region
	}
	service := ep.SigV4Service
	if cfg.AWSSignatureV4.Service != "" {
		service = cfg.AWSSignatureV4.Service
	}

	sum := sha256.Sum256(body)
	payloadHash := hex.EncodeToString(sum[:])

	signer := v4.NewSigner()
	return signer.SignHTTP(ctx, creds, req, payloadHash, service, region, time.Now())
}
