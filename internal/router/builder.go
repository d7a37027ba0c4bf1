package router

import (
	"fmt"
	"net/http"
	"time"

	"github.com/howard-nolan/llmgateway/internal/auth"
	"github.com/howard-nolan/llmgateway/internal/capabilities"
	"github.com/howard-nolan/llmgateway/internal/catalog"
	"github.com/howard-nolan/llmgateway/internal/provider"
	"github.com/howard-nolan/llmgateway/internal/retry"
	"github.com/howard-nolan/llmgateway/internal/transform"
)

// Builder assembles a Router the way the teacher's cmd/llmrouter main.go
// assembled its provider map, generalized to also register endpoints,
// auth, and a retry policy before freezing into an immutable Router via
// Build. Provider id aliasing is delegated entirely to catalog.Resolver
// rather than duplicated here — two Bedrock-fronted dialects already
// share the "bedrock" alias via catalog.FormatIdentifier.
type Builder struct {
	resolver    *catalog.Resolver
	adapters    *provider.Registry
	endpoints   map[capabilities.ProviderFormat]*Endpoint
	authByID    map[string]*auth.Config
	retryPolicy retry.Policy
	httpClient  *http.Client
}

func NewBuilder(resolver *catalog.Resolver) *Builder {
	return &Builder{
		resolver:    resolver,
		adapters:    provider.Default(),
		endpoints:   make(map[capabilities.ProviderFormat]*Endpoint),
		authByID:    make(map[string]*auth.Config),
		retryPolicy: retry.DefaultPolicy(),
		httpClient:  &http.Client{Timeout: 5 * time.Minute},
	}
}

// WithEndpoint registers the HTTP endpoint serving ep.Format.
func (b *Builder) WithEndpoint(ep *Endpoint) *Builder {
	b.endpoints[ep.Format] = ep
	return b
}

// WithAuth registers the credential set used for requests against the
// provider alias (e.g. "openai", "bedrock") that catalog.FormatIdentifier
// or a model-specific override in the Resolver resolves to.
func (b *Builder) WithAuth(providerAlias string, cfg *auth.Config) *Builder {
	b.authByID[providerAlias] = cfg
	return b
}

func (b *Builder) WithRetryPolicy(p retry.Policy) *Builder {
	b.retryPolicy = p
	return b
}

func (b *Builder) WithHTTPClient(c *http.Client) *Builder {
	b.httpClient = c
	return b
}

// Build validates that every registered endpoint has a reachable auth
// entry under its default provider alias and freezes the Router.
func (b *Builder) Build() (*Router, error) {
	for _, ep := range b.endpoints {
		alias := catalog.FormatIdentifier(ep.Format)
		if _, ok := b.authByID[alias]; !ok {
			return nil, fmt.Errorf("router: no auth configured for provider %q (format %s)", alias, ep.Format)
		}
	}

	return &Router{
		resolver:    b.resolver,
		adapters:    b.adapters,
		transformer: transform.New(b.adapters),
		endpoints:   b.endpoints,
		authByID:    b.authByID,
		retryPolicy: b.retryPolicy,
		httpClient:  b.httpClient,
	}, nil
}

// StandardEndpoints returns the canonical Endpoint for each of the 8
// dialects against each provider's public base URL, ready for
// WithEndpoint. awsRegion is used for the two Bedrock dialects' path and
// signing defaults; callers still supply per-provider auth separately.
func StandardEndpoints(awsRegion, vertexBaseURL string) []*Endpoint {
	bedrockBase := fmt.Sprintf("https://bedrock-runtime.%s.amazonaws.com", awsRegion)
	return []*Endpoint{
		{
			ID:      "openai",
			Format:  capabilities.FormatOpenAIChat,
			BaseURL: "https://api.openai.com",
			Path:    FixedPath("/v1/chat/completions"),
		},
		{
			ID:      "openai-responses",
			Format:  capabilities.FormatOpenAIResponses,
			BaseURL: "https://api.openai.com",
			Path:    FixedPath("/v1/responses"),
		},
		{
			ID:      "anthropic",
			Format:  capabilities.FormatAnthropic,
			BaseURL: "https://api.anthropic.com",
			Path:    FixedPath("/v1/messages"),
		},
		{
			ID:      "google",
			Format:  capabilities.FormatGoogle,
			BaseURL: "https://generativelanguage.googleapis.com",
			Path:    GoogleGenerateContentPath(),
		},
		{
			ID:      "mistral",
			Format:  capabilities.FormatMistral,
			BaseURL: "https://api.mistral.ai",
			Path:    FixedPath("/v1/chat/completions"),
		},
		{
			ID:           "bedrock-converse",
			Format:       capabilities.FormatBedrockConverse,
			BaseURL:      bedrockBase,
			Path:         ConversePath(),
			SigV4Region:  awsRegion,
			SigV4Service: "bedrock",
		},
		{
			ID:           "bedrock-anthropic",
			Format:       capabilities.FormatBedrockAnthropic,
			BaseURL:      bedrockBase,
			Path:         InvokeModelPath(),
			SigV4Region:  awsRegion,
			SigV4Service: "bedrock",
		},
		{
			ID:      "vertex-anthropic",
			Format:  capabilities.FormatVertexAnthropic,
			BaseURL: vertexBaseURL,
			Path:    VertexRawPredictPath(),
		},
	}
}
