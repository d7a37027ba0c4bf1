package catalog

import "github.com/howard-nolan/llmgateway/internal/capabilities"

// Resolver wraps a Catalog with an optional model->provider-alias override
// map, mirroring catalog/resolver.rs's ModelResolver.
type Resolver struct {
	catalog *Catalog
	aliases map[string]string
}

// NewResolver builds a Resolver over catalog with no alias overrides.
func NewResolver(catalog *Catalog) *Resolver {
	return &Resolver{catalog: catalog, aliases: map[string]string{}}
}

// WithAliases returns a copy of r with the given model->provider-alias
// overrides applied.
func (r *Resolver) WithAliases(aliases map[string]string) *Resolver {
	return &Resolver{catalog: r.catalog, aliases: aliases}
}

// Catalog returns the underlying catalog.
func (r *Resolver) Catalog() *Catalog { return r.catalog }

// Resolve looks up model and returns its spec, resolved format (after the
// Bedrock-Anthropic override), and the provider alias to look up auth and
// a registered Provider under — either a caller override or
// FormatIdentifier(format).
func (r *Resolver) Resolve(model string) (*ModelSpec, capabilities.ProviderFormat, string, error) {
	spec, format, err := r.catalog.Resolve(model)
	if err != nil {
		return nil, "", "", err
	}
	alias, ok := r.aliases[model]
	if !ok {
		alias = FormatIdentifier(format)
	}
	return spec, format, alias, nil
}

// FormatIdentifier maps a dialect to the provider-registry alias it
// resolves to by default. The OpenAI Responses dialect aliases to
// "openai" because it's served by the same provider account as Chat
// Completions; Bedrock Converse and Bedrock-Anthropic both alias to
// "bedrock" since they share one AWS credential. Ported verbatim from
// catalog/resolver.rs's format_identifier.
func FormatIdentifier(format capabilities.ProviderFormat) string {
	switch format {
	case capabilities.FormatOpenAIChat:
		return "openai"
	case capabilities.FormatAnthropic:
		return "anthropic"
	case capabilities.FormatBedrockAnthropic:
		return "bedrock"
	case capabilities.FormatGoogle:
		return "google"
	case capabilities.FormatMistral:
		return "mistral"
	case capabilities.FormatBedrockConverse:
		return "bedrock"
	case capabilities.FormatOpenAIResponses:
		return "openai"
	case capabilities.FormatVertexAnthropic:
		return "vertex"
	default:
		return "unknown"
	}
}
