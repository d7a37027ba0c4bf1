// Package auth implements spec §4.6/§4.9's authentication layer: the
// per-provider AuthConfig tagged variants and their header application,
// plus token-caching managers for the OAuth-style flows (Azure Entra,
// Databricks OAuth, Google service-account JWT) that need to mint and
// refresh a bearer token instead of forwarding a static credential.
//
// Grounded on crates/braintrust-llm-router/src/auth/{mod,azure,databricks,
// google}.rs.
package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/howard-nolan/llmgateway/internal/gwerrors"
)

// Type identifies which AuthConfig variant is active.
type Type string

const (
	TypeAPIKey         Type = "api_key"
	TypeOAuth          Type = "oauth"
	TypeAWSSignatureV4 Type = "aws_signature_v4"
	TypeAzureEntra     Type = "azure_entra"
	TypeCustom         Type = "custom"
)

// Config is the tagged union of authentication schemes a provider can be
// configured with. Exactly one of the embedded value types is set per
// instance; Type reports which one. AwsSignatureV4 carries its fields but
// ApplyHeaders is a no-op for it — SigV4 signing happens directly against
// the outgoing request in the router's transport, not via a header map,
// mirroring mod.rs's "Handled directly by the AWS provider" comment.
type Config struct {
	Type Type

	APIKey struct {
		Key    string
		Header string // defaults to "Authorization"
		Prefix string // e.g. "Bearer"; defaults to none
	}

	OAuth struct {
		AccessToken string
		TokenType   string // defaults to "Bearer"
	}

	AWSSignatureV4 struct {
		AccessKey    string
		SecretKey    string
		SessionToken string
		Region       string
		Service      string
	}

	AzureEntra struct {
		BearerToken string
	}

	Custom struct {
		Headers map[string]string
	}
}

// NewAPIKey builds an ApiKey config. header/prefix may be empty to take
// their defaults ("Authorization", no prefix).
func NewAPIKey(key, header, prefix string) *Config {
	c := &Config{Type: TypeAPIKey}
	c.APIKey.Key = key
	c.APIKey.Header = header
	c.APIKey.Prefix = prefix
	return c
}

// NewOAuth builds an OAuth config from an already-minted access token.
func NewOAuth(accessToken, tokenType string) *Config {
	c := &Config{Type: TypeOAuth}
	c.OAuth.AccessToken = accessToken
	c.OAuth.TokenType = tokenType
	return c
}

// NewAWSSignatureV4 builds an AwsSignatureV4 config.
func NewAWSSignatureV4(accessKey, secretKey, sessionToken, region, service string) *Config {
	c := &Config{Type: TypeAWSSignatureV4}
	c.AWSSignatureV4.AccessKey = accessKey
	c.AWSSignatureV4.SecretKey = secretKey
	c.AWSSignatureV4.SessionToken = sessionToken
	c.AWSSignatureV4.Region = region
	c.AWSSignatureV4.Service = service
	return c
}

// NewAzureEntra builds an AzureEntra config from an already-minted bearer
// token (the token managers below produce this value).
func NewAzureEntra(bearerToken string) *Config {
	c := &Config{Type: TypeAzureEntra}
	c.AzureEntra.BearerToken = bearerToken
	return c
}

// NewCustom builds a Custom config forwarding an arbitrary header set.
func NewCustom(headers map[string]string) *Config {
	c := &Config{Type: TypeCustom}
	c.Custom.Headers = headers
	return c
}

// ApplyHeaders mutates req's headers in place per the active variant,
// mirroring mod.rs's AuthConfig::apply_headers exactly.
func (c *Config) ApplyHeaders(header http.Header) error {
	switch c.Type {
	case TypeAPIKey:
		name := c.APIKey.Header
		if name == "" {
			name = "Authorization"
		}
		var value strings.Builder
		if c.APIKey.Prefix != "" {
			value.WriteString(c.APIKey.Prefix)
			if !strings.HasSuffix(c.APIKey.Prefix, " ") {
				value.WriteByte(' ')
			}
		}
		value.WriteString(c.APIKey.Key)
		header.Set(name, value.String())
		return nil

	case TypeOAuth:
		prefix := c.OAuth.TokenType
		if prefix == "" {
			prefix = "Bearer"
		}
		header.Set("Authorization", fmt.Sprintf("%s %s", prefix, c.OAuth.AccessToken))
		return nil

	case TypeAzureEntra:
		header.Set("Authorization", fmt.Sprintf("Bearer %s", c.AzureEntra.BearerToken))
		return nil

	case TypeCustom:
		for k, v := range c.Custom.Headers {
			header.Set(k, v)
		}
		return nil

	case TypeAWSSignatureV4:
		// SigV4 signs the request directly; nothing to add here.
		return nil

	default:
		return &gwerrors.AuthError{Reason: fmt.Sprintf("unknown auth config type %q", c.Type)}
	}
}
