// Package config handles loading and validating gateway configuration.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the top-level configuration for the llmgateway service.
type Config struct {
	Server    ServerConfig              `koanf:"server"`
	Providers map[string]ProviderConfig `koanf:"providers"`
	Catalog   CatalogConfig             `koanf:"catalog"`
	Retry     RetryConfig               `koanf:"retry"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         int           `koanf:"port"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
}

// ProviderConfig holds the settings for a single upstream provider. Most
// fields are dialect-agnostic; the AWS/Vertex-only ones are left zero for
// every other provider.
type ProviderConfig struct {
	// APIKey is used for the ApiKey/OAuth/Custom auth variants. It may be
	// written as "${ENV_VAR}" in the YAML file, expanded by Load below.
	APIKey     string `koanf:"api_key"`
	AuthHeader string `koanf:"auth_header"` // defaults to "x-api-key" for anthropic/vertex, "Authorization" for other API-key providers; unused for google and bedrock
	AuthPrefix string `koanf:"auth_prefix"` // API-key providers only; defaults to "Bearer" when the header is "Authorization", none otherwise
	BaseURL    string `koanf:"base_url"`

	// AWSAccessKey/AWSSecretKey/AWSSessionToken/AWSRegion configure the
	// two Bedrock-fronted dialects' SigV4 auth. Like APIKey, the secret
	// fields may be "${ENV_VAR}" references.
	AWSAccessKey    string `koanf:"aws_access_key"`
	AWSSecretKey    string `koanf:"aws_secret_key"`
	AWSSessionToken string `koanf:"aws_session_token"`
	AWSRegion       string `koanf:"aws_region"`

	// VertexBaseURL overrides the Vertex AI rawPredict base URL, which is
	// project/region-specific and so has no sane global default.
	VertexBaseURL string `koanf:"vertex_base_url"`
}

// CatalogConfig points at the JSON model catalog file (spec §3.5) and an
// optional set of model -> provider-alias overrides layered on top of
// catalog.FormatIdentifier's defaults.
type CatalogConfig struct {
	Path    string            `koanf:"path"`
	Aliases map[string]string `koanf:"aliases"`
}

// RetryConfig mirrors retry.Policy. main.go uses it field for field when
// MaxAttempts > 0 and retry.DefaultPolicy() otherwise; individual zero
// fields are not replaced by defaults.
type RetryConfig struct {
	MaxAttempts     int           `koanf:"max_attempts"`
	InitialDelay    time.Duration `koanf:"initial_delay"`
	MaxDelay        time.Duration `koanf:"max_delay"`
	ExponentialBase float64       `koanf:"exponential_base"`
	Jitter          bool          `koanf:"jitter"`
}

// secretEnvPrefix/secretEnvSuffix delimit a "${VAR_NAME}" placeholder.
const secretEnvPrefix = "${"
const secretEnvSuffix = "}"

// Load reads configuration from a YAML file, layers environment variable
// overrides on top, and returns a fully populated Config.
func Load(path string) (*Config, error) {
	// Load .env file into the process environment (ignored if not present).
	// This is the equivalent of require('dotenv').config() in Node.
	_ = godotenv.Load()

	// Create a new koanf instance. The "." delimiter tells koanf how to
	// separate nested keys internally (e.g., "server.port").
	k := koanf.New(".")

	// Load the YAML config file. file.Provider reads the file,
	// yaml.Parser() decodes the YAML format into koanf's internal map.
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("loading config file: %w", err)
	}

	// Layer environment variables on top. Any env var starting with
	// "LLMGATEWAY_" can override a config value. The callback transforms
	// the env var name into a koanf key path:
	//   LLMGATEWAY_SERVER_PORT -> server.port
	if err := k.Load(env.Provider("LLMGATEWAY_", ".", func(s string) string {
		return strings.ReplaceAll(
			strings.ToLower(strings.TrimPrefix(s, "LLMGATEWAY_")),
			"_", ".",
		)
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	// Unmarshal the loaded key-value pairs into our Config struct.
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Expand ${VAR_NAME} placeholders in every secret-shaped field so the
	// YAML file itself never carries a live credential.
	for name, p := range cfg.Providers {
		p.APIKey = expandEnvPlaceholder(p.APIKey)
		p.AWSAccessKey = expandEnvPlaceholder(p.AWSAccessKey)
		p.AWSSecretKey = expandEnvPlaceholder(p.AWSSecretKey)
		p.AWSSessionToken = expandEnvPlaceholder(p.AWSSessionToken)
		cfg.Providers[name] = p
	}

	return &cfg, nil
}

// expandEnvPlaceholder replaces a "${VAR_NAME}" value with the named
// environment variable's value; any other string passes through unchanged.
func expandEnvPlaceholder(v string) string {
	if strings.HasPrefix(v, secretEnvPrefix) && strings.HasSuffix(v, secretEnvSuffix) {
		envVar := v[len(secretEnvPrefix) : len(v)-len(secretEnvSuffix)]
		return os.Getenv(envVar)
	}
	return v
}
