// Package main is the entry point for the llmgateway service.
package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/howard-nolan/llmgateway/internal/auth"
	"github.com/howard-nolan/llmgateway/internal/capabilities"
	"github.com/howard-nolan/llmgateway/internal/catalog"
	"github.com/howard-nolan/llmgateway/internal/config"
	"github.com/howard-nolan/llmgateway/internal/retry"
	"github.com/howard-nolan/llmgateway/internal/router"
	"github.com/howard-nolan/llmgateway/internal/server"
)

func main() {
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	cat, err := catalog.FromFile(cfg.Catalog.Path)
	if err != nil {
		log.Fatalf("failed to load model catalog: %v", err)
	}
	resolver := catalog.NewResolver(cat).WithAliases(cfg.Catalog.Aliases)

	builder := router.NewBuilder(resolver)
	if cfg.Retry.MaxAttempts > 0 {
		builder.WithRetryPolicy(retry.Policy{
			MaxAttempts:     cfg.Retry.MaxAttempts,
			InitialDelay:    cfg.Retry.InitialDelay,
			MaxDelay:        cfg.Retry.MaxDelay,
			ExponentialBase: cfg.Retry.ExponentialBase,
			Jitter:          cfg.Retry.Jitter,
		})
	}

	registerProviders(builder, cfg)

	rt, err := builder.Build()
	if err != nil {
		log.Fatalf("failed to build router: %v", err)
	}

	// One Server per client-facing dialect the deployment wants to
	// accept requests in; all of them share the same Router, since model
	// resolution (not entry dialect) decides the upstream target.
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status":"ok"}`)
	})
	for _, target := range []capabilities.ProviderFormat{
		capabilities.FormatOpenAIChat,
		capabilities.FormatAnthropic,
		capabilities.FormatGoogle,
	} {
		srv := server.New(rt, target)
		mux.Handle(requestPrefix(target), srv)
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	log.Printf("llmgateway listening on :%d", cfg.Server.Port)

	if err := httpServer.ListenAndServe(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// requestPrefix picks the mux prefix each dialect Server is mounted
// under; distinct dialects never collide because each owns its own
// client-facing URL shape.
func requestPrefix(target capabilities.ProviderFormat) string {
	switch target {
	case capabilities.FormatAnthropic:
		return "/v1/messages"
	case capabilities.FormatGoogle:
		return "/v1beta/"
	default:
		return "/v1/chat/completions"
	}
}

// registerProviders wires auth and endpoints for every provider entry in
// the config, keyed by the same alias catalog.FormatIdentifier produces
// (openai, anthropic, google, mistral, bedrock, vertex).
func registerProviders(b *router.Builder, cfg *config.Config) {
	awsRegion := "us-east-1"
	vertexBaseURL := ""
	if p, ok := cfg.Providers["bedrock"]; ok && p.AWSRegion != "" {
		awsRegion = p.AWSRegion
	}
	if p, ok := cfg.Providers["vertex"]; ok && p.VertexBaseURL != "" {
		vertexBaseURL = p.VertexBaseURL
	}

	for _, ep := range router.StandardEndpoints(awsRegion, vertexBaseURL) {
		b.WithEndpoint(ep)
	}

	for alias, p := range cfg.Providers {
		b.WithAuth(alias, authConfigFor(alias, p))
	}
}

// authConfigFor builds the AuthConfig variant appropriate for alias from
// its ProviderConfig. Bedrock-fronted providers sign with AWS SigV4;
// everything else forwards a bearer/API-key header.
func authConfigFor(alias string, p config.ProviderConfig) *auth.Config {
	if alias == "bedrock" {
		return auth.NewAWSSignatureV4(p.AWSAccessKey, p.AWSSecretKey, p.AWSSessionToken, p.AWSRegion, "bedrock")
	}

	switch alias {
	case "anthropic", "vertex":
		header := p.AuthHeader
		if header == "" {
			header = "x-api-key"
		}
		return auth.NewCustom(map[string]string{header: p.APIKey})
	case "google":
		// The v1beta REST API accepts the key as either a ?key= query
		// param or this header; the header keeps auth entirely inside
		// ApplyHeaders instead of leaking into endpoint path construction.
		return auth.NewCustom(map[string]string{"x-goog-api-key": p.APIKey})
	default:
		header := p.AuthHeader
		if header == "" {
			header = "Authorization"
		}
		prefix := p.AuthPrefix
		if prefix == "" && header == "Authorization" {
			prefix = "Bearer"
		}
		return auth.NewAPIKey(p.APIKey, header, prefix)
	}
}
