// Package server sets up the HTTP router, middleware, and request handlers.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/howard-nolan/llmgateway/internal/capabilities"
	"github.com/howard-nolan/llmgateway/internal/router"
)

// Server holds the HTTP router and all dependencies that handlers need.
type Server struct {
	chi chi.Router
	rt  *router.Router

	// target is the dialect this server's routes accept and emit bodies
	// in — one Server per dialect entry point, mirroring spec §4.1's "N
	// entry points, one per supported client-facing format".
	target capabilities.ProviderFormat
}

// New creates a Server whose /v1/chat/completions-equivalent endpoint
// speaks target's wire format, wires up routes and middleware, and
// returns it ready to use as an http.Handler.
func New(rt *router.Router, target capabilities.ProviderFormat) *Server {
	s := &Server{rt: rt, target: target}
	s.routes()
	return s
}

// routes builds the chi router with all middleware and route definitions.
func (s *Server) routes() {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	for _, path := range requestPaths(s.target) {
		r.Post(path, s.handleComplete)
	}

	s.chi = r
}

// requestPaths returns the client-facing path(s) each dialect's own SDKs
// expect, so a client pointed at this gateway needs no URL rewriting
// beyond the host. Gemini embeds both the model and the verb
// (generateContent/streamGenerateContent) in the path itself, so it
// needs two route patterns where every other dialect needs one.
func requestPaths(target capabilities.ProviderFormat) []string {
	switch target {
	case capabilities.FormatAnthropic, capabilities.FormatBedrockAnthropic, capabilities.FormatVertexAnthropic:
		return []string{"/v1/messages"}
	case capabilities.FormatOpenAIResponses:
		return []string{"/v1/responses"}
	case capabilities.FormatGoogle:
		return []string{
			"/v1beta/models/{model}:generateContent",
			"/v1beta/models/{model}:streamGenerateContent",
		}
	default:
		return []string{"/v1/chat/completions"}
	}
}

// ServeHTTP makes Server satisfy the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.chi.ServeHTTP(w, r)
}
