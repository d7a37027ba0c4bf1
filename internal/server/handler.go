package server

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/howard-nolan/llmgateway/internal/gwerrors"
)

// handleHealth responds with a simple JSON status indicating the server
// is alive.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
	})
}

// requestEnvelope peeks at the two fields handleComplete needs before
// handing the full body to the router: which model to resolve, and
// whether the caller asked for a stream. Every supported dialect uses
// these exact field names, so one struct covers all of them.
type requestEnvelope struct {
	Model  string `json:"model"`
	Stream bool   `json:"stream"`
}

// handleComplete handles POST requests against this server's dialect
// entry point. It decodes just enough of the body to find the model and
// stream flag, then hands the full, still-untransformed body to the
// Router, which resolves the model, converts dialects via C10, and
// dispatches upstream.
func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	var env requestEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	// Gemini's REST API carries the model and the streaming verb in the
	// URL rather than the body; every other dialect's client puts both
	// in the body itself.
	model := env.Model
	stream := env.Stream
	if urlModel := chi.URLParam(r, "model"); urlModel != "" {
		model = urlModel
		stream = strings.HasSuffix(r.URL.Path, ":streamGenerateContent")
	}

	w.Header().Set("X-LLMGateway-Model", model)

	if stream {
		s.handleCompleteStream(w, r, body, model)
		return
	}

	respBody, respHeaders, err := s.rt.Complete(r.Context(), body, model, r.Header)
	if err != nil {
		log.Printf("complete error: %v", err)
		writeUpstreamOrClassifiedError(w, err)
		return
	}

	if ct := respHeaders.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	} else {
		w.Header().Set("Content-Type", "application/json")
	}
	w.Write(respBody)
}

func readBody(r *http.Request) ([]byte, error) {
	defer r.Body.Close()
	return io.ReadAll(r.Body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeUpstreamOrClassifiedError maps a Router error to an HTTP status
// per spec §7's classification, forwarding the original upstream status
// and body verbatim when one is available so clients see the provider's
// own error shape rather than a gateway-invented one.
func writeUpstreamOrClassifiedError(w http.ResponseWriter, err error) {
	var pe *gwerrors.ProviderError
	if errors.As(err, &pe) && pe.HTTP != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(pe.HTTP.Status)
		w.Write([]byte(pe.HTTP.Body))
		return
	}

	switch {
	case gwerrors.IsClientError(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case gwerrors.IsAuthError(err):
		writeError(w, http.StatusUnauthorized, err.Error())
	default:
		writeError(w, http.StatusBadGateway, err.Error())
	}
}
