package server

import (
	"fmt"
	"log"
	"net/http"

	"github.com/howard-nolan/llmgateway/internal/capabilities"
)

// handleCompleteStream drives the Router's streaming path and forwards
// each chunk's payload to the client as a Server-Sent Event, exactly as
// the upstream provider sent it; payloads are not converted to s.target's
// dialect, so the client receives the upstream dialect's events.
func (s *Server) handleCompleteStream(w http.ResponseWriter, r *http.Request, body []byte, model string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported by response writer")
		return
	}

	chunks, err := s.rt.CompleteStream(r.Context(), body, model, r.Header)
	if err != nil {
		log.Printf("stream error: %v", err)
		writeUpstreamOrClassifiedError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	for chunk := range chunks {
		if chunk.Err != nil {
			log.Printf("stream error: %v", chunk.Err)
			// Headers and possibly earlier events are already on the
			// wire; SSE has no error frame, so the client observes the
			// stream end without a [DONE]/terminal event.
			return
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", chunk.Bytes); err != nil {
			log.Printf("writing SSE event: %v", err)
			return
		}
		flusher.Flush()
	}

	if usesDoneSentinel(s.target) {
		fmt.Fprint(w, "data: [DONE]\n\n")
		flusher.Flush()
	}
}

// usesDoneSentinel reports whether target's own SDKs expect the
// "data: [DONE]" sentinel event to terminate a stream — an OpenAI
// convention that Anthropic, Google, and the Bedrock dialects don't share.
func usesDoneSentinel(target capabilities.ProviderFormat) bool {
	switch target {
	case capabilities.FormatOpenAIChat, capabilities.FormatOpenAIResponses, capabilities.FormatMistral:
		return true
	default:
		return false
	}
}
