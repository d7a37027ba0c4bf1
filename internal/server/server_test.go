package server

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/howard-nolan/llmgateway/internal/auth"
	"github.com/howard-nolan/llmgateway/internal/capabilities"
	"github.com/howard-nolan/llmgateway/internal/catalog"
	"github.com/howard-nolan/llmgateway/internal/router"
)

func testRouter(t *testing.T, upstreamURL string) *router.Router {
	t.Helper()
	cat := catalog.Empty()
	cat.Insert("gpt-4o", catalog.ModelSpec{Format: capabilities.FormatOpenAIChat, Flavor: catalog.FlavorChat, SupportsStreaming: true})
	resolver := catalog.NewResolver(cat)

	rt, err := router.NewBuilder(resolver).
		WithEndpoint(&router.Endpoint{ID: "openai", Format: capabilities.FormatOpenAIChat, BaseURL: upstreamURL, Path: router.FixedPath("/v1/chat/completions")}).
		WithAuth("openai", auth.NewAPIKey("test-key", "Authorization", "Bearer")).
		Build()
	require.NoError(t, err)
	return rt
}

func TestHandleHealth(t *testing.T) {
	s := New(testRouter(t, "http://example.invalid"), capabilities.FormatOpenAIChat)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestHandleCompleteForwardsToUpstream(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"chatcmpl-1","object":"chat.completion","model":"gpt-4o","choices":[{"index":0,"message":{"role":"assistant","content":"hi"},"finish_reason":"stop"}]}`))
	}))
	defer upstream.Close()

	s := New(testRouter(t, upstream.URL), capabilities.FormatOpenAIChat)

	body := []byte(`{"model":"gpt-4o","messages":[{"role":"user","content":"hi"}]}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "chatcmpl-1")
	assert.Equal(t, "gpt-4o", rec.Header().Get("X-LLMGateway-Model"))
}

func TestHandleCompleteBadJSON(t *testing.T) {
	s := New(testRouter(t, "http://example.invalid"), capabilities.FormatOpenAIChat)

	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", bytes.NewReader([]byte("not json")))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequestPathsGoogleHasTwoRoutes(t *testing.T) {
	paths := requestPaths(capabilities.FormatGoogle)
	assert.ElementsMatch(t, []string{
		"/v1beta/models/{model}:generateContent",
		"/v1beta/models/{model}:streamGenerateContent",
	}, paths)
}

func TestRequestPathsAnthropic(t *testing.T) {
	assert.Equal(t, []string{"/v1/messages"}, requestPaths(capabilities.FormatAnthropic))
}
