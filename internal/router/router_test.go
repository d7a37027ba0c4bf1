package router

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/howard-nolan/llmgateway/internal/auth"
	"github.com/howard-nolan/llmgateway/internal/capabilities"
	"github.com/howard-nolan/llmgateway/internal/catalog"
	"github.com/howard-nolan/llmgateway/internal/gwerrors"
	"github.com/howard-nolan/llmgateway/internal/retry"
)

func testResolver(t *testing.T) *catalog.Resolver {
	t.Helper()
	cat := catalog.Empty()
	cat.Insert("gpt-4o", catalog.ModelSpec{Format: capabilities.FormatOpenAIChat, Flavor: catalog.FlavorChat, SupportsStreaming: true})
	return catalog.NewResolver(cat)
}

func TestFilterClientHeaders(t *testing.T) {
	in := http.Header{
		"Authorization":   {"Bearer secret"},
		"X-Amzn-Trace-Id": {"abc"},
		"Sec-Fetch-Mode":  {"cors"},
		"X-Request-Id":    {"keep-me"},
	}

	out := FilterClientHeaders(in)

	assert.Empty(t, out.Get("authorization"))
	assert.Empty(t, out.Get("x-amzn-trace-id"))
	assert.Empty(t, out.Get("sec-fetch-mode"))
	assert.Equal(t, "keep-me", out.Get("x-request-id"))
}

func TestRouterCompleteSuccess(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), `"gpt-4o"`)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"chatcmpl-1","object":"chat.completion","model":"gpt-4o","choices":[{"index":0,"message":{"role":"assistant","content":"hi"},"finish_reason":"stop"}]}`))
	}))
	defer upstream.Close()

	rt, err := NewBuilder(testResolver(t)).
		WithEndpoint(&Endpoint{ID: "openai", Format: capabilities.FormatOpenAIChat, BaseURL: upstream.URL, Path: FixedPath("/v1/chat/completions")}).
		WithAuth("openai", auth.NewAPIKey("test-key", "Authorization", "Bearer")).
		Build()
	require.NoError(t, err)

	body := []byte(`{"model":"gpt-4o","messages":[{"role":"user","content":"hi"}]}`)
	respBody, respHeaders, err := rt.Complete(context.Background(), body, "gpt-4o", http.Header{})
	require.NoError(t, err)

	assert.Equal(t, "application/json", respHeaders.Get("Content-Type"))
	assert.Contains(t, string(respBody), "chatcmpl-1")
}

func TestRouterCompleteUnknownModel(t *testing.T) {
	rt, err := NewBuilder(testResolver(t)).
		WithEndpoint(&Endpoint{ID: "openai", Format: capabilities.FormatOpenAIChat, BaseURL: "http://example.invalid", Path: FixedPath("/v1/chat/completions")}).
		WithAuth("openai", auth.NewAPIKey("test-key", "Authorization", "Bearer")).
		Build()
	require.NoError(t, err)

	body := []byte(`{"model":"no-such-model","messages":[]}`)
	_, _, err = rt.Complete(context.Background(), body, "no-such-model", http.Header{})
	assert.Error(t, err)
}

func TestRouterCompleteUpstreamErrorNotRetried(t *testing.T) {
	var calls int
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"bad request"}`))
	}))
	defer upstream.Close()

	rt, err := NewBuilder(testResolver(t)).
		WithEndpoint(&Endpoint{ID: "openai", Format: capabilities.FormatOpenAIChat, BaseURL: upstream.URL, Path: FixedPath("/v1/chat/completions")}).
		WithAuth("openai", auth.NewAPIKey("test-key", "Authorization", "Bearer")).
		WithRetryPolicy(retry.Policy{MaxAttempts: 3}).
		Build()
	require.NoError(t, err)

	body := []byte(`{"model":"gpt-4o","messages":[]}`)
	_, _, err = rt.Complete(context.Background(), body, "gpt-4o", http.Header{})
	assert.Error(t, err)
	assert.Equal(t, 1, calls, "a 4xx should not be retried")
}

func TestUpstreamError5xxNoRetryAfterHeaderUsesBackoff(t *testing.T) {
	resp := &http.Response{StatusCode: http.StatusBadGateway, Header: http.Header{}}
	err := upstreamError("openai", resp, []byte(`{"error":"bad gateway"}`))

	assert.True(t, gwerrors.IsRetryable(err), "a bare 5xx with no Retry-After must still be retryable")
	_, hasRetryAfter := gwerrors.RetryAfter(err)
	assert.False(t, hasRetryAfter, "no Retry-After header means none should be fabricated")

	strategy := retry.Policy{MaxAttempts: 3, InitialDelay: 200 * time.Millisecond, MaxDelay: 10 * time.Second, ExponentialBase: 2.0}.Strategy()
	delay, ok := strategy.NextDelay(err)
	require.True(t, ok)
	assert.GreaterOrEqual(t, delay, 200*time.Millisecond, "should fall through to the exponential-backoff calculation, not a ~0 fabricated delay")
}

func TestUpstreamError5xxWithRetryAfterHeaderHonorsIt(t *testing.T) {
	resp := &http.Response{StatusCode: http.StatusServiceUnavailable, Header: http.Header{"Retry-After": {"5"}}}
	err := upstreamError("openai", resp, nil)

	delay, ok := gwerrors.RetryAfter(err)
	require.True(t, ok)
	assert.Equal(t, 5*time.Second, delay)
}

func TestBuilderBuildMissingAuth(t *testing.T) {
	_, err := NewBuilder(testResolver(t)).
		WithEndpoint(&Endpoint{ID: "openai", Format: capabilities.FormatOpenAIChat, BaseURL: "http://example.invalid", Path: FixedPath("/v1/chat/completions")}).
		Build()
	assert.Error(t, err)
}

func TestRouterCompleteStreamSSE(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		writeSSE(w, `{"id":"1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"content":"hi"}}]}`)
		flusher.Flush()
		writeSSE(w, "[DONE]")
		flusher.Flush()
	}))
	defer upstream.Close()

	rt, err := NewBuilder(testResolver(t)).
		WithEndpoint(&Endpoint{ID: "openai", Format: capabilities.FormatOpenAIChat, BaseURL: upstream.URL, Path: FixedPath("/v1/chat/completions")}).
		WithAuth("openai", auth.NewAPIKey("test-key", "Authorization", "Bearer")).
		Build()
	require.NoError(t, err)

	body := []byte(`{"model":"gpt-4o","messages":[],"stream":true}`)
	chunks, err := rt.CompleteStream(context.Background(), body, "gpt-4o", http.Header{})
	require.NoError(t, err)

	var frames [][]byte
	for c := range chunks {
		require.NoError(t, c.Err)
		if len(c.Bytes) > 0 {
			frames = append(frames, c.Bytes)
		}
	}
	require.Len(t, frames, 1)
	assert.Contains(t, string(frames[0]), "chat.completion.chunk")
}

func writeSSE(w http.ResponseWriter, data string) {
	w.Write([]byte("data: " + data + "\n\n"))
}
