// Package router implements the C8 Router: the façade that resolves a
// model name to a provider dialect, transforms the caller's body through
// C10, dispatches the upstream HTTP call with auth applied, and retries
// per C7's policy. Grounded on the teacher's provider dispatch
// (resolveProvider/models map in server/handler.go) generalized from a
// map[model]Provider to a full builder that also owns auth, retry, and
// header filtering.
package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/howard-nolan/llmgateway/internal/auth"
	"github.com/howard-nolan/llmgateway/internal/capabilities"
	"github.com/howard-nolan/llmgateway/internal/catalog"
	"github.com/howard-nolan/llmgateway/internal/gwerrors"
	"github.com/howard-nolan/llmgateway/internal/provider"
	"github.com/howard-nolan/llmgateway/internal/retry"
	"github.com/howard-nolan/llmgateway/internal/streamcodec"
	"github.com/howard-nolan/llmgateway/internal/transform"
)

// blockedHeaderPrefixes and blockedHeaders implement spec §4.5's header
// forwarding filter.
var blockedHeaderPrefixes = []string{"x-amzn", "x-bt", "sec-", "cf-"}

var blockedHeaders = map[string]bool{
	"authorization": true, "api-key": true, "x-api-key": true, "x-auth-token": true,
	"content-length": true, "origin": true, "priority": true, "referer": true,
	"user-agent": true, "cache-control": true, "accept-encoding": true,
	"x-forwarded-for": true, "x-forwarded-proto": true, "x-forwarded-host": true,
	"x-real-ip": true, "host": true,
}

// FilterClientHeaders returns the subset of in that is safe to forward
// upstream, lowercased, per the blocked-prefix/exact-match lists.
func FilterClientHeaders(in http.Header) http.Header {
	out := make(http.Header)
	for name, values := range in {
		lower := strings.ToLower(name)
		if blockedHeaders[lower] {
			continue
		}
		blocked := false
		for _, prefix := range blockedHeaderPrefixes {
			if strings.HasPrefix(lower, prefix) {
				blocked = true
				break
			}
		}
		if blocked {
			continue
		}
		out[lower] = values
	}
	return out
}

// Router dispatches a resolved, transformed request to the right
// upstream and retries per policy. Once Build()'t, it is immutable and
// safe for concurrent use.
type Router struct {
	resolver    *catalog.Resolver
	adapters    *provider.Registry
	transformer *transform.Transformer
	endpoints   map[capabilities.ProviderFormat]*Endpoint
	authByID    map[string]*auth.Config
	retryPolicy retry.Policy
	httpClient  *http.Client
}

// Complete implements spec §4.5's complete(): resolve the model, transform
// the body to the target dialect, apply auth, and run the retry loop.
func (r *Router) Complete(ctx context.Context, body []byte, model string, clientHeaders http.Header) ([]byte, http.Header, error) {
	target, providerAlias, err := r.resolveTarget(body, model)
	if err != nil {
		return nil, nil, err
	}

	payload, err := r.transformBody(body, target)
	if err != nil {
		return nil, nil, err
	}

	endpoint, authCfg, err := r.resolveEndpoint(target, providerAlias)
	if err != nil {
		return nil, nil, err
	}

	strategy := r.retryPolicy.Strategy()
	for {
		respBody, respHeaders, err := r.doRequest(ctx, endpoint, authCfg, payload, model, false, clientHeaders)
		if err == nil {
			return respBody, respHeaders, nil
		}
		delay, ok := strategy.NextDelay(err)
		if !ok {
			return nil, nil, err
		}
		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		case <-time.After(delay):
		}
	}
}

// StreamChunk is one decoded frame of an upstream stream: the payload
// bytes in the upstream dialect's own wire shape, not converted to the
// caller's dialect. Err set (with
// Done true) means the stream ended abnormally; the channel is closed in
// either case.
type StreamChunk struct {
	Bytes []byte
	Err   error
	Done  bool
}

// CompleteStream implements complete_stream(): resolve and transform the
// request exactly like Complete, retry the initial connection attempt per
// policy, then hand the now-open response body to a goroutine that decodes
// its wire framing and feeds StreamChunks back over an unbuffered channel
// — the same shape as the teacher's ChatCompletionStream, generalized from
// Gemini's fixed SSE scanner to any dialect's streamcodec decoder.
func (r *Router) CompleteStream(ctx context.Context, body []byte, model string, clientHeaders http.Header) (<-chan StreamChunk, error) {
	target, providerAlias, err := r.resolveTarget(body, model)
	if err != nil {
		return nil, err
	}

	payload, err := r.transformBody(body, target)
	if err != nil {
		return nil, err
	}

	endpoint, authCfg, err := r.resolveEndpoint(target, providerAlias)
	if err != nil {
		return nil, err
	}

	var resp *http.Response
	strategy := r.retryPolicy.Strategy()
	for {
		req, buildErr := r.buildRequest(ctx, endpoint, authCfg, payload, model, true, clientHeaders)
		if buildErr != nil {
			return nil, buildErr
		}

		candidate, doErr := r.httpClient.Do(req)
		if doErr != nil {
			err = &gwerrors.NetworkError{Source: doErr}
		} else if candidate.StatusCode >= 400 {
			errBody, _ := io.ReadAll(candidate.Body)
			candidate.Body.Close()
			err = upstreamError(endpoint.ID, candidate, errBody)
		} else {
			resp = candidate
			break
		}

		delay, ok := strategy.NextDelay(err)
		if !ok {
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	ch := make(chan StreamChunk)
	go func() {
		defer close(ch)
		defer resp.Body.Close()

		pumpErr := r.pumpStream(resp.Body, target, func(frame []byte) error {
			select {
			case ch <- StreamChunk{Bytes: frame}:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		if pumpErr != nil {
			select {
			case ch <- StreamChunk{Err: pumpErr, Done: true}:
			case <-ctx.Done():
			}
		}
	}()

	return ch, nil
}

func (r *Router) resolveTarget(body []byte, model string) (capabilities.ProviderFormat, string, error) {
	if _, format, alias, err := r.resolver.Resolve(model); err == nil {
		return format, alias, nil
	}
	var v map[string]any
	if err := json.Unmarshal(body, &v); err == nil {
		if format, ok := capabilities.Detect(v); ok {
			return format, catalog.FormatIdentifier(format), nil
		}
	}
	return "", "", &gwerrors.UnknownModelError{Model: model}
}

func (r *Router) transformBody(body []byte, target capabilities.ProviderFormat) ([]byte, error) {
	result, err := r.transformer.TransformRequest(body, target)
	if err != nil {
		return nil, err
	}
	return result.Bytes, nil
}

func (r *Router) resolveEndpoint(target capabilities.ProviderFormat, providerAlias string) (*Endpoint, *auth.Config, error) {
	endpoint, ok := r.endpoints[target]
	if !ok {
		return nil, nil, &gwerrors.NoProviderError{Format: target}
	}
	authCfg, ok := r.authByID[providerAlias]
	if !ok {
		return nil, nil, &gwerrors.NoAuthError{ProviderID: providerAlias}
	}
	return endpoint, authCfg, nil
}

func (r *Router) buildRequest(ctx context.Context, ep *Endpoint, authCfg *auth.Config, payload []byte, model string, stream bool, clientHeaders http.Header) (*http.Request, error) {
	url := ep.BaseURL + ep.Path(model, stream)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, &gwerrors.NetworkError{Source: err}
	}
	req.Header.Set("Content-Type", "application/json")
	for name, values := range FilterClientHeaders(clientHeaders) {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}
	if err := authCfg.ApplyHeaders(req.Header); err != nil {
		return nil, err
	}
	if ep.SigV4Region != "" || ep.SigV4Service != "" {
		if err := signSigV4(ctx, authCfg, ep, payload, req); err != nil {
			return nil, &gwerrors.AuthError{Reason: err.Error()}
		}
	}
	return req, nil
}

func (r *Router) doRequest(ctx context.Context, ep *Endpoint, authCfg *auth.Config, payload []byte, model string, stream bool, clientHeaders http.Header) ([]byte, http.Header, error) {
	req, err := r.buildRequest(ctx, ep, authCfg, payload, model, stream, clientHeaders)
	if err != nil {
		return nil, nil, err
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, nil, &gwerrors.NetworkError{Source: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, &gwerrors.NetworkError{Source: err}
	}

	if resp.StatusCode >= 400 {
		return nil, nil, upstreamError(ep.ID, resp, respBody)
	}

	return respBody, resp.Header, nil
}

// pumpStream decodes the raw wire framing for the given dialect (SSE
// for everything except the AWS dialects, binary event-stream for
// Converse/InvokeModelWithResponseStream) and forwards each decoded
// frame's payload unchanged — no transform_stream_chunk step runs here or
// in the server layer — mirroring the teacher's channel-fed SSE writer
// generalized to raw bytes instead of a fixed shape.
func (r *Router) pumpStream(body io.Reader, target capabilities.ProviderFormat, onChunk func([]byte) error) error {
	isAWS := target == capabilities.FormatBedrockConverse || target == capabilities.FormatBedrockAnthropic

	buf := make([]byte, 4096)
	if isAWS {
		dec := streamcodec.NewAWSEventDecoder()
		for {
			n, err := body.Read(buf)
			if n > 0 {
				events, decErr := dec.Feed(buf[:n])
				if decErr != nil {
					return decErr
				}
				for _, ev := range events {
					if err := onChunk(ev.Payload); err != nil {
						return err
					}
				}
			}
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return &gwerrors.NetworkError{Source: err}
			}
		}
	}

	dec := streamcodec.NewSSEDecoder()
	for {
		n, err := body.Read(buf)
		if n > 0 {
			events, decErr := dec.Feed(buf[:n])
			if decErr != nil {
				return decErr
			}
			for _, ev := range events {
				if ev.Done {
					return nil
				}
				if err := onChunk(ev.Payload); err != nil {
					return err
				}
			}
		}
		if err == io.EOF {
			events, flushErr := dec.Flush()
			if flushErr != nil {
				return flushErr
			}
			for _, ev := range events {
				if ev.Done {
					return nil
				}
				if err := onChunk(ev.Payload); err != nil {
					return err
				}
			}
			return nil
		}
		if err != nil {
			return &gwerrors.NetworkError{Source: err}
		}
	}
}

func upstreamError(providerID string, resp *http.Response, body []byte) error {
	httpErr := &gwerrors.UpstreamHTTPError{
		Status:  resp.StatusCode,
		Headers: map[string][]string(resp.Header),
		Body:    string(body),
	}
	// RetryAfter is only set when the upstream actually sent a Retry-After
	// header; leaving it nil for an ordinary 5xx lets IsRetryable's
	// Status >= 500 branch make the error retryable while NextDelay still
	// computes the exponential-backoff-with-jitter delay, instead of
	// short-circuiting to a fabricated ~0 delay.
	var retryAfter *time.Duration
	if ra := resp.Header.Get("Retry-After"); ra != "" {
		if d, ok := parseRetryAfter(ra); ok {
			retryAfter = &d
		}
	}
	return &gwerrors.ProviderError{
		Provider:   providerID,
		Source:     fmt.Errorf("upstream returned %d", resp.StatusCode),
		RetryAfter: retryAfter,
		HTTP:       httpErr,
	}
}

func parseRetryAfter(v string) (time.Duration, bool) {
	if secs, ok := parseIntSeconds(v); ok {
		return time.Duration(secs) * time.Second, true
	}
	if t, err := http.ParseTime(v); err == nil {
		d := time.Until(t)
		if d < 0 {
			d = 0
		}
		return d, true
	}
	return 0, false
}

func parseIntSeconds(v string) (int, bool) {
	n := 0
	if v == "" {
		return 0, false
	}
	for _, c := range v {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}
