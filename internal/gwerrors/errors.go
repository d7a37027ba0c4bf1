// Package gwerrors implements the typed error taxonomy of spec §4.11/§7:
// client, auth, upstream, transient(retryable), and fatal errors, each
// exposing the same classifier methods the Rust original's thiserror enum
// does, as plain Go methods.
package gwerrors

import (
	"errors"
	"fmt"
	"time"

	"github.com/howard-nolan/llmgateway/internal/capabilities"
)

// UpstreamHTTPError preserves the original status, headers, and body of a
// failed upstream call so the router's caller can forward it faithfully.
type UpstreamHTTPError struct {
	Status  int
	Headers map[string][]string
	Body    string
}

func (e *UpstreamHTTPError) Error() string {
	return fmt.Sprintf("upstream http %d: %s", e.Status, e.Body)
}

// UnknownModelError: no catalog entry resolves the requested model.
type UnknownModelError struct{ Model string }

func (e *UnknownModelError) Error() string { return fmt.Sprintf("unknown model %q", e.Model) }

// NoProviderError: no Provider is registered for a resolved format.
type NoProviderError struct{ Format capabilities.ProviderFormat }

func (e *NoProviderError) Error() string {
	return fmt.Sprintf("no provider registered for format %q", e.Format)
}

// NoAuthError: no AuthConfig is registered for a provider id.
type NoAuthError struct{ ProviderID string }

func (e *NoAuthError) Error() string {
	return fmt.Sprintf("no authentication configured for provider %q", e.ProviderID)
}

// ProviderError wraps a failed upstream call attempt, optionally carrying
// RetryAfter (parsed from the upstream's Retry-After header) and the full
// HTTP detail for pass-through to the caller.
type ProviderError struct {
	Provider   string
	Source     error
	RetryAfter *time.Duration
	HTTP       *UpstreamHTTPError
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %q error: %v", e.Provider, e.Source)
}

func (e *ProviderError) Unwrap() error { return e.Source }

// InvalidRequestError: the caller's request body is malformed or fails
// validation before any upstream call is attempted.
type InvalidRequestError struct{ Reason string }

func (e *InvalidRequestError) Error() string { return fmt.Sprintf("invalid request: %s", e.Reason) }

// TransformError wraps the C10 façade's failure modes (spec §4.11).
type TransformErrorKind string

const (
	TransformUnableToDetectFormat   TransformErrorKind = "unable_to_detect_format"
	TransformValidationFailed       TransformErrorKind = "validation_failed"
	TransformDeserializationFailed  TransformErrorKind = "deserialization_failed"
	TransformSerializationFailed    TransformErrorKind = "serialization_failed"
	TransformToUniversalFailed      TransformErrorKind = "to_universal_failed"
	TransformFromUniversalFailed    TransformErrorKind = "from_universal_failed"
	TransformUnsupportedSourceFmt   TransformErrorKind = "unsupported_source_format"
	TransformUnsupportedTargetFmt   TransformErrorKind = "unsupported_target_format"
	TransformStreamingNotImplmented TransformErrorKind = "streaming_not_implemented"
)

type TransformError struct {
	Kind   TransformErrorKind
	Target capabilities.ProviderFormat
	Reason string
}

func (e *TransformError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("transform error (%s, target=%s): %s", e.Kind, e.Target, e.Reason)
	}
	return fmt.Sprintf("transform error (%s): %s", e.Kind, e.Reason)
}

// IsClientError reports whether this TransformError should surface as a
// 400 to the caller, matching error.rs's transform_error_classification.
func (e *TransformError) IsClientError() bool {
	switch e.Kind {
	case TransformUnableToDetectFormat, TransformValidationFailed,
		TransformDeserializationFailed, TransformUnsupportedSourceFmt,
		TransformUnsupportedTargetFmt:
		return true
	default:
		return false
	}
}

// AuthError: credential validation or header construction failed.
type AuthError struct{ Reason string }

func (e *AuthError) Error() string { return fmt.Sprintf("authentication error: %s", e.Reason) }

// ErrTimeout is returned when an attempt exceeds its deadline.
var ErrTimeout = errors.New("operation timed out")

// IsRetryable classifies err per spec §4.7/§7's retryable set: network
// timeouts/connect/send failures, HTTP 5xx, and any ProviderError carrying
// a RetryAfter.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTimeout) {
		return true
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		if pe.RetryAfter != nil {
			return true
		}
		if pe.HTTP != nil && pe.HTTP.Status >= 500 {
			return true
		}
	}
	var ne *NetworkError
	if errors.As(err, &ne) {
		return true
	}
	return false
}

// NetworkError wraps a transport-level failure (timeout, connect refused,
// DNS failure) that the retry policy always treats as transient.
type NetworkError struct{ Source error }

func (e *NetworkError) Error() string { return fmt.Sprintf("network error: %v", e.Source) }
func (e *NetworkError) Unwrap() error { return e.Source }

// IsClientError classifies err per spec §7: unknown model, no provider,
// invalid request, or a client-flavored TransformError.
func IsClientError(err error) bool {
	var um *UnknownModelError
	var np *NoProviderError
	var ir *InvalidRequestError
	var te *TransformError
	switch {
	case errors.As(err, &um), errors.As(err, &np), errors.As(err, &ir):
		return true
	case errors.As(err, &te):
		return te.IsClientError()
	default:
		return false
	}
}

// IsAuthError classifies err per spec §7: NoAuth or Auth.
func IsAuthError(err error) bool {
	var na *NoAuthError
	var ae *AuthError
	return errors.As(err, &na) || errors.As(err, &ae)
}

// IsUpstreamError reports whether err carries original upstream HTTP
// details that should be forwarded verbatim.
func IsUpstreamError(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.HTTP != nil
}

// RetryAfter extracts the Retry-After duration from err, if any.
func RetryAfter(err error) (time.Duration, bool) {
	var pe *ProviderError
	if errors.As(err, &pe) && pe.RetryAfter != nil {
		return *pe.RetryAfter, true
	}
	return 0, false
}
