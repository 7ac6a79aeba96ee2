package genai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"
)

// ErrorKind classifies a provider-call failure. Each kind maps to a distinct
// user-facing error code; callers switch on the kind rather than on error
// types.
type ErrorKind string

const (
	KindAuthentication ErrorKind = "authentication"
	KindRateLimited    ErrorKind = "rate_limited"
	KindInvalidRequest ErrorKind = "invalid_request"
	KindServerError    ErrorKind = "server_error"
	KindTimeout        ErrorKind = "timeout"
	KindNetwork        ErrorKind = "network"
	KindParse          ErrorKind = "parse"
	// KindCanceled marks a call the caller abandoned, as distinct from a
	// provider-side failure.
	KindCanceled ErrorKind = "canceled"
)

// ProviderError is the typed failure surfaced by the generation client.
type ProviderError struct {
	Kind       ErrorKind
	Message    string
	StatusCode int
	// RetryAfter carries the provider's rate-limit hint when present.
	RetryAfter time.Duration
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("generation provider: %s (status %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("generation provider: %s: %s", e.Kind, e.Message)
}

// Retryable reports whether the failure class is transient. Authentication,
// rate-limit, invalid-request and parse failures propagate immediately.
func (e *ProviderError) Retryable() bool {
	switch e.Kind {
	case KindTimeout, KindNetwork, KindServerError:
		return true
	default:
		return false
	}
}

// AsProviderError unwraps err into a *ProviderError when possible.
func AsProviderError(err error) (*ProviderError, bool) {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// WrapUnexpected coerces an unclassified error into the parse category so the
// orchestrator always records and re-raises a typed failure.
func WrapUnexpected(err error) *ProviderError {
	if pe, ok := AsProviderError(err); ok {
		return pe
	}
	return &ProviderError{Kind: KindParse, Message: err.Error()}
}

// classifyStatus maps a non-200 provider status to a failure kind.
func classifyStatus(status int) ErrorKind {
	switch {
	case status == 401:
		return KindAuthentication
	case status == 429:
		return KindRateLimited
	case status == 400:
		return KindInvalidRequest
	case status >= 500:
		return KindServerError
	default:
		return KindInvalidRequest
	}
}

// classifyTransport maps an http.Client transport error to canceled, timeout
// or network.
func classifyTransport(err error) *ProviderError {
	if errors.Is(err, context.Canceled) {
		return &ProviderError{Kind: KindCanceled, Message: err.Error()}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &ProviderError{Kind: KindTimeout, Message: err.Error()}
	}
	var ue *url.Error
	if errors.As(err, &ue) && ue.Timeout() {
		return &ProviderError{Kind: KindTimeout, Message: err.Error()}
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return &ProviderError{Kind: KindTimeout, Message: err.Error()}
	}
	return &ProviderError{Kind: KindNetwork, Message: err.Error()}
}
