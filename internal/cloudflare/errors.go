package cloudflare

import (
	"errors"
	"fmt"
)

// ErrRecordGone is returned when a delete targets a record the provider no
// longer has. Callers treat it as idempotent success.
var ErrRecordGone = errors.New("DNS record not found at provider")

// AuthError indicates a bad or revoked credential. Never retried.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("cloudflare auth error: %s", e.Message)
}

// ProviderError indicates a non-2xx or success=false API response.
type ProviderError struct {
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("cloudflare API error (status %d): %s", e.StatusCode, e.Message)
}

// NetworkError indicates a transport failure or timeout.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("cloudflare network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsAuthError reports whether err is a credential failure
func IsAuthError(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

// IsRetryable reports whether err is transient and worth retrying.
// Auth failures and 4xx provider responses are not retryable.
func IsRetryable(err error) bool {
	var ne *NetworkError
	if errors.As(err, &ne) {
		return true
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.StatusCode >= 500 || pe.StatusCode == 0
	}
	return false
}
