package llm

import (
	"errors"
	"fmt"
)

// ErrUnavailable indicates the backend could not be reached at all — DNS
// failure, connection refused, timeout. The in-progress documentation run is
// expected to abort when this surfaces.
var ErrUnavailable = errors.New("provider unavailable")

// ErrEmptyResponse indicates the backend answered successfully but the
// response carried no reply text in the expected field.
var ErrEmptyResponse = errors.New("empty response from provider")

// ProviderError is returned when the backend responds with a non-success
// status. The status code and response body are preserved so callers can
// report the underlying cause verbatim.
type ProviderError struct {
	// Provider is the backend name (e.g., "ollama", "openai").
	Provider string

	// StatusCode is the HTTP status returned by the backend.
	StatusCode int

	// Body is the raw response body, possibly truncated by the backend client.
	Body string
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Provider, e.StatusCode, e.Body)
}
