// Package llm defines the Provider interface for text-generation backends.
//
// A provider wraps a remote or local model API (e.g., a hosted OpenAI-compatible
// completion endpoint or a local Ollama instance) and exposes a uniform
// system-prompt + user-prompt generation call, so the documentation pipelines
// never couple to any specific SDK or wire protocol.
//
// Implementors must be safe for concurrent use and must propagate context
// cancellation promptly on every network call.
package llm

import "context"

// Provider is the abstraction over any text-generation backend.
//
// Generate performs one blocking completion and returns the model's reply
// text. Providers do not retry internally: a failed call surfaces immediately
// so the caller can decide whether to re-run the whole job.
//
// Errors follow a small taxonomy (see errors.go):
//
//   - [ErrUnavailable] when the network call could not complete at all.
//   - [*ProviderError] when the backend answered with a non-success status;
//     the status code and response body are preserved.
//   - [ErrEmptyResponse] when a success response carries no reply text.
type Provider interface {
	// Generate sends systemPrompt and userPrompt to the model and returns the
	// full reply text. Returns an error if the request fails or ctx is
	// cancelled before the completion arrives.
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	// CheckAvailability is a lightweight liveness probe against the backend.
	// It reports whether the endpoint is reachable; it must never be used to
	// gate pipeline logic, only for status reporting.
	CheckAvailability(ctx context.Context) bool

	// CheckModelReady issues a trivial generation against the named model and
	// reports whether it completed. Like CheckAvailability, this is purely
	// informational.
	CheckModelReady(ctx context.Context, model string) bool
}
