// Package mock provides a test double for the llm.Provider interface.
//
// Use Provider in unit tests to verify that pipelines send correct prompts
// and to feed controlled responses without a live backend. All fields are
// safe to set before calling any method; mutating them during a concurrent
// call is the caller's responsibility.
//
// Example:
//
//	p := &mock.Provider{Responses: []string{"authorization"}}
//	text, err := p.Generate(ctx, sys, user)
package mock

import (
	"context"
	"sync"

	"github.com/MrWong99/soapscribe/pkg/provider/llm"
)

// Ensure Provider implements the llm.Provider interface at compile time.
var _ llm.Provider = (*Provider)(nil)

// GenerateCall records a single invocation of Generate.
type GenerateCall struct {
	// SystemPrompt is the system prompt passed to Generate.
	SystemPrompt string
	// UserPrompt is the user prompt passed to Generate.
	UserPrompt string
}

// Provider is a mock implementation of llm.Provider.
//
// Responses are consumed in order, one per Generate call; when the script is
// exhausted the last entry repeats. GenerateFunc, when set, takes precedence
// over Responses and receives the call index. Set Err to fail every call.
type Provider struct {
	mu sync.Mutex

	// --- Configurable behaviour ---

	// Responses is the scripted sequence of reply texts.
	Responses []string

	// GenerateFunc, when non-nil, computes the reply for each call. The index
	// is the zero-based call number.
	GenerateFunc func(index int, systemPrompt, userPrompt string) (string, error)

	// Err, if non-nil, is returned from every Generate call.
	Err error

	// Available is returned by CheckAvailability.
	Available bool

	// ModelReady is returned by CheckModelReady.
	ModelReady bool

	// --- Call records (read after test) ---

	// Calls records every invocation of Generate in order.
	Calls []GenerateCall

	// ReadyChecks records every model id passed to CheckModelReady.
	ReadyChecks []string
}

// Generate implements llm.Provider.
func (p *Provider) Generate(_ context.Context, systemPrompt, userPrompt string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	idx := len(p.Calls)
	p.Calls = append(p.Calls, GenerateCall{SystemPrompt: systemPrompt, UserPrompt: userPrompt})

	if p.Err != nil {
		return "", p.Err
	}
	if p.GenerateFunc != nil {
		return p.GenerateFunc(idx, systemPrompt, userPrompt)
	}
	if len(p.Responses) == 0 {
		return "", nil
	}
	if idx >= len(p.Responses) {
		idx = len(p.Responses) - 1
	}
	return p.Responses[idx], nil
}

// CheckAvailability implements llm.Provider.
func (p *Provider) CheckAvailability(context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Available
}

// CheckModelReady implements llm.Provider.
func (p *Provider) CheckModelReady(_ context.Context, model string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ReadyChecks = append(p.ReadyChecks, model)
	return p.ModelReady
}
