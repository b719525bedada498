// Package ollama provides a text-generation provider backed by a local
// Ollama server.
//
// Ollama (https://ollama.com) hosts local large language models. This package
// uses Ollama's native /api/chat endpoint with streaming disabled, so each
// Generate call maps to exactly one request/response pair. The server root
// endpoint serves as the liveness probe.
//
// Example usage:
//
//	p, err := ollama.New("", "llama3.1") // connects to http://localhost:11434
//	if err != nil {
//	    log.Fatal(err)
//	}
//	text, err := p.Generate(ctx, "You are a scribe.", transcript)
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/MrWong99/soapscribe/pkg/provider/llm"
)

// DefaultBaseURL is the default base URL for a locally running Ollama instance.
const DefaultBaseURL = "http://localhost:11434"

// maxErrorBody caps how much of an error response body is retained in a
// [llm.ProviderError].
const maxErrorBody = 2048

// Ensure Provider implements the llm.Provider interface at compile time.
var _ llm.Provider = (*Provider)(nil)

// Provider implements llm.Provider using a local Ollama server.
// Provider is safe for concurrent use.
type Provider struct {
	baseURL    string
	model      string
	httpClient *http.Client

	temperature float64
	maxTokens   int
}

// config holds optional configuration collected from functional options.
type config struct {
	timeout     time.Duration
	temperature float64
	maxTokens   int
}

// Option is a functional option for Provider.
type Option func(*config)

// WithTimeout sets a per-request HTTP timeout on the underlying HTTP client.
// A zero or negative value means no timeout (the default).
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// WithTemperature sets the sampling temperature sent in the request options.
// Zero (the default) leaves the server default in place.
func WithTemperature(t float64) Option {
	return func(c *config) {
		c.temperature = t
	}
}

// WithMaxTokens caps the number of tokens the model may generate per call
// (Ollama's num_predict option). Zero means the server default.
func WithMaxTokens(n int) Option {
	return func(c *config) {
		c.maxTokens = n
	}
}

// New constructs a new Ollama Provider.
//
// baseURL is the base URL of the Ollama server (e.g., "http://localhost:11434").
// If empty, DefaultBaseURL is used. A trailing slash is stripped automatically.
//
// model is the Ollama model name used for generation (e.g., "llama3.1").
// It must not be empty.
func New(baseURL string, model string, opts ...Option) (*Provider, error) {
	if model == "" {
		return nil, fmt.Errorf("ollama: model must not be empty")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	// Strip trailing slash for consistent URL construction.
	baseURL = strings.TrimRight(baseURL, "/")

	cfg := &config{}
	for _, o := range opts {
		o(cfg)
	}

	httpClient := &http.Client{}
	if cfg.timeout > 0 {
		httpClient.Timeout = cfg.timeout
	}

	return &Provider{
		baseURL:     baseURL,
		model:       model,
		httpClient:  httpClient,
		temperature: cfg.temperature,
		maxTokens:   cfg.maxTokens,
	}, nil
}

// chatMessage is a single message in the /api/chat request body.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatOptions carries model sampling options for the /api/chat request.
type chatOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

// chatRequest is the JSON request body sent to Ollama's /api/chat endpoint.
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Options  chatOptions   `json:"options"`
	Stream   bool          `json:"stream"`
}

// chatResponse is the JSON response body returned by Ollama's /api/chat
// endpoint in non-streaming mode.
type chatResponse struct {
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
}

// Generate implements llm.Provider by sending one non-streaming /api/chat
// request to the Ollama server.
func (p *Provider) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	text, err := p.chat(ctx, p.model, systemPrompt, userPrompt)
	if err != nil {
		return "", fmt.Errorf("ollama: generate: %w", err)
	}
	return text, nil
}

// CheckAvailability implements llm.Provider with a GET against the server
// root. A running Ollama instance answers 200 with a short banner.
func (p *Provider) CheckAvailability(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/", nil)
	if err != nil {
		return false
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// CheckModelReady implements llm.Provider by issuing a trivial one-word
// generation against the named model and reporting whether it completed.
func (p *Provider) CheckModelReady(ctx context.Context, model string) bool {
	if model == "" {
		model = p.model
	}
	_, err := p.chat(ctx, model, "", "Reply with the single word: ready")
	return err == nil
}

// chat is the internal helper that sends a POST /api/chat request and
// returns the reply content. It maps failures onto the llm error taxonomy.
func (p *Provider) chat(ctx context.Context, model, systemPrompt, userPrompt string) (string, error) {
	msgs := make([]chatMessage, 0, 2)
	if systemPrompt != "" {
		msgs = append(msgs, chatMessage{Role: "system", Content: systemPrompt})
	}
	msgs = append(msgs, chatMessage{Role: "user", Content: userPrompt})

	body, err := json.Marshal(chatRequest{
		Model:    model,
		Messages: msgs,
		Options: chatOptions{
			Temperature: p.temperature,
			NumPredict:  p.maxTokens,
		},
		Stream: false,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", llm.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", &llm.ProviderError{
			Provider:   "ollama",
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(raw)),
		}
	}

	var result chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if result.Message.Content == "" {
		return "", llm.ErrEmptyResponse
	}
	return result.Message.Content, nil
}
