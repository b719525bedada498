// Package openai provides a text-generation provider backed by the OpenAI
// API or any OpenAI-compatible completion endpoint.
//
// Hosted gateways (OpenRouter, Together, vLLM, LM Studio, …) expose the same
// chat-completions wire contract, so pointing this provider at them via
// WithBaseURL is supported and common.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"

	"github.com/MrWong99/soapscribe/pkg/provider/llm"
)

// Ensure Provider implements the llm.Provider interface at compile time.
var _ llm.Provider = (*Provider)(nil)

// Provider implements llm.Provider using the OpenAI chat completions API.
type Provider struct {
	client oai.Client
	model  string

	temperature float64
	maxTokens   int
}

// config holds optional configuration for the provider.
type config struct {
	baseURL     string
	timeout     time.Duration
	temperature float64
	maxTokens   int
}

// Option is a functional option for Provider.
type Option func(*config)

// WithBaseURL overrides the default OpenAI API base URL. Use this to target
// any OpenAI-compatible endpoint.
func WithBaseURL(url string) Option {
	return func(c *config) {
		c.baseURL = url
	}
}

// WithTimeout sets a per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// WithTemperature sets the sampling temperature sent on every request.
// Zero (the default) omits the field so the provider default applies.
func WithTemperature(t float64) Option {
	return func(c *config) {
		c.temperature = t
	}
}

// WithMaxTokens caps the number of completion tokens per request.
// Zero means the provider default.
func WithMaxTokens(n int) Option {
	return func(c *config) {
		c.maxTokens = n
	}
}

// New constructs a new OpenAI-compatible Provider authenticated with the
// given bearer credential.
func New(apiKey string, model string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai: apiKey must not be empty")
	}
	if model == "" {
		return nil, fmt.Errorf("openai: model must not be empty")
	}

	cfg := &config{}
	for _, o := range opts {
		o(cfg)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}
	if cfg.timeout > 0 {
		reqOpts = append(reqOpts, option.WithHTTPClient(&http.Client{
			Timeout: cfg.timeout,
		}))
	}

	client := oai.NewClient(reqOpts...)
	return &Provider{
		client:      client,
		model:       model,
		temperature: cfg.temperature,
		maxTokens:   cfg.maxTokens,
	}, nil
}

// Generate implements llm.Provider.
func (p *Provider) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	text, err := p.complete(ctx, p.model, systemPrompt, userPrompt, p.maxTokens)
	if err != nil {
		return "", fmt.Errorf("openai: generate: %w", err)
	}
	return text, nil
}

// CheckAvailability implements llm.Provider by listing models — the cheapest
// authenticated round trip the chat-completions contract offers.
func (p *Provider) CheckAvailability(ctx context.Context) bool {
	_, err := p.client.Models.List(ctx)
	return err == nil
}

// CheckModelReady implements llm.Provider by issuing a trivial one-token
// generation against the named model.
func (p *Provider) CheckModelReady(ctx context.Context, model string) bool {
	if model == "" {
		model = p.model
	}
	_, err := p.complete(ctx, model, "", "Reply with the single word: ready", 8)
	return err == nil
}

// complete sends one chat completion request and maps failures onto the llm
// error taxonomy.
func (p *Provider) complete(ctx context.Context, model, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	var messages []oai.ChatCompletionMessageParamUnion
	if systemPrompt != "" {
		messages = append(messages, oai.SystemMessage(systemPrompt))
	}
	messages = append(messages, oai.UserMessage(userPrompt))

	params := oai.ChatCompletionNewParams{
		Model:    shared.ChatModel(model),
		Messages: messages,
	}
	if p.temperature != 0 {
		params.Temperature = param.NewOpt(p.temperature)
	}
	if maxTokens > 0 {
		params.MaxCompletionTokens = param.NewOpt(int64(maxTokens))
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *oai.Error
		if errors.As(err, &apiErr) {
			return "", &llm.ProviderError{
				Provider:   "openai",
				StatusCode: apiErr.StatusCode,
				Body:       apiErr.Error(),
			}
		}
		return "", fmt.Errorf("%w: %v", llm.ErrUnavailable, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", llm.ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}
