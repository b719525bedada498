// Package config provides the configuration schema and loader for the
// soapscribe server.
package config

// LogLevel controls log verbosity for the soapscribe server.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Config is the root configuration structure for soapscribe.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Provider ProviderEntry  `yaml:"provider"`
	Pipeline PipelineConfig `yaml:"pipeline"`
}

// ServerConfig holds network and logging settings for the soapscribe server.
type ServerConfig struct {
	// ListenAddr is the TCP address the server listens on (e.g., ":8080").
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`
}

// ProviderEntry selects and configures the text-generation provider backing
// every pipeline model call. The Name field picks the implementation; the
// rest is passed to its constructor.
type ProviderEntry struct {
	// Name selects the provider implementation (e.g., "ollama", "openai").
	Name string `yaml:"name"`

	// APIKey is the authentication key for the provider's API if any.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the provider's default API endpoint.
	// Leave empty to use the provider's built-in default.
	BaseURL string `yaml:"base_url"`

	// Model selects a specific model within the provider (e.g., "gpt-4o",
	// "llama3.1").
	Model string `yaml:"model"`

	// Options holds provider-specific configuration values not covered by the
	// standard fields above. Values may be strings, numbers, booleans, or
	// nested maps.
	Options map[string]any `yaml:"options"`
}

// PipelineConfig tunes the model calls shared by both documentation
// pipelines.
type PipelineConfig struct {
	// Temperature is the sampling temperature for every pipeline model call.
	// 0 means the provider default.
	Temperature float64 `yaml:"temperature"`

	// MaxTokens caps the response length of every pipeline model call.
	// 0 means the provider default.
	MaxTokens int `yaml:"max_tokens"`
}
