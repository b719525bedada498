package config_test

import (
	"strings"
	"testing"

	"github.com/MrWong99/soapscribe/internal/config"
)

const validYAML = `
server:
  listen_addr: ":9090"
  log_level: debug
provider:
  name: ollama
  base_url: "http://localhost:11434"
  model: llama3.1
pipeline:
  temperature: 0.2
  max_tokens: 1024
`

func TestLoadFromReader_ValidConfig(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadFromReader(strings.NewReader(validYAML))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}

	if cfg.Server.ListenAddr != ":9090" {
		t.Errorf("ListenAddr = %q", cfg.Server.ListenAddr)
	}
	if cfg.Server.LogLevel != config.LogDebug {
		t.Errorf("LogLevel = %q", cfg.Server.LogLevel)
	}
	if cfg.Provider.Name != "ollama" || cfg.Provider.Model != "llama3.1" {
		t.Errorf("Provider = %+v", cfg.Provider)
	}
	if cfg.Pipeline.Temperature != 0.2 || cfg.Pipeline.MaxTokens != 1024 {
		t.Errorf("Pipeline = %+v", cfg.Pipeline)
	}
}

func TestLoadFromReader_UnknownFieldRejected(t *testing.T) {
	t.Parallel()

	_, err := config.LoadFromReader(strings.NewReader(`
provider:
  name: ollama
  model: llama3.1
  modle_typo: oops
`))
	if err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestValidate_CollectsAllFailures(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{}
	cfg.Server.LogLevel = "loud"
	cfg.Pipeline.Temperature = 3.5
	cfg.Pipeline.MaxTokens = -1

	err := config.Validate(cfg)
	if err == nil {
		t.Fatal("expected validation errors")
	}

	for _, want := range []string{
		"server.log_level",
		"provider.name is required",
		"provider.model is required",
		"pipeline.temperature",
		"pipeline.max_tokens",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err, want)
		}
	}
}

func TestValidate_OpenAIRequiresAPIKey(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{}
	cfg.Provider.Name = "openai"
	cfg.Provider.Model = "gpt-4o"

	err := config.Validate(cfg)
	if err == nil || !strings.Contains(err.Error(), "api_key") {
		t.Errorf("err = %v, want api_key requirement", err)
	}

	cfg.Provider.APIKey = "sk-test"
	if err := config.Validate(cfg); err != nil {
		t.Errorf("Validate with key: %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	if _, err := config.Load("/nonexistent/config.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}
