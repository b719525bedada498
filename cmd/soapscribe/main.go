// Command soapscribe is the main entry point for the soapscribe
// call-documentation server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	anyllmlib "github.com/mozilla-ai/any-llm-go"

	"github.com/MrWong99/soapscribe/internal/api"
	"github.com/MrWong99/soapscribe/internal/app"
	"github.com/MrWong99/soapscribe/internal/config"
	"github.com/MrWong99/soapscribe/internal/health"
	"github.com/MrWong99/soapscribe/internal/observe"
	"github.com/MrWong99/soapscribe/pkg/provider/llm"
	"github.com/MrWong99/soapscribe/pkg/provider/llm/anyllm"
	"github.com/MrWong99/soapscribe/pkg/provider/llm/ollama"
	"github.com/MrWong99/soapscribe/pkg/provider/llm/openai"
)

const defaultListenAddr = ":8080"

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "soapscribe: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "soapscribe: %v\n", err)
		}
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	slog.Info("soapscribe starting",
		"config", *configPath,
		"provider", cfg.Provider.Name,
		"model", cfg.Provider.Model,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Observability ─────────────────────────────────────────────────────────
	otelShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName: "soapscribe",
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	// ── Model provider ────────────────────────────────────────────────────────
	provider, err := buildProvider(cfg)
	if err != nil {
		slog.Error("failed to build provider", "err", err)
		return 1
	}
	slog.Info("provider created", "name", cfg.Provider.Name, "model", cfg.Provider.Model)

	// ── Application and HTTP server ───────────────────────────────────────────
	application := app.New(cfg.Provider.Name, provider)

	healthHandler := health.New(
		health.ProviderChecker(cfg.Provider.Name, provider),
		health.ModelChecker(cfg.Provider.Model, provider),
	)
	server := api.New(application, cfg.Provider.Model, healthHandler, observe.DefaultMetrics())

	addr := cfg.Server.ListenAddr
	if addr == "" {
		addr = defaultListenAddr
	}
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	slog.Info("server ready — press Ctrl+C to shut down", "listen_addr", addr)

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "err", err)
			return 1
		}
	}

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	slog.Info("shutdown signal received, stopping…")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// ── Provider wiring ───────────────────────────────────────────────────────────

// buildProvider constructs the model provider named in cfg. ollama and openai
// use the dedicated native clients; every other name goes through the any-llm
// backend.
func buildProvider(cfg *config.Config) (llm.Provider, error) {
	entry := cfg.Provider

	switch entry.Name {
	case "ollama":
		var opts []ollama.Option
		if cfg.Pipeline.Temperature != 0 {
			opts = append(opts, ollama.WithTemperature(cfg.Pipeline.Temperature))
		}
		if cfg.Pipeline.MaxTokens != 0 {
			opts = append(opts, ollama.WithMaxTokens(cfg.Pipeline.MaxTokens))
		}
		return ollama.New(entry.BaseURL, entry.Model, opts...)

	case "openai":
		var opts []openai.Option
		if entry.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(entry.BaseURL))
		}
		if cfg.Pipeline.Temperature != 0 {
			opts = append(opts, openai.WithTemperature(cfg.Pipeline.Temperature))
		}
		if cfg.Pipeline.MaxTokens != 0 {
			opts = append(opts, openai.WithMaxTokens(cfg.Pipeline.MaxTokens))
		}
		return openai.New(entry.APIKey, entry.Model, opts...)

	default:
		var backendOpts []anyllmlib.Option
		if entry.APIKey != "" {
			backendOpts = append(backendOpts, anyllmlib.WithAPIKey(entry.APIKey))
		}
		if entry.BaseURL != "" {
			backendOpts = append(backendOpts, anyllmlib.WithBaseURL(entry.BaseURL))
		}
		var opts []anyllm.Option
		if cfg.Pipeline.Temperature != 0 {
			opts = append(opts, anyllm.WithTemperature(cfg.Pipeline.Temperature))
		}
		if cfg.Pipeline.MaxTokens != 0 {
			opts = append(opts, anyllm.WithMaxTokens(cfg.Pipeline.MaxTokens))
		}
		return anyllm.New(entry.Name, entry.Model, backendOpts, opts...)
	}
}

// ── Logger ─────────────────────────────────────────────────────────────────────

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
