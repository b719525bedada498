package ollama_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MrWong99/soapscribe/pkg/provider/llm"
	"github.com/MrWong99/soapscribe/pkg/provider/llm/ollama"
)

func TestNew_RequiresModel(t *testing.T) {
	t.Parallel()

	if _, err := ollama.New("http://localhost:11434", ""); err == nil {
		t.Fatal("expected error for empty model")
	}
}

func TestGenerate_SendsChatRequestAndReturnsContent(t *testing.T) {
	t.Parallel()

	var captured struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
		Stream bool `json:"stream"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("path = %q, want /api/chat", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message": {"role": "assistant", "content": "SUBJECTIVE: ok"}}`))
	}))
	defer srv.Close()

	p, err := ollama.New(srv.URL, "llama3.1")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	text, err := p.Generate(context.Background(), "system prompt", "user prompt")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if text != "SUBJECTIVE: ok" {
		t.Errorf("text = %q", text)
	}

	if captured.Model != "llama3.1" {
		t.Errorf("model = %q", captured.Model)
	}
	if captured.Stream {
		t.Error("stream = true, want false")
	}
	if len(captured.Messages) != 2 || captured.Messages[0].Role != "system" || captured.Messages[1].Role != "user" {
		t.Errorf("messages = %+v", captured.Messages)
	}
}

func TestGenerate_NonOKStatusReturnsProviderError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error": "model not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	p, err := ollama.New(srv.URL, "missing-model")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = p.Generate(context.Background(), "", "hi")
	var perr *llm.ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("err = %v, want *llm.ProviderError", err)
	}
	if perr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", perr.StatusCode)
	}
	if perr.Provider != "ollama" {
		t.Errorf("Provider = %q", perr.Provider)
	}
}

func TestGenerate_EmptyContentReturnsErrEmptyResponse(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"message": {"role": "assistant", "content": ""}}`))
	}))
	defer srv.Close()

	p, err := ollama.New(srv.URL, "llama3.1")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := p.Generate(context.Background(), "", "hi"); !errors.Is(err, llm.ErrEmptyResponse) {
		t.Errorf("err = %v, want ErrEmptyResponse", err)
	}
}

func TestGenerate_UnreachableServerReturnsErrUnavailable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // port is now closed

	p, err := ollama.New(srv.URL, "llama3.1")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := p.Generate(context.Background(), "", "hi"); !errors.Is(err, llm.ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}

func TestCheckAvailability(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			_, _ = w.Write([]byte("Ollama is running"))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	p, err := ollama.New(srv.URL, "llama3.1")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if !p.CheckAvailability(context.Background()) {
		t.Error("CheckAvailability = false against a live server")
	}

	srv.Close()
	if p.CheckAvailability(context.Background()) {
		t.Error("CheckAvailability = true against a closed server")
	}
}

func TestCheckModelReady(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model string `json:"model"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Model != "ready-model" {
			http.Error(w, `{"error": "model not found"}`, http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"message": {"role": "assistant", "content": "ready"}}`))
	}))
	defer srv.Close()

	p, err := ollama.New(srv.URL, "ready-model")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if !p.CheckModelReady(context.Background(), "ready-model") {
		t.Error("CheckModelReady = false for a responding model")
	}
	if p.CheckModelReady(context.Background(), "absent-model") {
		t.Error("CheckModelReady = true for a missing model")
	}
}
