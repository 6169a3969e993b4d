package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// fakeCompletions returns an OpenAI-compatible chat completions handler
// that always responds with content.
func fakeCompletions(t *testing.T, content string) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req["model"] == "" {
			t.Error("request missing model")
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": content}},
			},
		})
	})
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(fakeCompletions(t, "Easy six today, keep it conversational."))
	defer srv.Close()

	gen := NewOpenAIGenerator("test-key", srv.URL, "gpt-4o-mini", nil, false)
	got, err := gen.Generate(context.Background(), "You are a running coach.", "Mode: pre_run")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != "Easy six today, keep it conversational." {
		t.Errorf("Generate() = %q", got)
	}
}

func TestGenerateEmptyContent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{name: "no choices", body: `{"choices": []}`},
		{name: "empty content", body: `{"choices": [{"message": {"role": "assistant", "content": ""}}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			gen := NewOpenAIGenerator("test-key", srv.URL, "", nil, false)
			_, err := gen.Generate(context.Background(), "system", "user")
			if !errors.Is(err, ErrEmptyCompletion) {
				t.Errorf("Generate() error = %v, want ErrEmptyCompletion", err)
			}
		})
	}
}

func TestGenerateServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "model not found"}}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	gen := NewOpenAIGenerator("test-key", srv.URL, "", nil, true)
	if _, err := gen.Generate(context.Background(), "system", "user"); err == nil {
		t.Error("Generate() expected error on HTTP 400")
	}
}

func TestNewOpenAIGeneratorDefaults(t *testing.T) {
	t.Parallel()

	gen := NewOpenAIGenerator("test-key", "", "", nil, false)
	if gen.model != DefaultModel {
		t.Errorf("model = %q, want %q", gen.model, DefaultModel)
	}
	if gen.logger == nil {
		t.Error("logger should never be nil")
	}
}
