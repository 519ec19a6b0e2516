package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClientComplete(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"model": "gpt-4o",
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "Formatted text."}},
			},
		})
	}))
	defer srv.Close()

	c, err := NewClient(Config{
		Dialect: "openai",
		BaseURL: srv.URL,
		Model:   "gpt-4o",
		Secret:  "sk-test",
	})
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}

	resp, err := c.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: "user", Content: "format this"}},
	})
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if resp.Content != "Formatted text." {
		t.Errorf("content = %q", resp.Content)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("Authorization = %q", gotAuth)
	}
}

func TestClientComplete_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"model overloaded"}`, http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c, _ := NewClient(Config{Dialect: "local", BaseURL: srv.URL, Model: "m"})
	if _, err := c.Complete(context.Background(), CompletionRequest{}); err == nil {
		t.Fatal("expected error for non-200 status")
	}
}

func TestClientComplete_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c, _ := NewClient(Config{Dialect: "local", BaseURL: srv.URL, Model: "m"})
	if _, err := c.Complete(context.Background(), CompletionRequest{}); err == nil {
		t.Fatal("expected error for malformed body")
	}
}

func TestClientComplete_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c, err := NewClient(Config{
		Dialect: "local",
		BaseURL: srv.URL,
		Model:   "m",
		Timeout: 50 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}
	if _, err := c.Complete(context.Background(), CompletionRequest{}); err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestNewClient_Validation(t *testing.T) {
	if _, err := NewClient(Config{Dialect: "nope", BaseURL: "http://x"}); err == nil {
		t.Error("expected error for unknown dialect")
	}
	if _, err := NewClient(Config{Dialect: "local"}); err == nil {
		t.Error("expected error for missing base URL")
	}
}

func TestClientComplete_DefaultsModelAndTemperature(t *testing.T) {
	var got ollamaChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(map[string]any{
			"model":   got.Model,
			"message": map[string]any{"role": "assistant", "content": "ok"},
			"done":    true,
		})
	}))
	defer srv.Close()

	c, _ := NewClient(Config{Dialect: "local", BaseURL: srv.URL, Model: "llama3.2:3b", Temperature: 0.1})
	if _, err := c.Complete(context.Background(), CompletionRequest{}); err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if got.Model != "llama3.2:3b" {
		t.Errorf("model = %q, want client default", got.Model)
	}
	if got.Options.Temperature != 0.1 {
		t.Errorf("temperature = %v, want client default", got.Options.Temperature)
	}
}

func TestClientComplete_ExplicitZeroTemperature(t *testing.T) {
	var got ollamaChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(map[string]any{
			"model":   got.Model,
			"message": map[string]any{"role": "assistant", "content": "ok"},
			"done":    true,
		})
	}))
	defer srv.Close()

	c, _ := NewClient(Config{Dialect: "local", BaseURL: srv.URL, Model: "m", Temperature: 0.7})
	if _, err := c.Complete(context.Background(), CompletionRequest{Temperature: Temp(0)}); err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if got.Options.Temperature != 0 {
		t.Errorf("temperature = %v, explicit zero must not fall back to client default", got.Options.Temperature)
	}
}
