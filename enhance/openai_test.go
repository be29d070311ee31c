package enhance

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestEnhanceNotConfigured(t *testing.T) {
	p := NewOpenAI(Options{})

	if p.Available() {
		t.Error("Available() = true with no API key")
	}
	if _, err := p.Enhance(context.Background(), "hello"); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Enhance = %v, want ErrNotConfigured", err)
	}
}

func TestEnhanceInputGuards(t *testing.T) {
	p := NewOpenAI(Options{APIKey: "test-key", MaxInputLength: 10})

	if _, err := p.Enhance(context.Background(), "   "); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("blank input = %v, want ErrEmptyInput", err)
	}
	if _, err := p.Enhance(context.Background(), strings.Repeat("x", 11)); !errors.Is(err, ErrInputTooLong) {
		t.Errorf("long input = %v, want ErrInputTooLong", err)
	}
}

func TestEnhanceSuccess(t *testing.T) {
	var gotAuth string
	var gotBody chatRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "  A polished prompt.  "}},
			},
		})
	}))
	defer server.Close()

	p := NewOpenAI(Options{
		APIKey:       "test-key",
		Model:        "gpt-4o-mini",
		SystemPrompt: "You improve prompts.",
		BaseURL:      server.URL,
	})

	got, err := p.Enhance(context.Background(), "make it better")
	if err != nil {
		t.Fatalf("Enhance returned error: %v", err)
	}
	if got != "A polished prompt." {
		t.Errorf("result = %q, want trimmed content", got)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("auth header = %q", gotAuth)
	}
	if len(gotBody.Messages) != 2 || gotBody.Messages[0].Role != "system" {
		t.Fatalf("unexpected messages: %+v", gotBody.Messages)
	}
	if !strings.Contains(gotBody.Messages[1].Content, "make it better") {
		t.Errorf("user message missing input text: %q", gotBody.Messages[1].Content)
	}
}

func TestEnhanceAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	p := NewOpenAI(Options{APIKey: "test-key", BaseURL: server.URL})

	if _, err := p.Enhance(context.Background(), "hello"); err == nil {
		t.Fatal("Enhance succeeded on API error")
	}
}

func TestEnhanceEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer server.Close()

	p := NewOpenAI(Options{APIKey: "test-key", BaseURL: server.URL})

	if _, err := p.Enhance(context.Background(), "hello"); err == nil {
		t.Fatal("Enhance succeeded with no choices")
	}
}
