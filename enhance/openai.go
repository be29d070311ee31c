package enhance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.openai.com/v1/chat/completions"

// Options configures the OpenAI enhancer.
type Options struct {
	APIKey         string
	Model          string
	SystemPrompt   string
	MaxTokens      int
	Temperature    float64
	MaxInputLength int
	// BaseURL overrides the API endpoint; used by tests.
	BaseURL string
}

// OpenAI implements Enhancer over the chat completions API.
type OpenAI struct {
	opts   Options
	client *http.Client
}

// NewOpenAI creates an OpenAI enhancer.
func NewOpenAI(opts Options) *OpenAI {
	if opts.Model == "" {
		opts.Model = "gpt-4o-mini"
	}
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	return &OpenAI{
		opts: opts,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Name returns the provider name.
func (p *OpenAI) Name() string {
	return "openai"
}

// Available reports whether the provider has an API key configured.
func (p *OpenAI) Available() bool {
	return p.opts.APIKey != ""
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Enhance sends text to the chat completions API and returns the enhanced
// version. Input guards return typed errors before any network traffic.
func (p *OpenAI) Enhance(ctx context.Context, text string) (string, error) {
	if !p.Available() {
		return "", ErrNotConfigured
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyInput
	}
	if p.opts.MaxInputLength > 0 && len(text) > p.opts.MaxInputLength {
		return "", fmt.Errorf("%w: %d chars, limit %d", ErrInputTooLong, len(text), p.opts.MaxInputLength)
	}

	reqBody := chatRequest{
		Model: p.opts.Model,
		Messages: []chatMessage{
			{Role: "system", Content: p.opts.SystemPrompt},
			{Role: "user", Content: "Please enhance this prompt: " + text},
		},
		MaxTokens:   p.opts.MaxTokens,
		Temperature: p.opts.Temperature,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.opts.BaseURL, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.opts.APIKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call OpenAI API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("OpenAI API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}

	enhanced := strings.TrimSpace(result.Choices[0].Message.Content)
	if enhanced == "" {
		return "", fmt.Errorf("OpenAI returned empty response")
	}

	return enhanced, nil
}
