// Package openaicompat adapts any OpenAI-compatible chat endpoint to the
// llm.Provider contract. Both hosted OpenAI and a local llama.cpp server
// (llama-server exposes /v1/chat/completions) are served by this provider.
package openaicompat

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/rhythmatician/dev-agent/internal/llm"
)

// Provider wraps a go-openai client.
type Provider struct {
	name   string
	client *openai.Client
}

// NewProvider constructs a provider for an OpenAI-compatible endpoint.
// baseURL defaults to the hosted OpenAI API when empty.
func NewProvider(name, baseURL, apiKey string, timeout time.Duration) *Provider {
	if timeout == 0 {
		timeout = 120 * time.Second
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/") + "/v1"
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}

	return &Provider{
		name:   name,
		client: openai.NewClientWithConfig(cfg),
	}
}

// Name returns provider identifier.
func (p *Provider) Name() string {
	return p.name
}

// Complete executes a single-turn chat completion.
func (p *Provider) Complete(ctx context.Context, req llm.Request) (llm.Response, error) {
	model := req.Model
	if model == "" {
		return llm.Response{}, fmt.Errorf("model is required")
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		MaxTokens:   req.MaxTokens,
		Temperature: float32(req.Temperature),
	})
	if err != nil {
		return llm.Response{}, fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return llm.Response{}, fmt.Errorf("%s: empty choices", p.name)
	}

	return llm.Response{
		Content:      resp.Choices[0].Message.Content,
		Model:        model,
		ProviderName: p.name,
	}, nil
}
