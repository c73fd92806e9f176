package mock

import (
	"context"

	"github.com/rhythmatician/dev-agent/internal/llm"
)

// Provider is a test double implementing llm.Provider.
type Provider struct {
	NameValue  string
	CompleteFn func(ctx context.Context, req llm.Request) (llm.Response, error)
	// Responses, when set and CompleteFn is nil, are returned in order;
	// the last entry repeats once exhausted.
	Responses []string
	Calls     []llm.Request
}

func (p *Provider) Name() string {
	if p.NameValue != "" {
		return p.NameValue
	}
	return "mock"
}

func (p *Provider) Complete(ctx context.Context, req llm.Request) (llm.Response, error) {
	p.Calls = append(p.Calls, req)
	if p.CompleteFn != nil {
		return p.CompleteFn(ctx, req)
	}
	content := "mock"
	if n := len(p.Responses); n > 0 {
		idx := len(p.Calls) - 1
		if idx >= n {
			idx = n - 1
		}
		content = p.Responses[idx]
	}
	return llm.Response{Content: content, Model: req.Model, ProviderName: p.Name()}, nil
}
