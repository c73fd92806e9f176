package llm

import "context"

// Request is the input for a completion call. The patch generator only ever
// needs prompt-in, text-out; chat framing is a provider concern.
type Request struct {
	Model       string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// Response is the result of a completion call.
type Response struct {
	Content      string
	Model        string
	ProviderName string
}

// Provider defines the contract for patch-generation backends.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req Request) (Response, error)
}
