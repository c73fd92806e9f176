package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type stubProvider struct{ name string }

func (s stubProvider) Name() string { return s.name }
func (s stubProvider) Complete(ctx context.Context, req Request) (Response, error) {
	return Response{Content: "ok", ProviderName: s.name}, nil
}

func TestRegistryResolvesRegisteredBackend(t *testing.T) {
	r := NewRegistry()
	r.RegisterProvider("ollama", stubProvider{name: "ollama"})

	p, err := r.Resolve("ollama")
	require.NoError(t, err)
	require.Equal(t, "ollama", p.Name())
}

func TestRegistryDefaultsToFirstRegistered(t *testing.T) {
	r := NewRegistry()
	r.RegisterProvider("llama-cpp", stubProvider{name: "llama-cpp"})
	r.RegisterProvider("ollama", stubProvider{name: "ollama"})

	p, err := r.Resolve("")
	require.NoError(t, err)
	require.Equal(t, "llama-cpp", p.Name())
}

func TestRegistryUnknownBackend(t *testing.T) {
	r := NewRegistry()
	_, err := r.Resolve("missing")
	require.Error(t, err)
}
