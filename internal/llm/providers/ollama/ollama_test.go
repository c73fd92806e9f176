package ollama

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rhythmatician/dev-agent/internal/llm"
)

type roundTripFunc func(r *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func TestCompleteSendsRequestAndParsesResponse(t *testing.T) {
	t.Parallel()

	p := NewProvider("ollama", "http://mock", 5*time.Second)
	p.client = &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			require.Equal(t, "/api/generate", r.URL.Path)

			return &http.Response{
				StatusCode: http.StatusOK,
				Header:     make(http.Header),
				Body:       io.NopCloser(strings.NewReader(`{"response": "--- a/x.py\n+++ b/x.py", "done": true}`)),
			}, nil
		}),
	}

	resp, err := p.Complete(context.Background(), llm.Request{Model: "phi", Prompt: "fix it"})
	require.NoError(t, err)
	require.Contains(t, resp.Content, "+++ b/x.py")
	require.Equal(t, "phi", resp.Model)
}

func TestCompleteRequiresModel(t *testing.T) {
	t.Parallel()

	p := NewProvider("ollama", "", 0)
	_, err := p.Complete(context.Background(), llm.Request{Prompt: "x"})
	require.Error(t, err)
}

func TestCompleteSurfacesHTTPError(t *testing.T) {
	t.Parallel()

	p := NewProvider("ollama", "http://mock", 0)
	p.client = &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusInternalServerError,
				Header:     make(http.Header),
				Body:       io.NopCloser(strings.NewReader("boom")),
			}, nil
		}),
	}

	_, err := p.Complete(context.Background(), llm.Request{Model: "phi", Prompt: "x"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "status 500")
}
