package openaicompat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rhythmatician/dev-agent/internal/llm"
)

func TestCompleteAgainstCompatibleServer(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "codellama", body["model"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"choices": [{
				"index": 0,
				"finish_reason": "stop",
				"message": {"role": "assistant", "content": "diff --git a/x b/x"}
			}]
		}`))
	}))
	defer srv.Close()

	p := NewProvider("llama-cpp", srv.URL, "", 5*time.Second)
	resp, err := p.Complete(context.Background(), llm.Request{Model: "codellama", Prompt: "fix"})
	require.NoError(t, err)
	require.Equal(t, "diff --git a/x b/x", resp.Content)
}

func TestCompleteRequiresModel(t *testing.T) {
	t.Parallel()

	p := NewProvider("openai", "", "key", 0)
	_, err := p.Complete(context.Background(), llm.Request{Prompt: "x"})
	require.Error(t, err)
}

func TestCompleteEmptyChoices(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer srv.Close()

	p := NewProvider("llama-cpp", srv.URL, "", time.Second)
	_, err := p.Complete(context.Background(), llm.Request{Model: "m", Prompt: "x"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "empty choices")
}
