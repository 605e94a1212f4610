package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/triago-cli/internal/core/ports/driven"
)

func TestNewAppliesDefaults(t *testing.T) {
	svc := New(Config{})
	assert.Equal(t, DefaultModel, svc.ModelName())
}

func TestCompleteParsesResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chat", r.URL.Path)

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.False(t, req.Stream)
		require.NotNil(t, req.Options)
		assert.Equal(t, 50, req.Options.NumPredict)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"message":           map[string]string{"role": "assistant", "content": "summary text"},
			"done":              true,
			"prompt_eval_count": 12,
			"eval_count":        8,
		})
	}))
	t.Cleanup(server.Close)

	svc := New(Config{BaseURL: server.URL})

	completion, err := svc.Complete(context.Background(), []driven.ChatMessage{
		{Role: "user", Content: "summarise"},
	}, driven.CompleteOptions{MaxTokens: 50})
	require.NoError(t, err)
	assert.Equal(t, "summary text", completion.Text)
	assert.Equal(t, 20, completion.TokensUsed)
}

func TestCompleteSurfacesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"model not found"}`))
	}))
	t.Cleanup(server.Close)

	svc := New(Config{BaseURL: server.URL})

	_, err := svc.Complete(context.Background(), []driven.ChatMessage{{Role: "user", Content: "x"}}, driven.CompleteOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model not found")
}
