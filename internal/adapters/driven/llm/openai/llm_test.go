package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/triago-cli/internal/core/domain"
	"github.com/custodia-labs/triago-cli/internal/core/ports/driven"
)

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(Config{})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCompleteParsesResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req.Model)
		require.Len(t, req.Messages, 1)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": "classified"}},
			},
			"usage": map[string]int{"total_tokens": 17},
		})
	}))
	t.Cleanup(server.Close)

	svc, err := New(Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)

	completion, err := svc.Complete(context.Background(), []driven.ChatMessage{
		{Role: "user", Content: "classify this"},
	}, driven.CompleteOptions{MaxTokens: 20})
	require.NoError(t, err)
	assert.Equal(t, "classified", completion.Text)
	assert.Equal(t, 17, completion.TokensUsed)
}

func TestCompleteSurfacesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "rate limited", "type": "rate_limit"},
		})
	}))
	t.Cleanup(server.Close)

	svc, err := New(Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = svc.Complete(context.Background(), []driven.ChatMessage{{Role: "user", Content: "x"}}, driven.CompleteOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}
