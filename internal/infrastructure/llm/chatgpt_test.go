package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StoryGenerator/internal/config"
)

func TestComplete(t *testing.T) {
	t.Parallel()

	var payload map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))

		_, _ = w.Write([]byte(`{"choices": [{"message": {"content": "---STORY---..."}}]}`))
	}))
	defer server.Close()

	client := NewChatGPTClient(config.OpenAIConfig{
		Endpoint: server.URL,
		Model:    "gpt-4",
		APIKey:   "test-key",
	})

	content, err := client.Complete(context.Background(), "system prompt", "user prompt", 0.7)

	require.NoError(t, err)
	assert.Equal(t, "---STORY---...", content)

	assert.Equal(t, "gpt-4", payload["model"])
	assert.Equal(t, 0.7, payload["temperature"])

	messages, ok := payload["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)
	first, _ := messages[0].(map[string]any)
	assert.Equal(t, "system", first["role"])
	assert.Equal(t, "system prompt", first["content"])
}

func TestCompleteErrorStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": "rate limited"}`))
	}))
	defer server.Close()

	client := NewChatGPTClient(config.OpenAIConfig{
		Endpoint: server.URL,
		Model:    "gpt-4",
		APIKey:   "test-key",
	})

	_, err := client.Complete(context.Background(), "s", "u", 0.3)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "rate limited")
}

func TestCompleteNoChoices(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer server.Close()

	client := NewChatGPTClient(config.OpenAIConfig{
		Endpoint: server.URL,
		Model:    "gpt-4",
		APIKey:   "test-key",
	})

	_, err := client.Complete(context.Background(), "s", "u", 0.3)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestCompleteMisconfigured(t *testing.T) {
	t.Parallel()

	client := NewChatGPTClient(config.OpenAIConfig{})

	_, err := client.Complete(context.Background(), "s", "u", 0.3)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "misconfigured")
}
