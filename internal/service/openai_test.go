package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"moviechat/internal/config"
	"moviechat/internal/tools"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestLLM(t *testing.T, apiKey string, handler http.HandlerFunc) *OpenAIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewOpenAIClient(config.LLMConfig{
		APIBase:   srv.URL + "/v1",
		APIKey:    apiKey,
		ChatModel: "llama3.2:1b",
		MaxTokens: 256,
		Timeout:   2 * time.Second,
		Enabled:   true,
	}, zaptest.NewLogger(t))
}

func TestOpenAIClient_ChatWithToolsParsesToolCalls(t *testing.T) {
	var body map[string]any
	var auth string
	client := newTestLLM(t, "", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		auth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"model": "llama3.2:1b",
			"choices": [{
				"index": 0,
				"message": {
					"role": "assistant",
					"content": null,
					"tool_calls": [
						{"id": "call_1", "type": "function", "function": {"name": "genreSearch", "arguments": "{\"genre\":\"Action\"}"}},
						{"id": "call_2", "type": "function", "function": {"name": "yearSearch", "arguments": {"year": 1999}}}
					]
				},
				"finish_reason": "tool_calls"
			}],
			"usage": {"prompt_tokens": 300, "completion_tokens": 20, "total_tokens": 320}
		}`))
	})

	defs := tools.NewRegistryForYear(catalogue(), 2026).Definitions()
	res, err := client.ChatWithTools(context.Background(), []ChatMessage{{Role: "user", Content: "Action from 1999"}}, defs)
	require.NoError(t, err)

	assert.Empty(t, auth)
	assert.Equal(t, "llama3.2:1b", body["model"])
	assert.Equal(t, float64(0), body["temperature"])
	assert.Equal(t, "auto", body["tool_choice"])
	assert.Len(t, body["tools"], 4)

	assert.Empty(t, res.Content)
	assert.Equal(t, "tool_calls", res.FinishReason)
	require.Len(t, res.ToolCalls, 2)
	assert.Equal(t, "genreSearch", res.ToolCalls[0].Name)
	assert.Equal(t, "call_2", res.ToolCalls[1].ID)

	registry := tools.NewRegistryForYear(catalogue(), 2026)
	first, err := registry.Parse(res.ToolCalls[0].Name, res.ToolCalls[0].Arguments)
	require.NoError(t, err)
	assert.Equal(t, "genre=Action", first.String())
	second, err := registry.Parse(res.ToolCalls[1].Name, res.ToolCalls[1].Arguments)
	require.NoError(t, err)
	assert.Equal(t, "year=1999", second.String())
}

func TestOpenAIClient_ChatWithToolsText(t *testing.T) {
	client := newTestLLM(t, "sk-test", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Hello there!"},"finish_reason":"stop"}]}`))
	})

	res, err := client.ChatWithTools(context.Background(), []ChatMessage{{Role: "user", Content: "Hi"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Hello there!", res.Content)
	assert.Empty(t, res.ToolCalls)
}

func TestOpenAIClient_Errors(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		client := newTestLLM(t, "", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`model is loading`))
		})
		_, err := client.ChatWithTools(context.Background(), nil, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "503")
	})

	t.Run("malformed body", func(t *testing.T) {
		client := newTestLLM(t, "", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		})
		_, err := client.ChatWithTools(context.Background(), nil, nil)
		assert.Error(t, err)
	})

	t.Run("no choices", func(t *testing.T) {
		client := newTestLLM(t, "", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"choices":[]}`))
		})
		_, err := client.ChatWithTools(context.Background(), nil, nil)
		assert.Error(t, err)
	})

	t.Run("disabled", func(t *testing.T) {
		client := NewOpenAIClient(config.LLMConfig{APIBase: "http://localhost:1", Enabled: false}, nil)
		assert.False(t, client.IsEnabled())
		_, err := client.ChatWithTools(context.Background(), nil, nil)
		assert.Error(t, err)
	})
}
