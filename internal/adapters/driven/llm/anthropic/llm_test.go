package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/jarvis/internal/core/ports/driven"
)

func TestNewLLMService_RequiresKey(t *testing.T) {
	_, err := NewLLMService(Config{})
	require.Error(t, err)
}

func TestLLMService_ChatSystemPrompt(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"Hello "},{"type":"text","text":"there"}]}`))
	}))
	defer srv.Close()

	s, err := NewLLMService(Config{APIKey: "key", BaseURL: srv.URL})
	require.NoError(t, err)

	out, err := s.Chat(context.Background(), []driven.ChatMessage{
		{Role: "system", Content: "be kind"},
		{Role: "user", Content: "hi"},
	}, driven.ChatOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Hello there", out)
	assert.Equal(t, "be kind", got["system"])
	assert.InDelta(t, DefaultMaxTokens, got["max_tokens"], 0)
	assert.Len(t, got["messages"], 1)
}

func TestLLMService_GenerateImageBlocks(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"STOP"}]}`))
	}))
	defer srv.Close()

	s, err := NewLLMService(Config{APIKey: "key", BaseURL: srv.URL})
	require.NoError(t, err)

	out, err := s.Generate(context.Background(), "read", driven.GenerateOptions{
		Images: [][]byte{[]byte("\xff\xd8\xff\xe0jpeg")},
	})
	require.NoError(t, err)
	assert.Equal(t, "STOP", out)

	msg := got["messages"].([]any)[0].(map[string]any)
	blocks := msg["content"].([]any)
	require.Len(t, blocks, 2)
	src := blocks[0].(map[string]any)["source"].(map[string]any)
	assert.Equal(t, "image/jpeg", src["media_type"])
	assert.Equal(t, "text", blocks[1].(map[string]any)["type"])
}

func TestLLMService_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"too long"}}`))
	}))
	defer srv.Close()

	s, err := NewLLMService(Config{APIKey: "key", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = s.Generate(context.Background(), "x", driven.GenerateOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too long")
	assert.Error(t, s.Ping(context.Background()))
}

func TestLLMService_EmptyContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"content":[]}`))
	}))
	defer srv.Close()

	s, err := NewLLMService(Config{APIKey: "key", BaseURL: srv.URL})
	require.NoError(t, err)
	_, err = s.Chat(context.Background(), nil, driven.ChatOptions{})
	assert.ErrorContains(t, err, "no response content")
}
