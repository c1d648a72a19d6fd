package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/generate", r.URL.Path)
		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "qwen2.5", req.Model)
		require.Equal(t, "say hi", req.Prompt)
		require.False(t, req.Stream)
		_ = json.NewEncoder(w).Encode(generateResponse{Response: "hi"})
	}))
	defer srv.Close()

	c := New(srv.URL, "qwen2.5", time.Second)
	out, err := c.Generate(context.Background(), "say hi")
	require.NoError(t, err)
	require.Equal(t, "hi", out)
}

func TestChatWithToolCalls(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chat", r.URL.Path)
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 2)
		require.Len(t, req.Tools, 1)
		require.Equal(t, "service_status", req.Tools[0].Function.Name)
		_ = json.NewEncoder(w).Encode(chatResponse{
			Done: true,
			Message: Message{
				Role: "assistant",
				ToolCalls: []ToolCall{{Function: ToolCallFunction{
					Name:      "service_status",
					Arguments: map[string]any{},
				}}},
			},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "llama3.2", time.Second)
	msgs := []Message{
		{Role: "system", Content: "you manage a service"},
		{Role: "user", Content: "is it running?"},
	}
	tools := []ToolDefinition{{
		Type: "function",
		Function: ToolFunction{
			Name:        "service_status",
			Description: "report service status",
			Parameters:  map[string]any{"type": "object"},
		},
	}}
	reply, err := c.Chat(context.Background(), msgs, tools)
	require.NoError(t, err)
	require.Len(t, reply.ToolCalls, 1)
	require.Equal(t, "service_status", reply.ToolCalls[0].Function.Name)
}

func TestListModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/tags", r.URL.Path)
		_ = json.NewEncoder(w).Encode(tagsResponse{Models: []ModelInfo{
			{Name: "llama3.2:latest", Size: 2048},
			{Name: "qwen2.5:7b", Size: 4096},
		}})
	}))
	defer srv.Close()

	c := New(srv.URL, "llama3.2", time.Second)
	models, err := c.ListModels(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 2)
	require.Equal(t, "llama3.2:latest", models[0].Name)
}

func TestServerErrorSurfacesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(srv.URL, "missing", time.Second)
	_, err := c.Generate(context.Background(), "hello")
	require.Error(t, err)
	require.Contains(t, err.Error(), "404")
	require.Contains(t, err.Error(), "model not found")
}

func TestConnectionRefused(t *testing.T) {
	c := New("http://127.0.0.1:1", "llama3.2", 200*time.Millisecond)
	_, err := c.ListModels(context.Background())
	require.Error(t, err)
}
