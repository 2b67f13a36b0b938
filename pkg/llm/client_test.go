package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Generate(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var got generateRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			_ = json.NewDecoder(r.Body).Decode(&got)
			_ = json.NewEncoder(w).Encode(map[string]string{"text": " hello there "})
		}))
		defer server.Close()

		client := NewClient(server.URL, 5*time.Second)
		resp, err := client.Generate(context.Background(), GenerateRequest{
			Prompt:      "User: hi\nAssistant:",
			Model:       "liteLLM",
			MaxTokens:   150,
			Temperature: 0.7,
		})

		require.NoError(t, err)
		// Raw text passes through untouched; trimming is the caller's concern
		assert.Equal(t, " hello there ", resp.Text)

		// The wire request carries the full parameter set
		assert.Equal(t, "User: hi\nAssistant:", got.Prompt)
		assert.Equal(t, "liteLLM", got.Model)
		assert.Equal(t, 150, got.MaxTokens)
		assert.Equal(t, 0.7, got.Temperature)
	})

	t.Run("non-2xx status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "backend exploded", http.StatusBadGateway)
		}))
		defer server.Close()

		client := NewClient(server.URL, 5*time.Second)
		_, err := client.Generate(context.Background(), GenerateRequest{Prompt: "User: hi\nAssistant:"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "502")
		assert.Contains(t, err.Error(), "backend exploded")
	})

	t.Run("malformed response body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		}))
		defer server.Close()

		client := NewClient(server.URL, 5*time.Second)
		_, err := client.Generate(context.Background(), GenerateRequest{Prompt: "User: hi\nAssistant:"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "decode")
	})

	t.Run("missing text field yields empty text", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"other":"field"}`))
		}))
		defer server.Close()

		client := NewClient(server.URL, 5*time.Second)
		resp, err := client.Generate(context.Background(), GenerateRequest{Prompt: "User: hi\nAssistant:"})

		require.NoError(t, err)
		assert.Empty(t, resp.Text)
	})

	t.Run("timeout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
			_ = json.NewEncoder(w).Encode(map[string]string{"text": "too late"})
		}))
		defer server.Close()

		client := NewClient(server.URL, 50*time.Millisecond)
		_, err := client.Generate(context.Background(), GenerateRequest{Prompt: "User: hi\nAssistant:"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "upstream request failed")
	})

	t.Run("context cancelled", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		client := NewClient(server.URL, 5*time.Second)
		_, err := client.Generate(ctx, GenerateRequest{Prompt: "User: hi\nAssistant:"})

		assert.Error(t, err)
	})

	t.Run("unreachable endpoint", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close()

		client := NewClient(server.URL, time.Second)
		_, err := client.Generate(context.Background(), GenerateRequest{Prompt: "User: hi\nAssistant:"})

		assert.Error(t, err)
	})
}

func TestClient_Name(t *testing.T) {
	client := NewClient("http://localhost:9000/generate", time.Second)
	assert.Equal(t, "litellm", client.Name())
}
