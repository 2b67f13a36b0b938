package relay

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/harun/literelay/pkg/llm"
	"github.com/harun/literelay/pkg/session"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGenerator returns canned replies and records every request it sees
type fakeGenerator struct {
	mu       sync.Mutex
	requests []llm.GenerateRequest
	replies  []string
	err      error
}

func (f *fakeGenerator) Generate(ctx context.Context, request llm.GenerateRequest) (*llm.GenerateResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, request)

	if f.err != nil {
		return nil, f.err
	}

	reply := "canned reply"
	if len(f.replies) > 0 {
		reply = f.replies[0]
		f.replies = f.replies[1:]
	}
	return &llm.GenerateResponse{Text: reply}, nil
}

func (f *fakeGenerator) Name() string {
	return "fake"
}

func (f *fakeGenerator) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeGenerator) lastRequest() llm.GenerateRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func setupTestService(t *testing.T, gen llm.Generator) (*Service, *session.Store) {
	store := session.NewStore()
	logger := zerolog.New(os.Stdout).Level(zerolog.ErrorLevel)

	svc, err := NewService(Config{
		Store:           store,
		Generator:       gen,
		DefaultModel:    "liteLLM",
		SupportedModels: []string{"liteLLM"},
		MaxTokens:       150,
		Temperature:     0.7,
		Logger:          logger,
	})
	require.NoError(t, err)

	return svc, store
}

func TestNewService(t *testing.T) {
	t.Run("should create service with valid config", func(t *testing.T) {
		svc, _ := setupTestService(t, &fakeGenerator{})

		assert.NotNil(t, svc)
		assert.NotNil(t, svc.store)
		assert.NotNil(t, svc.generator)
	})

	t.Run("should fail without store", func(t *testing.T) {
		_, err := NewService(Config{
			Generator:       &fakeGenerator{},
			DefaultModel:    "liteLLM",
			SupportedModels: []string{"liteLLM"},
		})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "store")
	})

	t.Run("should fail without generator", func(t *testing.T) {
		_, err := NewService(Config{
			Store:           session.NewStore(),
			DefaultModel:    "liteLLM",
			SupportedModels: []string{"liteLLM"},
		})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "generator")
	})

	t.Run("should fail without default model", func(t *testing.T) {
		_, err := NewService(Config{
			Store:           session.NewStore(),
			Generator:       &fakeGenerator{},
			SupportedModels: []string{"liteLLM"},
		})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "default model")
	})

	t.Run("should fail without supported models", func(t *testing.T) {
		_, err := NewService(Config{
			Store:        session.NewStore(),
			Generator:    &fakeGenerator{},
			DefaultModel: "liteLLM",
		})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "supported model")
	})
}

func TestService_Chat(t *testing.T) {
	t.Run("should complete a first turn and store both turns", func(t *testing.T) {
		gen := &fakeGenerator{replies: []string{" hello "}}
		svc, store := setupTestService(t, gen)

		reply, err := svc.Chat(ChatParams{SessionID: "s1", Message: "hi"})

		require.NoError(t, err)
		assert.Equal(t, "hello", reply)

		stored, ok := store.Get("s1")
		require.True(t, ok)
		assert.Equal(t, "User: hi\nAssistant: hello\n", stored.History)
	})

	t.Run("should send the full transcript with the assistant marker", func(t *testing.T) {
		gen := &fakeGenerator{replies: []string{"there"}}
		svc, _ := setupTestService(t, gen)

		_, err := svc.Chat(ChatParams{SessionID: "s1", Message: "hi"})
		require.NoError(t, err)

		request := gen.lastRequest()
		assert.Equal(t, "User: hi\nAssistant:", request.Prompt)
		assert.Equal(t, "liteLLM", request.Model)
		assert.Equal(t, 150, request.MaxTokens)
		assert.Equal(t, 0.7, request.Temperature)
	})

	t.Run("should send prior turns on later calls", func(t *testing.T) {
		gen := &fakeGenerator{replies: []string{"first", "second"}}
		svc, _ := setupTestService(t, gen)

		_, err := svc.Chat(ChatParams{SessionID: "s1", Message: "A"})
		require.NoError(t, err)
		_, err = svc.Chat(ChatParams{SessionID: "s1", Message: "B"})
		require.NoError(t, err)

		request := gen.lastRequest()
		assert.Equal(t, "User: A\nAssistant: first\nUser: B\nAssistant:", request.Prompt)
	})

	t.Run("should produce an exact transcript for sequential turns", func(t *testing.T) {
		gen := &fakeGenerator{replies: []string{"first", "second"}}
		svc, store := setupTestService(t, gen)

		_, err := svc.Chat(ChatParams{SessionID: "s1", Message: "A"})
		require.NoError(t, err)
		_, err = svc.Chat(ChatParams{SessionID: "s1", Message: "B"})
		require.NoError(t, err)

		stored, ok := store.Get("s1")
		require.True(t, ok)
		assert.Equal(t, "User: A\nAssistant: first\nUser: B\nAssistant: second\n", stored.History)
	})

	t.Run("should reject a missing session id", func(t *testing.T) {
		gen := &fakeGenerator{}
		svc, store := setupTestService(t, gen)

		_, err := svc.Chat(ChatParams{Message: "hi"})

		assert.Error(t, err)
		assert.Equal(t, ErrCodeValidation, CodeOf(err))
		assert.Contains(t, err.Error(), "session_id")
		assert.Equal(t, 0, gen.calls())
		assert.Equal(t, 0, store.Len())
	})

	t.Run("should reject an unsupported model without calling upstream", func(t *testing.T) {
		gen := &fakeGenerator{}
		svc, store := setupTestService(t, gen)

		_, err := svc.Chat(ChatParams{SessionID: "s1", Message: "hi", Model: "gpt-4"})

		assert.Error(t, err)
		assert.Equal(t, ErrCodeValidation, CodeOf(err))
		assert.Contains(t, err.Error(), "unsupported model")
		assert.Equal(t, 0, gen.calls())
		assert.Equal(t, 0, store.Len())
	})

	t.Run("should not create a session when upstream fails", func(t *testing.T) {
		gen := &fakeGenerator{err: fmt.Errorf("connection refused")}
		svc, store := setupTestService(t, gen)

		_, err := svc.Chat(ChatParams{SessionID: "s1", Message: "hi"})

		assert.Error(t, err)
		assert.Equal(t, ErrCodeUpstream, CodeOf(err))
		assert.Contains(t, err.Error(), "connection refused")

		_, ok := store.Get("s1")
		assert.False(t, ok)
	})

	t.Run("should leave an existing transcript untouched when upstream fails", func(t *testing.T) {
		gen := &fakeGenerator{replies: []string{"fine"}}
		svc, store := setupTestService(t, gen)

		_, err := svc.Chat(ChatParams{SessionID: "s1", Message: "hi"})
		require.NoError(t, err)

		gen.mu.Lock()
		gen.err = fmt.Errorf("boom")
		gen.mu.Unlock()

		_, err = svc.Chat(ChatParams{SessionID: "s1", Message: "again"})
		assert.Error(t, err)

		stored, ok := store.Get("s1")
		require.True(t, ok)
		assert.Equal(t, "User: hi\nAssistant: fine\n", stored.History)
	})

	t.Run("should treat a whitespace-only reply as an upstream failure", func(t *testing.T) {
		gen := &fakeGenerator{replies: []string{"   \n  "}}
		svc, store := setupTestService(t, gen)

		_, err := svc.Chat(ChatParams{SessionID: "s1", Message: "hi"})

		assert.Error(t, err)
		assert.Equal(t, ErrCodeUpstream, CodeOf(err))
		assert.Contains(t, err.Error(), "empty reply")
		assert.Equal(t, 0, store.Len())
	})

	t.Run("should trim surrounding whitespace from the reply", func(t *testing.T) {
		gen := &fakeGenerator{replies: []string{"\n  trimmed text  \t"}}
		svc, _ := setupTestService(t, gen)

		reply, err := svc.Chat(ChatParams{SessionID: "s1", Message: "hi"})

		require.NoError(t, err)
		assert.Equal(t, "trimmed text", reply)
	})
}

func TestService_Reset(t *testing.T) {
	t.Run("should delete an existing session", func(t *testing.T) {
		gen := &fakeGenerator{}
		svc, store := setupTestService(t, gen)

		_, err := svc.Chat(ChatParams{SessionID: "s1", Message: "hi"})
		require.NoError(t, err)
		require.Equal(t, 1, store.Len())

		err = svc.Reset("s1")
		assert.NoError(t, err)

		_, ok := store.Get("s1")
		assert.False(t, ok)
	})

	t.Run("should succeed for an unknown session", func(t *testing.T) {
		svc, _ := setupTestService(t, &fakeGenerator{})

		assert.NoError(t, svc.Reset("never-seen"))
		assert.NoError(t, svc.Reset("never-seen"))
	})

	t.Run("should start from an empty transcript after reset", func(t *testing.T) {
		gen := &fakeGenerator{replies: []string{"one", "two"}}
		svc, store := setupTestService(t, gen)

		_, err := svc.Chat(ChatParams{SessionID: "s1", Message: "before"})
		require.NoError(t, err)

		require.NoError(t, svc.Reset("s1"))

		_, err = svc.Chat(ChatParams{SessionID: "s1", Message: "after"})
		require.NoError(t, err)

		stored, ok := store.Get("s1")
		require.True(t, ok)
		assert.Equal(t, "User: after\nAssistant: two\n", stored.History)
	})

	t.Run("should reject a missing session id", func(t *testing.T) {
		svc, store := setupTestService(t, &fakeGenerator{})

		err := svc.Reset("")

		assert.Error(t, err)
		assert.Equal(t, ErrCodeValidation, CodeOf(err))
		assert.Equal(t, 0, store.Len())
	})
}

func TestService_ResolveModel(t *testing.T) {
	svc, _ := setupTestService(t, &fakeGenerator{})

	t.Run("should default when empty", func(t *testing.T) {
		model, err := svc.resolveModel("")
		assert.NoError(t, err)
		assert.Equal(t, "liteLLM", model)
	})

	t.Run("should accept a supported model", func(t *testing.T) {
		model, err := svc.resolveModel("liteLLM")
		assert.NoError(t, err)
		assert.Equal(t, "liteLLM", model)
	})

	t.Run("should reject an unknown model", func(t *testing.T) {
		_, err := svc.resolveModel("claude-3")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported model: claude-3")
	})
}

func TestService_SessionCount(t *testing.T) {
	gen := &fakeGenerator{}
	svc, _ := setupTestService(t, gen)

	assert.Equal(t, 0, svc.SessionCount())

	_, err := svc.Chat(ChatParams{SessionID: "a", Message: "hi"})
	require.NoError(t, err)
	_, err = svc.Chat(ChatParams{SessionID: "b", Message: "hi"})
	require.NoError(t, err)

	assert.Equal(t, 2, svc.SessionCount())
}

func TestService_ConcurrentChats(t *testing.T) {
	gen := &fakeGenerator{}
	svc, store := setupTestService(t, gen)

	numGoroutines := 10
	done := make(chan bool, numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			_, err := svc.Chat(ChatParams{
				SessionID: fmt.Sprintf("session-%d", id),
				Message:   "hello",
			})
			assert.NoError(t, err)
			done <- true
		}(i)
	}

	for i := 0; i < numGoroutines; i++ {
		<-done
	}

	assert.Equal(t, numGoroutines, store.Len())
	assert.Equal(t, numGoroutines, gen.calls())
}
