// ABOUTME: Tests for the OpenAI-compatible backend client
// ABOUTME: Uses httptest servers to simulate success, failure status, and unreachable hosts

package model

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/averla/assist-gateway/internal/protocol"
	"github.com/averla/assist-gateway/internal/session"
)

func testPayload() protocol.Payload {
	return protocol.BuildRequest(session.Session{}, session.RoleUser, "hello", protocol.ModelConfig{Model: "gpt-4o-mini"})
}

func TestOpenAIBackend_Send(t *testing.T) {
	var gotAuth string
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path

		var payload protocol.Payload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "gpt-4o-mini", payload.Model)
		require.NotEmpty(t, payload.Messages)
		assert.Equal(t, "hello", payload.Messages[len(payload.Messages)-1].Content)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"text\":\"hi\",\"continueConversation\":false}"}}],"usage":{"prompt_tokens":5,"total_tokens":9}}`))
	}))
	defer srv.Close()

	backend := NewOpenAIBackend(srv.URL, "sk-test", time.Second, nil)
	raw, err := backend.Send(context.Background(), testPayload())
	require.NoError(t, err)

	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "/chat/completions", gotPath)

	answer, err := protocol.ParseResponse(raw)
	require.NoError(t, err)
	assert.Equal(t, "hi", answer.Text)
	assert.Equal(t, 4, answer.CompletionTokens)
}

func TestOpenAIBackend_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	backend := NewOpenAIBackend(srv.URL, "sk-test", time.Second, nil)
	_, err := backend.Send(context.Background(), testPayload())
	require.Error(t, err)

	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, http.StatusTooManyRequests, transportErr.StatusCode)
}

func TestOpenAIBackend_Unreachable(t *testing.T) {
	// Point at a server that is already closed.
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	backend := NewOpenAIBackend(srv.URL, "sk-test", time.Second, nil)
	_, err := backend.Send(context.Background(), testPayload())
	require.Error(t, err)

	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Zero(t, transportErr.StatusCode)
}

func TestOpenAIBackend_ContextCancelled(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	backend := NewOpenAIBackend(srv.URL, "sk-test", time.Minute, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := backend.Send(ctx, testPayload())
	require.Error(t, err)

	var transportErr *TransportError
	assert.True(t, errors.As(err, &transportErr))
}
