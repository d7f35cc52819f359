// ABOUTME: Tests for the OpenAI-compatible speech clients
// ABOUTME: Uses httptest servers to validate multipart upload and synthesis round-trips

package speech

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIRecognizer_Recognize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/audio/transcriptions", r.URL.Path)
		require.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "whisper-1", r.FormValue("model"))

		file, _, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		audio, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, []byte("fake-ogg-bytes"), audio)

		_ = json.NewEncoder(w).Encode(map[string]string{"text": "what is the weather"})
	}))
	defer srv.Close()

	rec := NewOpenAIRecognizer(Config{BaseURL: srv.URL, APIKey: "sk-test"}, "whisper-1", nil)
	text, err := rec.Recognize(context.Background(), []byte("fake-ogg-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "what is the weather", text)
}

func TestOpenAIRecognizer_Failure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad audio", http.StatusBadRequest)
	}))
	defer srv.Close()

	rec := NewOpenAIRecognizer(Config{BaseURL: srv.URL, APIKey: "sk-test"}, "whisper-1", nil)
	_, err := rec.Recognize(context.Background(), []byte("noise"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

func TestOpenAISynthesizer_Synthesize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/audio/speech", r.URL.Path)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "tts-1", req["model"])
		assert.Equal(t, "alloy", req["voice"])
		assert.Equal(t, "hello out loud", req["input"])

		_, _ = w.Write([]byte("fake-mp3-bytes"))
	}))
	defer srv.Close()

	syn := NewOpenAISynthesizer(Config{BaseURL: srv.URL, APIKey: "sk-test"}, "tts-1", "alloy", nil)
	audio, err := syn.Synthesize(context.Background(), "hello out loud")
	require.NoError(t, err)
	assert.Equal(t, []byte("fake-mp3-bytes"), audio)
}

func TestOpenAISynthesizer_Failure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	syn := NewOpenAISynthesizer(Config{BaseURL: srv.URL, APIKey: "sk-test"}, "tts-1", "alloy", nil)
	_, err := syn.Synthesize(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
}
