// ABOUTME: ModelBackend contract plus an OpenAI-compatible chat completions client
// ABOUTME: Transport failures surface as *TransportError, never as partial replies

package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/averla/assist-gateway/internal/protocol"
)

// DefaultTimeout bounds a single model round-trip.
const DefaultTimeout = 60 * time.Second

// TransportError reports an unreachable backend or a non-success status.
type TransportError struct {
	Op         string
	StatusCode int // zero when the request never completed
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: backend returned status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Backend sends a conversation payload and returns the raw structured
// reply for the protocol codec to parse.
type Backend interface {
	Send(ctx context.Context, payload protocol.Payload) ([]byte, error)
}

// OpenAIBackend talks to an OpenAI-compatible chat completions endpoint.
type OpenAIBackend struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *slog.Logger
}

// NewOpenAIBackend creates a backend client for the given base URL
// (without the /chat/completions suffix). A non-positive timeout falls
// back to DefaultTimeout.
func NewOpenAIBackend(baseURL, apiKey string, timeout time.Duration, logger *slog.Logger) *OpenAIBackend {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &OpenAIBackend{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
		logger:  logger.With("component", "model"),
	}
}

// Send posts the payload and returns the raw response body. Any network
// failure or non-200 status yields a *TransportError.
func (b *OpenAIBackend) Send(ctx context.Context, payload protocol.Payload) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+b.apiKey)

	start := time.Now()
	resp, err := b.client.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "chat completion", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &TransportError{Op: "chat completion", StatusCode: resp.StatusCode}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: "reading reply", Err: err}
	}

	b.logger.Debug("model round-trip complete",
		"model", payload.Model,
		"messages", len(payload.Messages),
		"duration", time.Since(start))
	return raw, nil
}
