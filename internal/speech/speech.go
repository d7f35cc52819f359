// ABOUTME: SpeechToText and TextToSpeech contracts with OpenAI-compatible clients
// ABOUTME: Transcription uses multipart upload; synthesis returns raw audio bytes

package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"
)

// DefaultTimeout bounds a single transcription or synthesis call.
const DefaultTimeout = 30 * time.Second

// Recognizer converts recorded audio into text. An empty string with a
// nil error means nothing was recognized.
type Recognizer interface {
	Recognize(ctx context.Context, audio []byte) (string, error)
}

// Synthesizer renders text into audio bytes.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Config holds the shared connection settings for both clients.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}

// OpenAIRecognizer implements Recognizer against /audio/transcriptions.
type OpenAIRecognizer struct {
	cfg    Config
	model  string
	client *http.Client
	logger *slog.Logger
}

// NewOpenAIRecognizer creates a transcription client. model is the
// transcription model name, for example "whisper-1".
func NewOpenAIRecognizer(cfg Config, model string, logger *slog.Logger) *OpenAIRecognizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &OpenAIRecognizer{
		cfg:    cfg,
		model:  model,
		client: &http.Client{Timeout: cfg.timeout()},
		logger: logger.With("component", "stt"),
	}
}

// Recognize uploads the audio as a multipart form and returns the
// transcribed text.
func (r *OpenAIRecognizer) Recognize(ctx context.Context, audio []byte) (string, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	part, err := form.CreateFormFile("file", "voice.ogg")
	if err != nil {
		return "", fmt.Errorf("building form: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return "", fmt.Errorf("writing audio: %w", err)
	}
	if err := form.WriteField("model", r.model); err != nil {
		return "", fmt.Errorf("writing model field: %w", err)
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("closing form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.BaseURL+"/audio/transcriptions", &body)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+r.cfg.APIKey)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcription request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("transcription failed: status %d", resp.StatusCode)
	}

	var reply struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return "", fmt.Errorf("decoding transcription: %w", err)
	}

	r.logger.Debug("audio transcribed", "bytes", len(audio), "chars", len(reply.Text))
	return reply.Text, nil
}

// OpenAISynthesizer implements Synthesizer against /audio/speech.
type OpenAISynthesizer struct {
	cfg    Config
	model  string
	voice  string
	client *http.Client
	logger *slog.Logger
}

// NewOpenAISynthesizer creates a speech synthesis client.
func NewOpenAISynthesizer(cfg Config, model, voice string, logger *slog.Logger) *OpenAISynthesizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &OpenAISynthesizer{
		cfg:    cfg,
		model:  model,
		voice:  voice,
		client: &http.Client{Timeout: cfg.timeout()},
		logger: logger.With("component", "tts"),
	}
}

// Synthesize renders the text with the configured voice and returns the
// audio bytes as delivered by the backend.
func (s *OpenAISynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	body, err := json.Marshal(map[string]string{
		"model": s.model,
		"input": text,
		"voice": s.voice,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL+"/audio/speech", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("synthesis request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("synthesis failed: status %d", resp.StatusCode)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading audio: %w", err)
	}

	s.logger.Debug("speech synthesized", "chars", len(text), "bytes", len(audio))
	return audio, nil
}
