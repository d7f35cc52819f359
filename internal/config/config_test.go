// ABOUTME: Tests for configuration loading and validation
// ABOUTME: Covers env expansion, duration parsing, and required-field checks

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gateway.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

const validConfig = `
server:
  http_addr: "localhost:8080"

database:
  path: "/tmp/assist.db"

model:
  base_url: "https://api.openai.com/v1"
  api_key: "sk-test"
  name: "gpt-4o-mini"
  timeout: "45s"

speech:
  enabled: true
  stt_model: "whisper-1"
  tts_model: "tts-1"
  voice: "alloy"

sessions:
  ttl: "3h"
  max_history: 5
  sweep_interval: "1m"

auth:
  jwt_secret: "secret"
  token_ttl: "720h"

logging:
  level: "info"
  format: "text"
`

func TestLoad_Valid(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, "localhost:8080", cfg.Server.HTTPAddr)
	assert.Equal(t, "/tmp/assist.db", cfg.Database.Path)
	assert.Equal(t, "gpt-4o-mini", cfg.Model.Name)
	assert.Equal(t, 45*time.Second, cfg.Model.Timeout)
	assert.Equal(t, 3*time.Hour, cfg.Sessions.TTL)
	assert.Equal(t, time.Minute, cfg.Sessions.SweepInterval)
	assert.Equal(t, 5, cfg.Sessions.MaxHistory)
	assert.Equal(t, 720*time.Hour, cfg.Auth.TokenTTL)
	assert.True(t, cfg.Speech.Enabled)
	assert.Equal(t, "alloy", cfg.Speech.Voice)
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("ASSIST_TEST_API_KEY", "sk-from-env")

	content := `
server:
  http_addr: "localhost:8080"
database:
  path: "/tmp/assist.db"
model:
  base_url: "https://api.openai.com/v1"
  api_key: "${ASSIST_TEST_API_KEY}"
  name: "gpt-4o-mini"
auth:
  jwt_secret: "secret"
`
	cfg, err := Load(writeConfig(t, content))
	require.NoError(t, err)
	assert.Equal(t, "sk-from-env", cfg.Model.APIKey)
}

func TestLoad_UnsetEnvBecomesEmpty(t *testing.T) {
	content := `
server:
  http_addr: "localhost:8080"
database:
  path: "/tmp/assist.db"
model:
  base_url: "https://api.openai.com/v1"
  api_key: "${DEFINITELY_NOT_SET_ANYWHERE_XYZ}"
  name: "gpt-4o-mini"
auth:
  jwt_secret: "secret"
`
	_, err := Load(writeConfig(t, content))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model.api_key is required")
}

func TestLoad_InvalidDuration(t *testing.T) {
	content := `
server:
  http_addr: "localhost:8080"
database:
  path: "/tmp/assist.db"
model:
  base_url: "https://api.openai.com/v1"
  api_key: "sk-test"
  name: "gpt-4o-mini"
sessions:
  ttl: "three hours"
auth:
  jwt_secret: "secret"
`
	_, err := Load(writeConfig(t, content))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sessions.ttl")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestValidate_RequiredFields(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"missing http_addr", func(c *Config) { c.Server.HTTPAddr = "" }, "server.http_addr"},
		{"missing database path", func(c *Config) { c.Database.Path = "" }, "database.path"},
		{"missing base_url", func(c *Config) { c.Model.BaseURL = "" }, "model.base_url"},
		{"missing api key", func(c *Config) { c.Model.APIKey = "" }, "model.api_key"},
		{"missing model name", func(c *Config) { c.Model.Name = "" }, "model.name"},
		{"missing jwt secret", func(c *Config) { c.Auth.JWTSecret = "" }, "auth.jwt_secret"},
		{"speech without stt model", func(c *Config) { c.Speech.STTModel = "" }, "speech.stt_model"},
		{"speech without tts model", func(c *Config) { c.Speech.TTSModel = "" }, "speech.tts_model"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, validConfig))
			require.NoError(t, err)

			tc.mutate(cfg)
			err = cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestValidate_SpeechDisabledSkipsModels(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	cfg.Speech = SpeechConfig{Enabled: false}
	assert.NoError(t, cfg.Validate())
}
