package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
	assert.Equal(t, "youtube", cfg.Fetch.Backend)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.Equal(t, 10*time.Second, cfg.Retry.InitialDelay)
	assert.Equal(t, "local", cfg.STT.Backend)
	assert.Equal(t, "tiny", cfg.STT.LocalModel)
	assert.True(t, cfg.STT.Serialize)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("FETCH_BACKEND", "ytdlp")
	t.Setenv("RETRY_MAX_ATTEMPTS", "5")
	t.Setenv("RETRY_INITIAL_DELAY", "2s")
	t.Setenv("STT_BACKEND", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "ytdlp", cfg.Fetch.Backend)
	assert.Equal(t, 5, cfg.Retry.MaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.Retry.InitialDelay)
	assert.Equal(t, "openai", cfg.STT.Backend)
	assert.False(t, cfg.STT.Serialize, "openai backend is not serialised by default")
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestLoadBareSecondsDuration(t *testing.T) {
	t.Setenv("RETRY_INITIAL_DELAY", "15")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, cfg.Retry.InitialDelay)
}

func TestLoadFileThenEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
server:
  port: 7000
retry:
  max_attempts: 4
  initial_delay: 5s
stt:
  backend: local
  local_base_url: http://whisper:9000/v1
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("SERVER_PORT", "7001")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7001, cfg.Server.Port)
	assert.Equal(t, 4, cfg.Retry.MaxAttempts)
	assert.Equal(t, 5*time.Second, cfg.Retry.InitialDelay)
	assert.Equal(t, "http://whisper:9000/v1", cfg.STT.LocalBaseURL)
}

func TestLoadSerializeFollowsFileBackend(t *testing.T) {
	tests := []struct {
		name      string
		yaml      string
		env       map[string]string
		serialize bool
	}{
		{
			name:      "openai from file",
			yaml:      "stt:\n  backend: openai\n  openai_key: sk-file\n",
			serialize: false,
		},
		{
			name:      "local from file",
			yaml:      "stt:\n  backend: local\n",
			serialize: true,
		},
		{
			name:      "explicit serialize in file",
			yaml:      "stt:\n  backend: openai\n  openai_key: sk-file\n  serialize: true\n",
			serialize: true,
		},
		{
			name:      "env backend overrides file backend",
			yaml:      "stt:\n  backend: local\n",
			env:       map[string]string{"STT_BACKEND": "openai", "OPENAI_API_KEY": "sk-env"},
			serialize: false,
		},
		{
			name:      "env serialize wins",
			yaml:      "stt:\n  backend: openai\n  openai_key: sk-file\n",
			env:       map[string]string{"STT_SERIALIZE": "true"},
			serialize: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o644))
			t.Setenv("CONFIG_FILE", path)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			require.NoError(t, err)
			assert.Equal(t, tt.serialize, cfg.STT.Serialize)
		})
	}
}

func TestLoadRejectsZeroRetryDelay(t *testing.T) {
	t.Setenv("RETRY_INITIAL_DELAY", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "initial delay must be positive")
}

func TestLoadPrompt(t *testing.T) {
	t.Setenv("STT_PROMPT", "Kubernetes, gRPC")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "Kubernetes, gRPC", cfg.STT.Prompt)
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadInvalidNumber(t *testing.T) {
	t.Setenv("SERVER_PORT", "eighty")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SERVER_PORT")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Config)
		errorMsg string
	}{
		{"valid defaults", func(*Config) {}, ""},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "server port"},
		{"bad fetch backend", func(c *Config) { c.Fetch.Backend = "ftp" }, "fetch backend"},
		{"zero attempts", func(c *Config) { c.Retry.MaxAttempts = 0 }, "max attempts"},
		{"negative delay", func(c *Config) { c.Retry.InitialDelay = -time.Second }, "initial delay"},
		{"zero delay", func(c *Config) { c.Retry.InitialDelay = 0 }, "initial delay must be positive"},
		{"openai without key", func(c *Config) { c.STT.Backend = "openai" }, "OPENAI_API_KEY"},
		{"unknown stt backend", func(c *Config) { c.STT.Backend = "vosk" }, "stt backend"},
		{"negative rate limit", func(c *Config) { c.RateLimit.RPS = -1 }, "rate limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.errorMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}
