package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Fetch     FetchConfig     `yaml:"fetch"`
	Retry     RetryConfig     `yaml:"retry"`
	STT       STTConfig       `yaml:"stt"`
	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	CORS      CORSConfig      `yaml:"cors"`

	serializeSet bool // stt.serialize given in the config file
}

type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

type FetchConfig struct {
	Backend  string        `yaml:"backend"` // "youtube" or "ytdlp"
	TempDir  string        `yaml:"temp_dir"`
	YTDLPBin string        `yaml:"ytdlp_bin"`
	Timeout  time.Duration `yaml:"timeout"`
}

type RetryConfig struct {
	MaxAttempts  int           `yaml:"max_attempts"`
	InitialDelay time.Duration `yaml:"initial_delay"`
}

type STTConfig struct {
	Backend       string `yaml:"backend"` // "openai" or "local"
	OpenAIKey     string `yaml:"openai_key"`
	OpenAIBaseURL string `yaml:"openai_base_url"`
	OpenAIModel   string `yaml:"openai_model"`
	LocalBaseURL  string `yaml:"local_base_url"` // default: "http://localhost:8178/v1"
	LocalModel    string `yaml:"local_model"`
	Language      string `yaml:"language"`
	Prompt        string `yaml:"prompt"` // optional vocabulary hint passed to the engine
	// Serialize guards the engine with a process-wide lock when it cannot
	// serve concurrent requests.
	Serialize bool `yaml:"serialize"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"` // empty disables auth
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Defaults returns the configuration used when neither a file nor the
// environment sets a value.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			WriteTimeout: 10 * time.Minute,
		},
		Log: LogConfig{Level: "info"},
		Fetch: FetchConfig{
			Backend: "youtube",
			TempDir: os.TempDir(),
			Timeout: 10 * time.Minute,
		},
		Retry: RetryConfig{
			MaxAttempts:  3,
			InitialDelay: 10 * time.Second,
		},
		STT: STTConfig{
			Backend:      "local",
			OpenAIModel:  "whisper-1",
			LocalBaseURL: "http://localhost:8178/v1",
			LocalModel:   "tiny",
			Serialize:    true,
		},
		RateLimit: RateLimitConfig{RPS: 5, Burst: 10},
		CORS:      CORSConfig{AllowedOrigins: []string{"*"}},
	}
}

// Load builds the configuration from defaults, the optional YAML file named
// by CONFIG_FILE, and finally the environment.
func Load() (*Config, error) {
	cfg := Defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	var explicit struct {
		STT struct {
			Serialize *bool `yaml:"serialize"`
		} `yaml:"stt"`
	}
	if err := yaml.Unmarshal(data, &explicit); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	c.serializeSet = explicit.STT.Serialize != nil
	return nil
}

func (c *Config) applyEnv() error {
	var err error

	c.Server.Host = getEnv("SERVER_HOST", c.Server.Host)
	if c.Server.Port, err = getEnvInt("SERVER_PORT", c.Server.Port); err != nil {
		return fmt.Errorf("invalid SERVER_PORT: %w", err)
	}
	if c.Server.WriteTimeout, err = getEnvDuration("SERVER_WRITE_TIMEOUT", c.Server.WriteTimeout); err != nil {
		return fmt.Errorf("invalid SERVER_WRITE_TIMEOUT: %w", err)
	}

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)

	c.Fetch.Backend = getEnv("FETCH_BACKEND", c.Fetch.Backend)
	c.Fetch.TempDir = getEnv("FETCH_TEMP_DIR", c.Fetch.TempDir)
	c.Fetch.YTDLPBin = getEnv("FETCH_YTDLP_BIN", c.Fetch.YTDLPBin)
	if c.Fetch.Timeout, err = getEnvDuration("FETCH_TIMEOUT", c.Fetch.Timeout); err != nil {
		return fmt.Errorf("invalid FETCH_TIMEOUT: %w", err)
	}

	if c.Retry.MaxAttempts, err = getEnvInt("RETRY_MAX_ATTEMPTS", c.Retry.MaxAttempts); err != nil {
		return fmt.Errorf("invalid RETRY_MAX_ATTEMPTS: %w", err)
	}
	if c.Retry.InitialDelay, err = getEnvDuration("RETRY_INITIAL_DELAY", c.Retry.InitialDelay); err != nil {
		return fmt.Errorf("invalid RETRY_INITIAL_DELAY: %w", err)
	}

	c.STT.Backend = getEnv("STT_BACKEND", c.STT.Backend)
	c.STT.OpenAIKey = getEnv("OPENAI_API_KEY", c.STT.OpenAIKey)
	c.STT.OpenAIBaseURL = getEnv("STT_OPENAI_BASE_URL", c.STT.OpenAIBaseURL)
	c.STT.OpenAIModel = getEnv("STT_OPENAI_MODEL", c.STT.OpenAIModel)
	c.STT.LocalBaseURL = getEnv("STT_LOCAL_BASE_URL", c.STT.LocalBaseURL)
	c.STT.LocalModel = getEnv("STT_LOCAL_MODEL", c.STT.LocalModel)
	c.STT.Language = getEnv("STT_LANGUAGE", c.STT.Language)
	c.STT.Prompt = getEnv("STT_PROMPT", c.STT.Prompt)
	// Only the local model needs the lock, unless the file says otherwise.
	serializeDefault := c.STT.Backend == "local"
	if c.serializeSet {
		serializeDefault = c.STT.Serialize
	}
	if c.STT.Serialize, err = getEnvBool("STT_SERIALIZE", serializeDefault); err != nil {
		return fmt.Errorf("invalid STT_SERIALIZE: %w", err)
	}

	c.Auth.JWTSecret = getEnv("AUTH_JWT_SECRET", c.Auth.JWTSecret)

	if c.RateLimit.RPS, err = getEnvFloat("RATE_LIMIT_RPS", c.RateLimit.RPS); err != nil {
		return fmt.Errorf("invalid RATE_LIMIT_RPS: %w", err)
	}
	if c.RateLimit.Burst, err = getEnvInt("RATE_LIMIT_BURST", c.RateLimit.Burst); err != nil {
		return fmt.Errorf("invalid RATE_LIMIT_BURST: %w", err)
	}

	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		c.CORS.AllowedOrigins = splitList(v)
	}
	return nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port))
	}
	switch c.Fetch.Backend {
	case "youtube", "ytdlp":
	default:
		errs = append(errs, fmt.Errorf("fetch backend must be youtube or ytdlp, got %q", c.Fetch.Backend))
	}
	if c.Retry.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("retry max attempts must be at least 1, got %d", c.Retry.MaxAttempts))
	}
	if c.Retry.InitialDelay <= 0 {
		errs = append(errs, fmt.Errorf("retry initial delay must be positive, got %s", c.Retry.InitialDelay))
	}
	switch c.STT.Backend {
	case "openai":
		if c.STT.OpenAIKey == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY is required for the openai STT backend"))
		}
	case "local":
		if c.STT.LocalBaseURL == "" {
			errs = append(errs, errors.New("STT_LOCAL_BASE_URL is required for the local STT backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("stt backend must be openai or local, got %q", c.STT.Backend))
	}
	if c.RateLimit.RPS < 0 || c.RateLimit.Burst < 0 {
		errs = append(errs, errors.New("rate limit values cannot be negative"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.ParseFloat(v, 64)
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.ParseBool(v)
}

// getEnvDuration accepts Go durations ("30s") and bare seconds ("30").
func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(v)
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
