package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration for SmartResume.
type Config struct {
	Server    ServerConfig
	Session   SessionConfig
	Inference InferenceConfig
}

// ServerConfig controls the web surface.
type ServerConfig struct {
	Addr string `cfg:"server.addr" validate:"required"`
}

// SessionConfig selects where per-session form state lives and how long it idles.
type SessionConfig struct {
	Store           string        `cfg:"session.store" validate:"oneof=memory sqlite redis"`
	TTL             time.Duration `cfg:"session.ttl" validate:"gt=0"`
	CleanupInterval time.Duration `cfg:"session.cleanup_interval" validate:"gt=0"`
	SQLitePath      string        `cfg:"session.sqlite_path" validate:"required_if=Store sqlite"`
	RedisURL        string        `cfg:"session.redis_url" validate:"required_if=Store redis"`
}

// InferenceConfig describes the remote text-generation endpoint. It is built
// once at startup and handed to the inference client by pointer.
type InferenceConfig struct {
	Provider     string        `cfg:"inference.provider" validate:"oneof=huggingface openai anthropic gemini"`
	BaseURL      string        `cfg:"inference.base_url"`
	Model        string        `cfg:"inference.model" validate:"required"`
	APIKey       string        `cfg:"inference.api_key" validate:"required"` // expanded from env var by Load
	Temperature  float64       `cfg:"inference.temperature" validate:"gte=0,lte=2"`
	MaxNewTokens int           `cfg:"inference.max_new_tokens" validate:"gt=0"`
	Timeout      time.Duration `cfg:"inference.timeout" validate:"gte=0"` // 0 = transport default
	MaxRetries   int           `cfg:"inference.max_retries" validate:"gte=0,lte=5"`
	PromptFile   string        `cfg:"inference.prompt_file"`
}

// ConfigError reports a configuration problem that prevents startup.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return "config: " + e.Message
	}
	return fmt.Sprintf("config: %s %s", e.Field, e.Message)
}

const (
	DefaultAddr        = ":8501"
	DefaultTemperature = 0.6
	DefaultMaxTokens   = 512
	DefaultSessionTTL  = 2 * time.Hour

	// Environment variables consulted when inference.api_key is empty, in order.
	EnvAPIKey            = "SMARTRESUME_API_KEY"
	EnvHuggingFaceToken  = "HUGGINGFACEHUB_API_TOKEN"
	defaultCleanupPeriod = 10 * time.Minute
)

// providerDefaults holds the model and endpoint used when the config leaves them blank.
var providerDefaults = map[string]struct{ model, baseURL string }{
	"huggingface": {"mistralai/Mixtral-8x7B-Instruct-v0.1", "https://api-inference.huggingface.co"},
	"openai":      {"gpt-4o-mini", "https://api.openai.com/v1"},
	"anthropic":   {"claude-sonnet-4-20250514", ""},
	"gemini":      {"gemini-1.5-flash", ""},
}

// rawConfig is used for YAML unmarshaling (snake_case fields and duration as string).
type rawConfig struct {
	Server    rawServerConfig    `yaml:"server"`
	Session   rawSessionConfig   `yaml:"session"`
	Inference rawInferenceConfig `yaml:"inference"`
}

type rawServerConfig struct {
	Addr string `yaml:"addr"`
}

type rawSessionConfig struct {
	Store           string `yaml:"store"`
	TTL             string `yaml:"ttl"`
	CleanupInterval string `yaml:"cleanup_interval"`
	SQLitePath      string `yaml:"sqlite_path"`
	RedisURL        string `yaml:"redis_url"`
}

type rawInferenceConfig struct {
	Provider     string   `yaml:"provider"`
	BaseURL      string   `yaml:"base_url"`
	Model        string   `yaml:"model"`
	APIKey       string   `yaml:"api_key"`
	Temperature  *float64 `yaml:"temperature"`
	MaxNewTokens int      `yaml:"max_new_tokens"`
	Timeout      string   `yaml:"timeout"`
	MaxRetries   int      `yaml:"max_retries"`
	PromptFile   string   `yaml:"prompt_file"`
}

// Load reads and parses the YAML config file at path, fills defaults, validates
// it, and returns Config. An empty path skips the file and builds the config
// from defaults and the environment alone.
func Load(path string) (*Config, error) {
	var raw rawConfig
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}

		// Expand environment variables
		expanded := os.ExpandEnv(string(data))

		if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg, err := fromRaw(raw)
	if err != nil {
		return nil, err
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func fromRaw(raw rawConfig) (*Config, error) {
	ttl, err := parseDuration("session.ttl", raw.Session.TTL, DefaultSessionTTL)
	if err != nil {
		return nil, err
	}
	cleanup, err := parseDuration("session.cleanup_interval", raw.Session.CleanupInterval, defaultCleanupPeriod)
	if err != nil {
		return nil, err
	}
	timeout, err := parseDuration("inference.timeout", raw.Inference.Timeout, 0)
	if err != nil {
		return nil, err
	}

	addr := raw.Server.Addr
	if addr == "" {
		addr = DefaultAddr
	}

	store := raw.Session.Store
	if store == "" {
		store = "memory"
	}
	sqlitePath := raw.Session.SQLitePath
	if sqlitePath == "" {
		sqlitePath = ":memory:"
	}

	provider := raw.Inference.Provider
	if provider == "" {
		provider = "huggingface"
	}
	defaults := providerDefaults[provider]

	model := raw.Inference.Model
	if model == "" {
		model = defaults.model
	}
	baseURL := raw.Inference.BaseURL
	if baseURL == "" {
		baseURL = defaults.baseURL
	}

	apiKey := raw.Inference.APIKey
	if apiKey == "" {
		apiKey = os.Getenv(EnvAPIKey)
	}
	if apiKey == "" {
		apiKey = os.Getenv(EnvHuggingFaceToken)
	}

	temperature := DefaultTemperature
	if raw.Inference.Temperature != nil {
		temperature = *raw.Inference.Temperature
	}

	maxTokens := raw.Inference.MaxNewTokens
	if maxTokens == 0 {
		maxTokens = DefaultMaxTokens
	}

	return &Config{
		Server: ServerConfig{Addr: addr},
		Session: SessionConfig{
			Store:           store,
			TTL:             ttl,
			CleanupInterval: cleanup,
			SQLitePath:      sqlitePath,
			RedisURL:        raw.Session.RedisURL,
		},
		Inference: InferenceConfig{
			Provider:     provider,
			BaseURL:      baseURL,
			Model:        model,
			APIKey:       apiKey,
			Temperature:  temperature,
			MaxNewTokens: maxTokens,
			Timeout:      timeout,
			MaxRetries:   raw.Inference.MaxRetries,
			PromptFile:   raw.Inference.PromptFile,
		},
	}, nil
}

func parseDuration(field, raw string, def time.Duration) (time.Duration, error) {
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, &ConfigError{Field: field, Message: fmt.Sprintf("parse %q: %v", raw, err)}
	}
	return d, nil
}

var validate = func() func(cfg *Config) error {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("cfg"); name != "" {
			return name
		}
		return f.Name
	})

	return func(cfg *Config) error {
		err := v.Struct(cfg)
		if err == nil {
			return nil
		}
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("validate config: %w", err)
		}
		fe := verrs[0]
		return &ConfigError{Field: fe.Field(), Message: describe(fe)}
	}
}()

func describe(fe validator.FieldError) string {
	switch {
	case fe.Field() == "inference.api_key":
		return fmt.Sprintf("is required (set it in the config file or export %s or %s)", EnvAPIKey, EnvHuggingFaceToken)
	case fe.Tag() == "required" || fe.Tag() == "required_if":
		return "is required"
	case fe.Tag() == "oneof":
		return fmt.Sprintf("must be one of [%s], got %q", fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("must satisfy %s=%s, got %v", fe.Tag(), fe.Param(), fe.Value())
	}
}
