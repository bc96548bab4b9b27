package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

const (
	ProviderOpenAI   = "openai"
	ProviderGoogleAI = "googleai"
)

// Models used when LLM_MODEL is unset.
const (
	DefaultOpenAIModel   = "llama3.1:8b"
	DefaultGoogleAIModel = "gemini-1.5-flash"
)

// Config is read from the environment. The defaults target a local
// OpenAI-compatible endpoint (Ollama) and an sqlite file next to the binary.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8100"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	StaticDir   string `env:"STATIC_DIR" envDefault:"web"`

	DatabasePath string `env:"DATABASE_PATH" envDefault:"parentpal.db"`

	LLMProvider       string        `env:"LLM_PROVIDER" envDefault:"openai"`
	LLMBaseURL        string        `env:"LLM_BASE_URL" envDefault:"http://localhost:11434/v1/"`
	OpenAIAPIKey      string        `env:"OPENAI_API_KEY"`
	GoogleAPIKey      string        `env:"GOOGLE_API_KEY"`
	Model             string        `env:"LLM_MODEL"`
	GenerationTimeout time.Duration `env:"GENERATION_TIMEOUT" envDefault:"60s"`

	SessionSecret string        `env:"SESSION_SECRET"`
	SessionCookie string        `env:"SESSION_COOKIE" envDefault:"session"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"720h"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load parses environment variables into Config and validates them.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	c.LLMProvider = strings.ToLower(strings.TrimSpace(c.LLMProvider))
	c.Model = strings.TrimSpace(c.Model)
	switch c.LLMProvider {
	case ProviderOpenAI:
		if c.Model == "" {
			c.Model = DefaultOpenAIModel
		}
	case ProviderGoogleAI:
		if strings.TrimSpace(c.GoogleAPIKey) == "" {
			return fmt.Errorf("GOOGLE_API_KEY is required when LLM_PROVIDER is %s", ProviderGoogleAI)
		}
		if c.Model == "" {
			c.Model = DefaultGoogleAIModel
		}
	default:
		return fmt.Errorf("unsupported LLM_PROVIDER %q", c.LLMProvider)
	}
	if c.GenerationTimeout <= 0 {
		return fmt.Errorf("GENERATION_TIMEOUT must be positive")
	}
	return nil
}

// RequireSessionSecret is checked by the HTTP server only; the CLI generators
// do not need one.
func (c *Config) RequireSessionSecret() error {
	if len(c.SessionSecret) < 32 {
		return fmt.Errorf("SESSION_SECRET must be at least 32 bytes")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
