package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Extraction modes controlling when the AI capability is invoked.
const (
	// ModeRuleOnly never invokes the AI capability.
	ModeRuleOnly = "rule_only"
	// ModeHybrid invokes the AI capability when the rule-based result is
	// missing or below the confidence threshold.
	ModeHybrid = "hybrid"
	// ModeAIFirst always invokes the AI capability.
	ModeAIFirst = "ai_first"
)

// Supported AI providers.
const (
	ProviderGroq   = "groq"
	ProviderOpenAI = "openai"
)

// Default AI values.
const (
	// DefaultConfidenceThreshold gates AI invocation in hybrid mode.
	DefaultConfidenceThreshold = 0.75
	// DefaultMaxContentLength caps the page content sent to the model.
	DefaultMaxContentLength = 8000
	// DefaultAITimeout is the per-call model request timeout.
	DefaultAITimeout = 60 * time.Second

	// DefaultGroqModel is used when ai.model is unset with the groq provider.
	DefaultGroqModel = "llama-3.1-8b-instant"
	// DefaultGroqBaseURL is the OpenAI-compatible Groq endpoint.
	DefaultGroqBaseURL = "https://api.groq.com/openai/v1"
	// DefaultOpenAIModel is used when ai.model is unset with the openai provider.
	DefaultOpenAIModel = "gpt-4o-mini"
	// DefaultOpenAIBaseURL is the OpenAI API endpoint.
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
)

// AIConfig holds AI-assisted extraction configuration.
type AIConfig struct {
	// Enabled toggles the AI capability
	Enabled bool `env:"AI_ENABLED" yaml:"enabled"`
	// Mode is one of rule_only, hybrid, ai_first
	Mode string `env:"AI_MODE" yaml:"mode"`
	// Provider is one of groq, openai
	Provider string `env:"AI_PROVIDER" yaml:"provider"`
	// Model overrides the provider's default model
	Model string `env:"AI_MODEL" yaml:"model"`
	// BaseURL overrides the provider's default endpoint
	BaseURL string `env:"AI_BASE_URL" yaml:"base_url"`
	// APIKey authenticates against the provider
	APIKey string `env:"AI_API_KEY" yaml:"api_key"`
	// ConfidenceThreshold gates AI invocation in hybrid mode
	ConfidenceThreshold float64 `env:"AI_CONFIDENCE_THRESHOLD" yaml:"confidence_threshold"`
	// MaxContentLength caps the page content characters sent to the model
	MaxContentLength int `env:"AI_MAX_CONTENT_LENGTH" yaml:"max_content_length"`
	// Timeout is the per-call request timeout
	Timeout time.Duration `env:"AI_TIMEOUT" yaml:"timeout"`
}

func loadAIConfig() AIConfig {
	cfg := AIConfig{
		Enabled:             viper.GetBool("ai.enabled"),
		Mode:                viper.GetString("ai.mode"),
		Provider:            viper.GetString("ai.provider"),
		Model:               viper.GetString("ai.model"),
		BaseURL:             viper.GetString("ai.base_url"),
		APIKey:              viper.GetString("ai.api_key"),
		ConfidenceThreshold: viper.GetFloat64("ai.confidence_threshold"),
		MaxContentLength:    viper.GetInt("ai.max_content_length"),
		Timeout:             viper.GetDuration("ai.timeout"),
	}
	cfg.applyProviderDefaults()
	return cfg
}

// applyProviderDefaults fills model and endpoint from the provider choice.
func (c *AIConfig) applyProviderDefaults() {
	switch c.Provider {
	case ProviderOpenAI:
		if c.Model == "" {
			c.Model = DefaultOpenAIModel
		}
		if c.BaseURL == "" {
			c.BaseURL = DefaultOpenAIBaseURL
		}
	default:
		if c.Model == "" {
			c.Model = DefaultGroqModel
		}
		if c.BaseURL == "" {
			c.BaseURL = DefaultGroqBaseURL
		}
	}
}

// Validate checks AI configuration values.
func (c *AIConfig) Validate() error {
	switch c.Mode {
	case ModeRuleOnly, ModeHybrid, ModeAIFirst:
	default:
		return fmt.Errorf("%w: ai.mode %q", ErrInvalidValue, c.Mode)
	}
	switch c.Provider {
	case ProviderGroq, ProviderOpenAI:
	default:
		return fmt.Errorf("%w: ai.provider %q", ErrInvalidValue, c.Provider)
	}
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		return fmt.Errorf("%w: ai.confidence_threshold must be within [0,1]", ErrInvalidValue)
	}
	if c.Enabled && c.Mode != ModeRuleOnly && c.APIKey == "" {
		return fmt.Errorf("%w: ai.api_key required when AI is enabled", ErrMissingValue)
	}
	return nil
}
