package config

import (
	"os"
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/inkwell-ai/inkwell/internal/providers"
)

// LLMConfig describes one OpenAI-compatible model endpoint.
type LLMConfig struct {
	Model          string  `mapstructure:"model" yaml:"model" validate:"required"`
	APIKey         string  `mapstructure:"api_key" yaml:"api_key"`
	BaseURL        string  `mapstructure:"base_url" yaml:"base_url" validate:"omitempty,url"`
	RateLimit      int     `mapstructure:"rate_limit" yaml:"rate_limit" validate:"gte=0"`
	MaxRetries     int     `mapstructure:"max_retries" yaml:"max_retries" validate:"gte=0,lte=10"`
	Temperature    float64 `mapstructure:"temperature" yaml:"temperature" validate:"gte=0,lte=2"`
	MaxTokens      int     `mapstructure:"max_tokens" yaml:"max_tokens" validate:"gte=0"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds" yaml:"timeout_seconds" validate:"gte=0"`
	Enabled        bool    `mapstructure:"enabled" yaml:"enabled"`
}

// Timeout returns the per-call timeout.
func (c LLMConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// PollingConfig selects how steps pick model configurations.
type PollingConfig struct {
	Mode    string   `mapstructure:"mode" yaml:"mode" validate:"oneof=single sequential random"`
	Rounds  int      `mapstructure:"rounds" yaml:"rounds" validate:"gte=0,lte=10"`
	Primary string   `mapstructure:"primary" yaml:"primary"`
	Pool    []string `mapstructure:"pool" yaml:"pool"`
}

// GenerationConfig bounds prompt assembly and chunking.
type GenerationConfig struct {
	MaxOutputTokens        int `mapstructure:"max_output_tokens" yaml:"max_output_tokens" validate:"gte=0"`
	RecentBlueprintEntries int `mapstructure:"recent_blueprint_entries" yaml:"recent_blueprint_entries" validate:"gte=1"`
	PromptTokenBudget      int `mapstructure:"prompt_token_budget" yaml:"prompt_token_budget" validate:"gte=0"`
	CharacterWeightMin     int `mapstructure:"character_weight_min" yaml:"character_weight_min" validate:"gte=0,lte=100"`
	CharacterRecencyWindow int `mapstructure:"character_recency_window" yaml:"character_recency_window" validate:"gte=0"`
}

// Config is the full application configuration.
type Config struct {
	LLMConfigs map[string]LLMConfig `mapstructure:"llm_configs" yaml:"llm_configs" validate:"required,min=1,dive"`
	Polling    PollingConfig        `mapstructure:"polling" yaml:"polling"`
	Generation GenerationConfig     `mapstructure:"generation" yaml:"generation"`
}

var validate = validator.New()

// Validate checks the configuration. Called on every load and reload so a
// bad edit is rejected before it reaches a running pipeline.
func (c *Config) Validate() error {
	return validate.Struct(c)
}

// envVarPattern matches ${ENV_VAR} references.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// ResolveEnvVars expands ${ENV_VAR} references in a string.
func ResolveEnvVars(value string) string {
	if value == "" {
		return value
	}
	return envVarPattern.ReplaceAllStringFunc(value, func(match string) string {
		return os.Getenv(match[2 : len(match)-1])
	})
}

// ToRegistryConfig converts the config for providers.NewRegistry, resolving
// ${ENV_VAR} references in API keys and dropping disabled endpoints.
func (c *Config) ToRegistryConfig() providers.RegistryConfig {
	out := providers.RegistryConfig{
		LLMConfigs: make(map[string]providers.OpenAICompatConfig),
	}
	for name, llm := range c.LLMConfigs {
		if !llm.Enabled {
			continue
		}
		out.LLMConfigs[name] = providers.OpenAICompatConfig{
			Name:              name,
			Model:             llm.Model,
			APIKey:            ResolveEnvVars(llm.APIKey),
			BaseURL:           llm.BaseURL,
			RequestsPerMinute: llm.RateLimit,
			MaxRetries:        llm.MaxRetries,
			Temperature:       llm.Temperature,
			MaxTokens:         llm.MaxTokens,
			TimeoutSeconds:    llm.TimeoutSeconds,
		}
	}
	return out
}
