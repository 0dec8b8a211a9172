package config

// DefaultConfig returns the configuration written by `inkwell init` and used
// as the viper default layer.
func DefaultConfig() *Config {
	return &Config{
		LLMConfigs: map[string]LLMConfig{
			"openai": {
				Model:          "gpt-4o",
				APIKey:         "${OPENAI_API_KEY}",
				BaseURL:        "https://api.openai.com/v1",
				RateLimit:      60,
				MaxRetries:     3,
				Temperature:    0.7,
				MaxTokens:      8192,
				TimeoutSeconds: 600,
				Enabled:        true,
			},
			"deepseek": {
				Model:          "deepseek-chat",
				APIKey:         "${DEEPSEEK_API_KEY}",
				BaseURL:        "https://api.deepseek.com/v1",
				RateLimit:      60,
				MaxRetries:     3,
				Temperature:    0.7,
				MaxTokens:      8192,
				TimeoutSeconds: 600,
				Enabled:        false,
			},
		},
		Polling: PollingConfig{
			Mode:    "single",
			Rounds:  2,
			Primary: "openai",
		},
		Generation: GenerationConfig{
			MaxOutputTokens:        8192,
			RecentBlueprintEntries: 100,
			PromptTokenBudget:      16000,
			CharacterWeightMin:     60,
			CharacterRecencyWindow: 20,
		},
	}
}
