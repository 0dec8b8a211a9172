package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig_Validates(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}

func TestValidate_RejectsBadConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Polling.Mode = "roulette"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown polling mode")
	}

	cfg = DefaultConfig()
	llm := cfg.LLMConfigs["openai"]
	llm.Model = ""
	cfg.LLMConfigs["openai"] = llm
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing model")
	}
}

func TestResolveEnvVars(t *testing.T) {
	t.Setenv("INKWELL_TEST_KEY", "sk-123")

	if got := ResolveEnvVars("${INKWELL_TEST_KEY}"); got != "sk-123" {
		t.Errorf("expected sk-123, got %q", got)
	}
	if got := ResolveEnvVars("prefix-${INKWELL_TEST_KEY}-suffix"); got != "prefix-sk-123-suffix" {
		t.Errorf("unexpected interpolation: %q", got)
	}
	if got := ResolveEnvVars("${INKWELL_TEST_UNSET_KEY}"); got != "" {
		t.Errorf("unset vars resolve empty, got %q", got)
	}
	if got := ResolveEnvVars("plain"); got != "plain" {
		t.Errorf("plain strings pass through, got %q", got)
	}
}

func TestToRegistryConfig(t *testing.T) {
	t.Setenv("INKWELL_TEST_KEY", "sk-123")

	cfg := &Config{
		LLMConfigs: map[string]LLMConfig{
			"main": {
				Model: "gpt-4o", APIKey: "${INKWELL_TEST_KEY}",
				RateLimit: 30, MaxRetries: 2,
				Temperature: 0.5, MaxTokens: 4096, TimeoutSeconds: 300,
				Enabled: true,
			},
			"disabled": {Model: "other", Enabled: false},
		},
	}

	rc := cfg.ToRegistryConfig()
	if len(rc.LLMConfigs) != 1 {
		t.Fatalf("disabled configs must be dropped, got %d", len(rc.LLMConfigs))
	}
	main := rc.LLMConfigs["main"]
	if main.APIKey != "sk-123" {
		t.Errorf("api key not resolved: %q", main.APIKey)
	}
	if main.Name != "main" || main.RequestsPerMinute != 30 || main.MaxRetries != 2 {
		t.Errorf("unexpected registry config: %+v", main)
	}
	if main.Temperature != 0.5 || main.MaxTokens != 4096 || main.TimeoutSeconds != 300 {
		t.Errorf("endpoint defaults not carried: %+v", main)
	}
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	if !strings.HasPrefix(text, "# Inkwell configuration") {
		t.Error("missing header comment")
	}
	if !strings.Contains(text, "llm_configs") || !strings.Contains(text, "${OPENAI_API_KEY}") {
		t.Errorf("default config content missing:\n%s", text)
	}
}
