package aiagent

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func envLookup(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.AppName != "AI Agent Backend" || cfg.AppVersion != "1.0.0" {
		t.Errorf("unexpected app identity: %s %s", cfg.AppName, cfg.AppVersion)
	}
	if cfg.AgentTimeout != 30*time.Second {
		t.Errorf("expected 30s agent timeout, got: %s", cfg.AgentTimeout)
	}
	if cfg.RequestTimeout != 35*time.Second {
		t.Errorf("expected 35s request timeout, got: %s", cfg.RequestTimeout)
	}
	if cfg.MaxQueryLength != 1000 {
		t.Errorf("expected max query length 1000, got: %d", cfg.MaxQueryLength)
	}
	if cfg.LMStudio.BaseURL != "http://localhost:1234/v1" || cfg.LMStudio.Model != "local-model" || cfg.LMStudio.APIKey != "lm-studio" {
		t.Errorf("unexpected LM Studio defaults: %+v", cfg.LMStudio)
	}
	if cfg.Weather.DefaultLocation != "Jakarta" {
		t.Errorf("expected Jakarta, got: %s", cfg.Weather.DefaultLocation)
	}
	if cfg.Weather.BaseURL != "https://api.openweathermap.org/data/2.5" {
		t.Errorf("unexpected weather base URL: %s", cfg.Weather.BaseURL)
	}
	if cfg.LLMProvider != ProviderOpenAI {
		t.Errorf("expected openai provider, got: %s", cfg.LLMProvider)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected defaults to validate, got: %v", err)
	}
}

func TestLoadConfig_Env(t *testing.T) {
	cfg, err := loadConfig("", envLookup(map[string]string{
		"APP_NAME":            "Test Agent",
		"DEBUG":               "yes",
		"AGENT_TIMEOUT":       "10",
		"OPENWEATHER_API_KEY": " key ",
		"DEFAULT_LOCATION":    "Bandung",
		"LM_STUDIO_MODEL":     "qwen",
		"ALLOWED_ORIGINS":     "https://a.example, https://b.example,",
		"MAX_QUERY_LENGTH":    "200",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.AppName != "Test Agent" {
		t.Errorf("expected app name override, got: %s", cfg.AppName)
	}
	if !cfg.Debug {
		t.Error("expected debug enabled")
	}
	if cfg.AgentTimeout != 10*time.Second || cfg.RequestTimeout != 15*time.Second {
		t.Errorf("unexpected timeouts: agent=%s request=%s", cfg.AgentTimeout, cfg.RequestTimeout)
	}
	if cfg.Weather.APIKey != "key" || cfg.Weather.DefaultLocation != "Bandung" {
		t.Errorf("unexpected weather config: %+v", cfg.Weather)
	}
	if cfg.LMStudio.Model != "qwen" {
		t.Errorf("expected model qwen, got: %s", cfg.LMStudio.Model)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("unexpected origins: %v", cfg.AllowedOrigins)
	}
	if cfg.MaxQueryLength != 200 {
		t.Errorf("expected 200, got: %d", cfg.MaxQueryLength)
	}
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
app_name: From File
agent_timeout: 20s
llm_provider: anthropic
anthropic:
  api_key: ${TEST_ANTHROPIC_KEY}
  model: claude-test
weather:
  default_location: Surabaya
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Run("reads yaml and expands variables", func(t *testing.T) {
		cfg, err := loadConfig(path, envLookup(map[string]string{"TEST_ANTHROPIC_KEY": "sk-test"}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.AppName != "From File" || cfg.AgentTimeout != 20*time.Second {
			t.Errorf("unexpected config: %+v", cfg)
		}
		if cfg.LLMProvider != ProviderAnthropic || cfg.Anthropic.APIKey != "sk-test" || cfg.Anthropic.Model != "claude-test" {
			t.Errorf("unexpected anthropic config: %s %+v", cfg.LLMProvider, cfg.Anthropic)
		}
		if cfg.Weather.DefaultLocation != "Surabaya" {
			t.Errorf("expected Surabaya, got: %s", cfg.Weather.DefaultLocation)
		}
	})

	t.Run("environment wins over file", func(t *testing.T) {
		cfg, err := loadConfig(path, envLookup(map[string]string{
			"DEFAULT_LOCATION": "Medan",
			"AGENT_TIMEOUT":    "5",
		}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Weather.DefaultLocation != "Medan" || cfg.AgentTimeout != 5*time.Second {
			t.Errorf("expected env overrides, got: %s %s", cfg.Weather.DefaultLocation, cfg.AgentTimeout)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml"), envLookup(nil))
		if err == nil {
			t.Error("expected error for missing file")
		}
	})
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"bad debug", map[string]string{"DEBUG": "maybe"}, "DEBUG"},
		{"bad timeout", map[string]string{"AGENT_TIMEOUT": "soon"}, "AGENT_TIMEOUT"},
		{"negative timeout", map[string]string{"AGENT_TIMEOUT": "-3"}, "AGENT_TIMEOUT"},
		{"bad length", map[string]string{"MAX_QUERY_LENGTH": "0"}, "MAX_QUERY_LENGTH"},
		{"unknown provider", map[string]string{"LLM_PROVIDER": "cohere"}, "llm_provider"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := loadConfig("", envLookup(tc.env))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Errorf("expected error mentioning %s, got: %v", tc.want, err)
			}
		})
	}
}

func TestParseBool(t *testing.T) {
	for _, s := range []string{"true", "1", "YES", "on"} {
		if v, err := parseBool(s); err != nil || !v {
			t.Errorf("%q: expected true, got %v (%v)", s, v, err)
		}
	}
	for _, s := range []string{"false", "0", "no", "off", ""} {
		if v, err := parseBool(s); err != nil || v {
			t.Errorf("%q: expected false, got %v (%v)", s, v, err)
		}
	}
}

func TestNewAgentFromConfig(t *testing.T) {
	cfg := DefaultConfig()
	agent, err := NewAgentFromConfig(cfg, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := agent.Classify("2 * 3"); got != "math" {
		t.Errorf("expected math, got: %s", got)
	}

	t.Run("anthropic without key leaves general unconfigured", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.LLMProvider = ProviderAnthropic
		if p := NewLLMProvider(cfg, nil); p != nil {
			t.Errorf("expected nil provider, got: %T", p)
		}
	})

	t.Run("openai by default", func(t *testing.T) {
		if p := NewLLMProvider(DefaultConfig(), nil); p == nil {
			t.Error("expected a provider")
		}
	})
}
