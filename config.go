package aiagent

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ourstudio-se/ai-agent-backend/llm/anthropic"
	"github.com/ourstudio-se/ai-agent-backend/tools/weather"
)

// LLM provider names accepted in Config.LLMProvider.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Config is read once at startup and never mutated afterwards.
type Config struct {
	// AppName is reported by GET / and in telemetry.
	// Defaults to "AI Agent Backend".
	AppName string `yaml:"app_name"`

	// AppVersion is reported by GET / and the version command.
	// Defaults to "1.0.0".
	AppVersion string `yaml:"app_version"`

	// Debug enables debug logging.
	Debug bool `yaml:"debug"`

	// HTTPAddr is the listen address.
	// Defaults to ":8000".
	HTTPAddr string `yaml:"http_addr"`

	// AllowedOrigins for CORS.
	// Defaults to allowing all origins.
	AllowedOrigins []string `yaml:"allowed_origins"`

	// MaxQueryLength is the maximum query length in characters.
	// Defaults to 1000.
	MaxQueryLength int `yaml:"max_query_length"`

	// MaxRequestBodySize caps the request body in bytes.
	// Defaults to 64 KiB.
	MaxRequestBodySize int64 `yaml:"max_request_body_size"`

	// AgentTimeout bounds each outbound provider call.
	// Defaults to 30 seconds.
	AgentTimeout time.Duration `yaml:"agent_timeout"`

	// RequestTimeout bounds a whole HTTP request.
	// Defaults to AgentTimeout plus 5 seconds.
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// LLMProvider selects the general tool backend: "openai" for any
	// OpenAI-compatible server such as LM Studio, or "anthropic".
	// Defaults to "openai".
	LLMProvider string `yaml:"llm_provider"`

	LMStudio  LMStudioConfig  `yaml:"lm_studio"`
	Anthropic AnthropicConfig `yaml:"anthropic"`
	Weather   WeatherConfig   `yaml:"weather"`
}

// LMStudioConfig configures the OpenAI-compatible completion endpoint.
type LMStudioConfig struct {
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
	APIKey  string `yaml:"api_key"`
}

// AnthropicConfig configures the Anthropic provider.
type AnthropicConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// WeatherConfig configures the OpenWeather provider.
type WeatherConfig struct {
	// APIKey may be empty; weather queries then fail as not configured.
	APIKey          string `yaml:"api_key"`
	BaseURL         string `yaml:"base_url"`
	DefaultLocation string `yaml:"default_location"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{}.withDefaults()
}

// withDefaults applies default values to the config.
func (c Config) withDefaults() Config {
	if c.AppName == "" {
		c.AppName = "AI Agent Backend"
	}
	if c.AppVersion == "" {
		c.AppVersion = "1.0.0"
	}
	if c.HTTPAddr == "" {
		c.HTTPAddr = ":8000"
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.MaxQueryLength <= 0 {
		c.MaxQueryLength = 1000
	}
	if c.MaxRequestBodySize <= 0 {
		c.MaxRequestBodySize = 64 << 10
	}
	if c.AgentTimeout <= 0 {
		c.AgentTimeout = 30 * time.Second
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = c.AgentTimeout + 5*time.Second
	}
	if c.LLMProvider == "" {
		c.LLMProvider = ProviderOpenAI
	}
	if c.LMStudio.BaseURL == "" {
		c.LMStudio.BaseURL = "http://localhost:1234/v1"
	}
	if c.LMStudio.Model == "" {
		c.LMStudio.Model = "local-model"
	}
	if c.LMStudio.APIKey == "" {
		c.LMStudio.APIKey = "lm-studio"
	}
	if c.Anthropic.Model == "" {
		c.Anthropic.Model = anthropic.DefaultModel
	}
	if c.Weather.BaseURL == "" {
		c.Weather.BaseURL = weather.DefaultBaseURL
	}
	if c.Weather.DefaultLocation == "" {
		c.Weather.DefaultLocation = "Jakarta"
	}
	return c
}

// Validate checks the settings that cannot be defaulted.
func (c Config) Validate() error {
	switch c.LLMProvider {
	case ProviderOpenAI, ProviderAnthropic:
	default:
		return fmt.Errorf("llm_provider must be %q or %q, got %q", ProviderOpenAI, ProviderAnthropic, c.LLMProvider)
	}
	if c.RequestTimeout < c.AgentTimeout {
		return fmt.Errorf("request_timeout (%s) must not be shorter than agent_timeout (%s)", c.RequestTimeout, c.AgentTimeout)
	}
	if strings.TrimSpace(c.Weather.DefaultLocation) == "" {
		return fmt.Errorf("weather.default_location is required")
	}
	return nil
}

// LoadConfig reads the optional YAML file at path, applies environment
// overrides and defaults, and validates the result. An empty path skips the
// file. ${VAR} references inside the file are expanded.
func LoadConfig(path string) (Config, error) {
	return loadConfig(path, os.LookupEnv)
}

func loadConfig(path string, lookup func(string) (string, bool)) (Config, error) {
	var cfg Config

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		expanded := os.Expand(string(raw), func(key string) string {
			v, _ := lookup(key)
			return v
		})
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse yaml: %w", err)
		}
	}

	if err := applyEnv(&cfg, lookup); err != nil {
		return Config{}, err
	}

	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// applyEnv overrides cfg with every environment variable that is set.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"APP_NAME":             &cfg.AppName,
		"APP_VERSION":          &cfg.AppVersion,
		"HTTP_ADDR":            &cfg.HTTPAddr,
		"LLM_PROVIDER":         &cfg.LLMProvider,
		"LM_STUDIO_BASE_URL":   &cfg.LMStudio.BaseURL,
		"LM_STUDIO_MODEL":      &cfg.LMStudio.Model,
		"LM_STUDIO_API_KEY":    &cfg.LMStudio.APIKey,
		"ANTHROPIC_API_KEY":    &cfg.Anthropic.APIKey,
		"ANTHROPIC_BASE_URL":   &cfg.Anthropic.BaseURL,
		"ANTHROPIC_MODEL":      &cfg.Anthropic.Model,
		"OPENWEATHER_API_KEY":  &cfg.Weather.APIKey,
		"OPENWEATHER_BASE_URL": &cfg.Weather.BaseURL,
		"DEFAULT_LOCATION":     &cfg.Weather.DefaultLocation,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok {
			*dst = strings.TrimSpace(v)
		}
	}

	if v, ok := lookup("DEBUG"); ok {
		debug, err := parseBool(v)
		if err != nil {
			return fmt.Errorf("DEBUG: %w", err)
		}
		cfg.Debug = debug
	}
	if v, ok := lookup("AGENT_TIMEOUT"); ok {
		d, err := parseSeconds(v)
		if err != nil {
			return fmt.Errorf("AGENT_TIMEOUT: %w", err)
		}
		cfg.AgentTimeout = d
	}
	if v, ok := lookup("MAX_QUERY_LENGTH"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n <= 0 {
			return fmt.Errorf("MAX_QUERY_LENGTH: invalid value %q", v)
		}
		cfg.MaxQueryLength = n
	}
	if v, ok := lookup("ALLOWED_ORIGINS"); ok {
		cfg.AllowedOrigins = nil
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
			}
		}
	}
	return nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "on":
		return true, nil
	case "false", "0", "no", "off", "":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", s)
}

// parseSeconds accepts whole seconds ("30") or a Go duration ("1m30s").
func parseSeconds(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n <= 0 {
			return 0, fmt.Errorf("must be positive, got %d", n)
		}
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive, got %s", d)
	}
	return d, nil
}
