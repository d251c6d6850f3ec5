// Package config loads configuration from environment variables with an
// optional YAML file (~/.studymate/config.yaml) providing defaults.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// LLM providers.
const (
	ProviderOllama    = "ollama"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderBedrock   = "bedrock"
)

// Config holds all configuration values.
type Config struct {
	// Identity
	UserID   string
	Timezone string

	// Memory service
	MemoryURL    string
	MemoryAPIKey string

	// LLM
	LLMProvider     string
	LLMModel        string
	LLMTemperature  float64
	LLMMaxTokens    int
	OpenAIAPIKey    string
	AnthropicAPIKey string
	OllamaHost      string

	// Google Calendar OAuth
	GoogleClientID     string
	GoogleClientSecret string
	RedirectURL        string
	TokenFile          string

	// Web server
	ServerPort string

	// Logging
	LogFile  string
	LogLevel slog.Level

	// Feature flags
	EnableMemory   bool
	EnableCalendar bool

	// Limits
	MaxHistory       int
	MaxMemoryResults int
	MaxEvents        int
}

// Load reads configuration from environment variables, falling back to the
// config file and then to built-in defaults.
func Load() Config {
	return loadFrom(DefaultConfigPath(), os.Getenv)
}

// loadFrom resolves configuration against an explicit file path and
// environment lookup, so tests can run against a controlled environment.
func loadFrom(path string, getenv func(string) string) Config {
	file := loadFile(path)
	get := func(key, def string) string { return lookup(getenv, file, key, def) }

	return Config{
		UserID:   get("STUDYMATE_USER", "student"),
		Timezone: get("STUDYMATE_TIMEZONE", ""),

		MemoryURL:    get("STUDYMATE_MEMORY_URL", "https://api.mem0.ai"),
		MemoryAPIKey: get("MEM0_API_KEY", ""),

		LLMProvider:     strings.ToLower(get("STUDYMATE_LLM_PROVIDER", ProviderOllama)),
		LLMModel:        get("STUDYMATE_LLM_MODEL", "llama3"),
		LLMTemperature:  parseFloat(get("STUDYMATE_LLM_TEMPERATURE", "0.7"), 0.7),
		LLMMaxTokens:    parseInt(get("STUDYMATE_LLM_MAX_TOKENS", "500"), 500),
		OpenAIAPIKey:    get("OPENAI_API_KEY", ""),
		AnthropicAPIKey: get("ANTHROPIC_API_KEY", ""),
		OllamaHost:      get("OLLAMA_HOST", "http://localhost:11434"),

		GoogleClientID:     get("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: get("GOOGLE_CLIENT_SECRET", ""),
		RedirectURL:        get("STUDYMATE_REDIRECT_URL", "http://localhost:8517/oauth/callback"),
		TokenFile:          get("STUDYMATE_TOKEN_FILE", defaultTokenFile()),

		ServerPort: get("STUDYMATE_SERVER_PORT", "8501"),

		LogFile:  get("STUDYMATE_LOG_FILE", "/tmp/studymate.log"),
		LogLevel: parseLogLevel(get("STUDYMATE_LOG_LEVEL", "INFO")),

		EnableMemory:   get("STUDYMATE_ENABLE_MEMORY", "true") == "true",
		EnableCalendar: get("STUDYMATE_ENABLE_CALENDAR", "true") == "true",

		MaxHistory:       parseInt(get("STUDYMATE_MAX_HISTORY", "5"), 5),
		MaxMemoryResults: parseInt(get("STUDYMATE_MAX_MEMORY_RESULTS", "10"), 10),
		MaxEvents:        parseInt(get("STUDYMATE_MAX_EVENTS", "50"), 50),
	}
}

// Location resolves the configured timezone, falling back to the local zone.
func (c Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Validate reports configuration that is required for the enabled features.
func (c Config) Validate() error {
	var missing []string

	switch c.LLMProvider {
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			missing = append(missing, "OPENAI_API_KEY")
		}
	case ProviderAnthropic:
		if c.AnthropicAPIKey == "" {
			missing = append(missing, "ANTHROPIC_API_KEY")
		}
	case ProviderOllama, ProviderBedrock:
		// Ollama needs no key; Bedrock resolves credentials from the
		// AWS environment.
	default:
		return fmt.Errorf("unsupported LLM provider: %s", c.LLMProvider)
	}

	if c.EnableMemory && c.MemoryAPIKey == "" {
		missing = append(missing, "MEM0_API_KEY")
	}
	if c.EnableCalendar {
		if c.GoogleClientID == "" {
			missing = append(missing, "GOOGLE_CLIENT_ID")
		}
		if c.GoogleClientSecret == "" {
			missing = append(missing, "GOOGLE_CLIENT_SECRET")
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

// DefaultConfigPath returns the location of the optional config file.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".studymate", "config.yaml")
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "studymate-token.json"
	}
	return filepath.Join(home, ".studymate", "token.json")
}

// lookup resolves a key: environment first, then config file, then default.
func lookup(getenv func(string) string, file map[string]string, key, def string) string {
	if val := getenv(key); val != "" {
		return val
	}
	if val, ok := file[key]; ok && val != "" {
		return val
	}
	return def
}

func parseInt(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func parseFloat(s string, def float64) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return f
}
