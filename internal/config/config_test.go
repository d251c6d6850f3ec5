package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// envMap builds an environment lookup from a fixed map, keeping the tests
// independent of the real process environment and config file.
func envMap(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func TestLoad_Defaults(t *testing.T) {
	cfg := loadFrom("", envMap(nil))

	assert.Equal(t, "student", cfg.UserID)
	assert.Equal(t, "https://api.mem0.ai", cfg.MemoryURL)
	assert.Equal(t, ProviderOllama, cfg.LLMProvider)
	assert.Equal(t, "llama3", cfg.LLMModel)
	assert.InDelta(t, 0.7, cfg.LLMTemperature, 0.001)
	assert.Equal(t, 500, cfg.LLMMaxTokens)
	assert.Equal(t, "8501", cfg.ServerPort)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.True(t, cfg.EnableMemory)
	assert.True(t, cfg.EnableCalendar)
	assert.Equal(t, 5, cfg.MaxHistory)
	assert.Equal(t, 50, cfg.MaxEvents)
}

func TestLoad_EnvironmentWins(t *testing.T) {
	cfg := loadFrom("", envMap(map[string]string{
		"STUDYMATE_USER":            "alex",
		"STUDYMATE_LLM_PROVIDER":    "OpenAI",
		"STUDYMATE_LLM_TEMPERATURE": "0.2",
		"STUDYMATE_MAX_HISTORY":     "12",
		"STUDYMATE_ENABLE_CALENDAR": "false",
		"STUDYMATE_LOG_LEVEL":       "debug",
	}))

	assert.Equal(t, "alex", cfg.UserID)
	assert.Equal(t, ProviderOpenAI, cfg.LLMProvider, "provider names are lowercased")
	assert.InDelta(t, 0.2, cfg.LLMTemperature, 0.001)
	assert.Equal(t, 12, cfg.MaxHistory)
	assert.False(t, cfg.EnableCalendar)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestLoad_FileBeneathEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"STUDYMATE_USER: from-file\nSTUDYMATE_SERVER_PORT: 9000\n"), 0644))

	cfg := loadFrom(path, envMap(map[string]string{
		"STUDYMATE_USER": "from-env",
	}))

	assert.Equal(t, "from-env", cfg.UserID, "environment beats the file")
	assert.Equal(t, "9000", cfg.ServerPort, "file beats the default")
	assert.Equal(t, "llama3", cfg.LLMModel, "defaults fill the rest")
}

func TestLoad_BadNumbersFallBack(t *testing.T) {
	cfg := loadFrom("", envMap(map[string]string{
		"STUDYMATE_LLM_TEMPERATURE": "warm",
		"STUDYMATE_MAX_HISTORY":     "lots",
	}))

	assert.InDelta(t, 0.7, cfg.LLMTemperature, 0.001)
	assert.Equal(t, 5, cfg.MaxHistory)
}

func TestParseFile(t *testing.T) {
	data := []byte(`
STUDYMATE_USER: alex
STUDYMATE_SERVER_PORT: 9000
STUDYMATE_ENABLE_MEMORY: false
STUDYMATE_LLM_TEMPERATURE: 0.3
nested:
  ignored: true
`)

	got := ParseFile(data)

	assert.Equal(t, "alex", got["STUDYMATE_USER"])
	assert.Equal(t, "9000", got["STUDYMATE_SERVER_PORT"])
	assert.Equal(t, "false", got["STUDYMATE_ENABLE_MEMORY"])
	assert.Equal(t, "0.3", got["STUDYMATE_LLM_TEMPERATURE"])
	_, ok := got["nested"]
	assert.False(t, ok, "non-scalar values are skipped")
}

func TestParseFile_Broken(t *testing.T) {
	assert.Nil(t, ParseFile([]byte("{not yaml")))
}

func TestValidate(t *testing.T) {
	base := Config{
		LLMProvider:    ProviderOllama,
		EnableMemory:   false,
		EnableCalendar: false,
	}

	t.Run("ollama needs nothing", func(t *testing.T) {
		assert.NoError(t, base.Validate())
	})

	t.Run("openai needs a key", func(t *testing.T) {
		cfg := base
		cfg.LLMProvider = ProviderOpenAI

		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "OPENAI_API_KEY")

		cfg.OpenAIAPIKey = "sk-test"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("anthropic needs a key", func(t *testing.T) {
		cfg := base
		cfg.LLMProvider = ProviderAnthropic

		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ANTHROPIC_API_KEY")
	})

	t.Run("unknown provider", func(t *testing.T) {
		cfg := base
		cfg.LLMProvider = "skynet"

		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported LLM provider")
	})

	t.Run("enabled features report all missing keys", func(t *testing.T) {
		cfg := base
		cfg.EnableMemory = true
		cfg.EnableCalendar = true

		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "MEM0_API_KEY")
		assert.Contains(t, err.Error(), "GOOGLE_CLIENT_ID")
		assert.Contains(t, err.Error(), "GOOGLE_CLIENT_SECRET")
	})
}

func TestLocation(t *testing.T) {
	assert.Equal(t, "America/New_York", Config{Timezone: "America/New_York"}.Location().String())
	assert.Equal(t, "Local", Config{}.Location().String())
	assert.Equal(t, "Local", Config{Timezone: "Not/AZone"}.Location().String())
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"verbose", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLogLevel(tt.in); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
