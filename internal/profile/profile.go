package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Profile is configuration to start PlotBuddy.
type Profile struct {
	// LLM configuration. gemini uses the Gemini API; every other provider
	// speaks the OpenAI-compatible protocol.
	LLMProvider  string  // gemini, openai, deepseek, siliconflow, dashscope, openrouter, ollama
	LLMAPIKey    string  // Provider API key
	LLMBaseURL   string  // Optional base URL override
	LLMModel     string  // Model name: gemini-2.0-flash, gpt-4o-mini, deepseek-chat, etc.
	LLMTimeout   int     // LLM request timeout in seconds (default: 60)
	LLMRateLimit float64 // Sustained LLM calls per second (default: 2)
	LLMBurst     int     // LLM burst size (default: 4)

	// Other configurations
	Mode        string // dev, prod
	Driver      string // memory, sqlite, postgres
	DSN         string
	Data        string
	Version     string
	MetricsAddr string // Prometheus listener, disabled when empty
	RulesFile   string // Optional routing rules override (YAML)
	Format      string // text, markdown, html
}

// Provider default configurations for LLM.
var llmProviderDefaults = map[string]struct {
	Model     string
	APIKeyEnv string // conventional vendor variable, read when PLOTBUDDY_LLM_API_KEY is unset
}{
	"gemini":      {Model: "gemini-2.0-flash", APIKeyEnv: "GOOGLE_API_KEY"},
	"openai":      {Model: "gpt-4o-mini", APIKeyEnv: "OPENAI_API_KEY"},
	"deepseek":    {Model: "deepseek-chat", APIKeyEnv: "DEEPSEEK_API_KEY"},
	"siliconflow": {Model: "Qwen/Qwen2.5-7B-Instruct"},
	"dashscope":   {Model: "qwen-plus", APIKeyEnv: "DASHSCOPE_API_KEY"},
	"openrouter":  {Model: "google/gemini-2.0-flash-001", APIKeyEnv: "OPENROUTER_API_KEY"},
	"ollama":      {Model: "llama3.1"},
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsAIEnabled returns true if a hosted model can be called.
func (p *Profile) IsAIEnabled() bool {
	return p.LLMAPIKey != "" || p.LLMProvider == "ollama"
}

// getEnvOrDefault returns environment variable value or default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrDefaultInt returns environment variable value as int or default value.
func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvOrDefaultFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// FromEnv loads LLM configuration from environment variables. Values already
// set on the profile (from flags) take precedence.
func (p *Profile) FromEnv() {
	if p.LLMProvider == "" {
		p.LLMProvider = getEnvOrDefault("PLOTBUDDY_LLM_PROVIDER", "gemini")
	}
	p.LLMProvider = strings.ToLower(p.LLMProvider)
	if _, ok := llmProviderDefaults[p.LLMProvider]; !ok {
		slog.Warn("Unknown LLM provider, using default: gemini", "provider", p.LLMProvider)
		p.LLMProvider = "gemini"
	}
	defaults := llmProviderDefaults[p.LLMProvider]

	if p.LLMAPIKey == "" {
		p.LLMAPIKey = getEnvOrDefault("PLOTBUDDY_LLM_API_KEY", "")
	}
	if p.LLMAPIKey == "" && defaults.APIKeyEnv != "" {
		p.LLMAPIKey = os.Getenv(defaults.APIKeyEnv)
	}
	if p.LLMBaseURL == "" {
		p.LLMBaseURL = getEnvOrDefault("PLOTBUDDY_LLM_BASE_URL", "")
	}
	if p.LLMModel == "" {
		p.LLMModel = getEnvOrDefault("PLOTBUDDY_LLM_MODEL", defaults.Model)
	}
	if p.LLMTimeout <= 0 {
		p.LLMTimeout = getEnvOrDefaultInt("PLOTBUDDY_LLM_TIMEOUT_SECONDS", 60)
	}
	if p.LLMRateLimit <= 0 {
		p.LLMRateLimit = getEnvOrDefaultFloat("PLOTBUDDY_LLM_RATE_LIMIT", 2)
	}
	if p.LLMBurst <= 0 {
		p.LLMBurst = getEnvOrDefaultInt("PLOTBUDDY_LLM_BURST", 4)
	}
}

func checkDataDir(dataDir string) (string, error) {
	absDir, err := filepath.Abs(dataDir)
	if err != nil {
		return "", errors.Wrapf(err, "unable to resolve data folder %s", dataDir)
	}
	absDir = strings.TrimRight(absDir, "\\/")
	if err := os.MkdirAll(absDir, 0o770); err != nil {
		return "", errors.Wrapf(err, "unable to create data folder %s", absDir)
	}
	return absDir, nil
}

// Validate normalizes the profile and prepares storage locations.
func (p *Profile) Validate() error {
	if p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "dev"
	}

	switch p.Format {
	case "text", "markdown", "html":
	case "":
		p.Format = "text"
	default:
		return errors.Errorf("unsupported format %q", p.Format)
	}

	switch p.Driver {
	case "", "memory":
		p.Driver = "memory"
		return nil
	case "postgres":
		if p.DSN == "" {
			return errors.New("postgres driver requires --dsn")
		}
		return nil
	case "sqlite":
	default:
		return errors.Errorf("unsupported driver %q", p.Driver)
	}

	if p.DSN != "" {
		return nil
	}
	if p.Data == "" {
		p.Data = defaultDataDir()
	}
	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check data dir", slog.String("data", p.Data), slog.String("error", err.Error()))
		return err
	}
	p.Data = dataDir
	p.DSN = filepath.Join(dataDir, fmt.Sprintf("plotbuddy_%s.db", p.Mode))
	return nil
}

func defaultDataDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".plotbuddy")
	}
	return ".plotbuddy"
}
