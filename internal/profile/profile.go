package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Profile is the configuration to start main server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where timesense stores its own data
	DSN string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// Version is the current version of server
	Version string
	// DefaultTimezone is the IANA timezone assumed when a request carries none
	DefaultTimezone string
	// ChatTimeout bounds the model work of a single chat request
	ChatTimeout time.Duration

	// AI Configuration
	AIEnabled       bool   // TIMESENSE_AI_ENABLED
	LLMProvider     string // TIMESENSE_LLM_PROVIDER (default: openai)
	LLMModel        string // TIMESENSE_LLM_MODEL (default: gpt-4o-mini)
	OpenAIAPIKey    string // TIMESENSE_OPENAI_API_KEY
	OpenAIBaseURL   string // TIMESENSE_OPENAI_BASE_URL (default: https://api.openai.com/v1)
	DeepSeekAPIKey  string // TIMESENSE_DEEPSEEK_API_KEY
	DeepSeekBaseURL string // TIMESENSE_DEEPSEEK_BASE_URL (default: https://api.deepseek.com)
	OllamaBaseURL   string // TIMESENSE_OLLAMA_BASE_URL (default: http://localhost:11434)
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsAIEnabled returns true if AI is enabled and at least one API key or base URL is configured.
func (p *Profile) IsAIEnabled() bool {
	return p.AIEnabled && (p.OpenAIAPIKey != "" || p.DeepSeekAPIKey != "" || p.OllamaBaseURL != "")
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FromEnv loads configuration from TIMESENSE_* environment variables.
func (p *Profile) FromEnv() {
	p.AIEnabled = os.Getenv("TIMESENSE_AI_ENABLED") == "true"
	p.LLMProvider = getEnvOrDefault("TIMESENSE_LLM_PROVIDER", "openai")
	p.LLMModel = getEnvOrDefault("TIMESENSE_LLM_MODEL", "gpt-4o-mini")
	p.OpenAIAPIKey = os.Getenv("TIMESENSE_OPENAI_API_KEY")
	p.OpenAIBaseURL = getEnvOrDefault("TIMESENSE_OPENAI_BASE_URL", "https://api.openai.com/v1")
	p.DeepSeekAPIKey = os.Getenv("TIMESENSE_DEEPSEEK_API_KEY")
	p.DeepSeekBaseURL = getEnvOrDefault("TIMESENSE_DEEPSEEK_BASE_URL", "https://api.deepseek.com")
	p.OllamaBaseURL = getEnvOrDefault("TIMESENSE_OLLAMA_BASE_URL", "http://localhost:11434")
	p.DefaultTimezone = getEnvOrDefault("TIMESENSE_DEFAULT_TIMEZONE", "UTC")
	p.ChatTimeout = getEnvDurationOrDefault("TIMESENSE_CHAT_TIMEOUT", 60*time.Second)
}

// getEnvDurationOrDefault parses the environment variable as a duration
// ("90s", "2m"), falling back to the default when unset or malformed.
func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		slog.Warn("invalid duration, using default",
			slog.String("env", key),
			slog.String("value", value))
		return defaultValue
	}
	return d
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Mode == "prod" && p.Data == "" {
		if runtime.GOOS == "windows" {
			p.Data = filepath.Join(os.Getenv("ProgramData"), "timesense")
			if _, err := os.Stat(p.Data); os.IsNotExist(err) {
				if err := os.MkdirAll(p.Data, 0770); err != nil {
					slog.Error("failed to create data directory", slog.String("data", p.Data), slog.String("error", err.Error()))
					return err
				}
			}
		} else {
			p.Data = "/var/opt/timesense"
		}
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check data dir", slog.String("data", dataDir), slog.String("error", err.Error()))
		return err
	}

	p.Data = dataDir
	if p.Driver == "sqlite" && p.DSN == "" {
		dbFile := fmt.Sprintf("timesense_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}

	return nil
}
