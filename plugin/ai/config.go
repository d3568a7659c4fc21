package ai

import (
	"errors"

	"github.com/hrygo/timesense/internal/profile"
)

// Config represents AI configuration.
type Config struct {
	Enabled bool

	LLM LLMConfig
}

// LLMConfig represents LLM configuration.
type LLMConfig struct {
	Provider    string // openai, deepseek, ollama
	Model       string // gpt-4o-mini
	APIKey      string
	BaseURL     string
	MaxTokens   int     // default: 2048
	Temperature float32 // default: 0.3
}

// NewConfigFromProfile creates AI config from profile.
func NewConfigFromProfile(p *profile.Profile) *Config {
	cfg := &Config{
		Enabled: p.AIEnabled,
	}

	if !cfg.Enabled {
		return cfg
	}

	cfg.LLM = LLMConfig{
		Provider: p.LLMProvider,
		Model:    p.LLMModel,
		// Low temperature: the assistant's answers hinge on arithmetic done by
		// the tools, not on creative phrasing.
		MaxTokens:   2048,
		Temperature: 0.3,
	}

	switch p.LLMProvider {
	case "deepseek":
		cfg.LLM.APIKey = p.DeepSeekAPIKey
		cfg.LLM.BaseURL = p.DeepSeekBaseURL
	case "openai":
		cfg.LLM.APIKey = p.OpenAIAPIKey
		cfg.LLM.BaseURL = p.OpenAIBaseURL
	case "ollama":
		cfg.LLM.BaseURL = p.OllamaBaseURL
	}

	return cfg
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}

	if c.LLM.Provider == "" {
		return errors.New("LLM provider is required")
	}

	if c.LLM.Provider != "ollama" && c.LLM.APIKey == "" {
		return errors.New("LLM API key is required")
	}

	return nil
}
