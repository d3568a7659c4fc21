package ai

import (
	"testing"

	"github.com/hrygo/timesense/internal/profile"
)

// TestNewConfigFromProfile_OpenAI tests OpenAI configuration.
func TestNewConfigFromProfile_OpenAI(t *testing.T) {
	prof := &profile.Profile{
		AIEnabled:     true,
		LLMProvider:   "openai",
		LLMModel:      "gpt-4o-mini",
		OpenAIAPIKey:  "openai-key",
		OpenAIBaseURL: "https://api.openai.com/v1",
	}

	cfg := NewConfigFromProfile(prof)

	if !cfg.Enabled {
		t.Error("Expected Enabled=true, got false")
	}
	if cfg.LLM.Provider != "openai" {
		t.Errorf("Expected LLM.Provider=openai, got %s", cfg.LLM.Provider)
	}
	if cfg.LLM.Model != "gpt-4o-mini" {
		t.Errorf("Expected LLM.Model=gpt-4o-mini, got %s", cfg.LLM.Model)
	}
	if cfg.LLM.APIKey != "openai-key" {
		t.Errorf("Expected LLM.APIKey=openai-key, got %s", cfg.LLM.APIKey)
	}
	if cfg.LLM.BaseURL != "https://api.openai.com/v1" {
		t.Errorf("Expected LLM.BaseURL=https://api.openai.com/v1, got %s", cfg.LLM.BaseURL)
	}
	if cfg.LLM.MaxTokens != 2048 {
		t.Errorf("Expected LLM.MaxTokens=2048, got %d", cfg.LLM.MaxTokens)
	}
}

// TestNewConfigFromProfile_DeepSeek tests DeepSeek configuration.
func TestNewConfigFromProfile_DeepSeek(t *testing.T) {
	prof := &profile.Profile{
		AIEnabled:       true,
		LLMProvider:     "deepseek",
		LLMModel:        "deepseek-chat",
		DeepSeekAPIKey:  "deepseek-key",
		DeepSeekBaseURL: "https://api.deepseek.com",
	}

	cfg := NewConfigFromProfile(prof)

	if cfg.LLM.Provider != "deepseek" {
		t.Errorf("Expected LLM.Provider=deepseek, got %s", cfg.LLM.Provider)
	}
	if cfg.LLM.APIKey != "deepseek-key" {
		t.Errorf("Expected LLM.APIKey=deepseek-key, got %s", cfg.LLM.APIKey)
	}
	if cfg.LLM.BaseURL != "https://api.deepseek.com" {
		t.Errorf("Expected LLM.BaseURL=https://api.deepseek.com, got %s", cfg.LLM.BaseURL)
	}
}

// TestNewConfigFromProfile_Disabled tests that a disabled profile short-circuits.
func TestNewConfigFromProfile_Disabled(t *testing.T) {
	prof := &profile.Profile{
		AIEnabled:    false,
		LLMProvider:  "openai",
		OpenAIAPIKey: "openai-key",
	}

	cfg := NewConfigFromProfile(prof)

	if cfg.Enabled {
		t.Error("Expected Enabled=false, got true")
	}
	if cfg.LLM.Provider != "" {
		t.Errorf("Expected empty LLM config when disabled, got provider %s", cfg.LLM.Provider)
	}
}

// TestConfigValidate tests configuration validation.
func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name        string
		cfg         *Config
		expectError bool
	}{
		{
			name:        "disabled config is always valid",
			cfg:         &Config{Enabled: false},
			expectError: false,
		},
		{
			name: "missing provider",
			cfg: &Config{
				Enabled: true,
				LLM:     LLMConfig{APIKey: "key"},
			},
			expectError: true,
		},
		{
			name: "missing API key",
			cfg: &Config{
				Enabled: true,
				LLM:     LLMConfig{Provider: "openai"},
			},
			expectError: true,
		},
		{
			name: "ollama needs no API key",
			cfg: &Config{
				Enabled: true,
				LLM:     LLMConfig{Provider: "ollama", BaseURL: "http://localhost:11434"},
			},
			expectError: false,
		},
		{
			name: "valid openai config",
			cfg: &Config{
				Enabled: true,
				LLM:     LLMConfig{Provider: "openai", APIKey: "key"},
			},
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.expectError {
				t.Errorf("Validate() error = %v, expectError %v", err, tt.expectError)
			}
		})
	}
}
