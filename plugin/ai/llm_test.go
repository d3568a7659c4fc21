package ai

import (
	"context"
	"errors"
	"net/url"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

// TestNewLLMService tests service creation.
func TestNewLLMService(t *testing.T) {
	tests := []struct {
		name        string
		cfg         *LLMConfig
		expectError bool
	}{
		{
			name: "OpenAI config",
			cfg: &LLMConfig{
				Provider:    "openai",
				Model:       "gpt-4o-mini",
				APIKey:      "test-key",
				MaxTokens:   2048,
				Temperature: 0.3,
			},
			expectError: false,
		},
		{
			name: "DeepSeek config",
			cfg: &LLMConfig{
				Provider:    "deepseek",
				Model:       "deepseek-chat",
				APIKey:      "test-key",
				BaseURL:     "https://api.deepseek.com",
				MaxTokens:   2048,
				Temperature: 0.7,
			},
			expectError: false,
		},
		{
			name: "DeepSeek without base URL",
			cfg: &LLMConfig{
				Provider: "deepseek",
				Model:    "deepseek-chat",
				APIKey:   "test-key",
			},
			expectError: true,
		},
		{
			name: "Ollama config",
			cfg: &LLMConfig{
				Provider: "ollama",
				Model:    "llama3",
				BaseURL:  "http://localhost:11434",
			},
			expectError: false,
		},
		{
			name: "Unsupported provider",
			cfg: &LLMConfig{
				Provider: "unsupported",
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLLMService(tt.cfg)
			if (err != nil) != tt.expectError {
				t.Errorf("NewLLMService() error = %v, expectError %v", err, tt.expectError)
			}
		})
	}
}

// TestConvertMessages tests message conversion.
func TestConvertMessages(t *testing.T) {
	messages := []Message{
		{Role: "system", Content: "You are a helpful assistant"},
		{Role: "user", Content: "Hello"},
		{Role: "assistant", Content: "Hi there"},
		{Role: "user", Content: "What time is it in Tokyo?"},
	}

	converted := convertMessages(messages)

	if len(converted) != len(messages) {
		t.Fatalf("convertMessages() length = %d, want %d", len(converted), len(messages))
	}

	wantRoles := []string{"system", "user", "assistant", "user"}
	for i, m := range converted {
		if m.Role != wantRoles[i] {
			t.Errorf("message %d role = %s, want %s", i, m.Role, wantRoles[i])
		}
		if m.Content != messages[i].Content {
			t.Errorf("message %d content = %s, want %s", i, m.Content, messages[i].Content)
		}
	}
}

// TestFormatMessages tests prompt assembly.
func TestFormatMessages(t *testing.T) {
	history := []Message{
		{Role: "user", Content: "What time is it in Tokyo?"},
		{Role: "assistant", Content: "It is 9:00 AM JST."},
	}

	messages := FormatMessages("You are a time assistant.", "And in London?", history)

	if len(messages) != 4 {
		t.Fatalf("FormatMessages() length = %d, want 4", len(messages))
	}
	if messages[0].Role != "system" {
		t.Errorf("first message role = %s, want system", messages[0].Role)
	}
	if messages[3].Role != "user" || messages[3].Content != "And in London?" {
		t.Errorf("last message = %+v, want the new user message", messages[3])
	}

	// No system prompt: history and user message only.
	messages = FormatMessages("", "And in London?", history)
	if len(messages) != 3 {
		t.Fatalf("FormatMessages() without system length = %d, want 3", len(messages))
	}
}

// TestWrapProviderError tests classification of provider client errors.
func TestWrapProviderError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "rate limited",
			err:  &openai.APIError{HTTPStatusCode: 429, Message: "rate limit exceeded"},
			want: ErrServiceUnavailable,
		},
		{
			name: "server error",
			err:  &openai.APIError{HTTPStatusCode: 503, Message: "overloaded"},
			want: ErrServiceUnavailable,
		},
		{
			name: "connection refused",
			err:  &url.Error{Op: "Post", URL: "http://localhost:11434", Err: errors.New("connection refused")},
			want: ErrNetworkError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := wrapProviderError(tt.err)
			if !errors.Is(got, tt.want) {
				t.Errorf("wrapProviderError() = %v, want %v", got, tt.want)
			}
		})
	}

	// Client-side errors stay unclassified.
	badRequest := &openai.APIError{HTTPStatusCode: 400, Message: "bad request"}
	if got := wrapProviderError(badRequest); errors.Is(got, ErrServiceUnavailable) || errors.Is(got, ErrNetworkError) {
		t.Errorf("wrapProviderError(400) = %v, want unclassified", got)
	}

	// Context errors pass through so callers can match them directly.
	if got := wrapProviderError(context.Canceled); !errors.Is(got, context.Canceled) || errors.Is(got, ErrNetworkError) {
		t.Errorf("wrapProviderError(context.Canceled) = %v, want context.Canceled", got)
	}
	if got := wrapProviderError(nil); got != nil {
		t.Errorf("wrapProviderError(nil) = %v, want nil", got)
	}
}
