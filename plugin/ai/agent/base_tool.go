package agent

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Tool is the interface for agent tools.
type Tool interface {
	// Name returns the name of the tool.
	Name() string

	// Description returns a description of what the tool does.
	Description() string

	// Run executes the tool with the given input.
	Run(ctx context.Context, input string) (string, error)
}

// BaseTool provides a reusable base implementation for tools.
type BaseTool struct {
	name        string
	description string
	execute     func(ctx context.Context, input string) (string, error)
	validate    func(input string) error
	timeout     time.Duration
}

// ToolOption is a function that configures a BaseTool.
type ToolOption func(*BaseTool)

// WithTimeout sets a timeout for tool execution.
func WithTimeout(timeout time.Duration) ToolOption {
	return func(t *BaseTool) {
		t.timeout = timeout
	}
}

// WithValidator sets a custom input validator.
func WithValidator(validator func(input string) error) ToolOption {
	return func(t *BaseTool) {
		t.validate = validator
	}
}

// NewBaseTool creates a new BaseTool.
//
// Example:
//
//	tool := NewBaseTool(
//	    "get_current_time",
//	    "Returns the current time in a timezone",
//	    func(ctx context.Context, input string) (string, error) {
//	        return "result", nil
//	    },
//	    WithTimeout(10*time.Second),
//	)
func NewBaseTool(
	name string,
	description string,
	execute func(ctx context.Context, input string) (string, error),
	opts ...ToolOption,
) *BaseTool {
	tool := &BaseTool{
		name:        name,
		description: description,
		execute:     execute,
		timeout:     30 * time.Second, // Default timeout
		validate:    defaultValidator,
	}

	for _, opt := range opts {
		opt(tool)
	}

	return tool
}

// Name returns the name of the tool.
func (t *BaseTool) Name() string {
	return t.name
}

// Description returns the description of the tool.
func (t *BaseTool) Description() string {
	return t.description
}

// Run executes the tool with validation and error handling.
func (t *BaseTool) Run(ctx context.Context, input string) (string, error) {
	if err := t.validate(input); err != nil {
		return "", fmt.Errorf("input validation failed: %w", err)
	}

	execCtx := ctx
	if t.timeout > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	result, err := t.execute(execCtx, input)
	if err != nil {
		return "", fmt.Errorf("tool execution failed: %w", err)
	}

	if strings.TrimSpace(result) == "" {
		return "", fmt.Errorf("tool returned empty result")
	}

	return result, nil
}

// defaultValidator provides basic input validation.
func defaultValidator(input string) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("input cannot be empty")
	}
	return nil
}

// ToolRegistry manages a collection of tools.
type ToolRegistry struct {
	tools map[string]Tool
}

// NewToolRegistry creates a new ToolRegistry.
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{
		tools: make(map[string]Tool),
	}
}

// Register adds a tool to the registry.
func (r *ToolRegistry) Register(tool Tool) error {
	if tool == nil {
		return fmt.Errorf("tool cannot be nil")
	}
	name := tool.Name()
	if name == "" {
		return fmt.Errorf("tool name cannot be empty")
	}
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool %s already registered", name)
	}
	r.tools[name] = tool
	return nil
}

// Get retrieves a tool by name.
func (r *ToolRegistry) Get(name string) (Tool, bool) {
	tool, exists := r.tools[name]
	return tool, exists
}

// List returns all registered tool names.
func (r *ToolRegistry) List() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	return names
}

// Describe returns a description string for all tools.
func (r *ToolRegistry) Describe() string {
	if len(r.tools) == 0 {
		return "No tools available"
	}

	var desc strings.Builder
	for _, name := range r.List() {
		tool, _ := r.Get(name)
		desc.WriteString("- ")
		desc.WriteString(name)
		desc.WriteString(": ")
		desc.WriteString(tool.Description())
		desc.WriteString("\n")
	}

	return desc.String()
}

// Count returns the number of registered tools.
func (r *ToolRegistry) Count() int {
	return len(r.tools)
}
