package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hrygo/timesense/plugin/ai"
)

// ToolWithSchema extends the Tool interface with a JSON Schema definition.
// The schema is handed to the LLM so it can produce well-formed tool calls.
type ToolWithSchema interface {
	Tool

	// Parameters returns the JSON Schema for the tool's input parameters.
	Parameters() map[string]interface{}
}

// NativeTool implements ToolWithSchema with direct function execution.
type NativeTool struct {
	name        string
	description string
	execute     func(ctx context.Context, input string) (string, error)
	params      map[string]interface{}
}

// NewNativeTool creates a new NativeTool.
func NewNativeTool(
	name string,
	description string,
	execute func(ctx context.Context, input string) (string, error),
	parameters map[string]interface{},
) ToolWithSchema {
	return &NativeTool{
		name:        name,
		description: description,
		execute:     execute,
		params:      parameters,
	}
}

// Name returns the tool name.
func (t *NativeTool) Name() string {
	return t.name
}

// Description returns the tool description.
func (t *NativeTool) Description() string {
	return t.description
}

// Parameters returns the JSON Schema for parameters.
func (t *NativeTool) Parameters() map[string]interface{} {
	return t.params
}

// Run executes the tool.
func (t *NativeTool) Run(ctx context.Context, input string) (string, error) {
	return t.execute(ctx, input)
}

// Agent is a lightweight, framework-less AI agent.
// It drives the LLM's native tool calling in a bounded loop.
type Agent struct {
	llm      ai.LLMService
	config   AgentConfig
	tools    []ToolWithSchema
	registry *ToolRegistry
}

// AgentConfig holds configuration for creating a new Agent.
type AgentConfig struct {
	// Name identifies this agent.
	Name string

	// SystemPrompt is the base system prompt for the LLM.
	SystemPrompt string

	// MaxIterations is the maximum number of tool-calling loops.
	MaxIterations int
}

// NewAgent creates a new Agent with the given configuration.
func NewAgent(llm ai.LLMService, config AgentConfig, tools []ToolWithSchema) *Agent {
	if config.MaxIterations <= 0 {
		config.MaxIterations = 10
	}

	registry := NewToolRegistry()
	for _, tool := range tools {
		if err := registry.Register(tool); err != nil {
			slog.Warn("skipping tool registration",
				"tool", tool.Name(),
				"error", err)
		}
	}

	return &Agent{
		llm:      llm,
		config:   config,
		tools:    tools,
		registry: registry,
	}
}

// Name returns the agent name.
func (a *Agent) Name() string {
	return a.config.Name
}

// Callback is called during agent execution for events.
type Callback func(event string, data string)

// Event constants for callbacks.
const (
	EventToolUse    = "tool_use"
	EventToolResult = "tool_result"
	EventAnswer     = "answer"
)

// Run executes the agent with the given input.
// Returns the final response or an error.
func (a *Agent) Run(ctx context.Context, input string) (string, error) {
	return a.RunWithCallback(ctx, input, nil, nil)
}

// RunWithCallback executes the agent with conversation history and callback support.
func (a *Agent) RunWithCallback(ctx context.Context, input string, history []ai.Message, callback Callback) (string, error) {
	messages := a.assembleMessages(input, history)

	for iteration := 0; iteration < a.config.MaxIterations; iteration++ {
		resp, err := a.llm.ChatWithTools(ctx, messages, a.toolDescriptors())
		if err != nil {
			return "", fmt.Errorf("LLM call failed (iteration %d): %w", iteration+1, err)
		}

		// No tool calls means the model produced its final answer.
		if len(resp.ToolCalls) == 0 {
			if callback != nil && resp.Content != "" {
				callback(EventAnswer, resp.Content)
			}
			return resp.Content, nil
		}

		messages, err = a.applyToolCalls(ctx, messages, resp, callback)
		if err != nil {
			return "", err
		}
	}

	return "", fmt.Errorf("max iterations (%d) exceeded", a.config.MaxIterations)
}

// RunStreamWithCallback executes the agent and streams the final answer.
//
// The opening turn runs with tools enabled. If the model answers outright,
// the content is surfaced as a single answer event since it already arrived
// whole. If the model requests tools, they are executed in one settlement
// round and the closing turn is issued through ChatStream, so answer chunks
// reach the callback as the model generates them.
func (a *Agent) RunStreamWithCallback(ctx context.Context, input string, history []ai.Message, callback Callback) (string, error) {
	messages := a.assembleMessages(input, history)

	resp, err := a.llm.ChatWithTools(ctx, messages, a.toolDescriptors())
	if err != nil {
		return "", fmt.Errorf("LLM call failed: %w", err)
	}

	if len(resp.ToolCalls) == 0 {
		if callback != nil && resp.Content != "" {
			callback(EventAnswer, resp.Content)
		}
		return resp.Content, nil
	}

	messages, err = a.applyToolCalls(ctx, messages, resp, callback)
	if err != nil {
		return "", err
	}

	return a.streamAnswer(ctx, messages, callback)
}

func (a *Agent) assembleMessages(input string, history []ai.Message) []ai.Message {
	messages := make([]ai.Message, 0, len(history)+2)
	messages = append(messages, ai.SystemPrompt(a.config.SystemPrompt))
	messages = append(messages, history...)
	messages = append(messages, ai.UserMessage(input))
	return messages
}

// applyToolCalls executes the tools the model requested and appends the
// assistant turn plus the tool results to the conversation. Failures the
// recovery system understands abort the run; anything else is rendered as
// an error result so the model can correct itself.
func (a *Agent) applyToolCalls(ctx context.Context, messages []ai.Message, resp *ai.ToolCallResponse, callback Callback) ([]ai.Message, error) {
	// Record the assistant turn, with tool calls rendered as text.
	assistantText := resp.Content
	for _, tc := range resp.ToolCalls {
		assistantText += fmt.Sprintf("\n[Tool: %s(%s)]", tc.Function.Name, tc.Function.Arguments)
	}
	messages = append(messages, ai.AssistantMessage(assistantText))

	for _, tc := range resp.ToolCalls {
		toolName := tc.Function.Name
		toolInput := tc.Function.Arguments

		if callback != nil {
			callback(EventToolUse, fmt.Sprintf("%s:%s", toolName, toolInput))
		}

		toolResult, err := a.executeTool(ctx, toolName, toolInput)
		if err != nil {
			if IsRecoverableError(err) {
				return nil, err
			}
			toolResult = fmt.Sprintf("Error: %v", err)
		}

		if callback != nil {
			callback(EventToolResult, toolResult)
		}

		messages = append(messages, ai.UserMessage(
			fmt.Sprintf("[Result from %s]: %s", toolName, toolResult)))
	}

	return messages, nil
}

// streamAnswer generates the final answer over the streaming chat API,
// surfacing each chunk as an answer event. Returns the full answer.
func (a *Agent) streamAnswer(ctx context.Context, messages []ai.Message, callback Callback) (string, error) {
	contentChan, errChan := a.llm.ChatStream(ctx, messages)

	var answer strings.Builder
	for chunk := range contentChan {
		if chunk == "" {
			continue
		}
		answer.WriteString(chunk)
		if callback != nil {
			callback(EventAnswer, chunk)
		}
	}
	if err := <-errChan; err != nil {
		return "", fmt.Errorf("LLM stream failed: %w", err)
	}

	return answer.String(), nil
}

// toolDescriptors converts the agent's tools to ai.ToolDescriptor format.
func (a *Agent) toolDescriptors() []ai.ToolDescriptor {
	descriptors := make([]ai.ToolDescriptor, len(a.tools))
	for i, tool := range a.tools {
		paramsJSON, err := json.Marshal(tool.Parameters())
		if err != nil {
			slog.Warn("failed to marshal tool parameters, using empty schema",
				"tool", tool.Name(),
				"error", err)
			paramsJSON = []byte(`{"type":"object","properties":{}}`)
		}
		descriptors[i] = ai.ToolDescriptor{
			Name:        tool.Name(),
			Description: tool.Description(),
			Parameters:  string(paramsJSON),
		}
	}
	return descriptors
}

// executeTool finds and executes a tool by name.
func (a *Agent) executeTool(ctx context.Context, name, input string) (string, error) {
	tool, exists := a.registry.Get(name)
	if !exists {
		return "", fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}
	return tool.Run(ctx, input)
}
