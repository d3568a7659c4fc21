package agent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hrygo/timesense/plugin/ai"
	localtools "github.com/hrygo/timesense/plugin/ai/agent/tools"
	"github.com/hrygo/timesense/plugin/ai/aitime"
	"github.com/hrygo/timesense/plugin/ai/metrics"
)

// AgentTypeTime identifies the time assistant agent in metrics.
const AgentTypeTime = "time"

// TimeAgent is the framework-less time conversion assistant.
// It drives the LLM's native tool calling against the time tools.
type TimeAgent struct {
	agent          *Agent
	llm            ai.LLMService
	timezone       string
	timezoneLoc    *time.Location
	clock          localtools.Clock
	recovery       *ErrorRecovery
	metricsService metrics.MetricsService
}

// TimeAgentConfig configures a TimeAgent.
type TimeAgentConfig struct {
	// Timezone is the user's default timezone (IANA name).
	Timezone string

	// Clock supplies the current time. Defaults to the system clock.
	Clock localtools.Clock

	// MaxIterations bounds the tool-calling loop. Defaults to 10.
	MaxIterations int

	// TimeService parses natural language time expressions.
	// Required for the parse_time tool and input recovery.
	TimeService aitime.TimeService

	// MetricsService records request and tool call metrics. Optional.
	MetricsService metrics.MetricsService
}

// NewTimeAgent creates a new time assistant agent.
func NewTimeAgent(llm ai.LLMService, cfg TimeAgentConfig) (*TimeAgent, error) {
	if llm == nil {
		return nil, fmt.Errorf("LLM service is required")
	}
	if cfg.TimeService == nil {
		return nil, fmt.Errorf("time service is required")
	}
	if cfg.Clock == nil {
		cfg.Clock = localtools.NewSystemClock()
	}

	tz := cfg.Timezone
	if tz == "" {
		tz = "UTC"
	}
	timezoneLoc, err := time.LoadLocation(tz)
	if err != nil {
		slog.Warn("invalid timezone, using UTC",
			"timezone", tz,
			"error", err)
		tz = "UTC"
		timezoneLoc = time.UTC
	}

	executor := localtools.NewResilientToolExecutor(cfg.MetricsService)

	agentTools := []ToolWithSchema{
		resilient(localtools.NewCurrentTimeTool(cfg.Clock, tz), executor),
		resilient(localtools.NewConvertTimeTool(cfg.Clock, tz), executor),
		resilient(localtools.NewParseTimeTool(cfg.TimeService, cfg.Clock, tz), executor),
	}

	inner := NewAgent(llm, AgentConfig{
		Name:          AgentTypeTime,
		SystemPrompt:  buildTimeSystemPrompt(cfg.Clock.Now(), timezoneLoc),
		MaxIterations: cfg.MaxIterations,
	}, agentTools)

	return &TimeAgent{
		agent:          inner,
		llm:            llm,
		timezone:       tz,
		timezoneLoc:    timezoneLoc,
		clock:          cfg.Clock,
		recovery:       NewErrorRecovery(cfg.TimeService).WithTimezone(tz),
		metricsService: cfg.MetricsService,
	}, nil
}

// Timezone returns the agent's default timezone name.
func (a *TimeAgent) Timezone() string {
	return a.timezone
}

// Execute runs the agent with the given user input.
func (a *TimeAgent) Execute(ctx context.Context, userInput string) (string, error) {
	return a.ExecuteWithCallback(ctx, userInput, nil, nil)
}

// ExecuteWithCallback runs the agent with conversation history and callback support.
// Tool and answer events are surfaced through the callback as they happen.
func (a *TimeAgent) ExecuteWithCallback(ctx context.Context, userInput string, history []ai.Message, callback Callback) (string, error) {
	return a.run(ctx, userInput, func(ctx context.Context, input string) (string, error) {
		return a.agent.RunWithCallback(ctx, input, history, callback)
	})
}

// ExecuteStream runs the agent, delivering the final answer through the
// callback in chunks as the model generates it.
func (a *TimeAgent) ExecuteStream(ctx context.Context, userInput string, history []ai.Message, callback Callback) (string, error) {
	return a.run(ctx, userInput, func(ctx context.Context, input string) (string, error) {
		return a.agent.RunStreamWithCallback(ctx, input, history, callback)
	})
}

// run executes with error recovery and records request metrics.
func (a *TimeAgent) run(ctx context.Context, userInput string, exec ExecutorFunc) (string, error) {
	start := time.Now()

	res := a.recovery.ExecuteWithRecoveryDetailed(ctx, exec, userInput)

	a.recordRequest(ctx, time.Since(start), res.Success)

	if !res.Success {
		slog.Warn("time agent execution failed",
			"error", res.OriginalError,
			"recovered", res.WasRecovered)
		return res.Result, res.OriginalError
	}

	if res.WasRecovered {
		slog.Debug("time agent recovered from input error",
			"original_error", res.OriginalError)
	}

	return res.Result, nil
}

func (a *TimeAgent) recordRequest(ctx context.Context, latency time.Duration, success bool) {
	if a.metricsService != nil {
		a.metricsService.RecordRequest(ctx, AgentTypeTime, latency, success)
	}
}

// timeTool is the shape shared by the time tools: a schema-carrying tool
// with a Validate hook.
type timeTool interface {
	Name() string
	Description() string
	Parameters() map[string]interface{}
	Run(ctx context.Context, input string) (string, error)
	Validate(ctx context.Context, input string) error
}

// resilientTool pairs a BaseTool pipeline with the tool's JSON Schema so
// the agent can advertise it to the model.
type resilientTool struct {
	*BaseTool
	params map[string]interface{}
}

func (t *resilientTool) Parameters() map[string]interface{} {
	return t.params
}

// resilient builds the execution pipeline for a time tool: input
// validation, an overall deadline, then the executor's retry and fallback
// handling. Failures the recovery system understands are surfaced as
// errors so the whole run can be retried with fixed input; for anything
// else the fallback output stands in when one is registered.
func resilient(tool timeTool, executor *localtools.ResilientToolExecutor) ToolWithSchema {
	base := NewBaseTool(
		tool.Name(),
		tool.Description(),
		func(ctx context.Context, input string) (string, error) {
			res := executor.ExecuteDetailed(ctx, tool, input)
			if res.Error != nil && IsRecoverableError(res.Error) {
				return "", res.Error
			}
			if res.Result != nil {
				return res.Result.Output, nil
			}
			return "", res.Error
		},
		WithTimeout(45*time.Second),
		WithValidator(func(input string) error {
			return tool.Validate(context.Background(), input)
		}),
	)
	return &resilientTool{BaseTool: base, params: tool.Parameters()}
}
