// Package metrics provides the evaluation metrics service for the assistant
// agent and its tools.
package metrics

import (
	"context"
	"time"
)

// MetricsService defines the metrics service interface.
type MetricsService interface {
	// RecordRequest records request metrics.
	RecordRequest(ctx context.Context, agentType string, latency time.Duration, success bool)

	// RecordToolCall records tool call metrics.
	RecordToolCall(ctx context.Context, toolName string, latency time.Duration, success bool)

	// GetStats retrieves statistics data.
	GetStats(ctx context.Context, timeRange TimeRange) (*AgentMetrics, error)
}

// TimeRange represents a time range for querying metrics.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// AgentMetrics represents aggregated agent metrics.
type AgentMetrics struct {
	RequestCount int64                 `json:"request_count"`
	SuccessCount int64                 `json:"success_count"`
	LatencyP50   time.Duration         `json:"latency_p50"`
	LatencyP95   time.Duration         `json:"latency_p95"`
	AgentStats   map[string]*AgentStat `json:"agent_stats"`
	ToolStats    map[string]*ToolStat  `json:"tool_stats"`
}

// AgentStat represents statistics for a single agent.
type AgentStat struct {
	Count       int64         `json:"count"`
	SuccessRate float32       `json:"success_rate"`
	AvgLatency  time.Duration `json:"avg_latency"`
}

// ToolStat represents statistics for a single tool.
type ToolStat struct {
	Count       int64         `json:"count"`
	SuccessRate float32       `json:"success_rate"`
	AvgLatency  time.Duration `json:"avg_latency"`
}
