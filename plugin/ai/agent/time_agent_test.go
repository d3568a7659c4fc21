package agent

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/timesense/plugin/ai"
	localtools "github.com/hrygo/timesense/plugin/ai/agent/tools"
	"github.com/hrygo/timesense/plugin/ai/aitime"
	"github.com/hrygo/timesense/plugin/ai/metrics"
)

var agentFixedNow = time.Date(2026, 1, 27, 15, 0, 0, 0, time.UTC)

func newTestTimeAgent(t *testing.T, llm ai.LLMService, metricsService metrics.MetricsService) *TimeAgent {
	t.Helper()
	agent, err := NewTimeAgent(llm, TimeAgentConfig{
		Timezone:       "America/New_York",
		Clock:          localtools.FixedClock{Time: agentFixedNow},
		TimeService:    aitime.NewService("America/New_York"),
		MetricsService: metricsService,
	})
	require.NoError(t, err)
	return agent
}

func TestNewTimeAgent_Validation(t *testing.T) {
	t.Run("NilLLM", func(t *testing.T) {
		_, err := NewTimeAgent(nil, TimeAgentConfig{
			TimeService: aitime.NewService("UTC"),
		})
		assert.Error(t, err)
	})

	t.Run("NilTimeService", func(t *testing.T) {
		_, err := NewTimeAgent(new(MockLLM), TimeAgentConfig{})
		assert.Error(t, err)
	})

	t.Run("BadTimezoneFallsBackToUTC", func(t *testing.T) {
		agent, err := NewTimeAgent(new(MockLLM), TimeAgentConfig{
			Timezone:    "Not/AZone",
			TimeService: aitime.NewService("UTC"),
		})
		require.NoError(t, err)
		assert.Equal(t, "UTC", agent.Timezone())
	})
}

func TestTimeAgent_SystemPromptCarriesCurrentTime(t *testing.T) {
	llm := new(MockLLM)
	llm.On("ChatWithTools", mock.Anything, mock.MatchedBy(func(messages []ai.Message) bool {
		return messages[0].Role == "system" &&
			strings.Contains(messages[0].Content, "2026-01-27 10:00") &&
			strings.Contains(messages[0].Content, "America/New_York")
	}), mock.Anything).
		Return(&ai.ToolCallResponse{Content: "hi"}, nil).Once()

	agent := newTestTimeAgent(t, llm, nil)

	_, err := agent.Execute(context.Background(), "hello")
	require.NoError(t, err)
	llm.AssertExpectations(t)
}

func TestTimeAgent_CurrentTimeToolFlow(t *testing.T) {
	llm := new(MockLLM)
	llm.On("ChatWithTools", mock.Anything, mock.Anything, mock.Anything).
		Return(mockToolCallResponse("get_current_time", `{"timezone":"Asia/Tokyo"}`, ""), nil).Once()
	llm.On("ChatWithTools", mock.Anything, mock.MatchedBy(func(messages []ai.Message) bool {
		last := messages[len(messages)-1]
		return strings.Contains(last.Content, "[Result from get_current_time]") &&
			strings.Contains(last.Content, "2026-01-28T00:00:00+09:00")
	}), mock.Anything).
		Return(&ai.ToolCallResponse{Content: "It is midnight in Tokyo."}, nil).Once()

	agent := newTestTimeAgent(t, llm, nil)

	result, err := agent.Execute(context.Background(), "What time is it in Tokyo?")
	require.NoError(t, err)
	assert.Equal(t, "It is midnight in Tokyo.", result)
	llm.AssertExpectations(t)
}

func TestTimeAgent_ConvertTimeToolFlow(t *testing.T) {
	llm := new(MockLLM)
	llm.On("ChatWithTools", mock.Anything, mock.Anything, mock.Anything).
		Return(mockToolCallResponse("convert_time",
			`{"time":"12:30","source_timezone":"America/New_York","target_timezone":"Europe/London"}`, ""), nil).Once()
	llm.On("ChatWithTools", mock.Anything, mock.MatchedBy(func(messages []ai.Message) bool {
		last := messages[len(messages)-1]
		return strings.Contains(last.Content, `"time_difference":"+5h"`)
	}), mock.Anything).
		Return(&ai.ToolCallResponse{Content: "12:30 PM in New York is 5:30 PM in London."}, nil).Once()

	agent := newTestTimeAgent(t, llm, nil)

	var toolEvents []string
	result, err := agent.ExecuteWithCallback(context.Background(),
		"Convert 12:30pm to Europe/London. My timezone is America/New_York.", nil,
		func(event string, data string) {
			if event == EventToolUse {
				toolEvents = append(toolEvents, data)
			}
		})
	require.NoError(t, err)
	assert.Equal(t, "12:30 PM in New York is 5:30 PM in London.", result)
	require.Len(t, toolEvents, 1)
	assert.True(t, strings.HasPrefix(toolEvents[0], "convert_time:"))
	llm.AssertExpectations(t)
}

func TestTimeAgent_RecordsMetrics(t *testing.T) {
	llm := new(MockLLM)
	llm.On("ChatWithTools", mock.Anything, mock.Anything, mock.Anything).
		Return(mockToolCallResponse("get_current_time", `{}`, ""), nil).Once()
	llm.On("ChatWithTools", mock.Anything, mock.Anything, mock.Anything).
		Return(&ai.ToolCallResponse{Content: "answer"}, nil).Once()

	mockMetrics := metrics.NewMockMetricsService()
	agent := newTestTimeAgent(t, llm, mockMetrics)

	_, err := agent.Execute(context.Background(), "what time is it?")
	require.NoError(t, err)

	stats, err := mockMetrics.GetStats(context.Background(), metrics.TimeRange{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.RequestCount)
	assert.Contains(t, stats.ToolStats, "get_current_time")
}

func TestTimeAgent_RecoversWhenModelPicksUnknownTool(t *testing.T) {
	llm := new(MockLLM)
	// First run aborts because the requested tool does not exist; the
	// recovery layer retries and the model answers without tools.
	llm.On("ChatWithTools", mock.Anything, mock.Anything, mock.Anything).
		Return(mockToolCallResponse("schedule_meeting", `{}`, ""), nil).Once()
	llm.On("ChatWithTools", mock.Anything, mock.Anything, mock.Anything).
		Return(&ai.ToolCallResponse{Content: "I can only answer time questions."}, nil).Once()

	agent := newTestTimeAgent(t, llm, nil)

	result, err := agent.Execute(context.Background(), "schedule a meeting for tomorrow")
	require.NoError(t, err)
	assert.Equal(t, "I can only answer time questions.", result)
	llm.AssertExpectations(t)
}

func TestTimeAgent_FriendlyMessageWhenRecoveryFails(t *testing.T) {
	llm := new(MockLLM)
	// The model insists on a nonexistent tool on the retry as well.
	llm.On("ChatWithTools", mock.Anything, mock.Anything, mock.Anything).
		Return(mockToolCallResponse("schedule_meeting", `{}`, ""), nil).Twice()

	agent := newTestTimeAgent(t, llm, nil)

	result, err := agent.Execute(context.Background(), "schedule a meeting for tomorrow")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrToolNotFound)
	assert.Equal(t, "Sorry, I cannot handle that request right now.", result)
	llm.AssertNumberOfCalls(t, "ChatWithTools", 2)
}

func TestTimeAgent_RetriesWithNormalizedTime(t *testing.T) {
	llm := new(MockLLM)
	// The model hands parse_time an expression the parser cannot handle;
	// the retry carries the user's time expression normalized to a
	// 24-hour clock.
	llm.On("ChatWithTools", mock.Anything, mock.Anything, mock.Anything).
		Return(mockToolCallResponse("parse_time", `{"expression":"sometime soonish"}`, ""), nil).Once()
	llm.On("ChatWithTools", mock.Anything, mock.MatchedBy(func(messages []ai.Message) bool {
		last := messages[len(messages)-1]
		return last.Role == "user" &&
			strings.Contains(last.Content, "15:00") &&
			!strings.Contains(last.Content, "tomorrow 3pm")
	}), mock.Anything).
		Return(&ai.ToolCallResponse{Content: "That is 3pm tomorrow."}, nil).Once()

	agent := newTestTimeAgent(t, llm, nil)

	result, err := agent.Execute(context.Background(), "remind me tomorrow 3pm")
	require.NoError(t, err)
	assert.Equal(t, "That is 3pm tomorrow.", result)
	llm.AssertExpectations(t)
}

func TestTimeAgent_StreamsFinalAnswer(t *testing.T) {
	contentChan, errChan := streamOf("It is ", "midnight in Tokyo.")

	llm := new(MockLLM)
	llm.On("ChatWithTools", mock.Anything, mock.Anything, mock.Anything).
		Return(mockToolCallResponse("get_current_time", `{"timezone":"Asia/Tokyo"}`, ""), nil).Once()
	llm.On("ChatStream", mock.Anything, mock.MatchedBy(func(messages []ai.Message) bool {
		last := messages[len(messages)-1]
		return strings.Contains(last.Content, "[Result from get_current_time]")
	})).
		Return(contentChan, errChan).Once()

	agent := newTestTimeAgent(t, llm, nil)

	var answers []string
	result, err := agent.ExecuteStream(context.Background(), "What time is it in Tokyo?", nil,
		func(event string, data string) {
			if event == EventAnswer {
				answers = append(answers, data)
			}
		})
	require.NoError(t, err)
	assert.Equal(t, "It is midnight in Tokyo.", result)
	assert.Equal(t, []string{"It is ", "midnight in Tokyo."}, answers)
	llm.AssertExpectations(t)
}

func TestTimeAgent_InvalidToolInputSurfacedToModel(t *testing.T) {
	llm := new(MockLLM)
	// Model asks for a conversion with an unknown timezone.
	llm.On("ChatWithTools", mock.Anything, mock.Anything, mock.Anything).
		Return(mockToolCallResponse("convert_time",
			`{"time":"12:00","target_timezone":"Middle/Earth"}`, ""), nil).Once()
	llm.On("ChatWithTools", mock.Anything, mock.MatchedBy(func(messages []ai.Message) bool {
		last := messages[len(messages)-1]
		return strings.Contains(last.Content, "Error:") &&
			strings.Contains(last.Content, "Middle/Earth")
	}), mock.Anything).
		Return(&ai.ToolCallResponse{Content: "That timezone does not exist."}, nil).Once()

	agent := newTestTimeAgent(t, llm, nil)

	result, err := agent.Execute(context.Background(), "convert noon to Middle/Earth time")
	require.NoError(t, err)
	assert.Equal(t, "That timezone does not exist.", result)
	llm.AssertExpectations(t)
}
