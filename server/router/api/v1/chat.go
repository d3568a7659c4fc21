package v1

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/lithammer/shortuuid/v4"

	"github.com/hrygo/timesense/plugin/ai"
	"github.com/hrygo/timesense/plugin/ai/agent"
	apierrors "github.com/hrygo/timesense/server/internal/errors"
	"github.com/hrygo/timesense/server/internal/observability"
	"github.com/hrygo/timesense/server/timezone"
	"github.com/hrygo/timesense/store"
)

// ChatRequest is the request body for POST /api/v1/chat.
type ChatRequest struct {
	Message         string `json:"message"`
	ConversationUID string `json:"conversation_uid,omitempty"`
	Timezone        string `json:"timezone,omitempty"`
	Stream          bool   `json:"stream,omitempty"`
}

// ChatToolCall describes one tool invocation made while answering.
type ChatToolCall struct {
	Name   string `json:"name"`
	Input  string `json:"input"`
	Output string `json:"output"`
}

// ChatResponse is the non-streaming response body.
type ChatResponse struct {
	Answer          string         `json:"answer"`
	ConversationUID string         `json:"conversation_uid,omitempty"`
	ToolCalls       []ChatToolCall `json:"tool_calls,omitempty"`
}

// Chat handles POST /api/v1/chat. With stream=true the response is
// server-sent events (tool_use, tool_result, incremental answer chunks,
// done, error); otherwise a single JSON body.
func (s *APIV1Service) Chat(c echo.Context) error {
	req := &ChatRequest{}
	if err := c.Bind(req); err != nil {
		return writeAIError(c, apierrors.InvalidArgument("malformed request body"))
	}
	if req.Message == "" {
		return writeAIError(c, apierrors.InvalidArgument("message is required"))
	}
	if req.Timezone != "" && !timezone.IsValidTimezone(req.Timezone) {
		return writeAIError(c, apierrors.InvalidTimezone(req.Timezone))
	}
	if s.LLMService == nil {
		return writeAIError(c, apierrors.LLMUnavailable("LLM service is not configured"))
	}

	ctx := c.Request().Context()

	var conversation *store.Conversation
	var history []ai.Message
	if req.ConversationUID != "" {
		if s.Store == nil {
			return writeAIError(c, apierrors.InvalidArgument("conversation persistence is not enabled"))
		}
		var err error
		conversation, err = s.Store.GetConversation(ctx, &store.FindConversation{UID: &req.ConversationUID})
		if err != nil {
			return writeAIError(c, apierrors.Wrap(err, apierrors.ErrCodeAgentExecutionFailed, "failed to load conversation"))
		}
		if conversation == nil {
			return writeAIError(c, apierrors.NotFound(fmt.Sprintf("conversation %s not found", req.ConversationUID)))
		}
		if req.Timezone == "" {
			req.Timezone = conversation.Timezone
		}
		history, err = s.loadHistory(c, conversation.ID)
		if err != nil {
			return writeAIError(c, apierrors.Wrap(err, apierrors.ErrCodeAgentExecutionFailed, "failed to load history"))
		}
	}

	reqCtx := observability.NewRequestContext(s.logger(), agent.AgentTypeTime)
	reqCtx.Info("chat started",
		slog.Int(observability.LogFieldMessageLen, len(req.Message)),
		slog.String(observability.LogFieldTimezone, req.Timezone),
		slog.Bool("stream", req.Stream),
	)

	timeAgent, err := s.newTimeAgent(req.Timezone)
	if err != nil {
		reqCtx.Error("failed to create agent", err)
		return writeAIError(c, apierrors.AgentExecutionFailed("failed to create agent", err))
	}

	if req.Stream {
		return s.chatStream(c, reqCtx, timeAgent, req, conversation, history)
	}
	return s.chatOnce(c, reqCtx, timeAgent, req, conversation, history)
}

func (s *APIV1Service) chatOnce(c echo.Context, reqCtx *observability.RequestContext, timeAgent *agent.TimeAgent, req *ChatRequest, conversation *store.Conversation, history []ai.Message) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), s.chatTimeout())
	defer cancel()

	var toolCalls []ChatToolCall
	callback := func(event string, data string) {
		switch event {
		case agent.EventToolUse:
			name, input := splitToolEvent(data)
			toolCalls = append(toolCalls, ChatToolCall{Name: name, Input: input})
		case agent.EventToolResult:
			if len(toolCalls) > 0 {
				toolCalls[len(toolCalls)-1].Output = data
			}
		}
	}

	answer, err := timeAgent.ExecuteWithCallback(ctx, req.Message, history, callback)
	if err != nil {
		reqCtx.Error("chat failed", err, slog.Int64(observability.LogFieldDuration, reqCtx.DurationMs()))
		return writeAIError(c, toAIError(ctx, err))
	}

	s.persistExchange(c, reqCtx, conversation, req.Message, answer, toolCalls)

	reqCtx.Info("chat completed", slog.Int64(observability.LogFieldDuration, reqCtx.DurationMs()))

	resp := &ChatResponse{
		Answer:    answer,
		ToolCalls: toolCalls,
	}
	if conversation != nil {
		resp.ConversationUID = conversation.UID
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *APIV1Service) chatStream(c echo.Context, reqCtx *observability.RequestContext, timeAgent *agent.TimeAgent, req *ChatRequest, conversation *store.Conversation, history []ai.Message) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), s.chatTimeout())
	defer cancel()

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set("Cache-Control", "no-cache")
	resp.Header().Set("Connection", "keep-alive")
	resp.WriteHeader(http.StatusOK)

	var toolCalls []ChatToolCall
	callback := func(event string, data string) {
		switch event {
		case agent.EventToolUse:
			name, input := splitToolEvent(data)
			toolCalls = append(toolCalls, ChatToolCall{Name: name, Input: input})
		case agent.EventToolResult:
			if len(toolCalls) > 0 {
				toolCalls[len(toolCalls)-1].Output = data
			}
		}
		writeSSE(resp, event, data)
	}

	answer, err := timeAgent.ExecuteStream(ctx, req.Message, history, callback)
	if err != nil {
		aiErr := toAIError(ctx, err)
		reqCtx.Error("chat failed", err,
			slog.String(observability.LogFieldErrorCode, string(aiErr.Code)),
			slog.Int64(observability.LogFieldDuration, reqCtx.DurationMs()),
		)
		writeSSE(resp, "error", aiErr.Message)
		return nil
	}

	s.persistExchange(c, reqCtx, conversation, req.Message, answer, toolCalls)

	writeSSE(resp, "done", "")
	reqCtx.Info("chat completed", slog.Int64(observability.LogFieldDuration, reqCtx.DurationMs()))
	return nil
}

// loadHistory converts stored messages into the model's message format.
func (s *APIV1Service) loadHistory(c echo.Context, conversationID int32) ([]ai.Message, error) {
	messages, err := s.Store.ListConversationMessages(c.Request().Context(), &store.FindConversationMessage{
		ConversationID: &conversationID,
	})
	if err != nil {
		return nil, err
	}

	history := make([]ai.Message, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case store.ConversationMessageRoleUser:
			history = append(history, ai.UserMessage(m.Content))
		case store.ConversationMessageRoleAssistant:
			history = append(history, ai.AssistantMessage(m.Content))
		}
	}
	return history, nil
}

// persistExchange stores the user message and the assistant answer. The
// exchange is best-effort: persistence failures are logged, not surfaced.
func (s *APIV1Service) persistExchange(c echo.Context, reqCtx *observability.RequestContext, conversation *store.Conversation, message, answer string, toolCalls []ChatToolCall) {
	if conversation == nil || s.Store == nil {
		return
	}

	ctx := c.Request().Context()
	now := time.Now().Unix()

	if _, err := s.Store.CreateConversationMessage(ctx, &store.ConversationMessage{
		UID:            shortuuid.New(),
		ConversationID: conversation.ID,
		Role:           store.ConversationMessageRoleUser,
		Content:        message,
		Metadata:       "{}",
		CreatedTs:      now,
	}); err != nil {
		reqCtx.Warn("failed to persist user message", slog.String("error", err.Error()))
		return
	}

	metadata := "{}"
	if len(toolCalls) > 0 {
		if raw, err := json.Marshal(map[string]any{"tool_calls": toolCalls}); err == nil {
			metadata = string(raw)
		}
	}
	if _, err := s.Store.CreateConversationMessage(ctx, &store.ConversationMessage{
		UID:            shortuuid.New(),
		ConversationID: conversation.ID,
		Role:           store.ConversationMessageRoleAssistant,
		Content:        answer,
		Metadata:       metadata,
		CreatedTs:      now,
	}); err != nil {
		reqCtx.Warn("failed to persist assistant message", slog.String("error", err.Error()))
	}

	updatedTs := time.Now().Unix()
	if _, err := s.Store.UpdateConversation(ctx, &store.UpdateConversation{
		ID:        conversation.ID,
		UpdatedTs: &updatedTs,
	}); err != nil {
		reqCtx.Warn("failed to bump conversation timestamp", slog.String("error", err.Error()))
	}
}

// writeSSE writes one server-sent event. Data is JSON-encoded so
// newlines in answers survive the framing.
func writeSSE(resp *echo.Response, event, data string) {
	payload, _ := json.Marshal(map[string]string{"data": data})
	fmt.Fprintf(resp, "event: %s\ndata: %s\n\n", event, payload)
	resp.Flush()
}

// chatTimeout bounds the model work of one chat request.
func (s *APIV1Service) chatTimeout() time.Duration {
	if s.Profile != nil && s.Profile.ChatTimeout > 0 {
		return s.Profile.ChatTimeout
	}
	return 60 * time.Second
}

// splitToolEvent splits a "name:input" tool_use event into its parts.
func splitToolEvent(data string) (name, input string) {
	for i := 0; i < len(data); i++ {
		if data[i] == ':' {
			return data[:i], data[i+1:]
		}
	}
	return data, ""
}
