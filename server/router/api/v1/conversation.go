package v1

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/lithammer/shortuuid/v4"

	apierrors "github.com/hrygo/timesense/server/internal/errors"
	"github.com/hrygo/timesense/server/timezone"
	"github.com/hrygo/timesense/store"
)

// ConversationPayload is the JSON shape of a conversation.
type ConversationPayload struct {
	UID       string `json:"uid"`
	Title     string `json:"title"`
	Timezone  string `json:"timezone"`
	Pinned    bool   `json:"pinned"`
	CreatedTs int64  `json:"created_ts"`
	UpdatedTs int64  `json:"updated_ts"`
}

// MessagePayload is the JSON shape of a conversation message.
type MessagePayload struct {
	UID         string          `json:"uid"`
	Role        string          `json:"role"`
	Content     string          `json:"content"`
	ContentHTML string          `json:"content_html,omitempty"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
	CreatedTs   int64           `json:"created_ts"`
}

// ConversationDetail is a conversation with its messages.
type ConversationDetail struct {
	ConversationPayload
	Messages []*MessagePayload `json:"messages"`
}

type createConversationRequest struct {
	Title    string `json:"title"`
	Timezone string `json:"timezone"`
}

type updateConversationRequest struct {
	Title     *string `json:"title"`
	Timezone  *string `json:"timezone"`
	Pinned    *bool   `json:"pinned"`
	RowStatus *string `json:"row_status"`
}

// CreateConversation handles POST /api/v1/conversations.
func (s *APIV1Service) CreateConversation(c echo.Context) error {
	if s.Store == nil {
		return writeAIError(c, apierrors.InvalidArgument("conversation persistence is not enabled"))
	}

	req := &createConversationRequest{}
	if err := c.Bind(req); err != nil {
		return writeAIError(c, apierrors.InvalidArgument("malformed request body"))
	}

	tz := req.Timezone
	if tz == "" {
		tz = s.Profile.DefaultTimezone
	}
	if !timezone.IsValidTimezone(tz) {
		return writeAIError(c, apierrors.InvalidTimezone(tz))
	}

	now := time.Now().Unix()
	conversation, err := s.Store.CreateConversation(c.Request().Context(), &store.Conversation{
		UID:       shortuuid.New(),
		Title:     req.Title,
		Timezone:  tz,
		CreatedTs: now,
		UpdatedTs: now,
		RowStatus: store.Normal,
	})
	if err != nil {
		return writeAIError(c, apierrors.Wrap(err, apierrors.ErrCodeAgentExecutionFailed, "failed to create conversation"))
	}

	return c.JSON(http.StatusCreated, toConversationPayload(conversation))
}

// ListConversations handles GET /api/v1/conversations.
func (s *APIV1Service) ListConversations(c echo.Context) error {
	if s.Store == nil {
		return writeAIError(c, apierrors.InvalidArgument("conversation persistence is not enabled"))
	}

	find := &store.FindConversation{}
	if pinned := c.QueryParam("pinned"); pinned != "" {
		v, err := strconv.ParseBool(pinned)
		if err != nil {
			return writeAIError(c, apierrors.InvalidArgument("pinned must be a boolean"))
		}
		find.Pinned = &v
	}
	if limitStr := c.QueryParam("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 0 {
			return writeAIError(c, apierrors.InvalidArgument("limit must be a non-negative integer"))
		}
		find.Limit = &limit
	}
	if offsetStr := c.QueryParam("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil || offset < 0 {
			return writeAIError(c, apierrors.InvalidArgument("offset must be a non-negative integer"))
		}
		find.Offset = &offset
	}

	conversations, err := s.Store.ListConversations(c.Request().Context(), find)
	if err != nil {
		return writeAIError(c, apierrors.Wrap(err, apierrors.ErrCodeAgentExecutionFailed, "failed to list conversations"))
	}

	payload := make([]*ConversationPayload, 0, len(conversations))
	for _, conversation := range conversations {
		payload = append(payload, toConversationPayload(conversation))
	}
	return c.JSON(http.StatusOK, payload)
}

// GetConversation handles GET /api/v1/conversations/:uid. The response
// includes messages; assistant answers are also returned as rendered HTML.
func (s *APIV1Service) GetConversation(c echo.Context) error {
	conversation, err := s.findConversationByUID(c)
	if err != nil {
		return err
	}
	if conversation == nil {
		return nil // response already written
	}

	ctx := c.Request().Context()
	messages, err := s.Store.ListConversationMessages(ctx, &store.FindConversationMessage{
		ConversationID: &conversation.ID,
	})
	if err != nil {
		return writeAIError(c, apierrors.Wrap(err, apierrors.ErrCodeAgentExecutionFailed, "failed to list messages"))
	}

	detail := &ConversationDetail{
		ConversationPayload: *toConversationPayload(conversation),
		Messages:            make([]*MessagePayload, 0, len(messages)),
	}
	for _, m := range messages {
		payload := &MessagePayload{
			UID:       m.UID,
			Role:      string(m.Role),
			Content:   m.Content,
			CreatedTs: m.CreatedTs,
		}
		if m.Metadata != "" && m.Metadata != "{}" {
			payload.Metadata = json.RawMessage(m.Metadata)
		}
		if m.Role == store.ConversationMessageRoleAssistant {
			if html, err := s.MarkdownService.Render(m.Content); err == nil {
				payload.ContentHTML = html
			}
		}
		detail.Messages = append(detail.Messages, payload)
	}

	return c.JSON(http.StatusOK, detail)
}

// UpdateConversation handles PATCH /api/v1/conversations/:uid.
func (s *APIV1Service) UpdateConversation(c echo.Context) error {
	conversation, err := s.findConversationByUID(c)
	if err != nil {
		return err
	}
	if conversation == nil {
		return nil
	}

	req := &updateConversationRequest{}
	if err := c.Bind(req); err != nil {
		return writeAIError(c, apierrors.InvalidArgument("malformed request body"))
	}
	if req.Title == nil && req.Timezone == nil && req.Pinned == nil && req.RowStatus == nil {
		return writeAIError(c, apierrors.InvalidArgument("no fields to update"))
	}
	if req.Timezone != nil && !timezone.IsValidTimezone(*req.Timezone) {
		return writeAIError(c, apierrors.InvalidTimezone(*req.Timezone))
	}

	update := &store.UpdateConversation{
		ID:       conversation.ID,
		Title:    req.Title,
		Timezone: req.Timezone,
		Pinned:   req.Pinned,
	}
	if req.RowStatus != nil {
		rowStatus := store.RowStatus(*req.RowStatus)
		if rowStatus != store.Normal && rowStatus != store.Archived {
			return writeAIError(c, apierrors.InvalidArgument("row_status must be NORMAL or ARCHIVED"))
		}
		update.RowStatus = &rowStatus
	}
	updatedTs := time.Now().Unix()
	update.UpdatedTs = &updatedTs

	updated, err := s.Store.UpdateConversation(c.Request().Context(), update)
	if err != nil {
		return writeAIError(c, apierrors.Wrap(err, apierrors.ErrCodeAgentExecutionFailed, "failed to update conversation"))
	}

	return c.JSON(http.StatusOK, toConversationPayload(updated))
}

// DeleteConversation handles DELETE /api/v1/conversations/:uid.
func (s *APIV1Service) DeleteConversation(c echo.Context) error {
	conversation, err := s.findConversationByUID(c)
	if err != nil {
		return err
	}
	if conversation == nil {
		return nil
	}

	if err := s.Store.DeleteConversation(c.Request().Context(), &store.DeleteConversation{ID: conversation.ID}); err != nil {
		return writeAIError(c, apierrors.Wrap(err, apierrors.ErrCodeAgentExecutionFailed, "failed to delete conversation"))
	}

	return c.NoContent(http.StatusNoContent)
}

// findConversationByUID resolves :uid, writing the error response itself
// when the lookup fails. A (nil, nil) return means the response is done.
func (s *APIV1Service) findConversationByUID(c echo.Context) (*store.Conversation, error) {
	if s.Store == nil {
		return nil, writeAIError(c, apierrors.InvalidArgument("conversation persistence is not enabled"))
	}

	uid := c.Param("uid")
	if uid == "" {
		return nil, writeAIError(c, apierrors.InvalidArgument("conversation uid is required"))
	}

	conversation, err := s.Store.GetConversation(c.Request().Context(), &store.FindConversation{UID: &uid})
	if err != nil {
		return nil, writeAIError(c, apierrors.Wrap(err, apierrors.ErrCodeAgentExecutionFailed, "failed to load conversation"))
	}
	if conversation == nil {
		return nil, writeAIError(c, apierrors.NotFound(fmt.Sprintf("conversation %s not found", uid)))
	}
	return conversation, nil
}

func toConversationPayload(c *store.Conversation) *ConversationPayload {
	return &ConversationPayload{
		UID:       c.UID,
		Title:     c.Title,
		Timezone:  c.Timezone,
		Pinned:    c.Pinned,
		CreatedTs: c.CreatedTs,
		UpdatedTs: c.UpdatedTs,
	}
}
