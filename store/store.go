package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hrygo/timesense/internal/profile"
	"github.com/hrygo/timesense/plugin/ai/cache"
)

const conversationCacheTTL = 10 * time.Minute

// Store provides database access to all raw objects.
type Store struct {
	profile *profile.Profile
	driver  Driver

	// Cache for hot conversation lookups keyed by UID.
	conversationCache cache.CacheService
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		driver:  driver,
		profile: profile,
		conversationCache: cache.NewService(cache.ServiceConfig{
			Capacity:        1000,
			DefaultTTL:      conversationCacheTTL,
			CleanupInterval: 5 * time.Minute,
		}),
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	if c, ok := s.conversationCache.(*cache.Service); ok {
		c.Close()
	}
	return s.driver.Close()
}

func conversationCacheKey(uid string) string {
	return fmt.Sprintf("conversation:%s", uid)
}

func (s *Store) CreateConversation(ctx context.Context, create *Conversation) (*Conversation, error) {
	return s.driver.CreateConversation(ctx, create)
}

func (s *Store) ListConversations(ctx context.Context, find *FindConversation) ([]*Conversation, error) {
	return s.driver.ListConversations(ctx, find)
}

// GetConversation returns a single conversation matching find, or nil when
// none matches. Lookups by UID are served from cache when possible.
func (s *Store) GetConversation(ctx context.Context, find *FindConversation) (*Conversation, error) {
	if find.UID != nil && find.ID == nil && find.Pinned == nil && find.RowStatus == nil {
		if raw, ok := s.conversationCache.Get(ctx, conversationCacheKey(*find.UID)); ok {
			conversation := &Conversation{}
			if err := json.Unmarshal(raw, conversation); err == nil {
				return conversation, nil
			}
		}
	}

	list, err := s.driver.ListConversations(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}

	conversation := list[0]
	if raw, err := json.Marshal(conversation); err == nil {
		_ = s.conversationCache.Set(ctx, conversationCacheKey(conversation.UID), raw, 0)
	}
	return conversation, nil
}

func (s *Store) UpdateConversation(ctx context.Context, update *UpdateConversation) (*Conversation, error) {
	conversation, err := s.driver.UpdateConversation(ctx, update)
	if err != nil {
		return nil, err
	}
	_ = s.conversationCache.Invalidate(ctx, conversationCacheKey(conversation.UID))
	return conversation, nil
}

func (s *Store) DeleteConversation(ctx context.Context, delete *DeleteConversation) error {
	conversations, err := s.driver.ListConversations(ctx, &FindConversation{ID: &delete.ID})
	if err == nil && len(conversations) > 0 {
		_ = s.conversationCache.Invalidate(ctx, conversationCacheKey(conversations[0].UID))
	}
	return s.driver.DeleteConversation(ctx, delete)
}

func (s *Store) CreateConversationMessage(ctx context.Context, create *ConversationMessage) (*ConversationMessage, error) {
	return s.driver.CreateConversationMessage(ctx, create)
}

func (s *Store) ListConversationMessages(ctx context.Context, find *FindConversationMessage) ([]*ConversationMessage, error) {
	return s.driver.ListConversationMessages(ctx, find)
}

func (s *Store) DeleteConversationMessage(ctx context.Context, delete *DeleteConversationMessage) error {
	return s.driver.DeleteConversationMessage(ctx, delete)
}

func (s *Store) UpsertAgentMetrics(ctx context.Context, upsert *UpsertAgentMetrics) (*AgentMetrics, error) {
	return s.driver.UpsertAgentMetrics(ctx, upsert)
}

func (s *Store) ListAgentMetrics(ctx context.Context, find *FindAgentMetrics) ([]*AgentMetrics, error) {
	return s.driver.ListAgentMetrics(ctx, find)
}

func (s *Store) DeleteAgentMetrics(ctx context.Context, delete *DeleteAgentMetrics) error {
	return s.driver.DeleteAgentMetrics(ctx, delete)
}

func (s *Store) UpsertToolMetrics(ctx context.Context, upsert *UpsertToolMetrics) (*ToolMetrics, error) {
	return s.driver.UpsertToolMetrics(ctx, upsert)
}

func (s *Store) ListToolMetrics(ctx context.Context, find *FindToolMetrics) ([]*ToolMetrics, error) {
	return s.driver.ListToolMetrics(ctx, find)
}

func (s *Store) DeleteToolMetrics(ctx context.Context, delete *DeleteToolMetrics) error {
	return s.driver.DeleteToolMetrics(ctx, delete)
}
