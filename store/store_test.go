package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/timesense/internal/profile"
)

// fakeDriver records calls so facade behavior can be tested without a
// real database.
type fakeDriver struct {
	conversations map[int32]*Conversation
	messages      []*ConversationMessage
	listCalls     int
	nextID        int32
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		conversations: make(map[int32]*Conversation),
		nextID:        1,
	}
}

func (f *fakeDriver) GetDB() *sql.DB { return nil }
func (f *fakeDriver) Close() error   { return nil }

func (f *fakeDriver) IsInitialized(context.Context) (bool, error) { return true, nil }

func (f *fakeDriver) UpsertSystemSetting(_ context.Context, upsert *SystemSetting) (*SystemSetting, error) {
	return upsert, nil
}

func (f *fakeDriver) GetSystemSetting(context.Context, *FindSystemSetting) (*SystemSetting, error) {
	return nil, nil
}

func (f *fakeDriver) CreateConversation(_ context.Context, create *Conversation) (*Conversation, error) {
	create.ID = f.nextID
	f.nextID++
	f.conversations[create.ID] = create
	return create, nil
}

func (f *fakeDriver) ListConversations(_ context.Context, find *FindConversation) ([]*Conversation, error) {
	f.listCalls++
	list := []*Conversation{}
	for _, c := range f.conversations {
		if find.ID != nil && c.ID != *find.ID {
			continue
		}
		if find.UID != nil && c.UID != *find.UID {
			continue
		}
		if find.Pinned != nil && c.Pinned != *find.Pinned {
			continue
		}
		list = append(list, c)
	}
	return list, nil
}

func (f *fakeDriver) UpdateConversation(_ context.Context, update *UpdateConversation) (*Conversation, error) {
	c, ok := f.conversations[update.ID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if update.Title != nil {
		c.Title = *update.Title
	}
	if update.Pinned != nil {
		c.Pinned = *update.Pinned
	}
	return c, nil
}

func (f *fakeDriver) DeleteConversation(_ context.Context, del *DeleteConversation) error {
	kept := f.messages[:0]
	for _, m := range f.messages {
		if m.ConversationID != del.ID {
			kept = append(kept, m)
		}
	}
	f.messages = kept
	if _, ok := f.conversations[del.ID]; !ok {
		return sql.ErrNoRows
	}
	delete(f.conversations, del.ID)
	return nil
}

func (f *fakeDriver) CreateConversationMessage(_ context.Context, create *ConversationMessage) (*ConversationMessage, error) {
	f.messages = append(f.messages, create)
	return create, nil
}

func (f *fakeDriver) ListConversationMessages(_ context.Context, find *FindConversationMessage) ([]*ConversationMessage, error) {
	list := []*ConversationMessage{}
	for _, m := range f.messages {
		if find.ConversationID != nil && m.ConversationID != *find.ConversationID {
			continue
		}
		list = append(list, m)
	}
	return list, nil
}

func (f *fakeDriver) DeleteConversationMessage(context.Context, *DeleteConversationMessage) error {
	return nil
}

func (f *fakeDriver) UpsertAgentMetrics(_ context.Context, upsert *UpsertAgentMetrics) (*AgentMetrics, error) {
	return &AgentMetrics{
		HourBucket:   upsert.HourBucket,
		AgentType:    upsert.AgentType,
		RequestCount: upsert.RequestCount,
	}, nil
}

func (f *fakeDriver) ListAgentMetrics(context.Context, *FindAgentMetrics) ([]*AgentMetrics, error) {
	return nil, nil
}

func (f *fakeDriver) DeleteAgentMetrics(context.Context, *DeleteAgentMetrics) error { return nil }

func (f *fakeDriver) UpsertToolMetrics(_ context.Context, upsert *UpsertToolMetrics) (*ToolMetrics, error) {
	return &ToolMetrics{HourBucket: upsert.HourBucket, ToolName: upsert.ToolName}, nil
}

func (f *fakeDriver) ListToolMetrics(context.Context, *FindToolMetrics) ([]*ToolMetrics, error) {
	return nil, nil
}

func (f *fakeDriver) DeleteToolMetrics(context.Context, *DeleteToolMetrics) error { return nil }

var _ Driver = (*fakeDriver)(nil)

func newTestStore(t *testing.T) (*Store, *fakeDriver) {
	t.Helper()
	driver := newFakeDriver()
	s := New(driver, &profile.Profile{Mode: "dev", Driver: "sqlite", Version: "0.1.0"})
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s, driver
}

func TestStore_GetConversation_CachesByUID(t *testing.T) {
	s, driver := newTestStore(t)
	ctx := context.Background()

	created, err := s.CreateConversation(ctx, &Conversation{
		UID:       "abc123",
		Title:     "Tokyo meeting",
		Timezone:  "Asia/Tokyo",
		CreatedTs: time.Now().Unix(),
		UpdatedTs: time.Now().Unix(),
		RowStatus: Normal,
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	uid := "abc123"
	first, err := s.GetConversation(ctx, &FindConversation{UID: &uid})
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, "Tokyo meeting", first.Title)

	callsAfterFirst := driver.listCalls

	// Second lookup by UID should be served from cache.
	second, err := s.GetConversation(ctx, &FindConversation{UID: &uid})
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, first.UID, second.UID)
	assert.Equal(t, callsAfterFirst, driver.listCalls)
}

func TestStore_GetConversation_NotFound(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	uid := "missing"
	got, err := s.GetConversation(ctx, &FindConversation{UID: &uid})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_UpdateConversation_InvalidatesCache(t *testing.T) {
	s, driver := newTestStore(t)
	ctx := context.Background()

	created, err := s.CreateConversation(ctx, &Conversation{
		UID:       "conv1",
		Title:     "Before",
		Timezone:  "UTC",
		RowStatus: Normal,
	})
	require.NoError(t, err)

	uid := "conv1"
	_, err = s.GetConversation(ctx, &FindConversation{UID: &uid})
	require.NoError(t, err)

	newTitle := "After"
	_, err = s.UpdateConversation(ctx, &UpdateConversation{ID: created.ID, Title: &newTitle})
	require.NoError(t, err)

	callsBefore := driver.listCalls
	got, err := s.GetConversation(ctx, &FindConversation{UID: &uid})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "After", got.Title)
	// Cache was invalidated, so the driver must be hit again.
	assert.Greater(t, driver.listCalls, callsBefore)
}

func TestStore_DeleteConversation_RemovesMessages(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	created, err := s.CreateConversation(ctx, &Conversation{UID: "conv2", RowStatus: Normal})
	require.NoError(t, err)

	_, err = s.CreateConversationMessage(ctx, &ConversationMessage{
		UID:            "msg1",
		ConversationID: created.ID,
		Role:           ConversationMessageRoleUser,
		Content:        "what time is it in Tokyo?",
	})
	require.NoError(t, err)

	require.NoError(t, s.DeleteConversation(ctx, &DeleteConversation{ID: created.ID}))

	messages, err := s.ListConversationMessages(ctx, &FindConversationMessage{ConversationID: &created.ID})
	require.NoError(t, err)
	assert.Empty(t, messages)
}
