package store

// RowStatus is the status of a row.
type RowStatus string

const (
	// Normal is the status for a normal row.
	Normal RowStatus = "NORMAL"
	// Archived is the status for an archived row.
	Archived RowStatus = "ARCHIVED"
)

func (s RowStatus) String() string {
	return string(s)
}

type Conversation struct {
	ID        int32
	UID       string
	Title     string
	Timezone  string
	Pinned    bool
	CreatedTs int64
	UpdatedTs int64
	RowStatus RowStatus
}

type FindConversation struct {
	ID        *int32
	UID       *string
	Pinned    *bool
	RowStatus *RowStatus
	Limit     *int
	Offset    *int
}

type UpdateConversation struct {
	ID        int32
	Title     *string
	Timezone  *string
	Pinned    *bool
	RowStatus *RowStatus
	UpdatedTs *int64
}

type DeleteConversation struct {
	ID int32
}

type ConversationMessageRole string

const (
	ConversationMessageRoleUser      ConversationMessageRole = "USER"
	ConversationMessageRoleAssistant ConversationMessageRole = "ASSISTANT"
	ConversationMessageRoleSystem    ConversationMessageRole = "SYSTEM"
)

type ConversationMessage struct {
	ID             int32
	UID            string
	ConversationID int32
	Role           ConversationMessageRole
	Content        string
	Metadata       string // JSON string, e.g. tool calls made while answering
	CreatedTs      int64
}

type FindConversationMessage struct {
	ID             *int32
	UID            *string
	ConversationID *int32
}

type DeleteConversationMessage struct {
	ID             *int32
	ConversationID *int32
}
