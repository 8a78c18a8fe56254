package domain

import (
	"time"

	"github.com/google/uuid"
)

// ConversationStatus tracks where a conversation sits in the sales flow.
type ConversationStatus string

const (
	ConversationNew        ConversationStatus = "new"
	ConversationInProgress ConversationStatus = "in_progress"
	ConversationWaiting    ConversationStatus = "waiting"
	ConversationCompleted  ConversationStatus = "completed"
	ConversationLost       ConversationStatus = "lost"
)

// Conversation is a tenant-scoped thread between one contact and the
// tenant's agents.
type Conversation struct {
	ID        int64              `json:"id"`
	TenantID  uuid.UUID          `json:"tenant_id"`
	ContactID int64              `json:"contact_id"`
	AgentID   *uuid.UUID         `json:"agent_id,omitempty"`
	Status    ConversationStatus `json:"status"`

	// Outcome, set on completion.
	IsSuccessful bool     `json:"is_successful"`
	SaleAmount   *float64 `json:"sale_amount,omitempty"`
	ProductsSold []string `json:"products_sold,omitempty"`
	Notes        string   `json:"notes,omitempty"`

	MessageCount  int        `json:"message_count"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SenderType distinguishes who authored a message.
type SenderType string

const (
	SenderContact SenderType = "contact"
	SenderAgent   SenderType = "agent"
)

// Message is a single turn in a conversation.
type Message struct {
	ID             int64      `json:"id"`
	ConversationID int64      `json:"conversation_id"`
	Sender         SenderType `json:"sender"`
	Content        string     `json:"content"`

	// Suggestion linkage: whether the agent message originated from an
	// AI suggestion, and whether it was sent verbatim.
	FromSuggestion bool `json:"from_suggestion"`
	UsedVerbatim   bool `json:"used_verbatim"`

	CreatedAt time.Time `json:"created_at"`
}

// Turn is a compact snapshot of one message, serialized into feedback
// samples and generation context.
type Turn struct {
	Sender  SenderType `json:"sender"`
	Content string     `json:"content"`
	SentAt  time.Time  `json:"sent_at"`
}

// TurnOf converts a message into its snapshot form.
func TurnOf(m *Message) Turn {
	return Turn{Sender: m.Sender, Content: m.Content, SentAt: m.CreatedAt}
}
