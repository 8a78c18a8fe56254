package in

import (
	"context"

	"engage_server/core/domain"
)

// SuggestionService decides what an agent should say next: template match
// first, generative fallback second.
type SuggestionService interface {
	// Suggest produces a suggestion for the conversation's latest customer
	// message. Returns apperr.ConfigMissing when neither a template matches
	// nor an active model config exists.
	Suggest(ctx context.Context, user domain.AuthUser, conversationID int64) (*domain.Suggestion, error)
}

// SendRequest is an agent send that may have originated from a suggestion.
type SendRequest struct {
	ConversationID int64  `json:"conversation_id"`
	Text           string `json:"text"`
	SuggestionID   *int64 `json:"suggestion_id,omitempty"`
	AgentRating    *int   `json:"agent_rating,omitempty"`
}

// ConversationService covers the messaging surface: inbound customer
// messages, agent sends (with feedback capture) and outcome updates.
type ConversationService interface {
	RecordInbound(ctx context.Context, user domain.AuthUser, conversationID int64, text string) (*domain.Message, error)
	Send(ctx context.Context, user domain.AuthUser, req *SendRequest) (*domain.Message, error)
	Complete(ctx context.Context, user domain.AuthUser, conversationID int64, successful bool, saleAmount *float64, products []string, notes string) error
}
