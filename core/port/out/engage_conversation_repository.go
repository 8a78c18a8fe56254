package out

import (
	"context"
	"time"

	"engage_server/core/domain"

	"github.com/google/uuid"
)

// AgentSuccessCount pairs an agent with their closed-won conversation
// count, used by the batch learning job's top-agent extraction.
type AgentSuccessCount struct {
	AgentID      uuid.UUID
	SuccessCount int
}

// ConversationRepository persists conversations and their messages.
type ConversationRepository interface {
	Create(ctx context.Context, c *domain.Conversation) error
	GetByID(ctx context.Context, tenantID uuid.UUID, id int64) (*domain.Conversation, error)
	Update(ctx context.Context, c *domain.Conversation) error
	ListByContact(ctx context.Context, tenantID uuid.UUID, contactID int64) ([]*domain.Conversation, error)

	AddMessage(ctx context.Context, m *domain.Message) error
	// RecentMessages returns the newest limit messages oldest-first.
	RecentMessages(ctx context.Context, conversationID int64, limit int) ([]*domain.Message, error)
	// MessagesSince returns contact messages created after ts, for the
	// deferred engagement check.
	ContactMessagesSince(ctx context.Context, conversationID int64, ts time.Time) ([]*domain.Message, error)

	// ListSuccessfulSince returns closed-won conversations completed after
	// ts, for the pattern extractor.
	ListSuccessfulSince(ctx context.Context, tenantID uuid.UUID, ts time.Time) ([]*domain.Conversation, error)

	// AgentSuccessCounts aggregates closed-won conversations per agent.
	AgentSuccessCounts(ctx context.Context, tenantID uuid.UUID) ([]AgentSuccessCount, error)

	// ListTenants returns every tenant that owns at least one conversation,
	// for the scheduled jobs' per-tenant iteration.
	ListTenants(ctx context.Context) ([]uuid.UUID, error)
}

// ContactRepository persists customer contacts and engagement state.
type ContactRepository interface {
	Create(ctx context.Context, c *domain.Contact) error
	GetByID(ctx context.Context, tenantID uuid.UUID, id int64) (*domain.Contact, error)
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*domain.Contact, error)

	// UpdateEngagement writes the recomputed behavior score, tier, message
	// count and last-interaction timestamp.
	UpdateEngagement(ctx context.Context, tenantID uuid.UUID, id int64, score int, tier domain.EngagementTier, messageCount int, at time.Time) error
}
