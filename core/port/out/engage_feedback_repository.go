package out

import (
	"context"
	"time"

	"engage_server/core/domain"

	"github.com/google/uuid"
)

// SuggestionRepository persists suggestions and their computed feedback
// fields.
type SuggestionRepository interface {
	Create(ctx context.Context, s *domain.Suggestion) error
	GetByID(ctx context.Context, tenantID uuid.UUID, id int64) (*domain.Suggestion, error)
	// MarkUsed stores the agent's final text, rating and the computed
	// feedback fields on the suggestion row.
	MarkUsed(ctx context.Context, s *domain.Suggestion) error
}

// FeedbackRepository persists RLHF feedback samples. Claim implements the
// exactly-once consume transition.
type FeedbackRepository interface {
	Create(ctx context.Context, s *domain.FeedbackSample) error
	GetByID(ctx context.Context, id int64) (*domain.FeedbackSample, error)

	// ListUnconsumed returns unconsumed samples for the tenant and model
	// version created after since, ordered by engagement score descending.
	ListUnconsumed(ctx context.Context, tenantID uuid.UUID, modelConfigID int64, since time.Time) ([]*domain.FeedbackSample, error)

	// Claim flips consumed false->true and stamps batchID in one
	// compare-and-swap. Returns false when the sample was already consumed,
	// which a resumed batch run treats as "skip".
	Claim(ctx context.Context, id int64, batchID string) (bool, error)

	// UpdateEngagement records the delayed engagement outcome.
	UpdateEngagement(ctx context.Context, id int64, outcome domain.EngagementOutcome, score float64) error
}

// PatternRepository persists extracted success patterns.
type PatternRepository interface {
	Create(ctx context.Context, p *domain.Pattern) error
	ExistsForConversation(ctx context.Context, conversationID int64) (bool, error)
	// ListTopEffective returns training-usable patterns ordered by
	// effectiveness descending, for the generation context.
	ListTopEffective(ctx context.Context, tenantID uuid.UUID, limit int) ([]*domain.Pattern, error)
}

// KnowledgeStore keeps the per-tenant, per-category knowledge-base entries
// derived from the best extracted patterns.
type KnowledgeStore interface {
	Upsert(ctx context.Context, entry *domain.KnowledgeEntry) error
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*domain.KnowledgeEntry, error)
}
