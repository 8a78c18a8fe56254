package out

import (
	"context"

	"engage_server/core/domain"

	"github.com/google/uuid"
)

// TemplateFilter narrows template listings.
type TemplateFilter struct {
	TenantID *uuid.UUID // nil = global only
	Category *string
	Language *string
	Active   *bool
	Limit    int
	Offset   int
}

// TemplateRepository persists success templates.
type TemplateRepository interface {
	Create(ctx context.Context, t *domain.SuccessTemplate) error
	Update(ctx context.Context, t *domain.SuccessTemplate) error
	GetByID(ctx context.Context, id int64) (*domain.SuccessTemplate, error)

	// ListVisible returns templates a tenant can bind: its own plus global.
	ListVisible(ctx context.Context, tenantID uuid.UUID, filter *TemplateFilter) ([]*domain.SuccessTemplate, error)

	// IncrementUsage bumps the usage counter once per issued suggestion.
	IncrementUsage(ctx context.Context, id int64) error
}

// MatchCandidate is one enabled binding joined to its template, in matcher
// order: preferred first, then binding priority descending.
type MatchCandidate struct {
	Binding  *domain.TemplateBinding
	Template *domain.SuccessTemplate
}

// BindingRepository persists tenant-template bindings.
type BindingRepository interface {
	Create(ctx context.Context, b *domain.TemplateBinding) error
	Update(ctx context.Context, b *domain.TemplateBinding) error
	GetByID(ctx context.Context, tenantID uuid.UUID, id int64) (*domain.TemplateBinding, error)
	List(ctx context.Context, tenantID uuid.UUID) ([]*domain.TemplateBinding, error)

	// ListCandidates returns enabled bindings joined to active templates in
	// the language (industry matching any or the given tag), ordered
	// preferred DESC, priority DESC. The matcher depends on this order.
	ListCandidates(ctx context.Context, tenantID uuid.UUID, language string, industry *string) ([]*MatchCandidate, error)

	// TouchUsage bumps the binding usage counter and last-used timestamp.
	TouchUsage(ctx context.Context, id int64) error
}
