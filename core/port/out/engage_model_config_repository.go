package out

import (
	"context"

	"engage_server/core/domain"

	"github.com/google/uuid"
)

// ModelConfigRepository persists versioned generation configs. The
// activation swap is the single place that may flip is_active flags and
// must leave exactly one active row per tenant.
type ModelConfigRepository interface {
	Create(ctx context.Context, cfg *domain.ModelConfig) error
	GetByID(ctx context.Context, tenantID uuid.UUID, id int64) (*domain.ModelConfig, error)
	GetActive(ctx context.Context, tenantID uuid.UUID) (*domain.ModelConfig, error)
	List(ctx context.Context, tenantID uuid.UUID) ([]*domain.ModelConfig, error)

	// Activate deactivates every config of the tenant and activates id, in
	// one transaction.
	Activate(ctx context.Context, tenantID uuid.UUID, id int64) error

	// UpdateLearnings rewrites the system instructions and metrics blob of
	// one config. Only the batch learning job calls this.
	UpdateLearnings(ctx context.Context, tenantID uuid.UUID, id int64, instructions string, metrics domain.ModelMetrics) error

	// ListFeedbackTenants returns tenants that have an active config with
	// feedback learning enabled.
	ListFeedbackTenants(ctx context.Context) ([]uuid.UUID, error)
}
