package out

import (
	"context"

	"engage_server/core/domain"

	"github.com/google/uuid"
)

// TenantRepository reads tenant identity. Tenant lifecycle is owned by the
// platform's identity service; this engine only consumes profiles.
type TenantRepository interface {
	GetProfile(ctx context.Context, tenantID uuid.UUID) (*domain.TenantProfile, error)
}
