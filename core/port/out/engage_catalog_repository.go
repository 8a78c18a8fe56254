package out

import (
	"context"

	"engage_server/core/domain"

	"github.com/google/uuid"
)

// CatalogRepository serves the tenant knowledge the context assembler
// slices by weight: products, FAQs and training materials.
type CatalogRepository interface {
	// ListActiveProducts returns up to limit active products.
	ListActiveProducts(ctx context.Context, tenantID uuid.UUID, limit int) ([]*domain.Product, error)
	// ListFAQs returns up to limit FAQs ordered by usage descending.
	ListFAQs(ctx context.Context, tenantID uuid.UUID, limit int) ([]*domain.FAQ, error)
	// ListTrainingMaterials returns up to limit training entries.
	ListTrainingMaterials(ctx context.Context, tenantID uuid.UUID, limit int) ([]*domain.TrainingMaterial, error)
}
