package persistence

import (
	"context"
	"database/sql"

	"engage_server/core/domain"
	"engage_server/core/port/out"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// CatalogAdapter implements out.CatalogRepository using PostgreSQL. It
// serves the three weighted context sources: products, FAQs and training
// materials.
type CatalogAdapter struct {
	db *sqlx.DB
}

// NewCatalogAdapter creates a new CatalogAdapter.
func NewCatalogAdapter(db *sqlx.DB) *CatalogAdapter {
	return &CatalogAdapter{db: db}
}

type productRow struct {
	ID          int64        `db:"id"`
	TenantID    uuid.UUID    `db:"tenant_id"`
	Name        string       `db:"name"`
	Description string       `db:"description"`
	Price       float64      `db:"price"`
	Currency    string       `db:"currency"`
	IsActive    bool         `db:"is_active"`
	CreatedAt   sql.NullTime `db:"created_at"`
}

type faqRow struct {
	ID         int64        `db:"id"`
	TenantID   uuid.UUID    `db:"tenant_id"`
	Question   string       `db:"question"`
	Answer     string       `db:"answer"`
	UsageCount int          `db:"usage_count"`
	CreatedAt  sql.NullTime `db:"created_at"`
}

type trainingRow struct {
	ID        int64        `db:"id"`
	TenantID  uuid.UUID    `db:"tenant_id"`
	Title     string       `db:"title"`
	Content   string       `db:"content"`
	CreatedAt sql.NullTime `db:"created_at"`
}

// ListActiveProducts returns up to limit active products.
func (a *CatalogAdapter) ListActiveProducts(ctx context.Context, tenantID uuid.UUID, limit int) ([]*domain.Product, error) {
	query := `
		SELECT * FROM products
		WHERE tenant_id = $1 AND is_active = true
		ORDER BY id
		LIMIT $2
	`

	rows, err := a.db.QueryxContext(ctx, query, tenantID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		var row productRow
		if err := rows.StructScan(&row); err != nil {
			return nil, err
		}
		p := &domain.Product{
			ID:          row.ID,
			TenantID:    row.TenantID,
			Name:        row.Name,
			Description: row.Description,
			Price:       row.Price,
			Currency:    row.Currency,
			IsActive:    row.IsActive,
		}
		if row.CreatedAt.Valid {
			p.CreatedAt = row.CreatedAt.Time
		}
		products = append(products, p)
	}

	return products, rows.Err()
}

// ListFAQs returns up to limit FAQs ordered by usage descending.
func (a *CatalogAdapter) ListFAQs(ctx context.Context, tenantID uuid.UUID, limit int) ([]*domain.FAQ, error) {
	query := `
		SELECT * FROM faqs
		WHERE tenant_id = $1
		ORDER BY usage_count DESC, id
		LIMIT $2
	`

	rows, err := a.db.QueryxContext(ctx, query, tenantID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var faqs []*domain.FAQ
	for rows.Next() {
		var row faqRow
		if err := rows.StructScan(&row); err != nil {
			return nil, err
		}
		f := &domain.FAQ{
			ID:         row.ID,
			TenantID:   row.TenantID,
			Question:   row.Question,
			Answer:     row.Answer,
			UsageCount: row.UsageCount,
		}
		if row.CreatedAt.Valid {
			f.CreatedAt = row.CreatedAt.Time
		}
		faqs = append(faqs, f)
	}

	return faqs, rows.Err()
}

// ListTrainingMaterials returns up to limit training entries.
func (a *CatalogAdapter) ListTrainingMaterials(ctx context.Context, tenantID uuid.UUID, limit int) ([]*domain.TrainingMaterial, error) {
	query := `
		SELECT * FROM training_materials
		WHERE tenant_id = $1
		ORDER BY id DESC
		LIMIT $2
	`

	rows, err := a.db.QueryxContext(ctx, query, tenantID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var materials []*domain.TrainingMaterial
	for rows.Next() {
		var row trainingRow
		if err := rows.StructScan(&row); err != nil {
			return nil, err
		}
		m := &domain.TrainingMaterial{
			ID:       row.ID,
			TenantID: row.TenantID,
			Title:    row.Title,
			Content:  row.Content,
		}
		if row.CreatedAt.Valid {
			m.CreatedAt = row.CreatedAt.Time
		}
		materials = append(materials, m)
	}

	return materials, rows.Err()
}

// Ensure CatalogAdapter implements out.CatalogRepository
var _ out.CatalogRepository = (*CatalogAdapter)(nil)
