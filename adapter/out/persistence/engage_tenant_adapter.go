package persistence

import (
	"context"
	"database/sql"

	"engage_server/core/domain"
	"engage_server/core/port/out"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// TenantAdapter implements out.TenantRepository using PostgreSQL. Tenant
// rows are owned by the platform's identity service; this adapter only
// reads them.
type TenantAdapter struct {
	db *sqlx.DB
}

// NewTenantAdapter creates a new TenantAdapter.
func NewTenantAdapter(db *sqlx.DB) *TenantAdapter {
	return &TenantAdapter{db: db}
}

type tenantRow struct {
	ID          uuid.UUID      `db:"id"`
	CompanyName string         `db:"company_name"`
	Industry    sql.NullString `db:"industry"`
	CreatedAt   sql.NullTime   `db:"created_at"`
}

func (r *tenantRow) toEntity() *domain.TenantProfile {
	p := &domain.TenantProfile{
		ID:          r.ID,
		CompanyName: r.CompanyName,
	}
	if r.Industry.Valid {
		industry := r.Industry.String
		p.Industry = &industry
	}
	if r.CreatedAt.Valid {
		p.CreatedAt = r.CreatedAt.Time
	}
	return p
}

// GetProfile retrieves the tenant profile, nil when unknown.
func (a *TenantAdapter) GetProfile(ctx context.Context, tenantID uuid.UUID) (*domain.TenantProfile, error) {
	query := `SELECT id, company_name, industry, created_at FROM tenants WHERE id = $1`

	var row tenantRow
	err := a.db.QueryRowxContext(ctx, query, tenantID).StructScan(&row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return row.toEntity(), nil
}

// Ensure TenantAdapter implements out.TenantRepository
var _ out.TenantRepository = (*TenantAdapter)(nil)
