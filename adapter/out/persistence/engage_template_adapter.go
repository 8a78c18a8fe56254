package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"engage_server/core/domain"
	"engage_server/core/port/out"

	"github.com/goccy/go-json"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// TemplateAdapter implements out.TemplateRepository using PostgreSQL.
type TemplateAdapter struct {
	db *sqlx.DB
}

// NewTemplateAdapter creates a new TemplateAdapter.
func NewTemplateAdapter(db *sqlx.DB) *TemplateAdapter {
	return &TemplateAdapter{db: db}
}

// templateRow represents the database row for success templates.
type templateRow struct {
	ID              int64          `db:"id"`
	Scope           string         `db:"scope"`
	TenantID        uuid.NullUUID  `db:"tenant_id"`
	Category        string         `db:"category"`
	Industry        sql.NullString `db:"industry"`
	Language        string         `db:"language"`
	IsActive        bool           `db:"is_active"`
	IsRecommended   bool           `db:"is_recommended"`
	Priority        int            `db:"priority"`
	MatchPatterns   pq.StringArray `db:"match_patterns"`
	MessageExamples pq.StringArray `db:"message_examples"`
	ResponseText    string         `db:"response_text"`
	Variants        []byte         `db:"variants"`
	UsageCount      int            `db:"usage_count"`
	CreatedAt       sql.NullTime   `db:"created_at"`
	UpdatedAt       sql.NullTime   `db:"updated_at"`
}

func (r *templateRow) toEntity() *domain.SuccessTemplate {
	t := &domain.SuccessTemplate{
		ID:              r.ID,
		Scope:           domain.TemplateScope(r.Scope),
		Category:        r.Category,
		Language:        r.Language,
		IsActive:        r.IsActive,
		IsRecommended:   r.IsRecommended,
		Priority:        r.Priority,
		MatchPatterns:   r.MatchPatterns,
		MessageExamples: r.MessageExamples,
		ResponseText:    r.ResponseText,
		UsageCount:      r.UsageCount,
	}

	if r.TenantID.Valid {
		tenantID := r.TenantID.UUID
		t.TenantID = &tenantID
	}
	if r.Industry.Valid {
		industry := r.Industry.String
		t.Industry = &industry
	}
	if r.CreatedAt.Valid {
		t.CreatedAt = r.CreatedAt.Time
	}
	if r.UpdatedAt.Valid {
		t.UpdatedAt = r.UpdatedAt.Time
	}

	if len(r.Variants) > 0 {
		var variants map[string]string
		if err := json.Unmarshal(r.Variants, &variants); err == nil {
			t.Variants = variants
		}
	}

	return t
}

func marshalVariants(variants map[string]string) []byte {
	if len(variants) == 0 {
		return []byte("{}")
	}
	data, err := json.Marshal(variants)
	if err != nil {
		return []byte("{}")
	}
	return data
}

// Create creates a new success template.
func (a *TemplateAdapter) Create(ctx context.Context, t *domain.SuccessTemplate) error {
	query := `
		INSERT INTO success_templates (
			scope, tenant_id, category, industry, language,
			is_active, is_recommended, priority,
			match_patterns, message_examples, response_text, variants
		) VALUES (
			$1, $2, $3, NULLIF($4, ''), $5,
			$6, $7, $8,
			$9, $10, $11, $12
		)
		RETURNING id, created_at, updated_at
	`

	var industry string
	if t.Industry != nil {
		industry = *t.Industry
	}

	return a.db.QueryRowxContext(ctx, query,
		t.Scope,
		t.TenantID,
		t.Category,
		industry,
		t.Language,
		t.IsActive,
		t.IsRecommended,
		t.Priority,
		pq.Array(t.MatchPatterns),
		pq.Array(t.MessageExamples),
		t.ResponseText,
		marshalVariants(t.Variants),
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

// Update updates a success template.
func (a *TemplateAdapter) Update(ctx context.Context, t *domain.SuccessTemplate) error {
	query := `
		UPDATE success_templates SET
			category = $1,
			industry = NULLIF($2, ''),
			is_active = $3,
			is_recommended = $4,
			priority = $5,
			match_patterns = $6,
			message_examples = $7,
			response_text = $8,
			variants = $9,
			updated_at = NOW()
		WHERE id = $10
	`

	var industry string
	if t.Industry != nil {
		industry = *t.Industry
	}

	result, err := a.db.ExecContext(ctx, query,
		t.Category,
		industry,
		t.IsActive,
		t.IsRecommended,
		t.Priority,
		pq.Array(t.MatchPatterns),
		pq.Array(t.MessageExamples),
		t.ResponseText,
		marshalVariants(t.Variants),
		t.ID,
	)
	if err != nil {
		return err
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// GetByID retrieves a template by ID.
func (a *TemplateAdapter) GetByID(ctx context.Context, id int64) (*domain.SuccessTemplate, error) {
	query := `SELECT * FROM success_templates WHERE id = $1`

	var row templateRow
	err := a.db.QueryRowxContext(ctx, query, id).StructScan(&row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return row.toEntity(), nil
}

// ListVisible lists templates a tenant can bind: its own plus global.
func (a *TemplateAdapter) ListVisible(ctx context.Context, tenantID uuid.UUID, filter *out.TemplateFilter) ([]*domain.SuccessTemplate, error) {
	if filter == nil {
		filter = &out.TemplateFilter{}
	}
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 100
	}

	query := `
		SELECT * FROM success_templates
		WHERE (scope = 'global' OR tenant_id = $1)
	`
	args := []any{tenantID}
	argIdx := 2

	if filter.Category != nil && *filter.Category != "" {
		query += fmt.Sprintf(` AND category = $%d`, argIdx)
		args = append(args, *filter.Category)
		argIdx++
	}
	if filter.Language != nil && *filter.Language != "" {
		query += fmt.Sprintf(` AND language = $%d`, argIdx)
		args = append(args, *filter.Language)
		argIdx++
	}
	if filter.Active != nil {
		query += fmt.Sprintf(` AND is_active = $%d`, argIdx)
		args = append(args, *filter.Active)
		argIdx++
	}

	query += fmt.Sprintf(` ORDER BY priority DESC, usage_count DESC LIMIT $%d OFFSET $%d`, argIdx, argIdx+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := a.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []*domain.SuccessTemplate
	for rows.Next() {
		var row templateRow
		if err := rows.StructScan(&row); err != nil {
			return nil, err
		}
		templates = append(templates, row.toEntity())
	}

	return templates, rows.Err()
}

// IncrementUsage increments the template usage count.
func (a *TemplateAdapter) IncrementUsage(ctx context.Context, id int64) error {
	query := `UPDATE success_templates SET usage_count = usage_count + 1 WHERE id = $1`
	_, err := a.db.ExecContext(ctx, query, id)
	return err
}

// Ensure TemplateAdapter implements out.TemplateRepository
var _ out.TemplateRepository = (*TemplateAdapter)(nil)
