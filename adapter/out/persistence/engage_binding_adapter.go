package persistence

import (
	"context"
	"database/sql"

	"engage_server/core/domain"
	"engage_server/core/port/out"

	"github.com/goccy/go-json"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// BindingAdapter implements out.BindingRepository using PostgreSQL.
type BindingAdapter struct {
	db *sqlx.DB
}

// NewBindingAdapter creates a new BindingAdapter.
func NewBindingAdapter(db *sqlx.DB) *BindingAdapter {
	return &BindingAdapter{db: db}
}

// bindingRow represents the database row for template bindings.
type bindingRow struct {
	ID            int64        `db:"id"`
	TenantID      uuid.UUID    `db:"tenant_id"`
	TemplateID    int64        `db:"template_id"`
	Enabled       bool         `db:"enabled"`
	Preferred     bool         `db:"preferred"`
	Priority      int          `db:"priority"`
	Substitutions []byte       `db:"substitutions"`
	Prefix        string       `db:"prefix"`
	Suffix        string       `db:"suffix"`
	UsageCount    int          `db:"usage_count"`
	LastUsedAt    sql.NullTime `db:"last_used_at"`
	CreatedAt     sql.NullTime `db:"created_at"`
	UpdatedAt     sql.NullTime `db:"updated_at"`
}

func (r *bindingRow) toEntity() *domain.TemplateBinding {
	b := &domain.TemplateBinding{
		ID:         r.ID,
		TenantID:   r.TenantID,
		TemplateID: r.TemplateID,
		Enabled:    r.Enabled,
		Preferred:  r.Preferred,
		Priority:   r.Priority,
		Prefix:     r.Prefix,
		Suffix:     r.Suffix,
		UsageCount: r.UsageCount,
	}

	if r.LastUsedAt.Valid {
		b.LastUsedAt = &r.LastUsedAt.Time
	}
	if r.CreatedAt.Valid {
		b.CreatedAt = r.CreatedAt.Time
	}
	if r.UpdatedAt.Valid {
		b.UpdatedAt = r.UpdatedAt.Time
	}

	if len(r.Substitutions) > 0 {
		var subs []domain.Substitution
		if err := json.Unmarshal(r.Substitutions, &subs); err == nil {
			b.Substitutions = subs
		}
	}

	return b
}

func marshalSubstitutions(subs []domain.Substitution) []byte {
	if len(subs) == 0 {
		return []byte("[]")
	}
	data, err := json.Marshal(subs)
	if err != nil {
		return []byte("[]")
	}
	return data
}

// Create creates a new binding.
func (a *BindingAdapter) Create(ctx context.Context, b *domain.TemplateBinding) error {
	query := `
		INSERT INTO template_bindings (
			tenant_id, template_id, enabled, preferred, priority,
			substitutions, prefix, suffix
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	return a.db.QueryRowxContext(ctx, query,
		b.TenantID,
		b.TemplateID,
		b.Enabled,
		b.Preferred,
		b.Priority,
		marshalSubstitutions(b.Substitutions),
		b.Prefix,
		b.Suffix,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
}

// Update updates a binding.
func (a *BindingAdapter) Update(ctx context.Context, b *domain.TemplateBinding) error {
	query := `
		UPDATE template_bindings SET
			enabled = $1,
			preferred = $2,
			priority = $3,
			substitutions = $4,
			prefix = $5,
			suffix = $6,
			updated_at = NOW()
		WHERE id = $7 AND tenant_id = $8
	`

	result, err := a.db.ExecContext(ctx, query,
		b.Enabled,
		b.Preferred,
		b.Priority,
		marshalSubstitutions(b.Substitutions),
		b.Prefix,
		b.Suffix,
		b.ID,
		b.TenantID,
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

// GetByID retrieves a binding by ID within the tenant.
func (a *BindingAdapter) GetByID(ctx context.Context, tenantID uuid.UUID, id int64) (*domain.TemplateBinding, error) {
	query := `SELECT * FROM template_bindings WHERE id = $1 AND tenant_id = $2`

	var row bindingRow
	err := a.db.QueryRowxContext(ctx, query, id, tenantID).StructScan(&row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return row.toEntity(), nil
}

// List lists the tenant's bindings.
func (a *BindingAdapter) List(ctx context.Context, tenantID uuid.UUID) ([]*domain.TemplateBinding, error) {
	query := `SELECT * FROM template_bindings WHERE tenant_id = $1 ORDER BY preferred DESC, priority DESC, id`

	rows, err := a.db.QueryxContext(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bindings []*domain.TemplateBinding
	for rows.Next() {
		var row bindingRow
		if err := rows.StructScan(&row); err != nil {
			return nil, err
		}
		bindings = append(bindings, row.toEntity())
	}

	return bindings, rows.Err()
}

// ListCandidates returns enabled bindings joined to active templates in the
// language, ordered preferred DESC then priority DESC. The matcher walks
// this order and takes the first hit.
func (a *BindingAdapter) ListCandidates(ctx context.Context, tenantID uuid.UUID, language string, industry *string) ([]*out.MatchCandidate, error) {
	query := `
		SELECT
			b.id AS b_id, b.tenant_id AS b_tenant_id, b.template_id AS b_template_id,
			b.enabled AS b_enabled, b.preferred AS b_preferred, b.priority AS b_priority,
			b.substitutions AS b_substitutions, b.prefix AS b_prefix, b.suffix AS b_suffix,
			b.usage_count AS b_usage_count, b.last_used_at AS b_last_used_at,
			b.created_at AS b_created_at, b.updated_at AS b_updated_at,
			t.id AS t_id, t.scope AS t_scope, t.tenant_id AS t_tenant_id,
			t.category AS t_category, t.industry AS t_industry, t.language AS t_language,
			t.is_active AS t_is_active, t.is_recommended AS t_is_recommended,
			t.priority AS t_priority, t.match_patterns AS t_match_patterns,
			t.message_examples AS t_message_examples, t.response_text AS t_response_text,
			t.variants AS t_variants, t.usage_count AS t_usage_count,
			t.created_at AS t_created_at, t.updated_at AS t_updated_at
		FROM template_bindings b
		JOIN success_templates t ON t.id = b.template_id
		WHERE b.tenant_id = $1
		  AND b.enabled = true
		  AND t.is_active = true
		  AND t.language = $2
		  AND (t.industry IS NULL OR t.industry = $3)
		ORDER BY b.preferred DESC, b.priority DESC, b.id
	`

	tag := ""
	if industry != nil {
		tag = *industry
	}

	rows, err := a.db.QueryxContext(ctx, query, tenantID, language, tag)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candidates []*out.MatchCandidate
	for rows.Next() {
		var row candidateRow
		if err := rows.StructScan(&row); err != nil {
			return nil, err
		}
		candidates = append(candidates, &out.MatchCandidate{
			Binding:  row.binding().toEntity(),
			Template: row.template().toEntity(),
		})
	}

	return candidates, rows.Err()
}

// candidateRow flattens the binding/template join with column aliases.
type candidateRow struct {
	BID            int64        `db:"b_id"`
	BTenantID      uuid.UUID    `db:"b_tenant_id"`
	BTemplateID    int64        `db:"b_template_id"`
	BEnabled       bool         `db:"b_enabled"`
	BPreferred     bool         `db:"b_preferred"`
	BPriority      int          `db:"b_priority"`
	BSubstitutions []byte       `db:"b_substitutions"`
	BPrefix        string       `db:"b_prefix"`
	BSuffix        string       `db:"b_suffix"`
	BUsageCount    int          `db:"b_usage_count"`
	BLastUsedAt    sql.NullTime `db:"b_last_used_at"`
	BCreatedAt     sql.NullTime `db:"b_created_at"`
	BUpdatedAt     sql.NullTime `db:"b_updated_at"`

	TID              int64          `db:"t_id"`
	TScope           string         `db:"t_scope"`
	TTenantID        uuid.NullUUID  `db:"t_tenant_id"`
	TCategory        string         `db:"t_category"`
	TIndustry        sql.NullString `db:"t_industry"`
	TLanguage        string         `db:"t_language"`
	TIsActive        bool           `db:"t_is_active"`
	TIsRecommended   bool           `db:"t_is_recommended"`
	TPriority        int            `db:"t_priority"`
	TMatchPatterns   pq.StringArray `db:"t_match_patterns"`
	TMessageExamples pq.StringArray `db:"t_message_examples"`
	TResponseText    string         `db:"t_response_text"`
	TVariants        []byte         `db:"t_variants"`
	TUsageCount      int            `db:"t_usage_count"`
	TCreatedAt       sql.NullTime   `db:"t_created_at"`
	TUpdatedAt       sql.NullTime   `db:"t_updated_at"`
}

func (r *candidateRow) binding() *bindingRow {
	return &bindingRow{
		ID:            r.BID,
		TenantID:      r.BTenantID,
		TemplateID:    r.BTemplateID,
		Enabled:       r.BEnabled,
		Preferred:     r.BPreferred,
		Priority:      r.BPriority,
		Substitutions: r.BSubstitutions,
		Prefix:        r.BPrefix,
		Suffix:        r.BSuffix,
		UsageCount:    r.BUsageCount,
		LastUsedAt:    r.BLastUsedAt,
		CreatedAt:     r.BCreatedAt,
		UpdatedAt:     r.BUpdatedAt,
	}
}

func (r *candidateRow) template() *templateRow {
	return &templateRow{
		ID:              r.TID,
		Scope:           r.TScope,
		TenantID:        r.TTenantID,
		Category:        r.TCategory,
		Industry:        r.TIndustry,
		Language:        r.TLanguage,
		IsActive:        r.TIsActive,
		IsRecommended:   r.TIsRecommended,
		Priority:        r.TPriority,
		MatchPatterns:   r.TMatchPatterns,
		MessageExamples: r.TMessageExamples,
		ResponseText:    r.TResponseText,
		Variants:        r.TVariants,
		UsageCount:      r.TUsageCount,
		CreatedAt:       r.TCreatedAt,
		UpdatedAt:       r.TUpdatedAt,
	}
}

// TouchUsage bumps the binding usage counter and last-used timestamp.
func (a *BindingAdapter) TouchUsage(ctx context.Context, id int64) error {
	query := `
		UPDATE template_bindings
		SET usage_count = usage_count + 1, last_used_at = NOW()
		WHERE id = $1
	`
	_, err := a.db.ExecContext(ctx, query, id)
	return err
}

// Ensure BindingAdapter implements out.BindingRepository
var _ out.BindingRepository = (*BindingAdapter)(nil)
