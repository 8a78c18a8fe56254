package persistence

import (
	"context"
	"database/sql"

	"engage_server/core/domain"
	"engage_server/core/port/out"

	"github.com/goccy/go-json"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ModelConfigAdapter implements out.ModelConfigRepository using PostgreSQL.
type ModelConfigAdapter struct {
	db *sqlx.DB
}

// NewModelConfigAdapter creates a new ModelConfigAdapter.
func NewModelConfigAdapter(db *sqlx.DB) *ModelConfigAdapter {
	return &ModelConfigAdapter{db: db}
}

// modelConfigRow represents the database row for model configs. Language,
// weights and metrics live in JSONB columns.
type modelConfigRow struct {
	ID                  int64        `db:"id"`
	TenantID            uuid.UUID    `db:"tenant_id"`
	Version             int          `db:"version"`
	IsActive            bool         `db:"is_active"`
	SystemInstructions  string       `db:"system_instructions"`
	ResponseStyle       string       `db:"response_style"`
	Temperature         float64      `db:"temperature"`
	MaxLength           int          `db:"max_length"`
	Language            []byte       `db:"language"`
	Weights             []byte       `db:"weights"`
	FeedbackEnabled     bool         `db:"feedback_enabled"`
	FeedbackTargetScore float64      `db:"feedback_target_score"`
	LearningRate        float64      `db:"learning_rate"`
	Metrics             []byte       `db:"metrics"`
	CreatedAt           sql.NullTime `db:"created_at"`
	UpdatedAt           sql.NullTime `db:"updated_at"`
}

func (r *modelConfigRow) toEntity() *domain.ModelConfig {
	cfg := &domain.ModelConfig{
		ID:                  r.ID,
		TenantID:            r.TenantID,
		Version:             r.Version,
		IsActive:            r.IsActive,
		SystemInstructions:  r.SystemInstructions,
		ResponseStyle:       r.ResponseStyle,
		Temperature:         r.Temperature,
		MaxLength:           r.MaxLength,
		FeedbackEnabled:     r.FeedbackEnabled,
		FeedbackTargetScore: r.FeedbackTargetScore,
		LearningRate:        r.LearningRate,
		Weights:             domain.DefaultContextWeights(),
	}

	if r.CreatedAt.Valid {
		cfg.CreatedAt = r.CreatedAt.Time
	}
	if r.UpdatedAt.Valid {
		cfg.UpdatedAt = r.UpdatedAt.Time
	}

	if len(r.Language) > 0 {
		_ = json.Unmarshal(r.Language, &cfg.Language)
	}
	if len(r.Weights) > 0 {
		_ = json.Unmarshal(r.Weights, &cfg.Weights)
	}
	if len(r.Metrics) > 0 {
		_ = json.Unmarshal(r.Metrics, &cfg.Metrics)
	}

	return cfg
}

func marshalJSON(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		return []byte("{}")
	}
	return data
}

// Create stores a new config version. The version number continues the
// tenant's sequence.
func (a *ModelConfigAdapter) Create(ctx context.Context, cfg *domain.ModelConfig) error {
	query := `
		INSERT INTO model_configs (
			tenant_id, version, is_active,
			system_instructions, response_style, temperature, max_length,
			language, weights,
			feedback_enabled, feedback_target_score, learning_rate, metrics
		) VALUES (
			$1,
			COALESCE((SELECT MAX(version) FROM model_configs WHERE tenant_id = $1), 0) + 1,
			$2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		)
		RETURNING id, version, created_at, updated_at
	`

	return a.db.QueryRowxContext(ctx, query,
		cfg.TenantID,
		cfg.IsActive,
		cfg.SystemInstructions,
		cfg.ResponseStyle,
		cfg.Temperature,
		cfg.MaxLength,
		marshalJSON(cfg.Language),
		marshalJSON(cfg.Weights),
		cfg.FeedbackEnabled,
		cfg.FeedbackTargetScore,
		cfg.LearningRate,
		marshalJSON(cfg.Metrics),
	).Scan(&cfg.ID, &cfg.Version, &cfg.CreatedAt, &cfg.UpdatedAt)
}

// GetByID retrieves one config version within the tenant.
func (a *ModelConfigAdapter) GetByID(ctx context.Context, tenantID uuid.UUID, id int64) (*domain.ModelConfig, error) {
	query := `SELECT * FROM model_configs WHERE id = $1 AND tenant_id = $2`

	var row modelConfigRow
	err := a.db.QueryRowxContext(ctx, query, id, tenantID).StructScan(&row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return row.toEntity(), nil
}

// GetActive retrieves the tenant's active config, nil when none exists.
func (a *ModelConfigAdapter) GetActive(ctx context.Context, tenantID uuid.UUID) (*domain.ModelConfig, error) {
	query := `SELECT * FROM model_configs WHERE tenant_id = $1 AND is_active = true`

	var row modelConfigRow
	err := a.db.QueryRowxContext(ctx, query, tenantID).StructScan(&row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return row.toEntity(), nil
}

// List returns every config version of the tenant, newest first.
func (a *ModelConfigAdapter) List(ctx context.Context, tenantID uuid.UUID) ([]*domain.ModelConfig, error) {
	query := `SELECT * FROM model_configs WHERE tenant_id = $1 ORDER BY version DESC`

	rows, err := a.db.QueryxContext(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var configs []*domain.ModelConfig
	for rows.Next() {
		var row modelConfigRow
		if err := rows.StructScan(&row); err != nil {
			return nil, err
		}
		configs = append(configs, row.toEntity())
	}

	return configs, rows.Err()
}

// Activate deactivates every config of the tenant and activates id in one
// transaction, so readers never observe zero or two active rows.
func (a *ModelConfigAdapter) Activate(ctx context.Context, tenantID uuid.UUID, id int64) error {
	tx, err := a.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE model_configs SET is_active = false, updated_at = NOW() WHERE tenant_id = $1 AND is_active = true`,
		tenantID,
	); err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE model_configs SET is_active = true, updated_at = NOW() WHERE id = $1 AND tenant_id = $2`,
		id, tenantID,
	)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return sql.ErrNoRows
	}

	return tx.Commit()
}

// UpdateLearnings rewrites the system instructions and metrics blob of one
// config. Only the batch learning job calls this.
func (a *ModelConfigAdapter) UpdateLearnings(ctx context.Context, tenantID uuid.UUID, id int64, instructions string, metrics domain.ModelMetrics) error {
	query := `
		UPDATE model_configs
		SET system_instructions = $1, metrics = $2, updated_at = NOW()
		WHERE id = $3 AND tenant_id = $4
	`
	result, err := a.db.ExecContext(ctx, query, instructions, marshalJSON(metrics), id, tenantID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListFeedbackTenants returns tenants with an active, feedback-enabled
// config.
func (a *ModelConfigAdapter) ListFeedbackTenants(ctx context.Context) ([]uuid.UUID, error) {
	query := `SELECT tenant_id FROM model_configs WHERE is_active = true AND feedback_enabled = true`

	var tenants []uuid.UUID
	if err := a.db.SelectContext(ctx, &tenants, query); err != nil {
		return nil, err
	}
	return tenants, nil
}

// Ensure ModelConfigAdapter implements out.ModelConfigRepository
var _ out.ModelConfigRepository = (*ModelConfigAdapter)(nil)
