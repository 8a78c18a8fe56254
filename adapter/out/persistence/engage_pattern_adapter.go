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

// PatternAdapter implements out.PatternRepository using PostgreSQL.
type PatternAdapter struct {
	db *sqlx.DB
}

// NewPatternAdapter creates a new PatternAdapter.
func NewPatternAdapter(db *sqlx.DB) *PatternAdapter {
	return &PatternAdapter{db: db}
}

// patternRow represents the database row for success patterns.
type patternRow struct {
	ID                 int64          `db:"id"`
	TenantID           uuid.UUID      `db:"tenant_id"`
	ConversationID     int64          `db:"conversation_id"`
	Category           string         `db:"category"`
	Summary            string         `db:"summary"`
	KeyMessages        pq.StringArray `db:"key_messages"`
	HandledObjections  bool           `db:"handled_objections"`
	UsedClosing        bool           `db:"used_closing"`
	Outcome            []byte         `db:"outcome"`
	EffectivenessScore float64        `db:"effectiveness_score"`
	TrainingUsable     bool           `db:"training_usable"`
	CreatedAt          sql.NullTime   `db:"created_at"`
}

func (r *patternRow) toEntity() *domain.Pattern {
	p := &domain.Pattern{
		ID:                 r.ID,
		TenantID:           r.TenantID,
		ConversationID:     r.ConversationID,
		Category:           domain.PatternCategory(r.Category),
		Summary:            r.Summary,
		KeyMessages:        r.KeyMessages,
		HandledObjections:  r.HandledObjections,
		UsedClosing:        r.UsedClosing,
		EffectivenessScore: r.EffectivenessScore,
		TrainingUsable:     r.TrainingUsable,
	}

	if r.CreatedAt.Valid {
		p.CreatedAt = r.CreatedAt.Time
	}
	if len(r.Outcome) > 0 {
		_ = json.Unmarshal(r.Outcome, &p.Outcome)
	}

	return p
}

// Create creates a new pattern.
func (a *PatternAdapter) Create(ctx context.Context, p *domain.Pattern) error {
	query := `
		INSERT INTO success_patterns (
			tenant_id, conversation_id, category, summary, key_messages,
			handled_objections, used_closing, outcome,
			effectiveness_score, training_usable
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`

	return a.db.QueryRowxContext(ctx, query,
		p.TenantID,
		p.ConversationID,
		p.Category,
		p.Summary,
		pq.Array(p.KeyMessages),
		p.HandledObjections,
		p.UsedClosing,
		marshalJSON(p.Outcome),
		p.EffectivenessScore,
		p.TrainingUsable,
	).Scan(&p.ID, &p.CreatedAt)
}

// ExistsForConversation reports whether a pattern was already extracted
// from the conversation.
func (a *PatternAdapter) ExistsForConversation(ctx context.Context, conversationID int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM success_patterns WHERE conversation_id = $1)`

	var exists bool
	if err := a.db.QueryRowxContext(ctx, query, conversationID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// ListTopEffective returns training-usable patterns ordered by
// effectiveness descending, for the generation context.
func (a *PatternAdapter) ListTopEffective(ctx context.Context, tenantID uuid.UUID, limit int) ([]*domain.Pattern, error) {
	query := `
		SELECT * FROM success_patterns
		WHERE tenant_id = $1 AND training_usable = true
		ORDER BY effectiveness_score DESC, id
		LIMIT $2
	`

	rows, err := a.db.QueryxContext(ctx, query, tenantID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var patterns []*domain.Pattern
	for rows.Next() {
		var row patternRow
		if err := rows.StructScan(&row); err != nil {
			return nil, err
		}
		patterns = append(patterns, row.toEntity())
	}

	return patterns, rows.Err()
}

// Ensure PatternAdapter implements out.PatternRepository
var _ out.PatternRepository = (*PatternAdapter)(nil)
