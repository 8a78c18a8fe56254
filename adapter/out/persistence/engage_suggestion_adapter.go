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

// SuggestionAdapter implements out.SuggestionRepository using PostgreSQL.
type SuggestionAdapter struct {
	db *sqlx.DB
}

// NewSuggestionAdapter creates a new SuggestionAdapter.
func NewSuggestionAdapter(db *sqlx.DB) *SuggestionAdapter {
	return &SuggestionAdapter{db: db}
}

// suggestionRow represents the database row for suggestions.
type suggestionRow struct {
	ID              int64           `db:"id"`
	TenantID        uuid.UUID       `db:"tenant_id"`
	ConversationID  int64           `db:"conversation_id"`
	Source          string          `db:"source"`
	Text            string          `db:"text"`
	Used            bool            `db:"used"`
	AgentRating     sql.NullInt32   `db:"agent_rating"`
	FinalText       sql.NullString  `db:"final_text"`
	EditDistance    sql.NullInt32   `db:"edit_distance"`
	ManualOverride  bool            `db:"manual_override"`
	RoboticPhrases  pq.StringArray  `db:"robotic_phrases"`
	HumanLikeness   sql.NullFloat64 `db:"human_likeness"`
	NaturalLanguage sql.NullFloat64 `db:"natural_language"`
	Provenance      []byte          `db:"provenance"`
	CreatedAt       sql.NullTime    `db:"created_at"`
}

func (r *suggestionRow) toEntity() *domain.Suggestion {
	s := &domain.Suggestion{
		ID:             r.ID,
		TenantID:       r.TenantID,
		ConversationID: r.ConversationID,
		Source:         domain.SuggestionSource(r.Source),
		Text:           r.Text,
		Used:           r.Used,
		ManualOverride: r.ManualOverride,
		RoboticPhrases: r.RoboticPhrases,
	}

	if r.AgentRating.Valid {
		rating := int(r.AgentRating.Int32)
		s.AgentRating = &rating
	}
	if r.FinalText.Valid {
		finalText := r.FinalText.String
		s.FinalText = &finalText
	}
	if r.EditDistance.Valid {
		dist := int(r.EditDistance.Int32)
		s.EditDistance = &dist
	}
	if r.HumanLikeness.Valid {
		human := r.HumanLikeness.Float64
		s.HumanLikeness = &human
	}
	if r.NaturalLanguage.Valid {
		natural := r.NaturalLanguage.Float64
		s.NaturalLanguage = &natural
	}
	if r.CreatedAt.Valid {
		s.CreatedAt = r.CreatedAt.Time
	}

	if len(r.Provenance) > 0 {
		var provenance map[string]any
		if err := json.Unmarshal(r.Provenance, &provenance); err == nil {
			s.Provenance = provenance
		}
	}

	return s
}

// Create creates a new suggestion.
func (a *SuggestionAdapter) Create(ctx context.Context, s *domain.Suggestion) error {
	query := `
		INSERT INTO suggestions (tenant_id, conversation_id, source, text, provenance)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	return a.db.QueryRowxContext(ctx, query,
		s.TenantID,
		s.ConversationID,
		s.Source,
		s.Text,
		marshalJSON(s.Provenance),
	).Scan(&s.ID, &s.CreatedAt)
}

// GetByID retrieves a suggestion within the tenant.
func (a *SuggestionAdapter) GetByID(ctx context.Context, tenantID uuid.UUID, id int64) (*domain.Suggestion, error) {
	query := `SELECT * FROM suggestions WHERE id = $1 AND tenant_id = $2`

	var row suggestionRow
	err := a.db.QueryRowxContext(ctx, query, id, tenantID).StructScan(&row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return row.toEntity(), nil
}

// MarkUsed stores the agent's final text, rating and computed feedback
// fields on the suggestion row.
func (a *SuggestionAdapter) MarkUsed(ctx context.Context, s *domain.Suggestion) error {
	query := `
		UPDATE suggestions SET
			used = true,
			agent_rating = $1,
			final_text = $2,
			edit_distance = $3,
			manual_override = $4,
			robotic_phrases = $5,
			human_likeness = $6,
			natural_language = $7
		WHERE id = $8 AND tenant_id = $9
	`

	result, err := a.db.ExecContext(ctx, query,
		s.AgentRating,
		s.FinalText,
		s.EditDistance,
		s.ManualOverride,
		pq.Array(s.RoboticPhrases),
		s.HumanLikeness,
		s.NaturalLanguage,
		s.ID,
		s.TenantID,
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

// Ensure SuggestionAdapter implements out.SuggestionRepository
var _ out.SuggestionRepository = (*SuggestionAdapter)(nil)
