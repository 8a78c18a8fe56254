package persistence

import (
	"context"
	"database/sql"
	"time"

	"engage_server/core/domain"
	"engage_server/core/port/out"

	"github.com/goccy/go-json"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// FeedbackAdapter implements out.FeedbackRepository using PostgreSQL.
type FeedbackAdapter struct {
	db *sqlx.DB
}

// NewFeedbackAdapter creates a new FeedbackAdapter.
func NewFeedbackAdapter(db *sqlx.DB) *FeedbackAdapter {
	return &FeedbackAdapter{db: db}
}

// feedbackRow represents the database row for feedback samples.
type feedbackRow struct {
	ID              int64          `db:"id"`
	TenantID        uuid.UUID      `db:"tenant_id"`
	ModelConfigID   int64          `db:"model_config_id"`
	AgentID         uuid.UUID      `db:"agent_id"`
	SuggestionID    int64          `db:"suggestion_id"`
	SuggestionText  string         `db:"suggestion_text"`
	FinalText       string         `db:"final_text"`
	Turns           []byte         `db:"conversation_turns"`
	LastCustomer    string         `db:"last_customer_text"`
	FeedbackType    string         `db:"feedback_type"`
	EditDetails     []byte         `db:"edit_details"`
	RoboticPhrases  pq.StringArray `db:"robotic_phrases"`
	HumanLikeness   float64        `db:"human_likeness"`
	NaturalLanguage float64        `db:"natural_language"`
	Engagement      string         `db:"engagement"`
	EngagementScore float64        `db:"engagement_score"`
	Consumed        bool           `db:"consumed"`
	BatchID         sql.NullString `db:"batch_id"`
	CreatedAt       sql.NullTime   `db:"created_at"`
}

func (r *feedbackRow) toEntity() *domain.FeedbackSample {
	s := &domain.FeedbackSample{
		ID:               r.ID,
		TenantID:         r.TenantID,
		ModelConfigID:    r.ModelConfigID,
		AgentID:          r.AgentID,
		SuggestionID:     r.SuggestionID,
		SuggestionText:   r.SuggestionText,
		FinalText:        r.FinalText,
		LastCustomerText: r.LastCustomer,
		FeedbackType:     domain.FeedbackType(r.FeedbackType),
		RoboticPhrases:   r.RoboticPhrases,
		HumanLikeness:    r.HumanLikeness,
		NaturalLanguage:  r.NaturalLanguage,
		Engagement:       domain.EngagementOutcome(r.Engagement),
		EngagementScore:  r.EngagementScore,
		Consumed:         r.Consumed,
	}

	if r.BatchID.Valid {
		batchID := r.BatchID.String
		s.BatchID = &batchID
	}
	if r.CreatedAt.Valid {
		s.CreatedAt = r.CreatedAt.Time
	}

	if len(r.Turns) > 0 {
		_ = json.Unmarshal(r.Turns, &s.ConversationTurns)
	}
	if len(r.EditDetails) > 0 {
		_ = json.Unmarshal(r.EditDetails, &s.EditDetails)
	}

	return s
}

// Create creates a new feedback sample.
func (a *FeedbackAdapter) Create(ctx context.Context, s *domain.FeedbackSample) error {
	query := `
		INSERT INTO feedback_samples (
			tenant_id, model_config_id, agent_id,
			suggestion_id, suggestion_text, final_text,
			conversation_turns, last_customer_text,
			feedback_type, edit_details, robotic_phrases,
			human_likeness, natural_language,
			engagement, engagement_score
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, created_at
	`

	return a.db.QueryRowxContext(ctx, query,
		s.TenantID,
		s.ModelConfigID,
		s.AgentID,
		s.SuggestionID,
		s.SuggestionText,
		s.FinalText,
		marshalJSON(s.ConversationTurns),
		s.LastCustomerText,
		s.FeedbackType,
		marshalJSON(s.EditDetails),
		pq.Array(s.RoboticPhrases),
		s.HumanLikeness,
		s.NaturalLanguage,
		s.Engagement,
		s.EngagementScore,
	).Scan(&s.ID, &s.CreatedAt)
}

// GetByID retrieves a feedback sample.
func (a *FeedbackAdapter) GetByID(ctx context.Context, id int64) (*domain.FeedbackSample, error) {
	query := `SELECT * FROM feedback_samples WHERE id = $1`

	var row feedbackRow
	err := a.db.QueryRowxContext(ctx, query, id).StructScan(&row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return row.toEntity(), nil
}

// ListUnconsumed returns unconsumed samples for the tenant and model
// version created after since, ordered by engagement score descending.
func (a *FeedbackAdapter) ListUnconsumed(ctx context.Context, tenantID uuid.UUID, modelConfigID int64, since time.Time) ([]*domain.FeedbackSample, error) {
	query := `
		SELECT * FROM feedback_samples
		WHERE tenant_id = $1 AND model_config_id = $2 AND consumed = false AND created_at > $3
		ORDER BY engagement_score DESC, id
	`

	rows, err := a.db.QueryxContext(ctx, query, tenantID, modelConfigID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []*domain.FeedbackSample
	for rows.Next() {
		var row feedbackRow
		if err := rows.StructScan(&row); err != nil {
			return nil, err
		}
		samples = append(samples, row.toEntity())
	}

	return samples, rows.Err()
}

// Claim flips consumed false->true and stamps the batch id in one
// compare-and-swap. A sample already consumed by a crashed or concurrent
// run reports false and is skipped by the caller.
func (a *FeedbackAdapter) Claim(ctx context.Context, id int64, batchID string) (bool, error) {
	query := `
		UPDATE feedback_samples
		SET consumed = true, batch_id = $1
		WHERE id = $2 AND consumed = false
	`

	result, err := a.db.ExecContext(ctx, query, batchID, id)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

// UpdateEngagement records the delayed engagement outcome.
func (a *FeedbackAdapter) UpdateEngagement(ctx context.Context, id int64, outcome domain.EngagementOutcome, score float64) error {
	query := `
		UPDATE feedback_samples
		SET engagement = $1, engagement_score = $2
		WHERE id = $3
	`

	result, err := a.db.ExecContext(ctx, query, outcome, score, id)
	if err != nil {
		return err
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Ensure FeedbackAdapter implements out.FeedbackRepository
var _ out.FeedbackRepository = (*FeedbackAdapter)(nil)
