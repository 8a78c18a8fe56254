package persistence

import (
	"context"
	"database/sql"
	"time"

	"engage_server/core/domain"
	"engage_server/core/port/out"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ContactAdapter implements out.ContactRepository using PostgreSQL.
type ContactAdapter struct {
	db *sqlx.DB
}

// NewContactAdapter creates a new ContactAdapter.
func NewContactAdapter(db *sqlx.DB) *ContactAdapter {
	return &ContactAdapter{db: db}
}

// contactRow represents the database row for contacts.
type contactRow struct {
	ID                int64        `db:"id"`
	TenantID          uuid.UUID    `db:"tenant_id"`
	Name              string       `db:"name"`
	Phone             string       `db:"phone"`
	Email             string       `db:"email"`
	Language          string       `db:"language"`
	BehaviorScore     int          `db:"behavior_score"`
	Tier              string       `db:"tier"`
	MessageCount      int          `db:"message_count"`
	LastInteractionAt sql.NullTime `db:"last_interaction_at"`
	CreatedAt         sql.NullTime `db:"created_at"`
	UpdatedAt         sql.NullTime `db:"updated_at"`
}

func (r *contactRow) toEntity() *domain.Contact {
	c := &domain.Contact{
		ID:            r.ID,
		TenantID:      r.TenantID,
		Name:          r.Name,
		Phone:         r.Phone,
		Email:         r.Email,
		Language:      r.Language,
		BehaviorScore: r.BehaviorScore,
		Tier:          domain.EngagementTier(r.Tier),
		MessageCount:  r.MessageCount,
	}

	if r.LastInteractionAt.Valid {
		c.LastInteractionAt = &r.LastInteractionAt.Time
	}
	if r.CreatedAt.Valid {
		c.CreatedAt = r.CreatedAt.Time
	}
	if r.UpdatedAt.Valid {
		c.UpdatedAt = r.UpdatedAt.Time
	}

	return c
}

// Create creates a new contact. New contacts start cold with the neutral
// base score.
func (a *ContactAdapter) Create(ctx context.Context, c *domain.Contact) error {
	if c.Tier == "" {
		c.BehaviorScore = 50
		c.Tier = domain.TierForScore(c.BehaviorScore)
	}

	query := `
		INSERT INTO contacts (tenant_id, name, phone, email, language, behavior_score, tier)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	return a.db.QueryRowxContext(ctx, query,
		c.TenantID,
		c.Name,
		c.Phone,
		c.Email,
		c.Language,
		c.BehaviorScore,
		c.Tier,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

// GetByID retrieves a contact within the tenant.
func (a *ContactAdapter) GetByID(ctx context.Context, tenantID uuid.UUID, id int64) (*domain.Contact, error) {
	query := `SELECT * FROM contacts WHERE id = $1 AND tenant_id = $2`

	var row contactRow
	err := a.db.QueryRowxContext(ctx, query, id, tenantID).StructScan(&row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return row.toEntity(), nil
}

// List lists the tenant's contacts, most recently active first.
func (a *ContactAdapter) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*domain.Contact, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	query := `
		SELECT * FROM contacts
		WHERE tenant_id = $1
		ORDER BY last_interaction_at DESC NULLS LAST, id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := a.db.QueryxContext(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contacts []*domain.Contact
	for rows.Next() {
		var row contactRow
		if err := rows.StructScan(&row); err != nil {
			return nil, err
		}
		contacts = append(contacts, row.toEntity())
	}

	return contacts, rows.Err()
}

// UpdateEngagement writes the recomputed behavior score, tier, message
// count and last-interaction timestamp.
func (a *ContactAdapter) UpdateEngagement(ctx context.Context, tenantID uuid.UUID, id int64, score int, tier domain.EngagementTier, messageCount int, at time.Time) error {
	query := `
		UPDATE contacts SET
			behavior_score = $1,
			tier = $2,
			message_count = $3,
			last_interaction_at = $4,
			updated_at = NOW()
		WHERE id = $5 AND tenant_id = $6
	`

	result, err := a.db.ExecContext(ctx, query, score, tier, messageCount, at, id, tenantID)
	if err != nil {
		return err
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Ensure ContactAdapter implements out.ContactRepository
var _ out.ContactRepository = (*ContactAdapter)(nil)
