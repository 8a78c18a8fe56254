package persistence

import (
	"context"
	"database/sql"
	"time"

	"engage_server/core/domain"
	"engage_server/core/port/out"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// ConversationAdapter implements out.ConversationRepository using
// PostgreSQL.
type ConversationAdapter struct {
	db *sqlx.DB
}

// NewConversationAdapter creates a new ConversationAdapter.
func NewConversationAdapter(db *sqlx.DB) *ConversationAdapter {
	return &ConversationAdapter{db: db}
}

// conversationRow represents the database row for conversations.
type conversationRow struct {
	ID           int64           `db:"id"`
	TenantID     uuid.UUID       `db:"tenant_id"`
	ContactID    int64           `db:"contact_id"`
	AgentID      uuid.NullUUID   `db:"agent_id"`
	Status       string          `db:"status"`
	IsSuccessful bool            `db:"is_successful"`
	SaleAmount   sql.NullFloat64 `db:"sale_amount"`
	ProductsSold pq.StringArray  `db:"products_sold"`
	Notes        string          `db:"notes"`
	MessageCount int             `db:"message_count"`
	LastMessage  sql.NullTime    `db:"last_message_at"`
	CreatedAt    sql.NullTime    `db:"created_at"`
	UpdatedAt    sql.NullTime    `db:"updated_at"`
}

func (r *conversationRow) toEntity() *domain.Conversation {
	c := &domain.Conversation{
		ID:           r.ID,
		TenantID:     r.TenantID,
		ContactID:    r.ContactID,
		Status:       domain.ConversationStatus(r.Status),
		IsSuccessful: r.IsSuccessful,
		ProductsSold: r.ProductsSold,
		Notes:        r.Notes,
		MessageCount: r.MessageCount,
	}

	if r.AgentID.Valid {
		agentID := r.AgentID.UUID
		c.AgentID = &agentID
	}
	if r.SaleAmount.Valid {
		amount := r.SaleAmount.Float64
		c.SaleAmount = &amount
	}
	if r.LastMessage.Valid {
		c.LastMessageAt = &r.LastMessage.Time
	}
	if r.CreatedAt.Valid {
		c.CreatedAt = r.CreatedAt.Time
	}
	if r.UpdatedAt.Valid {
		c.UpdatedAt = r.UpdatedAt.Time
	}

	return c
}

// messageRow represents the database row for messages.
type messageRow struct {
	ID             int64        `db:"id"`
	ConversationID int64        `db:"conversation_id"`
	Sender         string       `db:"sender"`
	Content        string       `db:"content"`
	FromSuggestion bool         `db:"from_suggestion"`
	UsedVerbatim   bool         `db:"used_verbatim"`
	CreatedAt      sql.NullTime `db:"created_at"`
}

func (r *messageRow) toEntity() *domain.Message {
	m := &domain.Message{
		ID:             r.ID,
		ConversationID: r.ConversationID,
		Sender:         domain.SenderType(r.Sender),
		Content:        r.Content,
		FromSuggestion: r.FromSuggestion,
		UsedVerbatim:   r.UsedVerbatim,
	}
	if r.CreatedAt.Valid {
		m.CreatedAt = r.CreatedAt.Time
	}
	return m
}

// Create creates a new conversation.
func (a *ConversationAdapter) Create(ctx context.Context, c *domain.Conversation) error {
	query := `
		INSERT INTO conversations (tenant_id, contact_id, agent_id, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	return a.db.QueryRowxContext(ctx, query,
		c.TenantID,
		c.ContactID,
		c.AgentID,
		c.Status,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

// GetByID retrieves a conversation within the tenant.
func (a *ConversationAdapter) GetByID(ctx context.Context, tenantID uuid.UUID, id int64) (*domain.Conversation, error) {
	query := `SELECT * FROM conversations WHERE id = $1 AND tenant_id = $2`

	var row conversationRow
	err := a.db.QueryRowxContext(ctx, query, id, tenantID).StructScan(&row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return row.toEntity(), nil
}

// Update updates conversation state and outcome fields.
func (a *ConversationAdapter) Update(ctx context.Context, c *domain.Conversation) error {
	query := `
		UPDATE conversations SET
			agent_id = $1,
			status = $2,
			is_successful = $3,
			sale_amount = $4,
			products_sold = $5,
			notes = $6,
			message_count = $7,
			last_message_at = $8,
			updated_at = NOW()
		WHERE id = $9 AND tenant_id = $10
	`

	result, err := a.db.ExecContext(ctx, query,
		c.AgentID,
		c.Status,
		c.IsSuccessful,
		c.SaleAmount,
		pq.Array(c.ProductsSold),
		c.Notes,
		c.MessageCount,
		c.LastMessageAt,
		c.ID,
		c.TenantID,
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

// ListByContact lists the contact's conversations, newest first.
func (a *ConversationAdapter) ListByContact(ctx context.Context, tenantID uuid.UUID, contactID int64) ([]*domain.Conversation, error) {
	query := `
		SELECT * FROM conversations
		WHERE tenant_id = $1 AND contact_id = $2
		ORDER BY created_at DESC
	`
	return a.scanConversations(ctx, query, tenantID, contactID)
}

// AddMessage appends one message to a conversation.
func (a *ConversationAdapter) AddMessage(ctx context.Context, m *domain.Message) error {
	query := `
		INSERT INTO messages (conversation_id, sender, content, from_suggestion, used_verbatim)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	return a.db.QueryRowxContext(ctx, query,
		m.ConversationID,
		m.Sender,
		m.Content,
		m.FromSuggestion,
		m.UsedVerbatim,
	).Scan(&m.ID, &m.CreatedAt)
}

// RecentMessages returns the newest limit messages oldest-first.
func (a *ConversationAdapter) RecentMessages(ctx context.Context, conversationID int64, limit int) ([]*domain.Message, error) {
	query := `
		SELECT * FROM (
			SELECT * FROM messages
			WHERE conversation_id = $1
			ORDER BY created_at DESC, id DESC
			LIMIT $2
		) recent
		ORDER BY created_at ASC, id ASC
	`

	rows, err := a.db.QueryxContext(ctx, query, conversationID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*domain.Message
	for rows.Next() {
		var row messageRow
		if err := rows.StructScan(&row); err != nil {
			return nil, err
		}
		messages = append(messages, row.toEntity())
	}

	return messages, rows.Err()
}

// ContactMessagesSince returns contact messages created after ts, for the
// deferred engagement check.
func (a *ConversationAdapter) ContactMessagesSince(ctx context.Context, conversationID int64, ts time.Time) ([]*domain.Message, error) {
	query := `
		SELECT * FROM messages
		WHERE conversation_id = $1 AND sender = 'contact' AND created_at > $2
		ORDER BY created_at ASC
	`

	rows, err := a.db.QueryxContext(ctx, query, conversationID, ts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*domain.Message
	for rows.Next() {
		var row messageRow
		if err := rows.StructScan(&row); err != nil {
			return nil, err
		}
		messages = append(messages, row.toEntity())
	}

	return messages, rows.Err()
}

// ListSuccessfulSince returns closed-won conversations completed after ts.
func (a *ConversationAdapter) ListSuccessfulSince(ctx context.Context, tenantID uuid.UUID, ts time.Time) ([]*domain.Conversation, error) {
	query := `
		SELECT * FROM conversations
		WHERE tenant_id = $1 AND status = 'completed' AND is_successful = true AND updated_at > $2
		ORDER BY updated_at ASC
	`
	return a.scanConversations(ctx, query, tenantID, ts)
}

// AgentSuccessCounts aggregates closed-won conversations per agent.
func (a *ConversationAdapter) AgentSuccessCounts(ctx context.Context, tenantID uuid.UUID) ([]out.AgentSuccessCount, error) {
	query := `
		SELECT agent_id, COUNT(*) AS success_count
		FROM conversations
		WHERE tenant_id = $1 AND is_successful = true AND agent_id IS NOT NULL
		GROUP BY agent_id
		ORDER BY success_count DESC
	`

	rows, err := a.db.QueryxContext(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []out.AgentSuccessCount
	for rows.Next() {
		var c out.AgentSuccessCount
		if err := rows.Scan(&c.AgentID, &c.SuccessCount); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}

	return counts, rows.Err()
}

// ListTenants returns every tenant owning at least one conversation.
func (a *ConversationAdapter) ListTenants(ctx context.Context) ([]uuid.UUID, error) {
	query := `SELECT DISTINCT tenant_id FROM conversations`

	var tenants []uuid.UUID
	if err := a.db.SelectContext(ctx, &tenants, query); err != nil {
		return nil, err
	}
	return tenants, nil
}

func (a *ConversationAdapter) scanConversations(ctx context.Context, query string, args ...any) ([]*domain.Conversation, error) {
	rows, err := a.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var conversations []*domain.Conversation
	for rows.Next() {
		var row conversationRow
		if err := rows.StructScan(&row); err != nil {
			return nil, err
		}
		conversations = append(conversations, row.toEntity())
	}

	return conversations, rows.Err()
}

// Ensure ConversationAdapter implements out.ConversationRepository
var _ out.ConversationRepository = (*ConversationAdapter)(nil)
