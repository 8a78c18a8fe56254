package domain

import (
	"time"

	"github.com/google/uuid"
)

// PatternCategory is the coarse classification of an extracted pattern.
type PatternCategory string

const (
	PatternPriceNegotiation PatternCategory = "price_negotiation"
	PatternUrgencyCreation  PatternCategory = "urgency_creation"
	PatternTrustBuilding    PatternCategory = "trust_building"
	PatternGeneral          PatternCategory = "general"
)

// PatternOutcome snapshots the conversation outcome the pattern came from.
type PatternOutcome struct {
	SaleAmount     float64  `json:"sale_amount"`
	ProductsSold   []string `json:"products_sold,omitempty"`
	TimeToCloseMin int      `json:"time_to_close_min"`
	MessageCount   int      `json:"message_count"`
}

// Pattern is a reusable playbook derived from one closed-won conversation.
// Training-usable patterns feed the weighted generation context.
type Pattern struct {
	ID             int64           `json:"id"`
	TenantID       uuid.UUID       `json:"tenant_id"`
	ConversationID int64           `json:"conversation_id"`
	Category       PatternCategory `json:"category"`

	Summary     string   `json:"summary"`
	KeyMessages []string `json:"key_messages,omitempty"`

	HandledObjections bool `json:"handled_objections"`
	UsedClosing       bool `json:"used_closing"`

	Outcome            PatternOutcome `json:"outcome"`
	EffectivenessScore float64        `json:"effectiveness_score"`
	TrainingUsable     bool           `json:"training_usable"`

	CreatedAt time.Time `json:"created_at"`
}

// KnowledgeEntry is the per-tenant, per-category knowledge-base record kept
// in sync with the best extracted pattern of that category.
type KnowledgeEntry struct {
	TenantID       uuid.UUID       `json:"tenant_id"`
	Category       PatternCategory `json:"category"`
	Title          string          `json:"title"`
	Content        string          `json:"content"`
	RelevanceScore float64         `json:"relevance_score"`
	SourcePattern  int64           `json:"source_pattern"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
