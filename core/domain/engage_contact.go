package domain

import (
	"time"

	"github.com/google/uuid"
)

// EngagementTier is the coarse three-tier classification of a contact's
// behavior score.
type EngagementTier string

const (
	TierHot  EngagementTier = "hot"  // green, score >= 80
	TierWarm EngagementTier = "warm" // yellow, score >= 50
	TierCold EngagementTier = "cold" // red
)

// TierColor returns the traffic-light color for a tier.
func (t EngagementTier) Color() string {
	switch t {
	case TierHot:
		return "green"
	case TierWarm:
		return "yellow"
	default:
		return "red"
	}
}

// TierForScore maps a 0-100 behavior score to its tier.
func TierForScore(score int) EngagementTier {
	switch {
	case score >= 80:
		return TierHot
	case score >= 50:
		return TierWarm
	default:
		return TierCold
	}
}

// Contact is a customer the tenant talks to. The engagement fields are
// recomputed every third contact-authored message.
type Contact struct {
	ID       int64     `json:"id"`
	TenantID uuid.UUID `json:"tenant_id"`

	Name     string `json:"name"`
	Phone    string `json:"phone,omitempty"`
	Email    string `json:"email,omitempty"`
	Language string `json:"language,omitempty"`

	BehaviorScore     int            `json:"behavior_score"`
	Tier              EngagementTier `json:"tier"`
	MessageCount      int            `json:"message_count"`
	LastInteractionAt *time.Time     `json:"last_interaction_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
