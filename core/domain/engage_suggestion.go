package domain

import (
	"time"

	"github.com/google/uuid"
)

// SuggestionSource marks how a suggestion was produced.
type SuggestionSource string

const (
	SourceTemplate  SuggestionSource = "template"
	SourceGenerated SuggestionSource = "generated-model"
)

// Suggestion is a system-proposed reply shown to an agent, either rendered
// from a matched template or produced by the generation model.
type Suggestion struct {
	ID             int64            `json:"id"`
	TenantID       uuid.UUID        `json:"tenant_id"`
	ConversationID int64            `json:"conversation_id"`
	Source         SuggestionSource `json:"source"`
	Text           string           `json:"text"`

	Used        bool    `json:"used"`
	AgentRating *int    `json:"agent_rating,omitempty"`
	FinalText   *string `json:"final_text,omitempty"` // what the agent actually sent

	// Feedback fields, computed when the agent sends.
	EditDistance    *int     `json:"edit_distance,omitempty"`
	ManualOverride  bool     `json:"manual_override"`
	RoboticPhrases  []string `json:"robotic_phrases,omitempty"`
	HumanLikeness   *float64 `json:"human_likeness,omitempty"`
	NaturalLanguage *float64 `json:"natural_language,omitempty"`

	// Provenance: template id for template suggestions, model config id
	// and version for generated ones.
	Provenance map[string]any `json:"provenance,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// FeedbackType classifies how the agent treated a suggestion.
type FeedbackType string

const (
	FeedbackUsedAsIs       FeedbackType = "used_as_is"
	FeedbackModified       FeedbackType = "modified"
	FeedbackManualOverride FeedbackType = "manual_override"
	FeedbackRejected       FeedbackType = "rejected"
)

// EngagementOutcome is the delayed customer-reaction signal attached to a
// feedback sample after the post-send wait window.
type EngagementOutcome string

const (
	EngagementUnknown  EngagementOutcome = "unknown"
	EngagementNeutral  EngagementOutcome = "neutral"
	EngagementPositive EngagementOutcome = "positive"
	EngagementNegative EngagementOutcome = "negative"
)

// EditDetails captures the structured comparison between a suggestion and
// the text the agent actually sent.
type EditDetails struct {
	EditDistance   int     `json:"edit_distance"`
	OriginalLength int     `json:"original_length"`
	FinalLength    int     `json:"final_length"`
	ManualOverride bool    `json:"manual_override"`
	EditRatio      float64 `json:"edit_ratio"`
}

// FeedbackSample is one RLHF training unit persisted per agent send that
// was based on a suggestion. Consumed exactly once by the batch learning
// job, which stamps BatchID in the same transition.
type FeedbackSample struct {
	ID            int64     `json:"id"`
	TenantID      uuid.UUID `json:"tenant_id"`
	ModelConfigID int64     `json:"model_config_id"`
	AgentID       uuid.UUID `json:"agent_id"`

	SuggestionID   int64  `json:"suggestion_id"`
	SuggestionText string `json:"suggestion_text"`
	FinalText      string `json:"final_text"`

	ConversationTurns []Turn `json:"conversation_turns"` // last 10 turns
	LastCustomerText  string `json:"last_customer_text"`

	FeedbackType    FeedbackType `json:"feedback_type"`
	EditDetails     EditDetails  `json:"edit_details"`
	RoboticPhrases  []string     `json:"robotic_phrases,omitempty"`
	HumanLikeness   float64      `json:"human_likeness"`
	NaturalLanguage float64      `json:"natural_language"`

	Engagement      EngagementOutcome `json:"engagement"`
	EngagementScore float64           `json:"engagement_score"`

	Consumed bool    `json:"consumed"`
	BatchID  *string `json:"batch_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
