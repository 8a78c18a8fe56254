package domain

import (
	"time"

	"github.com/google/uuid"
)

// ContextWeights control how much of each knowledge source is included in
// an assembled generation context. Each weight is in [0,1] and is applied
// as floor(maxItems * weight).
type ContextWeights struct {
	ProductCatalog    float64 `json:"product_catalog"`
	FAQ               float64 `json:"faq"`
	TrainingMaterials float64 `json:"training_materials"`
	SuccessPatterns   float64 `json:"success_patterns"`
}

// LanguageConfig holds the tenant's language setup for generation.
type LanguageConfig struct {
	Primary       string `json:"primary"`
	Secondary     string `json:"secondary,omitempty"`
	CulturalNotes string `json:"cultural_notes,omitempty"`
}

// ModelMetrics is the aggregate metrics blob maintained by the batch
// learning job. Read-only projection everywhere else.
type ModelMetrics struct {
	SampleCount         int       `json:"sample_count"`
	AvgHumanLikeness    float64   `json:"avg_human_likeness"`
	AvgNaturalLanguage  float64   `json:"avg_natural_language"`
	UsedAsIsRate        float64   `json:"used_as_is_rate"`
	AvgResponseLength   int       `json:"avg_response_length"`
	LastBatchID         string    `json:"last_batch_id,omitempty"`
	LastBatchAt         time.Time `json:"last_batch_at,omitempty"`
	PreferredPhrases    []string  `json:"preferred_phrases,omitempty"`
	DiscouragedPhrases  []string  `json:"discouraged_phrases,omitempty"`
	TopAgentPhrases     []string  `json:"top_agent_phrases,omitempty"`
	EngagementPositives int       `json:"engagement_positives"`
}

// ModelConfig is one version of a tenant's generation configuration.
// Exactly one version is active per tenant at any time; activating a
// version deactivates the prior one in the same transaction.
type ModelConfig struct {
	ID       int64     `json:"id"`
	TenantID uuid.UUID `json:"tenant_id"`
	Version  int       `json:"version"`
	IsActive bool      `json:"is_active"`

	SystemInstructions string  `json:"system_instructions"`
	ResponseStyle      string  `json:"response_style"`
	Temperature        float64 `json:"temperature"`
	MaxLength          int     `json:"max_length"`

	Language LanguageConfig `json:"language"`
	Weights  ContextWeights `json:"weights"`

	FeedbackEnabled     bool    `json:"feedback_enabled"`
	FeedbackTargetScore float64 `json:"feedback_target_score"`
	LearningRate        float64 `json:"learning_rate"`

	Metrics ModelMetrics `json:"metrics"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultContextWeights spread the context budget evenly across sources.
func DefaultContextWeights() ContextWeights {
	return ContextWeights{
		ProductCatalog:    0.25,
		FAQ:               0.25,
		TrainingMaterials: 0.25,
		SuccessPatterns:   0.25,
	}
}
