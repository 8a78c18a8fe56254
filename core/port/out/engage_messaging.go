package out

import (
	"context"
	"time"
)

// EngagementCheckJob schedules the deferred post-send engagement check for
// one feedback sample. SentAt anchors the "any customer message since"
// window.
type EngagementCheckJob struct {
	TenantID       string    `json:"tenant_id"`
	SampleID       int64     `json:"sample_id"`
	ConversationID int64     `json:"conversation_id"`
	SentAt         time.Time `json:"sent_at"`
}

// LearningCycleJob triggers one tenant's batch learning cycle.
type LearningCycleJob struct {
	TenantID string `json:"tenant_id"`
	BatchID  string `json:"batch_id"`
}

// PatternExtractJob triggers one tenant's pattern extraction pass.
type PatternExtractJob struct {
	TenantID string `json:"tenant_id"`
}

// DeliveryJob carries one outbound message to the channel gateway.
type DeliveryJob struct {
	TenantID       string `json:"tenant_id"`
	ConversationID int64  `json:"conversation_id"`
	Text           string `json:"text"`
}

// MessageProducer is the outbound port onto the job queue.
type MessageProducer interface {
	// PublishEngagementCheck enqueues the job to become due after delay.
	// Fire-and-forget: the caller never waits on the check's result.
	PublishEngagementCheck(ctx context.Context, job *EngagementCheckJob, delay time.Duration) error

	PublishLearningCycle(ctx context.Context, job *LearningCycleJob) error
	PublishPatternExtract(ctx context.Context, job *PatternExtractJob) error
}

// Delivery hands a message to the customer's messaging channel. Failures
// surface as a generic delivery error.
type Delivery interface {
	Deliver(ctx context.Context, job *DeliveryJob) error
}
