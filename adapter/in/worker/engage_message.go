package worker

import (
	"time"

	"github.com/google/uuid"
)

// JobType represents the type of a job.
type JobType = string

// Job types
const (
	JobEngagementCheck JobType = "engagement.check"
	JobLearningCycle   JobType = "learning.cycle"
	JobPatternExtract  JobType = "pattern.extract"
)

// Message is one unit of work pulled off a stream.
type Message struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Payload   map[string]any `json:"payload"`
	CreatedAt time.Time      `json:"created_at"`
	Retries   int            `json:"retries"`
}

// NewMessage creates a message with a fresh id.
func NewMessage(jobType string, payload map[string]any) *Message {
	return &Message{
		ID:        uuid.New().String(),
		Type:      jobType,
		Payload:   payload,
		CreatedAt: time.Now(),
	}
}

// EngagementCheckPayload mirrors out.EngagementCheckJob on the wire.
type EngagementCheckPayload struct {
	TenantID       string    `json:"tenant_id"`
	SampleID       int64     `json:"sample_id"`
	ConversationID int64     `json:"conversation_id"`
	SentAt         time.Time `json:"sent_at"`
}

// LearningCyclePayload mirrors out.LearningCycleJob on the wire.
type LearningCyclePayload struct {
	TenantID string `json:"tenant_id"`
	BatchID  string `json:"batch_id"`
}

// PatternExtractPayload mirrors out.PatternExtractJob on the wire.
type PatternExtractPayload struct {
	TenantID string `json:"tenant_id"`
}
