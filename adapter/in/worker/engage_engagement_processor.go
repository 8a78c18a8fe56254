package worker

import (
	"context"
	"fmt"

	"engage_server/core/port/out"
	"engage_server/core/service/feedback"
	"engage_server/pkg/logger"
)

// EngagementProcessor resolves deferred engagement checks: once the
// post-send window has passed, it looks at what the customer did and
// writes the outcome back onto the feedback sample.
type EngagementProcessor struct {
	conversations out.ConversationRepository
	feedback      out.FeedbackRepository
}

// NewEngagementProcessor creates an EngagementProcessor.
func NewEngagementProcessor(conversations out.ConversationRepository, fb out.FeedbackRepository) *EngagementProcessor {
	return &EngagementProcessor{conversations: conversations, feedback: fb}
}

// ProcessCheck handles one due engagement check.
func (p *EngagementProcessor) ProcessCheck(ctx context.Context, msg *Message) error {
	payload, err := ParsePayload[EngagementCheckPayload](msg)
	if err != nil {
		return fmt.Errorf("invalid engagement check payload: %w", err)
	}

	messages, err := p.conversations.ContactMessagesSince(ctx, payload.ConversationID, payload.SentAt)
	if err != nil {
		return err
	}

	replies := make([]string, 0, len(messages))
	for _, m := range messages {
		replies = append(replies, m.Content)
	}

	outcome, score := feedback.EngagementFor(replies)
	if err := p.feedback.UpdateEngagement(ctx, payload.SampleID, outcome, score); err != nil {
		return err
	}

	logger.Debug("engagement check resolved: sample=%d outcome=%s score=%.1f replies=%d",
		payload.SampleID, outcome, score, len(replies))
	return nil
}
