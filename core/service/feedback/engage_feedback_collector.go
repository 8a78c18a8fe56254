// Package feedback captures how agents treat suggestions: edit distance,
// override detection, style scores, classification and the deferred
// customer-engagement check.
package feedback

import (
	"context"
	"time"

	"engage_server/core/domain"
	"engage_server/core/port/out"
	"engage_server/core/service/textscore"
	"engage_server/pkg/logger"
)

const (
	// EngagementDelay is the fixed wait before checking whether the
	// customer reacted to the sent message.
	EngagementDelay = 5 * time.Minute

	// overrideRatio: edits beyond this fraction of the original length
	// count as a manual override.
	overrideRatio = 0.7

	// modifiedThreshold is the absolute edit-distance bound between
	// "modified" and "rejected". Deliberately not normalized by length;
	// the override ratio above takes precedence. Both bounds are product
	// policy and move together or not at all.
	modifiedThreshold = 50

	snapshotTurns = 10
)

// Classify buckets the agent's final text against the suggestion.
func Classify(original, final string) (domain.FeedbackType, domain.EditDetails) {
	dist := textscore.Levenshtein(original, final)

	details := domain.EditDetails{
		EditDistance:   dist,
		OriginalLength: len(original),
		FinalLength:    len(final),
	}
	if details.OriginalLength > 0 {
		details.EditRatio = float64(dist) / float64(details.OriginalLength)
	}
	details.ManualOverride = float64(dist) > overrideRatio*float64(details.OriginalLength)

	switch {
	case details.ManualOverride:
		return domain.FeedbackManualOverride, details
	case dist == 0:
		return domain.FeedbackUsedAsIs, details
	case dist < modifiedThreshold:
		return domain.FeedbackModified, details
	default:
		return domain.FeedbackRejected, details
	}
}

// EngagementFor derives the coarse engagement signal from customer
// messages observed inside the post-send window.
func EngagementFor(replies []string) (domain.EngagementOutcome, float64) {
	if len(replies) == 0 {
		return domain.EngagementNegative, 0
	}
	score := 0.4
	for _, r := range replies {
		if len(r) > 10 {
			score = 0.7
			break
		}
	}
	if score >= 0.6 {
		return domain.EngagementPositive, score
	}
	return domain.EngagementNeutral, score
}

// Collector persists feedback samples and schedules engagement checks.
type Collector struct {
	suggestions   out.SuggestionRepository
	feedback      out.FeedbackRepository
	conversations out.ConversationRepository
	configs       out.ModelConfigRepository
	producer      out.MessageProducer
}

// NewCollector creates a Collector.
func NewCollector(
	suggestions out.SuggestionRepository,
	feedback out.FeedbackRepository,
	conversations out.ConversationRepository,
	configs out.ModelConfigRepository,
	producer out.MessageProducer,
) *Collector {
	return &Collector{
		suggestions:   suggestions,
		feedback:      feedback,
		conversations: conversations,
		configs:       configs,
		producer:      producer,
	}
}

// Collect runs the full capture flow for one agent send that was based on
// a suggestion. Returns the persisted sample. The deferred engagement
// check is fire-and-forget: scheduling failures are logged, never
// propagated.
func (c *Collector) Collect(ctx context.Context, user domain.AuthUser, sugg *domain.Suggestion, finalText string, rating *int) (*domain.FeedbackSample, error) {
	feedbackType, details := Classify(sugg.Text, finalText)
	robotic := textscore.DetectRoboticPhrases(sugg.Text)
	human := textscore.HumanLikeness(finalText)
	natural := textscore.NaturalLanguage(finalText)

	// Snapshot the recent turns and last customer message.
	messages, err := c.conversations.RecentMessages(ctx, sugg.ConversationID, snapshotTurns)
	if err != nil {
		return nil, err
	}
	turns := make([]domain.Turn, 0, len(messages))
	lastCustomerText := ""
	for _, m := range messages {
		turns = append(turns, domain.TurnOf(m))
		if m.Sender == domain.SenderContact {
			lastCustomerText = m.Content
		}
	}

	cfg, err := c.configs.GetActive(ctx, user.TenantID)
	if err != nil {
		return nil, err
	}
	modelConfigID := int64(0)
	if cfg != nil {
		modelConfigID = cfg.ID
	}

	sample := &domain.FeedbackSample{
		TenantID:          user.TenantID,
		ModelConfigID:     modelConfigID,
		AgentID:           user.ID,
		SuggestionID:      sugg.ID,
		SuggestionText:    sugg.Text,
		FinalText:         finalText,
		ConversationTurns: turns,
		LastCustomerText:  lastCustomerText,
		FeedbackType:      feedbackType,
		EditDetails:       details,
		RoboticPhrases:    robotic,
		HumanLikeness:     human,
		NaturalLanguage:   natural,
		Engagement:        domain.EngagementUnknown,
	}
	if err := c.feedback.Create(ctx, sample); err != nil {
		return nil, err
	}

	// Mirror the computed fields onto the suggestion row.
	sugg.Used = true
	sugg.FinalText = &finalText
	sugg.AgentRating = rating
	sugg.EditDistance = &details.EditDistance
	sugg.ManualOverride = details.ManualOverride
	sugg.RoboticPhrases = robotic
	sugg.HumanLikeness = &human
	sugg.NaturalLanguage = &natural
	if err := c.suggestions.MarkUsed(ctx, sugg); err != nil {
		logger.Warn("suggestion feedback update failed: suggestion=%d err=%v", sugg.ID, err)
	}

	job := &out.EngagementCheckJob{
		TenantID:       user.TenantID.String(),
		SampleID:       sample.ID,
		ConversationID: sugg.ConversationID,
		SentAt:         time.Now().UTC(),
	}
	if c.producer == nil {
		logger.Warn("engagement check skipped, no producer configured: sample=%d", sample.ID)
	} else if err := c.producer.PublishEngagementCheck(ctx, job, EngagementDelay); err != nil {
		logger.Warn("engagement check scheduling failed: sample=%d err=%v", sample.ID, err)
	}

	return sample, nil
}
