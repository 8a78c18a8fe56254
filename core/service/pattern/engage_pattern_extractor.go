// Package pattern derives reusable playbooks from closed-won
// conversations and feeds them into the knowledge base and the weighted
// generation context.
package pattern

import (
	"context"
	"fmt"
	"strings"
	"time"

	"engage_server/core/domain"
	"engage_server/core/port/out"
	"engage_server/pkg/logger"

	"github.com/google/uuid"
)

// window is the trailing period of completed conversations scanned per
// extraction pass.
const window = 7 * 24 * time.Hour

const maxKeyMessages = 3

var (
	priceKeywords   = []string{"price", "discount"}
	urgencyKeywords = []string{"urgent", "asap"}
	trustKeywords   = []string{"trust", "guarantee"}

	objectionKeywords = []string{"expensive", "too much", "not sure", "worried", "concern", "competitor"}
	closingKeywords   = []string{"deal", "let's do it", "sign me up", "buy now", "invoice", "send the payment"}
)

// Extractor scans successful conversations lacking a pattern.
type Extractor struct {
	conversations out.ConversationRepository
	patterns      out.PatternRepository
	knowledge     out.KnowledgeStore
}

// NewExtractor creates an Extractor.
func NewExtractor(conversations out.ConversationRepository, patterns out.PatternRepository, knowledge out.KnowledgeStore) *Extractor {
	return &Extractor{conversations: conversations, patterns: patterns, knowledge: knowledge}
}

// RunTenant extracts patterns for one tenant's recent closed-won
// conversations. Per-conversation failures are logged and skipped.
func (e *Extractor) RunTenant(ctx context.Context, tenantID uuid.UUID) error {
	since := time.Now().UTC().Add(-window)
	won, err := e.conversations.ListSuccessfulSince(ctx, tenantID, since)
	if err != nil {
		return err
	}

	for _, conv := range won {
		exists, err := e.patterns.ExistsForConversation(ctx, conv.ID)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		if err := e.extractOne(ctx, tenantID, conv); err != nil {
			logger.Warn("pattern extraction failed: conversation=%d err=%v", conv.ID, err)
		}
	}
	return nil
}

func (e *Extractor) extractOne(ctx context.Context, tenantID uuid.UUID, conv *domain.Conversation) error {
	messages, err := e.conversations.RecentMessages(ctx, conv.ID, 200)
	if err != nil {
		return err
	}
	if len(messages) == 0 {
		return nil
	}

	p := Derive(tenantID, conv, messages)
	if err := e.patterns.Create(ctx, p); err != nil {
		return err
	}

	entry := &domain.KnowledgeEntry{
		TenantID:       tenantID,
		Category:       p.Category,
		Title:          fmt.Sprintf("Winning approach: %s", p.Category),
		Content:        p.Summary,
		RelevanceScore: p.EffectivenessScore,
		SourcePattern:  p.ID,
		UpdatedAt:      time.Now().UTC(),
	}
	return e.knowledge.Upsert(ctx, entry)
}

// Derive builds the pattern from a closed-won conversation's messages.
// Pure function over the ordered message list.
func Derive(tenantID uuid.UUID, conv *domain.Conversation, messages []*domain.Message) *domain.Pattern {
	joined := strings.ToLower(joinContents(messages))

	category := classify(joined)
	timeToClose := int(messages[len(messages)-1].CreatedAt.Sub(messages[0].CreatedAt).Minutes())

	outcome := domain.PatternOutcome{
		ProductsSold:   conv.ProductsSold,
		TimeToCloseMin: timeToClose,
		MessageCount:   len(messages),
	}
	if conv.SaleAmount != nil {
		outcome.SaleAmount = *conv.SaleAmount
	}

	p := &domain.Pattern{
		TenantID:           tenantID,
		ConversationID:     conv.ID,
		Category:           category,
		KeyMessages:        keyAgentMessages(messages),
		HandledObjections:  containsAny(joined, objectionKeywords),
		UsedClosing:        containsAny(joined, closingKeywords),
		Outcome:            outcome,
		EffectivenessScore: EffectivenessScore(outcome),
	}
	p.TrainingUsable = p.EffectivenessScore >= 0.5
	p.Summary = summarize(p)
	return p
}

func classify(joined string) domain.PatternCategory {
	switch {
	case containsAny(joined, priceKeywords):
		return domain.PatternPriceNegotiation
	case containsAny(joined, urgencyKeywords):
		return domain.PatternUrgencyCreation
	case containsAny(joined, trustKeywords):
		return domain.PatternTrustBuilding
	default:
		return domain.PatternGeneral
	}
}

// EffectivenessScore rates a closed-won outcome in [0,1]: base 0.5,
// rewarded for revenue, a fast close and an efficient message count.
func EffectivenessScore(o domain.PatternOutcome) float64 {
	score := 0.5
	if o.SaleAmount > 0 {
		score += 0.2
	}
	switch {
	case o.TimeToCloseMin > 0 && o.TimeToCloseMin <= 60:
		score += 0.2
	case o.TimeToCloseMin > 0 && o.TimeToCloseMin <= 24*60:
		score += 0.1
	}
	if o.MessageCount > 0 && o.MessageCount <= 10 {
		score += 0.1
	}
	if score > 1 {
		score = 1
	}
	return score
}

// keyAgentMessages picks the agent turns that immediately answered a
// customer objection, falling back to the first agent turns.
func keyAgentMessages(messages []*domain.Message) []string {
	var key []string
	objectionSeen := false
	for _, m := range messages {
		if m.Sender == domain.SenderContact {
			objectionSeen = containsAny(strings.ToLower(m.Content), objectionKeywords)
			continue
		}
		if objectionSeen && len(key) < maxKeyMessages {
			key = append(key, m.Content)
			objectionSeen = false
		}
	}
	if len(key) > 0 {
		return key
	}
	for _, m := range messages {
		if m.Sender == domain.SenderAgent {
			key = append(key, m.Content)
			if len(key) == maxKeyMessages {
				break
			}
		}
	}
	return key
}

func summarize(p *domain.Pattern) string {
	var parts []string
	parts = append(parts, fmt.Sprintf("Closed in %d min over %d messages using a %s approach", p.Outcome.TimeToCloseMin, p.Outcome.MessageCount, p.Category))
	if p.HandledObjections {
		parts = append(parts, "handled customer objections")
	}
	if p.UsedClosing {
		parts = append(parts, "used an explicit closing move")
	}
	if p.Outcome.SaleAmount > 0 {
		parts = append(parts, fmt.Sprintf("sale amount %.2f", p.Outcome.SaleAmount))
	}
	return strings.Join(parts, "; ") + "."
}

func joinContents(messages []*domain.Message) string {
	var sb strings.Builder
	for _, m := range messages {
		sb.WriteString(m.Content)
		sb.WriteString(" ")
	}
	return sb.String()
}

func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}
