// Package behavior converts a contact's recent message history into a
// 0-100 engagement score and a hot/warm/cold tier.
package behavior

import (
	"strings"
	"time"

	"engage_server/core/domain"
)

const (
	baseScore = 50

	// Default average response time when fewer than two consecutive
	// customer messages exist in the window.
	defaultResponseSeconds = 600

	fastResponseSeconds = 300
	slowResponseSeconds = 3600

	intentCap = 40
)

var highIntentKeywords = []string{"buy", "purchase", "order", "payment", "checkout"}

var priceInquiries = []string{"how much", "price", "cost", "pricing", "cuánto", "precio", "quanto custa", "preço"}

var detailInquiries = []string{"tell me more", "more details", "more info", "detail", "specifications", "how does it work"}

var positiveWords = []string{"great", "perfect", "awesome", "excellent", "love", "interesting", "sounds good"}

var objectionWords = []string{"expensive", "too much", "not interested", "maybe later", "think about it", "no thanks"}

// Score computes the engagement score and tier from the contact's recent
// turns. Agent turns only matter for response-time gaps; every keyword rule
// runs over the concatenated contact-authored text.
func Score(recent []domain.Turn) (int, domain.EngagementTier) {
	score := baseScore

	var customerTexts []string
	customerCount := 0
	for _, t := range recent {
		if t.Sender == domain.SenderContact {
			customerTexts = append(customerTexts, t.Content)
			customerCount++
		}
	}
	text := strings.ToLower(strings.Join(customerTexts, " "))

	// High-intent keywords: +20 per distinct match, capped.
	intent := 0
	for _, kw := range highIntentKeywords {
		if strings.Contains(text, kw) {
			intent += 20
		}
	}
	if intent > intentCap {
		intent = intentCap
	}
	score += intent

	if containsAny(text, priceInquiries) {
		score += 15
	}
	if containsAny(text, detailInquiries) {
		score += 15
	}

	avgResponse := averageResponseSeconds(recent)
	if avgResponse < fastResponseSeconds {
		score += 10
	}
	if avgResponse > slowResponseSeconds {
		score -= 10
	}

	if customerCount >= 8 {
		score += 10
	}
	if containsAny(text, positiveWords) {
		score += 10
	}
	if containsAny(text, objectionWords) {
		score -= 15
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return score, domain.TierForScore(score)
}

// averageResponseSeconds measures gaps between consecutive customer
// messages, skipping agent turns entirely.
func averageResponseSeconds(recent []domain.Turn) float64 {
	var prev *time.Time
	var total time.Duration
	gaps := 0

	for i := range recent {
		if recent[i].Sender != domain.SenderContact {
			continue
		}
		if prev != nil {
			total += recent[i].SentAt.Sub(*prev)
			gaps++
		}
		ts := recent[i].SentAt
		prev = &ts
	}

	if gaps == 0 {
		return defaultResponseSeconds
	}
	return total.Seconds() / float64(gaps)
}

func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}
