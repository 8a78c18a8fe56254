package feedback

import (
	"strings"
	"testing"

	"engage_server/core/domain"
)

func TestClassifyUsedAsIs(t *testing.T) {
	text := "Sure! Here's the link."
	got, details := Classify(text, text)
	if got != domain.FeedbackUsedAsIs {
		t.Errorf("feedback type = %s, want used_as_is", got)
	}
	if details.EditDistance != 0 {
		t.Errorf("edit distance = %d, want 0", details.EditDistance)
	}
}

func TestClassifyModified(t *testing.T) {
	got, details := Classify(
		"Thanks for asking! The premium plan is 49 euros a month and you can cancel anytime you like.",
		"Thanks for asking! The premium plan is 49 euros per month, cancel anytime.",
	)
	if got != domain.FeedbackModified {
		t.Errorf("feedback type = %s (distance %d), want modified", got, details.EditDistance)
	}
	if details.ManualOverride {
		t.Error("small edit should not flag manual override")
	}
}

func TestClassifyManualOverrideTakesPrecedence(t *testing.T) {
	// Original of length 20; a distance > 0.7*20 = 14 is an override even
	// though it stays below the absolute modified threshold of 50.
	original := "12345678901234567890"
	final := "abcdefghijklmnop7890"
	got, details := Classify(original, final)
	if details.EditDistance != 16 {
		t.Fatalf("edit distance = %d, want 16", details.EditDistance)
	}
	if details.EditDistance >= 50 {
		t.Fatal("test setup wrong: distance must stay below the modified threshold")
	}
	if got != domain.FeedbackManualOverride {
		t.Errorf("feedback type = %s, want manual_override", got)
	}
}

func TestClassifyRejected(t *testing.T) {
	original := strings.Repeat("our premium plan includes support and onboarding. ", 4)
	final := original[:len(original)-60] + strings.Repeat("x", 55)
	got, details := Classify(original, final)
	if details.ManualOverride {
		t.Fatalf("distance %d should stay under the 0.7 ratio for a 200-char original", details.EditDistance)
	}
	if details.EditDistance < 50 {
		t.Fatalf("test setup wrong: distance %d must be >= 50", details.EditDistance)
	}
	if got != domain.FeedbackRejected {
		t.Errorf("feedback type = %s, want rejected", got)
	}
}

func TestEngagementFor(t *testing.T) {
	tests := []struct {
		name    string
		replies []string
		want    domain.EngagementOutcome
		score   float64
	}{
		{"no reply", nil, domain.EngagementNegative, 0},
		{"short reply", []string{"ok"}, domain.EngagementNeutral, 0.4},
		{"substantial reply", []string{"sounds great, send me the invoice"}, domain.EngagementPositive, 0.7},
		{"mixed replies", []string{"ok", "and what about the delivery time?"}, domain.EngagementPositive, 0.7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome, score := EngagementFor(tt.replies)
			if outcome != tt.want || score != tt.score {
				t.Errorf("EngagementFor(%v) = (%s, %v), want (%s, %v)", tt.replies, outcome, score, tt.want, tt.score)
			}
		})
	}
}
