package behavior

import (
	"testing"
	"time"

	"engage_server/core/domain"
)

func contactTurn(content string, at time.Time) domain.Turn {
	return domain.Turn{Sender: domain.SenderContact, Content: content, SentAt: at}
}

func agentTurn(content string, at time.Time) domain.Turn {
	return domain.Turn{Sender: domain.SenderAgent, Content: content, SentAt: at}
}

func TestScoreEmptyHistory(t *testing.T) {
	score, tier := Score(nil)
	if score != 50 {
		t.Errorf("empty history score = %d, want 50", score)
	}
	if tier != domain.TierWarm {
		t.Errorf("empty history tier = %s, want warm", tier)
	}
}

func TestScoreHighIntentFastReplies(t *testing.T) {
	base := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	turns := []domain.Turn{
		contactTurn("I want to buy this", base),
		agentTurn("Here is the link", base.Add(30*time.Second)),
		contactTurn("what's the price?", base.Add(1*time.Minute)),
	}

	// buy(+20) + price(+15) + fast replies(+10) = 95
	score, tier := Score(turns)
	want := 50 + 20 + 15 + 10
	if score != want {
		t.Errorf("score = %d, want %d", score, want)
	}
	if tier != domain.TierHot {
		t.Errorf("tier = %s, want hot", tier)
	}
}

func TestScoreIntentCapped(t *testing.T) {
	base := time.Now()
	turns := []domain.Turn{
		contactTurn("I'll buy it, purchase done, order placed, payment sent, checkout ready", base),
	}
	// 5 distinct intent keywords cap at +40. Single customer message: avg
	// response defaults to 600s, neither fast nor slow.
	score, _ := Score(turns)
	want := 50 + 40
	if score != want {
		t.Errorf("score = %d, want %d", score, want)
	}
}

func TestScoreObjectionsAndSlowReplies(t *testing.T) {
	base := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	turns := []domain.Turn{
		contactTurn("this is too expensive", base),
		contactTurn("maybe later", base.Add(2*time.Hour)),
	}
	// objection(-15) + slow replies(-10) = 25
	score, tier := Score(turns)
	if score != 25 {
		t.Errorf("score = %d, want 25", score)
	}
	if tier != domain.TierCold {
		t.Errorf("tier = %s, want cold", tier)
	}
}

func TestScoreClamped(t *testing.T) {
	base := time.Now()
	var turns []domain.Turn
	for i := 0; i < 10; i++ {
		turns = append(turns, contactTurn("buy purchase order payment checkout how much tell me more great", base.Add(time.Duration(i)*time.Second)))
	}
	score, _ := Score(turns)
	if score != 100 {
		t.Errorf("score = %d, want clamp at 100", score)
	}
}

func TestAverageResponseIgnoresAgentTurns(t *testing.T) {
	base := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	turns := []domain.Turn{
		contactTurn("hi", base),
		agentTurn("hello!", base.Add(50*time.Minute)),
		contactTurn("still here", base.Add(2*time.Minute)),
	}
	// The gap between the two contact messages is 2 minutes; the agent turn
	// at +50min must not count. 2min < 300s -> +10.
	score, _ := Score(turns)
	if score != 60 {
		t.Errorf("score = %d, want 60", score)
	}
}

func TestTierMapping(t *testing.T) {
	tests := []struct {
		score int
		want  domain.EngagementTier
	}{
		{100, domain.TierHot},
		{80, domain.TierHot},
		{79, domain.TierWarm},
		{50, domain.TierWarm},
		{49, domain.TierCold},
		{0, domain.TierCold},
	}
	for _, tt := range tests {
		if got := domain.TierForScore(tt.score); got != tt.want {
			t.Errorf("TierForScore(%d) = %s, want %s", tt.score, got, tt.want)
		}
	}
}
