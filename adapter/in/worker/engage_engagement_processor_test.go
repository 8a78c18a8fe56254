package worker

import (
	"context"
	"testing"
	"time"

	"engage_server/core/domain"
	"engage_server/core/port/out"
)

type fakeConversations struct {
	out.ConversationRepository
	messages []*domain.Message
	err      error
}

func (f *fakeConversations) ContactMessagesSince(ctx context.Context, conversationID int64, ts time.Time) ([]*domain.Message, error) {
	return f.messages, f.err
}

type fakeFeedback struct {
	out.FeedbackRepository
	sampleID int64
	outcome  domain.EngagementOutcome
	score    float64
	calls    int
}

func (f *fakeFeedback) UpdateEngagement(ctx context.Context, id int64, outcome domain.EngagementOutcome, score float64) error {
	f.sampleID = id
	f.outcome = outcome
	f.score = score
	f.calls++
	return nil
}

func checkMessage(sampleID int64) *Message {
	return NewMessage(JobEngagementCheck, map[string]any{
		"tenant_id":       "6a1d2c3b-0000-0000-0000-000000000001",
		"sample_id":       sampleID,
		"conversation_id": int64(7),
		"sent_at":         time.Now().Add(-6 * time.Minute).Format(time.RFC3339),
	})
}

func contactMsg(content string) *domain.Message {
	return &domain.Message{Sender: domain.SenderContact, Content: content}
}

func TestEngagementProcessorOutcomes(t *testing.T) {
	tests := []struct {
		name        string
		replies     []*domain.Message
		wantOutcome domain.EngagementOutcome
		wantScore   float64
	}{
		{
			name:        "no reply is negative",
			replies:     nil,
			wantOutcome: domain.EngagementNegative,
			wantScore:   0,
		},
		{
			name:        "only short replies are neutral",
			replies:     []*domain.Message{contactMsg("ok"), contactMsg("thanks")},
			wantOutcome: domain.EngagementNeutral,
			wantScore:   0.4,
		},
		{
			name:        "a substantive reply is positive",
			replies:     []*domain.Message{contactMsg("ok"), contactMsg("can you tell me more about pricing?")},
			wantOutcome: domain.EngagementPositive,
			wantScore:   0.7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := &fakeFeedback{}
			p := NewEngagementProcessor(&fakeConversations{messages: tt.replies}, fb)

			if err := p.ProcessCheck(context.Background(), checkMessage(42)); err != nil {
				t.Fatalf("ProcessCheck: %v", err)
			}

			if fb.calls != 1 {
				t.Fatalf("UpdateEngagement calls = %d, want 1", fb.calls)
			}
			if fb.sampleID != 42 {
				t.Errorf("sample id = %d, want 42", fb.sampleID)
			}
			if fb.outcome != tt.wantOutcome {
				t.Errorf("outcome = %s, want %s", fb.outcome, tt.wantOutcome)
			}
			if fb.score != tt.wantScore {
				t.Errorf("score = %v, want %v", fb.score, tt.wantScore)
			}
		})
	}
}

func TestEngagementProcessorBadPayload(t *testing.T) {
	p := NewEngagementProcessor(&fakeConversations{}, &fakeFeedback{})

	msg := NewMessage(JobEngagementCheck, map[string]any{"sent_at": "not-a-timestamp"})
	if err := p.ProcessCheck(context.Background(), msg); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}

func TestHandlerIgnoresUnknownJobType(t *testing.T) {
	h := NewHandler(
		NewEngagementProcessor(&fakeConversations{}, &fakeFeedback{}),
		nil,
	)

	// Unknown types are dropped, not retried.
	if err := h.Process(context.Background(), NewMessage("no.such.job", nil)); err != nil {
		t.Fatalf("unknown job type should not error, got %v", err)
	}
}
