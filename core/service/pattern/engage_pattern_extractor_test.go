package pattern

import (
	"context"
	"testing"
	"time"

	"engage_server/core/domain"
	"engage_server/core/port/out"

	"github.com/google/uuid"
)

func msg(sender domain.SenderType, content string, at time.Time) *domain.Message {
	return &domain.Message{Sender: sender, Content: content, CreatedAt: at}
}

func TestDeriveCategory(t *testing.T) {
	tests := []struct {
		name string
		text string
		want domain.PatternCategory
	}{
		{"price negotiation", "can you do a better price or a discount?", domain.PatternPriceNegotiation},
		{"urgency", "I need this asap", domain.PatternUrgencyCreation},
		{"trust", "do you offer a money back guarantee?", domain.PatternTrustBuilding},
		{"general", "hello, tell me about the product", domain.PatternGeneral},
	}

	base := time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conv := &domain.Conversation{ID: 1, IsSuccessful: true}
			messages := []*domain.Message{
				msg(domain.SenderContact, tt.text, base),
				msg(domain.SenderAgent, "of course!", base.Add(5*time.Minute)),
			}
			p := Derive(uuid.New(), conv, messages)
			if p.Category != tt.want {
				t.Errorf("category = %s, want %s", p.Category, tt.want)
			}
		})
	}
}

func TestDeriveObjectionAndClosing(t *testing.T) {
	base := time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC)
	amount := 250.0
	conv := &domain.Conversation{ID: 2, IsSuccessful: true, SaleAmount: &amount}
	messages := []*domain.Message{
		msg(domain.SenderContact, "that seems expensive", base),
		msg(domain.SenderAgent, "It pays for itself in a month, and you can cancel anytime.", base.Add(3*time.Minute)),
		msg(domain.SenderContact, "ok, send the invoice", base.Add(10*time.Minute)),
	}

	p := Derive(uuid.New(), conv, messages)
	if !p.HandledObjections {
		t.Error("objection handling not detected")
	}
	if !p.UsedClosing {
		t.Error("closing move not detected")
	}
	if p.Outcome.TimeToCloseMin != 10 {
		t.Errorf("time to close = %d, want 10", p.Outcome.TimeToCloseMin)
	}
	if len(p.KeyMessages) != 1 || p.KeyMessages[0] != "It pays for itself in a month, and you can cancel anytime." {
		t.Errorf("key messages = %v", p.KeyMessages)
	}
	if !p.TrainingUsable {
		t.Error("effective fast close should be training usable")
	}
}

func TestEffectivenessScore(t *testing.T) {
	tests := []struct {
		name    string
		outcome domain.PatternOutcome
		want    float64
	}{
		{"fast paid close", domain.PatternOutcome{SaleAmount: 100, TimeToCloseMin: 30, MessageCount: 6}, 1.0},
		{"slow close", domain.PatternOutcome{SaleAmount: 100, TimeToCloseMin: 3 * 24 * 60, MessageCount: 40}, 0.7},
		{"no revenue recorded", domain.PatternOutcome{TimeToCloseMin: 30, MessageCount: 6}, 0.8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EffectivenessScore(tt.outcome); got != tt.want {
				t.Errorf("EffectivenessScore = %v, want %v", got, tt.want)
			}
		})
	}
}

// --- extractor wiring ---

type fakeConvRepo struct {
	out.ConversationRepository
	won      []*domain.Conversation
	messages map[int64][]*domain.Message
}

func (f *fakeConvRepo) ListSuccessfulSince(ctx context.Context, tenantID uuid.UUID, since time.Time) ([]*domain.Conversation, error) {
	return f.won, nil
}

func (f *fakeConvRepo) RecentMessages(ctx context.Context, conversationID int64, limit int) ([]*domain.Message, error) {
	return f.messages[conversationID], nil
}

type fakePatternRepo struct {
	out.PatternRepository
	existing map[int64]bool
	created  []*domain.Pattern
}

func (f *fakePatternRepo) ExistsForConversation(ctx context.Context, conversationID int64) (bool, error) {
	return f.existing[conversationID], nil
}

func (f *fakePatternRepo) Create(ctx context.Context, p *domain.Pattern) error {
	f.created = append(f.created, p)
	return nil
}

type fakeKnowledge struct {
	upserts []*domain.KnowledgeEntry
}

func (f *fakeKnowledge) Upsert(ctx context.Context, entry *domain.KnowledgeEntry) error {
	f.upserts = append(f.upserts, entry)
	return nil
}

func (f *fakeKnowledge) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*domain.KnowledgeEntry, error) {
	return f.upserts, nil
}

func TestRunTenantSkipsExistingPatterns(t *testing.T) {
	base := time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC)
	tenant := uuid.New()

	convs := &fakeConvRepo{
		won: []*domain.Conversation{{ID: 1, IsSuccessful: true}, {ID: 2, IsSuccessful: true}},
		messages: map[int64][]*domain.Message{
			1: {msg(domain.SenderContact, "price?", base), msg(domain.SenderAgent, "49 euros", base.Add(time.Minute))},
			2: {msg(domain.SenderContact, "hello", base), msg(domain.SenderAgent, "hi!", base.Add(time.Minute))},
		},
	}
	patterns := &fakePatternRepo{existing: map[int64]bool{2: true}}
	knowledge := &fakeKnowledge{}

	e := NewExtractor(convs, patterns, knowledge)
	if err := e.RunTenant(context.Background(), tenant); err != nil {
		t.Fatal(err)
	}

	if len(patterns.created) != 1 || patterns.created[0].ConversationID != 1 {
		t.Fatalf("expected one new pattern for conversation 1, got %+v", patterns.created)
	}
	if len(knowledge.upserts) != 1 {
		t.Fatalf("expected one knowledge upsert, got %d", len(knowledge.upserts))
	}
	if knowledge.upserts[0].RelevanceScore != patterns.created[0].EffectivenessScore {
		t.Error("knowledge relevance must equal pattern effectiveness")
	}
	if knowledge.upserts[0].Category != domain.PatternPriceNegotiation {
		t.Errorf("knowledge category = %s", knowledge.upserts[0].Category)
	}
}
