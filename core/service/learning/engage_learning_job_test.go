package learning

import (
	"context"
	"strings"
	"testing"
	"time"

	"engage_server/core/domain"
	"engage_server/core/port/out"

	"github.com/google/uuid"
)

func TestExtractBigrams(t *testing.T) {
	texts := []string{
		"sounds good to me",
		"sounds good, shipping is free",
		"shipping is free today",
	}
	got := ExtractBigrams(texts, 3)
	if len(got) != 3 {
		t.Fatalf("expected 3 bigrams, got %v", got)
	}
	// "shipping is" and "is free" appear twice each.
	if got[0] != "is free" && got[0] != "shipping is" {
		t.Errorf("top bigram = %q, want a twice-seen phrase", got[0])
	}
}

func TestExtractBigramsDeterministic(t *testing.T) {
	texts := []string{"a b c d", "d c b a"}
	first := strings.Join(ExtractBigrams(texts, 5), "|")
	for i := 0; i < 5; i++ {
		if got := strings.Join(ExtractBigrams(texts, 5), "|"); got != first {
			t.Fatalf("extraction not deterministic: %q vs %q", got, first)
		}
	}
}

func TestStripLearnedBlock(t *testing.T) {
	instructions := "You are a sales assistant.\n\n## Respond Like a Human\n- prefer this\n- avoid that\n\n## Escalation\nHand off angry customers."
	got := StripLearnedBlock(instructions)

	if strings.Contains(got, "prefer this") {
		t.Error("learned block content should be removed")
	}
	if !strings.Contains(got, "You are a sales assistant.") || !strings.Contains(got, "Hand off angry customers.") {
		t.Errorf("surrounding instructions must survive:\n%s", got)
	}
}

func TestStripLearnedBlockNoBlock(t *testing.T) {
	instructions := "You are a sales assistant."
	if got := StripLearnedBlock(instructions); got != instructions {
		t.Errorf("strip without block changed text: %q", got)
	}
}

func TestBuildLearnedBlockCaps(t *testing.T) {
	var many []string
	for i := 0; i < 15; i++ {
		many = append(many, "phrase "+string(rune('a'+i)))
	}
	block := BuildLearnedBlock(many, many, 120)
	if n := strings.Count(block, "- phrase"); n != 20 {
		t.Errorf("expected 10 preferred + 10 discouraged entries, got %d", n)
	}
	if !strings.Contains(block, "around 120 characters") {
		t.Error("target length missing from block")
	}
}

// --- fakes ---

type fakeConfigRepo struct {
	out.ModelConfigRepository
	active *domain.ModelConfig

	updatedInstructions string
	updatedMetrics      domain.ModelMetrics
	updates             int
}

func (f *fakeConfigRepo) GetActive(ctx context.Context, tenantID uuid.UUID) (*domain.ModelConfig, error) {
	return f.active, nil
}

func (f *fakeConfigRepo) UpdateLearnings(ctx context.Context, tenantID uuid.UUID, id int64, instructions string, metrics domain.ModelMetrics) error {
	f.updatedInstructions = instructions
	f.updatedMetrics = metrics
	f.updates++
	return nil
}

type fakeFeedbackRepo struct {
	out.FeedbackRepository
	samples []*domain.FeedbackSample
}

func (f *fakeFeedbackRepo) ListUnconsumed(ctx context.Context, tenantID uuid.UUID, modelConfigID int64, since time.Time) ([]*domain.FeedbackSample, error) {
	var unconsumed []*domain.FeedbackSample
	for _, s := range f.samples {
		if !s.Consumed {
			unconsumed = append(unconsumed, s)
		}
	}
	return unconsumed, nil
}

func (f *fakeFeedbackRepo) Claim(ctx context.Context, id int64, batchID string) (bool, error) {
	for _, s := range f.samples {
		if s.ID == id {
			if s.Consumed {
				return false, nil
			}
			s.Consumed = true
			s.BatchID = &batchID
			return true, nil
		}
	}
	return false, nil
}

type fakeConvRepo struct {
	out.ConversationRepository
	counts []out.AgentSuccessCount
}

func (f *fakeConvRepo) AgentSuccessCounts(ctx context.Context, tenantID uuid.UUID) ([]out.AgentSuccessCount, error) {
	return f.counts, nil
}

func sample(id int64, agent uuid.UUID, ft domain.FeedbackType, dist int, text string) *domain.FeedbackSample {
	return &domain.FeedbackSample{
		ID:           id,
		AgentID:      agent,
		FeedbackType: ft,
		EditDetails:  domain.EditDetails{EditDistance: dist},
		FinalText:    text,
		HumanLikeness:   0.6,
		NaturalLanguage: 0.7,
	}
}

func TestRunTenantRewritesInstructions(t *testing.T) {
	tenant := uuid.New()
	agent := uuid.New()

	configs := &fakeConfigRepo{active: &domain.ModelConfig{
		ID:                 1,
		TenantID:           tenant,
		FeedbackEnabled:    true,
		LearningRate:       1,
		SystemInstructions: "Sell politely.\n\n## Respond like a human\n- stale phrase",
	}}
	feedback := &fakeFeedbackRepo{samples: []*domain.FeedbackSample{
		sample(1, agent, domain.FeedbackUsedAsIs, 0, "sounds good, sending the link now"),
		sample(2, agent, domain.FeedbackModified, 5, "sounds good, invoice attached"),
		sample(3, agent, domain.FeedbackRejected, 90, "dear valued customer we appreciate"),
	}}
	conversations := &fakeConvRepo{counts: []out.AgentSuccessCount{{AgentID: agent, SuccessCount: 12}}}

	job := NewJob(configs, feedback, conversations)
	if err := job.RunTenant(context.Background(), tenant, "batch-1"); err != nil {
		t.Fatal(err)
	}

	if configs.updates != 1 {
		t.Fatalf("expected one config update, got %d", configs.updates)
	}
	if strings.Contains(configs.updatedInstructions, "stale phrase") {
		t.Error("stale learned block should be stripped")
	}
	if !strings.Contains(configs.updatedInstructions, "sounds good") {
		t.Errorf("fresh preferred phrases missing:\n%s", configs.updatedInstructions)
	}
	if !strings.Contains(configs.updatedInstructions, "Sell politely.") {
		t.Error("base instructions must survive the rewrite")
	}

	if configs.updatedMetrics.SampleCount != 3 {
		t.Errorf("metrics sample count = %d, want 3", configs.updatedMetrics.SampleCount)
	}
	if configs.updatedMetrics.LastBatchID != "batch-1" {
		t.Errorf("metrics batch id = %q", configs.updatedMetrics.LastBatchID)
	}

	for _, s := range feedback.samples {
		if !s.Consumed || s.BatchID == nil || *s.BatchID != "batch-1" {
			t.Errorf("sample %d not consumed with batch id", s.ID)
		}
	}
}

func TestRunTenantSecondRunIsNoOp(t *testing.T) {
	tenant := uuid.New()
	configs := &fakeConfigRepo{active: &domain.ModelConfig{ID: 1, TenantID: tenant, FeedbackEnabled: true}}
	feedback := &fakeFeedbackRepo{samples: []*domain.FeedbackSample{
		sample(1, uuid.New(), domain.FeedbackUsedAsIs, 0, "great, thanks"),
	}}
	job := NewJob(configs, feedback, &fakeConvRepo{})

	if err := job.RunTenant(context.Background(), tenant, "batch-1"); err != nil {
		t.Fatal(err)
	}
	if err := job.RunTenant(context.Background(), tenant, "batch-2"); err != nil {
		t.Fatal(err)
	}

	if configs.updates != 1 {
		t.Errorf("second run with no new feedback must be a no-op, got %d updates", configs.updates)
	}
	if got := feedback.samples[0].BatchID; got == nil || *got != "batch-1" {
		t.Error("batch id must be stamped exactly once")
	}
}

func TestRunTenantDisabledConfigIsNoOp(t *testing.T) {
	tenant := uuid.New()
	configs := &fakeConfigRepo{active: &domain.ModelConfig{ID: 1, FeedbackEnabled: false}}
	feedback := &fakeFeedbackRepo{samples: []*domain.FeedbackSample{
		sample(1, uuid.New(), domain.FeedbackUsedAsIs, 0, "hey"),
	}}
	job := NewJob(configs, feedback, &fakeConvRepo{})

	if err := job.RunTenant(context.Background(), tenant, "batch-1"); err != nil {
		t.Fatal(err)
	}
	if configs.updates != 0 {
		t.Error("disabled feedback learning must not rewrite the config")
	}
	if feedback.samples[0].Consumed {
		t.Error("samples must not be consumed when learning is disabled")
	}
}
