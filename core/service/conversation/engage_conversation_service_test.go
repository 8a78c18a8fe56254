package conversation

import (
	"context"
	"errors"
	"testing"
	"time"

	"engage_server/core/domain"
	"engage_server/core/port/in"
	"engage_server/core/port/out"
	"engage_server/core/service/feedback"
	"engage_server/pkg/apperr"

	"github.com/google/uuid"
)

type fakeConvRepo struct {
	conversations map[int64]*domain.Conversation
	messages      []*domain.Message
	updates       int
}

func (f *fakeConvRepo) Create(_ context.Context, c *domain.Conversation) error { return nil }

func (f *fakeConvRepo) GetByID(_ context.Context, tenantID uuid.UUID, id int64) (*domain.Conversation, error) {
	c, ok := f.conversations[id]
	if !ok || c.TenantID != tenantID {
		return nil, nil
	}
	return c, nil
}

func (f *fakeConvRepo) Update(_ context.Context, c *domain.Conversation) error {
	f.updates++
	f.conversations[c.ID] = c
	return nil
}

func (f *fakeConvRepo) ListByContact(_ context.Context, _ uuid.UUID, _ int64) ([]*domain.Conversation, error) {
	return nil, nil
}

func (f *fakeConvRepo) AddMessage(_ context.Context, m *domain.Message) error {
	m.ID = int64(len(f.messages) + 1)
	f.messages = append(f.messages, m)
	return nil
}

func (f *fakeConvRepo) RecentMessages(_ context.Context, conversationID int64, limit int) ([]*domain.Message, error) {
	var out []*domain.Message
	for _, m := range f.messages {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (f *fakeConvRepo) ContactMessagesSince(_ context.Context, _ int64, _ time.Time) ([]*domain.Message, error) {
	return nil, nil
}

func (f *fakeConvRepo) ListSuccessfulSince(_ context.Context, _ uuid.UUID, _ time.Time) ([]*domain.Conversation, error) {
	return nil, nil
}

func (f *fakeConvRepo) AgentSuccessCounts(_ context.Context, _ uuid.UUID) ([]out.AgentSuccessCount, error) {
	return nil, nil
}

func (f *fakeConvRepo) ListTenants(_ context.Context) ([]uuid.UUID, error) { return nil, nil }

type fakeContactRepo struct {
	engagementCalls int
	lastScore       int
	lastTier        domain.EngagementTier
}

func (f *fakeContactRepo) Create(_ context.Context, _ *domain.Contact) error { return nil }

func (f *fakeContactRepo) GetByID(_ context.Context, _ uuid.UUID, _ int64) (*domain.Contact, error) {
	return nil, nil
}

func (f *fakeContactRepo) List(_ context.Context, _ uuid.UUID, _, _ int) ([]*domain.Contact, error) {
	return nil, nil
}

func (f *fakeContactRepo) UpdateEngagement(_ context.Context, _ uuid.UUID, _ int64, score int, tier domain.EngagementTier, _ int, _ time.Time) error {
	f.engagementCalls++
	f.lastScore = score
	f.lastTier = tier
	return nil
}

type fakeSuggestionRepo struct {
	suggestions map[int64]*domain.Suggestion
	marked      []*domain.Suggestion
}

func (f *fakeSuggestionRepo) Create(_ context.Context, s *domain.Suggestion) error { return nil }

func (f *fakeSuggestionRepo) GetByID(_ context.Context, tenantID uuid.UUID, id int64) (*domain.Suggestion, error) {
	s, ok := f.suggestions[id]
	if !ok || s.TenantID != tenantID {
		return nil, nil
	}
	return s, nil
}

func (f *fakeSuggestionRepo) MarkUsed(_ context.Context, s *domain.Suggestion) error {
	f.marked = append(f.marked, s)
	return nil
}

type fakeFeedbackRepo struct {
	samples []*domain.FeedbackSample
}

func (f *fakeFeedbackRepo) Create(_ context.Context, s *domain.FeedbackSample) error {
	s.ID = int64(len(f.samples) + 1)
	f.samples = append(f.samples, s)
	return nil
}

func (f *fakeFeedbackRepo) GetByID(_ context.Context, _ int64) (*domain.FeedbackSample, error) {
	return nil, nil
}

func (f *fakeFeedbackRepo) ListUnconsumed(_ context.Context, _ uuid.UUID, _ int64, _ time.Time) ([]*domain.FeedbackSample, error) {
	return nil, nil
}

func (f *fakeFeedbackRepo) Claim(_ context.Context, _ int64, _ string) (bool, error) {
	return true, nil
}

func (f *fakeFeedbackRepo) UpdateEngagement(_ context.Context, _ int64, _ domain.EngagementOutcome, _ float64) error {
	return nil
}

type fakeConfigRepo struct {
	active *domain.ModelConfig
}

func (f *fakeConfigRepo) Create(_ context.Context, _ *domain.ModelConfig) error { return nil }

func (f *fakeConfigRepo) GetByID(_ context.Context, _ uuid.UUID, _ int64) (*domain.ModelConfig, error) {
	return nil, nil
}

func (f *fakeConfigRepo) GetActive(_ context.Context, _ uuid.UUID) (*domain.ModelConfig, error) {
	return f.active, nil
}

func (f *fakeConfigRepo) List(_ context.Context, _ uuid.UUID) ([]*domain.ModelConfig, error) {
	return nil, nil
}

func (f *fakeConfigRepo) Activate(_ context.Context, _ uuid.UUID, _ int64) error { return nil }

func (f *fakeConfigRepo) UpdateLearnings(_ context.Context, _ uuid.UUID, _ int64, _ string, _ domain.ModelMetrics) error {
	return nil
}

func (f *fakeConfigRepo) ListFeedbackTenants(_ context.Context) ([]uuid.UUID, error) {
	return nil, nil
}

type fakeProducer struct {
	checks []*out.EngagementCheckJob
	delays []time.Duration
}

func (f *fakeProducer) PublishEngagementCheck(_ context.Context, job *out.EngagementCheckJob, delay time.Duration) error {
	f.checks = append(f.checks, job)
	f.delays = append(f.delays, delay)
	return nil
}

func (f *fakeProducer) PublishLearningCycle(_ context.Context, _ *out.LearningCycleJob) error {
	return nil
}

func (f *fakeProducer) PublishPatternExtract(_ context.Context, _ *out.PatternExtractJob) error {
	return nil
}

type fakeDelivery struct {
	jobs []*out.DeliveryJob
	err  error
}

func (f *fakeDelivery) Deliver(_ context.Context, job *out.DeliveryJob) error {
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, job)
	return nil
}

type fixture struct {
	svc      *Service
	convs    *fakeConvRepo
	contacts *fakeContactRepo
	suggs    *fakeSuggestionRepo
	feedback *fakeFeedbackRepo
	producer *fakeProducer
	delivery *fakeDelivery
	user     domain.AuthUser
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	tenantID := uuid.New()
	convs := &fakeConvRepo{conversations: map[int64]*domain.Conversation{
		1: {ID: 1, TenantID: tenantID, ContactID: 7, Status: domain.ConversationNew},
	}}
	contacts := &fakeContactRepo{}
	suggs := &fakeSuggestionRepo{suggestions: map[int64]*domain.Suggestion{}}
	fb := &fakeFeedbackRepo{}
	producer := &fakeProducer{}
	delivery := &fakeDelivery{}
	collector := feedback.NewCollector(suggs, fb, convs, &fakeConfigRepo{}, producer)
	return &fixture{
		svc:      NewService(convs, contacts, suggs, collector, delivery),
		convs:    convs,
		contacts: contacts,
		suggs:    suggs,
		feedback: fb,
		producer: producer,
		delivery: delivery,
		user:     domain.AuthUser{ID: uuid.New(), TenantID: tenantID, Role: domain.RoleAgent},
	}
}

func TestRecordInboundRefreshesBehaviorEveryThird(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	texts := []string{"hi", "I want to buy this", "what is the price?"}
	for _, text := range texts {
		if _, err := f.svc.RecordInbound(ctx, f.user, 1, text); err != nil {
			t.Fatalf("RecordInbound(%q): %v", text, err)
		}
	}

	if f.contacts.engagementCalls != 1 {
		t.Fatalf("engagement calls = %d, want 1 (refresh on the third message only)", f.contacts.engagementCalls)
	}
	// buy intent +20, price inquiry +15, near-instant replies +10 on base 50.
	if f.contacts.lastScore != 95 {
		t.Errorf("behavior score = %d, want 95", f.contacts.lastScore)
	}
	if f.contacts.lastTier != domain.TierHot {
		t.Errorf("tier = %q, want %q", f.contacts.lastTier, domain.TierHot)
	}
}

func TestRecordInboundRejectsEmptyText(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.RecordInbound(context.Background(), f.user, 1, "   ")
	if !apperr.IsCode(err, apperr.CodeMissingField) {
		t.Fatalf("err = %v, want MISSING_FIELD", err)
	}
}

func TestRecordInboundMovesNewToInProgress(t *testing.T) {
	f := newFixture(t)

	if _, err := f.svc.RecordInbound(context.Background(), f.user, 1, "hello"); err != nil {
		t.Fatalf("RecordInbound: %v", err)
	}
	if got := f.convs.conversations[1].Status; got != domain.ConversationInProgress {
		t.Errorf("status = %q, want %q", got, domain.ConversationInProgress)
	}
}

func TestSendWithSuggestionCapturesFeedbackAndDelivers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	suggID := int64(42)
	f.suggs.suggestions[suggID] = &domain.Suggestion{
		ID:             suggID,
		TenantID:       f.user.TenantID,
		ConversationID: 1,
		Source:         domain.SourceTemplate,
		Text:           "Thanks for reaching out! Happy to help with that.",
	}

	msg, err := f.svc.Send(ctx, f.user, &in.SendRequest{
		ConversationID: 1,
		Text:           "Thanks for reaching out! Happy to help with that.",
		SuggestionID:   &suggID,
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	if !msg.FromSuggestion || !msg.UsedVerbatim {
		t.Errorf("message flags = from_suggestion %v, verbatim %v, want both true", msg.FromSuggestion, msg.UsedVerbatim)
	}
	if len(f.feedback.samples) != 1 {
		t.Fatalf("feedback samples = %d, want 1", len(f.feedback.samples))
	}
	if got := f.feedback.samples[0].FeedbackType; got != domain.FeedbackUsedAsIs {
		t.Errorf("feedback type = %q, want %q", got, domain.FeedbackUsedAsIs)
	}
	if len(f.producer.checks) != 1 {
		t.Fatalf("engagement checks scheduled = %d, want 1", len(f.producer.checks))
	}
	if f.producer.delays[0] != 5*time.Minute {
		t.Errorf("check delay = %v, want 5m", f.producer.delays[0])
	}
	if len(f.delivery.jobs) != 1 {
		t.Fatalf("deliveries = %d, want 1", len(f.delivery.jobs))
	}
	if got := f.convs.conversations[1].Status; got != domain.ConversationWaiting {
		t.Errorf("status = %q, want %q", got, domain.ConversationWaiting)
	}
}

func TestSendWithoutSuggestionSkipsFeedback(t *testing.T) {
	f := newFixture(t)

	msg, err := f.svc.Send(context.Background(), f.user, &in.SendRequest{
		ConversationID: 1,
		Text:           "let me check and get back to you",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if msg.FromSuggestion {
		t.Error("message marked from_suggestion without a suggestion id")
	}
	if len(f.feedback.samples) != 0 {
		t.Errorf("feedback samples = %d, want 0", len(f.feedback.samples))
	}
	if len(f.delivery.jobs) != 1 {
		t.Errorf("deliveries = %d, want 1", len(f.delivery.jobs))
	}
}

func TestSendRejectsForeignSuggestion(t *testing.T) {
	f := newFixture(t)

	suggID := int64(9)
	f.suggs.suggestions[suggID] = &domain.Suggestion{
		ID:             suggID,
		TenantID:       f.user.TenantID,
		ConversationID: 99,
		Text:           "hello",
	}

	_, err := f.svc.Send(context.Background(), f.user, &in.SendRequest{
		ConversationID: 1,
		Text:           "hello",
		SuggestionID:   &suggID,
	})
	if !apperr.IsCode(err, apperr.CodeBadRequest) {
		t.Fatalf("err = %v, want BAD_REQUEST", err)
	}
}

func TestSendDeliveryFailure(t *testing.T) {
	f := newFixture(t)
	f.delivery.err = errors.New("gateway timeout")

	_, err := f.svc.Send(context.Background(), f.user, &in.SendRequest{
		ConversationID: 1,
		Text:           "hello there",
	})
	if !apperr.IsCode(err, apperr.CodeDeliveryError) {
		t.Fatalf("err = %v, want DELIVERY_ERROR", err)
	}
}

func TestCompleteSetsOutcome(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	amount := 1299.0
	if err := f.svc.Complete(ctx, f.user, 1, true, &amount, []string{"pro-plan"}, "closed on second call"); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	conv := f.convs.conversations[1]
	if conv.Status != domain.ConversationCompleted || !conv.IsSuccessful {
		t.Errorf("conversation = %q successful=%v, want completed/true", conv.Status, conv.IsSuccessful)
	}
	if conv.SaleAmount == nil || *conv.SaleAmount != 1299.0 {
		t.Errorf("sale amount = %v, want 1299", conv.SaleAmount)
	}

	if err := f.svc.Complete(ctx, f.user, 1, false, nil, nil, ""); !apperr.IsCode(err, apperr.CodeConflict) {
		t.Fatalf("second Complete err = %v, want CONFLICT", err)
	}
}
