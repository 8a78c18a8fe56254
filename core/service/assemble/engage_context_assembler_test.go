package assemble

import (
	"context"
	"strings"
	"testing"

	"engage_server/core/domain"
	"engage_server/core/port/out"

	"github.com/google/uuid"
)

type fakeCatalog struct {
	products  []*domain.Product
	faqs      []*domain.FAQ
	materials []*domain.TrainingMaterial

	productLimit, faqLimit, materialLimit int
}

func (f *fakeCatalog) ListActiveProducts(ctx context.Context, tenantID uuid.UUID, limit int) ([]*domain.Product, error) {
	f.productLimit = limit
	return capSlice(f.products, limit), nil
}

func (f *fakeCatalog) ListFAQs(ctx context.Context, tenantID uuid.UUID, limit int) ([]*domain.FAQ, error) {
	f.faqLimit = limit
	return capSlice(f.faqs, limit), nil
}

func (f *fakeCatalog) ListTrainingMaterials(ctx context.Context, tenantID uuid.UUID, limit int) ([]*domain.TrainingMaterial, error) {
	f.materialLimit = limit
	return capSlice(f.materials, limit), nil
}

func capSlice[T any](s []T, limit int) []T {
	if len(s) > limit {
		return s[:limit]
	}
	return s
}

type fakePatterns struct {
	out.PatternRepository
	patterns []*domain.Pattern
	limit    int
}

func (f *fakePatterns) ListTopEffective(ctx context.Context, tenantID uuid.UUID, limit int) ([]*domain.Pattern, error) {
	f.limit = limit
	return capSlice(f.patterns, limit), nil
}

func TestAssembleWeightedSlices(t *testing.T) {
	catalog := &fakeCatalog{}
	patterns := &fakePatterns{}
	a := NewAssembler(catalog, patterns)

	cfg := &domain.ModelConfig{
		Weights: domain.ContextWeights{
			ProductCatalog:    0.5,  // floor(20*0.5)  = 10
			FAQ:               0.25, // floor(20*0.25) = 5
			TrainingMaterials: 0.1,  // floor(20*0.1)  = 2
			SuccessPatterns:   0.33, // floor(20*0.33) = 6
		},
	}

	_, err := a.Assemble(context.Background(), uuid.New(), cfg, nil, "hi", 50)
	if err != nil {
		t.Fatal(err)
	}

	if catalog.productLimit != 10 {
		t.Errorf("product limit = %d, want 10", catalog.productLimit)
	}
	if catalog.faqLimit != 5 {
		t.Errorf("faq limit = %d, want 5", catalog.faqLimit)
	}
	if catalog.materialLimit != 2 {
		t.Errorf("material limit = %d, want 2", catalog.materialLimit)
	}
	if patterns.limit != 6 {
		t.Errorf("pattern limit = %d, want 6", patterns.limit)
	}
}

func TestAssembleZeroWeightSkipsSource(t *testing.T) {
	catalog := &fakeCatalog{productLimit: -1}
	a := NewAssembler(catalog, &fakePatterns{})

	cfg := &domain.ModelConfig{Weights: domain.ContextWeights{FAQ: 1}}
	b, err := a.Assemble(context.Background(), uuid.New(), cfg, nil, "hi", 50)
	if err != nil {
		t.Fatal(err)
	}
	if catalog.productLimit != -1 {
		t.Error("zero-weight source should not be queried")
	}
	if len(b.Products) != 0 {
		t.Error("expected no products in bundle")
	}
}

func TestPromptIncludesConversationAndScore(t *testing.T) {
	b := &Bundle{
		Turns: []domain.Turn{
			{Sender: domain.SenderContact, Content: "how much is shipping?"},
			{Sender: domain.SenderAgent, Content: "Depends on the region."},
		},
		LastText: "to Portugal",
		Behavior: 85,
		Tier:     domain.TierHot,
	}

	prompt := b.Prompt()
	for _, want := range []string{
		"Customer: how much is shipping?",
		"Agent: Depends on the region.",
		"Score 85/100",
		`"to Portugal"`,
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestSystemInstructionsFeedbackBlock(t *testing.T) {
	cfg := &domain.ModelConfig{
		SystemInstructions: "You are a sales assistant for Acme.",
		FeedbackEnabled:    true,
		Language:           domain.LanguageConfig{Primary: "es", CulturalNotes: "use usted with new customers"},
	}

	got := SystemInstructions(cfg)
	for _, want := range []string{
		"You are a sales assistant for Acme.",
		"Avoid canned support phrasing",
		"contractions",
		"Reply in es",
		"use usted with new customers",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("system instructions missing %q", want)
		}
	}

	cfg.FeedbackEnabled = false
	if strings.Contains(SystemInstructions(cfg), "Style constraints") {
		t.Error("style constraints must only appear when feedback learning is on")
	}
}
