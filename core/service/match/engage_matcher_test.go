package match

import (
	"context"
	"testing"

	"engage_server/core/domain"
	"engage_server/core/port/out"

	"github.com/google/uuid"
)

// fakeBindingRepo serves a fixed candidate list in the order given,
// mirroring the repository's preferred-first, priority-descending query.
type fakeBindingRepo struct {
	out.BindingRepository
	candidates []*out.MatchCandidate
}

func (f *fakeBindingRepo) ListCandidates(ctx context.Context, tenantID uuid.UUID, language string, industry *string) ([]*out.MatchCandidate, error) {
	return f.candidates, nil
}

func candidate(id int64, preferred bool, priority int, patterns, examples []string) *out.MatchCandidate {
	return &out.MatchCandidate{
		Binding: &domain.TemplateBinding{ID: id, Preferred: preferred, Priority: priority, Enabled: true},
		Template: &domain.SuccessTemplate{
			ID:              id,
			IsActive:        true,
			Language:        "en",
			MatchPatterns:   patterns,
			MessageExamples: examples,
			ResponseText:    "response",
		},
	}
}

func TestMatchRefundScenario(t *testing.T) {
	repo := &fakeBindingRepo{candidates: []*out.MatchCandidate{
		candidate(1, false, 10, []string{"refund"}, nil),
	}}
	m := NewMatcher(repo)

	got, err := m.Match(context.Background(), uuid.New(), "Can I get a refund?", "en", nil)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.Template.ID != 1 {
		t.Fatalf("expected refund template, got %+v", got)
	}
}

func TestMatchFirstCandidateWins(t *testing.T) {
	// Both match "shipping"; candidate order encodes preferred/priority.
	repo := &fakeBindingRepo{candidates: []*out.MatchCandidate{
		candidate(7, true, 1, []string{"shipping"}, nil),
		candidate(8, false, 99, []string{"shipping"}, nil),
	}}
	m := NewMatcher(repo)

	got, err := m.Match(context.Background(), uuid.New(), "how long is shipping?", "en", nil)
	if err != nil {
		t.Fatal(err)
	}
	if got.Template.ID != 7 {
		t.Errorf("preferred binding should win, got template %d", got.Template.ID)
	}
}

func TestMatchDeterministic(t *testing.T) {
	repo := &fakeBindingRepo{candidates: []*out.MatchCandidate{
		candidate(1, false, 5, []string{"discount"}, nil),
		candidate(2, false, 3, []string{"discount", "promo"}, nil),
	}}
	m := NewMatcher(repo)

	var first int64
	for i := 0; i < 5; i++ {
		got, err := m.Match(context.Background(), uuid.New(), "any discount today?", "en", nil)
		if err != nil {
			t.Fatal(err)
		}
		if i == 0 {
			first = got.Template.ID
		} else if got.Template.ID != first {
			t.Fatalf("match not deterministic: run %d returned %d, first returned %d", i, got.Template.ID, first)
		}
	}
}

func TestMatchFuzzyExampleTokens(t *testing.T) {
	repo := &fakeBindingRepo{candidates: []*out.MatchCandidate{
		candidate(3, false, 1, nil, []string{"do you offer installation service"}),
	}}
	m := NewMatcher(repo)

	got, err := m.Match(context.Background(), uuid.New(), "is installation included?", "en", nil)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil {
		t.Fatal("expected fuzzy token match on 'installation'")
	}

	// Tokens of length <= 3 never match.
	got, err = m.Match(context.Background(), uuid.New(), "you do?", "en", nil)
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Fatalf("short tokens should not match, got template %d", got.Template.ID)
	}
}

func TestMatchNoCandidates(t *testing.T) {
	m := NewMatcher(&fakeBindingRepo{})
	got, err := m.Match(context.Background(), uuid.New(), "hello there", "en", nil)
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Fatalf("expected nil (generation fallback), got %+v", got)
	}
}

func TestPersonalize(t *testing.T) {
	tpl := &domain.SuccessTemplate{
		ResponseText: "Hi {customer_name}, thanks for contacting {company_name}! Our Premium plan ships worldwide.",
		Variants:     map[string]string{"es": "Hola {customer_name}, ¡gracias por contactar a {company_name}!"},
	}

	binding := &domain.TemplateBinding{
		Substitutions: []domain.Substitution{{Find: "premium plan", Replace: "Pro plan"}},
		Prefix:        "[Acme] ",
		Suffix:        " Talk soon!",
	}

	got := Personalize(tpl, binding, PersonalizeInput{
		Language:     "en",
		CustomerName: "Dana",
		CompanyName:  "Acme",
	})
	want := "[Acme] Hi Dana, thanks for contacting Acme! Our Pro plan ships worldwide. Talk soon!"
	if got != want {
		t.Errorf("Personalize = %q, want %q", got, want)
	}
}

func TestPersonalizeLocalizedVariant(t *testing.T) {
	tpl := &domain.SuccessTemplate{
		ResponseText: "Hello {customer_name}!",
		Variants:     map[string]string{"es": "¡Hola {customer_name}!"},
	}

	got := Personalize(tpl, &domain.TemplateBinding{}, PersonalizeInput{Language: "es", CustomerName: "Luz"})
	if got != "¡Hola Luz!" {
		t.Errorf("Personalize = %q, want localized variant", got)
	}

	// Unknown language falls back to the canonical text.
	got = Personalize(tpl, &domain.TemplateBinding{}, PersonalizeInput{Language: "fr", CustomerName: "Ana"})
	if got != "Hello Ana!" {
		t.Errorf("Personalize = %q, want canonical fallback", got)
	}
}
