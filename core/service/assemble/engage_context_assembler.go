// Package assemble builds the weighted generation context used when no
// template matches, and invokes the external generation API.
package assemble

import (
	"context"
	"fmt"
	"math"
	"strings"

	"engage_server/core/domain"
	"engage_server/core/port/out"
	"engage_server/core/service/textscore"

	"github.com/google/uuid"
)

// DefaultMaxItems is the per-source item budget before weighting.
const DefaultMaxItems = 20

// Bundle is the assembled context for one generation call.
type Bundle struct {
	Products  []*domain.Product
	FAQs      []*domain.FAQ
	Training  []*domain.TrainingMaterial
	Patterns  []*domain.Pattern
	Turns     []domain.Turn
	LastText  string
	Behavior  int
	Tier      domain.EngagementTier
}

// Assembler slices tenant knowledge by the model config's weights.
type Assembler struct {
	catalog  out.CatalogRepository
	patterns out.PatternRepository
	maxItems int
}

// NewAssembler creates an Assembler with the default item budget.
func NewAssembler(catalog out.CatalogRepository, patterns out.PatternRepository) *Assembler {
	return &Assembler{catalog: catalog, patterns: patterns, maxItems: DefaultMaxItems}
}

// Assemble loads floor(maxItems*weight) entries per source: products,
// training materials, FAQs by usage descending, patterns by effectiveness
// descending. The conversation turns and behavior score pass through whole.
func (a *Assembler) Assemble(ctx context.Context, tenantID uuid.UUID, cfg *domain.ModelConfig, turns []domain.Turn, lastText string, behavior int) (*Bundle, error) {
	b := &Bundle{
		Turns:    turns,
		LastText: lastText,
		Behavior: behavior,
		Tier:     domain.TierForScore(behavior),
	}

	var err error
	if n := weighted(a.maxItems, cfg.Weights.ProductCatalog); n > 0 {
		if b.Products, err = a.catalog.ListActiveProducts(ctx, tenantID, n); err != nil {
			return nil, err
		}
	}
	if n := weighted(a.maxItems, cfg.Weights.TrainingMaterials); n > 0 {
		if b.Training, err = a.catalog.ListTrainingMaterials(ctx, tenantID, n); err != nil {
			return nil, err
		}
	}
	if n := weighted(a.maxItems, cfg.Weights.FAQ); n > 0 {
		if b.FAQs, err = a.catalog.ListFAQs(ctx, tenantID, n); err != nil {
			return nil, err
		}
	}
	if n := weighted(a.maxItems, cfg.Weights.SuccessPatterns); n > 0 {
		if b.Patterns, err = a.patterns.ListTopEffective(ctx, tenantID, n); err != nil {
			return nil, err
		}
	}

	return b, nil
}

func weighted(maxItems int, weight float64) int {
	if weight <= 0 {
		return 0
	}
	if weight > 1 {
		weight = 1
	}
	return int(math.Floor(float64(maxItems) * weight))
}

// Prompt renders the bundle into the user-side prompt text.
func (b *Bundle) Prompt() string {
	var sb strings.Builder

	if len(b.Products) > 0 {
		sb.WriteString("## Products\n")
		for _, p := range b.Products {
			fmt.Fprintf(&sb, "- %s (%.2f %s): %s\n", p.Name, p.Price, p.Currency, p.Description)
		}
		sb.WriteString("\n")
	}
	if len(b.FAQs) > 0 {
		sb.WriteString("## Frequently asked\n")
		for _, f := range b.FAQs {
			fmt.Fprintf(&sb, "Q: %s\nA: %s\n", f.Question, f.Answer)
		}
		sb.WriteString("\n")
	}
	if len(b.Training) > 0 {
		sb.WriteString("## Company notes\n")
		for _, tm := range b.Training {
			fmt.Fprintf(&sb, "### %s\n%s\n", tm.Title, tm.Content)
		}
		sb.WriteString("\n")
	}
	if len(b.Patterns) > 0 {
		sb.WriteString("## Approaches that closed deals before\n")
		for _, p := range b.Patterns {
			fmt.Fprintf(&sb, "- [%s] %s\n", p.Category, p.Summary)
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "## Customer engagement\nScore %d/100 (%s lead).\n\n", b.Behavior, b.Tier)

	if len(b.Turns) > 0 {
		sb.WriteString("## Conversation so far\n")
		for _, t := range b.Turns {
			role := "Customer"
			if t.Sender == domain.SenderAgent {
				role = "Agent"
			}
			fmt.Fprintf(&sb, "%s: %s\n", role, t.Content)
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "The customer just said: %q\nWrite the agent's next reply.", b.LastText)
	return sb.String()
}

// SystemInstructions builds the system block for one generation call. When
// feedback learning is enabled it appends the style constraints learned
// from agent behavior, plus any tenant cultural notes.
func SystemInstructions(cfg *domain.ModelConfig) string {
	var sb strings.Builder
	sb.WriteString(cfg.SystemInstructions)

	if cfg.ResponseStyle != "" {
		fmt.Fprintf(&sb, "\n\nRespond in a %s style.", cfg.ResponseStyle)
	}

	if cfg.FeedbackEnabled {
		sb.WriteString("\n\nStyle constraints:\n")
		sb.WriteString("- Avoid canned support phrasing such as: ")
		sb.WriteString(strings.Join(textscore.RoboticPhrases, "; "))
		sb.WriteString("\n- Prefer contractions and a casual, human tone.\n")
		sb.WriteString("- Match the customer's tone and energy.\n")
	}

	if cfg.Language.Primary != "" {
		fmt.Fprintf(&sb, "\nReply in %s unless the customer writes in another language.", cfg.Language.Primary)
	}
	if cfg.Language.CulturalNotes != "" {
		fmt.Fprintf(&sb, "\nLocalization notes: %s", cfg.Language.CulturalNotes)
	}

	return sb.String()
}
