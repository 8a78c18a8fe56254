// Package suggestion orchestrates the response decision pipeline: template
// match first, weighted generative fallback second.
package suggestion

import (
	"context"
	"errors"

	"engage_server/core/domain"
	"engage_server/core/port/out"
	"engage_server/core/service/assemble"
	"engage_server/core/service/match"
	"engage_server/core/service/textscore"
	"engage_server/pkg/apperr"
	"engage_server/pkg/logger"

	"github.com/google/uuid"
)

// turnWindow is how many recent messages feed matching, language detection
// and the generation context.
const turnWindow = 10

var errNoGenerator = errors.New("generation client not configured")

// Service produces suggestions for agents.
type Service struct {
	matcher       *match.Matcher
	assembler     *assemble.Assembler
	generator     out.Generator
	conversations out.ConversationRepository
	contacts      out.ContactRepository
	templates     out.TemplateRepository
	bindings      out.BindingRepository
	suggestions   out.SuggestionRepository
	configs       out.ModelConfigRepository
	tenants       out.TenantRepository
}

// NewService wires the suggestion pipeline.
func NewService(
	matcher *match.Matcher,
	assembler *assemble.Assembler,
	generator out.Generator,
	conversations out.ConversationRepository,
	contacts out.ContactRepository,
	templates out.TemplateRepository,
	bindings out.BindingRepository,
	suggestions out.SuggestionRepository,
	configs out.ModelConfigRepository,
	tenants out.TenantRepository,
) *Service {
	return &Service{
		matcher:       matcher,
		assembler:     assembler,
		generator:     generator,
		conversations: conversations,
		contacts:      contacts,
		templates:     templates,
		bindings:      bindings,
		suggestions:   suggestions,
		configs:       configs,
		tenants:       tenants,
	}
}

// Suggest produces the next-reply suggestion for a conversation. A matched
// template short-circuits generation; otherwise the weighted context is
// assembled and the generation API invoked once.
func (s *Service) Suggest(ctx context.Context, user domain.AuthUser, conversationID int64) (*domain.Suggestion, error) {
	conv, err := s.conversations.GetByID(ctx, user.TenantID, conversationID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, apperr.NotFound("conversation")
	}

	contact, err := s.contacts.GetByID(ctx, user.TenantID, conv.ContactID)
	if err != nil {
		return nil, err
	}
	if contact == nil {
		return nil, apperr.NotFound("contact")
	}

	messages, err := s.conversations.RecentMessages(ctx, conversationID, turnWindow)
	if err != nil {
		return nil, err
	}

	turns := make([]domain.Turn, 0, len(messages))
	var customerTexts []string
	lastCustomerText := ""
	for _, m := range messages {
		turns = append(turns, domain.TurnOf(m))
		if m.Sender == domain.SenderContact {
			customerTexts = append(customerTexts, m.Content)
			lastCustomerText = m.Content
		}
	}
	if lastCustomerText == "" {
		return nil, apperr.BadRequest("conversation has no customer message to respond to")
	}

	language := contact.Language
	if language == "" {
		language = textscore.DetectLanguage(customerTexts)
	}

	profile, err := s.tenants.GetProfile(ctx, user.TenantID)
	if err != nil {
		return nil, err
	}
	var industry *string
	companyName := ""
	if profile != nil {
		industry = profile.Industry
		companyName = profile.CompanyName
	}

	cand, err := s.matcher.Match(ctx, user.TenantID, lastCustomerText, language, industry)
	if err != nil {
		return nil, err
	}
	if cand != nil {
		return s.fromTemplate(ctx, user.TenantID, conv, cand, match.PersonalizeInput{
			Language:     language,
			CustomerName: contact.Name,
			CompanyName:  companyName,
		})
	}

	return s.fromGeneration(ctx, user.TenantID, conv, turns, lastCustomerText, contact.BehaviorScore)
}

// fromTemplate renders the matched template and records the single usage
// bump for template and binding.
func (s *Service) fromTemplate(ctx context.Context, tenantID uuid.UUID, conv *domain.Conversation, cand *out.MatchCandidate, in match.PersonalizeInput) (*domain.Suggestion, error) {
	text := match.Personalize(cand.Template, cand.Binding, in)

	sugg := &domain.Suggestion{
		TenantID:       tenantID,
		ConversationID: conv.ID,
		Source:         domain.SourceTemplate,
		Text:           text,
		Provenance: map[string]any{
			"template_id": cand.Template.ID,
			"binding_id":  cand.Binding.ID,
			"language":    in.Language,
		},
	}
	if err := s.suggestions.Create(ctx, sugg); err != nil {
		return nil, err
	}

	// Usage counters move once per issued suggestion, not per render.
	if err := s.templates.IncrementUsage(ctx, cand.Template.ID); err != nil {
		logger.Warn("template usage bump failed: template=%d err=%v", cand.Template.ID, err)
	}
	if err := s.bindings.TouchUsage(ctx, cand.Binding.ID); err != nil {
		logger.Warn("binding usage bump failed: binding=%d err=%v", cand.Binding.ID, err)
	}

	return sugg, nil
}

// fromGeneration assembles the weighted context and invokes the generation
// API once. A failed call surfaces as GenerationUnavailable; no retry.
func (s *Service) fromGeneration(ctx context.Context, tenantID uuid.UUID, conv *domain.Conversation, turns []domain.Turn, lastText string, behavior int) (*domain.Suggestion, error) {
	if s.generator == nil {
		return nil, apperr.GenerationUnavailable(errNoGenerator)
	}

	cfg, err := s.configs.GetActive(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, apperr.ConfigMissing(tenantID.String())
	}

	bundle, err := s.assembler.Assemble(ctx, tenantID, cfg, turns, lastText, behavior)
	if err != nil {
		return nil, err
	}

	text, err := s.generator.Generate(ctx, &out.GenerationRequest{
		SystemInstructions: assemble.SystemInstructions(cfg),
		Prompt:             bundle.Prompt(),
		Temperature:        cfg.Temperature,
		MaxTokens:          cfg.MaxLength,
	})
	if err != nil {
		return nil, apperr.GenerationUnavailable(err)
	}

	sugg := &domain.Suggestion{
		TenantID:       tenantID,
		ConversationID: conv.ID,
		Source:         domain.SourceGenerated,
		Text:           text,
		Provenance: map[string]any{
			"model_config_id": cfg.ID,
			"model_version":   cfg.Version,
		},
	}
	if err := s.suggestions.Create(ctx, sugg); err != nil {
		return nil, err
	}
	return sugg, nil
}
