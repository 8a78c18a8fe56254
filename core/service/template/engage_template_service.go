// Package template handles success-template and binding authoring.
package template

import (
	"context"
	"strings"

	"engage_server/core/domain"
	"engage_server/core/port/out"
	"engage_server/pkg/apperr"
)

// Service handles template business logic.
type Service struct {
	templates out.TemplateRepository
	bindings  out.BindingRepository
}

// NewService creates a new template Service.
func NewService(templates out.TemplateRepository, bindings out.BindingRepository) *Service {
	return &Service{templates: templates, bindings: bindings}
}

// CreateTemplateRequest represents the request to create a template.
type CreateTemplateRequest struct {
	Scope           domain.TemplateScope `json:"scope"`
	Category        string               `json:"category"`
	Industry        *string              `json:"industry,omitempty"`
	Language        string               `json:"language"`
	Priority        int                  `json:"priority"`
	IsRecommended   bool                 `json:"is_recommended"`
	MatchPatterns   []string             `json:"match_patterns"`
	MessageExamples []string             `json:"message_examples,omitempty"`
	ResponseText    string               `json:"response_text"`
	Variants        map[string]string    `json:"variants,omitempty"`
}

// Create creates a new success template. Global scope requires the
// platform operator role; anything else is stored tenant-scoped.
func (s *Service) Create(ctx context.Context, user domain.AuthUser, req *CreateTemplateRequest) (*domain.SuccessTemplate, error) {
	if !user.CanManageTenant() {
		return nil, apperr.Forbidden("")
	}
	if strings.TrimSpace(req.ResponseText) == "" {
		return nil, apperr.MissingField("response_text")
	}
	if len(req.MatchPatterns) == 0 && len(req.MessageExamples) == 0 {
		return nil, apperr.ValidationFailed("at least one match pattern or message example is required")
	}

	language := req.Language
	if language == "" {
		language = "en"
	}

	t := &domain.SuccessTemplate{
		Scope:           domain.TemplateScopeTenant,
		Category:        req.Category,
		Industry:        req.Industry,
		Language:        language,
		IsActive:        true,
		IsRecommended:   req.IsRecommended,
		Priority:        req.Priority,
		MatchPatterns:   req.MatchPatterns,
		MessageExamples: req.MessageExamples,
		ResponseText:    req.ResponseText,
		Variants:        req.Variants,
	}

	if req.Scope == domain.TemplateScopeGlobal {
		if !user.CanAuthorGlobal() {
			return nil, apperr.Forbidden("global templates require the operator role")
		}
		t.Scope = domain.TemplateScopeGlobal
	} else {
		tenantID := user.TenantID
		t.TenantID = &tenantID
	}

	if err := s.templates.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// UpdateTemplateRequest represents the request to update a template.
type UpdateTemplateRequest struct {
	Category        *string            `json:"category,omitempty"`
	Industry        *string            `json:"industry,omitempty"`
	IsActive        *bool              `json:"is_active,omitempty"`
	IsRecommended   *bool              `json:"is_recommended,omitempty"`
	Priority        *int               `json:"priority,omitempty"`
	MatchPatterns   *[]string          `json:"match_patterns,omitempty"`
	MessageExamples *[]string          `json:"message_examples,omitempty"`
	ResponseText    *string            `json:"response_text,omitempty"`
	Variants        *map[string]string `json:"variants,omitempty"`
}

// Update updates a template the user is allowed to edit.
func (s *Service) Update(ctx context.Context, user domain.AuthUser, id int64, req *UpdateTemplateRequest) (*domain.SuccessTemplate, error) {
	t, err := s.templates.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, apperr.NotFound("template")
	}

	if t.Scope == domain.TemplateScopeGlobal {
		if !user.CanAuthorGlobal() {
			return nil, apperr.Forbidden("global templates require the operator role")
		}
	} else if t.TenantID == nil || *t.TenantID != user.TenantID || !user.CanManageTenant() {
		return nil, apperr.NotFound("template")
	}

	if req.Category != nil {
		t.Category = *req.Category
	}
	if req.Industry != nil {
		t.Industry = req.Industry
	}
	if req.IsActive != nil {
		t.IsActive = *req.IsActive
	}
	if req.IsRecommended != nil {
		t.IsRecommended = *req.IsRecommended
	}
	if req.Priority != nil {
		t.Priority = *req.Priority
	}
	if req.MatchPatterns != nil {
		t.MatchPatterns = *req.MatchPatterns
	}
	if req.MessageExamples != nil {
		t.MessageExamples = *req.MessageExamples
	}
	if req.ResponseText != nil {
		t.ResponseText = *req.ResponseText
	}
	if req.Variants != nil {
		t.Variants = *req.Variants
	}

	if err := s.templates.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// ListVisible lists templates the tenant can see and bind.
func (s *Service) ListVisible(ctx context.Context, user domain.AuthUser, filter *out.TemplateFilter) ([]*domain.SuccessTemplate, error) {
	return s.templates.ListVisible(ctx, user.TenantID, filter)
}

// BindRequest enables or customizes a template for the tenant.
type BindRequest struct {
	TemplateID    int64                 `json:"template_id"`
	Enabled       bool                  `json:"enabled"`
	Preferred     bool                  `json:"preferred"`
	Priority      int                   `json:"priority"`
	Substitutions []domain.Substitution `json:"substitutions,omitempty"`
	Prefix        string                `json:"prefix,omitempty"`
	Suffix        string                `json:"suffix,omitempty"`
}

// Bind creates a tenant binding for a template. A binding may only
// reference the tenant's own templates or global ones.
func (s *Service) Bind(ctx context.Context, user domain.AuthUser, req *BindRequest) (*domain.TemplateBinding, error) {
	if !user.CanManageTenant() {
		return nil, apperr.Forbidden("")
	}

	t, err := s.templates.GetByID(ctx, req.TemplateID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, apperr.NotFound("template")
	}
	if t.Scope != domain.TemplateScopeGlobal && (t.TenantID == nil || *t.TenantID != user.TenantID) {
		return nil, apperr.NotFound("template")
	}

	b := &domain.TemplateBinding{
		TenantID:      user.TenantID,
		TemplateID:    req.TemplateID,
		Enabled:       req.Enabled,
		Preferred:     req.Preferred,
		Priority:      req.Priority,
		Substitutions: req.Substitutions,
		Prefix:        req.Prefix,
		Suffix:        req.Suffix,
	}
	if err := s.bindings.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// UpdateBindingRequest updates binding customization.
type UpdateBindingRequest struct {
	Enabled       *bool                  `json:"enabled,omitempty"`
	Preferred     *bool                  `json:"preferred,omitempty"`
	Priority      *int                   `json:"priority,omitempty"`
	Substitutions *[]domain.Substitution `json:"substitutions,omitempty"`
	Prefix        *string                `json:"prefix,omitempty"`
	Suffix        *string                `json:"suffix,omitempty"`
}

// UpdateBinding updates a tenant's binding.
func (s *Service) UpdateBinding(ctx context.Context, user domain.AuthUser, id int64, req *UpdateBindingRequest) (*domain.TemplateBinding, error) {
	if !user.CanManageTenant() {
		return nil, apperr.Forbidden("")
	}

	b, err := s.bindings.GetByID(ctx, user.TenantID, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, apperr.NotFound("binding")
	}

	if req.Enabled != nil {
		b.Enabled = *req.Enabled
	}
	if req.Preferred != nil {
		b.Preferred = *req.Preferred
	}
	if req.Priority != nil {
		b.Priority = *req.Priority
	}
	if req.Substitutions != nil {
		b.Substitutions = *req.Substitutions
	}
	if req.Prefix != nil {
		b.Prefix = *req.Prefix
	}
	if req.Suffix != nil {
		b.Suffix = *req.Suffix
	}

	if err := s.bindings.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// ListBindings lists the tenant's bindings.
func (s *Service) ListBindings(ctx context.Context, user domain.AuthUser) ([]*domain.TemplateBinding, error) {
	return s.bindings.List(ctx, user.TenantID)
}
