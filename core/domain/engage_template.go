package domain

import (
	"time"

	"github.com/google/uuid"
)

// TemplateScope determines who owns and can edit a success template.
type TemplateScope string

const (
	TemplateScopeGlobal TemplateScope = "global"
	TemplateScopeTenant TemplateScope = "tenant"
)

// SuccessTemplate is a curated, human-authored response tied to match
// patterns, language and industry. Global templates are authored by the
// platform operator; tenant templates by a tenant admin.
type SuccessTemplate struct {
	ID       int64         `json:"id"`
	Scope    TemplateScope `json:"scope"`
	TenantID *uuid.UUID    `json:"tenant_id,omitempty"` // nil for global templates

	Category string  `json:"category"`
	Industry *string `json:"industry,omitempty"` // nil = applies to any industry
	Language string  `json:"language"`

	IsActive      bool `json:"is_active"`
	IsRecommended bool `json:"is_recommended"`
	Priority      int  `json:"priority"`

	// MatchPatterns are literal substrings tested against the customer
	// message. MessageExamples feed the fuzzy token fallback.
	MatchPatterns   []string `json:"match_patterns"`
	MessageExamples []string `json:"message_examples"`

	ResponseText string            `json:"response_text"`
	Variants     map[string]string `json:"variants,omitempty"` // language code -> localized response

	UsageCount int `json:"usage_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ResponseFor returns the localized variant for lang, falling back to the
// canonical response text.
func (t *SuccessTemplate) ResponseFor(lang string) string {
	if v, ok := t.Variants[lang]; ok && v != "" {
		return v
	}
	return t.ResponseText
}

// AppliesTo reports whether the template targets the given industry.
func (t *SuccessTemplate) AppliesTo(industry string) bool {
	return t.Industry == nil || *t.Industry == industry
}

// Substitution is a tenant-local literal find/replace applied to a
// personalized response.
type Substitution struct {
	Find    string `json:"find"`
	Replace string `json:"replace"`
}

// TemplateBinding is a tenant's enablement and customization of one
// template. The matcher iterates bindings, never raw templates.
type TemplateBinding struct {
	ID         int64     `json:"id"`
	TenantID   uuid.UUID `json:"tenant_id"`
	TemplateID int64     `json:"template_id"`

	Enabled   bool `json:"enabled"`
	Preferred bool `json:"preferred"` // forces first consideration
	Priority  int  `json:"priority"`  // tenant-local override

	Substitutions []Substitution `json:"substitutions,omitempty"`
	Prefix        string         `json:"prefix,omitempty"`
	Suffix        string         `json:"suffix,omitempty"`

	UsageCount int        `json:"usage_count"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
