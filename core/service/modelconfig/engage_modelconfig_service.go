// Package modelconfig manages versioned generation configurations.
package modelconfig

import (
	"context"

	"engage_server/core/domain"
	"engage_server/core/port/out"
	"engage_server/pkg/apperr"
)

// Service handles model config business logic.
type Service struct {
	configs out.ModelConfigRepository
}

// NewService creates a new model config Service.
func NewService(configs out.ModelConfigRepository) *Service {
	return &Service{configs: configs}
}

// CreateRequest describes a new configuration version. The new version is
// inactive until explicitly activated.
type CreateRequest struct {
	SystemInstructions string  `json:"system_instructions"`
	ResponseStyle      string  `json:"response_style"`
	Temperature        float64 `json:"temperature"`
	MaxLength          int     `json:"max_length"`

	Language domain.LanguageConfig  `json:"language"`
	Weights  *domain.ContextWeights `json:"weights,omitempty"`

	FeedbackEnabled     bool    `json:"feedback_enabled"`
	FeedbackTargetScore float64 `json:"feedback_target_score"`
	LearningRate        float64 `json:"learning_rate"`
}

// Create stores a new configuration version for the tenant.
func (s *Service) Create(ctx context.Context, user domain.AuthUser, req *CreateRequest) (*domain.ModelConfig, error) {
	if !user.CanManageTenant() {
		return nil, apperr.Forbidden("")
	}
	if req.Temperature < 0 || req.Temperature > 2 {
		return nil, apperr.ValidationFailed("temperature must be in [0,2]")
	}
	if req.LearningRate < 0 || req.LearningRate > 1 {
		return nil, apperr.ValidationFailed("learning_rate must be in [0,1]")
	}

	weights := domain.DefaultContextWeights()
	if req.Weights != nil {
		weights = *req.Weights
	}
	for _, w := range []float64{weights.ProductCatalog, weights.FAQ, weights.TrainingMaterials, weights.SuccessPatterns} {
		if w < 0 || w > 1 {
			return nil, apperr.ValidationFailed("context weights must be in [0,1]")
		}
	}

	language := req.Language
	if language.Primary == "" {
		language.Primary = "en"
	}
	maxLength := req.MaxLength
	if maxLength <= 0 {
		maxLength = 500
	}

	cfg := &domain.ModelConfig{
		TenantID:            user.TenantID,
		IsActive:            false,
		SystemInstructions:  req.SystemInstructions,
		ResponseStyle:       req.ResponseStyle,
		Temperature:         req.Temperature,
		MaxLength:           maxLength,
		Language:            language,
		Weights:             weights,
		FeedbackEnabled:     req.FeedbackEnabled,
		FeedbackTargetScore: req.FeedbackTargetScore,
		LearningRate:        req.LearningRate,
	}
	if err := s.configs.Create(ctx, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Activate makes the given version the tenant's single active config.
func (s *Service) Activate(ctx context.Context, user domain.AuthUser, id int64) (*domain.ModelConfig, error) {
	if !user.CanManageTenant() {
		return nil, apperr.Forbidden("")
	}

	cfg, err := s.configs.GetByID(ctx, user.TenantID, id)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, apperr.NotFound("model config")
	}

	if err := s.configs.Activate(ctx, user.TenantID, id); err != nil {
		return nil, err
	}
	cfg.IsActive = true
	return cfg, nil
}

// GetActive returns the tenant's currently active config.
func (s *Service) GetActive(ctx context.Context, user domain.AuthUser) (*domain.ModelConfig, error) {
	cfg, err := s.configs.GetActive(ctx, user.TenantID)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, apperr.NotFound("active model config")
	}
	return cfg, nil
}

// List returns every config version of the tenant.
func (s *Service) List(ctx context.Context, user domain.AuthUser) ([]*domain.ModelConfig, error) {
	return s.configs.List(ctx, user.TenantID)
}
