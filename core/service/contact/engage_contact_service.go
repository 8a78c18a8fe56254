// Package contact manages customer contacts and their engagement state.
package contact

import (
	"context"
	"strings"

	"engage_server/core/domain"
	"engage_server/core/port/out"
	"engage_server/pkg/apperr"
)

// Service handles contact business logic.
type Service struct {
	contacts out.ContactRepository
}

// NewService creates a contact Service.
func NewService(contacts out.ContactRepository) *Service {
	return &Service{contacts: contacts}
}

// CreateRequest describes a new contact.
type CreateRequest struct {
	Name     string `json:"name"`
	Phone    string `json:"phone,omitempty"`
	Email    string `json:"email,omitempty"`
	Language string `json:"language,omitempty"`
}

// Create stores a new contact. New contacts start at the neutral
// behavior score.
func (s *Service) Create(ctx context.Context, user domain.AuthUser, req *CreateRequest) (*domain.Contact, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, apperr.MissingField("name")
	}

	c := &domain.Contact{
		TenantID: user.TenantID,
		Name:     req.Name,
		Phone:    req.Phone,
		Email:    req.Email,
		Language: req.Language,
	}
	if err := s.contacts.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Get returns one contact of the caller's tenant.
func (s *Service) Get(ctx context.Context, user domain.AuthUser, id int64) (*domain.Contact, error) {
	c, err := s.contacts.GetByID(ctx, user.TenantID, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperr.NotFound("contact")
	}
	return c, nil
}

// List returns the tenant's contacts, most recently active first.
func (s *Service) List(ctx context.Context, user domain.AuthUser, limit, offset int) ([]*domain.Contact, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.contacts.List(ctx, user.TenantID, limit, offset)
}
