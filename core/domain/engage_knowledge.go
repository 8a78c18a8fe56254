package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product is one catalog entry offered to the generation context.
type Product struct {
	ID          int64     `json:"id"`
	TenantID    uuid.UUID `json:"tenant_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price"`
	Currency    string    `json:"currency,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// FAQ is a curated question/answer pair. UsageCount orders FAQs inside the
// assembled context, most used first.
type FAQ struct {
	ID         int64     `json:"id"`
	TenantID   uuid.UUID `json:"tenant_id"`
	Question   string    `json:"question"`
	Answer     string    `json:"answer"`
	UsageCount int       `json:"usage_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// TrainingMaterial is free-form tenant text (pitch decks, product notes,
// tone guides) included in the generation context.
type TrainingMaterial struct {
	ID        int64     `json:"id"`
	TenantID  uuid.UUID `json:"tenant_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
