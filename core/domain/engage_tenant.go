package domain

import (
	"time"

	"github.com/google/uuid"
)

// TenantProfile is the slice of tenant identity this engine reads: the
// company name injected into template placeholders and the industry tag
// used to filter templates.
type TenantProfile struct {
	ID          uuid.UUID `json:"id"`
	CompanyName string    `json:"company_name"`
	Industry    *string   `json:"industry,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
