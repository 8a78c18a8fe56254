package domain

import "github.com/google/uuid"

// Role is the calling user's role within their tenant.
type Role string

const (
	RoleOperator Role = "operator" // platform operator, may author global templates
	RoleAdmin    Role = "admin"    // tenant admin
	RoleAgent    Role = "agent"
)

// AuthUser is the authorization context supplied with every request. This
// service trusts it and performs no authentication of its own.
type AuthUser struct {
	ID       uuid.UUID `json:"id"`
	TenantID uuid.UUID `json:"tenant_id"`
	Role     Role      `json:"role"`
}

// CanAuthorGlobal reports whether the user may create or edit global
// templates.
func (u AuthUser) CanAuthorGlobal() bool {
	return u.Role == RoleOperator
}

// CanManageTenant reports whether the user may manage tenant-scoped
// resources (templates, bindings, model configs).
func (u AuthUser) CanManageTenant() bool {
	return u.Role == RoleOperator || u.Role == RoleAdmin
}
