package models

type UserRole string

const (
	RoleStudent          UserRole = "student"
	RoleInstitutionAdmin UserRole = "institution_admin"
	RoleAdmin            UserRole = "admin"
)

// Identity is what the external auth backend tells us about the caller.
type Identity struct {
	UserID        string   `json:"user_id"`
	Email         string   `json:"email"`
	Role          UserRole `json:"role"`
	InstitutionID string   `json:"institution_id,omitempty"`
}
