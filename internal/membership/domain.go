// internal/membership/domain.go
package membership

import (
	"errors"

	"librekeep/internal/models"
)

// Membership failures surfaced to the HTTP layer.
var (
	ErrValidation         = errors.New("membership: validation failed")
	ErrNotFound           = errors.New("membership: member not found")
	ErrInvalidCredentials = errors.New("membership: invalid credentials")
	ErrOpenLoans          = errors.New("membership: member has borrowed books")
	ErrRateLimited        = errors.New("membership: too many requests")
)

// RegisterParams is the self-service registration payload.
type RegisterParams struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

// UpdateProfileParams patches the member's own contact details. Nil fields
// are left untouched.
type UpdateProfileParams struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

// UpdateMemberParams is the staff-side patch, which can also toggle the
// account's active flag.
type UpdateMemberParams struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
	IsActive *bool   `json:"isActive"`
}

// Session is the result of a successful registration or login.
type Session struct {
	Token  string
	Member *models.Member
}
