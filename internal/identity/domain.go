// internal/identity/domain.go
package identity

import (
	"errors"

	"librekeep/internal/models"
)

// Authentication and account-management failures surfaced to callers. The
// HTTP layer maps each to a status code; none are retried.
var (
	ErrInvalidCredentials = errors.New("identity: invalid credentials")
	ErrAccountDeactivated = errors.New("identity: account is deactivated")
	ErrValidation         = errors.New("identity: validation failed")
	ErrNotFound           = errors.New("identity: not found")
	ErrRateLimited        = errors.New("identity: too many requests")
)

// PrincipalKind tags the variant of an authenticated principal.
type PrincipalKind int

const (
	KindAdmin PrincipalKind = iota
	KindLibrarian
	KindMember
)

// Principal is an authenticated identity. Admin is implicit: its credentials
// live in the environment and it has no database row, so its ID is the fixed
// string "admin".
type Principal struct {
	Kind     PrincipalKind `json:"-"`
	ID       string        `json:"id"`
	Username string        `json:"username"`
	Name     string        `json:"name"`
	Email    string        `json:"email,omitempty"`
	Role     string        `json:"role"`
}

// AdminID is the synthetic id carried by admin session tokens.
const AdminID = "admin"

func adminPrincipal(username string) *Principal {
	return &Principal{
		Kind:     KindAdmin,
		ID:       AdminID,
		Username: username,
		Name:     "Administrator",
		Role:     models.RoleAdmin,
	}
}

func librarianPrincipal(l *models.Librarian) *Principal {
	return &Principal{
		Kind:     KindLibrarian,
		ID:       l.ID.Hex(),
		Username: l.Username,
		Name:     l.Name,
		Email:    l.Email,
		Role:     l.Role,
	}
}
