// internal/identity/service.go
package identity

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"librekeep/internal/models"
)

// CreateLibrarianParams carries the fields for a new staff account.
type CreateLibrarianParams struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

// UpdateLibrarianParams carries optional field updates; nil means unchanged.
type UpdateLibrarianParams struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	IsActive *bool   `json:"isActive"`
	Password *string `json:"password"`
}

// Service is the staff side of Identity & Access: admin/librarian
// authentication, session tokens, and librarian account management.
type Service interface {
	Login(ctx context.Context, username, password string) (string, *Principal, error)
	VerifyToken(token string) (*Claims, error)
	CreateLibrarian(ctx context.Context, p CreateLibrarianParams, createdBy string) (*models.Librarian, error)
	GetLibrarian(ctx context.Context, id primitive.ObjectID) (*models.Librarian, error)
	ListLibrarians(ctx context.Context) ([]models.Librarian, error)
	UpdateLibrarian(ctx context.Context, id primitive.ObjectID, p UpdateLibrarianParams) (*models.Librarian, error)
	DeleteLibrarian(ctx context.Context, id primitive.ObjectID) error
	ChangePassword(ctx context.Context, claims *Claims, currentPassword, newPassword string) error
}
