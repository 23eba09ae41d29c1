// internal/identity/implementation.go
package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/time/rate"

	"librekeep/internal/models"
	"librekeep/internal/store"
)

// AdminConfig holds the out-of-band admin credentials. The admin identity
// never touches the librarians collection and its password is compared by
// direct equality.
type AdminConfig struct {
	Username string
	Password string
}

// service implements the Service interface.
type service struct {
	librarians   store.Librarians
	admin        AdminConfig
	tokens       *TokenIssuer
	loginLimiter *rate.Limiter
}

// NewService creates a new identity service instance.
func NewService(librarians store.Librarians, admin AdminConfig, tokens *TokenIssuer) Service {
	return &service{
		librarians:   librarians,
		admin:        admin,
		tokens:       tokens,
		loginLimiter: rate.NewLimiter(rate.Every(time.Second), 10),
	}
}

// Login authenticates the admin first, then an active librarian, and issues
// a session token on success.
func (s *service) Login(ctx context.Context, username, password string) (string, *Principal, error) {
	if !s.loginLimiter.Allow() {
		return "", nil, ErrRateLimited
	}
	if username == "" || password == "" {
		return "", nil, fmt.Errorf("%w: username and password are required", ErrValidation)
	}

	if s.admin.Username != "" && username == s.admin.Username {
		if password != s.admin.Password {
			return "", nil, ErrInvalidCredentials
		}
		p := adminPrincipal(s.admin.Username)
		token, err := s.tokens.Issue(p.ID, p.Username, p.Role, p.Name)
		if err != nil {
			return "", nil, err
		}
		return token, p, nil
	}

	lib, err := s.librarians.FindByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, fmt.Errorf("look up librarian: %w", err)
	}
	if !lib.IsActive {
		return "", nil, ErrAccountDeactivated
	}

	ok, err := VerifyPassword(password, lib.PasswordSalt, lib.PasswordHash)
	if err != nil {
		return "", nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return "", nil, ErrInvalidCredentials
	}

	p := librarianPrincipal(lib)
	token, err := s.tokens.Issue(p.ID, p.Username, p.Role, p.Name)
	if err != nil {
		return "", nil, err
	}
	return token, p, nil
}

func (s *service) VerifyToken(token string) (*Claims, error) {
	return s.tokens.Verify(token)
}

func (s *service) CreateLibrarian(ctx context.Context, p CreateLibrarianParams, createdBy string) (*models.Librarian, error) {
	if p.Username == "" || p.Password == "" || p.Name == "" || p.Email == "" {
		return nil, fmt.Errorf("%w: all fields are required", ErrValidation)
	}

	existing, err := s.librarians.FindByUsernameOrEmail(ctx, p.Username, p.Email)
	if err == nil {
		if existing.Username == p.Username {
			return nil, fmt.Errorf("%w: username already exists", ErrValidation)
		}
		return nil, fmt.Errorf("%w: email already exists", ErrValidation)
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("check existing librarian: %w", err)
	}

	hash, salt, err := HashPassword(p.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	lib := &models.Librarian{
		Username:     p.Username,
		PasswordHash: hash,
		PasswordSalt: salt,
		Name:         p.Name,
		Email:        p.Email,
		Role:         models.RoleLibrarian,
		IsActive:     true,
		CreatedBy:    createdBy,
		CreatedAt:    time.Now(),
	}
	if _, err := s.librarians.Insert(ctx, lib); err != nil {
		return nil, fmt.Errorf("create librarian: %w", err)
	}
	return lib, nil
}

func (s *service) GetLibrarian(ctx context.Context, id primitive.ObjectID) (*models.Librarian, error) {
	lib, err := s.librarians.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get librarian: %w", err)
	}
	return lib, nil
}

func (s *service) ListLibrarians(ctx context.Context) ([]models.Librarian, error) {
	return s.librarians.List(ctx)
}

func (s *service) UpdateLibrarian(ctx context.Context, id primitive.ObjectID, p UpdateLibrarianParams) (*models.Librarian, error) {
	lib, err := s.librarians.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get librarian: %w", err)
	}

	if p.Name != nil && *p.Name != "" {
		lib.Name = *p.Name
	}
	if p.Email != nil && *p.Email != "" {
		lib.Email = *p.Email
	}
	if p.IsActive != nil {
		lib.IsActive = *p.IsActive
	}
	if p.Password != nil && *p.Password != "" {
		hash, salt, err := HashPassword(*p.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		lib.PasswordHash = hash
		lib.PasswordSalt = salt
	}

	if err := s.librarians.Update(ctx, lib); err != nil {
		return nil, fmt.Errorf("update librarian: %w", err)
	}
	return lib, nil
}

func (s *service) DeleteLibrarian(ctx context.Context, id primitive.ObjectID) error {
	err := s.librarians.Delete(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete librarian: %w", err)
	}
	return nil
}

// ChangePassword re-hashes the caller's own password after verifying the
// current one. The admin identity is refused here: its password lives in the
// environment configuration.
func (s *service) ChangePassword(ctx context.Context, claims *Claims, currentPassword, newPassword string) error {
	if currentPassword == "" || newPassword == "" {
		return fmt.Errorf("%w: current and new password are required", ErrValidation)
	}
	if claims.Role == models.RoleAdmin && claims.UserID == AdminID {
		return fmt.Errorf("%w: admin password must be changed in the environment configuration", ErrValidation)
	}

	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return fmt.Errorf("%w: invalid account id", ErrValidation)
	}
	lib, err := s.librarians.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get librarian: %w", err)
	}

	ok, err := VerifyPassword(currentPassword, lib.PasswordSalt, lib.PasswordHash)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return ErrInvalidCredentials
	}

	hash, salt, err := HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	lib.PasswordHash = hash
	lib.PasswordSalt = salt

	if err := s.librarians.Update(ctx, lib); err != nil {
		return fmt.Errorf("update librarian: %w", err)
	}
	return nil
}
