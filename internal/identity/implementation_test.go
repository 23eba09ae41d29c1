// internal/identity/implementation_test.go
package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"librekeep/internal/models"
	"librekeep/internal/store"
)

func setupService(t *testing.T) (Service, store.Librarians) {
	t.Helper()
	st := store.NewMemory()
	svc := NewService(st.Librarians, AdminConfig{
		Username: "admin",
		Password: "env-secret",
	}, NewTokenIssuer("test-secret"))
	return svc, st.Librarians
}

func adminClaims(t *testing.T, svc Service) *Claims {
	t.Helper()
	token, _, err := svc.Login(context.Background(), "admin", "env-secret")
	require.NoError(t, err)
	claims, err := svc.VerifyToken(token)
	require.NoError(t, err)
	return claims
}

func TestAdminLogin(t *testing.T) {
	svc, _ := setupService(t)

	token, principal, err := svc.Login(context.Background(), "admin", "env-secret")
	require.NoError(t, err)
	assert.Equal(t, AdminID, principal.ID)
	assert.Equal(t, models.RoleAdmin, principal.Role)

	claims, err := svc.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, AdminID, claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestAdminLoginWrongPassword(t *testing.T) {
	svc, _ := setupService(t)
	_, _, err := svc.Login(context.Background(), "admin", "guess")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

// The admin username shadows any librarian row with the same name: the env
// comparison runs first and a failed match never falls through to the
// database.
func TestAdminShadowsLibrarianRow(t *testing.T) {
	svc, librarians := setupService(t)
	ctx := context.Background()

	hash, salt, err := HashPassword("row-password")
	require.NoError(t, err)
	_, err = librarians.Insert(ctx, &models.Librarian{
		Username:     "admin",
		PasswordHash: hash,
		PasswordSalt: salt,
		Name:         "Impostor",
		Email:        "impostor@example.com",
		Role:         models.RoleLibrarian,
		IsActive:     true,
	})
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "admin", "row-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLibrarianLogin(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	created, err := svc.CreateLibrarian(ctx, CreateLibrarianParams{
		Username: "jules",
		Password: "bookworm",
		Name:     "Jules",
		Email:    "jules@example.com",
	}, "admin")
	require.NoError(t, err)
	assert.Equal(t, models.RoleLibrarian, created.Role)
	assert.True(t, created.IsActive)

	token, principal, err := svc.Login(ctx, "jules", "bookworm")
	require.NoError(t, err)
	assert.Equal(t, created.ID.Hex(), principal.ID)
	assert.Equal(t, models.RoleLibrarian, principal.Role)

	claims, err := svc.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "jules", claims.Username)

	_, _, err = svc.Login(ctx, "jules", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "nobody", "bookworm")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestDeactivatedLibrarianCannotLogin(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	created, err := svc.CreateLibrarian(ctx, CreateLibrarianParams{
		Username: "dormant",
		Password: "pw123456",
		Name:     "Dormant",
		Email:    "dormant@example.com",
	}, "admin")
	require.NoError(t, err)

	inactive := false
	_, err = svc.UpdateLibrarian(ctx, created.ID, UpdateLibrarianParams{IsActive: &inactive})
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "dormant", "pw123456")
	assert.ErrorIs(t, err, ErrAccountDeactivated)
}

func TestCreateLibrarianDuplicates(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	_, err := svc.CreateLibrarian(ctx, CreateLibrarianParams{
		Username: "taken",
		Password: "pw",
		Name:     "Taken",
		Email:    "taken@example.com",
	}, "admin")
	require.NoError(t, err)

	_, err = svc.CreateLibrarian(ctx, CreateLibrarianParams{
		Username: "taken",
		Password: "pw",
		Name:     "Other",
		Email:    "other@example.com",
	}, "admin")
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "username already exists")

	_, err = svc.CreateLibrarian(ctx, CreateLibrarianParams{
		Username: "other",
		Password: "pw",
		Name:     "Other",
		Email:    "taken@example.com",
	}, "admin")
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "email already exists")
}

func TestChangePassword(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	_, err := svc.CreateLibrarian(ctx, CreateLibrarianParams{
		Username: "rotator",
		Password: "old-pass",
		Name:     "Rotator",
		Email:    "rotator@example.com",
	}, "admin")
	require.NoError(t, err)

	token, _, err := svc.Login(ctx, "rotator", "old-pass")
	require.NoError(t, err)
	claims, err := svc.VerifyToken(token)
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, claims, "wrong", "new-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, svc.ChangePassword(ctx, claims, "old-pass", "new-pass"))

	_, _, err = svc.Login(ctx, "rotator", "old-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = svc.Login(ctx, "rotator", "new-pass")
	assert.NoError(t, err)
}

func TestChangePasswordRefusedForAdmin(t *testing.T) {
	svc, _ := setupService(t)
	claims := adminClaims(t, svc)

	err := svc.ChangePassword(context.Background(), claims, "env-secret", "new-secret")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDeleteLibrarian(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	created, err := svc.CreateLibrarian(ctx, CreateLibrarianParams{
		Username: "leaver",
		Password: "pw",
		Name:     "Leaver",
		Email:    "leaver@example.com",
	}, "admin")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteLibrarian(ctx, created.ID))
	assert.ErrorIs(t, svc.DeleteLibrarian(ctx, created.ID), ErrNotFound)
	assert.ErrorIs(t, svc.DeleteLibrarian(ctx, primitive.NewObjectID()), ErrNotFound)
}
