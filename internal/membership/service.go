// internal/membership/service.go
package membership

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"librekeep/internal/models"
)

// Service manages portal accounts. Registration provisions a borrower record
// alongside the member so the staff side sees self-registered members in the
// borrowers list.
type Service interface {
	// Register creates a member and its borrower mirror and logs it in.
	Register(ctx context.Context, params RegisterParams) (*Session, error)
	// Login authenticates an active member.
	Login(ctx context.Context, username, password string) (*Session, error)

	// Profile returns the member's own account.
	Profile(ctx context.Context, memberID primitive.ObjectID) (*models.Member, error)
	// UpdateProfile patches the member's own contact details.
	UpdateProfile(ctx context.Context, memberID primitive.ObjectID, params UpdateProfileParams) (*models.Member, error)
	// ChangePassword verifies the current password and sets a new one.
	ChangePassword(ctx context.Context, memberID primitive.ObjectID, current, next string) error

	// Staff-side account management.
	ListMembers(ctx context.Context) ([]models.Member, error)
	GetMember(ctx context.Context, id primitive.ObjectID) (*models.Member, error)
	UpdateMember(ctx context.Context, id primitive.ObjectID, params UpdateMemberParams) (*models.Member, error)
	// DeleteMember removes the account. It is refused while the member still
	// has open loans.
	DeleteMember(ctx context.Context, id primitive.ObjectID) error
}
