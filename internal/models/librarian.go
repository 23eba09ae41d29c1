// internal/models/librarian.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const LibrarianEntity = "librarian"

// Account roles. Admin is an implicit identity configured from the
// environment and never stored as a row; the role string still appears in
// session claims.
const (
	RoleAdmin     = "admin"
	RoleLibrarian = "librarian"
	RoleMember    = "member"
)

// IsStaff reports whether the role carries librarian capabilities. Admin is
// a superset of librarian.
func IsStaff(role string) bool {
	return role == RoleAdmin || role == RoleLibrarian
}

// Librarian is a staff account created by the admin.
type Librarian struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string             `bson:"username" json:"username"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	PasswordSalt string             `bson:"password_salt" json:"-"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	Role         string             `bson:"role" json:"role"`
	IsActive     bool               `bson:"is_active" json:"isActive"`
	CreatedBy    string             `bson:"created_by" json:"createdBy"`
	CreatedAt    time.Time          `bson:"created_at" json:"createdAt"`
}
