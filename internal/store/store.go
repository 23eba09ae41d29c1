// internal/store/store.go
// Package store provides repository-style persistence for the catalog
// entities. Production uses the Mongo implementations; tests and libctl's
// dry-run mode use the in-memory ones.
package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"librekeep/internal/models"
)

// ErrNotFound is returned by every Find* method when no document matches.
var ErrNotFound = errors.New("store: not found")

// Books persists catalog books.
type Books interface {
	Insert(ctx context.Context, b *models.Book) (primitive.ObjectID, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Book, error)
	// FindByTitle matches the exact title. When several rows share a title
	// (re-editions under different authors) the first inserted wins.
	FindByTitle(ctx context.Context, title string) (*models.Book, error)
	List(ctx context.Context) ([]models.Book, error)
	ListByAuthor(ctx context.Context, authorID primitive.ObjectID) ([]models.Book, error)
	Search(ctx context.Context, query, category string, availableOnly bool) ([]models.Book, error)
	Update(ctx context.Context, b *models.Book) error
	// ClearAuthor nulls the author field on every book referencing authorID.
	ClearAuthor(ctx context.Context, authorID primitive.ObjectID) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Count(ctx context.Context) (int64, error)
}

// Authors persists authors.
type Authors interface {
	Insert(ctx context.Context, a *models.Author) (primitive.ObjectID, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Author, error)
	List(ctx context.Context) ([]models.Author, error)
	Search(ctx context.Context, query string) ([]models.Author, error)
	Update(ctx context.Context, a *models.Author) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Count(ctx context.Context) (int64, error)
}

// Borrowers persists walk-in borrowers (including member mirrors).
type Borrowers interface {
	Insert(ctx context.Context, b *models.Borrower) (primitive.ObjectID, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Borrower, error)
	FindByEmail(ctx context.Context, email string) (*models.Borrower, error)
	List(ctx context.Context) ([]models.Borrower, error)
	Update(ctx context.Context, b *models.Borrower) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Count(ctx context.Context) (int64, error)
}

// Members persists portal accounts.
type Members interface {
	Insert(ctx context.Context, m *models.Member) (primitive.ObjectID, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Member, error)
	FindByUsername(ctx context.Context, username string) (*models.Member, error)
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*models.Member, error)
	List(ctx context.Context) ([]models.Member, error)
	Update(ctx context.Context, m *models.Member) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Count(ctx context.Context) (int64, error)
}

// Librarians persists staff accounts.
type Librarians interface {
	Insert(ctx context.Context, l *models.Librarian) (primitive.ObjectID, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Librarian, error)
	FindByUsername(ctx context.Context, username string) (*models.Librarian, error)
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*models.Librarian, error)
	List(ctx context.Context) ([]models.Librarian, error)
	Update(ctx context.Context, l *models.Librarian) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// Store bundles one repository per entity kind.
type Store struct {
	Books      Books
	Authors    Authors
	Borrowers  Borrowers
	Members    Members
	Librarians Librarians
}
