// internal/catalog/service.go
package catalog

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"librekeep/internal/models"
)

// Service is the catalog surface: book/author/borrower CRUD, text search,
// and the author-book linkage rules applied on author creation and deletion.
type Service interface {
	AddBook(ctx context.Context, p AddBookParams) (*models.Book, error)
	GetBook(ctx context.Context, id primitive.ObjectID) (*models.Book, error)
	ListBooks(ctx context.Context) ([]models.Book, error)
	SearchBooks(ctx context.Context, query, category string, availableOnly bool) ([]models.Book, error)
	UpdateBook(ctx context.Context, id primitive.ObjectID, p UpdateBookParams) (*models.Book, error)
	DeleteBook(ctx context.Context, id primitive.ObjectID) error

	CreateAuthorWithBooks(ctx context.Context, p CreateAuthorParams) (*models.Author, error)
	GetAuthor(ctx context.Context, id primitive.ObjectID) (*models.Author, error)
	ListAuthors(ctx context.Context) ([]models.Author, error)
	SearchAuthors(ctx context.Context, query string) ([]models.Author, error)
	UpdateAuthor(ctx context.Context, id primitive.ObjectID, p UpdateAuthorParams) (*models.Author, error)
	DeleteAuthor(ctx context.Context, id primitive.ObjectID) error

	AddBorrower(ctx context.Context, p BorrowerParams) (*models.Borrower, error)
	GetBorrower(ctx context.Context, id primitive.ObjectID) (*models.Borrower, error)
	ListBorrowers(ctx context.Context) ([]models.Borrower, error)
	UpdateBorrower(ctx context.Context, id primitive.ObjectID, p UpdateBorrowerParams) (*models.Borrower, error)
	DeleteBorrower(ctx context.Context, id primitive.ObjectID) error

	Counts(ctx context.Context) (*Counts, error)
}
