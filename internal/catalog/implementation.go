// internal/catalog/implementation.go
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"librekeep/internal/audit"
	"librekeep/internal/models"
	"librekeep/internal/store"
)

// service implements the Service interface.
type service struct {
	store  *store.Store
	audits *audit.Logger
}

// NewService creates a new catalog service instance.
func NewService(st *store.Store, audits *audit.Logger) Service {
	return &service{store: st, audits: audits}
}

// --- books ---

func (s *service) AddBook(ctx context.Context, p AddBookParams) (*models.Book, error) {
	if strings.TrimSpace(p.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if p.Price < 0 {
		return nil, fmt.Errorf("%w: price must not be negative", ErrValidation)
	}

	book := &models.Book{
		Title:    strings.TrimSpace(p.Title),
		Category: p.Category,
		Price:    p.Price,
	}
	if _, err := s.store.Books.Insert(ctx, book); err != nil {
		return nil, fmt.Errorf("add book: %w", err)
	}
	s.audits.Log(ctx, models.BookEntity, audit.ActionCreate, book)
	return book, nil
}

func (s *service) GetBook(ctx context.Context, id primitive.ObjectID) (*models.Book, error) {
	book, err := s.store.Books.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}
	return book, nil
}

func (s *service) ListBooks(ctx context.Context) ([]models.Book, error) {
	return s.store.Books.List(ctx)
}

func (s *service) SearchBooks(ctx context.Context, query, category string, availableOnly bool) ([]models.Book, error) {
	return s.store.Books.Search(ctx, query, category, availableOnly)
}

func (s *service) UpdateBook(ctx context.Context, id primitive.ObjectID, p UpdateBookParams) (*models.Book, error) {
	book, err := s.GetBook(ctx, id)
	if err != nil {
		return nil, err
	}

	if p.Title != nil && strings.TrimSpace(*p.Title) != "" {
		book.Title = strings.TrimSpace(*p.Title)
	}
	if p.Category != nil {
		book.Category = *p.Category
	}
	if p.Price != nil {
		if *p.Price < 0 {
			return nil, fmt.Errorf("%w: price must not be negative", ErrValidation)
		}
		book.Price = *p.Price
	}

	if err := s.store.Books.Update(ctx, book); err != nil {
		return nil, fmt.Errorf("update book: %w", err)
	}
	s.audits.Log(ctx, models.BookEntity, audit.ActionUpdate, book)
	return book, nil
}

// DeleteBook removes a book from the catalog. A borrowed book must be
// checked in or returned first; an authored book is unlinked from its
// author's list before deletion.
func (s *service) DeleteBook(ctx context.Context, id primitive.ObjectID) error {
	book, err := s.GetBook(ctx, id)
	if err != nil {
		return err
	}
	if book.Borrower != nil {
		return fmt.Errorf("%w: cannot delete a borrowed book", ErrValidation)
	}

	if book.Author != nil {
		author, err := s.store.Authors.FindByID(ctx, *book.Author)
		if err == nil {
			kept := author.Books[:0]
			for _, bid := range author.Books {
				if bid != id {
					kept = append(kept, bid)
				}
			}
			author.Books = kept
			if err := s.store.Authors.Update(ctx, author); err != nil {
				return fmt.Errorf("unlink book from author: %w", err)
			}
		} else if !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("look up author: %w", err)
		}
	}

	if err := s.store.Books.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	s.audits.Log(ctx, models.BookEntity, audit.ActionDelete, id.Hex())
	return nil
}

// --- authors ---

// CreateAuthorWithBooks resolves each named title against the catalog before
// creating the author. A title already owned by some author fans out into a
// fresh placeholder row rather than being reassigned; an unauthored
// placeholder is reused as-is. The author row is created first and the back
// references are set in a second pass, since the author id does not exist
// until then. There is no rollback: rows created before a failure remain.
func (s *service) CreateAuthorWithBooks(ctx context.Context, p CreateAuthorParams) (*models.Author, error) {
	if strings.TrimSpace(p.AuthorName) == "" {
		return nil, fmt.Errorf("%w: author name is required", ErrValidation)
	}

	bookIDs := []primitive.ObjectID{}
	for _, title := range p.Books {
		title = strings.TrimSpace(title)
		if title == "" {
			continue
		}

		existing, err := s.store.Books.FindByTitle(ctx, title)
		switch {
		case err == nil && existing.Author != nil:
			// Title taken by another author: a new row with the same title.
			id, err := s.store.Books.Insert(ctx, &models.Book{Title: title})
			if err != nil {
				return nil, fmt.Errorf("create book %q: %w", title, err)
			}
			bookIDs = append(bookIDs, id)
		case err == nil:
			// Unauthored placeholder, reuse it.
			bookIDs = append(bookIDs, existing.ID)
		case errors.Is(err, store.ErrNotFound):
			id, err := s.store.Books.Insert(ctx, &models.Book{Title: title})
			if err != nil {
				return nil, fmt.Errorf("create book %q: %w", title, err)
			}
			bookIDs = append(bookIDs, id)
		default:
			return nil, fmt.Errorf("look up book %q: %w", title, err)
		}
	}

	author := &models.Author{
		AuthorName:  p.AuthorName,
		AuthorEmail: p.AuthorEmail,
		AuthorPhone: p.AuthorPhone,
		Books:       bookIDs,
	}
	if _, err := s.store.Authors.Insert(ctx, author); err != nil {
		return nil, fmt.Errorf("create author: %w", err)
	}

	for _, id := range bookIDs {
		book, err := s.store.Books.FindByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load book %s: %w", id.Hex(), err)
		}
		book.Author = &author.ID
		if err := s.store.Books.Update(ctx, book); err != nil {
			return nil, fmt.Errorf("assign book %s: %w", id.Hex(), err)
		}
	}

	s.audits.Log(ctx, models.AuthorEntity, audit.ActionCreate, author)
	return author, nil
}

func (s *service) GetAuthor(ctx context.Context, id primitive.ObjectID) (*models.Author, error) {
	author, err := s.store.Authors.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get author: %w", err)
	}
	return author, nil
}

func (s *service) ListAuthors(ctx context.Context) ([]models.Author, error) {
	return s.store.Authors.List(ctx)
}

func (s *service) SearchAuthors(ctx context.Context, query string) ([]models.Author, error) {
	return s.store.Authors.Search(ctx, query)
}

func (s *service) UpdateAuthor(ctx context.Context, id primitive.ObjectID, p UpdateAuthorParams) (*models.Author, error) {
	author, err := s.GetAuthor(ctx, id)
	if err != nil {
		return nil, err
	}

	if p.AuthorName != nil && *p.AuthorName != "" {
		author.AuthorName = *p.AuthorName
	}
	if p.AuthorEmail != nil {
		author.AuthorEmail = *p.AuthorEmail
	}
	if p.AuthorPhone != nil {
		author.AuthorPhone = *p.AuthorPhone
	}

	if err := s.store.Authors.Update(ctx, author); err != nil {
		return nil, fmt.Errorf("update author: %w", err)
	}
	s.audits.Log(ctx, models.AuthorEntity, audit.ActionUpdate, author)
	return author, nil
}

// DeleteAuthor nulls the author reference on every linked book, then deletes
// the author row. The books themselves survive as placeholders.
func (s *service) DeleteAuthor(ctx context.Context, id primitive.ObjectID) error {
	if _, err := s.GetAuthor(ctx, id); err != nil {
		return err
	}
	if err := s.store.Books.ClearAuthor(ctx, id); err != nil {
		return fmt.Errorf("clear author on books: %w", err)
	}
	if err := s.store.Authors.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete author: %w", err)
	}
	s.audits.Log(ctx, models.AuthorEntity, audit.ActionDelete, id.Hex())
	return nil
}

// --- borrowers ---

func (s *service) AddBorrower(ctx context.Context, p BorrowerParams) (*models.Borrower, error) {
	if strings.TrimSpace(p.BorrowerName) == "" {
		return nil, fmt.Errorf("%w: borrower name is required", ErrValidation)
	}

	borrower := &models.Borrower{
		BorrowerName:    p.BorrowerName,
		BorrowerEmail:   p.BorrowerEmail,
		BorrowerPhone:   p.BorrowerPhone,
		BorrowerAddress: p.BorrowerAddress,
		Books:           []primitive.ObjectID{},
	}
	if _, err := s.store.Borrowers.Insert(ctx, borrower); err != nil {
		return nil, fmt.Errorf("add borrower: %w", err)
	}
	s.audits.Log(ctx, models.BorrowerEntity, audit.ActionCreate, borrower)
	return borrower, nil
}

func (s *service) GetBorrower(ctx context.Context, id primitive.ObjectID) (*models.Borrower, error) {
	borrower, err := s.store.Borrowers.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get borrower: %w", err)
	}
	return borrower, nil
}

func (s *service) ListBorrowers(ctx context.Context) ([]models.Borrower, error) {
	return s.store.Borrowers.List(ctx)
}

func (s *service) UpdateBorrower(ctx context.Context, id primitive.ObjectID, p UpdateBorrowerParams) (*models.Borrower, error) {
	borrower, err := s.GetBorrower(ctx, id)
	if err != nil {
		return nil, err
	}

	if p.BorrowerName != nil && *p.BorrowerName != "" {
		borrower.BorrowerName = *p.BorrowerName
	}
	if p.BorrowerEmail != nil {
		borrower.BorrowerEmail = *p.BorrowerEmail
	}
	if p.BorrowerPhone != nil {
		borrower.BorrowerPhone = *p.BorrowerPhone
	}
	if p.BorrowerAddress != nil {
		borrower.BorrowerAddress = *p.BorrowerAddress
	}

	if err := s.store.Borrowers.Update(ctx, borrower); err != nil {
		return nil, fmt.Errorf("update borrower: %w", err)
	}
	s.audits.Log(ctx, models.BorrowerEntity, audit.ActionUpdate, borrower)
	return borrower, nil
}

func (s *service) DeleteBorrower(ctx context.Context, id primitive.ObjectID) error {
	borrower, err := s.GetBorrower(ctx, id)
	if err != nil {
		return err
	}
	if len(borrower.Books) > 0 {
		return fmt.Errorf("%w: borrower still holds books", ErrValidation)
	}
	if err := s.store.Borrowers.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete borrower: %w", err)
	}
	s.audits.Log(ctx, models.BorrowerEntity, audit.ActionDelete, id.Hex())
	return nil
}

// --- counts ---

func (s *service) Counts(ctx context.Context) (*Counts, error) {
	books, err := s.store.Books.Count(ctx)
	if err != nil {
		return nil, err
	}
	authors, err := s.store.Authors.Count(ctx)
	if err != nil {
		return nil, err
	}
	borrowers, err := s.store.Borrowers.Count(ctx)
	if err != nil {
		return nil, err
	}
	members, err := s.store.Members.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &Counts{Books: books, Authors: authors, Borrowers: borrowers, Members: members}, nil
}
