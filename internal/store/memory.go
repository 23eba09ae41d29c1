// internal/store/memory.go
package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"librekeep/internal/models"
)

// NewMemory builds a Store held entirely in process memory. It backs the
// service tests and libctl's dry-run mode; semantics mirror the Mongo
// implementation, including insertion-order scans for FindByTitle.
func NewMemory() *Store {
	return &Store{
		Books:      &memBooks{docs: map[primitive.ObjectID]models.Book{}},
		Authors:    &memAuthors{docs: map[primitive.ObjectID]models.Author{}},
		Borrowers:  &memBorrowers{docs: map[primitive.ObjectID]models.Borrower{}},
		Members:    &memMembers{docs: map[primitive.ObjectID]models.Member{}},
		Librarians: &memLibrarians{docs: map[primitive.ObjectID]models.Librarian{}},
	}
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// --- books ---

type memBooks struct {
	mu    sync.RWMutex
	docs  map[primitive.ObjectID]models.Book
	order []primitive.ObjectID
}

func cloneBook(b models.Book) models.Book {
	if b.Author != nil {
		a := *b.Author
		b.Author = &a
	}
	if b.Borrower != nil {
		h := *b.Borrower
		b.Borrower = &h
	}
	if b.BorrowedDate != nil {
		d := *b.BorrowedDate
		b.BorrowedDate = &d
	}
	return b
}

func (s *memBooks) Insert(_ context.Context, b *models.Book) (primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID.IsZero() {
		b.ID = primitive.NewObjectID()
	}
	s.docs[b.ID] = cloneBook(*b)
	s.order = append(s.order, b.ID)
	return b.ID, nil
}

func (s *memBooks) FindByID(_ context.Context, id primitive.ObjectID) (*models.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	b = cloneBook(b)
	return &b, nil
}

func (s *memBooks) FindByTitle(_ context.Context, title string) (*models.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.order {
		if b, ok := s.docs[id]; ok && b.Title == title {
			b = cloneBook(b)
			return &b, nil
		}
	}
	return nil, ErrNotFound
}

func (s *memBooks) List(_ context.Context) ([]models.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	books := make([]models.Book, 0, len(s.order))
	for _, id := range s.order {
		if b, ok := s.docs[id]; ok {
			books = append(books, cloneBook(b))
		}
	}
	return books, nil
}

func (s *memBooks) ListByAuthor(_ context.Context, authorID primitive.ObjectID) ([]models.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var books []models.Book
	for _, id := range s.order {
		if b, ok := s.docs[id]; ok && b.Author != nil && *b.Author == authorID {
			books = append(books, cloneBook(b))
		}
	}
	return books, nil
}

func (s *memBooks) Search(_ context.Context, query, category string, availableOnly bool) ([]models.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var books []models.Book
	for _, id := range s.order {
		b, ok := s.docs[id]
		if !ok {
			continue
		}
		if query != "" && !containsFold(b.Title, query) && !containsFold(b.Category, query) {
			continue
		}
		if category != "" && !containsFold(b.Category, category) {
			continue
		}
		if availableOnly && b.Borrower != nil {
			continue
		}
		books = append(books, cloneBook(b))
	}
	return books, nil
}

func (s *memBooks) Update(_ context.Context, b *models.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[b.ID]; !ok {
		return ErrNotFound
	}
	s.docs[b.ID] = cloneBook(*b)
	return nil
}

func (s *memBooks) ClearAuthor(_ context.Context, authorID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, b := range s.docs {
		if b.Author != nil && *b.Author == authorID {
			b.Author = nil
			s.docs[id] = b
		}
	}
	return nil
}

func (s *memBooks) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return ErrNotFound
	}
	delete(s.docs, id)
	return nil
}

func (s *memBooks) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.docs)), nil
}

// --- authors ---

type memAuthors struct {
	mu    sync.RWMutex
	docs  map[primitive.ObjectID]models.Author
	order []primitive.ObjectID
}

func cloneAuthor(a models.Author) models.Author {
	a.Books = append([]primitive.ObjectID(nil), a.Books...)
	return a
}

func (s *memAuthors) Insert(_ context.Context, a *models.Author) (primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	s.docs[a.ID] = cloneAuthor(*a)
	s.order = append(s.order, a.ID)
	return a.ID, nil
}

func (s *memAuthors) FindByID(_ context.Context, id primitive.ObjectID) (*models.Author, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	a = cloneAuthor(a)
	return &a, nil
}

func (s *memAuthors) List(_ context.Context) ([]models.Author, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	authors := make([]models.Author, 0, len(s.order))
	for _, id := range s.order {
		if a, ok := s.docs[id]; ok {
			authors = append(authors, cloneAuthor(a))
		}
	}
	return authors, nil
}

func (s *memAuthors) Search(_ context.Context, query string) ([]models.Author, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var authors []models.Author
	for _, id := range s.order {
		if a, ok := s.docs[id]; ok && (containsFold(a.AuthorName, query) || containsFold(a.AuthorEmail, query)) {
			authors = append(authors, cloneAuthor(a))
		}
	}
	return authors, nil
}

func (s *memAuthors) Update(_ context.Context, a *models.Author) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[a.ID]; !ok {
		return ErrNotFound
	}
	s.docs[a.ID] = cloneAuthor(*a)
	return nil
}

func (s *memAuthors) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return ErrNotFound
	}
	delete(s.docs, id)
	return nil
}

func (s *memAuthors) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.docs)), nil
}

// --- borrowers ---

type memBorrowers struct {
	mu    sync.RWMutex
	docs  map[primitive.ObjectID]models.Borrower
	order []primitive.ObjectID
}

func cloneBorrower(b models.Borrower) models.Borrower {
	b.Books = append([]primitive.ObjectID(nil), b.Books...)
	return b
}

func (s *memBorrowers) Insert(_ context.Context, b *models.Borrower) (primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID.IsZero() {
		b.ID = primitive.NewObjectID()
	}
	s.docs[b.ID] = cloneBorrower(*b)
	s.order = append(s.order, b.ID)
	return b.ID, nil
}

func (s *memBorrowers) FindByID(_ context.Context, id primitive.ObjectID) (*models.Borrower, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	b = cloneBorrower(b)
	return &b, nil
}

func (s *memBorrowers) FindByEmail(_ context.Context, email string) (*models.Borrower, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.order {
		if b, ok := s.docs[id]; ok && b.BorrowerEmail == email {
			b = cloneBorrower(b)
			return &b, nil
		}
	}
	return nil, ErrNotFound
}

func (s *memBorrowers) List(_ context.Context) ([]models.Borrower, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	borrowers := make([]models.Borrower, 0, len(s.order))
	for _, id := range s.order {
		if b, ok := s.docs[id]; ok {
			borrowers = append(borrowers, cloneBorrower(b))
		}
	}
	return borrowers, nil
}

func (s *memBorrowers) Update(_ context.Context, b *models.Borrower) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[b.ID]; !ok {
		return ErrNotFound
	}
	s.docs[b.ID] = cloneBorrower(*b)
	return nil
}

func (s *memBorrowers) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return ErrNotFound
	}
	delete(s.docs, id)
	return nil
}

func (s *memBorrowers) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.docs)), nil
}

// --- members ---

type memMembers struct {
	mu    sync.RWMutex
	docs  map[primitive.ObjectID]models.Member
	order []primitive.ObjectID
}

func cloneMember(m models.Member) models.Member {
	if m.BorrowerID != nil {
		b := *m.BorrowerID
		m.BorrowerID = &b
	}
	loans := make([]models.LoanRecord, len(m.BorrowedBooks))
	for i, l := range m.BorrowedBooks {
		if l.ReturnedDate != nil {
			d := *l.ReturnedDate
			l.ReturnedDate = &d
		}
		loans[i] = l
	}
	m.BorrowedBooks = loans
	m.BorrowingHistory = append([]models.HistoryRecord(nil), m.BorrowingHistory...)
	return m
}

func (s *memMembers) Insert(_ context.Context, m *models.Member) (primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
	s.docs[m.ID] = cloneMember(*m)
	s.order = append(s.order, m.ID)
	return m.ID, nil
}

func (s *memMembers) FindByID(_ context.Context, id primitive.ObjectID) (*models.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	m = cloneMember(m)
	return &m, nil
}

func (s *memMembers) FindByUsername(_ context.Context, username string) (*models.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.order {
		if m, ok := s.docs[id]; ok && m.Username == username {
			m = cloneMember(m)
			return &m, nil
		}
	}
	return nil, ErrNotFound
}

func (s *memMembers) FindByUsernameOrEmail(_ context.Context, username, email string) (*models.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.order {
		if m, ok := s.docs[id]; ok && (m.Username == username || m.Email == email) {
			m = cloneMember(m)
			return &m, nil
		}
	}
	return nil, ErrNotFound
}

func (s *memMembers) List(_ context.Context) ([]models.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	members := make([]models.Member, 0, len(s.order))
	for _, id := range s.order {
		if m, ok := s.docs[id]; ok {
			members = append(members, cloneMember(m))
		}
	}
	sort.SliceStable(members, func(i, j int) bool {
		return members[i].MembershipDate.After(members[j].MembershipDate)
	})
	return members, nil
}

func (s *memMembers) Update(_ context.Context, m *models.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[m.ID]; !ok {
		return ErrNotFound
	}
	s.docs[m.ID] = cloneMember(*m)
	return nil
}

func (s *memMembers) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return ErrNotFound
	}
	delete(s.docs, id)
	return nil
}

func (s *memMembers) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.docs)), nil
}

// --- librarians ---

type memLibrarians struct {
	mu    sync.RWMutex
	docs  map[primitive.ObjectID]models.Librarian
	order []primitive.ObjectID
}

func (s *memLibrarians) Insert(_ context.Context, l *models.Librarian) (primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l.ID.IsZero() {
		l.ID = primitive.NewObjectID()
	}
	s.docs[l.ID] = *l
	s.order = append(s.order, l.ID)
	return l.ID, nil
}

func (s *memLibrarians) FindByID(_ context.Context, id primitive.ObjectID) (*models.Librarian, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &l, nil
}

func (s *memLibrarians) FindByUsername(_ context.Context, username string) (*models.Librarian, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.order {
		if l, ok := s.docs[id]; ok && l.Username == username {
			return &l, nil
		}
	}
	return nil, ErrNotFound
}

func (s *memLibrarians) FindByUsernameOrEmail(_ context.Context, username, email string) (*models.Librarian, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.order {
		if l, ok := s.docs[id]; ok && (l.Username == username || l.Email == email) {
			return &l, nil
		}
	}
	return nil, ErrNotFound
}

func (s *memLibrarians) List(_ context.Context) ([]models.Librarian, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	librarians := make([]models.Librarian, 0, len(s.order))
	for _, id := range s.order {
		if l, ok := s.docs[id]; ok {
			librarians = append(librarians, l)
		}
	}
	sort.SliceStable(librarians, func(i, j int) bool {
		return librarians[i].CreatedAt.After(librarians[j].CreatedAt)
	})
	return librarians, nil
}

func (s *memLibrarians) Update(_ context.Context, l *models.Librarian) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[l.ID]; !ok {
		return ErrNotFound
	}
	s.docs[l.ID] = *l
	return nil
}

func (s *memLibrarians) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return ErrNotFound
	}
	delete(s.docs, id)
	return nil
}
