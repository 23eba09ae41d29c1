// internal/circulation/implementation.go
package circulation

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"librekeep/internal/audit"
	"librekeep/internal/models"
	"librekeep/internal/store"
)

// Options tunes the lending policy. Zero values fall back to the defaults.
type Options struct {
	LoanPeriodDays int
	MaxLoans       int
}

// service implements the Service interface.
type service struct {
	store          *store.Store
	audits         *audit.Logger
	loanPeriodDays int
	maxLoans       int
	tracer         trace.Tracer
	loansIssued    metric.Int64Counter
	loansReturned  metric.Int64Counter
}

// NewService creates a new circulation service instance.
func NewService(st *store.Store, audits *audit.Logger, opts Options) Service {
	if opts.LoanPeriodDays <= 0 {
		opts.LoanPeriodDays = DefaultLoanPeriodDays
	}
	if opts.MaxLoans <= 0 {
		opts.MaxLoans = DefaultMaxLoans
	}
	meter := otel.Meter("librekeep/circulation")
	issued, _ := meter.Int64Counter("circulation.loans.issued",
		metric.WithDescription("Number of loans opened"))
	returned, _ := meter.Int64Counter("circulation.loans.returned",
		metric.WithDescription("Number of loans closed"))
	return &service{
		store:          st,
		audits:         audits,
		loanPeriodDays: opts.LoanPeriodDays,
		maxLoans:       opts.MaxLoans,
		tracer:         otel.Tracer("librekeep/circulation"),
		loansIssued:    issued,
		loansReturned:  returned,
	}
}

// ensureAvailable loads a book and rejects it when another account already
// holds it. Exclusivity is a single check on the book's borrower link, shared
// by the staff and member lending paths.
func (s *service) ensureAvailable(ctx context.Context, bookID primitive.ObjectID) (*models.Book, error) {
	book, err := s.store.Books.FindByID(ctx, bookID)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to load book: %w", err)
	}
	if !book.Available() {
		return nil, ErrAlreadyBorrowed
	}
	return book, nil
}

// CheckOut lends a book to a borrower account.
func (s *service) CheckOut(ctx context.Context, bookID, borrowerID primitive.ObjectID) (*Receipt, error) {
	ctx, span := s.tracer.Start(ctx, "circulation.CheckOut", trace.WithAttributes(
		attribute.String("book.id", bookID.Hex()),
		attribute.String("borrower.id", borrowerID.Hex()),
	))
	defer span.End()

	book, err := s.ensureAvailable(ctx, bookID)
	if err != nil {
		return nil, err
	}

	borrower, err := s.store.Borrowers.FindByID(ctx, borrowerID)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, ErrBorrowerNotFound
		}
		return nil, fmt.Errorf("failed to load borrower: %w", err)
	}

	now := time.Now()
	book.Borrower = &borrower.ID
	book.BorrowedDate = &now
	if err := s.store.Books.Update(ctx, book); err != nil {
		return nil, fmt.Errorf("failed to update book: %w", err)
	}

	borrower.Books = append(borrower.Books, book.ID)
	if err := s.store.Borrowers.Update(ctx, borrower); err != nil {
		return nil, fmt.Errorf("failed to update borrower: %w", err)
	}

	s.loansIssued.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", "checkout")))
	s.audits.Log(ctx, models.BookEntity, audit.ActionCheckOut, map[string]any{
		"bookId":     book.ID.Hex(),
		"borrowerId": borrower.ID.Hex(),
	})

	return &Receipt{BookID: book.ID, Title: book.Title, BorrowedDate: now}, nil
}

// CheckIn returns a borrower's book. The borrower-side removal runs even when
// the book no longer points at the borrower, so a repeated check-in converges
// instead of failing.
func (s *service) CheckIn(ctx context.Context, bookID, borrowerID primitive.ObjectID) (*Receipt, error) {
	ctx, span := s.tracer.Start(ctx, "circulation.CheckIn", trace.WithAttributes(
		attribute.String("book.id", bookID.Hex()),
		attribute.String("borrower.id", borrowerID.Hex()),
	))
	defer span.End()

	book, err := s.store.Books.FindByID(ctx, bookID)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to load book: %w", err)
	}

	borrower, err := s.store.Borrowers.FindByID(ctx, borrowerID)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, ErrBorrowerNotFound
		}
		return nil, fmt.Errorf("failed to load borrower: %w", err)
	}

	if book.Borrower != nil && *book.Borrower == borrower.ID {
		book.Borrower = nil
		book.BorrowedDate = nil
		if err := s.store.Books.Update(ctx, book); err != nil {
			return nil, fmt.Errorf("failed to update book: %w", err)
		}
	}

	kept := borrower.Books[:0]
	for _, id := range borrower.Books {
		if id != book.ID {
			kept = append(kept, id)
		}
	}
	borrower.Books = kept
	if err := s.store.Borrowers.Update(ctx, borrower); err != nil {
		return nil, fmt.Errorf("failed to update borrower: %w", err)
	}

	s.loansReturned.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", "checkin")))
	s.audits.Log(ctx, models.BookEntity, audit.ActionCheckIn, map[string]any{
		"bookId":     book.ID.Hex(),
		"borrowerId": borrower.ID.Hex(),
	})

	return &Receipt{BookID: book.ID, Title: book.Title, BorrowedDate: time.Now()}, nil
}

// Borrow opens a loan on the member's own account.
func (s *service) Borrow(ctx context.Context, memberID, bookID primitive.ObjectID) (*Receipt, error) {
	ctx, span := s.tracer.Start(ctx, "circulation.Borrow", trace.WithAttributes(
		attribute.String("member.id", memberID.Hex()),
		attribute.String("book.id", bookID.Hex()),
	))
	defer span.End()

	book, err := s.ensureAvailable(ctx, bookID)
	if err != nil {
		return nil, err
	}

	member, err := s.store.Members.FindByID(ctx, memberID)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to load member: %w", err)
	}

	if len(member.CurrentLoans()) >= s.maxLoans {
		return nil, ErrLoanLimit
	}

	now := time.Now()
	due := now.AddDate(0, 0, s.loanPeriodDays)

	book.Borrower = &member.ID
	book.BorrowedDate = &now
	if err := s.store.Books.Update(ctx, book); err != nil {
		return nil, fmt.Errorf("failed to update book: %w", err)
	}

	member.BorrowedBooks = append(member.BorrowedBooks, models.LoanRecord{
		Book:         book.ID,
		BorrowedDate: now,
		DueDate:      due,
	})
	if err := s.store.Members.Update(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to update member: %w", err)
	}

	s.loansIssued.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", "borrow")))
	s.audits.Log(ctx, models.BookEntity, audit.ActionBorrow, map[string]any{
		"bookId":   book.ID.Hex(),
		"memberId": member.ID.Hex(),
		"dueDate":  due,
	})

	return &Receipt{BookID: book.ID, Title: book.Title, BorrowedDate: now, DueDate: due}, nil
}

// Return closes the member's open loan and archives it.
func (s *service) Return(ctx context.Context, memberID, bookID primitive.ObjectID) (*Receipt, error) {
	ctx, span := s.tracer.Start(ctx, "circulation.Return", trace.WithAttributes(
		attribute.String("member.id", memberID.Hex()),
		attribute.String("book.id", bookID.Hex()),
	))
	defer span.End()

	member, err := s.store.Members.FindByID(ctx, memberID)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to load member: %w", err)
	}

	idx := member.OpenLoan(bookID)
	if idx < 0 {
		return nil, ErrNoOpenLoan
	}

	// Resolve the book before mutating the loan records so a missing
	// row leaves the loan open.
	book, err := s.store.Books.FindByID(ctx, bookID)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to load book: %w", err)
	}

	now := time.Now()
	member.BorrowedBooks[idx].ReturnedDate = &now
	loan := member.BorrowedBooks[idx]
	member.BorrowingHistory = append(member.BorrowingHistory, models.HistoryRecord{
		Book:         loan.Book,
		BorrowedDate: loan.BorrowedDate,
		ReturnedDate: now,
	})
	if err := s.store.Members.Update(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to update member: %w", err)
	}
	if book.Borrower != nil && *book.Borrower == member.ID {
		book.Borrower = nil
		book.BorrowedDate = nil
		if err := s.store.Books.Update(ctx, book); err != nil {
			return nil, fmt.Errorf("failed to update book: %w", err)
		}
	}

	s.loansReturned.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", "return")))
	s.audits.Log(ctx, models.BookEntity, audit.ActionReturn, map[string]any{
		"bookId":   book.ID.Hex(),
		"memberId": member.ID.Hex(),
	})

	return &Receipt{BookID: book.ID, Title: book.Title, BorrowedDate: loan.BorrowedDate}, nil
}

// CurrentLoans lists the member's open loans, most recent first.
func (s *service) CurrentLoans(ctx context.Context, memberID primitive.ObjectID) ([]HistoryEntry, error) {
	ctx, span := s.tracer.Start(ctx, "circulation.CurrentLoans", trace.WithAttributes(
		attribute.String("member.id", memberID.Hex()),
	))
	defer span.End()

	member, err := s.store.Members.FindByID(ctx, memberID)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to load member: %w", err)
	}

	entries := make([]HistoryEntry, 0, len(member.BorrowedBooks))
	for _, loan := range member.BorrowedBooks {
		if !loan.Open() {
			continue
		}
		due := loan.DueDate
		entries = append(entries, HistoryEntry{
			Book:         loan.Book,
			BorrowedDate: loan.BorrowedDate,
			DueDate:      &due,
			Status:       StatusBorrowed,
		})
	}
	sortByBorrowedDesc(entries)
	return entries, nil
}

// History lists the member's full lending history: the live loan list tagged
// by whether a returned date is set, plus the archived history tagged as
// returned, most recent first.
func (s *service) History(ctx context.Context, memberID primitive.ObjectID) ([]HistoryEntry, error) {
	ctx, span := s.tracer.Start(ctx, "circulation.History", trace.WithAttributes(
		attribute.String("member.id", memberID.Hex()),
	))
	defer span.End()

	member, err := s.store.Members.FindByID(ctx, memberID)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to load member: %w", err)
	}

	entries := make([]HistoryEntry, 0, len(member.BorrowedBooks)+len(member.BorrowingHistory))
	for _, loan := range member.BorrowedBooks {
		due := loan.DueDate
		status := StatusBorrowed
		if loan.ReturnedDate != nil {
			status = StatusReturned
		}
		entries = append(entries, HistoryEntry{
			Book:         loan.Book,
			BorrowedDate: loan.BorrowedDate,
			DueDate:      &due,
			ReturnedDate: loan.ReturnedDate,
			Status:       status,
		})
	}
	for _, rec := range member.BorrowingHistory {
		returned := rec.ReturnedDate
		entries = append(entries, HistoryEntry{
			Book:         rec.Book,
			BorrowedDate: rec.BorrowedDate,
			ReturnedDate: &returned,
			Status:       StatusReturned,
		})
	}
	sortByBorrowedDesc(entries)
	return entries, nil
}

// Overdue lists every open member loan past its due date.
func (s *service) Overdue(ctx context.Context) ([]OverdueLoan, error) {
	ctx, span := s.tracer.Start(ctx, "circulation.Overdue")
	defer span.End()

	members, err := s.store.Members.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	now := time.Now()
	overdue := []OverdueLoan{}
	for _, m := range members {
		for _, loan := range m.BorrowedBooks {
			if loan.Open() && loan.OverdueAt(now) {
				overdue = append(overdue, OverdueLoan{
					MemberID:     m.ID,
					MemberName:   m.Name,
					Book:         loan.Book,
					BorrowedDate: loan.BorrowedDate,
					DueDate:      loan.DueDate,
				})
			}
		}
	}
	sort.SliceStable(overdue, func(i, j int) bool {
		return overdue[i].DueDate.Before(overdue[j].DueDate)
	})
	return overdue, nil
}

func sortByBorrowedDesc(entries []HistoryEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].BorrowedDate.After(entries[j].BorrowedDate)
	})
}
