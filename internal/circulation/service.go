// internal/circulation/service.go
package circulation

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Service runs the lending engine. Staff operations move books between the
// catalog and borrower accounts; member operations maintain the member's own
// loan list and history alongside the book's borrower link.
type Service interface {
	// CheckOut lends a book to a borrower account.
	CheckOut(ctx context.Context, bookID, borrowerID primitive.ObjectID) (*Receipt, error)
	// CheckIn returns a borrower's book. Removal from the borrower's list is
	// applied even if the book no longer points back at the borrower.
	CheckIn(ctx context.Context, bookID, borrowerID primitive.ObjectID) (*Receipt, error)

	// Borrow opens a loan on the member's own account.
	Borrow(ctx context.Context, memberID, bookID primitive.ObjectID) (*Receipt, error)
	// Return closes the member's open loan and archives it.
	Return(ctx context.Context, memberID, bookID primitive.ObjectID) (*Receipt, error)

	// CurrentLoans lists the member's open loans, most recent first.
	CurrentLoans(ctx context.Context, memberID primitive.ObjectID) ([]HistoryEntry, error)
	// History lists the member's full lending history, most recent first.
	History(ctx context.Context, memberID primitive.ObjectID) ([]HistoryEntry, error)

	// Overdue lists every open member loan past its due date.
	Overdue(ctx context.Context) ([]OverdueLoan, error)
}
