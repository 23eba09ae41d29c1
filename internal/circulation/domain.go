// internal/circulation/domain.go
package circulation

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Default lending policy. Both knobs are configurable through Options; the
// due date is fixed at borrow time and never recalculated.
const (
	DefaultLoanPeriodDays = 14
	DefaultMaxLoans       = 5
)

// Lending failures surfaced to the HTTP layer.
var (
	ErrBookNotFound     = errors.New("circulation: book not found")
	ErrBorrowerNotFound = errors.New("circulation: borrower not found")
	ErrMemberNotFound   = errors.New("circulation: member not found")
	ErrAlreadyBorrowed  = errors.New("circulation: book is already borrowed")
	ErrLoanLimit        = errors.New("circulation: maximum number of borrowed books reached")
	ErrNoOpenLoan       = errors.New("circulation: no open loan for this book")
)

// Loan statuses reported in history listings.
const (
	StatusBorrowed = "borrowed"
	StatusReturned = "returned"
)

// Receipt summarizes a completed borrow or return for the response body.
type Receipt struct {
	BookID       primitive.ObjectID `json:"id"`
	Title        string             `json:"title"`
	BorrowedDate time.Time          `json:"borrowedDate"`
	DueDate      time.Time          `json:"dueDate,omitempty"`
}

// HistoryEntry is one row of a member's combined lending history: open and
// returned records from the live loan list plus archived history records.
type HistoryEntry struct {
	Book         primitive.ObjectID `json:"book"`
	BorrowedDate time.Time          `json:"borrowedDate"`
	DueDate      *time.Time         `json:"dueDate,omitempty"`
	ReturnedDate *time.Time         `json:"returnedDate,omitempty"`
	Status       string             `json:"status"`
}

// OverdueLoan is a staff-side view of an open member loan past its due date.
type OverdueLoan struct {
	MemberID     primitive.ObjectID `json:"memberId"`
	MemberName   string             `json:"memberName"`
	Book         primitive.ObjectID `json:"book"`
	BorrowedDate time.Time          `json:"borrowedDate"`
	DueDate      time.Time          `json:"dueDate"`
}
