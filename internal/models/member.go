// internal/models/member.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const MemberEntity = "member"

// LoanRecord is one borrow of one book by a member. A nil ReturnedDate means
// the loan is still open. Records stay in Member.BorrowedBooks after return
// with ReturnedDate set; "current loans" is the nil-ReturnedDate filter.
type LoanRecord struct {
	Book         primitive.ObjectID `bson:"book" json:"book"`
	BorrowedDate time.Time          `bson:"borrowed_date" json:"borrowedDate"`
	DueDate      time.Time          `bson:"due_date" json:"dueDate"`
	ReturnedDate *time.Time         `bson:"returned_date" json:"returnedDate"`
}

// Open reports whether the loan has not been returned yet.
func (l LoanRecord) Open() bool {
	return l.ReturnedDate == nil
}

// OverdueAt reports whether the loan's due date has passed at the given
// instant. The due date is fixed at borrow time and never recalculated.
func (l LoanRecord) OverdueAt(now time.Time) bool {
	return now.After(l.DueDate)
}

// HistoryRecord is a completed loan copied into Member.BorrowingHistory at
// return time.
type HistoryRecord struct {
	Book         primitive.ObjectID `bson:"book" json:"book"`
	BorrowedDate time.Time          `bson:"borrowed_date" json:"borrowedDate"`
	ReturnedDate time.Time          `bson:"returned_date" json:"returnedDate"`
}

// Member is a self-service portal account.
type Member struct {
	ID               primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Username         string              `bson:"username" json:"username"`
	PasswordHash     string              `bson:"password_hash" json:"-"`
	PasswordSalt     string              `bson:"password_salt" json:"-"`
	Name             string              `bson:"name" json:"name"`
	Email            string              `bson:"email" json:"email"`
	Phone            string              `bson:"phone" json:"phone"`
	Address          string              `bson:"address" json:"address"`
	Role             string              `bson:"role" json:"role"`
	IsActive         bool                `bson:"is_active" json:"isActive"`
	MembershipDate   time.Time           `bson:"membership_date" json:"membershipDate"`
	BorrowerID       *primitive.ObjectID `bson:"borrower_id,omitempty" json:"borrowerId,omitempty"`
	BorrowedBooks    []LoanRecord        `bson:"borrowed_books" json:"borrowedBooks"`
	BorrowingHistory []HistoryRecord     `bson:"borrowing_history" json:"borrowingHistory"`
}

// CurrentLoans returns the member's open loan records.
func (m *Member) CurrentLoans() []LoanRecord {
	var open []LoanRecord
	for _, l := range m.BorrowedBooks {
		if l.Open() {
			open = append(open, l)
		}
	}
	return open
}

// OpenLoan returns the index of the open loan for the given book, or -1.
func (m *Member) OpenLoan(bookID primitive.ObjectID) int {
	for i, l := range m.BorrowedBooks {
		if l.Book == bookID && l.Open() {
			return i
		}
	}
	return -1
}
