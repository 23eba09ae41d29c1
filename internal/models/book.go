// internal/models/book.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const BookEntity = "book"

// Book is a single physical copy in the catalog. A nil Author marks an
// unauthored placeholder reserving the title; a nil Borrower means the book
// is on the shelf. Borrower may point at either a Borrower row (staff
// checkout flow) or a Member (self-service borrow flow); the field is the
// single exclusivity anchor for both.
type Book struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Title        string              `bson:"title" json:"title"`
	Author       *primitive.ObjectID `bson:"author" json:"author,omitempty"`
	Category     string              `bson:"category" json:"category"`
	Price        float64             `bson:"price" json:"price"`
	Borrower     *primitive.ObjectID `bson:"borrower" json:"borrower,omitempty"`
	BorrowedDate *time.Time          `bson:"borrowed_date,omitempty" json:"borrowed_date,omitempty"`
}

// Available reports whether the book currently has no holder.
func (b *Book) Available() bool {
	return b.Borrower == nil
}
