// internal/models/borrower.go
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const BorrowerEntity = "borrower"

// Borrower is a walk-in borrower tracked by staff for the checkout/checkin
// workflow. Self-registered members get a mirrored Borrower row so they show
// up in staff-side listings.
type Borrower struct {
	ID              primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	BorrowerName    string               `bson:"borrower_name" json:"borrowerName"`
	BorrowerEmail   string               `bson:"borrower_email" json:"borrowerEmail"`
	BorrowerPhone   string               `bson:"borrower_phone" json:"borrowerPhone"`
	BorrowerAddress string               `bson:"borrower_address" json:"borrowerAddress"`
	Books           []primitive.ObjectID `bson:"books" json:"books"`
}

// Holds reports whether the borrower currently holds the given book.
func (b *Borrower) Holds(bookID primitive.ObjectID) bool {
	for _, id := range b.Books {
		if id == bookID {
			return true
		}
	}
	return false
}
