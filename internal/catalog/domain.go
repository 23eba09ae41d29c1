// internal/catalog/domain.go
package catalog

import (
	"errors"
)

// Catalog failures surfaced to the HTTP layer.
var (
	ErrNotFound   = errors.New("catalog: not found")
	ErrValidation = errors.New("catalog: validation failed")
)

// AddBookParams carries the fields for a new catalog book.
type AddBookParams struct {
	Title    string  `json:"title"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
}

// UpdateBookParams carries optional book updates; nil means unchanged.
type UpdateBookParams struct {
	Title    *string  `json:"title"`
	Category *string  `json:"category"`
	Price    *float64 `json:"price"`
}

// CreateAuthorParams carries a new author plus the titles to link. Titles
// are trimmed; empty ones are skipped.
type CreateAuthorParams struct {
	AuthorName  string   `json:"authorName"`
	AuthorEmail string   `json:"authorEmail"`
	AuthorPhone string   `json:"authorPhone"`
	Books       []string `json:"books"`
}

// UpdateAuthorParams carries optional author updates.
type UpdateAuthorParams struct {
	AuthorName  *string `json:"authorName"`
	AuthorEmail *string `json:"authorEmail"`
	AuthorPhone *string `json:"authorPhone"`
}

// BorrowerParams carries the fields for a walk-in borrower.
type BorrowerParams struct {
	BorrowerName    string `json:"borrowerName"`
	BorrowerEmail   string `json:"borrowerEmail"`
	BorrowerPhone   string `json:"borrowerPhone"`
	BorrowerAddress string `json:"borrowerAddress"`
}

// UpdateBorrowerParams carries optional borrower updates.
type UpdateBorrowerParams struct {
	BorrowerName    *string `json:"borrowerName"`
	BorrowerEmail   *string `json:"borrowerEmail"`
	BorrowerPhone   *string `json:"borrowerPhone"`
	BorrowerAddress *string `json:"borrowerAddress"`
}

// Counts is the dashboard summary.
type Counts struct {
	Books     int64 `json:"books"`
	Authors   int64 `json:"authors"`
	Borrowers int64 `json:"borrowers"`
	Members   int64 `json:"members"`
}
