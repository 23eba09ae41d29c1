// internal/circulation/handler.go
package circulation

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"librekeep/internal/identity"
	"librekeep/internal/utils"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrBookNotFound),
		errors.Is(err, ErrBorrowerNotFound),
		errors.Is(err, ErrMemberNotFound):
		utils.JSONError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrAlreadyBorrowed):
		utils.JSONError(w, "Book is already borrowed.", http.StatusConflict)
	case errors.Is(err, ErrLoanLimit):
		utils.JSONError(w, "You have reached the maximum number of borrowed books.", http.StatusBadRequest)
	case errors.Is(err, ErrNoOpenLoan):
		utils.JSONError(w, "No open loan found for this book.", http.StatusBadRequest)
	default:
		utils.JSONServerError(w, err)
	}
}

// memberID resolves the authenticated member from the request claims.
func memberID(r *http.Request) (primitive.ObjectID, bool) {
	claims, ok := identity.ClaimsFromContext(r.Context())
	if !ok {
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}

type desk struct {
	BookID     string `json:"bookId"`
	BorrowerID string `json:"borrowerId"`
}

func (d desk) ids() (book, borrower primitive.ObjectID, err error) {
	if book, err = primitive.ObjectIDFromHex(d.BookID); err != nil {
		return
	}
	borrower, err = primitive.ObjectIDFromHex(d.BorrowerID)
	return
}

// CheckOut is the staff desk lending a book to a borrower account.
func (h *Handler) CheckOut(w http.ResponseWriter, r *http.Request) {
	var req desk
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, "Invalid request body.", http.StatusBadRequest)
		return
	}
	bookID, borrowerID, err := req.ids()
	if err != nil {
		utils.JSONError(w, "Invalid book or borrower ID.", http.StatusBadRequest)
		return
	}
	receipt, err := h.service.CheckOut(r.Context(), bookID, borrowerID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]any{
		"message": "Book checked out successfully",
		"book":    receipt,
	})
}

// CheckIn is the staff desk taking a book back from a borrower account.
func (h *Handler) CheckIn(w http.ResponseWriter, r *http.Request) {
	var req desk
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, "Invalid request body.", http.StatusBadRequest)
		return
	}
	bookID, borrowerID, err := req.ids()
	if err != nil {
		utils.JSONError(w, "Invalid book or borrower ID.", http.StatusBadRequest)
		return
	}
	receipt, err := h.service.CheckIn(r.Context(), bookID, borrowerID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]any{
		"message": "Book checked in successfully",
		"book":    receipt,
	})
}

// Borrow opens a loan on the authenticated member's account.
func (h *Handler) Borrow(w http.ResponseWriter, r *http.Request) {
	member, ok := memberID(r)
	if !ok {
		utils.JSONError(w, "Invalid token.", http.StatusUnauthorized)
		return
	}
	bookID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "bookId"))
	if err != nil {
		utils.JSONError(w, "Invalid book ID.", http.StatusBadRequest)
		return
	}
	receipt, err := h.service.Borrow(r.Context(), member, bookID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]any{
		"message": "Book borrowed successfully",
		"book":    receipt,
	})
}

// Return closes the authenticated member's open loan.
func (h *Handler) Return(w http.ResponseWriter, r *http.Request) {
	member, ok := memberID(r)
	if !ok {
		utils.JSONError(w, "Invalid token.", http.StatusUnauthorized)
		return
	}
	bookID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "bookId"))
	if err != nil {
		utils.JSONError(w, "Invalid book ID.", http.StatusBadRequest)
		return
	}
	receipt, err := h.service.Return(r.Context(), member, bookID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]any{
		"message": "Book returned successfully",
		"book":    receipt,
	})
}

// MyBooks lists the authenticated member's open loans.
func (h *Handler) MyBooks(w http.ResponseWriter, r *http.Request) {
	member, ok := memberID(r)
	if !ok {
		utils.JSONError(w, "Invalid token.", http.StatusUnauthorized)
		return
	}
	loans, err := h.service.CurrentLoans(r.Context(), member)
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, loans)
}

// History lists the authenticated member's full lending history.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	member, ok := memberID(r)
	if !ok {
		utils.JSONError(w, "Invalid token.", http.StatusUnauthorized)
		return
	}
	history, err := h.service.History(r.Context(), member)
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, history)
}

// Overdue lists every open member loan past its due date.
func (h *Handler) Overdue(w http.ResponseWriter, r *http.Request) {
	overdue, err := h.service.Overdue(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, overdue)
}
