// internal/catalog/handler.go
package catalog

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

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
	case errors.Is(err, ErrValidation):
		utils.JSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		utils.JSONError(w, "Not found.", http.StatusNotFound)
	default:
		utils.JSONServerError(w, err)
	}
}

func idParam(r *http.Request) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
}

// --- books ---

func (h *Handler) AddBook(w http.ResponseWriter, r *http.Request) {
	var req AddBookParams
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, "Invalid request body.", http.StatusBadRequest)
		return
	}
	book, err := h.service.AddBook(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, map[string]any{
		"message": "Book added successfully",
		"book":    book,
	})
}

func (h *Handler) GetBook(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		utils.JSONError(w, "Invalid book ID.", http.StatusBadRequest)
		return
	}
	book, err := h.service.GetBook(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, book)
}

func (h *Handler) ListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.service.ListBooks(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, books)
}

func (h *Handler) SearchBooks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	books, err := h.service.SearchBooks(r.Context(),
		q.Get("query"),
		q.Get("category"),
		q.Get("available") == "true",
	)
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, books)
}

func (h *Handler) UpdateBook(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		utils.JSONError(w, "Invalid book ID.", http.StatusBadRequest)
		return
	}
	var req UpdateBookParams
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, "Invalid request body.", http.StatusBadRequest)
		return
	}
	book, err := h.service.UpdateBook(r.Context(), id, req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]any{
		"message": "Book updated successfully",
		"book":    book,
	})
}

func (h *Handler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		utils.JSONError(w, "Invalid book ID.", http.StatusBadRequest)
		return
	}
	if err := h.service.DeleteBook(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"message": "Book deleted successfully"})
}

// --- authors ---

func (h *Handler) CreateAuthor(w http.ResponseWriter, r *http.Request) {
	var req CreateAuthorParams
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, "Invalid request body.", http.StatusBadRequest)
		return
	}
	author, err := h.service.CreateAuthorWithBooks(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, map[string]any{
		"message": "Author and books created successfully",
		"data":    author,
	})
}

func (h *Handler) GetAuthor(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		utils.JSONError(w, "Invalid author ID.", http.StatusBadRequest)
		return
	}
	author, err := h.service.GetAuthor(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, author)
}

func (h *Handler) ListAuthors(w http.ResponseWriter, r *http.Request) {
	authors, err := h.service.ListAuthors(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, authors)
}

func (h *Handler) SearchAuthors(w http.ResponseWriter, r *http.Request) {
	authors, err := h.service.SearchAuthors(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, authors)
}

func (h *Handler) UpdateAuthor(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		utils.JSONError(w, "Invalid author ID.", http.StatusBadRequest)
		return
	}
	var req UpdateAuthorParams
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, "Invalid request body.", http.StatusBadRequest)
		return
	}
	author, err := h.service.UpdateAuthor(r.Context(), id, req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, author)
}

func (h *Handler) DeleteAuthor(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		utils.JSONError(w, "Invalid author ID.", http.StatusBadRequest)
		return
	}
	if err := h.service.DeleteAuthor(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"message": "Author deleted successfully"})
}

// --- borrowers ---

func (h *Handler) AddBorrower(w http.ResponseWriter, r *http.Request) {
	var req BorrowerParams
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, "Invalid request body.", http.StatusBadRequest)
		return
	}
	borrower, err := h.service.AddBorrower(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, map[string]any{
		"message":  "Borrower added successfully",
		"borrower": borrower,
	})
}

func (h *Handler) GetBorrower(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		utils.JSONError(w, "Invalid borrower ID.", http.StatusBadRequest)
		return
	}
	borrower, err := h.service.GetBorrower(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, borrower)
}

func (h *Handler) ListBorrowers(w http.ResponseWriter, r *http.Request) {
	borrowers, err := h.service.ListBorrowers(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, borrowers)
}

func (h *Handler) UpdateBorrower(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		utils.JSONError(w, "Invalid borrower ID.", http.StatusBadRequest)
		return
	}
	var req UpdateBorrowerParams
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, "Invalid request body.", http.StatusBadRequest)
		return
	}
	borrower, err := h.service.UpdateBorrower(r.Context(), id, req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, borrower)
}

func (h *Handler) DeleteBorrower(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		utils.JSONError(w, "Invalid borrower ID.", http.StatusBadRequest)
		return
	}
	if err := h.service.DeleteBorrower(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"message": "Borrower deleted successfully"})
}

// Counts handles GET /api/counts for the staff dashboard.
func (h *Handler) Counts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.service.Counts(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, counts)
}
