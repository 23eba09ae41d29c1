// internal/identity/handler.go
package identity

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
	case errors.Is(err, ErrInvalidCredentials):
		utils.JSONError(w, "Invalid credentials.", http.StatusUnauthorized)
	case errors.Is(err, ErrAccountDeactivated):
		utils.JSONError(w, "Invalid credentials or account is deactivated.", http.StatusUnauthorized)
	case errors.Is(err, ErrNotFound):
		utils.JSONError(w, "Librarian not found.", http.StatusNotFound)
	case errors.Is(err, ErrRateLimited):
		utils.JSONError(w, "Too many requests.", http.StatusTooManyRequests)
	default:
		utils.JSONServerError(w, err)
	}
}

// Login handles POST /api/auth/login for admin and librarians.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, "Invalid request body.", http.StatusBadRequest)
		return
	}

	token, principal, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"token":   token,
		"user":    principal,
	})
}

// Verify handles GET /api/auth/verify; Authenticate middleware has already
// validated the token.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		utils.JSONError(w, "Invalid or expired token.", http.StatusUnauthorized)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]any{
		"valid": true,
		"user": map[string]string{
			"id":       claims.UserID,
			"username": claims.Username,
			"role":     claims.Role,
			"name":     claims.Name,
		},
	})
}

// ChangePassword handles PUT /api/auth/change-password for the logged-in
// staff account.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		utils.JSONError(w, "Invalid or expired token.", http.StatusUnauthorized)
		return
	}

	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, "Invalid request body.", http.StatusBadRequest)
		return
	}

	if err := h.service.ChangePassword(r.Context(), claims, req.CurrentPassword, req.NewPassword); err != nil {
		h.writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"message": "Password changed successfully"})
}

// CreateLibrarian handles POST /api/auth/librarians (admin only).
func (h *Handler) CreateLibrarian(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFromContext(r.Context())

	var req CreateLibrarianParams
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, "Invalid request body.", http.StatusBadRequest)
		return
	}

	lib, err := h.service.CreateLibrarian(r.Context(), req, claims.Username)
	if err != nil {
		h.writeError(w, err)
		return
	}

	utils.JSON(w, http.StatusCreated, map[string]any{
		"message":   "Librarian created successfully",
		"librarian": lib,
	})
}

// ListLibrarians handles GET /api/auth/librarians (admin only).
func (h *Handler) ListLibrarians(w http.ResponseWriter, r *http.Request) {
	libs, err := h.service.ListLibrarians(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, libs)
}

// GetLibrarian handles GET /api/auth/librarians/{id} (admin only).
func (h *Handler) GetLibrarian(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		utils.JSONError(w, "Invalid librarian ID.", http.StatusBadRequest)
		return
	}
	lib, err := h.service.GetLibrarian(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, lib)
}

// UpdateLibrarian handles PUT /api/auth/librarians/{id} (admin only).
func (h *Handler) UpdateLibrarian(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		utils.JSONError(w, "Invalid librarian ID.", http.StatusBadRequest)
		return
	}

	var req UpdateLibrarianParams
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, "Invalid request body.", http.StatusBadRequest)
		return
	}

	lib, err := h.service.UpdateLibrarian(r.Context(), id, req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]any{
		"message":   "Librarian updated successfully",
		"librarian": lib,
	})
}

// DeleteLibrarian handles DELETE /api/auth/librarians/{id} (admin only).
func (h *Handler) DeleteLibrarian(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		utils.JSONError(w, "Invalid librarian ID.", http.StatusBadRequest)
		return
	}
	if err := h.service.DeleteLibrarian(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"message": "Librarian deleted successfully"})
}
