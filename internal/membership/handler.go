// internal/membership/handler.go
package membership

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"librekeep/internal/identity"
	"librekeep/internal/models"
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
		utils.JSONError(w, "Invalid credentials or account is deactivated.", http.StatusUnauthorized)
	case errors.Is(err, ErrNotFound):
		utils.JSONError(w, "Member not found.", http.StatusNotFound)
	case errors.Is(err, ErrOpenLoans):
		utils.JSONError(w, "Cannot delete member with borrowed books. Please return all books first.", http.StatusBadRequest)
	case errors.Is(err, ErrRateLimited):
		utils.JSONError(w, "Too many requests. Please try again later.", http.StatusTooManyRequests)
	default:
		utils.JSONServerError(w, err)
	}
}

func selfID(r *http.Request) (primitive.ObjectID, bool) {
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

func userView(m *models.Member) map[string]any {
	return map[string]any{
		"id":       m.ID,
		"username": m.Username,
		"name":     m.Name,
		"email":    m.Email,
		"role":     m.Role,
	}
}

// Register is the self-service signup endpoint. A successful registration
// responds with a session token so the client can log in immediately.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterParams
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, "Invalid request body.", http.StatusBadRequest)
		return
	}
	session, err := h.service.Register(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, map[string]any{
		"message": "Registration successful",
		"token":   session.Token,
		"user":    userView(session.Member),
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, "Invalid request body.", http.StatusBadRequest)
		return
	}
	session, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"token":   session.Token,
		"user":    userView(session.Member),
	})
}

func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	id, ok := selfID(r)
	if !ok {
		utils.JSONError(w, "Invalid token.", http.StatusUnauthorized)
		return
	}
	member, err := h.service.Profile(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, member)
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := selfID(r)
	if !ok {
		utils.JSONError(w, "Invalid token.", http.StatusUnauthorized)
		return
	}
	var req UpdateProfileParams
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, "Invalid request body.", http.StatusBadRequest)
		return
	}
	member, err := h.service.UpdateProfile(r.Context(), id, req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	view := userView(member)
	view["phone"] = member.Phone
	view["address"] = member.Address
	utils.JSON(w, http.StatusOK, map[string]any{
		"message": "Profile updated successfully",
		"user":    view,
	})
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	id, ok := selfID(r)
	if !ok {
		utils.JSONError(w, "Invalid token.", http.StatusUnauthorized)
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
	if err := h.service.ChangePassword(r.Context(), id, req.CurrentPassword, req.NewPassword); err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			utils.JSONError(w, "Current password is incorrect.", http.StatusUnauthorized)
			return
		}
		h.writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]any{"message": "Password changed successfully"})
}

// --- staff-side account management ---

func idParam(r *http.Request) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
}

func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.service.ListMembers(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, members)
}

func (h *Handler) GetMember(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		utils.JSONError(w, "Invalid member ID.", http.StatusBadRequest)
		return
	}
	member, err := h.service.GetMember(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, member)
}

func (h *Handler) UpdateMember(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		utils.JSONError(w, "Invalid member ID.", http.StatusBadRequest)
		return
	}
	var req UpdateMemberParams
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, "Invalid request body.", http.StatusBadRequest)
		return
	}
	member, err := h.service.UpdateMember(r.Context(), id, req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	view := userView(member)
	view["phone"] = member.Phone
	view["address"] = member.Address
	view["isActive"] = member.IsActive
	utils.JSON(w, http.StatusOK, map[string]any{
		"message": "Member updated successfully",
		"member":  view,
	})
}

func (h *Handler) DeleteMember(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		utils.JSONError(w, "Invalid member ID.", http.StatusBadRequest)
		return
	}
	if err := h.service.DeleteMember(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]any{"message": "Member deleted successfully"})
}
