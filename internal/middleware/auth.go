// internal/middleware/auth.go
package middleware

import (
	"net/http"
	"strings"

	"librekeep/internal/identity"
	"librekeep/internal/models"
	"librekeep/internal/utils"
)

// TokenVerifier checks a bearer token and returns its claims.
type TokenVerifier interface {
	Verify(token string) (*identity.Claims, error)
}

// Authenticate rejects requests without a valid bearer token and stores the
// claims on the request context.
func Authenticate(v TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				utils.JSONError(w, "No token provided.", http.StatusUnauthorized)
				return
			}
			claims, err := v.Verify(strings.TrimPrefix(auth, "Bearer "))
			if err != nil {
				utils.JSONError(w, "Invalid or expired token.", http.StatusUnauthorized)
				return
			}
			ctx := identity.ContextWithClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func requireRole(allowed func(role string) bool, message string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := identity.ClaimsFromContext(r.Context())
			if !ok || !allowed(claims.Role) {
				utils.JSONError(w, message, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin admits only the admin identity.
func RequireAdmin() func(http.Handler) http.Handler {
	return requireRole(func(role string) bool {
		return role == models.RoleAdmin
	}, "Admin access required.")
}

// RequireStaff admits librarians and the admin; admin is a superset of
// librarian capabilities.
func RequireStaff() func(http.Handler) http.Handler {
	return requireRole(models.IsStaff, "Staff access required.")
}

// RequireMember admits member accounts only; staff capabilities are
// disjoint from member capabilities.
func RequireMember() func(http.Handler) http.Handler {
	return requireRole(func(role string) bool {
		return role == models.RoleMember
	}, "Member access required.")
}
