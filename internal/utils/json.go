// internal/utils/json.go
package utils

import (
	"encoding/json"
	"net/http"
)

// JSON writes v as a JSON response with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// JSONError writes a handled failure as {"message": ...}.
func JSONError(w http.ResponseWriter, message string, status int) {
	JSON(w, status, map[string]string{"message": message})
}

// JSONServerError writes an unexpected failure as {"error": ...}.
func JSONServerError(w http.ResponseWriter, err error) {
	JSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}
