package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/craigsakuma/travelroboto/internal/models"
)

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// writeError writes the stable error payload
func writeError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, models.ErrorResponse{
		Error:   code,
		Message: message,
	})
}
