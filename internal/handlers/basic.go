package handlers

import (
	"net/http"

	"github.com/craigsakuma/travelroboto/internal/models"
)

// HealthCheckHandler godoc
// @Summary Health check
// @Description Returns server health status
// @Tags general
// @Accept json
// @Produce json
// @Success 200 {object} models.BasicResponse
// @Router /health [get]
func HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.BasicResponse{
		Message: "Server is healthy",
		Status:  "success",
	})
}
