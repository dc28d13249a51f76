package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/craigsakuma/travelroboto/internal/models"
	"github.com/craigsakuma/travelroboto/internal/services"
)

// LLMHealthChecker reports whether the generation backend is reachable
type LLMHealthChecker interface {
	Name() string
	HealthCheck(ctx context.Context) error
}

// ChatHandler serves the question-answering endpoints
type ChatHandler struct {
	askService *services.AskService
	provider   LLMHealthChecker
	logger     *log.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(askService *services.AskService, provider LLMHealthChecker, logger *log.Logger) *ChatHandler {
	return &ChatHandler{
		askService: askService,
		provider:   provider,
		logger:     logger,
	}
}

// Ask handles itinerary questions
// Ask godoc
// @Summary Ask a question about the itinerary
// @Description Answers a natural-language question grounded in retrieved itinerary context and the supplied conversation history
// @Tags chat
// @Accept json
// @Produce json
// @Param request body models.AskRequest true "Question with optional history and retrieval limit"
// @Success 200 {object} models.AskResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /api/v1/chat/ask [post]
func (h *ChatHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var request models.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, models.ErrCodeValidation, "Invalid request body: "+err.Error())
		return
	}

	response, err := h.askService.Ask(r.Context(), &request)
	if err != nil {
		h.respondAskError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

// LLMHealth checks if the generation backend is available
// LLMHealth godoc
// @Summary Check LLM health
// @Description Check if the configured LLM provider is reachable
// @Tags chat
// @Accept json
// @Produce json
// @Success 200 {object} models.BasicResponse
// @Failure 503 {object} models.BasicResponse
// @Router /api/v1/chat/llm/health [get]
func (h *ChatHandler) LLMHealth(w http.ResponseWriter, r *http.Request) {
	if h.provider == nil {
		writeJSON(w, http.StatusServiceUnavailable, models.BasicResponse{
			Message: "No LLM provider is configured",
			Status:  "error",
		})
		return
	}

	if err := h.provider.HealthCheck(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, models.BasicResponse{
			Message: h.provider.Name() + " is not available: " + err.Error(),
			Status:  "error",
		})
		return
	}

	writeJSON(w, http.StatusOK, models.BasicResponse{
		Message: h.provider.Name() + " is available",
		Status:  "success",
	})
}

// respondAskError maps pipeline errors onto stable API error codes
func (h *ChatHandler) respondAskError(w http.ResponseWriter, err error) {
	var validationErr *models.ValidationError
	if errors.As(err, &validationErr) {
		writeError(w, http.StatusBadRequest, models.ErrCodeValidation, validationErr.Error())
		return
	}

	var generationErr *models.GenerationError
	if errors.As(err, &generationErr) {
		h.logger.Printf("Generation failed: %v", err)
		writeError(w, http.StatusBadGateway, models.ErrCodeGeneration,
			"TravelBot is unable to answer right now. Please try again in a moment.")
		return
	}

	h.logger.Printf("Unexpected pipeline error: %v", err)
	writeError(w, http.StatusInternalServerError, models.ErrCodeInternal, "An unexpected error occurred.")
}
