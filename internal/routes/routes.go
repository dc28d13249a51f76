package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/craigsakuma/travelroboto/internal/handlers"
)

// Handlers collects everything the router needs wired up
type Handlers struct {
	Health http.HandlerFunc
	Home   http.HandlerFunc

	ChatHandler   *handlers.ChatHandler
	IngestHandler *handlers.IngestHandler
}

// RegisterRoutes sets up all application routes
func RegisterRoutes(router *mux.Router, h *Handlers) {
	// Health endpoints
	router.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	// Main routes
	router.HandleFunc("/", h.Home).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()

	// Chat endpoints
	api.HandleFunc("/chat/ask", h.ChatHandler.Ask).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/chat/llm/health", h.ChatHandler.LLMHealth).Methods(http.MethodGet)

	// Document ingestion endpoints
	if h.IngestHandler != nil {
		api.HandleFunc("/documents", h.IngestHandler.SubmitDocument).Methods(http.MethodPost, http.MethodOptions)
		api.HandleFunc("/documents", h.IngestHandler.ListDocuments).Methods(http.MethodGet)
		api.HandleFunc("/documents/{id}", h.IngestHandler.DeleteDocument).Methods(http.MethodDelete)
		api.HandleFunc("/jobs/{id}", h.IngestHandler.JobStatus).Methods(http.MethodGet)
	}
}
