// Package handlers exposes the game and adventure services over HTTP
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"dungeon-chat/internal/app"
	"dungeon-chat/internal/logger"
	"dungeon-chat/internal/repository/db"
	"dungeon-chat/internal/service/adventure"
	"dungeon-chat/internal/service/game"
	"dungeon-chat/internal/service/llm"
	"dungeon-chat/pkg/validation"
)

// Handlers wires the HTTP surface to the service layer
type Handlers struct {
	config           *app.Config
	gameService      *game.Service
	adventureService *adventure.Service
}

// NewHandlers creates the HTTP handlers. moderation may be nil.
func NewHandlers(config *app.Config, completion llm.CompletionService, moderation llm.ModerationService) *Handlers {
	return &Handlers{
		config:           config,
		gameService:      game.NewService(config.DB, completion, moderation, config.AppConfig),
		adventureService: adventure.NewService(config.DB, completion, config.AppConfig),
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handlers) sendJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// sendServiceError maps the service error taxonomy onto HTTP statuses
func (h *Handlers) sendServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, validation.ErrValidation):
		h.sendJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, db.ErrNotFound):
		h.sendJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, llm.ErrCompletion):
		logger.Log.WithError(err).Error("Completion service failure")
		h.sendJSON(w, http.StatusBadGateway, errorResponse{Error: "The storyteller is unavailable right now. Please try again."})
	default:
		logger.Log.WithError(err).Error("Unhandled service error")
		h.sendJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal server error"})
	}
}
