package handlers

import (
	"encoding/json"
	"net/http"

	"dungeon-chat/internal/auth"
	"dungeon-chat/internal/repository/db"
)

type createAdventureRequest struct {
	Name     string `json:"name"`
	RuleMode string `json:"rule_mode"`
	Theme    string `json:"theme"`
}

type adventureInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	RuleMode string `json:"rule_mode"`
	Theme    string `json:"theme"`
}

type createAdventureResponse struct {
	adventureInfo
	Intro string `json:"intro"`
}

type adventuresResponse struct {
	Adventures []adventureInfo `json:"adventures"`
}

type turnData struct {
	ID              string   `json:"id"`
	Speaker         string   `json:"speaker"`
	Variants        []string `json:"variants"`
	SelectedVariant int      `json:"selected_variant"`
}

type turnsResponse struct {
	Turns []turnData `json:"turns"`
}

type saveCharacterRequest struct {
	ConversationID string `json:"conversation_id"`
	Name           string `json:"name"`
	Class          string `json:"class"`
	Backstory      string `json:"backstory"`
}

func toAdventureInfo(conv *db.Conversation) adventureInfo {
	return adventureInfo{
		ID:       conv.ID,
		Name:     conv.Name,
		RuleMode: conv.RuleMode,
		Theme:    conv.Theme,
	}
}

// CreateAdventureHandler creates a new adventure and narrates its opening
func (h *Handlers) CreateAdventureHandler(w http.ResponseWriter, r *http.Request) {
	var req createAdventureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return
	}

	userID := auth.UserID(r.Context())
	created, err := h.adventureService.Create(r.Context(), userID, req.Name, req.RuleMode, req.Theme)
	if err != nil {
		h.sendServiceError(w, err)
		return
	}

	h.sendJSON(w, http.StatusCreated, createAdventureResponse{
		adventureInfo: toAdventureInfo(created.Conversation),
		Intro:         created.Intro,
	})
}

// ListAdventuresHandler lists the caller's adventures
func (h *Handlers) ListAdventuresHandler(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	conversations, err := h.adventureService.List(userID)
	if err != nil {
		h.sendServiceError(w, err)
		return
	}

	resp := adventuresResponse{Adventures: make([]adventureInfo, 0, len(conversations))}
	for i := range conversations {
		resp.Adventures = append(resp.Adventures, toAdventureInfo(&conversations[i]))
	}
	h.sendJSON(w, http.StatusOK, resp)
}

// TurnsHandler returns the full turn history of an adventure
func (h *Handlers) TurnsHandler(w http.ResponseWriter, r *http.Request) {
	conversationID := r.PathValue("id")
	userID := auth.UserID(r.Context())

	turns, err := h.adventureService.History(conversationID, userID)
	if err != nil {
		h.sendServiceError(w, err)
		return
	}

	resp := turnsResponse{Turns: make([]turnData, 0, len(turns))}
	for _, turn := range turns {
		speaker := "dm"
		if turn.SpeakerID != nil {
			speaker = "user"
		}
		variants := make([]string, 0, len(turn.Variants))
		for _, v := range turn.Variants {
			variants = append(variants, v.Text)
		}
		resp.Turns = append(resp.Turns, turnData{
			ID:              turn.ID,
			Speaker:         speaker,
			Variants:        variants,
			SelectedVariant: turn.SelectedVariant,
		})
	}
	h.sendJSON(w, http.StatusOK, resp)
}

// DeleteAdventureHandler deletes an adventure and everything it owns
func (h *Handlers) DeleteAdventureHandler(w http.ResponseWriter, r *http.Request) {
	conversationID := r.PathValue("id")
	userID := auth.UserID(r.Context())

	if err := h.adventureService.Delete(conversationID, userID); err != nil {
		h.sendServiceError(w, err)
		return
	}
	h.sendJSON(w, http.StatusOK, map[string]string{"message": "Adventure deleted"})
}

// SaveCharacterHandler creates or updates the adventure's character
func (h *Handlers) SaveCharacterHandler(w http.ResponseWriter, r *http.Request) {
	var req saveCharacterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return
	}

	userID := auth.UserID(r.Context())
	character, err := h.adventureService.SaveCharacter(req.ConversationID, userID, req.Name, req.Class, req.Backstory)
	if err != nil {
		h.sendServiceError(w, err)
		return
	}

	h.sendJSON(w, http.StatusCreated, characterResponse{Character: toCharacterData(character)})
}

// GetCharacterHandler returns the adventure's character
func (h *Handlers) GetCharacterHandler(w http.ResponseWriter, r *http.Request) {
	conversationID := r.PathValue("id")
	userID := auth.UserID(r.Context())

	character, err := h.adventureService.GetCharacter(conversationID, userID)
	if err != nil {
		h.sendServiceError(w, err)
		return
	}

	h.sendJSON(w, http.StatusOK, characterResponse{Character: toCharacterData(character)})
}
