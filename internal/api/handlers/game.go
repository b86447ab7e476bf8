package handlers

import (
	"encoding/json"
	"net/http"

	"dungeon-chat/internal/auth"
	"dungeon-chat/internal/repository/db"
)

type submitRequest struct {
	ConversationID string `json:"conversation_id"`
	Message        string `json:"message"`
}

type submitResponse struct {
	Reply     string `json:"reply"`
	KO        bool   `json:"ko"`
	LeveledUp bool   `json:"leveled_up"`
}

type grantXPRequest struct {
	ConversationID string `json:"conversation_id"`
	Amount         int    `json:"amount"`
}

type levelUpRequest struct {
	ConversationID string `json:"conversation_id"`
}

type characterResponse struct {
	Character characterData `json:"character"`
	LeveledUp bool          `json:"leveled_up,omitempty"`
}

type characterData struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Class      string `json:"class"`
	Backstory  string `json:"backstory,omitempty"`
	Health     int    `json:"health"`
	SpellPower int    `json:"spell_power"`
	Strength   int    `json:"strength"`
	XP         int    `json:"xp"`
	Level      int    `json:"level"`
	KO         bool   `json:"ko"`
}

func toCharacterData(ch *db.Character) characterData {
	return characterData{
		ID:         ch.ID,
		Name:       ch.Name,
		Class:      ch.Class,
		Backstory:  ch.Backstory,
		Health:     ch.Health,
		SpellPower: ch.SpellPower,
		Strength:   ch.Strength,
		XP:         ch.XP,
		Level:      ch.Level,
		KO:         ch.KO,
	}
}

// SubmitHandler runs one exchange: player utterance in, cleaned reply out
func (h *Handlers) SubmitHandler(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return
	}

	userID := auth.UserID(r.Context())
	reply, err := h.gameService.SubmitUtterance(r.Context(), req.ConversationID, req.Message, userID)
	if err != nil {
		h.sendServiceError(w, err)
		return
	}

	h.sendJSON(w, http.StatusOK, submitResponse{
		Reply:     reply.CleanedReply,
		KO:        reply.KO,
		LeveledUp: reply.LeveledUp,
	})
}

// GrantXPHandler awards experience directly
func (h *Handlers) GrantXPHandler(w http.ResponseWriter, r *http.Request) {
	var req grantXPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return
	}

	character, leveledUp, err := h.gameService.GrantXP(req.ConversationID, req.Amount)
	if err != nil {
		h.sendServiceError(w, err)
		return
	}

	h.sendJSON(w, http.StatusOK, characterResponse{
		Character: toCharacterData(character),
		LeveledUp: leveledUp,
	})
}

// LevelUpHandler grants a single level directly
func (h *Handlers) LevelUpHandler(w http.ResponseWriter, r *http.Request) {
	var req levelUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return
	}

	character, err := h.gameService.LevelUp(req.ConversationID)
	if err != nil {
		h.sendServiceError(w, err)
		return
	}

	h.sendJSON(w, http.StatusOK, characterResponse{Character: toCharacterData(character)})
}
