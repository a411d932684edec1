package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"quizclash-backend/internal/database"
	"quizclash-backend/internal/match"
)

type answerRequest struct {
	CardID uuid.UUID `json:"card_id"`
	Answer string    `json:"answer"`
}

func (a *API) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	matchID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid match id")
		return
	}
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CardID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "card_id and answer are required")
		return
	}

	result, err := a.Match.SubmitAnswer(r.Context(), matchID, userID, req.CardID, req.Answer)
	if err != nil {
		a.writeMatchError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type bringItemsRequest struct {
	Items []match.ItemRequest `json:"items"`
}

func (a *API) BringItems(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	matchID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid match id")
		return
	}
	var req bringItemsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "items are required")
		return
	}

	if err := a.Match.BringItems(r.Context(), matchID, userID, req.Items); err != nil {
		a.writeMatchError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "items brought"})
}

func (a *API) MatchPlayers(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := a.requireUser(w, r); !ok {
		return
	}
	matchID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid match id")
		return
	}
	roster, err := database.GetRoster(r.Context(), matchID)
	if err != nil {
		a.Log.Errorf("roster read failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to read roster")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": roster})
}

// MatchHand returns the caller's own cards; one player cannot read
// another's hand.
func (a *API) MatchHand(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	matchID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid match id")
		return
	}
	cards, err := database.GetHandCards(r.Context(), matchID, userID)
	if err != nil {
		a.Log.Errorf("hand read failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to read hand")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": cards})
}
