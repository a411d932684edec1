package handlers

import (
	"encoding/json"
	"net/http"

	"quizclash-backend/internal/database"
	"quizclash-backend/internal/match"
)

func (a *API) CreateLobby(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	var cfg match.LobbyConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	lobby, err := a.Match.CreateLobby(r.Context(), userID, cfg)
	if err != nil {
		a.writeMatchError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, lobby)
}

func (a *API) ListLobbies(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := a.requireUser(w, r); !ok {
		return
	}
	lobbies, err := database.ListWaitingLobbies(r.Context())
	if err != nil {
		a.Log.Errorf("list lobbies failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list lobbies")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": lobbies})
}

func (a *API) GetLobby(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := a.requireUser(w, r); !ok {
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid lobby id")
		return
	}
	lobby, err := database.GetLobby(r.Context(), id)
	if err != nil {
		a.writeMatchError(w, err)
		return
	}
	roster, err := database.GetRoster(r.Context(), id)
	if err != nil {
		a.Log.Errorf("roster read failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to read roster")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"lobby":   lobby,
		"players": roster,
	})
}

func (a *API) JoinLobby(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid lobby id")
		return
	}
	player, err := a.Match.Join(r.Context(), id, userID)
	if err != nil {
		a.writeMatchError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, player)
}

type joinByCodeRequest struct {
	Code string `json:"code"`
}

func (a *API) JoinByCode(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	var req joinByCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		writeError(w, http.StatusBadRequest, "code is required")
		return
	}
	player, err := a.Match.JoinByCode(r.Context(), req.Code, userID)
	if err != nil {
		a.writeMatchError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, player)
}

type readyRequest struct {
	Ready bool `json:"ready"`
}

func (a *API) SetReady(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid lobby id")
		return
	}
	var req readyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := a.Match.SetReady(r.Context(), id, userID, req.Ready); err != nil {
		a.writeMatchError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ready": req.Ready})
}

func (a *API) LeaveLobby(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid lobby id")
		return
	}
	if err := a.Match.Leave(r.Context(), id, userID); err != nil {
		a.writeMatchError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "left"})
}

func (a *API) StartMatch(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid lobby id")
		return
	}
	if err := a.Match.Start(r.Context(), id, userID); err != nil {
		a.writeMatchError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "started"})
}
