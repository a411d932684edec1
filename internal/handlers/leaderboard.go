package handlers

import (
	"encoding/json"
	"net/http"

	"quizclash-backend/internal/cache"
	"quizclash-backend/internal/database"
)

const leaderboardSize = 10

// Leaderboard returns the top players by lifetime score plus the caller's
// own rank. The top list is cached in Redis for a short window; the
// caller's rank is always computed fresh.
func (a *API) Leaderboard(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := a.requireUser(w, r)
	if !ok {
		return
	}

	var top []database.LeaderboardEntry
	if cached, err := cache.CachedLeaderboard(r.Context()); err == nil {
		if err := json.Unmarshal(cached, &top); err != nil {
			top = nil
		}
	}
	if top == nil {
		entries, err := database.TopUsersByScore(r.Context(), leaderboardSize)
		if err != nil {
			a.Log.Errorf("leaderboard read failed: %v", err)
			writeError(w, http.StatusInternalServerError, "failed to read leaderboard")
			return
		}
		top = entries
		if payload, err := json.Marshal(top); err == nil {
			if err := cache.CacheLeaderboard(r.Context(), payload); err != nil {
				a.Log.Warnf("leaderboard cache write failed: %v", err)
			}
		}
	}

	rank, err := database.UserRank(r.Context(), userID)
	if err != nil {
		a.Log.Warnf("rank read failed: %v", err)
		rank = 0
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":      top,
		"your_rank": rank,
	})
}

// UpdateScore credits points to the caller directly. Kept for client
// integration testing; normal scoring goes through match settlement.
func (a *API) UpdateScore(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	var req struct {
		Points int `json:"points"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Points < 0 {
		writeError(w, http.StatusBadRequest, "points must not be negative")
		return
	}
	if err := database.AddScore(r.Context(), userID, req.Points); err != nil {
		a.Log.Errorf("score update failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to update score")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
