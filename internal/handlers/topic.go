package handlers

import (
	"encoding/json"
	"net/http"

	"quizclash-backend/internal/database"
	"quizclash-backend/internal/models"
)

func (a *API) ListTopics(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := a.requireUser(w, r); !ok {
		return
	}
	topics, err := database.ListTopics(r.Context())
	if err != nil {
		a.Log.Errorf("list topics failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list topics")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": topics})
}

type topicRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (a *API) CreateTopic(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.requireAdmin(w, r); !ok {
		return
	}
	var req topicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	topic := &models.Topic{Name: req.Name, Description: req.Description}
	if err := database.CreateTopic(r.Context(), topic); err != nil {
		a.Log.Errorf("create topic failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create topic")
		return
	}
	writeJSON(w, http.StatusCreated, topic)
}

func (a *API) UpdateTopic(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.requireAdmin(w, r); !ok {
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid topic id")
		return
	}
	var req topicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	topic := &models.Topic{ID: id, Name: req.Name, Description: req.Description}
	if err := database.UpdateTopic(r.Context(), topic); err != nil {
		a.Log.Errorf("update topic failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to update topic")
		return
	}
	writeJSON(w, http.StatusOK, topic)
}

func (a *API) DeleteTopic(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.requireAdmin(w, r); !ok {
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid topic id")
		return
	}
	if err := database.DeleteTopic(r.Context(), id); err != nil {
		a.Log.Errorf("delete topic failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to delete topic")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
