package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"quizclash-backend/internal/database"
	"quizclash-backend/internal/models"
)

// ListQuestions is admin-only because rows include correct answers.
func (a *API) ListQuestions(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.requireAdmin(w, r); !ok {
		return
	}
	topicID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid topic id")
		return
	}
	questions, err := database.ListQuestionsByTopic(r.Context(), topicID)
	if err != nil {
		a.Log.Errorf("list questions failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list questions")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": questions})
}

type questionRequest struct {
	TopicID       uuid.UUID `json:"topic_id"`
	Content       string    `json:"content"`
	Difficulty    int       `json:"difficulty"`
	CorrectAnswer string    `json:"correct_answer"`
	WrongAnswer1  *string   `json:"wrong_answer_1"`
	WrongAnswer2  *string   `json:"wrong_answer_2"`
	WrongAnswer3  *string   `json:"wrong_answer_3"`
}

func (req *questionRequest) validate() string {
	if req.Content == "" || req.CorrectAnswer == "" {
		return "content and correct_answer are required"
	}
	if req.Difficulty <= 0 {
		return "difficulty must be positive"
	}
	return ""
}

func (a *API) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.requireAdmin(w, r); !ok {
		return
	}
	var req questionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TopicID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	q := &models.Question{
		TopicID:       req.TopicID,
		Content:       req.Content,
		Difficulty:    req.Difficulty,
		CorrectAnswer: req.CorrectAnswer,
		WrongAnswer1:  req.WrongAnswer1,
		WrongAnswer2:  req.WrongAnswer2,
		WrongAnswer3:  req.WrongAnswer3,
	}
	if err := database.CreateQuestion(r.Context(), q); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			writeError(w, http.StatusNotFound, "topic not found")
			return
		}
		a.Log.Errorf("create question failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create question")
		return
	}
	writeJSON(w, http.StatusCreated, q)
}

func (a *API) UpdateQuestion(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.requireAdmin(w, r); !ok {
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid question id")
		return
	}
	var req questionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	q := &models.Question{
		ID:            id,
		Content:       req.Content,
		Difficulty:    req.Difficulty,
		CorrectAnswer: req.CorrectAnswer,
		WrongAnswer1:  req.WrongAnswer1,
		WrongAnswer2:  req.WrongAnswer2,
		WrongAnswer3:  req.WrongAnswer3,
	}
	if err := database.UpdateQuestion(r.Context(), q); err != nil {
		a.Log.Errorf("update question failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to update question")
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (a *API) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.requireAdmin(w, r); !ok {
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid question id")
		return
	}
	if err := database.DeleteQuestion(r.Context(), id); err != nil {
		a.Log.Errorf("delete question failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to delete question")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
