package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"quizclash-backend/internal/auth"
	"quizclash-backend/internal/match"
	"quizclash-backend/internal/models"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// bearerToken pulls the token from the Authorization header, falling back
// to the "token" query parameter for websocket clients that cannot set
// headers.
func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

// authUser authenticates the request and returns the caller's id and role.
func authUser(r *http.Request) (uuid.UUID, models.Role, error) {
	token := bearerToken(r)
	if token == "" {
		return uuid.Nil, "", errors.New("missing token")
	}
	sub, role, err := auth.AuthenticateJWT(token)
	if err != nil {
		return uuid.Nil, "", err
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, "", errors.New("invalid user id in token")
	}
	return id, models.Role(role), nil
}

// requireUser writes a 401 and returns false when the request carries no
// valid token.
func (a *API) requireUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, models.Role, bool) {
	id, role, err := authUser(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return uuid.Nil, "", false
	}
	return id, role, true
}

// requireAdmin additionally gates on the ADMIN role.
func (a *API) requireAdmin(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, role, ok := a.requireUser(w, r)
	if !ok {
		return uuid.Nil, false
	}
	if role != models.RoleAdmin {
		writeError(w, http.StatusForbidden, "admin role required")
		return uuid.Nil, false
	}
	return id, true
}

// pathUUID parses the {id} route segment.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(r.PathValue(name))
}

// matchErrorStatus maps match core sentinels onto HTTP status codes.
func matchErrorStatus(err error) int {
	switch {
	case errors.Is(err, match.ErrLobbyNotFound),
		errors.Is(err, match.ErrTopicNotFound),
		errors.Is(err, match.ErrPlayerNotFound),
		errors.Is(err, match.ErrCardNotFound),
		errors.Is(err, match.ErrQuestionNotFound):
		return http.StatusNotFound
	case errors.Is(err, match.ErrAlreadyJoined),
		errors.Is(err, match.ErrLobbyFull),
		errors.Is(err, match.ErrCardConsumed),
		errors.Is(err, match.ErrReadyUnchanged):
		return http.StatusConflict
	case errors.Is(err, match.ErrNotHost):
		return http.StatusForbidden
	case errors.Is(err, match.ErrLobbyNotWaiting),
		errors.Is(err, match.ErrLobbyNotPlaying),
		errors.Is(err, match.ErrNotPlaying),
		errors.Is(err, match.ErrNotReadyable),
		errors.Is(err, match.ErrPoolTooSmall),
		errors.Is(err, match.ErrInsufficientInventory):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeMatchError renders a match core error with its mapped status.
func (a *API) writeMatchError(w http.ResponseWriter, err error) {
	status := matchErrorStatus(err)
	if status == http.StatusInternalServerError {
		a.Log.Errorf("internal error: %v", err)
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}
