package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"

	"quizclash-backend/internal/auth"
	"quizclash-backend/internal/cache"
	"quizclash-backend/internal/database"
	"quizclash-backend/internal/models"
)

type registerRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func publicUser(u *models.User) map[string]interface{} {
	return map[string]interface{}{
		"id":            u.ID,
		"name":          u.Name,
		"username":      u.Username,
		"email":         u.Email,
		"role":          u.Role,
		"avatar_url":    u.AvatarURL,
		"token_balance": u.TokenBalance,
		"score":         u.Score,
		"created_at":    u.CreatedAt,
	}
}

func (a *API) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username, email and password are required")
		return
	}

	user := &models.User{
		Name:     req.Name,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     models.RolePlayer,
	}
	if err := database.CreateUser(r.Context(), user); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			writeError(w, http.StatusConflict, "username or email already taken")
			return
		}
		a.Log.Errorf("register failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	token, err := auth.CreateJWT(user.ID.String(), string(user.Role))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"token": token,
		"user":  publicUser(user),
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (a *API) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, user, err := database.AuthenticateUser(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  publicUser(user),
	})
}

func (a *API) Me(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	user, err := database.GetUserByID(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, publicUser(user))
}

type updateProfileRequest struct {
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

func (a *API) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := database.UpdateUserProfile(r.Context(), userID, req.Name, req.AvatarURL); err != nil {
		a.Log.Errorf("profile update failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to update profile")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

func (a *API) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.NewPassword == "" {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := database.GetUserByID(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	match, err := auth.VerifyPassword(req.OldPassword, user.Password)
	if err != nil || !match {
		writeError(w, http.StatusForbidden, "old password is incorrect")
		return
	}

	if err := database.UpdateUserPassword(r.Context(), userID, req.NewPassword); err != nil {
		a.Log.Errorf("password change failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to change password")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "changed"})
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPassword issues a one-time reset code to the account email. The
// response is the same whether or not the account exists.
func (a *API) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	if _, err := database.GetUserByEmail(r.Context(), req.Email); err == nil {
		otp, err := auth.GenerateOTP()
		if err == nil {
			if err := cache.StoreResetOTP(r.Context(), req.Email, otp); err != nil {
				a.Log.Errorf("failed to store reset otp: %v", err)
			} else if err := a.Mailer.SendResetOTP(req.Email, otp); err != nil {
				a.Log.Errorf("failed to mail reset otp: %v", err)
			}
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "if the email exists, a code was sent"})
}

type resetPasswordRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"new_password"`
}

func (a *API) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil ||
		req.Email == "" || req.OTP == "" || req.NewPassword == "" {
		writeError(w, http.StatusBadRequest, "email, otp and new_password are required")
		return
	}

	ok, err := cache.CheckResetOTP(r.Context(), req.Email, req.OTP)
	if err != nil {
		a.Log.Errorf("otp check failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to verify code")
		return
	}
	if !ok {
		writeError(w, http.StatusForbidden, "invalid or expired code")
		return
	}

	user, err := database.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	if err := database.UpdateUserPassword(r.Context(), user.ID, req.NewPassword); err != nil {
		a.Log.Errorf("password reset failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to reset password")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "password reset"})
}
