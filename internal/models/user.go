package models

import (
	"time"

	"github.com/google/uuid"
)

// Role distinguishes ordinary players from admins who manage topics and questions.
type Role string

const (
	RolePlayer Role = "PLAYER"
	RoleAdmin  Role = "ADMIN"
)

// User is a row in the users table. Score and TokenBalance are only mutated
// by match settlement, store purchases and payment settlement.
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Password     string    `json:"password,omitempty"`
	Role         Role      `json:"role"`
	AvatarURL    string    `json:"avatar_url"`
	TokenBalance int       `json:"token_balance"`
	Score        int       `json:"score"`
	CreatedAt    time.Time `json:"created_at"`
}
