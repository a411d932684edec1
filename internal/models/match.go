package models

import (
	"time"

	"github.com/google/uuid"
)

// PlayerStatus tracks a roster entry through the match lifecycle.
// waiting <-> ready happens in the lobby; start flips everyone to playing;
// settlement flips everyone not "left" to finished.
type PlayerStatus string

const (
	PlayerWaiting  PlayerStatus = "waiting"
	PlayerReady    PlayerStatus = "ready"
	PlayerPlaying  PlayerStatus = "playing"
	PlayerFinished PlayerStatus = "finished"
	PlayerLeft     PlayerStatus = "left"
)

// MatchPlayer is one user's seat in a match. At most one row exists per
// (match, user) pair. CardsLeft counts down to zero; TokensEarned is
// recomputed from the score on every correct answer.
type MatchPlayer struct {
	ID           uuid.UUID    `json:"id"`
	MatchID      uuid.UUID    `json:"match_id"`
	UserID       uuid.UUID    `json:"user_id"`
	Score        int          `json:"score"`
	CardsLeft    int          `json:"cards_left"`
	TokensEarned int          `json:"tokens_earned"`
	Status       PlayerStatus `json:"status"`
	CreatedAt    time.Time    `json:"created_at"`
}

// CardState: pending -> answered is one-way; a card is answerable exactly once.
type CardState string

const (
	CardPending  CardState = "pending"
	CardAnswered CardState = "answered"
)

// MatchCard assigns a question to a player within a match. ItemID, when set,
// binds an item effect that fires if the card is answered correctly.
// OrderNo is unique per (match, owner).
type MatchCard struct {
	ID         uuid.UUID  `json:"id"`
	MatchID    uuid.UUID  `json:"match_id"`
	QuestionID uuid.UUID  `json:"question_id"`
	ItemID     *uuid.UUID `json:"item_id,omitempty"`
	OwnerID    *uuid.UUID `json:"owner_id,omitempty"`
	State      CardState  `json:"card_state"`
	OrderNo    int        `json:"order_no"`
	CreatedAt  time.Time  `json:"created_at"`
}
