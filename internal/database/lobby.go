package database

import (
	"context"
	"math/rand"

	"github.com/google/uuid"

	"quizclash-backend/internal/models"
)

// GetLobby reads one lobby without locking, for display purposes.
func GetLobby(ctx context.Context, id uuid.UUID) (*models.Lobby, error) {
	q := `SELECT ` + lobbyColumns + ` FROM lobbies WHERE id=$1`
	return scanLobby(DB.QueryRow(ctx, q, id))
}

// ListWaitingLobbies returns joinable lobbies, newest first.
func ListWaitingLobbies(ctx context.Context) ([]*models.Lobby, error) {
	q := `SELECT ` + lobbyColumns + ` FROM lobbies
	      WHERE status='waiting' ORDER BY created_at DESC`
	rows, err := DB.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Lobby
	for rows.Next() {
		l, err := scanLobby(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// RosterEntry is one roster row joined with its user's public profile.
type RosterEntry struct {
	UserID       uuid.UUID           `json:"user_id"`
	Username     string              `json:"username"`
	AvatarURL    string              `json:"avatar_url"`
	Score        int                 `json:"score"`
	CardsLeft    int                 `json:"cards_left"`
	TokensEarned int                 `json:"tokens_earned"`
	Status       models.PlayerStatus `json:"status"`
}

// GetRoster returns the match roster with usernames, in join order.
func GetRoster(ctx context.Context, matchID uuid.UUID) ([]RosterEntry, error) {
	q := `SELECT p.user_id, u.username, u.avatar_url,
	             p.score, p.cards_left, p.tokens_earned, p.status
	      FROM match_players p
	      JOIN users u ON u.id = p.user_id
	      WHERE p.match_id=$1
	      ORDER BY p.created_at`
	rows, err := DB.Query(ctx, q, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RosterEntry
	for rows.Next() {
		var e RosterEntry
		err := rows.Scan(&e.UserID, &e.Username, &e.AvatarURL,
			&e.Score, &e.CardsLeft, &e.TokensEarned, &e.Status)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// GetHandCards returns a player's cards in a match with their questions,
// ordered by order_no. Correct answers are not included in the row; the
// handler decides what to expose.
type HandCard struct {
	CardID     uuid.UUID        `json:"card_id"`
	State      models.CardState `json:"card_state"`
	OrderNo    int              `json:"order_no"`
	HasItem    bool             `json:"has_item"`
	Content    string           `json:"content"`
	Difficulty int              `json:"difficulty"`
	Answers    []string         `json:"answers,omitempty"`
}

func GetHandCards(ctx context.Context, matchID, userID uuid.UUID) ([]HandCard, error) {
	q := `SELECT c.id, c.card_state, c.order_no, c.item_id IS NOT NULL,
	             q.content, q.difficulty,
	             q.correct_answer, q.wrong_answer_1, q.wrong_answer_2, q.wrong_answer_3
	      FROM match_cards c
	      JOIN questions q ON q.id = c.question_id
	      WHERE c.match_id=$1 AND c.owner_id=$2
	      ORDER BY c.order_no`
	rows, err := DB.Query(ctx, q, matchID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []HandCard
	for rows.Next() {
		var h HandCard
		var correct string
		var w1, w2, w3 *string
		err := rows.Scan(&h.CardID, &h.State, &h.OrderNo, &h.HasItem,
			&h.Content, &h.Difficulty, &correct, &w1, &w2, &w3)
		if err != nil {
			return nil, err
		}
		h.Answers = shuffleAnswers(correct, w1, w2, w3)
		out = append(out, h)
	}
	return out, rows.Err()
}

// shuffleAnswers mixes the correct answer in with the wrong ones so the
// client cannot infer it from position.
func shuffleAnswers(correct string, wrongs ...*string) []string {
	answers := []string{correct}
	for _, w := range wrongs {
		if w != nil && *w != "" {
			answers = append(answers, *w)
		}
	}
	rand.Shuffle(len(answers), func(i, j int) { answers[i], answers[j] = answers[j], answers[i] })
	return answers
}
