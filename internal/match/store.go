package match

import (
	"context"

	"github.com/google/uuid"

	"quizclash-backend/internal/models"
)

// Store is the persistence seam of the match core. WithTx runs fn inside a
// single transaction; every mutation fn performs through the Tx either
// commits as a whole or not at all. The Postgres implementation lives in
// internal/database; tests use the in-memory MemStore.
type Store interface {
	WithTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx exposes the row operations the core needs. ForUpdate variants take an
// exclusive row lock held until the transaction ends; random selections are
// uniform over the matching rows.
type Tx interface {
	// Lobbies.
	LobbyForUpdate(id uuid.UUID) (*models.Lobby, error)
	LobbyByCodeForUpdate(code string) (*models.Lobby, error)
	CodeInUse(code string) (bool, error)
	InsertLobby(l *models.Lobby) error
	UpdateLobby(l *models.Lobby) error

	// Topics and question pools.
	TopicExists(id uuid.UUID) (bool, error)
	QuestionCount(topicID uuid.UUID) (int, error)
	RandomQuestions(topicID uuid.UUID, n int) ([]*models.Question, error)
	RandomQuestion(topicID uuid.UUID) (*models.Question, error)

	// Roster.
	PlayerForUpdate(matchID, userID uuid.UUID) (*models.MatchPlayer, error)
	PlayerExists(matchID, userID uuid.UUID) (bool, error)
	PlayersByMatch(matchID uuid.UUID) ([]*models.MatchPlayer, error)
	// TopOpponentForUpdate locks and returns the highest-scoring playing
	// player other than userID, or ErrPlayerNotFound if there is none.
	TopOpponentForUpdate(matchID, userID uuid.UUID) (*models.MatchPlayer, error)
	InsertPlayer(p *models.MatchPlayer) error
	UpdatePlayer(p *models.MatchPlayer) error
	DeletePlayer(matchID, userID uuid.UUID) error

	// Cards.
	CardByID(id uuid.UUID) (*models.MatchCard, *models.Question, *models.Item, error)
	// RandomPendingCard picks a uniformly random pending card owned by
	// ownerID in the match, or ErrCardNotFound when none remain.
	RandomPendingCard(matchID, ownerID uuid.UUID) (*models.MatchCard, *models.Question, error)
	// RandomUnboundPendingCard is RandomPendingCard restricted to cards
	// without a bound item.
	RandomUnboundPendingCard(matchID, ownerID uuid.UUID) (*models.MatchCard, error)
	MaxOrderNo(matchID uuid.UUID) (int, error)
	InsertCard(c *models.MatchCard) error
	UpdateCard(c *models.MatchCard) error

	// Inventory and user totals.
	InventoryForUpdate(userID, itemID uuid.UUID) (*models.InventoryItem, error)
	UpdateInventory(inv *models.InventoryItem) error
	InsertItemUsage(u *models.MatchPlayerItem) error
	AddUserTotals(userID uuid.UUID, score, tokens int) error
}
