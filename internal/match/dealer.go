package match

import (
	"time"

	"github.com/google/uuid"

	"quizclash-backend/internal/models"
)

// dealInitialHands draws each player's opening hand from the topic's
// question pool: InitialHandSize questions per player, sampled without
// replacement within a hand, order_no 1..N per owner.
func (s *Service) dealInitialHands(tx Tx, lobby *models.Lobby, players []*models.MatchPlayer) error {
	poolSize, err := tx.QuestionCount(lobby.TopicID)
	if err != nil {
		return err
	}
	if poolSize < lobby.InitialHandSize {
		return ErrPoolTooSmall
	}

	for _, p := range players {
		if p.Status == models.PlayerLeft {
			continue
		}
		questions, err := tx.RandomQuestions(lobby.TopicID, lobby.InitialHandSize)
		if err != nil {
			return err
		}
		for i, q := range questions {
			owner := p.UserID
			card := &models.MatchCard{
				ID:         uuid.New(),
				MatchID:    lobby.ID,
				QuestionID: q.ID,
				OwnerID:    &owner,
				State:      models.CardPending,
				OrderNo:    i + 1,
				CreatedAt:  time.Now().UTC(),
			}
			if err := tx.InsertCard(card); err != nil {
				return err
			}
		}
	}
	return nil
}

// drawReplacement appends one fresh card to a player's queue after a wrong
// answer. The question is drawn with replacement across players, and the
// new card takes the next order_no for the whole match.
func (s *Service) drawReplacement(tx Tx, matchID, topicID uuid.UUID, player *models.MatchPlayer) (*models.MatchCard, error) {
	q, err := tx.RandomQuestion(topicID)
	if err != nil {
		return nil, err
	}
	maxOrder, err := tx.MaxOrderNo(matchID)
	if err != nil {
		return nil, err
	}

	owner := player.UserID
	card := &models.MatchCard{
		ID:         uuid.New(),
		MatchID:    matchID,
		QuestionID: q.ID,
		OwnerID:    &owner,
		State:      models.CardPending,
		OrderNo:    maxOrder + 1,
		CreatedAt:  time.Now().UTC(),
	}
	if err := tx.InsertCard(card); err != nil {
		return nil, err
	}
	return card, nil
}
