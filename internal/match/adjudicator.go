package match

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"quizclash-backend/internal/models"
)

// AnswerResult reports the outcome of a submitted answer.
type AnswerResult struct {
	Correct   bool `json:"correct"`
	Score     int  `json:"score"`
	CardsLeft int  `json:"cards_left"`
}

// SubmitAnswer adjudicates one answer against a match card. Correctness is
// case-insensitive, whitespace-trimmed equality with the question's correct
// answer. A wrong answer consumes the card and deals a replacement; a
// correct one scores, counts the card down and fires any bound item effect,
// all inside a single transaction holding the caller's roster row lock.
func (s *Service) SubmitAnswer(ctx context.Context, matchID, userID, cardID uuid.UUID, answer string) (*AnswerResult, error) {
	var (
		result   AnswerResult
		endNow   bool
		sideFx   []map[string]interface{}
		extendBy time.Duration
	)

	err := s.store.WithTx(ctx, func(tx Tx) error {
		player, err := tx.PlayerForUpdate(matchID, userID)
		if err != nil {
			return err
		}
		if player.Status != models.PlayerPlaying {
			return ErrNotPlaying
		}

		card, question, item, err := tx.CardByID(cardID)
		if err != nil {
			return err
		}
		if card.MatchID != matchID {
			return ErrCardNotFound
		}
		if card.State != models.CardPending {
			return ErrCardConsumed
		}

		// Consume the card before anything else runs in this transaction;
		// GHOST_TURN draws from the still-pending pool and must not see
		// the card being answered.
		card.State = models.CardAnswered
		if err := tx.UpdateCard(card); err != nil {
			return err
		}

		correct := answersMatch(answer, question.CorrectAnswer)
		if !correct {
			if _, err := s.drawReplacement(tx, matchID, question.TopicID, player); err != nil {
				return err
			}
			player.TokensEarned = 0
		} else {
			base := question.Difficulty
			player.CardsLeft--
			player.Score += base

			if item != nil {
				env := &effectEnv{
					tx:      tx,
					matchID: matchID,
					player:  player,
					base:    base,
					randInt: s.randInt,
				}
				if fn, ok := effectTable[item.Effect]; ok {
					if err := fn(env); err != nil {
						return err
					}
					sideFx = append(sideFx, env.events...)
					extendBy += env.extendBy
				}
			}

			player.TokensEarned = player.Score / 10
		}

		if err := tx.UpdatePlayer(player); err != nil {
			return err
		}

		endNow = player.CardsLeft <= 0 && player.Status == models.PlayerPlaying
		result = AnswerResult{Correct: correct, Score: player.Score, CardsLeft: player.CardsLeft}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if extendBy > 0 {
		s.sched.Extend(matchID, extendBy)
	}
	for _, ev := range sideFx {
		s.publish(matchID, ev)
	}
	s.publish(matchID, map[string]interface{}{"event": "update_score", "user_id": userID.String()})

	if endNow {
		// This player is out of cards: drop the pending auto-end timer and
		// settle the whole match immediately.
		s.sched.Cancel(matchID)
		s.scheduleEnd(matchID, 0)
	}
	return &result, nil
}

func answersMatch(given, correct string) bool {
	return strings.EqualFold(strings.TrimSpace(given), strings.TrimSpace(correct))
}

// ItemRequest asks to bring Quantity copies of an item into a match.
type ItemRequest struct {
	ItemID   uuid.UUID `json:"item_id"`
	Quantity int       `json:"quantity"`
}

// BringItems consumes inventory and binds each brought item to a uniformly
// random still-pending unbound card owned by the caller. Items beyond the
// available pending cards still consume inventory but bind nothing. The
// operation is deliberately not idempotent; calling twice consumes twice.
func (s *Service) BringItems(ctx context.Context, matchID, userID uuid.UUID, reqs []ItemRequest) error {
	return s.store.WithTx(ctx, func(tx Tx) error {
		lobby, err := tx.LobbyForUpdate(matchID)
		if err != nil {
			return err
		}
		if lobby.Status != models.LobbyPlaying {
			return ErrLobbyNotPlaying
		}
		exists, err := tx.PlayerExists(matchID, userID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrPlayerNotFound
		}

		for _, req := range reqs {
			if req.Quantity <= 0 {
				continue
			}
			inv, err := tx.InventoryForUpdate(userID, req.ItemID)
			if err != nil {
				return err
			}
			if inv.Quantity < req.Quantity {
				return ErrInsufficientInventory
			}

			for i := 0; i < req.Quantity; i++ {
				usage := &models.MatchPlayerItem{
					ID:        uuid.New(),
					MatchID:   matchID,
					UserID:    userID,
					ItemID:    req.ItemID,
					CreatedAt: time.Now().UTC(),
				}
				if err := tx.InsertItemUsage(usage); err != nil {
					return err
				}
				inv.Quantity--

				card, err := tx.RandomUnboundPendingCard(matchID, userID)
				if errors.Is(err, ErrCardNotFound) {
					// No pending card left to carry the item.
					continue
				}
				if err != nil {
					return err
				}
				itemID := req.ItemID
				card.ItemID = &itemID
				if err := tx.UpdateCard(card); err != nil {
					return err
				}
			}
			if err := tx.UpdateInventory(inv); err != nil {
				return err
			}
		}
		return nil
	})
}
