package match

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"quizclash-backend/internal/models"
)

// extraTimeBonus is how far EXTRA_TIME pushes the match deadline.
const extraTimeBonus = 30 * time.Second

// effectEnv is the context an item effect runs in: the open transaction,
// the acting player's locked row and the base score of the triggering
// answer. Events and deadline extensions are collected here and applied
// by the adjudicator after commit.
type effectEnv struct {
	tx      Tx
	matchID uuid.UUID
	player  *models.MatchPlayer
	base    int
	randInt func(n int) int

	events   []map[string]interface{}
	extendBy time.Duration
}

type effectFunc func(*effectEnv) error

// effectTable dispatches the closed effect enum. Score-only effects are
// pure deltas on the acting player; the rest touch other rows or the
// scheduler/broadcast layer.
var effectTable = map[models.EffectKind]effectFunc{
	models.EffectDoubleScore:  applyDoubleScore,
	models.EffectPowerScore:   applyPowerScore,
	models.EffectGhostTurn:    applyGhostTurn,
	models.EffectPointSteal:   applyPointSteal,
	models.EffectSkipTurn:     applySkipTurn,
	models.EffectReverseOrder: applyReverseOrder,
	models.EffectExtraTime:    applyExtraTime,
}

// applyDoubleScore adds the full base score a second time.
func applyDoubleScore(env *effectEnv) error {
	env.player.Score += env.base
	return nil
}

// applyPowerScore adds half the base score, floored.
func applyPowerScore(env *effectEnv) error {
	env.player.Score += env.base / 2
	return nil
}

// applyGhostTurn plays a bonus turn: one random still-pending card of the
// acting player is answered for free, scoring its difficulty. No-op when
// no pending card remains.
func applyGhostTurn(env *effectEnv) error {
	card, question, err := env.tx.RandomPendingCard(env.matchID, env.player.UserID)
	if errors.Is(err, ErrCardNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	card.State = models.CardAnswered
	if err := env.tx.UpdateCard(card); err != nil {
		return err
	}
	env.player.CardsLeft--
	env.player.Score += question.Difficulty
	return nil
}

// applyPointSteal transfers a random 1..10 points from the highest-scoring
// other playing player. The target row is locked after the acting player's,
// which is already held by the submit flow. The target's score may go
// negative; no floor is applied.
func applyPointSteal(env *effectEnv) error {
	target, err := env.tx.TopOpponentForUpdate(env.matchID, env.player.UserID)
	if errors.Is(err, ErrPlayerNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	amount := env.randInt(10) + 1
	target.Score -= amount
	env.player.Score += amount
	if err := env.tx.UpdatePlayer(target); err != nil {
		return err
	}

	env.events = append(env.events, map[string]interface{}{
		"event":   "point_steal",
		"user_id": env.player.UserID.String(),
		"target":  target.UserID.String(),
		"amount":  amount,
	})
	return nil
}

func applySkipTurn(env *effectEnv) error {
	env.events = append(env.events, map[string]interface{}{
		"event":   "skip_turn",
		"user_id": env.player.UserID.String(),
	})
	return nil
}

func applyReverseOrder(env *effectEnv) error {
	env.events = append(env.events, map[string]interface{}{
		"event":   "reverse_order",
		"user_id": env.player.UserID.String(),
	})
	return nil
}

func applyExtraTime(env *effectEnv) error {
	env.extendBy += extraTimeBonus
	env.events = append(env.events, map[string]interface{}{
		"event":   "extra_time",
		"user_id": env.player.UserID.String(),
	})
	return nil
}
