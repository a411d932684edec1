package match

import (
	"context"
	"time"

	"github.com/google/uuid"

	"quizclash-backend/internal/models"
)

// Finalize settles a match in one transaction: every roster row not "left"
// becomes finished and its score/tokens fold into the owning user's
// persistent totals, then the lobby finishes, loses its join code and gets
// its end timestamp. A second invocation on an already-finished lobby is a
// no-op, so the natural-expiry timer and an early-end trigger can race
// harmlessly.
func (s *Service) Finalize(ctx context.Context, matchID uuid.UUID) error {
	var settled bool
	err := s.store.WithTx(ctx, func(tx Tx) error {
		lobby, err := tx.LobbyForUpdate(matchID)
		if err != nil {
			return err
		}
		if lobby.Status == models.LobbyFinished {
			return nil
		}

		players, err := tx.PlayersByMatch(matchID)
		if err != nil {
			return err
		}
		for _, p := range players {
			if p.Status == models.PlayerLeft {
				continue
			}
			p.Status = models.PlayerFinished
			if err := tx.UpdatePlayer(p); err != nil {
				return err
			}
			if err := tx.AddUserTotals(p.UserID, p.Score, p.TokensEarned); err != nil {
				return err
			}
		}

		now := time.Now().UTC()
		lobby.Status = models.LobbyFinished
		lobby.Code = ""
		lobby.EndedAt = &now
		lobby.UpdatedAt = now
		settled = true
		return tx.UpdateLobby(lobby)
	})
	if err != nil {
		return err
	}

	if settled {
		s.sched.Cancel(matchID)
		s.publish(matchID, map[string]interface{}{"event": "end_game"})
		s.log.WithField("match_id", matchID).Info("match settled")
	}
	return nil
}
