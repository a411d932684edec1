package match

import (
	"context"
	"time"

	"github.com/google/uuid"

	"quizclash-backend/internal/models"
)

const codeLength = 6

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// LobbyConfig carries the host-chosen settings for a new lobby.
type LobbyConfig struct {
	Name              string    `json:"name"`
	TopicID           uuid.UUID `json:"topic_id"`
	PlayerCountLimit  int       `json:"player_count_limit"`
	InitialHandSize   int       `json:"initial_hand_size"`
	MaxItemsPerPlayer int       `json:"max_items_per_player"`
	MatchTimeSec      int       `json:"match_time_sec"`
}

func (c *LobbyConfig) applyDefaults() {
	if c.InitialHandSize <= 0 {
		c.InitialHandSize = 3
	}
	if c.MatchTimeSec <= 0 {
		c.MatchTimeSec = 300
	}
	if c.MaxItemsPerPlayer <= 0 {
		c.MaxItemsPerPlayer = 5
	}
	if c.PlayerCountLimit < 0 {
		c.PlayerCountLimit = 0
	}
}

// CreateLobby creates a waiting lobby with a fresh unique join code and
// seats the host as its first roster member.
func (s *Service) CreateLobby(ctx context.Context, hostUserID uuid.UUID, cfg LobbyConfig) (*models.Lobby, error) {
	cfg.applyDefaults()

	var lobby *models.Lobby
	err := s.store.WithTx(ctx, func(tx Tx) error {
		ok, err := tx.TopicExists(cfg.TopicID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrTopicNotFound
		}

		code, err := s.generateCode(tx)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		lobby = &models.Lobby{
			ID:                uuid.New(),
			Name:              cfg.Name,
			Code:              code,
			HostUserID:        hostUserID,
			TopicID:           cfg.TopicID,
			Status:            models.LobbyWaiting,
			PlayerCount:       1,
			PlayerCountLimit:  cfg.PlayerCountLimit,
			InitialHandSize:   cfg.InitialHandSize,
			MaxItemsPerPlayer: cfg.MaxItemsPerPlayer,
			MatchTimeSec:      cfg.MatchTimeSec,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if err := tx.InsertLobby(lobby); err != nil {
			return err
		}

		host := &models.MatchPlayer{
			ID:        uuid.New(),
			MatchID:   lobby.ID,
			UserID:    hostUserID,
			CardsLeft: cfg.InitialHandSize,
			Status:    models.PlayerWaiting,
			CreatedAt: now,
		}
		return tx.InsertPlayer(host)
	})
	if err != nil {
		return nil, err
	}

	s.log.WithField("lobby_id", lobby.ID).Infof("lobby %s created by %s", lobby.Code, hostUserID)
	return lobby, nil
}

// generateCode samples fixed-length alphanumeric codes until one is free
// among non-finished lobbies. The keyspace (36^6) dwarfs any plausible
// number of concurrent lobbies, so the loop terminates quickly.
func (s *Service) generateCode(tx Tx) (string, error) {
	for {
		buf := make([]byte, codeLength)
		for i := range buf {
			buf[i] = codeAlphabet[s.randInt(len(codeAlphabet))]
		}
		code := string(buf)

		used, err := tx.CodeInUse(code)
		if err != nil {
			return "", err
		}
		if !used {
			return code, nil
		}
	}
}

// Lobby returns the lobby row, or ErrLobbyNotFound.
func (s *Service) Lobby(ctx context.Context, lobbyID uuid.UUID) (*models.Lobby, error) {
	var lobby *models.Lobby
	err := s.store.WithTx(ctx, func(tx Tx) error {
		var err error
		lobby, err = tx.LobbyForUpdate(lobbyID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return lobby, nil
}

// Join seats user in the lobby identified by id. The lobby row stays locked
// for the whole check-and-increment, so concurrent joins cannot overshoot
// the player limit.
func (s *Service) Join(ctx context.Context, lobbyID, userID uuid.UUID) (*models.MatchPlayer, error) {
	return s.join(ctx, userID, func(tx Tx) (*models.Lobby, error) {
		return tx.LobbyForUpdate(lobbyID)
	})
}

// JoinByCode seats user in the lobby carrying the given join code.
func (s *Service) JoinByCode(ctx context.Context, code string, userID uuid.UUID) (*models.MatchPlayer, error) {
	return s.join(ctx, userID, func(tx Tx) (*models.Lobby, error) {
		return tx.LobbyByCodeForUpdate(code)
	})
}

func (s *Service) join(ctx context.Context, userID uuid.UUID, lookup func(Tx) (*models.Lobby, error)) (*models.MatchPlayer, error) {
	var player *models.MatchPlayer
	var lobbyID uuid.UUID

	err := s.store.WithTx(ctx, func(tx Tx) error {
		lobby, err := lookup(tx)
		if err != nil {
			return err
		}
		if lobby.Status != models.LobbyWaiting {
			return ErrLobbyNotWaiting
		}
		if lobby.PlayerCountLimit > 0 && lobby.PlayerCount >= lobby.PlayerCountLimit {
			return ErrLobbyFull
		}

		exists, err := tx.PlayerExists(lobby.ID, userID)
		if err != nil {
			return err
		}
		if exists {
			return ErrAlreadyJoined
		}

		now := time.Now().UTC()
		player = &models.MatchPlayer{
			ID:        uuid.New(),
			MatchID:   lobby.ID,
			UserID:    userID,
			Status:    models.PlayerWaiting,
			CreatedAt: now,
		}
		if err := tx.InsertPlayer(player); err != nil {
			return err
		}

		lobby.PlayerCount++
		lobby.UpdatedAt = now
		lobbyID = lobby.ID
		return tx.UpdateLobby(lobby)
	})
	if err != nil {
		return nil, err
	}

	s.publish(lobbyID, map[string]interface{}{"event": "join", "user_id": userID.String()})
	return player, nil
}

// SetReady toggles a roster member between waiting and ready. Re-asserting
// the current state is rejected, as is readying outside the lobby phase.
func (s *Service) SetReady(ctx context.Context, lobbyID, userID uuid.UUID, ready bool) error {
	err := s.store.WithTx(ctx, func(tx Tx) error {
		player, err := tx.PlayerForUpdate(lobbyID, userID)
		if err != nil {
			return err
		}
		if player.Status != models.PlayerWaiting && player.Status != models.PlayerReady {
			return ErrNotReadyable
		}

		target := models.PlayerWaiting
		if ready {
			target = models.PlayerReady
		}
		if player.Status == target {
			return ErrReadyUnchanged
		}
		player.Status = target
		return tx.UpdatePlayer(player)
	})
	if err != nil {
		return err
	}

	s.publish(lobbyID, map[string]interface{}{
		"event":   "ready",
		"user_id": userID.String(),
		"ready":   ready,
	})
	return nil
}

// Leave handles a user dropping out of a still-waiting lobby, typically on
// websocket disconnect. The roster row is removed, the player count drops,
// an empty lobby finishes and loses its code, and a departing host hands
// the lobby to another remaining member.
func (s *Service) Leave(ctx context.Context, lobbyID, userID uuid.UUID) error {
	var removed bool
	err := s.store.WithTx(ctx, func(tx Tx) error {
		lobby, err := tx.LobbyForUpdate(lobbyID)
		if err != nil {
			return err
		}
		player, err := tx.PlayerForUpdate(lobbyID, userID)
		if err != nil {
			return err
		}
		if player.Status != models.PlayerWaiting && player.Status != models.PlayerReady {
			// Mid-match disconnects keep their seat; settlement folds them in.
			return nil
		}

		if err := tx.DeletePlayer(lobbyID, userID); err != nil {
			return err
		}
		removed = true

		now := time.Now().UTC()
		lobby.PlayerCount--
		lobby.UpdatedAt = now

		if lobby.PlayerCount <= 0 {
			lobby.Status = models.LobbyFinished
			lobby.Code = ""
			lobby.EndedAt = &now
		} else if lobby.HostUserID == userID {
			remaining, err := tx.PlayersByMatch(lobbyID)
			if err != nil {
				return err
			}
			for _, p := range remaining {
				if p.Status != models.PlayerLeft {
					lobby.HostUserID = p.UserID
					break
				}
			}
		}
		return tx.UpdateLobby(lobby)
	})
	if err != nil {
		return err
	}

	if removed {
		s.publish(lobbyID, map[string]interface{}{"event": "leave", "user_id": userID.String()})
	}
	return nil
}

// Start begins the match: host-only, waiting lobbies only. Every roster
// member gets an initial hand dealt and flips to playing, and the auto-end
// timer is armed for the configured match time.
func (s *Service) Start(ctx context.Context, lobbyID, callerID uuid.UUID) error {
	var matchTime time.Duration
	err := s.store.WithTx(ctx, func(tx Tx) error {
		lobby, err := tx.LobbyForUpdate(lobbyID)
		if err != nil {
			return err
		}
		if lobby.HostUserID != callerID {
			return ErrNotHost
		}
		if lobby.Status != models.LobbyWaiting {
			return ErrLobbyNotWaiting
		}

		players, err := tx.PlayersByMatch(lobbyID)
		if err != nil {
			return err
		}

		if err := s.dealInitialHands(tx, lobby, players); err != nil {
			return err
		}
		for _, p := range players {
			if p.Status == models.PlayerLeft {
				continue
			}
			p.Status = models.PlayerPlaying
			p.CardsLeft = lobby.InitialHandSize
			if err := tx.UpdatePlayer(p); err != nil {
				return err
			}
		}

		now := time.Now().UTC()
		lobby.Status = models.LobbyPlaying
		lobby.StartedAt = &now
		lobby.UpdatedAt = now
		matchTime = time.Duration(lobby.MatchTimeSec) * time.Second
		return tx.UpdateLobby(lobby)
	})
	if err != nil {
		return err
	}

	s.publish(lobbyID, map[string]interface{}{"event": "start"})
	s.scheduleEnd(lobbyID, matchTime)
	s.log.WithField("lobby_id", lobbyID).Infof("match started, auto-end in %s", matchTime)
	return nil
}

// scheduleEnd arms (or re-arms) the auto-end timer for a match.
func (s *Service) scheduleEnd(matchID uuid.UUID, delay time.Duration) {
	s.sched.Schedule(matchID, delay, func() {
		if err := s.Finalize(context.Background(), matchID); err != nil {
			s.log.WithField("match_id", matchID).Warnf("auto-end settlement failed: %v", err)
		}
	})
}
