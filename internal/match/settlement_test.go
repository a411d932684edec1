package match

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizclash-backend/internal/models"
)

func TestFinalizeSettlesMatch(t *testing.T) {
	f := newFixture(t, 5, 10)
	lobby := f.startedMatch(t, LobbyConfig{InitialHandSize: 2})
	defer f.svc.Scheduler().Cancel(lobby.ID)

	_, err := f.svc.SubmitAnswer(context.Background(), lobby.ID, f.host,
		f.pendingCard(t, lobby.ID, f.host, false).ID, "Paris")
	require.NoError(t, err)

	require.NoError(t, f.svc.Finalize(context.Background(), lobby.ID))

	got, _ := f.store.Lobby(lobby.ID)
	assert.Equal(t, models.LobbyFinished, got.Status)
	assert.Empty(t, got.Code)
	assert.NotNil(t, got.EndedAt)
	assert.False(t, f.svc.Scheduler().Pending(lobby.ID))

	for _, userID := range []uuid.UUID{f.host, f.guest} {
		p, ok := f.store.Player(lobby.ID, userID)
		require.True(t, ok)
		assert.Equal(t, models.PlayerFinished, p.Status)
	}

	hostUser, _ := f.store.User(f.host)
	assert.Equal(t, 10, hostUser.Score)
	assert.Equal(t, 1, hostUser.TokenBalance)
	guestUser, _ := f.store.User(f.guest)
	assert.Equal(t, 0, guestUser.Score)

	assert.Len(t, f.hub.byName("end_game"), 1)
}

func TestFinalizeIdempotent(t *testing.T) {
	f := newFixture(t, 5, 10)
	lobby := f.startedMatch(t, LobbyConfig{InitialHandSize: 2})
	defer f.svc.Scheduler().Cancel(lobby.ID)

	_, err := f.svc.SubmitAnswer(context.Background(), lobby.ID, f.host,
		f.pendingCard(t, lobby.ID, f.host, false).ID, "Paris")
	require.NoError(t, err)

	require.NoError(t, f.svc.Finalize(context.Background(), lobby.ID))
	require.NoError(t, f.svc.Finalize(context.Background(), lobby.ID))

	// Totals folded in exactly once.
	hostUser, _ := f.store.User(f.host)
	assert.Equal(t, 10, hostUser.Score)
	assert.Equal(t, 1, hostUser.TokenBalance)
	assert.Len(t, f.hub.byName("end_game"), 1)
}

func TestFinalizeSkipsLeftPlayers(t *testing.T) {
	f := newFixture(t, 5, 10)
	lobby := f.startedMatch(t, LobbyConfig{InitialHandSize: 2})
	defer f.svc.Scheduler().Cancel(lobby.ID)

	err := f.store.WithTx(context.Background(), func(tx Tx) error {
		p, err := tx.PlayerForUpdate(lobby.ID, f.guest)
		if err != nil {
			return err
		}
		p.Status = models.PlayerLeft
		p.Score = 42
		return tx.UpdatePlayer(p)
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.Finalize(context.Background(), lobby.ID))

	p, _ := f.store.Player(lobby.ID, f.guest)
	assert.Equal(t, models.PlayerLeft, p.Status)
	guestUser, _ := f.store.User(f.guest)
	assert.Equal(t, 0, guestUser.Score)
}

func TestFinalizeUnknownLobby(t *testing.T) {
	f := newFixture(t, 5, 10)
	err := f.svc.Finalize(context.Background(), f.topicID)
	assert.ErrorIs(t, err, ErrLobbyNotFound)
}

func TestMatchExpiresByTimer(t *testing.T) {
	f := newFixture(t, 5, 10)
	lobby := f.createLobby(t, LobbyConfig{InitialHandSize: 1, MatchTimeSec: 1})
	_, err := f.svc.Join(context.Background(), lobby.ID, f.guest)
	require.NoError(t, err)
	require.NoError(t, f.svc.Start(context.Background(), lobby.ID, f.host))

	require.Eventually(t, func() bool {
		got, _ := f.store.Lobby(lobby.ID)
		return got.Status == models.LobbyFinished
	}, 3*time.Second, 20*time.Millisecond)
	assert.Len(t, f.hub.byName("end_game"), 1)
}
