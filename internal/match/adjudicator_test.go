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

func TestSubmitAnswerCorrect(t *testing.T) {
	f := newFixture(t, 5, 5)
	lobby := f.startedMatch(t, LobbyConfig{InitialHandSize: 3})
	defer f.svc.Scheduler().Cancel(lobby.ID)

	card := f.pendingCard(t, lobby.ID, f.host, false)

	// Trimming and case folding both apply.
	res, err := f.svc.SubmitAnswer(context.Background(), lobby.ID, f.host, card.ID, "  pArIs ")
	require.NoError(t, err)
	assert.True(t, res.Correct)
	assert.Equal(t, 5, res.Score)
	assert.Equal(t, 2, res.CardsLeft)

	p, _ := f.store.Player(lobby.ID, f.host)
	assert.Equal(t, 5, p.Score)
	assert.Equal(t, 0, p.TokensEarned) // floor(5/10)

	// The hand did not grow.
	assert.Len(t, f.store.CardsByOwner(lobby.ID, f.host), 3)
	assert.Len(t, f.hub.byName("update_score"), 1)
}

func TestSubmitAnswerWrongDealsReplacement(t *testing.T) {
	f := newFixture(t, 5, 5)
	lobby := f.startedMatch(t, LobbyConfig{InitialHandSize: 2})
	defer f.svc.Scheduler().Cancel(lobby.ID)

	card := f.pendingCard(t, lobby.ID, f.host, false)

	res, err := f.svc.SubmitAnswer(context.Background(), lobby.ID, f.host, card.ID, "London")
	require.NoError(t, err)
	assert.False(t, res.Correct)
	assert.Equal(t, 0, res.Score)
	assert.Equal(t, 2, res.CardsLeft)

	cards := f.store.CardsByOwner(lobby.ID, f.host)
	require.Len(t, cards, 3)
	pending := 0
	maxOrder := 0
	for _, c := range cards {
		if c.State == models.CardPending {
			pending++
		}
		if c.OrderNo > maxOrder {
			maxOrder = c.OrderNo
		}
	}
	assert.Equal(t, 2, pending)
	// The replacement takes the next order number for the whole match.
	assert.Equal(t, 5, maxOrder)
}

func TestSubmitAnswerWrongResetsTokens(t *testing.T) {
	f := newFixture(t, 5, 20)
	lobby := f.startedMatch(t, LobbyConfig{InitialHandSize: 3})
	defer f.svc.Scheduler().Cancel(lobby.ID)

	res, err := f.svc.SubmitAnswer(context.Background(), lobby.ID, f.host,
		f.pendingCard(t, lobby.ID, f.host, false).ID, "Paris")
	require.NoError(t, err)
	require.Equal(t, 20, res.Score)
	p, _ := f.store.Player(lobby.ID, f.host)
	require.Equal(t, 2, p.TokensEarned)

	_, err = f.svc.SubmitAnswer(context.Background(), lobby.ID, f.host,
		f.pendingCard(t, lobby.ID, f.host, false).ID, "wrong")
	require.NoError(t, err)

	p, _ = f.store.Player(lobby.ID, f.host)
	assert.Equal(t, 20, p.Score)
	assert.Equal(t, 0, p.TokensEarned)
}

func TestSubmitAnswerCardConsumedOnce(t *testing.T) {
	f := newFixture(t, 5, 5)
	lobby := f.startedMatch(t, LobbyConfig{InitialHandSize: 3})
	defer f.svc.Scheduler().Cancel(lobby.ID)

	card := f.pendingCard(t, lobby.ID, f.host, false)

	_, err := f.svc.SubmitAnswer(context.Background(), lobby.ID, f.host, card.ID, "Paris")
	require.NoError(t, err)

	_, err = f.svc.SubmitAnswer(context.Background(), lobby.ID, f.host, card.ID, "Paris")
	assert.ErrorIs(t, err, ErrCardConsumed)

	p, _ := f.store.Player(lobby.ID, f.host)
	assert.Equal(t, 5, p.Score)
}

func TestSubmitAnswerRequiresPlaying(t *testing.T) {
	f := newFixture(t, 5, 5)
	lobby := f.createLobby(t, LobbyConfig{})

	_, err := f.svc.SubmitAnswer(context.Background(), lobby.ID, f.host, uuid.New(), "Paris")
	assert.ErrorIs(t, err, ErrNotPlaying)
}

func TestSubmitAnswerForeignCard(t *testing.T) {
	f := newFixture(t, 5, 5)
	lobby := f.startedMatch(t, LobbyConfig{InitialHandSize: 2})
	defer f.svc.Scheduler().Cancel(lobby.ID)
	other := f.startedMatch(t, LobbyConfig{InitialHandSize: 2})
	defer f.svc.Scheduler().Cancel(other.ID)

	foreign := f.pendingCard(t, other.ID, f.host, false)
	_, err := f.svc.SubmitAnswer(context.Background(), lobby.ID, f.host, foreign.ID, "Paris")
	assert.ErrorIs(t, err, ErrCardNotFound)
}

func TestLastCardSettlesImmediately(t *testing.T) {
	f := newFixture(t, 5, 5)
	lobby := f.startedMatch(t, LobbyConfig{InitialHandSize: 1, MatchTimeSec: 600})
	defer f.svc.Scheduler().Cancel(lobby.ID)

	res, err := f.svc.SubmitAnswer(context.Background(), lobby.ID, f.host,
		f.pendingCard(t, lobby.ID, f.host, false).ID, "Paris")
	require.NoError(t, err)
	require.Equal(t, 0, res.CardsLeft)

	require.Eventually(t, func() bool {
		got, _ := f.store.Lobby(lobby.ID)
		return got.Status == models.LobbyFinished
	}, 2*time.Second, 10*time.Millisecond)

	// Settlement folded the winner's score into the user row.
	u, _ := f.store.User(f.host)
	assert.Equal(t, 5, u.Score)
	assert.Len(t, f.hub.byName("end_game"), 1)
}

func bringOneItem(t *testing.T, f *fixture, lobbyID uuid.UUID, effect models.EffectKind) {
	t.Helper()
	item := &models.Item{ID: uuid.New(), Effect: effect, Title: string(effect)}
	f.store.SeedItem(item)
	f.store.GrantInventory(f.host, item.ID, 1)
	require.NoError(t, f.svc.BringItems(context.Background(), lobbyID, f.host,
		[]ItemRequest{{ItemID: item.ID, Quantity: 1}}))
}

func TestDoubleScoreEffect(t *testing.T) {
	f := newFixture(t, 5, 5)
	lobby := f.startedMatch(t, LobbyConfig{InitialHandSize: 2})
	defer f.svc.Scheduler().Cancel(lobby.ID)
	bringOneItem(t, f, lobby.ID, models.EffectDoubleScore)

	card := f.pendingCard(t, lobby.ID, f.host, true)
	res, err := f.svc.SubmitAnswer(context.Background(), lobby.ID, f.host, card.ID, "Paris")
	require.NoError(t, err)
	assert.Equal(t, 10, res.Score)
}

func TestPowerScoreEffect(t *testing.T) {
	f := newFixture(t, 5, 5)
	lobby := f.startedMatch(t, LobbyConfig{InitialHandSize: 2})
	defer f.svc.Scheduler().Cancel(lobby.ID)
	bringOneItem(t, f, lobby.ID, models.EffectPowerScore)

	card := f.pendingCard(t, lobby.ID, f.host, true)
	res, err := f.svc.SubmitAnswer(context.Background(), lobby.ID, f.host, card.ID, "Paris")
	require.NoError(t, err)
	assert.Equal(t, 7, res.Score) // 5 + floor(5/2)
}

func TestGhostTurnEffect(t *testing.T) {
	f := newFixture(t, 5, 5)
	lobby := f.startedMatch(t, LobbyConfig{InitialHandSize: 3})
	defer f.svc.Scheduler().Cancel(lobby.ID)
	bringOneItem(t, f, lobby.ID, models.EffectGhostTurn)

	card := f.pendingCard(t, lobby.ID, f.host, true)
	res, err := f.svc.SubmitAnswer(context.Background(), lobby.ID, f.host, card.ID, "Paris")
	require.NoError(t, err)

	// Answered card plus one free card: two difficulties scored, two
	// cards gone in a single submission.
	assert.Equal(t, 10, res.Score)
	assert.Equal(t, 1, res.CardsLeft)
}

func TestGhostTurnSingleCardNoSelfDraw(t *testing.T) {
	f := newFixture(t, 5, 5)
	lobby := f.startedMatch(t, LobbyConfig{InitialHandSize: 1})
	defer f.svc.Scheduler().Cancel(lobby.ID)
	bringOneItem(t, f, lobby.ID, models.EffectGhostTurn)

	card := f.pendingCard(t, lobby.ID, f.host, true)
	res, err := f.svc.SubmitAnswer(context.Background(), lobby.ID, f.host, card.ID, "Paris")
	require.NoError(t, err)

	// The answered card is already consumed when the bonus turn draws, so
	// with no other card in hand the effect is a no-op: one difficulty
	// scored, hand empty, never negative.
	assert.Equal(t, 5, res.Score)
	assert.Equal(t, 0, res.CardsLeft)

	require.Eventually(t, func() bool {
		l, ok := f.store.Lobby(lobby.ID)
		return ok && l.Status == models.LobbyFinished
	}, 2*time.Second, 10*time.Millisecond)
}

func TestPointStealEffect(t *testing.T) {
	f := newFixture(t, 5, 5)
	lobby := f.startedMatch(t, LobbyConfig{InitialHandSize: 2})
	defer f.svc.Scheduler().Cancel(lobby.ID)
	f.svc.randInt = func(n int) int { return n - 1 } // steal amount 10

	// Give the guest a lead to steal from.
	guestCard := f.pendingCard(t, lobby.ID, f.guest, false)
	_, err := f.svc.SubmitAnswer(context.Background(), lobby.ID, f.guest, guestCard.ID, "Paris")
	require.NoError(t, err)

	bringOneItem(t, f, lobby.ID, models.EffectPointSteal)
	card := f.pendingCard(t, lobby.ID, f.host, true)
	res, err := f.svc.SubmitAnswer(context.Background(), lobby.ID, f.host, card.ID, "Paris")
	require.NoError(t, err)
	assert.Equal(t, 15, res.Score)

	guest, _ := f.store.Player(lobby.ID, f.guest)
	host, _ := f.store.Player(lobby.ID, f.host)
	assert.Equal(t, -5, guest.Score)
	// Steals conserve total score.
	assert.Equal(t, 10, guest.Score+host.Score)

	evs := f.hub.byName("point_steal")
	require.Len(t, evs, 1)
	assert.Equal(t, 10, evs[0]["amount"])
	assert.Equal(t, f.guest.String(), evs[0]["target"])
}

func TestExtraTimeEffect(t *testing.T) {
	f := newFixture(t, 5, 5)
	lobby := f.startedMatch(t, LobbyConfig{InitialHandSize: 2, MatchTimeSec: 600})
	defer f.svc.Scheduler().Cancel(lobby.ID)
	bringOneItem(t, f, lobby.ID, models.EffectExtraTime)

	before := time.Now()
	card := f.pendingCard(t, lobby.ID, f.host, true)
	_, err := f.svc.SubmitAnswer(context.Background(), lobby.ID, f.host, card.ID, "Paris")
	require.NoError(t, err)

	f.svc.Scheduler().mu.Lock()
	entry := f.svc.Scheduler().entries[lobby.ID]
	f.svc.Scheduler().mu.Unlock()
	require.NotNil(t, entry)
	assert.True(t, entry.deadline.After(before.Add(600*time.Second+extraTimeBonus/2)))
	assert.Len(t, f.hub.byName("extra_time"), 1)
}

func TestBroadcastOnlyEffects(t *testing.T) {
	for _, effect := range []models.EffectKind{models.EffectSkipTurn, models.EffectReverseOrder} {
		f := newFixture(t, 5, 5)
		lobby := f.startedMatch(t, LobbyConfig{InitialHandSize: 2})
		bringOneItem(t, f, lobby.ID, effect)

		card := f.pendingCard(t, lobby.ID, f.host, true)
		res, err := f.svc.SubmitAnswer(context.Background(), lobby.ID, f.host, card.ID, "Paris")
		require.NoError(t, err)
		assert.Equal(t, 5, res.Score)

		name := "skip_turn"
		if effect == models.EffectReverseOrder {
			name = "reverse_order"
		}
		assert.Len(t, f.hub.byName(name), 1)
		f.svc.Scheduler().Cancel(lobby.ID)
	}
}

func TestBringItemsBindsAndConsumes(t *testing.T) {
	f := newFixture(t, 5, 5)
	lobby := f.startedMatch(t, LobbyConfig{InitialHandSize: 2})
	defer f.svc.Scheduler().Cancel(lobby.ID)

	item := &models.Item{ID: uuid.New(), Effect: models.EffectDoubleScore}
	f.store.SeedItem(item)
	f.store.GrantInventory(f.host, item.ID, 3)

	require.NoError(t, f.svc.BringItems(context.Background(), lobby.ID, f.host,
		[]ItemRequest{{ItemID: item.ID, Quantity: 2}}))

	assert.Equal(t, 1, f.store.Inventory(f.host, item.ID))
	assert.Equal(t, 2, f.store.UsageCount(lobby.ID, f.host))

	bound := 0
	for _, c := range f.store.CardsByOwner(lobby.ID, f.host) {
		if c.ItemID != nil {
			assert.Equal(t, item.ID, *c.ItemID)
			bound++
		}
	}
	assert.Equal(t, 2, bound)
}

func TestBringItemsBeyondPendingCards(t *testing.T) {
	f := newFixture(t, 5, 5)
	lobby := f.startedMatch(t, LobbyConfig{InitialHandSize: 1})
	defer f.svc.Scheduler().Cancel(lobby.ID)

	item := &models.Item{ID: uuid.New(), Effect: models.EffectDoubleScore}
	f.store.SeedItem(item)
	f.store.GrantInventory(f.host, item.ID, 3)

	// One pending card, three items: all three consume, one binds.
	require.NoError(t, f.svc.BringItems(context.Background(), lobby.ID, f.host,
		[]ItemRequest{{ItemID: item.ID, Quantity: 3}}))

	assert.Equal(t, 0, f.store.Inventory(f.host, item.ID))
	assert.Equal(t, 3, f.store.UsageCount(lobby.ID, f.host))
}

func TestBringItemsInsufficientInventory(t *testing.T) {
	f := newFixture(t, 5, 5)
	lobby := f.startedMatch(t, LobbyConfig{InitialHandSize: 2})
	defer f.svc.Scheduler().Cancel(lobby.ID)

	item := &models.Item{ID: uuid.New(), Effect: models.EffectDoubleScore}
	f.store.SeedItem(item)
	f.store.GrantInventory(f.host, item.ID, 1)

	err := f.svc.BringItems(context.Background(), lobby.ID, f.host,
		[]ItemRequest{{ItemID: item.ID, Quantity: 2}})
	assert.ErrorIs(t, err, ErrInsufficientInventory)

	// The whole transaction rolled back.
	assert.Equal(t, 1, f.store.Inventory(f.host, item.ID))
	assert.Equal(t, 0, f.store.UsageCount(lobby.ID, f.host))
}

func TestBringItemsRequiresPlayingLobby(t *testing.T) {
	f := newFixture(t, 5, 5)
	lobby := f.createLobby(t, LobbyConfig{})

	err := f.svc.BringItems(context.Background(), lobby.ID, f.host, nil)
	assert.ErrorIs(t, err, ErrLobbyNotPlaying)
}
