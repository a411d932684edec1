package match

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"quizclash-backend/internal/models"
)

// recordingHub captures published events for assertions.
type recordingHub struct {
	mu     sync.Mutex
	events []map[string]interface{}
}

func (h *recordingHub) Publish(matchID uuid.UUID, event map[string]interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
}

func (h *recordingHub) byName(name string) []map[string]interface{} {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []map[string]interface{}
	for _, ev := range h.events {
		if ev["event"] == name {
			out = append(out, ev)
		}
	}
	return out
}

type fixture struct {
	store *MemStore
	hub   *recordingHub
	svc   *Service

	topicID uuid.UUID
	host    uuid.UUID
	guest   uuid.UUID
}

// newFixture seeds a topic with questionCount questions, all answering
// "Paris" with the given difficulty, plus two users.
func newFixture(t *testing.T, questionCount, difficulty int) *fixture {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	f := &fixture{
		store:   NewMemStore(),
		hub:     &recordingHub{},
		topicID: uuid.New(),
		host:    uuid.New(),
		guest:   uuid.New(),
	}
	f.svc = NewService(f.store, f.hub, log)

	f.store.SeedTopic(&models.Topic{ID: f.topicID, Name: "Geography"})
	for i := 0; i < questionCount; i++ {
		f.store.SeedQuestion(&models.Question{
			ID:            uuid.New(),
			TopicID:       f.topicID,
			Content:       fmt.Sprintf("Capital city #%d?", i),
			Difficulty:    difficulty,
			CorrectAnswer: "Paris",
		})
	}
	f.store.SeedUser(&models.User{ID: f.host, Username: "host", Role: models.RolePlayer})
	f.store.SeedUser(&models.User{ID: f.guest, Username: "guest", Role: models.RolePlayer})
	return f
}

func (f *fixture) createLobby(t *testing.T, cfg LobbyConfig) *models.Lobby {
	t.Helper()
	if cfg.TopicID == uuid.Nil {
		cfg.TopicID = f.topicID
	}
	lobby, err := f.svc.CreateLobby(context.Background(), f.host, cfg)
	require.NoError(t, err)
	return lobby
}

// startedMatch creates a lobby, joins the guest and starts the match.
func (f *fixture) startedMatch(t *testing.T, cfg LobbyConfig) *models.Lobby {
	t.Helper()
	lobby := f.createLobby(t, cfg)
	_, err := f.svc.Join(context.Background(), lobby.ID, f.guest)
	require.NoError(t, err)
	require.NoError(t, f.svc.Start(context.Background(), lobby.ID, f.host))
	return lobby
}

// pendingCard returns one of the owner's pending cards, optionally only
// those with a bound item.
func (f *fixture) pendingCard(t *testing.T, matchID, ownerID uuid.UUID, boundOnly bool) *models.MatchCard {
	t.Helper()
	for _, c := range f.store.CardsByOwner(matchID, ownerID) {
		if c.State != models.CardPending {
			continue
		}
		if boundOnly && c.ItemID == nil {
			continue
		}
		return c
	}
	t.Fatalf("no matching pending card for owner %s", ownerID)
	return nil
}
