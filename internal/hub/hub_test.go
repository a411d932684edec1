package hub

import (
	"encoding/json"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub() *Hub {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return New(log)
}

func TestPublishReachesAllSubscribers(t *testing.T) {
	h := newTestHub()
	room := uuid.New()

	a := h.Subscribe(room)
	b := h.Subscribe(room)
	defer a.Close()
	defer b.Close()

	h.Publish(room, map[string]interface{}{"event": "start"})

	for _, sub := range []*Subscriber{a, b} {
		var got map[string]interface{}
		require.NoError(t, json.Unmarshal(<-sub.Out, &got))
		assert.Equal(t, "start", got["event"])
	}
}

func TestPublishScopedToRoom(t *testing.T) {
	h := newTestHub()
	roomA, roomB := uuid.New(), uuid.New()

	a := h.Subscribe(roomA)
	b := h.Subscribe(roomB)
	defer a.Close()
	defer b.Close()

	h.Publish(roomA, map[string]interface{}{"event": "join"})

	require.Len(t, a.Out, 1)
	assert.Len(t, b.Out, 0)
}

func TestSlowSubscriberDropsEvents(t *testing.T) {
	h := newTestHub()
	room := uuid.New()

	sub := h.Subscribe(room)
	defer sub.Close()

	for i := 0; i < outBuffer+10; i++ {
		h.Publish(room, map[string]interface{}{"event": "update_score", "n": i})
	}

	// The buffer holds the first outBuffer events; the rest were dropped
	// without blocking the publisher.
	assert.Len(t, sub.Out, outBuffer)
}

func TestCloseIsIdempotentAndEmptiesRoom(t *testing.T) {
	h := newTestHub()
	room := uuid.New()

	sub := h.Subscribe(room)
	require.Equal(t, 1, h.RoomSize(room))

	sub.Close()
	sub.Close()
	assert.Equal(t, 0, h.RoomSize(room))

	_, open := <-sub.Out
	assert.False(t, open)

	// Publishing into an empty room is a no-op.
	h.Publish(room, map[string]interface{}{"event": "leave"})
}
