package hub

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// outBuffer is how many undelivered events a subscriber may lag behind
// before further events are dropped for it.
const outBuffer = 32

// Hub fans match events out to websocket subscribers, keyed by lobby/match
// id. Delivery is best-effort: a publish never blocks on a slow consumer,
// it drops the event for that subscriber instead.
type Hub struct {
	log *logrus.Logger

	mu    sync.RWMutex
	rooms map[uuid.UUID]map[*Subscriber]struct{}
}

// Subscriber is one live websocket's view of a room. The write pump drains
// Out until it is closed.
type Subscriber struct {
	hub    *Hub
	roomID uuid.UUID
	once   sync.Once

	Out chan []byte
}

func New(log *logrus.Logger) *Hub {
	if log == nil {
		log = logrus.New()
	}
	return &Hub{
		log:   log,
		rooms: make(map[uuid.UUID]map[*Subscriber]struct{}),
	}
}

// Subscribe registers a new subscriber on roomID. The caller must Close it
// when the connection goes away.
func (h *Hub) Subscribe(roomID uuid.UUID) *Subscriber {
	sub := &Subscriber{
		hub:    h,
		roomID: roomID,
		Out:    make(chan []byte, outBuffer),
	}

	h.mu.Lock()
	room, ok := h.rooms[roomID]
	if !ok {
		room = make(map[*Subscriber]struct{})
		h.rooms[roomID] = room
	}
	room[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

// Close unregisters the subscriber and closes its Out channel. Safe to call
// more than once.
func (s *Subscriber) Close() {
	s.once.Do(func() {
		h := s.hub
		h.mu.Lock()
		if room, ok := h.rooms[s.roomID]; ok {
			delete(room, s)
			if len(room) == 0 {
				delete(h.rooms, s.roomID)
			}
		}
		h.mu.Unlock()
		close(s.Out)
	})
}

// Publish encodes event once and offers it to every subscriber of the room.
func (h *Hub) Publish(roomID uuid.UUID, event map[string]interface{}) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.log.Warnf("hub: dropping unencodable event for %s: %v", roomID, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.rooms[roomID] {
		select {
		case sub.Out <- payload:
		default:
			h.log.WithField("room_id", roomID).Warn("hub: subscriber lagging, event dropped")
		}
	}
}

// RoomSize reports how many subscribers a room currently has.
func (h *Hub) RoomSize(roomID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}
